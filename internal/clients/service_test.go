package clients

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praxis-compliance/praxis/internal/authz"
	"github.com/praxis-compliance/praxis/internal/tenant"
)

// mockRepository keys storage by the scope's bound tenant, so a lookup
// through the wrong tenant behaves like the real accessor: not found.
type mockRepository struct {
	byTenant map[int64]map[int64]*Client
	nextID   int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{byTenant: make(map[int64]map[int64]*Client), nextID: 1}
}

func (m *mockRepository) bucket(tenantID int64) map[int64]*Client {
	b, ok := m.byTenant[tenantID]
	if !ok {
		b = make(map[int64]*Client)
		m.byTenant[tenantID] = b
	}
	return b
}

func (m *mockRepository) List(_ context.Context, scope *tenant.Accessor, req ListClientsRequest) ([]Client, int, error) {
	var out []Client
	for _, c := range m.bucket(scope.TenantID()) {
		if req.Status != nil && c.Status != *req.Status {
			continue
		}
		if req.Search != nil && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(*req.Search)) {
			continue
		}
		out = append(out, *c)
	}
	return out, len(out), nil
}

func (m *mockRepository) Get(_ context.Context, scope *tenant.Accessor, id int64) (*Client, error) {
	c, ok := m.bucket(scope.TenantID())[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (m *mockRepository) Create(_ context.Context, scope *tenant.Accessor, values map[string]any) (*Client, error) {
	c := &Client{
		ID:           m.nextID,
		Name:         values["name"].(string),
		Jurisdiction: values["jurisdiction"].(string),
		Status:       values["status"].(string),
		CreatedBy:    values["created_by"].(int64),
		CreatedAt:    values["created_at"].(time.Time),
		UpdatedAt:    values["updated_at"].(time.Time),
	}
	m.nextID++
	m.bucket(scope.TenantID())[c.ID] = c
	return c, nil
}

func (m *mockRepository) Update(_ context.Context, scope *tenant.Accessor, id int64, updates map[string]any) error {
	c, ok := m.bucket(scope.TenantID())[id]
	if !ok {
		return ErrNotFound
	}
	if v, ok := updates["name"]; ok {
		c.Name = v.(string)
	}
	if v, ok := updates["status"]; ok {
		c.Status = v.(string)
	}
	if v, ok := updates["updated_at"]; ok {
		c.UpdatedAt = v.(time.Time)
	}
	return nil
}

func newTestService() (*Service, *mockRepository) {
	repo := newMockRepository()
	return NewService(tenant.NewFactory(nil), repo), repo
}

func manager(tenantID int64) authz.Identity {
	return authz.Identity{UserID: 7, TenantID: tenantID, Role: authz.RoleComplianceManager}
}

func TestCreateStampsActorTenant(t *testing.T) {
	svc, repo := newTestService()

	created, err := svc.Create(context.Background(), manager(1), CreateClientRequest{
		Name:         "Acme Industries Ltd",
		Jurisdiction: "GB",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusActive, created.Status)
	assert.Equal(t, int64(7), created.CreatedBy)

	_, inTenant1 := repo.byTenant[1][created.ID]
	assert.True(t, inTenant1, "client must live under the actor's tenant")
}

func TestGetIsTenantScoped(t *testing.T) {
	svc, _ := newTestService()

	created, err := svc.Create(context.Background(), manager(1), CreateClientRequest{
		Name:         "Acme Industries Ltd",
		Jurisdiction: "GB",
	})
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), manager(1), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = svc.Get(context.Background(), manager(2), created.ID)
	assert.ErrorIs(t, err, ErrNotFound, "another tenant sees nothing")
}

func TestListFilters(t *testing.T) {
	svc, _ := newTestService()
	actor := manager(1)

	_, err := svc.Create(context.Background(), actor, CreateClientRequest{Name: "Acme Industries Ltd", Jurisdiction: "GB"})
	require.NoError(t, err)
	dormant, err := svc.Create(context.Background(), actor, CreateClientRequest{Name: "Bluepeak Logistics BV", Jurisdiction: "NL"})
	require.NoError(t, err)

	status := StatusDormant
	_, err = svc.Update(context.Background(), actor, dormant.ID, UpdateClientRequest{Status: &status})
	require.NoError(t, err)

	result, total, err := svc.List(context.Background(), actor, ListClientsRequest{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, result, 1)
	assert.Equal(t, "Bluepeak Logistics BV", result[0].Name)

	search := "acme"
	result, _, err = svc.List(context.Background(), actor, ListClientsRequest{Search: &search})
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "Acme Industries Ltd", result[0].Name)
}

func TestUpdateAppliesOnlyProvidedFields(t *testing.T) {
	svc, _ := newTestService()
	actor := manager(1)

	created, err := svc.Create(context.Background(), actor, CreateClientRequest{Name: "Acme Industries Ltd", Jurisdiction: "GB"})
	require.NoError(t, err)

	name := "Acme Industries (UK) Ltd"
	updated, err := svc.Update(context.Background(), actor, created.ID, UpdateClientRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.Equal(t, StatusActive, updated.Status, "untouched fields keep their value")

	_, err = svc.Update(context.Background(), manager(2), created.ID, UpdateClientRequest{Name: &name})
	assert.ErrorIs(t, err, ErrNotFound)
}
