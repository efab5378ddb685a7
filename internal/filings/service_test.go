package filings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praxis-compliance/praxis/internal/authz"
	"github.com/praxis-compliance/praxis/internal/tenant"
)

type mockRepository struct {
	byTenant map[int64]map[int64]*Filing
	clients  map[int64]int64 // client id -> owning tenant
	nextID   int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		byTenant: make(map[int64]map[int64]*Filing),
		clients:  make(map[int64]int64),
		nextID:   1,
	}
}

func (m *mockRepository) bucket(tenantID int64) map[int64]*Filing {
	b, ok := m.byTenant[tenantID]
	if !ok {
		b = make(map[int64]*Filing)
		m.byTenant[tenantID] = b
	}
	return b
}

func (m *mockRepository) List(_ context.Context, scope *tenant.Accessor, req ListFilingsRequest) ([]Filing, int, error) {
	var out []Filing
	for _, f := range m.bucket(scope.TenantID()) {
		if req.ClientID != nil && f.ClientID != *req.ClientID {
			continue
		}
		if req.Status != nil && f.Status != *req.Status {
			continue
		}
		out = append(out, *f)
	}
	return out, len(out), nil
}

func (m *mockRepository) Get(_ context.Context, scope *tenant.Accessor, id int64) (*Filing, error) {
	f, ok := m.bucket(scope.TenantID())[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *f
	return &copied, nil
}

func (m *mockRepository) Create(_ context.Context, scope *tenant.Accessor, values map[string]any) (*Filing, error) {
	f := &Filing{
		ID:        m.nextID,
		ClientID:  values["client_id"].(int64),
		Kind:      values["kind"].(string),
		Period:    values["period"].(string),
		Status:    values["status"].(string),
		CreatedBy: values["created_by"].(int64),
		CreatedAt: values["created_at"].(time.Time),
		UpdatedAt: values["updated_at"].(time.Time),
	}
	m.nextID++
	m.bucket(scope.TenantID())[f.ID] = f
	return f, nil
}

func (m *mockRepository) Update(_ context.Context, scope *tenant.Accessor, id int64, updates map[string]any) error {
	f, ok := m.bucket(scope.TenantID())[id]
	if !ok {
		return ErrNotFound
	}
	m.apply(f, updates)
	return nil
}

func (m *mockRepository) Transition(_ context.Context, scope *tenant.Accessor, id int64, from string, updates map[string]any) error {
	f, ok := m.bucket(scope.TenantID())[id]
	if !ok {
		return ErrNotFound
	}
	if f.Status != from {
		return ErrInvalidTransition
	}
	m.apply(f, updates)
	return nil
}

func (m *mockRepository) apply(f *Filing, updates map[string]any) {
	if v, ok := updates["status"]; ok {
		f.Status = v.(string)
	}
	if v, ok := updates["period"]; ok {
		f.Period = v.(string)
	}
	if v, ok := updates["submitted_at"]; ok {
		at := v.(time.Time)
		f.SubmittedAt = &at
	}
	if v, ok := updates["decided_at"]; ok {
		at := v.(time.Time)
		f.DecidedAt = &at
	}
	if v, ok := updates["rejection_reason"]; ok {
		reason := v.(string)
		f.RejectionReason = &reason
	}
}

func (m *mockRepository) ClientExists(_ context.Context, scope *tenant.Accessor, clientID int64) (bool, error) {
	return m.clients[clientID] == scope.TenantID(), nil
}

func newTestService() (*Service, *mockRepository) {
	repo := newMockRepository()
	repo.clients[3] = 1 // client 3 belongs to tenant 1
	return NewService(tenant.NewFactory(nil), repo), repo
}

func manager(tenantID int64) authz.Identity {
	return authz.Identity{UserID: 7, TenantID: tenantID, Role: authz.RoleComplianceManager}
}

func TestCreateRequiresOwnClient(t *testing.T) {
	svc, _ := newTestService()

	created, err := svc.Create(context.Background(), manager(1), CreateFilingRequest{
		ClientID: 3,
		Kind:     KindAnnualReturn,
		Period:   "2025",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, created.Status)

	// Same client id through another tenant's actor reads as absent.
	_, err = svc.Create(context.Background(), manager(2), CreateFilingRequest{
		ClientID: 3,
		Kind:     KindAnnualReturn,
		Period:   "2025",
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFilingLifecycle(t *testing.T) {
	svc, _ := newTestService()
	actor := manager(1)

	created, err := svc.Create(context.Background(), actor, CreateFilingRequest{
		ClientID: 3,
		Kind:     KindVATReturn,
		Period:   "2026-Q1",
	})
	require.NoError(t, err)

	submitted, err := svc.Submit(context.Background(), actor, created.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusSubmitted, submitted.Status)
	assert.NotNil(t, submitted.SubmittedAt)

	// Submitting twice is a conflict, not a silent no-op.
	_, err = svc.Submit(context.Background(), actor, created.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	accepted, err := svc.Accept(context.Background(), actor, created.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, accepted.Status)
	assert.NotNil(t, accepted.DecidedAt)

	// A decided filing is frozen.
	_, err = svc.Reject(context.Background(), actor, created.ID, "late")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestRejectRecordsReason(t *testing.T) {
	svc, _ := newTestService()
	actor := manager(1)

	created, err := svc.Create(context.Background(), actor, CreateFilingRequest{
		ClientID: 3,
		Kind:     KindFinancialStatements,
		Period:   "2025",
	})
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), actor, created.ID)
	require.NoError(t, err)

	rejected, err := svc.Reject(context.Background(), actor, created.ID, "missing signatures")
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, rejected.Status)
	require.NotNil(t, rejected.RejectionReason)
	assert.Equal(t, "missing signatures", *rejected.RejectionReason)
}

func TestUpdateOnlyDrafts(t *testing.T) {
	svc, _ := newTestService()
	actor := manager(1)

	created, err := svc.Create(context.Background(), actor, CreateFilingRequest{
		ClientID: 3,
		Kind:     KindAnnualReturn,
		Period:   "2025",
	})
	require.NoError(t, err)

	period := "2026"
	updated, err := svc.Update(context.Background(), actor, created.ID, UpdateFilingRequest{Period: &period})
	require.NoError(t, err)
	assert.Equal(t, "2026", updated.Period)

	_, err = svc.Submit(context.Background(), actor, created.ID)
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), actor, created.ID, UpdateFilingRequest{Period: &period})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}
