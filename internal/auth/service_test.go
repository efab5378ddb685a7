package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/praxis-compliance/praxis/internal/shared"
)

type mockRepository struct {
	users    map[string]*User
	sessions map[string]int64
	lastIP   string
	lastUA   string
	findErr  error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		users:    make(map[string]*User),
		sessions: make(map[string]int64),
	}
}

func (m *mockRepository) FindByEmail(_ context.Context, email string) (*User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	u, ok := m.users[email]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return u, nil
}

func (m *mockRepository) CreateSession(_ context.Context, id string, userID int64, _ time.Time, ip, ua string) error {
	m.sessions[id] = userID
	m.lastIP = ip
	m.lastUA = ua
	return nil
}

func (m *mockRepository) DeleteSession(_ context.Context, id string) error {
	delete(m.sessions, id)
	return nil
}

func seedUser(t *testing.T, repo *mockRepository, email, password string, active bool) *User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := &User{
		ID:           int64(len(repo.users) + 1),
		TenantID:     1,
		Email:        email,
		PasswordHash: string(hash),
		Role:         "compliance_manager",
		IsActive:     active,
	}
	repo.users[email] = u
	return u
}

func TestAuthenticateSuccess(t *testing.T) {
	repo := newMockRepository()
	want := seedUser(t, repo, "mara@meridian.example", "correct-horse", true)
	svc := NewService(repo)

	got, err := svc.Authenticate(context.Background(), "mara@meridian.example", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.TenantID, got.TenantID)
	assert.Equal(t, want.Role, got.Role)
}

func TestAuthenticateFailuresAreUniform(t *testing.T) {
	repo := newMockRepository()
	seedUser(t, repo, "mara@meridian.example", "correct-horse", true)
	seedUser(t, repo, "gone@meridian.example", "whatever", false)
	svc := NewService(repo)

	cases := []struct {
		name     string
		email    string
		password string
	}{
		{"unknown account", "nobody@meridian.example", "correct-horse"},
		{"wrong password", "mara@meridian.example", "wrong"},
		{"disabled account", "gone@meridian.example", "whatever"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Authenticate(context.Background(), tc.email, tc.password)
			assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
		})
	}
}

func TestAuthenticateRepositoryError(t *testing.T) {
	repo := newMockRepository()
	repo.findErr = errors.New("connection reset")
	svc := NewService(repo)

	_, err := svc.Authenticate(context.Background(), "mara@meridian.example", "correct-horse")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials, "storage errors must not leak account state")
}

func TestSessionLifecycle(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)

	require.NoError(t, svc.RegisterSession(context.Background(), "sess-1", 42, time.Now().Add(time.Hour), "10.0.0.1", "cli"))
	assert.Equal(t, int64(42), repo.sessions["sess-1"])
	assert.Equal(t, "10.0.0.1", repo.lastIP)
	assert.Equal(t, "cli", repo.lastUA)

	require.NoError(t, svc.RemoveSession(context.Background(), "sess-1"))
	assert.NotContains(t, repo.sessions, "sess-1")
}
