package users

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asset-atlas/atlas/internal/rbac"
	"github.com/asset-atlas/atlas/internal/shared"
)

// mockRepository keeps accounts in memory and records stored password
// hashes so tests can assert the plaintext never lands in storage.
type mockRepository struct {
	mu       sync.Mutex
	users    map[int64]User
	hashes   map[int64]string
	roles    map[int64]rbac.Role
	nextID   int64
	audits   []shared.AuditEntry
	auditErr error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		users:  make(map[int64]User),
		hashes: make(map[int64]string),
		roles: map[int64]rbac.Role{
			1: {ID: 1, Name: "admin"},
			3: {ID: 3, Name: "viewer"},
		},
		nextID: 1,
	}
}

func (m *mockRepository) List(ctx context.Context) ([]User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []User
	for _, u := range m.users {
		result = append(result, u)
	}
	return result, nil
}

func (m *mockRepository) ListRoles(ctx context.Context) ([]rbac.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []rbac.Role
	for _, r := range m.roles {
		result = append(result, r)
	}
	return result, nil
}

func (m *mockRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	auditMark := len(m.audits)
	usersBefore := make(map[int64]User, len(m.users))
	for id, u := range m.users {
		usersBefore[id] = u
	}
	if err := fn(ctx, (*mockTx)(m)); err != nil {
		m.users = usersBefore
		m.audits = m.audits[:auditMark]
		return err
	}
	return nil
}

type mockTx mockRepository

func (t *mockTx) UsernameExists(ctx context.Context, username string) (bool, error) {
	for _, u := range t.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (t *mockTx) RoleExists(ctx context.Context, roleID int64) (bool, error) {
	_, ok := t.roles[roleID]
	return ok, nil
}

func (t *mockTx) Insert(ctx context.Context, input CreateInput, passwordHash string) (User, error) {
	now := time.Now()
	user := User{
		ID:          t.nextID,
		Username:    input.Username,
		DisplayName: input.DisplayName,
		Dept:        input.Dept,
		IsActive:    true,
		Role:        t.roles[input.RoleID],
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	t.users[user.ID] = user
	t.hashes[user.ID] = passwordHash
	t.nextID++
	return user, nil
}

func (t *mockTx) GetForUpdate(ctx context.Context, id int64) (User, error) {
	u, ok := t.users[id]
	if !ok {
		return User{}, shared.ErrNotFound
	}
	return u, nil
}

func (t *mockTx) Update(ctx context.Context, id int64, input UpdateInput, passwordHash *string) (User, error) {
	u, ok := t.users[id]
	if !ok {
		return User{}, shared.ErrNotFound
	}
	if input.DisplayName != nil {
		u.DisplayName = *input.DisplayName
	}
	if input.Dept != nil {
		u.Dept = *input.Dept
	}
	if input.RoleID != nil {
		u.Role = t.roles[*input.RoleID]
	}
	if input.IsActive != nil {
		u.IsActive = *input.IsActive
	}
	if passwordHash != nil {
		t.hashes[id] = *passwordHash
	}
	u.UpdatedAt = time.Now()
	t.users[id] = u
	return u, nil
}

func (t *mockTx) RecordAudit(ctx context.Context, entry shared.AuditEntry) error {
	if t.auditErr != nil {
		return t.auditErr
	}
	t.audits = append(t.audits, entry)
	return nil
}

func fakeHash(password string) (string, error) {
	return "hashed:" + password, nil
}

func newTestService(t *testing.T) (*Service, *mockRepository) {
	t.Helper()
	repo := newMockRepository()
	return NewService(repo, fakeHash), repo
}

func TestCreateStoresHashNotPlaintext(t *testing.T) {
	svc, repo := newTestService(t)

	created, err := svc.Create(context.Background(), 1, CreateInput{
		Username: "jdoe",
		Password: "S3cret!pass",
		RoleID:   3,
	})
	require.NoError(t, err)
	assert.True(t, created.IsActive)
	assert.Equal(t, "viewer", created.Role.Name)

	stored := repo.hashes[created.ID]
	assert.NotEqual(t, "S3cret!pass", stored)
	assert.True(t, strings.HasPrefix(stored, "hashed:"))

	require.Len(t, repo.audits, 1)
	entry := repo.audits[0]
	assert.Equal(t, shared.ActionCreate, entry.Action)
	assert.Equal(t, "users", entry.TargetTable)
	detail, ok := entry.Detail.(map[string]any)
	require.True(t, ok)
	assert.NotContains(t, detail, "password")
}

func TestCreateDuplicateUsernameConflicts(t *testing.T) {
	svc, repo := newTestService(t)

	_, err := svc.Create(context.Background(), 1, CreateInput{Username: "jdoe", Password: "secret1", RoleID: 3})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), 1, CreateInput{Username: "jdoe", Password: "secret2", RoleID: 3})
	require.ErrorIs(t, err, shared.ErrConflict)
	assert.Len(t, repo.users, 1)
	assert.Len(t, repo.audits, 1)
}

func TestCreateUnknownRoleRejected(t *testing.T) {
	svc, repo := newTestService(t)

	_, err := svc.Create(context.Background(), 1, CreateInput{Username: "jdoe", Password: "secret1", RoleID: 99})
	require.ErrorIs(t, err, shared.ErrInvalidReference)
	assert.Empty(t, repo.users)
	assert.Empty(t, repo.audits)
}

func TestAuditFailureRollsBackCreate(t *testing.T) {
	svc, repo := newTestService(t)

	repo.auditErr = errors.New("audit insert failed")
	_, err := svc.Create(context.Background(), 1, CreateInput{Username: "jdoe", Password: "secret1", RoleID: 3})
	require.ErrorIs(t, err, repo.auditErr)

	// The account and its trail entry commit together or not at all.
	assert.Empty(t, repo.users)
	assert.Empty(t, repo.audits)
}

func TestUpdateRedactsPasswordInAudit(t *testing.T) {
	svc, repo := newTestService(t)

	created, err := svc.Create(context.Background(), 1, CreateInput{Username: "jdoe", Password: "old-secret", RoleID: 3})
	require.NoError(t, err)

	newPassword := "new-secret"
	_, err = svc.Update(context.Background(), 1, created.ID, UpdateInput{Password: &newPassword})
	require.NoError(t, err)

	assert.Equal(t, "hashed:new-secret", repo.hashes[created.ID])

	require.Len(t, repo.audits, 2)
	detail, ok := repo.audits[1].Detail.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "[redacted]", detail["password"])
}

func TestUpdateDeactivatesWithoutDeleting(t *testing.T) {
	svc, repo := newTestService(t)

	created, err := svc.Create(context.Background(), 1, CreateInput{Username: "jdoe", Password: "secret1", RoleID: 3})
	require.NoError(t, err)

	inactive := false
	updated, err := svc.Update(context.Background(), 1, created.ID, UpdateInput{IsActive: &inactive})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	// The record survives deactivation.
	assert.Len(t, repo.users, 1)
}

func TestUpdateRoleChangeValidatesReference(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.Create(context.Background(), 1, CreateInput{Username: "jdoe", Password: "secret1", RoleID: 3})
	require.NoError(t, err)

	admin := int64(1)
	updated, err := svc.Update(context.Background(), 1, created.ID, UpdateInput{RoleID: &admin})
	require.NoError(t, err)
	assert.Equal(t, "admin", updated.Role.Name)

	bogus := int64(99)
	_, err = svc.Update(context.Background(), 1, created.ID, UpdateInput{RoleID: &bogus})
	require.ErrorIs(t, err, shared.ErrInvalidReference)
}

func TestUpdateRejectsEmptyInput(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Update(context.Background(), 1, 1, UpdateInput{})
	require.ErrorIs(t, err, ErrNoFields)
}

func TestUpdateNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	name := "Nobody"
	_, err := svc.Update(context.Background(), 1, 42, UpdateInput{DisplayName: &name})
	require.ErrorIs(t, err, shared.ErrNotFound)
}
