package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-cmms/internal/common/models"
	"go-cmms/pkg/permissions"
	"go-cmms/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockUserRepo struct {
	Users map[string]*models.User
}

func newMockUserRepo() *MockUserRepo {
	return &MockUserRepo{Users: map[string]*models.User{}}
}

func (m *MockUserRepo) Create(ctx context.Context, user *models.User) error {
	cp := *user
	m.Users[user.ID.Hex()] = &cp
	return nil
}

func (m *MockUserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, u := range m.Users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *MockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := m.Users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MockUserRepo) List(ctx context.Context, filter map[string]interface{}, limit, offset int64) ([]models.User, int64, error) {
	return nil, 0, nil
}

func (m *MockUserRepo) Update(ctx context.Context, id string, user *models.User) error {
	if _, ok := m.Users[id]; !ok {
		return ErrUserNotFound
	}
	cp := *user
	m.Users[id] = &cp
	return nil
}

func (m *MockUserRepo) Delete(ctx context.Context, id string) error {
	delete(m.Users, id)
	return nil
}

func (m *MockUserRepo) FindByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	return nil, nil
}

func (m *MockUserRepo) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	return nil
}

func (m *MockUserRepo) SetPermissions(ctx context.Context, id string, stored permissions.PartialMatrix) error {
	return nil
}

func (m *MockUserRepo) SetModulePermission(ctx context.Context, id string, module permissions.Module, triple permissions.Triple) error {
	return nil
}

func (m *MockUserRepo) SetRoleAndPermissions(ctx context.Context, id string, role permissions.Role, stored permissions.PartialMatrix) error {
	return nil
}

func (m *MockUserRepo) AddMissingPermissions(ctx context.Context, id string, additions permissions.PartialMatrix) (bool, error) {
	return false, nil
}

func (m *MockUserRepo) ForEach(ctx context.Context, fn func(models.User) error) error {
	return nil
}

func (m *MockUserRepo) EnsureIndexes(ctx context.Context) error {
	return nil
}

type MockAudit struct {
	Actions []models.AuditAction
}

func (m *MockAudit) LogChange(ctx context.Context, action models.AuditAction, module string, recordID string, changes map[string]models.Change) error {
	m.Actions = append(m.Actions, action)
	return nil
}

func (m *MockAudit) ListLogs(ctx context.Context, filters map[string]interface{}, page, limit int64) ([]models.AuditLog, error) {
	return nil, nil
}

func TestCreateUserSeedsRoleDefaults(t *testing.T) {
	repo := newMockUserRepo()
	auditor := &MockAudit{}
	svc := NewUserService(repo, auditor)

	u := &models.User{Username: "mlopez", Email: "m@example.com", Password: "pw", Role: "logistique"}
	require.NoError(t, svc.CreateUser(context.Background(), u))

	stored := repo.Users[u.ID.Hex()]
	require.NotNil(t, stored)
	assert.Equal(t, permissions.RoleLogistique, stored.Role)
	assert.Equal(t, models.UserStatusActive, stored.Status)
	assert.True(t, permissions.ResolveDefaults(permissions.RoleLogistique).Equal(permissions.Matrix(stored.Permissions)))
	assert.Empty(t, stored.Permissions.Missing())
	assert.True(t, utils.CheckPassword(stored.Password, "pw"))
	assert.Equal(t, []models.AuditAction{models.AuditActionCreate}, auditor.Actions)
}

func TestCreateUserRejectsUnknownRole(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewUserService(repo, &MockAudit{})

	err := svc.CreateUser(context.Background(), &models.User{Username: "x", Password: "pw", Role: "SUPERUSER"})

	assert.True(t, errors.Is(err, ErrInvalidRole))
	assert.Empty(t, repo.Users)
}

func TestUpdateUserStatus(t *testing.T) {
	repo := newMockUserRepo()
	auditor := &MockAudit{}
	svc := NewUserService(repo, auditor)

	u := &models.User{Username: "a", Password: "pw", Role: permissions.RoleProd}
	require.NoError(t, svc.CreateUser(context.Background(), u))

	tests := []struct {
		name    string
		status  string
		wantErr error
	}{
		{"deactivate", models.UserStatusInactive, nil},
		{"suspend", models.UserStatusSuspended, nil},
		{"bogus", "deleted", ErrInvalidStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.UpdateUserStatus(context.Background(), u.ID.Hex(), tt.status)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.status, repo.Users[u.ID.Hex()].Status)
		})
	}
}

func TestUpdateUserWithoutChangesSkipsAudit(t *testing.T) {
	repo := newMockUserRepo()
	auditor := &MockAudit{}
	svc := NewUserService(repo, auditor)

	u := &models.User{Username: "a", Password: "pw", Role: permissions.RoleProd}
	require.NoError(t, svc.CreateUser(context.Background(), u))

	require.NoError(t, svc.UpdateUser(context.Background(), u.ID.Hex(), map[string]interface{}{"username": "a"}))
	assert.Len(t, auditor.Actions, 1)
}

func TestDeleteUnknownUser(t *testing.T) {
	svc := NewUserService(newMockUserRepo(), &MockAudit{})
	assert.ErrorIs(t, svc.DeleteUser(context.Background(), "65f0c0ffee0000000000beef"), ErrUserNotFound)
}
