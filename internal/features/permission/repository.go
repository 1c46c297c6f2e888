package permission

import (
	"context"

	"go-cmms/internal/common/models"
	"go-cmms/internal/features/user"
	"go-cmms/pkg/permissions"
)

// PermissionRepository is the storage handle the permission service works
// through. Permissions live on the user document, so it is backed by the
// user repository; every write touches a single document. GetUser returns the
// stored entries together with the role they are merged over.
type PermissionRepository interface {
	GetUser(ctx context.Context, userID string) (*models.User, error)
	PutMatrixOverride(ctx context.Context, userID string, stored permissions.PartialMatrix) error
	PutModuleOverride(ctx context.Context, userID string, module permissions.Module, triple permissions.Triple) error
	PutRole(ctx context.Context, userID string, role permissions.Role, stored permissions.PartialMatrix) error
	AddMissing(ctx context.Context, userID string, additions permissions.PartialMatrix) (bool, error)
	ForEachUser(ctx context.Context, fn func(models.User) error) error
}

type PermissionRepositoryImpl struct {
	Users user.UserRepository
}

func NewPermissionRepository(users user.UserRepository) PermissionRepository {
	return &PermissionRepositoryImpl{Users: users}
}

func (r *PermissionRepositoryImpl) GetUser(ctx context.Context, userID string) (*models.User, error) {
	return r.Users.FindByID(ctx, userID)
}

func (r *PermissionRepositoryImpl) PutMatrixOverride(ctx context.Context, userID string, stored permissions.PartialMatrix) error {
	return r.Users.SetPermissions(ctx, userID, stored)
}

func (r *PermissionRepositoryImpl) PutModuleOverride(ctx context.Context, userID string, module permissions.Module, triple permissions.Triple) error {
	return r.Users.SetModulePermission(ctx, userID, module, triple)
}

func (r *PermissionRepositoryImpl) PutRole(ctx context.Context, userID string, role permissions.Role, stored permissions.PartialMatrix) error {
	return r.Users.SetRoleAndPermissions(ctx, userID, role, stored)
}

func (r *PermissionRepositoryImpl) AddMissing(ctx context.Context, userID string, additions permissions.PartialMatrix) (bool, error) {
	return r.Users.AddMissingPermissions(ctx, userID, additions)
}

func (r *PermissionRepositoryImpl) ForEachUser(ctx context.Context, fn func(models.User) error) error {
	return r.Users.ForEach(ctx, fn)
}
