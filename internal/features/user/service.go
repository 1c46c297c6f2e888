package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-cmms/internal/common/models"
	"go-cmms/internal/features/audit"
	"go-cmms/pkg/permissions"
	"go-cmms/pkg/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrInvalidRole   = errors.New("invalid role")
	ErrInvalidStatus = errors.New("invalid status: must be active, inactive, or suspended")
)

// module name used on audit entries for user changes
const auditModule = string(permissions.ModulePeople)

type UserService interface {
	ListUsers(ctx context.Context, filter map[string]interface{}, page, limit int64) ([]models.User, int64, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, id string, updates map[string]interface{}) error
	UpdateUserStatus(ctx context.Context, id string, status string) error
	DeleteUser(ctx context.Context, id string) error
}

type UserServiceImpl struct {
	UserRepo     UserRepository
	AuditService audit.AuditService
}

func NewUserService(userRepo UserRepository, auditService audit.AuditService) UserService {
	return &UserServiceImpl{
		UserRepo:     userRepo,
		AuditService: auditService,
	}
}

func (s *UserServiceImpl) ListUsers(ctx context.Context, filter map[string]interface{}, page, limit int64) ([]models.User, int64, error) {
	if filter == nil {
		filter = make(map[string]interface{})
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	offset := (page - 1) * limit
	return s.UserRepo.List(ctx, filter, limit, offset)
}

func (s *UserServiceImpl) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.UserRepo.FindByID(ctx, id)
}

// CreateUser stores a new account whose permissions are seeded with the
// defaults of its role. The password is replaced by its bcrypt hash.
func (s *UserServiceImpl) CreateUser(ctx context.Context, user *models.User) error {
	role, ok := permissions.ParseRole(string(user.Role))
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidRole, user.Role)
	}
	user.Role = role

	if user.Status == "" {
		user.Status = models.UserStatusActive
	}
	if !validStatus(user.Status) {
		return ErrInvalidStatus
	}

	hash, err := utils.HashPassword(user.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.Password = hash

	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	user.Permissions = permissions.ResolveDefaults(role).Partial()

	if err := s.UserRepo.Create(ctx, user); err != nil {
		return err
	}

	changes := map[string]models.Change{
		"username": {New: user.Username},
		"email":    {New: user.Email},
		"role":     {New: user.Role},
	}
	_ = s.AuditService.LogChange(ctx, models.AuditActionCreate, auditModule, user.ID.Hex(), changes)

	return nil
}

func (s *UserServiceImpl) UpdateUser(ctx context.Context, id string, updates map[string]interface{}) error {
	user, err := s.UserRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	changes := make(map[string]models.Change)
	apply := func(field string, target *string) {
		if v, ok := updates[field].(string); ok && v != *target {
			changes[field] = models.Change{Old: *target, New: v}
			*target = v
		}
	}
	apply("username", &user.Username)
	apply("email", &user.Email)
	apply("first_name", &user.FirstName)
	apply("last_name", &user.LastName)
	apply("phone", &user.Phone)
	apply("status", &user.Status)

	if !validStatus(user.Status) {
		return ErrInvalidStatus
	}
	if len(changes) == 0 {
		return nil
	}

	user.UpdatedAt = time.Now()
	if err := s.UserRepo.Update(ctx, id, user); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionUpdate, auditModule, id, changes)
	return nil
}

// UpdateUserStatus deactivates or reactivates an account. A non-active
// account has no effective matrix, so every gated request is denied.
func (s *UserServiceImpl) UpdateUserStatus(ctx context.Context, id string, status string) error {
	if !validStatus(status) {
		return ErrInvalidStatus
	}
	return s.UpdateUser(ctx, id, map[string]interface{}{"status": status})
}

func (s *UserServiceImpl) DeleteUser(ctx context.Context, id string) error {
	user, err := s.UserRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.UserRepo.Delete(ctx, id); err != nil {
		return err
	}

	changes := map[string]models.Change{
		"deleted":  {Old: false, New: true},
		"username": {Old: user.Username, New: ""},
	}
	_ = s.AuditService.LogChange(ctx, models.AuditActionDelete, auditModule, id, changes)

	return nil
}

func validStatus(status string) bool {
	switch status {
	case models.UserStatusActive, models.UserStatusInactive, models.UserStatusSuspended:
		return true
	}
	return false
}
