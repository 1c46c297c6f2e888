package permission

import (
	"context"
	"errors"
	"fmt"

	common_models "go-cmms/internal/common/models"
	"go-cmms/internal/features/audit"
	"go-cmms/internal/features/user"
	"go-cmms/pkg/permissions"

	"go.uber.org/zap"
)

var ErrUnknownModule = errors.New("unknown module")

// audit entries for permission writes are filed under the settings module
const auditModule = string(permissions.ModuleSettings)

// BackfillObserver receives the outcome of each backfill run
type BackfillObserver interface {
	ObserveBackfill(updated int, err error)
}

type PermissionService interface {
	// EffectiveMatrix returns the merged matrix of an active user, or nil
	// when the user does not exist or is not active.
	EffectiveMatrix(ctx context.Context, userID string) (permissions.Matrix, error)
	GetUserPermissions(ctx context.Context, userID string) (*UserPermissions, error)
	RoleDefaults(role string) permissions.Matrix
	AllRoleDefaults() map[permissions.Role]permissions.Matrix

	SetModulePermission(ctx context.Context, userID string, module string, triple permissions.Triple) error
	ReplacePermissions(ctx context.Context, userID string, entries map[string]permissions.Triple) error
	ResetToRoleDefaults(ctx context.Context, userID string) error
	ChangeRole(ctx context.Context, userID string, role string) error

	BackfillUser(ctx context.Context, userID string) (bool, error)
	BackfillAll(ctx context.Context) (*BackfillReport, error)
}

type PermissionServiceImpl struct {
	Repo         PermissionRepository
	AuditService audit.AuditService
	Observer     BackfillObserver
	Logger       *zap.Logger
}

func NewPermissionService(repo PermissionRepository, auditService audit.AuditService, observer BackfillObserver, logger *zap.Logger) PermissionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PermissionServiceImpl{
		Repo:         repo,
		AuditService: auditService,
		Observer:     observer,
		Logger:       logger.Named("permission"),
	}
}

func (s *PermissionServiceImpl) EffectiveMatrix(ctx context.Context, userID string) (permissions.Matrix, error) {
	u, err := s.Repo.GetUser(ctx, userID)
	if errors.Is(err, user.ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !u.IsActive() {
		return nil, nil
	}
	return permissions.Merge(permissions.ResolveDefaults(u.Role), u.Permissions), nil
}

func (s *PermissionServiceImpl) GetUserPermissions(ctx context.Context, userID string) (*UserPermissions, error) {
	u, err := s.Repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return describe(u), nil
}

func describe(u *common_models.User) *UserPermissions {
	stored := u.Permissions
	if stored == nil {
		stored = permissions.PartialMatrix{}
	}
	return &UserPermissions{
		UserID:    u.ID.Hex(),
		Username:  u.Username,
		Role:      u.Role,
		Active:    u.IsActive(),
		Stored:    stored,
		Effective: permissions.Merge(permissions.ResolveDefaults(u.Role), stored),
		Missing:   stored.Missing(),
		Unknown:   stored.Unknown(),
	}
}

func (s *PermissionServiceImpl) RoleDefaults(role string) permissions.Matrix {
	return permissions.ResolveDefaults(permissions.Role(role))
}

func (s *PermissionServiceImpl) AllRoleDefaults() map[permissions.Role]permissions.Matrix {
	out := make(map[permissions.Role]permissions.Matrix, len(permissions.AllRoles))
	for _, r := range permissions.AllRoles {
		out[r] = permissions.ResolveDefaults(r)
	}
	return out
}

// SetModulePermission stores an explicit entry for one module. The triple is
// stored as given, including combinations defaults never produce.
func (s *PermissionServiceImpl) SetModulePermission(ctx context.Context, userID string, module string, triple permissions.Triple) error {
	mod, ok := permissions.ParseModule(module)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownModule, module)
	}

	u, err := s.Repo.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	before := permissions.Merge(permissions.ResolveDefaults(u.Role), u.Permissions).Get(mod)

	if err := s.Repo.PutModuleOverride(ctx, userID, mod, triple); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionPermissions, auditModule, userID, map[string]common_models.Change{
		string(mod): {Old: before, New: triple},
	})
	return nil
}

// ReplacePermissions overwrites the stored entries. Modules left out fall back
// to the role defaults. Unknown module names reject the whole request.
func (s *PermissionServiceImpl) ReplacePermissions(ctx context.Context, userID string, entries map[string]permissions.Triple) error {
	stored := make(permissions.PartialMatrix, len(entries))
	for name, t := range entries {
		mod, ok := permissions.ParseModule(name)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownModule, name)
		}
		stored[mod] = t
	}

	u, err := s.Repo.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	defaults := permissions.ResolveDefaults(u.Role)
	before := permissions.Merge(defaults, u.Permissions)

	if err := s.Repo.PutMatrixOverride(ctx, userID, stored); err != nil {
		return err
	}

	s.logMatrixChange(ctx, userID, before, permissions.Merge(defaults, stored), nil)
	return nil
}

// ResetToRoleDefaults stores the full default matrix of the user's role,
// discarding every explicit entry.
func (s *PermissionServiceImpl) ResetToRoleDefaults(ctx context.Context, userID string) error {
	u, err := s.Repo.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	defaults := permissions.ResolveDefaults(u.Role)
	before := permissions.Merge(defaults, u.Permissions)

	if err := s.Repo.PutMatrixOverride(ctx, userID, defaults.Partial()); err != nil {
		return err
	}

	s.logMatrixChange(ctx, userID, before, defaults, nil)
	return nil
}

// ChangeRole assigns a new role and replaces the stored matrix with its
// defaults in the same write, so no request ever sees the new role with the
// old grants.
func (s *PermissionServiceImpl) ChangeRole(ctx context.Context, userID string, role string) error {
	r, ok := permissions.ParseRole(role)
	if !ok {
		return fmt.Errorf("%w: %q", user.ErrInvalidRole, role)
	}

	u, err := s.Repo.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	before := permissions.Merge(permissions.ResolveDefaults(u.Role), u.Permissions)
	after := permissions.ResolveDefaults(r)

	if err := s.Repo.PutRole(ctx, userID, r, after.Partial()); err != nil {
		return err
	}

	s.logMatrixChange(ctx, userID, before, after, map[string]common_models.Change{
		"role": {Old: u.Role, New: r},
	})
	return nil
}

func (s *PermissionServiceImpl) logMatrixChange(ctx context.Context, userID string, before, after permissions.Matrix, extra map[string]common_models.Change) {
	changes := make(map[string]common_models.Change, len(extra))
	for k, v := range extra {
		changes[k] = v
	}
	for _, mod := range permissions.AllModules {
		if b, a := before.Get(mod), after.Get(mod); b != a {
			changes[string(mod)] = common_models.Change{Old: b, New: a}
		}
	}
	if len(changes) == 0 {
		return
	}
	_ = s.AuditService.LogChange(ctx, common_models.AuditActionPermissions, auditModule, userID, changes)
}
