package auth

import (
	"context"
	"errors"
	"time"

	"go-cmms/internal/common/models"
	"go-cmms/internal/features/audit"
	"go-cmms/internal/features/user"
	"go-cmms/pkg/utils"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account is not active")
)

type AuthService interface {
	Login(ctx context.Context, username, password string) (string, error)
}

type AuthServiceImpl struct {
	UserRepo     user.UserRepository
	AuditService audit.AuditService
	Tokens       *utils.TokenManager
}

func NewAuthService(userRepo user.UserRepository, auditService audit.AuditService, tokens *utils.TokenManager) AuthService {
	return &AuthServiceImpl{
		UserRepo:     userRepo,
		AuditService: auditService,
		Tokens:       tokens,
	}
}

// Login checks the password and issues a token carrying the user id and role.
// The token establishes identity only; permissions are read per request.
func (s *AuthServiceImpl) Login(ctx context.Context, username, password string) (string, error) {
	usr, err := s.UserRepo.FindByUsername(ctx, username)
	if errors.Is(err, user.ErrUserNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}

	if !utils.CheckPassword(usr.Password, password) {
		return "", ErrInvalidCredentials
	}
	if !usr.IsActive() {
		return "", ErrAccountDisabled
	}

	token, err := s.Tokens.GenerateToken(usr.ID, string(usr.Role))
	if err != nil {
		return "", err
	}

	now := time.Now()
	_ = s.UserRepo.TouchLastLogin(ctx, usr.ID.Hex(), now)

	ctx = utils.ContextWithClaims(ctx, &utils.UserClaims{UserID: usr.ID.Hex(), Role: string(usr.Role)})
	_ = s.AuditService.LogChange(ctx, models.AuditActionLogin, "auth", usr.ID.Hex(), map[string]models.Change{
		"last_login": {Old: usr.LastLogin, New: now},
	})

	return token, nil
}
