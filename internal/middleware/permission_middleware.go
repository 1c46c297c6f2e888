package middleware

import (
	"context"

	"go-cmms/pkg/permissions"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// MatrixLoader resolves a principal's effective matrix. It returns (nil, nil)
// for principals that have no matrix (unknown or deactivated users); an error
// means the lookup itself failed.
type MatrixLoader interface {
	EffectiveMatrix(ctx context.Context, userID string) (permissions.Matrix, error)
}

// DecisionObserver receives every decision the gate takes
type DecisionObserver interface {
	ObserveDecision(d permissions.Decision)
}

// PermissionGate enforces the module/action matrix on routes
type PermissionGate struct {
	loader   MatrixLoader
	observer DecisionObserver
	logger   *zap.Logger
}

func NewPermissionGate(loader MatrixLoader, observer DecisionObserver, logger *zap.Logger) *PermissionGate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PermissionGate{
		loader:   loader,
		observer: observer,
		logger:   logger.Named("permission_gate"),
	}
}

// Require gates a route on a fixed module and action
func (g *PermissionGate) Require(module permissions.Module, action permissions.Action) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return g.check(c, module, action)
	}
}

// RequireParam reads the module from a route parameter
func (g *PermissionGate) RequireParam(param string, action permissions.Action) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return g.check(c, permissions.Module(c.Params(param)), action)
	}
}

// RequireByMethod reads the module from a route parameter and derives the
// action from the HTTP method: reads need view, writes need edit, DELETE needs delete.
func (g *PermissionGate) RequireByMethod(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return g.check(c, permissions.Module(c.Params(param)), ActionForMethod(c.Method()))
	}
}

// ActionForMethod maps an HTTP method to the action it needs
func ActionForMethod(method string) permissions.Action {
	switch method {
	case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
		return permissions.ActionView
	case fiber.MethodDelete:
		return permissions.ActionDelete
	default:
		return permissions.ActionEdit
	}
}

func (g *PermissionGate) check(c *fiber.Ctx, module permissions.Module, action permissions.Action) error {
	claims, ok := ClaimsFrom(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	matrix, err := g.loader.EffectiveMatrix(c.UserContext(), claims.UserID)
	if err != nil {
		g.logger.Error("failed to load permission matrix",
			zap.String("user_id", claims.UserID),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal Server Error",
		})
	}

	decision := permissions.Authorize(matrix, module, action)
	if g.observer != nil {
		g.observer.ObserveDecision(decision)
	}

	if !decision.Allowed {
		g.logger.Info("access denied",
			zap.String("user_id", claims.UserID),
			zap.String("module", string(module)),
			zap.String("action", string(action)),
			zap.String("cause", string(decision.Cause)),
			zap.String("ip", c.IP()),
		)
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": decision.Reason,
		})
	}

	return c.Next()
}
