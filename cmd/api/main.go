package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	common_api "go-cmms/internal/common/api"
	"go-cmms/internal/config"
	"go-cmms/internal/database"
	"go-cmms/internal/features/audit"
	"go-cmms/internal/features/auth"
	"go-cmms/internal/features/permission"
	"go-cmms/internal/features/record"
	"go-cmms/internal/features/system"
	"go-cmms/internal/features/user"
	"go-cmms/internal/logger"
	"go-cmms/internal/metrics"
	"go-cmms/internal/middleware"
	"go-cmms/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer(cfg *config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(recover.New())
	app.Use(middleware.CORSMiddleware(cfg))

	return app
}

// NewTokenManager refuses to run production with development auth settings
func NewTokenManager(cfg *config.Config) (*utils.TokenManager, error) {
	if cfg.IsProduction() {
		if cfg.JWTSecret == "secret" {
			return nil, errors.New("JWT_SECRET must be set in production")
		}
		if cfg.SkipAuth {
			return nil, errors.New("SKIP_AUTH is not allowed in production")
		}
	}
	return utils.NewTokenManager(cfg.JWTSecret, time.Duration(cfg.TokenTTL)*time.Hour), nil
}

// AsRoute is a helper function to reduce boilerplate.
// It tags the constructor so Fx knows to add it to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),
		fx.ResultTags(`group:"routes"`),
	)
}

// RegisterAllRoutes takes the group "routes" and calls Setup() on each one
func RegisterAllRoutes(app *fiber.App, log *zap.Logger, routes []common_api.Route) {
	log.Info("registering routes", zap.Int("count", len(routes)))
	for _, route := range routes {
		log.Debug("setting up route", zap.String("type", fmt.Sprintf("%T", route)))
		route.Setup(app)
	}
}

var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, ``, `group:"routes"`),
)

// StartServer starts Fiber in a goroutine and shuts it down when the app exits
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config, log *zap.Logger, shutdowner fx.Shutdowner) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				log.Info("listening", zap.String("addr", port))
				if err := app.Listen(port); err != nil {
					log.Error("server failed", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.ShutdownWithContext(ctx)
		},
	})
}

// InitializeIndexes ensures that necessary database indexes are created
func InitializeIndexes(lc fx.Lifecycle, users user.UserRepository, records record.RecordRepository, audits audit.AuditRepository, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				if err := users.EnsureIndexes(ctx); err != nil {
					log.Error("failed to ensure user indexes", zap.Error(err))
				}
				if err := records.EnsureIndexes(ctx); err != nil {
					log.Error("failed to ensure record indexes", zap.Error(err))
				}
				if err := audits.EnsureIndexes(ctx); err != nil {
					log.Error("failed to ensure audit indexes", zap.Error(err))
				}
			}()
			return nil
		},
	})
}

// RunBackfillScheduler ties the permission backfill job to the app lifecycle
func RunBackfillScheduler(lc fx.Lifecycle, scheduler *permission.BackfillScheduler) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return scheduler.Start()
		},
		OnStop: func(ctx context.Context) error {
			scheduler.Stop()
			return nil
		},
	})
}

// @title           go-cmms API
// @version         1.0
// @description     Maintenance management backend with per-module role permissions.

// @host            localhost:8080
// @BasePath        /
func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			logger.NewLogger,
			metrics.NewMetrics,
			NewFiberServer,
			NewTokenManager,
			database.NewDatabase,

			// Repositories
			audit.NewAuditRepository,
			user.NewUserRepository,
			record.NewRecordRepository,
			permission.NewPermissionRepository,

			// Services
			audit.NewAuditService,
			user.NewUserService,
			auth.NewAuthService,
			record.NewRecordService,
			permission.NewPermissionService,
			permission.NewBackfillScheduler,

			// Interface adapters
			func(r user.UserRepository) audit.UserFinder { return r },
			func(s permission.PermissionService) middleware.MatrixLoader { return s },
			func(m *metrics.Metrics) middleware.DecisionObserver { return m },
			func(m *metrics.Metrics) permission.BackfillObserver { return m },

			middleware.NewPermissionGate,

			// Controllers
			auth.NewAuthController,
			user.NewUserController,
			audit.NewAuditController,
			record.NewRecordController,
			permission.NewPermissionController,

			// Routes
			AsRoute(auth.NewAuthApi),
			AsRoute(user.NewUserApi),
			AsRoute(audit.NewAuditApi),
			AsRoute(record.NewRecordApi),
			AsRoute(permission.NewPermissionApi),
			AsRoute(system.NewHealthApi),
			AsRoute(metrics.NewMetricsApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			RegisterAllRoutesWithAnnotation,
			StartServer,
			InitializeIndexes,
			RunBackfillScheduler,
		),
	)

	app.Run()
}
