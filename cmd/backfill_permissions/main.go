package main

import (
	"context"
	"log"
	"os"

	"go-cmms/internal/config"
	"go-cmms/internal/database"
	"go-cmms/internal/features/audit"
	"go-cmms/internal/features/permission"
	"go-cmms/internal/features/user"
	"go-cmms/internal/logger"
	"go-cmms/internal/metrics"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// Backfill runs the additive permission migration once over every stored
// user and exits. Entries a user already has are never touched.
func Backfill(
	lc fx.Lifecycle,
	service permission.PermissionService,
	logger *zap.Logger,
	shutdowner fx.Shutdowner,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				report, err := service.BackfillAll(context.Background())
				if err != nil {
					logger.Error("Backfill aborted", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
					return
				}

				logger.Info("Backfill complete",
					zap.Int("scanned", report.Scanned),
					zap.Int("updated", report.Updated),
					zap.Int("failed", report.Failed),
				)

				code := 0
				if report.Failed > 0 {
					code = 2
				}
				_ = shutdowner.Shutdown(fx.ExitCode(code))
			}()
			return nil
		},
	})
}

func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			logger.NewLogger,
			database.NewDatabase,
			metrics.NewMetrics,
			user.NewUserRepository,
			func(r user.UserRepository) audit.UserFinder { return r },
			func(m *metrics.Metrics) permission.BackfillObserver { return m },
			audit.NewAuditRepository,
			audit.NewAuditService,
			permission.NewPermissionRepository,
			permission.NewPermissionService,
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(Backfill),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal(err)
	}

	sig := <-app.Wait()
	if err := app.Stop(context.Background()); err != nil {
		log.Println(err)
	}
	os.Exit(sig.ExitCode)
}
