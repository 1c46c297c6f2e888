package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log"
	"os"

	"go-cmms/internal/common/models"
	"go-cmms/internal/config"
	"go-cmms/internal/database"
	"go-cmms/internal/features/audit"
	"go-cmms/internal/features/user"
	"go-cmms/internal/logger"
	"go-cmms/pkg/permissions"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

type seedUser struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

var usersPath = flag.String("users", "cmd/seed/data/users.json", "path to the users seed file")

// Seed creates the accounts listed in the seed file. Existing usernames are
// left alone; their permissions are only ever completed by the backfill job.
func Seed(
	lc fx.Lifecycle,
	userRepo user.UserRepository,
	userService user.UserService,
	logger *zap.Logger,
	shutdowner fx.Shutdowner,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				defer func() {
					if err := shutdowner.Shutdown(); err != nil {
						logger.Error("Failed to shutdown", zap.Error(err))
					}
				}()

				ctx := context.Background()
				logger.Info("Starting user seeding", zap.String("file", *usersPath))

				b, err := os.ReadFile(*usersPath)
				if err != nil {
					logger.Error("Failed to read seed file", zap.Error(err))
					return
				}
				var users []seedUser
				if err := json.Unmarshal(b, &users); err != nil {
					logger.Error("Failed to parse seed file", zap.Error(err))
					return
				}

				for _, u := range users {
					if _, err := userRepo.FindByUsername(ctx, u.Username); err == nil {
						logger.Info("User exists, skipping", zap.String("username", u.Username))
						continue
					} else if !errors.Is(err, user.ErrUserNotFound) {
						logger.Error("Failed to look up user", zap.String("username", u.Username), zap.Error(err))
						continue
					}

					account := &models.User{
						Username:  u.Username,
						Email:     u.Email,
						Password:  u.Password,
						FirstName: u.FirstName,
						LastName:  u.LastName,
						Role:      permissions.Role(u.Role),
					}
					if err := userService.CreateUser(ctx, account); err != nil {
						logger.Error("Failed to create user", zap.String("username", u.Username), zap.Error(err))
						continue
					}
					logger.Info("User created", zap.String("username", u.Username), zap.String("role", string(account.Role)))
				}

				logger.Info("Seeding complete")
			}()
			return nil
		},
	})
}

func main() {
	flag.Parse()

	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			logger.NewLogger,
			database.NewDatabase,
			user.NewUserRepository,
			func(r user.UserRepository) audit.UserFinder { return r },
			audit.NewAuditRepository,
			audit.NewAuditService,
			user.NewUserService,
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(Seed),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal(err)
	}

	<-app.Done()
}
