package logger

import (
	"context"

	"go-cmms/internal/config"
	"go-cmms/internal/database"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NewLogger builds the application logger. Every entry is written to the console
// and also queued for the app_logs collection.
func NewLogger(lc fx.Lifecycle, cfg *config.Config, mongodb *database.MongodbDB) (*zap.Logger, error) {
	var zapConfig zap.Config
	if cfg.IsProduction() {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	// Needed so DBCore can record the calling function
	zapConfig.EncoderConfig.FunctionKey = "func"

	baseLogger, err := zapConfig.Build()
	if err != nil {
		return nil, err
	}

	dbWriter := NewDBLogWriter(NewMongoLogSink(mongodb), cfg.AppId)
	logger := zap.New(NewDBCore(baseLogger.Core(), dbWriter), zap.AddCaller())

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			_ = logger.Sync()
			return dbWriter.Close(ctx)
		},
	})

	return logger, nil
}
