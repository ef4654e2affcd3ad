package main

import (
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/yourusername/kotoba-tracker/internal/config"
	"github.com/yourusername/kotoba-tracker/internal/handler"
	"github.com/yourusername/kotoba-tracker/internal/repository"
	"github.com/yourusername/kotoba-tracker/internal/service"
)

func main() {
	zapConfig := zap.NewDevelopmentConfig()
	zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	zapConfig.EncoderConfig.TimeKey = "timestamp"
	zapConfig.EncoderConfig.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.UTC().Format("2006-01-02T15:04:05Z"))
	}

	logger, err := zapConfig.Build()
	if err != nil {
		panic(fmt.Errorf("init logger: %w", err))
	}
	defer logger.Sync()

	zap.ReplaceGlobals(logger)
	zap.S().Info("logger initialized")

	cfg := config.Load()

	repo, err := repository.NewDB(cfg.PostgresDSN, cfg.MaxIdleConns, cfg.MaxOpenConns)
	if err != nil {
		zap.S().Error("connect to PostgreSQL", zap.Error(err))
		os.Exit(1)
	}
	defer repo.Close()

	if err = repo.Up(cfg.MigrationsDir); err != nil {
		zap.S().Error("run migrations", zap.Error(err))
		os.Exit(1)
	}

	svc := service.NewService(repo)

	router := gin.Default()
	handler.NewHTTPHandler(svc).Register(router)

	zap.S().Infow("server starting", "port", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		zap.S().Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
}
