package app

import (
	"database/sql"
	"errors"
	"fmt"

	"go-leave/internal/config"
	"go-leave/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Infra holds the shared connections of one process.
type Infra struct {
	Config *config.Config
	DB     *gorm.DB
	SQL    *sql.DB
	Redis  *redis.Client
	Logger *zap.Logger
}

func Connect(cfg *config.Config, logger *zap.Logger) (*Infra, error) {
	gormDB, err := connection.ConnectGORMWithRetry(cfg.DB.DSN(), connection.PoolConfig{
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
	}, cfg.DB.MaxRetries)
	if err != nil {
		return nil, err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}

	rdb, err := connection.ConnectRedisWithRetry(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.DB.MaxRetries)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	return &Infra{Config: cfg, DB: gormDB, SQL: sqlDB, Redis: rdb, Logger: logger}, nil
}

func (i *Infra) Close() error {
	var errs []error
	if i.Redis != nil {
		errs = append(errs, i.Redis.Close())
	}
	if i.SQL != nil {
		errs = append(errs, i.SQL.Close())
	}
	return errors.Join(errs...)
}

// BuildApp connects the infrastructure and mounts every HTTP module on the
// router. The caller owns the returned App and must Close it.
func BuildApp(router *gin.Engine, cfg *config.Config, logger *zap.Logger) (*App, error) {
	infra, err := Connect(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect infrastructure: %w", err)
	}

	modules, err := NewModules(infra)
	if err != nil {
		_ = infra.Close()
		return nil, err
	}

	registerRoutes(router, infra, modules)
	return &App{Infra: infra, Modules: modules}, nil
}

type App struct {
	Infra   *Infra
	Modules *Modules
}

// Close waits for queued mail and releases the connections.
func (a *App) Close() error {
	a.Modules.Mailer.Wait()
	return a.Infra.Close()
}

// NewLogger returns a production logger for APP_ENV=production and a
// development logger otherwise.
func NewLogger(appEnv string) (*zap.Logger, error) {
	if appEnv == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
