package main

import (
	"go-leave/internal/app"
	"go-leave/internal/config"
	"go-leave/internal/shared/apperror"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "leavectl",
		Short:         "Operations CLI for the leave service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newMigrateCmd(),
		newSweepCmd(),
		newOutboxCmd(),
		newUserCmd(),
	)
	return root
}

// setup loads the environment the same way the service binaries do.
func setup() (*config.Config, *zap.Logger, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	logger, err := app.NewLogger(cfg.AppEnv)
	if err != nil {
		return nil, nil, err
	}
	zap.ReplaceGlobals(logger)
	apperror.Init()
	return cfg, logger, nil
}

// withModules connects the infrastructure, builds the service graph, and
// tears both down after fn returns.
func withModules(fn func(infra *app.Infra, m *app.Modules) error) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	infra, err := app.Connect(cfg, logger)
	if err != nil {
		return err
	}
	defer infra.Close()

	modules, err := app.NewModules(infra)
	if err != nil {
		return err
	}
	defer modules.Mailer.Wait()

	return fn(infra, modules)
}
