package main

import (
	"fmt"
	"time"

	"go-leave/internal/app"
	"go-leave/internal/reminder"

	"github.com/spf13/cobra"
)

func newSweepCmd() *cobra.Command {
	var useLock bool

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run one reminder sweep for the current hour",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withModules(func(infra *app.Infra, m *app.Modules) error {
				now := time.Now()

				if useLock {
					scheduler := reminder.NewScheduler(m.Sweeper, infra.Redis, infra.Config.Reminder.LockTTL, infra.Logger)
					ran, err := scheduler.Tick(cmd.Context(), now)
					if err != nil {
						return err
					}
					if !ran {
						fmt.Fprintf(cmd.OutOrStdout(), "hour %s already swept\n", reminder.LockKey(now))
					}
					return nil
				}

				res, err := m.Sweeper.Run(cmd.Context(), now)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "pending=%d created=%d skipped=%d failed=%d\n",
					res.Pending, res.Created, res.Skipped, res.Failed)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&useLock, "lock", false, "take the hourly Redis lock shared with the worker")
	return cmd
}
