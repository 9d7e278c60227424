package main

import (
	"fmt"
	"sort"
	"time"

	"go-leave/internal/app"

	"github.com/spf13/cobra"
)

func newOutboxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "outbox",
		Short: "Inspect and prune the mail outbox",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Count outbox events by status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withModules(func(_ *app.Infra, m *app.Modules) error {
				counts, err := m.Outbox.CountByStatus(cmd.Context())
				if err != nil {
					return err
				}

				statuses := make([]string, 0, len(counts))
				for s := range counts {
					statuses = append(statuses, s)
				}
				sort.Strings(statuses)
				for _, s := range statuses {
					fmt.Fprintf(cmd.OutOrStdout(), "%-8s %d\n", s, counts[s])
				}
				return nil
			})
		},
	})

	var olderThan time.Duration
	purge := &cobra.Command{
		Use:   "purge",
		Short: "Delete sent events older than the given age",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if olderThan <= 0 {
				return fmt.Errorf("--older-than must be positive")
			}
			return withModules(func(_ *app.Infra, m *app.Modules) error {
				n, err := m.Outbox.PurgeSent(cmd.Context(), olderThan)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "purged %d events\n", n)
				return nil
			})
		},
	}
	purge.Flags().DurationVar(&olderThan, "older-than", 7*24*time.Hour, "minimum age of sent events to delete")
	cmd.AddCommand(purge)

	return cmd
}
