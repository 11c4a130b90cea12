package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/jwalitptl/booking-api/internal/repository/postgres"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := postgres.NewMigrator(a.db).Up(cmd.Context())
			if err != nil {
				return fmt.Errorf("migrate up: %w", err)
			}
			a.log.Info("migrations applied", "count", n)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.Close()

			statuses, err := postgres.NewMigrator(a.db).Status(cmd.Context())
			if err != nil {
				return fmt.Errorf("migrate status: %w", err)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "VERSION\tNAME\tAPPLIED AT")
			for _, s := range statuses {
				applied := "pending"
				if s.Applied && s.AppliedAt != nil {
					applied = s.AppliedAt.Format(time.RFC3339)
				}
				fmt.Fprintf(w, "%03d\t%s\t%s\n", s.Version, s.Name, applied)
			}
			return w.Flush()
		},
	})

	return cmd
}
