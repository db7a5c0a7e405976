package main

import (
	"fmt"

	"receptionist-dashboard/internal/schema"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		pool, err := openPool(cmd.Context())
		if err != nil {
			return err
		}
		defer pool.Close()

		n, err := schema.Migrate(cmd.Context(), pool, log)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "migrations applied: %d\n", n)
		return nil
	},
}
