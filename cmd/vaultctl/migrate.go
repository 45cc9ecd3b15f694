package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/SimonLou-Dev/cours-gestionaire-mdp/internal/repository"
)

var migrateStatus bool

func init() {
	migrateCmd.Flags().BoolVar(&migrateStatus, "status", false, "show migration status instead of applying")
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		db, err := openDB(ctx)
		if err != nil {
			return fail("Database unavailable", err)
		}
		defer db.Close()

		if migrateStatus {
			return repository.MigrationStatus(ctx, db)
		}

		if err := repository.Migrate(ctx, db); err != nil {
			return fail("Migration failed", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓")+" Schema is up to date")
		return nil
	},
}
