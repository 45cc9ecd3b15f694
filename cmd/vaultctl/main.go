package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/SimonLou-Dev/cours-gestionaire-mdp/internal/config"
	"github.com/SimonLou-Dev/cours-gestionaire-mdp/internal/repository"
)

var (
	dsn string

	rootCmd = &cobra.Command{
		Use:   "vaultctl",
		Short: "Operator tooling for the password vault",
		Long: `vaultctl runs maintenance tasks against the vault database:
applying schema migrations, purging expired share links, and generating passwords.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
			if dsn == "" {
				dsn = config.FromEnv().DatabaseDSN
			}
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&dsn, "dsn", "", "MySQL DSN (defaults to DATABASE_DSN)")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(purgeSharesCmd)
	rootCmd.AddCommand(generateCmd)
}

func openDB(ctx context.Context) (*sql.DB, error) {
	db, err := repository.NewDB(dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	return db, nil
}

func fail(msg string, err error) error {
	fmt.Fprintln(os.Stderr, color.RedString("✗")+" "+msg+": "+err.Error())
	return err
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
