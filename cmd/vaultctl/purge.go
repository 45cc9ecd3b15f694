package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/SimonLou-Dev/cours-gestionaire-mdp/internal/repository"
)

var purgeSharesCmd = &cobra.Command{
	Use:   "purge-shares",
	Short: "Delete share links past their expiry date",
	Long: `Expired shares can never be opened again, but their ciphertext stays in the
database until purged. Run this periodically, for example from cron.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		db, err := openDB(ctx)
		if err != nil {
			return fail("Database unavailable", err)
		}
		defer db.Close()

		n, err := repository.NewShareRepository(db).PurgeExpired(ctx, time.Now())
		if err != nil {
			return fail("Purge failed", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s Purged %s expired share(s)\n",
			color.GreenString("✓"), color.YellowString("%d", n))
		return nil
	},
}
