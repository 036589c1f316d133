package commands

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/Kenz1481/web-deployment-website/internal/storage/postgres"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := postgres.NewConnection(cmd.Context(), &cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := postgres.Migrate(cmd.Context(), db); err != nil {
			return err
		}
		log.Println("Schema is up to date")
		return nil
	},
}
