package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Kenz1481/web-deployment-website/internal/projects/repository"
	"github.com/Kenz1481/web-deployment-website/internal/storage/postgres"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Remove stale staging directories and uploads once, then exit",
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

		res, err := newJanitor(cfg, repository.NewProjectRepository(db)).Sweep(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %d staging directories and %d uploads (%d errors)\n",
			res.StagingRemoved, res.UploadsRemoved, res.Errors)
		return nil
	},
}
