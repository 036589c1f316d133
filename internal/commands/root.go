package commands

import (
	"github.com/spf13/cobra"

	"github.com/Kenz1481/web-deployment-website/config"
)

var loadConfig = config.Load

var rootCmd = &cobra.Command{
	Use:   "deployd",
	Short: "Deployment pipeline service",
	Long: `deployd accepts static site projects (an uploaded ZIP archive or a link to an
existing GitHub repository), pushes them to a GitHub repository and deploys them on Vercel.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute(version string) error {
	rootCmd.Version = version
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(sweepCmd)
}
