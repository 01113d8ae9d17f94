package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mohamedMoujib/E-Health-sub000/internal/config"
	"github.com/mohamedMoujib/E-Health-sub000/internal/devserver"
	"github.com/mohamedMoujib/E-Health-sub000/internal/logging"
)

var devserverAddr string

var devserverCmd = &cobra.Command{
	Use:   "devserver",
	Short: "Run the local development stub server",
	Long: `Runs an in-memory stub of the E-Health backend: login for the seeded
doctor account, the REST endpoints the client consumes and the realtime
channel. No booking or authorization rules; development use only.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := config.Load()
		if err != nil {
			return err
		}
		log := logging.GetLogger(cfg.DataDir, cfg.LogLevel)
		return devserver.New(log).ListenAndServe(devserverAddr)
	},
}

func init() {
	devserverCmd.Flags().StringVar(&devserverAddr, "addr", ":8080", "listen address")
	rootCmd.AddCommand(devserverCmd)
}
