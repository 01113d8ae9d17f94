package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mohamedMoujib/E-Health-sub000/internal/api/client"
	"github.com/mohamedMoujib/E-Health-sub000/internal/config"
	"github.com/mohamedMoujib/E-Health-sub000/internal/logging"
	"github.com/mohamedMoujib/E-Health-sub000/internal/session"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the current session and suppress realtime reconnection",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := config.Load()
		if err != nil {
			return err
		}
		if serverFlag != "" {
			cfg.ServerURL = serverFlag
		}
		log := logging.GetLogger(cfg.DataDir, cfg.LogLevel)

		sessions, err := session.Open(cfg.DataDir)
		if err != nil {
			return err
		}

		// Tell the server, best effort; the local teardown is what matters.
		rec, err := sessions.Current()
		if err == nil && rec.AccessToken != "" {
			api := client.New(cfg.ServerURL, log)
			api.SetTokens(rec.AccessToken, rec.RefreshToken)
			if err := api.Logout(); err != nil {
				log.Warn().Err(err).Msg("server logout failed")
			}
		}

		if err := sessions.Clear(); err != nil {
			return err
		}
		fmt.Println("Logged out.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
