package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mohamedMoujib/E-Health-sub000/internal/api/client"
	"github.com/mohamedMoujib/E-Health-sub000/internal/config"
	"github.com/mohamedMoujib/E-Health-sub000/internal/cron"
	"github.com/mohamedMoujib/E-Health-sub000/internal/logging"
	"github.com/mohamedMoujib/E-Health-sub000/internal/realtime"
	"github.com/mohamedMoujib/E-Health-sub000/internal/session"
	"github.com/mohamedMoujib/E-Health-sub000/internal/store"
	"github.com/mohamedMoujib/E-Health-sub000/internal/tui"
)

var serverFlag string

// rootCmd launches the terminal client.
var rootCmd = &cobra.Command{
	Use:   "ehealth",
	Short: "Terminal client for the E-Health practice platform",
	Long: `ehealth is the doctor's terminal client for the E-Health platform:
conversations with patients, notifications and live updates over the
practice server's realtime channel.`,
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
			log.Error().Err(err).Msg("failed to open session store")
			return err
		}

		api := client.New(cfg.ServerURL, log)
		if err := api.Health(); err != nil {
			log.Error().Err(err).Msg("server unreachable")
			return fmt.Errorf("cannot reach %s: %w", cfg.ServerURL, err)
		}
		api.OnTokensRefreshed = func(access, refresh string) {
			if err := sessions.SetTokens(access, refresh); err != nil {
				log.Warn().Err(err).Msg("failed to persist refreshed tokens")
			}
		}

		manager := realtime.NewManager(realtime.Options{
			URL:         cfg.ServerURL,
			TokenSource: api.AccessToken,
		}, sessions, log)

		notifications := store.NewNotificationStore(api, log)
		chats := store.NewChatStore(api, manager, log)

		scheduler := cron.StartTokenRefresh(api, log)
		defer scheduler.Stop()

		app := tui.NewApp(api, sessions, manager, notifications, chats, cfg.Sound, log)
		return app.Run()
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverFlag, "server", "", "server base URL (overrides config)")
}
