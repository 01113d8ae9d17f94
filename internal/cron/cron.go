package cron

import (
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"

	"github.com/mohamedMoujib/E-Health-sub000/internal/utils"
)

// TokenRefresher is the slice of the session/API glue the scheduler drives.
type TokenRefresher interface {
	AccessToken() string
	Refresh() error
}

// StartTokenRefresh runs a periodic job that refreshes the access token
// shortly before it expires, keeping the realtime connection's credential
// fresh for re-authentication. Returns the scheduler so the caller can stop
// it on shutdown.
func StartTokenRefresh(r TokenRefresher, log zerolog.Logger) *gocron.Scheduler {
	s := gocron.NewScheduler(time.Local)

	s.Every(30).Seconds().Do(func() {
		token := r.AccessToken()
		if token == "" {
			return
		}
		if !utils.TokenExpiringWithin(token, 2*time.Minute) {
			return
		}
		if err := r.Refresh(); err != nil {
			log.Warn().Err(err).Msg("cron: token refresh failed")
			return
		}
		log.Debug().Msg("cron: access token refreshed")
	})

	s.StartAsync()
	return s
}
