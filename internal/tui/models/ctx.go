package models

import (
	"github.com/rs/zerolog"

	"github.com/mohamedMoujib/E-Health-sub000/internal/api/client"
	appmodels "github.com/mohamedMoujib/E-Health-sub000/internal/models"
	"github.com/mohamedMoujib/E-Health-sub000/internal/session"
	"github.com/mohamedMoujib/E-Health-sub000/internal/store"
)

// Ctx carries the shared collaborators every screen needs. The app wires it
// once; models pass it along when they hand off to each other.
type Ctx struct {
	API           *client.APIClient
	Notifications *store.NotificationStore
	Chats         *store.ChatStore
	Sessions      *session.Store
	Log           zerolog.Logger
	User          appmodels.User
	Sound         bool

	// Connect is the app's login hook: it opens the realtime connection for
	// the user and registers the push handlers.
	Connect func(user appmodels.User) bool
}

// IncomingMessageMsg is delivered into the running program when the realtime
// channel pushes a chat message.
type IncomingMessageMsg struct {
	Message appmodels.Message
}

// IncomingNotificationMsg is delivered when the realtime channel pushes a
// notification; screens respond with a toast and an audio cue.
type IncomingNotificationMsg struct {
	Notification appmodels.Notification
}
