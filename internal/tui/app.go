// Package tui glues the stores and the realtime channel to the terminal UI:
// push events are folded into the stores and forwarded into the running
// program, where the active screen reacts with a toast and an audio cue.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/mohamedMoujib/E-Health-sub000/internal/api/client"
	appmodels "github.com/mohamedMoujib/E-Health-sub000/internal/models"
	"github.com/mohamedMoujib/E-Health-sub000/internal/realtime"
	"github.com/mohamedMoujib/E-Health-sub000/internal/session"
	"github.com/mohamedMoujib/E-Health-sub000/internal/store"
	tmodels "github.com/mohamedMoujib/E-Health-sub000/internal/tui/models"
	"github.com/mohamedMoujib/E-Health-sub000/internal/utils"
)

type App struct {
	api           *client.APIClient
	sessions      *session.Store
	manager       *realtime.Manager
	notifications *store.NotificationStore
	chats         *store.ChatStore
	log           zerolog.Logger
	sound         bool

	program *tea.Program
}

func NewApp(
	api *client.APIClient,
	sessions *session.Store,
	manager *realtime.Manager,
	notifications *store.NotificationStore,
	chats *store.ChatStore,
	sound bool,
	log zerolog.Logger,
) *App {
	return &App{
		api:           api,
		sessions:      sessions,
		manager:       manager,
		notifications: notifications,
		chats:         chats,
		sound:         sound,
		log:           log,
	}
}

type mainModel struct {
	currentModel tea.Model
}

func (m mainModel) Init() tea.Cmd {
	return m.currentModel.Init()
}

func (m mainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.currentModel.Update(msg)
	m.currentModel = next
	return m, cmd
}

func (m mainModel) View() string {
	return m.currentModel.View()
}

func (a *App) Run() error {
	ctx := &tmodels.Ctx{
		API:           a.api,
		Notifications: a.notifications,
		Chats:         a.chats,
		Sessions:      a.sessions,
		Log:           a.log,
		Sound:         a.sound,
		Connect:       a.connect,
	}

	var current tea.Model

	// Resume the previous session when the stored credential still works
	// and the user did not explicitly log out.
	if rec, err := a.sessions.Current(); err == nil &&
		rec.AccessToken != "" && !rec.LoggedOut && !utils.TokenExpired(rec.AccessToken) {
		a.api.SetTokens(rec.AccessToken, rec.RefreshToken)
		user := appmodels.User{ID: rec.UserID, Name: rec.UserName}
		ctx.User = user

		if cached, err := a.sessions.LoadNotifications(); err == nil && len(cached) > 0 {
			a.notifications.Seed(cached)
		}

		a.connect(user)
		current = tmodels.NewChatsModel(ctx)
	} else {
		current = tmodels.NewLoginModel(ctx)
	}

	a.program = tea.NewProgram(mainModel{currentModel: current}, tea.WithAltScreen())
	_, err := a.program.Run()

	// Persist the latest notification snapshot for the next launch.
	if snapErr := a.sessions.SaveNotifications(a.notifications.Items()); snapErr != nil {
		a.log.Warn().Err(snapErr).Msg("tui: failed to cache notifications")
	}
	return err
}

// connect opens the realtime connection for the user and registers the push
// handlers. Handlers fold events into the stores first, then wake the UI.
func (a *App) connect(user appmodels.User) bool {
	if a.manager.Connect(user) == nil {
		return false
	}

	return a.manager.RegisterHandlers(realtime.Handlers{
		NewMessage: func(msg appmodels.Message) {
			a.chats.OnIncomingMessage(msg)
			a.send(tmodels.IncomingMessageMsg{Message: msg})
		},
		NewNotification: func(n appmodels.Notification) {
			n = tmodels.NormalizeIncoming(n)
			a.notifications.PushIncoming(n)
			a.send(tmodels.IncomingNotificationMsg{Notification: n})
		},
		PrivateMessage: func(evt appmodels.Event) {
			// Registered but unused by the current flows.
			a.log.Debug().Str("type", evt.Type).Msg("tui: private message event")
		},
	})
}

func (a *App) send(msg tea.Msg) {
	if a.program != nil {
		a.program.Send(msg)
	}
}
