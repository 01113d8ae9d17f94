// Package realtime owns the single persistent server connection: one live
// channel per logged-in session, re-creatable across logins, torn down for
// good once the durable logged-out flag is set.
package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	stdpath "path"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/mohamedMoujib/E-Health-sub000/internal/models"
)

type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateReconnecting State = "reconnecting"
)

// SessionGate is the durable logged-out flag the manager consults before any
// connect or reconnect attempt.
type SessionGate interface {
	LoggedOut() bool
	SetLoggedOut(bool) error
}

// Handlers holds the push-event callbacks. RegisterHandlers replaces the
// whole set, so repeated registration never stacks duplicate callbacks.
type Handlers struct {
	NewMessage      func(models.Message)
	NewNotification func(models.Notification)
	PrivateMessage  func(models.Event)
}

type Options struct {
	// URL is the server base URL; http(s) schemes are rewritten to ws(s).
	URL string
	// TokenSource supplies the current bearer token at dial time, so a
	// reconnect after a refresh picks up the new token.
	TokenSource func() string

	ReconnectBaseDelay   time.Duration
	ReconnectMaxDelay    time.Duration
	MaxReconnectAttempts int

	Dialer *websocket.Dialer
}

type Manager struct {
	mu     sync.Mutex
	wmu    sync.Mutex
	opts   Options
	gate   SessionGate
	log    zerolog.Logger
	conn   *websocket.Conn
	state  State
	user   models.User
	cancel context.CancelFunc
	recon  *reconnector

	// gen counts installed connections. A reconnect attempt snapshots it
	// and abandons itself when a newer connection superseded it meanwhile.
	gen uint64

	hmu      sync.RWMutex
	handlers Handlers
}

func NewManager(opts Options, gate SessionGate, log zerolog.Logger) *Manager {
	if opts.Dialer == nil {
		opts.Dialer = websocket.DefaultDialer
	}
	return &Manager{
		opts:  opts,
		gate:  gate,
		log:   log,
		state: StateDisconnected,
		recon: newReconnector(opts.ReconnectBaseDelay, opts.ReconnectMaxDelay, opts.MaxReconnectAttempts),
	}
}

// Connect clears the logged-out flag, tears down any previous connection and
// opens a new one scoped to the given user. After the handshake it sends the
// explicit authenticate command. Returns nil (and logs) when no user
// identity is available or the dial fails; it never panics, since UI code
// calls it opportunistically.
func (m *Manager) Connect(user models.User) *websocket.Conn {
	if user.ID == "" {
		m.log.Warn().Msg("realtime: connect called without a user identity")
		return nil
	}
	if err := m.gate.SetLoggedOut(false); err != nil {
		m.log.Error().Err(err).Msg("realtime: failed to clear logged-out flag")
		return nil
	}

	m.mu.Lock()
	m.teardownLocked()
	m.state = StateConnecting
	m.user = user
	m.mu.Unlock()

	conn, err := m.dial()
	if err != nil {
		m.log.Error().Err(err).Msg("realtime: dial failed")
		m.mu.Lock()
		m.state = StateDisconnected
		m.mu.Unlock()
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.mu.Lock()
	m.conn = conn
	m.cancel = cancel
	m.state = StateConnected
	m.gen++
	gen := m.gen
	m.mu.Unlock()
	m.recon.reset()
	m.recon.markConnected()

	if !m.authenticate() {
		m.log.Warn().Msg("realtime: authenticate command failed after handshake")
	}

	go m.readLoop(ctx, conn, gen)

	m.log.Info().Str("user", user.ID).Msg("realtime: connected")
	return conn
}

// Disconnect sets the durable logged-out flag, tears down the live
// connection if present and clears the handle. Idempotent.
func (m *Manager) Disconnect() {
	if err := m.gate.SetLoggedOut(true); err != nil {
		m.log.Error().Err(err).Msg("realtime: failed to persist logged-out flag")
	}
	m.mu.Lock()
	m.teardownLocked()
	m.state = StateDisconnected
	m.mu.Unlock()
}

// RegisterHandlers replaces the registered push-event handlers. Returns
// false if no connection exists yet.
func (m *Manager) RegisterHandlers(h Handlers) bool {
	if !m.IsConnected() {
		m.log.Warn().Msg("realtime: register handlers without a connection")
		return false
	}
	m.hmu.Lock()
	m.handlers = h
	m.hmu.Unlock()
	return true
}

// JoinRoom emits a room-scoped join command. Fails gracefully without a
// connection.
func (m *Manager) JoinRoom(chatID string) bool {
	return m.Emit(models.CommandJoinChat, models.RoomPayload{ChatID: chatID})
}

// LeaveRoom emits a room-scoped leave command. Fails gracefully without a
// connection.
func (m *Manager) LeaveRoom(chatID string) bool {
	return m.Emit(models.CommandLeaveChat, models.RoomPayload{ChatID: chatID})
}

// Emit sends a client command over the live connection. Returns false (and
// logs) when no connection exists or the write fails.
func (m *Manager) Emit(eventType string, payload any) bool {
	m.mu.Lock()
	conn := m.conn
	m.mu.Unlock()
	if conn == nil {
		m.log.Warn().Str("event", eventType).Msg("realtime: emit without a connection")
		return false
	}

	evt, err := models.NewEvent(eventType, payload)
	if err != nil {
		m.log.Error().Err(err).Str("event", eventType).Msg("realtime: marshal event")
		return false
	}
	data, err := json.Marshal(evt)
	if err != nil {
		m.log.Error().Err(err).Str("event", eventType).Msg("realtime: marshal envelope")
		return false
	}

	m.wmu.Lock()
	err = conn.WriteMessage(websocket.TextMessage, data)
	m.wmu.Unlock()
	if err != nil {
		m.log.Error().Err(err).Str("event", eventType).Msg("realtime: write failed")
		return false
	}
	return true
}

// Conn returns the current connection handle, nil when disconnected.
func (m *Manager) Conn() *websocket.Conn {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conn
}

func (m *Manager) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == StateConnected && m.conn != nil
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) dial() (*websocket.Conn, error) {
	u, err := url.Parse(m.opts.URL)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else if u.Scheme == "http" {
		u.Scheme = "ws"
	}
	u.Path = stdpath.Join(u.Path, "ws")

	header := http.Header{}
	if m.opts.TokenSource != nil {
		if token := m.opts.TokenSource(); token != "" {
			header.Set("Authorization", "Bearer "+token)
		}
	}

	conn, _, err := m.opts.Dialer.Dial(u.String(), header)
	return conn, err
}

func (m *Manager) authenticate() bool {
	m.mu.Lock()
	userID := m.user.ID
	m.mu.Unlock()
	return m.Emit(models.CommandAuthenticate, models.AuthPayload{UserID: userID})
}

// teardownLocked closes the current connection. Caller holds m.mu.
func (m *Manager) teardownLocked() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	if m.conn != nil {
		_ = m.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
		_ = m.conn.Close()
		m.conn = nil
	}
}

func (m *Manager) readLoop(ctx context.Context, conn *websocket.Conn, gen uint64) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-ctx.Done():
				// Deliberate teardown.
				return
			default:
			}

			m.mu.Lock()
			if m.conn == conn {
				m.conn = nil
				m.state = StateDisconnected
			}
			m.mu.Unlock()

			if m.gate.LoggedOut() {
				m.log.Info().Msg("realtime: logged out, not reconnecting")
				return
			}
			if m.recon.shouldReconnect() {
				m.reconnect(gen)
			}
			return
		}

		var evt models.Event
		if err := json.Unmarshal(data, &evt); err != nil {
			// Malformed frames are dropped; the connection stays up.
			continue
		}
		m.dispatch(evt)
	}
}

func (m *Manager) dispatch(evt models.Event) {
	m.hmu.RLock()
	h := m.handlers
	m.hmu.RUnlock()

	switch evt.Type {
	case models.EventNewMessage:
		if h.NewMessage == nil {
			return
		}
		var msg models.Message
		if err := json.Unmarshal(evt.Data, &msg); err != nil {
			m.log.Warn().Err(err).Msg("realtime: bad newMessage payload")
			return
		}
		h.NewMessage(msg)
	case models.EventNewNotification:
		if h.NewNotification == nil {
			return
		}
		var n models.Notification
		if err := json.Unmarshal(evt.Data, &n); err != nil {
			m.log.Warn().Err(err).Msg("realtime: bad newNotification payload")
			return
		}
		h.NewNotification(n)
	case models.EventPrivateMessage:
		if h.PrivateMessage != nil {
			h.PrivateMessage(evt)
		}
	}
}

// reconnect retries the dial with growing delays until it succeeds, the
// attempt budget runs out, the session logs out, or a newer connection
// installed by Connect supersedes the attempt. gen is the generation of the
// connection whose loss triggered the attempt.
func (m *Manager) reconnect(gen uint64) {
	m.mu.Lock()
	if m.gen != gen {
		m.mu.Unlock()
		return
	}
	m.state = StateReconnecting
	m.mu.Unlock()

	for {
		delay := m.recon.nextDelay()
		m.log.Info().Dur("delay", delay).Msg("realtime: reconnecting")
		time.Sleep(delay)

		// The logged-out flag overrides any in-flight reconnection attempt.
		if m.gate.LoggedOut() {
			m.settleStale(gen)
			return
		}
		m.mu.Lock()
		superseded := m.gen != gen
		m.mu.Unlock()
		if superseded {
			return
		}

		conn, err := m.dial()
		if err != nil {
			m.log.Warn().Err(err).Msg("realtime: reconnect dial failed")
			if m.recon.shouldReconnect() {
				continue
			}
			m.settleStale(gen)
			return
		}

		ctx, cancel := context.WithCancel(context.Background())
		m.mu.Lock()
		if m.gen != gen {
			// A fresh Connect won the race; keep its connection.
			m.mu.Unlock()
			cancel()
			_ = conn.Close()
			return
		}
		m.teardownLocked()
		m.conn = conn
		m.cancel = cancel
		m.state = StateConnected
		m.gen++
		newGen := m.gen
		m.mu.Unlock()
		m.recon.markConnected()

		// Every reconnect repeats the explicit authentication step.
		if !m.authenticate() {
			m.log.Warn().Msg("realtime: re-authenticate failed after reconnect")
		}

		go m.readLoop(ctx, conn, newGen)
		return
	}
}

// settleStale marks the manager disconnected unless a newer connection took
// over while this attempt was in flight.
func (m *Manager) settleStale(gen uint64) {
	m.mu.Lock()
	if m.gen == gen {
		m.state = StateDisconnected
	}
	m.mu.Unlock()
}
