package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/mohamedMoujib/E-Health-sub000/internal/models"
)

type fakeGate struct {
	mu        sync.Mutex
	loggedOut bool
}

func (g *fakeGate) LoggedOut() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.loggedOut
}

func (g *fakeGate) SetLoggedOut(v bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.loggedOut = v
	return nil
}

// wsTestServer accepts websocket upgrades, records every received event and
// keeps the server-side connections around so tests can push frames or drop
// the link.
type wsTestServer struct {
	srv    *httptest.Server
	events chan models.Event
	dials  int32

	// failFrom/failTo reject dials in that 1-based range with a 503, to
	// exercise retry behavior.
	failFrom int32
	failTo   int32

	mu    sync.Mutex
	conns []*websocket.Conn
}

func newWSTestServer(t *testing.T) *wsTestServer {
	t.Helper()
	upgrader := websocket.Upgrader{}
	s := &wsTestServer{events: make(chan models.Event, 32)}
	s.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&s.dials, 1)
		if from := atomic.LoadInt32(&s.failFrom); from > 0 && n >= from && n <= atomic.LoadInt32(&s.failTo) {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		s.mu.Lock()
		s.conns = append(s.conns, conn)
		s.mu.Unlock()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var evt models.Event
			if json.Unmarshal(data, &evt) == nil {
				s.events <- evt
			}
		}
	}))
	t.Cleanup(s.srv.Close)
	return s
}

func (s *wsTestServer) dialCount() int {
	return int(atomic.LoadInt32(&s.dials))
}

func (s *wsTestServer) push(t *testing.T, eventType string, payload any) {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.conns) == 0 {
		t.Fatal("no server-side connection to push on")
	}
	evt, err := models.NewEvent(eventType, payload)
	if err != nil {
		t.Fatalf("build event: %v", err)
	}
	if err := s.conns[len(s.conns)-1].WriteJSON(evt); err != nil {
		t.Fatalf("server push: %v", err)
	}
}

func (s *wsTestServer) dropAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.conns {
		_ = c.Close()
	}
	s.conns = nil
}

func (s *wsTestServer) waitEvent(t *testing.T, eventType string) models.Event {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case evt := <-s.events:
			if evt.Type == eventType {
				return evt
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %q", eventType)
		}
	}
}

func newTestManager(t *testing.T, srv *wsTestServer, gate *fakeGate) *Manager {
	t.Helper()
	m := NewManager(Options{
		URL:                srv.srv.URL,
		ReconnectBaseDelay: 10 * time.Millisecond,
		ReconnectMaxDelay:  50 * time.Millisecond,
	}, gate, zerolog.Nop())
	t.Cleanup(func() {
		m.mu.Lock()
		m.teardownLocked()
		m.mu.Unlock()
	})
	return m
}

func TestConnectSendsAuthenticate(t *testing.T) {
	srv := newWSTestServer(t)
	gate := &fakeGate{loggedOut: true}
	m := newTestManager(t, srv, gate)

	conn := m.Connect(models.User{ID: "doc-1"})
	if conn == nil {
		t.Fatal("connect returned nil")
	}
	if gate.LoggedOut() {
		t.Error("connect must clear the logged-out flag")
	}
	if !m.IsConnected() {
		t.Error("manager should report connected")
	}

	evt := srv.waitEvent(t, models.CommandAuthenticate)
	var auth models.AuthPayload
	if err := json.Unmarshal(evt.Data, &auth); err != nil {
		t.Fatalf("auth payload: %v", err)
	}
	if auth.UserID != "doc-1" {
		t.Errorf("authenticate userId = %q, want doc-1", auth.UserID)
	}
}

func TestConnectWithoutUserIdentity(t *testing.T) {
	srv := newWSTestServer(t)
	m := newTestManager(t, srv, &fakeGate{})

	if conn := m.Connect(models.User{}); conn != nil {
		t.Error("connect without a user id should return nil")
	}
	if srv.dialCount() != 0 {
		t.Errorf("dials = %d, want 0", srv.dialCount())
	}
}

func TestOperationsWithoutConnection(t *testing.T) {
	srv := newWSTestServer(t)
	m := newTestManager(t, srv, &fakeGate{})

	if m.RegisterHandlers(Handlers{}) {
		t.Error("RegisterHandlers should fail without a connection")
	}
	if m.JoinRoom("chat-1") {
		t.Error("JoinRoom should fail without a connection")
	}
	if m.LeaveRoom("chat-1") {
		t.Error("LeaveRoom should fail without a connection")
	}
	m.Disconnect() // must not panic with nothing to tear down
}

func TestJoinAndLeaveRoom(t *testing.T) {
	srv := newWSTestServer(t)
	m := newTestManager(t, srv, &fakeGate{})
	if m.Connect(models.User{ID: "doc-1"}) == nil {
		t.Fatal("connect failed")
	}
	srv.waitEvent(t, models.CommandAuthenticate)

	if !m.JoinRoom("chat-1") {
		t.Fatal("join failed")
	}
	evt := srv.waitEvent(t, models.CommandJoinChat)
	var room models.RoomPayload
	if err := json.Unmarshal(evt.Data, &room); err != nil {
		t.Fatalf("room payload: %v", err)
	}
	if room.ChatID != "chat-1" {
		t.Errorf("join chatId = %q, want chat-1", room.ChatID)
	}

	if !m.LeaveRoom("chat-1") {
		t.Fatal("leave failed")
	}
	srv.waitEvent(t, models.CommandLeaveChat)
}

func TestDisconnectThenReconnectYieldsSingleConnection(t *testing.T) {
	srv := newWSTestServer(t)
	gate := &fakeGate{}
	m := newTestManager(t, srv, gate)

	if m.Connect(models.User{ID: "doc-1"}) == nil {
		t.Fatal("first connect failed")
	}
	srv.waitEvent(t, models.CommandAuthenticate)

	m.Disconnect()
	if !gate.LoggedOut() {
		t.Error("disconnect must set the logged-out flag")
	}
	if m.IsConnected() {
		t.Error("manager should report disconnected")
	}
	m.Disconnect() // idempotent

	if m.Connect(models.User{ID: "doc-1"}) == nil {
		t.Fatal("second connect failed")
	}
	srv.waitEvent(t, models.CommandAuthenticate)
	if gate.LoggedOut() {
		t.Error("reconnecting must clear the logged-out flag")
	}
	if m.Conn() == nil {
		t.Fatal("no live connection after reconnect")
	}
	if srv.dialCount() != 2 {
		t.Errorf("dials = %d, want 2", srv.dialCount())
	}
}

func TestRegisterHandlersReplacesPreviousSet(t *testing.T) {
	srv := newWSTestServer(t)
	m := newTestManager(t, srv, &fakeGate{})
	if m.Connect(models.User{ID: "doc-1"}) == nil {
		t.Fatal("connect failed")
	}
	srv.waitEvent(t, models.CommandAuthenticate)

	first := make(chan models.Notification, 1)
	second := make(chan models.Notification, 1)
	m.RegisterHandlers(Handlers{NewNotification: func(n models.Notification) { first <- n }})
	m.RegisterHandlers(Handlers{NewNotification: func(n models.Notification) { second <- n }})

	srv.push(t, models.EventNewNotification, models.Notification{ID: "n-1", Title: "hello"})

	select {
	case n := <-second:
		if n.ID != "n-1" {
			t.Errorf("notification id = %q, want n-1", n.ID)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("replacement handler never fired")
	}
	select {
	case <-first:
		t.Error("stale handler fired; registration must replace, not stack")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestMalformedFramesAreDropped(t *testing.T) {
	srv := newWSTestServer(t)
	m := newTestManager(t, srv, &fakeGate{})
	if m.Connect(models.User{ID: "doc-1"}) == nil {
		t.Fatal("connect failed")
	}
	srv.waitEvent(t, models.CommandAuthenticate)

	got := make(chan models.Message, 1)
	m.RegisterHandlers(Handlers{NewMessage: func(msg models.Message) { got <- msg }})

	srv.mu.Lock()
	conn := srv.conns[len(srv.conns)-1]
	srv.mu.Unlock()
	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatalf("server push: %v", err)
	}
	srv.push(t, models.EventNewMessage, models.Message{ID: "m-1", ChatID: "chat-1", Content: "hi"})

	select {
	case msg := <-got:
		if msg.ID != "m-1" {
			t.Errorf("message id = %q, want m-1", msg.ID)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("connection did not survive the malformed frame")
	}
}

func TestReconnectReauthenticates(t *testing.T) {
	srv := newWSTestServer(t)
	gate := &fakeGate{}
	m := newTestManager(t, srv, gate)

	if m.Connect(models.User{ID: "doc-1"}) == nil {
		t.Fatal("connect failed")
	}
	srv.waitEvent(t, models.CommandAuthenticate)

	srv.dropAll()

	// The dropped link must trigger a fresh dial plus a repeated
	// authenticate command.
	srv.waitEvent(t, models.CommandAuthenticate)
	if srv.dialCount() < 2 {
		t.Errorf("dials = %d, want at least 2", srv.dialCount())
	}
	if gate.LoggedOut() {
		t.Error("an unplanned drop must not set the logged-out flag")
	}
}

func TestReconnectRetriesAcrossFailedDials(t *testing.T) {
	srv := newWSTestServer(t)
	gate := &fakeGate{}
	m := newTestManager(t, srv, gate)

	if m.Connect(models.User{ID: "doc-1"}) == nil {
		t.Fatal("connect failed")
	}
	srv.waitEvent(t, models.CommandAuthenticate)

	// Dials 2 and 3 are refused; the retry loop must keep going until
	// dial 4 lands and re-authenticates.
	atomic.StoreInt32(&srv.failFrom, 2)
	atomic.StoreInt32(&srv.failTo, 3)
	srv.dropAll()

	srv.waitEvent(t, models.CommandAuthenticate)
	if srv.dialCount() < 4 {
		t.Errorf("dials = %d, want at least 4 (two refused attempts plus the recovery)", srv.dialCount())
	}
	if !m.IsConnected() {
		t.Error("manager should report connected after the retries")
	}
}

func TestConnectSupersedesPendingReconnect(t *testing.T) {
	srv := newWSTestServer(t)
	gate := &fakeGate{}
	m := NewManager(Options{
		URL:                srv.srv.URL,
		ReconnectBaseDelay: 500 * time.Millisecond,
		ReconnectMaxDelay:  time.Second,
	}, gate, zerolog.Nop())
	t.Cleanup(func() {
		m.mu.Lock()
		m.teardownLocked()
		m.mu.Unlock()
	})

	if m.Connect(models.User{ID: "doc-1"}) == nil {
		t.Fatal("connect failed")
	}
	srv.waitEvent(t, models.CommandAuthenticate)

	// Drop the link so a reconnect attempt starts its backoff sleep, then
	// connect explicitly while it is still sleeping.
	srv.dropAll()
	if m.Connect(models.User{ID: "doc-1"}) == nil {
		t.Fatal("second connect failed")
	}
	srv.waitEvent(t, models.CommandAuthenticate)

	// Once the stale attempt wakes it must abandon itself without another
	// dial and without tearing down the fresh connection.
	time.Sleep(1200 * time.Millisecond)
	if srv.dialCount() != 2 {
		t.Errorf("dials = %d, want 2 (stale attempt must not dial)", srv.dialCount())
	}
	if !m.IsConnected() {
		t.Error("fresh connection was torn down by the stale attempt")
	}

	got := make(chan models.Notification, 1)
	m.RegisterHandlers(Handlers{NewNotification: func(n models.Notification) { got <- n }})
	srv.push(t, models.EventNewNotification, models.Notification{ID: "n-live"})
	select {
	case n := <-got:
		if n.ID != "n-live" {
			t.Errorf("notification id = %q", n.ID)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("fresh connection is not receiving pushes")
	}
}

func TestNoReconnectAfterLogout(t *testing.T) {
	srv := newWSTestServer(t)
	gate := &fakeGate{}
	m := newTestManager(t, srv, gate)

	if m.Connect(models.User{ID: "doc-1"}) == nil {
		t.Fatal("connect failed")
	}
	srv.waitEvent(t, models.CommandAuthenticate)

	if err := gate.SetLoggedOut(true); err != nil {
		t.Fatal(err)
	}
	srv.dropAll()

	time.Sleep(200 * time.Millisecond)
	if srv.dialCount() != 1 {
		t.Errorf("dials = %d, want 1 (logged out sessions never reconnect)", srv.dialCount())
	}
	if m.IsConnected() {
		t.Error("manager should report disconnected")
	}
}

func TestBackoffDelayGrowsAndCaps(t *testing.T) {
	r := newReconnector(10*time.Millisecond, 40*time.Millisecond, 0)
	prev := time.Duration(0)
	for i := 0; i < 6; i++ {
		d := r.nextDelay()
		if d > 40*time.Millisecond {
			t.Errorf("attempt %d: delay %v exceeds cap", i, d)
		}
		if i < 2 && d < prev {
			t.Errorf("attempt %d: delay %v shrank below %v before the cap", i, d, prev)
		}
		prev = d
	}
}

func TestBackoffAttemptLimit(t *testing.T) {
	r := newReconnector(time.Millisecond, time.Millisecond, 2)
	if !r.shouldReconnect() {
		t.Fatal("fresh reconnector should allow attempts")
	}
	r.nextDelay()
	r.nextDelay()
	if r.shouldReconnect() {
		t.Error("attempt limit should stop further reconnects")
	}
	r.reset()
	if !r.shouldReconnect() {
		t.Error("reset should re-arm the reconnector")
	}
}
