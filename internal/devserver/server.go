// Package devserver is a local development stub for the real E-Health
// backend: login, the REST surface the client consumes, and the realtime
// channel. It carries none of the server's business rules (booking,
// conflict detection, authorization policy) and exists so the client can be
// run and integration-tested without the production backend.
package devserver

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mohamedMoujib/E-Health-sub000/internal/models"
	"github.com/mohamedMoujib/E-Health-sub000/internal/utils"
)

type ctxKey string

const userIDKey ctxKey = "userID"

type Server struct {
	hub    *Hub
	log    zerolog.Logger
	secret string

	mu            sync.Mutex
	doctor        models.User
	patients      []models.Participant
	notifications map[string][]models.Notification
	chats         []models.Chat
	messages      map[string][]models.Message
}

func New(log zerolog.Logger) *Server {
	s := &Server{
		log:           log,
		secret:        "ehealth-dev-secret",
		notifications: make(map[string][]models.Notification),
		messages:      make(map[string][]models.Message),
	}
	s.hub = newHub(log)
	s.hub.onSendMessage = s.appendMessage
	s.seed()
	return s
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/auth/refresh", s.handleRefresh)
	mux.Handle("POST /api/auth/logout", s.auth(http.HandlerFunc(s.handleLogout)))

	mux.Handle("GET /api/notifications", s.auth(http.HandlerFunc(s.handleListNotifications)))
	mux.Handle("PATCH /api/notifications/read-all", s.auth(http.HandlerFunc(s.handleMarkAllRead)))
	mux.Handle("PATCH /api/notifications/{id}/read", s.auth(http.HandlerFunc(s.handleMarkRead)))
	mux.Handle("DELETE /api/notifications/{id}", s.auth(http.HandlerFunc(s.handleDeleteNotification)))

	mux.Handle("GET /api/chats", s.auth(http.HandlerFunc(s.handleListChats)))
	mux.Handle("POST /api/chats", s.auth(http.HandlerFunc(s.handleCreateChat)))
	mux.Handle("GET /api/patients", s.auth(http.HandlerFunc(s.handleListPatients)))
	mux.Handle("GET /api/chats/{id}/messages", s.auth(http.HandlerFunc(s.handleListMessages)))
	mux.Handle("POST /api/chats/{id}/messages", s.auth(http.HandlerFunc(s.handleSendMessage)))
	mux.Handle("POST /api/chats/{id}/messages/image", s.auth(http.HandlerFunc(s.handleSendImage)))

	mux.HandleFunc("GET /ws", s.hub.serveWS)

	return mux
}

// ListenAndServe starts the stub on addr and blocks.
func (s *Server) ListenAndServe(addr string) error {
	s.log.Info().Str("addr", addr).Msg("devserver: listening")
	return http.ListenAndServe(addr, s.Handler())
}

// Hub exposes the push side for tests.
func (s *Server) Hub() *Hub { return s.hub }

// Doctor returns the seeded doctor account.
func (s *Server) Doctor() models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doctor
}

func (s *Server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Missing authorization header", http.StatusUnauthorized)
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			http.Error(w, "Invalid token format", http.StatusUnauthorized)
			return
		}

		claims, err := utils.ValidateJWTToken(s.secret, tokenString)
		if err != nil {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}
		userID, ok := claims["userID"].(string)
		if !ok || userID == "" {
			http.Error(w, "Invalid token claims", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) seed() {
	s.doctor = models.User{
		ID:        "doc-1",
		Name:      "Dr. Amira Ben Salah",
		Email:     "doctor@ehealth.local",
		Role:      "doctor",
		CreatedAt: time.Now().AddDate(-1, 0, 0),
	}
	s.patients = []models.Participant{
		{ID: "pat-1", Name: "Youssef Trabelsi"},
		{ID: "pat-2", Name: "Leila Gharbi"},
		{ID: "pat-3", Name: "Karim Haddad"},
	}

	chat := models.Chat{ID: "chat-1", Patient: s.patients[0]}
	first := models.Message{
		ID:        "msg-1",
		ChatID:    chat.ID,
		Sender:    s.patients[0].ID,
		Content:   "Hello doctor, my results came in.",
		Type:      models.MessageText,
		Timestamp: time.Now().Add(-2 * time.Hour),
	}
	chat.LastMessage = first.Summary()
	s.chats = []models.Chat{chat}
	s.messages[chat.ID] = []models.Message{first}

	s.notifications[s.doctor.ID] = []models.Notification{
		{
			ID:        "ntf-1",
			Title:     "New message",
			Content:   "Youssef Trabelsi sent you a message",
			Type:      models.NotificationMessage,
			CreatedAt: time.Now().Add(-2 * time.Hour),
			Sender:    s.patients[0].ID,
		},
		{
			ID:        "ntf-2",
			Title:     "Appointment confirmed",
			Content:   "Tomorrow 09:30 with Leila Gharbi",
			Type:      models.NotificationAppointment,
			CreatedAt: time.Now().AddDate(0, 0, -1),
			IsRead:    true,
			Sender:    s.patients[1].ID,
		},
	}
}
