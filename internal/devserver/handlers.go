package devserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid/v5"

	"github.com/mohamedMoujib/E-Health-sub000/internal/models"
	"github.com/mohamedMoujib/E-Health-sub000/internal/utils"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(gin.H{"Status": "ok"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Unable to decode request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	s.mu.Lock()
	doctor := s.doctor
	s.mu.Unlock()

	// The stub accepts any password for the seeded account.
	if body.Email != doctor.Email {
		http.Error(w, "User not found", http.StatusUnauthorized)
		return
	}

	access, err := utils.GenerateJWTToken(s.secret, doctor.ID, doctor.Name, 15*time.Minute)
	if err != nil {
		http.Error(w, "Unable to issue token", http.StatusInternalServerError)
		return
	}
	refresh, err := utils.GenerateJWTToken(s.secret, doctor.ID, doctor.Name, 7*24*time.Hour)
	if err != nil {
		http.Error(w, "Unable to issue token", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(gin.H{
		"user":         doctor,
		"accessToken":  access,
		"refreshToken": refresh,
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Unable to decode request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	claims, err := utils.ValidateJWTToken(s.secret, body.RefreshToken)
	if err != nil {
		http.Error(w, "Invalid refresh token", http.StatusUnauthorized)
		return
	}
	userID, _ := claims["userID"].(string)
	username, _ := claims["username"].(string)

	access, err := utils.GenerateJWTToken(s.secret, userID, username, 15*time.Minute)
	if err != nil {
		http.Error(w, "Unable to issue token", http.StatusInternalServerError)
		return
	}
	refresh, err := utils.GenerateJWTToken(s.secret, userID, username, 7*24*time.Hour)
	if err != nil {
		http.Error(w, "Unable to issue token", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(gin.H{
		"accessToken":  access,
		"refreshToken": refresh,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(gin.H{"Status": "success"})
}

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value(userIDKey).(string)
	s.mu.Lock()
	items := append([]models.Notification(nil), s.notifications[userID]...)
	s.mu.Unlock()
	json.NewEncoder(w).Encode(gin.H{"notifications": items})
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value(userIDKey).(string)
	id := r.PathValue("id")

	s.mu.Lock()
	found := false
	items := s.notifications[userID]
	for i := range items {
		if items[i].Matches(id) {
			items[i].IsRead = true
			found = true
			break
		}
	}
	s.mu.Unlock()

	if !found {
		http.Error(w, "Notification not found", http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(gin.H{"Status": "success"})
}

func (s *Server) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value(userIDKey).(string)
	s.mu.Lock()
	items := s.notifications[userID]
	for i := range items {
		items[i].IsRead = true
	}
	s.mu.Unlock()
	json.NewEncoder(w).Encode(gin.H{"Status": "success"})
}

func (s *Server) handleDeleteNotification(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value(userIDKey).(string)
	id := r.PathValue("id")

	s.mu.Lock()
	items := s.notifications[userID]
	for i := range items {
		if items[i].Matches(id) {
			s.notifications[userID] = append(items[:i], items[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	json.NewEncoder(w).Encode(gin.H{"Status": "success"})
}

func (s *Server) handleListChats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	chats := append([]models.Chat(nil), s.chats...)
	s.mu.Unlock()
	json.NewEncoder(w).Encode(gin.H{"chats": chats})
}

func (s *Server) handleListPatients(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	patients := append([]models.Participant(nil), s.patients...)
	s.mu.Unlock()
	json.NewEncoder(w).Encode(gin.H{"patients": patients})
}

func (s *Server) handleCreateChat(w http.ResponseWriter, r *http.Request) {
	var body struct {
		PatientID string `json:"patientId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.PatientID == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, chat := range s.chats {
		if chat.Patient.ID == body.PatientID {
			http.Error(w, "Chat already exists for this patient", http.StatusConflict)
			return
		}
	}

	var patient *models.Participant
	for i := range s.patients {
		if s.patients[i].ID == body.PatientID {
			patient = &s.patients[i]
			break
		}
	}
	if patient == nil {
		http.Error(w, "Patient not found", http.StatusNotFound)
		return
	}

	id, _ := uuid.NewV4()
	chat := models.Chat{ID: "chat-" + id.String(), Patient: *patient}
	s.chats = append(s.chats, chat)
	json.NewEncoder(w).Encode(gin.H{"chat": chat})
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	chatID := r.PathValue("id")
	s.mu.Lock()
	msgs := append([]models.Message(nil), s.messages[chatID]...)
	s.mu.Unlock()
	json.NewEncoder(w).Encode(gin.H{"messages": msgs})
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value(userIDKey).(string)
	chatID := r.PathValue("id")

	var body struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Content == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	msg, ok := s.appendMessage(userID, chatID, body.Content)
	if !ok {
		http.Error(w, "Chat not found", http.StatusNotFound)
		return
	}

	// The echo over the socket is the client's append path.
	s.hub.BroadcastToRoom(chatID, models.EventNewMessage, msg)
	s.pushMessageNotification(msg)

	json.NewEncoder(w).Encode(gin.H{"Status": "success", "message": msg})
}

func (s *Server) handleSendImage(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value(userIDKey).(string)
	chatID := r.PathValue("id")

	file, header, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "Missing image file", http.StatusBadRequest)
		return
	}
	file.Close()

	// The stub stores no bytes; the message content carries the path the
	// real server would have returned.
	content := fmt.Sprintf("uploads/%d_%s", time.Now().UnixNano(), header.Filename)

	msg, ok := s.appendImageMessage(userID, chatID, content)
	if !ok {
		http.Error(w, "Chat not found", http.StatusNotFound)
		return
	}

	s.hub.BroadcastToRoom(chatID, models.EventNewMessage, msg)
	s.pushMessageNotification(msg)

	json.NewEncoder(w).Encode(gin.H{"Status": "success", "message": msg})
}

func (s *Server) appendMessage(senderID, chatID, content string) (models.Message, bool) {
	return s.storeMessage(senderID, chatID, content, models.MessageText)
}

func (s *Server) appendImageMessage(senderID, chatID, content string) (models.Message, bool) {
	return s.storeMessage(senderID, chatID, content, models.MessageImage)
}

func (s *Server) storeMessage(senderID, chatID, content string, msgType models.MessageType) (models.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var chat *models.Chat
	for i := range s.chats {
		if s.chats[i].ID == chatID {
			chat = &s.chats[i]
			break
		}
	}
	if chat == nil {
		return models.Message{}, false
	}

	id, _ := uuid.NewV4()
	msg := models.Message{
		ID:        "msg-" + id.String(),
		ChatID:    chatID,
		Sender:    senderID,
		Content:   content,
		Type:      msgType,
		Timestamp: time.Now(),
	}
	s.messages[chatID] = append(s.messages[chatID], msg)
	chat.LastMessage = msg.Summary()
	return msg, true
}

// pushMessageNotification notifies the doctor about patient traffic; in the
// stub the doctor is the only push audience.
func (s *Server) pushMessageNotification(msg models.Message) {
	s.mu.Lock()
	doctor := s.doctor
	s.mu.Unlock()
	if msg.Sender == doctor.ID {
		return
	}

	id, _ := uuid.NewV4()
	n := models.Notification{
		ID:            "ntf-" + id.String(),
		Title:         "New message",
		Content:       msg.Content,
		Type:          models.NotificationMessage,
		CreatedAt:     time.Now(),
		RelatedEntity: msg.ChatID,
		Sender:        msg.Sender,
	}
	s.mu.Lock()
	s.notifications[doctor.ID] = append([]models.Notification{n}, s.notifications[doctor.ID]...)
	s.mu.Unlock()

	s.hub.PushToUser(doctor.ID, models.EventNewNotification, n)
}
