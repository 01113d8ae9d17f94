package store

import (
	"io"
	"sync"

	"github.com/rs/zerolog"

	"github.com/mohamedMoujib/E-Health-sub000/internal/models"
)

// ChatAPI is the slice of the REST client the chat store calls.
type ChatAPI interface {
	GetChats() ([]models.Chat, error)
	CreateChat(patientID string) (models.Chat, error)
	GetMessages(chatID string) ([]models.Message, error)
	SendTextMessage(chatID, content string) error
	SendImageMessage(chatID, filename string, file io.Reader) error
}

// RoomJoiner is the slice of the realtime manager the chat store uses for
// room membership side effects.
type RoomJoiner interface {
	JoinRoom(chatID string) bool
	LeaveRoom(chatID string) bool
}

// ChatStore keeps the conversation list and the selected conversation's
// message thread. Message order is fetch order with socket-pushed messages
// appended at the tail; no client-side re-sorting happens, so out-of-order
// pushes render out of order.
type ChatStore struct {
	mu       sync.Mutex
	api      ChatAPI
	rooms    RoomJoiner
	log      zerolog.Logger
	chats    []models.Chat
	selected *models.Chat
	messages []models.Message
	sending  bool
	lastErr  string
}

func NewChatStore(api ChatAPI, rooms RoomJoiner, log zerolog.Logger) *ChatStore {
	return &ChatStore{api: api, rooms: rooms, log: log}
}

// FetchChats replaces the chat collection wholesale.
func (s *ChatStore) FetchChats() error {
	chats, err := s.api.GetChats()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastErr = err.Error()
		s.log.Error().Err(err).Msg("store: chat fetch failed")
		return err
	}
	s.chats = chats
	s.lastErr = ""
	return nil
}

// SelectChat switches the active conversation, leaving the previous chat's
// socket room and joining the new one. Selecting the same chat twice is
// idempotent: no duplicate join/leave is emitted.
func (s *ChatStore) SelectChat(chat *models.Chat) {
	s.mu.Lock()
	prev := s.selected
	if prev != nil && chat != nil && prev.ID == chat.ID {
		s.mu.Unlock()
		return
	}
	s.selected = chat
	if chat != nil {
		cp := *chat
		s.selected = &cp
	}
	s.messages = nil
	s.mu.Unlock()

	if prev != nil {
		s.rooms.LeaveRoom(prev.ID)
	}
	if chat != nil {
		s.rooms.JoinRoom(chat.ID)
	}
}

// FetchMessages replaces the message list with the server's full history for
// the chat and joins its socket room so live delivery begins.
func (s *ChatStore) FetchMessages(chatID string) error {
	msgs, err := s.api.GetMessages(chatID)

	s.mu.Lock()
	if err != nil {
		s.lastErr = err.Error()
		s.mu.Unlock()
		s.log.Error().Err(err).Str("chat", chatID).Msg("store: message fetch failed")
		return err
	}
	s.messages = msgs
	s.lastErr = ""
	s.mu.Unlock()

	s.rooms.JoinRoom(chatID)
	return nil
}

// SendText issues the REST send. Success only clears the sending flag; the
// created message arrives back through the socket push path and is appended
// there, never here, avoiding a double entry with the echo.
func (s *ChatStore) SendText(chatID, content string) error {
	s.mu.Lock()
	s.sending = true
	s.mu.Unlock()

	err := s.api.SendTextMessage(chatID, content)

	s.mu.Lock()
	s.sending = false
	if err != nil {
		s.log.Warn().Err(err).Str("chat", chatID).Msg("store: send failed")
	}
	s.mu.Unlock()
	return err
}

// SendImage issues the multipart REST send, same contract as SendText.
func (s *ChatStore) SendImage(chatID, filename string, file io.Reader) error {
	s.mu.Lock()
	s.sending = true
	s.mu.Unlock()

	err := s.api.SendImageMessage(chatID, filename, file)

	s.mu.Lock()
	s.sending = false
	if err != nil {
		s.log.Warn().Err(err).Str("chat", chatID).Msg("store: image send failed")
	}
	s.mu.Unlock()
	return err
}

// OnIncomingMessage folds a socket-pushed message in. Appends to the thread
// only when the owning chat is selected and the id is not already present;
// always updates the owning chat's lastMessage summary so the sidebar
// preview moves even for unselected conversations.
func (s *ChatStore) OnIncomingMessage(msg models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.selected != nil && s.selected.ID == msg.ChatID {
		duplicate := false
		for _, existing := range s.messages {
			if existing.ID == msg.ID {
				duplicate = true
				break
			}
		}
		if !duplicate {
			s.messages = append(s.messages, msg)
		}
	}

	for i := range s.chats {
		if s.chats[i].ID == msg.ChatID {
			s.chats[i].LastMessage = msg.Summary()
			break
		}
	}
}

// CreateChat opens a conversation with the patient and appends it locally.
func (s *ChatStore) CreateChat(patientID string) (models.Chat, error) {
	chat, err := s.api.CreateChat(patientID)
	if err != nil {
		s.mu.Lock()
		s.lastErr = err.Error()
		s.mu.Unlock()
		return models.Chat{}, err
	}
	s.mu.Lock()
	s.chats = append(s.chats, chat)
	s.mu.Unlock()
	return chat, nil
}

// Chats returns a copy of the conversation list.
func (s *ChatStore) Chats() []models.Chat {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Chat(nil), s.chats...)
}

// Messages returns a copy of the selected conversation's thread.
func (s *ChatStore) Messages() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Message(nil), s.messages...)
}

// Selected returns the active chat, nil when none is open.
func (s *ChatStore) Selected() *models.Chat {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == nil {
		return nil
	}
	cp := *s.selected
	return &cp
}

func (s *ChatStore) Sending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sending
}

func (s *ChatStore) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}
