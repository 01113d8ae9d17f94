// Package store holds the client-side state that both REST fetches and
// socket pushes fold into: the notification collection with its unread
// bookkeeping, and the chat list with the active conversation's messages.
package store

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/mohamedMoujib/E-Health-sub000/internal/models"
)

// NotificationAPI is the slice of the REST client the notification store
// mirrors its mutations to.
type NotificationAPI interface {
	ReloadNotifications() ([]models.Notification, error)
	MarkNotificationRead(id string) error
	MarkAllNotificationsRead() error
	DeleteNotification(id string) error
}

// NotificationStore keeps the ordered notification collection
// (most-recent-first) and an unread counter that always equals the number of
// held items with IsRead == false.
type NotificationStore struct {
	mu      sync.Mutex
	api     NotificationAPI
	log     zerolog.Logger
	items   []models.Notification
	unread  int
	lastErr string
	loading bool
}

func NewNotificationStore(api NotificationAPI, log zerolog.Logger) *NotificationStore {
	return &NotificationStore{api: api, log: log}
}

// Seed preloads the collection (e.g. from the local cache) without touching
// the server. A later FetchAll replaces it wholesale.
func (s *NotificationStore) Seed(items []models.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append([]models.Notification(nil), items...)
	s.unread = countUnread(s.items)
}

// FetchAll replaces the entire collection with the server's result and
// recomputes the unread count. The fetch bypasses any client-side response
// cache: a refresh must observe pushes that arrived after the last fetch.
// On failure the existing collection stays untouched and the error is
// recorded.
func (s *NotificationStore) FetchAll() error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	items, err := s.api.ReloadNotifications()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.lastErr = err.Error()
		s.log.Error().Err(err).Msg("store: notification fetch failed")
		return err
	}
	s.items = items
	s.unread = countUnread(items)
	s.lastErr = ""
	return nil
}

// PushIncoming folds a socket-delivered notification in at the front of the
// sequence. Unread bookkeeping is O(1); the collection is not re-scanned.
func (s *NotificationStore) PushIncoming(n models.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append([]models.Notification{n}, s.items...)
	if !n.IsRead {
		s.unread++
	}
}

// MarkRead sets the notification read, locating it by either identity alias.
// The local mutation is optimistic; the mirrored REST call's failure is
// logged but not rolled back.
func (s *NotificationStore) MarkRead(id string) {
	s.mu.Lock()
	mutated := false
	for i := range s.items {
		if s.items[i].Matches(id) {
			if !s.items[i].IsRead {
				s.items[i].IsRead = true
				if s.unread > 0 {
					s.unread--
				}
				mutated = true
			}
			break
		}
	}
	s.mu.Unlock()

	if !mutated {
		return
	}
	if err := s.api.MarkNotificationRead(id); err != nil {
		// Accepted drift until the next full fetch.
		s.log.Warn().Err(err).Str("id", id).Msg("store: mark-read not mirrored to server")
	}
}

// MarkAllRead flags every item read and resets the unread count.
func (s *NotificationStore) MarkAllRead() {
	s.mu.Lock()
	for i := range s.items {
		s.items[i].IsRead = true
	}
	s.unread = 0
	s.mu.Unlock()

	if err := s.api.MarkAllNotificationsRead(); err != nil {
		s.log.Warn().Err(err).Msg("store: mark-all-read not mirrored to server")
	}
}

// DeleteOne removes the item by either identity alias, adjusting the unread
// count when the removed item was unread.
func (s *NotificationStore) DeleteOne(id string) {
	s.mu.Lock()
	removed := false
	for i := range s.items {
		if s.items[i].Matches(id) {
			if !s.items[i].IsRead && s.unread > 0 {
				s.unread--
			}
			s.items = append(s.items[:i], s.items[i+1:]...)
			removed = true
			break
		}
	}
	s.mu.Unlock()

	if !removed {
		return
	}
	if err := s.api.DeleteNotification(id); err != nil {
		s.log.Warn().Err(err).Str("id", id).Msg("store: delete not mirrored to server")
	}
}

// Items returns a copy of the collection, most recent first.
func (s *NotificationStore) Items() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Notification(nil), s.items...)
}

func (s *NotificationStore) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unread
}

func (s *NotificationStore) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *NotificationStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func countUnread(items []models.Notification) int {
	n := 0
	for _, it := range items {
		if !it.IsRead {
			n++
		}
	}
	return n
}
