package store

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/mohamedMoujib/E-Health-sub000/internal/models"
)

type fakeNotificationAPI struct {
	items     []models.Notification
	fetchErr  error
	markErr   error
	markCalls []string
	allCalls  int
	delCalls  []string
}

func (f *fakeNotificationAPI) ReloadNotifications() ([]models.Notification, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return append([]models.Notification(nil), f.items...), nil
}

func (f *fakeNotificationAPI) MarkNotificationRead(id string) error {
	f.markCalls = append(f.markCalls, id)
	return f.markErr
}

func (f *fakeNotificationAPI) MarkAllNotificationsRead() error {
	f.allCalls++
	return nil
}

func (f *fakeNotificationAPI) DeleteNotification(id string) error {
	f.delCalls = append(f.delCalls, id)
	return nil
}

func checkUnreadInvariant(t *testing.T, s *NotificationStore) {
	t.Helper()
	want := 0
	for _, n := range s.Items() {
		if !n.IsRead {
			want++
		}
	}
	got := s.UnreadCount()
	if got != want {
		t.Fatalf("unread count = %d, but %d items are unread", got, want)
	}
	if got < 0 {
		t.Fatalf("unread count went negative: %d", got)
	}
}

func unreadNotification(id string) models.Notification {
	return models.Notification{ID: id, Title: "t-" + id}
}

func TestPushThenMarkRead(t *testing.T) {
	api := &fakeNotificationAPI{}
	s := NewNotificationStore(api, zerolog.Nop())

	s.PushIncoming(unreadNotification("n-1"))
	if s.UnreadCount() != 1 {
		t.Fatalf("unread after push = %d, want 1", s.UnreadCount())
	}

	s.MarkRead("n-1")
	items := s.Items()
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	if !items[0].IsRead {
		t.Error("item should be read")
	}
	if s.UnreadCount() != 0 {
		t.Errorf("unread = %d, want 0", s.UnreadCount())
	}
	if len(api.markCalls) != 1 || api.markCalls[0] != "n-1" {
		t.Errorf("server mark calls = %v, want [n-1]", api.markCalls)
	}
	checkUnreadInvariant(t, s)
}

func TestMarkReadByLegacyAlias(t *testing.T) {
	s := NewNotificationStore(&fakeNotificationAPI{}, zerolog.Nop())
	s.Seed([]models.Notification{{ID: "n-1", LegacyID: "legacy-1"}})

	s.MarkRead("legacy-1")
	if s.UnreadCount() != 0 {
		t.Errorf("unread = %d, want 0", s.UnreadCount())
	}
	if !s.Items()[0].IsRead {
		t.Error("item should be read when addressed by its legacy id")
	}
}

func TestMarkReadIdempotent(t *testing.T) {
	api := &fakeNotificationAPI{}
	s := NewNotificationStore(api, zerolog.Nop())
	s.PushIncoming(unreadNotification("n-1"))

	s.MarkRead("n-1")
	s.MarkRead("n-1")
	s.MarkRead("unknown")

	if s.UnreadCount() != 0 {
		t.Errorf("unread = %d, want 0", s.UnreadCount())
	}
	if len(api.markCalls) != 1 {
		t.Errorf("server mark calls = %d, want 1 (no-op mutations are not mirrored)", len(api.markCalls))
	}
	checkUnreadInvariant(t, s)
}

func TestMarkReadServerFailureKeepsLocalState(t *testing.T) {
	api := &fakeNotificationAPI{markErr: errors.New("boom")}
	s := NewNotificationStore(api, zerolog.Nop())
	s.PushIncoming(unreadNotification("n-1"))

	s.MarkRead("n-1")
	if !s.Items()[0].IsRead {
		t.Error("optimistic mutation must survive a failed server mirror")
	}
	if s.UnreadCount() != 0 {
		t.Errorf("unread = %d, want 0", s.UnreadCount())
	}
}

func TestMarkAllRead(t *testing.T) {
	api := &fakeNotificationAPI{}
	s := NewNotificationStore(api, zerolog.Nop())
	s.Seed([]models.Notification{
		{ID: "n-1"},
		{ID: "n-2", IsRead: true},
		{ID: "n-3"},
	})

	s.MarkAllRead()
	for _, n := range s.Items() {
		if !n.IsRead {
			t.Errorf("notification %s still unread", n.ID)
		}
	}
	if s.UnreadCount() != 0 {
		t.Errorf("unread = %d, want 0", s.UnreadCount())
	}
	if api.allCalls != 1 {
		t.Errorf("server mark-all calls = %d, want 1", api.allCalls)
	}
	checkUnreadInvariant(t, s)
}

func TestFetchAllReplacesCollection(t *testing.T) {
	api := &fakeNotificationAPI{}
	s := NewNotificationStore(api, zerolog.Nop())
	for i := 0; i < 5; i++ {
		s.PushIncoming(unreadNotification(string(rune('a' + i))))
	}
	if s.UnreadCount() != 5 {
		t.Fatalf("unread = %d, want 5", s.UnreadCount())
	}

	if err := s.FetchAll(); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(s.Items()) != 0 {
		t.Errorf("items = %d, want 0 after empty fetch", len(s.Items()))
	}
	if s.UnreadCount() != 0 {
		t.Errorf("unread = %d, want 0 after empty fetch", s.UnreadCount())
	}
	checkUnreadInvariant(t, s)
}

func TestFetchAllFailureKeepsCollection(t *testing.T) {
	api := &fakeNotificationAPI{fetchErr: errors.New("network down")}
	s := NewNotificationStore(api, zerolog.Nop())
	s.Seed([]models.Notification{unreadNotification("n-1")})

	if err := s.FetchAll(); err == nil {
		t.Fatal("expected fetch error")
	}
	if len(s.Items()) != 1 {
		t.Errorf("items = %d, want 1 (failure must not clear)", len(s.Items()))
	}
	if s.Err() == "" {
		t.Error("last error should be recorded")
	}
	checkUnreadInvariant(t, s)
}

func TestDeleteOne(t *testing.T) {
	api := &fakeNotificationAPI{}
	s := NewNotificationStore(api, zerolog.Nop())
	s.Seed([]models.Notification{
		unreadNotification("n-1"),
		{ID: "n-2", IsRead: true},
	})

	s.DeleteOne("n-1")
	if len(s.Items()) != 1 {
		t.Fatalf("items = %d, want 1", len(s.Items()))
	}
	if s.UnreadCount() != 0 {
		t.Errorf("unread = %d, want 0", s.UnreadCount())
	}

	s.DeleteOne("n-2")
	s.DeleteOne("n-2")
	if len(s.Items()) != 0 {
		t.Errorf("items = %d, want 0", len(s.Items()))
	}
	if s.UnreadCount() != 0 {
		t.Errorf("unread = %d, want 0 (never negative)", s.UnreadCount())
	}
	if len(api.delCalls) != 2 {
		t.Errorf("server delete calls = %v, want exactly 2", api.delCalls)
	}
	checkUnreadInvariant(t, s)
}

func TestUnreadInvariantAcrossSequence(t *testing.T) {
	s := NewNotificationStore(&fakeNotificationAPI{}, zerolog.Nop())

	s.PushIncoming(unreadNotification("a"))
	checkUnreadInvariant(t, s)
	s.PushIncoming(models.Notification{ID: "b", IsRead: true})
	checkUnreadInvariant(t, s)
	s.PushIncoming(unreadNotification("c"))
	checkUnreadInvariant(t, s)
	s.MarkRead("a")
	checkUnreadInvariant(t, s)
	s.DeleteOne("c")
	checkUnreadInvariant(t, s)
	s.MarkAllRead()
	checkUnreadInvariant(t, s)
	s.DeleteOne("a")
	checkUnreadInvariant(t, s)

	if got := s.UnreadCount(); got != 0 {
		t.Errorf("unread = %d, want 0", got)
	}
}

func TestPushIncomingPrepends(t *testing.T) {
	s := NewNotificationStore(&fakeNotificationAPI{}, zerolog.Nop())
	s.PushIncoming(unreadNotification("old"))
	s.PushIncoming(unreadNotification("new"))

	items := s.Items()
	if len(items) != 2 || items[0].ID != "new" {
		t.Errorf("items = %v, want most recent first", items)
	}
}
