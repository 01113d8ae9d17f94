// Package session persists the client's durable state: the token pair, the
// identity of the signed-in doctor, and the logged-out flag that gates
// realtime reconnection across process restarts.
package session

import (
	"errors"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mohamedMoujib/E-Health-sub000/internal/models"
)

// Record is the single session row. Any code path may set LoggedOut; only a
// successful login clears it.
type Record struct {
	ID           uint `gorm:"primaryKey"`
	UserID       string
	UserName     string
	AccessToken  string
	RefreshToken string
	LoggedOut    bool
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// CachedNotification mirrors the last fetched notification list so the UI
// has something to show before the first fetch completes.
type CachedNotification struct {
	ID            string `gorm:"primaryKey"`
	LegacyID      string
	Title         string
	Content       string
	Type          string
	IsRead        bool
	RelatedEntity string
	Sender        string
	CreatedAt     time.Time
}

type Store struct {
	db *gorm.DB
}

// Open creates or opens the session database under dataDir.
func Open(dataDir string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(filepath.Join(dataDir, "session.db")), &gorm.Config{
		Logger: logger.Discard,
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&Record{}, &CachedNotification{}); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Current returns the session row, zero-valued if none exists yet.
func (s *Store) Current() (Record, error) {
	var rec Record
	err := s.db.First(&rec, 1).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Record{}, nil
	}
	return rec, err
}

// Save upserts the session row. Called on login success and token refresh.
func (s *Store) Save(rec Record) error {
	rec.ID = 1
	return s.db.Save(&rec).Error
}

// SetLoggedOut flips the durable logged-out flag without touching the rest
// of the row.
func (s *Store) SetLoggedOut(v bool) error {
	rec, err := s.Current()
	if err != nil {
		return err
	}
	rec.LoggedOut = v
	return s.Save(rec)
}

// LoggedOut reads the durable flag. Unreadable state counts as logged out,
// which at worst suppresses a reconnect.
func (s *Store) LoggedOut() bool {
	rec, err := s.Current()
	if err != nil {
		return true
	}
	return rec.LoggedOut
}

// SetTokens updates the stored token pair after a refresh.
func (s *Store) SetTokens(access, refresh string) error {
	rec, err := s.Current()
	if err != nil {
		return err
	}
	rec.AccessToken = access
	rec.RefreshToken = refresh
	return s.Save(rec)
}

// Clear wipes the credentials and marks the session logged out.
func (s *Store) Clear() error {
	rec, err := s.Current()
	if err != nil {
		return err
	}
	rec.UserID = ""
	rec.UserName = ""
	rec.AccessToken = ""
	rec.RefreshToken = ""
	rec.LoggedOut = true
	return s.Save(rec)
}

// SaveNotifications replaces the cached notification list.
func (s *Store) SaveNotifications(items []models.Notification) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&CachedNotification{}).Error; err != nil {
			return err
		}
		for _, n := range items {
			row := CachedNotification{
				ID:            n.ID,
				LegacyID:      n.LegacyID,
				Title:         n.Title,
				Content:       n.Content,
				Type:          string(n.Type),
				IsRead:        n.IsRead,
				RelatedEntity: n.RelatedEntity,
				Sender:        n.Sender,
				CreatedAt:     n.CreatedAt,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadNotifications returns the cached list, most recent first.
func (s *Store) LoadNotifications() ([]models.Notification, error) {
	var rows []CachedNotification
	if err := s.db.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]models.Notification, 0, len(rows))
	for _, r := range rows {
		items = append(items, models.Notification{
			ID:            r.ID,
			LegacyID:      r.LegacyID,
			Title:         r.Title,
			Content:       r.Content,
			Type:          models.ParseNotificationType(r.Type),
			IsRead:        r.IsRead,
			RelatedEntity: r.RelatedEntity,
			Sender:        r.Sender,
			CreatedAt:     r.CreatedAt,
		})
	}
	return items, nil
}
