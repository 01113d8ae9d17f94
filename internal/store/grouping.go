package store

import (
	"time"

	"github.com/mohamedMoujib/E-Health-sub000/internal/models"
)

// Groups is the Today / Yesterday / Earlier partition the notification panel
// renders. It is a pure projection recomputed against the given clock, never
// stored.
type Groups struct {
	Today     []models.Notification
	Yesterday []models.Notification
	Earlier   []models.Notification
}

// GroupByDay partitions notifications by calendar day relative to now,
// preserving their order within each bucket.
func GroupByDay(items []models.Notification, now time.Time) Groups {
	today := truncateToDay(now)
	yesterday := today.AddDate(0, 0, -1)

	var g Groups
	for _, n := range items {
		day := truncateToDay(n.CreatedAt.In(now.Location()))
		switch {
		case day.Equal(today):
			g.Today = append(g.Today, n)
		case day.Equal(yesterday):
			g.Yesterday = append(g.Yesterday, n)
		default:
			g.Earlier = append(g.Earlier, n)
		}
	}
	return g
}

// Flatten returns the partition in render order: Today, then Yesterday,
// then Earlier. Callers that map list positions to items must index this
// order, not the ungrouped collection.
func (g Groups) Flatten() []models.Notification {
	out := make([]models.Notification, 0, len(g.Today)+len(g.Yesterday)+len(g.Earlier))
	out = append(out, g.Today...)
	out = append(out, g.Yesterday...)
	return append(out, g.Earlier...)
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
