package store

import (
	"testing"
	"time"

	"github.com/mohamedMoujib/E-Health-sub000/internal/models"
)

func TestGroupByDay(t *testing.T) {
	now := time.Date(2026, 8, 30, 15, 30, 0, 0, time.UTC)

	at := func(id string, ts time.Time) models.Notification {
		return models.Notification{ID: id, CreatedAt: ts}
	}

	cases := []struct {
		name          string
		items         []models.Notification
		wantToday     int
		wantYesterday int
		wantEarlier   int
	}{
		{
			name: "same calendar day regardless of hour",
			items: []models.Notification{
				at("a", time.Date(2026, 8, 30, 0, 0, 1, 0, time.UTC)),
				at("b", time.Date(2026, 8, 30, 23, 59, 59, 0, time.UTC)),
			},
			wantToday: 2,
		},
		{
			name: "just across midnight is yesterday",
			items: []models.Notification{
				at("a", time.Date(2026, 8, 29, 23, 59, 59, 0, time.UTC)),
			},
			wantYesterday: 1,
		},
		{
			name: "two days back is earlier",
			items: []models.Notification{
				at("a", time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)),
				at("b", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)),
			},
			wantEarlier: 2,
		},
		{
			name: "mixed keeps order within buckets",
			items: []models.Notification{
				at("t1", now.Add(-time.Hour)),
				at("e1", now.AddDate(0, 0, -5)),
				at("t2", now.Add(-2*time.Hour)),
				at("y1", now.AddDate(0, 0, -1)),
			},
			wantToday:     2,
			wantYesterday: 1,
			wantEarlier:   1,
		},
		{
			name: "empty input yields empty buckets",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			g := GroupByDay(c.items, now)
			if len(g.Today) != c.wantToday {
				t.Errorf("today = %d, want %d", len(g.Today), c.wantToday)
			}
			if len(g.Yesterday) != c.wantYesterday {
				t.Errorf("yesterday = %d, want %d", len(g.Yesterday), c.wantYesterday)
			}
			if len(g.Earlier) != c.wantEarlier {
				t.Errorf("earlier = %d, want %d", len(g.Earlier), c.wantEarlier)
			}
		})
	}
}

func TestFlattenMatchesRenderOrder(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	// Deliberately interleaved: the ungrouped order differs from the
	// grouped render order.
	items := []models.Notification{
		{ID: "today-1", CreatedAt: now.Add(-time.Hour)},
		{ID: "earlier-1", CreatedAt: now.AddDate(0, 0, -4)},
		{ID: "today-2", CreatedAt: now.Add(-3 * time.Hour)},
		{ID: "yesterday-1", CreatedAt: now.AddDate(0, 0, -1)},
	}

	flat := GroupByDay(items, now).Flatten()
	want := []string{"today-1", "today-2", "yesterday-1", "earlier-1"}
	if len(flat) != len(want) {
		t.Fatalf("flattened %d items, want %d", len(flat), len(want))
	}
	for i, id := range want {
		if flat[i].ID != id {
			t.Errorf("flat[%d] = %q, want %q", i, flat[i].ID, id)
		}
	}
}

func TestGroupByDayPreservesOrder(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	items := []models.Notification{
		{ID: "first", CreatedAt: now.Add(-time.Minute)},
		{ID: "second", CreatedAt: now.Add(-2 * time.Hour)},
	}
	g := GroupByDay(items, now)
	if len(g.Today) != 2 || g.Today[0].ID != "first" || g.Today[1].ID != "second" {
		t.Errorf("today bucket = %v, want original order preserved", g.Today)
	}
}
