// Package xp keeps the per-user experience point totals.
package xp

import (
	"sort"
	"sync"

	"github.com/PancyStudios/VeilleBot/pkg/errors"
	"github.com/PancyStudios/VeilleBot/pkg/leveling"
)

// Store persists the full points mapping.
type Store interface {
	Load() map[string]int
	Save(map[string]int) error
}

// Entry is one line of the leaderboard
type Entry struct {
	UserID string `json:"user_id"`
	Points int    `json:"points"`
	Level  int    `json:"level"`
}

// Tracker owns the points mapping. Every mutation is written through to the
// store before it returns.
type Tracker struct {
	mu       sync.Mutex
	points   map[string]int
	store    Store
	perLevel int
}

// NewTracker loads the mapping from store.
func NewTracker(store Store, perLevel int) *Tracker {
	return &Tracker{
		points:   store.Load(),
		store:    store,
		perLevel: perLevel,
	}
}

// PerLevel returns the points needed per level
func (t *Tracker) PerLevel() int {
	return t.perLevel
}

// Points returns the stored total for user, 0 when unknown.
func (t *Tracker) Points(user string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.points[user]
}

// Level returns the level derived from the user's total.
func (t *Tracker) Level(user string) int {
	return leveling.Level(t.Points(user), t.perLevel)
}

// Award adds gain to user and persists the mapping. If the save fails the
// in-memory total is restored and an IO error is returned.
func (t *Tracker) Award(user string, gain int) (leveling.Gain, error) {
	if gain <= 0 {
		return leveling.Gain{}, errors.Errorf(errors.KindInvalid, "xp.award", "gain must be positive, got %d", gain)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	prev, existed := t.points[user]
	g := leveling.ApplyGain(prev, gain, t.perLevel)
	t.points[user] = g.NewPoints

	if err := t.store.Save(t.points); err != nil {
		if existed {
			t.points[user] = prev
		} else {
			delete(t.points, user)
		}
		return leveling.Gain{}, errors.E(errors.KindIO, "xp.award", err)
	}
	return g, nil
}

// Leaderboard returns the top n users by points, ties broken by user id.
// n <= 0 returns everyone.
func (t *Tracker) Leaderboard(n int) []Entry {
	t.mu.Lock()
	entries := make([]Entry, 0, len(t.points))
	for id, p := range t.points {
		entries = append(entries, Entry{UserID: id, Points: p, Level: leveling.Level(p, t.perLevel)})
	}
	t.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		return entries[i].UserID < entries[j].UserID
	})

	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// Count returns the number of tracked users
func (t *Tracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.points)
}

// Flush writes the current mapping to the store.
func (t *Tracker) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.store.Save(t.points); err != nil {
		return errors.E(errors.KindIO, "xp.flush", err)
	}
	return nil
}
