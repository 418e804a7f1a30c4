// Package moderation keeps the warn records issued by moderators.
package moderation

import (
	"strings"
	"sync"
	"time"

	"github.com/PancyStudios/VeilleBot/pkg/errors"
	"github.com/PancyStudios/VeilleBot/pkg/models"
)

// DefaultReason is recorded when a moderator gives none.
const DefaultReason = "Aucune raison fournie"

// Store persists the full warns mapping.
type Store interface {
	Load() map[string][]models.WarnRecord
	Save(map[string][]models.WarnRecord) error
}

// Ledger owns every user's ordered warn list. Mutations are written through
// to the store and rolled back in memory if the save fails.
type Ledger struct {
	mu    sync.Mutex
	warns map[string][]models.WarnRecord
	store Store
}

// NewLedger loads the mapping from store.
func NewLedger(store Store) *Ledger {
	return &Ledger{warns: store.Load(), store: store}
}

// Add appends a warn for user and returns the user's new warn count.
func (l *Ledger) Add(user, reason, issuer string, now time.Time) (int, error) {
	if strings.TrimSpace(reason) == "" {
		reason = DefaultReason
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	prev, existed := l.warns[user]
	next := make([]models.WarnRecord, len(prev), len(prev)+1)
	copy(next, prev)
	next = append(next, models.NewWarnRecord(reason, issuer, now))
	l.warns[user] = next

	if err := l.save("moderation.add", user, prev, existed); err != nil {
		return len(prev), err
	}
	return len(next), nil
}

// List returns a copy of user's warns in the order they were issued.
func (l *Ledger) List(user string) []models.WarnRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]models.WarnRecord, len(l.warns[user]))
	copy(out, l.warns[user])
	return out
}

// Remove deletes the warn at the 1-based index. It returns false, leaving the
// list untouched, when index is outside [1, count].
func (l *Ledger) Remove(user string, index int) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	prev, existed := l.warns[user]
	if index < 1 || index > len(prev) {
		return false, nil
	}

	next := make([]models.WarnRecord, 0, len(prev)-1)
	next = append(next, prev[:index-1]...)
	next = append(next, prev[index:]...)
	if len(next) == 0 {
		delete(l.warns, user)
	} else {
		l.warns[user] = next
	}

	if err := l.save("moderation.remove", user, prev, existed); err != nil {
		return false, err
	}
	return true, nil
}

// Clear drops all of user's warns and returns how many there were.
func (l *Ledger) Clear(user string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	prev, existed := l.warns[user]
	if !existed {
		return 0, nil
	}
	delete(l.warns, user)

	if err := l.save("moderation.clear", user, prev, existed); err != nil {
		return 0, err
	}
	return len(prev), nil
}

// Count returns the total number of warns across all users
func (l *Ledger) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for _, w := range l.warns {
		n += len(w)
	}
	return n
}

// Flush writes the current mapping to the store.
func (l *Ledger) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.store.Save(l.warns); err != nil {
		return errors.E(errors.KindIO, "moderation.flush", err)
	}
	return nil
}

// save persists the mapping, restoring user's previous list on failure.
// Callers hold l.mu.
func (l *Ledger) save(op, user string, prev []models.WarnRecord, existed bool) error {
	if err := l.store.Save(l.warns); err != nil {
		if existed {
			l.warns[user] = prev
		} else {
			delete(l.warns, user)
		}
		return errors.E(errors.KindIO, op, err)
	}
	return nil
}
