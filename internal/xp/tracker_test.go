package xp

import (
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PancyStudios/VeilleBot/pkg/database"
	"github.com/PancyStudios/VeilleBot/pkg/errors"
	"github.com/PancyStudios/VeilleBot/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Init(logger.Options{Console: io.Discard})
	os.Exit(m.Run())
}

// memStore is an in-memory Store that can be told to fail.
type memStore struct {
	mu    sync.Mutex
	data  map[string]int
	fail  bool
	saves int
}

func (s *memStore) Load() map[string]int {
	out := make(map[string]int, len(s.data))
	for k, v := range s.data {
		out[k] = v
	}
	return out
}

func (s *memStore) Save(m map[string]int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return stderrors.New("disk full")
	}
	s.saves++
	s.data = make(map[string]int, len(m))
	for k, v := range m {
		s.data[k] = v
	}
	return nil
}

func TestAwardFirstClick(t *testing.T) {
	store := &memStore{}
	tr := NewTracker(store, 100)

	g, err := tr.Award("42", 10)
	require.NoError(t, err)
	assert.Equal(t, 10, g.NewPoints)
	assert.False(t, g.LeveledUp)
	assert.Equal(t, 10, tr.Points("42"))
	assert.Equal(t, 10, store.data["42"], "award must be persisted before returning")
}

func TestAwardLevelUp(t *testing.T) {
	tr := NewTracker(&memStore{data: map[string]int{"42": 95}}, 100)

	g, err := tr.Award("42", 10)
	require.NoError(t, err)
	assert.Equal(t, 105, g.NewPoints)
	assert.True(t, g.LeveledUp)
	assert.Equal(t, 1, g.NewLevel)
	assert.Equal(t, 1, tr.Level("42"))
}

func TestAwardRollsBackOnSaveFailure(t *testing.T) {
	store := &memStore{data: map[string]int{"42": 50}, fail: true}
	tr := NewTracker(store, 100)

	_, err := tr.Award("42", 10)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.KindIO))
	assert.Equal(t, 50, tr.Points("42"))

	_, err = tr.Award("new", 10)
	require.Error(t, err)
	assert.Equal(t, 1, tr.Count(), "unknown user must not be left behind")
}

func TestAwardRejectsNonPositiveGain(t *testing.T) {
	tr := NewTracker(&memStore{}, 100)
	_, err := tr.Award("42", 0)
	assert.True(t, errors.Is(err, errors.KindInvalid))
}

func TestAwardConcurrent(t *testing.T) {
	store := &memStore{}
	tr := NewTracker(store, 100)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = tr.Award("42", 10)
		}()
	}
	wg.Wait()

	assert.Equal(t, 500, tr.Points("42"))
	assert.Equal(t, 50, store.saves)
}

func TestLeaderboard(t *testing.T) {
	tr := NewTracker(&memStore{data: map[string]int{
		"a": 30, "b": 120, "c": 30, "d": 5,
	}}, 100)

	top := tr.Leaderboard(3)
	require.Len(t, top, 3)
	assert.Equal(t, Entry{UserID: "b", Points: 120, Level: 1}, top[0])
	assert.Equal(t, "a", top[1].UserID)
	assert.Equal(t, "c", top[2].UserID)

	assert.Len(t, tr.Leaderboard(0), 4)
	assert.Len(t, tr.Leaderboard(10), 4)
}

func TestTrackerWithFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xp_data.json")
	tr := NewTracker(database.NewFileStore[int]("xp", path), 100)

	_, err := tr.Award("42", 10)
	require.NoError(t, err)
	_, err = tr.Award("42", 10)
	require.NoError(t, err)

	reloaded := NewTracker(database.NewFileStore[int]("xp", path), 100)
	assert.Equal(t, 20, reloaded.Points("42"))
	require.NoError(t, reloaded.Flush())
}
