package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/PancyStudios/VeilleBot/internal/xp"
	"github.com/PancyStudios/VeilleBot/pkg/database"
	"github.com/PancyStudios/VeilleBot/pkg/logger"
	"github.com/PancyStudios/VeilleBot/pkg/models"
)

func TestMain(m *testing.M) {
	logger.Init(logger.Options{Console: io.Discard})
	os.Exit(m.Run())
}

type fixture struct {
	xpFile, warnsFile, archive string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	f := fixture{
		xpFile:    filepath.Join(dir, "xp_data.json"),
		warnsFile: filepath.Join(dir, "warns_data.json"),
		archive:   filepath.Join(dir, "veille.db"),
	}

	require.NoError(t, database.NewFileStore[int]("xp", f.xpFile).Save(map[string]int{
		"1": 50, "2": 250, "3": 120,
	}))
	require.NoError(t, database.NewFileStore[[]models.WarnRecord]("warns", f.warnsFile).Save(map[string][]models.WarnRecord{
		"2": {models.NewWarnRecord("spam", "alice", time.Date(2026, 1, 20, 14, 30, 0, 0, time.UTC))},
	}))
	return f
}

func run(t *testing.T, f fixture, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = io.Discard
	base := []string{"veillectl", "--xp-file", f.xpFile, "--warns-file", f.warnsFile, "--archive", f.archive}
	err := app.Run(append(base, args...))
	return out.String(), err
}

func TestXPShow(t *testing.T) {
	f := newFixture(t)

	out, err := run(t, f, "xp", "show", "2")
	require.NoError(t, err)
	assert.Equal(t, "2: 250 XP, level 2, 50 XP to next level\n", out)

	out, err = run(t, f, "xp", "show", "99")
	require.NoError(t, err)
	assert.Equal(t, "99: 0 XP, level 0, 100 XP to next level\n", out)
}

func TestXPShowHonorsPerLevel(t *testing.T) {
	f := newFixture(t)

	out, err := run(t, f, "--xp-per-level", "50", "xp", "show", "2")
	require.NoError(t, err)
	assert.Equal(t, "2: 250 XP, level 5, 50 XP to next level\n", out)

	_, err = run(t, f, "--xp-per-level", "0", "xp", "show", "2")
	assert.Error(t, err)
}

func TestXPTop(t *testing.T) {
	f := newFixture(t)

	out, err := run(t, f, "xp", "top", "--limit", "2")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"RANK", "USER", "POINTS", "LEVEL"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"1", "2", "250", "2"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"2", "3", "120", "1"}, strings.Fields(lines[2]))
}

func TestXPExport(t *testing.T) {
	f := newFixture(t)

	out, err := run(t, f, "xp", "export")
	require.NoError(t, err)
	assert.Equal(t, "rank,user_id,points,level\n1,2,250,2\n2,3,120,1\n3,1,50,0\n", out)

	path := filepath.Join(t.TempDir(), "xp.csv")
	_, err = run(t, f, "xp", "export", "--out", path)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, out, string(data))
}

func TestWarnsList(t *testing.T) {
	f := newFixture(t)

	out, err := run(t, f, "warns", "list", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "20/01/2026 14:30")
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "spam")

	out, err = run(t, f, "warns", "list", "1")
	require.NoError(t, err)
	assert.Equal(t, "1 has no warns\n", out)
}

func TestArticles(t *testing.T) {
	f := newFixture(t)

	_, err := run(t, f, "articles", "recent")
	assert.Error(t, err)

	out, err := run(t, f, "articles", "add", "--title", "Go 1.26", "--link", "https://go.dev/blog/go1.26", "--date", "2026-02-10")
	require.NoError(t, err)
	assert.Equal(t, "archived \"Go 1.26\"\n", out)

	out, err = run(t, f, "articles", "add", "--title", "Go 1.26", "--link", "https://go.dev/blog/go1.26")
	require.NoError(t, err)
	assert.Contains(t, out, "already archived")

	_, err = run(t, f, "articles", "add", "--title", "Rust", "--link", "https://lwn.net/rust", "--date", "2026-02-11")
	require.NoError(t, err)

	out, err = run(t, f, "articles", "recent", "-n", "1")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "Rust")
}

func TestMissingUserArgument(t *testing.T) {
	f := newFixture(t)

	_, err := run(t, f, "xp", "show")
	assert.Error(t, err)
}

// fakeBot answers xp/get from a fixed table.
type fakeBot struct {
	points    map[string]int
	topic     string
	payload   interface{}
	destroyed bool
}

func (b *fakeBot) RequestInto(topic string, payload interface{}, _ time.Duration, out interface{}) error {
	b.topic, b.payload = topic, payload
	id := payload.(map[string]string)["userId"]
	raw, _ := json.Marshal(xp.Entry{UserID: id, Points: b.points[id], Level: b.points[id] / 100})
	return json.Unmarshal(raw, out)
}

func (b *fakeBot) Destroy() { b.destroyed = true }

func withBot(t *testing.T, bot botClient, err error) {
	t.Helper()
	orig := dialBot
	dialBot = func(*cli.Context) (botClient, error) { return bot, err }
	t.Cleanup(func() { dialBot = orig })
}

func TestXPShowLive(t *testing.T) {
	f := newFixture(t)
	bot := &fakeBot{points: map[string]int{"2": 310}}
	withBot(t, bot, nil)

	out, err := run(t, f, "xp", "show", "--live", "2")
	require.NoError(t, err)
	assert.Equal(t, "2: 310 XP, level 3, 90 XP to next level (live)\n", out)
	assert.Equal(t, "xp/get", bot.topic)
	assert.Equal(t, map[string]string{"userId": "2"}, bot.payload)
	assert.True(t, bot.destroyed)
}

func TestXPShowLiveDialFailure(t *testing.T) {
	f := newFixture(t)
	withBot(t, nil, errors.New("connection refused"))

	out, err := run(t, f, "xp", "show", "--live", "2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Empty(t, out)
}

func TestXPShowLiveNeedsHost(t *testing.T) {
	f := newFixture(t)
	t.Setenv("MQTT_HOST", "")

	_, err := run(t, f, "xp", "show", "--live", "2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--mqtt-host")
}
