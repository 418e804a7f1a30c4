package utils

import (
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PancyStudios/VeilleBot/internal/bot"
	"github.com/PancyStudios/VeilleBot/internal/commands/cmdtest"
	"github.com/PancyStudios/VeilleBot/pkg/discord"
	"github.com/PancyStudios/VeilleBot/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Init(logger.Options{Console: io.Discard})
	os.Exit(m.Run())
}

type fakeInfo struct {
	ready   bool
	guilds  int
	uptime  time.Duration
	latency time.Duration
}

func (f fakeInfo) IsReady() bool          { return f.ready }
func (f fakeInfo) GuildCount() int        { return f.guilds }
func (f fakeInfo) Uptime() time.Duration  { return f.uptime }
func (f fakeInfo) Latency() time.Duration { return f.latency }

func setup(t *testing.T, info Info) (*discord.CommandHandler, *bot.Bot, *cmdtest.Session) {
	t.Helper()
	b := cmdtest.NewBot(t)
	h := discord.NewCommandHandler("!")
	Register(h, b, info)
	return h, b, &cmdtest.Session{}
}

func TestPing(t *testing.T) {
	h, _, s := setup(t, fakeInfo{latency: 42 * time.Millisecond})

	require.True(t, h.Dispatch(s, cmdtest.Message("1", "!ping")))
	assert.Equal(t, "🏓 Pong ! Latence : 42ms", s.LastSent())
}

func TestHelpListsEveryCommandByCategory(t *testing.T) {
	h, _, s := setup(t, fakeInfo{})
	h.RegisterCommand(discord.NewCommand("warn", "Avertit un membre", "mod", func(*discord.CommandContext) error { return nil }).
		WithArgs(discord.Arg{Name: "membre", Type: discord.ArgUser, Required: true}))

	h.Dispatch(s, cmdtest.Message("1", "!aide"))
	e := s.LastEmbed()
	require.NotNil(t, e)
	require.Len(t, e.Fields, 2)

	assert.Equal(t, "🛡️ Modération", e.Fields[0].Name)
	assert.Equal(t, "`!warn <@membre>` · Avertit un membre", e.Fields[0].Value)

	assert.Equal(t, "🔧 Utilitaires", e.Fields[1].Name)
	lines := strings.Split(e.Fields[1].Value, "\n")
	assert.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "`!help`"))
}

func TestStats(t *testing.T) {
	h, b, s := setup(t, fakeInfo{guilds: 3, uptime: 90 * time.Minute})
	_, err := b.XP.Award("a", 10)
	require.NoError(t, err)

	h.Dispatch(s, cmdtest.Message("1", "!stats"))
	e := s.LastEmbed()
	require.NotNil(t, e)

	values := map[string]string{}
	for _, f := range e.Fields {
		values[f.Name] = f.Value
	}
	assert.Equal(t, "1 h, 30 min", values["⏱️ Uptime"])
	assert.Equal(t, "3", values["🏠 Serveurs"])
	assert.Equal(t, "1", values["🎓 Membres classés"])
	assert.NotEmpty(t, values["🔥 CPU hôte"])
	assert.NotEmpty(t, values["🧠 Mémoire hôte"])
}

func TestStatus(t *testing.T) {
	h, _, s := setup(t, fakeInfo{ready: true, guilds: 1})

	h.Dispatch(s, cmdtest.Message("1", "!status"))
	out := s.LastSent()
	assert.Contains(t, out, "• Bot : 🟢 En ligne")
	assert.Contains(t, out, "• Archive : ⚪ Désactivée")
	assert.Contains(t, out, "• Scraper : ⚪ Désactivé")
	assert.Contains(t, out, "• MQTT : ⚪ Désactivé")
	assert.Contains(t, out, "• Serveurs : 1")
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0 s"},
		{45 * time.Second, "45 s"},
		{26*time.Hour + 5*time.Second, "1 j, 2 h, 5 s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatDuration(tt.d))
	}
}
