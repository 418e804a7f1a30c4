package veille

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PancyStudios/VeilleBot/internal/bot"
	"github.com/PancyStudios/VeilleBot/internal/commands/cmdtest"
	"github.com/PancyStudios/VeilleBot/pkg/discord"
	"github.com/PancyStudios/VeilleBot/pkg/logger"
	"github.com/PancyStudios/VeilleBot/pkg/models"
	"github.com/PancyStudios/VeilleBot/pkg/scraper"
)

func TestMain(m *testing.M) {
	logger.Init(logger.Options{Console: io.Discard})
	os.Exit(m.Run())
}

// fakeArchive serves a fixed article list, newest first.
type fakeArchive struct {
	articles    []models.Article
	err         error
	lastN       int
	lastTerm    string
	hadDeadline bool
}

func (f *fakeArchive) Recent(ctx context.Context, n int) ([]models.Article, error) {
	_, f.hadDeadline = ctx.Deadline()
	f.lastN = n
	if f.err != nil {
		return nil, f.err
	}
	if n > len(f.articles) {
		n = len(f.articles)
	}
	return f.articles[:n], nil
}

func (f *fakeArchive) Search(_ context.Context, term string, n int) ([]models.Article, error) {
	f.lastTerm, f.lastN = term, n
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Article
	for _, a := range f.articles {
		if strings.Contains(strings.ToLower(a.Title), strings.ToLower(term)) {
			out = append(out, a)
		}
	}
	return out, nil
}

var sample = []models.Article{
	{Title: "Go 1.26 est sorti", Link: "https://go.dev/blog/go1.26", Date: "2026-02-10"},
	{Title: "Rust et Linux", Link: "https://lwn.net/rust", Date: "2026-02-09"},
	{Title: "Le retour de Go", Link: "https://example.org/go", Date: ""},
}

func setup(t *testing.T, archive *fakeArchive) (*discord.CommandHandler, *bot.Bot, *cmdtest.Session) {
	t.Helper()
	b := cmdtest.NewBot(t)
	if archive != nil {
		b.Archive = archive
	}
	h := discord.NewCommandHandler("!")
	Register(h, b)
	return h, b, &cmdtest.Session{Perms: discordgo.PermissionAdministrator}
}

func TestArticles(t *testing.T) {
	archive := &fakeArchive{articles: sample}
	h, _, s := setup(t, archive)

	require.True(t, h.Dispatch(s, cmdtest.Message("1", "!articles 2")))
	assert.Equal(t, 2, archive.lastN)
	assert.True(t, archive.hadDeadline)

	e := s.LastEmbed()
	require.NotNil(t, e)
	assert.Equal(t,
		"• [Go 1.26 est sorti](https://go.dev/blog/go1.26) · 2026-02-10\n• [Rust et Linux](https://lwn.net/rust) · 2026-02-09\n",
		e.Description)
}

func TestArticlesDefaultsToFive(t *testing.T) {
	archive := &fakeArchive{articles: sample}
	h, _, s := setup(t, archive)

	h.Dispatch(s, cmdtest.Message("1", "!news"))
	assert.Equal(t, 5, archive.lastN)
	require.NotNil(t, s.LastEmbed())
	assert.Contains(t, s.LastEmbed().Description, "[Le retour de Go](https://example.org/go)\n")
}

func TestArticlesFailures(t *testing.T) {
	h, _, s := setup(t, nil)
	h.Dispatch(s, cmdtest.Message("1", "!articles"))
	assert.Equal(t, msgNoArchive, s.LastSent())

	h, _, s = setup(t, &fakeArchive{})
	h.Dispatch(s, cmdtest.Message("1", "!articles"))
	assert.Contains(t, s.LastSent(), "Aucun article")

	h, _, s = setup(t, &fakeArchive{err: stderrors.New("database is locked")})
	h.Dispatch(s, cmdtest.Message("1", "!articles"))
	assert.Contains(t, s.LastSent(), "Impossible de lire")

	h.Dispatch(s, cmdtest.Message("1", "!articles 21"))
	assert.Contains(t, s.LastSent(), "entre 1 et 20")
}

func TestSearch(t *testing.T) {
	archive := &fakeArchive{articles: sample}
	h, _, s := setup(t, archive)

	h.Dispatch(s, cmdtest.Message("1", "!search retour de"))
	assert.Equal(t, "retour de", archive.lastTerm)
	assert.Equal(t, searchLimit, archive.lastN)
	e := s.LastEmbed()
	require.NotNil(t, e)
	assert.Contains(t, e.Title, "« retour de »")
	assert.Equal(t, "• [Le retour de Go](https://example.org/go)\n", e.Description)

	h.Dispatch(s, cmdtest.Message("1", "!cherche kubernetes"))
	assert.Contains(t, s.LastSent(), "Aucun article ne correspond à « kubernetes »")

	h.Dispatch(s, cmdtest.Message("1", "!search"))
	assert.Contains(t, s.LastSent(), "Usage")
}

func TestExport(t *testing.T) {
	archive := &fakeArchive{articles: sample}
	h, _, s := setup(t, archive)

	h.Dispatch(s, cmdtest.Message("1", "!export"))
	assert.Equal(t, 50, archive.lastN)
	require.Contains(t, s.Files, "articles.csv")
	assert.Equal(t,
		"title,link,date\nGo 1.26 est sorti,https://go.dev/blog/go1.26,2026-02-10\nRust et Linux,https://lwn.net/rust,2026-02-09\nLe retour de Go,https://example.org/go,\n",
		s.Files["articles.csv"])

	h.Dispatch(s, cmdtest.Message("1", "!export 501"))
	assert.Contains(t, s.LastSent(), "entre 1 et 500")
}

func TestScrape(t *testing.T) {
	h, b, s := setup(t, nil)
	b.Scraper = scraper.NewRunner("echo 12 articles", time.Minute)

	require.True(t, h.Dispatch(s, cmdtest.Message("1", "!scrape")))
	require.Len(t, s.Sent, 2)
	assert.Equal(t, "⏳ Scraping en cours...", s.Sent[0])
	assert.Contains(t, s.Sent[1], "✅ Scraping terminé")
	assert.Contains(t, s.Sent[1], "(code 0)")
	assert.Contains(t, s.Sent[1], "```\n12 articles\n```")
}

func TestScrapeFailureShowsExitCode(t *testing.T) {
	h, b, s := setup(t, nil)
	b.Scraper = scraper.NewRunner("false", time.Minute)

	h.Dispatch(s, cmdtest.Message("1", "!scrape"))
	assert.Contains(t, s.LastSent(), "❌ Le scraper a échoué (code 1)")
	assert.Contains(t, s.LastSent(), "aucune sortie")
}

func TestScrapeDisabledAndAdminOnly(t *testing.T) {
	h, _, s := setup(t, nil)
	h.Dispatch(s, cmdtest.Message("1", "!scrape"))
	assert.Contains(t, s.LastSent(), "Aucun scraper")

	h, b, s := setup(t, nil)
	b.Scraper = scraper.NewRunner("echo hi", time.Minute)
	s.Perms = discordgo.PermissionManageMessages
	h.Dispatch(s, cmdtest.Message("1", "!scrape"))
	assert.NotContains(t, s.LastSent(), "Scraping")
}

func TestCodeBlock(t *testing.T) {
	assert.Equal(t, "*(aucune sortie)*", codeBlock("  \n"))
	assert.Equal(t, "```\nok\n```", codeBlock("ok\n"))

	long := strings.Repeat("é", maxOutput)
	got := codeBlock(long)
	assert.True(t, strings.HasPrefix(got, "```\n…"))
	assert.LessOrEqual(t, len(got), maxOutput+16)
	assert.NotContains(t, got, "�")
}
