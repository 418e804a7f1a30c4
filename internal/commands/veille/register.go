// Package veille provides the commands over the article archive and the
// scraper that feeds it.
package veille

import (
	"context"
	"time"

	"github.com/PancyStudios/VeilleBot/internal/bot"
	"github.com/PancyStudios/VeilleBot/pkg/discord"
)

// archiveTimeout bounds a single archive query
const archiveTimeout = 10 * time.Second

const msgNoArchive = "❌ L'archive des articles n'est pas disponible."

// Register adds every archive command to h
func Register(h *discord.CommandHandler, b *bot.Bot) {
	h.RegisterCommand(createArticlesCommand(b))
	h.RegisterCommand(createSearchCommand(b))
	h.RegisterCommand(createExportCommand(b))
	h.RegisterCommand(createScrapeCommand(b))
}

func archiveContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), archiveTimeout)
}
