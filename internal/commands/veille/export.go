package veille

import (
	"bytes"
	"fmt"

	"github.com/PancyStudios/VeilleBot/internal/bot"
	"github.com/PancyStudios/VeilleBot/pkg/discord"
	"github.com/PancyStudios/VeilleBot/pkg/export"
	"github.com/PancyStudios/VeilleBot/pkg/logger"
)

const maxExport = 500

// createExportCommand creates the !export command
func createExportCommand(b *bot.Bot) *discord.Command {
	return discord.NewCommand(
		"export",
		"Exporte les derniers articles en CSV",
		"veille",
		exportHandler(b),
	).WithArgs(
		discord.Arg{Name: "nombre", Type: discord.ArgInt, Default: 50},
	)
}

func exportHandler(b *bot.Bot) discord.CommandRunFunc {
	return func(ctx *discord.CommandContext) error {
		if b.Archive == nil {
			return ctx.Reply(msgNoArchive)
		}
		n := ctx.Int("nombre")
		if n < 1 || n > maxExport {
			return ctx.Reply(fmt.Sprintf("❌ Le nombre doit être compris entre 1 et %d.", maxExport))
		}

		qctx, cancel := archiveContext()
		defer cancel()
		articles, err := b.Archive.Recent(qctx, n)
		if err != nil {
			logger.Error("Archive query failed: "+err.Error(), "CMD-Export")
			return ctx.Reply("❌ Impossible de lire l'archive des articles.")
		}
		if len(articles) == 0 {
			return ctx.Reply("📭 Aucun article à exporter.")
		}

		var buf bytes.Buffer
		if err := export.Articles(&buf, articles); err != nil {
			logger.Error("Could not render article export: "+err.Error(), "CMD-Export")
			return ctx.Reply("❌ Impossible de générer l'export.")
		}
		return ctx.ReplyFile("articles.csv", &buf)
	}
}
