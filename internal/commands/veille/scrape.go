package veille

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"

	"github.com/PancyStudios/VeilleBot/internal/bot"
	"github.com/PancyStudios/VeilleBot/pkg/discord"
	"github.com/PancyStudios/VeilleBot/pkg/logger"
)

// maxOutput keeps the reply under the 2000 character message limit
const maxOutput = 1800

// createScrapeCommand creates the !scrape command
func createScrapeCommand(b *bot.Bot) *discord.Command {
	return discord.NewCommand(
		"scrape",
		"Lance le scraper d'articles",
		"veille",
		scrapeHandler(b),
	).WithUserPermissions(discordgo.PermissionAdministrator)
}

func scrapeHandler(b *bot.Bot) discord.CommandRunFunc {
	return func(ctx *discord.CommandContext) error {
		if !b.Scraper.Enabled() {
			return ctx.Reply("❌ Aucun scraper n'est configuré.")
		}
		if err := ctx.Reply("⏳ Scraping en cours..."); err != nil {
			return err
		}

		res, err := b.Scraper.Run(context.Background())
		if err != nil {
			logger.Warn(fmt.Sprintf("Scraper run by %s failed: %v", ctx.Author().ID, err), "CMD-Scrape")
			return ctx.Reply(fmt.Sprintf("❌ Le scraper a échoué (code %d).\n%s", res.ExitCode, codeBlock(res.Output)))
		}
		return ctx.Reply(fmt.Sprintf("✅ Scraping terminé en %v (code %d).\n%s",
			res.Duration.Round(100*time.Millisecond),
			res.ExitCode,
			codeBlock(res.Output),
		))
	}
}

// codeBlock wraps output in a code block, keeping its tail when too long
func codeBlock(out string) string {
	out = strings.TrimSpace(out)
	if out == "" {
		return "*(aucune sortie)*"
	}
	if len(out) > maxOutput {
		cut := len(out) - maxOutput
		for cut < len(out) && !utf8.RuneStart(out[cut]) {
			cut++
		}
		out = "…" + out[cut:]
	}
	out = strings.ReplaceAll(out, "```", "'''")
	return "```\n" + out + "\n```"
}
