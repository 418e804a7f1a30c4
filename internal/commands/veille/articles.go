package veille

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/PancyStudios/VeilleBot/internal/bot"
	"github.com/PancyStudios/VeilleBot/pkg/discord"
	"github.com/PancyStudios/VeilleBot/pkg/logger"
	"github.com/PancyStudios/VeilleBot/pkg/models"
)

const maxArticles = 20

// createArticlesCommand creates the !articles command
func createArticlesCommand(b *bot.Bot) *discord.Command {
	return discord.NewCommand(
		"articles",
		"Affiche les derniers articles archivés",
		"veille",
		articlesHandler(b),
	).WithArgs(
		discord.Arg{Name: "nombre", Type: discord.ArgInt, Default: 5},
	).WithAliases("news")
}

func articlesHandler(b *bot.Bot) discord.CommandRunFunc {
	return func(ctx *discord.CommandContext) error {
		if b.Archive == nil {
			return ctx.Reply(msgNoArchive)
		}
		n := ctx.Int("nombre")
		if n < 1 || n > maxArticles {
			return ctx.Reply(fmt.Sprintf("❌ Le nombre doit être compris entre 1 et %d.", maxArticles))
		}

		qctx, cancel := archiveContext()
		defer cancel()
		articles, err := b.Archive.Recent(qctx, n)
		if err != nil {
			logger.Error("Archive query failed: "+err.Error(), "CMD-Articles")
			return ctx.Reply("❌ Impossible de lire l'archive des articles.")
		}
		if len(articles) == 0 {
			return ctx.Reply("📭 Aucun article archivé pour le moment.")
		}

		return ctx.ReplyEmbed(&discordgo.MessageEmbed{
			Title:       "📰 Derniers articles de la veille",
			Description: articleList(articles),
			Color:       0x2ecc71,
		})
	}
}

// articleList renders one markdown link per line
func articleList(articles []models.Article) string {
	var sb strings.Builder
	for _, a := range articles {
		fmt.Fprintf(&sb, "• [%s](%s)", a.Title, a.Link)
		if a.Date != "" {
			fmt.Fprintf(&sb, " · %s", a.Date)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
