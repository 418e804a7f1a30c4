package veille

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/PancyStudios/VeilleBot/internal/bot"
	"github.com/PancyStudios/VeilleBot/pkg/discord"
	"github.com/PancyStudios/VeilleBot/pkg/logger"
)

const searchLimit = 10

// createSearchCommand creates the !search command
func createSearchCommand(b *bot.Bot) *discord.Command {
	return discord.NewCommand(
		"search",
		"Cherche un terme dans les titres archivés",
		"veille",
		searchHandler(b),
	).WithArgs(
		discord.Arg{Name: "terme", Type: discord.ArgText, Required: true},
	).WithAliases("cherche")
}

func searchHandler(b *bot.Bot) discord.CommandRunFunc {
	return func(ctx *discord.CommandContext) error {
		if b.Archive == nil {
			return ctx.Reply(msgNoArchive)
		}
		term := ctx.String("terme")

		qctx, cancel := archiveContext()
		defer cancel()
		articles, err := b.Archive.Search(qctx, term, searchLimit)
		if err != nil {
			logger.Error("Archive search failed: "+err.Error(), "CMD-Search")
			return ctx.Reply("❌ Impossible de chercher dans l'archive.")
		}
		if len(articles) == 0 {
			return ctx.Reply(fmt.Sprintf("🔍 Aucun article ne correspond à « %s ».", term))
		}

		return ctx.ReplyEmbed(&discordgo.MessageEmbed{
			Title:       fmt.Sprintf("🔍 Résultats pour « %s »", term),
			Description: articleList(articles),
			Color:       0x2ecc71,
		})
	}
}
