package level

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/PancyStudios/VeilleBot/internal/bot"
	"github.com/PancyStudios/VeilleBot/pkg/discord"
	"github.com/PancyStudios/VeilleBot/pkg/leveling"
)

// createLevelCommand creates the !level command
func createLevelCommand(b *bot.Bot) *discord.Command {
	return discord.NewCommand(
		"level",
		"Affiche le niveau et l'XP d'un membre",
		"xp",
		levelHandler(b),
	).WithArgs(
		discord.Arg{Name: "membre", Type: discord.ArgUser},
	).WithAliases("niveau", "xp")
}

func levelHandler(b *bot.Bot) discord.CommandRunFunc {
	return func(ctx *discord.CommandContext) error {
		user := ctx.User("membre")
		points := b.XP.Points(user.ID)
		perLevel := b.XP.PerLevel()

		title := "📊 Ton niveau de Veille"
		if user.ID != ctx.Author().ID {
			title = "📊 Niveau de Veille de " + discord.DisplayName(user)
		}

		return ctx.ReplyEmbed(&discordgo.MessageEmbed{
			Title: title,
			Color: 0x3498db,
			Fields: []*discordgo.MessageEmbedField{
				{Name: "Niveau", Value: fmt.Sprintf("%d", leveling.Level(points, perLevel)), Inline: true},
				{Name: "XP Totale", Value: fmt.Sprintf("%d XP", points), Inline: true},
				{Name: "Prochain niveau", Value: fmt.Sprintf("Encore %d XP", leveling.ToNext(points, perLevel))},
			},
		})
	}
}
