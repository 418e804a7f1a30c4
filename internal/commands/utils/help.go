package utils

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/PancyStudios/VeilleBot/pkg/discord"
)

var categoryTitles = map[string]string{
	"xp":     "🧠 XP",
	"veille": "📰 Veille",
	"mod":    "🛡️ Modération",
	"utils":  "🔧 Utilitaires",
}

// createHelpCommand creates the !help command
func createHelpCommand() *discord.Command {
	return discord.NewCommand(
		"help",
		"Liste les commandes disponibles",
		"utils",
		helpHandler,
	).WithAliases("aide")
}

// helpHandler lists every registered command, one embed field per category
func helpHandler(ctx *discord.CommandContext) error {
	embed := &discordgo.MessageEmbed{
		Title: "📖 Aide de VeilleBot",
		Color: 0x5865F2,
	}

	var field *discordgo.MessageEmbedField
	for _, cmd := range ctx.Handler.Commands().All() {
		if field == nil || field.Name != categoryTitle(cmd.Category) {
			field = &discordgo.MessageEmbedField{Name: categoryTitle(cmd.Category)}
			embed.Fields = append(embed.Fields, field)
		}
		field.Value += fmt.Sprintf("`%s` · %s\n", cmd.Usage(ctx.Prefix()), cmd.Description)
	}
	for _, f := range embed.Fields {
		f.Value = strings.TrimSuffix(f.Value, "\n")
	}

	return ctx.ReplyEmbed(embed)
}

func categoryTitle(category string) string {
	if t, ok := categoryTitles[category]; ok {
		return t
	}
	return category
}
