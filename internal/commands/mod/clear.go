package mod

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/PancyStudios/VeilleBot/pkg/discord"
	"github.com/PancyStudios/VeilleBot/pkg/logger"
)

// maxPurge keeps amount+1 within the bulk delete limit of 100
const maxPurge = 99

// createClearCommand creates the !clear command
func createClearCommand() *discord.Command {
	return discord.NewCommand(
		"clear",
		"Nettoie les derniers messages du salon",
		"mod",
		clearHandler,
	).WithArgs(
		discord.Arg{Name: "nombre", Type: discord.ArgInt, Default: 5},
	).WithAliases("purge").WithUserPermissions(discordgo.PermissionManageMessages)
}

// clearHandler deletes the command message plus the amount messages before it
func clearHandler(ctx *discord.CommandContext) error {
	amount := ctx.Int("nombre")
	if amount < 1 || amount > maxPurge {
		return ctx.Reply(fmt.Sprintf("❌ Le nombre doit être compris entre 1 et %d.", maxPurge))
	}

	msgs, err := ctx.Session.ChannelMessages(ctx.ChannelID(), amount+1, "", "", "")
	if err != nil {
		logger.Warn("Could not fetch messages to purge: "+err.Error(), "CMD-Clear")
		return ctx.Reply("❌ Impossible de récupérer les messages du salon.")
	}

	ids := make([]string, 0, len(msgs))
	for _, m := range msgs {
		ids = append(ids, m.ID)
	}

	switch len(ids) {
	case 0:
		return nil
	case 1:
		err = ctx.Session.ChannelMessageDelete(ctx.ChannelID(), ids[0])
	default:
		err = ctx.Session.ChannelMessagesBulkDelete(ctx.ChannelID(), ids)
	}
	if err != nil {
		logger.Warn("Purge failed: "+err.Error(), "CMD-Clear")
		return ctx.Reply("❌ Impossible de supprimer les messages (ils ont peut-être plus de 14 jours).")
	}

	logger.Info(fmt.Sprintf("%s purged %d messages in %s", ctx.Author().ID, len(ids), ctx.ChannelID()), "CMD-Clear")
	return nil
}
