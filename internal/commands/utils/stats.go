package utils

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/PancyStudios/VeilleBot/internal/bot"
	"github.com/PancyStudios/VeilleBot/pkg/config"
	"github.com/PancyStudios/VeilleBot/pkg/discord"
)

// createStatsCommand creates the !stats command
func createStatsCommand(b *bot.Bot, info Info) *discord.Command {
	return discord.NewCommand(
		"stats",
		"Affiche les statistiques du bot",
		"utils",
		statsHandler(b, info),
	)
}

func statsHandler(b *bot.Bot, info Info) discord.CommandRunFunc {
	return func(ctx *discord.CommandContext) error {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		embed := &discordgo.MessageEmbed{
			Title: "📊 Statistiques du bot",
			Color: 0x5865F2,
			Fields: []*discordgo.MessageEmbedField{
				{Name: "🤖 Version", Value: config.Version, Inline: true},
				{Name: "🐹 Go", Value: strings.TrimPrefix(runtime.Version(), "go"), Inline: true},
				{Name: "📚 DiscordGo", Value: discordgo.VERSION, Inline: true},
				{Name: "🖥️ Mémoire du bot", Value: fmt.Sprintf("%.2f MB", float64(m.Alloc)/1024/1024), Inline: true},
				{Name: "🚀 Goroutines", Value: fmt.Sprintf("%d", runtime.NumGoroutine()), Inline: true},
				{Name: "🔥 CPU hôte", Value: hostCPU(), Inline: true},
				{Name: "🧠 Mémoire hôte", Value: hostMemory(), Inline: true},
				{Name: "⏱️ Uptime", Value: formatDuration(info.Uptime()), Inline: true},
				{Name: "🏠 Serveurs", Value: fmt.Sprintf("%d", info.GuildCount()), Inline: true},
				{Name: "🎓 Membres classés", Value: fmt.Sprintf("%d", b.XP.Count()), Inline: true},
				{Name: "⚠️ Avertissements", Value: fmt.Sprintf("%d", b.Warns.Count()), Inline: true},
				{Name: "🤐 Mots bannis", Value: fmt.Sprintf("%d", b.Filter.Len()), Inline: true},
			},
			Footer:    &discordgo.MessageEmbedFooter{Text: "💫 VeilleBot · " + config.BuildTime},
			Timestamp: time.Now().Format(time.RFC3339),
		}

		return ctx.ReplyEmbed(embed)
	}
}

func hostCPU() string {
	percent, err := cpu.Percent(0, false)
	if err != nil || len(percent) == 0 {
		return "n/d"
	}
	count, _ := cpu.Counts(true)
	return fmt.Sprintf("%.1f%% (%d cœurs)", percent[0], count)
}

func hostMemory() string {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return "n/d"
	}
	return fmt.Sprintf("%.1f%% (%d / %d MB)", vm.UsedPercent, vm.Used/1024/1024, vm.Total/1024/1024)
}

// formatDuration renders d as "2 j, 3 h, 4 min, 5 s"
func formatDuration(d time.Duration) string {
	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%d j", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%d h", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%d min", minutes))
	}
	if seconds > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%d s", seconds))
	}

	return strings.Join(parts, ", ")
}
