// Package discord provides the command handler that parses and dispatches text commands.
package discord

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/PancyStudios/VeilleBot/pkg/errors"
	"github.com/PancyStudios/VeilleBot/pkg/logger"
	"github.com/PancyStudios/VeilleBot/pkg/metrics"
)

// Replies sent by the dispatcher itself.
const (
	msgNoPermission    = "⛔ Tu n'as pas la permission d'utiliser cette commande."
	msgPermissionCheck = "⚠️ Impossible de vérifier tes permissions, réessaie plus tard."
	msgCommandFailed   = "⚠️ Une erreur est survenue pendant l'exécution de la commande."
)

// CommandCollection holds registered commands by name and alias
type CommandCollection struct {
	commands map[string]*Command
	aliases  map[string]string
	mu       sync.RWMutex
}

// NewCommandCollection creates a new CommandCollection
func NewCommandCollection() *CommandCollection {
	return &CommandCollection{
		commands: make(map[string]*Command),
		aliases:  make(map[string]string),
	}
}

// Set adds or updates a command and its aliases
func (cc *CommandCollection) Set(cmd *Command) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	name := strings.ToLower(cmd.Name)
	cc.commands[name] = cmd
	for _, a := range cmd.Aliases {
		cc.aliases[strings.ToLower(a)] = name
	}
}

// Get retrieves a command by name or alias, case-insensitively
func (cc *CommandCollection) Get(name string) (*Command, bool) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	name = strings.ToLower(name)
	if cmd, ok := cc.commands[name]; ok {
		return cmd, true
	}
	if target, ok := cc.aliases[name]; ok {
		cmd, ok := cc.commands[target]
		return cmd, ok
	}
	return nil, false
}

// Size returns the number of commands
func (cc *CommandCollection) Size() int {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return len(cc.commands)
}

// All returns all commands sorted by category then name
func (cc *CommandCollection) All() []*Command {
	cc.mu.RLock()
	result := make([]*Command, 0, len(cc.commands))
	for _, v := range cc.commands {
		result = append(result, v)
	}
	cc.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].Category != result[j].Category {
			return result[i].Category < result[j].Category
		}
		return result[i].Name < result[j].Name
	})
	return result
}

// CommandHandler owns the command table and dispatches prefixed messages to it
type CommandHandler struct {
	commands *CommandCollection
	prefix   string
}

// NewCommandHandler creates a new CommandHandler
func NewCommandHandler(prefix string) *CommandHandler {
	return &CommandHandler{
		commands: NewCommandCollection(),
		prefix:   prefix,
	}
}

// Prefix returns the command prefix
func (ch *CommandHandler) Prefix() string {
	return ch.prefix
}

// Commands returns the registered command table
func (ch *CommandHandler) Commands() *CommandCollection {
	return ch.commands
}

// RegisterCommand adds a command to the handler
func (ch *CommandHandler) RegisterCommand(cmd *Command) {
	ch.commands.Set(cmd)
	logger.Debug("Command registered: "+cmd.Name, "CommandHandler")
}

// Dispatch runs the command m invokes, if any. It reports whether m was a
// known command, whatever the outcome of running it.
func (ch *CommandHandler) Dispatch(s Session, m *discordgo.Message) bool {
	if m == nil || m.Author == nil || m.Author.Bot {
		return false
	}

	content := strings.TrimSpace(m.Content)
	if ch.prefix == "" || !strings.HasPrefix(content, ch.prefix) {
		return false
	}

	fields := strings.Fields(content[len(ch.prefix):])
	if len(fields) == 0 {
		return false
	}

	cmd, ok := ch.commands.Get(fields[0])
	if !ok {
		return false
	}

	ctx := &CommandContext{
		Session: s,
		Message: m,
		Command: cmd,
		Handler: ch,
	}

	if cmd.UserPermissions != 0 {
		allowed, err := hasPermissions(s, m, cmd.UserPermissions)
		if err != nil {
			logger.Warn(fmt.Sprintf("Permission lookup failed for %s on %s: %v", m.Author.ID, cmd.Name, err), "CommandHandler")
			ch.reply(ctx, msgPermissionCheck)
			metrics.CommandsRun.WithLabelValues(cmd.Name, "error").Inc()
			return true
		}
		if !allowed {
			ch.reply(ctx, msgNoPermission)
			metrics.CommandsRun.WithLabelValues(cmd.Name, "denied").Inc()
			return true
		}
	}

	args, err := parseArgs(cmd.Args, fields[1:])
	if err != nil {
		ch.reply(ctx, fmt.Sprintf("❌ %s\nUsage : `%s`", err.Error(), cmd.Usage(ch.prefix)))
		metrics.CommandsRun.WithLabelValues(cmd.Name, "bad_args").Inc()
		return true
	}
	ctx.args = args

	if err := ch.run(cmd, ctx); err != nil {
		logger.Error(fmt.Sprintf("Error executing command %s: %v", cmd.Name, err), "CommandHandler")
		ch.reply(ctx, msgCommandFailed)
		metrics.CommandsRun.WithLabelValues(cmd.Name, "error").Inc()
		return true
	}

	metrics.CommandsRun.WithLabelValues(cmd.Name, "ok").Inc()
	return true
}

// run executes the command, turning a panic into an error.
func (ch *CommandHandler) run(cmd *Command, ctx *CommandContext) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if h := errors.Get(); h != nil {
				h.HandlePanic(r)
			}
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return cmd.Run(ctx)
}

func (ch *CommandHandler) reply(ctx *CommandContext, content string) {
	if err := ctx.Reply(content); err != nil {
		logger.Warn("Could not send reply: "+err.Error(), "CommandHandler")
	}
}

func hasPermissions(s Session, m *discordgo.Message, required int64) (bool, error) {
	perms, err := s.UserChannelPermissions(m.Author.ID, m.ChannelID)
	if err != nil {
		return false, err
	}
	if perms&discordgo.PermissionAdministrator != 0 {
		return true, nil
	}
	return perms&required == required, nil
}
