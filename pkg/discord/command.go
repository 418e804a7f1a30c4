// Package discord provides command types and structures.
package discord

import (
	"fmt"
	"io"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// CommandContext provides context for command execution
type CommandContext struct {
	Session Session
	Message *discordgo.Message
	Command *Command
	Handler *CommandHandler
	args    map[string]any
}

// Command represents a prefixed text command
type Command struct {
	Name            string
	Aliases         []string
	Description     string
	Category        string
	Args            []Arg
	UserPermissions int64
	Run             CommandRunFunc
}

// CommandRunFunc is the function type for command execution
type CommandRunFunc func(ctx *CommandContext) error

// NewCommand creates a new Command with required fields
func NewCommand(name, description, category string, run CommandRunFunc) *Command {
	return &Command{
		Name:        name,
		Description: description,
		Category:    category,
		Run:         run,
	}
}

// WithArgs sets the command's argument schema
func (c *Command) WithArgs(args ...Arg) *Command {
	c.Args = args
	return c
}

// WithAliases sets alternative names for the command
func (c *Command) WithAliases(aliases ...string) *Command {
	c.Aliases = aliases
	return c
}

// WithUserPermissions sets required user permissions
func (c *Command) WithUserPermissions(perms int64) *Command {
	c.UserPermissions = perms
	return c
}

// Usage renders the command line, e.g. "!warn <@membre> [raison...]".
func (c *Command) Usage(prefix string) string {
	var b strings.Builder
	b.WriteString(prefix)
	b.WriteString(c.Name)
	for _, a := range c.Args {
		name := a.Name
		switch a.Type {
		case ArgUser:
			name = "@" + name
		case ArgText:
			name += "..."
		}
		if a.Required {
			fmt.Fprintf(&b, " <%s>", name)
		} else {
			fmt.Fprintf(&b, " [%s]", name)
		}
	}
	return b.String()
}

// Reply sends a message to the channel the command was issued in
func (ctx *CommandContext) Reply(content string) error {
	_, err := ctx.Session.ChannelMessageSend(ctx.Message.ChannelID, content)
	return err
}

// ReplyEmbed sends an embed to the command's channel
func (ctx *CommandContext) ReplyEmbed(embed *discordgo.MessageEmbed) error {
	_, err := ctx.Session.ChannelMessageSendEmbed(ctx.Message.ChannelID, embed)
	return err
}

// ReplyFile uploads a file to the command's channel
func (ctx *CommandContext) ReplyFile(name string, r io.Reader) error {
	_, err := ctx.Session.ChannelFileSend(ctx.Message.ChannelID, name, r)
	return err
}

// Prefix returns the prefix the command was invoked with
func (ctx *CommandContext) Prefix() string {
	if ctx.Handler == nil {
		return ""
	}
	return ctx.Handler.Prefix()
}

// Author returns the user who sent the command
func (ctx *CommandContext) Author() *discordgo.User {
	return ctx.Message.Author
}

// ChannelID returns the channel the command was sent in
func (ctx *CommandContext) ChannelID() string {
	return ctx.Message.ChannelID
}

// GuildID returns the guild the command was sent in, empty for DMs
func (ctx *CommandContext) GuildID() string {
	return ctx.Message.GuildID
}

// Has reports whether an argument was given or has a default
func (ctx *CommandContext) Has(name string) bool {
	_, ok := ctx.args[name]
	return ok
}

// String returns a string, user or text argument
func (ctx *CommandContext) String(name string) string {
	s, _ := ctx.args[name].(string)
	return s
}

// Int returns an integer argument
func (ctx *CommandContext) Int(name string) int {
	n, _ := ctx.args[name].(int)
	return n
}

// UserID returns a user argument, falling back to the author when absent
func (ctx *CommandContext) UserID(name string) string {
	if id := ctx.String(name); id != "" {
		return id
	}
	return ctx.Message.Author.ID
}

// User returns the mentioned user for a user argument when the message
// carries it, or a bare user with only the id set.
func (ctx *CommandContext) User(name string) *discordgo.User {
	id := ctx.UserID(name)
	if id == ctx.Message.Author.ID {
		return ctx.Message.Author
	}
	for _, u := range ctx.Message.Mentions {
		if u.ID == id {
			return u
		}
	}
	return &discordgo.User{ID: id}
}

// DisplayName returns a readable name for a user
func DisplayName(u *discordgo.User) string {
	if u == nil {
		return "inconnu"
	}
	if u.GlobalName != "" {
		return u.GlobalName
	}
	if u.Username != "" {
		return u.Username
	}
	return "<@" + u.ID + ">"
}
