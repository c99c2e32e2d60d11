// Package discord turns Discord chat messages into bot commands.
package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/custodia-labs/pindoc/internal/core/domain"
	"github.com/custodia-labs/pindoc/internal/core/ports/driven"
)

const (
	docUsage       = "doc [<start_date> [<end_date>]] [<channels> ...]"
	docDescription = "Parse messages in provided date range and extracts important (pinned) ones"
)

var docExamples = []string{
	"doc 1/1",
	`doc "Jan 1st" "May 30th"`,
	"doc 1/1 #channel1 #channel2",
	"doc 1/1 3/31 123123123123",
}

// Replies sent by the router
const (
	msgPong          = "Pong!"
	msgGuildOnly     = "This command can only be used in a server"
	msgMissingPerms  = "You need the Manage Messages permission to use this command"
	msgQueueFull     = "Too many summary documents are queued right now, try again shortly"
	msgQueueDown     = "Summary documents can't be generated right now"
	helpHeader       = "**Commands**"
	pingDescription  = "Checks that the bot is alive"
	helpDescription  = "Lists the commands, or describes one"
	defaultPrefix    = "!"
	adminPermissions = discordgo.PermissionAdministrator
)

// Session is the subset of the Discord client the router needs.
// *discordgo.Session satisfies it.
type Session interface {
	ChannelMessageSendReply(channelID, content string, reference *discordgo.MessageReference, options ...discordgo.RequestOption) (*discordgo.Message, error)
	UserChannelPermissions(userID, channelID string, fetchOptions ...discordgo.RequestOption) (int64, error)
}

// RouterConfig holds the dependencies and settings of a Router
type RouterConfig struct {
	Session Session
	Queue   driven.JobQueue
	Logger  *slog.Logger

	// BotID lets "@bot doc ..." work like "<prefix>doc ..."
	BotID string
	// OwnerID bypasses permission checks
	OwnerID string
	Prefix  string
	// RequiredPermission is the permission bit set needed to run doc
	RequiredPermission int64
}

// Router parses chat messages and dispatches ping, help and doc.
// Report work is never done on the gateway goroutine: doc enqueues a job.
type Router struct {
	session    Session
	queue      driven.JobQueue
	logger     *slog.Logger
	botID      string
	ownerID    string
	prefix     string
	permission int64
}

// NewRouter creates a Router
func NewRouter(cfg RouterConfig) *Router {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = defaultPrefix
	}
	permission := cfg.RequiredPermission
	if permission == 0 {
		permission = discordgo.PermissionManageMessages
	}
	return &Router{
		session:    cfg.Session,
		queue:      cfg.Queue,
		logger:     logger.With("component", "router"),
		botID:      cfg.BotID,
		ownerID:    cfg.OwnerID,
		prefix:     prefix,
		permission: permission,
	}
}

// OnMessageCreate is the discordgo gateway handler
func (r *Router) OnMessageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	if m == nil || m.Message == nil {
		return
	}
	r.Handle(context.Background(), m.Message)
}

// Handle runs the command carried by msg, if any
func (r *Router) Handle(ctx context.Context, msg *discordgo.Message) {
	if msg.Author == nil || msg.Author.Bot {
		return
	}

	line, ok := r.stripTrigger(msg)
	if !ok {
		return
	}
	args := SplitArgs(line)
	if len(args) == 0 {
		return
	}

	name, args := strings.ToLower(args[0]), args[1:]
	switch name {
	case "ping":
		r.reply(ctx, msg, msgPong)
	case "help":
		r.reply(ctx, msg, r.help(args))
	case "doc":
		r.doc(ctx, msg, args)
	}
}

// stripTrigger removes the prefix or bot mention. Direct messages need neither.
func (r *Router) stripTrigger(msg *discordgo.Message) (string, bool) {
	content := strings.TrimSpace(msg.Content)

	if r.botID != "" {
		for _, mention := range []string{"<@" + r.botID + ">", "<@!" + r.botID + ">"} {
			if rest, ok := strings.CutPrefix(content, mention); ok {
				return strings.TrimSpace(rest), true
			}
		}
	}
	if len(content) >= len(r.prefix) && strings.EqualFold(content[:len(r.prefix)], r.prefix) {
		return content[len(r.prefix):], true
	}
	if msg.GuildID == "" {
		return content, true
	}
	return "", false
}

func (r *Router) doc(ctx context.Context, msg *discordgo.Message, args []string) {
	if msg.GuildID == "" {
		r.reply(ctx, msg, msgGuildOnly)
		return
	}

	allowed, err := r.authorized(msg)
	if err != nil {
		r.logger.Error("permission lookup failed", "guild_id", msg.GuildID, "user_id", msg.Author.ID, "error", err)
		return
	}
	if !allowed {
		r.reply(ctx, msg, msgMissingPerms)
		return
	}

	job := domain.NewReportJob(domain.ReportRequest{
		GuildID:     msg.GuildID,
		RequestedBy: msg.Author.ID,
		Args:        args,
	}, msg.ChannelID, msg.ID)

	if err := r.queue.Enqueue(ctx, job); err != nil {
		if errors.Is(err, domain.ErrQueueFull) {
			r.logger.Warn("report queue full", "guild_id", msg.GuildID, "queued", r.queue.Len())
			r.reply(ctx, msg, msgQueueFull)
			return
		}
		r.logger.Error("failed to enqueue report job", "guild_id", msg.GuildID, "error", err)
		r.reply(ctx, msg, msgQueueDown)
		return
	}

	r.logger.Info("report job queued", "job_id", job.ID, "guild_id", msg.GuildID, "args", args)
}

func (r *Router) authorized(msg *discordgo.Message) (bool, error) {
	if r.ownerID != "" && msg.Author.ID == r.ownerID {
		return true, nil
	}
	perms, err := r.session.UserChannelPermissions(msg.Author.ID, msg.ChannelID)
	if err != nil {
		return false, fmt.Errorf("permissions of %s in %s: %w", msg.Author.ID, msg.ChannelID, err)
	}
	return perms&adminPermissions != 0 || perms&r.permission == r.permission, nil
}

func (r *Router) help(args []string) string {
	if len(args) > 0 && strings.EqualFold(args[0], "doc") {
		var b strings.Builder
		fmt.Fprintf(&b, "**doc**\n%s\n\nUsage: `%s%s`\nExamples:\n", docDescription, r.prefix, docUsage)
		for _, ex := range docExamples {
			fmt.Fprintf(&b, "`%s%s`\n", r.prefix, ex)
		}
		b.WriteString("\nOnly available in servers, requires the Manage Messages permission.")
		return b.String()
	}

	return fmt.Sprintf("%s\n`%sping` %s\n`%shelp [command]` %s\n`%s%s` %s",
		helpHeader,
		r.prefix, pingDescription,
		r.prefix, helpDescription,
		r.prefix, docUsage, docDescription,
	)
}

func (r *Router) reply(ctx context.Context, msg *discordgo.Message, content string) {
	_, err := r.session.ChannelMessageSendReply(msg.ChannelID, content, msg.Reference(), discordgo.WithContext(ctx))
	if err != nil {
		r.logger.Warn("failed to reply", "channel_id", msg.ChannelID, "error", err)
	}
}
