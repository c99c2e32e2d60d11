package discord

import (
	"bytes"
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/custodia-labs/pindoc/internal/core/domain"
	"github.com/custodia-labs/pindoc/internal/core/ports/driven"
)

// Ensure ReplySink implements the interface.
var _ driven.DeliverySink = (*ReplySink)(nil)

// Sender is the subset of the Discord REST client used to answer a command.
// *discordgo.Session satisfies it.
type Sender interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// ReplySink answers a report job by replying to the message that requested it
type ReplySink struct {
	sender    Sender
	guildID   string
	channelID string
	messageID string
}

// NewReplySink creates a sink that replies to the job's originating message
func NewReplySink(sender Sender, job *domain.ReportJob) *ReplySink {
	return &ReplySink{
		sender:    sender,
		guildID:   job.Request.GuildID,
		channelID: job.ChannelID,
		messageID: job.MessageID,
	}
}

// Deliver posts the report as a Markdown attachment and pings the requester
func (s *ReplySink) Deliver(ctx context.Context, report *domain.Report) error {
	return s.send(ctx, &discordgo.MessageSend{
		Content: "Here's the generated summary doc",
		Files: []*discordgo.File{{
			Name:        report.Filename,
			ContentType: "text/markdown",
			Reader:      bytes.NewReader(report.Bytes()),
		}},
	}, true)
}

// RejectReference names the argument that matched nothing
func (s *ReplySink) RejectReference(ctx context.Context, token string) error {
	return s.send(ctx, &discordgo.MessageSend{
		Content: fmt.Sprintf("Found invalid channel argument => %q", token),
	}, false)
}

// ReportFailure tells the requester which date range could not be summarized
func (s *ReplySink) ReportFailure(ctx context.Context, rangeLabel string) error {
	return s.send(ctx, &discordgo.MessageSend{
		Content: fmt.Sprintf("Couldn't create a summary document for date range %q", rangeLabel),
	}, true)
}

// ReportBusy asks the requester to retry once the running report is done
func (s *ReplySink) ReportBusy(ctx context.Context) error {
	return s.send(ctx, &discordgo.MessageSend{
		Content: "A summary document is already being generated for this server, try again shortly",
	}, false)
}

// ReportUnavailable tells the requester reports can't be generated right now
func (s *ReplySink) ReportUnavailable(ctx context.Context) error {
	return s.send(ctx, &discordgo.MessageSend{
		Content: "Summary documents can't be generated right now, try again later",
	}, false)
}

func (s *ReplySink) send(ctx context.Context, msg *discordgo.MessageSend, ping bool) error {
	msg.Reference = &discordgo.MessageReference{
		MessageID: s.messageID,
		ChannelID: s.channelID,
		GuildID:   s.guildID,
	}
	msg.AllowedMentions = &discordgo.MessageAllowedMentions{RepliedUser: ping}

	if _, err := s.sender.ChannelMessageSendComplex(s.channelID, msg, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("reply to message %s: %w", s.messageID, err)
	}
	return nil
}
