package tickets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"guild-tickets/db"
	"guild-tickets/transcript"
	"guild-tickets/types"
	"guild-tickets/utils"

	"github.com/bwmarrin/discordgo"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigFastest

// closeDelay is how long the countdown notice stays up before the channel
// is archived and deleted. Not cancellable.
const closeDelay = 5 * time.Second

// Close marks the ticket closed immediately, posts a countdown notice and
// schedules the archive step. The closed status is durable the moment
// this returns; everything after the delay is best effort and, if the
// process dies inside the window, Reconcile picks the ticket back up at
// the next start.
func Close(ctx context.Context, s *discordgo.Session, database *db.Database, config *types.Config, logger *zap.Logger, i *discordgo.Interaction, tik *types.Ticket) error {
	if ok, err := RequireStaff(s, config, i, logger); !ok {
		return err
	}

	if !tik.Open() {
		return utils.Ephemeral(s, i, "This ticket is already closed.")
	}

	if err := database.SetStatus(ctx, tik.ID, types.TicketClosed); err != nil {
		return fmt.Errorf("error closing ticket %d: %w", tik.ID, err)
	}

	closedBy := i.Member.User.ID

	logger.Info("Closing ticket", zap.Int64("ticketId", tik.ID), zap.String("userId", closedBy))

	notice(s, logger, tik.ChannelID, fmt.Sprintf("Ticket #%d has been closed by %s. This channel will be deleted in %s.", tik.ID, i.Member.Mention(), closeDelay))

	time.AfterFunc(closeDelay, func() {
		Finalize(context.Background(), s, database, config, logger, tik, closedBy)
	})

	return utils.Ephemeral(s, i, fmt.Sprintf("Ticket #%d is closing.", tik.ID))
}

// ArchiveSession is the slice of discordgo.Session the archive step
// needs.
type ArchiveSession interface {
	transcript.HistoryFetcher
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelDelete(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
}

// isUnknownChannel reports whether the platform rejected the call because
// the channel no longer exists.
func isUnknownChannel(err error) bool {
	var rerr *discordgo.RESTError

	if !errors.As(err, &rerr) {
		return false
	}

	if rerr.Message != nil && rerr.Message.Code == discordgo.ErrCodeUnknownChannel {
		return true
	}

	return rerr.Response != nil && rerr.Response.StatusCode == http.StatusNotFound
}

// Finalize runs the post-close archive step: build the transcript,
// deliver it to the log channel and to the requester, then delete the
// channel. Each delivery failure is logged and swallowed independently so
// a broken step never blocks the ones after it. A history fetch failure
// skips delivery entirely rather than shipping an empty transcript, and a
// delete against an already-gone channel still counts as archived, so the
// reconcile sweep cannot re-deliver the same ticket forever.
func Finalize(ctx context.Context, s ArchiveSession, database *db.Database, config *types.Config, logger *zap.Logger, tik *types.Ticket, closedBy string) {
	messages, err := transcript.Fetch(s, tik.ChannelID)

	if err != nil {
		logger.Error("Error fetching ticket history", zap.Error(err), zap.Int64("ticketId", tik.ID), zap.String("channelId", tik.ChannelID))
	} else {
		if _, err := transcript.Write(config.Transcripts.Dir, tik.ChannelID, messages); err != nil {
			logger.Error("Error writing transcript file", zap.Error(err), zap.Int64("ticketId", tik.ID))
		}

		embed := closedEmbed(tik, closedBy)

		if config.Channels.LogChannel != "" {
			_, serr := s.ChannelMessageSendComplex(config.Channels.LogChannel, &discordgo.MessageSend{
				Embeds: []*discordgo.MessageEmbed{embed},
				Files:  transcriptFiles(tik, messages),
			})

			if serr != nil {
				logger.Error("Error sending transcript to log channel", zap.Error(serr), zap.Int64("ticketId", tik.ID))
			}
		}

		dm, derr := s.UserChannelCreate(tik.OwnerID)

		if derr != nil {
			logger.Error("Error creating DM channel", zap.Error(derr), zap.String("userId", tik.OwnerID))
		} else {
			_, derr = s.ChannelMessageSendComplex(dm.ID, &discordgo.MessageSend{
				Embeds: []*discordgo.MessageEmbed{embed},
				Files:  transcriptFiles(tik, messages),
			})

			if derr != nil {
				logger.Error("Error sending transcript to user", zap.Error(derr), zap.String("userId", tik.OwnerID))
			}
		}
	}

	if _, err := s.ChannelDelete(tik.ChannelID); err != nil {
		if !isUnknownChannel(err) {
			logger.Error("Error deleting ticket channel", zap.Error(err), zap.Int64("ticketId", tik.ID), zap.String("channelId", tik.ChannelID))
			return
		}

		logger.Info("Ticket channel already gone", zap.Int64("ticketId", tik.ID), zap.String("channelId", tik.ChannelID))
	}

	if err := database.MarkArchived(ctx, tik.ID); err != nil {
		logger.Error("Error marking ticket archived", zap.Error(err), zap.Int64("ticketId", tik.ID))
	}
}

// reconcileActive keeps overlapping sweeps from double-delivering the
// same stranded row; the gateway can fire Ready more than once per
// process (a failed resume re-identifies).
var reconcileActive atomic.Bool

// Reconcile finishes closes that were interrupted by a restart during the
// countdown window, so no channel is left dangling with a closed record.
// At most one sweep runs at a time; a sweep requested while another is
// running is dropped, the next Ready retries anyway.
func Reconcile(ctx context.Context, s ArchiveSession, database *db.Database, config *types.Config, logger *zap.Logger) {
	if !reconcileActive.CompareAndSwap(false, true) {
		logger.Info("Reconcile sweep already running, skipping")
		return
	}

	defer reconcileActive.Store(false)

	stranded, err := database.UnarchivedClosed(ctx)

	if err != nil {
		logger.Error("Error listing stranded closed tickets", zap.Error(err))
		return
	}

	for idx := range stranded {
		tik := stranded[idx]

		logger.Info("Reconciling stranded closed ticket", zap.Int64("ticketId", tik.ID), zap.String("channelId", tik.ChannelID))

		Finalize(ctx, s, database, config, logger, &tik, "")
	}
}

// SendTranscript builds a transcript on demand and delivers it to the log
// channel and to the invoker, without touching ticket state or the
// channel. Staff may do this at any time regardless of status.
func SendTranscript(ctx context.Context, s *discordgo.Session, database *db.Database, config *types.Config, logger *zap.Logger, i *discordgo.Interaction, tik *types.Ticket) error {
	if ok, err := RequireStaff(s, config, i, logger); !ok {
		return err
	}

	messages, err := transcript.Fetch(s, tik.ChannelID)

	if err != nil {
		return fmt.Errorf("error fetching ticket history: %w", err)
	}

	if _, err := transcript.Write(config.Transcripts.Dir, tik.ChannelID, messages); err != nil {
		logger.Error("Error writing transcript file", zap.Error(err), zap.Int64("ticketId", tik.ID))
	}

	if config.Channels.LogChannel != "" {
		_, err = s.ChannelMessageSendComplex(config.Channels.LogChannel, &discordgo.MessageSend{
			Embeds: []*discordgo.MessageEmbed{transcriptEmbed(tik, i.Member.User.ID)},
			Files:  transcriptFiles(tik, messages),
		})

		if err != nil {
			logger.Error("Error sending transcript to log channel", zap.Error(err), zap.Int64("ticketId", tik.ID))
		}
	}

	return s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf("Transcript for ticket #%d:", tik.ID),
			Flags:   discordgo.MessageFlagsEphemeral,
			Files:   transcriptFiles(tik, messages),
			AllowedMentions: &discordgo.MessageAllowedMentions{
				Parse: []discordgo.AllowedMentionType{},
			},
		},
	})
}

// transcriptFiles builds fresh attachment readers for one delivery. The
// readers cannot be shared between sends, so each call allocates its own.
func transcriptFiles(tik *types.Ticket, messages []*discordgo.Message) []*discordgo.File {
	files := []*discordgo.File{
		{
			Name:        tik.ChannelID + ".txt",
			ContentType: "text/plain; charset=utf-8",
			Reader:      bytes.NewReader([]byte(transcript.Render(messages))),
		},
	}

	meta, err := json.Marshal(map[string]any{
		"id":         tik.ID,
		"guild_id":   tik.GuildID,
		"channel_id": tik.ChannelID,
		"owner_id":   tik.OwnerID,
		"claimed_by": tik.ClaimedBy.String,
		"status":     tik.Status,
		"category":   tik.Category,
		"topic":      tik.Topic,
		"created_at": tik.CreatedAt,
	})

	if err == nil {
		files = append(files, &discordgo.File{
			Name:        fmt.Sprintf("ticket-%d.json", tik.ID),
			ContentType: "application/json",
			Reader:      bytes.NewReader(meta),
		})
	}

	return files
}

func closedEmbed(tik *types.Ticket, closedBy string) *discordgo.MessageEmbed {
	fields := []*discordgo.MessageEmbedField{
		{
			Name:   "Ticket ID",
			Value:  fmt.Sprintf("%d", tik.ID),
			Inline: false,
		},
		{
			Name:   "Category",
			Value:  tik.Category,
			Inline: false,
		},
		{
			Name:   "Opened By",
			Value:  "<@" + tik.OwnerID + ">",
			Inline: false,
		},
	}

	if closedBy != "" {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   "Closed By",
			Value:  "<@" + closedBy + ">",
			Inline: false,
		})
	}

	if tik.Claimed() {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   "Claimed By",
			Value:  "<@" + tik.ClaimedBy.String + ">",
			Inline: false,
		})
	}

	return &discordgo.MessageEmbed{
		Title:  "Ticket Closed",
		Fields: fields,
	}
}

func transcriptEmbed(tik *types.Ticket, requestedBy string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "Ticket Transcript",
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Ticket ID",
				Value:  fmt.Sprintf("%d", tik.ID),
				Inline: false,
			},
			{
				Name:   "Category",
				Value:  tik.Category,
				Inline: false,
			},
			{
				Name:   "Requested By",
				Value:  "<@" + requestedBy + ">",
				Inline: false,
			},
		},
	}
}
