// Package transcript renders a channel's full message history to a
// plain-text file, oldest message first.
package transcript

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

// pageSize is the maximum page the platform serves per history request.
const pageSize = 100

// HistoryFetcher is the slice of discordgo.Session the builder needs.
type HistoryFetcher interface {
	ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error)
}

// Fetch walks the channel's history backwards in pages of pageSize,
// anchoring each request before the oldest message seen so far, and
// returns the messages in chronological order. The walk must stay
// strictly backward: a short or empty page means the start of history
// was reached.
func Fetch(f HistoryFetcher, channelID string) ([]*discordgo.Message, error) {
	var messages []*discordgo.Message

	var beforeID string

	for {
		page, err := f.ChannelMessages(channelID, pageSize, beforeID, "", "")

		if err != nil {
			return nil, fmt.Errorf("error fetching messages before %q: %w", beforeID, err)
		}

		messages = append(messages, page...)

		if len(page) < pageSize {
			break
		}

		beforeID = page[len(page)-1].ID
	}

	// Pages arrive newest-first; flip to chronological order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

// Render flattens messages to text: one line per message as
// "[timestamp] author: content", followed by one indented line per
// attachment URL.
func Render(messages []*discordgo.Message) string {
	var b strings.Builder

	for _, msg := range messages {
		var author string

		if msg.Author != nil {
			author = msg.Author.Username
		}

		b.WriteString("[" + msg.Timestamp.UTC().Format(time.RFC3339) + "] " + author + ": " + msg.Content + "\n")

		for _, attachment := range msg.Attachments {
			b.WriteString("    " + attachment.URL + "\n")
		}
	}

	return b.String()
}

// Write renders messages and stores the transcript under dir, keyed by
// channel id. Regenerating overwrites the previous file.
func Write(dir, channelID string, messages []*discordgo.Message) (string, error) {
	if err := os.MkdirAll(dir, 0775); err != nil {
		return "", fmt.Errorf("error creating transcript directory: %w", err)
	}

	path := filepath.Join(dir, channelID+".txt")

	if err := os.WriteFile(path, []byte(Render(messages)), 0664); err != nil {
		return "", fmt.Errorf("error writing transcript: %w", err)
	}

	return path, nil
}
