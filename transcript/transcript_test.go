package transcript

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeHistory serves a fixed history through the same newest-first,
// before-anchored paging contract the platform uses.
type fakeHistory struct {
	// newest first, as the API returns them
	messages []*discordgo.Message
	calls    int
}

func (f *fakeHistory) ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error) {
	f.calls++

	start := 0

	if beforeID != "" {
		for idx, msg := range f.messages {
			if msg.ID == beforeID {
				start = idx + 1
				break
			}
		}
	}

	end := start + limit

	if end > len(f.messages) {
		end = len(f.messages)
	}

	return f.messages[start:end], nil
}

func makeHistory(n int) *fakeHistory {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	msgs := make([]*discordgo.Message, n)

	// index 0 is the newest message
	for i := 0; i < n; i++ {
		seq := n - i

		msgs[i] = &discordgo.Message{
			ID:        fmt.Sprintf("%06d", seq),
			Content:   fmt.Sprintf("message %d", seq),
			Timestamp: base.Add(time.Duration(seq) * time.Second),
			Author:    &discordgo.User{Username: "user"},
		}
	}

	return &fakeHistory{messages: msgs}
}

func TestFetchPagesBackwardAndReturnsChronological(t *testing.T) {
	f := makeHistory(250)

	got, err := Fetch(f, "123")
	require.NoError(t, err)

	require.Len(t, got, 250)
	assert.Equal(t, 3, f.calls, "250 messages should span pages of 100+100+50")

	for i := 1; i < len(got); i++ {
		if got[i].Timestamp.Before(got[i-1].Timestamp) {
			t.Fatalf("message %d out of order: %s before %s", i, got[i].Timestamp, got[i-1].Timestamp)
		}
	}

	assert.Equal(t, "message 1", got[0].Content)
	assert.Equal(t, "message 250", got[249].Content)
}

func TestFetchExactPageBoundary(t *testing.T) {
	// 200 messages: the second page is full, so a third (empty) fetch
	// is needed to detect the end of history.
	f := makeHistory(200)

	got, err := Fetch(f, "123")
	require.NoError(t, err)

	require.Len(t, got, 200)
	assert.Equal(t, 3, f.calls)
}

func TestRender(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	msgs := []*discordgo.Message{
		{
			Content:   "hello there",
			Timestamp: ts,
			Author:    &discordgo.User{Username: "jake"},
		},
		{
			Content:   "see attached",
			Timestamp: ts.Add(time.Minute),
			Author:    &discordgo.User{Username: "staff"},
			Attachments: []*discordgo.MessageAttachment{
				{URL: "https://cdn.example.com/a.png"},
				{URL: "https://cdn.example.com/b.png"},
			},
		},
	}

	out := Render(msgs)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4, "one line per message plus one per attachment")

	assert.Equal(t, "[2024-05-01T12:00:00Z] jake: hello there", lines[0])
	assert.Equal(t, "[2024-05-01T12:01:00Z] staff: see attached", lines[1])
	assert.Equal(t, "    https://cdn.example.com/a.png", lines[2])
	assert.Equal(t, "    https://cdn.example.com/b.png", lines[3])
}

func TestWriteOverwrites(t *testing.T) {
	dir := t.TempDir()

	first := []*discordgo.Message{
		{Content: "one", Author: &discordgo.User{Username: "a"}},
	}

	path, err := Write(dir, "99887766", first)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "99887766.txt"), path)

	second := []*discordgo.Message{
		{Content: "two", Author: &discordgo.User{Username: "b"}},
	}

	_, err = Write(dir, "99887766", second)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.NotContains(t, string(data), "one")
	assert.Contains(t, string(data), "two")
}
