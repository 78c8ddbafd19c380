package tickets

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"guild-tickets/db"
	"guild-tickets/types"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeArchiveSession drives Finalize without a gateway connection.
type fakeArchiveSession struct {
	history   []*discordgo.Message
	fetchErr  error
	sendErr   error
	dmErr     error
	deleteErr error

	sends   []string // channel ids a send reached
	dms     int
	deleted []string
}

func (f *fakeArchiveSession) ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}

	return f.history, nil
}

func (f *fakeArchiveSession) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}

	f.sends = append(f.sends, channelID)

	return &discordgo.Message{ChannelID: channelID}, nil
}

func (f *fakeArchiveSession) UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error) {
	if f.dmErr != nil {
		return nil, f.dmErr
	}

	f.dms++

	return &discordgo.Channel{ID: "dm-" + recipientID}, nil
}

func (f *fakeArchiveSession) ChannelDelete(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error) {
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}

	f.deleted = append(f.deleted, channelID)

	return &discordgo.Channel{ID: channelID}, nil
}

func testConfig(t *testing.T) *types.Config {
	t.Helper()

	return &types.Config{
		Channels:    types.ConfigChannels{LogChannel: "log-channel"},
		Transcripts: types.ConfigTranscripts{Dir: filepath.Join(t.TempDir(), "transcripts")},
		Roles:       types.ConfigRoles{StaffRole: "Support Team"},
	}
}

func closedTicket(t *testing.T, d *db.Database) *types.Ticket {
	t.Helper()

	ctx := context.Background()

	id, err := d.CreateTicket(ctx, "guild1", "chan1", "owner1", "Bug Report", "it broke")
	require.NoError(t, err)

	require.NoError(t, d.SetStatus(ctx, id, types.TicketClosed))

	tik, err := d.Ticket(ctx, id)
	require.NoError(t, err)

	return tik
}

func testDB(t *testing.T) *db.Database {
	t.Helper()

	d, err := db.Open(filepath.Join(t.TempDir(), "tickets.db"))
	require.NoError(t, err)

	t.Cleanup(func() { d.Close() })

	return d
}

func TestFinalizeDeliversAndArchives(t *testing.T) {
	d := testDB(t)
	ctx := context.Background()
	tik := closedTicket(t, d)

	f := &fakeArchiveSession{
		history: []*discordgo.Message{
			{Content: "hi", Timestamp: time.Now(), Author: &discordgo.User{Username: "owner1"}},
		},
	}

	Finalize(ctx, f, d, testConfig(t), zap.NewNop(), tik, "staff1")

	assert.Contains(t, f.sends, "log-channel")
	assert.Contains(t, f.sends, "dm-owner1")
	assert.Equal(t, []string{"chan1"}, f.deleted)

	got, err := d.Ticket(ctx, tik.ID)
	require.NoError(t, err)
	assert.True(t, got.Archived)
	assert.Equal(t, types.TicketClosed, got.Status)
}

func TestFinalizeDeliveryFailureStillDeletes(t *testing.T) {
	d := testDB(t)
	ctx := context.Background()
	tik := closedTicket(t, d)

	f := &fakeArchiveSession{
		sendErr: errors.New("send exploded"),
		dmErr:   errors.New("dms closed"),
	}

	Finalize(ctx, f, d, testConfig(t), zap.NewNop(), tik, "staff1")

	assert.Empty(t, f.sends)
	assert.Equal(t, []string{"chan1"}, f.deleted, "failed deliveries must not block deletion")

	got, err := d.Ticket(ctx, tik.ID)
	require.NoError(t, err)
	assert.True(t, got.Archived)
	assert.Equal(t, types.TicketClosed, got.Status, "ticket stays closed regardless of archive outcome")
}

func TestFinalizeFetchFailureSkipsDeliveryButDeletes(t *testing.T) {
	d := testDB(t)
	ctx := context.Background()
	tik := closedTicket(t, d)

	f := &fakeArchiveSession{
		fetchErr: errors.New("history unavailable"),
	}

	Finalize(ctx, f, d, testConfig(t), zap.NewNop(), tik, "staff1")

	assert.Empty(t, f.sends, "no empty transcript may be shipped when the fetch failed")
	assert.Zero(t, f.dms)
	assert.Equal(t, []string{"chan1"}, f.deleted, "fetch failure must not prevent the deletion attempt")

	got, err := d.Ticket(ctx, tik.ID)
	require.NoError(t, err)
	assert.True(t, got.Archived)
}

func TestFinalizeUnknownChannelMarksArchived(t *testing.T) {
	d := testDB(t)
	ctx := context.Background()
	tik := closedTicket(t, d)

	f := &fakeArchiveSession{
		fetchErr: errors.New("history unavailable"),
		deleteErr: &discordgo.RESTError{
			Message: &discordgo.APIErrorMessage{Code: discordgo.ErrCodeUnknownChannel},
		},
	}

	Finalize(ctx, f, d, testConfig(t), zap.NewNop(), tik, "")

	got, err := d.Ticket(ctx, tik.ID)
	require.NoError(t, err)
	assert.True(t, got.Archived, "a channel that is already gone counts as archived")

	stranded, err := d.UnarchivedClosed(ctx)
	require.NoError(t, err)
	assert.Empty(t, stranded, "the sweep must not pick this ticket up again")
}

func TestFinalizeDeleteFailureLeavesRowForSweep(t *testing.T) {
	d := testDB(t)
	ctx := context.Background()
	tik := closedTicket(t, d)

	f := &fakeArchiveSession{
		deleteErr: errors.New("rate limited"),
	}

	Finalize(ctx, f, d, testConfig(t), zap.NewNop(), tik, "staff1")

	got, err := d.Ticket(ctx, tik.ID)
	require.NoError(t, err)
	assert.False(t, got.Archived, "a transient delete failure must stay visible to the sweep")
	assert.Equal(t, types.TicketClosed, got.Status)
}

func TestReconcileFinalizesStranded(t *testing.T) {
	d := testDB(t)
	ctx := context.Background()
	tik := closedTicket(t, d)

	f := &fakeArchiveSession{}

	Reconcile(ctx, f, d, testConfig(t), zap.NewNop())

	assert.Equal(t, []string{tik.ChannelID}, f.deleted)

	stranded, err := d.UnarchivedClosed(ctx)
	require.NoError(t, err)
	assert.Empty(t, stranded)
}

func TestReconcileSkipsWhileSweepActive(t *testing.T) {
	d := testDB(t)
	ctx := context.Background()
	closedTicket(t, d)

	require.True(t, reconcileActive.CompareAndSwap(false, true))
	defer reconcileActive.Store(false)

	f := &fakeArchiveSession{}

	Reconcile(ctx, f, d, testConfig(t), zap.NewNop())

	assert.Empty(t, f.deleted, "an overlapping sweep must not deliver anything")
	assert.Empty(t, f.sends)

	stranded, err := d.UnarchivedClosed(ctx)
	require.NoError(t, err)
	assert.Len(t, stranded, 1, "the row stays for the next sweep")
}

func TestIsUnknownChannel(t *testing.T) {
	assert.False(t, isUnknownChannel(errors.New("plain")))
	assert.False(t, isUnknownChannel(nil))

	assert.True(t, isUnknownChannel(&discordgo.RESTError{
		Message: &discordgo.APIErrorMessage{Code: discordgo.ErrCodeUnknownChannel},
	}))

	assert.False(t, isUnknownChannel(&discordgo.RESTError{
		Message: &discordgo.APIErrorMessage{Code: discordgo.ErrCodeUnknownRole},
	}))
}
