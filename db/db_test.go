package db

import (
	"context"
	"path/filepath"
	"testing"

	"guild-tickets/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDB(t *testing.T) *Database {
	t.Helper()

	d, err := Open(filepath.Join(t.TempDir(), "tickets.db"))
	require.NoError(t, err)

	t.Cleanup(func() { d.Close() })

	return d
}

func TestCreateAndFetch(t *testing.T) {
	d := testDB(t)
	ctx := context.Background()

	id, err := d.CreateTicket(ctx, "guild1", "chan1", "owner1", "Bug Report", "it broke")
	require.NoError(t, err)

	tik, err := d.Ticket(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, "guild1", tik.GuildID)
	assert.Equal(t, "chan1", tik.ChannelID)
	assert.Equal(t, "owner1", tik.OwnerID)
	assert.Equal(t, "Bug Report", tik.Category)
	assert.Equal(t, "it broke", tik.Topic)
	assert.Equal(t, types.TicketOpen, tik.Status)
	assert.False(t, tik.Claimed())
	assert.False(t, tik.Archived)
	assert.False(t, tik.CreatedAt.IsZero())

	byChannel, err := d.TicketByChannel(ctx, "chan1")
	require.NoError(t, err)
	assert.Equal(t, id, byChannel.ID)
}

func TestIDsAreMonotonic(t *testing.T) {
	d := testDB(t)
	ctx := context.Background()

	first, err := d.CreateTicket(ctx, "g", "c1", "o", "Overig", "")
	require.NoError(t, err)

	second, err := d.CreateTicket(ctx, "g", "c2", "o", "Overig", "")
	require.NoError(t, err)

	assert.Greater(t, second, first)
}

func TestNotFound(t *testing.T) {
	d := testDB(t)
	ctx := context.Background()

	_, err := d.Ticket(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = d.TicketByChannel(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, d.SetClaim(ctx, 42, "user"), ErrNotFound)
	assert.ErrorIs(t, d.SetStatus(ctx, 42, types.TicketClosed), ErrNotFound)
	assert.ErrorIs(t, d.MarkArchived(ctx, 42), ErrNotFound)
}

func TestClaimRoundTrip(t *testing.T) {
	d := testDB(t)
	ctx := context.Background()

	id, err := d.CreateTicket(ctx, "g", "c", "o", "Overig", "")
	require.NoError(t, err)

	require.NoError(t, d.SetClaim(ctx, id, "staff1"))

	tik, err := d.Ticket(ctx, id)
	require.NoError(t, err)
	assert.True(t, tik.Claimed())
	assert.Equal(t, "staff1", tik.ClaimedBy.String)

	require.NoError(t, d.SetClaim(ctx, id, ""))

	tik, err = d.Ticket(ctx, id)
	require.NoError(t, err)
	assert.False(t, tik.Claimed())
}

func TestCloseAndArchiveSweep(t *testing.T) {
	d := testDB(t)
	ctx := context.Background()

	id, err := d.CreateTicket(ctx, "g", "c", "o", "Overig", "")
	require.NoError(t, err)

	require.NoError(t, d.SetStatus(ctx, id, types.TicketClosed))

	tik, err := d.Ticket(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, types.TicketClosed, tik.Status)
	assert.False(t, tik.Open())
	assert.True(t, tik.ClosedAt.Valid, "closing must stamp closed_at")

	// Closed but never archived: the reconcile sweep must see it
	stranded, err := d.UnarchivedClosed(ctx)
	require.NoError(t, err)
	require.Len(t, stranded, 1)
	assert.Equal(t, id, stranded[0].ID)

	require.NoError(t, d.MarkArchived(ctx, id))

	stranded, err = d.UnarchivedClosed(ctx)
	require.NoError(t, err)
	assert.Empty(t, stranded)
}

func TestDeleteTicket(t *testing.T) {
	d := testDB(t)
	ctx := context.Background()

	id, err := d.CreateTicket(ctx, "g", "c", "o", "Overig", "")
	require.NoError(t, err)

	require.NoError(t, d.DeleteTicket(ctx, id))

	_, err = d.Ticket(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}
