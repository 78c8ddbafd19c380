package types

import (
	"database/sql"
	"time"
)

type TicketStatus string

const (
	TicketOpen   TicketStatus = "open"
	TicketClosed TicketStatus = "closed"
)

type Ticket struct {
	ID        int64          `db:"id"`
	GuildID   string         `db:"guild_id"`
	ChannelID string         `db:"channel_id"`
	OwnerID   string         `db:"owner_id"`
	ClaimedBy sql.NullString `db:"claimed_by"`
	Status    TicketStatus   `db:"status"`
	Category  string         `db:"category"`
	Topic     string         `db:"topic"`
	CreatedAt time.Time      `db:"created_at"`
	ClosedAt  sql.NullTime   `db:"closed_at"`
	Archived  bool           `db:"archived"`
}

// Open reports whether the ticket has not yet been closed.
func (t *Ticket) Open() bool {
	return t.Status != TicketClosed
}

// Claimed reports whether a staff member currently holds the ticket.
func (t *Ticket) Claimed() bool {
	return t.ClaimedBy.Valid && t.ClaimedBy.String != ""
}
