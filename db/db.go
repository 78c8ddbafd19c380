package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"guild-tickets/types"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when no ticket matches the lookup.
var ErrNotFound = errors.New("ticket not found")

const schema = `
CREATE TABLE IF NOT EXISTS tickets (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	guild_id TEXT NOT NULL,
	channel_id TEXT NOT NULL,
	owner_id TEXT NOT NULL,
	claimed_by TEXT,
	status TEXT NOT NULL DEFAULT 'open',
	category TEXT NOT NULL,
	topic TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	closed_at TIMESTAMP,
	archived INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS tickets_channel_idx ON tickets (channel_id);
`

type Database struct {
	db *sqlx.DB
}

// Open opens (creating if needed) the ticket database at path and ensures
// the schema. The WAL journal mode and a busy timeout are set through the
// DSN so every connection in the pool gets them.
func Open(path string) (*Database, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on", path)

	db, err := sqlx.Connect("sqlite3", dsn)

	if err != nil {
		return nil, fmt.Errorf("error opening sqlite database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("error ensuring schema: %w", err)
	}

	return &Database{db: db}, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

// CreateTicket inserts a new open ticket and returns its assigned id.
func (d *Database) CreateTicket(ctx context.Context, guildID, channelID, ownerID, category, topic string) (int64, error) {
	res, err := d.db.ExecContext(
		ctx,
		"INSERT INTO tickets (guild_id, channel_id, owner_id, status, category, topic) VALUES (?, ?, ?, ?, ?, ?)",
		guildID, channelID, ownerID, types.TicketOpen, category, topic,
	)

	if err != nil {
		return 0, fmt.Errorf("error inserting ticket: %w", err)
	}

	id, err := res.LastInsertId()

	if err != nil {
		return 0, fmt.Errorf("error reading inserted ticket id: %w", err)
	}

	return id, nil
}

// Ticket fetches a ticket by its id.
func (d *Database) Ticket(ctx context.Context, id int64) (*types.Ticket, error) {
	var t types.Ticket

	err := d.db.GetContext(ctx, &t, "SELECT * FROM tickets WHERE id = ?", id)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("error fetching ticket %d: %w", id, err)
	}

	return &t, nil
}

// TicketByChannel fetches the most recent ticket bound to a channel. Open
// tickets are unique per channel; after close the row survives the channel
// so the latest row is the authoritative one.
func (d *Database) TicketByChannel(ctx context.Context, channelID string) (*types.Ticket, error) {
	var t types.Ticket

	err := d.db.GetContext(ctx, &t, "SELECT * FROM tickets WHERE channel_id = ? ORDER BY id DESC LIMIT 1", channelID)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("error fetching ticket for channel %s: %w", channelID, err)
	}

	return &t, nil
}

// SetClaim records userID as the claiming staff member. An empty userID
// clears the claim.
func (d *Database) SetClaim(ctx context.Context, id int64, userID string) error {
	var claimedBy any

	if userID != "" {
		claimedBy = userID
	}

	res, err := d.db.ExecContext(ctx, "UPDATE tickets SET claimed_by = ? WHERE id = ?", claimedBy, id)

	if err != nil {
		return fmt.Errorf("error updating claim on ticket %d: %w", id, err)
	}

	return requireRow(res, id)
}

// SetStatus updates the ticket status, stamping closed_at on close.
func (d *Database) SetStatus(ctx context.Context, id int64, status types.TicketStatus) error {
	var (
		res sql.Result
		err error
	)

	if status == types.TicketClosed {
		res, err = d.db.ExecContext(ctx, "UPDATE tickets SET status = ?, closed_at = CURRENT_TIMESTAMP WHERE id = ?", status, id)
	} else {
		res, err = d.db.ExecContext(ctx, "UPDATE tickets SET status = ? WHERE id = ?", status, id)
	}

	if err != nil {
		return fmt.Errorf("error updating status on ticket %d: %w", id, err)
	}

	return requireRow(res, id)
}

// MarkArchived records that the post-close archive step (transcript
// delivery and channel deletion) has completed for the ticket.
func (d *Database) MarkArchived(ctx context.Context, id int64) error {
	res, err := d.db.ExecContext(ctx, "UPDATE tickets SET archived = 1 WHERE id = ?", id)

	if err != nil {
		return fmt.Errorf("error marking ticket %d archived: %w", id, err)
	}

	return requireRow(res, id)
}

// UnarchivedClosed returns closed tickets whose archive step never ran,
// i.e. closes interrupted by a restart during the countdown window.
func (d *Database) UnarchivedClosed(ctx context.Context) ([]types.Ticket, error) {
	var tickets []types.Ticket

	err := d.db.SelectContext(ctx, &tickets, "SELECT * FROM tickets WHERE status = ? AND archived = 0", types.TicketClosed)

	if err != nil {
		return nil, fmt.Errorf("error listing unarchived closed tickets: %w", err)
	}

	return tickets, nil
}

// DeleteTicket removes a ticket row. Only used to roll back a partially
// created ticket whose intro message could not be posted.
func (d *Database) DeleteTicket(ctx context.Context, id int64) error {
	_, err := d.db.ExecContext(ctx, "DELETE FROM tickets WHERE id = ?", id)

	if err != nil {
		return fmt.Errorf("error deleting ticket %d: %w", id, err)
	}

	return nil
}

func requireRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()

	if err != nil {
		return fmt.Errorf("error reading affected rows for ticket %d: %w", id, err)
	}

	if n == 0 {
		return ErrNotFound
	}

	return nil
}
