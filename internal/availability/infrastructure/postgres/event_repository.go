package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	availability "staybook/internal/availability/domain"
)

const defaultEventsTable = "calendar_events"

// EventRepository is a Postgres calendar event store. ReserveRange runs the
// freshness read and the insert in one transaction, locking the overlapping
// rows so two concurrent reservations of the same days cannot both commit.
type EventRepository struct {
	db    *sql.DB
	table string
}

// RepositoryOption configures the repository.
type RepositoryOption func(*EventRepository)

// WithTable overrides the default table.
func WithTable(table string) RepositoryOption {
	return func(repo *EventRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// NewEventRepository constructs a repository with defaults.
func NewEventRepository(db *sql.DB, opts ...RepositoryOption) *EventRepository {
	repo := &EventRepository{db: db, table: defaultEventsTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// ListForRange returns events overlapping the half-open day range.
func (r *EventRepository) ListForRange(ctx context.Context, listingID string, from, to time.Time) ([]availability.CalendarEvent, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("event repo: nil db")
	}
	if listingID == "" {
		return nil, availability.ErrEmptyListingID
	}

	query := fmt.Sprintf(`
SELECT id, listing_id, start_date, end_date, channel, kind, status, uid, summary, source_url, created_at
FROM %s
WHERE listing_id = $1 AND start_date < $2 AND end_date > $3`, r.table)

	rows, err := r.db.QueryContext(ctx, query, listingID, to.UTC(), from.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

// ReserveRange atomically re-checks the range and inserts the event.
func (r *EventRepository) ReserveRange(ctx context.Context, event availability.CalendarEvent) error {
	if r == nil || r.db == nil {
		return errors.New("event repo: nil db")
	}
	if event.ID == "" || event.ListingID == "" {
		return availability.ErrNilEvent
	}

	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	lockQuery := fmt.Sprintf(`
SELECT id, listing_id, start_date, end_date, channel, kind, status, uid, summary, source_url, created_at
FROM %s
WHERE listing_id = $1 AND start_date < $2 AND end_date > $3
FOR UPDATE`, r.table)

	rows, err := tx.QueryContext(ctx, lockQuery, event.ListingID, event.End.UTC(), event.Start.UTC())
	if err != nil {
		return err
	}
	overlapping, err := scanEvents(rows)
	rows.Close()
	if err != nil {
		return err
	}

	if err := availability.CheckRangeFree(overlapping, event.Start, event.End); err != nil {
		var conflict *availability.ConflictError
		if errors.As(err, &conflict) {
			conflict.ListingID = event.ListingID
		}
		return err
	}

	insertQuery := fmt.Sprintf(`
INSERT INTO %s (id, listing_id, start_date, end_date, channel, kind, status, uid, summary, source_url, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`, r.table)

	if _, err := tx.ExecContext(ctx, insertQuery,
		event.ID, event.ListingID, event.Start.UTC(), event.End.UTC(),
		string(event.Channel), string(event.Kind), string(event.Status),
		event.UID, event.Summary, event.SourceURL, event.CreatedAt.UTC(),
	); err != nil {
		return err
	}

	return tx.Commit()
}

// ReplaceChannelEvents swaps a channel's events for a listing in one
// transaction, so a feed sync never leaves a partial calendar behind.
func (r *EventRepository) ReplaceChannelEvents(ctx context.Context, listingID string, channel availability.Channel, events []availability.CalendarEvent) error {
	if r == nil || r.db == nil {
		return errors.New("event repo: nil db")
	}
	if listingID == "" {
		return availability.ErrEmptyListingID
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	deleteQuery := fmt.Sprintf(`DELETE FROM %s WHERE listing_id = $1 AND channel = $2`, r.table)
	if _, err := tx.ExecContext(ctx, deleteQuery, listingID, string(channel)); err != nil {
		return err
	}

	insertQuery := fmt.Sprintf(`
INSERT INTO %s (id, listing_id, start_date, end_date, channel, kind, status, uid, summary, source_url, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`, r.table)

	for _, event := range events {
		if _, err := tx.ExecContext(ctx, insertQuery,
			event.ID, event.ListingID, event.Start.UTC(), event.End.UTC(),
			string(event.Channel), string(event.Kind), string(event.Status),
			event.UID, event.Summary, event.SourceURL, event.CreatedAt.UTC(),
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func scanEvents(rows *sql.Rows) ([]availability.CalendarEvent, error) {
	var events []availability.CalendarEvent
	for rows.Next() {
		var event availability.CalendarEvent
		var channel, kind, status string
		if err := rows.Scan(
			&event.ID, &event.ListingID, &event.Start, &event.End,
			&channel, &kind, &status,
			&event.UID, &event.Summary, &event.SourceURL, &event.CreatedAt,
		); err != nil {
			return nil, err
		}
		event.Channel = availability.Channel(channel)
		event.Kind = availability.EventKind(kind)
		event.Status = availability.BookingStatus(status)
		events = append(events, event)
	}
	return events, rows.Err()
}
