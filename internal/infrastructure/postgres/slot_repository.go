package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hourglass-dev/timetube/internal/domain/model"
	"github.com/hourglass-dev/timetube/internal/domain/repository"
)

// DBTX is an interface that abstracts pgxpool.Pool and pgx.Tx for testability.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// SlotRepository implements repository.SlotRepository using PostgreSQL.
type SlotRepository struct {
	db DBTX
}

// NewSlotRepository creates a new SlotRepository instance.
func NewSlotRepository(db DBTX) *SlotRepository {
	return &SlotRepository{db: db}
}

// Get retrieves the slot for a canonical "HH:MM" key.
func (r *SlotRepository) Get(ctx context.Context, slotTime string) (*model.TimeSlot, error) {
	const query = `
		SELECT slot_time, video_id, video_url, title, view_count, thumbnail_url, created_at, updated_at
		FROM slots
		WHERE slot_time = $1
	`

	slot, err := scanSlot(r.db.QueryRow(ctx, query, slotTime))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrSlotNotFound
		}
		return nil, fmt.Errorf("failed to get slot: %w", err)
	}

	return slot, nil
}

// Upsert inserts the slot or replaces the row with the same time key.
// The conflict clause leaves created_at untouched so the stored row keeps
// its original insertion time; updated_at is always refreshed. The stored
// created_at is written back into the slot so callers hold the same
// timestamps as the durable row.
func (r *SlotRepository) Upsert(ctx context.Context, slot *model.TimeSlot) error {
	const query = `
		INSERT INTO slots (slot_time, video_id, video_url, title, view_count, thumbnail_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (slot_time) DO UPDATE SET
			video_id = EXCLUDED.video_id,
			video_url = EXCLUDED.video_url,
			title = EXCLUDED.title,
			view_count = EXCLUDED.view_count,
			thumbnail_url = EXCLUDED.thumbnail_url,
			updated_at = EXCLUDED.updated_at
		RETURNING created_at
	`

	slot.UpdatedAt = time.Now()

	err := r.db.QueryRow(ctx, query,
		slot.Time,
		slot.VideoID,
		slot.VideoURL,
		slot.Title,
		slot.ViewCount,
		nullString(slot.ThumbnailURL),
		slot.CreatedAt,
		slot.UpdatedAt,
	).Scan(&slot.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert slot: %w", err)
	}

	return nil
}

// Count returns the total number of stored slots.
func (r *SlotRepository) Count(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM slots`

	var count int
	if err := r.db.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count slots: %w", err)
	}

	return count, nil
}

// EvictOldest deletes the single slot with the minimum created_at, breaking
// ties by key order. Deleting zero rows is not an error.
func (r *SlotRepository) EvictOldest(ctx context.Context) error {
	const query = `
		DELETE FROM slots
		WHERE slot_time IN (
			SELECT slot_time FROM slots
			ORDER BY created_at ASC, slot_time ASC
			LIMIT 1
		)
	`

	if _, err := r.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to evict oldest slot: %w", err)
	}

	return nil
}

// Range returns slots in the closed interval [start, end]. When start > end
// the interval wraps past midnight and results are ordered from start
// onward (the late-evening segment first, then the early-morning one);
// otherwise results ascend by time. Canonical zero-padded keys make string
// comparison equivalent to minute comparison.
func (r *SlotRepository) Range(ctx context.Context, start, end string, limit int) ([]*model.TimeSlot, error) {
	const straightQuery = `
		SELECT slot_time, video_id, video_url, title, view_count, thumbnail_url, created_at, updated_at
		FROM slots
		WHERE slot_time >= $1 AND slot_time <= $2
		ORDER BY slot_time ASC
		LIMIT $3
	`
	const wrapQuery = `
		SELECT slot_time, video_id, video_url, title, view_count, thumbnail_url, created_at, updated_at
		FROM slots
		WHERE slot_time >= $1 OR slot_time <= $2
		ORDER BY slot_time < $1, slot_time ASC
		LIMIT $3
	`

	query := straightQuery
	if start > end {
		query = wrapQuery
	}

	rows, err := r.db.Query(ctx, query, start, end, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query slot range: %w", err)
	}
	defer rows.Close()

	return collectSlots(rows)
}

// List returns slots ascending by time, paginated by limit and offset.
func (r *SlotRepository) List(ctx context.Context, limit, offset int) ([]*model.TimeSlot, error) {
	const query = `
		SELECT slot_time, video_id, video_url, title, view_count, thumbnail_url, created_at, updated_at
		FROM slots
		ORDER BY slot_time ASC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list slots: %w", err)
	}
	defer rows.Close()

	return collectSlots(rows)
}

func collectSlots(rows pgx.Rows) ([]*model.TimeSlot, error) {
	var slots []*model.TimeSlot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan slot: %w", err)
		}
		slots = append(slots, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating slots: %w", err)
	}

	return slots, nil
}

func scanSlot(row pgx.Row) (*model.TimeSlot, error) {
	var (
		slot      model.TimeSlot
		thumbnail *string
	)

	err := row.Scan(
		&slot.Time,
		&slot.VideoID,
		&slot.VideoURL,
		&slot.Title,
		&slot.ViewCount,
		&thumbnail,
		&slot.CreatedAt,
		&slot.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if thumbnail != nil {
		slot.ThumbnailURL = *thumbnail
	}

	return &slot, nil
}

// nullString returns nil for empty strings, otherwise a pointer to the string.
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Compile-time verification that SlotRepository implements repository.SlotRepository.
var _ repository.SlotRepository = (*SlotRepository)(nil)
