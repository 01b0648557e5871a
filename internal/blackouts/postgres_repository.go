package blackouts

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brightsmile-dental/clinic-api/internal/schedule"
)

// pgDB is the slice of pgxpool the repository needs; pgxmock satisfies it.
type pgDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores blackout records in the relational database.
type PostgresRepository struct {
	db pgDB
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("blackouts: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB allows injecting a mock database for testing.
func NewPostgresRepositoryWithDB(db pgDB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Insert creates a new blackout row. A nil slot is stored as NULL and means
// the whole day is closed.
func (r *PostgresRepository) Insert(ctx context.Context, req NewBlackoutRequest) (*Blackout, error) {
	id := uuid.New()
	var slotValue any
	if req.Slot != nil {
		slotValue = req.Slot.String()
	}
	query := `
		INSERT INTO blackouts (id, blackout_date, blackout_time, reason)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	var createdAt time.Time
	if err := r.db.QueryRow(ctx, query, id, req.Date, slotValue, req.Reason).Scan(&createdAt); err != nil {
		return nil, fmt.Errorf("blackouts: insert failed: %w", err)
	}

	return &Blackout{
		ID:        id.String(),
		Date:      req.Date,
		Slot:      req.Slot,
		Reason:    req.Reason,
		CreatedAt: createdAt,
	}, nil
}

// List returns every blackout ordered by date ascending.
func (r *PostgresRepository) List(ctx context.Context) ([]*Blackout, error) {
	query := `
		SELECT id, blackout_date, blackout_time, reason, created_at
		FROM blackouts
		ORDER BY blackout_date ASC, created_at ASC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("blackouts: select failed: %w", err)
	}
	defer rows.Close()

	var out []*Blackout
	for rows.Next() {
		var (
			b       Blackout
			rawSlot sql.NullString
			reason  sql.NullString
		)
		if err := rows.Scan(&b.ID, &b.Date, &rawSlot, &reason, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("blackouts: scan: %w", err)
		}
		if rawSlot.Valid {
			slot, err := schedule.ParseSlot(rawSlot.String)
			if err != nil {
				return nil, fmt.Errorf("blackouts: stored slot: %w", err)
			}
			b.Slot = &slot
		}
		b.Reason = reason.String
		out = append(out, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("blackouts: scan rows: %w", err)
	}
	return out, nil
}

// Delete removes one blackout record.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM blackouts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("blackouts: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
