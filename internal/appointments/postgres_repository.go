package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brightsmile-dental/clinic-api/internal/schedule"
)

// pendingSlotIndex is the partial unique index that closes the concurrent
// double-booking race at the store.
const pendingSlotIndex = "appointments_pending_slot_idx"

// pgDB is the slice of pgxpool the repository needs; pgxmock satisfies it.
type pgDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores appointments in the relational database.
type PostgresRepository struct {
	db pgDB
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("appointments: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB allows injecting a mock database for testing.
func NewPostgresRepositoryWithDB(db pgDB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Insert creates a new pending row. A conflict with the pending-slot unique
// index is reported as ErrSlotConflict so callers can re-offer the calendar.
func (r *PostgresRepository) Insert(ctx context.Context, req NewAppointmentRequest) (*Appointment, error) {
	req = req.normalized()

	id := uuid.New()
	query := `
		INSERT INTO appointments
			(id, patient_name, email, phone, service, age, patient_type, notes, insurance, appointment_date, appointment_time, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING booked_at
	`
	var bookedAt time.Time
	if err := r.db.QueryRow(ctx, query,
		id,
		req.PatientName,
		req.Email,
		req.Phone,
		req.Service,
		req.Age,
		req.PatientType,
		req.Notes,
		req.Insurance,
		req.Date,
		req.Slot.String(),
		string(StatusPending),
	).Scan(&bookedAt); err != nil {
		if isPendingSlotConflict(err) {
			return nil, ErrSlotConflict
		}
		return nil, fmt.Errorf("appointments: insert failed: %w", err)
	}

	return &Appointment{
		ID:          id.String(),
		PatientName: req.PatientName,
		Email:       req.Email,
		Phone:       req.Phone,
		Service:     req.Service,
		Age:         req.Age,
		PatientType: req.PatientType,
		Notes:       req.Notes,
		Insurance:   req.Insurance,
		Date:        req.Date,
		Slot:        req.Slot,
		Status:      StatusPending,
		BookedAt:    bookedAt,
	}, nil
}

// List returns every appointment ordered by booking time descending.
func (r *PostgresRepository) List(ctx context.Context) ([]*Appointment, error) {
	query := `
		SELECT id, patient_name, email, phone, service, age, patient_type, notes, insurance, appointment_date, appointment_time, status, booked_at
		FROM appointments
		ORDER BY booked_at DESC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("appointments: select failed: %w", err)
	}
	defer rows.Close()

	var out []*Appointment
	for rows.Next() {
		apt, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, apt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: scan rows: %w", err)
	}
	return out, nil
}

// UpdateStatus transitions one appointment to the given status.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, status Status) error {
	tag, err := r.db.Exec(ctx, `UPDATE appointments SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("appointments: update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes one appointment.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("appointments: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByStatus removes every appointment in the given status with a single
// statement so a partial failure cannot leave a half-cleared dashboard.
func (r *PostgresRepository) DeleteByStatus(ctx context.Context, status Status) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM appointments WHERE status = $1`, string(status))
	if err != nil {
		return 0, fmt.Errorf("appointments: delete by status: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteAll clears the appointments table in a single statement.
func (r *PostgresRepository) DeleteAll(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM appointments`)
	if err != nil {
		return 0, fmt.Errorf("appointments: delete all: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var (
		apt     Appointment
		rawSlot string
		status  string
	)
	if err := row.Scan(
		&apt.ID,
		&apt.PatientName,
		&apt.Email,
		&apt.Phone,
		&apt.Service,
		&apt.Age,
		&apt.PatientType,
		&apt.Notes,
		&apt.Insurance,
		&apt.Date,
		&rawSlot,
		&status,
		&apt.BookedAt,
	); err != nil {
		return nil, fmt.Errorf("appointments: scan: %w", err)
	}
	slot, err := parseStoredSlot(rawSlot)
	if err != nil {
		return nil, err
	}
	apt.Slot = slot
	apt.Status = Status(status)
	return &apt, nil
}

func parseStoredSlot(raw string) (schedule.TimeSlot, error) {
	slot, err := schedule.ParseSlot(raw)
	if err != nil {
		return schedule.TimeSlot{}, fmt.Errorf("appointments: stored slot: %w", err)
	}
	return slot, nil
}

func isPendingSlotConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "23505" && pgErr.ConstraintName == pendingSlotIndex
}
