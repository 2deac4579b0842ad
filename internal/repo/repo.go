package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/dbpg"

	"github.com/avora-app/reservations/internal/model"
)

var ErrReservationNotFound = errors.New("reservation not found")

// Filter narrows the moderation listing. Zero values mean "no constraint".
type Filter struct {
	Status      string
	Date        string
	CreatedFrom string
	CreatedTo   string
	Search      string
}

type Repository interface {
	Create(ctx context.Context, r *model.Reservation) (int64, error)
	GetByID(ctx context.Context, id int64) (*model.Reservation, error)
	List(ctx context.Context) ([]model.Reservation, error)
	ModerationList(ctx context.Context, f Filter) ([]model.Reservation, error)
	UpdateStatusTx(ctx context.Context, id int64, newStatus string) (string, *model.Reservation, error)
	DeclineIfStillPendingTx(ctx context.Context, id int64) (bool, error)
	MigrateUp(migrationsDir string) error
}

type repository struct {
	db  *dbpg.DB
	log *zerolog.Logger
}

func NewRepository(db *dbpg.DB, log *zerolog.Logger) (Repository, error) {
	if db == nil {
		return nil, fmt.Errorf("db cannot be nil")
	}
	if err := db.Master.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}
	return &repository{db: db, log: log}, nil
}

func (r *repository) MigrateUp(migrationsDir string) error {
	files, err := filepath.Glob(filepath.Join(migrationsDir, "*.up.sql"))
	if err != nil {
		return fmt.Errorf("failed to read migration files: %w", err)
	}

	for _, file := range files {
		sqlBytes, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", file, err)
		}

		if _, err := r.db.ExecContext(context.Background(), string(sqlBytes)); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", file, err)
		}
	}

	r.log.Info().Msgf("Migrations applied successfully from %s", migrationsDir)
	return nil
}

// Column list shared by every SELECT. DATE/TIME columns are rendered to the
// wire strings here so the rest of the code never touches driver time types.
const selectColumns = `
	id, name, email, phone,
	to_char(date, 'YYYY-MM-DD'),
	to_char(start_time, 'HH24:MI'),
	to_char(end_time, 'HH24:MI'),
	number_of_guests, COALESCE(special_requests, ''), status,
	created_at, updated_at
`

func scanReservation(row interface{ Scan(...any) error }) (*model.Reservation, error) {
	var res model.Reservation
	err := row.Scan(
		&res.ID,
		&res.Name,
		&res.Email,
		&res.Phone,
		&res.Date,
		&res.StartTime,
		&res.EndTime,
		&res.NumberOfGuests,
		&res.SpecialRequests,
		&res.Status,
		&res.CreatedAt,
		&res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *repository) Create(ctx context.Context, res *model.Reservation) (int64, error) {
	query := `
		INSERT INTO reservations (name, email, phone, date, start_time, end_time,
		                          number_of_guests, special_requests, status)
		VALUES ($1, $2, $3, $4::date, $5::time, $6::time, $7, NULLIF($8, ''), $9)
		RETURNING id, created_at, updated_at
	`

	row := r.db.QueryRowContext(ctx, query,
		res.Name, res.Email, res.Phone, res.Date, res.StartTime, res.EndTime,
		res.NumberOfGuests, res.SpecialRequests, res.Status,
	)

	var id int64
	if err := row.Scan(&id, &res.CreatedAt, &res.UpdatedAt); err != nil {
		return 0, fmt.Errorf("failed to insert reservation: %w", err)
	}
	res.ID = id
	return id, nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*model.Reservation, error) {
	query := `SELECT ` + selectColumns + ` FROM reservations WHERE id = $1`

	res, err := scanReservation(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	return res, nil
}

func (r *repository) List(ctx context.Context) ([]model.Reservation, error) {
	query := `SELECT ` + selectColumns + ` FROM reservations ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	defer rows.Close()

	return collect(rows)
}

func (r *repository) ModerationList(ctx context.Context, f Filter) ([]model.Reservation, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Status != "" {
		conds = append(conds, "status = "+arg(f.Status))
	}
	if f.Date != "" {
		conds = append(conds, "date = "+arg(f.Date)+"::date")
	}
	if f.CreatedFrom != "" {
		conds = append(conds, "created_at >= "+arg(f.CreatedFrom)+"::timestamptz")
	}
	if f.CreatedTo != "" {
		conds = append(conds, "created_at <= "+arg(f.CreatedTo)+"::timestamptz")
	}
	if f.Search != "" {
		p := arg("%" + f.Search + "%")
		conds = append(conds, "(name ILIKE "+p+" OR email ILIKE "+p+" OR phone ILIKE "+p+")")
	}

	query := `SELECT ` + selectColumns + ` FROM reservations`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY date DESC, start_time DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations for moderation: %w", err)
	}
	defer rows.Close()

	return collect(rows)
}

func collect(rows *sql.Rows) ([]model.Reservation, error) {
	var out []model.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		out = append(out, *res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read reservations: %w", err)
	}
	return out, nil
}

// UpdateStatusTx sets the status and returns both the status it replaced and
// the updated record. The read holds the row lock, so the old status is
// exactly what this update overwrote even under concurrent moderation.
func (r *repository) UpdateStatusTx(ctx context.Context, id int64, newStatus string) (string, *model.Reservation, error) {
	tx, err := r.db.Master.BeginTx(ctx, nil)
	if err != nil {
		return "", nil, fmt.Errorf("failed to start transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	var oldStatus string
	err = tx.QueryRowContext(ctx, `
		SELECT status FROM reservations WHERE id = $1 FOR UPDATE
	`, id).Scan(&oldStatus)
	if err != nil {
		_ = tx.Rollback()
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil, ErrReservationNotFound
		}
		return "", nil, fmt.Errorf("failed to select reservation for update: %w", err)
	}

	res, err := scanReservation(tx.QueryRowContext(ctx, `
		UPDATE reservations SET status = $1, updated_at = NOW() WHERE id = $2
		RETURNING `+selectColumns, newStatus, id))
	if err != nil {
		_ = tx.Rollback()
		return "", nil, fmt.Errorf("failed to update reservation status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return oldStatus, res, nil
}

// DeclineIfStillPendingTx flips a reservation to declined only if it is still
// pending. Used by the expiry worker after the reserved slot has passed.
func (r *repository) DeclineIfStillPendingTx(ctx context.Context, id int64) (bool, error) {
	tx, err := r.db.Master.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to start transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	var status string
	err = tx.QueryRowContext(ctx, `
		SELECT status FROM reservations WHERE id = $1 FOR UPDATE
	`, id).Scan(&status)
	if err != nil {
		_ = tx.Rollback()
		if errors.Is(err, sql.ErrNoRows) {
			return false, ErrReservationNotFound
		}
		return false, fmt.Errorf("failed to select reservation for expiry: %w", err)
	}

	if status != model.StatusPending {
		_ = tx.Rollback()
		return false, nil
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE reservations SET status = 'declined', updated_at = NOW() WHERE id = $1
	`, id); err != nil {
		_ = tx.Rollback()
		return false, fmt.Errorf("failed to decline expired reservation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit expiry transaction: %w", err)
	}

	return true, nil
}
