package store

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"booking-api/internal/model"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrEmailInUse        = errors.New("email address in use")
	ErrAppointmentExists = errors.New("appointment already exists for client on date")
)

// Repository is the credential and appointment store consumed by the
// handlers and the login flow.
type Repository interface {
	CreateClient(ctx context.Context, c *model.Client) error
	ClientByID(ctx context.Context, id int64) (*model.Client, error)
	ClientByEmail(ctx context.Context, email string) (*model.Client, error)
	DeleteClient(ctx context.Context, id int64) error

	CreateAppointment(ctx context.Context, a *model.Appointment) error
	ListAppointments(ctx context.Context, clientID int64, f model.AppointmentFilter) ([]model.Appointment, error)
	DeleteAppointment(ctx context.Context, id, clientID int64) error
}

// Store is the Postgres Repository.
type Store struct {
	pool *pgxpool.Pool
}

var _ Repository = (*Store)(nil)

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Open connects to databaseURL and pings it.
func Open(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return pool, nil
}

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies the embedded migrations in file-name order. Every statement
// is idempotent so it is safe to run on each start.
func (s *Store) Migrate(ctx context.Context) ([]string, error) {
	names, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	for _, n := range names {
		b, err := migrations.ReadFile(n)
		if err != nil {
			return nil, err
		}
		if _, err := s.pool.Exec(ctx, string(b)); err != nil {
			return nil, fmt.Errorf("migration %s: %w", n, err)
		}
	}
	return names, nil
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func foreignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// unique violation on the named constraint
func uniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == constraint
}
