// Package postgres implements the day store and account store on Postgres
// through a pgx connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"daylog/internal/core"
	"daylog/internal/days"
	"daylog/internal/session"
)

const uniqueViolation = "23505"

// Repository provides Postgres-backed persistence for activities and accounts.
type Repository struct {
	pool *pgxpool.Pool
}

var (
	_ days.Store           = (*Repository)(nil)
	_ session.AccountStore = (*Repository)(nil)
)

// NewRepository constructs a Repository over an existing pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Open runs migrations, connects a pool and returns the repository.
func Open(ctx context.Context, url string) (*Repository, error) {
	if err := RunMigrations(url); err != nil {
		return nil, err
	}
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return NewRepository(pool), nil
}

func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return days.Unavailable("ping", err)
	}
	return nil
}

// List implements days.Store.
func (r *Repository) List(ctx context.Context, user string, day core.Day) ([]core.Activity, error) {
	if err := days.CheckPartition("list activities", user, day); err != nil {
		return nil, err
	}

	const query = `SELECT id::text, title, category, minutes, created_at
        FROM activities WHERE user_id=$1 AND day=$2::date ORDER BY seq ASC`

	rows, err := r.pool.Query(ctx, query, user, day.String())
	if err != nil {
		return nil, days.Unavailable("list activities", err)
	}
	defer rows.Close()

	var out []core.Activity
	for rows.Next() {
		var rec days.Record
		if err := rows.Scan(&rec.ID, &rec.Title, &rec.Category, &rec.Minutes, &rec.CreatedAt); err != nil {
			return nil, days.Unavailable("list activities", err)
		}
		a, err := days.Decode(rec)
		if err != nil {
			slog.WarnContext(ctx, "Skipping malformed activity row", "id", rec.ID, "error", err)
			continue
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, days.Unavailable("list activities", err)
	}
	return out, nil
}

// Add implements days.Store.
func (r *Repository) Add(ctx context.Context, user string, day core.Day, in core.NewActivity) (core.Activity, error) {
	if err := days.CheckPartition("add activity", user, day); err != nil {
		return core.Activity{}, err
	}

	const insert = `INSERT INTO activities (id, user_id, day, title, category, minutes)
        VALUES ($1,$2,$3::date,$4,$5,$6) RETURNING created_at`

	rec := days.Record{
		ID:       uuid.NewString(),
		Title:    in.Title,
		Category: in.Category,
		Minutes:  int64(in.Minutes),
	}
	err := r.pool.QueryRow(ctx, insert, rec.ID, user, day.String(), rec.Title, rec.Category, rec.Minutes).
		Scan(&rec.CreatedAt)
	if err != nil {
		return core.Activity{}, classify("add activity", err)
	}
	return days.Decode(rec)
}

// Delete implements days.Store.
func (r *Repository) Delete(ctx context.Context, user string, day core.Day, id string) error {
	if err := days.CheckPartition("delete activity", user, day); err != nil {
		return err
	}
	if _, err := uuid.Parse(id); err != nil {
		return days.NotFound("delete activity", id)
	}

	tag, err := r.pool.Exec(ctx,
		`DELETE FROM activities WHERE id=$1 AND user_id=$2 AND day=$3::date`,
		id, user, day.String())
	if err != nil {
		return classify("delete activity", err)
	}
	if tag.RowsAffected() == 0 {
		return days.NotFound("delete activity", id)
	}
	return nil
}

// CreateAccount implements session.AccountStore.
func (r *Repository) CreateAccount(ctx context.Context, a session.Account) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO accounts (id, email, display_name, password_hash, provider, subject, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		a.ID, session.NormalizeEmail(a.Email), a.DisplayName, a.PasswordHash, a.Provider, a.Subject, a.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return session.ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

const accountColumns = `id, email, display_name, password_hash, provider, subject, created_at`

// AccountByEmail implements session.AccountStore.
func (r *Repository) AccountByEmail(ctx context.Context, email string) (session.Account, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email=$1`, session.NormalizeEmail(email))
	return scanAccount(row)
}

// AccountBySubject implements session.AccountStore.
func (r *Repository) AccountBySubject(ctx context.Context, provider, subject string) (session.Account, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE provider=$1 AND subject=$2`, provider, subject)
	return scanAccount(row)
}

func scanAccount(row pgx.Row) (session.Account, error) {
	var a session.Account
	err := row.Scan(&a.ID, &a.Email, &a.DisplayName, &a.PasswordHash, &a.Provider, &a.Subject, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return session.Account{}, session.ErrAccountNotFound
	}
	if err != nil {
		return session.Account{}, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

// classify maps pgx errors onto the day store taxonomy. Insufficient
// privilege (42501) becomes permission denied; anything else is treated as
// the store being unavailable.
func classify(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "42501" {
		return &days.StoreError{Op: op, Kind: days.ErrPermissionDenied, Err: err}
	}
	return days.Unavailable(op, err)
}
