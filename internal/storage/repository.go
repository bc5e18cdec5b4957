package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"daylog/internal/core"
	"daylog/internal/days"
	"daylog/internal/session"
)

// SQLiteRepository is the SQLite day store and account store.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries

	mu         sync.Mutex
	lastMarker int64
	now        func() time.Time
}

var (
	_ days.Store           = (*SQLiteRepository)(nil)
	_ session.AccountStore = (*SQLiteRepository)(nil)
)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer at a time avoids SQLITE_BUSY under concurrent requests.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		now:     time.Now,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return days.Unavailable("ping", err)
	}
	return nil
}

// List implements days.Store. Malformed rows are skipped and logged.
func (r *SQLiteRepository) List(ctx context.Context, user string, day core.Day) ([]core.Activity, error) {
	if err := days.CheckPartition("list activities", user, day); err != nil {
		return nil, err
	}
	rows, err := r.queries.ListActivities(ctx, user, day.String())
	if err != nil {
		return nil, days.Unavailable("list activities", err)
	}

	out := make([]core.Activity, 0, len(rows))
	for _, row := range rows {
		a, err := days.Decode(days.Record{
			ID:        row.ID,
			Title:     row.Title,
			Category:  row.Category,
			Minutes:   row.Minutes,
			CreatedAt: time.Unix(0, row.CreatedAt),
		})
		if err != nil {
			slog.WarnContext(ctx, "Skipping malformed activity row", "id", row.ID, "error", err)
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

// Add implements days.Store.
func (r *SQLiteRepository) Add(ctx context.Context, user string, day core.Day, in core.NewActivity) (core.Activity, error) {
	if err := days.CheckPartition("add activity", user, day); err != nil {
		return core.Activity{}, err
	}

	marker := r.nextMarker()
	params := InsertActivityParams{
		ID:        uuid.NewString(),
		UserID:    user,
		Day:       day.String(),
		Title:     in.Title,
		Category:  in.Category,
		Minutes:   int64(in.Minutes),
		CreatedAt: marker,
	}
	if err := r.queries.InsertActivity(ctx, params); err != nil {
		return core.Activity{}, days.Unavailable("add activity", err)
	}

	slog.InfoContext(ctx, "Activity saved to SQLite",
		"id", params.ID,
		"day", params.Day,
		"minutes", params.Minutes,
		"category", params.Category)

	return days.Decode(days.Record{
		ID:        params.ID,
		Title:     params.Title,
		Category:  params.Category,
		Minutes:   params.Minutes,
		CreatedAt: time.Unix(0, marker),
	})
}

// Delete implements days.Store.
func (r *SQLiteRepository) Delete(ctx context.Context, user string, day core.Day, id string) error {
	if err := days.CheckPartition("delete activity", user, day); err != nil {
		return err
	}
	n, err := r.queries.DeleteActivity(ctx, id, user, day.String())
	if err != nil {
		return days.Unavailable("delete activity", err)
	}
	if n == 0 {
		return days.NotFound("delete activity", id)
	}
	slog.InfoContext(ctx, "Activity deleted from SQLite", "id", id, "day", day)
	return nil
}

// DayTotals lists per-day totals for user, most recent first.
func (r *SQLiteRepository) DayTotals(ctx context.Context, user string, limit int) ([]DayTotalRow, error) {
	rows, err := r.queries.ListDays(ctx, user, limit)
	if err != nil {
		return nil, fmt.Errorf("list day totals: %w", err)
	}
	return rows, nil
}

// CreateAccount implements session.AccountStore.
func (r *SQLiteRepository) CreateAccount(ctx context.Context, a session.Account) error {
	err := r.queries.InsertAccount(ctx, AccountRow{
		ID:           a.ID,
		Email:        session.NormalizeEmail(a.Email),
		DisplayName:  a.DisplayName,
		PasswordHash: a.PasswordHash,
		Provider:     a.Provider,
		Subject:      a.Subject,
		CreatedAt:    a.CreatedAt.UnixNano(),
	})
	if isUniqueViolation(err) {
		return session.ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

// AccountByEmail implements session.AccountStore.
func (r *SQLiteRepository) AccountByEmail(ctx context.Context, email string) (session.Account, error) {
	row, err := r.queries.GetAccountByEmail(ctx, session.NormalizeEmail(email))
	return toAccount(row, err)
}

// AccountBySubject implements session.AccountStore.
func (r *SQLiteRepository) AccountBySubject(ctx context.Context, provider, subject string) (session.Account, error) {
	row, err := r.queries.GetAccountBySubject(ctx, provider, subject)
	return toAccount(row, err)
}

func toAccount(row AccountRow, err error) (session.Account, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return session.Account{}, session.ErrAccountNotFound
	}
	if err != nil {
		return session.Account{}, fmt.Errorf("get account: %w", err)
	}
	return session.Account{
		ID:           row.ID,
		Email:        row.Email,
		DisplayName:  row.DisplayName,
		PasswordHash: row.PasswordHash,
		Provider:     row.Provider,
		Subject:      row.Subject,
		CreatedAt:    time.Unix(0, row.CreatedAt),
	}, nil
}

func (r *SQLiteRepository) nextMarker() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := r.now().UnixNano()
	if m <= r.lastMarker {
		m = r.lastMarker + 1
	}
	r.lastMarker = m
	return m
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE || se.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}
