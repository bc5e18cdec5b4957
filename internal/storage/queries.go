package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

// Queries holds the statements used by SQLiteRepository.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

const listActivities = `
SELECT id, title, category, minutes, created_at
FROM activities
WHERE user_id = ? AND day = ?
ORDER BY created_at ASC, rowid ASC
`

type ActivityRow struct {
	ID        string
	Title     string
	Category  string
	Minutes   int64
	CreatedAt int64
}

func (q *Queries) ListActivities(ctx context.Context, userID, day string) ([]ActivityRow, error) {
	rows, err := q.db.QueryContext(ctx, listActivities, userID, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ActivityRow
	for rows.Next() {
		var i ActivityRow
		if err := rows.Scan(&i.ID, &i.Title, &i.Category, &i.Minutes, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const insertActivity = `
INSERT INTO activities (id, user_id, day, title, category, minutes, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

type InsertActivityParams struct {
	ID        string
	UserID    string
	Day       string
	Title     string
	Category  string
	Minutes   int64
	CreatedAt int64
}

func (q *Queries) InsertActivity(ctx context.Context, arg InsertActivityParams) error {
	_, err := q.db.ExecContext(ctx, insertActivity,
		arg.ID,
		arg.UserID,
		arg.Day,
		arg.Title,
		arg.Category,
		arg.Minutes,
		arg.CreatedAt,
	)
	return err
}

const deleteActivity = `
DELETE FROM activities WHERE id = ? AND user_id = ? AND day = ?
`

func (q *Queries) DeleteActivity(ctx context.Context, id, userID, day string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteActivity, id, userID, day)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listDays = `
SELECT day, COALESCE(SUM(minutes), 0), COUNT(*)
FROM activities
WHERE user_id = ?
GROUP BY day
ORDER BY day DESC
LIMIT ?
`

type DayTotalRow struct {
	Day     string
	Minutes int64
	Count   int64
}

// ListDays returns per-day totals for a user, most recent first.
func (q *Queries) ListDays(ctx context.Context, userID string, limit int) ([]DayTotalRow, error) {
	rows, err := q.db.QueryContext(ctx, listDays, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []DayTotalRow
	for rows.Next() {
		var i DayTotalRow
		if err := rows.Scan(&i.Day, &i.Minutes, &i.Count); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const insertAccount = `
INSERT INTO accounts (id, email, display_name, password_hash, provider, subject, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

type AccountRow struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash string
	Provider     string
	Subject      string
	CreatedAt    int64
}

func (q *Queries) InsertAccount(ctx context.Context, arg AccountRow) error {
	_, err := q.db.ExecContext(ctx, insertAccount,
		arg.ID,
		arg.Email,
		arg.DisplayName,
		arg.PasswordHash,
		arg.Provider,
		arg.Subject,
		arg.CreatedAt,
	)
	return err
}

const accountColumns = `id, email, display_name, password_hash, provider, subject, created_at`

const getAccountByEmail = `SELECT ` + accountColumns + ` FROM accounts WHERE email = ?`

func (q *Queries) GetAccountByEmail(ctx context.Context, email string) (AccountRow, error) {
	row := q.db.QueryRowContext(ctx, getAccountByEmail, email)
	return scanAccount(row)
}

const getAccountBySubject = `SELECT ` + accountColumns + ` FROM accounts WHERE provider = ? AND subject = ?`

func (q *Queries) GetAccountBySubject(ctx context.Context, provider, subject string) (AccountRow, error) {
	row := q.db.QueryRowContext(ctx, getAccountBySubject, provider, subject)
	return scanAccount(row)
}

func scanAccount(row *sql.Row) (AccountRow, error) {
	var i AccountRow
	err := row.Scan(&i.ID, &i.Email, &i.DisplayName, &i.PasswordHash, &i.Provider, &i.Subject, &i.CreatedAt)
	return i, err
}
