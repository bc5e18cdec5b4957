package backend

import (
	"context"

	"daylog/internal/services"
	"daylog/internal/session"
	"daylog/internal/storage"
)

// DayHistory lists per-day totals. Only the SQLite backend provides it.
type DayHistory interface {
	DayTotals(ctx context.Context, user string, limit int) ([]storage.DayTotalRow, error)
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult holds everything built for one backend selection.
type BackendResult struct {
	Activities  *services.ActivityService
	Accounts    session.AccountStore
	Revocations session.Revocations
	// History is nil unless the backend keeps per-day totals.
	History DayHistory
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	SQLiteDBPath string
	PostgresURL  string

	// Event publishing, each optional
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
	KafkaBrokers []string
	KafkaTopic   string

	// Session revocations; empty RedisURL keeps them in memory
	RedisURL string

	// Memory backend seed files
	DataDirectory string
}

// BackendType represents the type of backend
type BackendType string

const (
	MemoryBackend   BackendType = "memory"
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend, PostgresBackend:
		return true
	default:
		return false
	}
}
