package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"daylog/internal/amqp"
	"daylog/internal/days"
	"daylog/internal/days/memory"
	"daylog/internal/events"
	"daylog/internal/services"
	"daylog/internal/session"
	"daylog/internal/storage"
	"daylog/internal/storage/postgres"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

type storeBundle struct {
	store    days.Store
	accounts session.AccountStore
	history  DayHistory
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		bundle storeBundle
		err    error
	)
	switch config.Type {
	case SQLiteBackend:
		bundle, err = f.createSQLiteStore(config)
	case PostgresBackend:
		bundle, err = f.createPostgresStore(ctx, config)
	case MemoryBackend:
		bundle = f.createMemoryStore(config)
	default:
		err = fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	activities := services.NewActivityService(bundle.store, f.publisherOptions(config)...)

	revocations, closeRevocations := f.createRevocations(ctx, config)

	return &BackendResult{
		Activities:  activities,
		Accounts:    bundle.accounts,
		Revocations: revocations,
		History:     bundle.history,
		Cleanup: func() error {
			return errors.Join(activities.Close(), closeRevocations())
		},
	}, nil
}

func (f *DefaultFactory) createSQLiteStore(config Config) (storeBundle, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return storeBundle{}, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}
	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	return storeBundle{store: repo, accounts: repo, history: repo}, nil
}

func (f *DefaultFactory) createPostgresStore(ctx context.Context, config Config) (storeBundle, error) {
	repo, err := postgres.Open(ctx, config.PostgresURL)
	if err != nil {
		return storeBundle{}, fmt.Errorf("failed to initialize Postgres repository: %w", err)
	}
	f.logger.Info("Initialized Postgres backend")
	return storeBundle{store: repo, accounts: repo}, nil
}

func (f *DefaultFactory) createMemoryStore(config Config) storeBundle {
	dataDir := config.DataDirectory
	if dataDir == "" {
		dataDir = "data"
	}
	store := memory.NewFromFiles(dataDir)
	f.logger.Info("Initialized memory backend", "data_directory", dataDir)
	return storeBundle{store: store, accounts: session.NewMemoryAccounts()}
}

// publisherOptions connects the optional event transports. A transport
// that cannot be reached is skipped so the app still starts.
func (f *DefaultFactory) publisherOptions(config Config) []services.Option {
	var opts []services.Option

	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without it", "error", err)
		} else {
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
			opts = append(opts, services.WithPublisher("amqp", client))
		}
	}

	if len(config.KafkaBrokers) > 0 {
		var kafka events.Publisher = events.NewKafkaPublisher(config.KafkaBrokers, config.KafkaTopic)
		f.logger.Info("Initialized Kafka publisher",
			"brokers", config.KafkaBrokers,
			"topic", config.KafkaTopic)
		opts = append(opts, services.WithPublisher("kafka", kafka))
	}

	return opts
}

func (f *DefaultFactory) createRevocations(ctx context.Context, config Config) (session.Revocations, func() error) {
	if config.RedisURL != "" {
		rr, err := session.NewRedisRevocations(ctx, config.RedisURL)
		if err == nil {
			f.logger.Info("Using Redis for session revocations")
			return rr, rr.Close
		}
		f.logger.Warn("Failed to connect to Redis, keeping revocations in memory", "error", err)
	}
	return session.NewMemoryRevocations(), func() error { return nil }
}
