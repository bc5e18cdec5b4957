package backend

import (
	"errors"
	"fmt"

	"daylog/internal/config"
)

const defaultDataDirectory = "data"

// BackendTypes lists the supported stores in the order they are documented.
func BackendTypes() []BackendType {
	return []BackendType{MemoryBackend, SQLiteBackend, PostgresBackend}
}

// FromAppConfig selects the store and the optional transports from the
// environment configuration.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("unknown data backend %q: must be one of %v", appConfig.DataBackend, BackendTypes())
	}

	return Config{
		Type:          backendType,
		SQLiteDBPath:  appConfig.SQLiteDBPath,
		PostgresURL:   appConfig.PostgresURL,
		AMQPURL:       appConfig.AMQPURL,
		AMQPExchange:  appConfig.AMQPExchange,
		AMQPQueue:     appConfig.AMQPQueue,
		KafkaBrokers:  appConfig.KafkaBrokers,
		KafkaTopic:    appConfig.KafkaTopic,
		RedisURL:      appConfig.RedisURL,
		DataDirectory: defaultDataDirectory,
	}, nil
}

// Validate reports every missing setting at once.
func (c Config) Validate() error {
	var errs []error

	switch c.Type {
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			errs = append(errs, errors.New("sqlite backend needs a database path"))
		}
	case PostgresBackend:
		if c.PostgresURL == "" {
			errs = append(errs, errors.New("postgres backend needs a connection URL"))
		}
	case MemoryBackend:
	default:
		errs = append(errs, fmt.Errorf("unknown backend type %q: must be one of %v", c.Type, BackendTypes()))
	}

	if c.AMQPURL != "" && (c.AMQPExchange == "" || c.AMQPQueue == "") {
		errs = append(errs, errors.New("AMQP publishing needs an exchange and a queue"))
	}
	if len(c.KafkaBrokers) > 0 && c.KafkaTopic == "" {
		errs = append(errs, errors.New("Kafka publishing needs a topic"))
	}
	return errors.Join(errs...)
}
