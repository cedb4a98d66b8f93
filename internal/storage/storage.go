package storage

import (
	"fmt"
	"log/slog"

	"github.com/IshaanNene/PromoScrape/internal/config"
	"github.com/IshaanNene/PromoScrape/internal/types"
)

// Storage is the interface for all storage backends.
type Storage interface {
	// Store persists the records of one run.
	Store(result *types.Result) error

	// Close flushes pending writes and releases resources.
	Close() error

	// Name returns the storage backend identifier.
	Name() string
}

// New builds the configured backends. The CSV file is always written; the
// mongo and postgres sinks are added when their connection settings are set.
func New(cfg *config.Config, logger *slog.Logger) (Storage, error) {
	backends := []Storage{
		NewCSVStorage(cfg.Storage.OutputPath, cfg.Extract.EmitEmptyDetail, logger),
	}

	if cfg.Storage.MongoURI != "" {
		mongo, err := NewMongoStorage(cfg.Storage.MongoURI, cfg.Storage.MongoDatabase, cfg.Storage.MongoCollection, logger)
		if err != nil {
			return nil, &types.StorageError{Backend: "mongodb", Err: err}
		}
		backends = append(backends, mongo)
	}

	if cfg.Storage.PostgresDSN != "" {
		pg, err := NewPostgresStorage(cfg.Storage.PostgresDSN, cfg.Extract.EmitEmptyDetail, logger)
		if err != nil {
			closeAll(backends)
			return nil, &types.StorageError{Backend: "postgres", Err: err}
		}
		if err := pg.EnsureSchema(); err != nil {
			closeAll(append(backends, pg))
			return nil, &types.StorageError{Backend: "postgres", Err: fmt.Errorf("ensure schema: %w", err)}
		}
		backends = append(backends, pg)
	}

	if len(backends) == 1 {
		return backends[0], nil
	}
	return NewMultiStorage(backends, logger), nil
}

func closeAll(backends []Storage) {
	for _, b := range backends {
		_ = b.Close()
	}
}
