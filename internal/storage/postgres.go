package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/IshaanNene/PromoScrape/internal/types"
)

// PostgresStorage inserts every flattened output row into a table, keyed by
// run, with the row's cells held as a jsonb object of column title to value.
type PostgresStorage struct {
	pool            *pgxpool.Pool
	emitEmptyDetail bool
	count           int
	logger          *slog.Logger
}

// NewPostgresStorage connects to dsn.
func NewPostgresStorage(dsn string, emitEmptyDetail bool, logger *slog.Logger) (*PostgresStorage, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	return &PostgresStorage{
		pool:            pool,
		emitEmptyDetail: emitEmptyDetail,
		logger:          logger.With("component", "postgres_storage"),
	}, nil
}

// EnsureSchema creates the rows table if it does not exist.
func (s *PostgresStorage) EnsureSchema() error {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	sql := `
	CREATE TABLE IF NOT EXISTS scraped_rows (
		id BIGSERIAL PRIMARY KEY,
		run_id TEXT NOT NULL,
		source_url TEXT NOT NULL,
		page_type TEXT NOT NULL,
		row_index INTEGER NOT NULL,
		data JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_scraped_rows_run ON scraped_rows(run_id);
	`

	if _, err := s.pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("create scraped_rows: %w", err)
	}
	return nil
}

func (s *PostgresStorage) Name() string { return "postgres" }

func (s *PostgresStorage) Store(result *types.Result) error {
	batch, err := rowBatch(result, Flatten(result, s.emitEmptyDetail))
	if err != nil {
		return &types.StorageError{Backend: s.Name(), Err: err}
	}
	if batch.Len() == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return &types.StorageError{Backend: s.Name(), Err: fmt.Errorf("insert row %d: %w", i, err)}
		}
	}

	s.count += batch.Len()
	s.logger.Debug("rows stored in postgres", "count", batch.Len(), "total", s.count)
	return nil
}

func (s *PostgresStorage) Close() error {
	s.logger.Info("postgres storage closing", "total_rows", s.count)
	s.pool.Close()
	return nil
}

const insertRowSQL = `
	INSERT INTO scraped_rows (run_id, source_url, page_type, row_index, data)
	VALUES ($1, $2, $3, $4, $5)`

// rowBatch queues one insert per table row.
func rowBatch(result *types.Result, table *Table) (*pgx.Batch, error) {
	batch := &pgx.Batch{}
	for i, row := range table.Rows {
		data, err := json.Marshal(rowObject(table.Columns, row))
		if err != nil {
			return nil, fmt.Errorf("encode row %d: %w", i, err)
		}
		batch.Queue(insertRowSQL, result.RunID, result.URL, result.PageType.String(), i, data)
	}
	return batch, nil
}

// rowObject pairs column titles with cells. Repeated titles keep the first
// cell.
func rowObject(columns, row []string) map[string]string {
	obj := make(map[string]string, len(columns))
	for i, col := range columns {
		if _, ok := obj[col]; ok || i >= len(row) {
			continue
		}
		obj[col] = row[i]
	}
	return obj
}
