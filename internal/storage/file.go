package storage

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/IshaanNene/PromoScrape/internal/types"
)

// CSVStorage appends flattened rows to a CSV file. The header row is written
// only when the file is missing or empty. The file is opened for the
// duration of a single Store call.
type CSVStorage struct {
	path            string
	emitEmptyDetail bool
	mu              sync.Mutex
	count           int
	logger          *slog.Logger
}

// NewCSVStorage creates a CSV sink writing to outputPath.
func NewCSVStorage(outputPath string, emitEmptyDetail bool, logger *slog.Logger) *CSVStorage {
	return &CSVStorage{
		path:            outputPath,
		emitEmptyDetail: emitEmptyDetail,
		logger:          logger.With("component", "csv_storage"),
	}
}

func (s *CSVStorage) Name() string { return "csv" }

// Path returns the output file path.
func (s *CSVStorage) Path() string { return s.path }

func (s *CSVStorage) Store(result *types.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.write(Flatten(result, s.emitEmptyDetail)); err != nil {
		return &types.StorageError{Backend: s.Name(), Err: err}
	}
	return nil
}

func (s *CSVStorage) write(table *Table) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat output file: %w", err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(table.Columns); err != nil {
			return fmt.Errorf("write CSV header: %w", err)
		}
	}
	if err := w.WriteAll(table.Rows); err != nil {
		return fmt.Errorf("write CSV rows: %w", err)
	}

	s.count += len(table.Rows)
	s.logger.Debug("rows appended", "path", s.path, "rows", len(table.Rows), "header", info.Size() == 0)
	return f.Close()
}

func (s *CSVStorage) Close() error {
	s.logger.Info("CSV written", "path", s.path, "rows", s.count)
	return nil
}
