package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
)

// ExportParquet writes the full tick history of the store to a Parquet file
// at the given path, creating parent directories as needed. It returns the
// number of rows written.
func ExportParquet(ctx context.Context, s *TickStore, path string) (int, error) {
	records, err := s.History(ctx, 0)
	if err != nil {
		return 0, fmt.Errorf("reading tick history: %w", err)
	}
	if len(records) == 0 {
		return 0, nil
	}

	if err := writeParquetFile(path, records); err != nil {
		return 0, fmt.Errorf("writing %s: %w", path, err)
	}
	return len(records), nil
}

// ReadParquet reads tick records back from a Parquet export.
func ReadParquet(path string) ([]TickRecord, error) {
	return parquet.ReadFile[TickRecord](path)
}

func writeParquetFile[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, records)
}
