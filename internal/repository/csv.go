package repository

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"

	"prabandam/scraper/internal/domain"
)

// RecordRepository persists collected paasuram records.
type RecordRepository interface {
	SaveRecords(ctx context.Context, records []domain.Paasuram) (int, error)
}

type csvRepository struct {
	path string
}

func NewCSVRepository(path string) RecordRepository {
	return &csvRepository{
		path: path,
	}
}

// SaveRecords writes a UTF-8 CSV with a fixed header row followed by one row
// per record, returning the number of data rows written. The file is only
// created once records exist, so a failed run leaves no partial output.
func (r *csvRepository) SaveRecords(ctx context.Context, records []domain.Paasuram) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	f, err := os.Create(r.path)
	if err != nil {
		return 0, fmt.Errorf("failed to create output file %s: %w", r.path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(domain.FieldNames()); err != nil {
		return 0, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, record := range records {
		if err := w.Write(record.Row()); err != nil {
			return 0, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return 0, fmt.Errorf("failed to flush CSV output: %w", err)
	}

	return len(records), nil
}
