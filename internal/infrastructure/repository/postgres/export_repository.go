package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sellerdesk/listing-pipeline/internal/core/domain"
)

type ExportRepository struct {
	db *sql.DB
}

func NewExportRepository(db *sql.DB) *ExportRepository {
	return &ExportRepository{db: db}
}

func (r *ExportRepository) RecordExport(ctx context.Context, record *domain.ExportRecord) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO export_history (id, marketplace, product_count, file_path, created_at)
VALUES ($1,$2,$3,$4,$5)
`, record.ID, record.Marketplace, record.ProductCount, record.FilePath, record.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert export record: %w", err)
	}
	return nil
}

func (r *ExportRepository) ListExports(ctx context.Context) ([]domain.ExportRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, marketplace, product_count, file_path, created_at
FROM export_history
ORDER BY created_at DESC
LIMIT 100
`)
	if err != nil {
		return nil, fmt.Errorf("query export history: %w", err)
	}
	defer rows.Close()

	records := make([]domain.ExportRecord, 0, 16)
	for rows.Next() {
		var record domain.ExportRecord
		if err := rows.Scan(&record.ID, &record.Marketplace, &record.ProductCount, &record.FilePath, &record.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan export record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate export history: %w", err)
	}
	return records, nil
}
