package postgres

import (
	"context"
	"fmt"

	"rental-engine-backend/internal/domain"
	"rental-engine-backend/internal/logger"
	"rental-engine-backend/internal/repository"
)

type sequenceRepository struct {
	db dbtx
}

func NewSequenceRepository(db dbtx) repository.SequenceRepository {
	return &sequenceRepository{db: db}
}

// Next holds the sequence row lock until the surrounding transaction ends, so
// numbers are gap-free for committed documents.
func (r *sequenceRepository) Next(ctx context.Context, docType domain.DocumentType, year int) (int32, error) {
	query := `INSERT INTO document_sequences (doc_type, year, last_value) VALUES ($1, $2, 1)
	          ON CONFLICT (doc_type, year) DO UPDATE SET last_value = document_sequences.last_value + 1
	          RETURNING last_value`
	logger.DatabaseCall("UPSERT", "document_sequences", "docType", docType, "year", year)
	var next int32
	err := r.db.QueryRowContext(ctx, query, docType, year).Scan(&next)
	logger.DatabaseResult("UPSERT", 1, err, "value", next)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate %s number: %w", docType, err)
	}
	return next, nil
}
