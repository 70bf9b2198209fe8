package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/backoffice-api/internal/domain/repository"
)

var _ repository.SequenceRepository = (*SequenceRepo)(nil)

// SequenceRepo consecutivos por empresa y ámbito (tabla document_sequences).
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// Next incrementa y devuelve el consecutivo; el UPSERT bloquea la fila hasta el commit.
func (r *SequenceRepo) Next(ctx context.Context, companyID, scope string) (int64, error) {
	var v int64
	err := r.q.QueryRow(ctx, `
		INSERT INTO document_sequences (company_id, scope, last_value) VALUES ($1, $2, 1)
		ON CONFLICT (company_id, scope) DO UPDATE SET last_value = document_sequences.last_value + 1
		RETURNING last_value`,
		companyID, scope,
	).Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("next sequence %s: %w", scope, err)
	}
	return v, nil
}
