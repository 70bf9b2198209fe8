package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
)

var _ repository.SyncRunRepository = (*SyncRunRepo)(nil)

// SyncRunRepo historial de sincronizaciones con n8n.
type SyncRunRepo struct {
	q Querier
}

// NewSyncRunRepository construye el adaptador.
func NewSyncRunRepository(q Querier) *SyncRunRepo {
	return &SyncRunRepo{q: q}
}

// Create registra el inicio de una corrida.
func (r *SyncRunRepo) Create(ctx context.Context, s *entity.SyncRun) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO sync_runs (id, company_id, date_from, date_to, trigger, status, started_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		s.ID, s.CompanyID, dateOnly(s.From), dateOnly(s.To), s.Trigger, s.Status, s.StartedAt, nullIfEmpty(s.CreatedBy),
	)
	if err != nil {
		return fmt.Errorf("insert sync run: %w", err)
	}
	return nil
}

// Finish persiste el resultado de la corrida.
func (r *SyncRunRepo) Finish(ctx context.Context, s *entity.SyncRun) error {
	errs := s.Errors
	if errs == nil {
		errs = []string{}
	}
	_, err := r.q.Exec(ctx, `
		UPDATE sync_runs SET status = $2, received = $3, imported = $4, skipped = $5, failed = $6, errors = $7, finished_at = $8
		WHERE id = $1`,
		s.ID, s.Status, s.Received, s.Imported, s.Skipped, s.Failed, errs, s.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("finish sync run: %w", err)
	}
	return nil
}

// List devuelve las corridas más recientes.
func (r *SyncRunRepo) List(ctx context.Context, companyID string, limit int) ([]*entity.SyncRun, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, company_id, date_from, date_to, trigger, status, received, imported, skipped, failed, errors,
			started_at, finished_at, COALESCE(created_by::text, '')
		FROM sync_runs WHERE company_id = $1 ORDER BY started_at DESC LIMIT $2`, companyID, limit)
	if err != nil {
		return nil, fmt.Errorf("list sync runs: %w", err)
	}
	defer rows.Close()
	var list []*entity.SyncRun
	for rows.Next() {
		var s entity.SyncRun
		if err := rows.Scan(&s.ID, &s.CompanyID, &s.From, &s.To, &s.Trigger, &s.Status, &s.Received, &s.Imported,
			&s.Skipped, &s.Failed, &s.Errors, &s.StartedAt, &s.FinishedAt, &s.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan sync run: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}
