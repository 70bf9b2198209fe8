package repository

import (
	"context"

	"github.com/jhoicas/backoffice-api/internal/domain/entity"
)

// SyncRunRepository puerto de persistencia del historial de sincronizaciones.
type SyncRunRepository interface {
	Create(ctx context.Context, r *entity.SyncRun) error
	Finish(ctx context.Context, r *entity.SyncRun) error
	List(ctx context.Context, companyID string, limit int) ([]*entity.SyncRun, error)
}
