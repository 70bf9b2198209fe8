package billing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/application/ports"
	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
	"github.com/rs/zerolog/log"
)

const (
	maxRunErrors   = 50
	cronSyncDays   = 2
	recentRunLimit = 20
)

// SyncUseCase trae facturas XML desde el flujo n8n y las importa como compras.
type SyncUseCase struct {
	feed      ports.InvoiceFeed
	xml       *XMLImportUseCase
	companies repository.CompanyRepository
	runs      repository.SyncRunRepository
	loc       *time.Location
	now       func() time.Time
	running   sync.Map // companyID -> *sync.Mutex
}

// NewSyncUseCase construye el caso de uso.
func NewSyncUseCase(feed ports.InvoiceFeed, xml *XMLImportUseCase, companies repository.CompanyRepository,
	runs repository.SyncRunRepository, loc *time.Location) *SyncUseCase {
	if loc == nil {
		loc = time.UTC
	}
	return &SyncUseCase{feed: feed, xml: xml, companies: companies, runs: runs, loc: loc, now: time.Now}
}

// SyncInvoices sincroniza manualmente el rango [from, to].
func (uc *SyncUseCase) SyncInvoices(ctx context.Context, companyID, userID string, in dto.SyncInvoicesRequest) (*dto.SyncRunResponse, error) {
	from, err := dto.ParseDate(in.From, uc.loc)
	if err != nil || from == nil {
		return nil, domain.Invalid("from", "formato esperado YYYY-MM-DD")
	}
	to, err := dto.ParseDate(in.To, uc.loc)
	if err != nil || to == nil {
		return nil, domain.Invalid("to", "formato esperado YYYY-MM-DD")
	}
	if to.Before(*from) {
		return nil, domain.Invalid("to", "no puede ser anterior a from")
	}
	run, err := uc.run(ctx, companyID, userID, *from, *to, entity.SyncTriggerManual)
	if err != nil {
		return nil, err
	}
	return SyncRunResponse(run), nil
}

// SyncAll sincroniza los últimos días de todas las empresas activas (tarea programada).
func (uc *SyncUseCase) SyncAll(ctx context.Context) error {
	companies, err := uc.companies.ListActive(ctx)
	if err != nil {
		return err
	}
	n := uc.now().In(uc.loc)
	to := time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, uc.loc)
	from := to.AddDate(0, 0, -cronSyncDays)
	for _, c := range companies {
		if c.TaxCode == "" {
			continue
		}
		run, err := uc.run(ctx, c.ID, "", from, to, entity.SyncTriggerCron)
		if err != nil {
			log.Error().Err(err).Str("company_id", c.ID).Msg("sincronización programada fallida")
			continue
		}
		log.Info().Str("company_id", c.ID).Str("status", run.Status).
			Int("imported", run.Imported).Int("skipped", run.Skipped).Int("failed", run.Failed).
			Msg("sincronización programada")
	}
	return ctx.Err()
}

// Runs corridas recientes de la empresa.
func (uc *SyncUseCase) Runs(ctx context.Context, companyID string) (*dto.SyncRunListResponse, error) {
	list, err := uc.runs.List(ctx, companyID, recentRunLimit)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SyncRunResponse, 0, len(list))
	for _, r := range list {
		items = append(items, *SyncRunResponse(r))
	}
	return &dto.SyncRunListResponse{Items: items}, nil
}

// run ejecuta una sincronización; una sola a la vez por empresa.
func (uc *SyncUseCase) run(ctx context.Context, companyID, userID string, from, to time.Time, trigger string) (*entity.SyncRun, error) {
	mu, _ := uc.running.LoadOrStore(companyID, &sync.Mutex{})
	lock := mu.(*sync.Mutex)
	if !lock.TryLock() {
		return nil, fmt.Errorf("%w: ya hay una sincronización en curso", domain.ErrConflict)
	}
	defer lock.Unlock()

	company, err := uc.companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	if company.TaxCode == "" {
		return nil, domain.Invalid("tax_code", "la empresa no tiene MST configurada")
	}

	run := &entity.SyncRun{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		From:      from,
		To:        to,
		Trigger:   trigger,
		Status:    entity.SyncRunning,
		StartedAt: uc.now(),
		CreatedBy: userID,
	}
	if err := uc.runs.Create(ctx, run); err != nil {
		return nil, err
	}

	docs, err := uc.feed.FetchInvoices(ctx, ports.FeedRequest{CompanyTaxCode: company.TaxCode, From: from, To: to})
	if err != nil {
		run.Errors = append(run.Errors, err.Error())
	} else {
		uc.importAll(ctx, run, company.TaxCode, docs)
	}
	run.Status = runStatus(run, err)
	finished := uc.now()
	run.FinishedAt = &finished
	// El resultado se guarda aunque el contexto del request se haya cancelado.
	if ferr := uc.runs.Finish(context.WithoutCancel(ctx), run); ferr != nil {
		return nil, ferr
	}
	return run, nil
}

// importAll importa los documentos del flujo; los emitidos a otro comprador se omiten.
func (uc *SyncUseCase) importAll(ctx context.Context, run *entity.SyncRun, buyerTaxCode string, docs []ports.FeedDocument) {
	run.Received = len(docs)
	opts := dto.XMLImportOptions{AutoCreateProducts: true, Note: "Sincronizado desde n8n"}
	for _, doc := range docs {
		if ctx.Err() != nil {
			run.Failed += run.Received - run.Imported - run.Skipped - run.Failed
			addRunError(run, "sincronización interrumpida: "+ctx.Err().Error())
			return
		}
		_, err := uc.xml.importXML(ctx, run.CompanyID, run.CreatedBy, doc.FileName, doc.XML, opts, entity.InvoiceSourceSync, buyerTaxCode)
		switch {
		case err == nil:
			run.Imported++
		case errors.Is(err, domain.ErrDuplicate):
			run.Skipped++
		case errors.Is(err, errForeignBuyer):
			run.Skipped++
			addRunError(run, doc.FileName+": "+err.Error())
		default:
			run.Failed++
			addRunError(run, doc.FileName+": "+err.Error())
		}
	}
}

func addRunError(run *entity.SyncRun, msg string) {
	if len(run.Errors) < maxRunErrors {
		run.Errors = append(run.Errors, msg)
	}
}

// runStatus FAILED si el flujo falló o nada se pudo procesar; PARTIAL con algunos fallos.
func runStatus(run *entity.SyncRun, feedErr error) string {
	switch {
	case feedErr != nil:
		return entity.SyncFailed
	case run.Failed > 0 && run.Imported == 0 && run.Skipped == 0:
		return entity.SyncFailed
	case run.Failed > 0:
		return entity.SyncPartial
	default:
		return entity.SyncSuccess
	}
}

// SyncRunResponse mapea la corrida a DTO.
func SyncRunResponse(r *entity.SyncRun) *dto.SyncRunResponse {
	return &dto.SyncRunResponse{
		ID:         r.ID,
		From:       r.From.Format(dto.DateLayout),
		To:         r.To.Format(dto.DateLayout),
		Trigger:    r.Trigger,
		Status:     r.Status,
		Received:   r.Received,
		Imported:   r.Imported,
		Skipped:    r.Skipped,
		Failed:     r.Failed,
		Errors:     r.Errors,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
	}
}
