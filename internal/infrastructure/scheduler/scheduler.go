// Package scheduler ejecuta las tareas periódicas: vencimiento de deudas y sincronización con n8n.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jhoicas/backoffice-api/pkg/logger"
)

// jobTimeout tope de cada ejecución.
const jobTimeout = 30 * time.Minute

// OverdueMarker marca como vencidas las deudas con fecha pasada.
type OverdueMarker interface {
	MarkOverdue(ctx context.Context) (int64, error)
}

// Syncer sincroniza las facturas de todas las empresas.
type Syncer interface {
	SyncAll(ctx context.Context) error
}

// Scheduler envuelve robfig/cron con expresiones de 5 campos en la zona horaria de la empresa.
type Scheduler struct {
	cron *cron.Cron
	log  *logger.Logger
}

// New crea el scheduler; las expresiones se evalúan en loc.
func New(loc *time.Location, log *logger.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		cron: cron.New(cron.WithLocation(loc), cron.WithChain(cron.Recover(cronLogger{log}))),
		log:  log,
	}
}

// AddOverdueJob registra la tarea de deudas vencidas. expresión vacía = deshabilitada.
func (s *Scheduler) AddOverdueJob(expr string, debts OverdueMarker) error {
	return s.add("overdue_debts", expr, func(ctx context.Context) error {
		n, err := debts.MarkOverdue(ctx)
		if err == nil {
			s.log.Info().Int64("updated", n).Msg("deudas marcadas como vencidas")
		}
		return err
	})
}

// AddSyncJob registra la sincronización periódica con n8n. expresión vacía = deshabilitada.
func (s *Scheduler) AddSyncJob(expr string, sync Syncer) error {
	return s.add("invoice_sync", expr, sync.SyncAll)
}

func (s *Scheduler) add(name, expr string, fn func(ctx context.Context) error) error {
	if expr == "" {
		s.log.Info().Str("job", name).Msg("tarea programada deshabilitada")
		return nil
	}
	_, err := s.cron.AddFunc(expr, func() { s.run(name, fn) })
	if err != nil {
		return fmt.Errorf("scheduler: expresión inválida para %s (%q): %w", name, expr, err)
	}
	s.log.Info().Str("job", name).Str("cron", expr).Msg("tarea programada registrada")
	return nil
}

func (s *Scheduler) run(name string, fn func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	start := time.Now()
	if err := fn(ctx); err != nil {
		s.log.Error().Err(err).Str("job", name).Dur("elapsed", time.Since(start)).Msg("tarea programada falló")
		return
	}
	s.log.Debug().Str("job", name).Dur("elapsed", time.Since(start)).Msg("tarea programada completada")
}

// Start arranca el scheduler en segundo plano.
func (s *Scheduler) Start() { s.cron.Start() }

// Stop detiene el scheduler y espera las tareas en curso o a que ctx expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn().Msg("scheduler detenido con tareas en curso")
	}
}

// cronLogger adapta logger.Logger a cron.Logger.
type cronLogger struct{ log *logger.Logger }

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
