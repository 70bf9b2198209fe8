package postgres

import (
	"testing"
	"time"

	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
	"github.com/stretchr/testify/assert"
)

func TestWhereBuilder_SearchEscapaComodines(t *testing.T) {
	w := newWhere("company_id = ?", "c1")
	w.search("p", `50%_off\x`)

	assert.Equal(t, ` WHERE company_id = $1 AND p.search_text LIKE '%' || $2 || '%' ESCAPE '\'`, w.sql())
	assert.Equal(t, []any{"c1", `50\%\_off\\x`}, w.args)
}

func TestWhereBuilder_SearchVacioNoFiltra(t *testing.T) {
	w := newWhere("company_id = ?", "c1")
	w.search("", "")
	assert.Equal(t, " WHERE company_id = $1", w.sql())
}

func TestDebtStatusFilter(t *testing.T) {
	today := time.Date(2024, 10, 25, 9, 30, 0, 0, time.UTC)
	day := time.Date(2024, 10, 25, 0, 0, 0, 0, time.UTC)

	t.Run("sin fecha usa el estado guardado", func(t *testing.T) {
		w := newWhere("d.company_id = ?", "c1")
		debtStatusFilter(w, repository.DebtFilter{Status: entity.DebtUnpaid, OverdueOnly: true})
		assert.Equal(t, " WHERE d.company_id = $1 AND d.status = $2 AND d.status = 'OVERDUE'", w.sql())
	})

	t.Run("solo vencidas incluye abiertas vencidas", func(t *testing.T) {
		w := newWhere("d.company_id = ?", "c1")
		debtStatusFilter(w, repository.DebtFilter{OverdueOnly: true, Today: today})
		assert.Contains(t, w.sql(), "d.status IN ('UNPAID', 'PARTIAL') AND d.due_date < $2")
		assert.Equal(t, []any{"c1", day}, w.args)
	})

	t.Run("pendiente excluye lo ya vencido", func(t *testing.T) {
		w := newWhere("d.company_id = ?", "c1")
		debtStatusFilter(w, repository.DebtFilter{Status: entity.DebtUnpaid, Today: today})
		assert.Equal(t, " WHERE d.company_id = $1 AND d.status = $2 AND (d.due_date IS NULL OR d.due_date >= $3)", w.sql())
		assert.Equal(t, []any{"c1", entity.DebtUnpaid, day}, w.args)
	})

	t.Run("pagada no depende de la fecha", func(t *testing.T) {
		w := newWhere("d.company_id = ?", "c1")
		debtStatusFilter(w, repository.DebtFilter{Status: entity.DebtPaid, Today: today})
		assert.Equal(t, " WHERE d.company_id = $1 AND d.status = $2", w.sql())
	})
}
