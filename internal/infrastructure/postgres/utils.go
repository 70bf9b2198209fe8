package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier abstrae *pgxpool.Pool y pgx.Tx para que los repositorios funcionen dentro o fuera de una transacción.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// pgxScanner abstrae pgx.Row y pgx.Rows para reutilizar funciones scan.
type pgxScanner interface {
	Scan(dest ...any) error
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// isForeignKeyViolation verifica si un error es una violación de llave foránea (23503).
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return false
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// nullIfEmpty convierte "" en NULL.
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// derefString convierte NULL en "".
func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// dateOnly trunca a fecha (columnas DATE).
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ── Constructor de filtros ───────────────────────────────────────────────────

// whereBuilder acumula condiciones AND con placeholders numerados ($1, $2...).
type whereBuilder struct {
	conds []string
	args  []any
}

func newWhere(first string, arg any) *whereBuilder {
	w := &whereBuilder{}
	w.add(first, arg)
	return w
}

// add agrega una condición; "?" se reemplaza por el siguiente placeholder.
func (w *whereBuilder) add(cond string, args ...any) {
	for _, a := range args {
		w.args = append(w.args, a)
		cond = strings.Replace(cond, "?", fmt.Sprintf("$%d", len(w.args)), 1)
	}
	w.conds = append(w.conds, cond)
}

// addIf agrega la condición solo si ok.
func (w *whereBuilder) addIf(ok bool, cond string, args ...any) {
	if ok {
		w.add(cond, args...)
	}
}

// likeEscaper escapa los comodines de LIKE; se usa con ESCAPE '\'.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// search agrega la búsqueda por subcadena sobre search_text (texto ya plegado).
// % y _ del usuario se buscan literalmente.
func (w *whereBuilder) search(alias, folded string) {
	if folded == "" {
		return
	}
	col := "search_text"
	if alias != "" {
		col = alias + ".search_text"
	}
	w.add(col+` LIKE '%' || ? || '%' ESCAPE '\'`, likeEscaper.Replace(folded))
}

func (w *whereBuilder) sql() string {
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// page agrega LIMIT/OFFSET como placeholders y devuelve el fragmento.
func (w *whereBuilder) page(limit, offset int) string {
	w.args = append(w.args, limit, offset)
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(w.args)-1, len(w.args))
}

// orderBy resuelve la columna de orden contra la lista blanca; fallback si no aplica.
func orderBy(columns map[string]string, sort string, desc bool, fallback string) string {
	col, ok := columns[sort]
	if !ok {
		return " ORDER BY " + fallback
	}
	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	return " ORDER BY " + col + " " + dir + " NULLS LAST"
}
