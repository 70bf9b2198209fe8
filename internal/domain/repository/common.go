package repository

import "time"

// ListParams parámetros comunes de listados: búsqueda, orden y paginación.
// Sort debe venir ya validado contra la lista blanca del recurso.
type ListParams struct {
	Search string
	Sort   string
	Desc   bool
	Limit  int
	Offset int
}

// DateRange rango opcional de fechas (extremos inclusivos por día).
type DateRange struct {
	From *time.Time
	To   *time.Time
}
