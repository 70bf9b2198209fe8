package dto

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit" validate:"omitempty,min=1,max=200"`
	Offset int `query:"offset" validate:"omitempty,min=0"`
}

// DefaultPage aplica valores por defecto si Limit/Offset son cero.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// ListQuery parámetros comunes de búsqueda, orden y paginación (?search=&sort=&order=asc|desc).
type ListQuery struct {
	PageRequest
	Search string `query:"search" validate:"omitempty,max=200"`
	Sort   string `query:"sort" validate:"omitempty,max=50"`
	Order  string `query:"order" validate:"omitempty,oneof=asc desc ASC DESC"`
}

// Desc indica orden descendente.
func (q ListQuery) Desc() bool { return q.Order == "desc" || q.Order == "DESC" }

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"` // errores de validación por campo
}

// DateLayout formato de fechas en requests y respuestas (YYYY-MM-DD).
const DateLayout = "2006-01-02"
