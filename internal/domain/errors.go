package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrOverpayment        = errors.New("el pago supera el saldo pendiente")
	ErrInUse              = errors.New("el recurso está referenciado por otros registros")
	ErrExternalService    = errors.New("servicio externo no disponible")
)

// StockError detalla el producto que no tiene existencias suficientes.
// errors.Is(err, ErrInsufficientStock) sigue funcionando.
type StockError struct {
	SKU       string
	Requested string
	Available string
}

func (e *StockError) Error() string {
	return "stock insuficiente para " + e.SKU + ": solicitado " + e.Requested + ", disponible " + e.Available
}

func (e *StockError) Unwrap() error { return ErrInsufficientStock }

// ValidationError agrupa errores de campo; envuelve ErrInvalidInput.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Invalid construye un ValidationError para un campo.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
