package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound              = errors.New("recurso no encontrado")
	ErrUserNotFound          = errors.New("usuario no encontrado")
	ErrUsernameAlreadyExists = errors.New("el usuario ya está registrado")
	ErrInvalidInput          = errors.New("entrada inválida")
	ErrDuplicate             = errors.New("recurso duplicado")
	ErrUnauthorized          = errors.New("no autorizado")
	ErrForbidden             = errors.New("acceso denegado")
	ErrConflict              = errors.New("conflicto con el estado actual")
	ErrInsufficientStock     = errors.New("stock insuficiente")
	ErrConnection            = errors.New("error de conexión con la base de datos")
	ErrInactive              = errors.New("el recurso está inactivo")
)

// Errores de los flujos de solicitudes, préstamos e inventario corporativo.
var (
	ErrRequestNotPending = errors.New("solicitud no encontrada o no está pendiente")
	ErrOnlyPending       = errors.New("solo se pueden procesar solicitudes pendientes")
	ErrInvalidQuantity   = errors.New("cantidad aprobada inválida")
	ErrNotReturnable     = errors.New("solo se pueden devolver solicitudes aprobadas o entregadas")
	ErrReturnQuantity    = errors.New("la cantidad a devolver debe ser mayor a 0")
	ErrReturnExceeded    = errors.New("la cantidad a devolver excede lo entregado")
	ErrNothingToReturn   = errors.New("no hay cantidad disponible para devolver")
	ErrAlreadyResolved   = errors.New("la solicitud ya fue resuelta")
	ErrInvalidState      = errors.New("estado inválido para la operación")
	ErrSameOffice        = errors.New("la oficina de origen y destino no pueden ser la misma")
)

// StockError detalla un faltante de stock. errors.Is(err, ErrInsufficientStock) es verdadero.
type StockError struct {
	Available int
	Requested int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("Stock insuficiente. Disponible: %d, Solicitado: %d", e.Available, e.Requested)
}

func (e *StockError) Unwrap() error { return ErrInsufficientStock }

// ReturnLimitError indica el máximo que aún se puede devolver.
type ReturnLimitError struct {
	Max int
}

func (e *ReturnLimitError) Error() string {
	return fmt.Sprintf("No puede devolver más de %d unidades", e.Max)
}

func (e *ReturnLimitError) Unwrap() error { return ErrReturnExceeded }

// StateError se devuelve cuando una entidad no está en el estado requerido.
type StateError struct {
	Entity  string
	Current string
	Want    string
}

func (e *StateError) Error() string {
	if e.Want == "" {
		return fmt.Sprintf("%s ya fue %s", e.Entity, e.Current)
	}
	return fmt.Sprintf("%s debe estar en estado %s (actual: %s)", e.Entity, e.Want, e.Current)
}

func (e *StateError) Unwrap() error {
	if e.Want == "" {
		return ErrAlreadyResolved
	}
	return ErrInvalidState
}
