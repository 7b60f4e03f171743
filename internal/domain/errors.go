package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
// Los mensajes se muestran tal cual al usuario final.
var (
	ErrNotFound               = errors.New("recurso no encontrado")
	ErrInvalidInput           = errors.New("entrada inválida")
	ErrDuplicate              = errors.New("recurso duplicado")
	ErrConflict               = errors.New("conflicto con el estado actual")
	ErrInsufficientStock      = errors.New("stock insuficiente")
	ErrInsufficientRemaining  = errors.New("la cantidad vendida supera lo que queda en la orden")
	ErrCancellationNotAllowed = errors.New("no se puede cancelar una orden con ventas registradas; use completar en su lugar")
	ErrOrderNotActive         = errors.New("la orden de salida no está activa")
	ErrActiveOrderExists      = errors.New("la ruta ya tiene una orden de salida activa")
	ErrStoreUnavailable       = errors.New("almacenamiento no disponible")
)

// IsDomainError indica si err envuelve alguno de los errores de dominio conocidos.
// Los adaptadores devuelven errores crudos; los casos de uso usan esto para decidir
// si hay que reportarlos como ErrStoreUnavailable.
func IsDomainError(err error) bool {
	for _, target := range []error{
		ErrNotFound, ErrInvalidInput, ErrDuplicate, ErrConflict, ErrInsufficientStock,
		ErrInsufficientRemaining, ErrCancellationNotAllowed, ErrOrderNotActive,
		ErrActiveOrderExists, ErrStoreUnavailable,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// WrapStoreError deja pasar los errores de dominio y reporta cualquier otro
// (fallas del driver, red, commit) como ErrStoreUnavailable conservando la causa.
func WrapStoreError(err error) error {
	if err == nil || IsDomainError(err) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}
