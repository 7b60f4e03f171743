package inventory

import (
	"fmt"
	"math"

	"github.com/jhoicas/candy-pos/internal/domain"
)

// Nombres de política aceptados en configuración.
const (
	PolicyFloor  = "floor"
	PolicyReject = "reject"
)

// StockPolicy decide el stock resultante de aplicar delta sobre current (servicio de dominio).
// Devuelve error si la política no admite el cambio.
type StockPolicy func(current, delta int) (int, error)

// ClampNonNegative aplica el delta y recorta el resultado a 0: una salida mayor al stock
// disponible deja la bodega en cero en lugar de bloquear la operación.
func ClampNonNegative(current, delta int) (int, error) {
	next, err := add(current, delta)
	if err != nil {
		return current, err
	}
	if next < 0 {
		return 0, nil
	}
	return next, nil
}

// RejectInsufficient aplica el delta solo si el resultado no queda negativo.
func RejectInsufficient(current, delta int) (int, error) {
	next, err := add(current, delta)
	if err != nil {
		return current, err
	}
	if next < 0 {
		return current, fmt.Errorf("%w: disponible %d, solicitado %d", domain.ErrInsufficientStock, current, -delta)
	}
	return next, nil
}

// add suma sin desbordar int.
func add(current, delta int) (int, error) {
	if (delta > 0 && current > math.MaxInt-delta) || (delta < 0 && current < math.MinInt-delta) {
		return current, fmt.Errorf("%w: el stock %d no admite un cambio de %d", domain.ErrInvalidInput, current, delta)
	}
	return current + delta, nil
}

// PolicyByName resuelve la política configurada; vacío equivale a PolicyFloor.
func PolicyByName(name string) (StockPolicy, error) {
	switch name {
	case "", PolicyFloor:
		return ClampNonNegative, nil
	case PolicyReject:
		return RejectInsufficient, nil
	}
	return nil, fmt.Errorf("%w: política de stock desconocida %q", domain.ErrInvalidInput, name)
}
