package entity

import "time"

// Tipos de movimiento de stock.
const (
	MovementTypeExit    = "exit"    // salida de bodega hacia una ruta (orden de salida)
	MovementTypeReturn  = "return"  // devolución de una orden de salida
	MovementTypeEntrada = "entrada" // ingreso manual
	MovementTypeSalida  = "salida"  // retiro manual
	MovementTypeAjuste  = "ajuste"  // ajuste manual a un valor absoluto
)

// IsValidMovementType indica si t es un tipo de movimiento conocido.
func IsValidMovementType(t string) bool {
	switch t {
	case MovementTypeExit, MovementTypeReturn, MovementTypeEntrada, MovementTypeSalida, MovementTypeAjuste:
		return true
	}
	return false
}

// StockMovement es una entrada del log de movimientos (solo se agrega, nunca se modifica).
type StockMovement struct {
	ID            int64
	TransactionID string // agrupa los movimientos escritos en la misma transición atómica
	ProductID     string
	ProductName   string
	Type          string
	Quantity      int // delta con signo: negativo sale de bodega, positivo entra
	PreviousStock int
	NewStock      int
	Notes         string
	Date          time.Time
	ExitOrderID   string // vacío si el movimiento no proviene de una orden de salida
}

// StockMovementFilter filtros para consultar el historial de movimientos.
type StockMovementFilter struct {
	ProductID   string
	ExitOrderID string
	Type        string
}
