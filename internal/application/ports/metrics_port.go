package ports

import "time"

// Metrics puerto de salida para métricas de las operaciones de inventario.
// El adaptador Prometheus vive en infrastructure/metrics; en tests se usa NopMetrics.
type Metrics interface {
	// ObserveOperation registra el resultado y la duración de una operación de la orden de salida.
	ObserveOperation(operation string, err error, elapsed time.Duration)
	// MovementRecorded cuenta un movimiento de stock agregado al log.
	MovementRecorded(movementType string, quantity int)
}

// NopMetrics descarta todas las observaciones.
type NopMetrics struct{}

func (NopMetrics) ObserveOperation(string, error, time.Duration) {}
func (NopMetrics) MovementRecorded(string, int)                  {}
