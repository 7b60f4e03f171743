package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/candy-pos/internal/application/ports"
	"github.com/jhoicas/candy-pos/internal/domain"
)

const namespace = "candy_pos"

// Resultados posibles de una operación.
const (
	ResultOK       = "ok"
	ResultRejected = "rejected" // regla de negocio (validación, estado, stock)
	ResultError    = "error"    // almacenamiento u otra falla
)

var _ ports.Metrics = (*Prometheus)(nil)

// Prometheus adaptador de ports.Metrics con registro propio (no usa el global),
// así cada instancia de la app y cada test arranca con contadores en cero.
type Prometheus struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	movements  *prometheus.CounterVec
	units      *prometheus.CounterVec
}

// New registra los colectores de la app más los de proceso y runtime de Go.
func New() *Prometheus {
	reg := prometheus.NewRegistry()
	p := &Prometheus{
		registry: reg,
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "exit_order_operations_total",
			Help: "Operaciones sobre órdenes de salida por resultado.",
		}, []string{"operation", "result"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "exit_order_operation_seconds",
			Help:    "Duración de las operaciones sobre órdenes de salida.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		movements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "stock_movements_total",
			Help: "Movimientos agregados al log por tipo.",
		}, []string{"type"}),
		units: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "stock_movement_units_total",
			Help: "Unidades movidas (valor absoluto del delta) por tipo.",
		}, []string{"type"}),
	}
	reg.MustRegister(
		p.operations, p.latency, p.movements, p.units,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return p
}

// ObserveOperation implementa ports.Metrics.
func (p *Prometheus) ObserveOperation(operation string, err error, elapsed time.Duration) {
	p.operations.WithLabelValues(operation, resultOf(err)).Inc()
	p.latency.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// MovementRecorded implementa ports.Metrics.
func (p *Prometheus) MovementRecorded(movementType string, quantity int) {
	p.movements.WithLabelValues(movementType).Inc()
	if quantity < 0 {
		quantity = -quantity
	}
	p.units.WithLabelValues(movementType).Add(float64(quantity))
}

// Handler expone el registro en formato texto de Prometheus.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

// Registry para tests y colectores extra.
func (p *Prometheus) Registry() *prometheus.Registry { return p.registry }

func resultOf(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, domain.ErrStoreUnavailable), !domain.IsDomainError(err):
		return ResultError
	default:
		return ResultRejected
	}
}
