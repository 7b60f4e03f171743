package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo de bodega.
// Stock solo cambia a través del ledger de inventario (movimientos); nunca por edición directa.
type Product struct {
	ID        string
	Name      string
	Price     decimal.Decimal // precio de venta
	Cost      decimal.Decimal // costo unitario
	Stock     int             // unidades en bodega, nunca negativo
	MinStock  int             // umbral de stock bajo
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsLowStock indica si el producto está en o por debajo de su stock mínimo.
func (p *Product) IsLowStock() bool {
	return p.MinStock > 0 && p.Stock <= p.MinStock
}

// IsMoney indica si d cabe sin redondeo en un monto de 2 decimales.
func IsMoney(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}
