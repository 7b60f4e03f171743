package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/candy-pos/internal/domain"
)

// Estados de una orden de salida.
const (
	ExitOrderStatusActive    = "active"
	ExitOrderStatusCompleted = "completed"
	ExitOrderStatusCancelled = "cancelled"
)

// IsValidExitOrderStatus indica si s es un estado conocido.
func IsValidExitOrderStatus(s string) bool {
	switch s {
	case ExitOrderStatusActive, ExitOrderStatusCompleted, ExitOrderStatusCancelled:
		return true
	}
	return false
}

// MaxQuantity tope de unidades por línea, venta o ajuste; mantiene las sumas dentro de
// las columnas INTEGER del almacén.
const MaxQuantity = 1_000_000

// ExitOrderItem una línea de la orden: lo asignado a la ruta y lo reportado como vendido.
type ExitOrderItem struct {
	ProductID   string
	ProductName string
	Quantity    int // asignado al crear, inmutable
	Price       decimal.Decimal
	Cost        decimal.Decimal
	Sold        int // solo crece
}

// Remaining unidades asignadas aún no reportadas como vendidas.
func (i ExitOrderItem) Remaining() int {
	return i.Quantity - i.Sold
}

// ExitOrder asignación de inventario de bodega a una ruta/vendedor, conciliada hasta su cierre.
// Totales y acumulados de venta son derivados de Items; se recalculan con RecomputeTotals.
type ExitOrder struct {
	ID          string
	RouteID     string
	RouteName   string
	VendorName  string
	Status      string
	Date        string // YYYY-MM-DD
	Items       []ExitOrderItem
	TotalItems  int
	TotalValue  decimal.Decimal
	TotalCost   decimal.Decimal
	SoldItems   int
	SoldValue   decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
	CancelledAt *time.Time
}

// ExitOrderFilter filtros opcionales del listado de órdenes.
type ExitOrderFilter struct {
	Status  string
	RouteID string
	Date    string
}

// Matches indica si la orden cumple todos los filtros no vacíos.
func (f ExitOrderFilter) Matches(o *ExitOrder) bool {
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	if f.RouteID != "" && o.RouteID != f.RouteID {
		return false
	}
	if f.Date != "" && o.Date != f.Date {
		return false
	}
	return true
}

// NewExitOrder construye una orden activa con ventas en cero y totales calculados.
func NewExitOrder(id, routeID, routeName, vendorName string, items []ExitOrderItem, now time.Time) *ExitOrder {
	if routeName == "" {
		routeName = routeID
	}
	lines := make([]ExitOrderItem, len(items))
	for i, it := range items {
		it.Sold = 0
		lines[i] = it
	}
	o := &ExitOrder{
		ID:         id,
		RouteID:    routeID,
		RouteName:  routeName,
		VendorName: vendorName,
		Status:     ExitOrderStatusActive,
		Date:       now.Format("2006-01-02"),
		Items:      lines,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	o.RecomputeTotals()
	return o
}

// RecomputeTotals recalcula totales y acumulados de venta desde las líneas.
func (o *ExitOrder) RecomputeTotals() {
	o.TotalItems, o.SoldItems = 0, 0
	o.TotalValue, o.TotalCost, o.SoldValue = decimal.Zero, decimal.Zero, decimal.Zero
	for _, it := range o.Items {
		q := decimal.NewFromInt(int64(it.Quantity))
		s := decimal.NewFromInt(int64(it.Sold))
		o.TotalItems += it.Quantity
		o.SoldItems += it.Sold
		o.TotalValue = o.TotalValue.Add(q.Mul(it.Price))
		o.TotalCost = o.TotalCost.Add(q.Mul(it.Cost))
		o.SoldValue = o.SoldValue.Add(s.Mul(it.Price))
	}
}

// RemainingItems suma de lo que queda por vender en todas las líneas.
func (o *ExitOrder) RemainingItems() int {
	n := 0
	for _, it := range o.Items {
		n += it.Remaining()
	}
	return n
}

// Progress porcentaje vendido (0-100), redondeado.
func (o *ExitOrder) Progress() int {
	if o.TotalItems <= 0 {
		return 0
	}
	return int(decimal.NewFromInt(int64(o.SoldItems * 100)).
		Div(decimal.NewFromInt(int64(o.TotalItems))).
		Round(0).IntPart())
}

// IsActive indica si la orden admite ventas y transiciones.
func (o *ExitOrder) IsActive() bool {
	return o.Status == ExitOrderStatusActive
}

func (o *ExitOrder) itemIndex(productID string) int {
	for i := range o.Items {
		if o.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// SaleLine cantidad vendida reportada para un producto.
type SaleLine struct {
	ProductID string
	Quantity  int
}

// ApplySales suma las ventas reportadas a las líneas de la orden.
// Es todo o nada: valida todas las líneas (acumulando repetidas) antes de mutar.
func (o *ExitOrder) ApplySales(lines []SaleLine, now time.Time) error {
	if !o.IsActive() {
		return domain.ErrOrderNotActive
	}
	if len(lines) == 0 {
		return fmt.Errorf("%w: no hay ventas para registrar", domain.ErrInvalidInput)
	}
	requested := make(map[int]int, len(lines))
	for _, l := range lines {
		if l.Quantity <= 0 {
			return fmt.Errorf("%w: cantidad vendida debe ser mayor a 0 (producto %s)", domain.ErrInvalidInput, l.ProductID)
		}
		idx := o.itemIndex(l.ProductID)
		if idx < 0 {
			return fmt.Errorf("%w: el producto %s no pertenece a la orden %s", domain.ErrInvalidInput, l.ProductID, o.ID)
		}
		// se compara contra lo que queda antes de sumar, así la suma nunca desborda
		if rem := o.Items[idx].Remaining() - requested[idx]; l.Quantity > rem {
			return fmt.Errorf("%w: %s solicitado %d, restante %d",
				domain.ErrInsufficientRemaining, o.Items[idx].ProductName, l.Quantity, rem)
		}
		requested[idx] += l.Quantity
	}
	for idx, qty := range requested {
		o.Items[idx].Sold += qty
	}
	o.RecomputeTotals()
	o.UpdatedAt = now
	return nil
}

// Complete cierra la orden; lo no vendido vuelve a bodega (ver ReturnLines).
func (o *ExitOrder) Complete(now time.Time) error {
	if !o.IsActive() {
		return domain.ErrOrderNotActive
	}
	o.Status = ExitOrderStatusCompleted
	o.CompletedAt = &now
	o.UpdatedAt = now
	return nil
}

// CanCancel verifica las precondiciones de cancelación sin mutar la orden.
func (o *ExitOrder) CanCancel() error {
	if !o.IsActive() {
		return domain.ErrOrderNotActive
	}
	if o.SoldItems > 0 {
		return domain.ErrCancellationNotAllowed
	}
	return nil
}

// Cancel anula la orden; todo lo asignado vuelve a bodega.
func (o *ExitOrder) Cancel(now time.Time) error {
	if err := o.CanCancel(); err != nil {
		return err
	}
	o.Status = ExitOrderStatusCancelled
	o.CancelledAt = &now
	o.UpdatedAt = now
	return nil
}

// ReturnLine cantidad que vuelve a bodega para un producto.
type ReturnLine struct {
	ProductID   string
	ProductName string
	Quantity    int
}

// ReturnLines lo que vuelve a bodega al completar (remaining) o cancelar (quantity completo).
func (o *ExitOrder) ReturnLines(full bool) []ReturnLine {
	var out []ReturnLine
	for _, it := range o.Items {
		qty := it.Remaining()
		if full {
			qty = it.Quantity
		}
		if qty > 0 {
			out = append(out, ReturnLine{ProductID: it.ProductID, ProductName: it.ProductName, Quantity: qty})
		}
	}
	return out
}

// Clone copia profunda, para que los repositorios en memoria no compartan punteros.
func (o *ExitOrder) Clone() *ExitOrder {
	if o == nil {
		return nil
	}
	c := *o
	c.Items = append([]ExitOrderItem(nil), o.Items...)
	if o.CompletedAt != nil {
		t := *o.CompletedAt
		c.CompletedAt = &t
	}
	if o.CancelledAt != nil {
		t := *o.CancelledAt
		c.CancelledAt = &t
	}
	return &c
}
