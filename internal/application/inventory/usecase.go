package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/candy-pos/internal/domain"
	"github.com/jhoicas/candy-pos/internal/domain/entity"
	domaininv "github.com/jhoicas/candy-pos/internal/domain/inventory"
)

// AdjustStockUseCase ajustes manuales de bodega (entrada, salida, ajuste) hechos desde el inventario.
type AdjustStockUseCase struct {
	ledger *Ledger
}

// NewAdjustStockUseCase construye el caso de uso.
func NewAdjustStockUseCase(ledger *Ledger) *AdjustStockUseCase {
	return &AdjustStockUseCase{ledger: ledger}
}

// AdjustStockInput entrada de un ajuste manual.
// entrada/salida: Quantity > 0 unidades a sumar/restar. ajuste: Quantity >= 0 es el nuevo stock absoluto.
type AdjustStockInput struct {
	ProductID string
	Type      string
	Quantity  int
	Notes     string
}

// AdjustStock valida la entrada, bloquea el producto y registra el movimiento en una transacción.
// Una salida mayor al stock disponible se rechaza siempre, sin importar la política del ledger.
// Un ajuste al valor que ya tiene el producto no escribe nada y devuelve (nil, nil).
func (uc *AdjustStockUseCase) AdjustStock(ctx context.Context, input AdjustStockInput) (*entity.StockMovement, error) {
	if input.ProductID == "" {
		return nil, fmt.Errorf("%w: product_id es requerido", domain.ErrInvalidInput)
	}
	if input.Quantity > entity.MaxQuantity {
		return nil, fmt.Errorf("%w: la cantidad admite hasta %d", domain.ErrInvalidInput, entity.MaxQuantity)
	}
	switch input.Type {
	case entity.MovementTypeEntrada, entity.MovementTypeSalida:
		if input.Quantity <= 0 {
			return nil, fmt.Errorf("%w: la cantidad debe ser mayor a 0", domain.ErrInvalidInput)
		}
	case entity.MovementTypeAjuste:
		if input.Quantity < 0 {
			return nil, fmt.Errorf("%w: el stock ajustado no puede ser negativo", domain.ErrInvalidInput)
		}
	default:
		return nil, fmt.Errorf("%w: tipo de ajuste %q", domain.ErrInvalidInput, input.Type)
	}
	notes := input.Notes
	if notes == "" {
		notes = fmt.Sprintf("Ajuste de inventario (%s)", input.Type)
	}

	var movement *entity.StockMovement
	_, err := uc.ledger.AtomicStockTransition(ctx, func(ctx context.Context, repos Repos) (*StockTransition, error) {
		product, err := repos.Products.GetForUpdate(ctx, input.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, input.ProductID)
		}
		var delta int
		policy := uc.ledger.policy
		switch input.Type {
		case entity.MovementTypeEntrada:
			delta = input.Quantity
		case entity.MovementTypeSalida:
			delta = -input.Quantity
			policy = domaininv.RejectInsufficient
		case entity.MovementTypeAjuste:
			delta = input.Quantity - product.Stock
			if delta == 0 {
				return nil, nil
			}
		}
		movement, err = uc.ledger.apply(ctx, repos, uuid.New().String(), StockDelta{
			ProductID: product.ID,
			Type:      input.Type,
			Delta:     delta,
			Notes:     notes,
		}, policy)
		if err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	if movement != nil {
		uc.ledger.metrics.MovementRecorded(movement.Type, movement.Quantity)
	}
	return movement, nil
}
