// Package memory implementa los puertos de persistencia en memoria, para desarrollo local y tests.
// Una transacción trabaja sobre una copia del estado y la publica solo si termina sin error.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/candy-pos/internal/application/inventory"
	"github.com/jhoicas/candy-pos/internal/domain/entity"
)

var _ inventory.TxRunner = (*Store)(nil)

type state struct {
	products  map[string]*entity.Product
	orders    map[string]*entity.ExitOrder
	orderSeq  map[string]int64 // orden de inserción, desempata CreatedAt
	nextSeq   int64
	movements []*entity.StockMovement
}

func newState() *state {
	return &state{
		products: make(map[string]*entity.Product),
		orders:   make(map[string]*entity.ExitOrder),
		orderSeq: make(map[string]int64),
	}
}

func (s *state) clone() *state {
	c := newState()
	for id, p := range s.products {
		cp := *p
		c.products[id] = &cp
	}
	for id, o := range s.orders {
		c.orders[id] = o.Clone()
	}
	for id, n := range s.orderSeq {
		c.orderSeq[id] = n
	}
	c.nextSeq = s.nextSeq
	// los movimientos nunca se modifican: basta copiar el slice de punteros
	c.movements = append([]*entity.StockMovement(nil), s.movements...)
	return c
}

// Store estado compartido de todos los repositorios en memoria.
type Store struct {
	mu   sync.Mutex
	data *state
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{data: newState()}
}

// Run ejecuta fn con repositorios sobre una copia del estado; si fn no falla, la copia
// reemplaza al estado. Las transacciones se serializan con el lock del store.
func (s *Store) Run(ctx context.Context, fn func(repos inventory.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	working := s.data.clone()
	if err := fn(reposFor(s, working)); err != nil {
		return err
	}
	s.data = working
	return nil
}

// Repos repositorios fuera de transacción (cada llamada toma el lock del store).
func (s *Store) Repos() inventory.Repos {
	return reposFor(s, nil)
}

func reposFor(s *Store, tx *state) inventory.Repos {
	return inventory.Repos{
		Products:   &ProductRepository{store: s, tx: tx},
		ExitOrders: &ExitOrderRepository{store: s, tx: tx},
		Movements:  &StockMovementRepository{store: s, tx: tx},
	}
}

// view ejecuta fn sobre el estado de la tx si hay una; si no, sobre el estado publicado con el lock tomado.
func (s *Store) view(tx *state, fn func(st *state) error) error {
	if tx != nil {
		return fn(tx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}
