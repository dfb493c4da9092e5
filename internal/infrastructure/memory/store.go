// Package memory implementa los repositorios del inventario en memoria.
// Se usa con STORAGE_DRIVER=memory y en los tests de casos de uso.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ inventory.TxRunner = (*Store)(nil)

// Store datos en memoria. Las transacciones se serializan con txMu y trabajan sobre una copia
// que reemplaza al estado publicado solo si fn termina sin error.
type Store struct {
	txMu   sync.Mutex   // un escritor a la vez (transacciones y escrituras sueltas)
	dataMu sync.RWMutex // protege el puntero data
	data   *dataset
}

type dataset struct {
	inventories map[string]entity.Inventory
	movements   map[string]entity.StockMovement
	products    map[string]entity.Product
	warehouses  map[string]entity.Warehouse
}

func newDataset() *dataset {
	return &dataset{
		inventories: make(map[string]entity.Inventory),
		movements:   make(map[string]entity.StockMovement),
		products:    make(map[string]entity.Product),
		warehouses:  make(map[string]entity.Warehouse),
	}
}

// clone copia los mapas; las entidades se guardan por valor y sus punteros internos
// (fechas) nunca se modifican en sitio.
func (d *dataset) clone() *dataset {
	c := &dataset{
		inventories: make(map[string]entity.Inventory, len(d.inventories)),
		movements:   make(map[string]entity.StockMovement, len(d.movements)),
		products:    make(map[string]entity.Product, len(d.products)),
		warehouses:  make(map[string]entity.Warehouse, len(d.warehouses)),
	}
	for k, v := range d.inventories {
		c.inventories[k] = v
	}
	for k, v := range d.movements {
		c.movements[k] = v
	}
	for k, v := range d.products {
		c.products[k] = v
	}
	for k, v := range d.warehouses {
		c.warehouses[k] = v
	}
	return c
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{data: newDataset()}
}

// Repos repositorios fuera de transacción: cada llamada es atómica por sí sola.
func (s *Store) Repos() repository.Repos {
	return newRepos(autocommit{s: s})
}

// Run ejecuta fn sobre una copia del estado; si fn devuelve error la copia se descarta.
func (s *Store) Run(ctx context.Context, fn func(repos repository.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.dataMu.RLock()
	work := s.data.clone()
	s.dataMu.RUnlock()

	if err := fn(newRepos(&txView{d: work})); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	s.dataMu.Lock()
	s.data = work
	s.dataMu.Unlock()
	return nil
}

// view acceso al dataset: autocommit (bloquea por llamada) o txView (copia privada de la transacción).
type view interface {
	read(fn func(d *dataset))
	write(fn func(d *dataset) error) error
}

type autocommit struct{ s *Store }

func (a autocommit) read(fn func(d *dataset)) {
	a.s.dataMu.RLock()
	defer a.s.dataMu.RUnlock()
	fn(a.s.data)
}

func (a autocommit) write(fn func(d *dataset) error) error {
	a.s.txMu.Lock()
	defer a.s.txMu.Unlock()
	a.s.dataMu.Lock()
	defer a.s.dataMu.Unlock()
	return fn(a.s.data)
}

type txView struct{ d *dataset }

func (t *txView) read(fn func(d *dataset))              { fn(t.d) }
func (t *txView) write(fn func(d *dataset) error) error { return fn(t.d) }

func newRepos(v view) repository.Repos {
	return repository.Repos{
		Inventory:  &InventoryRepo{v: v},
		Movements:  &StockMovementRepo{v: v},
		Products:   &ProductRepo{v: v},
		Warehouses: &WarehouseRepo{v: v},
	}
}

func paginate[T any](list []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(list) {
			return list[:0]
		}
		list = list[offset:]
	}
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
