package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.InventoryRepository = (*InventoryRepo)(nil)

// InventoryRepo implementación en memoria del ledger. La clave única es
// (empresa, producto, bodega, ubicación) entre registros no dados de baja.
type InventoryRepo struct {
	v view
}

func (r *InventoryRepo) Create(_ context.Context, inv *entity.Inventory) error {
	return r.v.write(func(d *dataset) error {
		if findByKey(d, inv.Key().Normalize(), "") != nil {
			return domain.NewDuplicateLedgerEntry(inv.ProductID, inv.WarehouseID, inv.LocationCode)
		}
		if _, ok := d.inventories[inv.ID]; ok {
			return domain.ErrDuplicate
		}
		d.inventories[inv.ID] = *inv
		return nil
	})
}

func (r *InventoryRepo) CreateIfAbsent(_ context.Context, inv *entity.Inventory) (bool, error) {
	created := false
	err := r.v.write(func(d *dataset) error {
		if findByKey(d, inv.Key().Normalize(), "") != nil {
			return nil
		}
		d.inventories[inv.ID] = *inv
		created = true
		return nil
	})
	return created, err
}

func (r *InventoryRepo) GetByID(_ context.Context, id string) (*entity.Inventory, error) {
	var out *entity.Inventory
	r.v.read(func(d *dataset) {
		if inv, ok := d.inventories[id]; ok && !inv.IsDeleted() {
			out = &inv
		}
	})
	return out, nil
}

// GetForUpdate las transacciones en memoria ya son exclusivas.
func (r *InventoryRepo) GetForUpdate(ctx context.Context, id string) (*entity.Inventory, error) {
	return r.GetByID(ctx, id)
}

func (r *InventoryRepo) GetByKey(_ context.Context, key entity.InventoryKey) (*entity.Inventory, error) {
	var out *entity.Inventory
	r.v.read(func(d *dataset) {
		if inv := findByKey(d, key.Normalize(), ""); inv != nil {
			c := *inv
			out = &c
		}
	})
	return out, nil
}

func (r *InventoryRepo) GetByKeyForUpdate(ctx context.Context, key entity.InventoryKey) (*entity.Inventory, error) {
	return r.GetByKey(ctx, key)
}

func (r *InventoryRepo) Update(_ context.Context, inv *entity.Inventory) error {
	return r.v.write(func(d *dataset) error {
		current, ok := d.inventories[inv.ID]
		if !ok || current.IsDeleted() {
			return domain.ErrNotFound
		}
		if !inv.IsDeleted() && findByKey(d, inv.Key().Normalize(), inv.ID) != nil {
			return domain.NewDuplicateLedgerEntry(inv.ProductID, inv.WarehouseID, inv.LocationCode)
		}
		d.inventories[inv.ID] = *inv
		return nil
	})
}

func (r *InventoryRepo) List(_ context.Context, f repository.InventoryFilter) ([]*entity.Inventory, error) {
	var out []*entity.Inventory
	r.v.read(func(d *dataset) {
		for _, inv := range d.inventories {
			if matchInventory(inv, f) {
				c := inv
				out = append(out, &c)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.WarehouseID != b.WarehouseID {
			return a.WarehouseID < b.WarehouseID
		}
		if a.ProductID != b.ProductID {
			return a.ProductID < b.ProductID
		}
		return a.LocationCode < b.LocationCode
	})
	return paginate(out, f.Limit, f.Offset), nil
}

func (r *InventoryRepo) SumStockByWarehouse(_ context.Context, warehouseID string) (decimal.Decimal, error) {
	total := decimal.Zero
	r.v.read(func(d *dataset) {
		for _, inv := range d.inventories {
			if inv.WarehouseID == warehouseID && !inv.IsDeleted() {
				total = total.Add(inv.CurrentStock)
			}
		}
	})
	return total, nil
}

func (r *InventoryRepo) TotalStockValue(_ context.Context, companyID, warehouseID string) (decimal.Decimal, error) {
	total := decimal.Zero
	r.v.read(func(d *dataset) {
		for _, inv := range d.inventories {
			if inv.CompanyID != companyID || inv.IsDeleted() {
				continue
			}
			if warehouseID != "" && inv.WarehouseID != warehouseID {
				continue
			}
			total = total.Add(inv.CurrentStock.Mul(inv.AverageCost))
		}
	})
	return total, nil
}

// findByKey registro vigente con la clave, ignorando excludeID.
func findByKey(d *dataset, key entity.InventoryKey, excludeID string) *entity.Inventory {
	for id, inv := range d.inventories {
		if id == excludeID || inv.IsDeleted() {
			continue
		}
		if inv.Key().Normalize() == key {
			return &inv
		}
	}
	return nil
}

func matchInventory(inv entity.Inventory, f repository.InventoryFilter) bool {
	if inv.IsDeleted() || inv.CompanyID != f.CompanyID {
		return false
	}
	if f.WarehouseID != "" && inv.WarehouseID != f.WarehouseID {
		return false
	}
	if f.ProductID != "" && inv.ProductID != f.ProductID {
		return false
	}
	if f.LowStock && !inv.IsLowStock {
		return false
	}
	if f.OutOfStock && !inv.IsOutOfStock {
		return false
	}
	if f.OverStock && !inv.IsOverStock {
		return false
	}
	if f.NeedsReorder && !inv.NeedsReorder {
		return false
	}
	return true
}
