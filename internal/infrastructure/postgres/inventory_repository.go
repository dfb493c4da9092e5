package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.InventoryRepository = (*InventoryRepo)(nil)

// InventoryRepo implementación de InventoryRepository sobre PostgreSQL (usable con pool o tx).
// La unicidad de (company_id, product_id, warehouse_id, location_code) la da el índice parcial
// ux_inventories_key (solo filas con deleted_at NULL).
type InventoryRepo struct {
	q Querier
}

// NewInventoryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryRepository(q Querier) *InventoryRepo {
	return &InventoryRepo{q: q}
}

const inventoryColumns = `
	id, company_id, product_id, warehouse_id, location_code, location_description,
	current_stock, available_stock, reserved_stock, ordered_stock, defective_stock, quarantine_stock,
	safety_stock, min_stock, max_stock, reorder_point, reorder_quantity,
	average_cost, last_purchase_price, total_stock_value,
	stock_status, stock_grade, is_low_stock, is_out_of_stock, is_over_stock, needs_reorder,
	lot_number, serial_number, expiry_date, manufacture_date,
	movement_count, last_receipt_date, last_issue_date, last_stocktaking_date, last_stock_update,
	version, created_at, created_by, updated_at, updated_by, deleted_at, deleted_by`

func inventoryArgs(inv *entity.Inventory) []any {
	return []any{
		inv.ID, inv.CompanyID, inv.ProductID, inv.WarehouseID, inv.LocationCode, inv.LocationDescription,
		inv.CurrentStock, inv.AvailableStock, inv.ReservedStock, inv.OrderedStock, inv.DefectiveStock, inv.QuarantineStock,
		inv.SafetyStock, inv.MinStock, inv.MaxStock, inv.ReorderPoint, inv.ReorderQuantity,
		inv.AverageCost, inv.LastPurchasePrice, inv.TotalStockValue,
		string(inv.StockStatus), string(inv.StockGrade), inv.IsLowStock, inv.IsOutOfStock, inv.IsOverStock, inv.NeedsReorder,
		inv.LotNumber, inv.SerialNumber, inv.ExpiryDate, inv.ManufactureDate,
		inv.MovementCount, inv.LastReceiptDate, inv.LastIssueDate, inv.LastStocktakingDate, inv.LastStockUpdate,
		inv.Version, inv.CreatedAt, inv.CreatedBy, inv.UpdatedAt, inv.UpdatedBy, inv.DeletedAt, inv.DeletedBy,
	}
}

const inventoryInsert = `
	INSERT INTO inventories (` + inventoryColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21,
		$22, $23, $24, $25, $26, $27, $28, $29, $30, $31, $32, $33, $34, $35, $36, $37, $38, $39, $40, $41, $42)`

func scanInventory(row pgx.Row) (*entity.Inventory, error) {
	var inv entity.Inventory
	var status, grade string
	err := row.Scan(
		&inv.ID, &inv.CompanyID, &inv.ProductID, &inv.WarehouseID, &inv.LocationCode, &inv.LocationDescription,
		&inv.CurrentStock, &inv.AvailableStock, &inv.ReservedStock, &inv.OrderedStock, &inv.DefectiveStock, &inv.QuarantineStock,
		&inv.SafetyStock, &inv.MinStock, &inv.MaxStock, &inv.ReorderPoint, &inv.ReorderQuantity,
		&inv.AverageCost, &inv.LastPurchasePrice, &inv.TotalStockValue,
		&status, &grade, &inv.IsLowStock, &inv.IsOutOfStock, &inv.IsOverStock, &inv.NeedsReorder,
		&inv.LotNumber, &inv.SerialNumber, &inv.ExpiryDate, &inv.ManufactureDate,
		&inv.MovementCount, &inv.LastReceiptDate, &inv.LastIssueDate, &inv.LastStocktakingDate, &inv.LastStockUpdate,
		&inv.Version, &inv.CreatedAt, &inv.CreatedBy, &inv.UpdatedAt, &inv.UpdatedBy, &inv.DeletedAt, &inv.DeletedBy,
	)
	if err != nil {
		return nil, err
	}
	inv.StockStatus = entity.StockStatus(status)
	inv.StockGrade = entity.StockGrade(grade)
	return &inv, nil
}

// Create inserta el registro; clave repetida -> DuplicateLedgerEntry.
func (r *InventoryRepo) Create(ctx context.Context, inv *entity.Inventory) error {
	_, err := r.q.Exec(ctx, inventoryInsert, inventoryArgs(inv)...)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewDuplicateLedgerEntry(inv.ProductID, inv.WarehouseID, inv.LocationCode)
		}
		return fmt.Errorf("insert inventory: %w", err)
	}
	return nil
}

// CreateIfAbsent INSERT ... ON CONFLICT DO NOTHING sobre el índice parcial de la clave.
func (r *InventoryRepo) CreateIfAbsent(ctx context.Context, inv *entity.Inventory) (bool, error) {
	query := inventoryInsert + `
	ON CONFLICT (company_id, product_id, warehouse_id, location_code) WHERE deleted_at IS NULL
	DO NOTHING`
	tag, err := r.q.Exec(ctx, query, inventoryArgs(inv)...)
	if err != nil {
		return false, fmt.Errorf("insert inventory if absent: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *InventoryRepo) GetByID(ctx context.Context, id string) (*entity.Inventory, error) {
	return r.getOne(ctx, "get inventory", `
		SELECT `+inventoryColumns+`
		FROM inventories WHERE id = $1 AND deleted_at IS NULL`, id)
}

// GetForUpdate obtiene el registro y bloquea la fila (SELECT FOR UPDATE).
func (r *InventoryRepo) GetForUpdate(ctx context.Context, id string) (*entity.Inventory, error) {
	return r.getOne(ctx, "get inventory for update", `
		SELECT `+inventoryColumns+`
		FROM inventories WHERE id = $1 AND deleted_at IS NULL
		FOR UPDATE`, id)
}

func (r *InventoryRepo) GetByKey(ctx context.Context, key entity.InventoryKey) (*entity.Inventory, error) {
	key = key.Normalize()
	return r.getOne(ctx, "get inventory by key", `
		SELECT `+inventoryColumns+`
		FROM inventories
		WHERE company_id = $1 AND product_id = $2 AND warehouse_id = $3 AND location_code = $4
		  AND deleted_at IS NULL`,
		key.CompanyID, key.ProductID, key.WarehouseID, key.LocationCode)
}

func (r *InventoryRepo) GetByKeyForUpdate(ctx context.Context, key entity.InventoryKey) (*entity.Inventory, error) {
	key = key.Normalize()
	return r.getOne(ctx, "get inventory by key for update", `
		SELECT `+inventoryColumns+`
		FROM inventories
		WHERE company_id = $1 AND product_id = $2 AND warehouse_id = $3 AND location_code = $4
		  AND deleted_at IS NULL
		FOR UPDATE`,
		key.CompanyID, key.ProductID, key.WarehouseID, key.LocationCode)
}

func (r *InventoryRepo) getOne(ctx context.Context, op, query string, args ...any) (*entity.Inventory, error) {
	inv, err := scanInventory(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return inv, nil
}

// Update persiste todo el registro salvo identidad y creación.
func (r *InventoryRepo) Update(ctx context.Context, inv *entity.Inventory) error {
	query := `
		UPDATE inventories SET
			location_code = $2, location_description = $3,
			current_stock = $4, available_stock = $5, reserved_stock = $6,
			ordered_stock = $7, defective_stock = $8, quarantine_stock = $9,
			safety_stock = $10, min_stock = $11, max_stock = $12, reorder_point = $13, reorder_quantity = $14,
			average_cost = $15, last_purchase_price = $16, total_stock_value = $17,
			stock_status = $18, stock_grade = $19,
			is_low_stock = $20, is_out_of_stock = $21, is_over_stock = $22, needs_reorder = $23,
			lot_number = $24, serial_number = $25, expiry_date = $26, manufacture_date = $27,
			movement_count = $28, last_receipt_date = $29, last_issue_date = $30,
			last_stocktaking_date = $31, last_stock_update = $32,
			version = $33, updated_at = $34, updated_by = $35, deleted_at = $36, deleted_by = $37
		WHERE id = $1 AND deleted_at IS NULL`
	tag, err := r.q.Exec(ctx, query,
		inv.ID, inv.LocationCode, inv.LocationDescription,
		inv.CurrentStock, inv.AvailableStock, inv.ReservedStock,
		inv.OrderedStock, inv.DefectiveStock, inv.QuarantineStock,
		inv.SafetyStock, inv.MinStock, inv.MaxStock, inv.ReorderPoint, inv.ReorderQuantity,
		inv.AverageCost, inv.LastPurchasePrice, inv.TotalStockValue,
		string(inv.StockStatus), string(inv.StockGrade),
		inv.IsLowStock, inv.IsOutOfStock, inv.IsOverStock, inv.NeedsReorder,
		inv.LotNumber, inv.SerialNumber, inv.ExpiryDate, inv.ManufactureDate,
		inv.MovementCount, inv.LastReceiptDate, inv.LastIssueDate,
		inv.LastStocktakingDate, inv.LastStockUpdate,
		inv.Version, inv.UpdatedAt, inv.UpdatedBy, inv.DeletedAt, inv.DeletedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewDuplicateLedgerEntry(inv.ProductID, inv.WarehouseID, inv.LocationCode)
		}
		return fmt.Errorf("update inventory: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *InventoryRepo) List(ctx context.Context, f repository.InventoryFilter) ([]*entity.Inventory, error) {
	var w whereBuilder
	w.add("company_id = ?", f.CompanyID)
	w.addRaw("deleted_at IS NULL")
	if f.WarehouseID != "" {
		w.add("warehouse_id = ?", f.WarehouseID)
	}
	if f.ProductID != "" {
		w.add("product_id = ?", f.ProductID)
	}
	if f.LowStock {
		w.addRaw("is_low_stock")
	}
	if f.OutOfStock {
		w.addRaw("is_out_of_stock")
	}
	if f.OverStock {
		w.addRaw("is_over_stock")
	}
	if f.NeedsReorder {
		w.addRaw("needs_reorder")
	}
	query := `SELECT ` + inventoryColumns + ` FROM inventories` + w.sql() +
		` ORDER BY warehouse_id, product_id, location_code`
	query += w.page(f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list inventories: %w", err)
	}
	defer rows.Close()
	var list []*entity.Inventory
	for rows.Next() {
		inv, err := scanInventory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inventory: %w", err)
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}

func (r *InventoryRepo) SumStockByWarehouse(ctx context.Context, warehouseID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(current_stock), 0)
		FROM inventories WHERE warehouse_id = $1 AND deleted_at IS NULL`, warehouseID).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum stock by warehouse: %w", err)
	}
	return total, nil
}

func (r *InventoryRepo) TotalStockValue(ctx context.Context, companyID, warehouseID string) (decimal.Decimal, error) {
	var w whereBuilder
	w.add("company_id = ?", companyID)
	w.addRaw("deleted_at IS NULL")
	if warehouseID != "" {
		w.add("warehouse_id = ?", warehouseID)
	}
	var total decimal.Decimal
	err := r.q.QueryRow(ctx, `SELECT COALESCE(SUM(current_stock * average_cost), 0) FROM inventories`+w.sql(), w.args...).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("total stock value: %w", err)
	}
	return total, nil
}
