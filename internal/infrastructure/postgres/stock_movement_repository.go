package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo implementación del log de movimientos sobre PostgreSQL.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

const movementColumns = `
	id, movement_number, company_id, product_id, warehouse_id, inventory_id, location_code,
	movement_type, movement_status, quantity, unit, unit_price, total_amount, before_stock, after_stock,
	from_warehouse_id, from_location, to_warehouse_id, to_location,
	reference_number, reference_type, notes,
	created_by, created_at, updated_at, submitted_at, approved_by, approved_at,
	processed_by, processed_at, rejected_by, rejected_at, cancelled_at, cancel_reason`

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var m entity.StockMovement
	var mType, mStatus string
	err := row.Scan(
		&m.ID, &m.MovementNumber, &m.CompanyID, &m.ProductID, &m.WarehouseID, &m.InventoryID, &m.LocationCode,
		&mType, &mStatus, &m.Quantity, &m.Unit, &m.UnitPrice, &m.TotalAmount, &m.BeforeStock, &m.AfterStock,
		&m.FromWarehouseID, &m.FromLocation, &m.ToWarehouseID, &m.ToLocation,
		&m.ReferenceNumber, &m.ReferenceType, &m.Notes,
		&m.CreatedBy, &m.CreatedAt, &m.UpdatedAt, &m.SubmittedAt, &m.ApprovedBy, &m.ApprovedAt,
		&m.ProcessedBy, &m.ProcessedAt, &m.RejectedBy, &m.RejectedAt, &m.CancelledAt, &m.CancelReason,
	)
	if err != nil {
		return nil, err
	}
	m.MovementType = entity.MovementType(mType)
	m.MovementStatus = entity.MovementStatus(mStatus)
	return &m, nil
}

func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17,
			$18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31, $32, $33, $34)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.MovementNumber, m.CompanyID, m.ProductID, m.WarehouseID, m.InventoryID, m.LocationCode,
		string(m.MovementType), string(m.MovementStatus), m.Quantity, m.Unit, m.UnitPrice, m.TotalAmount,
		m.BeforeStock, m.AfterStock,
		m.FromWarehouseID, m.FromLocation, m.ToWarehouseID, m.ToLocation,
		m.ReferenceNumber, m.ReferenceType, m.Notes,
		m.CreatedBy, m.CreatedAt, m.UpdatedAt, m.SubmittedAt, m.ApprovedBy, m.ApprovedAt,
		m.ProcessedBy, m.ProcessedAt, m.RejectedBy, m.RejectedAt, m.CancelledAt, m.CancelReason,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("movimiento %s: %w", m.MovementNumber, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert stock movement: %w", err)
	}
	return nil
}

func (r *StockMovementRepo) GetByID(ctx context.Context, id string) (*entity.StockMovement, error) {
	return r.getOne(ctx, "get stock movement",
		`SELECT `+movementColumns+` FROM stock_movements WHERE id = $1`, id)
}

// GetForUpdate bloquea la fila; un segundo Process concurrente espera y ve el estado final.
func (r *StockMovementRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockMovement, error) {
	return r.getOne(ctx, "get stock movement for update",
		`SELECT `+movementColumns+` FROM stock_movements WHERE id = $1 FOR UPDATE`, id)
}

func (r *StockMovementRepo) getOne(ctx context.Context, op, query string, args ...any) (*entity.StockMovement, error) {
	m, err := scanMovement(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return m, nil
}

func (r *StockMovementRepo) Update(ctx context.Context, m *entity.StockMovement) error {
	query := `
		UPDATE stock_movements SET
			product_id = $2, warehouse_id = $3, inventory_id = $4, location_code = $5,
			movement_type = $6, movement_status = $7, quantity = $8, unit = $9,
			unit_price = $10, total_amount = $11, before_stock = $12, after_stock = $13,
			from_warehouse_id = $14, from_location = $15, to_warehouse_id = $16, to_location = $17,
			reference_number = $18, reference_type = $19, notes = $20,
			updated_at = $21, submitted_at = $22, approved_by = $23, approved_at = $24,
			processed_by = $25, processed_at = $26, rejected_by = $27, rejected_at = $28,
			cancelled_at = $29, cancel_reason = $30
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		m.ID, m.ProductID, m.WarehouseID, m.InventoryID, m.LocationCode,
		string(m.MovementType), string(m.MovementStatus), m.Quantity, m.Unit,
		m.UnitPrice, m.TotalAmount, m.BeforeStock, m.AfterStock,
		m.FromWarehouseID, m.FromLocation, m.ToWarehouseID, m.ToLocation,
		m.ReferenceNumber, m.ReferenceType, m.Notes,
		m.UpdatedAt, m.SubmittedAt, m.ApprovedBy, m.ApprovedAt,
		m.ProcessedBy, m.ProcessedAt, m.RejectedBy, m.RejectedAt,
		m.CancelledAt, m.CancelReason,
	)
	if err != nil {
		return fmt.Errorf("update stock movement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *StockMovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	var w whereBuilder
	w.add("company_id = ?", f.CompanyID)
	if f.ProductID != "" {
		w.add("product_id = ?", f.ProductID)
	}
	if f.WarehouseID != "" {
		w.add("(warehouse_id = ? OR to_warehouse_id = ?)", f.WarehouseID)
	}
	if f.Status != "" {
		w.add("movement_status = ?", string(f.Status))
	}
	if f.Type != "" {
		w.add("movement_type = ?", string(f.Type))
	}
	if f.From != nil {
		w.add("created_at >= ?", *f.From)
	}
	if f.To != nil {
		w.add("created_at <= ?", *f.To)
	}
	query := `SELECT ` + movementColumns + ` FROM stock_movements` + w.sql() + ` ORDER BY created_at DESC`
	query += w.page(f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// SumProcessedByProduct agrega entradas y salidas procesadas; los traslados quedan fuera.
func (r *StockMovementRepo) SumProcessedByProduct(ctx context.Context, companyID, warehouseID string, from, to time.Time) ([]repository.MovementTotals, error) {
	var w whereBuilder
	w.add("company_id = ?", companyID)
	w.add("movement_status = ?", string(entity.MovementStatusProcessed))
	w.add("processed_at >= ?", from)
	w.add("processed_at <= ?", to)
	if warehouseID != "" {
		w.add("warehouse_id = ?", warehouseID)
	}
	w.args = append(w.args, entity.TypesByDirection(entity.DirectionInbound), entity.TypesByDirection(entity.DirectionOutbound))
	inArg, outArg := placeholder(len(w.args)-1), placeholder(len(w.args))
	query := `
		SELECT product_id,
			COALESCE(SUM(quantity) FILTER (WHERE movement_type = ANY(` + inArg + `)), 0),
			COALESCE(SUM(quantity) FILTER (WHERE movement_type = ANY(` + outArg + `)), 0)
		FROM stock_movements` + w.sql() + `
		GROUP BY product_id
		ORDER BY product_id`

	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("sum processed movements: %w", err)
	}
	defer rows.Close()
	var out []repository.MovementTotals
	for rows.Next() {
		var t repository.MovementTotals
		if err := rows.Scan(&t.ProductID, &t.Inbound, &t.Outbound); err != nil {
			return nil, fmt.Errorf("scan movement totals: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
