package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo implementación en memoria del log de movimientos.
type StockMovementRepo struct {
	v view
}

func (r *StockMovementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	return r.v.write(func(d *dataset) error {
		if _, ok := d.movements[m.ID]; ok {
			return domain.ErrDuplicate
		}
		for _, other := range d.movements {
			if other.CompanyID == m.CompanyID && other.MovementNumber == m.MovementNumber {
				return domain.ErrDuplicate
			}
		}
		d.movements[m.ID] = *m
		return nil
	})
}

func (r *StockMovementRepo) GetByID(_ context.Context, id string) (*entity.StockMovement, error) {
	var out *entity.StockMovement
	r.v.read(func(d *dataset) {
		if m, ok := d.movements[id]; ok {
			out = &m
		}
	})
	return out, nil
}

func (r *StockMovementRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockMovement, error) {
	return r.GetByID(ctx, id)
}

func (r *StockMovementRepo) Update(_ context.Context, m *entity.StockMovement) error {
	return r.v.write(func(d *dataset) error {
		if _, ok := d.movements[m.ID]; !ok {
			return domain.ErrNotFound
		}
		d.movements[m.ID] = *m
		return nil
	})
}

func (r *StockMovementRepo) List(_ context.Context, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	r.v.read(func(d *dataset) {
		for _, m := range d.movements {
			if matchMovement(m, f) {
				c := m
				out = append(out, &c)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].MovementNumber > out[j].MovementNumber
	})
	return paginate(out, f.Limit, f.Offset), nil
}

func (r *StockMovementRepo) SumProcessedByProduct(_ context.Context, companyID, warehouseID string, from, to time.Time) ([]repository.MovementTotals, error) {
	byProduct := make(map[string]*repository.MovementTotals)
	r.v.read(func(d *dataset) {
		for _, m := range d.movements {
			if m.CompanyID != companyID || m.MovementStatus != entity.MovementStatusProcessed || m.ProcessedAt == nil {
				continue
			}
			if m.ProcessedAt.Before(from) || m.ProcessedAt.After(to) {
				continue
			}
			if warehouseID != "" && m.WarehouseID != warehouseID {
				continue
			}
			dir := m.MovementType.Direction()
			if dir == entity.DirectionTransfer {
				continue
			}
			t, ok := byProduct[m.ProductID]
			if !ok {
				t = &repository.MovementTotals{ProductID: m.ProductID, Inbound: decimal.Zero, Outbound: decimal.Zero}
				byProduct[m.ProductID] = t
			}
			if dir == entity.DirectionInbound {
				t.Inbound = t.Inbound.Add(m.Quantity)
			} else {
				t.Outbound = t.Outbound.Add(m.Quantity)
			}
		}
	})
	out := make([]repository.MovementTotals, 0, len(byProduct))
	for _, t := range byProduct {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

func matchMovement(m entity.StockMovement, f repository.MovementFilter) bool {
	if m.CompanyID != f.CompanyID {
		return false
	}
	if f.ProductID != "" && m.ProductID != f.ProductID {
		return false
	}
	if f.WarehouseID != "" && m.WarehouseID != f.WarehouseID && m.ToWarehouseID != f.WarehouseID {
		return false
	}
	if f.Status != "" && m.MovementStatus != f.Status {
		return false
	}
	if f.Type != "" && m.MovementType != f.Type {
		return false
	}
	if f.From != nil && m.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && m.CreatedAt.After(*f.To) {
		return false
	}
	return true
}
