package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var (
	_ repository.ProductRepository   = (*ProductRepo)(nil)
	_ repository.WarehouseRepository = (*WarehouseRepo)(nil)
)

// ProductRepo catálogo de productos en memoria; SKU único por empresa.
type ProductRepo struct {
	v view
}

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	return r.v.write(func(d *dataset) error {
		if _, ok := d.products[p.ID]; ok {
			return domain.ErrDuplicate
		}
		for _, other := range d.products {
			if other.CompanyID == p.CompanyID && other.SKU == p.SKU {
				return domain.ErrDuplicate
			}
		}
		d.products[p.ID] = *p
		return nil
	})
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	r.v.read(func(d *dataset) {
		if p, ok := d.products[id]; ok {
			out = &p
		}
	})
	return out, nil
}

func (r *ProductRepo) GetByCompanyAndSKU(_ context.Context, companyID, sku string) (*entity.Product, error) {
	var out *entity.Product
	r.v.read(func(d *dataset) {
		for _, p := range d.products {
			if p.CompanyID == companyID && p.SKU == sku {
				c := p
				out = &c
				return
			}
		}
	})
	return out, nil
}

func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	return r.v.write(func(d *dataset) error {
		if _, ok := d.products[p.ID]; !ok {
			return domain.ErrNotFound
		}
		d.products[p.ID] = *p
		return nil
	})
}

func (r *ProductRepo) ListByCompany(_ context.Context, companyID string, limit, offset int) ([]*entity.Product, error) {
	var out []*entity.Product
	r.v.read(func(d *dataset) {
		for _, p := range d.products {
			if p.CompanyID == companyID {
				c := p
				out = append(out, &c)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return paginate(out, limit, offset), nil
}

// WarehouseRepo bodegas en memoria; código único por empresa.
type WarehouseRepo struct {
	v view
}

func (r *WarehouseRepo) Create(_ context.Context, w *entity.Warehouse) error {
	return r.v.write(func(d *dataset) error {
		if _, ok := d.warehouses[w.ID]; ok {
			return domain.ErrDuplicate
		}
		for _, other := range d.warehouses {
			if other.CompanyID == w.CompanyID && other.Code == w.Code {
				return domain.ErrDuplicate
			}
		}
		d.warehouses[w.ID] = *w
		return nil
	})
}

func (r *WarehouseRepo) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	var out *entity.Warehouse
	r.v.read(func(d *dataset) {
		if w, ok := d.warehouses[id]; ok {
			out = &w
		}
	})
	return out, nil
}

func (r *WarehouseRepo) GetForUpdate(ctx context.Context, id string) (*entity.Warehouse, error) {
	return r.GetByID(ctx, id)
}

func (r *WarehouseRepo) Update(_ context.Context, w *entity.Warehouse) error {
	return r.v.write(func(d *dataset) error {
		if _, ok := d.warehouses[w.ID]; !ok {
			return domain.ErrNotFound
		}
		d.warehouses[w.ID] = *w
		return nil
	})
}

func (r *WarehouseRepo) ListByCompany(_ context.Context, companyID string, limit, offset int) ([]*entity.Warehouse, error) {
	var out []*entity.Warehouse
	r.v.read(func(d *dataset) {
		for _, w := range d.warehouses {
			if w.CompanyID == companyID {
				c := w
				out = append(out, &c)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return paginate(out, limit, offset), nil
}
