package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/usecase"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
)

func TestProductUseCase_CreateSKUUnico(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewProductUseCase(memory.NewStore().Repos().Products)
	in := dto.CreateProductRequest{SKU: "A-1", Name: "Arandela", MinStock: decimal.NewFromInt(5), MaxStock: decimal.NewFromInt(50)}

	p, err := uc.Create(ctx, "c1", in)
	require.NoError(t, err)
	assert.Equal(t, "UND", p.Unit)
	assert.True(t, p.MinStock.Equal(decimal.NewFromInt(5)))

	_, err = uc.Create(ctx, "c1", in)
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = uc.Create(ctx, "c2", in)
	assert.NoError(t, err, "el SKU es único por empresa")
}

func TestProductUseCase_UmbralesInvalidos(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewProductUseCase(memory.NewStore().Repos().Products)
	_, err := uc.Create(ctx, "c1", dto.CreateProductRequest{
		SKU: "A-2", Name: "Tuerca", MinStock: decimal.NewFromInt(60), MaxStock: decimal.NewFromInt(50),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProductUseCase_GetInexistente(t *testing.T) {
	uc := usecase.NewProductUseCase(memory.NewStore().Repos().Products)
	p, err := uc.GetByID(context.Background(), "nada")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestWarehouseUseCase_CreateYUpdate(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewWarehouseUseCase(memory.NewStore().Repos().Warehouses)

	w, err := uc.Create(ctx, "c1", dto.CreateWarehouseRequest{Code: " norte ", Name: "Norte", Capacity: decimal.NewFromInt(500)})
	require.NoError(t, err)
	assert.Equal(t, "NORTE", w.Code)
	assert.True(t, w.IsActive)

	inactive := false
	w, err = uc.Update(ctx, w.ID, dto.UpdateWarehouseRequest{IsActive: &inactive})
	require.NoError(t, err)
	assert.False(t, w.IsActive)

	negative := decimal.NewFromInt(-1)
	_, err = uc.Update(ctx, w.ID, dto.UpdateWarehouseRequest{Capacity: &negative})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	list, err := uc.List(ctx, "c1", 20, 0)
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)
}
