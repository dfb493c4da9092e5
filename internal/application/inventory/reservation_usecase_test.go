package inventory_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain"
)

func TestReservation_ReservarYLiberar(t *testing.T) {
	f := newFixture(t)
	f.receive(t, whMain, 30, 2)

	inv, err := f.reservations.Reserve(f.ctx, companyID, productID, whMain, "", d(12))
	require.NoError(t, err)
	assert.True(t, inv.ReservedStock.Equal(d(12)))
	assert.True(t, inv.AvailableStock.Equal(d(18)))
	assert.True(t, inv.CurrentStock.Equal(d(30)), "reservar no cambia el stock físico")

	inv, released, err := f.reservations.Unreserve(f.ctx, companyID, productID, whMain, "", d(12))
	require.NoError(t, err)
	assert.True(t, released.Equal(d(12)))
	assert.True(t, inv.ReservedStock.IsZero())
	assert.True(t, inv.AvailableStock.Equal(d(30)))
}

func TestReservation_LiberarDeMasSeRecorta(t *testing.T) {
	f := newFixture(t)
	f.receive(t, whMain, 10, 2)
	_, err := f.reservations.Reserve(f.ctx, companyID, productID, whMain, "", d(4))
	require.NoError(t, err)

	inv, released, err := f.reservations.Unreserve(f.ctx, companyID, productID, whMain, "", d(9))
	require.NoError(t, err)
	assert.True(t, released.Equal(d(4)))
	assert.True(t, inv.AvailableStock.Equal(d(10)))
	assert.True(t, inv.CurrentStock.Equal(inv.AvailableStock.Add(inv.ReservedStock)))
}

func TestReservation_SinRegistro(t *testing.T) {
	f := newFixture(t)
	_, err := f.reservations.Reserve(f.ctx, companyID, productID, whMain, "", d(1))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	_, _, err = f.reservations.Unreserve(f.ctx, companyID, productID, whMain, "", d(1))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReservation_ConcurrentesNoSobrevenden(t *testing.T) {
	f := newFixture(t)
	f.receive(t, whMain, 10, 2)

	const workers = 25
	var wg sync.WaitGroup
	var mu sync.Mutex
	ok, insufficient := 0, 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.reservations.Reserve(f.ctx, companyID, productID, whMain, "", d(1))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case assert.ErrorIs(t, err, domain.ErrInsufficientStock):
				insufficient++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, ok)
	assert.Equal(t, workers-10, insufficient)
	inv := f.stock(t, whMain)
	assert.True(t, inv.ReservedStock.Equal(d(10)))
	assert.True(t, inv.AvailableStock.IsZero())
}
