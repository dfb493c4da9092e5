package postgres_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	appinv "github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// Tests contra una base real: DATABASE_URL=postgres://... go test ./internal/infrastructure/postgres/
// Sin DATABASE_URL se omiten. Cada test usa una empresa nueva, así que la base puede reutilizarse.

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

type pgFixture struct {
	ctx       context.Context
	repos     repository.Repos
	companyID string
	productID string
	whA, whB  string
	ledger    *appinv.LedgerUseCase
	movements *appinv.MovementUseCase
}

func newPgFixture(t *testing.T) *pgFixture {
	t.Helper()
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL no definido; se omiten los tests de PostgreSQL")
	}
	db := config.DBConfig{DatabaseURL: url, MaxConns: 10}
	log := logger.Nop()

	mg, err := postgres.NewMigrator(db.MigrateURL(), log)
	require.NoError(t, err)
	require.NoError(t, mg.Up())
	require.NoError(t, mg.Close())

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	t.Cleanup(cancel)
	pool, err := postgres.NewPool(ctx, db)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	repos := postgres.NewRepos(pool)
	txRunner := postgres.NewTxRunner(pool)
	ledger := domaininv.NewLedger(domaininv.DefaultGradePolicy())

	f := &pgFixture{
		ctx:       ctx,
		repos:     repos,
		companyID: "it-" + uuid.NewString(),
		productID: uuid.NewString(),
		whA:       uuid.NewString(),
		whB:       uuid.NewString(),
		ledger:    appinv.NewLedgerUseCase(txRunner, repos, ledger, log),
		movements: appinv.NewMovementUseCase(txRunner, repos, ledger, log),
	}
	now := time.Now()
	require.NoError(t, repos.Products.Create(ctx, &entity.Product{
		ID: f.productID, CompanyID: f.companyID, SKU: "IT-" + f.productID[:8], Name: "Tornillo", Unit: "UND",
		CreatedAt: now, UpdatedAt: now,
	}))
	for i, id := range []string{f.whA, f.whB} {
		require.NoError(t, repos.Warehouses.Create(ctx, &entity.Warehouse{
			ID: id, CompanyID: f.companyID, Code: []string{"A", "B"}[i], Name: "Bodega", IsActive: true,
			CreatedAt: now, UpdatedAt: now,
		}))
	}
	return f
}

func (f *pgFixture) submit(t *testing.T, in dto.CreateMovementRequest) *entity.StockMovement {
	t.Helper()
	in.ProductID = f.productID
	m, err := f.movements.SubmitMovement(f.ctx, f.companyID, "u-ops", in)
	require.NoError(t, err)
	return m
}

func (f *pgFixture) receive(t *testing.T, warehouseID string, qty int64) {
	t.Helper()
	m := f.submit(t, dto.CreateMovementRequest{
		WarehouseID: warehouseID, MovementType: string(entity.MovementTypePurchaseReceipt),
		Quantity: d(qty), UnitPrice: d(3),
	})
	_, err := f.movements.Process(f.ctx, m.ID, "u-boss")
	require.NoError(t, err)
}

func (f *pgFixture) stock(t *testing.T, warehouseID string) *entity.Inventory {
	t.Helper()
	inv, err := f.repos.Inventory.GetByKey(f.ctx, entity.InventoryKey{
		CompanyID: f.companyID, ProductID: f.productID, WarehouseID: warehouseID,
	}.Normalize())
	require.NoError(t, err)
	require.NotNil(t, inv)
	return inv
}

// runConcurrently lanza fn(i) en n goroutines a la vez y devuelve los errores por índice.
func runConcurrently(n int, fn func(i int) error) []error {
	errs := make([]error, n)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			errs[i] = fn(i)
		}(i)
	}
	close(start)
	wg.Wait()
	return errs
}

// ──────────────────────────────────────────────────────────────────────────────
// Concurrencia sobre filas bloqueadas (SELECT ... FOR UPDATE)
// ──────────────────────────────────────────────────────────────────────────────

func TestPostgres_ProcessConcurrenteSoloUnoGana(t *testing.T) {
	f := newPgFixture(t)
	m := f.submit(t, dto.CreateMovementRequest{WarehouseID: f.whA, MovementType: "RECEIPT", Quantity: d(10), UnitPrice: d(1)})
	_, err := f.movements.Approve(f.ctx, m.ID, "u-boss")
	require.NoError(t, err)

	errs := runConcurrently(8, func(int) error {
		_, err := f.movements.Process(f.ctx, m.ID, "u-wh")
		return err
	})

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	}
	assert.Equal(t, 1, ok)
	inv := f.stock(t, f.whA)
	assert.True(t, inv.CurrentStock.Equal(d(10)), "el delta se aplica una sola vez")
	assert.Equal(t, int64(1), inv.MovementCount)
}

func TestPostgres_TrasladosOpuestosSinBloqueoMutuo(t *testing.T) {
	f := newPgFixture(t)
	f.receive(t, f.whA, 40)
	f.receive(t, f.whB, 40)

	const rounds = 5
	ids := make([]string, 0, 2*rounds)
	for i := 0; i < rounds; i++ {
		ida := f.submit(t, dto.CreateMovementRequest{
			MovementType: "WAREHOUSE_TRANSFER", FromWarehouseID: f.whA, ToWarehouseID: f.whB, Quantity: d(1),
		})
		vuelta := f.submit(t, dto.CreateMovementRequest{
			MovementType: "WAREHOUSE_TRANSFER", FromWarehouseID: f.whB, ToWarehouseID: f.whA, Quantity: d(1),
		})
		ids = append(ids, ida.ID, vuelta.ID)
	}

	errs := runConcurrently(len(ids), func(i int) error {
		_, err := f.movements.Process(f.ctx, ids[i], "u-boss")
		return err
	})
	for _, err := range errs {
		assert.NoError(t, err, "PostgreSQL no debe detectar deadlock entre traslados opuestos")
	}
	assert.True(t, f.stock(t, f.whA).CurrentStock.Equal(d(40)))
	assert.True(t, f.stock(t, f.whB).CurrentStock.Equal(d(40)))
}

// ──────────────────────────────────────────────────────────────────────────────
// Restricciones del esquema
// ──────────────────────────────────────────────────────────────────────────────

// Tras un conteo a la baja la salida se rechaza como stock insuficiente, antes de llegar al CHECK.
func TestPostgres_SalidaTrasConteoEsStockInsuficiente(t *testing.T) {
	f := newPgFixture(t)
	f.receive(t, f.whA, 20)
	inv := f.stock(t, f.whA)
	_, err := f.ledger.AdjustByStocktaking(f.ctx, inv.ID, d(5), time.Now())
	require.NoError(t, err)

	_, err = f.ledger.ApplyIssue(f.ctx, inv.ID, d(15), time.Now())
	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.True(t, insufficient.Available.Equal(d(5)))

	out, err := f.ledger.ApplyIssue(f.ctx, inv.ID, d(5), time.Now())
	require.NoError(t, err)
	assert.True(t, out.CurrentStock.IsZero())
	assert.True(t, f.stock(t, f.whA).CurrentStock.IsZero())
}

func TestPostgres_ClaveDeLedgerUnica(t *testing.T) {
	f := newPgFixture(t)
	f.receive(t, f.whA, 1)
	now := time.Now()
	err := f.repos.Inventory.Create(f.ctx, &entity.Inventory{
		ID: uuid.NewString(), CompanyID: f.companyID, ProductID: f.productID, WarehouseID: f.whA,
		LocationCode: entity.DefaultLocationCode, CreatedAt: now, UpdatedAt: now,
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateLedgerEntry)
}
