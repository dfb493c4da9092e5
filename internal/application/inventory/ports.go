package inventory

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace rollback y ningún cambio queda visible.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos repository.Repos) error) error
}

// ValuationPDFGenerator genera el PDF de valorización de inventario.
type ValuationPDFGenerator interface {
	GenerateStockValuationPDF(ctx context.Context, report *dto.StockValuationReport) ([]byte, error)
}
