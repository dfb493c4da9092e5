// Package pdf genera el reporte de valorización de inventario.
//
// Layout de la página A4 (horizontal):
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Empresa + Bodega    │  Fecha de generación          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: SKU | Producto | Bodega | Ubic. | Stock | Costo |    │
//	│         Valor | ABC | Estado                                  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: líneas / VALOR TOTAL                               │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 170, Green: 30, Blue: 30}
	colorStripe  = &props.Color{Red: 235, Green: 241, Blue: 247}
)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ inventory.ValuationPDFGenerator = (*MarotoPDFGenerator)(nil)

// MarotoPDFGenerator implementa inventory.ValuationPDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// GenerateStockValuationPDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateStockValuationPDF(_ context.Context, report *dto.StockValuationReport) ([]byte, error) {
	if report == nil {
		return nil, fmt.Errorf("pdf: reporte vacío")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithOrientation(orientation.Horizontal).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 8}).
		WithTitle("Valorización de inventario", true).
		WithAuthor(report.CompanyID, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(report))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableRows(report.Rows)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(report))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(report *dto.StockValuationReport) core.Row {
	scope := "Todas las bodegas"
	if report.WarehouseID != "" {
		scope = "Bodega: " + report.WarehouseID
	}
	return row.New(16).Add(
		col.New(8).Add(
			text.New("VALORIZACIÓN DE INVENTARIO", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Empresa: "+report.CompanyID+"   |   "+scope, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(4).Add(
			text.New("Generado: "+report.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 3, Color: colorGray,
			}),
			text.New("Costo promedio ponderado", props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("SKU", 1, align.Left),
		h("Producto", 3, align.Left),
		h("Bodega", 2, align.Left),
		h("Ubic.", 1, align.Left),
		h("Stock", 1, align.Right),
		h("Costo prom.", 1, align.Right),
		h("Valor", 2, align.Right),
		h("ABC / Estado", 1, align.Center),
	)
}

func tableRows(rows []dto.StockValuationRow) []core.Row {
	result := make([]core.Row, 0, len(rows))
	for i, r := range rows {
		statusColor := colorGray
		if r.StockStatus != "NORMAL" {
			statusColor = colorAlert
		}
		cell := func(s string, size int, a align.Type) core.Col {
			return col.New(size).Add(text.New(s, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1}))
		}
		tr := row.New(6).Add(
			cell(r.SKU, 1, align.Left),
			cell(nonEmpty(r.ProductName, "—"), 3, align.Left),
			cell(r.WarehouseID, 2, align.Left),
			cell(r.LocationCode, 1, align.Left),
			cell(formatQuantity(r.CurrentStock), 1, align.Right),
			cell("$"+formatMoney(r.AverageCost.StringFixed(2)), 1, align.Right),
			cell("$"+formatMoney(r.TotalValue.StringFixed(0)), 2, align.Right),
			col.New(1).Add(text.New(r.StockGrade+" / "+r.StockStatus, props.Text{
				Size: 7, Align: align.Center, Top: 1, Color: statusColor,
			})),
		)
		if i%2 == 1 {
			tr.WithStyle(&props.Cell{BackgroundColor: colorStripe})
		}
		result = append(result, tr)
	}
	return result
}

func totalsRow(report *dto.StockValuationReport) core.Row {
	return row.New(14).Add(
		col.New(6).Add(text.New(fmt.Sprintf("Registros valorizados: %d", len(report.Rows)), props.Text{
			Size: 9, Top: 3, Color: colorGray,
		})),
		col.New(3).Add(text.New("VALOR TOTAL:", props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 3, Right: 2,
		})),
		col.New(3).Add(text.New("$"+formatMoney(report.TotalValue.StringFixed(0)), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 3, Right: 1,
		})),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatQuantity sin ceros decimales sobrantes: "12.5000" -> "12.5".
func formatQuantity(q decimal.Decimal) string {
	return formatMoney(q.String())
}

// formatMoney inserta puntos de miles en la parte entera y usa coma decimal.
// Ej: "25000" -> "25.000", "1234.50" -> "1.234,50"
func formatMoney(s string) string {
	intPart, frac, hasFrac := strings.Cut(s, ".")
	sign := ""
	if strings.HasPrefix(intPart, "-") {
		sign, intPart = "-", intPart[1:]
	}
	n := len(intPart)
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	out := sign + string(buf)
	if hasFrac {
		out += "," + frac
	}
	return out
}
