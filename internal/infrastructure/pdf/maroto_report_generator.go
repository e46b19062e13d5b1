// Package pdf implementa la generación del reporte de movimientos de stock
// de un producto (kardex) para descarga por el staff de la tienda.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Producto + SKU       │  Stock actual + Fecha        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Fecha | Tipo | Cant | Anterior | Nuevo | Orden      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Entradas / Salidas / Asientos                     │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	appstock "github.com/jhoicas/stockledger-api/internal/application/stock"
	"github.com/jhoicas/stockledger-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ appstock.MovementReportGenerator = (*MarotoReportGenerator)(nil)

// MarotoReportGenerator implementa stock.MovementReportGenerator usando Maroto v2.
type MarotoReportGenerator struct {
	printer *message.Printer
}

// NewMarotoReportGenerator construye el generador con formato numérico es-CO.
func NewMarotoReportGenerator() *MarotoReportGenerator {
	return &MarotoReportGenerator{printer: message.NewPrinter(language.Spanish)}
}

// GenerateMovementReport genera el PDF y devuelve sus bytes.
func (g *MarotoReportGenerator) GenerateMovementReport(
	_ context.Context,
	product *entity.Product,
	ops []*entity.OperationWithProduct,
	total int64,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Reporte de movimientos de stock", true).
		Build()

	m := maroto.New(cfg)

	g.addHeader(m, product)
	g.addTable(m, ops)
	g.addTotals(m, ops, total)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generar reporte PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

func (g *MarotoReportGenerator) addHeader(m core.Maroto, product *entity.Product) {
	m.AddRows(
		row.New(10).Add(
			col.New(8).Add(
				text.New(product.Name, props.Text{Size: 14, Style: fontstyle.Bold, Color: colorPrimary}),
			),
			col.New(4).Add(
				text.New(g.printer.Sprintf("Stock actual: %d", product.StockQuantity),
					props.Text{Size: 11, Align: align.Right, Style: fontstyle.Bold}),
			),
		),
		row.New(6).Add(
			col.New(8).Add(
				text.New("SKU: "+product.SKU, props.Text{Size: 9, Color: colorGray}),
			),
		),
		row.New(3).Add(col.New(12).Add(line.New())),
	)
}

func (g *MarotoReportGenerator) addTable(m core.Maroto, ops []*entity.OperationWithProduct) {
	// Encabezado de la tabla
	m.AddRows(row.New(7).Add(
		headerCell(3, "Fecha"),
		headerCell(1, "Tipo"),
		headerCell(2, "Cantidad"),
		headerCell(2, "Anterior"),
		headerCell(2, "Nuevo"),
		headerCell(2, "Orden"),
	))

	for _, op := range ops {
		qty := g.printer.Sprintf("+%d", op.Quantity)
		if op.Type == entity.OperationTypeOut {
			qty = g.printer.Sprintf("-%d", op.Quantity)
		}
		orderRef := "—"
		if op.OrderID != "" {
			orderRef = shortID(op.OrderID)
		}
		m.AddRows(row.New(6).Add(
			bodyCell(3, op.PerformedAt.Format("2006-01-02 15:04")),
			bodyCell(1, op.Type),
			bodyCell(2, qty),
			bodyCell(2, g.printer.Sprintf("%d", op.PreviousQuantity)),
			bodyCell(2, g.printer.Sprintf("%d", op.NewQuantity)),
			bodyCell(2, orderRef),
		))
	}
}

func (g *MarotoReportGenerator) addTotals(m core.Maroto, ops []*entity.OperationWithProduct, total int64) {
	var in, out int64
	for _, op := range ops {
		if op.Type == entity.OperationTypeIn {
			in += op.Quantity
		} else {
			out += op.Quantity
		}
	}
	summary := g.printer.Sprintf("Entradas: %d   Salidas: %d   Asientos en reporte: %d de %d",
		in, out, int64(len(ops)), total)
	m.AddRows(
		row.New(3).Add(col.New(12).Add(line.New())),
		row.New(8).Add(
			col.New(12).Add(
				text.New(summary, props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right}),
			),
		),
	)
}

func headerCell(size int, label string) core.Col {
	return col.New(size).Add(
		text.New(label, props.Text{Size: 9, Style: fontstyle.Bold, Color: colorWhite}),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

func bodyCell(size int, value string) core.Col {
	return col.New(size).Add(text.New(value, props.Text{Size: 8}))
}

// shortID recorta un UUID a su primer bloque para mostrarlo en la tabla.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
