// Package pdf genera la factura y el remito de cada venta.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Farmacia            │  FACTURA/REMITO N° + Fecha   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CLIENTE: Nombre + CUIT/CUIL + Condición IVA (remito)       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Producto | P.Unit | Subtotal                 │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Bruto / Descuento / TOTAL                          │
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
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	appbilling "github.com/jhoicas/farmanaccio-api/internal/application/billing"
	"github.com/jhoicas/farmanaccio-api/internal/domain"
	"github.com/jhoicas/farmanaccio-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 110, Blue: 80}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

var vatLabels = map[string]string{
	entity.VATExempt:        "Exento",
	entity.VATMonotributo:   "Monotributo",
	entity.VATRegistered:    "Resp. Inscripto",
	entity.VATOccasional:    "Eventual",
	entity.VATFinalConsumer: "Consumidor Final",
}

// ── Generator ─────────────────────────────────────────────────────────────────

var _ appbilling.DocumentGenerator = (*MarotoDocumentGenerator)(nil)

// MarotoDocumentGenerator implementa billing.DocumentGenerator usando Maroto v2.
type MarotoDocumentGenerator struct {
	locator  SaveLocator
	pharmacy string
}

// NewMarotoDocumentGenerator construye el generador. pharmacy es el nombre impreso en el encabezado.
func NewMarotoDocumentGenerator(locator SaveLocator, pharmacy string) *MarotoDocumentGenerator {
	return &MarotoDocumentGenerator{locator: locator, pharmacy: pharmacy}
}

// printable datos ya resueltos para armar el PDF.
type printable struct {
	invoice *entity.Invoice
	lines   []printableLine
	note    *entity.DeliveryNote
	buyer   *entity.Customer
}

type printableLine struct {
	name      string
	quantity  int
	unitPrice decimal.Decimal
	subtotal  decimal.Decimal
}

// Render arma el PDF en memoria leyendo la venta a través de src.
func (g *MarotoDocumentGenerator) Render(
	ctx context.Context,
	src appbilling.DocumentSource,
	req appbilling.DocumentRequest,
) (*appbilling.RenderedDocument, error) {
	data, err := load(ctx, src, req)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCancelled, err)
	}

	title := "Factura"
	if data.invoice.DocumentType == entity.DocumentTypeDeliveryNote {
		title = "Remito"
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(title, true).
		WithAuthor(g.pharmacy, true).
		Build()

	m := maroto.New(cfg)
	m.AddRows(headerRow(g.pharmacy, data.invoice))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	if data.invoice.DocumentType == entity.DocumentTypeDeliveryNote {
		m.AddRows(remitoClientRows(data.buyer, data.note)...)
		m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
		m.AddRows(remitoTableHeaderRow())
		m.AddRows(remitoDetailRows(data.lines)...)
	} else {
		if data.buyer != nil {
			m.AddRows(buyerRow(data.buyer))
			m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
		}
		m.AddRows(tableHeaderRow())
		m.AddRows(tableDetailRows(data.lines)...)
		m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
		m.AddRows(totalsRow(data.invoice))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return &appbilling.RenderedDocument{
		FileName: fileName(data.invoice),
		Content:  doc.GetBytes(),
	}, nil
}

// Generate arma el PDF y lo guarda donde indique el SaveLocator.
// Si el locator no devuelve ubicación la venta se cancela.
func (g *MarotoDocumentGenerator) Generate(
	ctx context.Context,
	src appbilling.DocumentSource,
	req appbilling.DocumentRequest,
) (*appbilling.GeneratedDocument, error) {
	doc, err := g.Render(ctx, src, req)
	if err != nil {
		return nil, err
	}
	path, ok, err := g.locator.ChooseLocation(ctx, doc.FileName)
	if err != nil {
		return nil, fmt.Errorf("pdf: elegir ubicación: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: guardado del documento cancelado", domain.ErrCancelled)
	}
	if err := writeAtomic(path, doc.Content); err != nil {
		return nil, fmt.Errorf("pdf: guardar %s: %w", path, err)
	}
	return &appbilling.GeneratedDocument{Path: path, Size: len(doc.Content)}, nil
}

// Discard elimina un documento guardado de una venta que no se confirmó.
func (g *MarotoDocumentGenerator) Discard(_ context.Context, doc *appbilling.GeneratedDocument) error {
	if doc == nil || doc.Path == "" {
		return nil
	}
	return removeIfExists(doc.Path)
}

func load(ctx context.Context, src appbilling.DocumentSource, req appbilling.DocumentRequest) (*printable, error) {
	inv, err := src.Invoices.GetByID(ctx, req.InvoiceID)
	if err != nil {
		return nil, fmt.Errorf("pdf: obtener factura: %w", err)
	}
	if inv == nil {
		return nil, fmt.Errorf("pdf: factura %s: %w", req.InvoiceID, domain.ErrNotFound)
	}
	details, err := src.Invoices.GetDetailsByInvoiceID(ctx, inv.ID)
	if err != nil {
		return nil, fmt.Errorf("pdf: obtener detalles: %w", err)
	}

	data := &printable{invoice: inv, buyer: req.Buyer}
	for _, d := range details {
		// Corre dentro de la transacción de la venta: un error de lectura aborta el documento.
		p, err := src.Products.GetByID(ctx, d.ProductID)
		if err != nil {
			return nil, fmt.Errorf("pdf: obtener producto %s: %w", d.ProductID, err)
		}
		if p == nil {
			return nil, fmt.Errorf("pdf: producto %s: %w", d.ProductID, domain.ErrNotFound)
		}
		data.lines = append(data.lines, printableLine{
			name:      p.Name,
			quantity:  d.Quantity,
			unitPrice: d.UnitPrice,
			subtotal:  d.Subtotal,
		})
	}

	if inv.DocumentType == entity.DocumentTypeDeliveryNote {
		note, err := src.DeliveryNotes.GetByInvoiceID(ctx, inv.ID)
		if err != nil {
			return nil, fmt.Errorf("pdf: obtener remito: %w", err)
		}
		if note == nil {
			return nil, fmt.Errorf("pdf: remito de la venta %d: %w", inv.Number, domain.ErrNotFound)
		}
		if data.buyer == nil {
			return nil, fmt.Errorf("%w: el remito requiere los datos del cliente", domain.ErrInvalidInput)
		}
		data.note = note
	}
	return data, nil
}

func fileName(inv *entity.Invoice) string {
	return fmt.Sprintf("%s_%06d.pdf", strings.ToLower(inv.DocumentType), inv.Number)
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: farmacia (izq) y tipo + número + fecha/hora (der).
func headerRow(pharmacy string, inv *entity.Invoice) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(pharmacy, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
		),
		col.New(5).Add(
			text.New(inv.DocumentType, props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("N° %06d", inv.Number), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+inv.IssuedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// buyerRow: comprador identificado en una factura.
func buyerRow(c *entity.Customer) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New("CLIENTE", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(c.FullName(), props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
			text.New(fmt.Sprintf("CUIT/CUIL: %s   |   Condición IVA: %s", c.TaxID, vatLabel(c.VATStatus)),
				props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

// remitoClientRows: datos del cliente, marcas de condición de IVA y fechas.
func remitoClientRows(c *entity.Customer, note *entity.DeliveryNote) []core.Row {
	due := "—"
	if note.DueDate != nil {
		due = note.DueDate.Format("02/01/2006")
	}
	rows := []core.Row{
		row.New(20).Add(
			col.New(12).Add(
				text.New("CLIENTE", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
				text.New(c.FullName(), props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
				text.New(fmt.Sprintf("CUIT/CUIL: %s   |   Domicilio: %s", note.TaxID, nonEmpty(c.Address, "—")),
					props.Text{Size: 8, Top: 12, Color: colorGray}),
			),
		),
	}

	markers := make([]string, 0, len(entity.VATStatuses))
	for _, s := range entity.VATStatuses {
		mark := "[ ]"
		if s == note.VATStatus {
			mark = "[X]"
		}
		markers = append(markers, mark+" "+vatLabel(s))
	}
	rows = append(rows,
		row.New(7).Add(col.New(12).Add(
			text.New(strings.Join(markers, "    "), props.Text{Size: 8, Top: 1}),
		)),
		row.New(7).Add(
			col.New(6).Add(text.New("Fecha de inicio: "+note.StartDate.Format("02/01/2006"), props.Text{Size: 8, Top: 1})),
			col.New(6).Add(text.New("Vencimiento: "+due, props.Text{Size: 8, Top: 1, Align: align.Right})),
		),
	)
	return rows
}

func headerCell(label string, size int, a align.Type) core.Col {
	return col.New(size).Add(text.New(label, props.Text{
		Style: fontstyle.Bold, Size: 8, Align: a,
		Color: colorPrimary, Top: 2, Left: 1, Right: 1,
	}))
}

// tableHeaderRow: cabecera de la tabla de la factura.
func tableHeaderRow() core.Row {
	return row.New(8).Add(
		headerCell("Cant.", 2, align.Center),
		headerCell("Producto", 5, align.Left),
		headerCell("Precio Unit.", 2, align.Right),
		headerCell("Subtotal", 3, align.Right),
	)
}

// tableDetailRows: una fila por línea de detalle.
func tableDetailRows(lines []printableLine) []core.Row {
	result := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		result = append(result, row.New(7).Add(
			col.New(2).Add(text.New(fmt.Sprint(l.quantity), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(5).Add(text.New(l.name, props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
			col.New(2).Add(text.New("$"+formatMoney(l.unitPrice), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(3).Add(text.New("$"+formatMoney(l.subtotal), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

// remitoTableHeaderRow: el remito solo lista producto y cantidad.
func remitoTableHeaderRow() core.Row {
	return row.New(8).Add(
		headerCell("Producto", 9, align.Left),
		headerCell("Cantidad", 3, align.Center),
	)
}

func remitoDetailRows(lines []printableLine) []core.Row {
	result := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		result = append(result, row.New(7).Add(
			col.New(9).Add(text.New(l.name, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(3).Add(text.New(fmt.Sprint(l.quantity), props.Text{Size: 8, Align: align.Center, Top: 1})),
		))
	}
	return result
}

// totalsRow: bloque de totales alineado a la derecha.
func totalsRow(inv *entity.Invoice) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1, Top: top})
	}
	return row.New(20).Add(
		col.New(6),
		col.New(3).Add(
			label("Total bruto:"),
			text.New("Descuento:", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: 5}),
			text.New("TOTAL:", props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 2, Top: 11}),
		),
		col.New(3).Add(
			value("$"+formatMoney(inv.GrossTotal), 0),
			value(inv.Discount.String()+"%", 5),
			text.New("$"+formatMoney(inv.NetTotal), props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1, Top: 11}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func vatLabel(status string) string {
	if l, ok := vatLabels[status]; ok {
		return l
	}
	return status
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatMoney formato local: puntos de miles y coma decimal con 2 decimales.
// Ej: 25000 → "25.000,00", 1234.5 → "1.234,50"
func formatMoney(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	intPart, frac := s[:len(s)-3], s[len(s)-2:]
	n := len(intPart)
	buf := make([]byte, 0, n+n/3+3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	out := string(buf) + "," + frac
	if d.IsNegative() {
		return "-" + out
	}
	return out
}
