package billing_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/farmanaccio-api/internal/application/billing"
	"github.com/jhoicas/farmanaccio-api/internal/application/inventory"
	"github.com/jhoicas/farmanaccio-api/internal/domain/entity"
	"github.com/jhoicas/farmanaccio-api/internal/domain/repository"
	"github.com/jhoicas/farmanaccio-api/internal/infrastructure/memory"
	"github.com/jhoicas/farmanaccio-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var testNow = time.Date(2024, 11, 20, 10, 30, 0, 0, time.UTC)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type lotSeed struct {
	label  string
	expiry time.Time
	qty    int
}

// seedProduct crea un producto activo con sus lotes y deja el stock sincronizado.
func seedProduct(t *testing.T, st *memory.Store, name, price string, lots ...lotSeed) *entity.Product {
	t.Helper()
	ctx := context.Background()
	p := &entity.Product{
		ID:        uuid.New().String(),
		Name:      name,
		Price:     decimal.RequireFromString(price),
		Status:    entity.StatusActive,
		CreatedAt: testNow,
		UpdatedAt: testNow,
	}
	require.NoError(t, st.Products().Create(ctx, p))
	for i, l := range lots {
		_, err := st.Lots().Upsert(ctx, repository.LotUpsert{
			ProductID:      p.ID,
			Label:          l.label,
			IntakeDate:     day(2024, 1, 1+i),
			ExpiryDate:     l.expiry,
			DeltaReceived:  l.qty,
			DeltaAvailable: l.qty,
		})
		require.NoError(t, err)
	}
	_, err := inventory.ResyncStock(ctx, st.Products(), st.Lots(), p.ID)
	require.NoError(t, err)
	return p
}

// lotByLabel devuelve el lote del producto con esa etiqueta.
func lotByLabel(t *testing.T, st *memory.Store, productID, label string) *entity.Lot {
	t.Helper()
	lots, err := st.Lots().ListByProduct(context.Background(), productID)
	require.NoError(t, err)
	for _, l := range lots {
		if l.Label == label {
			return l
		}
	}
	t.Fatalf("no existe el lote %s", label)
	return nil
}

func stockOf(t *testing.T, st *memory.Store, productID string) int {
	t.Helper()
	_, stock, err := st.Products().GetPriceAndStock(context.Background(), productID)
	require.NoError(t, err)
	return stock
}

// fakeDocs generador de documentos en memoria.
type fakeDocs struct {
	err       error
	onGen     func()
	generated []*billing.GeneratedDocument
	discarded []*billing.GeneratedDocument
	// seen factura leída a través de la transacción abierta
	seen *entity.Invoice
}

func (f *fakeDocs) Render(ctx context.Context, src billing.DocumentSource, req billing.DocumentRequest) (*billing.RenderedDocument, error) {
	inv, err := src.Invoices.GetByID(ctx, req.InvoiceID)
	if err != nil {
		return nil, err
	}
	f.seen = inv
	return &billing.RenderedDocument{FileName: "doc.pdf", Content: []byte("%PDF-fake")}, nil
}

func (f *fakeDocs) Generate(ctx context.Context, src billing.DocumentSource, req billing.DocumentRequest) (*billing.GeneratedDocument, error) {
	if _, err := f.Render(ctx, src, req); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	doc := &billing.GeneratedDocument{Path: "/tmp/" + req.InvoiceID + ".pdf", Size: 9}
	f.generated = append(f.generated, doc)
	if f.onGen != nil {
		f.onGen()
	}
	return doc, nil
}

func (f *fakeDocs) Discard(_ context.Context, doc *billing.GeneratedDocument) error {
	f.discarded = append(f.discarded, doc)
	return nil
}

type harness struct {
	store    *memory.Store
	docs     *fakeDocs
	settings *inventory.Settings
	sales    *billing.SaleUseCase
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	st := memory.NewStore()
	docs := &fakeDocs{}
	settings := inventory.NewSettings(false)
	uc := billing.NewSaleUseCase(
		memory.NewTxRunner(st), st.Customers(), st.Invoices(), docs, settings, logger.Nop(),
	).WithClock(func() time.Time { return testNow })
	return &harness{store: st, docs: docs, settings: settings, sales: uc}
}

// assertNothingWritten verifica que no quedaron ventas ni movimientos.
func assertNothingWritten(t *testing.T, h *harness, productIDs ...string) {
	t.Helper()
	ctx := context.Background()
	invoices, err := h.store.Invoices().List(ctx, 0, 0)
	require.NoError(t, err)
	require.Empty(t, invoices, "no debe quedar ninguna factura")
	for _, id := range productIDs {
		movs, err := h.store.Movements().ListByProduct(ctx, id, 0, 0)
		require.NoError(t, err)
		require.Empty(t, movs, "no debe quedar ningún movimiento")
	}
}
