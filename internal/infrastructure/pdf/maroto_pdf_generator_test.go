package pdf

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appbilling "github.com/jhoicas/farmanaccio-api/internal/application/billing"
	"github.com/jhoicas/farmanaccio-api/internal/domain"
	"github.com/jhoicas/farmanaccio-api/internal/domain/entity"
	"github.com/jhoicas/farmanaccio-api/internal/domain/repository"
	"github.com/jhoicas/farmanaccio-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var issued = time.Date(2024, 11, 20, 10, 30, 0, 0, time.UTC)

// seedSale carga una venta con una línea directamente en el store.
func seedSale(t *testing.T, st *memory.Store, docType string) *entity.Invoice {
	t.Helper()
	ctx := context.Background()
	p := &entity.Product{ID: "p1", Name: "Amoxicilina 500", Price: decimal.RequireFromString("1250.50"), Status: entity.StatusActive}
	require.NoError(t, st.Products().Create(ctx, p))

	inv := &entity.Invoice{
		ID:           "inv1",
		DocumentType: docType,
		IssuedAt:     issued,
		GrossTotal:   decimal.RequireFromString("2501.00"),
		NetTotal:     decimal.RequireFromString("2250.90"),
		Discount:     decimal.NewFromInt(10),
	}
	if docType == entity.DocumentTypeDeliveryNote {
		inv.CustomerID = "c1"
	}
	require.NoError(t, st.Invoices().Create(ctx, inv))
	require.NoError(t, st.Invoices().CreateDetail(ctx, &entity.InvoiceDetail{
		ID: "d1", InvoiceID: inv.ID, ProductID: p.ID, Quantity: 2,
		UnitPrice: p.Price, Subtotal: decimal.RequireFromString("2501.00"),
	}))
	if docType == entity.DocumentTypeDeliveryNote {
		require.NoError(t, st.DeliveryNotes().Create(ctx, &entity.DeliveryNote{
			ID: "n1", InvoiceID: inv.ID, CustomerID: "c1", TaxID: "20-12345678-3",
			VATStatus: entity.VATRegistered, StartDate: issued,
			Lines: []entity.DeliveryNoteLine{{ID: "nl1", DeliveryNoteID: "n1", ProductID: p.ID, Quantity: 2}},
		}))
	}
	return inv
}

func source(st *memory.Store) appbilling.DocumentSource {
	return appbilling.DocumentSource{
		Invoices:      st.Invoices(),
		DeliveryNotes: st.DeliveryNotes(),
		Products:      st.Products(),
	}
}

// failingProducts falla al leer productos.
type failingProducts struct {
	repository.ProductRepository
	err error
}

func (f failingProducts) GetByID(context.Context, string) (*entity.Product, error) {
	return nil, f.err
}

var buyer = &entity.Customer{
	ID: "c1", FirstName: "María", LastName: "Gómez", TaxID: "20-12345678-3",
	Address: "Av. Siempreviva 742", VATStatus: entity.VATRegistered,
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestRender_Factura(t *testing.T) {
	st := memory.NewStore()
	inv := seedSale(t, st, entity.DocumentTypeInvoice)
	g := NewMarotoDocumentGenerator(NewDirectoryLocator(t.TempDir()), "Farmacia Central")

	doc, err := g.Render(context.Background(), source(st), appbilling.DocumentRequest{InvoiceID: inv.ID})
	require.NoError(t, err)
	assert.Equal(t, "factura_000001.pdf", doc.FileName)
	assert.True(t, bytes.HasPrefix(doc.Content, []byte("%PDF")), "debe ser un PDF")
}

func TestRender_RemitoRequiereCliente(t *testing.T) {
	st := memory.NewStore()
	inv := seedSale(t, st, entity.DocumentTypeDeliveryNote)
	g := NewMarotoDocumentGenerator(NewDirectoryLocator(t.TempDir()), "Farmacia Central")

	_, err := g.Render(context.Background(), source(st), appbilling.DocumentRequest{InvoiceID: inv.ID})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	doc, err := g.Render(context.Background(), source(st), appbilling.DocumentRequest{InvoiceID: inv.ID, Buyer: buyer})
	require.NoError(t, err)
	assert.Equal(t, "remito_000001.pdf", doc.FileName)
	assert.True(t, bytes.HasPrefix(doc.Content, []byte("%PDF")))
}

func TestRender_FacturaInexistente(t *testing.T) {
	g := NewMarotoDocumentGenerator(NewDirectoryLocator(t.TempDir()), "Farmacia Central")
	_, err := g.Render(context.Background(), source(memory.NewStore()), appbilling.DocumentRequest{InvoiceID: "nope"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRender_ErrorAlLeerProductoAbortaElDocumento(t *testing.T) {
	st := memory.NewStore()
	inv := seedSale(t, st, entity.DocumentTypeInvoice)
	g := NewMarotoDocumentGenerator(NewDirectoryLocator(t.TempDir()), "Farmacia Central")

	boom := errors.New("conexión perdida")
	src := source(st)
	src.Products = failingProducts{ProductRepository: st.Products(), err: boom}
	_, err := g.Render(context.Background(), src, appbilling.DocumentRequest{InvoiceID: inv.ID})
	assert.ErrorIs(t, err, boom)

	// Un detalle que apunta a un producto inexistente tampoco se imprime con un nombre inventado.
	require.NoError(t, st.Invoices().CreateDetail(context.Background(), &entity.InvoiceDetail{
		ID: "d2", InvoiceID: inv.ID, ProductID: "fantasma", Quantity: 1,
		UnitPrice: decimal.NewFromInt(1), Subtotal: decimal.NewFromInt(1),
	}))
	_, err = g.Render(context.Background(), source(st), appbilling.DocumentRequest{InvoiceID: inv.ID})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGenerate_GuardaYDescarta(t *testing.T) {
	st := memory.NewStore()
	inv := seedSale(t, st, entity.DocumentTypeInvoice)
	dir := t.TempDir()
	g := NewMarotoDocumentGenerator(NewDirectoryLocator(dir), "Farmacia Central")

	doc, err := g.Generate(context.Background(), source(st), appbilling.DocumentRequest{InvoiceID: inv.ID})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "factura_000001.pdf"), doc.Path)
	info, err := os.Stat(doc.Path)
	require.NoError(t, err)
	assert.Equal(t, int64(doc.Size), info.Size())

	// Un segundo documento con el mismo nombre no pisa al primero.
	again, err := g.Generate(context.Background(), source(st), appbilling.DocumentRequest{InvoiceID: inv.ID})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "factura_000001-1.pdf"), again.Path)

	require.NoError(t, g.Discard(context.Background(), doc))
	_, err = os.Stat(doc.Path)
	assert.True(t, os.IsNotExist(err))
	require.NoError(t, g.Discard(context.Background(), doc), "descartar dos veces no falla")
}

func TestGenerate_OperadorCancelaGuardado(t *testing.T) {
	st := memory.NewStore()
	inv := seedSale(t, st, entity.DocumentTypeInvoice)
	dir := t.TempDir()
	cancelled := SaveLocatorFunc(func(context.Context, string) (string, bool, error) {
		return "", false, nil
	})
	g := NewMarotoDocumentGenerator(cancelled, "Farmacia Central")

	_, err := g.Generate(context.Background(), source(st), appbilling.DocumentRequest{InvoiceID: inv.ID})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCancelled)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no debe quedar ningún archivo")
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "0,00"},
		{"5.5", "5,50"},
		{"999.999", "1.000,00"},
		{"25000", "25.000,00"},
		{"1234567.891", "1.234.567,89"},
		{"-1500", "-1.500,00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatMoney(decimal.RequireFromString(tt.in)), tt.in)
	}
}

func TestVatLabel(t *testing.T) {
	assert.Equal(t, "Resp. Inscripto", vatLabel(entity.VATRegistered))
	assert.Equal(t, "desconocido", vatLabel("desconocido"))
}
