package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/farmanaccio-api/internal/application/inventory"
	"github.com/jhoicas/farmanaccio-api/internal/domain/entity"
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

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type harness struct {
	store    *memory.Store
	tx       *memory.TxRunner
	restock  *inventory.RestockUseCase
	products *inventory.ProductUseCase
	lots     *inventory.LotUseCase
	overview *inventory.OverviewUseCase
}

func newHarness() *harness {
	st := memory.NewStore()
	tx := memory.NewTxRunner(st)
	log := logger.Nop()
	return &harness{
		store:    st,
		tx:       tx,
		restock:  inventory.NewRestockUseCase(tx, log).WithClock(func() time.Time { return testNow }),
		products: inventory.NewProductUseCase(tx, st.Products(), st.Lots(), st.Movements(), st.Vademecum(), log),
		lots:     inventory.NewLotUseCase(tx, log),
		overview: inventory.NewOverviewUseCase(st.Products(), st.Lots()),
	}
}

// intake ingresa mercadería sin conflictos esperados.
func (h *harness) intake(t *testing.T, name, p string, qty int, label string, expiry time.Time) *inventory.RestockResult {
	t.Helper()
	res, err := h.restock.Restock(context.Background(), inventory.RestockInput{
		Name: name, Price: price(p), Quantity: qty, LotLabel: label, ExpiryDate: expiry, UserID: "u1",
	}, nil)
	require.NoError(t, err)
	return res
}

func (h *harness) product(t *testing.T, id string) *entity.Product {
	t.Helper()
	p, err := h.store.Products().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p
}

func (h *harness) lotsOf(t *testing.T, productID string) []*entity.Lot {
	t.Helper()
	lots, err := h.store.Lots().ListByProduct(context.Background(), productID)
	require.NoError(t, err)
	return lots
}

// requireStockConsistent verifica stock = Σ disponible de los lotes.
func (h *harness) requireStockConsistent(t *testing.T, productID string) {
	t.Helper()
	sum := 0
	for _, l := range h.lotsOf(t, productID) {
		sum += l.Available
	}
	require.Equal(t, sum, h.product(t, productID).Stock)
}
