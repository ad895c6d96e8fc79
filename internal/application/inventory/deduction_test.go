package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/farmanaccio-api/internal/application/inventory"
	"github.com/jhoicas/farmanaccio-api/internal/domain"
	"github.com/jhoicas/farmanaccio-api/internal/domain/entity"
	domaininv "github.com/jhoicas/farmanaccio-api/internal/domain/inventory"
	"github.com/jhoicas/farmanaccio-api/internal/domain/repository"
)

// deduct ejecuta DeductLots + ResyncStock en una transacción del store.
func deduct(h *harness, req inventory.OutRequest) ([]domaininv.Deduction, error) {
	ctx := context.Background()
	var plan []domaininv.Deduction
	err := h.tx.Run(ctx, func(products repository.ProductRepository, lots repository.LotRepository, movs repository.StockMovementRepository) error {
		var err error
		plan, err = inventory.DeductLots(ctx, lots, movs, req)
		if err != nil {
			return err
		}
		_, err = inventory.ResyncStock(ctx, products, lots, req.ProductID)
		return err
	})
	return plan, err
}

func TestDeductLots_Automatico(t *testing.T) {
	h := newHarness()
	res := h.intake(t, "Amoxicilina 500", "1200", 5, "A", day(2025, 2, 1))
	h.intake(t, "Amoxicilina 500", "1200", 20, "B", day(2025, 9, 1))

	plan, err := deduct(h, inventory.OutRequest{ProductID: res.Product.ID, Quantity: 7, TransactionID: "inv1", Now: testNow})
	require.NoError(t, err)
	require.Len(t, plan, 2)
	assert.Equal(t, "A", plan[0].Label)
	assert.Equal(t, 5, plan[0].Amount)
	assert.Equal(t, "B", plan[1].Label)
	assert.Equal(t, 2, plan[1].Amount)
	assert.Equal(t, 18, h.product(t, res.Product.ID).Stock)

	movs, err := h.store.Movements().ListByProduct(context.Background(), res.Product.ID, 10, 0)
	require.NoError(t, err)
	outs := 0
	for _, m := range movs {
		if m.Type == entity.MovementTypeOUT {
			assert.Equal(t, "inv1", m.TransactionID)
			outs += m.Quantity
		}
	}
	assert.Equal(t, -7, outs)
}

func TestDeductLots_InsuficienteNoTocaNada(t *testing.T) {
	h := newHarness()
	res := h.intake(t, "Amoxicilina 500", "1200", 5, "A", day(2025, 2, 1))

	_, err := deduct(h, inventory.OutRequest{ProductID: res.Product.ID, Quantity: 6})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 5, h.product(t, res.Product.ID).Stock)
}

func TestDeductLots_Manual(t *testing.T) {
	h := newHarness()
	res := h.intake(t, "Amoxicilina 500", "1200", 3, "A", day(2025, 2, 1))
	b := h.intake(t, "Amoxicilina 500", "1200", 10, "B", day(2025, 9, 1))

	t.Run("lote elegido", func(t *testing.T) {
		plan, err := deduct(h, inventory.OutRequest{
			ProductID: res.Product.ID, Quantity: 4, Policy: inventory.LotPolicyManual,
			Picker: inventory.LotSelections{res.Product.ID: b.Lot.ID},
		})
		require.NoError(t, err)
		require.Len(t, plan, 1)
		assert.Equal(t, b.Lot.ID, plan[0].LotID)
		assert.Equal(t, 6, plan[0].Remaining)
	})

	t.Run("el lote elegido no alcanza", func(t *testing.T) {
		_, err := deduct(h, inventory.OutRequest{
			ProductID: res.Product.ID, Quantity: 5, Policy: inventory.LotPolicyManual,
			Picker: inventory.LotSelections{res.Product.ID: res.Lot.ID},
		})
		assert.ErrorIs(t, err, domain.ErrInsufficientLotStock)
	})

	t.Run("sin elección cancela", func(t *testing.T) {
		_, err := deduct(h, inventory.OutRequest{
			ProductID: res.Product.ID, Quantity: 1, Policy: inventory.LotPolicyManual,
			Picker: inventory.LotSelections{},
		})
		assert.ErrorIs(t, err, domain.ErrCancelled)
	})

	t.Run("el selector recibe lotes en orden FEFO", func(t *testing.T) {
		var labels []string
		picker := inventory.LotPickerFunc(func(_ context.Context, _ string, lots []*entity.Lot) (int, bool, error) {
			for _, l := range lots {
				labels = append(labels, l.Label)
			}
			return 0, true, nil
		})
		_, err := deduct(h, inventory.OutRequest{ProductID: res.Product.ID, Quantity: 1, Policy: inventory.LotPolicyManual, Picker: picker})
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "B"}, labels)
	})

	t.Run("sin selector", func(t *testing.T) {
		_, err := deduct(h, inventory.OutRequest{ProductID: res.Product.ID, Quantity: 1, Policy: inventory.LotPolicyManual})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	h.requireStockConsistent(t, res.Product.ID)
}

func TestParseLotPolicyYSettings(t *testing.T) {
	p, err := inventory.ParseLotPolicy("manual")
	require.NoError(t, err)
	assert.Equal(t, inventory.LotPolicyManual, p)
	_, err = inventory.ParseLotPolicy("aleatorio")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	s := inventory.NewSettings(false)
	assert.Equal(t, inventory.LotPolicyAutomatic, s.Policy())
	s.SetManualLotSelection(true)
	assert.True(t, s.ManualLotSelection())
	assert.Equal(t, inventory.LotPolicyManual, s.Policy())
}
