package inventory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/farmanaccio-api/internal/application/inventory"
	"github.com/jhoicas/farmanaccio-api/internal/domain"
	"github.com/jhoicas/farmanaccio-api/internal/domain/entity"
)

func TestRestock_ProductoNuevo(t *testing.T) {
	h := newHarness()
	res := h.intake(t, "Ibuprofeno  400", "850.00", 12, "L-01", day(2025, 8, 1))

	assert.True(t, res.Created)
	assert.Equal(t, "Ibuprofeno 400", res.Product.Name, "colapsa espacios")
	assert.Equal(t, 12, res.Product.Stock)
	assert.Equal(t, day(2024, 11, 20), res.Lot.IntakeDate)
	assert.Equal(t, 12, res.Lot.Received)
	assert.Equal(t, 12, res.Lot.Available)

	movs, err := h.store.Movements().ListByProduct(context.Background(), res.Product.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementTypeIN, movs[0].Type)
	assert.Equal(t, 12, movs[0].Quantity)
}

func TestRestock_MismoLoteDelDiaSuma(t *testing.T) {
	h := newHarness()
	first := h.intake(t, "Ibuprofeno 400", "850", 12, "L-01", day(2025, 8, 1))
	second := h.intake(t, "IBUPROFENO 400", "850", 8, "L-01", day(2025, 8, 1))

	assert.False(t, second.Created)
	assert.Equal(t, first.Product.ID, second.Product.ID)
	assert.Equal(t, first.Lot.ID, second.Lot.ID)
	assert.Equal(t, 20, second.Lot.Received)
	assert.Equal(t, 20, second.Product.Stock)
	h.requireStockConsistent(t, first.Product.ID)
}

func TestRestock_OtroLoteCreaLoteNuevo(t *testing.T) {
	h := newHarness()
	first := h.intake(t, "Ibuprofeno 400", "850", 12, "L-01", day(2025, 8, 1))
	h.intake(t, "Ibuprofeno 400", "850", 5, "L-02", day(2025, 2, 1))

	assert.Len(t, h.lotsOf(t, first.Product.ID), 2)
	assert.Equal(t, 17, h.product(t, first.Product.ID).Stock)
}

func TestRestock_ConflictoDePrecio(t *testing.T) {
	tests := []struct {
		name      string
		decision  inventory.PriceDecision
		wantPrice string
		wantStock int
		wantErr   error
	}{
		{"sin decisión", "", "850", 12, inventory.ErrDecisionRequired},
		{"adoptar", inventory.PriceAdopt, "900", 15, nil},
		{"conservar", inventory.PriceKeep, "850", 15, nil},
		{"abortar", inventory.PriceAbort, "850", 12, inventory.ErrRestockAborted},
		{"decisión desconocida", "tal vez", "850", 12, domain.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			base := h.intake(t, "Ibuprofeno 400", "850", 12, "L-01", day(2025, 8, 1))

			_, err := h.restock.Restock(context.Background(), inventory.RestockInput{
				Name: "ibuprofeno 400", Price: price("900"), Quantity: 3, LotLabel: "L-01", ExpiryDate: day(2025, 8, 1),
			}, inventory.Decisions{Price: tt.decision})
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}

			p := h.product(t, base.Product.ID)
			assert.True(t, price(tt.wantPrice).Equal(p.Price), "precio %s", p.Price)
			assert.Equal(t, tt.wantStock, p.Stock)
			h.requireStockConsistent(t, p.ID)
		})
	}
}

func TestRestock_DecisionRequeridaDescribeElConflicto(t *testing.T) {
	h := newHarness()
	base := h.intake(t, "Ibuprofeno 400", "850", 12, "L-01", day(2025, 8, 1))

	_, err := h.restock.Restock(context.Background(), inventory.RestockInput{
		Name: "Ibuprofeno 400", Price: price("900"), Quantity: 3, LotLabel: "L-01", ExpiryDate: day(2025, 8, 1),
	}, nil)

	var dre *inventory.DecisionRequiredError
	require.True(t, errors.As(err, &dre))
	assert.Equal(t, inventory.ConflictPrice, dre.Kind)
	c, ok := dre.Conflict.(inventory.PriceConflict)
	require.True(t, ok)
	assert.Equal(t, base.Product.ID, c.ProductID)
	assert.True(t, price("850").Equal(c.StoredPrice))
	assert.True(t, price("900").Equal(c.IncomingPrice))
}

func TestRestock_ProductoArchivado(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*harness, string) {
		h := newHarness()
		base := h.intake(t, "Diclofenac 75", "500", 10, "D-01", day(2025, 8, 1))
		_, err := h.products.Archive(ctx, base.Product.ID, "retirado por ANMAT", "u1")
		require.NoError(t, err)
		return h, base.Product.ID
	}
	in := inventory.RestockInput{Name: "diclofenac 75", Price: price("550"), Quantity: 4, LotLabel: "D-02", ExpiryDate: day(2026, 1, 1)}

	t.Run("reactivar adopta el precio entrante", func(t *testing.T) {
		h, id := setup(t)
		res, err := h.restock.Restock(ctx, in, inventory.Decisions{Archived: inventory.ArchivedReactivate})
		require.NoError(t, err)
		assert.True(t, res.Reactivated)
		assert.True(t, res.PriceUpdated)
		assert.Equal(t, id, res.Product.ID)
		assert.True(t, res.Product.IsActive())
		assert.True(t, price("550").Equal(res.Product.Price))
		assert.Equal(t, 4, res.Product.Stock, "los lotes archivados siguen en 0")
		assert.Equal(t, "retirado por ANMAT", res.Product.ArchiveReason)
		h.requireStockConsistent(t, id)
	})

	t.Run("crear nuevo deja el archivado intacto", func(t *testing.T) {
		h, id := setup(t)
		res, err := h.restock.Restock(ctx, in, inventory.Decisions{Archived: inventory.ArchivedCreateNew})
		require.NoError(t, err)
		assert.True(t, res.Created)
		assert.NotEqual(t, id, res.Product.ID)
		assert.Equal(t, entity.StatusArchived, h.product(t, id).Status)
	})

	t.Run("abortar no escribe nada", func(t *testing.T) {
		h, id := setup(t)
		_, err := h.restock.Restock(ctx, in, inventory.Decisions{Archived: inventory.ArchivedAbort})
		require.ErrorIs(t, err, inventory.ErrRestockAborted)
		assert.Equal(t, entity.StatusArchived, h.product(t, id).Status)
		assert.Len(t, h.lotsOf(t, id), 1)
	})

	t.Run("sin decisión", func(t *testing.T) {
		h, _ := setup(t)
		_, err := h.restock.Restock(ctx, in, nil)
		var dre *inventory.DecisionRequiredError
		require.True(t, errors.As(err, &dre))
		assert.Equal(t, inventory.ConflictArchived, dre.Kind)
	})
}

func TestRestock_ConflictoDeVencimiento(t *testing.T) {
	ctx := context.Background()
	in := inventory.RestockInput{Name: "Ibuprofeno 400", Price: price("850"), Quantity: 3, LotLabel: "L-01", ExpiryDate: day(2026, 1, 1)}

	t.Run("actualizar reescribe el vencimiento", func(t *testing.T) {
		h := newHarness()
		base := h.intake(t, "Ibuprofeno 400", "850", 12, "L-01", day(2025, 8, 1))
		res, err := h.restock.Restock(ctx, in, inventory.Decisions{Expiry: inventory.ExpiryUpdate})
		require.NoError(t, err)
		assert.Equal(t, base.Lot.ID, res.Lot.ID)
		assert.Equal(t, day(2026, 1, 1), res.Lot.ExpiryDate)
		assert.Equal(t, 15, res.Lot.Available)
	})

	t.Run("continuar conserva el vencimiento guardado", func(t *testing.T) {
		h := newHarness()
		h.intake(t, "Ibuprofeno 400", "850", 12, "L-01", day(2025, 8, 1))
		res, err := h.restock.Restock(ctx, in, inventory.Decisions{Expiry: inventory.ExpiryContinue})
		require.NoError(t, err)
		assert.Equal(t, day(2025, 8, 1), res.Lot.ExpiryDate)
		assert.Equal(t, 15, res.Lot.Available)
	})

	t.Run("abortar", func(t *testing.T) {
		h := newHarness()
		base := h.intake(t, "Ibuprofeno 400", "850", 12, "L-01", day(2025, 8, 1))
		_, err := h.restock.Restock(ctx, in, inventory.Decisions{Expiry: inventory.ExpiryAbort})
		require.ErrorIs(t, err, inventory.ErrRestockAborted)
		assert.Equal(t, 12, h.product(t, base.Product.ID).Stock)
	})
}

func TestRestock_PrecioYVencimientoSeResuelvenJuntos(t *testing.T) {
	h := newHarness()
	base := h.intake(t, "Ibuprofeno 400", "850", 12, "L-01", day(2025, 8, 1))

	res, err := h.restock.Restock(context.Background(), inventory.RestockInput{
		Name: "Ibuprofeno 400", Price: price("900"), Quantity: 3, LotLabel: "L-01", ExpiryDate: day(2026, 1, 1),
	}, inventory.Decisions{Price: inventory.PriceAdopt, Expiry: inventory.ExpiryAbort})
	require.ErrorIs(t, err, inventory.ErrRestockAborted)
	assert.Nil(t, res)

	p := h.product(t, base.Product.ID)
	assert.True(t, price("850").Equal(p.Price), "el aborto revierte el precio")
	assert.Equal(t, 12, p.Stock)
}

func TestRestock_Validaciones(t *testing.T) {
	valid := inventory.RestockInput{Name: "Ibuprofeno 400", Price: price("850"), Quantity: 1, LotLabel: "L-01", ExpiryDate: day(2025, 8, 1)}
	tests := []struct {
		name   string
		mutate func(in *inventory.RestockInput)
	}{
		{"nombre vacío", func(in *inventory.RestockInput) { in.Name = "   " }},
		{"nombre con símbolos", func(in *inventory.RestockInput) { in.Name = "Ibuprofeno-400" }},
		{"precio cero", func(in *inventory.RestockInput) { in.Price = price("0") }},
		{"precio negativo", func(in *inventory.RestockInput) { in.Price = price("-1") }},
		{"precio con tres decimales", func(in *inventory.RestockInput) { in.Price = price("10.005") }},
		{"cantidad cero", func(in *inventory.RestockInput) { in.Quantity = 0 }},
		{"sin lote", func(in *inventory.RestockInput) { in.LotLabel = " " }},
		{"sin vencimiento", func(in *inventory.RestockInput) { in.ExpiryDate = time.Time{} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			in := valid
			tt.mutate(&in)
			_, err := h.restock.Restock(context.Background(), in, nil)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}
