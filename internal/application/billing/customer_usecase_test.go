package billing_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/farmanaccio-api/internal/application/billing"
	"github.com/jhoicas/farmanaccio-api/internal/application/dto"
	"github.com/jhoicas/farmanaccio-api/internal/domain"
	"github.com/jhoicas/farmanaccio-api/internal/domain/entity"
	"github.com/jhoicas/farmanaccio-api/internal/infrastructure/memory"
)

func customerReq(taxID, vat string) dto.CreateCustomerRequest {
	return dto.CreateCustomerRequest{
		FirstName: "María",
		LastName:  "Gómez",
		TaxID:     taxID,
		Address:   "Av. Siempreviva 742",
		VATStatus: vat,
	}
}

func TestCustomerUseCase_CreateYCUITUnico(t *testing.T) {
	uc := billing.NewCustomerUseCase(memory.NewStore().Customers())
	ctx := context.Background()

	c, err := uc.Create(ctx, customerReq("27-11111111-4", entity.VATMonotributo))
	require.NoError(t, err)
	assert.Equal(t, entity.StatusActive, c.Status)
	assert.Equal(t, entity.VATMonotributo, c.VATStatus)

	_, err = uc.Create(ctx, customerReq("27-11111111-4", entity.VATExempt))
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestCustomerUseCase_Validaciones(t *testing.T) {
	uc := billing.NewCustomerUseCase(memory.NewStore().Customers())
	ctx := context.Background()

	_, err := uc.Create(ctx, dto.CreateCustomerRequest{FirstName: "", TaxID: "20-1"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(ctx, customerReq("ABC", entity.VATExempt))
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "el CUIT solo admite dígitos y guiones")

	_, err = uc.Create(ctx, customerReq("20-22222222-2", "otro"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Sin condición de IVA se asume consumidor final.
	c, err := uc.Create(ctx, customerReq("20-22222222-2", ""))
	require.NoError(t, err)
	assert.Equal(t, entity.VATFinalConsumer, c.VATStatus)
}

func TestCustomerUseCase_ArchivarYRestaurar(t *testing.T) {
	uc := billing.NewCustomerUseCase(memory.NewStore().Customers())
	ctx := context.Background()
	c, err := uc.Create(ctx, customerReq("20-33333333-3", entity.VATOccasional))
	require.NoError(t, err)

	assert.ErrorIs(t, uc.Archive(ctx, c.ID, "  "), domain.ErrInvalidInput, "el motivo es obligatorio")
	require.NoError(t, uc.Archive(ctx, c.ID, "se mudó"))
	assert.ErrorIs(t, uc.Archive(ctx, c.ID, "otra vez"), domain.ErrConflict)

	active, err := uc.List(ctx, "", 0, 0)
	require.NoError(t, err)
	assert.Empty(t, active)
	archived, err := uc.List(ctx, entity.StatusArchived, 0, 0)
	require.NoError(t, err)
	require.Len(t, archived, 1)
	assert.Equal(t, "se mudó", archived[0].ArchiveReason)

	require.NoError(t, uc.Restore(ctx, c.ID))
	got, err := uc.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusActive, got.Status)
	assert.Equal(t, "se mudó", got.ArchiveReason, "el último motivo queda como auditoría")
}

func TestCustomerUseCase_UpdateRespetaCUITUnico(t *testing.T) {
	uc := billing.NewCustomerUseCase(memory.NewStore().Customers())
	ctx := context.Background()
	a, err := uc.Create(ctx, customerReq("20-44444444-4", entity.VATExempt))
	require.NoError(t, err)
	_, err = uc.Create(ctx, customerReq("20-55555555-5", entity.VATExempt))
	require.NoError(t, err)

	_, err = uc.Update(ctx, a.ID, customerReq("20-55555555-5", entity.VATExempt))
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	req := customerReq("20-44444444-4", entity.VATRegistered)
	req.Phone = "341-555-0000"
	got, err := uc.Update(ctx, a.ID, req)
	require.NoError(t, err)
	assert.Equal(t, entity.VATRegistered, got.VATStatus)
	assert.Equal(t, "341-555-0000", got.Phone)

	_, err = uc.Update(ctx, "nope", req)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConfirmSale_ClienteArchivadoRechazado(t *testing.T) {
	h := newHarness(t)
	p := seedProduct(t, h.store, "Ibuprofeno", "5.00", lotSeed{"L", day(2025, 3, 1), 10})
	uc := billing.NewCustomerUseCase(h.store.Customers())
	c, err := uc.Create(context.Background(), customerReq("20-66666666-6", entity.VATExempt))
	require.NoError(t, err)
	require.NoError(t, uc.Archive(context.Background(), c.ID, "baja"))

	_, err = h.sales.ConfirmSale(context.Background(), billing.ConfirmSaleInput{
		Lines:      []billing.SaleLine{{ProductID: p.ID, Quantity: 1}},
		CustomerID: c.ID,
	})
	assert.ErrorIs(t, err, domain.ErrArchived)
}
