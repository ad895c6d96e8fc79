package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/farmanaccio-api/internal/application/dto"
	"github.com/jhoicas/farmanaccio-api/internal/application/inventory"
)

// InventoryHandler reabastecimiento, corrección de lotes y resumen de inventario (protegido).
type InventoryHandler struct {
	restock  *inventory.RestockUseCase
	lots     *inventory.LotUseCase
	overview *inventory.OverviewUseCase
	settings *inventory.Settings
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(
	restock *inventory.RestockUseCase,
	lots *inventory.LotUseCase,
	overview *inventory.OverviewUseCase,
	settings *inventory.Settings,
) *InventoryHandler {
	return &InventoryHandler{restock: restock, lots: lots, overview: overview, settings: settings}
}

// Restock godoc
// @Summary      Ingreso de mercadería
// @Description  Crea o suma al lote del día. Si hay un conflicto sin decisión responde 409 DECISION_REQUIRED;
// @Description  el cliente reintenta con on_price_conflict, on_archived u on_expiry_conflict.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RestockRequest  true  "Producto, lote y decisiones"
// @Success      200   {object}  dto.RestockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.DecisionRequiredResponse
// @Router       /api/inventory/restock [post]
func (h *InventoryHandler) Restock(c *fiber.Ctx) error {
	var in dto.RestockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	expiry, err := parseDate("expiry_date", in.ExpiryDate)
	if err != nil {
		return writeError(c, err)
	}
	decisions := inventory.Decisions{
		Price:    inventory.PriceDecision(in.OnPriceConflict),
		Archived: inventory.ArchivedDecision(in.OnArchived),
		Expiry:   inventory.ExpiryDecision(in.OnExpiryConflict),
	}
	res, err := h.restock.Restock(c.UserContext(), inventory.RestockInput{
		Name:       in.Name,
		Price:      in.Price,
		Quantity:   in.Quantity,
		LotLabel:   in.LotLabel,
		ExpiryDate: expiry,
		UserID:     GetUserID(c),
	}, decisions)
	if err != nil {
		return writeError(c, err)
	}
	status := fiber.StatusOK
	if res.Created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(inventory.ToRestockResponse(res))
}

// UpdateLot godoc
// @Summary      Corrección manual de un lote
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                true  "ID del lote"
// @Param        body  body  dto.UpdateLotRequest  true  "Recibido, disponible y vencimiento"
// @Success      200   {object}  dto.LotResponse
// @Router       /api/lots/{id} [put]
func (h *InventoryHandler) UpdateLot(c *fiber.Ctx) error {
	var in dto.UpdateLotRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	expiry, err := parseDate("expiry_date", in.ExpiryDate)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.lots.UpdateLot(c.UserContext(), c.Params("id"), inventory.LotCorrection{
		Received:   in.Received,
		Available:  in.Available,
		ExpiryDate: expiry,
		Notes:      in.Notes,
		UserID:     GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Overview godoc
// @Summary      Resumen de inventario por producto con estado de vencimiento
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.InventoryOverviewItem
// @Router       /api/inventory/overview [get]
func (h *InventoryHandler) Overview(c *fiber.Ctx) error {
	out, err := h.overview.Overview(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetSettings godoc
// @Summary      Política de selección de lotes vigente
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.LotSelectionSettings
// @Router       /api/settings/lot-selection [get]
func (h *InventoryHandler) GetSettings(c *fiber.Ctx) error {
	return c.JSON(dto.LotSelectionSettings{ManualLotSelection: h.settings.ManualLotSelection()})
}

// PutSettings godoc
// @Summary      Cambiar la política de selección de lotes (admin)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LotSelectionSettings  true  "manual_lot_selection"
// @Success      200   {object}  dto.LotSelectionSettings
// @Router       /api/settings/lot-selection [put]
func (h *InventoryHandler) PutSettings(c *fiber.Ctx) error {
	var in dto.LotSelectionSettings
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	h.settings.SetManualLotSelection(in.ManualLotSelection)
	return c.JSON(dto.LotSelectionSettings{ManualLotSelection: h.settings.ManualLotSelection()})
}
