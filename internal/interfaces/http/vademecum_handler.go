package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/farmanaccio-api/internal/application/inventory"
)

// VademecumHandler consultas de referencia del vademécum (solo lectura).
type VademecumHandler struct {
	uc *inventory.VademecumUseCase
}

// NewVademecumHandler construye el handler.
func NewVademecumHandler(uc *inventory.VademecumUseCase) *VademecumHandler {
	return &VademecumHandler{uc: uc}
}

// Lookup godoc
// @Summary      Ficha por nombre comercial exacto (sin distinguir mayúsculas)
// @Tags         vademecum
// @Security     Bearer
// @Produce      json
// @Param        name  query  string  true  "Nombre comercial"
// @Success      200   {object}  dto.VademecumResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/vademecum/lookup [get]
func (h *VademecumHandler) Lookup(c *fiber.Ctx) error {
	out, err := h.uc.Lookup(c.UserContext(), c.Query("name"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Search godoc
// @Summary      Buscar en el vademécum
// @Tags         vademecum
// @Security     Bearer
// @Produce      json
// @Param        q      query  string  true   "Texto (mínimo 2 caracteres)"
// @Param        limit  query  int     false  "Límite"  default(50)
// @Success      200    {array}   dto.VademecumResponse
// @Router       /api/vademecum [get]
func (h *VademecumHandler) Search(c *fiber.Ctx) error {
	out, err := h.uc.Search(c.UserContext(), c.Query("q"), c.QueryInt("limit", 0))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
