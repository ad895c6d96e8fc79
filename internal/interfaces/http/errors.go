package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/farmanaccio-api/internal/application/billing"
	"github.com/jhoicas/farmanaccio-api/internal/application/dto"
	"github.com/jhoicas/farmanaccio-api/internal/application/inventory"
	"github.com/jhoicas/farmanaccio-api/internal/domain"
)

// saleErrorResponse cuerpo de error de una venta abortada.
type saleErrorResponse struct {
	Code      string                          `json:"code"`
	Message   string                          `json:"message"`
	Stage     billing.SaleStage               `json:"stage"`
	Shortfall *billing.InsufficientStockError `json:"shortfall,omitempty"`
}

// writeError traduce errores de dominio a status HTTP + dto.ErrorResponse.
func writeError(c *fiber.Ctx, err error) error {
	var dre *inventory.DecisionRequiredError
	if errors.As(err, &dre) {
		return c.Status(fiber.StatusConflict).JSON(dto.DecisionRequiredResponse{
			Code:     "DECISION_REQUIRED",
			Message:  dre.Error(),
			Kind:     string(dre.Kind),
			Conflict: dre.Conflict,
		})
	}

	status, code := classify(err)
	var se *billing.SaleError
	if errors.As(err, &se) {
		body := saleErrorResponse{Code: code, Message: err.Error(), Stage: se.Stage}
		var ise *billing.InsufficientStockError
		if errors.As(err, &ise) {
			body.Shortfall = ise
		}
		return c.Status(status).JSON(body)
	}
	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		msg = "error interno"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrEmptyCart):
		return fiber.StatusBadRequest, "EMPTY_CART"
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUserNotFound):
		return fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrDuplicate), errors.Is(err, domain.ErrUsernameTaken):
		return fiber.StatusConflict, "DUPLICATE"
	case errors.Is(err, domain.ErrInsufficientLotStock):
		return fiber.StatusConflict, "INSUFFICIENT_LOT_STOCK"
	case errors.Is(err, domain.ErrInsufficientStock):
		return fiber.StatusConflict, "INSUFFICIENT_STOCK"
	case errors.Is(err, domain.ErrArchived):
		return fiber.StatusConflict, "ARCHIVED"
	case errors.Is(err, inventory.ErrRestockAborted):
		return fiber.StatusConflict, "ABORTED"
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, "CONFLICT"
	case errors.Is(err, domain.ErrCancelled):
		return fiber.StatusConflict, "CANCELLED"
	}
	return fiber.StatusInternalServerError, "INTERNAL"
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
