package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/farmanaccio-api/internal/application/billing"
	"github.com/jhoicas/farmanaccio-api/internal/application/dto"
)

// CartHandler carrito del operador autenticado.
type CartHandler struct {
	carts *billing.CartRegistry
	saler billing.Saler
}

// NewCartHandler construye el handler.
func NewCartHandler(carts *billing.CartRegistry, saler billing.Saler) *CartHandler {
	return &CartHandler{carts: carts, saler: saler}
}

// Get godoc
// @Summary      Ver el carrito
// @Tags         cart
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.CartResponse
// @Router       /api/cart [get]
func (h *CartHandler) Get(c *fiber.Ctx) error {
	return c.JSON(h.carts.For(GetUserID(c)).Response())
}

// Add godoc
// @Summary      Agregar un producto al carrito
// @Tags         cart
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CartItemRequest  true  "product_id, quantity"
// @Success      200   {object}  dto.CartResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/cart/items [post]
func (h *CartHandler) Add(c *fiber.Ctx) error {
	var in dto.CartItemRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	cart := h.carts.For(GetUserID(c))
	if err := cart.Add(c.UserContext(), in.ProductID, in.Quantity); err != nil {
		return writeError(c, err)
	}
	return c.JSON(cart.Response())
}

// Update godoc
// @Summary      Cambiar la cantidad de una línea
// @Tags         cart
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        productId  path  string               true  "ID del producto"
// @Param        body       body  dto.CartItemRequest  true  "quantity"
// @Success      200        {object}  dto.CartResponse
// @Router       /api/cart/items/{productId} [put]
func (h *CartHandler) Update(c *fiber.Ctx) error {
	var in dto.CartItemRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	cart := h.carts.For(GetUserID(c))
	if err := cart.Update(c.UserContext(), c.Params("productId"), in.Quantity); err != nil {
		return writeError(c, err)
	}
	return c.JSON(cart.Response())
}

// Remove godoc
// @Summary      Quitar una línea del carrito
// @Tags         cart
// @Security     Bearer
// @Produce      json
// @Param        productId  path  string  true  "ID del producto"
// @Success      200        {object}  dto.CartResponse
// @Router       /api/cart/items/{productId} [delete]
func (h *CartHandler) Remove(c *fiber.Ctx) error {
	cart := h.carts.For(GetUserID(c))
	cart.Remove(c.Params("productId"))
	return c.JSON(cart.Response())
}

// Discount godoc
// @Summary      Aplicar descuento porcentual
// @Description  Texto no numérico equivale a 0; el valor se acota a [0, 100].
// @Tags         cart
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CartDiscountRequest  true  "discount"
// @Success      200   {object}  dto.CartResponse
// @Router       /api/cart/discount [put]
func (h *CartHandler) Discount(c *fiber.Ctx) error {
	var in dto.CartDiscountRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	cart := h.carts.For(GetUserID(c))
	cart.ApplyDiscount(string(in.Discount))
	return c.JSON(cart.Response())
}

// Clear godoc
// @Summary      Vaciar el carrito
// @Tags         cart
// @Security     Bearer
// @Success      204
// @Router       /api/cart [delete]
func (h *CartHandler) Clear(c *fiber.Ctx) error {
	h.carts.Drop(GetUserID(c))
	return c.SendStatus(fiber.StatusNoContent)
}

// Checkout godoc
// @Summary      Confirmar la venta con el contenido del carrito
// @Description  Los ítems y el descuento salen del carrito; del body solo se usan cliente, documento y lotes.
// @Tags         cart
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ConfirmSaleRequest  false  "customer_id, document_type, due_date, lot_policy, lot_selections"
// @Success      201   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/cart/checkout [post]
func (h *CartHandler) Checkout(c *fiber.Ctx) error {
	var in dto.ConfirmSaleRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	opts, err := parseSaleOptions(in)
	if err != nil {
		return writeError(c, err)
	}
	userID := GetUserID(c)
	res, err := h.carts.For(userID).Checkout(c.UserContext(), h.saler, billing.CheckoutOptions{
		UserID:       userID,
		CustomerID:   in.CustomerID,
		DocumentType: opts.documentType,
		DueDate:      opts.dueDate,
		Policy:       opts.policy,
		Picker:       opts.picker,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(billing.ToSaleResponse(res))
}
