package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/farmanaccio-api/internal/application/billing"
	"github.com/jhoicas/farmanaccio-api/internal/application/dto"
	"github.com/jhoicas/farmanaccio-api/internal/application/inventory"
	"github.com/jhoicas/farmanaccio-api/internal/domain/sales"
)

// InvoiceHandler ventas, consulta de facturas y descarga de PDF (protegido).
type InvoiceHandler struct {
	sales *billing.SaleUseCase
	pdf   *billing.PDFUseCase
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(sales *billing.SaleUseCase, pdf *billing.PDFUseCase) *InvoiceHandler {
	return &InvoiceHandler{sales: sales, pdf: pdf}
}

// saleOptions datos comunes a una venta directa y al checkout del carrito.
type saleOptions struct {
	documentType string
	dueDate      *time.Time
	policy       inventory.LotPolicy
	picker       inventory.LotPicker
}

func parseSaleOptions(in dto.ConfirmSaleRequest) (saleOptions, error) {
	policy, err := inventory.ParseLotPolicy(in.LotPolicy)
	if err != nil {
		return saleOptions{}, err
	}
	due, err := parseDate("due_date", in.DueDate)
	if err != nil {
		return saleOptions{}, err
	}
	opts := saleOptions{
		documentType: in.DocumentType,
		policy:       policy,
		// Sin elección para un producto la venta se cancela.
		picker: inventory.LotSelections(in.LotSelections),
	}
	if !due.IsZero() {
		opts.dueDate = &due
	}
	return opts, nil
}

// ConfirmSale godoc
// @Summary      Confirmar una venta
// @Description  Descuenta lotes (FEFO o manual), registra la factura y genera el PDF en una sola transacción.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ConfirmSaleRequest  true  "Ítems, descuento, cliente y política de lotes"
// @Success      201   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *InvoiceHandler) ConfirmSale(c *fiber.Ctx) error {
	var in dto.ConfirmSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	opts, err := parseSaleOptions(in)
	if err != nil {
		return writeError(c, err)
	}
	input := billing.ConfirmSaleInput{
		UserID:       GetUserID(c),
		Discount:     sales.ParseDiscount(string(in.Discount)),
		CustomerID:   in.CustomerID,
		DocumentType: opts.documentType,
		DueDate:      opts.dueDate,
		Policy:       opts.policy,
		Picker:       opts.picker,
	}
	for _, it := range in.Items {
		input.Lines = append(input.Lines, billing.SaleLine{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	res, err := h.sales.ConfirmSale(c.UserContext(), input)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(billing.ToSaleResponse(res))
}

// List godoc
// @Summary      Listar facturas (más recientes primero)
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(50)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200     {array}   dto.InvoiceResponse
// @Router       /api/invoices [get]
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	page := pageFromQuery(c)
	out, err := h.sales.ListInvoices(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Detalle de una factura
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la factura"
// @Success      200  {object}  dto.InvoiceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id} [get]
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.sales.GetInvoice(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// DownloadPDF godoc
// @Summary      Descargar el PDF de la venta (factura o remito)
// @Tags         sales
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la factura"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/pdf [get]
func (h *InvoiceHandler) DownloadPDF(c *fiber.Ctx) error {
	doc, err := h.pdf.Download(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", doc.FileName))
	return c.Send(doc.Content)
}
