package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// CreateCustomerRequest body para POST/PUT /api/customers.
type CreateCustomerRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	TaxID     string `json:"tax_id"` // CUIT/CUIL
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
	Address   string `json:"address,omitempty"`
	VATStatus string `json:"vat_status"`
}

// CustomerResponse cliente en respuestas.
type CustomerResponse struct {
	ID            string `json:"id"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	TaxID         string `json:"tax_id"`
	Phone         string `json:"phone,omitempty"`
	Email         string `json:"email,omitempty"`
	Address       string `json:"address,omitempty"`
	VATStatus     string `json:"vat_status"`
	Status        string `json:"status"`
	ArchiveReason string `json:"archive_reason,omitempty"`
}

// SaleItemRequest línea de venta.
type SaleItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// ConfirmSaleRequest body para POST /api/sales y POST /api/cart/checkout (sin items).
// Discount acepta número o texto ("10", "10%"): lo no numérico vale 0 y se acota a [0, 100].
// LotSelections: productID → lotID, usado con selección manual; un producto sin entrada cancela la venta.
type ConfirmSaleRequest struct {
	Items         []SaleItemRequest `json:"items,omitempty"`
	Discount      DiscountInput     `json:"discount,omitempty"`
	CustomerID    string            `json:"customer_id,omitempty"`
	DocumentType  string            `json:"document_type,omitempty"` // FACTURA | REMITO
	DueDate       string            `json:"due_date,omitempty"`      // YYYY-MM-DD, solo remito
	LotPolicy     string            `json:"lot_policy,omitempty"`    // automatic | manual
	LotSelections map[string]string `json:"lot_selections,omitempty"`
}

// LotDeductionResponse descuento aplicado a un lote.
type LotDeductionResponse struct {
	ProductID  string    `json:"product_id"`
	LotID      string    `json:"lot_id"`
	Label      string    `json:"label"`
	ExpiryDate time.Time `json:"expiry_date"`
	Amount     int       `json:"amount"`
	Remaining  int       `json:"remaining"`
}

// InvoiceResponse venta con detalle.
type InvoiceResponse struct {
	ID           string                  `json:"id"`
	Number       int64                   `json:"number"`
	DocumentType string                  `json:"document_type"`
	CustomerID   string                  `json:"customer_id,omitempty"`
	IssuedAt     time.Time               `json:"issued_at"`
	GrossTotal   decimal.Decimal         `json:"gross_total"`
	NetTotal     decimal.Decimal         `json:"net_total"`
	Discount     decimal.Decimal         `json:"discount"`
	Details      []InvoiceDetailResponse `json:"details"`
}

// InvoiceDetailResponse línea de detalle en la respuesta.
type InvoiceDetailResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// SaleResponse resultado de una venta confirmada.
type SaleResponse struct {
	Invoice      InvoiceResponse        `json:"invoice"`
	Deductions   []LotDeductionResponse `json:"deductions"`
	DocumentPath string                 `json:"document_path"`
}

// CartItemRequest body para agregar o actualizar una línea del carrito.
type CartItemRequest struct {
	ProductID string `json:"product_id,omitempty"`
	Quantity  int    `json:"quantity"`
}

// CartDiscountRequest body para PUT /api/cart/discount.
type CartDiscountRequest struct {
	Discount DiscountInput `json:"discount"`
}

// DiscountInput descuento tal como lo ingresa el operador. En JSON admite número o texto;
// cualquier otro valor (bool, objeto, null) queda vacío y se interpreta como 0.
type DiscountInput string

// UnmarshalJSON normaliza el valor a texto para sales.ParseDiscount.
func (d *DiscountInput) UnmarshalJSON(raw []byte) error {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		*d = DiscountInput(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		*d = DiscountInput(n.String())
		return nil
	}
	*d = ""
	return nil
}

// CartLineResponse línea del carrito.
type CartLineResponse struct {
	ProductID    string          `json:"product_id"`
	Name         string          `json:"name"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Quantity     int             `json:"quantity"`
	StockCeiling int             `json:"stock_ceiling"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

// CartResponse estado del carrito del operador.
type CartResponse struct {
	Lines    []CartLineResponse `json:"lines"`
	Discount decimal.Decimal    `json:"discount"`
	Gross    decimal.Decimal    `json:"gross"`
	Total    decimal.Decimal    `json:"total"`
}
