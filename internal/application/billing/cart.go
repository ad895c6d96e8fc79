package billing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/farmanaccio-api/internal/application/dto"
	"github.com/jhoicas/farmanaccio-api/internal/application/inventory"
	"github.com/jhoicas/farmanaccio-api/internal/domain"
	"github.com/jhoicas/farmanaccio-api/internal/domain/entity"
	"github.com/jhoicas/farmanaccio-api/internal/domain/sales"
	"github.com/shopspring/decimal"
)

// ProductReader lectura de productos usada por el carrito (fuera de transacción).
type ProductReader interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
}

// CartLine línea del carrito. StockCeiling es el stock leído en el último alta/modificación.
type CartLine struct {
	ProductID    string
	Name         string
	UnitPrice    decimal.Decimal
	Quantity     int
	StockCeiling int
}

// CheckoutOptions datos de la venta que no viven en el carrito.
type CheckoutOptions struct {
	UserID       string
	CustomerID   string
	DocumentType string
	DueDate      *time.Time
	Policy       inventory.LotPolicy
	Picker       inventory.LotPicker
}

// Saler confirma ventas; lo implementa SaleUseCase.
type Saler interface {
	ConfirmSale(ctx context.Context, in ConfirmSaleInput) (*SaleResult, error)
}

// Cart carrito de un operador. Los precios mostrados son informativos: la venta usa los
// precios leídos en STOCK_CHECK.
type Cart struct {
	mu       sync.Mutex
	products ProductReader
	lines    []CartLine
	discount decimal.Decimal
}

// NewCart crea un carrito vacío.
func NewCart(products ProductReader) *Cart {
	return &Cart{products: products, discount: decimal.Zero}
}

// Add agrega qty unidades; si el producto ya está se suman. La cantidad resultante no puede
// superar el stock actual.
func (c *Cart) Add(ctx context.Context, productID string, qty int) error {
	if qty < 1 {
		return fmt.Errorf("%w: la cantidad debe ser al menos 1", domain.ErrInvalidInput)
	}
	p, err := c.loadProduct(ctx, productID)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(productID)
	total := qty
	if i >= 0 {
		total += c.lines[i].Quantity
	}
	if total > p.Stock {
		return &InsufficientStockError{ProductID: p.ID, Name: p.Name, Requested: total, Available: p.Stock}
	}
	if i < 0 {
		c.lines = append(c.lines, CartLine{ProductID: p.ID})
		i = len(c.lines) - 1
	}
	c.lines[i].Name = p.Name
	c.lines[i].UnitPrice = p.Price
	c.lines[i].Quantity = total
	c.lines[i].StockCeiling = p.Stock
	return nil
}

// Update fija la cantidad de una línea; qty < 1 la elimina.
func (c *Cart) Update(ctx context.Context, productID string, qty int) error {
	if qty < 1 {
		c.Remove(productID)
		return nil
	}
	c.mu.Lock()
	exists := c.indexOf(productID) >= 0
	c.mu.Unlock()
	if !exists {
		return fmt.Errorf("%w: el producto no está en el carrito", domain.ErrNotFound)
	}

	p, err := c.loadProduct(ctx, productID)
	if err != nil {
		return err
	}
	if qty > p.Stock {
		return &InsufficientStockError{ProductID: p.ID, Name: p.Name, Requested: qty, Available: p.Stock}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(productID)
	if i < 0 {
		return fmt.Errorf("%w: el producto no está en el carrito", domain.ErrNotFound)
	}
	c.lines[i].Name = p.Name
	c.lines[i].UnitPrice = p.Price
	c.lines[i].Quantity = qty
	c.lines[i].StockCeiling = p.Stock
	return nil
}

// Remove quita la línea del producto (no-op si no está).
func (c *Cart) Remove(productID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(productID); i >= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
	}
}

// ApplyDiscount interpreta el descuento ingresado y devuelve el valor aplicado.
func (c *Cart) ApplyDiscount(raw string) decimal.Decimal {
	d := sales.ParseDiscount(raw)
	c.mu.Lock()
	c.discount = d
	c.mu.Unlock()
	return d
}

// Discount porcentaje vigente.
func (c *Cart) Discount() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.discount
}

// Lines copia de las líneas en orden de alta.
func (c *Cart) Lines() []CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// Totals bruto y neto con el descuento vigente.
func (c *Cart) Totals() sales.Totals {
	c.mu.Lock()
	defer c.mu.Unlock()
	lines := make([]sales.Line, 0, len(c.lines))
	for _, l := range c.lines {
		lines = append(lines, sales.Line{Quantity: l.Quantity, UnitPrice: l.UnitPrice})
	}
	return sales.ComputeTotals(lines, c.discount)
}

// Total neto redondeado a 2 decimales.
func (c *Cart) Total() decimal.Decimal {
	return c.Totals().Net
}

// Clear vacía el carrito y el descuento.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
	c.discount = decimal.Zero
}

// Checkout confirma la venta con el contenido del carrito. Solo se vacía si la venta se confirma.
func (c *Cart) Checkout(ctx context.Context, saler Saler, opts CheckoutOptions) (*SaleResult, error) {
	lines := c.Lines()
	if len(lines) == 0 {
		return nil, domain.ErrEmptyCart
	}
	in := ConfirmSaleInput{
		UserID:       opts.UserID,
		Discount:     c.Discount(),
		CustomerID:   opts.CustomerID,
		DocumentType: opts.DocumentType,
		DueDate:      opts.DueDate,
		Policy:       opts.Policy,
		Picker:       opts.Picker,
	}
	for _, l := range lines {
		in.Lines = append(in.Lines, SaleLine{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	res, err := saler.ConfirmSale(ctx, in)
	if err != nil {
		return nil, err
	}
	c.Clear()
	return res, nil
}

// Response arma el DTO del carrito.
func (c *Cart) Response() dto.CartResponse {
	lines := c.Lines()
	totals := c.Totals()
	out := dto.CartResponse{
		Lines:    make([]dto.CartLineResponse, 0, len(lines)),
		Discount: c.Discount(),
		Gross:    totals.Gross,
		Total:    totals.Net,
	}
	for _, l := range lines {
		out.Lines = append(out.Lines, dto.CartLineResponse{
			ProductID:    l.ProductID,
			Name:         l.Name,
			UnitPrice:    l.UnitPrice,
			Quantity:     l.Quantity,
			StockCeiling: l.StockCeiling,
			Subtotal:     sales.Line{Quantity: l.Quantity, UnitPrice: l.UnitPrice}.Subtotal().Round(2),
		})
	}
	return out
}

func (c *Cart) loadProduct(ctx context.Context, productID string) (*entity.Product, error) {
	p, err := c.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
	}
	if !p.IsActive() {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrArchived, p.Name)
	}
	return p, nil
}

func (c *Cart) indexOf(productID string) int {
	for i, l := range c.lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}
