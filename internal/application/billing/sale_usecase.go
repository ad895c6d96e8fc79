package billing

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/farmanaccio-api/internal/application/dto"
	"github.com/jhoicas/farmanaccio-api/internal/application/inventory"
	"github.com/jhoicas/farmanaccio-api/internal/domain"
	"github.com/jhoicas/farmanaccio-api/internal/domain/entity"
	domaininv "github.com/jhoicas/farmanaccio-api/internal/domain/inventory"
	"github.com/jhoicas/farmanaccio-api/internal/domain/repository"
	"github.com/jhoicas/farmanaccio-api/internal/domain/sales"
	"github.com/jhoicas/farmanaccio-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// SaleLine producto y cantidad pedidos.
type SaleLine struct {
	ProductID string
	Quantity  int
}

// ConfirmSaleInput entrada de una venta.
type ConfirmSaleInput struct {
	UserID       string
	Lines        []SaleLine
	Discount     decimal.Decimal // se acota a [0, 100]
	CustomerID   string          // opcional salvo en remitos
	DocumentType string          // FACTURA (por defecto) | REMITO
	DueDate      *time.Time      // vencimiento del remito
	// Policy override por venta; vacío = valor de Settings leído al comenzar el intento.
	Policy inventory.LotPolicy
	Picker inventory.LotPicker
}

// LotDeduction descuento aplicado a un lote de un producto.
type LotDeduction struct {
	ProductID string
	domaininv.Deduction
}

// SaleResult venta confirmada.
type SaleResult struct {
	Invoice      *entity.Invoice
	Details      []*entity.InvoiceDetail
	DeliveryNote *entity.DeliveryNote
	Deductions   []LotDeduction
	Document     *GeneratedDocument
}

// SaleUseCase confirma ventas: descuenta lotes, sincroniza stock, registra la factura y genera el
// documento en una sola transacción. Cualquier fallo o cancelación revierte todo.
type SaleUseCase struct {
	txRunner     BillingTxRunner
	customerRepo repository.CustomerRepository
	invoiceRepo  repository.InvoiceRepository
	documents    DocumentGenerator
	settings     *inventory.Settings
	log          *logger.Logger
	now          func() time.Time
}

// NewSaleUseCase construye el caso de uso.
func NewSaleUseCase(
	txRunner BillingTxRunner,
	customerRepo repository.CustomerRepository,
	invoiceRepo repository.InvoiceRepository,
	documents DocumentGenerator,
	settings *inventory.Settings,
	log *logger.Logger,
) *SaleUseCase {
	return &SaleUseCase{
		txRunner:     txRunner,
		customerRepo: customerRepo,
		invoiceRepo:  invoiceRepo,
		documents:    documents,
		settings:     settings,
		log:          log.Named("sales"),
		now:          time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *SaleUseCase) WithClock(now func() time.Time) *SaleUseCase {
	uc.now = now
	return uc
}

// ConfirmSale recorre START → STOCK_CHECK → LOT_DEDUCTION → AGGREGATE_RESYNC → INVOICE_WRITE →
// DOCUMENT_GENERATION → COMMIT. Un error en cualquier estado devuelve *SaleError y deja el
// inventario exactamente como estaba.
func (uc *SaleUseCase) ConfirmSale(ctx context.Context, in ConfirmSaleInput) (*SaleResult, error) {
	attemptID := uuid.New().String()
	log := uc.log.With("attempt", attemptID)

	stage := StageStart
	fail := func(err error) (*SaleResult, error) {
		if !errors.Is(err, domain.ErrCancelled) &&
			(errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
			err = fmt.Errorf("%w: %v", domain.ErrCancelled, err)
		}
		log.Warn().Err(err).Str("stage", string(stage)).Msg("venta revertida")
		return nil, &SaleError{Stage: stage, Err: err}
	}

	lines, err := mergeLines(in.Lines)
	if err != nil {
		return fail(err)
	}
	docType := strings.ToUpper(strings.TrimSpace(in.DocumentType))
	if docType == "" {
		docType = entity.DocumentTypeInvoice
	}
	if docType != entity.DocumentTypeInvoice && docType != entity.DocumentTypeDeliveryNote {
		return fail(fmt.Errorf("%w: tipo de documento %q", domain.ErrInvalidInput, in.DocumentType))
	}
	discount := sales.ClampDiscount(in.Discount)

	// La política se lee una única vez por intento.
	policy := in.Policy
	if policy == "" {
		policy = uc.settings.Policy()
	}
	if policy == inventory.LotPolicyManual && in.Picker == nil {
		return fail(fmt.Errorf("%w: selección manual de lotes sin elecciones", domain.ErrInvalidInput))
	}

	buyer, err := uc.loadBuyer(ctx, in.CustomerID)
	if err != nil {
		return fail(err)
	}
	if docType == entity.DocumentTypeDeliveryNote && (buyer == nil || buyer.TaxID == "") {
		return fail(fmt.Errorf("%w: el remito requiere un cliente con CUIT/CUIL", domain.ErrInvalidInput))
	}

	now := uc.now()
	invoiceID := uuid.New().String()
	result := &SaleResult{}
	log.Info().Int("lines", len(lines)).Str("policy", string(policy)).Str("document", docType).Msg("venta iniciada")

	err = uc.txRunner.RunBilling(ctx, func(
		productRepo repository.ProductRepository,
		lotRepo repository.LotRepository,
		movRepo repository.StockMovementRepository,
		invoiceRepo repository.InvoiceRepository,
		noteRepo repository.DeliveryNoteRepository,
	) error {
		// STOCK_CHECK: filas de producto bloqueadas en orden de ID; el precio queda capturado aquí.
		stage = StageStockCheck
		if err := cancelled(ctx); err != nil {
			return err
		}
		priced, err := checkStock(ctx, productRepo, lines)
		if err != nil {
			return err
		}

		// LOT_DEDUCTION
		stage = StageLotDeduction
		for _, l := range lines {
			if err := cancelled(ctx); err != nil {
				return err
			}
			plan, err := inventory.DeductLots(ctx, lotRepo, movRepo, inventory.OutRequest{
				ProductID:     l.ProductID,
				Quantity:      l.Quantity,
				Policy:        policy,
				Picker:        in.Picker,
				TransactionID: invoiceID,
				UserID:        in.UserID,
				Now:           now,
			})
			if err != nil {
				return err
			}
			for _, d := range plan {
				result.Deductions = append(result.Deductions, LotDeduction{ProductID: l.ProductID, Deduction: d})
			}
		}

		// AGGREGATE_RESYNC: misma transacción que el descuento
		stage = StageAggregateResync
		for _, l := range lines {
			if _, err := inventory.ResyncStock(ctx, productRepo, lotRepo, l.ProductID); err != nil {
				return err
			}
		}

		// INVOICE_WRITE
		stage = StageInvoiceWrite
		if err := cancelled(ctx); err != nil {
			return err
		}
		if err := uc.writeInvoice(ctx, invoiceRepo, noteRepo, result, writeInvoiceInput{
			invoiceID: invoiceID,
			docType:   docType,
			lines:     lines,
			prices:    priced,
			discount:  discount,
			buyer:     buyer,
			dueDate:   in.DueDate,
			userID:    in.UserID,
			now:       now,
		}); err != nil {
			return err
		}

		// DOCUMENT_GENERATION: el generador lee la factura a través de la transacción abierta.
		stage = StageDocumentGeneration
		if err := cancelled(ctx); err != nil {
			return err
		}
		doc, err := uc.documents.Generate(ctx, DocumentSource{
			Invoices:      invoiceRepo,
			DeliveryNotes: noteRepo,
			Products:      productRepo,
		}, DocumentRequest{InvoiceID: invoiceID, Buyer: buyer})
		if err != nil {
			return err
		}
		result.Document = doc

		stage = StageCommit
		return cancelled(ctx)
	})
	if err != nil {
		if result.Document != nil {
			if dErr := uc.documents.Discard(context.WithoutCancel(ctx), result.Document); dErr != nil {
				log.Error().Err(dErr).Str("path", result.Document.Path).Msg("no se pudo eliminar el documento de una venta revertida")
			}
		}
		return fail(err)
	}

	stage = StageCommitted
	log.Info().
		Str("invoice_id", invoiceID).
		Int64("number", result.Invoice.Number).
		Str("gross", result.Invoice.GrossTotal.StringFixed(2)).
		Str("net", result.Invoice.NetTotal.StringFixed(2)).
		Str("document", result.Document.Path).
		Msg("venta confirmada")
	return result, nil
}

// GetInvoice obtiene una factura confirmada con su detalle.
func (uc *SaleUseCase) GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := uc.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	details, err := uc.invoiceRepo.GetDetailsByInvoiceID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(inv, details)
	return &resp, nil
}

// ListInvoices lista las ventas más recientes.
func (uc *SaleUseCase) ListInvoices(ctx context.Context, limit, offset int) ([]dto.InvoiceResponse, error) {
	if limit <= 0 {
		limit = 20
	}
	list, err := uc.invoiceRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.InvoiceResponse, 0, len(list))
	for _, inv := range list {
		out = append(out, ToInvoiceResponse(inv, nil))
	}
	return out, nil
}

func (uc *SaleUseCase) loadBuyer(ctx context.Context, customerID string) (*entity.Customer, error) {
	if customerID == "" {
		return nil, nil
	}
	c, err := uc.customerRepo.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("%w: cliente %s", domain.ErrNotFound, customerID)
	}
	if c.Status != entity.StatusActive {
		return nil, fmt.Errorf("%w: cliente %s", domain.ErrArchived, customerID)
	}
	return c, nil
}

// mergeLines valida y une líneas repetidas del mismo producto conservando el orden del carrito.
func mergeLines(in []SaleLine) ([]SaleLine, error) {
	if len(in) == 0 {
		return nil, domain.ErrEmptyCart
	}
	index := make(map[string]int, len(in))
	out := make([]SaleLine, 0, len(in))
	for _, l := range in {
		if l.ProductID == "" || l.Quantity <= 0 {
			return nil, fmt.Errorf("%w: cada línea requiere producto y cantidad mayor que 0", domain.ErrInvalidInput)
		}
		if i, ok := index[l.ProductID]; ok {
			out[i].Quantity += l.Quantity
			continue
		}
		index[l.ProductID] = len(out)
		out = append(out, l)
	}
	return out, nil
}

// checkStock bloquea los productos en orden ascendente de ID y captura los precios.
func checkStock(ctx context.Context, productRepo repository.ProductRepository, lines []SaleLine) (map[string]*entity.Product, error) {
	ordered := make([]SaleLine, len(lines))
	copy(ordered, lines)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ProductID < ordered[j].ProductID })

	priced := make(map[string]*entity.Product, len(lines))
	for _, l := range ordered {
		p, err := productRepo.GetForUpdate(ctx, l.ProductID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, l.ProductID)
		}
		if !p.IsActive() {
			return nil, fmt.Errorf("%w: producto %s", domain.ErrArchived, p.Name)
		}
		if p.Stock < l.Quantity {
			return nil, &InsufficientStockError{ProductID: p.ID, Name: p.Name, Requested: l.Quantity, Available: p.Stock}
		}
		priced[p.ID] = p
	}
	return priced, nil
}

type writeInvoiceInput struct {
	invoiceID string
	docType   string
	lines     []SaleLine
	prices    map[string]*entity.Product
	discount  decimal.Decimal
	buyer     *entity.Customer
	dueDate   *time.Time
	userID    string
	now       time.Time
}

func (uc *SaleUseCase) writeInvoice(
	ctx context.Context,
	invoiceRepo repository.InvoiceRepository,
	noteRepo repository.DeliveryNoteRepository,
	result *SaleResult,
	in writeInvoiceInput,
) error {
	totalLines := make([]sales.Line, 0, len(in.lines))
	for _, l := range in.lines {
		totalLines = append(totalLines, sales.Line{Quantity: l.Quantity, UnitPrice: in.prices[l.ProductID].Price})
	}
	totals := sales.ComputeTotals(totalLines, in.discount)

	inv := &entity.Invoice{
		ID:           in.invoiceID,
		DocumentType: in.docType,
		IssuedAt:     in.now,
		GrossTotal:   totals.Gross,
		NetTotal:     totals.Net,
		Discount:     in.discount,
		CreatedBy:    in.userID,
		CreatedAt:    in.now,
	}
	if in.buyer != nil {
		inv.CustomerID = in.buyer.ID
	}
	if err := invoiceRepo.Create(ctx, inv); err != nil {
		return err
	}
	result.Invoice = inv

	for i, l := range in.lines {
		detail := &entity.InvoiceDetail{
			ID:        uuid.New().String(),
			InvoiceID: inv.ID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: totalLines[i].UnitPrice,
			Subtotal:  totalLines[i].Subtotal().Round(2),
		}
		if err := invoiceRepo.CreateDetail(ctx, detail); err != nil {
			return err
		}
		result.Details = append(result.Details, detail)
	}

	if in.docType != entity.DocumentTypeDeliveryNote {
		return nil
	}
	note := &entity.DeliveryNote{
		ID:         uuid.New().String(),
		InvoiceID:  inv.ID,
		CustomerID: in.buyer.ID,
		TaxID:      in.buyer.TaxID,
		VATStatus:  in.buyer.VATStatus,
		StartDate:  in.now,
		DueDate:    in.dueDate,
		CreatedAt:  in.now,
	}
	for _, l := range in.lines {
		note.Lines = append(note.Lines, entity.DeliveryNoteLine{
			ID:             uuid.New().String(),
			DeliveryNoteID: note.ID,
			ProductID:      l.ProductID,
			Quantity:       l.Quantity,
		})
	}
	if err := noteRepo.Create(ctx, note); err != nil {
		return err
	}
	result.DeliveryNote = note
	return nil
}

func cancelled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCancelled, err)
	}
	return nil
}

// IsCancelled indica si la venta se abortó por cancelación del operador.
func IsCancelled(err error) bool {
	return errors.Is(err, domain.ErrCancelled)
}

// ToInvoiceResponse convierte factura y detalle a DTO.
func ToInvoiceResponse(inv *entity.Invoice, details []*entity.InvoiceDetail) dto.InvoiceResponse {
	out := dto.InvoiceResponse{
		ID:           inv.ID,
		Number:       inv.Number,
		DocumentType: inv.DocumentType,
		CustomerID:   inv.CustomerID,
		IssuedAt:     inv.IssuedAt,
		GrossTotal:   inv.GrossTotal,
		NetTotal:     inv.NetTotal,
		Discount:     inv.Discount,
		Details:      make([]dto.InvoiceDetailResponse, 0, len(details)),
	}
	for _, d := range details {
		out.Details = append(out.Details, dto.InvoiceDetailResponse{
			ID:        d.ID,
			ProductID: d.ProductID,
			Quantity:  d.Quantity,
			UnitPrice: d.UnitPrice,
			Subtotal:  d.Subtotal,
		})
	}
	return out
}

// ToSaleResponse convierte el resultado de una venta a DTO.
func ToSaleResponse(r *SaleResult) dto.SaleResponse {
	out := dto.SaleResponse{
		Invoice:    ToInvoiceResponse(r.Invoice, r.Details),
		Deductions: make([]dto.LotDeductionResponse, 0, len(r.Deductions)),
	}
	for _, d := range r.Deductions {
		out.Deductions = append(out.Deductions, dto.LotDeductionResponse{
			ProductID:  d.ProductID,
			LotID:      d.LotID,
			Label:      d.Label,
			ExpiryDate: d.ExpiryDate,
			Amount:     d.Amount,
			Remaining:  d.Remaining,
		})
	}
	if r.Document != nil {
		out.DocumentPath = r.Document.Path
	}
	return out
}
