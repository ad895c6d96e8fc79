package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/farmanaccio-api/internal/domain"
	"github.com/shopspring/decimal"
)

// Decisiones ante un precio distinto al registrado.
type PriceDecision string

const (
	PriceAdopt PriceDecision = "adopt" // usar el precio entrante
	PriceKeep  PriceDecision = "keep"  // conservar el precio guardado
	PriceAbort PriceDecision = "abort"
)

// Decisiones ante un producto archivado con el mismo nombre.
type ArchivedDecision string

const (
	ArchivedReactivate ArchivedDecision = "reactivate"
	ArchivedCreateNew  ArchivedDecision = "create_new"
	ArchivedAbort      ArchivedDecision = "abort"
)

// Decisiones ante un lote del día con otro vencimiento.
type ExpiryDecision string

const (
	ExpiryUpdate   ExpiryDecision = "update"   // reescribir el vencimiento
	ExpiryContinue ExpiryDecision = "continue" // conservar el vencimiento guardado
	ExpiryAbort    ExpiryDecision = "abort"
)

// ConflictKind tipo de conflicto detectado al reabastecer.
type ConflictKind string

const (
	ConflictPrice    ConflictKind = "price"
	ConflictArchived ConflictKind = "archived"
	ConflictExpiry   ConflictKind = "expiry"
)

// PriceConflict precio guardado vs entrante.
type PriceConflict struct {
	ProductID     string          `json:"product_id"`
	Name          string          `json:"name"`
	StoredPrice   decimal.Decimal `json:"stored_price"`
	IncomingPrice decimal.Decimal `json:"incoming_price"`
}

// ArchivedConflict producto archivado encontrado por nombre.
type ArchivedConflict struct {
	ProductID     string `json:"product_id"`
	Name          string `json:"name"`
	ArchiveReason string `json:"archive_reason"`
}

// ExpiryConflict vencimiento guardado vs entrante para el mismo lote del día.
type ExpiryConflict struct {
	LotID          string    `json:"lot_id"`
	Label          string    `json:"label"`
	StoredExpiry   time.Time `json:"stored_expiry"`
	IncomingExpiry time.Time `json:"incoming_expiry"`
}

// ConflictResolver decide los conflictos de un reabastecimiento.
type ConflictResolver interface {
	ResolvePrice(ctx context.Context, c PriceConflict) (PriceDecision, error)
	ResolveArchived(ctx context.Context, c ArchivedConflict) (ArchivedDecision, error)
	ResolveExpiry(ctx context.Context, c ExpiryConflict) (ExpiryDecision, error)
}

var (
	// ErrRestockAborted el operador eligió abortar; no se escribió nada.
	ErrRestockAborted = fmt.Errorf("%w: reabastecimiento abortado por el operador", domain.ErrConflict)
	// ErrDecisionRequired hay un conflicto sin respuesta; ver DecisionRequiredError.
	ErrDecisionRequired = errors.New("se requiere una decisión del operador")
)

// DecisionRequiredError conflicto que el operador debe resolver antes de reintentar.
type DecisionRequiredError struct {
	Kind     ConflictKind
	Conflict any // PriceConflict, ArchivedConflict o ExpiryConflict
}

func (e *DecisionRequiredError) Error() string {
	return fmt.Sprintf("%s: conflicto de %s", ErrDecisionRequired.Error(), e.Kind)
}

func (e *DecisionRequiredError) Unwrap() error { return ErrDecisionRequired }

// Decisions respuestas dadas de antemano (por ejemplo en el body de la petición).
// Un campo vacío significa "preguntar": el conflicto se devuelve como DecisionRequiredError.
type Decisions struct {
	Price    PriceDecision
	Archived ArchivedDecision
	Expiry   ExpiryDecision
}

// ResolvePrice implementa ConflictResolver.
func (d Decisions) ResolvePrice(_ context.Context, c PriceConflict) (PriceDecision, error) {
	if d.Price == "" {
		return "", &DecisionRequiredError{Kind: ConflictPrice, Conflict: c}
	}
	return d.Price, nil
}

// ResolveArchived implementa ConflictResolver.
func (d Decisions) ResolveArchived(_ context.Context, c ArchivedConflict) (ArchivedDecision, error) {
	if d.Archived == "" {
		return "", &DecisionRequiredError{Kind: ConflictArchived, Conflict: c}
	}
	return d.Archived, nil
}

// ResolveExpiry implementa ConflictResolver.
func (d Decisions) ResolveExpiry(_ context.Context, c ExpiryConflict) (ExpiryDecision, error) {
	if d.Expiry == "" {
		return "", &DecisionRequiredError{Kind: ConflictExpiry, Conflict: c}
	}
	return d.Expiry, nil
}
