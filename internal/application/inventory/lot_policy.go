package inventory

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/jhoicas/farmanaccio-api/internal/domain"
	"github.com/jhoicas/farmanaccio-api/internal/domain/entity"
)

// LotPolicy define cómo se eligen los lotes al descontar una venta.
type LotPolicy string

const (
	LotPolicyAutomatic LotPolicy = "automatic" // FEFO
	LotPolicyManual    LotPolicy = "manual"    // el operador elige un único lote
)

// ParseLotPolicy valida el texto recibido; vacío equivale a "sin override".
func ParseLotPolicy(s string) (LotPolicy, error) {
	switch LotPolicy(s) {
	case "", LotPolicyAutomatic, LotPolicyManual:
		return LotPolicy(s), nil
	}
	return "", fmt.Errorf("%w: política de lotes %q", domain.ErrInvalidInput, s)
}

// LotPicker pide al operador un lote para el producto.
// lots llega en orden FEFO; ok=false significa que el operador canceló.
type LotPicker interface {
	PickLot(ctx context.Context, productID string, lots []*entity.Lot) (index int, ok bool, err error)
}

// LotPickerFunc adapta una función a LotPicker.
type LotPickerFunc func(ctx context.Context, productID string, lots []*entity.Lot) (int, bool, error)

// PickLot implementa LotPicker.
func (f LotPickerFunc) PickLot(ctx context.Context, productID string, lots []*entity.Lot) (int, bool, error) {
	return f(ctx, productID, lots)
}

// LotSelections elecciones hechas de antemano: productID → lotID.
// Un producto sin elección, o con un lote que ya no está disponible, cuenta como cancelación.
type LotSelections map[string]string

// PickLot implementa LotPicker.
func (s LotSelections) PickLot(_ context.Context, productID string, lots []*entity.Lot) (int, bool, error) {
	lotID, ok := s[productID]
	if !ok || lotID == "" {
		return 0, false, nil
	}
	for i, l := range lots {
		if l.ID == lotID {
			return i, true, nil
		}
	}
	return 0, false, nil
}

// Settings valor de proceso de la política de lotes, modificable en caliente por un admin.
// La venta lo lee una sola vez al comenzar y lo pasa explícitamente al núcleo.
type Settings struct {
	manual atomic.Bool
}

// NewSettings construye la configuración con el valor inicial.
func NewSettings(manualLotSelection bool) *Settings {
	s := &Settings{}
	s.manual.Store(manualLotSelection)
	return s
}

// ManualLotSelection indica si la selección manual está activa.
func (s *Settings) ManualLotSelection() bool { return s.manual.Load() }

// SetManualLotSelection cambia la política para las ventas siguientes.
func (s *Settings) SetManualLotSelection(v bool) { s.manual.Store(v) }

// Policy devuelve la política vigente.
func (s *Settings) Policy() LotPolicy {
	if s.ManualLotSelection() {
		return LotPolicyManual
	}
	return LotPolicyAutomatic
}
