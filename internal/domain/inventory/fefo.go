package inventory

import (
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/farmanaccio-api/internal/domain"
	"github.com/jhoicas/farmanaccio-api/internal/domain/entity"
)

// Deduction cantidad a descontar de un lote concreto.
type Deduction struct {
	LotID      string
	Label      string
	ExpiryDate time.Time
	Amount     int
	Remaining  int // disponible del lote después de aplicar Amount
}

// SortFEFO ordena los lotes por vencimiento ascendente; a igual vencimiento, por ID ascendente.
func SortFEFO(lots []*entity.Lot) {
	sort.SliceStable(lots, func(i, j int) bool {
		a, b := lots[i], lots[j]
		if !a.ExpiryDate.Equal(b.ExpiryDate) {
			return a.ExpiryDate.Before(b.ExpiryDate)
		}
		return a.ID < b.ID
	})
}

// TotalAvailable suma la disponibilidad de los lotes.
func TotalAvailable(lots []*entity.Lot) int {
	total := 0
	for _, l := range lots {
		if l.Available > 0 {
			total += l.Available
		}
	}
	return total
}

// PlanFEFO reparte qty entre los lotes empezando por el que vence primero.
// Si la disponibilidad total no alcanza, falla sin producir ningún descuento.
// No modifica los lotes recibidos.
func PlanFEFO(lots []*entity.Lot, qty int) ([]Deduction, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("%w: cantidad a descontar debe ser mayor que 0", domain.ErrInvalidInput)
	}
	if total := TotalAvailable(lots); total < qty {
		return nil, fmt.Errorf("%w: disponible %d, solicitado %d", domain.ErrInsufficientStock, total, qty)
	}

	ordered := make([]*entity.Lot, 0, len(lots))
	for _, l := range lots {
		if l.Available > 0 {
			ordered = append(ordered, l)
		}
	}
	SortFEFO(ordered)

	plan := make([]Deduction, 0, len(ordered))
	remaining := qty
	for _, l := range ordered {
		if remaining == 0 {
			break
		}
		take := min(remaining, l.Available)
		plan = append(plan, Deduction{
			LotID:      l.ID,
			Label:      l.Label,
			ExpiryDate: l.ExpiryDate,
			Amount:     take,
			Remaining:  l.Available - take,
		})
		remaining -= take
	}
	return plan, nil
}

// PlanSingleLot toma toda la cantidad de un único lote elegido por el usuario.
// Nunca reparte entre lotes ni descuenta parcialmente.
func PlanSingleLot(lot *entity.Lot, qty int) (Deduction, error) {
	if qty <= 0 {
		return Deduction{}, fmt.Errorf("%w: cantidad a descontar debe ser mayor que 0", domain.ErrInvalidInput)
	}
	if lot == nil {
		return Deduction{}, domain.ErrNotFound
	}
	if lot.Available < qty {
		return Deduction{}, fmt.Errorf("%w: lote %s disponible %d, solicitado %d",
			domain.ErrInsufficientLotStock, lot.Label, lot.Available, qty)
	}
	return Deduction{
		LotID:      lot.ID,
		Label:      lot.Label,
		ExpiryDate: lot.ExpiryDate,
		Amount:     qty,
		Remaining:  lot.Available - qty,
	}, nil
}
