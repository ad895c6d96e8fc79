package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/farmanaccio-api/internal/domain"
	"github.com/jhoicas/farmanaccio-api/internal/domain/entity"
	"github.com/jhoicas/farmanaccio-api/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

// LotRepo lotes de producto sobre PostgreSQL (usable con pool o tx).
type LotRepo struct {
	q Querier
}

// NewLotRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q}
}

const lotColumns = `id, product_id, label, intake_date, expiry_date, received, available, created_at, updated_at`

func (r *LotRepo) GetByID(ctx context.Context, id string) (*entity.Lot, error) {
	return r.getOne(ctx, `SELECT `+lotColumns+` FROM lots WHERE id = $1`, id)
}

func (r *LotRepo) GetForUpdate(ctx context.Context, id string) (*entity.Lot, error) {
	return r.getOne(ctx, `SELECT `+lotColumns+` FROM lots WHERE id = $1 FOR UPDATE`, id)
}

func (r *LotRepo) GetByNaturalKey(ctx context.Context, productID, label string, intakeDate time.Time) (*entity.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM lots WHERE product_id = $1 AND label = $2 AND intake_date = $3`
	return r.getOne(ctx, query, productID, label, intakeDate)
}

// ListAvailable lotes con disponible > 0 en orden FEFO.
func (r *LotRepo) ListAvailable(ctx context.Context, productID string) ([]*entity.Lot, error) {
	query := `
		SELECT ` + lotColumns + ` FROM lots
		WHERE product_id = $1 AND available > 0
		ORDER BY expiry_date, id`
	return r.getMany(ctx, query, productID)
}

// ListAvailableForUpdate igual que ListAvailable, bloqueando las filas.
func (r *LotRepo) ListAvailableForUpdate(ctx context.Context, productID string) ([]*entity.Lot, error) {
	query := `
		SELECT ` + lotColumns + ` FROM lots
		WHERE product_id = $1 AND available > 0
		ORDER BY expiry_date, id
		FOR UPDATE`
	return r.getMany(ctx, query, productID)
}

func (r *LotRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM lots WHERE product_id = $1 ORDER BY expiry_date, id`
	return r.getMany(ctx, query, productID)
}

func (r *LotRepo) SetAvailable(ctx context.Context, lotID string, qty int) error {
	return r.execOne(ctx, "set lot available", `UPDATE lots SET available = $2, updated_at = NOW() WHERE id = $1`, lotID, qty)
}

// Upsert inserta el lote o suma los deltas al existente con la misma clave natural.
// El vencimiento informado reemplaza al guardado.
func (r *LotRepo) Upsert(ctx context.Context, in repository.LotUpsert) (*entity.Lot, error) {
	query := `
		INSERT INTO lots (id, product_id, label, intake_date, expiry_date, received, available, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		ON CONFLICT (product_id, label, intake_date) DO UPDATE
		SET received    = lots.received + EXCLUDED.received,
		    available   = lots.available + EXCLUDED.available,
		    expiry_date = EXCLUDED.expiry_date,
		    updated_at  = NOW()
		RETURNING ` + lotColumns
	row := r.q.QueryRow(ctx, query,
		uuid.New().String(), in.ProductID, in.Label, in.IntakeDate, in.ExpiryDate, in.DeltaReceived, in.DeltaAvailable,
	)
	lot, err := scanLot(row)
	if err != nil {
		if isCheckViolation(err) {
			return nil, fmt.Errorf("upsert lot: %w", domain.ErrInvalidInput)
		}
		return nil, fmt.Errorf("upsert lot: %w", err)
	}
	return lot, nil
}

// Update corrige recibido, disponible y vencimiento.
func (r *LotRepo) Update(ctx context.Context, lot *entity.Lot) error {
	query := `
		UPDATE lots SET received = $2, available = $3, expiry_date = $4, updated_at = NOW()
		WHERE id = $1`
	return r.execOne(ctx, "update lot", query, lot.ID, lot.Received, lot.Available, lot.ExpiryDate)
}

func (r *LotRepo) ZeroByProduct(ctx context.Context, productID string) error {
	_, err := r.q.Exec(ctx, `UPDATE lots SET available = 0, updated_at = NOW() WHERE product_id = $1 AND available <> 0`, productID)
	if err != nil {
		return fmt.Errorf("zero lots: %w", err)
	}
	return nil
}

func (r *LotRepo) SumAvailable(ctx context.Context, productID string) (int, error) {
	var total int
	err := r.q.QueryRow(ctx, `SELECT COALESCE(SUM(available), 0) FROM lots WHERE product_id = $1`, productID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum lots: %w", err)
	}
	return total, nil
}

func (r *LotRepo) execOne(ctx context.Context, op, query string, args ...any) error {
	tag, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		if isCheckViolation(err) {
			return fmt.Errorf("%s: %w", op, domain.ErrInvalidInput)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *LotRepo) getOne(ctx context.Context, query string, args ...any) (*entity.Lot, error) {
	lot, err := scanLot(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lot: %w", err)
	}
	return lot, nil
}

func (r *LotRepo) getMany(ctx context.Context, query string, args ...any) ([]*entity.Lot, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list lots: %w", err)
	}
	defer rows.Close()
	var list []*entity.Lot
	for rows.Next() {
		lot, err := scanLot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lot: %w", err)
		}
		list = append(list, lot)
	}
	return list, rows.Err()
}

func scanLot(row pgxScanner) (*entity.Lot, error) {
	var l entity.Lot
	err := row.Scan(&l.ID, &l.ProductID, &l.Label, &l.IntakeDate, &l.ExpiryDate, &l.Received, &l.Available, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}
