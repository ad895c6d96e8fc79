package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/farmanaccio-api/internal/domain/entity"
	"github.com/jhoicas/farmanaccio-api/internal/domain/inventory"
	"github.com/jhoicas/farmanaccio-api/internal/domain/repository"
)

var _ repository.VademecumRepository = (*VademecumRepo)(nil)

// VademecumRepo catálogo de referencia de medicamentos.
type VademecumRepo struct {
	q Querier
}

// NewVademecumRepository construye el adaptador. Pasar pool o tx (Querier).
func NewVademecumRepository(q Querier) *VademecumRepo {
	return &VademecumRepo{q: q}
}

const vademecumColumns = `id, trade_name, presentation, pharmacological_action, active_ingredient, laboratory`

// FindByTradeName coincidencia exacta sin distinguir mayúsculas.
func (r *VademecumRepo) FindByTradeName(ctx context.Context, name string) (*entity.VademecumEntry, error) {
	query := `SELECT ` + vademecumColumns + ` FROM vademecum WHERE trade_name_key = $1 ORDER BY id LIMIT 1`
	e, err := scanVademecum(r.q.QueryRow(ctx, query, inventory.NameKey(name)))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get vademecum: %w", err)
	}
	return e, nil
}

// Search coincidencia parcial en nombre comercial o principio activo; % y _ del término son literales.
func (r *VademecumRepo) Search(ctx context.Context, term string, limit int) ([]*entity.VademecumEntry, error) {
	query := `
		SELECT ` + vademecumColumns + ` FROM vademecum
		WHERE trade_name_key LIKE '%' || $1 || '%' ESCAPE '\'
		   OR active_ingredient_key LIKE '%' || $1 || '%' ESCAPE '\'
		ORDER BY trade_name LIMIT $2`
	rows, err := r.q.Query(ctx, query, escapeLike(inventory.NameKey(term)), limitArg(limit))
	if err != nil {
		return nil, fmt.Errorf("search vademecum: %w", err)
	}
	defer rows.Close()
	var list []*entity.VademecumEntry
	for rows.Next() {
		e, err := scanVademecum(rows)
		if err != nil {
			return nil, fmt.Errorf("scan vademecum: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// Count cantidad de entradas cargadas.
func (r *VademecumRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM vademecum`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count vademecum: %w", err)
	}
	return n, nil
}

// BulkInsert carga entradas con COPY cuando el Querier es el pool o una tx; si no, fila por fila.
func (r *VademecumRepo) BulkInsert(ctx context.Context, entries []*entity.VademecumEntry) (int, error) {
	rows := make([][]any, 0, len(entries))
	for _, e := range entries {
		if e.ID == "" {
			e.ID = uuid.New().String()
		}
		rows = append(rows, []any{
			e.ID, e.TradeName, inventory.NameKey(e.TradeName), e.Presentation, e.PharmacologicalAction,
			e.ActiveIngredient, inventory.NameKey(e.ActiveIngredient), e.Laboratory,
		})
	}
	columns := []string{
		"id", "trade_name", "trade_name_key", "presentation", "pharmacological_action",
		"active_ingredient", "active_ingredient_key", "laboratory",
	}
	if copier, ok := r.q.(interface {
		CopyFrom(ctx context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error)
	}); ok {
		n, err := copier.CopyFrom(ctx, pgx.Identifier{"vademecum"}, columns, pgx.CopyFromRows(rows))
		if err != nil {
			return 0, fmt.Errorf("copy vademecum: %w", err)
		}
		return int(n), nil
	}
	query := `
		INSERT INTO vademecum (` + strings.Join(columns, ", ") + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	for _, row := range rows {
		if _, err := r.q.Exec(ctx, query, row...); err != nil {
			return 0, fmt.Errorf("insert vademecum: %w", err)
		}
	}
	return len(rows), nil
}

func scanVademecum(row pgxScanner) (*entity.VademecumEntry, error) {
	var e entity.VademecumEntry
	var presentation, action, ingredient, lab *string
	if err := row.Scan(&e.ID, &e.TradeName, &presentation, &action, &ingredient, &lab); err != nil {
		return nil, err
	}
	e.Presentation = derefString(presentation)
	e.PharmacologicalAction = derefString(action)
	e.ActiveIngredient = derefString(ingredient)
	e.Laboratory = derefString(lab)
	return &e, nil
}
