package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/farmanaccio-api/internal/application/dto"
	"github.com/jhoicas/farmanaccio-api/internal/domain"
	"github.com/jhoicas/farmanaccio-api/internal/domain/entity"
	"github.com/jhoicas/farmanaccio-api/internal/domain/repository"
	"github.com/jhoicas/farmanaccio-api/pkg/logger"
)

// VademecumUseCase consultas al catálogo de referencia e importación inicial.
type VademecumUseCase struct {
	repo repository.VademecumRepository
	log  *logger.Logger
}

// NewVademecumUseCase construye el caso de uso.
func NewVademecumUseCase(repo repository.VademecumRepository, log *logger.Logger) *VademecumUseCase {
	return &VademecumUseCase{repo: repo, log: log.Named("vademecum")}
}

// Lookup ficha por nombre comercial exacto (sin distinguir mayúsculas).
func (uc *VademecumUseCase) Lookup(ctx context.Context, tradeName string) (*dto.VademecumResponse, error) {
	if strings.TrimSpace(tradeName) == "" {
		return nil, fmt.Errorf("%w: nombre comercial requerido", domain.ErrInvalidInput)
	}
	e, err := uc.repo.FindByTradeName(ctx, tradeName)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, domain.ErrNotFound
	}
	resp := ToVademecumResponse(e)
	return &resp, nil
}

// Search coincidencia parcial en nombre comercial o principio activo.
func (uc *VademecumUseCase) Search(ctx context.Context, term string, limit int) ([]dto.VademecumResponse, error) {
	term = strings.TrimSpace(term)
	if len([]rune(term)) < 2 {
		return nil, fmt.Errorf("%w: el término de búsqueda debe tener al menos 2 caracteres", domain.ErrInvalidInput)
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	list, err := uc.repo.Search(ctx, term, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.VademecumResponse, 0, len(list))
	for _, e := range list {
		out = append(out, ToVademecumResponse(e))
	}
	return out, nil
}

// Import carga las entradas solo si el catálogo está vacío. Devuelve cuántas insertó;
// 0 sin error significa que la importación ya se había hecho.
func (uc *VademecumUseCase) Import(ctx context.Context, entries []*entity.VademecumEntry) (int, error) {
	n, err := uc.repo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		uc.log.Info().Int("existing", n).Msg("vademécum ya importado, se omite")
		return 0, nil
	}
	valid := entries[:0:0]
	for _, e := range entries {
		if strings.TrimSpace(e.TradeName) == "" {
			continue
		}
		valid = append(valid, e)
	}
	inserted, err := uc.repo.BulkInsert(ctx, valid)
	if err != nil {
		return 0, fmt.Errorf("importar vademécum: %w", err)
	}
	uc.log.Info().Int("inserted", inserted).Int("skipped", len(entries)-len(valid)).Msg("vademécum importado")
	return inserted, nil
}
