package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/farmanaccio-api/internal/application/dto"
	"github.com/jhoicas/farmanaccio-api/internal/domain"
	"github.com/jhoicas/farmanaccio-api/internal/domain/entity"
	"github.com/jhoicas/farmanaccio-api/internal/domain/repository"
)

// CustomerUseCase alta, modificación y baja lógica de clientes.
type CustomerUseCase struct {
	repo repository.CustomerRepository
	now  func() time.Time
}

// NewCustomerUseCase construye el caso de uso.
func NewCustomerUseCase(repo repository.CustomerRepository) *CustomerUseCase {
	return &CustomerUseCase{repo: repo, now: time.Now}
}

// Create crea un nuevo cliente. El CUIT/CUIL es único.
func (uc *CustomerUseCase) Create(ctx context.Context, in dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	in = normalizeCustomer(in)
	if err := validateCustomer(in); err != nil {
		return nil, err
	}
	existing, err := uc.repo.GetByTaxID(ctx, in.TaxID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: CUIT/CUIL %s", domain.ErrDuplicate, in.TaxID)
	}
	now := uc.now()
	c := &entity.Customer{
		ID:        uuid.New().String(),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		TaxID:     in.TaxID,
		Phone:     in.Phone,
		Email:     in.Email,
		Address:   in.Address,
		VATStatus: in.VATStatus,
		Status:    entity.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	resp := ToCustomerResponse(c)
	return &resp, nil
}

// Update modifica los datos de un cliente existente.
func (uc *CustomerUseCase) Update(ctx context.Context, id string, in dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	in = normalizeCustomer(in)
	if err := validateCustomer(in); err != nil {
		return nil, err
	}
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	if in.TaxID != c.TaxID {
		other, err := uc.repo.GetByTaxID(ctx, in.TaxID)
		if err != nil {
			return nil, err
		}
		if other != nil && other.ID != c.ID {
			return nil, fmt.Errorf("%w: CUIT/CUIL %s", domain.ErrDuplicate, in.TaxID)
		}
	}
	c.FirstName = in.FirstName
	c.LastName = in.LastName
	c.TaxID = in.TaxID
	c.Phone = in.Phone
	c.Email = in.Email
	c.Address = in.Address
	c.VATStatus = in.VATStatus
	c.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	resp := ToCustomerResponse(c)
	return &resp, nil
}

// Get obtiene un cliente por ID.
func (uc *CustomerUseCase) Get(ctx context.Context, id string) (*dto.CustomerResponse, error) {
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	resp := ToCustomerResponse(c)
	return &resp, nil
}

// List lista clientes por estado (vacío = activos).
func (uc *CustomerUseCase) List(ctx context.Context, status string, limit, offset int) ([]dto.CustomerResponse, error) {
	if status == "" {
		status = entity.StatusActive
	}
	if status != entity.StatusActive && status != entity.StatusArchived {
		return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, status)
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	list, err := uc.repo.List(ctx, status, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CustomerResponse, 0, len(list))
	for _, c := range list {
		out = append(out, ToCustomerResponse(c))
	}
	return out, nil
}

// Archive da de baja lógica al cliente. El motivo es obligatorio.
func (uc *CustomerUseCase) Archive(ctx context.Context, id, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return fmt.Errorf("%w: el motivo de baja es obligatorio", domain.ErrInvalidInput)
	}
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return domain.ErrNotFound
	}
	if c.Status == entity.StatusArchived {
		return fmt.Errorf("%w: el cliente ya está dado de baja", domain.ErrConflict)
	}
	return uc.repo.UpdateStatus(ctx, id, entity.StatusArchived, reason)
}

// Restore reactiva un cliente dado de baja.
func (uc *CustomerUseCase) Restore(ctx context.Context, id string) error {
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return domain.ErrNotFound
	}
	if c.Status == entity.StatusActive {
		return fmt.Errorf("%w: el cliente ya está activo", domain.ErrConflict)
	}
	return uc.repo.UpdateStatus(ctx, id, entity.StatusActive, "")
}

func normalizeCustomer(in dto.CreateCustomerRequest) dto.CreateCustomerRequest {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.TaxID = strings.TrimSpace(in.TaxID)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = strings.TrimSpace(in.Email)
	in.Address = strings.TrimSpace(in.Address)
	in.VATStatus = strings.TrimSpace(in.VATStatus)
	if in.VATStatus == "" {
		in.VATStatus = entity.VATFinalConsumer
	}
	return in
}

func validateCustomer(in dto.CreateCustomerRequest) error {
	if in.FirstName == "" || in.TaxID == "" {
		return fmt.Errorf("%w: nombre y CUIT/CUIL son obligatorios", domain.ErrInvalidInput)
	}
	for _, r := range in.TaxID {
		if (r < '0' || r > '9') && r != '-' {
			return fmt.Errorf("%w: CUIT/CUIL inválido", domain.ErrInvalidInput)
		}
	}
	if !entity.IsValidVATStatus(in.VATStatus) {
		return fmt.Errorf("%w: condición de IVA %q", domain.ErrInvalidInput, in.VATStatus)
	}
	return nil
}

// ToCustomerResponse convierte la entidad a DTO.
func ToCustomerResponse(c *entity.Customer) dto.CustomerResponse {
	return dto.CustomerResponse{
		ID:            c.ID,
		FirstName:     c.FirstName,
		LastName:      c.LastName,
		TaxID:         c.TaxID,
		Phone:         c.Phone,
		Email:         c.Email,
		Address:       c.Address,
		VATStatus:     c.VATStatus,
		Status:        c.Status,
		ArchiveReason: c.ArchiveReason,
	}
}
