package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
	"github.com/jhoicas/backoffice-api/pkg/taxcode"
)

// CompanyUseCase aplica reglas de negocio para empresas (casos de uso).
type CompanyUseCase struct {
	repo repository.CompanyRepository
}

// NewCompanyUseCase construye el caso de uso con el puerto de persistencia.
func NewCompanyUseCase(repo repository.CompanyRepository) *CompanyUseCase {
	return &CompanyUseCase{repo: repo}
}

// Create crea una nueva empresa. Genera ID y estado inicial. Devuelve domain.ErrDuplicate si el MST ya existe.
func (uc *CompanyUseCase) Create(ctx context.Context, in dto.CreateCompanyRequest) (*dto.CompanyResponse, error) {
	if err := taxcode.Validate(in.TaxCode); err != nil {
		return nil, domain.Invalid("tax_code", "la MST debe tener 10 dígitos, 10-3 para sucursales o 12 dígitos")
	}
	taxCode := taxcode.Normalize(in.TaxCode)
	existing, err := uc.repo.GetByTaxCode(ctx, taxCode)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := time.Now()
	company := &entity.Company{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(in.Name),
		TaxCode:   taxCode,
		Address:   in.Address,
		Phone:     in.Phone,
		Email:     in.Email,
		Status:    entity.CompanyStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, company); err != nil {
		return nil, err
	}
	return entityToCompanyResponse(company), nil
}

// GetByID obtiene la empresa del usuario. Otra empresa devuelve ErrForbidden.
func (uc *CompanyUseCase) GetByID(ctx context.Context, callerCompanyID, id string) (*dto.CompanyResponse, error) {
	if callerCompanyID != id {
		return nil, domain.ErrForbidden
	}
	company, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	return entityToCompanyResponse(company), nil
}

// Update modifica el perfil de la empresa propia.
func (uc *CompanyUseCase) Update(ctx context.Context, callerCompanyID, id string, in dto.UpdateCompanyRequest) (*dto.CompanyResponse, error) {
	if callerCompanyID != id {
		return nil, domain.ErrForbidden
	}
	company, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		company.Name = strings.TrimSpace(*in.Name)
	}
	if in.TaxCode != nil {
		if err := taxcode.Validate(*in.TaxCode); err != nil {
			return nil, domain.Invalid("tax_code", "la MST debe tener 10 dígitos, 10-3 para sucursales o 12 dígitos")
		}
		company.TaxCode = taxcode.Normalize(*in.TaxCode)
	}
	if in.Address != nil {
		company.Address = *in.Address
	}
	if in.Phone != nil {
		company.Phone = *in.Phone
	}
	if in.Email != nil {
		company.Email = *in.Email
	}
	company.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, company); err != nil {
		return nil, err
	}
	return entityToCompanyResponse(company), nil
}

func entityToCompanyResponse(c *entity.Company) *dto.CompanyResponse {
	if c == nil {
		return nil
	}
	return &dto.CompanyResponse{
		ID:        c.ID,
		Name:      c.Name,
		TaxCode:   c.TaxCode,
		Address:   c.Address,
		Phone:     c.Phone,
		Email:     c.Email,
		Status:    c.Status,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
