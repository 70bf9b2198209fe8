package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/invoice"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
	"github.com/jhoicas/backoffice-api/pkg/taxcode"
)

// codeAttempts reintentos cuando el código generado choca con uno digitado a mano.
const codeAttempts = 5

// PartnerUseCase CRUD de clientes y proveedores. Kind fija el tipo que atiende la instancia.
type PartnerUseCase struct {
	kind      string
	repo      repository.PartnerRepository
	sequences repository.SequenceRepository
}

// NewPartnerUseCase construye el caso de uso para CUSTOMER o SUPPLIER.
func NewPartnerUseCase(kind string, repo repository.PartnerRepository, sequences repository.SequenceRepository) *PartnerUseCase {
	return &PartnerUseCase{kind: kind, repo: repo, sequences: sequences}
}

// Kind tipo de contraparte que maneja el caso de uso.
func (uc *PartnerUseCase) Kind() string { return uc.kind }

// List búsqueda sin tildes sobre código, nombre, MST y teléfono.
func (uc *PartnerUseCase) List(ctx context.Context, companyID string, q dto.ListQuery) (*dto.PartnerListResponse, error) {
	q.DefaultPage()
	list, total, err := uc.repo.List(ctx, companyID, uc.kind, ToListParams(q))
	if err != nil {
		return nil, err
	}
	items := make([]dto.PartnerResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *PartnerResponse(p))
	}
	return &dto.PartnerListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset, Total: total},
	}, nil
}

// Create crea la contraparte; sin código se genera KH0001 / NCC0001.
func (uc *PartnerUseCase) Create(ctx context.Context, companyID string, in dto.PartnerRequest) (*dto.PartnerResponse, error) {
	now := time.Now()
	p := &entity.Partner{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		Kind:      uc.kind,
		CreatedAt: now,
		UpdatedAt: now,
	}
	uc.apply(p, in)
	if err := uc.checkTaxCode(ctx, p); err != nil {
		return nil, err
	}
	if p.Code != "" {
		if err := uc.repo.Create(ctx, p); err != nil {
			return nil, err
		}
		return PartnerResponse(p), nil
	}
	if err := CreatePartnerWithCode(ctx, uc.repo, uc.sequences, p); err != nil {
		return nil, err
	}
	return PartnerResponse(p), nil
}

// CreatePartnerWithCode genera el código por secuencia de empresa y tipo y reintenta si ya existe.
// No usar dentro de una transacción: un INSERT fallido la aborta y el reintento no sirve.
func CreatePartnerWithCode(ctx context.Context, repo repository.PartnerRepository, seq repository.SequenceRepository, p *entity.Partner) error {
	prefix := entity.PartnerCodePrefix(p.Kind)
	for i := 0; i < codeAttempts; i++ {
		n, err := seq.Next(ctx, p.CompanyID, prefix)
		if err != nil {
			return err
		}
		p.Code = invoice.FormatPartnerCode(prefix, n)
		err = repo.Create(ctx, p)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrDuplicate) {
			return err
		}
		// El choque puede venir del MST; solo se reintenta si el código está tomado.
		if p.TaxCode != "" {
			if other, _ := repo.GetByTaxCode(ctx, p.CompanyID, p.Kind, p.TaxCode); other != nil {
				return err
			}
		}
	}
	return fmt.Errorf("%w: no se pudo generar un código libre", domain.ErrConflict)
}

// GetByID obtiene la contraparte.
func (uc *PartnerUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.PartnerResponse, error) {
	p, err := uc.get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	return PartnerResponse(p), nil
}

// Update reemplaza los datos editables. Un código vacío conserva el actual.
func (uc *PartnerUseCase) Update(ctx context.Context, companyID, id string, in dto.PartnerRequest) (*dto.PartnerResponse, error) {
	p, err := uc.get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	code := p.Code
	uc.apply(p, in)
	if p.Code == "" {
		p.Code = code
	}
	if err := uc.checkTaxCode(ctx, p); err != nil {
		return nil, err
	}
	p.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return PartnerResponse(p), nil
}

// Delete elimina la contraparte si ninguna factura la referencia (ErrInUse en otro caso).
func (uc *PartnerUseCase) Delete(ctx context.Context, companyID, id string) error {
	if _, err := uc.get(ctx, companyID, id); err != nil {
		return err
	}
	used, err := uc.repo.IsReferenced(ctx, companyID, uc.kind, id)
	if err != nil {
		return err
	}
	if used {
		return domain.ErrInUse
	}
	return uc.repo.Delete(ctx, companyID, uc.kind, id)
}

func (uc *PartnerUseCase) get(ctx context.Context, companyID, id string) (*entity.Partner, error) {
	p, err := uc.repo.GetByID(ctx, companyID, uc.kind, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (uc *PartnerUseCase) checkTaxCode(ctx context.Context, p *entity.Partner) error {
	if p.TaxCode == "" {
		return nil
	}
	if err := taxcode.Validate(p.TaxCode); err != nil {
		return domain.Invalid("tax_code", "la MST debe tener 10 dígitos, 10-3 para sucursales o 12 dígitos")
	}
	p.TaxCode = taxcode.Normalize(p.TaxCode)
	other, err := uc.repo.GetByTaxCode(ctx, p.CompanyID, p.Kind, p.TaxCode)
	if err != nil {
		return err
	}
	if other != nil && other.ID != p.ID {
		return fmt.Errorf("%w: el MST %s ya está registrado (%s)", domain.ErrDuplicate, p.TaxCode, other.Code)
	}
	return nil
}

func (uc *PartnerUseCase) apply(p *entity.Partner, in dto.PartnerRequest) {
	p.Code = strings.ToUpper(strings.TrimSpace(in.Code))
	p.Name = strings.TrimSpace(in.Name)
	p.TaxCode = strings.TrimSpace(in.TaxCode)
	p.Phone = strings.TrimSpace(in.Phone)
	p.Email = strings.TrimSpace(in.Email)
	p.Address = strings.TrimSpace(in.Address)
	p.Note = in.Note
	if uc.kind == entity.PartnerSupplier {
		p.ContactPerson = strings.TrimSpace(in.ContactPerson)
		p.BankAccount = strings.TrimSpace(in.BankAccount)
	}
}

// PartnerResponse mapea la entidad a su DTO.
func PartnerResponse(p *entity.Partner) *dto.PartnerResponse {
	if p == nil {
		return nil
	}
	return &dto.PartnerResponse{
		ID:            p.ID,
		Kind:          p.Kind,
		Code:          p.Code,
		Name:          p.Name,
		TaxCode:       p.TaxCode,
		Phone:         p.Phone,
		Email:         p.Email,
		Address:       p.Address,
		ContactPerson: p.ContactPerson,
		BankAccount:   p.BankAccount,
		Note:          p.Note,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
