package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jhoicas/backoffice-api/internal/application/apptest"
	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/application/usecase"
	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompanyCreate_NormalizaMST(t *testing.T) {
	db := apptest.NewDB()
	uc := usecase.NewCompanyUseCase(&apptest.CompanyRepo{DB: db})
	ctx := context.Background()

	c, err := uc.Create(ctx, dto.CreateCompanyRequest{Name: " Công ty TNHH Minh Phát ", TaxCode: "MST 0312345678"})
	require.NoError(t, err)
	assert.Equal(t, "0312345678", c.TaxCode)
	assert.Equal(t, "Công ty TNHH Minh Phát", c.Name)
	assert.Equal(t, entity.CompanyStatusActive, db.Companies[c.ID].Status)

	_, err = uc.Create(ctx, dto.CreateCompanyRequest{Name: "Otra", TaxCode: "0312345678"})
	assert.True(t, errors.Is(err, domain.ErrDuplicate))

	_, err = uc.Create(ctx, dto.CreateCompanyRequest{Name: "Mal", TaxCode: "12345"})
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "tax_code", verr.Field)
}

func TestCompanyGetYUpdate_SoloEmpresaPropia(t *testing.T) {
	db := apptest.NewDB()
	uc := usecase.NewCompanyUseCase(&apptest.CompanyRepo{DB: db})
	ctx := context.Background()

	c, err := uc.Create(ctx, dto.CreateCompanyRequest{Name: "Minh Phát", TaxCode: "0312345678"})
	require.NoError(t, err)

	_, err = uc.GetByID(ctx, "otra-empresa", c.ID)
	assert.True(t, errors.Is(err, domain.ErrForbidden))

	phone := "028 3822 1234"
	branch := "0312345678-001"
	out, err := uc.Update(ctx, c.ID, c.ID, dto.UpdateCompanyRequest{Phone: &phone, TaxCode: &branch})
	require.NoError(t, err)
	assert.Equal(t, phone, out.Phone)
	assert.Equal(t, branch, out.TaxCode)
}
