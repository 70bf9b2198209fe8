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

func partnerUseCases(db *apptest.DB) (customers, suppliers *usecase.PartnerUseCase) {
	repo, seq := &apptest.PartnerRepo{DB: db}, &apptest.SequenceRepo{DB: db}
	return usecase.NewPartnerUseCase(entity.PartnerCustomer, repo, seq), usecase.NewPartnerUseCase(entity.PartnerSupplier, repo, seq)
}

func TestPartnerCreate_CodigoAutomaticoPorTipo(t *testing.T) {
	db := apptest.NewDB()
	customers, suppliers := partnerUseCases(db)
	ctx := context.Background()

	c1, err := customers.Create(ctx, companyID, dto.PartnerRequest{Name: "Cửa hàng Bình An", ContactPerson: "no aplica"})
	require.NoError(t, err)
	c2, err := customers.Create(ctx, companyID, dto.PartnerRequest{Name: "Tạp hóa Hồng"})
	require.NoError(t, err)
	s1, err := suppliers.Create(ctx, companyID, dto.PartnerRequest{Name: "An Khang", ContactPerson: " Chị Lan ", BankAccount: "0071000123456"})
	require.NoError(t, err)

	assert.Equal(t, "KH0001", c1.Code)
	assert.Equal(t, "KH0002", c2.Code)
	assert.Equal(t, "NCC0001", s1.Code)
	assert.Empty(t, c1.ContactPerson, "solo proveedores")
	assert.Equal(t, "Chị Lan", s1.ContactPerson)
}

func TestPartnerCreate_SaltaCodigosManuales(t *testing.T) {
	db := apptest.NewDB()
	customers, _ := partnerUseCases(db)
	ctx := context.Background()

	_, err := customers.Create(ctx, companyID, dto.PartnerRequest{Code: "kh0001", Name: "Manual"})
	require.NoError(t, err)
	auto, err := customers.Create(ctx, companyID, dto.PartnerRequest{Name: "Auto"})
	require.NoError(t, err)
	assert.Equal(t, "KH0002", auto.Code)
}

func TestPartnerCreate_MSTDuplicadaPorTipo(t *testing.T) {
	db := apptest.NewDB()
	customers, suppliers := partnerUseCases(db)
	ctx := context.Background()

	_, err := customers.Create(ctx, companyID, dto.PartnerRequest{Name: "A", TaxCode: "0301111222"})
	require.NoError(t, err)
	_, err = customers.Create(ctx, companyID, dto.PartnerRequest{Name: "B", TaxCode: "0301111222"})
	assert.True(t, errors.Is(err, domain.ErrDuplicate))

	// La misma MST puede ser cliente y proveedor.
	_, err = suppliers.Create(ctx, companyID, dto.PartnerRequest{Name: "A", TaxCode: "0301111222"})
	assert.NoError(t, err)
}

func TestPartnerUpdateYDelete(t *testing.T) {
	db := apptest.NewDB()
	customers, suppliers := partnerUseCases(db)
	ctx := context.Background()

	c, err := customers.Create(ctx, companyID, dto.PartnerRequest{Name: "A"})
	require.NoError(t, err)

	out, err := customers.Update(ctx, companyID, c.ID, dto.PartnerRequest{Name: "A mới", Phone: "0909 123 456"})
	require.NoError(t, err)
	assert.Equal(t, "KH0001", out.Code, "código vacío conserva el actual")
	assert.Equal(t, "A mới", out.Name)

	_, err = suppliers.GetByID(ctx, companyID, c.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound), "un cliente no se ve como proveedor")

	db.Exports["x"] = &entity.ExportInvoice{ID: "x", CompanyID: companyID, CustomerID: c.ID}
	assert.True(t, errors.Is(customers.Delete(ctx, companyID, c.ID), domain.ErrInUse))

	delete(db.Exports, "x")
	require.NoError(t, customers.Delete(ctx, companyID, c.ID))
}

func TestPartnerList_BusquedaSinTildes(t *testing.T) {
	db := apptest.NewDB()
	customers, _ := partnerUseCases(db)
	ctx := context.Background()
	for _, n := range []string{"Cửa hàng Bình An", "Siêu thị Đông Á", "Tạp hóa Hồng"} {
		_, err := customers.Create(ctx, companyID, dto.PartnerRequest{Name: n})
		require.NoError(t, err)
	}

	list, err := customers.List(ctx, companyID, dto.ListQuery{Search: "dong a"})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Siêu thị Đông Á", list.Items[0].Name)
}
