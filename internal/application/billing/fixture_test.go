package billing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/backoffice-api/internal/application/apptest"
	"github.com/jhoicas/backoffice-api/internal/application/inventory"
	"github.com/jhoicas/backoffice-api/internal/application/usecase"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

var fixedNow = time.Date(2024, 10, 15, 10, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

// fixture empresa con un proveedor, un cliente y dos productos sin existencias.
type fixture struct {
	db        *apptest.DB
	tx        *apptest.TxRunner
	companyID string
	userID    string
	supplier  *entity.Partner
	customer  *entity.Partner
	p1        *entity.Product
	p2        *entity.Product

	imports     *ImportUseCase
	exports     *ExportUseCase
	debts       *DebtUseCase
	attachments *usecase.AttachmentUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := apptest.NewDB()
	f := &fixture{db: db, tx: &apptest.TxRunner{DB: db}, companyID: uuid.NewString(), userID: uuid.NewString()}

	db.Companies[f.companyID] = &entity.Company{
		ID: f.companyID, Name: "Công ty TNHH Minh Phát", TaxCode: "0312345678",
		Status: entity.CompanyStatusActive, CreatedAt: fixedNow,
	}
	f.supplier = &entity.Partner{ID: uuid.NewString(), CompanyID: f.companyID, Kind: entity.PartnerSupplier,
		Code: "NCC0001", Name: "Nhà cung cấp An Khang", TaxCode: "0109876543"}
	f.customer = &entity.Partner{ID: uuid.NewString(), CompanyID: f.companyID, Kind: entity.PartnerCustomer,
		Code: "KH0001", Name: "Cửa hàng Bình An", TaxCode: "0301111222"}
	db.Partners[f.supplier.ID] = f.supplier
	db.Partners[f.customer.ID] = f.customer

	f.p1 = &entity.Product{ID: uuid.NewString(), CompanyID: f.companyID, SKU: "SP-001", Name: "Gạo ST25 5kg",
		Unit: "bao", Price: dec("150"), VATRate: dec("10"), MinStock: dec("5")}
	f.p2 = &entity.Product{ID: uuid.NewString(), CompanyID: f.companyID, SKU: "SP-002", Name: "Nước mắm 500ml",
		Unit: "chai", Price: dec("40"), VATRate: dec("8")}
	db.Products[f.p1.ID] = f.p1
	db.Products[f.p2.ID] = f.p2

	stock := inventory.NewStockService()
	partners := &apptest.PartnerRepo{DB: db}
	f.imports = NewImportUseCase(f.tx, &apptest.ImportRepo{DB: db}, partners, &apptest.AttachmentRepo{DB: db}, stock, time.UTC)
	f.imports.now = func() time.Time { return fixedNow }
	f.exports = NewExportUseCase(f.tx, &apptest.ExportRepo{DB: db}, partners, &apptest.CompanyRepo{DB: db}, stock, IssuerProfile{}, time.UTC)
	f.exports.now = func() time.Time { return fixedNow }
	f.debts = NewDebtUseCase(f.tx, &apptest.DebtRepo{DB: db}, partners, time.UTC)
	f.debts.now = func() time.Time { return fixedNow }
	return f
}

// product estado actual del producto en el almacén en memoria.
func (f *fixture) product(id string) *entity.Product {
	return f.db.Products[id]
}

// debtOf deuda generada por una factura.
func (f *fixture) debtOf(invoiceType, invoiceID string) *entity.Debt {
	for _, d := range f.db.Debts {
		if d.InvoiceType == invoiceType && d.InvoiceID == invoiceID {
			return d
		}
	}
	return nil
}

func assertDec(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	if !dec(want).Equal(got) {
		t.Errorf("se esperaba %s, se obtuvo %s %v", want, got.String(), msgAndArgs)
	}
}
