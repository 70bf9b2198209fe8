package postgres

import (
	"context"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
	"github.com/jhoicas/backoffice-api/pkg/config"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestRepositoriesIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("integración con Docker omitida en modo -short")
	}
	ctx := context.Background()
	pool := setupPostgres(t)

	require.NoError(t, Migrate(ctx, pool))

	now := time.Now().UTC()
	company := &entity.Company{ID: uuid.NewString(), Name: "Công ty TNHH Hòa Bình", TaxCode: "0101234567",
		Status: entity.CompanyStatusActive, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, NewCompanyRepository(pool).Create(ctx, company))

	// ── Consecutivos ──────────────────────────────────────────────────────────
	seq := NewSequenceRepository(pool)
	for want := int64(1); want <= 3; want++ {
		got, err := seq.Next(ctx, company.ID, "KH")
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	// ── Contrapartes: búsqueda sin acentos y unicidad de MST ──────────────────
	partners := NewPartnerRepository(pool)
	supplier := &entity.Partner{ID: uuid.NewString(), CompanyID: company.ID, Kind: entity.PartnerSupplier,
		Code: "NCC0001", Name: "Đại lý Nguyễn Văn Á", TaxCode: "0309876543", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, partners.Create(ctx, supplier))

	dup := *supplier
	dup.ID, dup.Code = uuid.NewString(), "NCC0002"
	require.ErrorIs(t, partners.Create(ctx, &dup), domain.ErrDuplicate)

	found, total, err := partners.List(ctx, company.ID, entity.PartnerSupplier, repository.ListParams{Search: "dai ly nguyen", Limit: 10})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, supplier.ID, found[0].ID)

	// ── Producto + compra dentro de una transacción ───────────────────────────
	product := &entity.Product{ID: uuid.NewString(), CompanyID: company.ID, SKU: "SP-01", Name: "Gạo ST25",
		VATRate: decimal.NewFromInt(5), MinStock: decimal.NewFromInt(10), CreatedAt: now, UpdatedAt: now}
	require.NoError(t, NewProductRepository(pool).Create(ctx, product))

	invID := uuid.NewString()
	runner := NewTxRunner(pool)
	err = runner.Run(ctx, func(s repository.TxStores) error {
		p, err := s.Products.GetForUpdate(ctx, company.ID, product.ID)
		if err != nil {
			return err
		}
		qty := decimal.NewFromInt(4)
		if err := s.Products.UpdateStockAndCost(ctx, p.ID, p.Stock.Add(qty), decimal.NewFromInt(20000)); err != nil {
			return err
		}
		inv := &entity.ImportInvoice{ID: invID, CompanyID: company.ID, SupplierID: supplier.ID, SupplierName: supplier.Name,
			Series: "1C24TAA", Number: "0000123", IssueDate: now, Source: entity.InvoiceSourceManual,
			Status: entity.InvoiceStatusCompleted, NetAmount: decimal.NewFromInt(80000), TaxAmount: decimal.NewFromInt(4000),
			GrandTotal: decimal.NewFromInt(84000), CreatedAt: now, UpdatedAt: now,
			Lines: []entity.InvoiceLine{{LineNo: 1, ProductID: p.ID, SKU: p.SKU, ProductName: p.Name, Quantity: qty,
				UnitPrice: decimal.NewFromInt(20000), VATRate: decimal.NewFromInt(5), Subtotal: decimal.NewFromInt(80000),
				TaxAmount: decimal.NewFromInt(4000), Total: decimal.NewFromInt(84000)}}}
		if err := s.Imports.Create(ctx, inv); err != nil {
			return err
		}
		due := now.AddDate(0, 0, -3)
		return s.Debts.Create(ctx, &entity.Debt{ID: uuid.NewString(), CompanyID: company.ID, Type: entity.DebtPayable,
			PartnerID: supplier.ID, InvoiceType: entity.InvoiceTypeImport, InvoiceID: invID, InvoiceNumber: inv.Number,
			Amount: inv.GrandTotal, DueDate: &due, Status: entity.DebtUnpaid, CreatedAt: now, UpdatedAt: now})
	})
	require.NoError(t, err)

	got, err := NewImportInvoiceRepository(pool).GetByID(ctx, company.ID, invID)
	require.NoError(t, err)
	require.Len(t, got.Lines, 1)
	require.Equal(t, "Đại lý Nguyễn Văn Á", got.SupplierName)

	low, _, err := NewProductRepository(pool).List(ctx, company.ID, repository.ProductFilter{LowStock: true, ListParams: repository.ListParams{Limit: 10}})
	require.NoError(t, err)
	require.Len(t, low, 1)

	referenced, err := partners.IsReferenced(ctx, company.ID, entity.PartnerSupplier, supplier.ID)
	require.NoError(t, err)
	require.True(t, referenced)

	// ── Mora ──────────────────────────────────────────────────────────────────
	n, err := NewDebtRepository(pool).MarkOverdue(ctx, now)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	totals, err := NewReportRepository(pool).GetDebtTotals(ctx, company.ID)
	require.NoError(t, err)
	require.Equal(t, 1, totals.OverduePayables)
	require.True(t, totals.PayableOutstanding.Equal(decimal.NewFromInt(84000)))
}

func setupPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dpool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("docker no disponible: %v", err)
	}
	if err := dpool.Client.Ping(); err != nil {
		t.Skipf("docker no disponible: %v", err)
	}

	resource, err := dpool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_PASSWORD=postgres",
			"POSTGRES_USER=postgres",
			"POSTGRES_DB=backoffice_test",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = dpool.Purge(resource) })

	port, err := strconv.Atoi(resource.GetPort("5432/tcp"))
	require.NoError(t, err)

	cfg := config.DBConfig{Host: "localhost", Port: port, User: "postgres", Password: "postgres",
		DBName: "backoffice_test", SSLMode: "disable", MaxConns: 5}

	var pool *pgxpool.Pool
	dpool.MaxWait = 60 * time.Second
	err = dpool.Retry(func() error {
		p, err := NewPool(context.Background(), cfg)
		if err != nil {
			return fmt.Errorf("esperando postgres: %w", err)
		}
		pool = p
		return nil
	})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}
