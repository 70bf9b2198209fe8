package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jhoicas/backoffice-api/internal/application/apptest"
	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/application/ports"
	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFeed struct {
	docs     []ports.FeedDocument
	err      error
	requests []ports.FeedRequest
	started  chan struct{} // se cierra al entrar a FetchInvoices
	block    chan struct{} // si no es nil, FetchInvoices espera a que se cierre
}

func (f *fakeFeed) FetchInvoices(ctx context.Context, req ports.FeedRequest) ([]ports.FeedDocument, error) {
	f.requests = append(f.requests, req)
	if f.started != nil {
		close(f.started)
	}
	if f.block != nil {
		<-f.block
	}
	return f.docs, f.err
}

func (f *fixture) syncUseCase(feed ports.InvoiceFeed, parser fakeParser) *SyncUseCase {
	xml, _ := f.xmlUseCase(parser)
	uc := NewSyncUseCase(feed, xml, &apptest.CompanyRepo{DB: f.db}, &apptest.SyncRunRepo{DB: f.db}, time.UTC)
	uc.now = func() time.Time { return fixedNow }
	return uc
}

func TestSyncInvoices_ImportaOmiteYFalla(t *testing.T) {
	f := newFixture(t)
	bad := f.sampleInvoice("3")
	bad.Lines = nil
	parser := fakeParser{"a": f.sampleInvoice("1"), "b": f.sampleInvoice("2"), "c": bad}
	feed := &fakeFeed{docs: []ports.FeedDocument{
		{FileName: "1.xml", XML: []byte("a")},
		{FileName: "1-copia.xml", XML: []byte("a")},
		{FileName: "2.xml", XML: []byte("b")},
		{FileName: "3.xml", XML: []byte("c")},
	}}
	uc := f.syncUseCase(feed, parser)

	run, err := uc.SyncInvoices(context.Background(), f.companyID, f.userID, dto.SyncInvoicesRequest{From: "2024-10-01", To: "2024-10-15"})
	require.NoError(t, err)

	assert.Equal(t, entity.SyncPartial, run.Status)
	assert.Equal(t, 4, run.Received)
	assert.Equal(t, 2, run.Imported)
	assert.Equal(t, 1, run.Skipped)
	assert.Equal(t, 1, run.Failed)
	require.Len(t, run.Errors, 1)
	assert.Contains(t, run.Errors[0], "3.xml")
	require.NotNil(t, run.FinishedAt)

	require.Len(t, feed.requests, 1)
	assert.Equal(t, "0312345678", feed.requests[0].CompanyTaxCode)
	assert.Equal(t, "2024-10-15", feed.requests[0].To.Format(dto.DateLayout))

	for _, inv := range f.db.Imports {
		assert.Equal(t, entity.InvoiceSourceSync, inv.Source)
	}

	runs, err := uc.Runs(context.Background(), f.companyID)
	require.NoError(t, err)
	require.Len(t, runs.Items, 1)
	assert.Equal(t, entity.SyncTriggerManual, runs.Items[0].Trigger)
}

func TestSyncInvoices_FalloDelFlujo(t *testing.T) {
	f := newFixture(t)
	uc := f.syncUseCase(&fakeFeed{err: errors.New("n8n: 502")}, fakeParser{})

	run, err := uc.SyncInvoices(context.Background(), f.companyID, f.userID, dto.SyncInvoicesRequest{From: "2024-10-01", To: "2024-10-02"})
	require.NoError(t, err)
	assert.Equal(t, entity.SyncFailed, run.Status)
	assert.Equal(t, []string{"n8n: 502"}, run.Errors)
}

func TestSyncInvoices_RangoInvalido(t *testing.T) {
	f := newFixture(t)
	uc := f.syncUseCase(&fakeFeed{}, fakeParser{})

	_, err := uc.SyncInvoices(context.Background(), f.companyID, f.userID, dto.SyncInvoicesRequest{From: "2024-10-05", To: "2024-10-01"})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	_, err = uc.SyncInvoices(context.Background(), f.companyID, f.userID, dto.SyncInvoicesRequest{From: "ayer", To: "2024-10-01"})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestSyncInvoices_UnaCorridaPorEmpresa(t *testing.T) {
	f := newFixture(t)
	feed := &fakeFeed{started: make(chan struct{}), block: make(chan struct{})}
	uc := f.syncUseCase(feed, fakeParser{})
	req := dto.SyncInvoicesRequest{From: "2024-10-01", To: "2024-10-02"}

	done := make(chan error, 1)
	go func() {
		_, err := uc.SyncInvoices(context.Background(), f.companyID, f.userID, req)
		done <- err
	}()
	select {
	case <-feed.started:
	case <-time.After(time.Second):
		t.Fatal("la primera sincronización no llegó al flujo")
	}

	_, err := uc.SyncInvoices(context.Background(), f.companyID, f.userID, req)
	assert.True(t, errors.Is(err, domain.ErrConflict))

	close(feed.block)
	require.NoError(t, <-done)
}

func TestSyncAll_SoloEmpresasConMST(t *testing.T) {
	f := newFixture(t)
	other := &entity.Company{ID: "sin-mst", Name: "Sin MST", Status: entity.CompanyStatusActive}
	f.db.Companies[other.ID] = other
	feed := &fakeFeed{}
	uc := f.syncUseCase(feed, fakeParser{})

	require.NoError(t, uc.SyncAll(context.Background()))
	require.Len(t, feed.requests, 1)
	assert.Equal(t, "2024-10-13", feed.requests[0].From.Format(dto.DateLayout))
	assert.Equal(t, "2024-10-15", feed.requests[0].To.Format(dto.DateLayout))

	runs, err := uc.Runs(context.Background(), f.companyID)
	require.NoError(t, err)
	require.Len(t, runs.Items, 1)
	assert.Equal(t, entity.SyncTriggerCron, runs.Items[0].Trigger)
	assert.Equal(t, entity.SyncSuccess, runs.Items[0].Status)
}

func TestSyncInvoices_OmiteFacturasDeOtroComprador(t *testing.T) {
	f := newFixture(t)
	ours := f.sampleInvoice("1")
	ours.Buyer.TaxCode = "MST 0312345678"
	foreign := f.sampleInvoice("2")
	foreign.Buyer.TaxCode = "0399999999"
	feed := &fakeFeed{docs: []ports.FeedDocument{
		{FileName: "1.xml", XML: []byte("a")},
		{FileName: "ajena.xml", XML: []byte("b")},
	}}
	uc := f.syncUseCase(feed, fakeParser{"a": ours, "b": foreign})

	run, err := uc.SyncInvoices(context.Background(), f.companyID, f.userID, dto.SyncInvoicesRequest{From: "2024-10-01", To: "2024-10-15"})
	require.NoError(t, err)

	assert.Equal(t, entity.SyncSuccess, run.Status)
	assert.Equal(t, 1, run.Imported)
	assert.Equal(t, 1, run.Skipped)
	assert.Zero(t, run.Failed)
	require.Len(t, run.Errors, 1)
	assert.Contains(t, run.Errors[0], "ajena.xml")
	require.Len(t, f.db.Imports, 1)
	for _, inv := range f.db.Imports {
		assert.Equal(t, "1", inv.Number)
	}
}
