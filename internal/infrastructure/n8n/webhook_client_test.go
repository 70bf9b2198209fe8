package n8n

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/backoffice-api/internal/application/ports"
	"github.com/jhoicas/backoffice-api/internal/domain"
)

var feedReq = ports.FeedRequest{
	CompanyTaxCode: "0312345678",
	From:           time.Date(2024, 10, 13, 0, 0, 0, 0, time.UTC),
	To:             time.Date(2024, 10, 15, 0, 0, 0, 0, time.UTC),
}

func TestFetchInvoices(t *testing.T) {
	var got webhookRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "s3cret", r.Header.Get(secretHeader))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]any{"invoices": []map[string]string{
			{"xml_base64": base64.StdEncoding.EncodeToString([]byte("<HDon/>")), "file_name": "hd-1.xml"},
			{"xml_base64": base64.StdEncoding.EncodeToString([]byte("<HDon/>"))},
		}})
	}))
	defer srv.Close()

	docs, err := NewWebhookClient(srv.URL, "s3cret", time.Second).FetchInvoices(context.Background(), feedReq)
	require.NoError(t, err)
	assert.Equal(t, webhookRequest{CompanyTaxCode: "0312345678", From: "2024-10-13", To: "2024-10-15"}, got)
	require.Len(t, docs, 2)
	assert.Equal(t, "hd-1.xml", docs[0].FileName)
	assert.Equal(t, "factura-2.xml", docs[1].FileName)
	assert.Equal(t, []byte("<HDon/>"), docs[0].XML)
}

func TestFetchInvoices_Errores(t *testing.T) {
	_, err := NewWebhookClient("", "", 0).FetchInvoices(context.Background(), feedReq)
	assert.True(t, errors.Is(err, domain.ErrExternalService))

	cases := map[string]http.HandlerFunc{
		"http 500": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"portal caído"}`))
		},
		"no json": func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("<html>")) },
		"base64": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"invoices":[{"xml_base64":"%%%","file_name":"x.xml"}]}`))
		},
	}
	for name, h := range cases {
		srv := httptest.NewServer(h)
		_, err := NewWebhookClient(srv.URL, "", time.Second).FetchInvoices(context.Background(), feedReq)
		srv.Close()
		assert.True(t, errors.Is(err, domain.ErrExternalService), name)
	}
}
