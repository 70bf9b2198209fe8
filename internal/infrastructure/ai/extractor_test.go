package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const modelJSON = `{
  "seller": {"name": "Công ty An Khang", "tax_code": "0109876543"},
  "buyer": {"name": "Bình Minh", "tax_code": "0312345678"},
  "series": "1C24TAA", "number": "123", "issue_date": "2024-10-14", "currency": "",
  "lines": [
    {"code": "SP-001", "name": "Gạo ST25", "unit": "bao", "quantity": 10, "unit_price": 100, "amount": 1000, "vat_rate": 10},
    {"code": "", "name": "Dầu ăn", "unit": "chai", "quantity": "5", "unit_price": 50, "amount": 0, "vat_rate": 7.9},
    {"name": "", "quantity": 1}
  ],
  "net_amount": 1250, "tax_amount": 120, "grand_total": 1370
}`

func TestParseInvoiceJSON(t *testing.T) {
	inv, err := parseInvoiceJSON("Aquí está:\n```json\n" + modelJSON + "\n```")
	require.NoError(t, err)

	assert.Equal(t, "0109876543", inv.Seller.TaxCode)
	assert.Equal(t, "1C24TAA", inv.Series)
	assert.Equal(t, "2024-10-14", inv.IssueDate.Format("2006-01-02"))
	assert.Equal(t, "VND", inv.Currency)
	require.Len(t, inv.Lines, 2, "líneas sin nombre se descartan")
	assert.True(t, decimal.NewFromInt(250).Equal(inv.Lines[1].Amount), "importe calculado")
	assert.True(t, decimal.NewFromInt(8).Equal(inv.Lines[1].VATRate), "tasa normalizada")
	assert.True(t, decimal.NewFromInt(1370).Equal(inv.GrandTotal))
	assert.Empty(t, inv.Fingerprint)
}

func TestParseInvoiceJSON_SinJSON(t *testing.T) {
	_, err := parseInvoiceJSON("no puedo leer la imagen")
	assert.Error(t, err)
}

func TestExtractJSON(t *testing.T) {
	assert.Equal(t, `{"a":1}`, extractJSON("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, extractJSON(`texto {"a":1} fin`))
	assert.Equal(t, "", extractJSON("nada"))
}

func TestNormalizeVATRate(t *testing.T) {
	cases := map[string]string{"10": "10", "9.6": "10", "7": "8", "4": "5", "1": "0", "-3": "0"}
	for in, want := range cases {
		assert.True(t, decimal.RequireFromString(want).Equal(normalizeVATRate(decimal.RequireFromString(in))), in)
	}
}

func TestAnthropicService_ExtractInvoice(t *testing.T) {
	var got anthropicRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{{"type": "text", "text": modelJSON}},
		})
	}))
	defer srv.Close()

	s := NewAnthropicService("key", "claude-test")
	s.url = srv.URL
	inv, err := s.ExtractInvoice(context.Background(), "hd.pdf", "application/pdf", []byte("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, "123", inv.Number)

	require.Len(t, got.Messages, 1)
	assert.Equal(t, "document", got.Messages[0].Content[0].Type)
	assert.Equal(t, "JVBERg==", got.Messages[0].Content[0].Source.Data)
}

func TestAnthropicService_Errores(t *testing.T) {
	_, err := NewAnthropicService("", "m").ExtractInvoice(context.Background(), "a.png", "image/png", []byte("x"))
	assert.ErrorContains(t, err, "ANTHROPIC_API_KEY")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"type":"rate_limit_error","message":"slow down"}}`))
	}))
	defer srv.Close()
	s := NewAnthropicService("key", "m")
	s.url = srv.URL
	_, err = s.ExtractInvoice(context.Background(), "a.png", "image/png", []byte("x"))
	assert.ErrorContains(t, err, "rate_limit_error")
}

func TestGeminiService_ExtractInvoice(t *testing.T) {
	var got geminiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/gemini-test:generateContent"))
		assert.Equal(t, "key", r.URL.Query().Get("key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{"content": map[string]any{"parts": []map[string]string{{"text": modelJSON}}}}},
		})
	}))
	defer srv.Close()

	s := NewGeminiService("key", "gemini-test")
	s.baseURL = srv.URL
	inv, err := s.ExtractInvoice(context.Background(), "hd.jpg", "image/jpeg", []byte("jpg"))
	require.NoError(t, err)
	assert.Equal(t, "Công ty An Khang", inv.Seller.Name)
	require.NotNil(t, got.Contents[0].Parts[0].InlineData)
	assert.Equal(t, "image/jpeg", got.Contents[0].Parts[0].InlineData.MIMEType)
}

func TestGeminiService_RespuestaVacia(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()
	s := NewGeminiService("key", "m")
	s.baseURL = srv.URL
	_, err := s.ExtractInvoice(context.Background(), "a.png", "image/png", []byte("x"))
	assert.ErrorContains(t, err, "vacía")
}
