// Package n8n consulta el flujo de n8n que descarga las facturas electrónicas
// recibidas por la empresa desde el portal de la autoridad tributaria.
package n8n

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jhoicas/backoffice-api/internal/application/ports"
	"github.com/jhoicas/backoffice-api/internal/domain"
)

const (
	secretHeader = "X-Webhook-Secret"
	maxResponse  = 64 << 20 // 64 MB: el flujo devuelve los XML en base64
	dateLayout   = "2006-01-02"
)

type webhookRequest struct {
	CompanyTaxCode string `json:"company_tax_code"`
	From           string `json:"from"`
	To             string `json:"to"`
}

type webhookResponse struct {
	Invoices []struct {
		XMLBase64 string `json:"xml_base64"`
		FileName  string `json:"file_name"`
	} `json:"invoices"`
	Error string `json:"error"`
}

// WebhookClient implementa ports.InvoiceFeed sobre el webhook de n8n.
type WebhookClient struct {
	url        string
	secret     string
	httpClient *http.Client
}

// NewWebhookClient construye el cliente. timeout <= 0 usa 60 s.
func NewWebhookClient(url, secret string, timeout time.Duration) *WebhookClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &WebhookClient{url: url, secret: secret, httpClient: &http.Client{Timeout: timeout}}
}

// FetchInvoices envía {company_tax_code, from, to} y decodifica los XML devueltos.
func (c *WebhookClient) FetchInvoices(ctx context.Context, in ports.FeedRequest) ([]ports.FeedDocument, error) {
	if c.url == "" {
		return nil, fmt.Errorf("%w: N8N_WEBHOOK_URL no configurado", domain.ErrExternalService)
	}
	payload, err := json.Marshal(webhookRequest{
		CompanyTaxCode: in.CompanyTaxCode,
		From:           in.From.Format(dateLayout),
		To:             in.To.Format(dateLayout),
	})
	if err != nil {
		return nil, fmt.Errorf("n8n: serializar request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("n8n: crear request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.secret != "" {
		req.Header.Set(secretHeader, c.secret)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: n8n: timeout o cancelación: %v", domain.ErrExternalService, ctx.Err())
		}
		return nil, fmt.Errorf("%w: n8n: llamada HTTP fallida: %v", domain.ErrExternalService, err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponse))
	if err != nil {
		return nil, fmt.Errorf("%w: n8n: leer respuesta: %v", domain.ErrExternalService, err)
	}

	var out webhookResponse
	jsonErr := json.Unmarshal(rawBody, &out)
	if resp.StatusCode != http.StatusOK {
		if jsonErr == nil && out.Error != "" {
			return nil, fmt.Errorf("%w: n8n HTTP %d: %s", domain.ErrExternalService, resp.StatusCode, out.Error)
		}
		return nil, fmt.Errorf("%w: n8n HTTP %d", domain.ErrExternalService, resp.StatusCode)
	}
	if jsonErr != nil {
		return nil, fmt.Errorf("%w: n8n: respuesta no es JSON: %v", domain.ErrExternalService, jsonErr)
	}

	docs := make([]ports.FeedDocument, 0, len(out.Invoices))
	for i, inv := range out.Invoices {
		data, err := base64.StdEncoding.DecodeString(inv.XMLBase64)
		if err != nil {
			return nil, fmt.Errorf("%w: n8n: factura %d (%s): base64 inválido", domain.ErrExternalService, i+1, inv.FileName)
		}
		name := inv.FileName
		if name == "" {
			name = fmt.Sprintf("factura-%d.xml", i+1)
		}
		docs = append(docs, ports.FeedDocument{FileName: name, XML: data})
	}
	return docs, nil
}

var _ ports.InvoiceFeed = (*WebhookClient)(nil)
