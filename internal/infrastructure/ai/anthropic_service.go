package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jhoicas/backoffice-api/internal/application/ports"
)

var _ ports.InvoiceExtractor = (*AnthropicService)(nil)

const (
	anthropicMessagesURL = "https://api.anthropic.com/v1/messages"
	anthropicVersion     = "2023-06-01"
)

// AnthropicService lee facturas escaneadas con la Messages API de Anthropic.
// Las imágenes van como bloque image y los PDF como bloque document.
type AnthropicService struct {
	apiKey     string
	model      string
	url        string
	httpClient *http.Client
}

// NewAnthropicService construye el adaptador. Sin apiKey cada llamada devuelve error.
func NewAnthropicService(apiKey, model string) *AnthropicService {
	return &AnthropicService{apiKey: apiKey, model: model, url: anthropicMessagesURL, httpClient: newHTTPClient()}
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string             `json:"role"`
	Content []anthropicContent `json:"content"`
}

type anthropicContent struct {
	Type   string           `json:"type"` // text | image | document
	Text   string           `json:"text,omitempty"`
	Source *anthropicSource `json:"source,omitempty"`
}

type anthropicSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

type anthropicError struct {
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// ExtractInvoice envía el documento a Claude y parsea el JSON devuelto.
func (s *AnthropicService) ExtractInvoice(ctx context.Context, fileName, mimeType string, content []byte) (*ports.ParsedInvoice, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("AI: ANTHROPIC_API_KEY no configurado")
	}
	doc := anthropicContent{
		Type:   "image",
		Source: &anthropicSource{Type: "base64", MediaType: mimeType, Data: base64.StdEncoding.EncodeToString(content)},
	}
	if mimeType == "application/pdf" {
		doc.Type = "document"
	}
	req := anthropicRequest{
		Model:     s.model,
		MaxTokens: 4096,
		System:    extractionPrompt,
		Messages: []anthropicMessage{{
			Role:    "user",
			Content: []anthropicContent{doc, {Type: "text", Text: "Archivo: " + fileName}},
		}},
	}
	headers := map[string]string{"x-api-key": s.apiKey, "anthropic-version": anthropicVersion}

	var out anthropicResponse
	if err := postJSON(ctx, s.httpClient, "Anthropic", s.url, headers, req, &out, describeAnthropicError); err != nil {
		return nil, err
	}
	for _, c := range out.Content {
		if c.Type == "text" && c.Text != "" {
			return parseInvoiceJSON(c.Text)
		}
	}
	return nil, fmt.Errorf("AI: Claude devolvió respuesta vacía")
}

func describeAnthropicError(raw []byte) string {
	var e anthropicError
	if json.Unmarshal(raw, &e) != nil || e.Error == nil {
		return ""
	}
	return e.Error.Type + ": " + e.Error.Message
}
