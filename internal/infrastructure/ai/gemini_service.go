package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jhoicas/backoffice-api/internal/application/ports"
)

var _ ports.InvoiceExtractor = (*GeminiService)(nil)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

// GeminiService lee facturas escaneadas con generateContent de Google Gemini.
// Pide responseMimeType application/json, así que la respuesta no trae markdown.
type GeminiService struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewGeminiService construye el adaptador. Sin apiKey cada llamada devuelve error.
func NewGeminiService(apiKey, model string) *GeminiService {
	return &GeminiService{apiKey: apiKey, model: model, baseURL: geminiBaseURL, httpClient: newHTTPClient()}
}

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"system_instruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  genConfig       `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
	Role  string       `json:"role,omitempty"`
}

type geminiPart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

type genConfig struct {
	ResponseMIMEType string  `json:"responseMimeType"`
	Temperature      float32 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

type geminiError struct {
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ExtractInvoice envía el documento como inline_data y parsea el JSON devuelto.
func (s *GeminiService) ExtractInvoice(ctx context.Context, fileName, mimeType string, content []byte) (*ports.ParsedInvoice, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("AI: GEMINI_API_KEY no configurado")
	}
	req := geminiRequest{
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: extractionPrompt}}},
		Contents: []geminiContent{{
			Role: "user",
			Parts: []geminiPart{
				{InlineData: &inlineData{MIMEType: mimeType, Data: base64.StdEncoding.EncodeToString(content)}},
				{Text: "Archivo: " + fileName},
			},
		}},
		GenerationConfig: genConfig{ResponseMIMEType: "application/json", Temperature: 0.1, MaxOutputTokens: 4096},
	}
	endpoint := fmt.Sprintf("%s/%s:generateContent?key=%s", s.baseURL, url.PathEscape(s.model), url.QueryEscape(s.apiKey))

	var out geminiResponse
	if err := postJSON(ctx, s.httpClient, "Gemini", endpoint, nil, req, &out, describeGeminiError); err != nil {
		return nil, err
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("AI: Gemini devolvió respuesta vacía")
	}
	return parseInvoiceJSON(out.Candidates[0].Content.Parts[0].Text)
}

func describeGeminiError(raw []byte) string {
	var e geminiError
	if json.Unmarshal(raw, &e) != nil || e.Error == nil {
		return ""
	}
	return fmt.Sprintf("%d %s", e.Error.Code, e.Error.Message)
}
