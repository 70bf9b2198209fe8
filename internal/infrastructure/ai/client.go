package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxResponseBytes tope de lectura de la respuesta del proveedor.
const maxResponseBytes = 1 << 20

func newHTTPClient() *http.Client {
	// El caso de uso impone además su propio context.WithTimeout.
	return &http.Client{Timeout: 90 * time.Second}
}

// postJSON envía payload como JSON y decodifica una respuesta 200 en out.
// Con otro código, describe extrae el mensaje de error del proveedor ("" si no lo reconoce).
func postJSON(ctx context.Context, c *http.Client, provider, endpoint string, headers map[string]string,
	payload, out any, describe func(raw []byte) string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("AI: serializar request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("AI: crear HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("AI: %s timeout o cancelación: %w", provider, ctx.Err())
		}
		return fmt.Errorf("AI: %s llamada HTTP fallida: %w", provider, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("AI: leer respuesta %s: %w", provider, err)
	}
	if resp.StatusCode != http.StatusOK {
		if msg := describe(raw); msg != "" {
			return fmt.Errorf("AI: %s error: %s", provider, msg)
		}
		return fmt.Errorf("AI: %s HTTP %d: %s", provider, resp.StatusCode, truncate(string(raw), 300))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("AI: deserializar respuesta %s: %w", provider, err)
	}
	return nil
}
