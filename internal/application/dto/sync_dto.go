package dto

import "time"

// SyncInvoicesRequest body de POST /api/sync/invoices. Fechas YYYY-MM-DD inclusivas.
type SyncInvoicesRequest struct {
	From string `json:"from" validate:"required,datetime=2006-01-02"`
	To   string `json:"to" validate:"required,datetime=2006-01-02"`
}

// SyncRunResponse resultado de una sincronización.
type SyncRunResponse struct {
	ID         string     `json:"id"`
	From       string     `json:"from"`
	To         string     `json:"to"`
	Trigger    string     `json:"trigger"`
	Status     string     `json:"status"`
	Received   int        `json:"received"`
	Imported   int        `json:"imported"`
	Skipped    int        `json:"skipped"`
	Failed     int        `json:"failed"`
	Errors     []string   `json:"errors,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// SyncRunListResponse corridas recientes.
type SyncRunListResponse struct {
	Items []SyncRunResponse `json:"items"`
}
