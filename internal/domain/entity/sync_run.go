package entity

import "time"

// Estados de una corrida de sincronización.
const (
	SyncRunning = "RUNNING"
	SyncSuccess = "SUCCESS"
	SyncPartial = "PARTIAL"
	SyncFailed  = "FAILED"
)

// Disparadores de sincronización.
const (
	SyncTriggerManual = "MANUAL"
	SyncTriggerCron   = "CRON"
)

// SyncRun registro de una sincronización de facturas con n8n.
type SyncRun struct {
	ID         string
	CompanyID  string
	From       time.Time
	To         time.Time
	Trigger    string
	Status     string
	Received   int
	Imported   int
	Skipped    int
	Failed     int
	Errors     []string
	StartedAt  time.Time
	FinishedAt *time.Time
	CreatedBy  string
}
