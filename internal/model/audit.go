package model

import "time"

const (
	ActionLogin        = "LOGIN"
	ActionLogout       = "LOGOUT"
	ActionShiftClose   = "SHIFT_CLOSE"
	ActionSaleRecorded = "SALE_RECORDED"
	ActionSaleVoided   = "SALE_VOIDED"
)

// AuditEntry is append-only; the core never updates or deletes one.
type AuditEntry struct {
	ID       string   `json:"-"`
	Revision Revision `json:"-"`

	Action    string         `json:"action"`
	UserID    string         `json:"userId"`
	Timestamp time.Time      `json:"timestamp"`
	Payload   map[string]any `json:"payload,omitempty"`
}
