// Package viewmodel defines presentation-ready structs for templ components.
// View models decouple template rendering from domain model types.
package viewmodel

import "encoding/json"

// ExamineViewModel is the diagnostic payload embedded in the examine page.
// It carries stored secrets in plaintext and is only served behind the admin
// guard when one is configured.
type ExamineViewModel struct {
	Creds []CredentialViewModel `json:"creds"`
	Logs  []LogEntryViewModel   `json:"logs"`
}

// CredentialViewModel is one stored tenant credential.
type CredentialViewModel struct {
	TenantID  string `json:"tenantId"`
	SecretKey string `json:"secretKey"`
	PublicKey string `json:"publicKey"`
	AccountID string `json:"accountId,omitempty"`
	UpdatedAt string `json:"updatedAt"`
}

// LogEntryViewModel is one event log entry. Timestamp is Unix milliseconds.
type LogEntryViewModel struct {
	What      json.RawMessage `json:"what"`
	Timestamp int64           `json:"timestamp"`
}

// StatusViewModel holds what the status page shows, plus an optional message
// posted to the window that opened it.
type StatusViewModel struct {
	Status   string
	TextHTML string
	Message  *PostMessageViewModel
}

// PostMessageViewModel describes a window.opener.postMessage call.
// CloseAfterMs > 0 closes the window after that delay.
type PostMessageViewModel struct {
	Data         any    `json:"data"`
	TargetOrigin string `json:"targetOrigin"`
	CloseAfterMs int    `json:"closeAfterMs"`
}

// AuthSuccessMessage is posted to the opener after a linked account is stored.
type AuthSuccessMessage struct {
	Type    string             `json:"type"`
	Payload AuthSuccessPayload `json:"payload"`
}

// AuthSuccessPayload identifies the new tenant to the widget.
type AuthSuccessPayload struct {
	ID          string `json:"id"`
	PK          string `json:"pk"`
	AccountName string `json:"accountName"`
}

// AuthFailureMessage is posted to the opener when linking fails.
type AuthFailureMessage struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}
