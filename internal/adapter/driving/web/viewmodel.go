package web

import (
	"time"

	vm "github.com/ericfisherdev/checkoutrelay/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/checkoutrelay/internal/domain/model"
)

// Status values understood by the status page stylesheet.
const (
	statusSuccess = "success"
	statusFail    = "fail"
	statusInfo    = "info"
)

// toExamineViewModel converts stored credentials and event log entries into
// the examine payload. Nil slices become empty arrays in the JSON.
func toExamineViewModel(creds []model.Credential, entries []model.LogEntry) vm.ExamineViewModel {
	out := vm.ExamineViewModel{
		Creds: make([]vm.CredentialViewModel, 0, len(creds)),
		Logs:  make([]vm.LogEntryViewModel, 0, len(entries)),
	}

	for _, c := range creds {
		out.Creds = append(out.Creds, vm.CredentialViewModel{
			TenantID:  c.TenantID,
			SecretKey: c.SecretKey,
			PublicKey: c.PublicKey,
			AccountID: c.AccountID,
			UpdatedAt: formatTime(c.UpdatedAt),
		})
	}

	for _, e := range entries {
		out.Logs = append(out.Logs, vm.LogEntryViewModel{
			What:      e.What,
			Timestamp: e.Timestamp.UnixMilli(),
		})
	}

	return out
}

// toStatusViewModel normalizes a caller-supplied status to one the page knows
// and renders text as sanitized markdown.
func toStatusViewModel(status, text string, msg *vm.PostMessageViewModel) vm.StatusViewModel {
	switch status {
	case statusSuccess, statusFail:
	default:
		status = statusInfo
	}

	return vm.StatusViewModel{
		Status:   status,
		TextHTML: RenderMarkdown(text),
		Message:  msg,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
