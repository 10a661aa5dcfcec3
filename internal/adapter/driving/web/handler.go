// Package web implements the HTML driving adapter using templ components:
// the diagnostic examine page, the flush action, the status page, and the
// OAuth callback that relays its result to the opening window.
package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/ericfisherdev/checkoutrelay/internal/adapter/driving/web/templates"
	"github.com/ericfisherdev/checkoutrelay/internal/adapter/driving/web/templates/pages"
	vm "github.com/ericfisherdev/checkoutrelay/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/checkoutrelay/internal/application"
)

// linkSuccessCloseMs is how long the OAuth popup stays open after success.
const linkSuccessCloseMs = 2000

// Handler is the web driving adapter that serves HTML via templ components.
type Handler struct {
	auth       *application.AuthService
	registry   *application.TenantRegistry
	events     *application.EventLog
	adminToken string
	msgOrigin  string
	logger     *slog.Logger
}

// Options configures the web Handler.
type Options struct {
	// AdminToken guards /examine and /flush. Empty leaves them open.
	AdminToken string
	// PostMessageOrigin is the targetOrigin for messages to window.opener.
	PostMessageOrigin string
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	auth *application.AuthService,
	registry *application.TenantRegistry,
	events *application.EventLog,
	opts Options,
	logger *slog.Logger,
) *Handler {
	origin := opts.PostMessageOrigin
	if origin == "" {
		origin = "*"
	}
	return &Handler{
		auth:       auth,
		registry:   registry,
		events:     events,
		adminToken: opts.AdminToken,
		msgOrigin:  origin,
		logger:     logger,
	}
}

// Examine renders every stored credential and the event log.
func (h *Handler) Examine(w http.ResponseWriter, r *http.Request) {
	creds, err := h.registry.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list credentials", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	h.render(w, r, http.StatusOK, "Examine", pages.Examine(toExamineViewModel(creds, h.events.Entries()), keepAdminToken("/flush", r)))
}

// Flush removes every credential, re-seeds the default tenant, and redirects
// to the examine page.
func (h *Handler) Flush(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Flush(r.Context()); err != nil {
		h.logger.Error("failed to flush credentials", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.Info("credentials flushed")

	http.Redirect(w, r, keepAdminToken("/examine", r), http.StatusSeeOther)
}

// Status renders a generic status page from the status and text query
// parameters. text is rendered as sanitized markdown.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	h.render(w, r, http.StatusOK, "Status", pages.Status(toStatusViewModel(q.Get("status"), q.Get("text"), nil)))
}

// OAuthCallback completes account linking for the popup opened by the widget
// and posts the outcome back to it.
func (h *Handler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if denied := q.Get("error"); denied != "" {
		reason := q.Get("error_description")
		if reason == "" {
			reason = denied
		}
		h.logger.Warn("account linking denied", "error", denied, "description", reason)
		h.linkFailed(w, r, reason)
		return
	}

	result, err := h.auth.Link(r.Context(), q.Get("code"))
	if err != nil {
		h.logger.Error("account linking failed", "error", err)
		reason := "account linking failed"
		if errors.Is(err, application.ErrInvalidRequest) {
			reason = "missing authorization code"
		}
		h.linkFailed(w, r, reason)
		return
	}

	msg := &vm.PostMessageViewModel{
		Data: vm.AuthSuccessMessage{
			Type: "AUTH_SUCCESS",
			Payload: vm.AuthSuccessPayload{
				ID:          result.TenantID,
				PK:          result.PublishableKey,
				AccountName: result.AccountName,
			},
		},
		TargetOrigin: h.msgOrigin,
		CloseAfterMs: linkSuccessCloseMs,
	}
	page := pages.Status(toStatusViewModel(statusSuccess, "Auth successful! Redirecting back...", msg))
	h.render(w, r, http.StatusOK, "Account linked", page)
}

func (h *Handler) linkFailed(w http.ResponseWriter, r *http.Request, reason string) {
	msg := &vm.PostMessageViewModel{
		Data:         vm.AuthFailureMessage{Type: "AUTH_FAILURE", Reason: reason},
		TargetOrigin: h.msgOrigin,
	}
	page := pages.Status(toStatusViewModel(statusFail, "Auth failed: "+reason, msg))
	h.render(w, r, http.StatusOK, "Account linking failed", page)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, title string, body templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)

	if err := templates.Layout(title, body).Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render page", "title", title, "error", err)
	}
}
