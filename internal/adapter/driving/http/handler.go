package httphandler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ericfisherdev/checkoutrelay/internal/application"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// Handler is the HTTP driving adapter that serves the JSON API used by the
// embeddable checkout widget.
type Handler struct {
	checkout *application.CheckoutService
	auth     *application.AuthService
	health   *application.HealthService
	logger   *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	checkout *application.CheckoutService,
	auth *application.AuthService,
	health *application.HealthService,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		checkout: checkout,
		auth:     auth,
		health:   health,
		logger:   logger,
	}
}

// RegisterAPIRoutes registers the widget-facing JSON routes on mux.
func RegisterAPIRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("POST /create-checkout-session", h.CreateCheckoutSession)
	mux.HandleFunc("GET /return", h.Return)
	mux.HandleFunc("GET /session-status", h.SessionStatus)
	mux.HandleFunc("POST /authorize", h.Authorize)
	mux.HandleFunc("POST /unauthorize", h.Unauthorize)
	mux.HandleFunc("GET /healthz", h.Health)
	mux.Handle("GET /metrics", promhttp.Handler())
}

// CreateCheckoutSession opens an embedded checkout session for a tenant.
func (h *Handler) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	var req CreateCheckoutSessionRequest
	if !decodeBody(w, r, &req) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.checkout.CreateSession(r.Context(), application.CreateSessionInput{
		TenantID:      req.ClientID,
		Domain:        req.Domain,
		CustomerEmail: req.CustomerEmail,
		Mode:          req.Mode,
		LineItems:     req.LineItems,
	})
	if err != nil {
		h.logger.Error("failed to create checkout session", "client_id", req.ClientID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create checkout session")
		return
	}

	writeJSON(w, http.StatusOK, CreateCheckoutSessionResponse{
		ClientSecret: result.ClientSecret,
		SessionID:    result.SessionID,
	})
}

// Return is the landing target of a completed checkout. The widget reads the
// session id from the JSON body.
func (h *Handler) Return(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ReturnResponse{
		Type:      "PAYMENT_COMPLETE",
		SessionID: r.URL.Query().Get("session_id"),
	})
}

// SessionStatus reports the status of a checkout session.
func (h *Handler) SessionStatus(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	clientID := q.Get("client_id")
	sessionID := q.Get("session_id")

	st, err := h.checkout.SessionStatus(r.Context(), clientID, sessionID)
	if err != nil {
		h.logger.Error("failed to get session status",
			"client_id", clientID,
			"session_id", sessionID,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "Failed to get session status")
		return
	}

	writeJSON(w, http.StatusOK, toSessionStatusResponse(st))
}

// Authorize stores a key pair and returns the tenant id minted for it.
func (h *Handler) Authorize(w http.ResponseWriter, r *http.Request) {
	var req AuthorizeRequest
	if !decodeBody(w, r, &req) {
		writeJSON(w, http.StatusBadRequest, ResultResponse{Type: "fail", Reason: "invalid request body"})
		return
	}

	id, err := h.auth.Authorize(r.Context(), req.SecretKey, req.PublicKey)
	if err != nil {
		h.logger.Error("authorize failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, ResultResponse{Type: "fail", Reason: "authorization failed"})
		return
	}

	writeJSON(w, http.StatusOK, ResultResponse{Type: "success", ID: id})
}

// Unauthorize removes a tenant. Removing an unknown tenant succeeds.
func (h *Handler) Unauthorize(w http.ResponseWriter, r *http.Request) {
	var req UnauthorizeRequest
	if !decodeBody(w, r, &req) {
		writeJSON(w, http.StatusBadRequest, ResultResponse{Type: "fail", Reason: "invalid request body"})
		return
	}

	if err := h.auth.Unauthorize(r.Context(), req.ClientID); err != nil {
		h.logger.Error("unauthorize failed", "client_id", req.ClientID, "error", err)
		writeJSON(w, http.StatusInternalServerError, ResultResponse{Type: "fail", Reason: "unauthorization failed"})
		return
	}

	writeJSON(w, http.StatusOK, ResultResponse{Type: "success"})
}

// Health returns 200 while the credential store answers and 503 otherwise.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	report := h.health.Check(r.Context())
	resp := HealthResponse{
		Status:          "ok",
		Time:            time.Now().UTC().Format(time.RFC3339),
		CachedClients:   report.CachedClients,
		EventLogEntries: report.EventLogEntries,
	}

	if !report.Healthy {
		h.logger.Warn("health check failed", "error", report.StoreErr)
		resp.Status = "unavailable"
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// decodeBody decodes a JSON request body into v, reporting whether it succeeded.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v) == nil
}
