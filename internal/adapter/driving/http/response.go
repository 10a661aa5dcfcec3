package httphandler

import (
	"encoding/json"
	"net/http"

	"github.com/ericfisherdev/checkoutrelay/internal/application"
	"github.com/ericfisherdev/checkoutrelay/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// CreateCheckoutSessionRequest is the body of POST /create-checkout-session.
type CreateCheckoutSessionRequest struct {
	ClientID      string           `json:"client_id"`
	LineItems     []model.LineItem `json:"line_items"`
	CustomerEmail string           `json:"customer_email"`
	Mode          string           `json:"mode"`
	Domain        string           `json:"domain"`
}

// CreateCheckoutSessionResponse carries what the widget needs to mount checkout.
type CreateCheckoutSessionResponse struct {
	ClientSecret string `json:"clientSecret"`
	SessionID    string `json:"sessionId"`
}

// ReturnResponse is the body of GET /return.
type ReturnResponse struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId"`
}

// SessionStatusResponse is the body of GET /session-status. CustomerEmail is
// null when the session has no customer details yet.
type SessionStatusResponse struct {
	Status        string              `json:"status"`
	PaymentStatus string              `json:"payment_status"`
	CustomerEmail *string             `json:"customer_email"`
	Error         *model.PaymentError `json:"error,omitempty"`
}

// AuthorizeRequest is the body of POST /authorize.
type AuthorizeRequest struct {
	SecretKey string `json:"secretKey"`
	PublicKey string `json:"publicKey"`
}

// UnauthorizeRequest is the body of POST /unauthorize.
type UnauthorizeRequest struct {
	ClientID string `json:"clientId"`
}

// ResultResponse is the success/fail envelope of the authorization endpoints.
type ResultResponse struct {
	Type   string `json:"type"`
	ID     string `json:"id,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// HealthResponse is the JSON body of the health check endpoint.
type HealthResponse struct {
	Status          string `json:"status"`
	Time            string `json:"time"`
	CachedClients   int    `json:"cached_clients"`
	EventLogEntries int    `json:"event_log_entries"`
}

func toSessionStatusResponse(st *application.SessionStatus) SessionStatusResponse {
	resp := SessionStatusResponse{
		Status:        st.Status,
		PaymentStatus: st.PaymentStatus,
		Error:         st.Error,
	}
	if st.CustomerEmail != "" {
		email := st.CustomerEmail
		resp.CustomerEmail = &email
	}
	return resp
}
