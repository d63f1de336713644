package cards

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/support371/fintech-microservices-core/internal/domain"
)

var (
	httpReqTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cardplatform_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "endpoint", "status"})

	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cardplatform_http_request_duration_seconds",
		Help:    "Request latency",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}, []string{"method", "endpoint"})
)

type Handler struct {
	kyc       domain.KYCStore
	issuer    domain.CardIssuer
	converter *ConverterClient
	logger    *slog.Logger
}

func NewHandler(kyc domain.KYCStore, issuer domain.CardIssuer, converter *ConverterClient, logger *slog.Logger) *Handler {
	return &Handler{kyc: kyc, issuer: issuer, converter: converter, logger: logger}
}

type issueCardRequest struct {
	UserID    string `json:"user_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type loadFundsRequest struct {
	UserID       string  `json:"user_id"`
	FiatAmount   float64 `json:"fiat_amount"`
	FiatCurrency string  `json:"fiat_currency"`
}

func (h *Handler) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"}, "GET", "/health")
}

// IssueCardHandler handles POST /api/v1/cards/issue. Issuance requires the
// user's KYC tier to be at least the approved tier.
func (h *Handler) IssueCardHandler(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/v1/cards/issue"
	timer := prometheus.NewTimer(httpLatency.WithLabelValues("POST", endpoint))
	defer timer.ObserveDuration()

	var req issueCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid JSON payload", "POST", endpoint)
		return
	}
	if req.UserID == "" {
		h.respondError(w, http.StatusBadRequest, "user_id is required", "POST", endpoint)
		return
	}

	tier, err := h.kyc.KycTier(r.Context(), req.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			h.respondError(w, http.StatusNotFound, "User not found", "POST", endpoint)
			return
		}
		h.logger.Error("kyc lookup failed", slog.String("user_id", req.UserID), slog.Any("error", err))
		h.respondError(w, http.StatusInternalServerError, "KYC status check failed", "POST", endpoint)
		return
	}

	if tier < approvedTier {
		h.respondError(w, http.StatusForbidden,
			fmt.Sprintf("KYC status is Tier %d. Requires Tier %d.", tier, approvedTier), "POST", endpoint)
		return
	}

	cardID, err := h.issuer.IssueCard(r.Context(), req.UserID, tier)
	if err != nil {
		h.logger.Error("card issuance failed", slog.String("user_id", req.UserID), slog.Any("error", err))
		h.respondError(w, http.StatusInternalServerError, "Card issuance failed", "POST", endpoint)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]string{
		"status":  "Card Issued",
		"card_id": cardID,
	}, "POST", endpoint)
}

// LoadFundsHandler handles POST /api/v1/funds/load. The fiat load triggers
// the conversion synchronously through the converter's internal endpoint.
func (h *Handler) LoadFundsHandler(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/v1/funds/load"
	timer := prometheus.NewTimer(httpLatency.WithLabelValues("POST", endpoint))
	defer timer.ObserveDuration()

	var req loadFundsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid JSON payload", "POST", endpoint)
		return
	}
	if req.UserID == "" || req.FiatCurrency == "" {
		h.respondError(w, http.StatusBadRequest, "user_id and fiat_currency are required", "POST", endpoint)
		return
	}

	details, err := h.converter.TransferFiatToCrypto(r.Context(), req.UserID, req.FiatAmount, req.FiatCurrency)
	if err != nil {
		h.respondError(w, http.StatusServiceUnavailable, "Service unavailable: "+err.Error(), "POST", endpoint)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{
		"status":  "Conversion Initiated",
		"details": json.RawMessage(details),
	}, "POST", endpoint)
}

func (h *Handler) respondJSON(w http.ResponseWriter, code int, payload interface{}, method, endpoint string) {
	httpReqTotal.WithLabelValues(method, endpoint, strconv.Itoa(code)).Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

func (h *Handler) respondError(w http.ResponseWriter, code int, msg, method, endpoint string) {
	h.respondJSON(w, code, map[string]string{"status": "error", "error": msg}, method, endpoint)
}
