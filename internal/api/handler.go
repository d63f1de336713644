package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/support371/fintech-microservices-core/internal/domain"
	"github.com/support371/fintech-microservices-core/internal/service"
	"github.com/support371/fintech-microservices-core/internal/signature"
)

const alreadyProcessedMessage = "Transaction already processed (Idempotent success)"

// internalTxPrefix makes internal-call transaction ids deterministic per
// trace id, so a retried internal call dedupes exactly like a redelivered
// webhook.
const internalTxPrefix = "internal-tx-"

// Handler orchestrates the conversion pipeline for both inbound channels:
// parse -> verify signature (webhook only) -> dedupe -> convert -> respond.
type Handler struct {
	verifier *signature.Verifier
	ledger   domain.IdempotencyLedger
	engine   *service.Engine
	audit    domain.AuditPublisher
	logger   *slog.Logger
}

func NewHandler(verifier *signature.Verifier, ledger domain.IdempotencyLedger, engine *service.Engine, audit domain.AuditPublisher, logger *slog.Logger) *Handler {
	return &Handler{
		verifier: verifier,
		ledger:   ledger,
		engine:   engine,
		audit:    audit,
		logger:   logger,
	}
}

func (h *Handler) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"}, "GET", "/health")
}

// FiatReceivedWebhookHandler handles POST /webhook/fiat_received.
func (h *Handler) FiatReceivedWebhookHandler(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/webhook/fiat_received"
	timer := prometheus.NewTimer(httpLatency.WithLabelValues("POST", endpoint))
	defer timer.ObserveDuration()

	rawBody, err := io.ReadAll(r.Body)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "Stream read error", "POST", endpoint)
		return
	}

	var payload domain.WebhookPayload
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid JSON payload", "POST", endpoint)
		return
	}

	// The signature covers the exact bytes on the wire, never a re-serialized
	// form of the parsed payload; serialization is not byte-stable.
	if !h.verifier.Verify(rawBody, r.Header.Get("X-Signature")) {
		h.logger.Warn("invalid webhook signature received")
		h.respondError(w, http.StatusForbidden, "Invalid webhook signature", "POST", endpoint)
		return
	}

	if payload.TransactionID == "" || payload.Amount == nil || payload.Currency == "" || payload.UserID == "" {
		h.respondError(w, http.StatusBadRequest, "Missing required transaction data", "POST", endpoint)
		return
	}

	req := domain.ConversionRequest{
		UserID:        payload.UserID,
		FiatAmount:    *payload.Amount,
		FiatCurrency:  payload.Currency,
		TransactionID: payload.TransactionID,
	}
	h.processConversion(w, r, req, "webhook", endpoint)
}

// InternalTransferHandler handles POST /internal/transfer_funds. Trust is
// established by the transport boundary; there is no signature step. The
// trace id rides through every log entry for cross-service correlation.
func (h *Handler) InternalTransferHandler(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/internal/transfer_funds"
	timer := prometheus.NewTimer(httpLatency.WithLabelValues("POST", endpoint))
	defer timer.ObserveDuration()

	var transfer domain.InternalTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&transfer); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid JSON payload", "POST", endpoint)
		return
	}
	if transfer.UserID == "" || transfer.FiatCurrency == "" {
		h.respondError(w, http.StatusBadRequest, "Missing required transaction data", "POST", endpoint)
		return
	}
	if transfer.TraceID == "" {
		transfer.TraceID = uuid.NewString()
	}

	h.logger.Info("internal fund transfer received", slog.String("trace_id", transfer.TraceID))

	req := domain.ConversionRequest{
		UserID:        transfer.UserID,
		FiatAmount:    transfer.FiatAmount,
		FiatCurrency:  transfer.FiatCurrency,
		TransactionID: internalTxPrefix + transfer.TraceID,
		TraceID:       transfer.TraceID,
	}
	h.processConversion(w, r, req, "internal", endpoint)
}

// processConversion is the shared dedupe -> convert -> respond tail of both
// channels. A duplicate transaction id is an idempotent success, not an
// error; the payout never runs twice for one id.
func (h *Handler) processConversion(w http.ResponseWriter, r *http.Request, req domain.ConversionRequest, channel, endpoint string) {
	first, err := h.ledger.CheckAndMark(r.Context(), req.TransactionID)
	if err != nil {
		h.logger.Error("idempotency check failed",
			slog.String("transaction_id", req.TransactionID), slog.Any("error", err))
		h.respondError(w, http.StatusInternalServerError, "Idempotency store unavailable", "POST", endpoint)
		return
	}
	if !first {
		h.logger.Warn("transaction already processed",
			slog.String("transaction_id", req.TransactionID),
			slog.String("trace_id", req.TraceID))
		conversionsTotal.WithLabelValues(channel, "duplicate").Inc()
		h.respondJSON(w, http.StatusOK, statusResponse{
			Status:  "success",
			Message: alreadyProcessedMessage,
		}, "POST", endpoint)
		return
	}

	result, err := h.engine.Convert(r.Context(), req.UserID, req.FiatAmount, req.FiatCurrency)
	if err != nil {
		h.audit.Publish(r.Context(), failureEvent(req, err))
		conversionsTotal.WithLabelValues(channel, "failed").Inc()
		h.respondError(w, http.StatusInternalServerError, "Conversion processing failed: "+err.Error(), "POST", endpoint)
		return
	}

	h.audit.Publish(r.Context(), successEvent(req, result))
	conversionsTotal.WithLabelValues(channel, "completed").Inc()
	h.respondJSON(w, http.StatusOK, statusResponse{
		Status: "success",
		Data:   result,
	}, "POST", endpoint)
}

func successEvent(req domain.ConversionRequest, result *domain.ConversionResult) domain.ConversionEvent {
	return domain.ConversionEvent{
		TransactionID: req.TransactionID,
		TraceID:       req.TraceID,
		UserID:        req.UserID,
		FiatAmount:    req.FiatAmount,
		FiatCurrency:  result.FiatCurrency,
		BTCAmount:     result.BTCAmount,
		Satoshis:      result.Satoshis,
		Rate:          result.ExchangeRateUsed,
		Status:        domain.EventCompleted,
		At:            result.CompletedAt,
	}
}

func failureEvent(req domain.ConversionRequest, err error) domain.ConversionEvent {
	reason := "internal error"
	switch {
	case errors.Is(err, domain.ErrInvalidAmount):
		reason = "invalid amount"
	case errors.Is(err, domain.ErrUnsupportedCurrency):
		reason = "unsupported currency"
	case errors.Is(err, domain.ErrAmountLimitExceeded):
		reason = "amount limit exceeded"
	case errors.Is(err, domain.ErrPayoutFailed):
		reason = "payout execution failed"
	}
	return domain.ConversionEvent{
		TransactionID: req.TransactionID,
		TraceID:       req.TraceID,
		UserID:        req.UserID,
		FiatAmount:    req.FiatAmount,
		FiatCurrency:  req.FiatCurrency,
		Status:        domain.EventFailed,
		Reason:        reason,
		At:            time.Now(),
	}
}

// statusResponse is the envelope both endpoints return.
type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
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
