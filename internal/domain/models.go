package domain

import "time"

// ConversionRequest is the normalized input to the conversion pipeline,
// regardless of whether it arrived via webhook or internal call.
// TransactionID is the idempotency key.
type ConversionRequest struct {
	UserID        string  `json:"user_id"`
	FiatAmount    float64 `json:"fiat_amount"`
	FiatCurrency  string  `json:"fiat_currency"`
	TransactionID string  `json:"transaction_id"`
	TraceID       string  `json:"trace_id,omitempty"`
}

// ConversionResult is produced exactly once per unique TransactionID and is
// immutable after creation.
type ConversionResult struct {
	BTCAmount        float64   `json:"btc_amount_sent"`
	Satoshis         int64     `json:"satoshis"`
	ExchangeRateUsed float64   `json:"exchange_rate_used"`
	FiatCurrency     string    `json:"fiat_currency"`
	CompletedAt      time.Time `json:"completed_at"`
}

// WebhookPayload is the JSON body of a fiat-received notification.
// Amount is a pointer so a missing field is distinguishable from zero.
type WebhookPayload struct {
	TransactionID string   `json:"transaction_id"`
	Amount        *float64 `json:"amount"`
	Currency      string   `json:"currency"`
	UserID        string   `json:"user_id"`
}

// InternalTransferRequest is the body of a service-to-service conversion call.
type InternalTransferRequest struct {
	UserID       string  `json:"user_id"`
	FiatAmount   float64 `json:"fiat_amount"`
	FiatCurrency string  `json:"fiat_currency"`
	TraceID      string  `json:"trace_id"`
}

// ConversionEvent is the audit record emitted for every conversion attempt
// that made it past deduplication.
type ConversionEvent struct {
	TransactionID string    `json:"transaction_id"`
	TraceID       string    `json:"trace_id,omitempty"`
	UserID        string    `json:"user_id"`
	FiatAmount    float64   `json:"fiat_amount"`
	FiatCurrency  string    `json:"fiat_currency"`
	BTCAmount     float64   `json:"btc_amount,omitempty"`
	Satoshis      int64     `json:"satoshis,omitempty"`
	Rate          float64   `json:"exchange_rate,omitempty"`
	Status        string    `json:"status"`
	Reason        string    `json:"reason,omitempty"`
	At            time.Time `json:"at"`
}

const (
	EventCompleted = "COMPLETED"
	EventFailed    = "FAILED"
)
