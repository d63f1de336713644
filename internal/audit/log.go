// Package audit records every conversion attempt that passed deduplication,
// for reconciliation. Publishing is best effort: an audit sink must never
// fail the request it is describing.
package audit

import (
	"context"
	"log/slog"

	"github.com/support371/fintech-microservices-core/internal/domain"
)

// Log writes audit entries through slog. Completed conversions log at Info,
// failures at Error, both tagged with the transaction and trace ids.
type Log struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) Publish(_ context.Context, event domain.ConversionEvent) {
	attrs := []any{
		slog.String("transaction_id", event.TransactionID),
		slog.String("user_id", event.UserID),
		slog.Float64("fiat_amount", event.FiatAmount),
		slog.String("fiat_currency", event.FiatCurrency),
	}
	if event.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", event.TraceID))
	}

	if event.Status == domain.EventCompleted {
		attrs = append(attrs,
			slog.Float64("btc_amount", event.BTCAmount),
			slog.Int64("satoshis", event.Satoshis),
			slog.Float64("exchange_rate", event.Rate),
		)
		l.logger.Info("fiat-to-btc conversion completed", attrs...)
		return
	}
	attrs = append(attrs, slog.String("reason", event.Reason))
	l.logger.Error("fiat-to-btc conversion failed", attrs...)
}

// Multi fans one event out to several sinks.
type Multi []domain.AuditPublisher

func (m Multi) Publish(ctx context.Context, event domain.ConversionEvent) {
	for _, p := range m {
		p.Publish(ctx, event)
	}
}
