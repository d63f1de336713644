package domain

import "context"

// RateQuoter quotes the fiat price of 1 BTC for a currency code. The code is
// normalized to uppercase before lookup; an unknown code fails with
// ErrUnsupportedCurrency. Implementations may hit a live exchange, so calls
// take a context and must honor its deadline.
type RateQuoter interface {
	Quote(ctx context.Context, currencyCode string) (float64, error)
}

// PayoutExecutor instructs the settlement system to move btcAmount to the
// user's wallet. The call is synchronous; any failure, including a context
// timeout, must surface to the caller (it wraps ErrPayoutFailed upstream).
type PayoutExecutor interface {
	Execute(ctx context.Context, userID string, btcAmount float64) error
}

// IdempotencyLedger records which transaction ids have been processed.
// CheckAndMark atomically answers "is this id new?": under concurrent calls
// with the same id exactly one caller observes first=true. Records are never
// updated or deleted within the service's retention window.
type IdempotencyLedger interface {
	CheckAndMark(ctx context.Context, transactionID string) (first bool, err error)
}

// AuditPublisher receives one event per conversion attempt that passed
// deduplication. Publish failures must never fail the request being audited.
type AuditPublisher interface {
	Publish(ctx context.Context, event ConversionEvent)
}

// KYCStore looks up the verification tier assigned to a user.
type KYCStore interface {
	KycTier(ctx context.Context, userID string) (int, error)
}

// CardIssuer provisions a card with the issuing partner for an approved user.
type CardIssuer interface {
	IssueCard(ctx context.Context, userID string, tier int) (cardID string, err error)
}
