package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/support371/fintech-microservices-core/internal/domain"
)

// Engine validates a conversion request, applies the quoted rate, and
// executes the payout. It holds no per-transaction state; concurrent calls
// for distinct transaction ids are safe, and duplicates are the ledger's
// problem, not the engine's.
type Engine struct {
	quoter    domain.RateQuoter
	payout    domain.PayoutExecutor
	maxAmount float64
	now       func() time.Time
}

func NewEngine(quoter domain.RateQuoter, payout domain.PayoutExecutor, maxAmount float64) *Engine {
	return &Engine{
		quoter:    quoter,
		payout:    payout,
		maxAmount: maxAmount,
		now:       time.Now,
	}
}

// Convert runs the validation chain (first violation wins), computes the BTC
// amount at the current rate, and invokes the payout. Validation failures are
// terminal; a payout failure wraps domain.ErrPayoutFailed so the caller can
// retry with the same transaction id.
func (e *Engine) Convert(ctx context.Context, userID string, fiatAmount float64, fiatCurrency string) (*domain.ConversionResult, error) {
	if fiatAmount <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	currency := strings.ToUpper(fiatCurrency)
	rate, err := e.quoter.Quote(ctx, currency)
	if err != nil {
		return nil, err
	}

	if fiatAmount > e.maxAmount {
		return nil, domain.ErrAmountLimitExceeded
	}

	// Round at the satoshi boundary so the BTC amount carries exactly
	// 8 fractional digits and the two representations never disagree.
	satoshis := int64(math.Round(fiatAmount / rate * 1e8))
	btcAmount := float64(satoshis) / 1e8

	if err := e.payout.Execute(ctx, userID, btcAmount); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPayoutFailed, err)
	}

	return &domain.ConversionResult{
		BTCAmount:        btcAmount,
		Satoshis:         satoshis,
		ExchangeRateUsed: rate,
		FiatCurrency:     currency,
		CompletedAt:      e.now(),
	}, nil
}
