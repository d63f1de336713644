// Package rates quotes the fiat price of 1 BTC. The static table is a
// stand-in for a live source; both implementations satisfy domain.RateQuoter
// so callers never change when the live provider is swapped in.
package rates

import (
	"context"
	"strings"

	"github.com/support371/fintech-microservices-core/internal/domain"
)

// Static serves quotes from a fixed table keyed by uppercase currency code.
type Static struct {
	table map[string]float64
}

// NewStatic returns a quoter over the default placeholder rates.
func NewStatic() *Static {
	return &Static{table: map[string]float64{
		"USD": 70000.0,
		"EUR": 64800.0,
		"GBP": 55300.0,
	}}
}

// NewStaticWithTable returns a quoter over a caller-supplied rate table.
func NewStaticWithTable(table map[string]float64) *Static {
	normalized := make(map[string]float64, len(table))
	for code, rate := range table {
		normalized[strings.ToUpper(code)] = rate
	}
	return &Static{table: normalized}
}

func (s *Static) Quote(_ context.Context, currencyCode string) (float64, error) {
	rate, ok := s.table[strings.ToUpper(currencyCode)]
	if !ok {
		return 0, domain.ErrUnsupportedCurrency
	}
	return rate, nil
}
