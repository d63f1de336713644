package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/support371/fintech-microservices-core/internal/domain"
)

const defaultRapiraBaseURL = "https://api.rapira.net"

// Rapira quotes BTC against a fiat currency from the Rapira order book,
// averaging the top ask positions. Only codes listed in pairs are quotable.
type Rapira struct {
	client  *http.Client
	baseURL string
	pairs   map[string]string
	depth   int
}

type rapiraItem struct {
	Price  float64 `json:"price"`
	Amount float64 `json:"amount"`
}

type rapiraResponse struct {
	Ask struct {
		Symbol string       `json:"symbol"`
		Items  []rapiraItem `json:"items"`
	} `json:"ask"`
}

func NewRapira() *Rapira {
	return &Rapira{
		client:  &http.Client{Timeout: 5 * time.Second},
		baseURL: defaultRapiraBaseURL,
		pairs: map[string]string{
			"USD": "BTC/USDT",
			"RUB": "BTC/RUB",
		},
		depth: 5,
	}
}

func (r *Rapira) Quote(ctx context.Context, currencyCode string) (float64, error) {
	pair, ok := r.pairs[strings.ToUpper(currencyCode)]
	if !ok {
		return 0, domain.ErrUnsupportedCurrency
	}

	url := fmt.Sprintf("%s/market/exchange-plate-mini?symbol=%s", r.baseURL, pair)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to get rates from Rapira: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("rapira API returned status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to read response body: %w", err)
	}

	var plate rapiraResponse
	if err := json.Unmarshal(body, &plate); err != nil {
		return 0, fmt.Errorf("failed to parse Rapira response: %w", err)
	}

	return averagePrice(plate.Ask.Items, r.depth)
}

// IsHealthy probes the default pair with a short deadline.
func (r *Rapira) IsHealthy(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.Quote(ctx, "USD")
	return err == nil
}

func averagePrice(items []rapiraItem, depth int) (float64, error) {
	if len(items) == 0 {
		return 0, fmt.Errorf("no items in order book")
	}
	if depth > len(items) {
		depth = len(items)
	}

	total := 0.0
	for i := 0; i < depth; i++ {
		total += items[i].Price
	}
	return total / float64(depth), nil
}
