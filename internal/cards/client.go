// Package cards implements the client-facing card platform: KYC-gated card
// issuance and fiat fund loading, which triggers the converter service over
// its internal endpoint.
package cards

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/support371/fintech-microservices-core/internal/domain"
)

// ErrConverterUnavailable marks transport-level failures talking to the
// converter, as opposed to a conversion the converter itself rejected.
var ErrConverterUnavailable = errors.New("failed to communicate with the core conversion service")

// ConverterClient calls the converter's internal transfer endpoint. Every
// outbound call gets a fresh trace id so both services can be correlated in
// logs; the converter derives its idempotency key from that id.
type ConverterClient struct {
	client  *http.Client
	baseURL string
	logger  *slog.Logger
}

func NewConverterClient(baseURL string, logger *slog.Logger) *ConverterClient {
	return &ConverterClient{
		client:  &http.Client{Timeout: 5 * time.Second},
		baseURL: baseURL,
		logger:  logger,
	}
}

// TransferFiatToCrypto forwards the load request and returns the converter's
// response envelope untouched.
func (c *ConverterClient) TransferFiatToCrypto(ctx context.Context, userID string, fiatAmount float64, fiatCurrency string) (json.RawMessage, error) {
	traceID := uuid.NewString()
	c.logger.Info("initiating fund transfer", slog.String("trace_id", traceID))

	requestBodyBytes, err := json.Marshal(domain.InternalTransferRequest{
		UserID:       userID,
		FiatAmount:   fiatAmount,
		FiatCurrency: fiatCurrency,
		TraceID:      traceID,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/internal/transfer_funds", c.baseURL), bytes.NewBuffer(requestBodyBytes))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	response, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("converter call failed",
			slog.String("trace_id", traceID), slog.Any("error", err))
		return nil, fmt.Errorf("%w: %v", ErrConverterUnavailable, err)
	}
	defer response.Body.Close()
	responseBodyBytes, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConverterUnavailable, err)
	}

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return responseBodyBytes, nil
	}

	c.logger.Error("converter rejected transfer",
		slog.String("trace_id", traceID), slog.Int("status", response.StatusCode))
	return nil, fmt.Errorf("%w: converter returned status %d", ErrConverterUnavailable, response.StatusCode)
}
