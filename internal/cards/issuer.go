package cards

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jaevor/go-nanoid"
)

// approvedTier is the minimum KYC tier allowed to hold a card.
const approvedTier = 3

// SandboxIssuer mints card ids locally instead of calling the card-issuing
// partner. It satisfies domain.CardIssuer so the live partner client can be
// dropped in without touching the handlers.
type SandboxIssuer struct {
	newID  func() string
	logger *slog.Logger
}

func NewSandboxIssuer(logger *slog.Logger) (*SandboxIssuer, error) {
	gen, err := nanoid.Standard(21)
	if err != nil {
		return nil, fmt.Errorf("init card id generator: %w", err)
	}
	return &SandboxIssuer{newID: gen, logger: logger}, nil
}

func (s *SandboxIssuer) IssueCard(_ context.Context, userID string, tier int) (string, error) {
	cardID := "card-" + s.newID()
	s.logger.Info("issued new card",
		slog.String("card_id", cardID),
		slog.String("user_id", userID),
		slog.Int("kyc_tier", tier))
	return cardID, nil
}
