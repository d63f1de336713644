// Package store backs the idempotency ledger and the KYC user lookup with
// Postgres, so the dedupe guarantee holds across restarts and replicas.
//
// Expected schema:
//
//	CREATE TABLE processed_transactions (
//	    transaction_id TEXT PRIMARY KEY,
//	    first_seen_at  TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
//	CREATE TABLE users (
//	    user_id  TEXT PRIMARY KEY,
//	    kyc_tier INT NOT NULL DEFAULT 0
//	);
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/support371/fintech-microservices-core/internal/domain"
)

type Store struct {
	Db *pgxpool.Pool
}

func NewStore(connString string) (*Store, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return &Store{Db: pool}, nil
}

func (s *Store) Close() {
	s.Db.Close()
}

// CheckAndMark implements domain.IdempotencyLedger as a single conditional
// insert. The primary-key constraint makes the check-and-insert atomic:
// exactly one concurrent caller gets a row in, everyone else sees zero rows
// affected.
func (s *Store) CheckAndMark(ctx context.Context, transactionID string) (bool, error) {
	tag, err := s.Db.Exec(ctx,
		"INSERT INTO processed_transactions (transaction_id) VALUES ($1) ON CONFLICT (transaction_id) DO NOTHING",
		transactionID,
	)
	if err != nil {
		return false, fmt.Errorf("idempotency insert failed: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// KycTier retrieves the KYC tier for a user.
func (s *Store) KycTier(ctx context.Context, userID string) (int, error) {
	var tier int
	err := s.Db.QueryRow(ctx, "SELECT kyc_tier FROM users WHERE user_id = $1", userID).Scan(&tier)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrUserNotFound
		}
		return 0, fmt.Errorf("kyc lookup failed: %w", err)
	}
	return tier, nil
}
