package storage

import (
	"context"
	"time"

	"github.com/PewPewSlowMo/SmartCallCenter/internal/types"
	"github.com/rs/zerolog"
)

// Store supplies call records and the queue/operator/group directory
type Store interface {
	// GetCallRecords returns records whose start time is in [from, to)
	GetCallRecords(ctx context.Context, from, to time.Time) ([]types.CallRecord, error)
	SaveCallRecord(ctx context.Context, record types.CallRecord) error
	GetDirectory(ctx context.Context) (types.Directory, error)
	SaveDirectory(ctx context.Context, dir types.Directory) error
}

// NewStore creates the appropriate store based on configuration
func NewStore(ctx context.Context, cfg DynamoConfig, logger zerolog.Logger) (Store, error) {
	var (
		store Store
		err   error
	)

	switch cfg.Mode {
	case ModeLocal, ModeAWS:
		store, err = NewDynamoDBStore(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
	default:
		logger.Info().Msg("using in-memory store (STORE_MODE=memory)")
		store = NewMemoryStore(types.Directory{})
	}

	if cfg.SeedFixtures {
		if err := Seed(ctx, store, time.Now()); err != nil {
			return nil, err
		}
		logger.Info().Msg("fixture data seeded")
	}
	return store, nil
}

func inRange(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}
