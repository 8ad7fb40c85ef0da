package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	domrepo "StockPulse/internal/domain/repository"
	"StockPulse/internal/service/cache"
)

// ChartStore keeps rendered PNGs in a BytesCache under random ids.
type ChartStore struct {
	cache cache.BytesCache
	ttl   time.Duration
}

var _ domrepo.ChartStore = (*ChartStore)(nil)

// DefaultChartTTL applies when NewChartStore is given a non-positive ttl,
// which the cache would otherwise treat as never-expire.
const DefaultChartTTL = 10 * time.Minute

func NewChartStore(c cache.BytesCache, ttl time.Duration) *ChartStore {
	if ttl <= 0 {
		ttl = DefaultChartTTL
	}
	return &ChartStore{cache: c, ttl: ttl}
}

func (s *ChartStore) Put(ctx context.Context, png []byte) (string, error) {
	id := uuid.NewString()
	if err := s.cache.SetBytes(ctx, chartKey(id), png, s.ttl); err != nil {
		return "", fmt.Errorf("store chart: %w", err)
	}
	return id, nil
}

// Get returns (nil, false, nil) for unknown, expired or malformed ids.
func (s *ChartStore) Get(ctx context.Context, id string) ([]byte, bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, false, nil
	}
	return s.cache.GetBytes(ctx, chartKey(id))
}

func chartKey(id string) string {
	return cache.Key("chart", id)
}
