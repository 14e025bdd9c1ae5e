package scoring

import (
	"context"

	"github.com/rentalneeds/leadflow-backend/pkg/logger"
)

// Analyzer produces a trust score analysis for a statement image.
type Analyzer interface {
	Analyze(ctx context.Context, imageRef string) (*Analysis, error)
}

// Service puts a cache in front of the model client.
type Service struct {
	analyzer Analyzer
	cache    Cache
	log      *logger.Logger
}

// NewService creates a scoring service. A nil cache disables caching.
func NewService(analyzer Analyzer, cache Cache, log *logger.Logger) *Service {
	if cache == nil {
		cache = NopCache{}
	}
	return &Service{analyzer: analyzer, cache: cache, log: log}
}

// Analyze returns the cached analysis for imageRef or asks the model.
// Cache failures are logged and otherwise ignored.
func (s *Service) Analyze(ctx context.Context, imageRef string) (*Analysis, error) {
	if cached, ok, err := s.cache.Get(ctx, imageRef); err != nil {
		s.log.Warn().Err(err).Msg("trust score cache read failed")
	} else if ok {
		s.log.Debug().Str("key", CacheKey(imageRef)).Msg("trust score cache hit")
		return cached, nil
	}

	analysis, err := s.analyzer.Analyze(ctx, imageRef)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, imageRef, analysis); err != nil {
		s.log.Warn().Err(err).Msg("trust score cache write failed")
	}
	return analysis, nil
}
