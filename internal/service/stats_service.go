package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/tulis-go-api/internal/dto"
	"github.com/noah-isme/tulis-go-api/internal/repository"
)

// StatsService serves cached aggregate writing statistics.
type StatsService interface {
	UserStats(ctx context.Context, userID uint) (dto.UserStatsResponse, error)
	InvalidateUser(ctx context.Context, userID uint) error
}

type statsService struct {
	repo     repository.StatsRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

// NewStatsService builds the stats aggregator. A nil cache client disables caching.
func NewStatsService(repo repository.StatsRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) StatsService {
	return &statsService{
		repo:     repo,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "stats_service").Logger(),
		now:      time.Now,
	}
}

func statsCacheKey(userID uint) string {
	return fmt.Sprintf("stats:user:%d", userID)
}

func (s *statsService) UserStats(ctx context.Context, userID uint) (dto.UserStatsResponse, error) {
	key := statsCacheKey(userID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, key).Result(); err == nil {
			var response dto.UserStatsResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				response.CacheHit = true
				s.logger.Debug().Uint("user_id", userID).Msg("stats cache hit")
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read stats cache")
		}
	}

	stats, err := s.repo.UserStats(ctx, userID)
	if err != nil {
		return dto.UserStatsResponse{}, err
	}

	response := dto.UserStatsResponse{
		Total:       stats.Total,
		Average:     stats.Average,
		ByTaskType:  stats.ByTaskType,
		LatestScore: stats.LatestScore,
		GeneratedAt: s.now().UTC(),
	}

	if s.cache != nil {
		if encoded, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, key, encoded, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to write stats cache")
			}
		}
	}

	return response, nil
}

// InvalidateUser drops the cached aggregates after a grading commit so the
// next read reflects the new score.
func (s *statsService) InvalidateUser(ctx context.Context, userID uint) error {
	if s.cache == nil {
		return nil
	}

	return s.cache.Del(ctx, statsCacheKey(userID)).Err()
}
