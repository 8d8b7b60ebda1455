package service_test

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tulis-go-api/internal/models"
	"github.com/noah-isme/tulis-go-api/internal/repository"
	"github.com/noah-isme/tulis-go-api/internal/service"
)

func TestUserStatsCachesSecondRead(t *testing.T) {
	db := setupGradingDB(t)
	score := 24
	require.NoError(t, db.Create(&models.Submission{
		UserID:           1,
		QuestionID:       1,
		TaskType:         models.TaskTypeIntegratedWriting,
		WordCount:        1,
		ProcessingStatus: models.ProcessingStatusCompleted,
		Score:            &score,
	}).Error)

	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	svc := service.NewStatsService(repository.NewStatsRepository(db), client, 0, zerolog.Nop())

	first, err := svc.UserStats(context.Background(), 1)
	require.NoError(t, err)
	require.False(t, first.CacheHit)
	require.Equal(t, int64(1), first.Total)
	require.Equal(t, float64(24), first.Average)

	second, err := svc.UserStats(context.Background(), 1)
	require.NoError(t, err)
	require.True(t, second.CacheHit)
	require.Equal(t, first.Total, second.Total)
}

func TestInvalidateUserDropsCache(t *testing.T) {
	db := setupGradingDB(t)
	score := 18
	require.NoError(t, db.Create(&models.Submission{
		UserID:           1,
		QuestionID:       1,
		TaskType:         models.TaskTypeIntegratedWriting,
		WordCount:        1,
		ProcessingStatus: models.ProcessingStatusCompleted,
		Score:            &score,
	}).Error)

	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	svc := service.NewStatsService(repository.NewStatsRepository(db), client, 0, zerolog.Nop())

	_, err = svc.UserStats(context.Background(), 1)
	require.NoError(t, err)

	better := 28
	require.NoError(t, db.Model(&models.Submission{}).
		Where("user_id = ?", 1).
		Update("score", better).Error)
	require.NoError(t, svc.InvalidateUser(context.Background(), 1))

	refreshed, err := svc.UserStats(context.Background(), 1)
	require.NoError(t, err)
	require.False(t, refreshed.CacheHit)
	require.Equal(t, float64(28), refreshed.Average)
}

func TestUserStatsWorksWithoutCache(t *testing.T) {
	db := setupGradingDB(t)
	svc := service.NewStatsService(repository.NewStatsRepository(db), nil, 0, zerolog.Nop())

	stats, err := svc.UserStats(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, int64(0), stats.Total)
	require.NoError(t, svc.InvalidateUser(context.Background(), 1))
}
