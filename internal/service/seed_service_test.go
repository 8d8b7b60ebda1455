package service_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tulis-go-api/internal/models"
	"github.com/noah-isme/tulis-go-api/internal/repository"
	"github.com/noah-isme/tulis-go-api/internal/service"
)

func newSeedService(t *testing.T, token string) service.SeedService {
	t.Helper()
	db := setupGradingDB(t)
	return service.NewSeedService(
		repository.NewQuestionRepository(db),
		repository.NewAchievementRepository(db),
		token,
		zerolog.Nop(),
	)
}

func TestSeedRejectsWrongToken(t *testing.T) {
	svc := newSeedService(t, "letmein")

	_, err := svc.Seed(context.Background(), "wrong")
	require.ErrorIs(t, err, service.ErrSeedForbidden)
}

func TestSeedRejectsWhenTokenUnset(t *testing.T) {
	svc := newSeedService(t, "")

	_, err := svc.Seed(context.Background(), "")
	require.ErrorIs(t, err, service.ErrSeedForbidden)
}

func TestSeedLoadsQuestionBankAndCatalog(t *testing.T) {
	db := setupGradingDB(t)
	svc := service.NewSeedService(
		repository.NewQuestionRepository(db),
		repository.NewAchievementRepository(db),
		"letmein",
		zerolog.Nop(),
	)

	result, err := svc.Seed(context.Background(), "letmein")
	require.NoError(t, err)
	require.Positive(t, result.Questions)
	require.Positive(t, result.Achievements)

	var questions []models.Question
	require.NoError(t, db.Find(&questions).Error)
	require.Len(t, questions, int(result.Questions))

	byType := make(map[string]int)
	for _, q := range questions {
		byType[q.TaskType]++
	}
	require.Positive(t, byType[models.TaskTypeIntegratedWriting])
	require.Positive(t, byType[models.TaskTypeAcademicDiscussion])

	// Seeding twice leaves the bank unchanged.
	again, err := svc.Seed(context.Background(), "letmein")
	require.NoError(t, err)
	require.Equal(t, result.Questions, again.Questions)

	var recount int64
	require.NoError(t, db.Model(&models.Question{}).Count(&recount).Error)
	require.Equal(t, result.Questions, recount)
}
