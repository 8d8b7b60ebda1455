package service_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/tulis-go-api/internal/models"
	"github.com/noah-isme/tulis-go-api/internal/repository"
	"github.com/noah-isme/tulis-go-api/internal/service"
)

func seedAchievementCatalog(t *testing.T, db *gorm.DB) map[string]models.Achievement {
	t.Helper()
	tags := []string{
		models.AchievementFirstPractice,
		models.AchievementTenPractices,
		models.AchievementHighScorer25,
		models.AchievementIntegratedMaster,
		models.AchievementAcademicExpert,
	}

	catalog := make(map[string]models.Achievement, len(tags))
	for _, tag := range tags {
		badge := models.Achievement{Tag: tag, Name: tag}
		require.NoError(t, db.Create(&badge).Error)
		catalog[tag] = badge
	}
	return catalog
}

func completedSubmission(t *testing.T, db *gorm.DB, userID uint, taskType string, score int) models.Submission {
	t.Helper()
	submission := models.Submission{
		UserID:           userID,
		QuestionID:       1,
		TaskType:         taskType,
		Content:          "text",
		WordCount:        1,
		ProcessingStatus: models.ProcessingStatusCompleted,
		Score:            &score,
	}
	require.NoError(t, db.Create(&submission).Error)
	return submission
}

func grantedTags(t *testing.T, db *gorm.DB, userID uint, catalog map[string]models.Achievement) map[string]bool {
	t.Helper()
	var grants []models.UserAchievement
	require.NoError(t, db.Where("user_id = ?", userID).Find(&grants).Error)

	byID := make(map[uint]string, len(catalog))
	for tag, badge := range catalog {
		byID[badge.ID] = tag
	}

	held := make(map[string]bool, len(grants))
	for _, grant := range grants {
		held[byID[grant.AchievementID]] = true
	}
	return held
}

func TestEvaluateAfterGradingGrantsFirstPractice(t *testing.T) {
	db := setupGradingDB(t)
	catalog := seedAchievementCatalog(t, db)
	submission := completedSubmission(t, db, 1, models.TaskTypeIntegratedWriting, 20)

	svc := service.NewAchievementService(repository.NewAchievementRepository(db), nil, zerolog.Nop())
	require.NoError(t, svc.EvaluateAfterGrading(context.Background(), 1, submission.ID))

	held := grantedTags(t, db, 1, catalog)
	require.True(t, held[models.AchievementFirstPractice])
	require.False(t, held[models.AchievementHighScorer25])
	require.False(t, held[models.AchievementTenPractices])
}

func TestEvaluateAfterGradingGrantsHighScorerOnLatestScore(t *testing.T) {
	db := setupGradingDB(t)
	catalog := seedAchievementCatalog(t, db)
	submission := completedSubmission(t, db, 1, models.TaskTypeAcademicDiscussion, 27)

	svc := service.NewAchievementService(repository.NewAchievementRepository(db), nil, zerolog.Nop())
	require.NoError(t, svc.EvaluateAfterGrading(context.Background(), 1, submission.ID))

	held := grantedTags(t, db, 1, catalog)
	require.True(t, held[models.AchievementHighScorer25])
}

func TestEvaluateAfterGradingGrantsTaskTypeBadges(t *testing.T) {
	db := setupGradingDB(t)
	catalog := seedAchievementCatalog(t, db)

	var latest models.Submission
	for i := 0; i < 5; i++ {
		latest = completedSubmission(t, db, 1, models.TaskTypeIntegratedWriting, 20)
	}

	svc := service.NewAchievementService(repository.NewAchievementRepository(db), nil, zerolog.Nop())
	require.NoError(t, svc.EvaluateAfterGrading(context.Background(), 1, latest.ID))

	held := grantedTags(t, db, 1, catalog)
	require.True(t, held[models.AchievementIntegratedMaster])
	require.False(t, held[models.AchievementAcademicExpert])
}

func TestEvaluateAfterGradingIsIdempotent(t *testing.T) {
	db := setupGradingDB(t)
	seedAchievementCatalog(t, db)
	submission := completedSubmission(t, db, 1, models.TaskTypeIntegratedWriting, 20)

	svc := service.NewAchievementService(repository.NewAchievementRepository(db), nil, zerolog.Nop())
	require.NoError(t, svc.EvaluateAfterGrading(context.Background(), 1, submission.ID))
	require.NoError(t, svc.EvaluateAfterGrading(context.Background(), 1, submission.ID))

	var count int64
	require.NoError(t, db.Model(&models.UserAchievement{}).Where("user_id = ?", 1).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestListMarksUnlockedBadges(t *testing.T) {
	db := setupGradingDB(t)
	catalog := seedAchievementCatalog(t, db)
	submission := completedSubmission(t, db, 1, models.TaskTypeIntegratedWriting, 20)

	svc := service.NewAchievementService(repository.NewAchievementRepository(db), nil, zerolog.Nop())
	require.NoError(t, svc.EvaluateAfterGrading(context.Background(), 1, submission.ID))

	list, err := svc.List(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, list, len(catalog))

	unlocked := 0
	for _, item := range list {
		if item.Unlocked {
			unlocked++
			require.NotNil(t, item.UnlockedAt)
		}
	}
	require.Equal(t, 1, unlocked)
}
