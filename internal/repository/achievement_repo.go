package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/tulis-go-api/internal/models"
)

// UserGradingStats aggregates the statistics the achievement rules inspect.
type UserGradingStats struct {
	TotalSubmissions      int64
	IntegratedSubmissions int64
	AcademicSubmissions   int64
	LatestScore           *int
}

// AchievementRepository defines data operations for badges and grants.
type AchievementRepository interface {
	GradingStats(ctx context.Context, userID, submissionID uint) (UserGradingStats, error)
	ListByTags(ctx context.Context, tags []string) ([]models.Achievement, error)
	ListWithUnlocked(ctx context.Context, userID uint) ([]models.Achievement, map[uint]models.UserAchievement, error)
	Grant(ctx context.Context, userID, achievementID uint) (bool, error)
	UpsertCatalog(ctx context.Context, achievements []models.Achievement) (int64, error)
}

type achievementRepository struct {
	db *gorm.DB
}

// NewAchievementRepository instantiates the repository.
func NewAchievementRepository(db *gorm.DB) AchievementRepository {
	return &achievementRepository{db: db}
}

func (r *achievementRepository) GradingStats(ctx context.Context, userID, submissionID uint) (UserGradingStats, error) {
	stats := UserGradingStats{}
	db := r.db.WithContext(ctx)

	if err := db.Model(&models.Submission{}).
		Where("user_id = ?", userID).
		Where("processing_status = ?", models.ProcessingStatusCompleted).
		Count(&stats.TotalSubmissions).Error; err != nil {
		return UserGradingStats{}, err
	}

	if err := db.Model(&models.Submission{}).
		Where("user_id = ?", userID).
		Where("processing_status = ?", models.ProcessingStatusCompleted).
		Where("task_type = ?", models.TaskTypeIntegratedWriting).
		Count(&stats.IntegratedSubmissions).Error; err != nil {
		return UserGradingStats{}, err
	}

	if err := db.Model(&models.Submission{}).
		Where("user_id = ?", userID).
		Where("processing_status = ?", models.ProcessingStatusCompleted).
		Where("task_type = ?", models.TaskTypeAcademicDiscussion).
		Count(&stats.AcademicSubmissions).Error; err != nil {
		return UserGradingStats{}, err
	}

	var submission models.Submission
	if err := db.Select("score").First(&submission, submissionID).Error; err != nil {
		return UserGradingStats{}, err
	}
	stats.LatestScore = submission.Score

	return stats, nil
}

func (r *achievementRepository) ListByTags(ctx context.Context, tags []string) ([]models.Achievement, error) {
	if len(tags) == 0 {
		return nil, nil
	}

	var achievements []models.Achievement
	if err := r.db.WithContext(ctx).Where("tag IN ?", tags).Find(&achievements).Error; err != nil {
		return nil, err
	}

	return achievements, nil
}

func (r *achievementRepository) ListWithUnlocked(ctx context.Context, userID uint) ([]models.Achievement, map[uint]models.UserAchievement, error) {
	var achievements []models.Achievement
	if err := r.db.WithContext(ctx).Order("id").Find(&achievements).Error; err != nil {
		return nil, nil, err
	}

	var grants []models.UserAchievement
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&grants).Error; err != nil {
		return nil, nil, err
	}

	unlocked := make(map[uint]models.UserAchievement, len(grants))
	for _, grant := range grants {
		unlocked[grant.AchievementID] = grant
	}

	return achievements, unlocked, nil
}

// Grant inserts a grant row and reports whether it was newly created.
// Regranting an already-held achievement is a no-op.
func (r *achievementRepository) Grant(ctx context.Context, userID, achievementID uint) (bool, error) {
	grant := models.UserAchievement{UserID: userID, AchievementID: achievementID}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "achievement_id"}},
			DoNothing: true,
		}).
		Create(&grant)

	return result.RowsAffected > 0, result.Error
}

func (r *achievementRepository) UpsertCatalog(ctx context.Context, achievements []models.Achievement) (int64, error) {
	if len(achievements) == 0 {
		return 0, nil
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tag"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "description", "icon_url"}),
	}).Create(&achievements)

	return result.RowsAffected, result.Error
}
