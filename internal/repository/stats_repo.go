package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/noah-isme/tulis-go-api/internal/models"
)

// TaskTypeStats aggregates graded submissions for one task type.
type TaskTypeStats struct {
	TaskType string  `json:"task_type"`
	Count    int64   `json:"count"`
	Average  float64 `json:"average"`
}

// UserStats is the aggregate picture for the stats endpoint.
type UserStats struct {
	Total       int64           `json:"total"`
	Average     float64         `json:"average"`
	ByTaskType  []TaskTypeStats `json:"by_task_type"`
	LatestScore *int            `json:"latest_score,omitempty"`
}

// StatsRepository computes aggregate statistics over graded submissions.
type StatsRepository interface {
	UserStats(ctx context.Context, userID uint) (UserStats, error)
}

type statsRepository struct {
	db *gorm.DB
}

// NewStatsRepository instantiates the repository.
func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) UserStats(ctx context.Context, userID uint) (UserStats, error) {
	graded := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("user_id = ?", userID).
		Where("processing_status = ?", models.ProcessingStatusCompleted)

	stats := UserStats{ByTaskType: []TaskTypeStats{}}

	var overall struct {
		Total   int64
		Average float64
	}
	if err := graded.Session(&gorm.Session{}).
		Select("COUNT(*) AS total, COALESCE(AVG(score), 0) AS average").
		Scan(&overall).Error; err != nil {
		return UserStats{}, err
	}
	stats.Total = overall.Total
	stats.Average = overall.Average

	if err := graded.Session(&gorm.Session{}).
		Select("task_type, COUNT(*) AS count, COALESCE(AVG(score), 0) AS average").
		Group("task_type").
		Scan(&stats.ByTaskType).Error; err != nil {
		return UserStats{}, err
	}

	var latest models.Submission
	err := graded.Session(&gorm.Session{}).
		Order("submitted_at DESC").
		Select("score").
		First(&latest).Error
	switch {
	case err == nil:
		stats.LatestScore = latest.Score
	case errors.Is(err, gorm.ErrRecordNotFound):
		// no graded submissions yet
	default:
		return UserStats{}, err
	}

	return stats, nil
}
