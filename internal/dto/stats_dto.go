package dto

import (
	"time"

	"github.com/noah-isme/tulis-go-api/internal/models"
	"github.com/noah-isme/tulis-go-api/internal/repository"
)

// UserStatsResponse is the cached aggregate statistics payload.
type UserStatsResponse struct {
	Total       int64                      `json:"total"`
	Average     float64                    `json:"average"`
	ByTaskType  []repository.TaskTypeStats `json:"by_task_type"`
	LatestScore *int                       `json:"latest_score,omitempty"`
	GeneratedAt time.Time                  `json:"generated_at"`
	CacheHit    bool                       `json:"cache_hit"`
}

// AchievementResponse is one badge with its unlocked state for a user.
type AchievementResponse struct {
	ID          uint       `json:"id"`
	Tag         string     `json:"tag"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	IconURL     string     `json:"icon_url,omitempty"`
	Unlocked    bool       `json:"unlocked"`
	UnlockedAt  *time.Time `json:"unlocked_at,omitempty"`
}

// NewAchievementResponse maps a badge and an optional grant onto the response shape.
func NewAchievementResponse(achievement models.Achievement, grant *models.UserAchievement) AchievementResponse {
	response := AchievementResponse{
		ID:          achievement.ID,
		Tag:         achievement.Tag,
		Name:        achievement.Name,
		Description: achievement.Description,
		IconURL:     achievement.IconURL,
	}

	if grant != nil {
		response.Unlocked = true
		unlockedAt := grant.UnlockedAt
		response.UnlockedAt = &unlockedAt
	}

	return response
}
