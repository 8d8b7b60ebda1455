package models

import "time"

// Achievement tags awarded by the evaluator.
const (
	AchievementFirstPractice    = "FIRST_PRACTICE"
	AchievementTenPractices     = "TEN_PRACTICES"
	AchievementHighScorer25     = "HIGH_SCORER_25"
	AchievementIntegratedMaster = "INTEGRATED_MASTER"
	AchievementAcademicExpert   = "ACADEMIC_EXPERT"
)

// Achievement describes a badge a user can unlock.
type Achievement struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Tag         string    `gorm:"size:64;uniqueIndex;not null" json:"tag"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	IconURL     string    `gorm:"size:512" json:"icon_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// UserAchievement records a badge grant. Grants are unique per (user,
// achievement) pair and idempotent: regranting is a no-op.
type UserAchievement struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	UserID        uint        `gorm:"not null;uniqueIndex:idx_user_achievement" json:"user_id"`
	AchievementID uint        `gorm:"not null;uniqueIndex:idx_user_achievement" json:"achievement_id"`
	UnlockedAt    time.Time   `gorm:"autoCreateTime" json:"unlocked_at"`
	Achievement   Achievement `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
