package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/noah-isme/tulis-go-api/internal/dto"
	"github.com/noah-isme/tulis-go-api/internal/models"
	"github.com/noah-isme/tulis-go-api/internal/repository"
)

const achievementSubject = "tulis.achievements.unlocked"

// achievementRule is one ordered threshold the evaluator checks.
type achievementRule struct {
	Tag       string
	Qualifies func(stats repository.UserGradingStats) bool
}

var achievementRules = []achievementRule{
	{Tag: models.AchievementFirstPractice, Qualifies: func(s repository.UserGradingStats) bool {
		return s.TotalSubmissions >= 1
	}},
	{Tag: models.AchievementTenPractices, Qualifies: func(s repository.UserGradingStats) bool {
		return s.TotalSubmissions >= 10
	}},
	{Tag: models.AchievementHighScorer25, Qualifies: func(s repository.UserGradingStats) bool {
		return s.LatestScore != nil && *s.LatestScore >= 25
	}},
	{Tag: models.AchievementIntegratedMaster, Qualifies: func(s repository.UserGradingStats) bool {
		return s.IntegratedSubmissions >= 5
	}},
	{Tag: models.AchievementAcademicExpert, Qualifies: func(s repository.UserGradingStats) bool {
		return s.AcademicSubmissions >= 5
	}},
}

// AchievementService evaluates threshold badges after grading commits and
// serves the badge catalog.
type AchievementService interface {
	EvaluateAfterGrading(ctx context.Context, userID, submissionID uint) error
	List(ctx context.Context, userID uint) ([]dto.AchievementResponse, error)
}

type achievementEvent struct {
	UserID        uint      `json:"user_id"`
	AchievementID uint      `json:"achievement_id"`
	Tag           string    `json:"tag"`
	UnlockedAt    time.Time `json:"unlocked_at"`
}

type achievementService struct {
	repo   repository.AchievementRepository
	events *nats.Conn
	logger zerolog.Logger
}

// NewAchievementService constructs the evaluator. A nil NATS connection
// disables event publication.
func NewAchievementService(repo repository.AchievementRepository, events *nats.Conn, logger zerolog.Logger) AchievementService {
	return &achievementService{
		repo:   repo,
		events: events,
		logger: logger.With().Str("component", "achievement_service").Logger(),
	}
}

// EvaluateAfterGrading computes the qualifying rules against the user's
// aggregate statistics and grants any badge not already held. Grants are
// idempotent and never revoked.
func (s *achievementService) EvaluateAfterGrading(ctx context.Context, userID, submissionID uint) error {
	stats, err := s.repo.GradingStats(ctx, userID, submissionID)
	if err != nil {
		return err
	}

	tags := make([]string, 0, len(achievementRules))
	for _, rule := range achievementRules {
		if rule.Qualifies(stats) {
			tags = append(tags, rule.Tag)
		}
	}

	if len(tags) == 0 {
		return nil
	}

	achievements, err := s.repo.ListByTags(ctx, tags)
	if err != nil {
		return err
	}

	for _, achievement := range achievements {
		granted, err := s.repo.Grant(ctx, userID, achievement.ID)
		if err != nil {
			return err
		}

		// Only freshly unlocked badges produce an event; a re-evaluation of
		// an already-held badge stays silent.
		if granted {
			s.publish(achievement, userID)
		}
	}

	s.logger.Info().Uint("user_id", userID).Strs("tags", tags).Msg("achievements evaluated")

	return nil
}

func (s *achievementService) List(ctx context.Context, userID uint) ([]dto.AchievementResponse, error) {
	achievements, unlocked, err := s.repo.ListWithUnlocked(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.AchievementResponse, 0, len(achievements))
	for _, achievement := range achievements {
		var grant *models.UserAchievement
		if held, ok := unlocked[achievement.ID]; ok {
			grantCopy := held
			grant = &grantCopy
		}
		responses = append(responses, dto.NewAchievementResponse(achievement, grant))
	}

	return responses, nil
}

func (s *achievementService) publish(achievement models.Achievement, userID uint) {
	if s.events == nil {
		return
	}

	payload, err := json.Marshal(achievementEvent{
		UserID:        userID,
		AchievementID: achievement.ID,
		Tag:           achievement.Tag,
		UnlockedAt:    time.Now().UTC(),
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to encode achievement event")
		return
	}

	if err := s.events.Publish(achievementSubject, payload); err != nil {
		s.logger.Warn().Err(err).Str("tag", achievement.Tag).Msg("failed to publish achievement event")
	}
}
