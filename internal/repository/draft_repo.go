package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/tulis-go-api/internal/models"
)

// DraftRepository defines data operations for scratch drafts.
type DraftRepository interface {
	Save(ctx context.Context, draft *models.Draft) error
	GetByUserAndQuestion(ctx context.Context, userID, questionID uint) (models.Draft, error)
	DeleteByUserAndQuestion(ctx context.Context, userID, questionID uint) error
}

type draftRepository struct {
	db *gorm.DB
}

// NewDraftRepository instantiates the repository.
func NewDraftRepository(db *gorm.DB) DraftRepository {
	return &draftRepository{db: db}
}

func (r *draftRepository) Save(ctx context.Context, draft *models.Draft) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "question_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"content", "updated_at"}),
	}).Create(draft).Error
}

func (r *draftRepository) GetByUserAndQuestion(ctx context.Context, userID, questionID uint) (models.Draft, error) {
	var draft models.Draft
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("question_id = ?", questionID).
		First(&draft).Error; err != nil {
		return models.Draft{}, err
	}

	return draft, nil
}

func (r *draftRepository) DeleteByUserAndQuestion(ctx context.Context, userID, questionID uint) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("question_id = ?", questionID).
		Delete(&models.Draft{}).Error
}
