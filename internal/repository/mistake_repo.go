package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/tulis-go-api/internal/models"
)

// MistakeRepository defines data operations for extracted mistakes.
type MistakeRepository interface {
	ListByUser(ctx context.Context, userID uint) ([]models.Mistake, error)
	UpdateStatus(ctx context.Context, id, userID uint, status string) (models.Mistake, error)
}

type mistakeRepository struct {
	db *gorm.DB
}

// NewMistakeRepository instantiates the repository.
func NewMistakeRepository(db *gorm.DB) MistakeRepository {
	return &mistakeRepository{db: db}
}

func (r *mistakeRepository) ListByUser(ctx context.Context, userID uint) ([]models.Mistake, error) {
	var mistakes []models.Mistake
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&mistakes).Error; err != nil {
		return nil, err
	}

	return mistakes, nil
}

func (r *mistakeRepository) UpdateStatus(ctx context.Context, id, userID uint, status string) (models.Mistake, error) {
	var mistake models.Mistake
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).Where("user_id = ?", userID).First(&mistake).Error; err != nil {
			return err
		}

		mistake.Status = status
		return tx.Model(&mistake).Update("status", status).Error
	})
	if err != nil {
		return models.Mistake{}, err
	}

	return mistake, nil
}
