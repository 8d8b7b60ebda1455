package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/tulis-go-api/internal/models"
)

// ErrStateConflict indicates a pipeline state transition was refused because
// the submission is not in a state that permits it.
var ErrStateConflict = errors.New("submission state conflict")

// SubmissionRepository defines data operations for the submission pipeline.
type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error
	GetByID(ctx context.Context, id uint) (models.Submission, error)
	GetByIDForUser(ctx context.Context, id, userID uint) (models.Submission, error)
	ListByUser(ctx context.Context, userID uint, reviewOnly bool) ([]models.Submission, error)
	BeginProcessing(ctx context.Context, id uint) error
	RequeueForRescore(ctx context.Context, id, userID uint) error
	StaleQueuedIDs(ctx context.Context, olderThan time.Time) ([]uint, error)
	CompleteGrading(ctx context.Context, id uint, score int, feedback datatypes.JSON, mistakes []models.Mistake) error
	MarkFailed(ctx context.Context, id uint, diagnostic string) error
	ToggleReview(ctx context.Context, id, userID uint) (bool, error)
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.db.WithContext(ctx).Preload("Question").First(&submission, id).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) GetByIDForUser(ctx context.Context, id, userID uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.db.WithContext(ctx).
		Preload("Question").
		Preload("Mistakes").
		Where("id = ?", id).
		Where("user_id = ?", userID).
		First(&submission).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) ListByUser(ctx context.Context, userID uint, reviewOnly bool) ([]models.Submission, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Preload("Question").
		Where("user_id = ?", userID)

	if reviewOnly {
		query = query.Where("is_for_review = ?", true)
	}

	var submissions []models.Submission
	if err := query.Order("submitted_at DESC").Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

// BeginProcessing atomically moves a queued submission into the processing
// state. The compare-and-set guarantees at most one grading attempt is in
// flight per submission: a concurrent attempt sees zero affected rows.
func (r *submissionRepository) BeginProcessing(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("id = ?", id).
		Where("processing_status = ?", models.ProcessingStatusQueued).
		Update("processing_status", models.ProcessingStatusProcessing)

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrStateConflict
	}

	return nil
}

// RequeueForRescore moves a terminal submission back to queued, clearing the
// stale diagnostic and mistake set in the same transaction. A submission that
// is already queued or still processing is refused. Returning to queued keeps
// one claim path: every grading attempt starts with the queued-to-processing
// compare-and-set in BeginProcessing, so duplicate queue deliveries for the
// same id can never both proceed.
func (r *submissionRepository) RequeueForRescore(ctx context.Context, id, userID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Submission{}).
			Where("id = ?", id).
			Where("user_id = ?", userID).
			Where("processing_status IN ?", []string{models.ProcessingStatusCompleted, models.ProcessingStatusFailed}).
			Updates(map[string]interface{}{
				"processing_status": models.ProcessingStatusQueued,
				"processing_error":  nil,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrStateConflict
		}

		return tx.Where("submission_id = ?", id).Delete(&models.Mistake{}).Error
	})
}

// StaleQueuedIDs lists submissions that have sat in the queued state since
// before the cutoff. These are rows the in-process queue dropped (full queue
// at intake, or a restart that emptied the channel); the sweeper re-enqueues
// them.
func (r *submissionRepository) StaleQueuedIDs(ctx context.Context, olderThan time.Time) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("processing_status = ?", models.ProcessingStatusQueued).
		Where("updated_at <= ?", olderThan).
		Order("updated_at").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}

	return ids, nil
}

// CompleteGrading commits the outcome of a successful grading attempt in a
// single transaction: the previous mistake set is replaced wholesale and the
// submission transitions to completed. Any failure rolls the whole attempt
// back, leaving the submission in its pre-attempt state.
func (r *submissionRepository) CompleteGrading(ctx context.Context, id uint, score int, feedback datatypes.JSON, mistakes []models.Mistake) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("submission_id = ?", id).Delete(&models.Mistake{}).Error; err != nil {
			return err
		}

		result := tx.Model(&models.Submission{}).
			Where("id = ?", id).
			Where("processing_status = ?", models.ProcessingStatusProcessing).
			Updates(map[string]interface{}{
				"processing_status": models.ProcessingStatusCompleted,
				"processing_error":  nil,
				"score":             score,
				"feedback":          feedback,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrStateConflict
		}

		if len(mistakes) == 0 {
			return nil
		}

		for i := range mistakes {
			mistakes[i].SubmissionID = id
		}

		return tx.Create(&mistakes).Error
	})
}

func (r *submissionRepository) MarkFailed(ctx context.Context, id uint, diagnostic string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("id = ?", id).
		Where("processing_status = ?", models.ProcessingStatusProcessing).
		Updates(map[string]interface{}{
			"processing_status": models.ProcessingStatusFailed,
			"processing_error":  diagnostic,
		})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrStateConflict
	}

	return nil
}

func (r *submissionRepository) ToggleReview(ctx context.Context, id, userID uint) (bool, error) {
	var submission models.Submission
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).Where("user_id = ?", userID).First(&submission).Error; err != nil {
			return err
		}

		submission.IsForReview = !submission.IsForReview
		return tx.Model(&submission).Update("is_for_review", submission.IsForReview).Error
	})
	if err != nil {
		return false, err
	}

	return submission.IsForReview, nil
}
