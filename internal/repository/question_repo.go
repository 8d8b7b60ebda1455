package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/tulis-go-api/internal/models"
)

// QuestionRepository defines data operations for practice questions.
type QuestionRepository interface {
	List(ctx context.Context) ([]models.Question, error)
	GetByID(ctx context.Context, id uint) (models.Question, error)
	RandomByTaskType(ctx context.Context, taskType string) (models.Question, error)
	CompletedQuestionIDs(ctx context.Context, userID uint) (map[uint]bool, error)
	SetLectureAudioURL(ctx context.Context, id uint, url string) (bool, error)
	UpsertBatch(ctx context.Context, questions []models.Question) (int64, error)
}

type questionRepository struct {
	db *gorm.DB
}

// NewQuestionRepository instantiates the repository.
func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) List(ctx context.Context) ([]models.Question, error) {
	var questions []models.Question
	if err := r.db.WithContext(ctx).Order("id").Find(&questions).Error; err != nil {
		return nil, err
	}

	return questions, nil
}

func (r *questionRepository) GetByID(ctx context.Context, id uint) (models.Question, error) {
	var question models.Question
	if err := r.db.WithContext(ctx).First(&question, id).Error; err != nil {
		return models.Question{}, err
	}

	return question, nil
}

func (r *questionRepository) RandomByTaskType(ctx context.Context, taskType string) (models.Question, error) {
	var question models.Question
	if err := r.db.WithContext(ctx).
		Where("task_type = ?", taskType).
		Order("RANDOM()").
		First(&question).Error; err != nil {
		return models.Question{}, err
	}

	return question, nil
}

func (r *questionRepository) CompletedQuestionIDs(ctx context.Context, userID uint) (map[uint]bool, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("user_id = ?", userID).
		Where("processing_status = ?", models.ProcessingStatusCompleted).
		Distinct("question_id").
		Pluck("question_id", &ids).Error; err != nil {
		return nil, err
	}

	completed := make(map[uint]bool, len(ids))
	for _, id := range ids {
		completed[id] = true
	}

	return completed, nil
}

// SetLectureAudioURL persists the narration URL only while the column is still
// empty. Narration is generate-once: a URL is never overwritten.
func (r *questionRepository) SetLectureAudioURL(ctx context.Context, id uint, url string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Question{}).
		Where("id = ?", id).
		Where("lecture_audio_url IS NULL OR lecture_audio_url = ''").
		Update("lecture_audio_url", url)

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *questionRepository) UpsertBatch(ctx context.Context, questions []models.Question) (int64, error) {
	if len(questions) == 0 {
		return 0, nil
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "topic", "task_type", "reading_passage", "lecture_script",
			"professor_prompt", "student1_author", "student1_post", "student2_author", "student2_post",
		}),
	}).Create(&questions)

	return result.RowsAffected, result.Error
}
