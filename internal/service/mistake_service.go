package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/noah-isme/tulis-go-api/internal/dto"
	"github.com/noah-isme/tulis-go-api/internal/models"
	"github.com/noah-isme/tulis-go-api/internal/repository"
)

// ErrMistakeNotFound indicates the mistake does not exist or belongs to
// another user.
var ErrMistakeNotFound = errors.New("mistake not found")

// ErrInvalidMistakeStatus indicates a status outside the review lifecycle.
var ErrInvalidMistakeStatus = errors.New("invalid mistake status")

// MistakeService exposes the user's mistake notebook.
type MistakeService interface {
	List(ctx context.Context, userID uint) ([]dto.MistakeResponse, error)
	UpdateStatus(ctx context.Context, id, userID uint, status string) (dto.MistakeResponse, error)
}

type mistakeService struct {
	mistakes repository.MistakeRepository
}

// NewMistakeService constructs the mistake service.
func NewMistakeService(mistakes repository.MistakeRepository) MistakeService {
	return &mistakeService{mistakes: mistakes}
}

func (s *mistakeService) List(ctx context.Context, userID uint) ([]dto.MistakeResponse, error) {
	mistakes, err := s.mistakes.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.MistakeResponse, 0, len(mistakes))
	for _, mistake := range mistakes {
		responses = append(responses, dto.NewMistakeResponse(mistake))
	}

	return responses, nil
}

func (s *mistakeService) UpdateStatus(ctx context.Context, id, userID uint, status string) (dto.MistakeResponse, error) {
	if !models.ValidMistakeStatus(status) {
		return dto.MistakeResponse{}, ErrInvalidMistakeStatus
	}

	mistake, err := s.mistakes.UpdateStatus(ctx, id, userID, status)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.MistakeResponse{}, ErrMistakeNotFound
		}
		return dto.MistakeResponse{}, err
	}

	return dto.NewMistakeResponse(mistake), nil
}
