package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/tulis-go-api/internal/models"
	"github.com/noah-isme/tulis-go-api/internal/repository"
	"github.com/noah-isme/tulis-go-api/internal/service"
)

func seedMistake(t *testing.T, db *gorm.DB, userID uint) models.Mistake {
	t.Helper()
	mistake := models.Mistake{
		SubmissionID:  1,
		UserID:        userID,
		Type:          models.MistakeTypeGrammar,
		OriginalText:  "He go to school",
		CorrectedText: "He goes to school",
		Explanation:   "Third person singular takes -s.",
		Status:        models.MistakeStatusNew,
	}
	require.NoError(t, db.Create(&mistake).Error)
	return mistake
}

func TestMistakeListScopedToOwner(t *testing.T) {
	db := setupGradingDB(t)
	seedMistake(t, db, 1)
	seedMistake(t, db, 2)

	svc := service.NewMistakeService(repository.NewMistakeRepository(db))

	mistakes, err := svc.List(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, mistakes, 1)
	require.Equal(t, "He go to school", mistakes[0].OriginalText)
}

func TestUpdateMistakeStatus(t *testing.T) {
	db := setupGradingDB(t)
	mistake := seedMistake(t, db, 1)

	svc := service.NewMistakeService(repository.NewMistakeRepository(db))

	updated, err := svc.UpdateStatus(context.Background(), mistake.ID, 1, models.MistakeStatusMastered)
	require.NoError(t, err)
	require.Equal(t, models.MistakeStatusMastered, updated.Status)
}

func TestUpdateMistakeStatusRejectsUnknownState(t *testing.T) {
	db := setupGradingDB(t)
	mistake := seedMistake(t, db, 1)

	svc := service.NewMistakeService(repository.NewMistakeRepository(db))

	_, err := svc.UpdateStatus(context.Background(), mistake.ID, 1, "archived")
	require.ErrorIs(t, err, service.ErrInvalidMistakeStatus)
}

func TestUpdateMistakeStatusHidesOtherUsers(t *testing.T) {
	db := setupGradingDB(t)
	mistake := seedMistake(t, db, 1)

	svc := service.NewMistakeService(repository.NewMistakeRepository(db))

	_, err := svc.UpdateStatus(context.Background(), mistake.ID, 99, models.MistakeStatusReviewing)
	require.ErrorIs(t, err, service.ErrMistakeNotFound)

	var stored models.Mistake
	require.NoError(t, db.First(&stored, mistake.ID).Error)
	require.Equal(t, models.MistakeStatusNew, stored.Status)
}
