package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/tulis-go-api/internal/models"
	"github.com/noah-isme/tulis-go-api/internal/repository"
	"github.com/noah-isme/tulis-go-api/internal/service"
)

type stubNarration struct {
	mu        sync.Mutex
	triggered []uint
}

func (n *stubNarration) Trigger(questionID uint) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.triggered = append(n.triggered, questionID)
}

func (n *stubNarration) EnsureAudio(ctx context.Context, questionID uint) {
	n.Trigger(questionID)
}

func (n *stubNarration) triggeredIDs() []uint {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]uint, len(n.triggered))
	copy(out, n.triggered)
	return out
}

func newQuestionService(t *testing.T, db *gorm.DB, narration service.NarrationService) service.QuestionService {
	t.Helper()
	return service.NewQuestionService(
		repository.NewQuestionRepository(db),
		repository.NewDraftRepository(db),
		narration,
		zerolog.Nop(),
	)
}

func TestGetTriggersNarrationForMissingAudio(t *testing.T) {
	db := setupGradingDB(t)
	question := models.Question{
		ID:            1,
		Title:         "Urban Beekeeping",
		TaskType:      models.TaskTypeIntegratedWriting,
		LectureScript: "The reading overlooks three problems.",
	}
	require.NoError(t, db.Create(&question).Error)

	narration := &stubNarration{}
	svc := newQuestionService(t, db, narration)

	detail, err := svc.Get(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, "Urban Beekeeping", detail.Title)
	require.Equal(t, []uint{1}, narration.triggeredIDs())
}

func TestGetDoesNotTriggerNarrationWhenAudioExists(t *testing.T) {
	db := setupGradingDB(t)
	url := "https://cdn.example.com/a.mp3"
	question := models.Question{
		ID:              1,
		Title:           "Urban Beekeeping",
		TaskType:        models.TaskTypeIntegratedWriting,
		LectureScript:   "script",
		LectureAudioURL: &url,
	}
	require.NoError(t, db.Create(&question).Error)

	narration := &stubNarration{}
	svc := newQuestionService(t, db, narration)

	_, err := svc.Get(context.Background(), 1)
	require.NoError(t, err)
	require.Empty(t, narration.triggeredIDs())
}

func TestListMarksCompletedQuestions(t *testing.T) {
	db := setupGradingDB(t)
	require.NoError(t, db.Create(&models.Question{ID: 1, Title: "A", TaskType: models.TaskTypeIntegratedWriting}).Error)
	require.NoError(t, db.Create(&models.Question{ID: 2, Title: "B", TaskType: models.TaskTypeAcademicDiscussion}).Error)

	score := 20
	require.NoError(t, db.Create(&models.Submission{
		UserID:           1,
		QuestionID:       1,
		TaskType:         models.TaskTypeIntegratedWriting,
		WordCount:        1,
		ProcessingStatus: models.ProcessingStatusCompleted,
		Score:            &score,
	}).Error)

	svc := newQuestionService(t, db, &stubNarration{})

	list, err := svc.List(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.True(t, list[0].HasCompleted)
	require.False(t, list[1].HasCompleted)
}

func TestWritingTestReturnsOneQuestionPerTaskType(t *testing.T) {
	db := setupGradingDB(t)
	require.NoError(t, db.Create(&models.Question{ID: 1, Title: "A", TaskType: models.TaskTypeIntegratedWriting, LectureScript: "s"}).Error)
	require.NoError(t, db.Create(&models.Question{ID: 2, Title: "B", TaskType: models.TaskTypeAcademicDiscussion}).Error)

	svc := newQuestionService(t, db, &stubNarration{})

	pair, err := svc.WritingTest(context.Background())
	require.NoError(t, err)
	require.Len(t, pair, 2)
	require.Equal(t, models.TaskTypeIntegratedWriting, pair[0].TaskType)
	require.Equal(t, models.TaskTypeAcademicDiscussion, pair[1].TaskType)
}

func TestWritingTestFailsWithIncompleteBank(t *testing.T) {
	db := setupGradingDB(t)
	require.NoError(t, db.Create(&models.Question{ID: 1, Title: "A", TaskType: models.TaskTypeIntegratedWriting}).Error)

	svc := newQuestionService(t, db, &stubNarration{})

	_, err := svc.WritingTest(context.Background())
	require.ErrorIs(t, err, service.ErrNotEnoughQuestions)
}

func TestDraftRoundTrip(t *testing.T) {
	db := setupGradingDB(t)
	require.NoError(t, db.Create(&models.Question{ID: 1, Title: "A", TaskType: models.TaskTypeAcademicDiscussion}).Error)

	svc := newQuestionService(t, db, &stubNarration{})

	require.NoError(t, svc.SaveDraft(context.Background(), 1, 1, "first pass"))
	require.NoError(t, svc.SaveDraft(context.Background(), 1, 1, "second pass"))

	draft, err := svc.GetDraft(context.Background(), 1, 1)
	require.NoError(t, err)
	require.Equal(t, "second pass", draft.Content)

	_, err = svc.GetDraft(context.Background(), 2, 1)
	require.ErrorIs(t, err, service.ErrDraftNotFound)
}
