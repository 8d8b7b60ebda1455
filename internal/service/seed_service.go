package service

import (
	"context"
	"errors"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/noah-isme/tulis-go-api/internal/models"
	"github.com/noah-isme/tulis-go-api/internal/repository"
)

// ErrSeedForbidden indicates a seed request without the configured token.
var ErrSeedForbidden = errors.New("seed token mismatch")

// SeedResult reports what a seed run wrote.
type SeedResult struct {
	Questions    int64 `json:"questions"`
	Achievements int64 `json:"achievements"`
}

// SeedService loads the question bank and achievement catalog. It is guarded
// by a shared token so it can run against live environments.
type SeedService interface {
	Seed(ctx context.Context, token string) (SeedResult, error)
}

type seedService struct {
	questions    repository.QuestionRepository
	achievements repository.AchievementRepository
	token        string
	sanitizer    *bluemonday.Policy
	logger       zerolog.Logger
}

// NewSeedService constructs the seed service.
func NewSeedService(questions repository.QuestionRepository, achievements repository.AchievementRepository, token string, logger zerolog.Logger) SeedService {
	return &seedService{
		questions:    questions,
		achievements: achievements,
		token:        token,
		sanitizer:    bluemonday.UGCPolicy(),
		logger:       logger.With().Str("component", "seed_service").Logger(),
	}
}

func (s *seedService) Seed(ctx context.Context, token string) (SeedResult, error) {
	if s.token == "" || token != s.token {
		return SeedResult{}, ErrSeedForbidden
	}

	questions := seedQuestions()
	for i := range questions {
		questions[i].ReadingPassage = s.sanitizer.Sanitize(questions[i].ReadingPassage)
		questions[i].LectureScript = s.sanitizer.Sanitize(questions[i].LectureScript)
		questions[i].ProfessorPrompt = s.sanitizer.Sanitize(questions[i].ProfessorPrompt)
		questions[i].Student1Post = s.sanitizer.Sanitize(questions[i].Student1Post)
		questions[i].Student2Post = s.sanitizer.Sanitize(questions[i].Student2Post)
	}

	questionCount, err := s.questions.UpsertBatch(ctx, questions)
	if err != nil {
		return SeedResult{}, err
	}

	achievementCount, err := s.achievements.UpsertCatalog(ctx, seedAchievements())
	if err != nil {
		return SeedResult{}, err
	}

	s.logger.Info().
		Int64("questions", questionCount).
		Int64("achievements", achievementCount).
		Msg("Seed completed")

	return SeedResult{Questions: questionCount, Achievements: achievementCount}, nil
}

func seedAchievements() []models.Achievement {
	return []models.Achievement{
		{Tag: models.AchievementFirstPractice, Name: "First Steps", Description: "Complete your first graded practice."},
		{Tag: models.AchievementTenPractices, Name: "Persistent Writer", Description: "Complete ten graded practices."},
		{Tag: models.AchievementHighScorer25, Name: "High Scorer", Description: "Score 25 or above on a practice."},
		{Tag: models.AchievementIntegratedMaster, Name: "Integrated Master", Description: "Complete five integrated writing practices."},
		{Tag: models.AchievementAcademicExpert, Name: "Discussion Expert", Description: "Complete five academic discussion practices."},
	}
}

func seedQuestions() []models.Question {
	return []models.Question{
		{
			ID:       1,
			Title:    "Urban Beekeeping",
			Topic:    "Environment",
			TaskType: models.TaskTypeIntegratedWriting,
			ReadingPassage: "Urban beekeeping has grown rapidly over the past decade, and its advocates " +
				"point to three main benefits. First, city-kept hives help counteract the global decline " +
				"in pollinator populations by providing bees with a managed, protected habitat. Second, " +
				"urban bees improve the yields of community gardens and street trees, since a single hive " +
				"can pollinate plants within a three-mile radius. Third, beekeeping programs offer cities " +
				"an educational resource, giving residents a direct way to learn about food systems and ecology.",
			LectureScript: "The reading makes urban beekeeping sound like an unqualified good, but recent " +
				"research complicates each of those claims. To begin with, honeybees are not the pollinators " +
				"in decline. The species at risk are wild, native bees, and dense urban hives actually compete " +
				"with them for limited forage, making the decline worse, not better. Next, the pollination " +
				"benefit is overstated. Studies in several large cities found that once hive density passes a " +
				"certain threshold, there simply is not enough nectar to go around, and garden yields stop " +
				"improving. Finally, the educational value depends on proper management. Many hobbyist hives " +
				"are abandoned within two years, and neglected colonies spread disease to other bees, which " +
				"teaches exactly the wrong lesson about responsible stewardship.",
		},
		{
			ID:       2,
			Title:    "Remote Work Productivity",
			Topic:    "Business",
			TaskType: models.TaskTypeIntegratedWriting,
			ReadingPassage: "Many firms now argue that fully remote work increases productivity. Employees " +
				"save commuting time that can be redirected to their tasks. Offices are expensive, and the " +
				"savings can fund better tools and salaries. Moreover, remote-first companies can hire the " +
				"best candidates regardless of geography, raising the average quality of their workforce.",
			LectureScript: "Those arguments look convincing on paper, but the evidence tells a different " +
				"story. Commuting time saved is rarely converted into work. Surveys show most of it goes to " +
				"household tasks and leisure, which is fine for well-being but does not raise output. As for " +
				"cost savings, firms that closed offices reported new spending on home-office stipends, travel " +
				"for periodic gatherings, and coordination software, which consumed most of the rent savings. " +
				"And the global hiring argument ignores time zones. Teams spread across many regions spend " +
				"more hours in asynchronous handoffs, and studies of large remote firms show slower project " +
				"completion despite stronger individual credentials.",
		},
		{
			ID:              3,
			Title:           "Grades for Group Projects",
			Topic:           "Education",
			TaskType:        models.TaskTypeAcademicDiscussion,
			ProfessorPrompt: "This week we discussed collaborative learning. Some universities assign a single shared grade to every member of a group project, while others grade each member individually based on their contribution. Which approach do you think is fairer, and why?",
			Student1Author:  "Maria",
			Student1Post:    "I think a single shared grade is fairer. A group project is supposed to measure the final product, and the final product is collective. Individual grading encourages students to work in silos so their contribution is visible, which defeats the purpose of collaboration.",
			Student2Author:  "Devon",
			Student2Post:    "I disagree. Shared grades punish diligent students for teammates who contribute nothing. Individual grading, even if imperfect, at least ties each student's mark to their own effort, which is what a grade is supposed to represent.",
		},
		{
			ID:              4,
			Title:           "Public Funding for the Arts",
			Topic:           "Society",
			TaskType:        models.TaskTypeAcademicDiscussion,
			ProfessorPrompt: "Governments have limited budgets and must choose what to support. Some people believe public money should fund the arts, such as museums, theaters, and public sculpture. Others believe those funds should go exclusively to services like healthcare and infrastructure. Where do you stand?",
			Student1Author:  "Priya",
			Student1Post:    "Essential services must come first. It is hard to justify funding a sculpture garden when hospitals are understaffed. The arts can and do survive on private donations and ticket sales, but no one privately funds a public road.",
			Student2Author:  "Tomás",
			Student2Post:    "I think this framing is a false choice. Arts funding is a tiny fraction of any national budget, and studies show cultural institutions return more in tourism revenue than they cost. Cutting them would not fix healthcare, but it would make cities poorer in every sense.",
		},
	}
}
