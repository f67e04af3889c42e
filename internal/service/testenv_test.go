package service

import (
	"testing"

	"classroom_backend/internal/model"
	"classroom_backend/internal/repository"
	"classroom_backend/internal/util"
	"classroom_backend/pkg/database"
	"classroom_backend/pkg/logger"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	logger.Log = zap.NewNop()
}

// testEnv wires the full service stack against an in-memory database.
type testEnv struct {
	db *gorm.DB

	users       *repository.UserRepository
	classes     *repository.ClassRepository
	materials   *repository.MaterialRepository
	quizzes     *repository.QuizRepository
	results     *repository.ResultRepository
	checkpoints *repository.CheckpointRepository
	essays      *repository.EssayRepository

	access     *AccessChecker
	attempt    *AttemptService
	checkpoint *CheckpointService
	grading    *EssayGradingService
	quizSvc    *QuizService
	dashboard  *DashboardService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))

	env := &testEnv{db: db}
	env.users = repository.NewUserRepository(db)
	env.classes = repository.NewClassRepository(db)
	env.materials = repository.NewMaterialRepository(db)
	env.quizzes = repository.NewQuizRepository(db)
	env.results = repository.NewResultRepository(db)
	env.checkpoints = repository.NewCheckpointRepository(db)
	env.essays = repository.NewEssayRepository(db)

	env.access = NewAccessChecker(env.classes, env.quizzes)
	env.attempt = NewAttemptService(env.quizzes, env.results, env.checkpoints, env.essays, env.access, db)
	env.checkpoint = NewCheckpointService(env.quizzes, env.results, env.checkpoints, env.attempt)
	env.grading = NewEssayGradingService(env.quizzes, env.results, env.essays, env.access, db)
	env.quizSvc = NewQuizService(env.quizzes, env.access)
	env.dashboard = NewDashboardService(env.classes, env.quizzes, env.results, env.materials, env.users, env.attempt, env.access, nil)
	return env
}

func (e *testEnv) createUser(t *testing.T, name string, role model.UserRole) *model.User {
	t.Helper()
	user := &model.User{
		Name:     name,
		Email:    name + "@example.com",
		Password: "hashed",
		Role:     role,
	}
	require.NoError(t, e.users.Create(user))
	return user
}

func claimsFor(user *model.User) *util.Claims {
	return &util.Claims{UserID: user.ID, Role: user.Role, Email: user.Email}
}

// createClass creates a class owned by teacher and enrolls students.
func (e *testEnv) createClass(t *testing.T, teacher *model.User, students ...*model.User) *model.Class {
	t.Helper()
	class := &model.Class{Name: "Algebra", TeacherID: teacher.ID}
	require.NoError(t, e.classes.Create(class))
	for _, s := range students {
		require.NoError(t, e.classes.AddMember(&model.ClassMember{ClassID: class.ID, UserID: s.ID}))
	}
	return class
}

// createQuiz publishes a quiz with the given questions.
func (e *testEnv) createQuiz(t *testing.T, class *model.Class, quiz *model.Quiz, questions []model.Question) *model.Quiz {
	t.Helper()
	quiz.ClassID = class.ID
	quiz.CreatorID = class.TeacherID
	if quiz.Topic == "" {
		quiz.Topic = "Fractions"
	}
	if quiz.MaxAttempts == 0 {
		quiz.MaxAttempts = 2
	}
	if quiz.Weight == 0 {
		quiz.Weight = 1
	}
	quiz.IsActive = true
	quiz.Status = model.QuizPublished
	require.NoError(t, e.quizzes.CreateWithQuestions(quiz, questions))
	return quiz
}

func objectiveQuestions() []model.Question {
	return []model.Question{
		{Type: model.QuestionMCQ, Text: "2+2?", Options: []byte(`["3","4"]`), Answer: "4", MaxScore: 2, Order: 1},
		{Type: model.QuestionTrueFalse, Text: "1 is odd", Answer: "true", MaxScore: 1, Order: 2},
	}
}

func mixedQuestions() []model.Question {
	return append(objectiveQuestions(),
		model.Question{Type: model.QuestionEssay, Text: "Explain primes", MaxScore: 5, Order: 3},
	)
}
