package service

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"classroom_backend/internal/model"
	"classroom_backend/internal/repository"
	"classroom_backend/internal/util"
	"classroom_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const classReportTTL = 5 * time.Minute

// DashboardService answers the reporting questions: how did one student
// do across a class, and how is the whole class doing. Class reports
// are cached in Redis; they are read often and recomputing them walks
// every attempt.
type DashboardService struct {
	ClassRepo    *repository.ClassRepository
	QuizRepo     *repository.QuizRepository
	ResultRepo   *repository.ResultRepository
	MaterialRepo *repository.MaterialRepository
	UserRepo     *repository.UserRepository
	Attempts     *AttemptService
	Access       *AccessChecker
	Redis        *redis.Client
}

func NewDashboardService(
	classRepo *repository.ClassRepository,
	quizRepo *repository.QuizRepository,
	resultRepo *repository.ResultRepository,
	materialRepo *repository.MaterialRepository,
	userRepo *repository.UserRepository,
	attempts *AttemptService,
	access *AccessChecker,
	rdb *redis.Client,
) *DashboardService {
	return &DashboardService{
		ClassRepo:    classRepo,
		QuizRepo:     quizRepo,
		ResultRepo:   resultRepo,
		MaterialRepo: materialRepo,
		UserRepo:     userRepo,
		Attempts:     attempts,
		Access:       access,
		Redis:        rdb,
	}
}

// QuizScore is one quiz's contribution to a student's overview.
type QuizScore struct {
	QuizID    string  `json:"quizId"`
	Topic     string  `json:"topic"`
	Weight    int     `json:"weight"`
	Attempted bool    `json:"attempted"`
	Best      float64 `json:"best"`
}

// StudentOverview is one student's standing in a class: best percentage
// per quiz, the weighted average over attempted quizzes, material
// completion, and the overall progress blend of the two.
type StudentOverview struct {
	StudentID           uint        `json:"studentId"`
	StudentName         string      `json:"studentName,omitempty"`
	ClassID             string      `json:"classId"`
	Quizzes             []QuizScore `json:"quizzes"`
	OverallAverage      float64     `json:"overallAverage"`
	MaterialsTotal      int64       `json:"materialsTotal"`
	MaterialsCompleted  int64       `json:"materialsCompleted"`
	MaterialsPercentage float64     `json:"materialsPercentage"`
	OverallProgress     float64     `json:"overallProgress"`
}

// ClassReport aggregates every enrolled student's overview.
type ClassReport struct {
	ClassID     string            `json:"classId"`
	GeneratedAt time.Time         `json:"generatedAt"`
	Students    []StudentOverview `json:"students"`
}

// StudentOverview computes one student's class standing. Students may
// only ask about themselves; the class teacher may ask about anyone.
func (s *DashboardService) StudentOverview(ctx context.Context, user *util.Claims, classID string, studentID uint) (*StudentOverview, error) {
	if studentID != user.UserID {
		if err := s.Access.RequireClassOwner(classID, user); err != nil {
			return nil, err
		}
	} else if err := s.Access.RequireMember(classID, user); err != nil {
		return nil, err
	}

	quizzes, err := s.QuizRepo.ListPublishedByClass(classID)
	if err != nil {
		return nil, err
	}
	for i := range quizzes {
		if err := s.Attempts.SweepDeadlines(&quizzes[i]); err != nil {
			return nil, err
		}
	}
	return s.buildOverview(classID, studentID, quizzes)
}

// ClassReport builds (or serves from cache) the per-student averages
// for a whole class. Teacher only.
func (s *DashboardService) ClassReport(ctx context.Context, user *util.Claims, classID string) (*ClassReport, error) {
	if err := s.Access.RequireClassOwner(classID, user); err != nil {
		return nil, err
	}

	cacheKey := "report:class:" + classID
	if s.Redis != nil {
		if cached, err := s.Redis.Get(ctx, cacheKey).Bytes(); err == nil {
			var report ClassReport
			if json.Unmarshal(cached, &report) == nil {
				return &report, nil
			}
		}
	}

	quizzes, err := s.QuizRepo.ListPublishedByClass(classID)
	if err != nil {
		return nil, err
	}
	for i := range quizzes {
		if err := s.Attempts.SweepDeadlines(&quizzes[i]); err != nil {
			return nil, err
		}
	}

	studentIDs, err := s.ClassRepo.ListStudentIDs(classID)
	if err != nil {
		return nil, err
	}
	students, err := s.UserRepo.FindByIDs(studentIDs)
	if err != nil {
		return nil, err
	}
	names := make(map[uint]string, len(students))
	for _, u := range students {
		names[u.ID] = u.Name
	}

	report := &ClassReport{
		ClassID:     classID,
		GeneratedAt: time.Now(),
		Students:    make([]StudentOverview, 0, len(studentIDs)),
	}
	for _, id := range studentIDs {
		overview, err := s.buildOverview(classID, id, quizzes)
		if err != nil {
			return nil, err
		}
		overview.StudentName = names[id]
		report.Students = append(report.Students, *overview)
	}

	if s.Redis != nil {
		if raw, err := json.Marshal(report); err == nil {
			if err := s.Redis.Set(ctx, cacheKey, raw, classReportTTL).Err(); err != nil {
				logger.Log.Warn("class report cache write failed",
					zap.String("classId", classID), zap.Error(err))
			}
		}
	}
	return report, nil
}

// InvalidateClassReport drops the cached report, called after grading
// activity that should show up immediately.
func (s *DashboardService) InvalidateClassReport(ctx context.Context, classID string) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(ctx, "report:class:"+classID).Err(); err != nil {
		logger.Log.Warn("class report cache invalidation failed",
			zap.String("classId", classID), zap.Error(err))
	}
}

// buildOverview does the actual math: best completed percentage per
// quiz, then a weighted average over attempted quizzes only. A student
// who skipped a quiz is not dragged down by its weight.
func (s *DashboardService) buildOverview(classID string, studentID uint, quizzes []model.Quiz) (*StudentOverview, error) {
	quizIDs := make([]string, 0, len(quizzes))
	for _, q := range quizzes {
		quizIDs = append(quizIDs, q.ID)
	}

	best, err := s.ResultRepo.BestCompletedScores(studentID, quizIDs)
	if err != nil {
		return nil, err
	}

	overview := &StudentOverview{StudentID: studentID, ClassID: classID}
	var weighted []WeightedScore
	for _, q := range quizzes {
		score := QuizScore{QuizID: q.ID, Topic: q.Topic, Weight: q.Weight}
		if res, ok := best[q.ID]; ok {
			score.Attempted = true
			score.Best = Percentage(res.Score, res.Total)
			weighted = append(weighted, WeightedScore{Percent: score.Best, Weight: q.Weight})
		}
		overview.Quizzes = append(overview.Quizzes, score)
	}
	overview.OverallAverage = WeightedAverage(weighted)

	total, err := s.MaterialRepo.CountByClass(classID)
	if err != nil {
		return nil, err
	}
	completed, err := s.MaterialRepo.CountCompleted(classID, studentID)
	if err != nil {
		return nil, err
	}
	overview.MaterialsTotal = total
	overview.MaterialsCompleted = completed
	overview.MaterialsPercentage = Percentage(int(completed), int(total))

	// Overall progress weighs materials and quizzes equally.
	overview.OverallProgress = math.Round((overview.MaterialsPercentage+overview.OverallAverage)/2*100) / 100
	return overview, nil
}
