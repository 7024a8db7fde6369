package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"trading_academy_backend/internal/config"
	"trading_academy_backend/internal/model"
	"trading_academy_backend/internal/repository"
	"trading_academy_backend/internal/util"
	"trading_academy_backend/pkg/async"
	"trading_academy_backend/pkg/logger"
	"trading_academy_backend/pkg/monitoring"
	"trading_academy_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// CourseService runs every store mutation as an asynchronous task with the
// configured simulated latency, and maps unexpected failures onto
// util.ErrOperationFailed.
type CourseService struct {
	Repo *repository.CourseRepository

	latency atomic.Int64

	mu      sync.RWMutex
	loading bool
	loadErr string
}

func NewCourseService(repo *repository.CourseRepository, cfg *config.Config) *CourseService {
	s := &CourseService{Repo: repo}
	s.SetLatency(cfg.Catalog.SimulatedLatency)
	return s
}

func (s *CourseService) SetLatency(d time.Duration) {
	s.latency.Store(int64(d))
}

func (s *CourseService) Latency() time.Duration {
	return time.Duration(s.latency.Load())
}

// CatalogState is what the presentation layer polls while the catalog loads.
type CatalogState struct {
	Courses []model.Course `json:"courses"`
	Loading bool           `json:"loading"`
	Error   string         `json:"error,omitempty"`
}

// knownErrors pass through untouched; anything else becomes ErrOperationFailed.
var knownErrors = []error{
	util.ErrCourseNotFound,
	util.ErrModuleNotFound,
	util.ErrValidation,
	util.ErrAlreadyEnrolled,
	util.ErrVersionConflict,
	util.ErrModuleLocked,
}

func classify(err error) error {
	if err == nil {
		return nil
	}
	for _, known := range knownErrors {
		if errors.Is(err, known) {
			return err
		}
	}
	return fmt.Errorf("%w: %w", util.ErrOperationFailed, err)
}

func call[T any](ctx context.Context, s *CourseService, op string, fn func() (T, error), attrs ...attribute.KeyValue) (T, error) {
	start := time.Now()
	ctx, end := tracing.StartSpan(ctx, "course."+op, attrs...)

	val, err := async.Run(ctx, s.Latency(), func(context.Context) (T, error) {
		return fn()
	}).Await(ctx)
	err = classify(err)

	end(err)
	monitoring.ObserveOperation(op, start, err)
	if err != nil {
		logger.Log.Warn("course operation failed", zap.String("operation", op), zap.Error(err))
	}
	return val, err
}

// LoadCatalog replaces the catalog with courses through the same asynchronous
// path as every other call, tracking the loading flag while it runs.
func (s *CourseService) LoadCatalog(ctx context.Context, courses []model.Course) error {
	s.mu.Lock()
	s.loading = true
	s.loadErr = ""
	s.mu.Unlock()

	_, err := call(ctx, s, "load_catalog", func() (struct{}, error) {
		return struct{}{}, s.Repo.Seed(courses)
	})

	s.mu.Lock()
	s.loading = false
	if err != nil {
		s.loadErr = "Failed to fetch courses"
	}
	s.mu.Unlock()

	s.refreshCatalogGauge()
	if err == nil {
		logger.Log.Info("Course catalog loaded", zap.Int("courses", len(courses)))
	}
	return err
}

func (s *CourseService) Catalog(status model.CourseStatus) CatalogState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return CatalogState{
		Courses: s.Repo.ListCourses(status),
		Loading: s.loading,
		Error:   s.loadErr,
	}
}

func (s *CourseService) GetCourse(id string) (model.Course, error) {
	return s.Repo.GetCourse(id)
}

func (s *CourseService) EnrollInCourse(ctx context.Context, userID, courseID string) (model.EnrolledCourse, error) {
	e, err := call(ctx, s, "enroll", func() (model.EnrolledCourse, error) {
		return s.Repo.EnrollInCourse(userID, courseID)
	}, attribute.String("course.id", courseID))
	if err == nil {
		logger.Log.Info("User enrolled in course", zap.String("user", userID), zap.String("courseID", courseID))
	}
	return e, err
}

// ProgressResult is the outcome of a progress update. Enrolled is false when
// the user had no enrollment for the course, in which case nothing changed.
type ProgressResult struct {
	Enrolled bool                 `json:"enrolled"`
	Course   model.EnrolledCourse `json:"course"`
}

func (s *CourseService) UpdateCourseProgress(ctx context.Context, userID, courseID, moduleID string, completed bool) (ProgressResult, error) {
	return call(ctx, s, "update_progress", func() (ProgressResult, error) {
		e, ok, err := s.Repo.UpdateCourseProgress(userID, courseID, moduleID, completed)
		return ProgressResult{Enrolled: ok, Course: e}, err
	}, attribute.String("course.id", courseID), attribute.String("module.id", moduleID), attribute.Bool("completed", completed))
}

func (s *CourseService) ListEnrolled(userID string) []model.EnrolledCourse {
	return s.Repo.ListEnrolled(userID)
}

func (s *CourseService) DropEnrollments(userID string) int {
	return s.Repo.DropEnrollments(userID)
}

func (s *CourseService) GetEnrolled(userID, courseID string) (model.EnrolledCourse, error) {
	e, ok := s.Repo.GetEnrolled(userID, courseID)
	if !ok {
		return model.EnrolledCourse{}, util.ErrCourseNotFound
	}
	return e, nil
}

func (s *CourseService) AddCourse(ctx context.Context, draft model.Course) (model.Course, error) {
	c, err := call(ctx, s, "add_course", func() (model.Course, error) {
		return s.Repo.AddCourse(draft)
	})
	if err == nil {
		s.refreshCatalogGauge()
		logger.Log.Info("Created course", zap.String("courseID", c.ID), zap.String("title", c.Title))
	}
	return c, err
}

func (s *CourseService) UpdateCourse(ctx context.Context, courseID string, patch model.CoursePatch, expectedVersion int64) (model.Course, error) {
	c, err := call(ctx, s, "update_course", func() (model.Course, error) {
		return s.Repo.UpdateCourse(courseID, patch, expectedVersion)
	}, attribute.String("course.id", courseID))
	if err == nil {
		logger.Log.Info("Updated course", zap.String("courseID", courseID), zap.Int64("version", c.Version))
	}
	return c, err
}

func (s *CourseService) DeleteCourse(ctx context.Context, courseID string) error {
	_, err := call(ctx, s, "delete_course", func() (struct{}, error) {
		return struct{}{}, s.Repo.DeleteCourse(courseID)
	}, attribute.String("course.id", courseID))
	if err == nil {
		s.refreshCatalogGauge()
		logger.Log.Info("Deleted course", zap.String("courseID", courseID))
	}
	return err
}

// AddModule appends a module at the end of the course.
func (s *CourseService) AddModule(ctx context.Context, courseID string, draft model.Module) (model.Course, error) {
	course, err := s.Repo.GetCourse(courseID)
	if err != nil {
		return model.Course{}, err
	}

	draft.ID = ""
	draft.CourseID = courseID
	draft.IsCompleted = false
	draft.Order = len(course.Modules) + 1
	modules := append(course.Modules, draft)

	return s.UpdateCourse(ctx, courseID, model.CoursePatch{Modules: &modules}, course.Version)
}

func (s *CourseService) UpdateModule(ctx context.Context, courseID, moduleID string, patch model.ModulePatch) (model.Course, error) {
	course, err := s.Repo.GetCourse(courseID)
	if err != nil {
		return model.Course{}, err
	}
	idx := course.ModuleIndex(moduleID)
	if idx < 0 {
		return model.Course{}, util.ErrModuleNotFound
	}

	modules := course.Modules
	patch.Apply(&modules[idx])

	return s.UpdateCourse(ctx, courseID, model.CoursePatch{Modules: &modules}, course.Version)
}

// DeleteModule removes a module and renumbers the rest so orders stay
// contiguous.
func (s *CourseService) DeleteModule(ctx context.Context, courseID, moduleID string) (model.Course, error) {
	course, err := s.Repo.GetCourse(courseID)
	if err != nil {
		return model.Course{}, err
	}
	if course.ModuleIndex(moduleID) < 0 {
		return model.Course{}, util.ErrModuleNotFound
	}

	modules := make([]model.Module, 0, len(course.Modules)-1)
	for _, m := range course.Modules {
		if m.ID == moduleID {
			continue
		}
		m.Order = len(modules) + 1
		modules = append(modules, m)
	}

	return s.UpdateCourse(ctx, courseID, model.CoursePatch{Modules: &modules}, course.Version)
}

func (s *CourseService) Stats() model.CatalogStats {
	return s.Repo.Stats()
}

func (s *CourseService) refreshCatalogGauge() {
	monitoring.CatalogCourses.Set(float64(len(s.Repo.ListCourses(""))))
}
