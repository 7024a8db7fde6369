package repository

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"trading_academy_backend/internal/model"
	"trading_academy_backend/internal/util"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var durationPattern = regexp.MustCompile(`^(\d{1,2}:)?[0-5]?\d:[0-5]\d$`)

// CourseRepository owns the course catalog and every user's enrolled set.
// All reads and writes go through its lock, so a mutation is either fully
// visible or not visible at all.
type CourseRepository struct {
	mu       sync.RWMutex
	courses  map[string]*model.Course
	order    []string
	enrolled map[string][]*model.EnrolledCourse

	validate *validator.Validate

	Now   func() time.Time
	NewID func() string
}

func NewCourseRepository() *CourseRepository {
	v := validator.New()
	v.RegisterValidation("duration", func(fl validator.FieldLevel) bool {
		return durationPattern.MatchString(fl.Field().String())
	})

	return &CourseRepository{
		courses:  make(map[string]*model.Course),
		enrolled: make(map[string][]*model.EnrolledCourse),
		validate: v,
		Now:      time.Now,
		NewID:    func() string { return uuid.New().String() },
	}
}

// Seed replaces the catalog with the given courses, keeping their ids.
func (r *CourseRepository) Seed(courses []model.Course) error {
	prepared := make(map[string]*model.Course, len(courses))
	order := make([]string, 0, len(courses))
	for _, c := range courses {
		c := c.Clone()
		if c.ID == "" {
			c.ID = r.NewID()
		}
		if _, dup := prepared[c.ID]; dup {
			return fmt.Errorf("%w: duplicate course id %s", util.ErrValidation, c.ID)
		}
		if err := r.prepare(&c); err != nil {
			return fmt.Errorf("seed course %s: %w", c.ID, err)
		}
		c.Version = 1
		prepared[c.ID] = &c
		order = append(order, c.ID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.courses = prepared
	r.order = order
	return nil
}

func (r *CourseRepository) GetCourse(id string) (model.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.courses[id]
	if !ok {
		return model.Course{}, util.ErrCourseNotFound
	}
	return c.Clone(), nil
}

// ListCourses returns the catalog in insertion order. An empty status lists
// every course.
func (r *CourseRepository) ListCourses(status model.CourseStatus) []model.Course {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Course, 0, len(r.order))
	for _, id := range r.order {
		c := r.courses[id]
		if status != "" && c.Status != status {
			continue
		}
		out = append(out, c.Clone())
	}
	return out
}

func (r *CourseRepository) AddCourse(draft model.Course) (model.Course, error) {
	c := draft.Clone()
	c.ID = r.NewID()
	c.EnrolledStudents = 0
	if err := r.prepare(&c); err != nil {
		return model.Course{}, err
	}
	c.Version = 1

	r.mu.Lock()
	defer r.mu.Unlock()

	r.courses[c.ID] = &c
	r.order = append(r.order, c.ID)
	return c.Clone(), nil
}

// UpdateCourse merges patch into the catalog entry. Enrolled copies are left
// untouched. A positive expectedVersion must match the stored version.
func (r *CourseRepository) UpdateCourse(id string, patch model.CoursePatch, expectedVersion int64) (model.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.courses[id]
	if !ok {
		return model.Course{}, util.ErrCourseNotFound
	}
	if expectedVersion > 0 && expectedVersion != current.Version {
		return model.Course{}, fmt.Errorf("%w: course %s is at version %d, not %d",
			util.ErrVersionConflict, id, current.Version, expectedVersion)
	}

	next := current.Clone()
	patch.Apply(&next)
	if err := r.prepare(&next); err != nil {
		return model.Course{}, err
	}
	next.Version = current.Version + 1

	r.courses[id] = &next
	return next.Clone(), nil
}

// DeleteCourse removes the course from the catalog and from every enrolled set.
func (r *CourseRepository) DeleteCourse(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.courses[id]; !ok {
		return util.ErrCourseNotFound
	}
	delete(r.courses, id)
	for i, cid := range r.order {
		if cid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	for user, list := range r.enrolled {
		kept := list[:0]
		for _, e := range list {
			if e.ID != id {
				kept = append(kept, e)
			}
		}
		if len(kept) == 0 {
			delete(r.enrolled, user)
			continue
		}
		r.enrolled[user] = kept
	}
	return nil
}

// EnrollInCourse bumps the catalog counter and appends a fresh snapshot to the
// user's enrolled set in one step.
func (r *CourseRepository) EnrollInCourse(userID, courseID string) (model.EnrolledCourse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.courses[courseID]
	if !ok {
		return model.EnrolledCourse{}, util.ErrCourseNotFound
	}
	if r.findEnrolled(userID, courseID) != nil {
		return model.EnrolledCourse{}, util.ErrAlreadyEnrolled
	}

	e := model.NewEnrolledCourse(*c, r.Now())
	r.enrolled[userID] = append(r.enrolled[userID], &e)

	// The counter is not an admin-editable field, so it leaves Version alone.
	c.EnrolledStudents++

	return e.Clone(), nil
}

// UpdateCourseProgress sets one module's completion flag in the user's copy of
// the course and recomputes the derived counters. ok is false, with no error,
// when the user is not enrolled in the course.
func (r *CourseRepository) UpdateCourseProgress(userID, courseID, moduleID string, completed bool) (e model.EnrolledCourse, ok bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	found := r.findEnrolled(userID, courseID)
	if found == nil {
		return model.EnrolledCourse{}, false, nil
	}
	idx := found.ModuleIndex(moduleID)
	if idx < 0 {
		return model.EnrolledCourse{}, true, fmt.Errorf("%w: %s in course %s", util.ErrModuleNotFound, moduleID, courseID)
	}

	found.Modules[idx].IsCompleted = completed
	found.Recompute()
	found.LastAccessed = r.Now()
	found.Version++

	return found.Clone(), true, nil
}

func (r *CourseRepository) GetEnrolled(userID, courseID string) (model.EnrolledCourse, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e := r.findEnrolled(userID, courseID)
	if e == nil {
		return model.EnrolledCourse{}, false
	}
	return e.Clone(), true
}

func (r *CourseRepository) ListEnrolled(userID string) []model.EnrolledCourse {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := r.enrolled[userID]
	out := make([]model.EnrolledCourse, 0, len(list))
	for _, e := range list {
		out = append(out, e.Clone())
	}
	return out
}

// DropEnrollments discards the user's enrolled set and reports how many
// courses it held. Catalog enrollment counters are left as they are.
func (r *CourseRepository) DropEnrollments(userID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.enrolled[userID])
	delete(r.enrolled, userID)
	return n
}

func (r *CourseRepository) Stats() model.CatalogStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var stats model.CatalogStats
	stats.TotalCourses = len(r.courses)
	for _, c := range r.courses {
		if c.Status == model.Published {
			stats.PublishedCourses++
		} else {
			stats.DraftCourses++
		}
	}

	var sum float64
	for _, list := range r.enrolled {
		if len(list) > 0 {
			stats.TotalStudents++
		}
		for _, e := range list {
			stats.TotalEnrollments++
			sum += e.Progress
		}
	}
	if stats.TotalEnrollments > 0 {
		stats.AverageProgress = sum / float64(stats.TotalEnrollments)
	}
	return stats
}

func (r *CourseRepository) findEnrolled(userID, courseID string) *model.EnrolledCourse {
	for _, e := range r.enrolled[userID] {
		if e.ID == courseID {
			return e
		}
	}
	return nil
}

// prepare fills module back references and ids, sorts modules and checks the
// course against its field rules and the contiguous order invariant.
func (r *CourseRepository) prepare(c *model.Course) error {
	seen := make(map[string]bool, len(c.Modules))
	for i := range c.Modules {
		m := &c.Modules[i]
		if m.ID == "" {
			m.ID = r.NewID()
		}
		if seen[m.ID] {
			return fmt.Errorf("%w: duplicate module id %s", util.ErrValidation, m.ID)
		}
		seen[m.ID] = true
		m.CourseID = c.ID
	}
	c.SortModules()

	if err := r.validate.Struct(c); err != nil {
		return validationError(err)
	}
	for i, m := range c.Modules {
		if m.Order != i+1 {
			return fmt.Errorf("%w: module orders must be unique and contiguous from 1, got %d at position %d",
				util.ErrValidation, m.Order, i+1)
		}
	}
	return nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", util.ErrValidation, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", util.ErrValidation, strings.Join(msgs, "; "))
}
