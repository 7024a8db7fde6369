package service

import (
	"context"
	"sync"

	"trading_academy_backend/internal/model"
	"trading_academy_backend/internal/util"
)

// ViewerService keeps the "current module" pointer of each signed-in session
// per course. Pointers live only in memory and are dropped on sign out.
type ViewerService struct {
	Courses *CourseService

	mu      sync.Mutex
	cursors map[cursorKey]int
}

type cursorKey struct {
	sessionID string
	courseID  string
}

func NewViewerService(courses *CourseService) *ViewerService {
	return &ViewerService{
		Courses: courses,
		cursors: make(map[cursorKey]int),
	}
}

type ModuleView struct {
	model.Module
	Locked bool `json:"locked"`
}

type ViewerState struct {
	CourseID      string        `json:"courseId"`
	Title         string        `json:"title"`
	Instructor    string        `json:"instructor"`
	Enrolled      bool          `json:"enrolled"`
	CurrentIndex  int           `json:"currentIndex"`
	CurrentModule *model.Module `json:"currentModule,omitempty"`
	HasPrev       bool          `json:"hasPrev"`
	HasNext       bool          `json:"hasNext"`
	Progress      float64       `json:"progress"`
	Modules       []ModuleView  `json:"modules"`
}

// courseView returns the modules the session navigates: the user's own
// snapshot when enrolled, otherwise the catalog copy with nothing completed.
func (s *ViewerService) courseView(sess *model.Session, courseID string) (model.Course, bool, float64, error) {
	if e, err := s.Courses.GetEnrolled(sess.UserID(), courseID); err == nil {
		return e.Course, true, e.Progress, nil
	}
	c, err := s.Courses.GetCourse(courseID)
	if err != nil {
		return model.Course{}, false, 0, err
	}
	for i := range c.Modules {
		c.Modules[i].IsCompleted = false
	}
	return c, false, 0, nil
}

func (s *ViewerService) cursor(key cursorKey, moduleCount int) int {
	idx := s.cursors[key]
	if idx >= moduleCount {
		idx = moduleCount - 1
	}
	if idx < 0 {
		idx = 0
	}
	return idx
}

func (s *ViewerService) state(sess *model.Session, courseID string) (ViewerState, error) {
	c, enrolled, progress, err := s.courseView(sess, courseID)
	if err != nil {
		return ViewerState{}, err
	}

	s.mu.Lock()
	current := s.cursor(cursorKey{sess.ID, courseID}, len(c.Modules))
	s.mu.Unlock()

	return buildState(c, enrolled, progress, current), nil
}

func buildState(c model.Course, enrolled bool, progress float64, current int) ViewerState {
	st := ViewerState{
		CourseID:     c.ID,
		Title:        c.Title,
		Instructor:   c.Instructor,
		Enrolled:     enrolled,
		CurrentIndex: current,
		Progress:     progress,
		Modules:      make([]ModuleView, len(c.Modules)),
	}
	for i, m := range c.Modules {
		st.Modules[i] = ModuleView{Module: m, Locked: i > current && !m.IsCompleted}
	}
	if len(c.Modules) > 0 {
		m := c.Modules[current]
		st.CurrentModule = &m
		st.HasPrev = current > 0
		st.HasNext = current < len(c.Modules)-1
	}
	return st
}

func (s *ViewerService) State(sess *model.Session, courseID string) (ViewerState, error) {
	return s.state(sess, courseID)
}

// Next marks the current module completed and moves to the following one. On
// the last module it only records completion.
func (s *ViewerService) Next(ctx context.Context, sess *model.Session, courseID string) (ViewerState, error) {
	c, _, _, err := s.courseView(sess, courseID)
	if err != nil {
		return ViewerState{}, err
	}
	if len(c.Modules) == 0 {
		return s.state(sess, courseID)
	}

	key := cursorKey{sess.ID, courseID}
	s.mu.Lock()
	current := s.cursor(key, len(c.Modules))
	s.mu.Unlock()

	if _, err := s.Courses.UpdateCourseProgress(ctx, sess.UserID(), courseID, c.Modules[current].ID, true); err != nil {
		return ViewerState{}, err
	}

	if current < len(c.Modules)-1 {
		s.mu.Lock()
		s.cursors[key] = current + 1
		s.mu.Unlock()
	}
	return s.state(sess, courseID)
}

func (s *ViewerService) Prev(sess *model.Session, courseID string) (ViewerState, error) {
	c, _, _, err := s.courseView(sess, courseID)
	if err != nil {
		return ViewerState{}, err
	}

	key := cursorKey{sess.ID, courseID}
	s.mu.Lock()
	if current := s.cursor(key, len(c.Modules)); current > 0 {
		s.cursors[key] = current - 1
	}
	s.mu.Unlock()

	return s.state(sess, courseID)
}

// Select jumps to the module at index. Moving forward past the current module
// is only allowed onto modules that are already completed.
func (s *ViewerService) Select(sess *model.Session, courseID string, index int) (ViewerState, error) {
	c, _, _, err := s.courseView(sess, courseID)
	if err != nil {
		return ViewerState{}, err
	}
	if index < 0 || index >= len(c.Modules) {
		return ViewerState{}, util.ErrModuleNotFound
	}

	key := cursorKey{sess.ID, courseID}
	s.mu.Lock()
	current := s.cursor(key, len(c.Modules))
	if !CanSelect(c.Modules, current, index) {
		s.mu.Unlock()
		return ViewerState{}, util.ErrModuleLocked
	}
	s.cursors[key] = index
	s.mu.Unlock()

	return s.state(sess, courseID)
}

// CanSelect reports whether the viewer may move from current to index.
func CanSelect(modules []model.Module, current, index int) bool {
	if index < 0 || index >= len(modules) {
		return false
	}
	return index <= current || modules[index].IsCompleted
}

// Forget drops every pointer held for the session.
func (s *ViewerService) Forget(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.cursors {
		if key.sessionID == sessionID {
			delete(s.cursors, key)
		}
	}
}
