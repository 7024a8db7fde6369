package service

import (
	"trading_academy_backend/internal/model"
	"trading_academy_backend/internal/repository"
)

type DashboardService struct {
	Courses  *CourseService
	Waitlist *repository.WaitlistRepository
}

func NewDashboardService(courses *CourseService, waitlist *repository.WaitlistRepository) *DashboardService {
	return &DashboardService{Courses: courses, Waitlist: waitlist}
}

// Student lists the user's enrollments next to the published courses they can
// still join.
func (s *DashboardService) Student(session *model.Session) model.StudentDashboard {
	enrolled := s.Courses.ListEnrolled(session.UserID())

	taken := make(map[string]bool, len(enrolled))
	var sum float64
	for _, e := range enrolled {
		taken[e.ID] = true
		sum += e.Progress
	}

	available := make([]model.Course, 0)
	for _, c := range s.Courses.Catalog(model.Published).Courses {
		if !taken[c.ID] {
			available = append(available, c)
		}
	}

	d := model.StudentDashboard{
		Email:           session.Email,
		EnrolledCourses: enrolled,
		Available:       available,
	}
	if len(enrolled) > 0 {
		d.AverageProgress = sum / float64(len(enrolled))
	}
	return d
}

func (s *DashboardService) Admin() model.AdminDashboard {
	return model.AdminDashboard{
		Stats:         s.Courses.Stats(),
		Courses:       s.Courses.Catalog("").Courses,
		WaitlistCount: s.Waitlist.Count(),
	}
}
