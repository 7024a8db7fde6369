package repository

import "trading_academy_backend/internal/model"

// SeedCourses is the launch catalog. Completion flags on these modules are
// ignored by enrollment, which always starts from zero.
func SeedCourses() []model.Course {
	return []model.Course{
		{
			ID:          "1",
			Title:       "Trading Fundamentals Masterclass",
			Description: "Master the essential concepts and build a solid foundation for successful trading.",
			Instructor:  "John Smith",
			Thumbnail:   "/course-thumbnails/fundamentals.jpg",
			Level:       model.Beginner,
			Price:       199,
			Status:      model.Published,
			Modules: []model.Module{
				{ID: "1", Title: "Introduction to Trading", Description: "Learn the basics of trading and market structure.", VideoURL: "https://example.com/video1", Duration: "15:00", Order: 1, IsCompleted: true},
				{ID: "2", Title: "Understanding Market Structure", Description: "Deep dive into market structure and its importance in trading.", VideoURL: "https://example.com/video2", Duration: "20:00", Order: 2, IsCompleted: true},
				{ID: "3", Title: "Technical Analysis Basics", Description: "Introduction to technical analysis and chart reading.", VideoURL: "https://example.com/video3", Duration: "25:00", Order: 3},
			},
			EnrolledStudents: 45,
		},
		{
			ID:          "2",
			Title:       "Advanced Chart Analysis",
			Description: "Develop expert-level skills in reading and interpreting price action and patterns.",
			Instructor:  "Sarah Johnson",
			Thumbnail:   "/course-thumbnails/chart-analysis.jpg",
			Level:       model.Intermediate,
			Price:       299,
			Status:      model.Published,
			Modules: []model.Module{
				{ID: "4", Title: "Advanced Chart Patterns", Description: "Learn to identify and trade complex chart patterns.", VideoURL: "https://example.com/video4", Duration: "30:00", Order: 1, IsCompleted: true},
				{ID: "5", Title: "Price Action Trading", Description: "Master price action trading strategies.", VideoURL: "https://example.com/video5", Duration: "35:00", Order: 2},
			},
			EnrolledStudents: 32,
		},
	}
}
