package model

// swagger:model
type CatalogStats struct {
	TotalCourses     int     `json:"totalCourses"`
	PublishedCourses int     `json:"publishedCourses"`
	DraftCourses     int     `json:"draftCourses"`
	TotalStudents    int     `json:"totalStudents"`
	TotalEnrollments int     `json:"totalEnrollments"`
	AverageProgress  float64 `json:"averageProgress"`
}

// swagger:model
type StudentDashboard struct {
	Email           string           `json:"email"`
	EnrolledCourses []EnrolledCourse `json:"enrolledCourses"`
	Available       []Course         `json:"availableCourses"`
	AverageProgress float64          `json:"averageProgress"`
}

// swagger:model
type AdminDashboard struct {
	Stats         CatalogStats `json:"stats"`
	Courses       []Course     `json:"courses"`
	WaitlistCount int          `json:"waitlistCount"`
}
