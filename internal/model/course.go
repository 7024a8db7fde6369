package model

import (
	"sort"
	"time"
)

type CourseLevel string

const (
	Beginner     CourseLevel = "beginner"
	Intermediate CourseLevel = "intermediate"
	Advanced     CourseLevel = "advanced"
)

type CourseStatus string

const (
	Draft     CourseStatus = "draft"
	Published CourseStatus = "published"
)

// swagger:model
type Module struct {
	ID          string `json:"id"`
	CourseID    string `json:"courseId"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	VideoURL    string `json:"videoUrl" validate:"omitempty,url"`
	Duration    string `json:"duration" validate:"omitempty,duration"`
	Order       int    `json:"order" validate:"gte=1"`
	IsCompleted bool   `json:"isCompleted"`
}

// swagger:model
type Course struct {
	ID               string       `json:"id"`
	Title            string       `json:"title" validate:"required"`
	Description      string       `json:"description"`
	Instructor       string       `json:"instructor"`
	Thumbnail        string       `json:"thumbnail"`
	Level            CourseLevel  `json:"level" validate:"oneof=beginner intermediate advanced"`
	Price            float64      `json:"price" validate:"gte=0"`
	Status           CourseStatus `json:"status" validate:"oneof=draft published"`
	Modules          []Module     `json:"modules" validate:"dive"`
	EnrolledStudents int          `json:"enrolledStudents" validate:"gte=0"`
	Version          int64        `json:"version"`
}

// Clone returns a copy that shares no memory with c.
func (c Course) Clone() Course {
	out := c
	if c.Modules != nil {
		out.Modules = make([]Module, len(c.Modules))
		copy(out.Modules, c.Modules)
	}
	return out
}

// SortModules orders modules by their Order field.
func (c *Course) SortModules() {
	sort.SliceStable(c.Modules, func(i, j int) bool {
		return c.Modules[i].Order < c.Modules[j].Order
	})
}

func (c *Course) ModuleIndex(moduleID string) int {
	for i := range c.Modules {
		if c.Modules[i].ID == moduleID {
			return i
		}
	}
	return -1
}

// CoursePatch carries the fields of a partial catalog update; nil means
// "leave unchanged".
// swagger:model
type CoursePatch struct {
	Title       *string       `json:"title,omitempty"`
	Description *string       `json:"description,omitempty"`
	Instructor  *string       `json:"instructor,omitempty"`
	Thumbnail   *string       `json:"thumbnail,omitempty"`
	Level       *CourseLevel  `json:"level,omitempty"`
	Price       *float64      `json:"price,omitempty"`
	Status      *CourseStatus `json:"status,omitempty"`
	Modules     *[]Module     `json:"modules,omitempty"`
}

func (p CoursePatch) Apply(c *Course) {
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.Instructor != nil {
		c.Instructor = *p.Instructor
	}
	if p.Thumbnail != nil {
		c.Thumbnail = *p.Thumbnail
	}
	if p.Level != nil {
		c.Level = *p.Level
	}
	if p.Price != nil {
		c.Price = *p.Price
	}
	if p.Status != nil {
		c.Status = *p.Status
	}
	if p.Modules != nil {
		c.Modules = make([]Module, len(*p.Modules))
		copy(c.Modules, *p.Modules)
	}
}

// ModulePatch is the module counterpart of CoursePatch.
// swagger:model
type ModulePatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	VideoURL    *string `json:"videoUrl,omitempty"`
	Duration    *string `json:"duration,omitempty"`
}

func (p ModulePatch) Apply(m *Module) {
	if p.Title != nil {
		m.Title = *p.Title
	}
	if p.Description != nil {
		m.Description = *p.Description
	}
	if p.VideoURL != nil {
		m.VideoURL = *p.VideoURL
	}
	if p.Duration != nil {
		m.Duration = *p.Duration
	}
}

// EnrolledCourse is a user's private snapshot of a catalog course. It has no
// link back to the catalog entry it was copied from.
// swagger:model
type EnrolledCourse struct {
	Course
	Progress         float64   `json:"progress"`
	LastAccessed     time.Time `json:"lastAccessed"`
	TotalModules     int       `json:"totalModules"`
	CompletedModules int       `json:"completedModules"`
}

func NewEnrolledCourse(c Course, now time.Time) EnrolledCourse {
	snap := c.Clone()
	snap.Version = 1
	for i := range snap.Modules {
		snap.Modules[i].IsCompleted = false
	}
	return EnrolledCourse{
		Course:       snap,
		Progress:     0,
		LastAccessed: now,
		TotalModules: len(snap.Modules),
	}
}

func (e EnrolledCourse) Clone() EnrolledCourse {
	out := e
	out.Course = e.Course.Clone()
	return out
}

// Recompute refreshes the derived counters from the module flags.
func (e *EnrolledCourse) Recompute() {
	completed := 0
	for _, m := range e.Modules {
		if m.IsCompleted {
			completed++
		}
	}
	e.CompletedModules = completed
	e.Progress = Progress(completed, e.TotalModules)
}

// Progress is the completion percentage, 0 when total is 0.
func Progress(completed, total int) float64 {
	if total <= 0 {
		return 0
	}
	return 100 * float64(completed) / float64(total)
}
