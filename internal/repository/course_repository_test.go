package repository

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"testing"
	"time"

	"trading_academy_backend/internal/model"
	"trading_academy_backend/internal/util"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newSeededRepo(t *testing.T) *CourseRepository {
	t.Helper()

	r := NewCourseRepository()
	r.Now = func() time.Time { return fixedNow }
	n := 0
	r.NewID = func() string {
		n++
		return fmt.Sprintf("gen-%d", n)
	}
	if err := r.Seed(SeedCourses()); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	return r
}

func draftCourse() model.Course {
	return model.Course{
		Title:      "Risk Management",
		Instructor: "Ada Lovelace",
		Level:      model.Advanced,
		Price:      49.5,
		Status:     model.Draft,
		Modules: []model.Module{
			{Title: "Position sizing", Duration: "12:30", Order: 1},
			{Title: "Stop losses", Duration: "1:05:00", Order: 2},
		},
	}
}

func TestGetCourseReturnsCatalogEntry(t *testing.T) {
	r := newSeededRepo(t)

	for _, want := range r.ListCourses("") {
		got, err := r.GetCourse(want.ID)
		if err != nil {
			t.Fatalf("GetCourse(%s): %v", want.ID, err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("GetCourse(%s): got=%+v want=%+v", want.ID, got, want)
		}
	}

	if _, err := r.GetCourse("missing"); !errors.Is(err, util.ErrCourseNotFound) {
		t.Fatalf("GetCourse(missing): err=%v", err)
	}
}

func TestGetCourseReturnsCopy(t *testing.T) {
	r := newSeededRepo(t)

	c, _ := r.GetCourse("1")
	c.Title = "mutated"
	c.Modules[0].Title = "mutated"

	again, _ := r.GetCourse("1")
	if again.Title == "mutated" || again.Modules[0].Title == "mutated" {
		t.Fatalf("catalog aliased by caller copy: %+v", again)
	}
}

func TestEnrollUnknownCourseLeavesStateUnchanged(t *testing.T) {
	r := newSeededRepo(t)
	before, _ := r.GetCourse("1")

	if _, err := r.EnrollInCourse("u1", "nope"); !errors.Is(err, util.ErrCourseNotFound) {
		t.Fatalf("EnrollInCourse(nope): err=%v", err)
	}

	after, _ := r.GetCourse("1")
	if after.EnrolledStudents != before.EnrolledStudents {
		t.Fatalf("enrolledStudents changed: %d -> %d", before.EnrolledStudents, after.EnrolledStudents)
	}
	if got := r.ListEnrolled("u1"); len(got) != 0 {
		t.Fatalf("enrolled set not empty: %+v", got)
	}
}

func TestEnrollCreatesFreshSnapshot(t *testing.T) {
	r := newSeededRepo(t)

	e, err := r.EnrollInCourse("u1", "1")
	if err != nil {
		t.Fatalf("EnrollInCourse: %v", err)
	}
	if e.TotalModules != 3 || e.CompletedModules != 0 || e.Progress != 0 {
		t.Fatalf("snapshot counters: total=%d completed=%d progress=%v", e.TotalModules, e.CompletedModules, e.Progress)
	}
	if !e.LastAccessed.Equal(fixedNow) {
		t.Fatalf("lastAccessed: got=%v", e.LastAccessed)
	}
	// seed data carries completed flags; enrollment starts from zero
	for _, m := range e.Modules {
		if m.IsCompleted {
			t.Fatalf("module %s completed at enrollment", m.ID)
		}
	}

	c, _ := r.GetCourse("1")
	if c.EnrolledStudents != 46 {
		t.Fatalf("enrolledStudents: got=%d want=46", c.EnrolledStudents)
	}
	if got := r.ListEnrolled("u1"); len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("ListEnrolled: got=%+v", got)
	}
}

func TestEnrollTwiceIsRejected(t *testing.T) {
	r := newSeededRepo(t)

	if _, err := r.EnrollInCourse("u1", "1"); err != nil {
		t.Fatalf("first enroll: %v", err)
	}
	if _, err := r.EnrollInCourse("u1", "1"); !errors.Is(err, util.ErrAlreadyEnrolled) {
		t.Fatalf("second enroll: err=%v", err)
	}

	if got := r.ListEnrolled("u1"); len(got) != 1 {
		t.Fatalf("duplicate enrollment stored: %d entries", len(got))
	}
	c, _ := r.GetCourse("1")
	if c.EnrolledStudents != 46 {
		t.Fatalf("enrolledStudents: got=%d want=46", c.EnrolledStudents)
	}

	// a different user may still enroll
	if _, err := r.EnrollInCourse("u2", "1"); err != nil {
		t.Fatalf("other user enroll: %v", err)
	}
}

func TestUpdateCourseProgress(t *testing.T) {
	r := newSeededRepo(t)
	if _, err := r.EnrollInCourse("u1", "1"); err != nil {
		t.Fatalf("EnrollInCourse: %v", err)
	}

	e, ok, err := r.UpdateCourseProgress("u1", "1", "1", true)
	if err != nil || !ok {
		t.Fatalf("UpdateCourseProgress: ok=%v err=%v", ok, err)
	}
	if e.CompletedModules != 1 {
		t.Fatalf("completedModules: got=%d", e.CompletedModules)
	}
	if math.Abs(e.Progress-33.33) > 0.01 {
		t.Fatalf("progress: got=%v want≈33.33", e.Progress)
	}

	again, _, _ := r.UpdateCourseProgress("u1", "1", "1", true)
	if again.Progress != e.Progress || again.CompletedModules != e.CompletedModules {
		t.Fatalf("not idempotent: first=%v/%d second=%v/%d", e.Progress, e.CompletedModules, again.Progress, again.CompletedModules)
	}

	back, _, _ := r.UpdateCourseProgress("u1", "1", "1", false)
	if back.CompletedModules != 0 || back.Progress != 0 {
		t.Fatalf("revert: completed=%d progress=%v", back.CompletedModules, back.Progress)
	}
}

func TestUpdateCourseProgressNotEnrolledIsNoop(t *testing.T) {
	r := newSeededRepo(t)

	_, ok, err := r.UpdateCourseProgress("u1", "1", "1", true)
	if ok || err != nil {
		t.Fatalf("UpdateCourseProgress: ok=%v err=%v", ok, err)
	}
	if got := r.ListEnrolled("u1"); len(got) != 0 {
		t.Fatalf("enrolled set changed: %+v", got)
	}
}

func TestUpdateCourseProgressUnknownModule(t *testing.T) {
	r := newSeededRepo(t)
	r.EnrollInCourse("u1", "1")
	before, _ := r.GetEnrolled("u1", "1")

	_, ok, err := r.UpdateCourseProgress("u1", "1", "42", true)
	if !ok || !errors.Is(err, util.ErrModuleNotFound) {
		t.Fatalf("UpdateCourseProgress: ok=%v err=%v", ok, err)
	}

	after, _ := r.GetEnrolled("u1", "1")
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("state changed on failure: before=%+v after=%+v", before, after)
	}
}

func TestProgressWithNoModules(t *testing.T) {
	r := newSeededRepo(t)
	draft := draftCourse()
	draft.Modules = nil
	c, err := r.AddCourse(draft)
	if err != nil {
		t.Fatalf("AddCourse: %v", err)
	}

	e, err := r.EnrollInCourse("u1", c.ID)
	if err != nil {
		t.Fatalf("EnrollInCourse: %v", err)
	}
	if e.TotalModules != 0 || e.Progress != 0 {
		t.Fatalf("empty course: total=%d progress=%v", e.TotalModules, e.Progress)
	}
}

func TestAddCourse(t *testing.T) {
	r := newSeededRepo(t)

	draft := draftCourse()
	draft.EnrolledStudents = 99
	c, err := r.AddCourse(draft)
	if err != nil {
		t.Fatalf("AddCourse: %v", err)
	}
	if c.ID == "" || c.ID == "1" || c.ID == "2" {
		t.Fatalf("id: got=%q", c.ID)
	}
	if c.EnrolledStudents != 0 {
		t.Fatalf("enrolledStudents: got=%d", c.EnrolledStudents)
	}
	if c.Version != 1 {
		t.Fatalf("version: got=%d", c.Version)
	}
	for _, m := range c.Modules {
		if m.ID == "" || m.CourseID != c.ID {
			t.Fatalf("module not linked: %+v", m)
		}
	}

	other, _ := r.AddCourse(draftCourse())
	if other.ID == c.ID {
		t.Fatalf("ids collide: %s", c.ID)
	}
	if got := r.ListCourses(""); len(got) != 4 {
		t.Fatalf("ListCourses: got %d courses", len(got))
	}
}

func TestAddCourseValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *model.Course)
	}{
		{"missing title", func(c *model.Course) { c.Title = "" }},
		{"negative price", func(c *model.Course) { c.Price = -1 }},
		{"unknown level", func(c *model.Course) { c.Level = "expert" }},
		{"unknown status", func(c *model.Course) { c.Status = "archived" }},
		{"bad duration", func(c *model.Course) { c.Modules[0].Duration = "ten minutes" }},
		{"bad video url", func(c *model.Course) { c.Modules[0].VideoURL = "not a url" }},
		{"module without title", func(c *model.Course) { c.Modules[1].Title = "" }},
		{"order gap", func(c *model.Course) { c.Modules[1].Order = 3 }},
		{"duplicate order", func(c *model.Course) { c.Modules[1].Order = 1 }},
		{"order from zero", func(c *model.Course) { c.Modules[0].Order = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newSeededRepo(t)
			draft := draftCourse()
			tt.mutate(&draft)

			if _, err := r.AddCourse(draft); !errors.Is(err, util.ErrValidation) {
				t.Fatalf("AddCourse: err=%v", err)
			}
			if got := r.ListCourses(""); len(got) != 2 {
				t.Fatalf("catalog changed: %d courses", len(got))
			}
		})
	}
}

func TestAddCourseSortsModules(t *testing.T) {
	r := newSeededRepo(t)
	draft := draftCourse()
	draft.Modules[0].Order, draft.Modules[1].Order = 2, 1

	c, err := r.AddCourse(draft)
	if err != nil {
		t.Fatalf("AddCourse: %v", err)
	}
	if c.Modules[0].Title != "Stop losses" {
		t.Fatalf("modules not sorted: %+v", c.Modules)
	}
}

func TestUpdateCourseDoesNotCascade(t *testing.T) {
	r := newSeededRepo(t)
	r.EnrollInCourse("u1", "1")

	title := "Trading Fundamentals 2.0"
	modules := append(r.mustCourse(t, "1").Modules, model.Module{Title: "Bonus", Order: 4})
	updated, err := r.UpdateCourse("1", model.CoursePatch{Title: &title, Modules: &modules}, 0)
	if err != nil {
		t.Fatalf("UpdateCourse: %v", err)
	}
	if updated.Title != title || len(updated.Modules) != 4 {
		t.Fatalf("catalog not updated: %+v", updated)
	}
	if updated.Instructor != "John Smith" {
		t.Fatalf("unpatched field lost: instructor=%q", updated.Instructor)
	}

	e, _ := r.GetEnrolled("u1", "1")
	if e.Title == title || len(e.Modules) != 3 || e.TotalModules != 3 {
		t.Fatalf("enrolled copy followed catalog edit: %+v", e)
	}
}

func TestEnrollDoesNotBumpVersion(t *testing.T) {
	r := newSeededRepo(t)
	c := r.mustCourse(t, "2")

	if _, err := r.EnrollInCourse("s1", "2"); err != nil {
		t.Fatalf("EnrollInCourse: %v", err)
	}
	after := r.mustCourse(t, "2")
	if after.Version != c.Version || after.EnrolledStudents != c.EnrolledStudents+1 {
		t.Fatalf("after enroll: version=%d students=%d", after.Version, after.EnrolledStudents)
	}

	price := 199.0
	if _, err := r.UpdateCourse("2", model.CoursePatch{Price: &price}, c.Version); err != nil {
		t.Fatalf("UpdateCourse with pre-enroll version: %v", err)
	}
}

func TestUpdateCourseVersioning(t *testing.T) {
	r := newSeededRepo(t)
	c := r.mustCourse(t, "2")

	price := 249.0
	updated, err := r.UpdateCourse("2", model.CoursePatch{Price: &price}, c.Version)
	if err != nil {
		t.Fatalf("UpdateCourse: %v", err)
	}
	if updated.Version != c.Version+1 {
		t.Fatalf("version: got=%d want=%d", updated.Version, c.Version+1)
	}

	stale := 1.0
	if _, err := r.UpdateCourse("2", model.CoursePatch{Price: &stale}, c.Version); !errors.Is(err, util.ErrVersionConflict) {
		t.Fatalf("stale update: err=%v", err)
	}
	if got := r.mustCourse(t, "2"); got.Price != price {
		t.Fatalf("stale write applied: price=%v", got.Price)
	}
}

func TestUpdateCourseInvalidPatchIsAtomic(t *testing.T) {
	r := newSeededRepo(t)
	before := r.mustCourse(t, "1")

	title := "New title"
	price := -5.0
	if _, err := r.UpdateCourse("1", model.CoursePatch{Title: &title, Price: &price}, 0); !errors.Is(err, util.ErrValidation) {
		t.Fatalf("UpdateCourse: err=%v", err)
	}
	if after := r.mustCourse(t, "1"); !reflect.DeepEqual(before, after) {
		t.Fatalf("partial update visible: %+v", after)
	}

	if _, err := r.UpdateCourse("missing", model.CoursePatch{Title: &title}, 0); !errors.Is(err, util.ErrCourseNotFound) {
		t.Fatalf("UpdateCourse(missing): err=%v", err)
	}
}

func TestDeleteCourseCascades(t *testing.T) {
	r := newSeededRepo(t)
	r.EnrollInCourse("u1", "1")
	r.EnrollInCourse("u1", "2")
	r.EnrollInCourse("u2", "1")

	if err := r.DeleteCourse("1"); err != nil {
		t.Fatalf("DeleteCourse: %v", err)
	}
	if _, err := r.GetCourse("1"); !errors.Is(err, util.ErrCourseNotFound) {
		t.Fatalf("GetCourse after delete: err=%v", err)
	}
	if got := r.ListEnrolled("u1"); len(got) != 1 || got[0].ID != "2" {
		t.Fatalf("u1 enrolled set: %+v", got)
	}
	if got := r.ListEnrolled("u2"); len(got) != 0 {
		t.Fatalf("u2 enrolled set: %+v", got)
	}
	if err := r.DeleteCourse("1"); !errors.Is(err, util.ErrCourseNotFound) {
		t.Fatalf("second delete: err=%v", err)
	}
}

func TestListCoursesByStatus(t *testing.T) {
	r := newSeededRepo(t)
	r.AddCourse(draftCourse())

	if got := r.ListCourses(model.Published); len(got) != 2 {
		t.Fatalf("published: got %d", len(got))
	}
	drafts := r.ListCourses(model.Draft)
	if len(drafts) != 1 || drafts[0].Title != "Risk Management" {
		t.Fatalf("drafts: got %+v", drafts)
	}
	all := r.ListCourses("")
	if all[0].ID != "1" || all[1].ID != "2" {
		t.Fatalf("insertion order lost: %s, %s", all[0].ID, all[1].ID)
	}
}

func TestSeedRejectsDuplicateIDs(t *testing.T) {
	r := newSeededRepo(t)
	courses := SeedCourses()
	courses[1].ID = courses[0].ID

	if err := r.Seed(courses); !errors.Is(err, util.ErrValidation) {
		t.Fatalf("Seed: err=%v", err)
	}
	if got := r.ListCourses(""); len(got) != 2 {
		t.Fatalf("catalog replaced by failed seed: %d courses", len(got))
	}
}

func TestStats(t *testing.T) {
	r := newSeededRepo(t)
	r.AddCourse(draftCourse())
	r.EnrollInCourse("u1", "1")
	r.EnrollInCourse("u1", "2")
	r.EnrollInCourse("u2", "2")
	r.UpdateCourseProgress("u1", "2", "4", true)
	r.UpdateCourseProgress("u2", "2", "4", true)
	r.UpdateCourseProgress("u2", "2", "5", true)

	s := r.Stats()
	if s.TotalCourses != 3 || s.PublishedCourses != 2 || s.DraftCourses != 1 {
		t.Fatalf("course counts: %+v", s)
	}
	if s.TotalStudents != 2 || s.TotalEnrollments != 3 {
		t.Fatalf("enrollment counts: %+v", s)
	}
	// (0 + 50 + 100) / 3
	if math.Abs(s.AverageProgress-50) > 1e-9 {
		t.Fatalf("average progress: got=%v", s.AverageProgress)
	}
}

func (r *CourseRepository) mustCourse(t *testing.T, id string) model.Course {
	t.Helper()
	c, err := r.GetCourse(id)
	if err != nil {
		t.Fatalf("GetCourse(%s): %v", id, err)
	}
	return c
}
