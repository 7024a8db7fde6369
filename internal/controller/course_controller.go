package controller

import (
	"strconv"
	"strings"

	"trading_academy_backend/internal/model"
	"trading_academy_backend/internal/service"
	"trading_academy_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	CourseService *service.CourseService
}

func NewCourseController(courseService *service.CourseService) *CourseController {
	return &CourseController{CourseService: courseService}
}

type ProgressRequest struct {
	Completed *bool `json:"completed" binding:"required"`
}

// @Summary List courses
// @Description Catalog snapshot with the loading flag of the initial fetch
// @Tags courses
// @Produce json
// @Param status query string false "draft or published"
// @Success 200 {object} util.Response{data=service.CatalogState}
// @Router /courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	status := model.CourseStatus(ctx.Query("status"))
	switch status {
	case "", model.Draft, model.Published:
	default:
		util.BadRequest(ctx, "status must be draft or published")
		return
	}
	util.Success(ctx, c.CourseService.Catalog(status))
}

// @Summary Get a course
// @Tags courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 404 {object} util.Response
// @Router /courses/{id} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	course, err := c.CourseService.GetCourse(ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// @Summary Enroll in a course
// @Tags enrollment
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Course ID"
// @Success 201 {object} util.Response{data=model.EnrolledCourse}
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /courses/{id}/enroll [post]
func (c *CourseController) Enroll(ctx *gin.Context) {
	session := util.GetSessionFromContext(ctx)
	if session == nil {
		util.Unauthorized(ctx)
		return
	}

	enrolled, err := c.CourseService.EnrollInCourse(ctx.Request.Context(), session.UserID(), ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, enrolled)
}

// @Summary List my enrolled courses
// @Tags enrollment
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.EnrolledCourse}
// @Router /me/courses [get]
func (c *CourseController) ListMyCourses(ctx *gin.Context) {
	session := util.GetSessionFromContext(ctx)
	if session == nil {
		util.Unauthorized(ctx)
		return
	}
	util.Success(ctx, c.CourseService.ListEnrolled(session.UserID()))
}

// @Summary Get one of my enrolled courses
// @Tags enrollment
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Course ID"
// @Success 200 {object} util.Response{data=model.EnrolledCourse}
// @Failure 404 {object} util.Response
// @Router /me/courses/{id} [get]
func (c *CourseController) GetMyCourse(ctx *gin.Context) {
	session := util.GetSessionFromContext(ctx)
	if session == nil {
		util.Unauthorized(ctx)
		return
	}

	enrolled, err := c.CourseService.GetEnrolled(session.UserID(), ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, enrolled)
}

// @Summary Set a module's completion flag
// @Description A course the user is not enrolled in is left untouched and reported with enrolled=false
// @Tags enrollment
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Course ID"
// @Param moduleId path string true "Module ID"
// @Param body body ProgressRequest true "Completion flag"
// @Success 200 {object} util.Response{data=service.ProgressResult}
// @Failure 404 {object} util.Response
// @Router /me/courses/{id}/modules/{moduleId}/progress [put]
func (c *CourseController) UpdateProgress(ctx *gin.Context) {
	session := util.GetSessionFromContext(ctx)
	if session == nil {
		util.Unauthorized(ctx)
		return
	}

	var req ProgressRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.CourseService.UpdateCourseProgress(ctx.Request.Context(), session.UserID(), ctx.Param("id"), ctx.Param("moduleId"), *req.Completed)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// @Summary Create a course
// @Tags admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param course body model.Course true "Course draft; id and enrolledStudents are ignored"
// @Success 201 {object} util.Response{data=model.Course}
// @Failure 400 {object} util.Response
// @Router /admin/courses [post]
func (c *CourseController) AddCourse(ctx *gin.Context) {
	var draft model.Course
	if err := ctx.ShouldBindJSON(&draft); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course, err := c.CourseService.AddCourse(ctx.Request.Context(), draft)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, course)
}

// @Summary Update a course
// @Description Merges the given fields. Existing enrollments keep their snapshot.
// @Tags admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Course ID"
// @Param If-Match header string false "Expected course version"
// @Param patch body model.CoursePatch true "Fields to change"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 409 {object} util.Response
// @Router /admin/courses/{id} [patch]
func (c *CourseController) UpdateCourse(ctx *gin.Context) {
	var patch model.CoursePatch
	if err := ctx.ShouldBindJSON(&patch); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	version, ok := expectedVersion(ctx)
	if !ok {
		util.BadRequest(ctx, "If-Match must be a course version number")
		return
	}

	course, err := c.CourseService.UpdateCourse(ctx.Request.Context(), ctx.Param("id"), patch, version)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// @Summary Delete a course
// @Description Also removes the course from every user's enrolled courses
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Course ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /admin/courses/{id} [delete]
func (c *CourseController) DeleteCourse(ctx *gin.Context) {
	if err := c.CourseService.DeleteCourse(ctx.Request.Context(), ctx.Param("id")); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "Course deleted"})
}

// @Summary Add a module to a course
// @Tags admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Course ID"
// @Param module body model.Module true "Module; order and id are assigned"
// @Success 201 {object} util.Response{data=model.Course}
// @Router /admin/courses/{id}/modules [post]
func (c *CourseController) AddModule(ctx *gin.Context) {
	var draft model.Module
	if err := ctx.ShouldBindJSON(&draft); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course, err := c.CourseService.AddModule(ctx.Request.Context(), ctx.Param("id"), draft)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, course)
}

// @Summary Update a module
// @Tags admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Course ID"
// @Param moduleId path string true "Module ID"
// @Param patch body model.ModulePatch true "Fields to change"
// @Success 200 {object} util.Response{data=model.Course}
// @Router /admin/courses/{id}/modules/{moduleId} [patch]
func (c *CourseController) UpdateModule(ctx *gin.Context) {
	var patch model.ModulePatch
	if err := ctx.ShouldBindJSON(&patch); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course, err := c.CourseService.UpdateModule(ctx.Request.Context(), ctx.Param("id"), ctx.Param("moduleId"), patch)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// @Summary Delete a module
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Course ID"
// @Param moduleId path string true "Module ID"
// @Success 200 {object} util.Response{data=model.Course}
// @Router /admin/courses/{id}/modules/{moduleId} [delete]
func (c *CourseController) DeleteModule(ctx *gin.Context) {
	course, err := c.CourseService.DeleteModule(ctx.Request.Context(), ctx.Param("id"), ctx.Param("moduleId"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

func expectedVersion(ctx *gin.Context) (int64, bool) {
	raw := strings.Trim(strings.TrimSpace(ctx.GetHeader("If-Match")), `"`)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}
