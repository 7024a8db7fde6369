package controller

import (
	"trading_academy_backend/internal/service"
	"trading_academy_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ViewerController struct {
	ViewerService *service.ViewerService
}

func NewViewerController(viewerService *service.ViewerService) *ViewerController {
	return &ViewerController{ViewerService: viewerService}
}

type SelectModuleRequest struct {
	Index *int `json:"index" binding:"required"`
}

// @Summary Viewer state
// @Tags viewer
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Course ID"
// @Success 200 {object} util.Response{data=service.ViewerState}
// @Router /me/courses/{id}/viewer [get]
func (c *ViewerController) State(ctx *gin.Context) {
	session := util.GetSessionFromContext(ctx)
	if session == nil {
		util.Unauthorized(ctx)
		return
	}

	state, err := c.ViewerService.State(session, ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, state)
}

// @Summary Complete the current module and advance
// @Tags viewer
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Course ID"
// @Success 200 {object} util.Response{data=service.ViewerState}
// @Router /me/courses/{id}/viewer/next [post]
func (c *ViewerController) Next(ctx *gin.Context) {
	session := util.GetSessionFromContext(ctx)
	if session == nil {
		util.Unauthorized(ctx)
		return
	}

	state, err := c.ViewerService.Next(ctx.Request.Context(), session, ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, state)
}

// @Summary Go back one module
// @Tags viewer
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Course ID"
// @Success 200 {object} util.Response{data=service.ViewerState}
// @Router /me/courses/{id}/viewer/prev [post]
func (c *ViewerController) Prev(ctx *gin.Context) {
	session := util.GetSessionFromContext(ctx)
	if session == nil {
		util.Unauthorized(ctx)
		return
	}

	state, err := c.ViewerService.Prev(session, ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, state)
}

// @Summary Jump to a module
// @Description Forward jumps are only allowed onto completed modules
// @Tags viewer
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Course ID"
// @Param body body SelectModuleRequest true "Module index"
// @Success 200 {object} util.Response{data=service.ViewerState}
// @Failure 403 {object} util.Response
// @Router /me/courses/{id}/viewer/select [post]
func (c *ViewerController) Select(ctx *gin.Context) {
	session := util.GetSessionFromContext(ctx)
	if session == nil {
		util.Unauthorized(ctx)
		return
	}

	var req SelectModuleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	state, err := c.ViewerService.Select(session, ctx.Param("id"), *req.Index)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, state)
}
