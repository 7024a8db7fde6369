package controller

import (
	"trading_academy_backend/internal/service"
	"trading_academy_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type DashboardController struct {
	DashboardService *service.DashboardService
	WaitlistService  *service.WaitlistService
}

func NewDashboardController(dashboardService *service.DashboardService, waitlistService *service.WaitlistService) *DashboardController {
	return &DashboardController{
		DashboardService: dashboardService,
		WaitlistService:  waitlistService,
	}
}

// @Summary Student dashboard
// @Tags dashboard
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.StudentDashboard}
// @Router /dashboard [get]
func (c *DashboardController) GetDashboard(ctx *gin.Context) {
	session := util.GetSessionFromContext(ctx)
	if session == nil {
		util.Unauthorized(ctx)
		return
	}
	util.Success(ctx, c.DashboardService.Student(session))
}

// @Summary Admin dashboard
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.AdminDashboard}
// @Router /admin/dashboard [get]
func (c *DashboardController) GetAdminDashboard(ctx *gin.Context) {
	util.Success(ctx, c.DashboardService.Admin())
}

// @Summary Join the waitlist
// @Tags waitlist
// @Accept json
// @Produce json
// @Param entry body service.JoinWaitlistRequest true "Name and e-mail"
// @Success 201 {object} util.Response{data=model.WaitlistEntry}
// @Failure 409 {object} util.Response
// @Router /waitlist [post]
func (c *DashboardController) JoinWaitlist(ctx *gin.Context) {
	var req service.JoinWaitlistRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	entry, err := c.WaitlistService.Join(req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, entry)
}

// @Summary Waitlist entries
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.WaitlistEntry}
// @Router /admin/waitlist [get]
func (c *DashboardController) ListWaitlist(ctx *gin.Context) {
	util.Success(ctx, c.WaitlistService.List())
}
