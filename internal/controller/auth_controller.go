package controller

import (
	"trading_academy_backend/internal/service"
	"trading_academy_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService *service.AuthService
}

func NewAuthController(authService *service.AuthService) *AuthController {
	return &AuthController{AuthService: authService}
}

// @Summary Sign in
// @Description Any e-mail signs in as a student; the configured admin credential signs in as admin
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body service.SignInRequest true "Credentials"
// @Success 200 {object} util.Response{data=service.SignInResult}
// @Failure 400 {object} util.Response
// @Router /auth/signin [post]
func (c *AuthController) SignIn(ctx *gin.Context) {
	var req service.SignInRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.AuthService.SignIn(ctx.Request.Context(), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// @Summary Sign up
// @Tags auth
// @Accept json
// @Produce json
// @Param user body service.SignUpRequest true "Sign up form"
// @Success 201 {object} util.Response{data=service.SignInResult}
// @Failure 400 {object} util.Response
// @Router /auth/signup [post]
func (c *AuthController) SignUp(ctx *gin.Context) {
	var req service.SignUpRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.AuthService.SignUp(ctx.Request.Context(), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, result)
}

// @Summary Current session
// @Tags auth
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.Session}
// @Router /auth/session [get]
func (c *AuthController) Session(ctx *gin.Context) {
	session := util.GetSessionFromContext(ctx)
	if session == nil {
		util.Unauthorized(ctx)
		return
	}
	util.Success(ctx, session)
}

// @Summary Sign out
// @Tags auth
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /auth/signout [post]
func (c *AuthController) SignOut(ctx *gin.Context) {
	session := util.GetSessionFromContext(ctx)
	if session == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.AuthService.SignOut(ctx.Request.Context(), session); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "Signed out"})
}
