package app

import (
	"trading_academy_backend/docs"
	"trading_academy_backend/internal/middleware"

	"trading_academy_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, s *services) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. Public routes
	a.registerPublicRoutes(router, c)

	// 2. Signed-in routes
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(s.auth))
	{
		a.registerStudentRoutes(authGroup, c)
	}

	// 3. Admin routes
	a.registerAdminRoutes(router, c, s)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/auth/signin", c.auth.SignIn)
		public.POST("/auth/signup", c.auth.SignUp)

		public.GET("/courses", c.course.ListCourses)
		public.GET("/courses/:id", c.course.GetCourse)

		public.POST("/waitlist", c.dashboard.JoinWaitlist)
	}
}

func (a *App) registerStudentRoutes(group *gin.RouterGroup, c *controllers) {
	group.GET("/auth/session", c.auth.Session)
	group.POST("/auth/signout", c.auth.SignOut)

	group.POST("/courses/:id/enroll", c.course.Enroll)
	group.GET("/dashboard", c.dashboard.GetDashboard)

	me := group.Group("/me/courses")
	{
		me.GET("", c.course.ListMyCourses)
		me.GET("/:id", c.course.GetMyCourse)
		me.PUT("/:id/modules/:moduleId/progress", c.course.UpdateProgress)

		// Module viewer
		me.GET("/:id/viewer", c.viewer.State)
		me.POST("/:id/viewer/next", c.viewer.Next)
		me.POST("/:id/viewer/prev", c.viewer.Prev)
		me.POST("/:id/viewer/select", c.viewer.Select)
	}
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers, s *services) {
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(s.auth), middleware.AdminMiddleware())
	{
		admin.POST("/courses", c.course.AddCourse)
		admin.PATCH("/courses/:id", c.course.UpdateCourse)
		admin.DELETE("/courses/:id", c.course.DeleteCourse)

		admin.POST("/courses/:id/modules", c.course.AddModule)
		admin.PATCH("/courses/:id/modules/:moduleId", c.course.UpdateModule)
		admin.DELETE("/courses/:id/modules/:moduleId", c.course.DeleteModule)

		admin.GET("/dashboard", c.dashboard.GetAdminDashboard)
		admin.GET("/waitlist", c.dashboard.ListWaitlist)
	}
}
