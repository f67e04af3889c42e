package app

import (
	"classroom_backend/internal/config"
	"classroom_backend/internal/middleware"
	"classroom_backend/internal/model"
	"classroom_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/health", c.health.HealthCheck)

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/register", c.auth.Register)
		auth.POST("/login", c.auth.Login)
	}

	authed := v1.Group("")
	authed.Use(middleware.AuthMiddleware(cfg.JWT.Secret), middleware.ActivityMiddleware(repos.user))
	{
		authed.GET("/users/me", c.auth.Profile)
		authed.PUT("/users/me", c.auth.UpdateProfile)

		// classes
		authed.GET("/classes", c.class.List)
		authed.GET("/classes/:id", c.class.Get)
		authed.GET("/classes/:id/students", c.class.Roster)
		authed.GET("/classes/:id/materials", c.material.List)
		authed.GET("/classes/:id/quizzes", c.quiz.ListByClass)
		authed.GET("/classes/:id/overview", c.dashboard.MyOverview)

		// quizzes and attempts
		authed.GET("/quizzes/:id", c.quiz.Get)
		authed.POST("/quizzes/:id/attempts", c.attempt.Start)
		authed.GET("/quizzes/:id/attempts", c.attempt.History)
		authed.PUT("/quizzes/:id/checkpoint", c.attempt.SaveCheckpoint)
		authed.GET("/quizzes/:id/checkpoint", c.attempt.Checkpoints)
		authed.GET("/attempts/:id", c.attempt.Get)
		authed.POST("/attempts/:id/submit", c.attempt.Submit)
		authed.POST("/attempts/:id/cancel", c.attempt.Cancel)

		// materials
		authed.PUT("/materials/:id/progress", c.material.MarkProgress)
	}

	teacher := v1.Group("")
	teacher.Use(
		middleware.AuthMiddleware(cfg.JWT.Secret),
		middleware.ActivityMiddleware(repos.user),
		middleware.RoleMiddleware(model.Teacher, model.Admin),
	)
	{
		teacher.POST("/classes", c.class.Create)
		teacher.PUT("/classes/:id", c.class.Update)
		teacher.POST("/classes/:id/archive", c.class.Archive)
		teacher.POST("/classes/:id/students", c.class.Enroll)
		teacher.DELETE("/classes/:id/students/:studentId", c.class.Unenroll)
		teacher.GET("/classes/:id/students/:studentId/overview", c.dashboard.StudentOverview)
		teacher.GET("/classes/:id/report", c.dashboard.ClassReport)

		teacher.POST("/classes/:id/quizzes", c.quiz.Create)
		teacher.PUT("/quizzes/:id", c.quiz.Update)
		teacher.PUT("/quizzes/:id/status", c.quiz.SetStatus)
		teacher.DELETE("/quizzes/:id", c.quiz.Delete)
		teacher.GET("/quizzes/:id/results", c.attempt.ListByQuiz)

		teacher.GET("/quizzes/:id/pending-reviews", c.grading.PendingReviews)
		teacher.POST("/submissions/:id/grade", c.grading.Grade)
		teacher.POST("/attempts/:id/finalize", c.grading.Finalize)

		teacher.POST("/classes/:id/materials", c.material.Upload)
		teacher.DELETE("/materials/:id", c.material.Delete)
	}

	admin := v1.Group("/admin")
	admin.Use(
		middleware.AuthMiddleware(cfg.JWT.Secret),
		middleware.RoleMiddleware(model.Admin),
	)
	{
		admin.GET("/users", c.user.List)
		admin.PUT("/users/:id/disabled", c.user.SetDisabled)
		admin.DELETE("/classes/:id", c.class.Delete)
	}
}
