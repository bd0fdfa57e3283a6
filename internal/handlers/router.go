package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/shopsafety/quiz-service/internal/services"
	"github.com/shopsafety/quiz-service/internal/utils"
)

type HandlerManager struct {
	testHandler   *TestHandler
	authHandler   *AuthHandler
	adminHandler  *AdminHandler
	cohortHandler *CohortHandler
	jwtSecret     string
}

func NewHandlerManager(manager *services.Manager, logger utils.Logger, jwtSecret string) *HandlerManager {
	return &HandlerManager{
		testHandler:   NewTestHandler(manager.Availability(), manager.Grading(), manager.Tests(), logger),
		authHandler:   NewAuthHandler(manager.Users(), logger),
		adminHandler:  NewAdminHandler(manager.Tests(), manager.Users(), manager.Reporting(), logger),
		cohortHandler: NewCohortHandler(manager.Cohorts(), logger),
		jwtSecret:     jwtSecret,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "quiz-service",
		})
	})

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", hm.authHandler.Register)
			auth.POST("/login", hm.authHandler.Login)
		}

		tests := v1.Group("/tests")
		{
			tests.GET("/available/:user_id", hm.testHandler.GetAvailableTests)
			tests.GET("/:test_id/questions", hm.testHandler.GetQuestions)
			tests.POST("/:test_id/submit", hm.testHandler.SubmitTest)
			tests.GET("/:test_id/review/:user_id", hm.testHandler.ReviewFailedQuestions)
		}

		cohorts := v1.Group("/cohorts")
		{
			cohorts.GET("", hm.cohortHandler.List)
		}

		admin := v1.Group("/admin", AuthMiddleware(hm.jwtSecret), AdminMiddleware())
		{
			admin.GET("/tests", hm.adminHandler.ListTests)
			admin.POST("/tests", hm.adminHandler.CreateTest)
			admin.PUT("/tests/:test_id", hm.adminHandler.UpdateTest)
			admin.DELETE("/tests/:test_id", hm.adminHandler.DeleteTest)

			admin.GET("/tests/:test_id/questions", hm.adminHandler.ListQuestions)
			admin.POST("/tests/:test_id/questions", hm.adminHandler.CreateQuestion)
			admin.PUT("/questions/:question_id", hm.adminHandler.UpdateQuestion)
			admin.DELETE("/questions/:question_id", hm.adminHandler.DeleteQuestion)

			admin.GET("/users", hm.adminHandler.ListUsers)
			admin.DELETE("/users/:user_id", hm.adminHandler.DeleteUser)

			admin.GET("/scores", hm.adminHandler.ListScores)
			admin.GET("/scores/export", hm.adminHandler.ExportScores)

			admin.POST("/cohorts", hm.cohortHandler.Create)
			admin.PUT("/cohorts/:cohort_id", hm.cohortHandler.Update)
			admin.DELETE("/cohorts/:cohort_id", hm.cohortHandler.Delete)
		}
	}
}
