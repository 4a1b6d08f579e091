package router

import (
	"github.com/gin-gonic/gin"

	"github.com/glossa-labs/glossa-backend/internal/config"
	"github.com/glossa-labs/glossa-backend/internal/http/handlers"
	"github.com/glossa-labs/glossa-backend/internal/http/middleware"
)

func SetupRouter(
	cfg *config.Config,
	taskHandler *handlers.TaskHandler,
	healthHandler *handlers.HealthHandler,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)

	api := r.Group("/api")
	api.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))

	// Чтения. Составные идентификаторы содержат "/", поэтому задача
	// передаётся query-параметром id, а не сегментом пути.
	api.GET("/tasks", taskHandler.ListTasks)
	api.GET("/task", taskHandler.GetTask)
	api.GET("/task/price", taskHandler.GetTaskPrice)
	api.GET("/task/deposit/translator", taskHandler.GetTranslatorDeposit)
	api.GET("/task/deposit/challenger", taskHandler.GetChallengerDeposit)
	api.GET("/task/dispute", taskHandler.GetTaskDispute)

	// Записи: подготовка и отправка транзакций в контракты.
	api.POST("/task", taskHandler.CreateTask)
	api.POST("/task/assign", taskHandler.AssignTask)
	api.POST("/task/translation", taskHandler.SubmitTranslation)
	api.POST("/task/translation/accept", taskHandler.AcceptTranslation)
	api.POST("/task/translation/challenge", taskHandler.ChallengeTranslation)
	api.POST("/task/reimburse", taskHandler.ReimburseRequester)
	api.POST("/task/appeal/fund", taskHandler.FundAppeal)

	return r
}
