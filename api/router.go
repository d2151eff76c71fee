package api

import (
	"github.com/gin-gonic/gin"

	"scamwall/api/handler"
	"scamwall/api/middleware"
	"scamwall/config"
	"scamwall/internal/scheduler"
	"scamwall/internal/service"
)

// SetupRouter 设置API路由
func SetupRouter(cfg *config.Config, services *service.Services, sched *scheduler.Scheduler) *gin.Engine {
	router := gin.New()
	router.Use(middleware.Logger())
	router.Use(middleware.Cors())
	router.Use(middleware.Recovery())

	apiGroup := router.Group("/api/v1")
	apiGroup.Use(middleware.Auth(cfg.Token))
	{
		apiGroup.POST("/analyze/text", handler.AnalyzeText(services.Pipeline, services.Hub, services.AlertNotifier))
		apiGroup.POST("/analyze/audio", handler.AnalyzeAudio(services.Pipeline, services.Hub, services.AlertNotifier))

		// 状态API
		apiGroup.GET("/hub_status", handler.HubStatus(services.Hub))
		apiGroup.GET("/task_all_status", handler.TaskStatus(services.TaskManager))
		apiGroup.GET("/scheduler_status", func(c *gin.Context) {
			c.JSON(200, sched.GetStatus())
		})
	}

	// 观察者接入点不做认证
	router.GET("/ws/alerts", handler.AlertsWebSocket(services.Hub))
	router.GET("/ws/video", handler.VideoWebSocket(services.Pipeline, services.Hub, services.AlertNotifier))

	return router
}
