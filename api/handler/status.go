package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"scamwall/internal/hub"
	"scamwall/internal/service"
)

// HubStatus 在线观察者统计
func HubStatus(h *hub.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, h.GetStatus())
	}
}

// TaskStatus 各渠道分析任务统计
func TaskStatus(tm service.TaskManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, tm.GetAllStatus())
	}
}
