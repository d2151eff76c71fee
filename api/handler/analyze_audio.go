package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"scamwall/internal/hub"
	"scamwall/internal/pipeline"
	"scamwall/internal/service"
)

// AnalyzeAudio 音频分析处理器，接收multipart上传
func AnalyzeAudio(p *pipeline.Pipeline, h *hub.Hub, notifier *service.AlertNotifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"result":      "fail",
				"status_code": http.StatusBadRequest,
				"status_msg":  "Audio file is required",
			})
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"result":      "fail",
				"status_code": http.StatusBadRequest,
				"status_msg":  "Failed to open uploaded file",
			})
			return
		}
		defer file.Close()

		audio, err := io.ReadAll(file)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"result":      "fail",
				"status_code": http.StatusBadRequest,
				"status_msg":  "Failed to read uploaded file",
			})
			return
		}

		assessment, err := p.AnalyzeAudio(c.Request.Context(), audio, fileHeader.Filename)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"result":      "fail",
				"status_code": http.StatusBadRequest,
				"status_msg":  err.Error(),
			})
			return
		}

		envelope := assessment.ToEnvelope()
		_ = h.Broadcast(envelope)
		notifier.Notify(assessment)

		c.JSON(http.StatusOK, gin.H{
			"result":      "ok",
			"status_code": http.StatusOK,
			"status_msg":  "Audio analysis triggered",
			"details":     envelope,
		})
	}
}
