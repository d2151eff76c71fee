package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"scamwall/internal/hub"
	"scamwall/internal/model"
	"scamwall/internal/pipeline"
	"scamwall/internal/service"
)

// AnalyzeTextRequest 文本分析请求
type AnalyzeTextRequest struct {
	Text    string `form:"text" json:"text"`
	Sender  string `form:"sender" json:"sender"`   // 发件人邮箱或号码，可选
	Channel string `form:"channel" json:"channel"` // sms或email，默认sms
}

// AnalyzeText 文本分析处理器
func AnalyzeText(p *pipeline.Pipeline, h *hub.Hub, notifier *service.AlertNotifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AnalyzeTextRequest

		// 绑定请求参数
		if err := c.ShouldBind(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"result":      "fail",
				"status_code": http.StatusBadRequest,
				"status_msg":  "Invalid request parameters",
			})
			return
		}

		// 设置默认渠道
		channel := model.StringToChannelType(req.Channel)
		if channel == "" {
			channel = model.ChannelSMS
		}
		if channel != model.ChannelSMS && channel != model.ChannelEmail {
			c.JSON(http.StatusBadRequest, gin.H{
				"result":      "fail",
				"status_code": http.StatusBadRequest,
				"status_msg":  "Channel must be sms or email",
			})
			return
		}

		assessment, err := p.AnalyzeText(c.Request.Context(), channel, req.Text, req.Sender)
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
			"status_msg":  "Text analysis triggered",
			"details":     envelope,
		})
	}
}
