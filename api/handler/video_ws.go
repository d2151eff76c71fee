package handler

import (
	"encoding/json"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"scamwall/internal/hub"
	"scamwall/internal/pipeline"
	"scamwall/internal/service"
)

// VideoWebSocket 视频流接入点。
// 客户端逐帧发送二进制图像，无人脸的帧被抑制，不产生广播
func VideoWebSocket(p *pipeline.Pipeline, h *hub.Hub, notifier *service.AlertNotifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logrus.WithError(err).Warn("websocket upgrade failed")
			return
		}

		transport := hub.NewWebSocketTransport(conn)
		connection, err := h.Register(hub.KindVideo, transport)
		if err != nil {
			logrus.WithError(err).Warn("observer registration failed")
			return
		}

		// 帧间隔可能超过读超时，靠心跳的pong应答续期
		done := make(chan struct{})
		connection.StartPing(hub.DefaultPingInterval, done, func() {
			h.Unregister(connection)
		})

		for {
			msgType, frame, err := conn.ReadMessage()
			if err != nil {
				break
			}
			if msgType != websocket.BinaryMessage {
				continue
			}

			assessment, err := p.AnalyzeVideoFrame(c.Request.Context(), frame)
			if err != nil {
				// 非法帧只回给发送方，不进广播；单播与广播共用连接的写锁
				reply, _ := json.Marshal(gin.H{"type": "error", "error": err.Error()})
				_ = connection.Send(reply)
				continue
			}
			if assessment == nil {
				// 无人脸帧抑制
				continue
			}

			_ = h.Broadcast(assessment.ToEnvelope())
			notifier.Notify(assessment)
		}

		close(done)
		h.Unregister(connection)
	}
}
