package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"scamwall/internal/hub"
)

// 观察者无需认证，跨域放开
var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// AlertsWebSocket 告警观察者接入点。
// 客户端只收广播，读循环仅用于感知断连
func AlertsWebSocket(h *hub.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logrus.WithError(err).Warn("websocket upgrade failed")
			return
		}

		transport := hub.NewWebSocketTransport(conn)
		connection, err := h.Register(hub.KindAlert, transport)
		if err != nil {
			logrus.WithError(err).Warn("observer registration failed")
			return
		}

		done := make(chan struct{})
		connection.StartPing(hub.DefaultPingInterval, done, func() {
			h.Unregister(connection)
		})

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}

		close(done)
		h.Unregister(connection)
	}
}
