package hub

import (
	"time"

	"github.com/gorilla/websocket"
)

const (
	defaultWriteWait = 10 * time.Second // 单条消息写超时
	defaultPongWait  = 60 * time.Second // 等待对端pong的最长时间

	// DefaultPingInterval 心跳周期，必须小于pongWait
	DefaultPingInterval = defaultPongWait * 9 / 10
)

// wsTransport 基于gorilla websocket的传输层实现。
// gorilla连接只允许单个并发写者，写操作由Connection的writeMu串行化
type wsTransport struct {
	conn      *websocket.Conn
	writeWait time.Duration
	pongWait  time.Duration
}

// NewWebSocketTransport 包装一条已升级的websocket连接
func NewWebSocketTransport(conn *websocket.Conn) Transport {
	return newWSTransport(conn, defaultWriteWait, defaultPongWait)
}

func newWSTransport(conn *websocket.Conn, writeWait, pongWait time.Duration) *wsTransport {
	return &wsTransport{conn: conn, writeWait: writeWait, pongWait: pongWait}
}

// Handshake 发送欢迎帧确认通道可写。
// 读超时由pong应答续期，心跳停止后连接在pongWait内被读循环感知
func (t *wsTransport) Handshake() error {
	t.conn.SetPongHandler(func(string) error {
		return t.conn.SetReadDeadline(time.Now().Add(t.pongWait))
	})
	_ = t.conn.SetReadDeadline(time.Now().Add(t.pongWait))

	_ = t.conn.SetWriteDeadline(time.Now().Add(t.writeWait))
	return t.conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"connected"}`))
}

// WriteMessage 带写超时的文本帧发送
func (t *wsTransport) WriteMessage(data []byte) error {
	_ = t.conn.SetWriteDeadline(time.Now().Add(t.writeWait))
	return t.conn.WriteMessage(websocket.TextMessage, data)
}

// Ping 发送ping控制帧
func (t *wsTransport) Ping() error {
	_ = t.conn.SetWriteDeadline(time.Now().Add(t.writeWait))
	return t.conn.WriteMessage(websocket.PingMessage, nil)
}

// Close 关闭底层连接
func (t *wsTransport) Close() error {
	return t.conn.Close()
}
