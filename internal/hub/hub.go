package hub

import (
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"scamwall/internal/model"
)

// Kind 观察者连接类型
type Kind string

const (
	KindAlert Kind = "alerts" // 只接收告警
	KindVideo Kind = "video"  // 视频流客户端
)

// 连接状态机：CONNECTING → ACTIVE → CLOSED，CLOSED为终态
const (
	StateConnecting int32 = iota
	StateActive
	StateClosed
)

// Transport 观察者连接的传输层。
// 实现见websocket.go，测试中用假实现。
// 底层连接只允许单个并发写者，所有写操作必须经过Connection串行化
type Transport interface {
	// Handshake 完成传输层握手，失败的连接不入注册表
	Handshake() error

	// WriteMessage 向对端写一条消息
	WriteMessage(data []byte) error

	// Ping 向对端发送一次心跳
	Ping() error

	// Close 关闭底层连接
	Close() error
}

// Connection 一个在线观察者，注册表独占持有
type Connection struct {
	ID        string
	Kind      Kind
	transport Transport
	state     int32
	writeMu   sync.Mutex
}

// State 当前连接状态
func (c *Connection) State() int32 {
	return atomic.LoadInt32(&c.state)
}

// Send 向对端写一条消息。
// 广播、心跳和处理器的单播回复共用writeMu，同一连接永远只有一个写者
func (c *Connection) Send(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if atomic.LoadInt32(&c.state) != StateActive {
		return fmt.Errorf("connection %s is not active", c.ID)
	}
	return c.transport.WriteMessage(data)
}

// Ping 向对端发送一次心跳，与Send走同一把锁
func (c *Connection) Ping() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if atomic.LoadInt32(&c.state) != StateActive {
		return fmt.Errorf("connection %s is not active", c.ID)
	}
	return c.transport.Ping()
}

// StartPing 周期性发送心跳保持连接存活。
// 对端失联时触发stop回调，读循环结束时关闭done停止心跳
func (c *Connection) StartPing(interval time.Duration, done <-chan struct{}, stop func()) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := c.Ping(); err != nil {
					stop()
					return
				}
			case <-done:
				return
			}
		}
	}()
}

// Hub 广播中心，维护在线观察者注册表。
// 注册表是唯一的共享可变结构，结构变更走窄临界区，
// 投递在快照上进行，不长时间持锁
type Hub struct {
	mu          sync.Mutex
	connections map[string]*Connection
}

// NewHub 创建广播中心
func NewHub() *Hub {
	return &Hub{
		connections: make(map[string]*Connection),
	}
}

// Register 完成握手后把连接纳入注册表。
// 握手失败时连接不会留下任何注册表痕迹
func (h *Hub) Register(kind Kind, transport Transport) (*Connection, error) {
	if transport == nil {
		return nil, fmt.Errorf("transport cannot be nil")
	}

	conn := &Connection{
		ID:        uuid.NewString(),
		Kind:      kind,
		transport: transport,
		state:     StateConnecting,
	}

	if err := transport.Handshake(); err != nil {
		atomic.StoreInt32(&conn.state, StateClosed)
		_ = transport.Close()
		return nil, fmt.Errorf("handshake failed: %w", err)
	}

	atomic.StoreInt32(&conn.state, StateActive)

	h.mu.Lock()
	h.connections[conn.ID] = conn
	h.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"connection": conn.ID,
		"kind":       kind,
	}).Info("observer connected")

	return conn, nil
}

// Unregister 注销连接，幂等。
// 断连和并发广播天然竞争，重复注销或注销未知连接都是no-op
func (h *Hub) Unregister(conn *Connection) {
	if conn == nil {
		return
	}

	h.mu.Lock()
	_, exists := h.connections[conn.ID]
	if exists {
		delete(h.connections, conn.ID)
	}
	h.mu.Unlock()

	// CLOSED是终态，只在第一次注销时关闭传输层
	if atomic.CompareAndSwapInt32(&conn.state, StateActive, StateClosed) ||
		atomic.CompareAndSwapInt32(&conn.state, StateConnecting, StateClosed) {
		_ = conn.transport.Close()
	}

	if exists {
		logrus.WithField("connection", conn.ID).Info("observer disconnected")
	}
}

// Broadcast 把一条结论投递给所有ACTIVE连接。
// 消息只序列化一次；单个连接投递失败只注销该连接，
// 不影响其余连接的投递
func (h *Hub) Broadcast(envelope model.Envelope) error {
	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	// 快照后立即释放锁，投递期间注册/注销不被阻塞
	h.mu.Lock()
	snapshot := make([]*Connection, 0, len(h.connections))
	for _, conn := range h.connections {
		snapshot = append(snapshot, conn)
	}
	h.mu.Unlock()

	var wg sync.WaitGroup
	for _, conn := range snapshot {
		wg.Add(1)
		go func(c *Connection) {
			defer wg.Done()
			if err := c.Send(data); err != nil {
				logrus.WithFields(logrus.Fields{
					"connection": c.ID,
				}).WithError(err).Warn("broadcast delivery failed, dropping connection")
				h.Unregister(c)
			}
		}(conn)
	}
	wg.Wait()

	return nil
}

// Status 注册表快照统计
type Status struct {
	Active int          `json:"active"`
	ByKind map[Kind]int `json:"by_kind"`
}

// GetStatus 当前在线观察者统计
func (h *Hub) GetStatus() Status {
	h.mu.Lock()
	defer h.mu.Unlock()

	status := Status{
		Active: len(h.connections),
		ByKind: make(map[Kind]int),
	}
	for _, conn := range h.connections {
		status.ByKind[conn.Kind]++
	}
	return status
}
