package hub

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scamwall/internal/model"
)

// fakeTransport 测试用传输层，记录写入的消息
type fakeTransport struct {
	mu           sync.Mutex
	handshakeErr error
	writeErr     error
	messages     [][]byte
	pings        int
	closed       bool
}

func (t *fakeTransport) Handshake() error {
	return t.handshakeErr
}

func (t *fakeTransport) WriteMessage(data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.writeErr != nil {
		return t.writeErr
	}
	t.messages = append(t.messages, data)
	return nil
}

func (t *fakeTransport) Ping() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.writeErr != nil {
		return t.writeErr
	}
	t.pings++
	return nil
}

func (t *fakeTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}

func (t *fakeTransport) messageCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.messages)
}

func (t *fakeTransport) isClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

func testEnvelope() model.Envelope {
	return model.Envelope{
		Type: model.EnvelopeTextAnalysis,
		Result: model.AssessmentResult{
			RiskScore:       55,
			RiskLevel:       model.RiskLevelHigh,
			Findings:        []model.Finding{},
			Recommendations: []string{},
		},
	}
}

func TestRegister(t *testing.T) {
	h := NewHub()
	transport := &fakeTransport{}

	conn, err := h.Register(KindAlert, transport)
	assert.NoError(t, err)
	assert.NotEmpty(t, conn.ID)
	assert.Equal(t, StateActive, conn.State())
	assert.Equal(t, 1, h.GetStatus().Active)
}

func TestRegisterHandshakeFailure(t *testing.T) {
	h := NewHub()
	transport := &fakeTransport{handshakeErr: errors.New("upgrade rejected")}

	conn, err := h.Register(KindAlert, transport)
	assert.Error(t, err)
	assert.Nil(t, conn)
	// 握手失败的连接不留注册表痕迹
	assert.Equal(t, 0, h.GetStatus().Active)
	assert.True(t, transport.isClosed())
}

func TestRegisterNilTransport(t *testing.T) {
	h := NewHub()
	conn, err := h.Register(KindAlert, nil)
	assert.Error(t, err)
	assert.Nil(t, conn)
}

func TestUnregisterIdempotent(t *testing.T) {
	h := NewHub()
	transport := &fakeTransport{}
	conn, err := h.Register(KindAlert, transport)
	assert.NoError(t, err)

	h.Unregister(conn)
	assert.Equal(t, StateClosed, conn.State())
	assert.Equal(t, 0, h.GetStatus().Active)

	// 重复注销与注销nil都是no-op
	h.Unregister(conn)
	h.Unregister(nil)
	assert.Equal(t, StateClosed, conn.State())
	assert.Equal(t, 0, h.GetStatus().Active)
}

func TestBroadcastFanOut(t *testing.T) {
	h := NewHub()
	alert := &fakeTransport{}
	video := &fakeTransport{}
	_, err := h.Register(KindAlert, alert)
	assert.NoError(t, err)
	_, err = h.Register(KindVideo, video)
	assert.NoError(t, err)

	err = h.Broadcast(testEnvelope())
	assert.NoError(t, err)

	// 所有连接类型都收到同一条消息
	assert.Equal(t, 1, alert.messageCount())
	assert.Equal(t, 1, video.messageCount())
	assert.Equal(t, alert.messages[0], video.messages[0])
}

func TestBroadcastEmptyHub(t *testing.T) {
	h := NewHub()
	assert.NoError(t, h.Broadcast(testEnvelope()))
}

func TestBroadcastFailureIsolation(t *testing.T) {
	h := NewHub()
	healthy := &fakeTransport{}
	broken := &fakeTransport{writeErr: errors.New("broken pipe")}
	_, err := h.Register(KindAlert, healthy)
	assert.NoError(t, err)
	brokenConn, err := h.Register(KindAlert, broken)
	assert.NoError(t, err)

	err = h.Broadcast(testEnvelope())
	assert.NoError(t, err)

	// 故障连接被注销，健康连接正常收到消息
	assert.Equal(t, 1, healthy.messageCount())
	assert.Equal(t, StateClosed, brokenConn.State())
	assert.Equal(t, 1, h.GetStatus().Active)
	assert.True(t, broken.isClosed())

	// 后续广播不再投递给已注销连接
	err = h.Broadcast(testEnvelope())
	assert.NoError(t, err)
	assert.Equal(t, 2, healthy.messageCount())
	assert.Equal(t, 0, broken.messageCount())
}

func TestBroadcastConcurrentUnregister(t *testing.T) {
	h := NewHub()
	conns := make([]*Connection, 0, 8)
	for i := 0; i < 8; i++ {
		conn, err := h.Register(KindAlert, &fakeTransport{})
		assert.NoError(t, err)
		conns = append(conns, conn)
	}

	// 广播与注销并发进行不应panic或死锁
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = h.Broadcast(testEnvelope())
		}()
	}
	for _, conn := range conns[:4] {
		wg.Add(1)
		go func(c *Connection) {
			defer wg.Done()
			h.Unregister(c)
		}(conn)
	}
	wg.Wait()

	assert.Equal(t, 4, h.GetStatus().Active)
}

// exclusiveTransport 记录是否出现了并发写，底层连接只允许单个写者
type exclusiveTransport struct {
	inflight   int32
	violations int32
}

func (t *exclusiveTransport) Handshake() error { return nil }

func (t *exclusiveTransport) WriteMessage(data []byte) error { return t.write() }

func (t *exclusiveTransport) Ping() error { return t.write() }

func (t *exclusiveTransport) write() error {
	if atomic.AddInt32(&t.inflight, 1) != 1 {
		atomic.AddInt32(&t.violations, 1)
	}
	time.Sleep(100 * time.Microsecond)
	atomic.AddInt32(&t.inflight, -1)
	return nil
}

func (t *exclusiveTransport) Close() error { return nil }

func TestConnectionWritesSerialized(t *testing.T) {
	h := NewHub()
	transport := &exclusiveTransport{}
	conn, err := h.Register(KindVideo, transport)
	require.NoError(t, err)

	done := make(chan struct{})
	conn.StartPing(time.Millisecond, done, func() { h.Unregister(conn) })

	// 广播、单播回复和心跳并发进行，同一连接上不得出现并发写
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_ = h.Broadcast(testEnvelope())
			}
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_ = conn.Send([]byte(`{"type":"error"}`))
			}
		}()
	}
	wg.Wait()
	close(done)

	assert.Equal(t, int32(0), atomic.LoadInt32(&transport.violations))
}

func TestStartPingStopsOnFailure(t *testing.T) {
	h := NewHub()
	transport := &fakeTransport{}
	conn, err := h.Register(KindAlert, transport)
	require.NoError(t, err)

	stopped := make(chan struct{})
	transport.mu.Lock()
	transport.writeErr = errors.New("broken pipe")
	transport.mu.Unlock()

	done := make(chan struct{})
	defer close(done)
	conn.StartPing(time.Millisecond, done, func() {
		h.Unregister(conn)
		close(stopped)
	})

	select {
	case <-stopped:
	case <-time.After(3 * time.Second):
		t.Fatal("expected ping failure to trigger stop callback")
	}
	assert.Equal(t, 0, h.GetStatus().Active)
	assert.Equal(t, StateClosed, conn.State())
}

func TestGetStatusByKind(t *testing.T) {
	h := NewHub()
	_, err := h.Register(KindAlert, &fakeTransport{})
	assert.NoError(t, err)
	_, err = h.Register(KindAlert, &fakeTransport{})
	assert.NoError(t, err)
	_, err = h.Register(KindVideo, &fakeTransport{})
	assert.NoError(t, err)

	status := h.GetStatus()
	assert.Equal(t, 3, status.Active)
	assert.Equal(t, 2, status.ByKind[KindAlert])
	assert.Equal(t, 1, status.ByKind[KindVideo])
}
