package hub_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"kis-canvas/internal/domain"
	"kis-canvas/internal/hub"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePushServer 在 /ws 上接受连接，并把服务端连接交给测试
type fakePushServer struct {
	upgrader websocket.Upgrader
	conns    chan *websocket.Conn
	accepted atomic.Int32
}

func newFakePushServer(t *testing.T) (*fakePushServer, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	f := &fakePushServer{conns: make(chan *websocket.Conn, 8)}
	r := gin.New()
	r.GET("/ws", func(c *gin.Context) {
		conn, err := f.upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		f.accepted.Add(1)
		f.conns <- conn
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakePushServer) nextConn(t *testing.T) *websocket.Conn {
	t.Helper()
	select {
	case conn := <-f.conns:
		t.Cleanup(func() { conn.Close() })
		return conn
	case <-time.After(3 * time.Second):
		t.Fatal("push client did not connect")
		return nil
	}
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func startClient(t *testing.T, srv *httptest.Server, onPixel func(domain.PixelUpdate)) *hub.PushClient {
	t.Helper()
	pushURL, err := hub.PushURL(srv.URL)
	require.NoError(t, err)
	client := hub.NewPushClient(pushURL, nil, 50*time.Millisecond, nil, onPixel, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		client.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return client
}

func TestPushURL(t *testing.T) {
	u, err := hub.PushURL("http://localhost:8000/")
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:8000/ws", u)

	u, err = hub.PushURL("https://canvas.example.com")
	require.NoError(t, err)
	assert.Equal(t, "wss://canvas.example.com/ws", u)

	_, err = hub.PushURL("ftp://canvas.example.com")
	assert.Error(t, err)
}

func TestPushClient_DeliversOnlyValidPixelUpdates(t *testing.T) {
	fake, srv := newFakePushServer(t)
	received := make(chan domain.PixelUpdate, 4)
	startClient(t, srv, func(u domain.PixelUpdate) { received <- u })

	conn := fake.nextConn(t)
	messages := []string{
		`not json`,
		`{"type":"chat","data":{"x":1,"y":1,"color":"#000000"}}`,
		`{"type":"pixel_update","data":{"x":1,"color":"#000000"}}`,
		`{"type":"pixel_update","data":{"x":5,"y":5,"color":"#112233"}}`,
	}
	for _, m := range messages {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(m)))
	}

	select {
	case u := <-received:
		require.True(t, u.Valid())
		assert.Equal(t, domain.Cell{X: 5, Y: 5}, u.Cell())
		assert.Equal(t, "#112233", u.Color)
	case <-time.After(3 * time.Second):
		t.Fatal("pixel update not delivered")
	}
	assert.Len(t, received, 0, "无效消息不应被投递")
}

func TestPushClient_PublishSendsBareUpdate(t *testing.T) {
	fake, srv := newFakePushServer(t)
	client := startClient(t, srv, nil)
	conn := fake.nextConn(t)

	require.Eventually(t, client.Connected, 3*time.Second, 10*time.Millisecond)
	require.True(t, client.Publish(domain.NewPixelUpdate(5, 5, "#112233")))

	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)
	// 出站消息没有 type 信封
	assert.JSONEq(t, `{"x":5,"y":5,"color":"#112233"}`, string(payload))
}

func TestPushClient_ReconnectsAfterClose(t *testing.T) {
	fake, srv := newFakePushServer(t)
	client := startClient(t, srv, nil)

	first := fake.nextConn(t)
	require.Eventually(t, client.Connected, 3*time.Second, 10*time.Millisecond)
	first.Close()

	second := fake.nextConn(t)
	assert.NotNil(t, second)
	assert.Equal(t, int32(2), fake.accepted.Load())
	assert.Eventually(t, client.Connected, 3*time.Second, 10*time.Millisecond)
}

func TestPushClient_RetriesWhileServerUnavailable(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	client := startClient(t, srv, nil)

	assert.Eventually(t, func() bool { return attempts.Load() >= 3 }, 3*time.Second, 10*time.Millisecond)
	assert.False(t, client.Connected())
	assert.False(t, client.Publish(domain.NewPixelUpdate(1, 1, "#FFFFFF")), "未连接时应丢弃")
}

func TestPushClient_StopsOnCancel(t *testing.T) {
	_, srv := newFakePushServer(t)
	pushURL, err := hub.PushURL(srv.URL)
	require.NoError(t, err)
	client := hub.NewPushClient(pushURL, nil, time.Hour, nil, nil, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		client.Run(ctx)
		close(done)
	}()
	require.Eventually(t, client.Connected, 3*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.False(t, client.Connected())
	assert.True(t, strings.HasPrefix(pushURL, "ws://"))
}
