package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"kis-canvas/internal/domain"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// DefaultReconnectDelay 是连接断开后重连前的固定等待时间。
const DefaultReconnectDelay = 3 * time.Second

const pushPath = "/ws"

// PushURL 根据画布服务地址得到推送通道地址：http→ws，https→wss。
func PushURL(baseURL string) (string, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return "", fmt.Errorf("hub: parse base url %q: %w", baseURL, err)
	}
	switch u.Scheme {
	case "https", "wss":
		u.Scheme = "wss"
	case "http", "ws":
		u.Scheme = "ws"
	default:
		return "", fmt.Errorf("hub: unsupported scheme %q", u.Scheme)
	}
	return u.JoinPath(pushPath).String(), nil
}

// PushClient 维护到推送通道的持久连接，断开后以固定延迟无限重连。
type PushClient struct {
	url            string
	dialer         *websocket.Dialer
	header         http.Header
	reconnectDelay time.Duration
	onPixel        func(domain.PixelUpdate)

	// 当前连接，未连接时为 nil
	current   *connection
	currentMu sync.RWMutex

	log *logrus.Entry
}

// NewPushClient 创建 PushClient。jar 可与 HTTP 客户端共享，以携带相同的会话。
// onPixel 在读泵 goroutine 中调用，实现方需要把更新转交给自己的事件循环。
func NewPushClient(pushURL string, jar http.CookieJar, reconnectDelay time.Duration, header http.Header, onPixel func(domain.PixelUpdate), logger *logrus.Logger) *PushClient {
	if reconnectDelay <= 0 {
		reconnectDelay = DefaultReconnectDelay
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	dialer := &websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: 10 * time.Second,
		Jar:              jar,
	}
	return &PushClient{
		url:            pushURL,
		dialer:         dialer,
		header:         header,
		reconnectDelay: reconnectDelay,
		onPixel:        onPixel,
		log:            logger.WithFields(logrus.Fields{"component": "push", "url": pushURL}),
	}
}

// Run 启动连接监督循环：连接、服务直到断开、等待固定延迟、重复。
// 阻塞直到 ctx 被取消。
func (p *PushClient) Run(ctx context.Context) {
	p.log.Info("Push client is running...")
	for {
		p.connectAndServe(ctx)

		if ctx.Err() != nil {
			p.log.Info("Push client is shutting down...")
			return
		}
		p.log.Debugf("Reconnecting in %s", p.reconnectDelay)
		select {
		case <-ctx.Done():
			p.log.Info("Push client is shutting down...")
			return
		case <-time.After(p.reconnectDelay):
		}
	}
}

func (p *PushClient) connectAndServe(ctx context.Context) {
	ws, resp, err := p.dialer.DialContext(ctx, p.url, p.header)
	if err != nil {
		logCtx := p.log.WithError(err)
		if resp != nil {
			logCtx = logCtx.WithField("status_code", resp.StatusCode)
		}
		logCtx.Warn("Failed to connect to push channel")
		return
	}
	p.log.Info("Push channel connected")

	c := newConnection(ws, p.onPixel, p.log)
	p.setCurrent(c)
	defer p.setCurrent(nil)

	// ctx 取消时主动关闭连接，让读泵退出
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			c.close()
		case <-c.done:
		case <-stop:
		}
	}()

	c.serve()
	p.log.Info("Push channel connection closed")
}

func (p *PushClient) setCurrent(c *connection) {
	p.currentMu.Lock()
	p.current = c
	p.currentMu.Unlock()
}

// Connected 表示当前是否有可用连接。
func (p *PushClient) Connected() bool {
	p.currentMu.RLock()
	defer p.currentMu.RUnlock()
	return p.current != nil
}

// Publish 发送本地放置的像素 {x, y, color}，不带 type 信封。
// 未连接时直接丢弃并返回 false。
func (p *PushClient) Publish(update domain.PixelUpdate) bool {
	p.currentMu.RLock()
	c := p.current
	p.currentMu.RUnlock()
	if c == nil {
		p.log.Debug("Push channel not connected, outbound update dropped")
		return false
	}
	payload, err := json.Marshal(update)
	if err != nil {
		p.log.WithError(err).Error("Failed to marshal outbound pixel update")
		return false
	}
	return c.enqueue(payload)
}
