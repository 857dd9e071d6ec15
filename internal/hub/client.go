package hub

import (
	"encoding/json"
	"sync"
	"time"

	"kis-canvas/internal/domain"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// 包级别的 WebSocket 常量
const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	sendBufferSize = 64
)

// connection 代表一次已建立的推送通道连接。
// 每次重连都会创建新的 connection。
type connection struct {
	conn    *websocket.Conn
	send    chan []byte   // 出站消息缓冲
	done    chan struct{} // 连接结束时关闭
	once    sync.Once
	onPixel func(domain.PixelUpdate)
	log     *logrus.Entry
}

func newConnection(conn *websocket.Conn, onPixel func(domain.PixelUpdate), log *logrus.Entry) *connection {
	return &connection{
		conn:    conn,
		send:    make(chan []byte, sendBufferSize),
		done:    make(chan struct{}),
		onPixel: onPixel,
		log:     log,
	}
}

// serve 启动写泵并在当前 goroutine 运行读泵，连接断开后返回。
func (c *connection) serve() {
	go c.writePump()
	c.readPump()
}

// close 关闭连接，可重复调用。
func (c *connection) close() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// enqueue 非阻塞地放入出站消息，连接已结束或缓冲满时返回 false。
func (c *connection) enqueue(message []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- message:
		return true
	case <-c.done:
		return false
	default:
		c.log.Warn("Push send buffer full, dropping outbound message")
		return false
	}
}

// readPump 从 WebSocket 读取推送消息并交给 onPixel。
func (c *connection) readPump() {
	defer c.close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.WithError(err).Warn("Push channel read error (unexpected close)")
			} else {
				c.log.WithError(err).Debug("Push channel closed")
			}
			return
		}
		if messageType != websocket.TextMessage {
			c.log.Debugf("Received non-text message type: %d", messageType)
			continue
		}
		c.handleMessage(message)
	}
}

// handleMessage 解析入站信封，只处理合法的 pixel_update。
func (c *connection) handleMessage(message []byte) {
	var msg domain.PushMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		c.log.WithError(err).Debug("Ignoring malformed push message")
		return
	}
	if msg.Type != domain.MessageTypePixelUpdate {
		c.log.WithField("type", msg.Type).Debug("Ignoring push message of unknown type")
		return
	}
	if !msg.Data.Valid() {
		c.log.Debug("Ignoring pixel_update without coordinates or color")
		return
	}
	if c.onPixel != nil {
		c.onPixel(msg.Data)
	}
}

// writePump 把出站消息写入连接，并定期发送 Ping。
func (c *connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.done:
			return
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.log.WithError(err).Warn("Failed to write message to push channel")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.log.WithError(err).Warn("Failed to send ping message")
				return
			}
		}
	}
}
