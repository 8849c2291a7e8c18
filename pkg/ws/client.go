package ws

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 128
)

var ErrClientClosed = errors.New("client is closed")

type MessageInfo struct {
	msg             []byte
	needCompression bool
}

type Client struct {
	ID     string
	UserID string

	conn        *websocket.Conn
	compression bool
	send        chan MessageInfo
	done        chan struct{}
	closeOnce   sync.Once
}

// NewClient starts the reader and writer of the connection. The returned
// client is closed when the peer goes away or Close is called.
func NewClient(conn *websocket.Conn, userID string, compression bool) *Client {
	c := &Client{
		ID:          uuid.NewString(),
		UserID:      userID,
		conn:        conn,
		compression: compression,
		send:        make(chan MessageInfo, sendBuffer),
		done:        make(chan struct{}),
	}

	go c.runReader()
	go c.runWriter()
	return c
}

// Done is closed after the client stops.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// runReader only drains control frames, clients never send data.
func (c *Client) runReader() {
	defer c.Close()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) runWriter() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-c.done:
			return

		case info := <-c.send:
			msg := info.msg
			if info.needCompression {
				var err error
				msg, err = Compress(msg)
				if err != nil {
					continue
				}
			}

			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Write queues the message. A client whose buffer is full is too slow to
// keep and gets closed.
func (c *Client) Write(msg Message) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	select {
	case <-c.done:
		return ErrClientClosed
	default:
	}

	select {
	case c.send <- MessageInfo{msg: b, needCompression: c.compression}:
		return nil
	case <-c.done:
		return ErrClientClosed
	default:
		c.Close()
		return ErrClientClosed
	}
}
