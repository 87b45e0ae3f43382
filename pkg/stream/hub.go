package stream

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const (
	writeTimeout = time.Second
	pingInterval = 10 * time.Second
	clientBuffer = 8
)

type client struct {
	conn *websocket.Conn
	send chan Frame
}

// Hub fans frames out to every connected websocket client. A client that
// cannot keep up loses frames rather than slowing the simulation down.
type Hub struct {
	Upgrader *websocket.Upgrader

	register   chan *client
	unregister chan *client
	frames     chan Frame
	clients    map[*client]struct{}
	latest     *Frame
	done       chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		Upgrader:   &websocket.Upgrader{},
		register:   make(chan *client),
		unregister: make(chan *client),
		frames:     make(chan Frame),
		clients:    make(map[*client]struct{}),
		done:       make(chan struct{}),
	}
}

// Loop owns the client set and must run exactly once. It returns when ctx
// is done, closing every client's queue.
func (h *Hub) Loop(ctx context.Context) {
	log.Info("Hub.Loop starting")
	defer func() {
		for c := range h.clients {
			close(c.send)
		}
		h.clients = nil
		close(h.done)
		log.Info("Hub.Loop stopped")
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			h.clients[c] = struct{}{}
			log.Infof("Hub.Loop client %s connected, %d total", c.conn.RemoteAddr(), len(h.clients))
			if h.latest != nil {
				c.send <- *h.latest
			}
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				log.Infof("Hub.Loop client %s left, %d total", c.conn.RemoteAddr(), len(h.clients))
			}
		case f := <-h.frames:
			h.latest = &f
			for c := range h.clients {
				select {
				case c.send <- f:
				default:
					log.Warnf("Dropping frame %d for %s, queue full", f.Tick, c.conn.RemoteAddr())
				}
			}
		}
	}
}

// Publish hands a frame to the loop. It returns once the loop has taken the
// frame, or with ctx.Err().
func (h *Hub) Publish(ctx context.Context, f Frame) error {
	select {
	case h.frames <- f:
		return nil
	case <-h.done:
		return context.Canceled
	case <-ctx.Done():
		return ctx.Err()
	}
}

// HandleStream upgrades the request and streams frames until the client
// goes away.
func (h *Hub) HandleStream() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := h.Upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.WithError(err).Warn("HandleStream websocket upgrade failed")
			return
		}
		defer conn.Close()

		c := &client{conn: conn, send: make(chan Frame, clientBuffer)}
		select {
		case h.register <- c:
		case <-h.done:
			return
		case <-r.Context().Done():
			return
		}
		go c.writeLoop()
		c.readLoop()

		select {
		case h.unregister <- c:
		case <-h.done:
		}
	}
}

// readLoop discards client input and returns when the connection fails.
func (c *client) readLoop() {
	for {
		if _, _, err := c.conn.NextReader(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithError(err).Warn("client read failed")
			}
			return
		}
	}
}

func (c *client) writeLoop() {
	ping := time.NewTicker(pingInterval)
	defer ping.Stop()
	for {
		select {
		case f, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(writeTimeout))
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteJSON(f); err != nil {
				if ne, ok := err.(net.Error); !ok || !ne.Timeout() {
					log.WithError(err).Warn("client write failed")
				}
				c.conn.Close()
				return
			}
		case <-ping.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				c.conn.Close()
				return
			}
		}
	}
}
