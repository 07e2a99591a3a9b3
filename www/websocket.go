package www

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/angas/aircast-go/forecast"
	"github.com/angas/aircast-go/selection"
	"github.com/angas/aircast-go/view"
	"github.com/angas/aircast-go/www/chartjs"
	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

const (
	MessageModel  = "model"
	MessageError  = "error"
	MessageReload = "reload"
)

var upgrader = ws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Command is a selection change sent by the browser, for example
// {"type":"city","value":"mumbai"} or {"type":"pollutant","value":"O3"}.
type Command struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Message is pushed to the browser. Error messages carry the last valid
// model so the page can restore its controls. Charts are always built from
// Model, the page never fetches them separately.
type Message struct {
	Type   string          `json:"type"`
	Error  string          `json:"error,omitempty"`
	Model  *view.Model     `json:"model,omitempty"`
	Charts []chartjs.Chart `json:"charts,omitempty"`
}

func modelMessage(m view.Model) Message {
	return Message{Type: MessageModel, Model: &m, Charts: Charts(m)}
}

var errRateLimited = errors.New("too many selection changes, slow down")

type Client struct {
	logger  *slog.Logger
	hub     *Hub
	conn    *ws.Conn
	send    chan []byte
	id      string
	view    *view.View
	limiter *rate.Limiter
}

// NewClient upgrades the connection for a view that starts from the city
// and pollutant query parameters. A rejected selection is returned before
// the upgrade.
func NewClient(hub *Hub, provider forecast.Provider, limiter *rate.Limiter, w http.ResponseWriter, r *http.Request) (*Client, error) {
	id := uuid.NewString()
	logger := hub.logger.With(slog.String("client", id))

	v, err := view.New(logger, provider)
	if err != nil {
		return nil, err
	}
	q := r.URL.Query()
	if err := v.Apply(q.Get("city"), q.Get("pollutant")); err != nil {
		return nil, err
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}

	c := &Client{
		logger:  logger,
		hub:     hub,
		conn:    conn,
		send:    make(chan []byte, 256),
		id:      id,
		view:    v,
		limiter: limiter,
	}
	v.OnChange(func(m view.Model) {
		c.push(modelMessage(m))
	})
	return c, nil
}

// ReadPump applies commands until the connection closes. It sends the
// initial model first.
func (c *Client) ReadPump() {
	defer func() {
		select {
		case c.hub.Unregister <- c:
		case <-c.hub.done:
			close(c.send)
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Warn("web socket set read deadline failed", slog.Any("error", err))
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	m, err := c.view.Model()
	if err != nil {
		c.logger.Error("building initial model failed", slog.Any("error", err))
		return
	}
	c.push(modelMessage(m))

	for {
		var cmd Command
		if err := c.conn.ReadJSON(&cmd); err != nil {
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				c.reject(fmt.Errorf("malformed command: %w", err))
				continue
			}
			if ws.IsUnexpectedCloseError(err, ws.CloseGoingAway, ws.CloseNormalClosure) {
				c.logger.Warn("web socket read failed", slog.Any("error", err))
			}
			return
		}

		if !c.limiter.Allow() {
			c.reject(errRateLimited)
			continue
		}

		if err := c.apply(cmd); err != nil {
			c.reject(err)
		}
	}
}

func (c *Client) apply(cmd Command) error {
	switch cmd.Type {
	case "city":
		return c.view.SetCity(cmd.Value)
	case "pollutant":
		p, err := selection.ParsePollutant(cmd.Value)
		if err != nil {
			return err
		}
		return c.view.SetPollutant(p)
	default:
		return fmt.Errorf("unknown command type %q", cmd.Type)
	}
}

func (c *Client) reject(cause error) {
	msg := Message{Type: MessageError, Error: cause.Error()}
	if m, err := c.view.Model(); err == nil {
		msg.Model = &m
		msg.Charts = Charts(m)
	}
	c.push(msg)
}

func (c *Client) push(msg Message) {
	b, err := json.Marshal(msg)
	if err != nil {
		c.logger.Error("encoding web socket message failed", slog.Any("error", err))
		return
	}
	select {
	case c.send <- b:
	default:
		c.logger.Warn("client send buffer full, dropping message")
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Warn("web socket set write deadline failed", slog.Any("error", err))
				return
			}

			if !ok {
				if err := c.conn.WriteMessage(ws.CloseMessage, []byte{}); err != nil {
					c.logger.Debug("web socket close message failed", slog.Any("error", err))
				}
				return
			}

			w, err := c.conn.NextWriter(ws.TextMessage)
			if err != nil {
				c.logger.Warn("web socket next writer failed", slog.Any("error", err))
				return
			}

			if _, err = w.Write(message); err != nil {
				c.logger.Warn("web socket write failed", slog.Any("error", err))
				return
			}

			if err = w.Close(); err != nil {
				c.logger.Warn("web socket close failed", slog.Any("error", err))
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Warn("web socket set write deadline failed", slog.Any("error", err))
				return
			}
			if err := c.conn.WriteMessage(ws.PingMessage, nil); err != nil {
				c.logger.Warn("web socket ping message failed", slog.Any("error", err))
				return
			}
		}
	}
}

// Hub keeps track of connected clients and broadcasts messages to all of them.
// Each client still owns its own selection, only page-wide notices are
// broadcast.
type Hub struct {
	Broadcast  chan []byte
	Register   chan *Client
	Unregister chan *Client
	clients    map[*Client]bool
	mutex      sync.Mutex
	logger     *slog.Logger
	done       chan struct{}
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		Broadcast:  make(chan []byte),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		logger:     logger,
		done:       make(chan struct{}),
	}
}

// Join registers c unless the hub has stopped.
func (h *Hub) Join(c *Client) bool {
	select {
	case h.Register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Publish broadcasts msg unless the hub has stopped.
func (h *Hub) Publish(msg Message) {
	b, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("encoding broadcast message failed", slog.Any("error", err))
		return
	}
	select {
	case h.Broadcast <- b:
	case <-h.done:
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			// Closing the connections ends each ReadPump, which then
			// closes its own send channel.
			h.mutex.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				client.conn.Close()
			}
			h.mutex.Unlock()
			close(h.done)
			return

		case client := <-h.Register:
			h.mutex.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mutex.Unlock()

			h.logger.Debug("registered client", "client", client.id, "clients", count)

		case client := <-h.Unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			count := len(h.clients)
			h.mutex.Unlock()

			h.logger.Debug("unregistered client", "client", client.id, "clients", count)

		case message := <-h.Broadcast:
			h.mutex.Lock()
			activeClients := make([]*Client, 0, len(h.clients))
			for client := range h.clients {
				activeClients = append(activeClients, client)
			}
			h.mutex.Unlock()

			for _, client := range activeClients {
				select {
				case client.send <- message:
				default:
					h.logger.Warn("client send buffer full, dropping message", "client", client.id)
				}
			}
		}
	}
}
