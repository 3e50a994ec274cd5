// Package feed implementa ports.Transport sobre un websocket contra el feed
// de ligas virtuales: un socket por competición, con correlación por id de
// petición y reconexión con backoff.
package feed

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/alejandrodnm/vbet/internal/domain"
	"github.com/alejandrodnm/vbet/internal/ports"
)

const (
	dialTimeout      = 10 * time.Second
	reconnectBackoff = 3 * time.Second
	maxBackoff       = 30 * time.Second
)

// Config controla el cliente del feed.
type Config struct {
	URL string
	// RequestsPerSecond acota el tráfico saliente. También acota el retry
	// ilimitado de fixtures: el límite de la tormenta es configurable aquí.
	RequestsPerSecond float64
	Burst             int
}

// Client es la conexión de una competición con el feed.
type Client struct {
	cfg     Config
	game    domain.GameID
	limiter *rate.Limiter
	log     *slog.Logger

	mu   sync.Mutex // serializa escrituras y la reconexión
	conn *websocket.Conn

	nextID atomic.Int64
	closed atomic.Bool

	onResponse  func(ports.Response)
	onReconnect func()
}

// requestFrame es el mensaje saliente por el socket.
type requestFrame struct {
	XS       int64                 `json:"xs"`
	Resource string                `json:"resource"`
	Payload  domain.RequestPayload `json:"payload"`
}

// responseFrame es el mensaje entrante.
type responseFrame struct {
	XS       int64        `json:"xs"`
	Resource string       `json:"resource"`
	Status   string       `json:"status"`
	Body     domain.Batch `json:"body"`
}

// Dial abre la conexión para un juego.
func Dial(ctx context.Context, cfg Config, game domain.GameID) (*Client, error) {
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 5
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 10
	}

	c := &Client{
		cfg:     cfg,
		game:    game,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		log:     slog.With("game", game, "component", "feed"),
	}
	if err := c.connect(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// OnResponse fija el receptor de respuestas. Debe llamarse antes de Start.
func (c *Client) OnResponse(fn func(ports.Response)) { c.onResponse = fn }

// OnReconnect fija la señal de reconexión. El engine la usa para entrar en
// modo Restoring.
func (c *Client) OnReconnect(fn func()) { c.onReconnect = fn }

// Start lanza el loop de lectura; termina cuando el contexto se cancela o el
// cliente se cierra.
func (c *Client) Start(ctx context.Context) {
	go c.readLoop(ctx)
}

// Send implementa ports.Transport. Devuelve el id de correlación de forma
// síncrona; la respuesta llega después por OnResponse.
func (c *Client) Send(game domain.GameID, resource domain.Resource, payload domain.RequestPayload) (domain.RequestID, error) {
	if c.closed.Load() {
		return 0, fmt.Errorf("feed.Send: client closed")
	}

	r := c.limiter.Reserve()
	if !r.OK() {
		return 0, fmt.Errorf("feed.Send: rate limiter rejected request")
	}
	time.Sleep(r.Delay())

	xs := c.nextID.Add(1)
	frame := requestFrame{XS: xs, Resource: resource.String(), Payload: payload}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return 0, fmt.Errorf("feed.Send: not connected")
	}
	if err := c.conn.WriteJSON(frame); err != nil {
		return 0, fmt.Errorf("feed.Send: write %s/%d: %w", resource, xs, err)
	}
	return domain.RequestID(xs), nil
}

// Close implementa ports.Transport.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// connect abre el websocket.
func (c *Client) connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: dialTimeout}
	conn, _, err := dialer.DialContext(ctx, c.cfg.URL, nil)
	if err != nil {
		return fmt.Errorf("feed.Dial: %q: %w", c.cfg.URL, err)
	}
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	return nil
}

// readLoop decodifica frames entrantes y los entrega al receptor. Ante un
// error de lectura reconecta con backoff y señala la reconexión.
func (c *Client) readLoop(ctx context.Context) {
	backoff := reconnectBackoff
	for {
		if ctx.Err() != nil || c.closed.Load() {
			return
		}

		c.mu.Lock()
		conn := c.conn
		c.mu.Unlock()
		if conn == nil {
			return
		}

		var frame responseFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if ctx.Err() != nil || c.closed.Load() {
				return
			}
			c.log.Warn("read failed, reconnecting", "err", err)
			for {
				select {
				case <-ctx.Done():
					return
				case <-time.After(backoff):
				}
				if err := c.connect(ctx); err == nil {
					break
				}
				if backoff *= 2; backoff > maxBackoff {
					backoff = maxBackoff
				}
				c.log.Warn("reconnect failed, backing off", "backoff", backoff)
			}
			backoff = reconnectBackoff
			c.log.Info("feed reconnected")
			if c.onReconnect != nil {
				c.onReconnect()
			}
			continue
		}

		resource, ok := resourceFromString(frame.Resource)
		if !ok {
			c.log.Warn("frame for unknown resource", "resource", frame.Resource)
			continue
		}
		if c.onResponse != nil {
			c.onResponse(ports.Response{
				RequestID: domain.RequestID(frame.XS),
				Resource:  resource,
				Valid:     frame.Status == "ok",
				Body:      frame.Body,
			})
		}
	}
}

func resourceFromString(s string) (domain.Resource, bool) {
	switch s {
	case "fixtures":
		return domain.ResourceFixtures, true
	case "results":
		return domain.ResourceResults, true
	case "history":
		return domain.ResourceHistory, true
	case "stats":
		return domain.ResourceStats, true
	default:
		return 0, false
	}
}
