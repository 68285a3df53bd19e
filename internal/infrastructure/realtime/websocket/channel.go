package wsrealtime

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"github.com/zumo-network/zumokit-core/internal/core/ports"
	"github.com/zumo-network/zumokit-core/pkg/stats"
)

const (
	DefaultPingInterval         = 30 * time.Second
	DefaultMinReconnectInterval = time.Second
	DefaultMaxReconnectInterval = time.Minute

	writeWait           = 10 * time.Second
	randomizationFactor = 0.5
)

var (
	// ErrChannelClosed is returned when connecting a disconnected channel
	ErrChannelClosed = fmt.Errorf("realtime channel is closed")
	// ErrMissingURL ...
	ErrMissingURL = fmt.Errorf("missing realtime channel url")
	// ErrInvalidReconnectIntervals ...
	ErrInvalidReconnectIntervals = fmt.Errorf(
		"min reconnect interval must not exceed the max one",
	)
)

type Config struct {
	URL                  string
	PingInterval         time.Duration
	MinReconnectInterval time.Duration
	MaxReconnectInterval time.Duration
}

func (c Config) Validate() error {
	if len(c.URL) <= 0 {
		return ErrMissingURL
	}
	u, err := url.Parse(c.URL)
	if err != nil {
		return fmt.Errorf("invalid realtime channel url: %s", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("realtime channel url must have ws or wss scheme")
	}
	cfg := c.withDefaults()
	if cfg.MinReconnectInterval > cfg.MaxReconnectInterval {
		return ErrInvalidReconnectIntervals
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.PingInterval <= 0 {
		c.PingInterval = DefaultPingInterval
	}
	if c.MinReconnectInterval <= 0 {
		c.MinReconnectInterval = DefaultMinReconnectInterval
	}
	if c.MaxReconnectInterval <= 0 {
		c.MaxReconnectInterval = DefaultMaxReconnectInterval
	}
	return c
}

type channel struct {
	cfg     Config
	handler ports.MessageHandler
	dialer  *websocket.Dialer

	ctx    context.Context
	cancel context.CancelFunc
	wg     *sync.WaitGroup

	lock    *sync.Mutex
	conn    *websocket.Conn
	token   string
	running bool
	closed  bool
}

// NewChannel returns a realtime channel delivering every received frame to
// handler. Dropped connections are re-established with exponential backoff
// and jitter until Disconnect is called.
func NewChannel(cfg Config, handler ports.MessageHandler) ports.RealtimeChannel {
	ctx, cancel := context.WithCancel(context.Background())
	return &channel{
		cfg:     cfg.withDefaults(),
		handler: handler,
		dialer:  websocket.DefaultDialer,
		ctx:     ctx,
		cancel:  cancel,
		wg:      &sync.WaitGroup{},
		lock:    &sync.Mutex{},
	}
}

// Connect dials the realtime service and starts the read loop. A failed
// first dial is not reported, the connection is retried in background like
// any dropped one. Calling it again while connected only replaces the token
// used for later reconnections.
func (c *channel) Connect(ctx context.Context, token string) error {
	c.lock.Lock()
	if c.closed {
		c.lock.Unlock()
		return ErrChannelClosed
	}
	c.token = token
	if c.running {
		c.lock.Unlock()
		return nil
	}
	c.running = true
	c.lock.Unlock()

	dialCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(c.ctx, cancel)
	conn, err := c.dial(dialCtx, token)
	stop()
	cancel()

	if err != nil {
		if ctx.Err() != nil {
			c.lock.Lock()
			c.running = false
			c.lock.Unlock()
			return ctx.Err()
		}
		if c.ctx.Err() == nil {
			log.WithError(err).Warn("failed to connect realtime channel, retrying")
		}
	}

	c.lock.Lock()
	if c.closed {
		c.lock.Unlock()
		if conn != nil {
			closeConn(conn)
		}
		return ErrChannelClosed
	}
	c.conn = conn
	c.wg.Add(1)
	go c.run(conn)
	c.lock.Unlock()
	return nil
}

// Disconnect closes the channel for good. Any pending reconnection is
// cancelled and later calls to Connect fail with ErrChannelClosed.
func (c *channel) Disconnect() error {
	c.lock.Lock()
	if c.closed {
		c.lock.Unlock()
		return nil
	}
	c.closed = true
	c.cancel()
	conn := c.conn
	c.conn = nil
	c.lock.Unlock()

	if conn != nil {
		closeConn(conn)
	}
	c.wg.Wait()
	log.Debug("realtime channel closed")
	return nil
}

func (c *channel) run(conn *websocket.Conn) {
	defer c.wg.Done()

	bo := c.newBackOff()
	for {
		if conn != nil {
			bo.Reset()
			c.listen(conn)
			if !c.setConn(nil) {
				return
			}
		}

		wait := bo.NextBackOff()
		log.WithField("retry_in", wait).Debug("realtime channel reconnecting")
		select {
		case <-c.ctx.Done():
			return
		case <-time.After(wait):
		}

		stats.RealtimeReconnects.Inc()
		var err error
		conn, err = c.dial(c.ctx, c.currentToken())
		if err != nil {
			log.WithError(err).Debug("realtime channel reconnection failed")
			conn = nil
			continue
		}
		if !c.setConn(conn) {
			closeConn(conn)
			return
		}
		log.Debug("realtime channel reconnected")
	}
}

// listen reads frames until the connection drops
func (c *channel) listen(conn *websocket.Conn) {
	done := make(chan struct{})
	defer close(done)
	go c.ping(conn, done)

	pongWait := 2 * c.cfg.PingInterval
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if c.ctx.Err() == nil {
				log.WithError(err).Warn("realtime connection dropped")
			}
			conn.Close()
			return
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))
		c.handle(message)
	}
}

func (c *channel) ping(conn *websocket.Conn, done chan struct{}) {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			deadline := time.Now().Add(writeWait)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				log.WithError(err).Debug("failed to ping realtime service")
				return
			}
		}
	}
}

func (c *channel) handle(message []byte) {
	defer func() {
		if rec := recover(); rec != nil {
			log.WithField("panic", rec).Error("realtime message handler panicked")
		}
	}()

	c.handler(message)
}

func (c *channel) dial(ctx context.Context, token string) (*websocket.Conn, error) {
	header := http.Header{}
	if len(token) > 0 {
		header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}

	conn, _, err := c.dialer.DialContext(ctx, c.cfg.URL, header)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// setConn stores the live connection, it returns false if the channel has
// been closed meanwhile
func (c *channel) setConn(conn *websocket.Conn) bool {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.closed {
		return false
	}
	c.conn = conn
	return true
}

func (c *channel) currentToken() string {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.token
}

func (c *channel) newBackOff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.cfg.MinReconnectInterval
	bo.MaxInterval = c.cfg.MaxReconnectInterval
	bo.RandomizationFactor = randomizationFactor
	bo.MaxElapsedTime = 0
	bo.Reset()
	return bo
}

func closeConn(conn *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	conn.Close()
}
