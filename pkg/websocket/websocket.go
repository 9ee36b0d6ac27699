package websocketPkg

import (
	"EmotionAnalyzer/internal/api/emotion"
	"EmotionAnalyzer/internal/entity"
	"EmotionAnalyzer/pkg/deepface"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

type IWebsocket interface {
	deepface.Recognizer
	IsConnected() bool
	Reconnect() error
	CloseConnections()
}

// webSocketClient keeps one connection to the analyzer. Requests are
// serialized on it: one JSON message out, one JSON reply back. mu guards
// conn; inFlight admits one exchange at a time.
type webSocketClient struct {
	url           string
	conn          *websocket.Conn
	mu            sync.Mutex
	inFlight      chan struct{}
	pingInterval  time.Duration
	readTimeout   time.Duration
	writeTimeout  time.Duration
	sharedUploads bool
	log           *logrus.Logger
}

func NewAIWebSocketClient(url string, readTimeout time.Duration, sharedUploads bool, log *logrus.Logger) IWebsocket {
	if readTimeout <= 0 {
		readTimeout = 30 * time.Second
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	client := &webSocketClient{
		url:           url,
		inFlight:      make(chan struct{}, 1),
		pingInterval:  30 * time.Second,
		readTimeout:   readTimeout,
		writeTimeout:  5 * time.Second,
		sharedUploads: sharedUploads,
		log:           log,
	}

	go client.connectInBackground()

	return client
}

func (c *webSocketClient) connectInBackground() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return
	}

	if err := c.dialLocked(); err != nil {
		c.log.Warnf("Initial connection to emotion analyzer failed: %v. Will retry on demand.", err)
	} else {
		c.log.Info("Successfully connected to emotion analyzer")
	}
}

func (c *webSocketClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.conn != nil
}

func (c *webSocketClient) Reconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.dialLocked()
}

func (c *webSocketClient) dialLocked() error {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}

	if c.url == "" {
		return fmt.Errorf("URL for emotion analyzer not configured")
	}

	c.log.Debugf("Connecting to emotion analyzer at %s", c.url)

	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = 10 * time.Second

	conn, _, err := dialer.Dial(c.url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", c.url, err)
	}

	conn.SetPingHandler(func(appData string) error {
		err := conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(c.writeTimeout))
		if err != nil {
			c.log.Warnf("Error sending pong: %v", err)
		}
		return nil
	})

	c.conn = conn
	go c.keepAlive(conn)

	return nil
}

func (c *webSocketClient) CloseConnections() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

// keepAlive pings conn until it is replaced, closed, or a ping fails.
func (c *webSocketClient) keepAlive(conn *websocket.Conn) {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		if c.conn != conn {
			c.mu.Unlock()
			return
		}

		err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(c.writeTimeout))
		if err != nil {
			c.log.Warnf("Ping failed for emotion analyzer, marking connection as dead: %v", err)
			c.conn = nil
			conn.Close()
			c.mu.Unlock()
			return
		}

		c.mu.Unlock()
	}
}

func (c *webSocketClient) Ping(ctx context.Context) error {
	if c.IsConnected() {
		return nil
	}
	if err := c.Reconnect(); err != nil {
		return fmt.Errorf("%w: %w", emotion.ErrRecognizerUnavailable, err)
	}
	return ctx.Err()
}

func (c *webSocketClient) Analyze(ctx context.Context, req *entity.AnalyzeRequest) (any, error) {
	payload, err := deepface.NewPayload(req, c.sharedUploads)
	if err != nil {
		return nil, err
	}

	body, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	message, err := c.exchange(ctx, body)
	if err != nil {
		return nil, err
	}

	c.log.WithFields(logrus.Fields{
		"detector_backend": req.DetectorBackend,
		"response_size":    len(message),
	}).Debug("Received response from emotion analyzer")

	return deepface.DecodeResponse(message)
}

func (c *webSocketClient) exchange(ctx context.Context, body []byte) ([]byte, error) {
	select {
	case c.inFlight <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-c.inFlight }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	conn, err := c.connection()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", emotion.ErrRecognizerUnavailable, err)
	}

	conn.SetWriteDeadline(c.deadline(ctx, c.writeTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, body); err != nil {
		c.drop(conn)
		return nil, fmt.Errorf("%w: error sending analyze request: %w", emotion.ErrRecognizerUnavailable, err)
	}

	conn.SetReadDeadline(c.deadline(ctx, c.readTimeout))
	_, message, err := conn.ReadMessage()
	if err != nil {
		c.drop(conn)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: error reading analyze response: %w", emotion.ErrRecognizerUnavailable, err)
	}

	conn.SetReadDeadline(time.Time{})
	conn.SetWriteDeadline(time.Time{})

	return message, nil
}

// connection returns the live connection, dialing when there is none.
func (c *webSocketClient) connection() (*websocket.Conn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		if err := c.dialLocked(); err != nil {
			return nil, err
		}
	}
	return c.conn, nil
}

func (c *webSocketClient) drop(conn *websocket.Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.dropLocked(conn)
}

func (c *webSocketClient) dropLocked(conn *websocket.Conn) {
	if c.conn == conn {
		c.conn = nil
	}
	conn.Close()
}

// deadline is the earlier of now+timeout and the context deadline.
func (c *webSocketClient) deadline(ctx context.Context, timeout time.Duration) time.Time {
	d := time.Now().Add(timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(d) {
		return ctxDeadline
	}
	return d
}
