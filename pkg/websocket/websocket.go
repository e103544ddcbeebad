package websocketPkg

import (
	"ProjectLiveness/internal/api/liveness"
	"ProjectLiveness/internal/entity"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// IWebsocket is a client for the liveness stream. It is what the simulator
// and the end-to-end tests use to play the part of the mobile app.
type IWebsocket interface {
	SendFrame(obs entity.FrameObservation) error
	SendScreen(width, height float64) error
	Reset() error
	ReadStatus() (*entity.Status, error)
	Close() error
}

// RemoteError is an error frame sent by the server.
type RemoteError struct {
	Message string
	Code    string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("liveness server: %s (%s)", e.Message, e.Code)
}

type SessionQuery struct {
	ScreenWidth  float64
	ScreenHeight float64
	Policy       entity.PolicyKind
	Mirrored     *bool
	Lang         string
}

// SessionURL appends the session query parameters to a ws:// or wss:// endpoint.
func SessionURL(endpoint string, q SessionQuery) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}

	values := u.Query()
	values.Set("screen_width", strconv.FormatFloat(q.ScreenWidth, 'f', -1, 64))
	values.Set("screen_height", strconv.FormatFloat(q.ScreenHeight, 'f', -1, 64))
	if q.Policy != "" {
		values.Set("policy", string(q.Policy))
	}
	if q.Mirrored != nil {
		values.Set("mirrored", strconv.FormatBool(*q.Mirrored))
	}
	if q.Lang != "" {
		values.Set("lang", q.Lang)
	}
	u.RawQuery = values.Encode()

	return u.String(), nil
}

type webSocketClient struct {
	conn         *websocket.Conn
	mu           sync.Mutex
	log          *logrus.Logger
	pingInterval time.Duration
	readTimeout  time.Duration
	writeTimeout time.Duration
	done         chan struct{}
	closeOnce    sync.Once
}

type serverMessage struct {
	entity.Status
	Error string `json:"error"`
	Code  string `json:"code"`
}

func Dial(ctx context.Context, log *logrus.Logger, endpoint string, header http.Header) (IWebsocket, error) {
	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = 10 * time.Second

	conn, resp, err := dialer.DialContext(ctx, endpoint, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("failed to connect to %s: %w (status %d)", endpoint, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("failed to connect to %s: %w", endpoint, err)
	}

	c := &webSocketClient{
		conn:         conn,
		log:          log,
		pingInterval: 30 * time.Second,
		readTimeout:  10 * time.Second,
		writeTimeout: 5 * time.Second,
		done:         make(chan struct{}),
	}

	conn.SetPingHandler(func(appData string) error {
		c.mu.Lock()
		defer c.mu.Unlock()
		if err := conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(c.writeTimeout)); err != nil {
			c.log.Debugf("Error sending pong: %v", err)
		}
		return nil
	})

	go c.keepAlive()

	return c, nil
}

func (c *webSocketClient) keepAlive() {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
		}

		c.mu.Lock()
		err := c.conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(c.writeTimeout))
		c.mu.Unlock()
		if err != nil {
			c.log.Warnf("Ping failed, stopping keepalive: %v", err)
			return
		}
	}
}

func (c *webSocketClient) send(msg liveness.ClientMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
		return err
	}
	if err := c.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("error sending %s message: %w", msg.Type, err)
	}
	return nil
}

func (c *webSocketClient) SendFrame(obs entity.FrameObservation) error {
	return c.send(liveness.ClientMessage{
		Type:        liveness.MessageFrame,
		TimestampMs: obs.TimestampMs,
		Frame:       obs.Frame,
		Faces:       obs.Faces,
	})
}

func (c *webSocketClient) SendScreen(width, height float64) error {
	return c.send(liveness.ClientMessage{
		Type:   liveness.MessageScreen,
		Screen: &liveness.ScreenSize{Width: width, Height: height},
	})
}

func (c *webSocketClient) Reset() error {
	return c.send(liveness.ClientMessage{Type: liveness.MessageReset})
}

// ReadStatus blocks for the next status. Error frames are returned as
// *RemoteError. Use IsNormalClose to detect the server ending the stream.
func (c *webSocketClient) ReadStatus() (*entity.Status, error) {
	if err := c.conn.SetReadDeadline(time.Now().Add(c.readTimeout)); err != nil {
		return nil, err
	}

	_, message, err := c.conn.ReadMessage()
	if err != nil {
		return nil, err
	}

	var msg serverMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		return nil, fmt.Errorf("error unmarshaling status: %w", err)
	}
	if msg.Error != "" {
		return nil, &RemoteError{Message: msg.Error, Code: msg.Code}
	}

	return &msg.Status, nil
}

func (c *webSocketClient) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)

		c.mu.Lock()
		writeErr := c.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(c.writeTimeout),
		)
		c.mu.Unlock()
		if writeErr != nil && !errors.Is(writeErr, websocket.ErrCloseSent) {
			c.log.Debugf("Error sending close frame: %v", writeErr)
		}

		err = c.conn.Close()
	})
	return err
}

// IsNormalClose reports whether err is the server ending the stream on purpose.
func IsNormalClose(err error) bool {
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway)
}
