package obsws

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"gamerig/internal/domain"
	"gamerig/internal/logging"
	"gamerig/internal/ports"
)

const (
	defaultCallTimeout = 10 * time.Second
	handshakeTimeout   = 10 * time.Second
	connectMaxTries    = 5
	connectInterval    = 500 * time.Millisecond
)

// Client speaks the OBS-style websocket control protocol: Hello/Identify
// challenge handshake, then request/response pairs correlated by a
// client-generated id. One Client owns one connection.
type Client struct {
	url         string
	password    string
	callTimeout time.Duration

	writeMu sync.Mutex // gorilla allows one concurrent writer
	mu      sync.Mutex
	conn    *websocket.Conn
	pending map[string]chan responseData
	done    chan struct{}
}

// Compile-time interface verification
var _ ports.IntegrationChannel = (*Client)(nil)

// NewClient creates an unconnected client for the given integration settings
func NewClient(settings domain.IntegrationSettings) *Client {
	return &Client{
		url:         fmt.Sprintf("ws://%s:%d", settings.Host, settings.Port),
		password:    settings.Password,
		callTimeout: defaultCallTimeout,
		pending:     make(map[string]chan responseData),
	}
}

// Connect dials the server, performs the Hello/Identify handshake and
// starts the response reader. Connection-refused is retried with backoff
// because the controlled application may still be starting; authentication
// failure wraps domain.ErrAuthFailed.
func (c *Client) Connect(ctx context.Context) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = connectInterval

	conn, err := backoff.Retry(ctx, func() (*websocket.Conn, error) {
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
		return conn, err
	}, backoff.WithBackOff(bo), backoff.WithMaxTries(connectMaxTries))
	if err != nil {
		return fmt.Errorf("connect %s: %w", c.url, err)
	}

	if err := c.handshake(conn); err != nil {
		conn.Close()
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.done = make(chan struct{})
	c.mu.Unlock()

	go c.readLoop(conn)

	logging.Logger.Debug("Integration channel connected", "url", c.url)
	return nil
}

func (c *Client) handshake(conn *websocket.Conn) error {
	deadline := time.Now().Add(handshakeTimeout)
	_ = conn.SetReadDeadline(deadline)
	defer conn.SetReadDeadline(time.Time{})

	var env envelope
	if err := conn.ReadJSON(&env); err != nil {
		return fmt.Errorf("reading hello: %v: %w", err, domain.ErrProtocol)
	}
	if env.Op != opHello {
		return fmt.Errorf("expected hello, got op %d: %w", env.Op, domain.ErrProtocol)
	}

	var hello helloData
	if err := json.Unmarshal(env.D, &hello); err != nil {
		return fmt.Errorf("malformed hello: %v: %w", err, domain.ErrProtocol)
	}

	identify := identifyData{RPCVersion: 1}
	if hello.Authentication != nil {
		identify.Authentication = authResponse(c.password, hello.Authentication.Salt, hello.Authentication.Challenge)
	}

	if err := writeEnvelope(conn, &c.writeMu, opIdentify, identify); err != nil {
		return fmt.Errorf("sending identify: %v: %w", err, domain.ErrProtocol)
	}

	// On bad credentials the server closes the connection instead of
	// answering, so any read failure here means authentication
	if err := conn.ReadJSON(&env); err != nil {
		return fmt.Errorf("%s: %v: %w", c.url, err, domain.ErrAuthFailed)
	}
	if env.Op != opIdentified {
		return fmt.Errorf("expected identified, got op %d: %w", env.Op, domain.ErrProtocol)
	}

	return nil
}

// authResponse computes base64(sha256(base64(sha256(password+salt)) + challenge))
func authResponse(password, salt, challenge string) string {
	secret := sha256.Sum256([]byte(password + salt))
	secretB64 := base64.StdEncoding.EncodeToString(secret[:])
	response := sha256.Sum256([]byte(secretB64 + challenge))
	return base64.StdEncoding.EncodeToString(response[:])
}

func writeEnvelope(conn *websocket.Conn, mu *sync.Mutex, op int, d any) error {
	payload, err := json.Marshal(d)
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()
	return conn.WriteJSON(envelope{Op: op, D: payload})
}

// readLoop routes request responses to their waiting callers. A read error
// or malformed frame tears the channel down; the connection is never
// reopened automatically, the caller decides.
func (c *Client) readLoop(conn *websocket.Conn) {
	defer c.failPending()

	for {
		var env envelope
		if err := conn.ReadJSON(&env); err != nil {
			logging.Logger.Debug("Integration channel read ended", "url", c.url, "error", err)
			return
		}

		switch env.Op {
		case opRequestResponse:
			var resp responseData
			if err := json.Unmarshal(env.D, &resp); err != nil {
				logging.Logger.Warn("Malformed response frame", "url", c.url, "error", err)
				return
			}
			c.mu.Lock()
			ch, ok := c.pending[resp.RequestID]
			delete(c.pending, resp.RequestID)
			c.mu.Unlock()
			if ok {
				ch <- resp
			}
		case opEvent:
			// Unsolicited events are not consumed by the orchestrator
		default:
			logging.Logger.Debug("Ignoring frame", "op", env.Op)
		}
	}
}

// failPending closes the done channel so in-flight and future calls fail
// with a protocol error instead of hanging
func (c *Client) failPending() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done != nil {
		select {
		case <-c.done:
		default:
			close(c.done)
		}
	}
}

// Call issues one typed request and waits for its correlated response
func (c *Client) Call(ctx context.Context, requestType string, payload any) (json.RawMessage, error) {
	c.mu.Lock()
	conn := c.conn
	done := c.done
	if conn == nil {
		c.mu.Unlock()
		return nil, domain.ErrNotConnected
	}

	id := uuid.New().String()
	ch := make(chan responseData, 1)
	c.pending[id] = ch
	c.mu.Unlock()

	req := requestData{RequestType: requestType, RequestID: id, RequestData: payload}
	if err := writeEnvelope(conn, &c.writeMu, opRequest, req); err != nil {
		c.dropPending(id)
		return nil, fmt.Errorf("%s: %v: %w", requestType, err, domain.ErrProtocol)
	}

	timer := time.NewTimer(c.callTimeout)
	defer timer.Stop()

	select {
	case resp := <-ch:
		if !resp.RequestStatus.Result {
			return nil, fmt.Errorf("%s: %s (code %d): %w",
				requestType, resp.RequestStatus.Comment, resp.RequestStatus.Code, domain.ErrRemote)
		}
		return resp.ResponseData, nil
	case <-timer.C:
		c.dropPending(id)
		return nil, fmt.Errorf("%s after %s: %w", requestType, c.callTimeout, domain.ErrTimeout)
	case <-done:
		c.dropPending(id)
		return nil, fmt.Errorf("%s: connection lost: %w", requestType, domain.ErrProtocol)
	case <-ctx.Done():
		c.dropPending(id)
		return nil, ctx.Err()
	}
}

func (c *Client) dropPending(id string) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

// Close closes the socket without any farewell message. Safe to call
// repeatedly and before Connect ever completed.
func (c *Client) Close() error {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		return conn.Close()
	}
	return nil
}
