package service

import (
	"context"
	"crypto/tls"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// requestTimeout applies to Decode calls whose context has no deadline
const requestTimeout = 30 * time.Second

// Client is a connection to a remote decode service
type Client struct {
	url  string
	conn *websocket.Conn
	mu   sync.Mutex
}

// DialOption adjusts how Dial connects
type DialOption func(*websocket.Dialer)

// WithTLSConfig sets the TLS configuration used for wss:// URLs
func WithTLSConfig(cfg *tls.Config) DialOption {
	return func(d *websocket.Dialer) {
		d.TLSClientConfig = cfg
	}
}

// Dial connects to a decode service at a ws:// or wss:// URL
func Dial(ctx context.Context, url string, opts ...DialOption) (*Client, error) {
	dialer := websocket.Dialer{HandshakeTimeout: writeWait}
	for _, opt := range opts {
		opt(&dialer)
	}

	conn, resp, err := dialer.DialContext(ctx, url, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", url, err)
	}
	conn.SetReadLimit(maxMessageSize)

	return &Client{url: url, conn: conn}, nil
}

// Decode sends one request and waits for its response. Decode failures come
// back in Response.Error; the error return is for transport problems only.
func (c *Client) Decode(ctx context.Context, req Request) (*Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(requestTimeout)
	}

	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return nil, err
	}
	if err := c.conn.WriteJSON(req); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return nil, err
	}
	var resp Response
	if err := c.conn.ReadJSON(&resp); err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return &resp, nil
}

// URL returns the address the client dialled
func (c *Client) URL() string {
	return c.url
}

// Close says goodbye to the server and closes the connection
func (c *Client) Close() error {
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return c.conn.Close()
}
