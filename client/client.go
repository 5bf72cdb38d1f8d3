// Package client speaks the flightgate wire protocol: length-prefixed JSON
// frames over TCP, a tag registration handshake, and FIFO response
// correlation.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"sync"

	"github.com/Domenick1991/flightgate/internal/wire"
	"github.com/google/uuid"
)

var (
	ErrClosed       = errors.New("connection closed")
	ErrRegistration = errors.New("tag registration rejected")
)

// Response is the server's answer to one request.
type Response struct {
	Status  string
	Message string
	Data    interface{}
}

// OK reports whether the server answered with status success.
func (r *Response) OK() bool {
	return r.Status == wire.StatusSuccess
}

type Options struct {
	// Tag is the session identifier; autogenerated when empty.
	Tag string
	// MaxFrameBytes bounds incoming frame lengths; 0 means the codec default.
	MaxFrameBytes uint32
	// OnUnmatched receives responses that cannot be attributed to any
	// pending request. By default they are logged and dropped.
	OnUnmatched func(status, message string)
}

// Client is a registered wire-protocol session. Safe for concurrent use;
// requests from one client are answered in send order.
type Client struct {
	conn net.Conn
	corr correlator
	opts Options

	writeMu sync.Mutex

	closeOnce sync.Once
	closed    chan struct{}
}

// Dial connects, registers the tag and waits for the acknowledgement.
func Dial(ctx context.Context, addr string, opts Options) (*Client, error) {
	if opts.Tag == "" {
		opts.Tag = "client_" + uuid.NewString()
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	c := &Client{
		conn:   conn,
		opts:   opts,
		closed: make(chan struct{}),
	}

	// The registration ack carries no action marker; it is matched by being
	// the first (and only) pending entry before any business request.
	reg := &pending{ch: make(chan *wire.Response, 1)}
	c.corr.push(reg)

	if err := c.writeFrame(wire.Request{Tag: jsonString(opts.Tag)}); err != nil {
		conn.Close()
		return nil, err
	}

	go c.readLoop()

	select {
	case resp := <-reg.ch:
		if resp == nil {
			return nil, ErrClosed
		}
		if resp.Status != wire.StatusSuccess {
			c.Close()
			return nil, fmt.Errorf("%w: %s", ErrRegistration, resp.Message)
		}
	case <-ctx.Done():
		c.Close()
		return nil, ctx.Err()
	case <-c.closed:
		return nil, ErrClosed
	}

	return c, nil
}

// Tag returns the session tag bound at Dial.
func (c *Client) Tag() string {
	return c.opts.Tag
}

func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		close(c.closed)
		c.conn.Close()
		for _, p := range c.corr.drain() {
			close(p.ch)
		}
	})
	return nil
}

// Call sends one request and waits for the correlated response.
func (c *Client) Call(ctx context.Context, action string, data interface{}) (*Response, error) {
	payload, err := wire.Encode(struct {
		Action string      `json:"action"`
		Data   interface{} `json:"data"`
	}{Action: action, Data: data})
	if err != nil {
		return nil, err
	}

	p := &pending{action: action, ch: make(chan *wire.Response, 1)}

	// Push and write under one lock: queue order must equal wire order, or
	// a markerless response from a concurrent caller pops the wrong head.
	c.writeMu.Lock()
	c.corr.push(p)
	_, err = c.conn.Write(payload)
	c.writeMu.Unlock()
	if err != nil {
		// The request never reached the server; its entry must not absorb
		// a later response.
		c.corr.remove(p)
		return nil, fmt.Errorf("send %s: %w", action, err)
	}

	select {
	case resp := <-p.ch:
		if resp == nil {
			return nil, ErrClosed
		}
		return &Response{Status: resp.Status, Message: resp.Message, Data: resp.Data}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.closed:
		return nil, ErrClosed
	}
}

func (c *Client) readLoop() {
	defer c.Close()

	decoder := wire.NewDecoder(c.opts.MaxFrameBytes)
	buf := make([]byte, 4096)

	for {
		n, err := c.conn.Read(buf)
		if err != nil {
			return
		}
		decoder.Feed(buf[:n])

		for {
			payload, err := decoder.Next()
			if err != nil {
				// The stream is unrecoverable once framing breaks.
				c.unmatched(wire.StatusError, "invalid frame from server")
				return
			}
			if payload == nil {
				break
			}

			resp, err := wire.ParseResponse(payload)
			if err != nil {
				// Non-object frames are skipped, not fatal.
				continue
			}
			c.deliver(resp)
		}
	}
}

func (c *Client) deliver(resp *wire.Response) {
	p := c.corr.match(resp.ActionResponse)
	if p == nil {
		c.unmatched(resp.Status, resp.Message)
		return
	}
	p.ch <- resp
}

func (c *Client) unmatched(status, message string) {
	if c.opts.OnUnmatched != nil {
		c.opts.OnUnmatched(status, message)
		return
	}
	log.Printf("unattributed server response dropped: %s: %s", status, message)
}

func (c *Client) writeFrame(v interface{}) error {
	frame, err := wire.Encode(v)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if _, err := c.conn.Write(frame); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

func jsonString(s string) []byte {
	data, _ := json.Marshal(s)
	return data
}
