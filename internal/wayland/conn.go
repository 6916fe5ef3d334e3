// Package wayland wraps a go-wayland client connection with the roundtrip
// and error plumbing the renderer needs.
package wayland

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rajveermalviya/go-wayland/wayland/client"
)

// ProtocolError is raised by wl_display.error. The connection is unusable
// afterwards.
type ProtocolError struct {
	Code    uint32
	Message string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("wayland protocol error (code %d): %s", e.Code, e.Message)
}

var ErrClosed = errors.New("wayland connection closed")

// Conn is a compositor connection. Requests and Dispatch must come from one
// goroutine; Close may be called from any.
type Conn struct {
	Display *client.Display
	Context *client.Context

	protoErr  error
	closeOnce sync.Once
	closeErr  error
	closed    chan struct{}
}

// Connect dials addr, or the socket named by $WAYLAND_DISPLAY when addr is
// empty.
func Connect(addr string) (*Conn, error) {
	display, err := client.Connect(addr)
	if err != nil {
		return nil, fmt.Errorf("connecting to wayland display: %w", err)
	}
	c := &Conn{
		Display: display,
		Context: display.Context(),
		closed:  make(chan struct{}),
	}
	display.SetErrorHandler(func(e client.DisplayErrorEvent) {
		if c.protoErr == nil {
			c.protoErr = &ProtocolError{Code: e.Code, Message: e.Message}
		}
	})
	return c, nil
}

// Dispatch blocks for one event and runs its handler.
func (c *Conn) Dispatch() error {
	if c.protoErr != nil {
		return c.protoErr
	}
	err := c.Context.Dispatch()
	switch {
	case c.protoErr != nil:
		return c.protoErr
	case err == nil:
		return nil
	}
	select {
	case <-c.closed:
		return ErrClosed
	default:
		return err
	}
}

// Close disconnects. It unblocks a Dispatch in progress on another goroutine.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		close(c.closed)
		c.closeErr = c.Context.Close()
	})
	return c.closeErr
}

// Roundtrip blocks until the compositor processed every request sent so far.
func (c *Conn) Roundtrip() error {
	cb, err := c.Display.Sync()
	if err != nil {
		return fmt.Errorf("wl_display.sync: %w", err)
	}
	defer cb.Destroy()

	done := false
	cb.SetDoneHandler(func(client.CallbackDoneEvent) { done = true })
	for !done {
		if err := c.Dispatch(); err != nil {
			return err
		}
	}
	return nil
}
