package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait = 10 * time.Second
	readWait  = 5 * time.Minute
)

// Conn serializes writes so the read loop and the notification pump can
// share one connection.
type Conn struct {
	*websocket.Conn
	mu sync.Mutex
}

func Wrap(c *websocket.Conn) *Conn {
	return &Conn{Conn: c}
}

// WriteTyped sends a strongly-typed response payload over the WebSocket.
func (c *Conn) WriteTyped(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.SetWriteDeadline(time.Now().Add(writeWait))
	return c.WriteJSON(v)
}

// WriteEvent sends an EventResponse.
func (c *Conn) WriteEvent(event Event, data interface{}) error {
	return c.WriteTyped(EventResponse{Event: event, Data: data})
}

// WriteError sends a typed ErrorResponse over the WebSocket.
func (c *Conn) WriteError(code, errMsg string) error {
	return c.WriteTyped(ErrorResponse{
		Event: EventError,
		Code:  code,
		Error: errMsg,
	})
}

// ReadRaw reads one message with a read deadline and returns its action
// together with the raw bytes for full decoding.
func (c *Conn) ReadRaw() (Action, []byte, error) {
	c.SetReadDeadline(time.Now().Add(readWait))
	_, raw, err := c.ReadMessage()
	if err != nil {
		return "", nil, err
	}
	var env RequestEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", raw, err
	}
	return env.Action, raw, nil
}
