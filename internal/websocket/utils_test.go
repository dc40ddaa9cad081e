package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoServer reads one message, reports the parsed action back as an event,
// then answers malformed input with an error event.
func echoServer(t *testing.T) *httptest.Server {
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn := Wrap(raw)
		defer conn.Close()

		for {
			action, payload, err := conn.ReadRaw()
			if err != nil {
				if payload != nil {
					conn.WriteError("INVALID_PAYLOAD", "malformed message")
					continue
				}
				return
			}
			conn.WriteEvent(EventEvaluated, map[string]string{"action": string(action)})
		}
	}))
}

func TestConn_RoundTrip(t *testing.T) {
	srv := echoServer(t)
	defer srv.Close()

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer client.Close()
	require.NoError(t, client.SetReadDeadline(time.Now().Add(5*time.Second)))

	require.NoError(t, client.WriteJSON(TakeActionRequest{Action: ActionTakeAction, Data: TakeActionPayload{Action: "Order ECG"}}))
	var evt struct {
		Event Event             `json:"event"`
		Data  map[string]string `json:"data"`
	}
	require.NoError(t, client.ReadJSON(&evt))
	assert.Equal(t, EventEvaluated, evt.Event)
	assert.Equal(t, "action", evt.Data["action"])

	require.NoError(t, client.WriteMessage(websocket.TextMessage, []byte("{not json")))
	var errEvt ErrorResponse
	require.NoError(t, client.ReadJSON(&errEvt))
	assert.Equal(t, EventError, errEvt.Event)
	assert.Equal(t, "INVALID_PAYLOAD", errEvt.Code)
	assert.Equal(t, "malformed message", errEvt.Error)
}
