package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(h gin.HandlerFunc, reqID string) *httptest.ResponseRecorder {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", h)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if reqID != "" {
		req.Header.Set("X-Request-ID", reqID)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSuccess_Envelope(t *testing.T) {
	w := serve(func(c *gin.Context) {
		Created(c, gin.H{"id": "abc"})
	}, "req-1")

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "req-1", w.Header().Get("X-Request-ID"))

	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Nil(t, body.Error)
	assert.Equal(t, "req-1", body.Metadata.RequestID)
	assert.NotEmpty(t, body.Metadata.Timestamp)
	assert.Equal(t, map[string]interface{}{"id": "abc"}, body.Data)
}

func TestFailWithFields(t *testing.T) {
	w := serve(func(c *gin.Context) {
		FailWithFields(c, http.StatusBadRequest, ErrValidation, map[string]string{"action": "action is a required field"})
	}, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	assert.Equal(t, ErrValidation, body.Error.Code)
	assert.Equal(t, GetMessage(ErrValidation), body.Error.Message)
	assert.Equal(t, "action is a required field", body.Error.Fields["action"])
}

func TestGetMessage_Unknown(t *testing.T) {
	assert.NotEmpty(t, GetMessage(ErrSessionActive))
	assert.Equal(t, "An unexpected error occurred.", GetMessage(ErrCode("NOPE")))
}
