package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stemsi/clinsim-backend/internal/model"
	"github.com/stemsi/clinsim-backend/internal/response"
	"github.com/stemsi/clinsim-backend/internal/service"
	ws "github.com/stemsi/clinsim-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// NotificationSubscriber delivers a student's notifications as they are stored.
type NotificationSubscriber interface {
	Subscribe(studentID string) (<-chan model.Notification, func())
}

// WSHandler streams a simulation over a WebSocket: the client submits
// actions and decisions, the server pushes evaluations and alerts.
type WSHandler struct {
	svc      *service.SimulationService
	subs     NotificationSubscriber
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(svc *service.SimulationService, subs NotificationSubscriber, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		svc:      svc,
		subs:     subs,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// SimulationStream godoc
// WS /ws/v1/simulations/:student_id/stream
// Requires an ACTIVE session for the student.
func (h *WSHandler) SimulationStream(c *gin.Context) {
	studentID := strings.TrimSpace(c.Param("student_id"))
	if studentID == "" || len(studentID) > 64 {
		response.Fail(c, http.StatusBadRequest, response.ErrValidation)
		return
	}

	if _, err := h.svc.GetActiveSession(c.Request.Context(), studentID); err != nil {
		failFromError(c, err)
		return
	}

	raw, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	conn := ws.Wrap(raw)
	defer conn.Close()

	wsLog := h.log.With().Str("student_id", studentID).Logger()
	wsLog.Info().Msg("Student connected")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if h.subs != nil {
		updates, unsubscribe := h.subs.Subscribe(studentID)
		defer unsubscribe()
		go h.pump(ctx, conn, updates)
	}

	for {
		action, payload, err := conn.ReadRaw()
		if err != nil {
			if payload != nil {
				conn.WriteError(string(response.ErrInvalidPayload), "malformed message")
				continue
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		switch action {
		case ws.ActionTakeAction:
			h.handleAction(ctx, conn, studentID, payload)
		case ws.ActionDecision:
			h.handleDecision(ctx, conn, studentID, payload)
		case ws.ActionComplete:
			if h.handleComplete(ctx, conn, wsLog, studentID) {
				return
			}
		case ws.ActionPing:
			conn.WriteEvent(ws.EventPong, nil)
		default:
			wsLog.Warn().Str("action", string(action)).Msg("Unknown action")
			conn.WriteError(string(response.ErrInvalidPayload), "unknown action: "+string(action))
		}
	}
}

// pump forwards pushed notifications until ctx ends or the subscription closes.
func (h *WSHandler) pump(ctx context.Context, conn *ws.Conn, updates <-chan model.Notification) {
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.WriteEvent(ws.EventNotification, n); err != nil {
				h.log.Debug().Err(err).Msg("Notification push failed")
				return
			}
		}
	}
}

func (h *WSHandler) handleAction(ctx context.Context, conn *ws.Conn, studentID string, payload []byte) {
	var req ws.TakeActionRequest
	if err := json.Unmarshal(payload, &req); err != nil || strings.TrimSpace(req.Data.Action) == "" {
		conn.WriteError(string(response.ErrValidation), "data.action is required")
		return
	}

	result, err := h.svc.TakeAction(ctx, studentID, req.Data.Action, req.Data.Details)
	if err != nil {
		writeServiceError(conn, err)
		return
	}
	conn.WriteEvent(ws.EventEvaluated, result)
}

func (h *WSHandler) handleDecision(ctx context.Context, conn *ws.Conn, studentID string, payload []byte) {
	var req ws.DecisionRequest
	if err := json.Unmarshal(payload, &req); err != nil || strings.TrimSpace(req.Data.Decision) == "" {
		conn.WriteError(string(response.ErrValidation), "data.decision is required")
		return
	}

	result, err := h.svc.MakeDecision(ctx, studentID, req.Data.Decision, req.Data.Reasoning)
	if err != nil {
		writeServiceError(conn, err)
		return
	}
	conn.WriteEvent(ws.EventEvaluated, result)
}

// handleComplete reports whether the stream should close.
func (h *WSHandler) handleComplete(ctx context.Context, conn *ws.Conn, wsLog zerolog.Logger, studentID string) bool {
	report, err := h.svc.CompleteSession(ctx, studentID)
	if err != nil {
		writeServiceError(conn, err)
		return false
	}

	wsLog.Info().
		Int("overall_score", report.OverallScore).
		Str("grade", string(report.Grade)).
		Msg("Simulation completed over stream")

	conn.WriteEvent(ws.EventReport, report)
	return true
}

func writeServiceError(conn *ws.Conn, err error) {
	_, code := mapError(err)
	conn.WriteError(string(code), response.GetMessage(code))
}
