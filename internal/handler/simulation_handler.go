package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/clinsim-backend/internal/model"
	"github.com/stemsi/clinsim-backend/internal/response"
	"github.com/stemsi/clinsim-backend/internal/service"
	"github.com/stemsi/clinsim-backend/internal/validator"
)

// SimulationHandler handles the simulation lifecycle endpoints.
type SimulationHandler struct {
	svc *service.SimulationService
	log zerolog.Logger
}

// NewSimulationHandler creates a new SimulationHandler.
func NewSimulationHandler(svc *service.SimulationService, log zerolog.Logger) *SimulationHandler {
	return &SimulationHandler{
		svc: svc,
		log: log.With().Str("component", "simulation_handler").Logger(),
	}
}

// StartSimulation godoc
// POST /api/v1/simulations/start
// Opens a timed session for the student on the requested scenario.
func (h *SimulationHandler) StartSimulation(c *gin.Context) {
	var req model.StartSimulationRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	summary, err := h.svc.StartSession(c.Request.Context(), req.StudentID, req.ScenarioType, req.ScenarioName)
	if err != nil {
		h.logFailure(err, "start", req.StudentID)
		failFromError(c, err)
		return
	}

	response.Created(c, gin.H{"session": summary})
}

// TakeAction godoc
// POST /api/v1/simulations/action
func (h *SimulationHandler) TakeAction(c *gin.Context) {
	var req model.TakeActionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.svc.TakeAction(c.Request.Context(), req.StudentID, req.Action, req.Details)
	if err != nil {
		h.logFailure(err, "action", req.StudentID)
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"evaluation": result})
}

// MakeDecision godoc
// POST /api/v1/simulations/decision
func (h *SimulationHandler) MakeDecision(c *gin.Context) {
	var req model.MakeDecisionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.svc.MakeDecision(c.Request.Context(), req.StudentID, req.Decision, req.Reasoning)
	if err != nil {
		h.logFailure(err, "decision", req.StudentID)
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"evaluation": result})
}

// CompleteSimulation godoc
// POST /api/v1/simulations/complete
// Ends the session and returns the graded performance report.
func (h *SimulationHandler) CompleteSimulation(c *gin.Context) {
	var req model.CompleteSimulationRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	report, err := h.svc.CompleteSession(c.Request.Context(), req.StudentID)
	if err != nil {
		h.logFailure(err, "complete", req.StudentID)
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"report": report})
}

// GetActiveSession godoc
// GET /api/v1/simulations/students/:student_id/active
func (h *SimulationHandler) GetActiveSession(c *gin.Context) {
	session, err := h.svc.GetActiveSession(c.Request.Context(), c.Param("student_id"))
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": session})
}

// GetHistory godoc
// GET /api/v1/simulations/students/:student_id/history
func (h *SimulationHandler) GetHistory(c *gin.Context) {
	history := h.svc.History(c.Request.Context(), c.Param("student_id"))
	if history == nil {
		history = []*model.SessionView{}
	}
	response.Success(c, http.StatusOK, gin.H{"sessions": history})
}

// ListScenarios godoc
// GET /api/v1/simulations/scenarios
func (h *SimulationHandler) ListScenarios(c *gin.Context) {
	items, err := h.svc.ListScenarios(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("List scenarios failed")
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"scenarios": items})
}

func (h *SimulationHandler) logFailure(err error, op, studentID string) {
	status, _ := mapError(err)
	ev := h.log.Debug()
	if status >= http.StatusInternalServerError {
		ev = h.log.Error()
	}
	ev.Err(err).Str("op", op).Str("student_id", studentID).Msg("Simulation request failed")
}
