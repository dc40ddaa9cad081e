package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/clinsim-backend/internal/response"
	"github.com/stemsi/clinsim-backend/internal/service"
)

// mapError translates a service error into an HTTP status and error code.
func mapError(err error) (int, response.ErrCode) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest, response.ErrValidation
	case errors.Is(err, service.ErrScenarioNotFound):
		return http.StatusNotFound, response.ErrScenarioNotFound
	case errors.Is(err, service.ErrSessionAlreadyActive):
		return http.StatusConflict, response.ErrSessionActive
	case errors.Is(err, service.ErrSessionNotFound):
		return http.StatusNotFound, response.ErrSessionNotFound
	case errors.Is(err, service.ErrNotificationNotFound):
		return http.StatusNotFound, response.ErrNotificationNotFound
	default:
		return http.StatusInternalServerError, response.ErrInternal
	}
}

func failFromError(c *gin.Context, err error) {
	status, code := mapError(err)
	response.Fail(c, status, code)
}
