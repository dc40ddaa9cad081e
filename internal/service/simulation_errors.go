package service

import (
	"errors"

	"github.com/stemsi/clinsim-backend/internal/notification"
	"github.com/stemsi/clinsim-backend/internal/scenario"
	"github.com/stemsi/clinsim-backend/internal/session"
)

var (
	ErrScenarioNotFound     = scenario.ErrScenarioNotFound
	ErrSessionAlreadyActive = session.ErrSessionAlreadyActive
	ErrSessionNotFound      = session.ErrSessionNotFound
	ErrNotificationNotFound = notification.ErrNotificationNotFound
	ErrInvalidInput         = errors.New("invalid input")
)

// errExpired is returned from inside a mutation when the countdown has
// already reached zero.
var errExpired = errors.New("session time expired")
