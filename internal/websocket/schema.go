package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionTakeAction Action = "action"
	ActionDecision   Action = "decision"
	ActionComplete   Action = "complete"
	ActionPing       Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// TakeActionRequest submits a clinical action. Data uses the same field
// names as the REST action body.
type TakeActionRequest struct {
	Action Action            `json:"action"`
	Data   TakeActionPayload `json:"data"`
}

type TakeActionPayload struct {
	Action  string `json:"action"`
	Details string `json:"details"`
}

// DecisionRequest submits a clinical decision.
type DecisionRequest struct {
	Action Action          `json:"action"`
	Data   DecisionPayload `json:"data"`
}

type DecisionPayload struct {
	Decision  string `json:"decision"`
	Reasoning string `json:"reasoning"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError        Event = "error"
	EventEvaluated    Event = "evaluated"
	EventNotification Event = "notification"
	EventReport       Event = "report"
	EventPong         Event = "pong"
)

// EventResponse carries any server event with its payload.
type EventResponse struct {
	Event Event       `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Code  string `json:"code,omitempty"`
	Error string `json:"error"`
}
