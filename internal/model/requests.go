package model

// StartSimulationRequest is the payload for starting a simulation.
type StartSimulationRequest struct {
	StudentID    string `json:"studentId" binding:"required,notblank,max=64"`
	ScenarioType string `json:"scenarioType" binding:"required,notblank"`
	ScenarioName string `json:"scenarioName" binding:"required,notblank"`
}

// TakeActionRequest is the payload for submitting an action.
type TakeActionRequest struct {
	StudentID string `json:"studentId" binding:"required,notblank,max=64"`
	Action    string `json:"action" binding:"required,notblank,max=500"`
	Details   string `json:"details" binding:"max=2000"`
}

// MakeDecisionRequest is the payload for submitting a decision.
type MakeDecisionRequest struct {
	StudentID string `json:"studentId" binding:"required,notblank,max=64"`
	Decision  string `json:"decision" binding:"required,notblank,max=500"`
	Reasoning string `json:"reasoning" binding:"max=2000"`
}

// CompleteSimulationRequest is the payload for finishing a simulation.
type CompleteSimulationRequest struct {
	StudentID string `json:"studentId" binding:"required,notblank,max=64"`
}
