package entity

import "github.com/joseph-ayodele/credit-report-kz/constants"

// Condition is one sub-predicate evaluated by the bankruptcy engine.
type Condition struct {
	Name   string  `json:"name"`
	Passed bool    `json:"passed"`
	Value  float64 `json:"value"`
	Limit  float64 `json:"limit"`
}

// Recommendation is the engine's answer. Error is set, and Procedure left
// empty, when the input report was malformed.
type Recommendation struct {
	Procedure         constants.Procedure `json:"procedure,omitempty"`
	ReasonCode        string              `json:"reason_code"`
	Rationale         string              `json:"rationale"`
	ConditionsChecked []Condition         `json:"conditions_checked"`
	NextSteps         []string            `json:"next_steps"`
	Warnings          []string            `json:"warnings"`
	Error             string              `json:"error,omitempty"`
}
