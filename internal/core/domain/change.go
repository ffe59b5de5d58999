package domain

import "strings"

type Action string

const (
	ActionAdd    Action = "add"
	ActionRemove Action = "remove"
)

const DefaultQuantity = 1

// ParseAction maps a free-form action to a known one. Blank means add.
func ParseAction(raw string) (Action, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", string(ActionAdd):
		return ActionAdd, true
	case string(ActionRemove):
		return ActionRemove, true
	default:
		return Action(raw), false
	}
}

// ChangeRequest is a single add/remove instruction derived from a command.
// Invalid is set when the element could not be decoded; such a change is
// reported but never applied.
type ChangeRequest struct {
	Manufacturer string `json:"manufacturer"`
	Part         string `json:"part"`
	Model        string `json:"model"`
	Quantity     int    `json:"quantity"`
	Action       Action `json:"action"`
	Invalid      string `json:"invalid,omitempty"`
}

func (c ChangeRequest) Key() PartKey {
	return PartKey{Manufacturer: c.Manufacturer, Part: c.Part, Model: c.Model}
}

// Delta returns the signed quantity change.
func (c ChangeRequest) Delta() int {
	if c.Action == ActionRemove {
		return -c.Quantity
	}
	return c.Quantity
}

// ChangeBatch keeps the order in which changes were extracted.
type ChangeBatch []ChangeRequest

type OutcomeStatus string

const (
	OutcomeApplied           OutcomeStatus = "applied"
	OutcomeInsufficientStock OutcomeStatus = "insufficient_stock"
	OutcomeUnknownPart       OutcomeStatus = "unknown_part"
	OutcomeInvalid           OutcomeStatus = "invalid"
)

// ChangeOutcome records what happened to one change of a batch.
type ChangeOutcome struct {
	Index    int           `json:"index"`
	Change   ChangeRequest `json:"change"`
	Status   OutcomeStatus `json:"status"`
	PartID   int64         `json:"partId,omitempty"`
	Quantity int           `json:"quantity"`
	Message  string        `json:"message,omitempty"`
}

type ReconciliationResult struct {
	Outcomes []ChangeOutcome `json:"outcomes"`
}

func (r ReconciliationResult) Count(status OutcomeStatus) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}
