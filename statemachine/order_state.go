package statemachine

import (
	"fmt"

	"restaurant-pos/models"
)

// Transition defines a valid state change and who performs it
type Transition struct {
	From  models.OrderStatus
	To    models.OrderStatus
	Actor string // "staff", "kitchen", "waiter"
}

// validTransitions is the authoritative state machine definition
var validTransitions = []Transition{
	// Staff confirms the order and the kitchen starts on it
	{From: models.StatusWaiting, To: models.StatusPreparing, Actor: "staff"},
	// Kitchen finishes preparing
	{From: models.StatusPreparing, To: models.StatusReady, Actor: "kitchen"},
	// Waiter delivers to the table
	{From: models.StatusReady, To: models.StatusCompleted, Actor: "waiter"},
}

type transitionKey struct {
	From models.OrderStatus
	To   models.OrderStatus
}

// Build a lookup map for O(1) validation
var transitionMap = func() map[transitionKey]bool {
	m := make(map[transitionKey]bool)
	for _, t := range validTransitions {
		m[transitionKey{t.From, t.To}] = true
	}
	return m
}()

// TransitionError reports an illegal status change request.
type TransitionError struct {
	From models.OrderStatus
	To   models.OrderStatus
}

func (e *TransitionError) Error() string {
	nexts := ValidTransitionsFrom(e.From)
	if len(nexts) == 0 {
		return fmt.Sprintf("invalid transition: %s is a terminal state", e.From)
	}
	return fmt.Sprintf("invalid transition: %s → %s is not allowed; valid next states from %s are %v",
		e.From, e.To, e.From, nexts)
}

// ValidTransitionsFrom returns all valid next states from a given state
func ValidTransitionsFrom(status models.OrderStatus) []models.OrderStatus {
	var nexts []models.OrderStatus
	for _, t := range validTransitions {
		if t.From == status {
			nexts = append(nexts, t.To)
		}
	}
	return nexts
}

// CanTransition checks whether an order may move from one state to another.
// The machine is strictly forward-moving: no skips, no regressions.
func CanTransition(from, to models.OrderStatus) error {
	if transitionMap[transitionKey{From: from, To: to}] {
		return nil
	}
	return &TransitionError{From: from, To: to}
}

// GetAllTransitions returns the full state machine for documentation
func GetAllTransitions() []Transition {
	return validTransitions
}
