package statemachine

import (
	"errors"
	"fmt"
	"strings"

	"hospital-meal-api/models"
)

// ErrInvalidTransition is returned when a status change is not in the table.
var ErrInvalidTransition = errors.New("invalid transition")

// Transition defines a valid state change and who can perform it
type Transition struct {
	From  models.OrderStatus `json:"from"`
	To    models.OrderStatus `json:"to"`
	Actor models.UserRole    `json:"actor"`
}

// validTransitions is the authoritative state machine definition
var validTransitions = func() []Transition {
	ts := []Transition{
		// Cashier validates the payment of a received order
		{From: models.StatusReceived, To: models.StatusCreated, Actor: models.RoleCashier},
		// Cashier approves a doctor order beyond the daily quota
		{From: models.StatusPendingApproval, To: models.StatusCreated, Actor: models.RoleCashier},
		// Kitchen
		{From: models.StatusCreated, To: models.StatusPreparing, Actor: models.RoleCatering},
		{From: models.StatusPreparing, To: models.StatusReady, Actor: models.RoleCatering},
		// Waiter takes the tray to the ward
		{From: models.StatusReady, To: models.StatusDelivering, Actor: models.RoleWaiter},
		{From: models.StatusDelivering, To: models.StatusDelivered, Actor: models.RoleWaiter},
	}
	for _, s := range models.Statuses {
		if !s.Terminal() {
			ts = append(ts, Transition{From: s, To: models.StatusCancelled, Actor: models.RoleCashier})
		}
	}
	// Admin may perform every staff transition.
	n := len(ts)
	for _, t := range ts[:n] {
		ts = append(ts, Transition{From: t.From, To: t.To, Actor: models.RoleAdmin})
	}
	return ts
}()

// transitionKey is used to look up valid transitions quickly
type transitionKey struct {
	From  models.OrderStatus
	To    models.OrderStatus
	Actor models.UserRole
}

var transitionMap = func() map[transitionKey]bool {
	m := make(map[transitionKey]bool)
	for _, t := range validTransitions {
		m[transitionKey{t.From, t.To, t.Actor}] = true
	}
	return m
}()

// ValidTransitionsFrom returns all valid next states from a given state
func ValidTransitionsFrom(status models.OrderStatus) []models.OrderStatus {
	var nexts []models.OrderStatus
	seen := map[models.OrderStatus]bool{}
	for _, t := range validTransitions {
		if t.From == status && !seen[t.To] {
			nexts = append(nexts, t.To)
			seen[t.To] = true
		}
	}
	return nexts
}

// CanTransition checks if a given actor can move from one state to another.
// Re-entering the current non-terminal status is allowed for any actor that
// may enter it; the caller re-stamps the milestone in that case.
func CanTransition(from, to models.OrderStatus, actor models.UserRole) error {
	if !to.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, to)
	}
	if transitionMap[transitionKey{From: from, To: to, Actor: actor}] {
		return nil
	}
	if from == to && !from.Terminal() && canEnter(to, actor) {
		return nil
	}
	return fmt.Errorf("%w: %s → %s is not allowed for actor '%s'. Valid transitions from %s are: %s",
		ErrInvalidTransition, from, to, actor, from, describeValidFrom(from))
}

func canEnter(status models.OrderStatus, actor models.UserRole) bool {
	for _, t := range validTransitions {
		if t.To == status && t.Actor == actor {
			return true
		}
	}
	return false
}

func describeValidFrom(status models.OrderStatus) string {
	nexts := ValidTransitionsFrom(status)
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	names := make([]string, len(nexts))
	for i, s := range nexts {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

// GetAllTransitions returns the full state machine for documentation
func GetAllTransitions() []Transition {
	out := make([]Transition, len(validTransitions))
	copy(out, validTransitions)
	return out
}
