package services

import (
	"fmt"

	"github.com/safatanc/tourism-core/internal/app/errors"
	"github.com/safatanc/tourism-core/internal/app/models"
)

// Actor describes the caller relative to the entity being transitioned.
// Role is always the effective role.
type Actor struct {
	Role    models.UserRole
	IsOwner bool
	IsGuide bool
}

func (a Actor) IsModerator() bool {
	return a.Role == models.UserRoleAuditor || a.Role == models.UserRoleAdmin
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.UserRoleAdmin
}

type ActorRule func(Actor) bool

var (
	byOwner         ActorRule = func(a Actor) bool { return a.IsOwner }
	byModerator     ActorRule = Actor.IsModerator
	byAdmin         ActorRule = Actor.IsAdmin
	byOwnerOrAdmin  ActorRule = func(a Actor) bool { return a.IsOwner || a.IsAdmin() }
	byOwnerNonAdmin ActorRule = func(a Actor) bool { return a.IsOwner && !a.IsAdmin() }
	byGuideOrAdmin  ActorRule = func(a Actor) bool { return a.IsGuide || a.IsAdmin() }
	byParticipant   ActorRule = func(a Actor) bool { return a.IsOwner || a.IsGuide || a.IsAdmin() }
)

// Transition is one edge of a lifecycle. Edges sharing From and Action are
// tried in order; the first whose rule accepts the actor wins.
type Transition[S ~string] struct {
	From          S
	Action        models.TransitionAction
	To            S
	Allow         ActorRule
	SelfForbidden bool
}

type TransitionTable[S ~string] struct {
	name        string
	transitions []Transition[S]
	deny        func(string) *errors.AppError
}

// NewTransitionTable builds a table; deny produces the error for an edge that
// exists but rejects the actor.
func NewTransitionTable[S ~string](name string, deny func(string) *errors.AppError, transitions ...Transition[S]) *TransitionTable[S] {
	return &TransitionTable[S]{
		name:        name,
		transitions: transitions,
		deny:        deny,
	}
}

// Validate returns the next state for action applied to current by actor.
// It never touches storage.
func (t *TransitionTable[S]) Validate(current S, action models.TransitionAction, actor Actor) (S, error) {
	var zero S
	matched := false
	for _, tr := range t.transitions {
		if tr.From != current || tr.Action != action {
			continue
		}
		matched = true
		if tr.SelfForbidden && actor.IsOwner {
			return zero, errors.NewInvalidActionError(fmt.Sprintf("Cannot %s your own %s", action, t.name))
		}
		if tr.Allow(actor) {
			return tr.To, nil
		}
	}
	if !matched {
		return zero, errors.NewInvalidStatusError(fmt.Sprintf("Cannot %s %s in status %s", action, t.name, current))
	}
	return zero, t.deny(fmt.Sprintf("Not allowed to %s this %s", action, t.name))
}

// IsSelfForbidden reports whether every edge for (current, action) excludes
// the owner. It is false when no such edge exists.
func (t *TransitionTable[S]) IsSelfForbidden(current S, action models.TransitionAction) bool {
	found := false
	for _, tr := range t.transitions {
		if tr.From != current || tr.Action != action {
			continue
		}
		if !tr.SelfForbidden {
			return false
		}
		found = true
	}
	return found
}

// Actions lists the distinct actions defined from current, in table order.
func (t *TransitionTable[S]) Actions(current S) []models.TransitionAction {
	seen := make(map[models.TransitionAction]struct{})
	actions := make([]models.TransitionAction, 0)
	for _, tr := range t.transitions {
		if tr.From != current {
			continue
		}
		if _, ok := seen[tr.Action]; ok {
			continue
		}
		seen[tr.Action] = struct{}{}
		actions = append(actions, tr.Action)
	}
	return actions
}

// successors returns the states reachable in one step from current by any
// actor.
func (t *TransitionTable[S]) successors(current S) map[S]struct{} {
	next := make(map[S]struct{})
	for _, tr := range t.transitions {
		if tr.From == current {
			next[tr.To] = struct{}{}
		}
	}
	return next
}

// reachable returns every state reachable from start, start included.
func (t *TransitionTable[S]) reachable(start S) map[S]struct{} {
	seen := map[S]struct{}{start: {}}
	queue := []S{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for next := range t.successors(current) {
			if _, ok := seen[next]; ok {
				continue
			}
			seen[next] = struct{}{}
			queue = append(queue, next)
		}
	}
	return seen
}
