// Package undo holds the per-actor history of reversible actions produced by
// the queue engine. The history is a strict LIFO bounded at a small fixed
// depth: unbounded per-actor history in a long-lived process is a memory
// leak, and in practice nobody reaches back further than the last few
// mutations anyway. The stack is in-process state only and is lost on
// restart.
package undo

import (
	"context"
	"errors"
	"sync"

	"github.com/tbourn/go-order-backend/internal/metrics"
)

// DefaultDepth is the per-actor history bound.
const DefaultDepth = 3

// ErrNoHistory is returned by PopAndRun when the actor has nothing to undo.
var ErrNoHistory = errors.New("no undo history")

// Action is one reversal closure. Revert performs the inverse mutation;
// Description is reported back to the actor as the outcome.
type Action struct {
	Description string
	Revert      func(ctx context.Context) error
}

// Stack is a keyed store of bounded per-actor undo histories. A single lock
// guards the whole map: pushes and pops for the same actor must serialize,
// and distinct actors contend too rarely for finer locking to matter.
type Stack struct {
	mu      sync.Mutex
	depth   int
	byActor map[string][]Action
}

// NewStack returns a Stack bounding each actor's history at depth.
// Non-positive depths fall back to DefaultDepth.
func NewStack(depth int) *Stack {
	if depth <= 0 {
		depth = DefaultDepth
	}
	return &Stack{
		depth:   depth,
		byActor: make(map[string][]Action),
	}
}

// Push appends a to the actor's history. When the bound is exceeded the
// oldest entry is evicted, never the newest.
func (s *Stack) Push(actorID string, a Action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := append(s.byActor[actorID], a)
	if len(h) > s.depth {
		h = h[len(h)-s.depth:]
	}
	s.byActor[actorID] = h
}

// PopAndRun removes the most recently pushed action for the actor and
// invokes it, returning the action's description as the outcome. It returns
// ErrNoHistory when the actor has no history. The action is consumed even if
// its Revert fails; a failed revert is not safely re-runnable in general.
func (s *Stack) PopAndRun(ctx context.Context, actorID string) (string, error) {
	s.mu.Lock()
	h := s.byActor[actorID]
	if len(h) == 0 {
		s.mu.Unlock()
		return "", ErrNoHistory
	}
	a := h[len(h)-1]
	if len(h) == 1 {
		delete(s.byActor, actorID)
	} else {
		s.byActor[actorID] = h[:len(h)-1]
	}
	s.mu.Unlock()

	if err := a.Revert(ctx); err != nil {
		return "", err
	}
	metrics.UndoActionsRun.Inc()
	return a.Description, nil
}

// Depth returns the current history length for the actor.
func (s *Stack) Depth(actorID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byActor[actorID])
}

// Clear drops the actor's entire history.
func (s *Stack) Clear(actorID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byActor, actorID)
}
