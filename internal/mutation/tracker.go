package mutation

import (
	"fmt"
	"sync"
)

type Action string

const (
	ActionAddItem    Action = "add_item"
	ActionUpdateItem Action = "update_item"
	ActionRemoveItem Action = "remove_item"
	ActionCheckout   Action = "checkout"
	ActionLogin      Action = "login"
)

type trackKey struct {
	session string
	action  Action
}

// Tracker holds one state machine per (session key, action). Machines in
// Idle are not stored.
type Tracker struct {
	mu     sync.Mutex
	states map[trackKey]State
}

func NewTracker() *Tracker {
	return &Tracker{states: make(map[trackKey]State)}
}

func (t *Tracker) State(key string, action Action) State {
	t.mu.Lock()
	defer t.mu.Unlock()

	if s, ok := t.states[trackKey{key, action}]; ok {
		return s
	}
	return StateIdle
}

// Begin moves the machine to InFlight. An empty key is not tracked.
func (t *Tracker) Begin(key string, action Action) error {
	if key == "" {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	k := trackKey{key, action}
	cur, ok := t.states[k]
	if !ok {
		cur = StateIdle
	}
	if cur == StateInFlight {
		return ErrInFlight
	}
	next, err := cur.Next(StateInFlight)
	if err != nil {
		return fmt.Errorf("begin %s from %s: %w", action, cur, err)
	}
	t.states[k] = next
	return nil
}

func (t *Tracker) Finish(key string, action Action, succeeded bool) error {
	if key == "" {
		return nil
	}
	to := StateFailed
	if succeeded {
		to = StateSuccess
	}
	return t.move(trackKey{key, action}, to)
}

func (t *Tracker) Acknowledge(key string, action Action) error {
	if key == "" {
		return nil
	}
	return t.move(trackKey{key, action}, StateIdle)
}

func (t *Tracker) move(k trackKey, to State) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	cur, ok := t.states[k]
	if !ok {
		cur = StateIdle
	}
	next, err := cur.Next(to)
	if err != nil {
		return fmt.Errorf("%s %s -> %s: %w", k.action, cur, to, err)
	}
	if next == StateIdle {
		delete(t.states, k)
		return nil
	}
	t.states[k] = next
	return nil
}
