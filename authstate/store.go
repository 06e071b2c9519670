// Package authstate is the client-side cache of who is logged in and their settings.
// A Store is an explicit value: create one per browser tab or per test.
package authstate

import (
	"maps"
	"sync"
)

// State is a point-in-time copy of the client auth state.
type State struct {
	IsAuthenticated bool           `json:"isAuthenticated"`
	UserName        string         `json:"userName,omitempty"`
	UserEmail       string         `json:"userEmail,omitempty"`
	UserSettings    map[string]any `json:"userSettings"`
}

// AuthInput is what SetAuth needs from a validated login or session.
type AuthInput struct {
	UserName     string
	UserEmail    string
	UserSettings map[string]any
}

// DefaultSettings are the settings of an anonymous user, and the base that
// provided settings are laid over on SetAuth.
func DefaultSettings() map[string]any {
	return map[string]any{
		"theme":        "light",
		"postsPerPage": 10,
		"editorMode":   "markdown",
	}
}

type ActionType string

const (
	ActionSetAuth        ActionType = "setAuth"
	ActionClearAuth      ActionType = "clearAuth"
	ActionUpdateSettings ActionType = "updateSettings"
	ActionSetSetting     ActionType = "setSetting"
)

// Action is one update to the store. Payload is an AuthInput, a settings map,
// a Setting, or nil for ActionClearAuth.
type Action struct {
	Type    ActionType
	Payload any
}

type Setting struct {
	Key   string
	Value any
}

// Dispatch applies an action and returns the resulting state.
type Dispatch func(Action) State

// Middleware wraps the update path, for example to log every action.
type Middleware func(next Dispatch) Dispatch

type Store struct {
	mu        sync.RWMutex
	state     State
	defaults  map[string]any
	listeners map[int]func(State)
	nextID    int
	dispatch  Dispatch
}

type Option func(*Store)

// WithDefaults replaces DefaultSettings.
func WithDefaults(defaults map[string]any) Option {
	return func(s *Store) {
		s.defaults = maps.Clone(defaults)
	}
}

// WithMiddleware adds middleware around the update path. The first one given is outermost.
func WithMiddleware(mw ...Middleware) Option {
	return func(s *Store) {
		for i := len(mw) - 1; i >= 0; i-- {
			if mw[i] != nil {
				s.dispatch = mw[i](s.dispatch)
			}
		}
	}
}

func New(options ...Option) *Store {
	s := &Store{
		defaults:  DefaultSettings(),
		listeners: make(map[int]func(State)),
	}
	s.dispatch = s.apply
	for _, opt := range options {
		opt(s)
	}
	s.state = s.initial()
	return s
}

// SetAuth marks the user authenticated. Provided settings are laid over the defaults.
func (s *Store) SetAuth(in AuthInput) State {
	return s.dispatch(Action{Type: ActionSetAuth, Payload: in})
}

// ClearAuth resets the store to the anonymous default state.
func (s *Store) ClearAuth() State {
	return s.dispatch(Action{Type: ActionClearAuth})
}

// UpdateSettings shallow-merges partial into the current settings. Last write wins.
func (s *Store) UpdateSettings(partial map[string]any) State {
	return s.dispatch(Action{Type: ActionUpdateSettings, Payload: maps.Clone(partial)})
}

func (s *Store) SetSetting(key string, value any) State {
	return s.dispatch(Action{Type: ActionSetSetting, Payload: Setting{Key: key, Value: value}})
}

// Snapshot returns a copy of the current state that later updates do not affect.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyState(s.state)
}

// Subscribe registers fn to receive the state after every update and returns a
// function that removes it.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) apply(a Action) State {
	s.mu.Lock()
	s.state = s.reduce(s.state, a)
	next := copyState(s.state)
	listeners := make([]func(State), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(copyState(next))
	}
	return next
}

// reduce never mutates the settings map of prev; every change builds a new one.
func (s *Store) reduce(prev State, a Action) State {
	switch a.Type {
	case ActionSetAuth:
		in, ok := a.Payload.(AuthInput)
		if !ok {
			return prev
		}
		return State{
			IsAuthenticated: true,
			UserName:        in.UserName,
			UserEmail:       in.UserEmail,
			UserSettings:    merge(s.defaults, in.UserSettings),
		}
	case ActionClearAuth:
		return s.initial()
	case ActionUpdateSettings:
		partial, ok := a.Payload.(map[string]any)
		if !ok {
			return prev
		}
		prev.UserSettings = merge(prev.UserSettings, partial)
		return prev
	case ActionSetSetting:
		set, ok := a.Payload.(Setting)
		if !ok {
			return prev
		}
		prev.UserSettings = merge(prev.UserSettings, map[string]any{set.Key: set.Value})
		return prev
	}
	return prev
}

func (s *Store) initial() State {
	return State{UserSettings: maps.Clone(s.defaults)}
}

func merge(base, partial map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(partial))
	maps.Copy(out, base)
	maps.Copy(out, partial)
	return out
}

func copyState(st State) State {
	st.UserSettings = maps.Clone(st.UserSettings)
	return st
}
