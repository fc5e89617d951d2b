// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package wavelog

import (
	"log/slog"

	"github.com/pkg/errors"
)

// Errors returned by Init, possibly wrapped. Use errors.Cause to test for
// them.
//
var (
	ErrUnavailable = errors.New("fast logging not available")
	ErrAttached    = errors.New("fast logging client already attached")
)

// State is the lifecycle state of a Session.
//
type State uint8

// Session states. A session goes through
//
//	Initialized -> (Started -> Finalized)* -> CleanedUp
//
const (
	Uninitialized State = iota
	Initialized
	Started
	Finalized
	CleanedUp
)

var stateNames = [...]string{"uninitialized", "initialized", "started", "finalized", "cleaned up"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "State(?)"
}

// Config holds optional Session settings.
//
type Config struct {
	// Logger receives debug events (classification, alias discovery,
	// callback arming) and warnings about API misuse. If nil, logging is
	// disabled.
	Logger *slog.Logger
}

// A Session is the fast logging context of a simulation. There is one
// Session per kernel, created by Init and torn down by Cleanup.
//
type Session struct {
	k     Kernel
	log   *slog.Logger
	state State
	reg   *registry

	pending []*subscription // set since the last Start
	armed   []*subscription // installed in the kernel
}

// Init attaches a new Session to k. It can be called only once per kernel.
// It returns an error whose cause is ErrUnavailable if fast logging cannot
// be used in this simulation, or ErrAttached on a second call.
//
func Init(k Kernel, cfg *Config) (*Session, error) {
	if k == nil {
		return nil, errors.Wrap(ErrUnavailable, "no kernel")
	}
	if err := k.Open(); err != nil {
		return nil, errors.Wrap(err, "init")
	}
	l := discard
	if cfg != nil && cfg.Logger != nil {
		l = cfg.Logger
	}
	return &Session{
		k:     k,
		log:   l,
		state: Initialized,
		reg:   newRegistry(),
	}, nil
}

// State returns the session's lifecycle state.
//
func (s *Session) State() State { return s.state }

// Start opens a callback setup bracket. All SetCallback, SetStrengthCallback
// and SetCallbackForSecondary calls must be made between Start and Finalize.
// Start/Finalize pairs can be repeated any number of times.
//
func (s *Session) Start() {
	switch s.state {
	case Initialized, Finalized:
		s.state = Started
	default:
		s.log.Warn("Start called in state " + s.state.String())
	}
}

// Finalize closes a callback setup bracket and installs the callbacks set
// since Start in the kernel.
//
func (s *Session) Finalize() {
	if s.state != Started {
		s.log.Warn("Finalize called in state " + s.state.String())
		return
	}
	for _, sub := range s.pending {
		sub.cancel = s.k.Watch(sub.h, sub.fire)
		s.armed = append(s.armed, sub)
	}
	s.log.Debug("finalize", "armed", len(s.pending), "total", len(s.armed))
	s.pending = nil
	s.state = Finalized
}

// Cleanup releases the handle registry: classifications, user data, map
// expressions and alias information. Installed callbacks keep firing.
// Callbacks set since an unmatched Start are dropped.
//
// Any call to the Session after Cleanup is invalid: it logs a warning,
// returns a zero value and has no other effect.
//
func (s *Session) Cleanup() {
	if s.state == CleanedUp {
		s.log.Warn("Cleanup called twice")
		return
	}
	if s.state == Started {
		s.log.Warn("Cleanup called before Finalize, dropping pending callbacks", "pending", len(s.pending))
	}
	s.log.Debug("cleanup", "objects", s.reg.len(), "armed", len(s.armed))
	s.pending = nil
	s.reg = newRegistry()
	s.state = CleanedUp
}

// Registered returns the number of objects in the handle registry.
//
func (s *Session) Registered() int { return s.reg.len() }

func (s *Session) cleanedUp(op string, h Handle) bool {
	if s.state != CleanedUp {
		return false
	}
	s.log.Warn(op+" called after Cleanup", "handle", h)
	return true
}

func (s *Session) violation(op string, h Handle, e *entry) {
	if e == nil {
		s.log.Warn(op+": unknown handle", "handle", h)
		return
	}
	s.log.Warn(op+": precondition violation", "handle", h, "name", e.info.Name, "class", e.class, "expanded", e.info.Expanded)
}

var discard = slog.New(slog.DiscardHandler)
