// Package engine holds the edge detection rule that drives the alarm
// lifecycle. The decision is a pure function of three inputs: the point's
// configured severity level, whether the point currently has an open alarm
// record, and the incoming sample coerced to a two-state signal. The open
// alarm record is the only memory of the previous state; there is no stored
// last-value field to keep in sync.
package engine

import "plc-alarm-worker/internal/db"

// Action is the outcome of evaluating one point-value sample.
type Action int

const (
	// ActionNone means the sample does not change alarm state.
	ActionNone Action = iota
	// ActionOpen means a rising edge: create a new open alarm record.
	ActionOpen
	// ActionClose means a falling edge: close the currently open record.
	ActionClose
)

// String returns a short label for logging and metrics.
func (a Action) String() string {
	switch a {
	case ActionOpen:
		return "open"
	case ActionClose:
		return "close"
	default:
		return "none"
	}
}

// Decide evaluates one sample against the current alarm state.
//
// Points with a level outside {state, alarm} are inert and never produce an
// action. A rising edge is an active sample with no open record; a falling
// edge is an inactive sample with an open record. A repeated active sample
// while an alarm is open, or an inactive sample with nothing open, is a
// no-op, which makes redelivered events harmless.
func Decide(level int, hasOpenAlarm bool, active bool) Action {
	if level != db.LevelState && level != db.LevelAlarm {
		return ActionNone
	}
	if active && !hasOpenAlarm {
		return ActionOpen
	}
	if !active && hasOpenAlarm {
		return ActionClose
	}
	return ActionNone
}
