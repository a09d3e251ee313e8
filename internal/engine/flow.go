// GoodWatch - One-Pick Movie Night Decision Engine
// Copyright 2026 GoodWatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodwatch/goodwatch

package engine

// State is a session's position in the interaction flow.
type State string

const (
	// StateIdle is the pre-session resting state.
	StateIdle State = "idle"
	// StateEntry is the session entry point after start.
	StateEntry State = "entry"
	// StateCalibration collects mood and constraints from the user.
	StateCalibration State = "calibration"
	// StateDecisionReady means a valid context exists and a pick may run.
	StateDecisionReady State = "decision_ready"
	// StateShowPick means picks are on screen.
	StateShowPick State = "show_pick"
	// StateAccepted means the user committed to a pick.
	StateAccepted State = "accepted"
	// StateRejectedSoft means the user rejected under the retry threshold.
	StateRejectedSoft State = "rejected_soft"
	// StateRejectedHard locks the session after repeated rejections.
	StateRejectedHard State = "rejected_hard"
	// StateSeenFlagged means the pick was flagged already-seen and a
	// replacement is due.
	StateSeenFlagged State = "seen_flagged"
	// StateExit is terminal.
	StateExit State = "exit"
)

// FlowEvent drives session state transitions.
type FlowEvent string

const (
	// FlowStart begins a session, resetting all context.
	FlowStart FlowEvent = "session_start"
	// FlowCalibrate routes a first-time user into calibration.
	FlowCalibrate FlowEvent = "calibrate"
	// FlowResume routes a returning user straight to decision-ready.
	FlowResume FlowEvent = "resume"
	// FlowInputsValid completes calibration; guarded by valid_inputs.
	FlowInputsValid FlowEvent = "inputs_valid"
	// FlowShowPick triggers the selector from decision-ready. Retry and
	// replace re-run it from their own states.
	FlowShowPick FlowEvent = "show_pick"
	// FlowAccept accepts the surfaced pick.
	FlowAccept FlowEvent = "accept"
	// FlowAlreadySeen flags the pick as already watched.
	FlowAlreadySeen FlowEvent = "already_seen"
	// FlowReject rejects the surfaced pick.
	FlowReject FlowEvent = "reject"
	// FlowRetry asks for another pick after a soft rejection.
	FlowRetry FlowEvent = "retry"
	// FlowReplace asks for a replacement after an already-seen flag.
	FlowReplace FlowEvent = "replace"
	// FlowReset explicitly restarts calibration from the locked state,
	// clearing the reject count.
	FlowReset FlowEvent = "reset_context"
	// FlowExit ends the session.
	FlowExit FlowEvent = "exit"
)

// maxSoftRejects is the reject count at which the session locks.
const maxSoftRejects = 3

// FlowContext is the small mutable record the machine consults and
// updates alongside the state.
type FlowContext struct {
	// RejectCount counts soft rejections since the last reset.
	RejectCount int `json:"reject_count"`

	// ValidInputs guards the calibration exit.
	ValidInputs bool `json:"valid_inputs"`
}

// ContextPatch carries optional context updates submitted with an event.
type ContextPatch struct {
	// ValidInputs, when set, updates FlowContext.ValidInputs before the
	// transition is evaluated.
	ValidInputs *bool `json:"valid_inputs,omitempty"`
}

// transitionFn resolves the target state for an allowed (state, event)
// pair, mutating the flow context where the edge demands it.
type transitionFn func(fc *FlowContext) State

// allowList is the complete transition table. Any (state, event) pair not
// present is an illegal transition and fails fast — it indicates a caller
// bug, never something to absorb.
var allowList = map[State]map[FlowEvent]transitionFn{
	StateIdle: {
		FlowStart: func(fc *FlowContext) State {
			*fc = FlowContext{}
			return StateEntry
		},
	},
	StateEntry: {
		FlowCalibrate: func(fc *FlowContext) State { return StateCalibration },
		FlowResume:    func(fc *FlowContext) State { return StateDecisionReady },
	},
	StateCalibration: {
		FlowInputsValid: func(fc *FlowContext) State {
			if !fc.ValidInputs {
				return StateCalibration
			}
			return StateDecisionReady
		},
	},
	StateDecisionReady: {
		FlowShowPick: func(fc *FlowContext) State { return StateShowPick },
	},
	StateShowPick: {
		FlowAccept:      func(fc *FlowContext) State { return StateAccepted },
		FlowAlreadySeen: func(fc *FlowContext) State { return StateSeenFlagged },
		FlowReject: func(fc *FlowContext) State {
			if fc.RejectCount >= maxSoftRejects {
				return StateRejectedHard
			}
			fc.RejectCount++
			return StateRejectedSoft
		},
	},
	StateRejectedSoft: {
		// Retry is allowed up to and including the threshold so the
		// locking rejection itself always happens on the show_pick edge;
		// past the threshold the session locks here instead.
		FlowRetry: func(fc *FlowContext) State {
			if fc.RejectCount > maxSoftRejects {
				return StateRejectedHard
			}
			return StateShowPick
		},
	},
	StateRejectedHard: {
		FlowReset: func(fc *FlowContext) State {
			fc.RejectCount = 0
			fc.ValidInputs = false
			return StateCalibration
		},
	},
	StateSeenFlagged: {
		FlowReplace: func(fc *FlowContext) State { return StateShowPick },
	},
	StateAccepted: {
		FlowExit: func(fc *FlowContext) State { return StateExit },
	},
	// StateExit is terminal: no events are allowed.
}

// EvaluateTransition applies an event to a state, honoring the patch
// before the edge guard runs. It returns the new state, or an
// *IllegalTransitionError when the event is not in the allow-list for the
// current state. The flow context is mutated only on allowed edges.
func EvaluateTransition(state State, event FlowEvent, fc *FlowContext, patch *ContextPatch) (State, error) {
	edges, ok := allowList[state]
	if !ok {
		return state, &IllegalTransitionError{From: state, Event: event}
	}
	fn, ok := edges[event]
	if !ok {
		return state, &IllegalTransitionError{From: state, Event: event}
	}
	if patch != nil && patch.ValidInputs != nil {
		fc.ValidInputs = *patch.ValidInputs
	}
	return fn(fc), nil
}
