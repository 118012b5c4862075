// Package lifecycle holds the report state machine.
//
// A report has two axes: its disposition (Pending, Approved, Rejected) and,
// once approved, its mission (None, Active, Completed). Admins move the first
// axis, rescue teams the second. Re-applying a transition whose target
// already holds is an idempotent success; timestamps are set once and never
// move afterwards.
package lifecycle

import (
	"fmt"
	"time"

	"rescuelink/internal/utils"
	"rescuelink/pkg/types"
)

type Transition string

const (
	Approve         Transition = "approve"
	Reject          Transition = "reject"
	AcceptMission   Transition = "accept mission"
	CompleteMission Transition = "complete mission"
)

type State struct {
	Status  types.ReportStatus
	Mission types.MissionStatus
}

var (
	pending   = State{types.ReportStatusPending, types.MissionStatusNone}
	approved  = State{types.ReportStatusApproved, types.MissionStatusNone}
	active    = State{types.ReportStatusApproved, types.MissionStatusActive}
	completed = State{types.ReportStatusApproved, types.MissionStatusCompleted}
	rejected  = State{types.ReportStatusRejected, types.MissionStatusNone}
)

// transitions is the complete set of legal moves in strict mode.
var transitions = map[State]map[Transition]State{
	pending: {
		Approve: approved,
		Reject:  rejected,
	},
	approved: {
		Approve:       approved,
		AcceptMission: active,
	},
	active: {
		Approve:         active,
		AcceptMission:   active,
		CompleteMission: completed,
	},
	completed: {
		Approve:         completed,
		CompleteMission: completed,
	},
	rejected: {
		Reject: rejected,
	},
}

// Next returns the state reached by applying t in from, if legal.
func Next(from State, t Transition) (State, bool) {
	to, ok := transitions[from][t]
	return to, ok
}

func StateOf(r *types.Report) State {
	return State{Status: r.Status, Mission: r.MissionStatus}
}

// Machine applies transitions to reports. With Strict unset it reproduces
// the legacy behaviour: no precondition checks and unknown values stored
// verbatim.
type Machine struct {
	Strict bool
	Now    func() time.Time
}

func NewMachine(strict bool) *Machine {
	return &Machine{Strict: strict, Now: time.Now}
}

// Open builds a freshly submitted report.
func (m *Machine) Open(id string, sub types.ReportSubmission) *types.Report {
	location := sub.Location
	if location == "" {
		location = types.UnknownLocation
	}

	return &types.Report{
		ID:             id,
		Type:           sub.Type,
		Description:    sub.Description,
		Location:       location,
		Image:          sub.Image,
		Status:         types.ReportStatusPending,
		MissionStatus:  types.MissionStatusNone,
		Time:           m.now().Local().Format(types.ReportTimeLayout),
		IsEmergencySOS: sub.IsEmergencySOS,
	}
}

// Apply mutates r according to every transition patch implies: the status
// field first, then the mission field. On error r may be partially updated,
// callers apply patches to a copy.
func (m *Machine) Apply(r *types.Report, patch types.ReportPatch) error {
	if err := m.validate(patch); err != nil {
		return err
	}

	if patch.Status != nil {
		if err := m.applyStatus(r, *patch.Status, patch); err != nil {
			return err
		}
	}

	if patch.MissionStatus != nil {
		if err := m.applyMission(r, *patch.MissionStatus, patch); err != nil {
			return err
		}
	}

	return nil
}

func (m *Machine) validate(patch types.ReportPatch) error {
	if !m.Strict {
		return nil
	}

	if patch.Status != nil && !patch.Status.Valid() {
		return fmt.Errorf("%w: status %q", types.ErrInvalidValue, *patch.Status)
	}
	if patch.MissionStatus != nil && !patch.MissionStatus.Valid() {
		return fmt.Errorf("%w: missionStatus %q", types.ErrInvalidValue, *patch.MissionStatus)
	}
	if patch.Severity != nil && !patch.Severity.Valid() {
		return fmt.Errorf("%w: severity %q", types.ErrInvalidValue, *patch.Severity)
	}

	return nil
}

func (m *Machine) applyStatus(r *types.Report, status types.ReportStatus, patch types.ReportPatch) error {
	switch status {
	case types.ReportStatusApproved:
		return m.step(r, Approve, patch)
	case types.ReportStatusRejected:
		return m.step(r, Reject, patch)
	}

	// Pending (or an unknown value in legacy mode) is not a transition;
	// it is only accepted as a restatement of the current state.
	if r.Status == status {
		return nil
	}
	if m.Strict {
		return &types.TransitionError{Transition: "return to " + string(status), Status: r.Status, MissionStatus: r.MissionStatus}
	}
	r.Status = status
	return nil
}

func (m *Machine) applyMission(r *types.Report, mission types.MissionStatus, patch types.ReportPatch) error {
	switch mission {
	case types.MissionStatusActive:
		return m.step(r, AcceptMission, patch)
	case types.MissionStatusCompleted:
		return m.step(r, CompleteMission, patch)
	}

	if r.MissionStatus == mission {
		return nil
	}
	if m.Strict {
		return &types.TransitionError{Transition: "reset mission to " + string(mission), Status: r.Status, MissionStatus: r.MissionStatus}
	}
	r.MissionStatus = mission
	return nil
}

func (m *Machine) step(r *types.Report, t Transition, patch types.ReportPatch) error {
	if m.Strict {
		if _, ok := Next(StateOf(r), t); !ok {
			return &types.TransitionError{Transition: string(t), Status: r.Status, MissionStatus: r.MissionStatus}
		}
	}

	now := m.now().UTC()

	switch t {
	case Approve:
		r.Status = types.ReportStatusApproved
		fallback := types.DefaultSeverity
		severity := *utils.FirstNonNil(patch.Severity, r.Severity, &fallback)
		r.Severity = &severity
		r.ApprovedAt = stamp(r.ApprovedAt, patch.ApprovedAt, now)

	case Reject:
		r.Status = types.ReportStatusRejected
		reason := *utils.FirstNonNil(patch.RejectionReason, r.RejectionReason, utils.StringPtr(types.DefaultRejectionReason))
		r.RejectionReason = &reason
		r.RejectedAt = stamp(r.RejectedAt, patch.RejectedAt, now)

	case AcceptMission:
		r.MissionStatus = types.MissionStatusActive
		r.AcceptedAt = stamp(r.AcceptedAt, patch.AcceptedAt, now)

	case CompleteMission:
		r.MissionStatus = types.MissionStatusCompleted
		r.CompletedAt = stamp(r.CompletedAt, patch.CompletedAt, now)
	}

	return nil
}

// stamp keeps an existing timestamp, else takes the supplied one, else now.
func stamp(existing, supplied *time.Time, now time.Time) *time.Time {
	if supplied != nil {
		supplied = utils.TimePtr(supplied.UTC())
	}
	return utils.FirstNonNil(existing, supplied, &now)
}

func (m *Machine) now() time.Time {
	if m.Now == nil {
		return time.Now()
	}
	return m.Now()
}
