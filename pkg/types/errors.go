package types

import (
	"errors"
	"fmt"
)

var (
	ErrReportNotFound    = errors.New("report not found")
	ErrDocumentNotExist  = errors.New("document does not exist")
	ErrRevisionConflict  = errors.New("document revision conflict")
	ErrStoreUnavailable  = errors.New("record store unavailable")
	ErrLockTimeout       = errors.New("timed out waiting for document lock")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrInvalidValue      = errors.New("invalid value")
)

// TransitionError reports a transition that the lifecycle does not allow from
// the report's current state.
type TransitionError struct {
	Transition    string
	Status        ReportStatus
	MissionStatus MissionStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s: report is %s with mission %s", e.Transition, e.Status, e.MissionStatus)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}
