package domain

import "strings"

// Transition names a guarded move between statuses.
type Transition string

const (
	TransitionPublish Transition = "publish"
	TransitionRevert  Transition = "revert"
	TransitionSave    Transition = "save"
)

// ParseStatus coerces arbitrary input into a known Status. Unknown values
// report false so callers can reject them.
func ParseStatus(input string) (Status, bool) {
	switch Status(strings.ToUpper(strings.TrimSpace(input))) {
	case StatusDraft:
		return StatusDraft, true
	case StatusPublic:
		return StatusPublic, true
	case StatusOldVersion:
		return StatusOldVersion, true
	default:
		return "", false
	}
}

// IsDraft reports whether the status permits mutation.
func (s Status) IsDraft() bool {
	return s == StatusDraft
}

// CanTransition reports whether the transition is allowed from the given status.
// Every transition requires a draft.
func CanTransition(from Status, transition Transition) bool {
	switch transition {
	case TransitionPublish, TransitionRevert, TransitionSave:
		return from == StatusDraft
	default:
		return false
	}
}

// Publish returns the status a draft moves to after publication.
func Publish(from Status) (Status, error) {
	if !CanTransition(from, TransitionPublish) {
		return from, NewVersionStateError(ErrNotDraft, "cannot publish in non-draft mode")
	}
	return StatusPublic, nil
}

// Demote returns the status a superseded public configuration moves to.
func Demote(from Status) Status {
	if from == StatusPublic {
		return StatusOldVersion
	}
	return from
}
