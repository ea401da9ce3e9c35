package types

import "github.com/m-mizutani/goerr/v2"

// PunchAction is the label of a punch transition applied by a scan
type PunchAction string

const (
	ActionTimeInAM  PunchAction = "Time In AM"
	ActionTimeOutAM PunchAction = "Time Out AM"
	ActionTimeInPM  PunchAction = "Time In PM"
	ActionTimeOutPM PunchAction = "Time Out PM"
	ActionComplete  PunchAction = "Complete"

	// ActionTimeInAMUpdated is a correction scan: a repeated morning scan
	// after Time Out AM was already recorded overwrites Time In AM. Carried
	// from observed behavior of the scanner; kept as a named transition.
	ActionTimeInAMUpdated PunchAction = "Time In AM (Updated)"
)

// AllPunchActions returns all valid punch actions
func AllPunchActions() []PunchAction {
	return []PunchAction{
		ActionTimeInAM,
		ActionTimeOutAM,
		ActionTimeInPM,
		ActionTimeOutPM,
		ActionComplete,
		ActionTimeInAMUpdated,
	}
}

// IsValid checks if the punch action is valid
func (a PunchAction) IsValid() bool {
	switch a {
	case ActionTimeInAM,
		ActionTimeOutAM,
		ActionTimeInPM,
		ActionTimeOutPM,
		ActionComplete,
		ActionTimeInAMUpdated:
		return true
	default:
		return false
	}
}

// String returns the string representation of the punch action
func (a PunchAction) String() string {
	return string(a)
}

// ParsePunchAction parses a string into a PunchAction
func ParsePunchAction(s string) (PunchAction, error) {
	action := PunchAction(s)
	if !action.IsValid() {
		return "", goerr.New("invalid punch action", goerr.V("action", s))
	}
	return action, nil
}
