package model

import (
	"fmt"
	"time"

	"github.com/seion-lab/kintai/pkg/domain/types"
)

// PunchState is the slot-filling state a daily record occupies. A record
// is always in exactly one state; the ordering is partial because an
// afternoon-first scan skips the AM pair entirely.
type PunchState string

const (
	StateAwaitingOutAM PunchState = "awaiting_out_am"
	StateAwaitingInPM  PunchState = "awaiting_in_pm"
	StateAwaitingOutPM PunchState = "awaiting_out_pm"
	StateComplete      PunchState = "complete"
)

// TimeRecord is the daily punch record of one user, keyed by (UserID, Date).
// UserName is a denormalized snapshot taken at the first punch of the day.
// Slots are formatted time-of-day strings ("08:05 AM"); an empty string
// means the slot is unset. Once set, a slot is only cleared by bulk clear
// or regeneration, never by the punch engine.
type TimeRecord struct {
	UserID    types.UserID
	UserName  string
	Date      types.DateKey
	TimeInAM  string
	TimeOutAM string
	TimeInPM  string
	TimeOutPM string
}

// NewTimeRecord creates the day's record for a user's first scan. The
// first punch lands in TimeInAM before noon and TimeInPM after; an
// afternoon-first record leaves the AM pair unset for the whole day.
func NewTimeRecord(userID types.UserID, userName string, now time.Time) (*TimeRecord, types.PunchAction) {
	rec := &TimeRecord{
		UserID:   userID,
		UserName: userName,
		Date:     types.NewDateKey(now),
	}

	formatted := types.FormatClock(now)
	if types.IsMorning(now) {
		rec.TimeInAM = formatted
		return rec, types.ActionTimeInAM
	}
	rec.TimeInPM = formatted
	return rec, types.ActionTimeInPM
}

// RecordID returns the composite document identifier of the record
func (r *TimeRecord) RecordID() types.RecordID {
	return types.NewRecordID(r.UserID, r.Date)
}

// State derives the current punch state from the filled slots
func (r *TimeRecord) State() PunchState {
	switch {
	case r.TimeOutPM != "":
		return StateComplete
	case r.TimeInPM != "":
		return StateAwaitingOutPM
	case r.TimeOutAM != "":
		return StateAwaitingInPM
	default:
		return StateAwaitingOutAM
	}
}

// Punch applies the next transition for the given instant, mutating the
// record in place. ok is false when the day's record is already complete;
// the record is left untouched in that case.
//
// Morning scans close the AM pair; a morning scan arriving after Time Out
// AM was already recorded overwrites Time In AM as a correction
// (ActionTimeInAMUpdated). An afternoon scan against an unfinished AM
// state skips straight to Time In PM: the afternoon transition takes
// priority over a stale morning state.
func (r *TimeRecord) Punch(now time.Time) (types.PunchAction, bool) {
	formatted := types.FormatClock(now)

	switch r.State() {
	case StateAwaitingOutAM:
		if types.IsMorning(now) {
			r.TimeOutAM = formatted
			return types.ActionTimeOutAM, true
		}
		r.TimeInPM = formatted
		return types.ActionTimeInPM, true

	case StateAwaitingInPM:
		if types.IsMorning(now) {
			r.TimeInAM = formatted
			return types.ActionTimeInAMUpdated, true
		}
		r.TimeInPM = formatted
		return types.ActionTimeInPM, true

	case StateAwaitingOutPM:
		r.TimeOutPM = formatted
		return types.ActionTimeOutPM, true

	default:
		return types.ActionComplete, false
	}
}

// PunchMessage builds the user-facing message for an applied transition
func PunchMessage(action types.PunchAction, userName, formatted string, firstOfDay bool) string {
	switch action {
	case types.ActionTimeInAM:
		return fmt.Sprintf("Welcome %s! Time In AM recorded at %s", userName, formatted)
	case types.ActionTimeOutAM:
		return fmt.Sprintf("Goodbye %s! Time Out AM recorded at %s", userName, formatted)
	case types.ActionTimeInAMUpdated:
		return fmt.Sprintf("Welcome back %s! Updated Time In AM recorded at %s", userName, formatted)
	case types.ActionTimeInPM:
		if firstOfDay {
			return fmt.Sprintf("Welcome %s! Time In PM recorded at %s", userName, formatted)
		}
		return fmt.Sprintf("Welcome back %s! Time In PM recorded at %s", userName, formatted)
	case types.ActionTimeOutPM:
		return fmt.Sprintf("Goodbye %s! Time Out PM recorded at %s. See you tomorrow!", userName, formatted)
	default:
		return fmt.Sprintf("%s, you have completed your DTR for today.", userName)
	}
}
