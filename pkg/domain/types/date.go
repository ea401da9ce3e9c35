package types

import (
	"fmt"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// DateLayout is the calendar-day format used for record keys (local time)
const DateLayout = "2006-01-02"

// TimeLayout is the 12-hour clock format used for punch slots
const TimeLayout = "03:04 PM"

// DateKey is a calendar day in the local time zone, formatted YYYY-MM-DD
type DateKey string

// NewDateKey derives the DateKey for the given instant in its location
func NewDateKey(t time.Time) DateKey {
	return DateKey(t.Format(DateLayout))
}

// String returns the string representation of the date key
func (d DateKey) String() string {
	return string(d)
}

// Validate checks if the date key parses as YYYY-MM-DD
func (d DateKey) Validate() error {
	if _, err := time.Parse(DateLayout, string(d)); err != nil {
		return goerr.Wrap(err, "invalid date key", goerr.V("date", string(d)))
	}
	return nil
}

// RecordID is the attendance document identifier, composed of the user ID
// and the calendar day: "{userID}_{date}".
type RecordID string

// NewRecordID builds the composite attendance record identifier
func NewRecordID(userID UserID, date DateKey) RecordID {
	return RecordID(fmt.Sprintf("%s_%s", userID, date))
}

// String returns the string representation of the record ID
func (id RecordID) String() string {
	return string(id)
}

// FormatClock renders an instant in the 12-hour slot format, e.g. "08:05 AM"
func FormatClock(t time.Time) string {
	return t.Format(TimeLayout)
}

// IsMorning reports whether the instant falls before noon local time
func IsMorning(t time.Time) bool {
	return t.Hour() < 12
}
