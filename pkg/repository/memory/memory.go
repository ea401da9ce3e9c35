package memory

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/seion-lab/kintai/pkg/domain/interfaces"
)

// ErrNotFound is returned when a requested entry does not exist
var ErrNotFound = goerr.New("entry not found")

// Repository is an alias for Memory to match the pattern
type Repository = Memory

type Memory struct {
	user       *userRepository
	attendance *attendanceRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		user:       newUserRepository(),
		attendance: newAttendanceRepository(),
	}
}

func (m *Memory) User() interfaces.UserRepository {
	return m.user
}

func (m *Memory) Attendance() interfaces.AttendanceRepository {
	return m.attendance
}

func (m *Memory) Close() error {
	return nil
}
