package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	User() UserRepository
	Attendance() AttendanceRepository

	Close() error
}
