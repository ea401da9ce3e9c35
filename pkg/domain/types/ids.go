package types

import (
	"strings"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// UserID is a system-assigned identifier for a registered user
type UserID string

// NewUserID generates a new UUID v4 UserID
func NewUserID() UserID {
	return UserID(uuid.New().String())
}

// String returns the string representation of the user ID
func (id UserID) String() string {
	return string(id)
}

// Validate checks if the user ID is valid
func (id UserID) Validate() error {
	if id == "" {
		return goerr.New("user ID is empty")
	}
	return nil
}

// CardID is the unique value of a physical RFID tag. It is user-assigned
// at registration and distinct from the system-generated UserID. At most
// one user is bound to a CardID at any time.
type CardID string

// String returns the string representation of the card ID
func (id CardID) String() string {
	return string(id)
}

// Validate checks if the card ID is non-empty after trimming
func (id CardID) Validate() error {
	if strings.TrimSpace(string(id)) == "" {
		return goerr.New("card ID is empty")
	}
	return nil
}
