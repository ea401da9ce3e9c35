package model

import (
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/seion-lab/kintai/pkg/domain/types"
)

// User is a registered card holder. Users are never mutated after
// registration; they are only removed by a full reset.
type User struct {
	ID         types.UserID
	Name       string
	CardID     types.CardID
	Department string
	CreatedAt  time.Time
}

// NewUser creates a user with a generated ID from trimmed inputs
func NewUser(name string, cardID types.CardID, department string) *User {
	return &User{
		ID:         types.NewUserID(),
		Name:       strings.TrimSpace(name),
		CardID:     types.CardID(strings.TrimSpace(cardID.String())),
		Department: strings.TrimSpace(department),
		CreatedAt:  time.Now(),
	}
}

// Validate checks if the user has the required fields
func (u *User) Validate() error {
	if err := u.ID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid user")
	}
	if strings.TrimSpace(u.Name) == "" {
		return goerr.New("user name is required", goerr.V("id", u.ID))
	}
	if err := u.CardID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid user", goerr.V("id", u.ID))
	}
	return nil
}
