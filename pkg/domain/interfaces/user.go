package interfaces

import (
	"context"

	"github.com/seion-lab/kintai/pkg/domain/model"
	"github.com/seion-lab/kintai/pkg/domain/types"
)

// UserRepository persists user/card bindings in the "users" collection
type UserRepository interface {
	// Get retrieves a user by system-assigned ID. Returns ErrNotFound
	// of the backing repository when no such user exists.
	Get(ctx context.Context, id types.UserID) (*model.User, error)

	// FindByCard queries users whose card identifier equals the given
	// value. The uniqueness invariant means more than one match is a
	// data-integrity signal; callers decide how to report it.
	FindByCard(ctx context.Context, cardID types.CardID) ([]*model.User, error)

	// Put upserts a user keyed by its ID
	Put(ctx context.Context, user *model.User) error

	// List scans the whole collection
	List(ctx context.Context) ([]*model.User, error)

	// DeleteAll removes every user. Best-effort parallel; a partial
	// failure is reported as an overall failure without rollback.
	DeleteAll(ctx context.Context) error
}
