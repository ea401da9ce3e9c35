package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/seion-lab/kintai/pkg/domain/model"
	"github.com/seion-lab/kintai/pkg/domain/types"
	"github.com/seion-lab/kintai/pkg/utils/errutil"
)

const (
	msgMissingField      = "Missing required field: name and card ID must not be empty."
	msgAlreadyRegistered = "This RFID card is already registered to another user."
	msgUnverified        = "Could not verify card uniqueness. Please try again."
	msgRegisterFailed    = "Failed to register user due to system error."

	// registrationTimeout bounds the synchronous remote write. After it
	// fires the operation is treated as failed without knowing whether the
	// write eventually landed; callers re-verify by scanning the card.
	registrationTimeout = 5 * time.Second
)

// Register creates a new user/card binding. The remote store is
// authoritative for the uniqueness check: a stale cache miss is not
// trusted, and a failed remote check fails the registration rather than
// proceeding optimistically. The cache is only updated after the remote
// write is confirmed, so it never reports a user that does not durably
// exist.
func (uc *UseCases) Register(ctx context.Context, name string, cardID types.CardID, department string) *model.RegistrationResult {
	name = strings.TrimSpace(name)
	cardID = types.CardID(strings.TrimSpace(cardID.String()))

	if name == "" || cardID == "" {
		return &model.RegistrationResult{Success: false, Message: msgMissingField, Failure: model.RegistrationFailureInvalid}
	}

	if _, ok := uc.cache.UserByCard(cardID); ok {
		return &model.RegistrationResult{Success: false, Message: msgAlreadyRegistered, Failure: model.RegistrationFailureConflict}
	}

	matches, err := uc.repo.User().FindByCard(ctx, cardID)
	if err != nil {
		_ = errutil.Handle(ctx, goerr.Wrap(err, "uniqueness check failed", goerr.V("card", cardID)),
			"failed to verify card uniqueness")
		return &model.RegistrationResult{Success: false, Message: msgUnverified, Failure: model.RegistrationFailureUnverified}
	}
	if len(matches) > 0 {
		return &model.RegistrationResult{Success: false, Message: msgAlreadyRegistered, Failure: model.RegistrationFailureConflict}
	}

	user := model.NewUser(name, cardID, department)
	if err := user.Validate(); err != nil {
		_ = errutil.Handle(ctx, err, "constructed user failed validation")
		return &model.RegistrationResult{Success: false, Message: msgRegisterFailed, Failure: model.RegistrationFailureInternal}
	}

	putCtx, cancel := context.WithTimeout(ctx, registrationTimeout)
	defer cancel()

	if err := uc.repo.User().Put(putCtx, user); err != nil {
		_ = errutil.Handle(ctx, goerr.Wrap(err, "failed to persist user", goerr.V("id", user.ID)),
			"registration write failed")
		return &model.RegistrationResult{Success: false, Message: msgRegisterFailed, Failure: model.RegistrationFailureInternal}
	}

	uc.cache.PutUser(user)

	return &model.RegistrationResult{
		Success: true,
		Message: fmt.Sprintf("User %s registered successfully.", user.Name),
		User:    user,
	}
}
