package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/m-mizutani/goerr/v2"
	"github.com/seion-lab/kintai/pkg/domain/model"
	"github.com/seion-lab/kintai/pkg/domain/types"
	"github.com/seion-lab/kintai/pkg/utils/errutil"
	"github.com/seion-lab/kintai/pkg/utils/logging"
)

const (
	msgNotRegistered = "This RFID card is not registered. Please contact administrator."
	msgSystemError   = "System error. Please try again or contact administrator."

	upsertRetryAttempts = 3
	upsertRetryDelay    = 200 * time.Millisecond
)

// Scan maps a presented card to a user and applies the next punch
// transition for today. It never returns an error: every outcome is a
// structured result for the scanner UI. The cache mutation is synchronous;
// the remote write is scheduled in the background and its failure is
// logged, never surfaced to the scanner.
func (uc *UseCases) Scan(ctx context.Context, cardID types.CardID) *model.ScanResult {
	user, err := uc.resolveCard(ctx, cardID)
	if err != nil {
		if errors.Is(err, ErrCardNotRegistered) {
			return model.NewScanFailure(msgNotRegistered)
		}
		_ = errutil.Handle(ctx, err, "failed to resolve card")
		return model.NewScanFailure(msgSystemError)
	}

	return uc.punch(ctx, user)
}

// resolveCard looks the card up in the cache first, then falls back to a
// remote query by card identifier. A remote hit populates the cache; the
// cache is never evicted here.
func (uc *UseCases) resolveCard(ctx context.Context, cardID types.CardID) (*model.User, error) {
	if user, ok := uc.cache.UserByCard(cardID); ok {
		return user, nil
	}

	matches, err := uc.repo.User().FindByCard(ctx, cardID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query user by card")
	}
	if len(matches) == 0 {
		return nil, ErrCardNotRegistered
	}
	if len(matches) > 1 {
		// Uniqueness invariant violated upstream. Not recoverable here;
		// take the first match and record the inconsistency.
		logging.From(ctx).Warn("card bound to multiple users",
			"card", cardID,
			"count", len(matches),
		)
	}

	user := matches[0]
	uc.cache.PutUser(user)
	return user, nil
}

// punch runs the four-slot state machine for (user, today). Transitions
// for the same key are serialized through the cache's keyed lock table so
// rapid repeated scans can never derive two divergent transitions from
// the same starting state.
func (uc *UseCases) punch(ctx context.Context, user *model.User) *model.ScanResult {
	now := uc.clock()
	recordID := types.NewRecordID(user.ID, types.NewDateKey(now))

	unlock := uc.cache.LockRecord(recordID)
	defer unlock()

	record, ok := uc.cache.Record(recordID)
	if !ok {
		// First scan of the day; the calendar rollover is implicit in the
		// date-keyed lookup.
		record, action := model.NewTimeRecord(user.ID, user.Name, now)
		uc.cache.PutRecord(record)
		uc.scheduleUpsert(ctx, record)
		return model.NewScanSuccess(action, user.Name, types.FormatClock(now), true)
	}

	firstOfDay := record.TimeInAM == ""

	action, applied := record.Punch(now)
	if !applied {
		return model.NewScanComplete(user.Name)
	}

	uc.cache.PutRecord(record)
	uc.scheduleUpsert(ctx, record)
	return model.NewScanSuccess(action, user.Name, types.FormatClock(now), firstOfDay)
}

// scheduleUpsert persists the record remotely without blocking the scan.
// At-least-once with bounded retry; a final failure is logged and left for
// the next full resync to reconcile.
func (uc *UseCases) scheduleUpsert(ctx context.Context, record *model.TimeRecord) {
	recordCopy := *record
	uc.dispatch(ctx, func(ctx context.Context) error {
		err := retry.Do(
			func() error {
				return uc.repo.Attendance().Put(ctx, &recordCopy)
			},
			retry.Context(ctx),
			retry.Attempts(upsertRetryAttempts),
			retry.Delay(upsertRetryDelay),
			retry.LastErrorOnly(true),
		)
		if err != nil {
			return goerr.Wrap(err, "failed to persist attendance record",
				goerr.V("id", recordCopy.RecordID()))
		}
		return nil
	})
}
