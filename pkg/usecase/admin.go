package usecase

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/m-mizutani/goerr/v2"
	"github.com/seion-lab/kintai/pkg/domain/model"
	"github.com/seion-lab/kintai/pkg/domain/types"
	"golang.org/x/sync/errgroup"
)

// ListRecords scans the whole attendance collection, refreshes the record
// cache with the result and returns it sorted by date then user name.
func (uc *UseCases) ListRecords(ctx context.Context) ([]*model.TimeRecord, error) {
	records, err := uc.repo.Attendance().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list attendance records")
	}

	uc.cache.BulkLoadRecords(records)

	sort.Slice(records, func(i, j int) bool {
		if records[i].Date != records[j].Date {
			return records[i].Date < records[j].Date
		}
		return records[i].UserName < records[j].UserName
	})

	return records, nil
}

// ClearRecords deletes every attendance record remotely, then empties the
// record portion of the cache. Deletion is best-effort parallel: a partial
// failure is reported as a failure without rolling back the deletions that
// succeeded, and the cache is left as-is so callers re-run ListRecords to
// observe the true remaining state.
func (uc *UseCases) ClearRecords(ctx context.Context) error {
	if err := uc.repo.Attendance().DeleteAll(ctx); err != nil {
		return goerr.Wrap(err, "failed to clear attendance records")
	}

	uc.cache.InvalidateRecords()
	return nil
}

// RegenerateRecords replaces today's attendance with synthetic records for
// every known user, returning the number of users processed. Running it
// twice for the same date still yields exactly one record per user because
// records are keyed by (userID, date). This is a simulation utility and is
// rejected unless demo mode is enabled.
func (uc *UseCases) RegenerateRecords(ctx context.Context) (int, error) {
	if !uc.demoMode {
		return 0, ErrDemoDisabled
	}

	now := uc.clock()
	date := types.NewDateKey(now)

	// Drop existing records for the date first so users removed since the
	// last run leave no stale documents behind.
	existing, err := uc.repo.Attendance().List(ctx)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to list records for regeneration")
	}
	for _, record := range existing {
		if record.Date != date {
			continue
		}
		if err := uc.repo.Attendance().Delete(ctx, record.RecordID()); err != nil {
			return 0, goerr.Wrap(err, "failed to delete stale record", goerr.V("id", record.RecordID()))
		}
	}

	users := uc.cache.Users()
	for _, user := range users {
		record := syntheticRecord(user, date)
		if err := uc.repo.Attendance().Put(ctx, record); err != nil {
			return 0, goerr.Wrap(err, "failed to persist synthetic record", goerr.V("id", record.RecordID()))
		}
	}

	// Rebuild the cache from the store so it reflects exactly what was
	// written.
	records, err := uc.repo.Attendance().List(ctx)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to reload records after regeneration")
	}
	uc.cache.BulkLoadRecords(records)

	return len(users), nil
}

// ResetAll clears both collections and the whole cache. Returns an error
// when either deletion fails; successful deletions are not rolled back.
func (uc *UseCases) ResetAll(ctx context.Context) error {
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return uc.repo.User().DeleteAll(egCtx)
	})
	eg.Go(func() error {
		return uc.repo.Attendance().DeleteAll(egCtx)
	})
	if err := eg.Wait(); err != nil {
		return goerr.Wrap(err, "failed to reset stored data")
	}

	uc.cache.InvalidateAll()
	return nil
}

// syntheticRecord builds a plausible day: morning in 07-09, morning out
// 11-12, afternoon in 13-14, and roughly 70% of users already left between
// 16 and 18.
func syntheticRecord(user *model.User, date types.DateKey) *model.TimeRecord {
	record := &model.TimeRecord{
		UserID:    user.ID,
		UserName:  user.Name,
		Date:      date,
		TimeInAM:  randomClock(7, 9),
		TimeOutAM: randomClock(11, 12),
		TimeInPM:  randomClock(13, 14),
	}
	if rand.Float64() > 0.3 {
		record.TimeOutPM = randomClock(16, 18)
	}
	return record
}

func randomClock(minHour, maxHour int) string {
	hour := minHour + rand.IntN(maxHour-minHour+1)
	minute := rand.IntN(60)

	suffix := "AM"
	display := hour
	if hour >= 12 {
		suffix = "PM"
		if hour > 12 {
			display = hour - 12
		}
	}
	return fmt.Sprintf("%02d:%02d %s", display, minute, suffix)
}
