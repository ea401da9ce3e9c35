package usecase_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/seion-lab/kintai/pkg/domain/interfaces"
	"github.com/seion-lab/kintai/pkg/domain/model"
	"github.com/seion-lab/kintai/pkg/domain/types"
	"github.com/seion-lab/kintai/pkg/repository/memory"
	"github.com/seion-lab/kintai/pkg/usecase"
)

func at(hour, min int) time.Time {
	return time.Date(2025, 4, 15, hour, min, 0, 0, time.Local)
}

// movableClock lets a test walk one day forward scan by scan
type movableClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *movableClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *movableClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func newScanFixture(t *testing.T, clock *movableClock) (*usecase.UseCases, *memory.Memory) {
	t.Helper()

	repo := memory.New()
	uc := usecase.New(repo,
		usecase.WithClock(clock.Now),
		usecase.WithSyncDispatch(),
	)

	result := uc.Register(context.Background(), "Alice", "10000001", "Engineering")
	gt.Bool(t, result.Success).True()

	return uc, repo
}

func TestScan_FullDaySequence(t *testing.T) {
	clock := &movableClock{now: at(8, 5)}
	uc, repo := newScanFixture(t, clock)
	ctx := context.Background()

	result := uc.Scan(ctx, "10000001")
	gt.Bool(t, result.Success).True()
	gt.Value(t, result.Action).Equal(types.ActionTimeInAM)
	gt.Value(t, result.Time).Equal("08:05 AM")
	gt.Value(t, result.UserName).Equal("Alice")

	clock.Set(at(12, 1))
	result = uc.Scan(ctx, "10000001")
	gt.Bool(t, result.Success).True()
	gt.Value(t, result.Action).Equal(types.ActionTimeInPM)

	clock.Set(at(17, 2))
	result = uc.Scan(ctx, "10000001")
	gt.Bool(t, result.Success).True()
	gt.Value(t, result.Action).Equal(types.ActionTimeOutPM)
	gt.Value(t, result.Time).Equal("05:02 PM")

	clock.Set(at(17, 10))
	result = uc.Scan(ctx, "10000001")
	gt.Bool(t, result.Success).False()
	gt.Value(t, result.Action).Equal(types.ActionComplete)

	// The durable record reflects every applied transition
	records, err := repo.Attendance().List(ctx)
	gt.NoError(t, err).Required()
	gt.Array(t, records).Length(1)
	gt.Value(t, records[0].TimeInAM).Equal("08:05 AM")
	gt.Value(t, records[0].TimeInPM).Equal("12:01 PM")
	gt.Value(t, records[0].TimeOutPM).Equal("05:02 PM")
	gt.Value(t, records[0].TimeOutAM).Equal("")
}

func TestScan_MorningPairThenAfternoonPair(t *testing.T) {
	clock := &movableClock{now: at(8, 5)}
	uc, _ := newScanFixture(t, clock)
	ctx := context.Background()

	result := uc.Scan(ctx, "10000001")
	gt.Value(t, result.Action).Equal(types.ActionTimeInAM)

	clock.Set(at(11, 58))
	result = uc.Scan(ctx, "10000001")
	gt.Bool(t, result.Success).True()
	gt.Value(t, result.Action).Equal(types.ActionTimeOutAM)
	gt.Value(t, result.Time).Equal("11:58 AM")

	clock.Set(at(13, 0))
	result = uc.Scan(ctx, "10000001")
	gt.Value(t, result.Action).Equal(types.ActionTimeInPM)
	gt.Value(t, result.Time).Equal("01:00 PM")

	clock.Set(at(17, 2))
	result = uc.Scan(ctx, "10000001")
	gt.Value(t, result.Action).Equal(types.ActionTimeOutPM)

	clock.Set(at(17, 10))
	result = uc.Scan(ctx, "10000001")
	gt.Bool(t, result.Success).False()
	gt.Value(t, result.Action).Equal(types.ActionComplete)
	gt.Value(t, result.Message).Equal("Alice, you have completed your DTR for today.")
}

func TestScan_AfternoonFirstLeavesAMUnset(t *testing.T) {
	clock := &movableClock{now: at(13, 30)}
	uc, _ := newScanFixture(t, clock)
	ctx := context.Background()

	result := uc.Scan(ctx, "10000001")
	gt.Bool(t, result.Success).True()
	gt.Value(t, result.Action).Equal(types.ActionTimeInPM)

	record, ok := uc.Cache().Record(types.NewRecordID(result2userID(t, uc), "2025-04-15"))
	gt.Bool(t, ok).True()
	gt.Value(t, record.TimeInAM).Equal("")
	gt.Value(t, record.TimeOutAM).Equal("")

	// Next afternoon scan closes the day
	clock.Set(at(17, 45))
	result = uc.Scan(ctx, "10000001")
	gt.Value(t, result.Action).Equal(types.ActionTimeOutPM)

	clock.Set(at(17, 50))
	result = uc.Scan(ctx, "10000001")
	gt.Bool(t, result.Success).False()
	gt.Value(t, result.Action).Equal(types.ActionComplete)
}

func result2userID(t *testing.T, uc *usecase.UseCases) types.UserID {
	t.Helper()
	users := uc.Cache().Users()
	gt.Array(t, users).Length(1)
	return users[0].ID
}

func TestScan_MorningCorrectionOverwrite(t *testing.T) {
	clock := &movableClock{now: at(7, 55)}
	uc, _ := newScanFixture(t, clock)
	ctx := context.Background()

	result := uc.Scan(ctx, "10000001")
	gt.Value(t, result.Action).Equal(types.ActionTimeInAM)

	clock.Set(at(9, 30))
	result = uc.Scan(ctx, "10000001")
	gt.Value(t, result.Action).Equal(types.ActionTimeOutAM)

	// A third morning scan corrects Time In AM instead of failing
	clock.Set(at(10, 15))
	result = uc.Scan(ctx, "10000001")
	gt.Bool(t, result.Success).True()
	gt.Value(t, result.Action).Equal(types.ActionTimeInAMUpdated)
	gt.Value(t, result.Time).Equal("10:15 AM")

	record, ok := uc.Cache().Record(types.NewRecordID(result2userID(t, uc), "2025-04-15"))
	gt.Bool(t, ok).True()
	gt.Value(t, record.TimeInAM).Equal("10:15 AM")
	gt.Value(t, record.TimeOutAM).Equal("09:30 AM")
}

func TestScan_UnregisteredCard(t *testing.T) {
	clock := &movableClock{now: at(8, 5)}
	uc, repo := newScanFixture(t, clock)
	ctx := context.Background()

	result := uc.Scan(ctx, "99999999")
	gt.Bool(t, result.Success).False()
	gt.Value(t, result.Action).Equal(types.PunchAction(""))
	gt.Bool(t, len(result.Message) > 0).True()

	// Message names the condition for the scanner display
	gt.String(t, strings.ToLower(result.Message)).Contains("not registered")

	// No record was created anywhere
	records, err := repo.Attendance().List(ctx)
	gt.NoError(t, err).Required()
	gt.Array(t, records).Length(0)
}

func TestScan_CacheMissFallsBackToStore(t *testing.T) {
	clock := &movableClock{now: at(8, 5)}
	ctx := context.Background()

	repo := memory.New()
	user := model.NewUser("Bob", "20000002", "Ops")
	gt.NoError(t, repo.User().Put(ctx, user)).Required()

	// Fresh use cases with an empty cache: resolution must hit the store
	uc := usecase.New(repo,
		usecase.WithClock(clock.Now),
		usecase.WithSyncDispatch(),
	)

	result := uc.Scan(ctx, "20000002")
	gt.Bool(t, result.Success).True()
	gt.Value(t, result.UserName).Equal("Bob")

	// The hit populated the cache
	cached, ok := uc.Cache().UserByCard("20000002")
	gt.Bool(t, ok).True()
	gt.Value(t, cached.ID).Equal(user.ID)
}

// unreliableRepo swaps in an attendance repository whose writes fail
type unreliableRepo struct {
	interfaces.Repository
	attendance interfaces.AttendanceRepository
}

func (r *unreliableRepo) Attendance() interfaces.AttendanceRepository {
	return r.attendance
}

type failingAttendanceRepo struct {
	interfaces.AttendanceRepository
	putErr error
}

func (r *failingAttendanceRepo) Put(ctx context.Context, record *model.TimeRecord) error {
	if r.putErr != nil {
		return r.putErr
	}
	return r.AttendanceRepository.Put(ctx, record)
}

func TestScan_RemoteWriteFailureNotSurfaced(t *testing.T) {
	clock := &movableClock{now: at(8, 5)}
	ctx := context.Background()

	inner := memory.New()
	repo := &unreliableRepo{
		Repository: inner,
		attendance: &failingAttendanceRepo{
			AttendanceRepository: inner.Attendance(),
			putErr:               errors.New("connection refused"),
		},
	}

	uc := usecase.New(repo,
		usecase.WithClock(clock.Now),
		usecase.WithSyncDispatch(),
	)
	result := uc.Register(ctx, "Alice", "10000001", "Engineering")
	gt.Bool(t, result.Success).True()

	// The durable write fails on every retry; the scanner still gets a
	// full success and the cache carries the applied transition.
	scan := uc.Scan(ctx, "10000001")
	gt.Bool(t, scan.Success).True()
	gt.Value(t, scan.Action).Equal(types.ActionTimeInAM)
	gt.Value(t, scan.Time).Equal("08:05 AM")

	record, ok := uc.Cache().Record(types.NewRecordID(result.User.ID, "2025-04-15"))
	gt.Bool(t, ok).True()
	gt.Value(t, record.TimeInAM).Equal("08:05 AM")

	records, err := inner.Attendance().List(ctx)
	gt.NoError(t, err).Required()
	gt.Array(t, records).Length(0)

	// The day continues from the cached state despite the store falling
	// behind
	clock.Set(at(11, 58))
	scan = uc.Scan(ctx, "10000001")
	gt.Bool(t, scan.Success).True()
	gt.Value(t, scan.Action).Equal(types.ActionTimeOutAM)
}

func TestScan_ConcurrentScansSerialized(t *testing.T) {
	clock := &movableClock{now: at(8, 5)}
	uc, _ := newScanFixture(t, clock)
	ctx := context.Background()

	// Rapid repeated scans from a jittery reader: exactly one transition
	// must win the first slot, the others stack up behind the keyed lock
	// and apply in sequence.
	const n = 8
	var wg sync.WaitGroup
	results := make([]*model.ScanResult, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = uc.Scan(ctx, "10000001")
		}(i)
	}
	wg.Wait()

	var inAM, outAM, updated, failed int
	for _, result := range results {
		switch result.Action {
		case types.ActionTimeInAM:
			inAM++
		case types.ActionTimeOutAM:
			outAM++
		case types.ActionTimeInAMUpdated:
			updated++
		case types.ActionComplete:
			failed++
		}
	}

	// One creation, one close, and every further morning scan lands on the
	// correction transition; nothing is lost or doubled.
	gt.Number(t, inAM).Equal(1)
	gt.Number(t, outAM).Equal(1)
	gt.Number(t, updated).Equal(n - 2)
	gt.Number(t, failed).Equal(0)

	record, ok := uc.Cache().Record(types.NewRecordID(result2userID(t, uc), "2025-04-15"))
	gt.Bool(t, ok).True()
	gt.Bool(t, record.TimeInAM != "").True()
	gt.Bool(t, record.TimeOutAM != "").True()
}

func TestScan_DayRollover(t *testing.T) {
	clock := &movableClock{now: at(17, 0)}
	uc, _ := newScanFixture(t, clock)
	ctx := context.Background()

	result := uc.Scan(ctx, "10000001")
	gt.Value(t, result.Action).Equal(types.ActionTimeInPM)

	// Next morning starts a fresh record; nothing carries over
	clock.Set(time.Date(2025, 4, 16, 8, 0, 0, 0, time.Local))
	result = uc.Scan(ctx, "10000001")
	gt.Bool(t, result.Success).True()
	gt.Value(t, result.Action).Equal(types.ActionTimeInAM)

	gt.Array(t, uc.Cache().Records()).Length(2)
}
