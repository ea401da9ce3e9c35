package usecase

import (
	"context"
	"time"

	"github.com/seion-lab/kintai/pkg/domain/interfaces"
	"github.com/seion-lab/kintai/pkg/service/cache"
	"github.com/seion-lab/kintai/pkg/utils/async"
)

// UseCases wires the attendance operations around a repository and the
// process-wide record cache.
type UseCases struct {
	repo  interfaces.Repository
	cache *cache.Cache

	clock    func() time.Time
	demoMode bool

	// dispatch runs background remote writes; replaced in tests to make
	// them synchronous
	dispatch func(ctx context.Context, handler func(ctx context.Context) error)
}

type Option func(*UseCases)

// WithClock injects the time source, used by tests to pin morning and
// afternoon instants
func WithClock(clock func() time.Time) Option {
	return func(uc *UseCases) {
		uc.clock = clock
	}
}

// WithDemoMode enables the synthetic data utilities (regenerate). They
// are simulation helpers, not production punch recording, and stay off
// unless explicitly requested.
func WithDemoMode(enabled bool) Option {
	return func(uc *UseCases) {
		uc.demoMode = enabled
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:     repo,
		cache:    cache.New(),
		clock:    time.Now,
		dispatch: async.Dispatch,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// Cache exposes the record cache for inspection
func (uc *UseCases) Cache() *cache.Cache {
	return uc.cache
}

// Initialize loads all users and attendance records from the remote store
// into the cache. Called once at startup before requests are accepted.
func (uc *UseCases) Initialize(ctx context.Context) error {
	users, err := uc.repo.User().List(ctx)
	if err != nil {
		return err
	}

	records, err := uc.repo.Attendance().List(ctx)
	if err != nil {
		return err
	}

	uc.cache.BulkLoadUsers(users)
	uc.cache.BulkLoadRecords(records)
	return nil
}
