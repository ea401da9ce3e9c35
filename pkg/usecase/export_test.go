package usecase

import "context"

// WithSyncDispatch makes background remote writes synchronous so tests can
// assert repository state immediately after a scan.
func WithSyncDispatch() Option {
	return func(uc *UseCases) {
		uc.dispatch = func(ctx context.Context, handler func(ctx context.Context) error) {
			_ = handler(ctx)
		}
	}
}
