package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/seion-lab/kintai/pkg/domain/interfaces"
	"github.com/seion-lab/kintai/pkg/domain/model"
	"github.com/seion-lab/kintai/pkg/domain/types"
	"github.com/seion-lab/kintai/pkg/repository/memory"
	"github.com/seion-lab/kintai/pkg/usecase"
)

func TestRegister_Success(t *testing.T) {
	repo := memory.New()
	uc := usecase.New(repo)
	ctx := context.Background()

	result := uc.Register(ctx, "Jane Smith", "87654321", "HR")
	gt.Bool(t, result.Success).True()
	gt.Value(t, result.User).NotNil()
	gt.Value(t, result.User.Name).Equal("Jane Smith")
	gt.Value(t, result.User.CardID).Equal(types.CardID("87654321"))

	// Persisted remotely
	matches, err := repo.User().FindByCard(ctx, "87654321")
	gt.NoError(t, err).Required()
	gt.Array(t, matches).Length(1)

	// And cached for the scan hot path
	cached, ok := uc.Cache().UserByCard("87654321")
	gt.Bool(t, ok).True()
	gt.Value(t, cached.ID).Equal(result.User.ID)
}

func TestRegister_TrimsInput(t *testing.T) {
	repo := memory.New()
	uc := usecase.New(repo)
	ctx := context.Background()

	result := uc.Register(ctx, "  Mike Johnson  ", " 11223344 ", " Finance ")
	gt.Bool(t, result.Success).True()
	gt.Value(t, result.User.Name).Equal("Mike Johnson")
	gt.Value(t, result.User.CardID).Equal(types.CardID("11223344"))
	gt.Value(t, result.User.Department).Equal("Finance")
}

func TestRegister_MissingFields(t *testing.T) {
	repo := memory.New()
	uc := usecase.New(repo)
	ctx := context.Background()

	tests := []struct {
		name     string
		userName string
		card     types.CardID
	}{
		{"empty name", "", "12345678"},
		{"empty card", "John", ""},
		{"whitespace name", "   ", "12345678"},
		{"whitespace card", "John", "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := uc.Register(ctx, tt.userName, tt.card, "")
			gt.Bool(t, result.Success).False()
			gt.String(t, strings.ToLower(result.Message)).Contains("missing required field")
			gt.Value(t, result.Failure).Equal(model.RegistrationFailureInvalid)
		})
	}

	users, err := repo.User().List(ctx)
	gt.NoError(t, err).Required()
	gt.Array(t, users).Length(0)
}

func TestRegister_DuplicateCardInCache(t *testing.T) {
	repo := memory.New()
	uc := usecase.New(repo)
	ctx := context.Background()

	first := uc.Register(ctx, "John Doe", "12345678", "IT")
	gt.Bool(t, first.Success).True()

	second := uc.Register(ctx, "Impostor", "12345678", "IT")
	gt.Bool(t, second.Success).False()
	gt.String(t, strings.ToLower(second.Message)).Contains("already registered")
	gt.Value(t, second.Failure).Equal(model.RegistrationFailureConflict)

	// The existing binding is untouched: resolving the card still yields
	// the original user
	cached, ok := uc.Cache().UserByCard("12345678")
	gt.Bool(t, ok).True()
	gt.Value(t, cached.Name).Equal("John Doe")

	users, err := repo.User().List(ctx)
	gt.NoError(t, err).Required()
	gt.Array(t, users).Length(1)
}

func TestRegister_DuplicateCardInStoreOnly(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	// Bind the card remotely without going through this process's cache,
	// simulating a registration from another session
	existing := model.NewUser("John Doe", "12345678", "IT")
	gt.NoError(t, repo.User().Put(ctx, existing)).Required()

	uc := usecase.New(repo)
	result := uc.Register(ctx, "Impostor", "12345678", "IT")
	gt.Bool(t, result.Success).False()
	gt.String(t, strings.ToLower(result.Message)).Contains("already registered")
}

// failingUserRepo injects an error into the uniqueness query
type failingUserRepo struct {
	interfaces.UserRepository
	findErr error
}

func (r *failingUserRepo) FindByCard(ctx context.Context, cardID types.CardID) ([]*model.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	return r.UserRepository.FindByCard(ctx, cardID)
}

type failingRepo struct {
	interfaces.Repository
	user interfaces.UserRepository
}

func (r *failingRepo) User() interfaces.UserRepository {
	return r.user
}

func TestRegister_FailsClosedWhenStoreUnavailable(t *testing.T) {
	inner := memory.New()
	repo := &failingRepo{
		Repository: inner,
		user: &failingUserRepo{
			UserRepository: inner.User(),
			findErr:        errors.New("connection refused"),
		},
	}

	uc := usecase.New(repo)
	ctx := context.Background()

	result := uc.Register(ctx, "Jane Smith", "87654321", "HR")
	gt.Bool(t, result.Success).False()
	gt.String(t, strings.ToLower(result.Message)).Contains("could not verify")
	gt.Value(t, result.Failure).Equal(model.RegistrationFailureUnverified)

	// Nothing was committed anywhere
	users, err := inner.User().List(ctx)
	gt.NoError(t, err).Required()
	gt.Array(t, users).Length(0)

	_, ok := uc.Cache().UserByCard("87654321")
	gt.Bool(t, ok).False()
}

// failingPutRepo injects an error into the persistence write
type failingPutRepo struct {
	interfaces.UserRepository
	putErr error
}

func (r *failingPutRepo) Put(ctx context.Context, user *model.User) error {
	if r.putErr != nil {
		return r.putErr
	}
	return r.UserRepository.Put(ctx, user)
}

func TestRegister_NoCacheInsertOnPersistFailure(t *testing.T) {
	inner := memory.New()
	repo := &failingRepo{
		Repository: inner,
		user: &failingPutRepo{
			UserRepository: inner.User(),
			putErr:         errors.New("deadline exceeded"),
		},
	}

	uc := usecase.New(repo)
	ctx := context.Background()

	result := uc.Register(ctx, "Jane Smith", "87654321", "HR")
	gt.Bool(t, result.Success).False()
	gt.Value(t, result.Failure).Equal(model.RegistrationFailureInternal)

	// Confirmation-first: the cache must not report a user that does not
	// durably exist
	_, ok := uc.Cache().UserByCard("87654321")
	gt.Bool(t, ok).False()
}
