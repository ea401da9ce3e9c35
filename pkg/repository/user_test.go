package repository_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/seion-lab/kintai/pkg/domain/interfaces"
	"github.com/seion-lab/kintai/pkg/domain/model"
	"github.com/seion-lab/kintai/pkg/domain/types"
	"github.com/seion-lab/kintai/pkg/repository/firestore"
	"github.com/seion-lab/kintai/pkg/repository/memory"
)

func newFirestoreRepo(t *testing.T) interfaces.Repository {
	t.Helper()

	projectID := os.Getenv("FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("FIRESTORE_PROJECT_ID not set")
	}

	prefix := fmt.Sprintf("test-%d-", time.Now().UnixNano())
	repo, err := firestore.New(context.Background(), projectID, os.Getenv("FIRESTORE_DATABASE_ID"),
		firestore.WithCollectionPrefix(prefix))
	gt.NoError(t, err).Required()

	t.Cleanup(func() {
		ctx := context.Background()
		_ = repo.User().DeleteAll(ctx)
		_ = repo.Attendance().DeleteAll(ctx)
		_ = repo.Close()
	})
	return repo
}

func newTestUser(name string, cardID types.CardID) *model.User {
	return &model.User{
		ID:        types.NewUserID(),
		Name:      name,
		CardID:    cardID,
		CreatedAt: time.Now().Truncate(time.Millisecond),
	}
}

func runUserRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Put and Get round-trips a user", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		user := newTestUser("Alice", "10000001")
		user.Department = "Engineering"
		gt.NoError(t, repo.User().Put(ctx, user)).Required()

		got, err := repo.User().Get(ctx, user.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.ID).Equal(user.ID)
		gt.Value(t, got.Name).Equal("Alice")
		gt.Value(t, got.CardID).Equal(types.CardID("10000001"))
		gt.Value(t, got.Department).Equal("Engineering")
		gt.Bool(t, got.CreatedAt.IsZero()).False()
	})

	t.Run("Get returns error for unknown user", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.User().Get(ctx, types.NewUserID())
		gt.Value(t, err).NotNil()
	})

	t.Run("Put with same ID overwrites", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		user := newTestUser("Alice", "10000001")
		gt.NoError(t, repo.User().Put(ctx, user)).Required()

		user.Name = "Alice B."
		gt.NoError(t, repo.User().Put(ctx, user)).Required()

		got, err := repo.User().Get(ctx, user.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Name).Equal("Alice B.")

		users, err := repo.User().List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, users).Length(1)
	})

	t.Run("FindByCard matches only the bound card", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		alice := newTestUser("Alice", "10000001")
		bob := newTestUser("Bob", "10000002")
		gt.NoError(t, repo.User().Put(ctx, alice)).Required()
		gt.NoError(t, repo.User().Put(ctx, bob)).Required()

		matches, err := repo.User().FindByCard(ctx, "10000002")
		gt.NoError(t, err).Required()
		gt.Array(t, matches).Length(1)
		gt.Value(t, matches[0].ID).Equal(bob.ID)

		none, err := repo.User().FindByCard(ctx, "99999999")
		gt.NoError(t, err).Required()
		gt.Array(t, none).Length(0)
	})

	t.Run("FindByCard surfaces duplicate bindings", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		gt.NoError(t, repo.User().Put(ctx, newTestUser("Alice", "10000001"))).Required()
		gt.NoError(t, repo.User().Put(ctx, newTestUser("Impostor", "10000001"))).Required()

		matches, err := repo.User().FindByCard(ctx, "10000001")
		gt.NoError(t, err).Required()
		gt.Array(t, matches).Length(2)
	})

	t.Run("List returns all users", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		for i := range 3 {
			user := newTestUser(fmt.Sprintf("User %d", i), types.CardID(fmt.Sprintf("1000000%d", i)))
			gt.NoError(t, repo.User().Put(ctx, user)).Required()
		}

		users, err := repo.User().List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, users).Length(3)
	})

	t.Run("DeleteAll empties the collection", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		gt.NoError(t, repo.User().Put(ctx, newTestUser("Alice", "10000001"))).Required()
		gt.NoError(t, repo.User().Put(ctx, newTestUser("Bob", "10000002"))).Required()

		gt.NoError(t, repo.User().DeleteAll(ctx)).Required()

		users, err := repo.User().List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, users).Length(0)
	})
}

func TestUserRepository_Memory(t *testing.T) {
	runUserRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestUserRepository_Firestore(t *testing.T) {
	runUserRepositoryTest(t, newFirestoreRepo)
}
