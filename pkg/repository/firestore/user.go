package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/seion-lab/kintai/pkg/domain/interfaces"
	"github.com/seion-lab/kintai/pkg/domain/model"
	"github.com/seion-lab/kintai/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const usersCollection = "users"

type userRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.UserRepository = &userRepository{}

func newUserRepository(client *firestore.Client) *userRepository {
	return &userRepository{
		client: client,
	}
}

// userDoc is the Firestore persistence model
type userDoc struct {
	ID         string    `firestore:"id"`
	Name       string    `firestore:"name"`
	CardUID    string    `firestore:"card_uid"`
	Department string    `firestore:"department"`
	CreatedAt  time.Time `firestore:"created_at"`
}

func (r *userRepository) collection() *firestore.CollectionRef {
	if r.collectionPrefix != "" {
		return r.client.Collection(r.collectionPrefix + usersCollection)
	}
	return r.client.Collection(usersCollection)
}

func (r *userRepository) toDoc(user *model.User) *userDoc {
	return &userDoc{
		ID:         string(user.ID),
		Name:       user.Name,
		CardUID:    string(user.CardID),
		Department: user.Department,
		CreatedAt:  user.CreatedAt,
	}
}

func (r *userRepository) fromDoc(doc *userDoc) *model.User {
	return &model.User{
		ID:         types.UserID(doc.ID),
		Name:       doc.Name,
		CardID:     types.CardID(doc.CardUID),
		Department: doc.Department,
		CreatedAt:  doc.CreatedAt,
	}
}

// Get retrieves a user by ID
func (r *userRepository) Get(ctx context.Context, id types.UserID) (*model.User, error) {
	doc, err := r.collection().Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "user not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get user", goerr.V("id", id))
	}

	var userDoc userDoc
	if err := doc.DataTo(&userDoc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal user", goerr.V("id", id))
	}

	return r.fromDoc(&userDoc), nil
}

// FindByCard queries users by card identifier equality
func (r *userRepository) FindByCard(ctx context.Context, cardID types.CardID) ([]*model.User, error) {
	iter := r.collection().Where("card_uid", "==", string(cardID)).Documents(ctx)
	defer iter.Stop()

	var users []*model.User
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to query users by card")
		}

		var userDoc userDoc
		if err := doc.DataTo(&userDoc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal user", goerr.V("docID", doc.Ref.ID))
		}

		users = append(users, r.fromDoc(&userDoc))
	}

	return users, nil
}

// Put upserts a user keyed by its ID
func (r *userRepository) Put(ctx context.Context, user *model.User) error {
	if _, err := r.collection().Doc(string(user.ID)).Set(ctx, r.toDoc(user)); err != nil {
		return goerr.Wrap(err, "failed to put user", goerr.V("id", user.ID))
	}
	return nil
}

// List retrieves all users
func (r *userRepository) List(ctx context.Context) ([]*model.User, error) {
	iter := r.collection().Documents(ctx)
	defer iter.Stop()

	var users []*model.User
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate users")
		}

		var userDoc userDoc
		if err := doc.DataTo(&userDoc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal user", goerr.V("docID", doc.Ref.ID))
		}

		users = append(users, r.fromDoc(&userDoc))
	}

	return users, nil
}

// DeleteAll deletes all users via BulkWriter. Best-effort parallel: a
// partial failure is reported as an overall failure without rolling back
// the deletes that landed.
func (r *userRepository) DeleteAll(ctx context.Context) error {
	iter := r.collection().Documents(ctx)
	defer iter.Stop()

	var refs []*firestore.DocumentRef
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return goerr.Wrap(err, "failed to iterate users for deletion")
		}
		refs = append(refs, doc.Ref)
	}

	if len(refs) == 0 {
		return nil
	}

	bulkWriter := r.client.BulkWriter(ctx)

	jobs := make([]*firestore.BulkWriterJob, 0, len(refs))
	for _, ref := range refs {
		job, err := bulkWriter.Delete(ref)
		if err != nil {
			bulkWriter.End()
			return goerr.Wrap(err, "failed to add Delete operation to bulk writer")
		}
		jobs = append(jobs, job)
	}

	bulkWriter.End()

	// Enqueue success only means the write was accepted locally; each
	// delete settles individually and its outcome arrives via the job.
	var failed int
	var lastErr error
	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			failed++
			lastErr = err
		}
	}
	if failed > 0 {
		return goerr.Wrap(lastErr, "failed to delete users",
			goerr.V("failed", failed), goerr.V("total", len(jobs)))
	}

	return nil
}
