package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/seion-lab/kintai/pkg/domain/interfaces"
	"github.com/seion-lab/kintai/pkg/domain/model"
	"github.com/seion-lab/kintai/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const attendanceCollection = "attendance"

type attendanceRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.AttendanceRepository = &attendanceRepository{}

func newAttendanceRepository(client *firestore.Client) *attendanceRepository {
	return &attendanceRepository{
		client: client,
	}
}

// recordDoc is the Firestore persistence model. Unset slots are stored as
// empty strings; the doc ID carries the composite key.
type recordDoc struct {
	UserID    string `firestore:"user_id"`
	UserName  string `firestore:"user_name"`
	Date      string `firestore:"date"`
	TimeInAM  string `firestore:"time_in_am"`
	TimeOutAM string `firestore:"time_out_am"`
	TimeInPM  string `firestore:"time_in_pm"`
	TimeOutPM string `firestore:"time_out_pm"`
}

func (r *attendanceRepository) collection() *firestore.CollectionRef {
	if r.collectionPrefix != "" {
		return r.client.Collection(r.collectionPrefix + attendanceCollection)
	}
	return r.client.Collection(attendanceCollection)
}

func (r *attendanceRepository) toDoc(record *model.TimeRecord) *recordDoc {
	return &recordDoc{
		UserID:    string(record.UserID),
		UserName:  record.UserName,
		Date:      string(record.Date),
		TimeInAM:  record.TimeInAM,
		TimeOutAM: record.TimeOutAM,
		TimeInPM:  record.TimeInPM,
		TimeOutPM: record.TimeOutPM,
	}
}

func (r *attendanceRepository) fromDoc(doc *recordDoc) *model.TimeRecord {
	return &model.TimeRecord{
		UserID:    types.UserID(doc.UserID),
		UserName:  doc.UserName,
		Date:      types.DateKey(doc.Date),
		TimeInAM:  doc.TimeInAM,
		TimeOutAM: doc.TimeOutAM,
		TimeInPM:  doc.TimeInPM,
		TimeOutPM: doc.TimeOutPM,
	}
}

// Get retrieves one record by its composite ID
func (r *attendanceRepository) Get(ctx context.Context, id types.RecordID) (*model.TimeRecord, error) {
	doc, err := r.collection().Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "attendance record not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get attendance record", goerr.V("id", id))
	}

	var rec recordDoc
	if err := doc.DataTo(&rec); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal attendance record", goerr.V("id", id))
	}

	return r.fromDoc(&rec), nil
}

// Put upserts the full record keyed by "{userID}_{date}" (full overwrite,
// last writer wins)
func (r *attendanceRepository) Put(ctx context.Context, record *model.TimeRecord) error {
	id := record.RecordID()
	if _, err := r.collection().Doc(string(id)).Set(ctx, r.toDoc(record)); err != nil {
		return goerr.Wrap(err, "failed to put attendance record", goerr.V("id", id))
	}
	return nil
}

// List retrieves all attendance records
func (r *attendanceRepository) List(ctx context.Context) ([]*model.TimeRecord, error) {
	iter := r.collection().Documents(ctx)
	defer iter.Stop()

	var records []*model.TimeRecord
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate attendance records")
		}

		var rec recordDoc
		if err := doc.DataTo(&rec); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal attendance record", goerr.V("docID", doc.Ref.ID))
		}

		records = append(records, r.fromDoc(&rec))
	}

	return records, nil
}

// Delete removes one record by its composite ID
func (r *attendanceRepository) Delete(ctx context.Context, id types.RecordID) error {
	if _, err := r.collection().Doc(string(id)).Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete attendance record", goerr.V("id", id))
	}
	return nil
}

// DeleteAll deletes all attendance records via BulkWriter (best-effort
// parallel; successful deletions are not rolled back on partial failure)
func (r *attendanceRepository) DeleteAll(ctx context.Context) error {
	iter := r.collection().Documents(ctx)
	defer iter.Stop()

	var refs []*firestore.DocumentRef
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return goerr.Wrap(err, "failed to iterate attendance records for deletion")
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
		return goerr.Wrap(lastErr, "failed to delete attendance records",
			goerr.V("failed", failed), goerr.V("total", len(jobs)))
	}

	return nil
}
