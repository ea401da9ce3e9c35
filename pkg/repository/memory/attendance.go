package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/seion-lab/kintai/pkg/domain/model"
	"github.com/seion-lab/kintai/pkg/domain/types"
)

type attendanceRepository struct {
	mu      sync.RWMutex
	records map[types.RecordID]*model.TimeRecord
}

func newAttendanceRepository() *attendanceRepository {
	return &attendanceRepository{
		records: make(map[types.RecordID]*model.TimeRecord),
	}
}

// Get retrieves one record by its composite ID
func (r *attendanceRepository) Get(ctx context.Context, id types.RecordID) (*model.TimeRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[id]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "attendance record not found", goerr.V("id", id))
	}

	// Return a copy to prevent external modifications
	recordCopy := *record
	return &recordCopy, nil
}

// Put upserts the full record keyed by "{userID}_{date}"
func (r *attendanceRepository) Put(ctx context.Context, record *model.TimeRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	recordCopy := *record
	r.records[record.RecordID()] = &recordCopy
	return nil
}

// List retrieves all attendance records
func (r *attendanceRepository) List(ctx context.Context) ([]*model.TimeRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]*model.TimeRecord, 0, len(r.records))
	for _, record := range r.records {
		recordCopy := *record
		records = append(records, &recordCopy)
	}

	return records, nil
}

// Delete removes one record by its composite ID
func (r *attendanceRepository) Delete(ctx context.Context, id types.RecordID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.records, id)
	return nil
}

// DeleteAll deletes all attendance records
func (r *attendanceRepository) DeleteAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = make(map[types.RecordID]*model.TimeRecord)
	return nil
}
