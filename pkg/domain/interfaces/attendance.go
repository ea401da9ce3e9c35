package interfaces

import (
	"context"

	"github.com/seion-lab/kintai/pkg/domain/model"
	"github.com/seion-lab/kintai/pkg/domain/types"
)

// AttendanceRepository persists daily punch records in the "attendance"
// collection, keyed by "{userID}_{date}".
type AttendanceRepository interface {
	// Get retrieves one record by its composite ID
	Get(ctx context.Context, id types.RecordID) (*model.TimeRecord, error)

	// Put upserts the full record (last writer wins)
	Put(ctx context.Context, record *model.TimeRecord) error

	// List scans the whole collection
	List(ctx context.Context) ([]*model.TimeRecord, error)

	// Delete removes one record by its composite ID
	Delete(ctx context.Context, id types.RecordID) error

	// DeleteAll removes every record. Best-effort parallel; a partial
	// failure is reported as an overall failure without rollback.
	DeleteAll(ctx context.Context) error
}
