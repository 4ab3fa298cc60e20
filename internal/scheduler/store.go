package scheduler

import (
	"context"
	"time"

	"backend-acting/internal/models"
)

// NewTask carries the fields for an acting_queue insert. Doctor, patient and
// acting type are required; the repository rejects inserts missing them.
type NewTask struct {
	PatientID   int64
	PatientName string
	ChartNo     string
	DoctorID    int64
	DoctorName  string
	ActingType  string
	OrderNum    int
	Source      string
	SourceID    *int64
	Memo        string
	WorkDate    string
}

// TaskPatch is a partial acting_queue update. Nil fields are left untouched.
// Timestamps are set-only; the lifecycle never clears them.
type TaskPatch struct {
	DoctorID    *int64
	DoctorName  *string
	PatientName *string
	ActingType  *string
	Memo        *string
	OrderNum    *int
	Status      *models.TaskStatus
	StartedAt   *time.Time
	CompletedAt *time.Time
	DurationSec *int64
}

// Store is the persistence boundary of the engine. The SQL repository is the
// production implementation; tests substitute an in-memory one.
type Store interface {
	ListActive(ctx context.Context, workDate string) ([]*models.ActingTask, error)
	ListForDoctor(ctx context.Context, doctorID int64, workDate string) ([]*models.ActingTask, error)
	ListByStatus(ctx context.Context, status models.TaskStatus, workDate string) ([]*models.ActingTask, error)
	GetTask(ctx context.Context, id int64) (*models.ActingTask, error)
	InsertTask(ctx context.Context, t NewTask) (int64, error)
	UpdateTask(ctx context.Context, id int64, patch TaskPatch) error

	ListDoctors(ctx context.Context) ([]models.Doctor, error)
	GetDoctorStatus(ctx context.Context, doctorID int64) (*models.DoctorStatus, error)
	ListDoctorStatuses(ctx context.Context) ([]*models.DoctorStatus, error)
	UpsertDoctorStatus(ctx context.Context, st models.DoctorStatus) error

	InsertRecord(ctx context.Context, rec models.ActingRecord) error
}
