package scheduler

import (
	"errors"
	"fmt"

	"backend-acting/internal/models"
)

// NotFoundError - referenced task or doctor row is absent from the store.
type NotFoundError struct {
	Kind string // "acting", "doctor"
	ID   int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

// InvalidTransitionError - the requested change violates the status machine.
type InvalidTransitionError struct {
	TaskID int64
	From   models.TaskStatus
	To     models.TaskStatus
	Reason string
}

func (e *InvalidTransitionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("acting %d: %s", e.TaskID, e.Reason)
	}
	return fmt.Sprintf("acting %d: invalid transition %q -> %q", e.TaskID, e.From, e.To)
}

// DoctorBusyError - the doctor already has an acting in progress.
type DoctorBusyError struct {
	DoctorID        int64
	CurrentActingID int64
}

func (e *DoctorBusyError) Error() string {
	return fmt.Sprintf("doctor %d is busy with acting %d", e.DoctorID, e.CurrentActingID)
}

// StoreError - underlying persistence failure, timeouts included.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsInvalidTransition(err error) bool {
	var it *InvalidTransitionError
	return errors.As(err, &it)
}

func IsDoctorBusy(err error) bool {
	var db *DoctorBusyError
	return errors.As(err, &db)
}

func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
