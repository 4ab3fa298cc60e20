package models

import (
	"time"
)

type ActingTask struct {
	ID          int64      `json:"id"`
	PatientID   int64      `json:"patient_id"`
	PatientName string     `json:"patient_name"`
	ChartNo     string     `json:"chart_no"`
	DoctorID    int64      `json:"doctor_id"`
	DoctorName  string     `json:"doctor_name"`
	ActingType  string     `json:"acting_type"` // acupuncture, consultation, ...
	OrderNum    int        `json:"order_num"`
	Status      TaskStatus `json:"status"`
	Source      string     `json:"source"` // manual, reservation, ...
	SourceID    *int64     `json:"source_id"`
	Memo        string     `json:"memo"`
	WorkDate    string     `json:"work_date"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
	DurationSec *int64     `json:"duration_sec"`
}

type Doctor struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type DoctorStatus struct {
	DoctorID        int64       `json:"doctor_id"`
	DoctorName      string      `json:"doctor_name"`
	Status          DoctorState `json:"status"`
	CurrentActingID *int64      `json:"current_acting_id"`
	StatusUpdatedAt time.Time   `json:"status_updated_at"`
}

// DoctorQueueGroup is the per-doctor projection served to the board screens.
// Rebuilt from acting_queue + doctor_status on every refresh, never persisted.
type DoctorQueueGroup struct {
	Doctor        Doctor        `json:"doctor"`
	Status        DoctorStatus  `json:"status"`
	CurrentActing *ActingTask   `json:"current_acting"`
	Queue         []*ActingTask `json:"queue"`
	TotalWaiting  int           `json:"total_waiting"`
}

// ActingRecord is the immutable history row written when an acting completes.
// Feeds the per-doctor and daily duration statistics.
type ActingRecord struct {
	ID          int64     `json:"id"`
	PatientID   int64     `json:"patient_id"`
	PatientName string    `json:"patient_name"`
	ChartNo     string    `json:"chart_no"`
	DoctorID    int64     `json:"doctor_id"`
	DoctorName  string    `json:"doctor_name"`
	ActingType  string    `json:"acting_type"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	DurationSec int64     `json:"duration_sec"`
	WorkDate    string    `json:"work_date"`
}

type DoctorActingStats struct {
	DoctorID       int64   `json:"doctor_id"`
	DoctorName     string  `json:"doctor_name"`
	ActingType     string  `json:"acting_type"`
	TotalCount     int64   `json:"total_count"`
	AvgDurationSec float64 `json:"avg_duration_sec"`
	MinDurationSec int64   `json:"min_duration_sec"`
	MaxDurationSec int64   `json:"max_duration_sec"`
}

type DailyActingStats struct {
	WorkDate         string  `json:"work_date"`
	DoctorID         int64   `json:"doctor_id"`
	DoctorName       string  `json:"doctor_name"`
	TotalCount       int64   `json:"total_count"`
	TotalDurationSec int64   `json:"total_duration_sec"`
	AvgDurationSec   float64 `json:"avg_duration_sec"`
}
