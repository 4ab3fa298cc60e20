package repository

import (
	"context"

	"backend-acting/internal/models"
	"backend-acting/internal/scheduler"
)

// InsertRecord writes the immutable history row behind the duration stats.
func (r *QueueRepository) InsertRecord(ctx context.Context, rec models.ActingRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO acting_records
		(patient_id, patient_name, chart_no, doctor_id, doctor_name, acting_type,
		 started_at, completed_at, duration_sec, work_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.PatientID, rec.PatientName, rec.ChartNo, rec.DoctorID, rec.DoctorName,
		rec.ActingType, rec.StartedAt, rec.CompletedAt, rec.DurationSec, rec.WorkDate)
	if err != nil {
		return &scheduler.StoreError{Op: "insert acting record", Err: err}
	}

	return nil
}

// DoctorStats aggregates completed actings per doctor and acting type.
// doctorID nil means all doctors.
func (r *QueueRepository) DoctorStats(ctx context.Context, doctorID *int64) ([]models.DoctorActingStats, error) {
	query := `
		SELECT doctor_id, doctor_name, acting_type,
		       COUNT(*) AS total_count,
		       AVG(duration_sec) AS avg_duration_sec,
		       MIN(duration_sec) AS min_duration_sec,
		       MAX(duration_sec) AS max_duration_sec
		FROM acting_records
	`
	var args []any
	if doctorID != nil {
		query += ` WHERE doctor_id = ?`
		args = append(args, *doctorID)
	}
	query += ` GROUP BY doctor_id, doctor_name, acting_type`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &scheduler.StoreError{Op: "doctor stats", Err: err}
	}
	defer rows.Close()

	var stats []models.DoctorActingStats
	for rows.Next() {
		var s models.DoctorActingStats
		if err := rows.Scan(&s.DoctorID, &s.DoctorName, &s.ActingType,
			&s.TotalCount, &s.AvgDurationSec, &s.MinDurationSec, &s.MaxDurationSec); err != nil {
			return nil, &scheduler.StoreError{Op: "scan doctor stats", Err: err}
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, &scheduler.StoreError{Op: "doctor stats", Err: err}
	}

	return stats, nil
}

// DailyStats aggregates completed actings per clinic day in [startDate, endDate].
func (r *QueueRepository) DailyStats(ctx context.Context, startDate, endDate string, doctorID *int64) ([]models.DailyActingStats, error) {
	query := `
		SELECT work_date, doctor_id, doctor_name,
		       COUNT(*) AS total_count,
		       SUM(duration_sec) AS total_duration_sec,
		       AVG(duration_sec) AS avg_duration_sec
		FROM acting_records
		WHERE work_date >= ? AND work_date <= ?
	`
	args := []any{startDate, endDate}
	if doctorID != nil {
		query += ` AND doctor_id = ?`
		args = append(args, *doctorID)
	}
	query += ` GROUP BY work_date, doctor_id, doctor_name ORDER BY work_date DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &scheduler.StoreError{Op: "daily stats", Err: err}
	}
	defer rows.Close()

	var stats []models.DailyActingStats
	for rows.Next() {
		var s models.DailyActingStats
		if err := rows.Scan(&s.WorkDate, &s.DoctorID, &s.DoctorName,
			&s.TotalCount, &s.TotalDurationSec, &s.AvgDurationSec); err != nil {
			return nil, &scheduler.StoreError{Op: "scan daily stats", Err: err}
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, &scheduler.StoreError{Op: "daily stats", Err: err}
	}

	return stats, nil
}
