package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"backend-acting/internal/models"
	"backend-acting/internal/scheduler"
)

// QueueRepository is the only code that touches the acting tables. It does
// pure shape translation - no queue rules live here, the engine owns those.
type QueueRepository struct {
	db *sql.DB
}

func NewQueueRepository(db *sql.DB) *QueueRepository {
	return &QueueRepository{db: db}
}

// work_date is selected through DATE_FORMAT: with parseTime=true the driver
// hands a bare DATE column over as time.Time, which stringifies to RFC3339
// and no longer matches the '2006-01-02' keys used in WHERE work_date = ?.
const taskColumns = `id, patient_id, patient_name, chart_no, doctor_id, doctor_name,
	acting_type, order_num, status, source, source_id, memo,
	DATE_FORMAT(work_date, '%Y-%m-%d') AS work_date,
	created_at, started_at, completed_at, duration_sec`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.ActingTask, error) {
	var t models.ActingTask
	var sourceID, durationSec sql.NullInt64
	var startedAt, completedAt sql.NullTime

	err := row.Scan(
		&t.ID, &t.PatientID, &t.PatientName, &t.ChartNo, &t.DoctorID, &t.DoctorName,
		&t.ActingType, &t.OrderNum, &t.Status, &t.Source, &sourceID, &t.Memo, &t.WorkDate,
		&t.CreatedAt, &startedAt, &completedAt, &durationSec,
	)
	if err != nil {
		return nil, err
	}

	if sourceID.Valid {
		t.SourceID = &sourceID.Int64
	}
	if startedAt.Valid {
		t.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		t.CompletedAt = &completedAt.Time
	}
	if durationSec.Valid {
		t.DurationSec = &durationSec.Int64
	}

	return &t, nil
}

func (r *QueueRepository) listTasks(ctx context.Context, where string, args ...any) ([]*models.ActingTask, error) {
	query := fmt.Sprintf(`SELECT %s FROM acting_queue WHERE %s`, taskColumns, where)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &scheduler.StoreError{Op: "list actings", Err: err}
	}
	defer rows.Close()

	var tasks []*models.ActingTask
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, &scheduler.StoreError{Op: "scan acting", Err: err}
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, &scheduler.StoreError{Op: "list actings", Err: err}
	}

	return tasks, nil
}

// ListActive returns the waiting and in-progress actings of one clinic day,
// all doctors.
func (r *QueueRepository) ListActive(ctx context.Context, workDate string) ([]*models.ActingTask, error) {
	return r.listTasks(ctx,
		`work_date = ? AND status IN ('waiting', 'acting') ORDER BY doctor_id, order_num, created_at, id`,
		workDate)
}

func (r *QueueRepository) ListForDoctor(ctx context.Context, doctorID int64, workDate string) ([]*models.ActingTask, error) {
	return r.listTasks(ctx,
		`doctor_id = ? AND work_date = ? AND status IN ('waiting', 'acting') ORDER BY order_num, created_at, id`,
		doctorID, workDate)
}

func (r *QueueRepository) ListByStatus(ctx context.Context, status models.TaskStatus, workDate string) ([]*models.ActingTask, error) {
	return r.listTasks(ctx,
		`status = ? AND work_date = ? ORDER BY doctor_id, order_num, created_at, id`,
		string(status), workDate)
}

func (r *QueueRepository) GetTask(ctx context.Context, id int64) (*models.ActingTask, error) {
	query := fmt.Sprintf(`SELECT %s FROM acting_queue WHERE id = ?`, taskColumns)

	t, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &scheduler.NotFoundError{Kind: "acting", ID: id}
	}
	if err != nil {
		return nil, &scheduler.StoreError{Op: "get acting", Err: err}
	}

	return t, nil
}

func (r *QueueRepository) InsertTask(ctx context.Context, t scheduler.NewTask) (int64, error) {
	if t.DoctorID == 0 || t.ActingType == "" || (t.PatientID == 0 && t.PatientName == "") {
		return 0, &scheduler.StoreError{
			Op:  "insert acting",
			Err: errors.New("doctor, patient and acting type are required"),
		}
	}

	var sourceID any
	if t.SourceID != nil {
		sourceID = *t.SourceID
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO acting_queue
		(patient_id, patient_name, chart_no, doctor_id, doctor_name, acting_type,
		 order_num, status, source, source_id, memo, work_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 'waiting', ?, ?, ?, ?, NOW())
	`, t.PatientID, t.PatientName, t.ChartNo, t.DoctorID, t.DoctorName, t.ActingType,
		t.OrderNum, t.Source, sourceID, t.Memo, t.WorkDate)
	if err != nil {
		return 0, &scheduler.StoreError{Op: "insert acting", Err: err}
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, &scheduler.StoreError{Op: "insert acting", Err: err}
	}

	return id, nil
}

// UpdateTask applies a partial update. The id is verified first because a
// no-op UPDATE reports zero affected rows on MySQL and would look like a
// missing row.
func (r *QueueRepository) UpdateTask(ctx context.Context, id int64, patch scheduler.TaskPatch) error {
	var exists int64
	err := r.db.QueryRowContext(ctx, `SELECT id FROM acting_queue WHERE id = ?`, id).Scan(&exists)
	if err == sql.ErrNoRows {
		return &scheduler.NotFoundError{Kind: "acting", ID: id}
	}
	if err != nil {
		return &scheduler.StoreError{Op: "update acting", Err: err}
	}

	var sets []string
	var args []any

	if patch.DoctorID != nil {
		sets = append(sets, "doctor_id = ?")
		args = append(args, *patch.DoctorID)
	}
	if patch.DoctorName != nil {
		sets = append(sets, "doctor_name = ?")
		args = append(args, *patch.DoctorName)
	}
	if patch.PatientName != nil {
		sets = append(sets, "patient_name = ?")
		args = append(args, *patch.PatientName)
	}
	if patch.ActingType != nil {
		sets = append(sets, "acting_type = ?")
		args = append(args, *patch.ActingType)
	}
	if patch.Memo != nil {
		sets = append(sets, "memo = ?")
		args = append(args, *patch.Memo)
	}
	if patch.OrderNum != nil {
		sets = append(sets, "order_num = ?")
		args = append(args, *patch.OrderNum)
	}
	if patch.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*patch.Status))
	}
	if patch.StartedAt != nil {
		sets = append(sets, "started_at = ?")
		args = append(args, *patch.StartedAt)
	}
	if patch.CompletedAt != nil {
		sets = append(sets, "completed_at = ?")
		args = append(args, *patch.CompletedAt)
	}
	if patch.DurationSec != nil {
		sets = append(sets, "duration_sec = ?")
		args = append(args, *patch.DurationSec)
	}

	if len(sets) == 0 {
		return nil
	}

	query := fmt.Sprintf(`UPDATE acting_queue SET %s WHERE id = ?`, strings.Join(sets, ", "))
	args = append(args, id)

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return &scheduler.StoreError{Op: "update acting", Err: err}
	}

	return nil
}

func (r *QueueRepository) ListDoctors(ctx context.Context) ([]models.Doctor, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name FROM doctors
		WHERE is_active = 1
		ORDER BY display_order, id
	`)
	if err != nil {
		return nil, &scheduler.StoreError{Op: "list doctors", Err: err}
	}
	defer rows.Close()

	var doctors []models.Doctor
	for rows.Next() {
		var d models.Doctor
		if err := rows.Scan(&d.ID, &d.Name); err != nil {
			return nil, &scheduler.StoreError{Op: "scan doctor", Err: err}
		}
		doctors = append(doctors, d)
	}
	if err := rows.Err(); err != nil {
		return nil, &scheduler.StoreError{Op: "list doctors", Err: err}
	}

	return doctors, nil
}

func scanDoctorStatus(row rowScanner) (*models.DoctorStatus, error) {
	var st models.DoctorStatus
	var current sql.NullInt64

	err := row.Scan(&st.DoctorID, &st.DoctorName, &st.Status, &current, &st.StatusUpdatedAt)
	if err != nil {
		return nil, err
	}

	if current.Valid {
		st.CurrentActingID = &current.Int64
	}

	return &st, nil
}

// GetDoctorStatus returns nil without error when the doctor has no status
// row yet - rows are created lazily on first write.
func (r *QueueRepository) GetDoctorStatus(ctx context.Context, doctorID int64) (*models.DoctorStatus, error) {
	st, err := scanDoctorStatus(r.db.QueryRowContext(ctx, `
		SELECT doctor_id, doctor_name, status, current_acting_id, status_updated_at
		FROM doctor_status WHERE doctor_id = ?
	`, doctorID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, &scheduler.StoreError{Op: "get doctor status", Err: err}
	}

	return st, nil
}

func (r *QueueRepository) ListDoctorStatuses(ctx context.Context) ([]*models.DoctorStatus, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT doctor_id, doctor_name, status, current_acting_id, status_updated_at
		FROM doctor_status ORDER BY doctor_name
	`)
	if err != nil {
		return nil, &scheduler.StoreError{Op: "list doctor statuses", Err: err}
	}
	defer rows.Close()

	var statuses []*models.DoctorStatus
	for rows.Next() {
		st, err := scanDoctorStatus(rows)
		if err != nil {
			return nil, &scheduler.StoreError{Op: "scan doctor status", Err: err}
		}
		statuses = append(statuses, st)
	}
	if err := rows.Err(); err != nil {
		return nil, &scheduler.StoreError{Op: "list doctor statuses", Err: err}
	}

	return statuses, nil
}

func (r *QueueRepository) UpsertDoctorStatus(ctx context.Context, st models.DoctorStatus) error {
	var current any
	if st.CurrentActingID != nil {
		current = *st.CurrentActingID
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO doctor_status (doctor_id, doctor_name, status, current_acting_id, status_updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			doctor_name = VALUES(doctor_name),
			status = VALUES(status),
			current_acting_id = VALUES(current_acting_id),
			status_updated_at = VALUES(status_updated_at)
	`, st.DoctorID, st.DoctorName, string(st.Status), current, st.StatusUpdatedAt)
	if err != nil {
		return &scheduler.StoreError{Op: "upsert doctor status", Err: err}
	}

	return nil
}
