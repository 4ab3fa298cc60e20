package scheduler

import (
	"context"
	"sort"
	"time"

	"backend-acting/internal/helper"
	"backend-acting/internal/models"
)

// Engine owns the acting-queue state machine. Every operation re-reads the
// affected rows before deciding anything: validation always runs against data
// fetched for that call, never against a cached snapshot. There is no lock
// spanning the read and the write - two clients can race on the same queue
// and the later write wins. That is the accepted trade-off of the shared
// polled store; the poller's suppression window only masks the visibility.
type Engine struct {
	store Store
	now   func() time.Time
}

func New(store Store) *Engine {
	return &Engine{store: store, now: time.Now}
}

// AddRequest - fields for a new acting. OrderNum <= 0 means append to the
// end of the doctor's queue.
type AddRequest struct {
	DoctorID    int64
	DoctorName  string
	PatientID   int64
	PatientName string
	ChartNo     string
	ActingType  string
	Memo        string
	Source      string
	SourceID    *int64
	OrderNum    int
}

// Add appends a task to the end of the doctor's waiting list.
func (e *Engine) Add(ctx context.Context, req AddRequest) (*models.ActingTask, error) {
	workDate := helper.WorkDate(e.now())

	orderNum := req.OrderNum
	if orderNum <= 0 {
		queue, err := e.store.ListForDoctor(ctx, req.DoctorID, workDate)
		if err != nil {
			return nil, err
		}
		orderNum = maxOrderNum(queue) + 1
	}

	source := req.Source
	if source == "" {
		source = "manual"
	}

	id, err := e.store.InsertTask(ctx, NewTask{
		PatientID:   req.PatientID,
		PatientName: req.PatientName,
		ChartNo:     req.ChartNo,
		DoctorID:    req.DoctorID,
		DoctorName:  req.DoctorName,
		ActingType:  req.ActingType,
		OrderNum:    orderNum,
		Source:      source,
		SourceID:    req.SourceID,
		Memo:        req.Memo,
		WorkDate:    workDate,
	})
	if err != nil {
		return nil, err
	}

	return e.store.GetTask(ctx, id)
}

// Start moves a waiting task to acting and marks the doctor busy. Rejected
// with DoctorBusyError while another acting is in progress for the doctor.
func (e *Engine) Start(ctx context.Context, taskID, doctorID int64) (*models.ActingTask, error) {
	task, err := e.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if task.DoctorID != doctorID {
		return nil, &InvalidTransitionError{
			TaskID: taskID,
			From:   task.Status,
			To:     models.TaskActing,
			Reason: "task is not assigned to this doctor",
		}
	}

	if err := models.ValidateTaskTransition(task.Status, models.TaskActing); err != nil {
		return nil, &InvalidTransitionError{TaskID: taskID, From: task.Status, To: models.TaskActing}
	}

	// One acting per doctor at a time
	queue, err := e.store.ListForDoctor(ctx, doctorID, task.WorkDate)
	if err != nil {
		return nil, err
	}
	for _, t := range queue {
		if t.Status == models.TaskActing {
			return nil, &DoctorBusyError{DoctorID: doctorID, CurrentActingID: t.ID}
		}
	}

	now := e.now()
	status := models.TaskActing
	if err := e.store.UpdateTask(ctx, taskID, TaskPatch{
		Status:    &status,
		StartedAt: &now,
	}); err != nil {
		return nil, err
	}

	actingID := taskID
	if err := e.store.UpsertDoctorStatus(ctx, models.DoctorStatus{
		DoctorID:        doctorID,
		DoctorName:      task.DoctorName,
		Status:          models.DoctorActing,
		CurrentActingID: &actingID,
		StatusUpdatedAt: now,
	}); err != nil {
		return nil, err
	}

	return e.store.GetTask(ctx, taskID)
}

// Complete finishes the doctor's current acting, records the duration in the
// history table and frees the doctor: waiting if more tasks queue up, office
// otherwise.
func (e *Engine) Complete(ctx context.Context, taskID, doctorID int64) (*models.ActingTask, error) {
	task, err := e.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if err := models.ValidateTaskTransition(task.Status, models.TaskComplete); err != nil {
		return nil, &InvalidTransitionError{TaskID: taskID, From: task.Status, To: models.TaskComplete}
	}

	now := e.now()
	startedAt := task.CreatedAt
	if task.StartedAt != nil {
		startedAt = *task.StartedAt
	}
	durationSec := int64(now.Sub(startedAt) / time.Second)
	if durationSec < 0 {
		durationSec = 0
	}

	status := models.TaskComplete
	if err := e.store.UpdateTask(ctx, taskID, TaskPatch{
		Status:      &status,
		CompletedAt: &now,
		DurationSec: &durationSec,
	}); err != nil {
		return nil, err
	}

	if err := e.store.InsertRecord(ctx, models.ActingRecord{
		PatientID:   task.PatientID,
		PatientName: task.PatientName,
		ChartNo:     task.ChartNo,
		DoctorID:    task.DoctorID,
		DoctorName:  task.DoctorName,
		ActingType:  task.ActingType,
		StartedAt:   startedAt,
		CompletedAt: now,
		DurationSec: durationSec,
		WorkDate:    task.WorkDate,
	}); err != nil {
		return nil, err
	}

	queue, err := e.store.ListForDoctor(ctx, task.DoctorID, task.WorkDate)
	if err != nil {
		return nil, err
	}
	state := models.DoctorOffice
	if countWaiting(queue) > 0 {
		state = models.DoctorWaiting
	}

	if err := e.store.UpsertDoctorStatus(ctx, models.DoctorStatus{
		DoctorID:        task.DoctorID,
		DoctorName:      task.DoctorName,
		Status:          state,
		CurrentActingID: nil,
		StatusUpdatedAt: now,
	}); err != nil {
		return nil, err
	}

	return e.store.GetTask(ctx, taskID)
}

// Cancel soft-deletes a waiting or in-progress task. The row stays for audit
// and statistics. Order numbers of the remaining queue are not compacted -
// gaps are fine, sorting only needs relative order.
func (e *Engine) Cancel(ctx context.Context, taskID int64) (*models.ActingTask, error) {
	task, err := e.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if err := models.ValidateTaskTransition(task.Status, models.TaskCancelled); err != nil {
		return nil, &InvalidTransitionError{TaskID: taskID, From: task.Status, To: models.TaskCancelled}
	}

	now := e.now()
	status := models.TaskCancelled
	if err := e.store.UpdateTask(ctx, taskID, TaskPatch{Status: &status}); err != nil {
		return nil, err
	}

	// Cancelling the in-progress acting frees the doctor
	if task.Status == models.TaskActing {
		st, err := e.store.GetDoctorStatus(ctx, task.DoctorID)
		if err != nil {
			return nil, err
		}
		if st != nil && st.CurrentActingID != nil && *st.CurrentActingID == taskID {
			if err := e.store.UpsertDoctorStatus(ctx, models.DoctorStatus{
				DoctorID:        task.DoctorID,
				DoctorName:      task.DoctorName,
				Status:          models.DoctorWaiting,
				CurrentActingID: nil,
				StatusUpdatedAt: now,
			}); err != nil {
				return nil, err
			}
		}
	}

	return e.store.GetTask(ctx, taskID)
}

// MoveToDoctor re-homes a waiting task to the end of the target doctor's
// queue. The source queue keeps its gaps untouched.
func (e *Engine) MoveToDoctor(ctx context.Context, taskID, targetDoctorID int64, targetDoctorName string) (*models.ActingTask, error) {
	task, err := e.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if task.Status != models.TaskWaiting {
		return nil, &InvalidTransitionError{
			TaskID: taskID,
			From:   task.Status,
			To:     task.Status,
			Reason: "only a waiting acting can be moved to another doctor",
		}
	}

	targetQueue, err := e.store.ListForDoctor(ctx, targetDoctorID, task.WorkDate)
	if err != nil {
		return nil, err
	}
	newOrder := maxOrderNum(targetQueue) + 1

	if err := e.store.UpdateTask(ctx, taskID, TaskPatch{
		DoctorID:   &targetDoctorID,
		DoctorName: &targetDoctorName,
		OrderNum:   &newOrder,
	}); err != nil {
		return nil, err
	}

	return e.store.GetTask(ctx, taskID)
}

// Reorder drops a waiting task onto the 1-based position within its doctor's
// queue and renumbers the whole waiting list back to 1..n.
func (e *Engine) Reorder(ctx context.Context, taskID int64, newPos int) (*models.ActingTask, error) {
	task, err := e.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if task.Status != models.TaskWaiting {
		return nil, &InvalidTransitionError{
			TaskID: taskID,
			From:   task.Status,
			To:     task.Status,
			Reason: "only a waiting acting can be reordered",
		}
	}

	queue, err := e.store.ListForDoctor(ctx, task.DoctorID, task.WorkDate)
	if err != nil {
		return nil, err
	}
	waiting := filterWaiting(queue)
	SortWaiting(waiting)

	from := -1
	for i, t := range waiting {
		if t.ID == taskID {
			from = i
			break
		}
	}
	if from == -1 {
		return nil, &NotFoundError{Kind: "acting", ID: taskID}
	}

	to := newPos - 1
	if to < 0 {
		to = 0
	}
	if to > len(waiting)-1 {
		to = len(waiting) - 1
	}

	moved := waiting[from]
	waiting = append(waiting[:from], waiting[from+1:]...)
	waiting = append(waiting[:to], append([]*models.ActingTask{moved}, waiting[to:]...)...)

	for i, t := range waiting {
		order := i + 1
		if t.OrderNum == order {
			continue
		}
		if err := e.store.UpdateTask(ctx, t.ID, TaskPatch{OrderNum: &order}); err != nil {
			return nil, err
		}
	}

	return e.store.GetTask(ctx, taskID)
}

// Update edits the display fields of a not-yet-terminal task.
func (e *Engine) Update(ctx context.Context, taskID int64, actingType, patientName, memo *string) (*models.ActingTask, error) {
	task, err := e.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if models.IsTerminal(task.Status) {
		return nil, &InvalidTransitionError{
			TaskID: taskID,
			From:   task.Status,
			To:     task.Status,
			Reason: "cannot edit a finished acting",
		}
	}

	if actingType == nil && patientName == nil && memo == nil {
		return task, nil
	}

	if err := e.store.UpdateTask(ctx, taskID, TaskPatch{
		ActingType:  actingType,
		PatientName: patientName,
		Memo:        memo,
	}); err != nil {
		return nil, err
	}

	return e.store.GetTask(ctx, taskID)
}

// SetDoctorStatus is the manual override (office, away, back to waiting).
// While an acting is in progress the doctor must complete or cancel it first;
// and "acting" itself is only reachable through Start.
func (e *Engine) SetDoctorStatus(ctx context.Context, doctorID int64, doctorName string, state models.DoctorState) (*models.DoctorStatus, error) {
	if !models.IsValidDoctorState(state) {
		return nil, &InvalidTransitionError{Reason: "unknown doctor status " + string(state)}
	}

	st, err := e.store.GetDoctorStatus(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	if st != nil && st.CurrentActingID != nil && state != models.DoctorActing {
		return nil, &InvalidTransitionError{
			TaskID: *st.CurrentActingID,
			Reason: "doctor has an acting in progress, complete or cancel it first",
		}
	}
	if state == models.DoctorActing && (st == nil || st.CurrentActingID == nil) {
		return nil, &InvalidTransitionError{
			Reason: "doctor status acting is set by starting an acting, not manually",
		}
	}

	if doctorName == "" && st != nil {
		doctorName = st.DoctorName
	}
	var current *int64
	if st != nil {
		current = st.CurrentActingID
	}

	if err := e.store.UpsertDoctorStatus(ctx, models.DoctorStatus{
		DoctorID:        doctorID,
		DoctorName:      doctorName,
		Status:          state,
		CurrentActingID: current,
		StatusUpdatedAt: e.now(),
	}); err != nil {
		return nil, err
	}

	return e.store.GetDoctorStatus(ctx, doctorID)
}

// Refresh rebuilds the whole board: one group per doctor with the in-progress
// acting and the ordered waiting list. Doctors without a status row get a
// derived default instead of a lazy insert.
func (e *Engine) Refresh(ctx context.Context) ([]models.DoctorQueueGroup, error) {
	now := e.now()
	workDate := helper.WorkDate(now)

	doctors, err := e.store.ListDoctors(ctx)
	if err != nil {
		return nil, err
	}
	tasks, err := e.store.ListActive(ctx, workDate)
	if err != nil {
		return nil, err
	}
	statuses, err := e.store.ListDoctorStatuses(ctx)
	if err != nil {
		return nil, err
	}

	byDoctor := make(map[int64][]*models.ActingTask)
	for _, t := range tasks {
		byDoctor[t.DoctorID] = append(byDoctor[t.DoctorID], t)
	}
	statusByDoctor := make(map[int64]*models.DoctorStatus)
	for _, st := range statuses {
		statusByDoctor[st.DoctorID] = st
	}

	groups := make([]models.DoctorQueueGroup, 0, len(doctors))
	for _, doc := range doctors {
		queue := byDoctor[doc.ID]
		waiting := filterWaiting(queue)
		SortWaiting(waiting)

		var current *models.ActingTask
		for _, t := range queue {
			if t.Status == models.TaskActing {
				current = t
				break
			}
		}

		var status models.DoctorStatus
		if st, ok := statusByDoctor[doc.ID]; ok {
			status = *st
		} else {
			state := models.DoctorOffice
			if len(waiting) > 0 {
				state = models.DoctorWaiting
			}
			status = models.DoctorStatus{
				DoctorID:        doc.ID,
				DoctorName:      doc.Name,
				Status:          state,
				StatusUpdatedAt: now,
			}
		}

		groups = append(groups, models.DoctorQueueGroup{
			Doctor:        doc,
			Status:        status,
			CurrentActing: current,
			Queue:         waiting,
			TotalWaiting:  len(waiting),
		})
	}

	return groups, nil
}

// SortWaiting orders a waiting list by order number; equal order numbers can
// show up when two clients appended concurrently, so created time and id
// break the tie to keep every read deterministic.
func SortWaiting(tasks []*models.ActingTask) {
	sort.Slice(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if a.OrderNum != b.OrderNum {
			return a.OrderNum < b.OrderNum
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

func filterWaiting(tasks []*models.ActingTask) []*models.ActingTask {
	out := make([]*models.ActingTask, 0, len(tasks))
	for _, t := range tasks {
		if t.Status == models.TaskWaiting {
			out = append(out, t)
		}
	}
	return out
}

func countWaiting(tasks []*models.ActingTask) int {
	n := 0
	for _, t := range tasks {
		if t.Status == models.TaskWaiting {
			n++
		}
	}
	return n
}

func maxOrderNum(tasks []*models.ActingTask) int {
	max := 0
	for _, t := range tasks {
		if t.OrderNum > max {
			max = t.OrderNum
		}
	}
	return max
}
