package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"backend-acting/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Minimal driver stub that behaves like go-sql-driver with parseTime=true:
// bare DATE/DATETIME columns arrive as time.Time, everything formatted on the
// server side (DATE_FORMAT) arrives as bytes.
type stubDriver struct{}

var stubQuery func(query string, args []driver.Value) (driver.Rows, error)

func (stubDriver) Open(string) (driver.Conn, error) { return stubConn{}, nil }

type stubConn struct{}

func (stubConn) Prepare(query string) (driver.Stmt, error) { return stubStmt{query: query}, nil }
func (stubConn) Close() error                              { return nil }
func (stubConn) Begin() (driver.Tx, error)                 { return nil, errors.New("not supported") }

type stubStmt struct{ query string }

func (s stubStmt) Close() error  { return nil }
func (s stubStmt) NumInput() int { return -1 }
func (s stubStmt) Exec(args []driver.Value) (driver.Result, error) {
	return nil, errors.New("not supported")
}
func (s stubStmt) Query(args []driver.Value) (driver.Rows, error) {
	return stubQuery(s.query, args)
}

type stubRows struct {
	cols []string
	vals [][]driver.Value
	i    int
}

func (r *stubRows) Columns() []string { return r.cols }
func (r *stubRows) Close() error      { return nil }
func (r *stubRows) Next(dest []driver.Value) error {
	if r.i >= len(r.vals) {
		return io.EOF
	}
	copy(dest, r.vals[r.i])
	r.i++
	return nil
}

func init() {
	sql.Register("actingstub", stubDriver{})
}

var taskColumnNames = []string{
	"id", "patient_id", "patient_name", "chart_no", "doctor_id", "doctor_name",
	"acting_type", "order_num", "status", "source", "source_id", "memo", "work_date",
	"created_at", "started_at", "completed_at", "duration_sec",
}

func serveTaskRow(t *testing.T) {
	t.Helper()
	kst := time.FixedZone("KST", 9*60*60)
	created := time.Date(2026, 8, 31, 9, 30, 0, 0, kst)

	stubQuery = func(query string, args []driver.Value) (driver.Rows, error) {
		// A bare work_date select would come back as midnight time.Time and
		// stringify to RFC3339; only the DATE_FORMAT form keeps the day key.
		var workDate driver.Value = time.Date(2026, 8, 31, 0, 0, 0, 0, kst)
		if strings.Contains(query, "DATE_FORMAT(work_date") {
			workDate = []byte("2026-08-31")
		}
		return &stubRows{
			cols: taskColumnNames,
			vals: [][]driver.Value{{
				int64(7), int64(100), []byte("Park"), []byte(""), int64(1), []byte("Kim"),
				[]byte("acupuncture"), int64(2), []byte("waiting"), []byte("manual"), nil, []byte(""),
				workDate, created, nil, nil, nil,
			}},
		}, nil
	}
}

func stubDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("actingstub", "")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestGetTaskKeepsWorkDateKey(t *testing.T) {
	serveTaskRow(t)
	repo := NewQueueRepository(stubDB(t))

	task, err := repo.GetTask(context.Background(), 7)
	require.NoError(t, err)

	// The day key must round-trip untouched: the engine feeds it straight
	// back into WHERE work_date = ? for the busy and ordering re-reads.
	assert.Equal(t, "2026-08-31", task.WorkDate)
	assert.Equal(t, models.TaskWaiting, task.Status)
	assert.Equal(t, int64(1), task.DoctorID)
	assert.Equal(t, 2, task.OrderNum)
}

func TestListForDoctorKeepsWorkDateKey(t *testing.T) {
	serveTaskRow(t)
	repo := NewQueueRepository(stubDB(t))

	tasks, err := repo.ListForDoctor(context.Background(), 1, "2026-08-31")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "2026-08-31", tasks[0].WorkDate)
}
