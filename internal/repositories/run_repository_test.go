package repositories

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"supervisor_settings_backend/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
)

var runColumns = []string{"id", "instance_id", "uid", "status", "run_data", "created_at", "updated_at"}

func TestRunList(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRunRepository(db)
	now := time.Now()

	mock.ExpectQuery("SELECT .+ FROM supervisor_runs ORDER BY updated_at DESC LIMIT \\$1").
		WithArgs(100).
		WillReturnRows(sqlmock.NewRows(runColumns).
			AddRow(2, 3057, "2021062406-namforecast", "running", []byte(`{"grid":"ec95d"}`), now, now).
			AddRow(1, 3056, "2021062312-namforecast", "Error detected in staging", nil, now, now))

	runs, err := repo.List(100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("len = %d, want 2", len(runs))
	}
	if runs[0].InstanceID != 3057 || runs[0].UID != "2021062406-namforecast" {
		t.Errorf("got %+v", runs[0])
	}
	if string(runs[0].RunData) != `{"grid":"ec95d"}` {
		t.Errorf("RunData = %s", runs[0].RunData)
	}
	if runs[1].RunData != nil {
		t.Errorf("RunData = %v, want nil", runs[1].RunData)
	}
}

func TestRunUpsert(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRunRepository(db)
	now := time.Now()

	run := &models.SupervisorRun{
		InstanceID: 3057,
		UID:        "2021062406-namforecast",
		Status:     "running",
		RunData:    json.RawMessage(`{"grid":"ec95d"}`),
	}

	mock.ExpectQuery("INSERT INTO supervisor_runs").
		WithArgs(int64(3057), "2021062406-namforecast", "running", []byte(`{"grid":"ec95d"}`), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(5, now, now))

	if err := repo.Upsert(db, run); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run.ID != 5 {
		t.Errorf("ID = %d, want 5", run.ID)
	}
}

func TestRunUpdateStatusNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRunRepository(db)

	mock.ExpectExec("UPDATE supervisor_runs SET status").
		WithArgs("new", sqlmock.AnyArg(), int64(9999), "missing-uid").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(db, 9999, "missing-uid", "new")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestRunSetProperty(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRunRepository(db)

	mock.ExpectExec("INSERT INTO run_properties").
		WithArgs(int64(3057), "2021062406-namforecast", "supervisor_job_status", "debug", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.SetProperty(db, 3057, "2021062406-namforecast", "supervisor_job_status", "debug"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
