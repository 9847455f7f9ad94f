package repositories

import (
	"errors"
	"testing"
	"time"

	"supervisor_settings_backend/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
)

var jobDefColumns = []string{
	"id", "workflow_type", "job_type_id", "job_type_name",
	"image", "command_line", "command_matrix", "parallel",
	"next_job_type_id", "next_job_type_name",
	"created_at", "updated_at",
}

func TestJobGetDefinitionsByWorkflow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewJobRepository(db)
	now := time.Now()

	mock.ExpectQuery("SELECT .+ FROM job_definitions jd").
		WithArgs("ASGS").
		WillReturnRows(sqlmock.NewRows(jobDefColumns).
			AddRow(1, "ASGS", 11, "staging", "repo/stagedata:v1.0.0", []byte(`[]`), []byte(`[]`), nil, 23, "adcirc2cog-tiff-job", now, now).
			AddRow(2, "ASGS", 23, "adcirc2cog-tiff-job", "repo/adcirc2cog:v1.0.0", []byte(`[]`), []byte(`[]`), []byte(`["a"]`), nil, nil, now, now))

	defs, err := repo.GetDefinitionsByWorkflow(models.WorkflowASGS)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(defs) != 2 {
		t.Fatalf("len = %d, want 2", len(defs))
	}
	if defs[0].JobTypeName != "staging" {
		t.Errorf("JobTypeName = %q", defs[0].JobTypeName)
	}
	if defs[0].NextJobTypeID == nil || *defs[0].NextJobTypeID != 23 {
		t.Errorf("NextJobTypeID = %v, want 23", defs[0].NextJobTypeID)
	}
	if defs[0].NextJobTypeName == nil || *defs[0].NextJobTypeName != "adcirc2cog-tiff-job" {
		t.Errorf("NextJobTypeName = %v", defs[0].NextJobTypeName)
	}
	if defs[1].NextJobTypeID != nil {
		t.Errorf("NextJobTypeID = %v, want nil", defs[1].NextJobTypeID)
	}
	if string(defs[1].Parallel) != `["a"]` {
		t.Errorf("Parallel = %s", defs[1].Parallel)
	}
}

func TestJobGetJobTypeIDByName(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewJobRepository(db)

	mock.ExpectQuery("SELECT id FROM job_types WHERE name = \\$1").
		WithArgs("staging").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))

	id, err := repo.GetJobTypeIDByName("staging")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 11 {
		t.Errorf("id = %d, want 11", id)
	}
}

func TestJobGetJobTypeIDByNameNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewJobRepository(db)

	mock.ExpectQuery("SELECT id FROM job_types WHERE name = \\$1").
		WithArgs("bogus").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	if _, err := repo.GetJobTypeIDByName("bogus"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestJobUpdateNextJob(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewJobRepository(db)

	mock.ExpectExec("UPDATE job_definitions SET next_job_type_id").
		WithArgs(int64(23), sqlmock.AnyArg(), "ASGS", int64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdateNextJob(db, models.WorkflowASGS, 11, 23); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestJobUpdateNextJobNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewJobRepository(db)

	mock.ExpectExec("UPDATE job_definitions SET next_job_type_id").
		WithArgs(int64(23), sqlmock.AnyArg(), "HECRAS", int64(11)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.UpdateNextJob(db, models.WorkflowHECRAS, 11, 23); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestJobUpdateImage(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewJobRepository(db)

	mock.ExpectExec("UPDATE job_definitions SET image").
		WithArgs("repo/stagedata:v2.0.0", sqlmock.AnyArg(), int64(11)).
		WillReturnResult(sqlmock.NewResult(0, 2))

	if err := repo.UpdateImage(db, 11, "repo/stagedata:v2.0.0"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
