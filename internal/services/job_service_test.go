package services

import (
	"database/sql"
	"errors"
	"testing"

	"supervisor_settings_backend/internal/models"
	"supervisor_settings_backend/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
)

// newMockDB creates a sqlmock database with automatic cleanup and expectation checking.
func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unfulfilled expectations: %v", err)
		}
		db.Close()
	})
	return db, mock
}

// fakeJobRepository is an in-memory JobRepository for service tests.
type fakeJobRepository struct {
	defs      []models.JobDefinition
	typeIDs   map[string]int64
	nextCalls []struct {
		workflow models.WorkflowType
		jobType  int64
		nextType int64
	}
	image        string
	updateNextErr error
}

func (f *fakeJobRepository) GetDefinitions() ([]models.JobDefinition, error) { return f.defs, nil }

func (f *fakeJobRepository) GetDefinitionsByWorkflow(workflow models.WorkflowType) ([]models.JobDefinition, error) {
	out := []models.JobDefinition{}
	for _, d := range f.defs {
		if d.WorkflowType == workflow {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeJobRepository) GetJobTypeIDByName(name string) (int64, error) {
	id, ok := f.typeIDs[name]
	if !ok {
		return 0, repositories.ErrNotFound
	}
	return id, nil
}

func (f *fakeJobRepository) UpdateNextJob(executor repositories.SQLExecutor, workflow models.WorkflowType, jobTypeID, nextJobTypeID int64) error {
	if f.updateNextErr != nil {
		return f.updateNextErr
	}
	f.nextCalls = append(f.nextCalls, struct {
		workflow models.WorkflowType
		jobType  int64
		nextType int64
	}{workflow, jobTypeID, nextJobTypeID})
	return nil
}

func (f *fakeJobRepository) UpdateImage(executor repositories.SQLExecutor, jobTypeID int64, image string) error {
	f.image = image
	return nil
}

func strPtr(s string) *string { return &s }
func i64Ptr(i int64) *int64   { return &i }

func chainDef(workflow models.WorkflowType, typeID int64, name string, nextID *int64, nextName *string) models.JobDefinition {
	return models.JobDefinition{
		WorkflowType: workflow, JobTypeID: typeID, JobTypeName: name,
		NextJobTypeID: nextID, NextJobTypeName: nextName,
	}
}

func TestWalkJobOrder(t *testing.T) {
	defs := []models.JobDefinition{
		// Deliberately out of chain order.
		chainDef(models.WorkflowASGS, 19, "load-geo-server-job", i64Ptr(21), strPtr("complete")),
		chainDef(models.WorkflowASGS, 11, "staging", i64Ptr(25), strPtr("obs-mod-ast-job")),
		chainDef(models.WorkflowASGS, 25, "obs-mod-ast-job", i64Ptr(19), strPtr("load-geo-server-job")),
	}

	order := walkJobOrder(defs)
	want := []string{"staging", "obs-mod-ast-job", "load-geo-server-job"}
	if len(order) != len(want) {
		t.Fatalf("len = %d, want %d (%+v)", len(order), len(want), order)
	}
	for i, name := range want {
		if order[i].JobTypeName != name {
			t.Errorf("order[%d] = %q, want %q", i, order[i].JobTypeName, name)
		}
	}
	if order[2].NextJobTypeName != "complete" {
		t.Errorf("tail next = %q, want complete", order[2].NextJobTypeName)
	}
}

func TestWalkJobOrderBrokenChain(t *testing.T) {
	defs := []models.JobDefinition{
		chainDef(models.WorkflowASGS, 11, "staging", i64Ptr(25), strPtr("obs-mod-ast-job")),
		// 25 is missing; the walk should stop after staging.
	}
	order := walkJobOrder(defs)
	if len(order) != 1 || order[0].JobTypeName != "staging" {
		t.Errorf("got %+v, want single staging step", order)
	}
}

func TestWalkJobOrderCycleCapped(t *testing.T) {
	// Two nodes pointing at each other; both are referenced so head
	// detection fails and the walk returns empty rather than looping.
	defs := []models.JobDefinition{
		chainDef(models.WorkflowASGS, 11, "staging", i64Ptr(25), strPtr("obs-mod-ast-job")),
		chainDef(models.WorkflowASGS, 25, "obs-mod-ast-job", i64Ptr(11), strPtr("staging")),
	}
	order := walkJobOrder(defs)
	if len(order) != 0 {
		t.Errorf("got %+v, want empty order", order)
	}
}

func TestWalkJobOrderEmpty(t *testing.T) {
	if order := walkJobOrder(nil); len(order) != 0 {
		t.Errorf("got %+v, want empty order", order)
	}
}

func TestSetNextJobSelfReference(t *testing.T) {
	svc := NewJobService(&fakeJobRepository{}, nil, nil)
	_, err := svc.SetNextJob(models.WorkflowASGS, "staging", "staging")
	if !errors.Is(err, ErrNextJobSelf) {
		t.Errorf("err = %v, want ErrNextJobSelf", err)
	}
}

func TestSetNextJobUnknownJobType(t *testing.T) {
	repo := &fakeJobRepository{typeIDs: map[string]int64{"staging": 11}}
	svc := NewJobService(repo, nil, nil)
	_, err := svc.SetNextJob(models.WorkflowASGS, "staging", "bogus-job")
	if !errors.Is(err, ErrJobTypeUnknown) {
		t.Errorf("err = %v, want ErrJobTypeUnknown", err)
	}
}

func TestSetNextJobUnknownWorkflow(t *testing.T) {
	svc := NewJobService(&fakeJobRepository{}, nil, nil)
	_, err := svc.SetNextJob(models.WorkflowType("BOGUS"), "staging", "hazus")
	if !errors.Is(err, ErrWorkflowUnknown) {
		t.Errorf("err = %v, want ErrWorkflowUnknown", err)
	}
}

func TestResetJobOrderTransactional(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &fakeJobRepository{typeIDs: map[string]int64{
		"load-geo-server-job": 19,
		"complete":            21,
	}}
	svc := NewJobService(repo, db, nil)

	mock.ExpectBegin()
	mock.ExpectCommit()

	if _, err := svc.ResetJobOrder(models.WorkflowHECRAS); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.nextCalls) != 1 {
		t.Fatalf("nextCalls = %d, want 1", len(repo.nextCalls))
	}
	if repo.nextCalls[0].jobType != 19 || repo.nextCalls[0].nextType != 21 {
		t.Errorf("got %+v", repo.nextCalls[0])
	}
}

func TestResetJobOrderRollsBackOnFailure(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &fakeJobRepository{
		typeIDs: map[string]int64{
			"load-geo-server-job": 19,
			"complete":            21,
		},
		updateNextErr: repositories.ErrDatabaseError,
	}
	svc := NewJobService(repo, db, nil)

	mock.ExpectBegin()
	mock.ExpectRollback()

	if _, err := svc.ResetJobOrder(models.WorkflowHECRAS); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestUpdateImageVersion(t *testing.T) {
	repo := &fakeJobRepository{typeIDs: map[string]int64{"staging": 11}}
	svc := NewJobService(repo, nil, nil)

	image, err := svc.UpdateImageVersion("staging", UpdateImageVersionRequest{
		ImageRepo: "containers.renci.org",
		Version:   "v1.2.3",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "containers.renci.org/eds/stagedata:v1.2.3"
	if image != want {
		t.Errorf("image = %q, want %q", image, want)
	}
	if repo.image != want {
		t.Errorf("stored image = %q, want %q", repo.image, want)
	}
}

func TestUpdateImageVersionFrozen(t *testing.T) {
	svc := NewJobService(&fakeJobRepository{}, nil, func() bool { return true })
	_, err := svc.UpdateImageVersion("staging", UpdateImageVersionRequest{
		ImageRepo: "renciorg",
		Version:   "v1.0.0",
	})
	if !errors.Is(err, ErrImageFrozen) {
		t.Errorf("err = %v, want ErrImageFrozen", err)
	}
}

func TestUpdateImageVersionRejectsBadInput(t *testing.T) {
	repo := &fakeJobRepository{typeIDs: map[string]int64{"staging": 11}}
	svc := NewJobService(repo, nil, nil)

	for _, tc := range []struct {
		name    string
		jobType string
		req     UpdateImageVersionRequest
		wantErr error
	}{
		{"unknown repo", "staging", UpdateImageVersionRequest{ImageRepo: "dockerhub", Version: "v1.0.0"}, ErrValidation},
		{"unknown job type", "bogus-job", UpdateImageVersionRequest{ImageRepo: "renciorg", Version: "v1.0.0"}, ErrJobTypeUnknown},
		{"bad version", "staging", UpdateImageVersionRequest{ImageRepo: "renciorg", Version: "1.0.0"}, ErrValidation},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.UpdateImageVersion(tc.jobType, tc.req); !errors.Is(err, tc.wantErr) {
				t.Errorf("err = %v, want %v", err, tc.wantErr)
			}
		})
	}
}
