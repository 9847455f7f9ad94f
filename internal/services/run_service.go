package services

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"supervisor_settings_backend/internal/models"
	"supervisor_settings_backend/internal/repositories"
)

// --- Custom Service Errors for Runs ---
var (
	ErrRunNotFound      = errors.New("supervisor run not found")
	ErrRunStatusUnknown = errors.New("unknown run status")
	ErrInstanceInvalid  = errors.New("instance id must be a positive integer")
)

// runStatusPropertyKey is the per-run config item the supervisor polls to
// decide whether a run should be (re)started.
const runStatusPropertyKey = "supervisor_job_status"

// runListLimit caps the run list view at the most recent runs.
const runListLimit = 100

// --- DTOs ---

// IngestRunRequest upserts a run snapshot keyed by (instance_id, uid).
type IngestRunRequest struct {
	InstanceID int64           `json:"instance_id" binding:"required,gt=0"`
	UID        string          `json:"uid" binding:"required"`
	Status     string          `json:"status" binding:"required"`
	RunData    json.RawMessage `json:"run_data"`
}

// --- RunService Interface ---
type RunService interface {
	GetRunList() ([]models.RunListEntry, error)
	GetRun(instanceID int64, uid string) (*models.SupervisorRun, error)
	IngestRun(req IngestRunRequest) (*models.SupervisorRun, error)
	UpdateRunStatus(instanceID int64, uid, status string) (string, error)
}

type runService struct {
	runRepo repositories.RunRepository
	db      *sql.DB
}

// NewRunService creates a new instance of RunService.
func NewRunService(repo repositories.RunRepository, db *sql.DB) RunService {
	return &runService{runRepo: repo, db: db}
}

func (s *runService) GetRunList() ([]models.RunListEntry, error) {
	runs, err := s.runRepo.List(runListLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	entries := make([]models.RunListEntry, 0, len(runs))
	for _, run := range runs {
		entries = append(entries, models.RunListEntry{
			SupervisorRun: run,
			FinalStatus:   models.FinalStatusFor(run.Status),
		})
	}
	return entries, nil
}

func (s *runService) GetRun(instanceID int64, uid string) (*models.SupervisorRun, error) {
	if instanceID <= 0 {
		return nil, ErrInstanceInvalid
	}
	run, err := s.runRepo.GetByInstanceUID(instanceID, uid)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

func (s *runService) IngestRun(req IngestRunRequest) (*models.SupervisorRun, error) {
	if req.InstanceID <= 0 {
		return nil, ErrInstanceInvalid
	}
	run := &models.SupervisorRun{
		InstanceID: req.InstanceID,
		UID:        req.UID,
		Status:     req.Status,
		RunData:    req.RunData,
	}
	if err := s.runRepo.Upsert(s.db, run); err != nil {
		return nil, fmt.Errorf("failed to ingest run: %w", err)
	}
	return run, nil
}

// UpdateRunStatus sets a run's supervisor_job_status config item and the
// run snapshot's own status in one transaction. Returns the canonical
// status applied.
func (s *runService) UpdateRunStatus(instanceID int64, uid, status string) (string, error) {
	if instanceID <= 0 {
		return "", ErrInstanceInvalid
	}
	canonical, ok := models.ParseRunStatus(status)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrRunStatusUnknown, status)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin status transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.runRepo.UpdateStatus(tx, instanceID, uid, canonical); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", ErrRunNotFound
		}
		return "", fmt.Errorf("failed to update run status: %w", err)
	}
	if err := s.runRepo.SetProperty(tx, instanceID, uid, runStatusPropertyKey, canonical); err != nil {
		return "", fmt.Errorf("failed to set run status config item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit status transaction: %w", err)
	}
	return canonical, nil
}
