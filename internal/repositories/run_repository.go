package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"supervisor_settings_backend/internal/models"

	"github.com/lib/pq"
)

// RunRepository defines the interface for supervisor run snapshot and
// per-run config item database operations.
type RunRepository interface {
	List(limit int) ([]models.SupervisorRun, error)
	GetByInstanceUID(instanceID int64, uid string) (*models.SupervisorRun, error)
	Upsert(executor SQLExecutor, run *models.SupervisorRun) error
	UpdateStatus(executor SQLExecutor, instanceID int64, uid, status string) error
	SetProperty(executor SQLExecutor, instanceID int64, uid, key, value string) error
}

type runRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new instance of RunRepository.
func NewRunRepository(db *sql.DB) RunRepository {
	return &runRepository{db: db}
}

func (r *runRepository) List(limit int) ([]models.SupervisorRun, error) {
	runs := []models.SupervisorRun{}
	query := `SELECT id, instance_id, uid, status, run_data, created_at, updated_at
	          FROM supervisor_runs ORDER BY updated_at DESC LIMIT $1`
	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: listing supervisor runs: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var run models.SupervisorRun
		var runData []byte
		if err := rows.Scan(&run.ID, &run.InstanceID, &run.UID, &run.Status, &runData, &run.CreatedAt, &run.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning supervisor run: %v", ErrDatabaseError, err)
		}
		if runData != nil {
			run.RunData = runData
		}
		runs = append(runs, run)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating supervisor runs: %v", ErrDatabaseError, err)
	}
	return runs, nil
}

func (r *runRepository) GetByInstanceUID(instanceID int64, uid string) (*models.SupervisorRun, error) {
	run := &models.SupervisorRun{}
	var runData []byte
	query := `SELECT id, instance_id, uid, status, run_data, created_at, updated_at
	          FROM supervisor_runs WHERE instance_id = $1 AND uid = $2`
	err := r.db.QueryRow(query, instanceID, uid).
		Scan(&run.ID, &run.InstanceID, &run.UID, &run.Status, &runData, &run.CreatedAt, &run.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting supervisor run %d/%s: %v", ErrDatabaseError, instanceID, uid, err)
	}
	if runData != nil {
		run.RunData = runData
	}
	return run, nil
}

func (r *runRepository) Upsert(executor SQLExecutor, run *models.SupervisorRun) error {
	query := `INSERT INTO supervisor_runs (instance_id, uid, status, run_data, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $5)
	          ON CONFLICT (instance_id, uid)
	          DO UPDATE SET status = EXCLUDED.status, run_data = EXCLUDED.run_data, updated_at = EXCLUDED.updated_at
	          RETURNING id, created_at, updated_at`
	var runData interface{}
	if len(run.RunData) > 0 {
		runData = []byte(run.RunData)
	}
	err := executor.QueryRow(query, run.InstanceID, run.UID, run.Status, runData, time.Now()).
		Scan(&run.ID, &run.CreatedAt, &run.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return fmt.Errorf("%w: supervisor run %d/%s (constraint: %s)", ErrDuplicateKey, run.InstanceID, run.UID, pqErr.Constraint)
		}
		return fmt.Errorf("%w: upserting supervisor run %d/%s: %v", ErrDatabaseError, run.InstanceID, run.UID, err)
	}
	return nil
}

func (r *runRepository) UpdateStatus(executor SQLExecutor, instanceID int64, uid, status string) error {
	query := `UPDATE supervisor_runs SET status = $1, updated_at = $2 WHERE instance_id = $3 AND uid = $4`
	result, err := executor.Exec(query, status, time.Now(), instanceID, uid)
	if err != nil {
		return fmt.Errorf("%w: updating status for run %d/%s: %v", ErrDatabaseError, instanceID, uid, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *runRepository) SetProperty(executor SQLExecutor, instanceID int64, uid, key, value string) error {
	query := `INSERT INTO run_properties (instance_id, uid, key, value, created_at)
	          VALUES ($1, $2, $3, $4, $5)
	          ON CONFLICT (instance_id, uid, key)
	          DO UPDATE SET value = EXCLUDED.value`
	if _, err := executor.Exec(query, instanceID, uid, key, value, time.Now()); err != nil {
		return fmt.Errorf("%w: setting config item '%s' for run %d/%s: %v", ErrDatabaseError, key, instanceID, uid, err)
	}
	return nil
}
