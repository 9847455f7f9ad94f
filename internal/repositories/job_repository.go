package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"supervisor_settings_backend/internal/models"

	"github.com/lib/pq"
)

// JobRepository defines the interface for supervisor job configuration
// database operations.
type JobRepository interface {
	GetDefinitions() ([]models.JobDefinition, error)
	GetDefinitionsByWorkflow(workflow models.WorkflowType) ([]models.JobDefinition, error)
	GetJobTypeIDByName(name string) (int64, error)
	UpdateNextJob(executor SQLExecutor, workflow models.WorkflowType, jobTypeID, nextJobTypeID int64) error
	UpdateImage(executor SQLExecutor, jobTypeID int64, image string) error
}

type jobRepository struct {
	db *sql.DB
}

// NewJobRepository creates a new instance of JobRepository.
func NewJobRepository(db *sql.DB) JobRepository {
	return &jobRepository{db: db}
}

const jobDefinitionColumns = `
	jd.id, jd.workflow_type, jd.job_type_id, jt.name AS job_type_name,
	jd.image, jd.command_line, jd.command_matrix, jd.parallel,
	jd.next_job_type_id, njt.name AS next_job_type_name,
	jd.created_at, jd.updated_at`

const jobDefinitionFrom = `
	FROM job_definitions jd
	JOIN job_types jt ON jd.job_type_id = jt.id
	LEFT JOIN job_types njt ON jd.next_job_type_id = njt.id`

func scanJobDefinition(rows *sql.Rows) (models.JobDefinition, error) {
	var def models.JobDefinition
	var parallel []byte
	var nextID sql.NullInt64
	var nextName sql.NullString
	err := rows.Scan(
		&def.ID, &def.WorkflowType, &def.JobTypeID, &def.JobTypeName,
		&def.Image, &def.CommandLine, &def.CommandMatrix, &parallel,
		&nextID, &nextName,
		&def.CreatedAt, &def.UpdatedAt,
	)
	if err != nil {
		return def, err
	}
	if parallel != nil {
		def.Parallel = parallel
	}
	if nextID.Valid {
		def.NextJobTypeID = &nextID.Int64
	}
	if nextName.Valid {
		def.NextJobTypeName = &nextName.String
	}
	return def, nil
}

func (r *jobRepository) queryDefinitions(query string, args ...interface{}) ([]models.JobDefinition, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: getting job definitions: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	defs := []models.JobDefinition{}
	for rows.Next() {
		def, err := scanJobDefinition(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning job definition: %v", ErrDatabaseError, err)
		}
		defs = append(defs, def)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating job definitions: %v", ErrDatabaseError, err)
	}
	return defs, nil
}

func (r *jobRepository) GetDefinitions() ([]models.JobDefinition, error) {
	query := "SELECT" + jobDefinitionColumns + jobDefinitionFrom + " ORDER BY jd.workflow_type, jt.name"
	return r.queryDefinitions(query)
}

func (r *jobRepository) GetDefinitionsByWorkflow(workflow models.WorkflowType) ([]models.JobDefinition, error) {
	query := "SELECT" + jobDefinitionColumns + jobDefinitionFrom + " WHERE jd.workflow_type = $1 ORDER BY jt.name"
	return r.queryDefinitions(query, string(workflow))
}

func (r *jobRepository) GetJobTypeIDByName(name string) (int64, error) {
	var id int64
	err := r.db.QueryRow(`SELECT id FROM job_types WHERE name = $1`, name).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("%w: getting job type id for '%s': %v", ErrDatabaseError, name, err)
	}
	return id, nil
}

func (r *jobRepository) UpdateNextJob(executor SQLExecutor, workflow models.WorkflowType, jobTypeID, nextJobTypeID int64) error {
	query := `UPDATE job_definitions SET next_job_type_id = $1, updated_at = $2
	          WHERE workflow_type = $3 AND job_type_id = $4`
	result, err := executor.Exec(query, nextJobTypeID, time.Now(), string(workflow), jobTypeID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "foreign_key_violation" {
			return fmt.Errorf("%w: next job type id %d does not exist (constraint: %s)", ErrDatabaseError, nextJobTypeID, pqErr.Constraint)
		}
		return fmt.Errorf("%w: updating next job for job type %d in workflow %s: %v", ErrDatabaseError, jobTypeID, workflow, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *jobRepository) UpdateImage(executor SQLExecutor, jobTypeID int64, image string) error {
	query := `UPDATE job_definitions SET image = $1, updated_at = $2 WHERE job_type_id = $3`
	result, err := executor.Exec(query, image, time.Now(), jobTypeID)
	if err != nil {
		return fmt.Errorf("%w: updating image for job type %d: %v", ErrDatabaseError, jobTypeID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
