package services

import (
	"database/sql"
	"errors"
	"fmt"

	"supervisor_settings_backend/internal/models"
	"supervisor_settings_backend/internal/repositories"
)

// --- Custom Service Errors for Jobs ---
var (
	ErrWorkflowUnknown = errors.New("unknown workflow type")
	ErrJobTypeUnknown  = errors.New("unknown job type name")
	ErrNextJobSelf     = errors.New("a job's next job cannot be the job itself")
	ErrImageFrozen     = errors.New("image version updates are frozen")
)

// defaultJobOrder holds each workflow's default job chain, head first,
// terminated by the "complete" job type.
var defaultJobOrder = map[models.WorkflowType][]string{
	models.WorkflowASGS: {
		"staging",
		"adcirc2cog-tiff-job",
		"adcirc-to-kalpana-cog-job",
		"ast-run-harvester-job",
		"obs-mod-ast-job",
		"geotiff2cog-job",
		"load-geo-server-job",
		"final-staging-job",
		models.JobTypeComplete,
	},
	models.WorkflowECFlow: {
		"staging",
		"adcirc2cog-tiff-job",
		"adcirc-to-kalpana-cog-job",
		"obs-mod-ast-job",
		"geotiff2cog-job",
		"load-geo-server-job",
		"collab-data-sync-job",
		"final-staging-job",
		models.JobTypeComplete,
	},
	models.WorkflowHECRAS: {
		"load-geo-server-job",
		models.JobTypeComplete,
	},
}

// --- DTOs ---

// UpdateImageVersionRequest updates the container image version label of a
// job type across all workflows it appears in.
type UpdateImageVersionRequest struct {
	ImageRepo string `json:"image_repo" binding:"required"`
	Version   string `json:"version" binding:"required,imageversion"`
}

// --- JobService Interface ---
type JobService interface {
	GetJobDefinitions() (map[string][]models.JobDefinition, error)
	GetJobOrder(workflow models.WorkflowType) ([]models.JobOrderStep, error)
	ResetJobOrder(workflow models.WorkflowType) ([]models.JobOrderStep, error)
	SetNextJob(workflow models.WorkflowType, jobTypeName, nextJobTypeName string) ([]models.JobOrderStep, error)
	UpdateImageVersion(jobTypeName string, req UpdateImageVersionRequest) (string, error)
}

type jobService struct {
	jobRepo     repositories.JobRepository
	db          *sql.DB
	imageFreeze func() bool
}

// NewJobService creates a new instance of JobService. imageFreeze reports
// whether image version updates are currently blocked; nil means never.
func NewJobService(repo repositories.JobRepository, db *sql.DB, imageFreeze func() bool) JobService {
	if imageFreeze == nil {
		imageFreeze = func() bool { return false }
	}
	return &jobService{jobRepo: repo, db: db, imageFreeze: imageFreeze}
}

func (s *jobService) GetJobDefinitions() (map[string][]models.JobDefinition, error) {
	defs, err := s.jobRepo.GetDefinitions()
	if err != nil {
		return nil, fmt.Errorf("failed to get job definitions: %w", err)
	}
	grouped := map[string][]models.JobDefinition{}
	for _, def := range defs {
		grouped[string(def.WorkflowType)] = append(grouped[string(def.WorkflowType)], def)
	}
	return grouped, nil
}

// GetJobOrder resolves a workflow's job chain by walking next-job pointers
// from the head definition (the one no other definition points at).
func (s *jobService) GetJobOrder(workflow models.WorkflowType) ([]models.JobOrderStep, error) {
	if !workflow.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrWorkflowUnknown, workflow)
	}
	defs, err := s.jobRepo.GetDefinitionsByWorkflow(workflow)
	if err != nil {
		return nil, fmt.Errorf("failed to get job order: %w", err)
	}
	return walkJobOrder(defs), nil
}

func walkJobOrder(defs []models.JobDefinition) []models.JobOrderStep {
	byTypeID := make(map[int64]models.JobDefinition, len(defs))
	referenced := make(map[int64]bool, len(defs))
	for _, def := range defs {
		byTypeID[def.JobTypeID] = def
		if def.NextJobTypeID != nil {
			referenced[*def.NextJobTypeID] = true
		}
	}

	var head *models.JobDefinition
	for i := range defs {
		if !referenced[defs[i].JobTypeID] {
			head = &defs[i]
			break
		}
	}

	order := []models.JobOrderStep{}
	if head == nil {
		return order
	}

	// Iteration is capped at the definition count so an accidentally
	// cyclic chain cannot loop forever.
	current := *head
	for range defs {
		step := models.JobOrderStep{JobTypeName: current.JobTypeName}
		if current.NextJobTypeName != nil {
			step.NextJobTypeName = *current.NextJobTypeName
		}
		order = append(order, step)
		if current.NextJobTypeID == nil {
			break
		}
		next, ok := byTypeID[*current.NextJobTypeID]
		if !ok {
			break
		}
		current = next
	}
	return order
}

// ResetJobOrder rewrites a workflow's next-job pointers back to the default
// chain, all within one transaction.
func (s *jobService) ResetJobOrder(workflow models.WorkflowType) ([]models.JobOrderStep, error) {
	chain, ok := defaultJobOrder[workflow]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrWorkflowUnknown, workflow)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin reset transaction: %w", err)
	}
	defer tx.Rollback()

	for i := 0; i < len(chain)-1; i++ {
		jobTypeID, err := s.jobRepo.GetJobTypeIDByName(chain[i])
		if err != nil {
			return nil, fmt.Errorf("failed to resolve job type '%s': %w", chain[i], err)
		}
		nextJobTypeID, err := s.jobRepo.GetJobTypeIDByName(chain[i+1])
		if err != nil {
			return nil, fmt.Errorf("failed to resolve job type '%s': %w", chain[i+1], err)
		}
		if err := s.jobRepo.UpdateNextJob(tx, workflow, jobTypeID, nextJobTypeID); err != nil {
			return nil, fmt.Errorf("failed to reset next job for '%s': %w", chain[i], err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit reset transaction: %w", err)
	}
	return s.GetJobOrder(workflow)
}

func (s *jobService) SetNextJob(workflow models.WorkflowType, jobTypeName, nextJobTypeName string) ([]models.JobOrderStep, error) {
	if !workflow.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrWorkflowUnknown, workflow)
	}
	if jobTypeName == nextJobTypeName {
		return nil, fmt.Errorf("%w: %s", ErrNextJobSelf, jobTypeName)
	}

	jobTypeID, err := s.jobRepo.GetJobTypeIDByName(jobTypeName)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrJobTypeUnknown, jobTypeName)
		}
		return nil, fmt.Errorf("failed to resolve job type '%s': %w", jobTypeName, err)
	}
	nextJobTypeID, err := s.jobRepo.GetJobTypeIDByName(nextJobTypeName)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrJobTypeUnknown, nextJobTypeName)
		}
		return nil, fmt.Errorf("failed to resolve job type '%s': %w", nextJobTypeName, err)
	}

	if err := s.jobRepo.UpdateNextJob(s.db, workflow, jobTypeID, nextJobTypeID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: no definition of '%s' in workflow %s", ErrJobTypeUnknown, jobTypeName, workflow)
		}
		return nil, fmt.Errorf("failed to update next job: %w", err)
	}
	return s.GetJobOrder(workflow)
}

// UpdateImageVersion composes the full image reference for a job type and
// stores it on every workflow's definition of that job type. Returns the
// composed reference.
func (s *jobService) UpdateImageVersion(jobTypeName string, req UpdateImageVersionRequest) (string, error) {
	if s.imageFreeze() {
		return "", ErrImageFrozen
	}
	repoPath, ok := models.ImageRepoPaths[req.ImageRepo]
	if !ok {
		return "", fmt.Errorf("%w: unknown image repo '%s'", ErrValidation, req.ImageRepo)
	}
	imagePath, ok := models.JobTypeImagePaths[jobTypeName]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrJobTypeUnknown, jobTypeName)
	}
	if !models.IsValidImageVersion(req.Version) {
		return "", fmt.Errorf("%w: version '%s' must be in the form v<int>.<int>.<int>", ErrValidation, req.Version)
	}

	jobTypeID, err := s.jobRepo.GetJobTypeIDByName(jobTypeName)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", fmt.Errorf("%w: %s", ErrJobTypeUnknown, jobTypeName)
		}
		return "", fmt.Errorf("failed to resolve job type '%s': %w", jobTypeName, err)
	}

	image := repoPath + imagePath + req.Version
	if err := s.jobRepo.UpdateImage(s.db, jobTypeID, image); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", fmt.Errorf("%w: no definitions of '%s'", ErrJobTypeUnknown, jobTypeName)
		}
		return "", fmt.Errorf("failed to update job image: %w", err)
	}
	return image, nil
}
