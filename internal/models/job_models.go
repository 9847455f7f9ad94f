package models

import (
	"encoding/json"
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
)

// WorkflowType identifies one of the supervisor's workflow pipelines.
type WorkflowType string

const (
	WorkflowASGS   WorkflowType = "ASGS"
	WorkflowECFlow WorkflowType = "ECFLOW"
	WorkflowHECRAS WorkflowType = "HECRAS"
)

// IsValid reports whether the workflow type is one the supervisor runs.
func (w WorkflowType) IsValid() bool {
	switch w {
	case WorkflowASGS, WorkflowECFlow, WorkflowHECRAS:
		return true
	}
	return false
}

// JobTypeComplete is the terminal job type name. It has a job_types row so
// next-job pointers can reference it, but no job definition of its own.
const JobTypeComplete = "complete"

// JobType is a supervisor job type (one kind of k8s job the supervisor can
// launch).
type JobType struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// JobDefinition is the run configuration for one job type within a
// workflow: the container image to launch and the pointer to the next job
// in the workflow's processing chain.
type JobDefinition struct {
	ID              int64           `json:"id" db:"id"`
	WorkflowType    WorkflowType    `json:"workflow_type" db:"workflow_type"`
	JobTypeID       int64           `json:"job_type_id" db:"job_type_id"`
	JobTypeName     string          `json:"job_type_name" db:"job_type_name"`
	Image           string          `json:"image" db:"image"`
	CommandLine     json.RawMessage `json:"command_line" db:"command_line"`
	CommandMatrix   json.RawMessage `json:"command_matrix" db:"command_matrix"`
	Parallel        json.RawMessage `json:"parallel,omitempty" db:"parallel"`
	NextJobTypeID   *int64          `json:"next_job_type_id,omitempty" db:"next_job_type_id"`
	NextJobTypeName *string         `json:"next_job_type_name,omitempty" db:"next_job_type_name"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// JobOrderStep is one link of a workflow's resolved job chain.
type JobOrderStep struct {
	JobTypeName     string `json:"job_type_name"`
	NextJobTypeName string `json:"next_job_type_name"`
}

// ImageRepoPaths maps an allowed image registry to the repository prefix
// used when composing a full image reference.
var ImageRepoPaths = map[string]string{
	"containers.renci.org": "containers.renci.org/eds",
	"renciorg":             "renciorg",
}

// JobTypeImagePaths maps a job type name to its image name segment. The
// full image reference is repo prefix + segment + version label.
var JobTypeImagePaths = map[string]string{
	"adcirc2cog-tiff-job":       "/adcirc2cog:",
	"adcirctime-to-cog-job":     "/adcirctime2cogs:",
	"adcirc-to-kalpana-cog-job": "/adcirc-to-kalpana-cog-job:",
	"ast-run-harvester-job":     "/ast_run_harvester:",
	"collab-data-sync-job":      "/apsviz-collab-sync:",
	"final-staging-job":         "/stagedata:",
	"geotiff2cog-job":           "/adcirc2cog:",
	"hazus":                     "/adras:",
	"load-geo-server-job":       "/load_geoserver:",
	"load-geo-server-s3-job":    "/load_geoserver:",
	"obs-mod-ast-job":           "/ast_supp:",
	"staging":                   "/stagedata:",
	"timeseriesdb-ingest-job":   "/apsviz-timeseriesdb-ingest:",
}

var imageVersionPattern = regexp.MustCompile(`^v\d+\.\d+\.\d+$`)

// IsValidImageVersion reports whether a version label has the required
// v<int>.<int>.<int> form.
func IsValidImageVersion(version string) bool {
	return imageVersionPattern.MatchString(version)
}

// ImageVersionValidator adapts IsValidImageVersion for use as a gin binding
// rule ("imageversion"), registered on the validator engine at startup.
func ImageVersionValidator(fl validator.FieldLevel) bool {
	return IsValidImageVersion(fl.Field().String())
}
