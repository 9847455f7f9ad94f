package models

import (
	"encoding/json"
	"strings"
	"time"
)

// Run status values a run's supervisor_job_status config item may take.
const (
	RunStatusNew        = "new"
	RunStatusDebug      = "debug"
	RunStatusDoNotRerun = "do not rerun"
)

// ParseRunStatus normalizes a status path segment to a canonical run status.
// Hyphens stand in for spaces since URL path segments cannot carry them.
func ParseRunStatus(s string) (string, bool) {
	switch strings.ReplaceAll(strings.ToLower(s), "-", " ") {
	case RunStatusNew:
		return RunStatusNew, true
	case RunStatusDebug:
		return RunStatusDebug, true
	case RunStatusDoNotRerun:
		return RunStatusDoNotRerun, true
	}
	return "", false
}

// SupervisorRun is a snapshot of one supervised run's operational state,
// keyed by the supervisor instance id and the run uid.
type SupervisorRun struct {
	ID         int64           `json:"id" db:"id"`
	InstanceID int64           `json:"instance_id" db:"instance_id"`
	UID        string          `json:"uid" db:"uid"`
	Status     string          `json:"status" db:"status"`
	RunData    json.RawMessage `json:"run_data,omitempty" db:"run_data"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at" db:"updated_at"`
}

// RunListEntry is a run snapshot with the coarse final status derived for
// the run list view: any status text containing "Error" reports Error,
// everything else Success.
type RunListEntry struct {
	SupervisorRun
	FinalStatus string `json:"final_status"`
}

// FinalStatusFor derives the coarse final status from a raw status string.
func FinalStatusFor(status string) string {
	if strings.Contains(status, "Error") {
		return "Error"
	}
	return "Success"
}
