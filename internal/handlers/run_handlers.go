package handlers

import (
	"errors"
	"net/http"

	"supervisor_settings_backend/internal/services"
	"supervisor_settings_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// RunHandler holds the supervisor run service.
type RunHandler struct {
	runService services.RunService
}

// NewRunHandler creates a new RunHandler.
func NewRunHandler(rs services.RunService) *RunHandler {
	return &RunHandler{runService: rs}
}

// GetRunList returns the most recent run snapshots with derived final status.
func (h *RunHandler) GetRunList(c *gin.Context) {
	runs, err := h.runService.GetRunList()
	if err != nil {
		utils.LogError(err, "GetRunList: Error from runService.GetRunList")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch the run list.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

// GetRun fetches a single run snapshot by instance id and uid.
func (h *RunHandler) GetRun(c *gin.Context) {
	instanceID, err := utils.StrToInt64(c.Param("instance_id"))
	if err != nil || instanceID <= 0 {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "The instance id is invalid. An instance must be a positive integer.", c.Param("instance_id")))
		return
	}
	uid := c.Param("uid")

	run, err := h.runService.GetRun(instanceID, uid)
	if err != nil {
		if errors.Is(err, services.ErrRunNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Run not found.", err.Error()))
			return
		}
		utils.LogError(err, "GetRun: Error from runService.GetRun")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch the run.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, run)
}

// IngestRun upserts a run snapshot reported by the supervisor.
func (h *RunHandler) IngestRun(c *gin.Context) {
	var req services.IngestRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	run, err := h.runService.IngestRun(req)
	if err != nil {
		if errors.Is(err, services.ErrInstanceInvalid) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "Invalid instance id.", err.Error()))
			return
		}
		utils.LogError(err, "IngestRun: Error from runService.IngestRun")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to ingest the run snapshot.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, run)
}

// UpdateRunStatus sets the run status config item for a job run.
func (h *RunHandler) UpdateRunStatus(c *gin.Context) {
	instanceID, err := utils.StrToInt64(c.Param("instance_id"))
	if err != nil || instanceID <= 0 {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "The instance id is invalid. An instance must be a positive integer.", c.Param("instance_id")))
		return
	}
	uid := c.Param("uid")
	status := c.Param("status")

	applied, err := h.runService.UpdateRunStatus(instanceID, uid, status)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRunStatusUnknown):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "Unknown run status: "+status, "status must be one of new, debug, do-not-rerun"))
		case errors.Is(err, services.ErrRunNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Run not found.", err.Error()))
		default:
			utils.LogError(err, "UpdateRunStatus: Error from runService.UpdateRunStatus")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update the run status.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "The status of run " + utils.Int64ToStr(instanceID) + "/" + uid + " has been set to " + applied,
	})
}
