package handlers

import (
	"errors"
	"net/http"

	"supervisor_settings_backend/internal/models"
	"supervisor_settings_backend/internal/services"
	"supervisor_settings_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// JobHandler holds the supervisor job configuration service.
type JobHandler struct {
	jobService services.JobService
}

// NewJobHandler creates a new JobHandler.
func NewJobHandler(js services.JobService) *JobHandler {
	return &JobHandler{jobService: js}
}

// workflowFromQuery reads and validates the workflow query param.
// ASGS is the default when the param is absent.
func workflowFromQuery(c *gin.Context) (models.WorkflowType, bool) {
	workflow := models.WorkflowType(c.DefaultQuery("workflow", string(models.WorkflowASGS)))
	if !workflow.IsValid() {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "Unknown workflow type: "+string(workflow), "workflow must be one of ASGS, ECFLOW, HECRAS"))
		return "", false
	}
	return workflow, true
}

// GetJobDefinitions returns all job definitions grouped by workflow type.
func (h *JobHandler) GetJobDefinitions(c *gin.Context) {
	defs, err := h.jobService.GetJobDefinitions()
	if err != nil {
		utils.LogError(err, "GetJobDefinitions: Error from jobService.GetJobDefinitions")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch job definitions.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, defs)
}

// GetJobOrder returns a workflow's resolved job processing order.
func (h *JobHandler) GetJobOrder(c *gin.Context) {
	workflow, ok := workflowFromQuery(c)
	if !ok {
		return
	}

	order, err := h.jobService.GetJobOrder(workflow)
	if err != nil {
		utils.LogError(err, "GetJobOrder: Error from jobService.GetJobOrder")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch the job order.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"workflow": workflow, "job_order": order})
}

// ResetJobOrder resets a workflow's job order to the default sequence.
func (h *JobHandler) ResetJobOrder(c *gin.Context) {
	workflow, ok := workflowFromQuery(c)
	if !ok {
		return
	}

	order, err := h.jobService.ResetJobOrder(workflow)
	if err != nil {
		utils.LogError(err, "ResetJobOrder: Error from jobService.ResetJobOrder")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to reset the job order.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":   "The job order has been reset to the default.",
		"workflow":  workflow,
		"job_order": order,
	})
}

// SetNextJob repoints one job's next-job link within a workflow.
func (h *JobHandler) SetNextJob(c *gin.Context) {
	workflow, ok := workflowFromQuery(c)
	if !ok {
		return
	}
	jobTypeName := c.Param("job_type")
	nextJobTypeName := c.Param("next_job_type")

	order, err := h.jobService.SetNextJob(workflow, jobTypeName, nextJobTypeName)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNextJobSelf):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "A job cannot be its own next job.", err.Error()))
		case errors.Is(err, services.ErrJobTypeUnknown):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Unknown job type.", err.Error()))
		default:
			utils.LogError(err, "SetNextJob: Error from jobService.SetNextJob")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update the next job.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":   "The " + jobTypeName + " next process has been set to " + nextJobTypeName,
		"workflow":  workflow,
		"job_order": order,
	})
}

// UpdateImageVersion updates the image version label for a job type.
func (h *JobHandler) UpdateImageVersion(c *gin.Context) {
	jobTypeName := c.Param("job_type")

	var req services.UpdateImageVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), "version must be in the form v<int>.<int>.<int>"))
		return
	}

	image, err := h.jobService.UpdateImageVersion(jobTypeName, req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrImageFrozen):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusLocked, utils.ErrCodeLocked, "Image version updates are currently frozen.", err.Error()))
		case errors.Is(err, services.ErrJobTypeUnknown):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Unknown job type.", err.Error()))
		case errors.Is(err, services.ErrValidation):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid image repo or version.", err.Error()))
		default:
			utils.LogError(err, "UpdateImageVersion: Error from jobService.UpdateImageVersion")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update the image version.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "The image for job type " + jobTypeName + " has been set to " + image,
		"image":   image,
	})
}
