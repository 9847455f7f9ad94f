package handlers

import (
	"errors"
	"net/http"

	"supervisor_settings_backend/internal/services"
	"supervisor_settings_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// SettingHandler holds the configuration setting service.
type SettingHandler struct {
	settingService services.SettingService
}

// NewSettingHandler creates a new SettingHandler.
func NewSettingHandler(ss services.SettingService) *SettingHandler {
	return &SettingHandler{settingService: ss}
}

// GetSettings lists configuration settings, optionally filtered by category.
func (h *SettingHandler) GetSettings(c *gin.Context) {
	var category *string
	if v, ok := c.GetQuery("category"); ok {
		category = &v
	}

	settings, err := h.settingService.GetSettings(category)
	if err != nil {
		utils.LogError(err, "GetSettings: Error from settingService.GetSettings")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch configuration settings.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, settings)
}

// GetSettingByKey fetches a single configuration setting by its key.
func (h *SettingHandler) GetSettingByKey(c *gin.Context) {
	key := c.Param("key")

	setting, err := h.settingService.GetSettingByKey(key)
	if err != nil {
		if errors.Is(err, services.ErrSettingNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Configuration setting not found for key: "+key, err.Error()))
			return
		}
		utils.LogError(err, "GetSettingByKey: Error from settingService.GetSettingByKey")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch configuration setting.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, setting)
}

// UpsertSetting creates a new configuration setting or updates an existing
// one by key.
func (h *SettingHandler) UpsertSetting(c *gin.Context) {
	var req services.UpsertSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	setting, err := h.settingService.UpsertSetting(req)
	if err != nil {
		utils.LogError(err, "UpsertSetting: Error from settingService.UpsertSetting")
		if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid configuration setting.", err.Error()))
			return
		}
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to store configuration setting.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, setting)
}

// DeleteSettingByKey deletes a configuration setting by its key.
func (h *SettingHandler) DeleteSettingByKey(c *gin.Context) {
	key := c.Param("key")

	if err := h.settingService.DeleteSetting(key); err != nil {
		if errors.Is(err, services.ErrSettingNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Configuration setting not found to delete for key: "+key, err.Error()))
			return
		}
		utils.LogError(err, "DeleteSettingByKey: Error from settingService.DeleteSetting")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to delete configuration setting.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Configuration setting '" + key + "' deleted successfully"})
}
