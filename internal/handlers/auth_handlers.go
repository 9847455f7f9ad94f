package handlers

import (
	"errors"
	"net/http"

	"supervisor_settings_backend/internal/services"
	"supervisor_settings_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the token service.
type AuthHandler struct {
	tokenService services.TokenService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(ts services.TokenService) *AuthHandler {
	return &AuthHandler{tokenService: ts}
}

// IssueToken exchanges service-account credentials for a bearer token.
func (h *AuthHandler) IssueToken(c *gin.Context) {
	var req services.TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	resp, err := h.tokenService.IssueToken(req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid client id or secret.", "Invalid credentials"))
			return
		}
		utils.LogError(err, "IssueToken: Error from tokenService.IssueToken")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to issue token.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, resp)
}
