package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/studentdesk/internal/app/models"
	"github.com/yigit/studentdesk/internal/app/models/dto"
)

// SessionController serves the header's session display
type SessionController struct {
	profile models.Profile
}

// NewSessionController creates a SessionController for a fixed profile
func NewSessionController(profile models.Profile) *SessionController {
	return &SessionController{profile: profile}
}

// GetSession returns the logged-in profile. There is no authentication.
// @Summary Current session
// @Tags session
// @Produce json
// @Success 200 {object} dto.APIResponse{data=models.Profile}
// @Router /session [get]
func (c *SessionController) GetSession(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(c.profile, ""))
}
