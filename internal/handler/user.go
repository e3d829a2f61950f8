package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"talentflow/internal/middleware"
	"talentflow/internal/service"
	"talentflow/pkg/logger"
)

type UserHandler struct {
	userService service.UserService
	log         logger.Logger
}

func NewUserHandler(userService service.UserService, log logger.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		log:         log,
	}
}

type UpdateProfileRequest struct {
	FullName       *string `json:"full_name"`
	AvatarURL      *string `json:"avatar_url"`
	CompanyName    *string `json:"company_name"`
	ExperienceBand *string `json:"experience_band"`
}

func (h *UserHandler) GetMe(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdateMe(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	updated, err := h.userService.UpdateProfile(c.Request.Context(), user.ID, service.UpdateProfileRequest{
		FullName:       req.FullName,
		AvatarURL:      req.AvatarURL,
		CompanyName:    req.CompanyName,
		ExperienceBand: req.ExperienceBand,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, updated)
}
