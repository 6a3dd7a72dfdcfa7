package handler

import (
	"net/http"

	"github.com/gdugdh24/devmatch-backend/internal/usecase/profile"
	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	profileUseCase *profile.ProfileUseCase
}

func NewProfileHandler(profileUseCase *profile.ProfileUseCase) *ProfileHandler {
	return &ProfileHandler{
		profileUseCase: profileUseCase,
	}
}

// View handles GET /profile/view
// @Summary Get my profile
// @Tags profile
// @Produce json
// @Success 200 {object} domain.User
// @Failure 401 {object} ErrorResponse
// @Router /profile/view [get]
func (h *ProfileHandler) View(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	user, err := h.profileUseCase.View(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// Edit handles PATCH /profile/edit
// @Summary Edit my profile
// @Description Only first_name, last_name, photo_url, about, age, gender and skills may be sent
// @Tags profile
// @Accept json
// @Produce json
// @Param request body profile.EditProfileRequest true "Fields to change"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Router /profile/edit [patch]
func (h *ProfileHandler) Edit(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req profile.EditProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: bindingMessage(err)})
		return
	}

	user, err := h.profileUseCase.Edit(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: user.FirstName + ", your profile was updated successfully",
		Data:    user,
	})
}

// GetUser handles GET /users/:user_id
func (h *ProfileHandler) GetUser(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}
	targetID, ok := pathUUID(c, "user_id")
	if !ok {
		return
	}

	user, err := h.profileUseCase.GetPublic(c.Request.Context(), targetID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
