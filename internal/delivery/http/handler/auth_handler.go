package handler

import (
	"net/http"
	"time"

	"github.com/gdugdh24/devmatch-backend/internal/delivery/http/middleware"
	"github.com/gdugdh24/devmatch-backend/internal/usecase/auth"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authUseCase  *auth.AuthUseCase
	cookieSecure bool
}

func NewAuthHandler(authUseCase *auth.AuthUseCase, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		authUseCase:  authUseCase,
		cookieSecure: cookieSecure,
	}
}

// Signup handles POST /auth/signup
// @Summary Sign up
// @Tags auth
// @Accept json
// @Produce json
// @Param request body auth.SignupRequest true "Account data"
// @Success 201 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req auth.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: bindingMessage(err)})
		return
	}

	user, err := h.authUseCase.Signup(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{
		Message: "user added successfully",
		Data:    user,
	})
}

// Login handles POST /auth/login and sets the session cookie
// @Summary Log in
// @Tags auth
// @Accept json
// @Produce json
// @Param request body auth.LoginRequest true "Credentials"
// @Success 200 {object} auth.AuthResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: bindingMessage(err)})
		return
	}

	result, err := h.authUseCase.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	maxAge := int(time.Until(result.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, result.Token, maxAge, "/", "", h.cookieSecure, true)

	c.JSON(http.StatusOK, result)
}

// Logout handles POST /auth/logout
// @Summary Logout
// @Description Revoke the session token and clear the cookie
// @Tags auth
// @Produce json
// @Success 200 {object} SuccessResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authUseCase.Logout(c.Request.Context(), middleware.TokenFromRequest(c)); err != nil {
		respondError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, "", -1, "/", "", h.cookieSecure, true)
	c.JSON(http.StatusOK, SuccessResponse{Message: "logged out successfully"})
}

// ChangePassword handles PATCH /profile/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req auth.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: bindingMessage(err)})
		return
	}

	if err := h.authUseCase.ChangePassword(c.Request.Context(), userID, &req); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "password updated successfully"})
}
