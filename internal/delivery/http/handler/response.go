package handler

import (
	"errors"
	"net/http"

	"github.com/gdugdh24/devmatch-backend/internal/delivery/http/middleware"
	"github.com/gdugdh24/devmatch-backend/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ErrorResponse represents error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse represents success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

var errorStatus = []struct {
	err    error
	status int
}{
	{domain.ErrInvalidStatus, http.StatusBadRequest},
	{domain.ErrSelfRequest, http.StatusBadRequest},
	{domain.ErrInvalidInput, http.StatusBadRequest},
	{domain.ErrUnauthenticated, http.StatusUnauthorized},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized},
	{domain.ErrChatNotAllowed, http.StatusForbidden},
	{domain.ErrTargetNotFound, http.StatusNotFound},
	{domain.ErrRequestNotFound, http.StatusNotFound},
	{domain.ErrUserNotFound, http.StatusNotFound},
	{domain.ErrChatNotFound, http.StatusNotFound},
	{domain.ErrDuplicateRequest, http.StatusConflict},
	{domain.ErrEmailTaken, http.StatusConflict},
}

// respondError maps domain errors to their status code. Anything else is a 500
// whose detail goes to the request log only.
func respondError(c *gin.Context, err error) {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			c.JSON(e.status, ErrorResponse{Error: err.Error()})
			return
		}
	}
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

func currentUser(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	return userID, ok
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

// lookupUUID parses an id the use case resolves itself. A malformed value
// becomes uuid.Nil, which resolves to nothing, so it fails the same way as
// an unknown id and after the same earlier checks.
func lookupUUID(c *gin.Context, name string) uuid.UUID {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil
	}
	return id
}
