package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gdugdh24/devmatch-backend/internal/usecase/feed"
	"github.com/gdugdh24/devmatch-backend/internal/usecase/request"
	"github.com/gin-gonic/gin"
)

// UserHandler serves the signed-in user's lists: pending requests, connections and the feed.
type UserHandler struct {
	requestUseCase *request.RequestUseCase
	feedUseCase    *feed.FeedUseCase
}

func NewUserHandler(requestUseCase *request.RequestUseCase, feedUseCase *feed.FeedUseCase) *UserHandler {
	return &UserHandler{
		requestUseCase: requestUseCase,
		feedUseCase:    feedUseCase,
	}
}

// ReceivedRequests handles GET /user/requests/received
func (h *UserHandler) ReceivedRequests(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	received, err := h.requestUseCase.ListReceived(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "data fetched successfully",
		Data:    received,
	})
}

// Connections handles GET /user/connections
func (h *UserHandler) Connections(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	conns, err := h.requestUseCase.ConnectionsOf(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "data fetched successfully",
		Data:    conns,
	})
}

// Feed handles GET /user/feed?page=&limit=
// @Summary Discovery feed
// @Description Users the caller has no request with, oldest accounts first. limit defaults to 10 and is capped at 50.
// @Tags feed
// @Produce json
// @Param page query int false "Page, starting at 1"
// @Param limit query int false "Page size"
// @Success 200 {array} domain.PublicUser
// @Router /user/feed [get]
func (h *UserHandler) Feed(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 0)

	users, err := h.feedUseCase.Feed(c.Request.Context(), userID, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

// queryInt falls back to def when the parameter is missing or not a number.
// Out-of-range numbers saturate to the int bounds and are clamped downstream.
func queryInt(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return def
	}
	return v
}
