package handler

import (
	"net/http"

	"github.com/gdugdh24/devmatch-backend/internal/domain"
	"github.com/gdugdh24/devmatch-backend/internal/usecase/request"
	"github.com/gin-gonic/gin"
)

type RequestHandler struct {
	requestUseCase *request.RequestUseCase
}

func NewRequestHandler(requestUseCase *request.RequestUseCase) *RequestHandler {
	return &RequestHandler{
		requestUseCase: requestUseCase,
	}
}

// Send handles POST /request/send/:status/:user_id
// @Summary Send a connection request
// @Description status is interested or ignored
// @Tags requests
// @Produce json
// @Success 201 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /request/send/{status}/{user_id} [post]
func (h *RequestHandler) Send(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	targetID := lookupUUID(c, "user_id")
	status := domain.RequestStatus(c.Param("status"))

	req, err := h.requestUseCase.Send(c.Request.Context(), userID, targetID, status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{
		Message: "connection request " + string(status),
		Data:    req,
	})
}

// Review handles POST /request/review/:status/:request_id
// @Summary Review a received connection request
// @Description status is accepted or rejected
// @Tags requests
// @Produce json
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /request/review/{status}/{request_id} [post]
func (h *RequestHandler) Review(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	requestID := lookupUUID(c, "request_id")
	decision := domain.RequestStatus(c.Param("status"))

	req, err := h.requestUseCase.Review(c.Request.Context(), userID, requestID, decision)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "connection request " + string(decision),
		Data:    req,
	})
}
