package http

import (
	"context"
	"errors"
	"net/http"

	"kis-canvas/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// HandleServiceError 把控制器返回的错误映射为 HTTP 状态码
func HandleServiceError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrUnknownInput) || errors.Is(err, service.ErrInvalidInput) {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
	} else if errors.Is(err, service.ErrControllerStopped) {
		ErrorResponse(c, http.StatusServiceUnavailable, err.Error())
	} else if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		ErrorResponse(c, http.StatusServiceUnavailable, "Canvas controller did not respond in time")
	} else {
		// Log the internal error for debugging
		logrus.WithError(err).Error("Unhandled internal server error")
		ErrorResponse(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
