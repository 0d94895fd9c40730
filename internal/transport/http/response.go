package httptransport

import (
	"net/http"

	"github.com/gin-gonic/gin"

	platformerrors "medinsight-server-go/internal/platform/errors"
)

// APIResponse is the uniform envelope returned by every JSON endpoint.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Message string      `json:"message"`
	Code    int         `json:"code"`
}

// RespondSuccess writes a success envelope.
func RespondSuccess(c *gin.Context, httpStatus int, data interface{}, message string) {
	if message == "" {
		message = "ok"
	}

	resp := APIResponse{
		Success: true,
		Message: message,
		Code:    httpStatus,
		Data:    data,
	}

	c.JSON(httpStatus, resp)
}

// RespondError writes a failure envelope.
func RespondError(c *gin.Context, httpStatus int, message string, data interface{}) {
	resp := APIResponse{
		Success: false,
		Message: message,
		Code:    httpStatus,
		Data:    data,
	}

	c.JSON(httpStatus, resp)
}

// StatusForError maps error kinds onto HTTP status codes.
func StatusForError(err error) int {
	switch platformerrors.KindOf(err) {
	case platformerrors.KindDomain:
		return http.StatusBadRequest
	case platformerrors.KindInference:
		return http.StatusBadGateway
	case platformerrors.KindExport:
		return http.StatusNotFound
	case platformerrors.KindStorage:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
