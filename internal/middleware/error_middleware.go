package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/studentdesk/internal/app/models/dto"
	"github.com/yigit/studentdesk/internal/pkg/apperrors"
)

// --- Central Error Handling ---

// HandleAPIError maps service errors to an error envelope and status code
func HandleAPIError(c *gin.Context, err error) {
	status, detail := describeError(err)
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(detail))
}

func describeError(err error) (int, *dto.ErrorDetail) {
	var verr *apperrors.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Validation failed").
			WithDetails(verr.Fields)
	}

	if reqErr, ok := apperrors.AsRequestError(err); ok {
		detail := dto.NewErrorDetail(dto.ErrorCodeExternalServiceError, reqErr.Error()).
			WithDetails(map[string]interface{}{
				"status": reqErr.Status,
				"method": reqErr.Method,
				"path":   reqErr.Path,
			})
		if reqErr.Detail != "" {
			detail = detail.WithDebugInfo("%s", reqErr.Detail)
		}
		return http.StatusBadGateway, detail
	}

	switch {
	case errors.Is(err, apperrors.ErrMissingIdentity):
		return http.StatusBadGateway, dto.NewErrorDetail(dto.ErrorCodeExternalServiceError, "Backend returned a record without an id")
	case errors.Is(err, apperrors.ErrStudentNotFound):
		return http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "Student not found")
	case errors.Is(err, apperrors.ErrResourceNotFound):
		return http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "Resource not found")
	case errors.Is(err, apperrors.ErrValidationFailed), errors.Is(err, apperrors.ErrBadRequest):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeValidationFailed, err.Error())
	case errors.Is(err, apperrors.ErrSessionClosed):
		return http.StatusServiceUnavailable, dto.NewErrorDetail(dto.ErrorCodeSessionClosed, "Session closed")
	default:
		return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
	}
}
