package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/studentdesk/internal/app/models/dto"
	"github.com/yigit/studentdesk/internal/pkg/apperrors"
)

func TestDescribeError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   dto.ErrorCode
	}{
		{
			name:   "validation",
			err:    apperrors.NewValidationError().Add("name", "Name is required"),
			status: http.StatusBadRequest,
			code:   dto.ErrorCodeValidationFailed,
		},
		{
			name:   "wrapped request error",
			err:    fmt.Errorf("save: %w", apperrors.NewRequestError(http.MethodPost, "/students", 500, "Failed to save student").WithDetail("oops")),
			status: http.StatusBadGateway,
			code:   dto.ErrorCodeExternalServiceError,
		},
		{
			name:   "record without id",
			err:    fmt.Errorf("create student: %w", apperrors.ErrMissingIdentity),
			status: http.StatusBadGateway,
			code:   dto.ErrorCodeExternalServiceError,
		},
		{
			name:   "student not found",
			err:    apperrors.ErrStudentNotFound,
			status: http.StatusNotFound,
			code:   dto.ErrorCodeResourceNotFound,
		},
		{
			name:   "resource not found",
			err:    apperrors.NewResourceNotFoundError("notification not found"),
			status: http.StatusNotFound,
			code:   dto.ErrorCodeResourceNotFound,
		},
		{
			name:   "bad request",
			err:    apperrors.NewBadRequestError("student id is required"),
			status: http.StatusBadRequest,
			code:   dto.ErrorCodeValidationFailed,
		},
		{
			name:   "session closed",
			err:    apperrors.ErrSessionClosed,
			status: http.StatusServiceUnavailable,
			code:   dto.ErrorCodeSessionClosed,
		},
		{
			name:   "unknown",
			err:    errors.New("boom"),
			status: http.StatusInternalServerError,
			code:   dto.ErrorCodeInternalServer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, detail := describeError(tt.err)
			assert.Equal(t, tt.status, status)
			require.NotNil(t, detail)
			assert.Equal(t, tt.code, detail.Code)
		})
	}
}

func TestDescribeError_RequestErrorDetails(t *testing.T) {
	err := apperrors.NewRequestError(http.MethodPut, "/students/s1", 404, "Failed to update student").WithDetail(`{"message":"Student not found"}`)

	_, detail := describeError(err)
	assert.Equal(t, "Failed to update student", detail.Message)
	assert.Equal(t, `{"message":"Student not found"}`, detail.DebugInfo)
	assert.Equal(t, 404, detail.Details.(map[string]interface{})["status"])
}

func TestHandleAPIError_Aborts(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	HandleAPIError(c, apperrors.ErrSessionClosed)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"SRV_004"`)
}
