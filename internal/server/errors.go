package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	aggdomain "github.com/hydrocore/waterworks/internal/aggregation/domain"
	areadomain "github.com/hydrocore/waterworks/internal/area/domain"
	auditdomain "github.com/hydrocore/waterworks/internal/audit/domain"
	authdomain "github.com/hydrocore/waterworks/internal/auth/domain"
	"github.com/hydrocore/waterworks/internal/authorization"
	branchdomain "github.com/hydrocore/waterworks/internal/branch/domain"
	dailydomain "github.com/hydrocore/waterworks/internal/dailyrecord/domain"
	monthlydomain "github.com/hydrocore/waterworks/internal/monthlyrecord/domain"
	"github.com/hydrocore/waterworks/internal/report"
	rfdomain "github.com/hydrocore/waterworks/internal/requiredfields/domain"
	sourcedomain "github.com/hydrocore/waterworks/internal/source/domain"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal_error")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrTooManyRequests    = errors.New("too_many_requests")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		// A failed completion gate has its own response shape so the
		// monthly form can show the coverage numbers.
		var completion *monthlydomain.CompletionError
		if errors.As(lastErr.Err, &completion) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"validation": completion.Result,
			})
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authdomain.ErrInvalidCredentials),
		errors.Is(err, authdomain.ErrInvalidSession),
		errors.Is(err, authdomain.ErrSessionNotFound),
		errors.Is(err, authdomain.ErrSessionExpired),
		errors.Is(err, authdomain.ErrSessionRevoked):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden),
		errors.Is(err, authorization.ErrForbidden),
		errors.Is(err, authdomain.ErrUserInactive):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case errors.Is(err, ErrConflict),
		errors.Is(err, authdomain.ErrUserExists),
		errors.Is(err, branchdomain.ErrDuplicateCode),
		errors.Is(err, sourcedomain.ErrDuplicateCode),
		errors.Is(err, dailydomain.ErrDuplicateDate),
		errors.Is(err, monthlydomain.ErrDuplicatePeriod):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "conflict",
		}
	case errors.Is(err, ErrTooManyRequests),
		errors.Is(err, authdomain.ErrTooManyAttempts):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "too_many_requests",
			Message: "too many requests",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrServiceUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return true
	case errors.Is(err, areadomain.ErrInvalidName),
		errors.Is(err, areadomain.ErrInvalidCode),
		errors.Is(err, areadomain.ErrInvalidID):
		return true
	case errors.Is(err, branchdomain.ErrInvalidName),
		errors.Is(err, branchdomain.ErrInvalidCode),
		errors.Is(err, branchdomain.ErrInvalidID),
		errors.Is(err, branchdomain.ErrInvalidAreaID):
		return true
	case errors.Is(err, sourcedomain.ErrInvalidName),
		errors.Is(err, sourcedomain.ErrInvalidCode),
		errors.Is(err, sourcedomain.ErrInvalidID),
		errors.Is(err, sourcedomain.ErrInvalidBranchID),
		errors.Is(err, sourcedomain.ErrTypeDeactivated):
		return true
	case errors.Is(err, authdomain.ErrInvalidRole),
		errors.Is(err, authdomain.ErrBranchRequired):
		return true
	case errors.Is(err, rfdomain.ErrInvalidBranchID),
		errors.Is(err, rfdomain.ErrInvalidFormType),
		errors.Is(err, rfdomain.ErrUnknownField),
		errors.Is(err, rfdomain.ErrFieldNotAllowed):
		return true
	case errors.Is(err, dailydomain.ErrInvalidID),
		errors.Is(err, dailydomain.ErrInvalidBranchID),
		errors.Is(err, dailydomain.ErrInvalidDate),
		errors.Is(err, dailydomain.ErrInvalidPeriod),
		errors.Is(err, dailydomain.ErrUnknownField),
		errors.Is(err, dailydomain.ErrInvalidFieldValue),
		errors.Is(err, dailydomain.ErrMissingRequired),
		errors.Is(err, dailydomain.ErrInvalidDecision),
		errors.Is(err, dailydomain.ErrCommentRequired),
		errors.Is(err, dailydomain.ErrNotPending),
		errors.Is(err, dailydomain.ErrSourceBranchMismatch):
		return true
	case errors.Is(err, monthlydomain.ErrInvalidID),
		errors.Is(err, monthlydomain.ErrInvalidBranchID),
		errors.Is(err, monthlydomain.ErrInvalidPeriod),
		errors.Is(err, monthlydomain.ErrUnknownField),
		errors.Is(err, monthlydomain.ErrAutoFieldSubmitted),
		errors.Is(err, monthlydomain.ErrInvalidFieldValue),
		errors.Is(err, monthlydomain.ErrMissingRequired),
		errors.Is(err, monthlydomain.ErrInvalidBulkOuttake),
		errors.Is(err, monthlydomain.ErrInvalidDecision),
		errors.Is(err, monthlydomain.ErrCommentRequired),
		errors.Is(err, monthlydomain.ErrNotPending),
		errors.Is(err, monthlydomain.ErrSourceBranchMismatch):
		return true
	case errors.Is(err, aggdomain.ErrInvalidBranchID),
		errors.Is(err, aggdomain.ErrInvalidSourceType),
		errors.Is(err, aggdomain.ErrInvalidSourceName),
		errors.Is(err, aggdomain.ErrInvalidPeriod),
		errors.Is(err, aggdomain.ErrEmptyBatch):
		return true
	case errors.Is(err, report.ErrInvalidBranchID),
		errors.Is(err, report.ErrInvalidPeriod):
		return true
	case errors.Is(err, auditdomain.ErrInvalidBranch),
		errors.Is(err, auditdomain.ErrInvalidPageToken),
		errors.Is(err, auditdomain.ErrInvalidTimeRange),
		errors.Is(err, auditdomain.ErrInvalidAction):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, areadomain.ErrNotFound),
		errors.Is(err, branchdomain.ErrNotFound),
		errors.Is(err, branchdomain.ErrAreaNotFound),
		errors.Is(err, sourcedomain.ErrTypeNotFound),
		errors.Is(err, sourcedomain.ErrNameNotFound),
		errors.Is(err, sourcedomain.ErrBranchNotFound),
		errors.Is(err, authdomain.ErrUserNotFound),
		errors.Is(err, rfdomain.ErrBranchNotFound),
		errors.Is(err, dailydomain.ErrNotFound),
		errors.Is(err, dailydomain.ErrInvalidSourceName),
		errors.Is(err, monthlydomain.ErrNotFound),
		errors.Is(err, monthlydomain.ErrInvalidSourceName),
		errors.Is(err, report.ErrBranchNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	if errors.Is(err, ErrInvalidRequest) {
		return "invalid_request"
	}
	return err.Error()
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	default:
		return "invalid value"
	}
}

// classifyErrorForLog buckets request errors for the access log.
func classifyErrorForLog(err error) (string, string) {
	if err == nil {
		return "", ""
	}
	status, payload := mapError(err)
	switch {
	case status >= 500:
		return "server_error", payload.Type
	case status >= 400:
		return "client_error", payload.Type
	default:
		return "", ""
	}
}
