// Package errors provides standardized error handling for the registration workflow.
package errors

import (
	"fmt"
	"net/http"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInputInvalid ErrorCode = "INPUT_INVALID"

	ErrCodeNotEligible  ErrorCode = "NOT_ELIGIBLE"
	ErrCodeNameMismatch ErrorCode = "NAME_MISMATCH"

	ErrCodeAlreadyRegistered ErrorCode = "ALREADY_REGISTERED"

	ErrCodeUpstreamConflict    ErrorCode = "UPSTREAM_CONFLICT"
	ErrCodeUpstreamRejected    ErrorCode = "UPSTREAM_REJECTED"
	ErrCodeUpstreamUnavailable ErrorCode = "UPSTREAM_UNAVAILABLE"

	ErrCodePersistenceConflict   ErrorCode = "PERSISTENCE_CONFLICT"
	ErrCodePersistenceValidation ErrorCode = "PERSISTENCE_VALIDATION"

	ErrCodeConfigError   ErrorCode = "CONFIG_ERROR"
	ErrCodeInternalError ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode         `json:"code"`
	Message   string            `json:"message"`
	Details   string            `json:"details,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
	Retryable bool              `json:"retryable"`
	Timestamp time.Time         `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewInputInvalidError creates a non-retryable request validation error.
func NewInputInvalidError(message string, fields map[string]string) *StandardError {
	if message == "" {
		message = "请求数据不完整"
	}
	return &StandardError{
		Code:      ErrCodeInputInvalid,
		Message:   message,
		Fields:    fields,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotEligibleError creates a non-retryable eligibility rejection.
func NewNotEligibleError(studentID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotEligible,
		Message:   "该学号不在新生名单中，请联系管理员",
		Details:   fmt.Sprintf("studentId: %s", studentID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNameMismatchError creates a non-retryable identity-claim rejection.
func NewNameMismatchError(studentID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNameMismatch,
		Message:   "姓名与学号不匹配，请核对后重试",
		Details:   fmt.Sprintf("studentId: %s", studentID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAlreadyRegisteredError creates a non-retryable duplicate registration error.
func NewAlreadyRegisteredError(studentID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAlreadyRegistered,
		Message:   "该学号已完成报名，请勿重复提交",
		Details:   fmt.Sprintf("studentId: %s", studentID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUpstreamConflictError creates a non-retryable username conflict error.
func NewUpstreamConflictError(username string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUpstreamConflict,
		Message:   "该用户名已被占用，请更换用户名",
		Details:   fmt.Sprintf("username: %s", username),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUpstreamRejectedError creates a non-retryable provisioning validation error.
func NewUpstreamRejectedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUpstreamRejected,
		Message:   "账号信息不符合要求，请检查后重试",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUpstreamUnavailableError creates a retryable provisioning connectivity error.
func NewUpstreamUnavailableError(err error) *StandardError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return &StandardError{
		Code:      ErrCodeUpstreamUnavailable,
		Message:   "账号服务暂时不可用，请稍后重试",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewPersistenceConflictError creates a non-retryable store conflict error.
func NewPersistenceConflictError(studentID string) *StandardError {
	return &StandardError{
		Code:      ErrCodePersistenceConflict,
		Message:   "该学号已完成报名，请勿重复提交",
		Details:   fmt.Sprintf("studentId: %s", studentID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPersistenceValidationError creates a non-retryable store rejection error.
func NewPersistenceValidationError(details string, fields map[string]string) *StandardError {
	return &StandardError{
		Code:      ErrCodePersistenceValidation,
		Message:   "报名数据校验失败",
		Details:   details,
		Fields:    fields,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewConfigError creates a non-retryable server configuration error.
func NewConfigError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigError,
		Message:   "服务器配置错误，请联系管理员",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError creates a retryable catch-all error.
func NewInternalError(err error) *StandardError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return &StandardError{
		Code:      ErrCodeInternalError,
		Message:   "服务器内部错误，请稍后重试",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. HTTP Status Mapping
// ==========================

// HTTPStatus maps an error code to the HTTP status carried on the wire.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeInputInvalid, ErrCodeUpstreamRejected, ErrCodePersistenceValidation:
		return http.StatusBadRequest
	case ErrCodeNotEligible, ErrCodeNameMismatch:
		return http.StatusForbidden
	case ErrCodeAlreadyRegistered, ErrCodeUpstreamConflict, ErrCodePersistenceConflict:
		return http.StatusConflict
	case ErrCodeUpstreamUnavailable:
		return http.StatusServiceUnavailable
	case ErrCodeConfigError, ErrCodeInternalError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	switch code {
	case ErrCodeUpstreamUnavailable, ErrCodeInternalError:
		return true
	default:
		return false
	}
}
