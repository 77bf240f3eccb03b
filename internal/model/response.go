package model

import "time"

// Response is the envelope every JSON endpoint returns. Exactly one of Data
// and Error is set.
type Response struct {
	Success   bool         `json:"success"`
	Data      interface{}  `json:"data,omitempty"`
	Error     *ErrorDetail `json:"error,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

// ErrorDetail carries a machine-readable error code (PROJECT_EXISTS,
// ACCESS_DENIED, ...) alongside a human-readable message.
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error codes shared between handlers and clients.
const (
	CodeCreationFailed         = "CREATION_FAILED"
	CodeProjectExists          = "PROJECT_EXISTS"
	CodeProjectNotFound        = "PROJECT_NOT_FOUND"
	CodeUpdateFailed           = "UPDATE_FAILED"
	CodeMemberExists           = "MEMBER_EXISTS"
	CodeMemberNotFound         = "MEMBER_NOT_FOUND"
	CodeAddMemberFailed        = "ADD_MEMBER_FAILED"
	CodeCannotRemoveLastMember = "CANNOT_REMOVE_LAST_MEMBER"
	CodeTaskNotFound           = "TASK_NOT_FOUND"
	CodeSubmissionNotFound     = "SUBMISSION_NOT_FOUND"
	CodeSecretNotFound         = "SECRET_NOT_FOUND"
	CodeRequestNotFound        = "REQUEST_NOT_FOUND"
	CodeRequestAlreadyHandled  = "REQUEST_ALREADY_HANDLED"
	CodeValidationFailed       = "VALIDATION_FAILED"
	CodeNoToken                = "NO_TOKEN"
	CodeInvalidToken           = "INVALID_TOKEN"
	CodeAccessDenied           = "ACCESS_DENIED"
	CodeInternalError          = "INTERNAL_ERROR"
)
