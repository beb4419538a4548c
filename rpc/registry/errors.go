package registry

import (
	"fmt"
	"strings"

	rcst "github.com/nspcc-dev/assignment-registry/contracts/registry/registryconst"
)

// Code is a numeric code of the registry contract failure.
type Code uint16

// Failure codes of the registry contract.
const (
	CodeCourseNotFound Code = 100 + iota
	CodeDuplicateAssignment
	CodeUnauthorized
	CodeInvalidHash
	CodeInvalidTitle
	CodeInvalidStudentID
	CodeInvalidCourseID
	CodeAssignmentNotFound
	CodePastTimestamp
	CodeMaxAssignmentsExceeded
	CodeInvalidMetadata
	CodeNotificationFailed
	CodeAuditLogFailed
	CodeTimestampOracleFailed
	CodeMetadataStoreFailed
)

var codeInfo = []struct {
	code    Code
	name    string
	message string
}{
	{CodeCourseNotFound, "CourseNotFound", rcst.ErrorCourseNotFound},
	{CodeDuplicateAssignment, "DuplicateAssignment", rcst.ErrorDuplicateAssignment},
	{CodeUnauthorized, "Unauthorized", rcst.ErrorUnauthorized},
	{CodeInvalidHash, "InvalidHash", rcst.ErrorInvalidHash},
	{CodeInvalidTitle, "InvalidTitle", rcst.ErrorInvalidTitle},
	{CodeInvalidStudentID, "InvalidStudentId", rcst.ErrorInvalidStudentID},
	{CodeInvalidCourseID, "InvalidCourseId", rcst.ErrorInvalidCourseID},
	{CodeAssignmentNotFound, "AssignmentNotFound", rcst.ErrorAssignmentNotFound},
	{CodePastTimestamp, "PastTimestamp", rcst.ErrorPastTimestamp},
	{CodeMaxAssignmentsExceeded, "MaxAssignmentsExceeded", rcst.ErrorMaxAssignmentsExceeded},
	{CodeInvalidMetadata, "InvalidMetadata", rcst.ErrorInvalidMetadata},
	{CodeNotificationFailed, "NotificationFailed", rcst.ErrorNotificationFailed},
	{CodeAuditLogFailed, "AuditLogFailed", rcst.ErrorAuditLogFailed},
	{CodeTimestampOracleFailed, "TimestampOracleFailed", rcst.ErrorTimestampOracleFailed},
	{CodeMetadataStoreFailed, "MetadataStoreFailed", rcst.ErrorMetadataStoreFailed},
}

// Sentinel errors to be used with errors.Is.
var (
	ErrCourseNotFound         = &Error{Code: CodeCourseNotFound}
	ErrDuplicateAssignment    = &Error{Code: CodeDuplicateAssignment}
	ErrUnauthorized           = &Error{Code: CodeUnauthorized}
	ErrInvalidHash            = &Error{Code: CodeInvalidHash}
	ErrInvalidTitle           = &Error{Code: CodeInvalidTitle}
	ErrInvalidStudentID       = &Error{Code: CodeInvalidStudentID}
	ErrInvalidCourseID        = &Error{Code: CodeInvalidCourseID}
	ErrAssignmentNotFound     = &Error{Code: CodeAssignmentNotFound}
	ErrPastTimestamp          = &Error{Code: CodePastTimestamp}
	ErrMaxAssignmentsExceeded = &Error{Code: CodeMaxAssignmentsExceeded}
	ErrInvalidMetadata        = &Error{Code: CodeInvalidMetadata}
	ErrNotificationFailed     = &Error{Code: CodeNotificationFailed}
	ErrAuditLogFailed         = &Error{Code: CodeAuditLogFailed}
	ErrTimestampOracleFailed  = &Error{Code: CodeTimestampOracleFailed}
	ErrMetadataStoreFailed    = &Error{Code: CodeMetadataStoreFailed}
)

// String returns the name of the code.
func (c Code) String() string {
	for i := range codeInfo {
		if codeInfo[i].code == c {
			return codeInfo[i].name
		}
	}
	return fmt.Sprintf("Code(%d)", uint16(c))
}

// Error is a failure of the registry contract method. Cause holds the
// original RPC or VM error.
type Error struct {
	Code  Code
	Cause error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("registry: %s (%d)", e.Code, uint16(e.Code))
	}
	return fmt.Sprintf("registry: %s (%d): %v", e.Code, uint16(e.Code), e.Cause)
}

// Unwrap returns the cause of the error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// ParseError converts an error returned by the contract invocation into
// *Error if its text carries a registry failure message. Other errors
// are returned as is.
func ParseError(err error) error {
	if err == nil {
		return nil
	}

	if code, ok := parseCode(err.Error()); ok {
		return &Error{Code: code, Cause: err}
	}

	return err
}

// ParseFault converts the FAULT exception of the executed transaction into
// an error. Empty exception results in nil.
func ParseFault(exception string) error {
	if exception == "" {
		return nil
	}

	cause := fmt.Errorf("transaction failed: %s", exception)
	if code, ok := parseCode(exception); ok {
		return &Error{Code: code, Cause: cause}
	}

	return cause
}

func parseCode(text string) (Code, bool) {
	for i := range codeInfo {
		if strings.Contains(text, codeInfo[i].message) {
			return codeInfo[i].code, true
		}
	}
	return 0, false
}
