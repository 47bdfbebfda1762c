package core

// error_messages.go maps run-level failures to coded, user-facing messages.
//
// Error codes are grouped by category:
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Foreign key: Referenced category does not exist
//	        Patterns: "violates foreign key", "foreign key constraint"
//	DB002 - Connection refused: Unable to connect to database
//	        Patterns: "connection refused"
//	DB003 - Connection reset: Database connection was interrupted
//	        Patterns: "connection reset", "unexpected eof"
//	DB004 - Deadlock: Database was busy with conflicting operations
//	        Patterns: "deadlock"
//	DB005 - Too many parameters: Batch too large for one statement
//	        Patterns: "extended protocol limited"
//	DB006 - Timeout: Operation timed out
//	        Patterns: "timeout"
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: Upload exceeds the size limit
//	          Patterns: "request body too large", "file too large"
//	FILE002 - Unsupported format: Only .csv and .xlsx are accepted
//	          Patterns: "unsupported file format"
//	FILE003 - Invalid contents: File could not be parsed
//	          Patterns: "invalid file contents"
//	FILE004 - No file: No file was uploaded
//	          Patterns: "no file provided"
//
// # Import Errors (IMP001-IMP099)
//
//	IMP001 - System busy: Too many imports in progress
//	         Patterns: "too many imports"
//	IMP002 - Cancelled: The import was cancelled
//	         Patterns: "context canceled"
//	IMP003 - Timed out: The import ran past its deadline
//	         Patterns: "context deadline exceeded"
//	IMP004 - Unknown kind: Import kind is not configured
//	         Patterns: "unknown import kind"
//
// # Default Error (ERR000)
//
// Fallback when no pattern matches. Check the server log for the run_id.
//
// # Pattern Matching
//
// Patterns are matched case-insensitively with strings.Contains against the
// full error chain text. The first match wins, so specific patterns come
// before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var (
	msgForeignKey = UserMessage{
		Message: "Referenced category does not exist",
		Action:  "Import the categories file first",
		Code:    "DB001",
	}
	msgConnReset = UserMessage{
		Message: "Database connection was interrupted",
		Action:  "Please try again",
		Code:    "DB003",
	}
	msgTooLarge = UserMessage{
		Message: "File exceeds the upload size limit",
		Action:  "Split the file into smaller files",
		Code:    "FILE001",
	}
)

var errorPatterns = []errorPattern{
	// Database
	{pattern: "violates foreign key", msg: msgForeignKey},
	{pattern: "foreign key constraint", msg: msgForeignKey},
	{pattern: "connection refused", msg: UserMessage{
		Message: "Unable to connect to database",
		Action:  "Please try again in a few moments",
		Code:    "DB002",
	}},
	{pattern: "connection reset", msg: msgConnReset},
	{pattern: "unexpected eof", msg: msgConnReset},
	{pattern: "deadlock", msg: UserMessage{
		Message: "Database was busy with conflicting operations",
		Action:  "Please try again",
		Code:    "DB004",
	}},
	{pattern: "extended protocol limited", msg: UserMessage{
		Message: "Too many rows for a single statement",
		Action:  "Split the file into smaller files",
		Code:    "DB005",
	}},

	// Import runs. Deadline errors are matched before the generic timeout.
	{pattern: "too many imports", msg: UserMessage{
		Message: "System is busy processing other imports",
		Action:  "Please wait a moment and try again",
		Code:    "IMP001",
	}},
	{pattern: "context canceled", msg: UserMessage{
		Message: "The import was cancelled",
		Action:  "Please try again",
		Code:    "IMP002",
	}},
	{pattern: "context deadline exceeded", msg: UserMessage{
		Message: "The import timed out",
		Action:  "Try a smaller file or try again later",
		Code:    "IMP003",
	}},
	{pattern: "unknown import kind", msg: UserMessage{
		Message: "Import type is not configured",
		Action:  "Use the categories or listings import",
		Code:    "IMP004",
	}},
	{pattern: "timeout", msg: UserMessage{
		Message: "Operation timed out",
		Action:  "Try a smaller file or try again later",
		Code:    "DB006",
	}},

	// Files
	{pattern: "request body too large", msg: msgTooLarge},
	{pattern: "file too large", msg: msgTooLarge},
	{pattern: "unsupported file format", msg: UserMessage{
		Message: "Only .csv or .xlsx files are supported",
		Action:  "Save the file as CSV or Excel workbook",
		Code:    "FILE002",
	}},
	{pattern: "invalid file contents", msg: UserMessage{
		Message: "The file could not be read",
		Action:  "Check the file is a valid CSV or Excel workbook",
		Code:    "FILE003",
	}},
	{pattern: "no file provided", msg: UserMessage{
		Message: "No file uploaded",
		Action:  "Attach the file in the \"file\" form field",
		Code:    "FILE004",
	}},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Returns the ERR000 message when nothing matches and a zero value for nil.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

// FormatUserError formats err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
