// errors/audit_errors.go
package errors

import "errors"

var (
	ErrAuditLogNotFound    = errors.New("audit log entry not found")
	ErrDatabaseOperation   = errors.New("database operation failed")
	ErrInternalServer      = errors.New("internal server error")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidPagination   = errors.New("invalid pagination parameters")
	ErrInvalidDateFormat   = errors.New("invalid date format, expected YYYY-MM-DD")
	ErrInvalidExportFormat = errors.New("export format must be json or csv")
	ErrInvalidVerifyRange  = errors.New("invalid verification sequence range")
	ErrInvalidAuditFilter  = errors.New("invalid audit log filter")
	ErrMissingOrganization = errors.New("organization not present in request context")
	ErrAuditAppendFailed   = errors.New("failed to append audit log entry")
	ErrSequenceConflict    = errors.New("concurrent append produced a sequence conflict")
)
