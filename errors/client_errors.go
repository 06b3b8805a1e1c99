// errors/client_errors.go
package errors

import "errors"

var (
	ErrClientNotFound    = errors.New("client not found")
	ErrClientConflict    = errors.New("client conflict")
	ErrInvalidClientData = errors.New("invalid client data")
)
