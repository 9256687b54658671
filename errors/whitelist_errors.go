// errors/whitelist_errors.go
package errors

import "errors"

var (
	ErrPermissionDenied   = errors.New("permission denied for licensor asset")
	ErrAlreadyWhitelisted = errors.New("minter already whitelisted")
	ErrNotInWhitelist     = errors.New("minter not in whitelist")
	ErrInvalidEntryData   = errors.New("invalid whitelist entry data")
	ErrDatabaseOperation  = errors.New("database operation failed")
	ErrInternalServer     = errors.New("internal server error")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidPagination  = errors.New("invalid pagination parameters")
)
