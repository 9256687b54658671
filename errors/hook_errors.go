// errors/hook_errors.go
package errors

import "errors"

var (
	// ErrNotWhitelisted is the security-relevant rejection: the caller
	// attempting to mint or register a derivative is not on the allow-list.
	ErrNotWhitelisted = errors.New("caller not whitelisted for license")

	ErrInvalidMintAmount    = errors.New("mint amount must be non-negative")
	ErrInvalidFeeAmount     = errors.New("license terms provider returned an invalid fee")
	ErrAuthorityUnavailable = errors.New("access control authority unavailable")
	ErrTermsUnavailable     = errors.New("license terms provider unavailable")
)
