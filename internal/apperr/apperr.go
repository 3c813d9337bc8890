// Package apperr defines the error taxonomy shared by every module.
// Callers classify failures with errors.Is against these sentinels.
package apperr

import "errors"

var (
	// ErrUnauthorized: the identifier's store prefix or role marker does not
	// grant access to the requested store.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrValidation: malformed input such as a non-positive quantity/price or
	// a date that is not in ddMMyyyy form.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound: unknown store, item, or purchase record.
	ErrNotFound = errors.New("not found")

	// ErrPolicyDenied: the request was well-formed but refused by a business
	// rule (budget, remote-store purchase cap, return window).
	ErrPolicyDenied = errors.New("denied by policy")

	// ErrStoreUnavailable: a peer store did not answer within the call
	// deadline or could not be reached at all.
	ErrStoreUnavailable = errors.New("store unavailable")
)
