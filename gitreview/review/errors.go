package review

import "errors"

// Error kinds surfaced to the user. Wrap them with
// fmt.Errorf("%s: %w", errCtx, ErrX) and test with
// errors.Is.
var (
	// ErrInvalidRequestID: the ID is missing, not a
	// positive integer, or does not resolve.
	ErrInvalidRequestID = errors.New("invalid request id")

	// ErrUnprocessableState: a git command that had
	// to succeed did not.
	ErrUnprocessableState = errors.New("unprocessable state")

	// ErrUnsupportedRemote: the origin remote matches no
	// known hosting platform.
	ErrUnsupportedRemote = errors.New("unsupported remote")

	// ErrAuthentication: credentials are missing or
	// were rejected by the platform.
	ErrAuthentication = errors.New("authentication failure")

	// ErrInvalidResponse: a platform payload lacks a
	// required field.
	ErrInvalidResponse = errors.New("invalid response")
)
