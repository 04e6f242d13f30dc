package commands

import (
	"errors"
	"fmt"

	"github.com/byte4ever/git_review/gitreview/review"
)

var (
	// ErrUsage reports malformed command arguments.
	ErrUsage = errors.New("usage error")

	// ErrSourceDeleted reports a request whose source
	// repository no longer exists.
	ErrSourceDeleted = errors.New("source repository deleted")

	// ErrNotConfirmed reports a remote change the
	// provider did not confirm.
	ErrNotConfirmed = errors.New("change not confirmed")
)

func usagef(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUsage, fmt.Sprintf(format, args...))
}

// Describe turns an error returned by Run into the
// message shown to the user.
func Describe(err error) string {
	switch {
	case err == nil:
		return ""

	case errors.Is(err, review.ErrInvalidRequestID):
		return "Please specify a valid ID."

	case errors.Is(err, review.ErrUnsupportedRemote):
		return "The origin remote is not hosted on a " +
			"supported platform (GitHub, Bitbucket, GitLab)."

	case errors.Is(err, review.ErrAuthentication):
		return "Authentication failed, check your " +
			"credentials: " + err.Error()

	case errors.Is(err, review.ErrUnprocessableState):
		return "A git command failed: " + err.Error()

	case errors.Is(err, review.ErrInvalidResponse):
		return "Unexpected response from the hosting " +
			"service: " + err.Error()

	case errors.Is(err, ErrSourceDeleted):
		return "Can not merge: the source repository " +
			"was deleted."

	case errors.Is(err, ErrUsage), errors.Is(err, ErrNotConfirmed):
		return err.Error()

	default:
		return "git-review failed: " + err.Error()
	}
}
