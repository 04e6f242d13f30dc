package review

import "context"

// Pattern: Strategy -- swap hosting platform without
// changing the review workflow.

// Provider is the capability set of one hosting
// platform. Implementations translate wire responses
// into the canonical model and never cache results.
type Provider interface {
	// Name is the platform name, e.g. "github".
	Name() string

	// SourceRepo is the "owner/repo" the provider was
	// resolved for.
	SourceRepo() string

	// ConfigureAccess validates the configured
	// credentials. It returns an error wrapping
	// ErrAuthentication when they are missing or
	// rejected.
	ConfigureAccess(ctx context.Context) error

	// Request fetches one request. It fails with
	// ErrInvalidRequestID when number is not positive
	// or the platform reports not-found.
	Request(ctx context.Context, number int) (Request, error)

	// Requests fetches every request in state.
	Requests(ctx context.Context, state State) ([]Request, error)

	RequestComments(ctx context.Context, number int) ([]Comment, error)
	Commits(ctx context.Context, number int) ([]Commit, error)
	CommitComments(ctx context.Context, sha string) ([]Comment, error)

	// CreateRequest opens a request merging head into
	// base.
	CreateRequest(
		ctx context.Context,
		base string,
		head string,
		title string,
		body string,
	) (Request, error)

	// AddComment posts a request-level comment.
	AddComment(
		ctx context.Context,
		number int,
		body string,
	) (Comment, error)

	// CloseRequest closes (or declines) a request
	// without merging it.
	CloseRequest(ctx context.Context, number int) error

	URLForRequest(number int) string
	URLForRemote(repo string) string
}
