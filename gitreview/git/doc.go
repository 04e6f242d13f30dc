// Package git keeps the local working copy consistent with
// the review workflow.
//
// Repo wraps git subprocess calls made through an
// exec.Runner. Calls that must succeed turn a non-zero exit
// into an error wrapping review.ErrUnprocessableState; the
// others hand raw stdout back to the caller.
//
// Local branches follow a naming convention tying them to
// requests: "pr/<number>" for checked out requests and
// "review/<name>" for branches prepared before a request
// exists. CleanSingle and CleanAll delete such branches once
// their commits reached the target branch.
//
// Provider implementations for GitHub, Bitbucket and GitLab
// live in sub-packages.
package git
