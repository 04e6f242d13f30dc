package bitbucket

import "github.com/byte4ever/git_review/gitreview/review"

// ToStateForTest exposes toState.
func ToStateForTest(s string) review.State {
	return toState(s)
}
