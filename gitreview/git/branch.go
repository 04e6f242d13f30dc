package git

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	requestPrefix = "pr/"
	reviewPrefix  = "review/"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Sanitize lower-cases name, replaces each run of
// non-alphanumeric characters with one underscore and
// trims underscores at both ends. Sanitize is idempotent.
func Sanitize(name string) string {
	s := nonAlnum.ReplaceAllString(strings.ToLower(name), "_")

	return strings.Trim(s, "_")
}

// RequestBranch is the local branch holding request
// number's head.
func RequestBranch(number int) string {
	return requestPrefix + strconv.Itoa(number)
}

// ReviewBranch is the branch prepared for a future
// request named name.
func ReviewBranch(name string) string {
	return reviewPrefix + Sanitize(name)
}

// ParseRequestBranch returns the request number encoded
// in a "pr/<number>" branch name.
func ParseRequestBranch(branch string) (int, bool) {
	num, ok := strings.CutPrefix(branch, requestPrefix)
	if !ok {
		return 0, false
	}

	n, err := strconv.Atoi(num)
	if err != nil || n <= 0 {
		return 0, false
	}

	return n, true
}

// IsReviewBranch reports whether branch follows the
// naming convention, i.e. it is a request or review
// branch.
func IsReviewBranch(branch string) bool {
	if _, ok := ParseRequestBranch(branch); ok {
		return true
	}

	return IsPrepared(branch)
}

// IsPrepared reports whether branch is a review branch
// created by PrepareBranch.
func IsPrepared(branch string) bool {
	name, ok := strings.CutPrefix(branch, reviewPrefix)

	return ok && name != ""
}
