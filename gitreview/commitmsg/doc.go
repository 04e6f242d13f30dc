// Package commitmsg renders the messages git-review
// writes on behalf of the user: merge commit messages,
// the approval comment, and request titles derived from
// the last commit.
package commitmsg
