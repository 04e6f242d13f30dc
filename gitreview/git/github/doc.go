// Package github implements review.Provider on top of the
// GitHub REST API and normalizes its pull requests,
// comments and commits into the canonical model.
package github
