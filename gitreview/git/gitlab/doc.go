// Package gitlab implements review.Provider for GitLab
// merge requests on gitlab.com or a self-hosted instance.
// Calls go through the typed client-go services and the
// returned models are normalized into the canonical
// model.
package gitlab
