// Package bitbucket implements review.Provider for
// Bitbucket Cloud through its 2.0 REST API. Requests are
// authenticated with an OAuth bearer token when one is
// configured, else with username and app password.
package bitbucket
