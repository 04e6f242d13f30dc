// Package server resolves the hosting platform of the
// current repository and holds the one Provider used for
// the lifetime of the process.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/byte4ever/git_review/gitreview/git/bitbucket"
	"github.com/byte4ever/git_review/gitreview/git/github"
	"github.com/byte4ever/git_review/gitreview/git/gitlab"
	"github.com/byte4ever/git_review/gitreview/review"
	"github.com/byte4ever/git_review/gitreview/settings"
)

// Origin reads the remote configuration of the local
// repository.
type Origin interface {
	OriginURL() (string, error)
	InsteadOfRules() (map[string]string, error)
}

// Factory builds a provider for owner/repo on a matched
// host.
type Factory func(owner string, repo string) (review.Provider, error)

// Variant is one supported hosting platform.
type Variant struct {
	Name string
	// Host is matched against the origin URL.
	Host string
	New  Factory
}

// Server selects and caches the Provider.
type Server struct {
	origin   Origin
	variants []Variant

	resolved bool
	provider review.Provider
	err      error
}

// New returns a Server trying GitHub, Bitbucket and
// GitLab in that order, configured from s.
func New(s *settings.Settings, origin Origin) *Server {
	return NewWithVariants(origin, Variants(s)...)
}

// NewWithVariants returns a Server trying variants in
// order.
func NewWithVariants(origin Origin, variants ...Variant) *Server {
	return &Server{
		origin:   origin,
		variants: variants,
	}
}

// Variants lists the supported platforms, hosts taken
// from s where they can be self-hosted.
func Variants(s *settings.Settings) []Variant {
	ghHost := github.Host
	if s.GitHub.EnterpriseHost != "" {
		ghHost = s.GitHub.EnterpriseHost
	}

	glHost := gitlab.Host
	if u, err := url.Parse(s.GitLab.Host); err == nil && u.Host != "" {
		glHost = u.Host
	}

	return []Variant{
		{
			Name: "github",
			Host: ghHost,
			New: func(owner, repo string) (review.Provider, error) {
				return github.NewProvider(github.Config{
					RepoOwner:      owner,
					Repo:           repo,
					AccessToken:    s.GitHub.Token,
					EnterpriseHost: s.GitHub.EnterpriseHost,
				})
			},
		},
		{
			Name: "bitbucket",
			Host: bitbucket.Host,
			New: func(owner, repo string) (review.Provider, error) {
				return bitbucket.NewProvider(bitbucket.Config{
					Workspace:   owner,
					Repo:        repo,
					User:        s.Bitbucket.Username,
					Password:    s.Bitbucket.AppPassword,
					AccessToken: s.Bitbucket.Token,
				})
			},
		},
		{
			Name: "gitlab",
			Host: glHost,
			New: func(owner, repo string) (review.Provider, error) {
				return gitlab.NewProvider(gitlab.Config{
					Host:        s.GitLab.Host,
					Repo:        owner + "/" + repo,
					AccessToken: s.GitLab.Token,
				})
			},
		},
	}
}

// Provider returns the provider for the origin remote,
// resolving and authenticating it on first use. The
// outcome, success or failure, is cached: later calls
// return the identical instance or error.
func (s *Server) Provider(ctx context.Context) (review.Provider, error) {
	if !s.resolved {
		s.provider, s.err = s.resolve(ctx)
		s.resolved = true
	}

	return s.provider, s.err
}

func (s *Server) resolve(ctx context.Context) (review.Provider, error) {
	const errCtx = "resolving provider"

	origin, err := s.origin.OriginURL()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	if origin == "" {
		return nil, fmt.Errorf(
			"%s: no origin remote: %w",
			errCtx, review.ErrUnsupportedRemote,
		)
	}

	rules, err := s.origin.InsteadOfRules()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	for _, v := range s.variants {
		insteadOf, base := review.MatchInsteadOf(rules, v.Host, origin)
		target := review.RewriteURL(origin, insteadOf, base)

		owner, repo := review.MatchURL(v.Host, target)
		if owner == "" {
			continue
		}

		slog.Debug(
			"matched remote",
			"provider", v.Name,
			"url", target,
			"owner", owner,
			"repo", repo,
		)

		pv, err := v.New(owner, repo)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", errCtx, err)
		}

		if err := pv.ConfigureAccess(ctx); err != nil {
			return nil, fmt.Errorf("%s: %w", errCtx, err)
		}

		return pv, nil
	}

	return nil, fmt.Errorf(
		"%s: %s: %w", errCtx, origin, review.ErrUnsupportedRemote,
	)
}
