package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	gh "github.com/google/go-github/v68/github"

	"github.com/byte4ever/git_review/gitreview/review"
)

// Host is the public GitHub host used for URL matching.
const Host = "github.com"

const perPage = 100

// Config holds the settings needed to create a GitHub
// provider.
type Config struct {
	// RepoOwner is the GitHub user or organisation
	// that owns the repository.
	RepoOwner string
	// Repo is the repository name (without owner).
	Repo string
	// AccessToken is a personal access token or
	// GitHub App token used for authentication.
	AccessToken string
	// EnterpriseHost is an optional GitHub Enterprise
	// hostname (e.g. "git.corp.example.com"). Leave
	// empty for github.com.
	EnterpriseHost string
	// APIURL overrides the API base URL entirely.
	APIURL string
}

// Provider talks to the GitHub REST API.
//
// Pattern: Strategy -- implements review.Provider.
type Provider struct {
	client    *gh.Client
	host      string
	repoOwner string
	repo      string
}

// NewProvider validates cfg and returns a Provider.
func NewProvider(cfg Config) (*Provider, error) {
	const errCtx = "creating github provider"

	if cfg.RepoOwner == "" {
		return nil, fmt.Errorf(
			"%s: repo owner must be set", errCtx,
		)
	}

	if cfg.Repo == "" {
		return nil, fmt.Errorf(
			"%s: repo must be set", errCtx,
		)
	}

	if cfg.AccessToken == "" {
		return nil, fmt.Errorf(
			"%s: access token must be set: %w",
			errCtx, review.ErrAuthentication,
		)
	}

	client := gh.NewClient(nil).
		WithAuthToken(cfg.AccessToken)

	host := Host

	switch {
	case cfg.APIURL != "":
		var err error

		client, err = client.WithEnterpriseURLs(
			cfg.APIURL, cfg.APIURL,
		)
		if err != nil {
			return nil, fmt.Errorf(
				"%s: api url: %w", errCtx, err,
			)
		}

	case cfg.EnterpriseHost != "":
		baseURL := "https://" +
			cfg.EnterpriseHost + "/api/v3/"
		uploadURL := "https://" +
			cfg.EnterpriseHost + "/api/uploads/"

		var err error

		client, err = client.WithEnterpriseURLs(
			baseURL, uploadURL,
		)
		if err != nil {
			return nil, fmt.Errorf(
				"%s: enterprise urls: %w",
				errCtx, err,
			)
		}

		host = cfg.EnterpriseHost
	}

	return &Provider{
		client:    client,
		host:      host,
		repoOwner: cfg.RepoOwner,
		repo:      cfg.Repo,
	}, nil
}

// Name returns "github".
func (*Provider) Name() string {
	return "github"
}

// SourceRepo returns "owner/repo".
func (p *Provider) SourceRepo() string {
	return p.repoOwner + "/" + p.repo
}

// ConfigureAccess checks the token by fetching the
// authenticated user.
func (p *Provider) ConfigureAccess(ctx context.Context) error {
	const errCtx = "configuring github access"

	user, resp, err := p.client.Users.Get(ctx, "")
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, classify(resp, err))
	}

	slog.Debug("authenticated", "login", user.GetLogin())

	return nil
}

// Request fetches pull request number.
func (p *Provider) Request(
	ctx context.Context,
	number int,
) (review.Request, error) {
	const errCtx = "fetching github pull request"

	if number <= 0 {
		return review.Request{}, fmt.Errorf(
			"%s: %d: %w",
			errCtx, number, review.ErrInvalidRequestID,
		)
	}

	pr, resp, err := p.client.PullRequests.Get(
		ctx, p.repoOwner, p.repo, number,
	)
	if err != nil {
		if resp != nil &&
			resp.StatusCode == http.StatusNotFound {
			return review.Request{}, fmt.Errorf(
				"%s: %d: %w",
				errCtx, number, review.ErrInvalidRequestID,
			)
		}

		return review.Request{}, fmt.Errorf(
			"%s: %w", errCtx, classify(resp, err),
		)
	}

	req, err := NewRequest(pr)
	if err != nil {
		return review.Request{}, fmt.Errorf(
			"%s: %w", errCtx, err,
		)
	}

	return req, nil
}

// Requests lists pull requests in state. GitHub knows
// no merged state; merged requests are the closed ones
// with a merge timestamp. Malformed entries are skipped
// with a warning.
func (p *Provider) Requests(
	ctx context.Context,
	state review.State,
) ([]review.Request, error) {
	const errCtx = "listing github pull requests"

	query := string(state)
	if state == review.StateMerged {
		query = string(review.StateClosed)
	}

	opts := &gh.PullRequestListOptions{
		State:       query,
		ListOptions: gh.ListOptions{PerPage: perPage},
	}

	var reqs []review.Request

	for {
		prs, resp, err := p.client.PullRequests.List(
			ctx, p.repoOwner, p.repo, opts,
		)
		if err != nil {
			return nil, fmt.Errorf(
				"%s: %w", errCtx, classify(resp, err),
			)
		}

		for _, pr := range prs {
			if state == review.StateMerged &&
				pr.MergedAt == nil {
				continue
			}

			req, err := NewRequest(pr)
			if err != nil {
				slog.Warn(
					"skipping malformed pull request",
					"error", err,
				)

				continue
			}

			reqs = append(reqs, req)
		}

		if resp.NextPage == 0 {
			break
		}

		opts.Page = resp.NextPage
	}

	return reqs, nil
}

// RequestComments lists the conversation comments of
// pull request number.
func (p *Provider) RequestComments(
	ctx context.Context,
	number int,
) ([]review.Comment, error) {
	const errCtx = "listing github request comments"

	opts := &gh.IssueListCommentsOptions{
		ListOptions: gh.ListOptions{PerPage: perPage},
	}

	var comments []review.Comment

	for {
		page, resp, err := p.client.Issues.ListComments(
			ctx, p.repoOwner, p.repo, number, opts,
		)
		if err != nil {
			return nil, fmt.Errorf(
				"%s: %w", errCtx, classify(resp, err),
			)
		}

		for _, c := range page {
			comments = append(comments, NewIssueComment(c))
		}

		if resp.NextPage == 0 {
			break
		}

		opts.Page = resp.NextPage
	}

	return comments, nil
}

// Commits lists the commits of pull request number.
func (p *Provider) Commits(
	ctx context.Context,
	number int,
) ([]review.Commit, error) {
	const errCtx = "listing github request commits"

	opts := &gh.ListOptions{PerPage: perPage}

	var commits []review.Commit

	for {
		page, resp, err := p.client.PullRequests.ListCommits(
			ctx, p.repoOwner, p.repo, number, opts,
		)
		if err != nil {
			return nil, fmt.Errorf(
				"%s: %w", errCtx, classify(resp, err),
			)
		}

		for _, rc := range page {
			commit, err := NewCommit(rc)
			if err != nil {
				slog.Warn(
					"skipping malformed commit",
					"error", err,
				)

				continue
			}

			commits = append(commits, commit)
		}

		if resp.NextPage == 0 {
			break
		}

		opts.Page = resp.NextPage
	}

	return commits, nil
}

// CommitComments lists the comments on commit sha.
func (p *Provider) CommitComments(
	ctx context.Context,
	sha string,
) ([]review.Comment, error) {
	const errCtx = "listing github commit comments"

	opts := &gh.ListOptions{PerPage: perPage}

	var comments []review.Comment

	for {
		page, resp, err := p.client.Repositories.ListCommitComments(
			ctx, p.repoOwner, p.repo, sha, opts,
		)
		if err != nil {
			return nil, fmt.Errorf(
				"%s: %w", errCtx, classify(resp, err),
			)
		}

		for _, c := range page {
			comments = append(comments, NewCommitComment(c))
		}

		if resp.NextPage == 0 {
			break
		}

		opts.Page = resp.NextPage
	}

	return comments, nil
}

// CreateRequest creates a pull request from head into
// base. If one already exists (HTTP 422) the open pull
// request for head is returned instead.
func (p *Provider) CreateRequest(
	ctx context.Context,
	base string,
	head string,
	title string,
	body string,
) (review.Request, error) {
	const errCtx = "creating github pull request"

	pr := &gh.NewPullRequest{
		Title: &title,
		Head:  &head,
		Base:  &base,
		Body:  &body,
	}

	created, resp, err := p.client.PullRequests.Create(
		ctx, p.repoOwner, p.repo, pr,
	)
	if err == nil {
		slog.Info(
			"created pull request",
			"url", created.GetHTMLURL(),
		)

		req, err := NewRequest(created)
		if err != nil {
			return review.Request{}, fmt.Errorf(
				"%s: %w", errCtx, err,
			)
		}

		return req, nil
	}

	// HTTP 422: PR already exists for this
	// head/base pair.
	if resp != nil &&
		resp.StatusCode ==
			http.StatusUnprocessableEntity {
		existing, findErr := p.findOpen(ctx, base, head)
		if findErr == nil {
			slog.Info(
				"reusing existing pull request",
				"number", existing.Number,
			)

			return existing, nil
		}
	}

	return review.Request{}, fmt.Errorf(
		"%s: %w", errCtx, classify(resp, err),
	)
}

func (p *Provider) findOpen(
	ctx context.Context,
	base string,
	head string,
) (review.Request, error) {
	prs, resp, err := p.client.PullRequests.List(
		ctx, p.repoOwner, p.repo,
		&gh.PullRequestListOptions{
			State: string(review.StateOpen),
			Head:  p.repoOwner + ":" + head,
			Base:  base,
		},
	)
	if err != nil {
		return review.Request{}, classify(resp, err)
	}

	if len(prs) == 0 {
		return review.Request{}, errors.New(
			"no open pull request for " + head,
		)
	}

	return NewRequest(prs[0])
}

// AddComment posts body on pull request number.
func (p *Provider) AddComment(
	ctx context.Context,
	number int,
	body string,
) (review.Comment, error) {
	const errCtx = "commenting on github pull request"

	created, resp, err := p.client.Issues.CreateComment(
		ctx, p.repoOwner, p.repo, number,
		&gh.IssueComment{Body: gh.Ptr(body)},
	)
	if err != nil {
		return review.Comment{}, fmt.Errorf(
			"%s: %w", errCtx, classify(resp, err),
		)
	}

	return NewIssueComment(created), nil
}

// CloseRequest closes pull request number through the
// issues API.
func (p *Provider) CloseRequest(
	ctx context.Context,
	number int,
) error {
	const errCtx = "closing github pull request"

	_, resp, err := p.client.Issues.Edit(
		ctx, p.repoOwner, p.repo, number,
		&gh.IssueRequest{
			State: gh.Ptr(string(review.StateClosed)),
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, classify(resp, err))
	}

	return nil
}

// URLForRequest returns the web page of pull request
// number.
func (p *Provider) URLForRequest(number int) string {
	return "https://" + p.host + "/" + p.SourceRepo() +
		"/pull/" + strconv.Itoa(number)
}

// URLForRemote returns the SSH clone URL of repo
// ("owner/name").
func (p *Provider) URLForRemote(repo string) string {
	return "git@" + p.host + ":" + repo + ".git"
}

// classify maps rejected credentials onto
// review.ErrAuthentication. A 403 caused by rate
// limiting is not a credential problem.
func classify(resp *gh.Response, err error) error {
	if resp == nil || resp.Response == nil {
		return err
	}

	var (
		rateErr  *gh.RateLimitError
		abuseErr *gh.AbuseRateLimitError
	)

	switch {
	case errors.As(err, &rateErr), errors.As(err, &abuseErr):
		return err
	case resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %w", review.ErrAuthentication, err)
	default:
		return err
	}
}
