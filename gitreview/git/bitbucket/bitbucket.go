package bitbucket

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"golang.org/x/oauth2"

	"github.com/byte4ever/git_review/gitreview/review"
)

// Host is the Bitbucket Cloud host used for URL
// matching.
const Host = "bitbucket.org"

// DefaultAPIEndpoint is the Bitbucket Cloud REST root.
const DefaultAPIEndpoint = "https://api.bitbucket.org/2.0"

const pageLen = 50

var errNotFound = errors.New("not found")

// Config holds the settings needed to create a
// Bitbucket provider.
type Config struct {
	// APIEndpoint is the REST API root; defaults to
	// DefaultAPIEndpoint.
	APIEndpoint string
	// Workspace owns the repository.
	Workspace string
	// Repo is the repository slug.
	Repo string
	// User is the Bitbucket username used with
	// Password.
	User string
	// Password is an app password.
	Password string
	// AccessToken is an OAuth access token; it takes
	// precedence over User and Password.
	AccessToken string
}

// Provider talks to the Bitbucket Cloud REST API.
//
// Pattern: Strategy -- implements review.Provider.
type Provider struct {
	endpoint  string
	workspace string
	repo      string
	user      string
	password  string
	client    *http.Client
}

// NewProvider validates cfg and returns a Provider.
func NewProvider(cfg Config) (*Provider, error) {
	const errCtx = "creating bitbucket provider"

	if cfg.Workspace == "" {
		return nil, fmt.Errorf(
			"%s: workspace must be set", errCtx,
		)
	}

	if cfg.Repo == "" {
		return nil, fmt.Errorf(
			"%s: repo must be set", errCtx,
		)
	}

	endpoint := strings.TrimSuffix(cfg.APIEndpoint, "/")
	if endpoint == "" {
		endpoint = DefaultAPIEndpoint
	}

	pv := &Provider{
		endpoint:  endpoint,
		workspace: cfg.Workspace,
		repo:      cfg.Repo,
	}

	switch {
	case cfg.AccessToken != "":
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: cfg.AccessToken},
		)
		pv.client = oauth2.NewClient(context.Background(), ts)

	case cfg.User != "" && cfg.Password != "":
		pv.user = cfg.User
		pv.password = cfg.Password
		pv.client = http.DefaultClient

	default:
		return nil, fmt.Errorf(
			"%s: access token or user and password must be set: %w",
			errCtx, review.ErrAuthentication,
		)
	}

	return pv, nil
}

// Name returns "bitbucket".
func (*Provider) Name() string {
	return "bitbucket"
}

// SourceRepo returns "workspace/repo".
func (p *Provider) SourceRepo() string {
	return p.workspace + "/" + p.repo
}

// ConfigureAccess checks the credentials by fetching
// the current user.
func (p *Provider) ConfigureAccess(ctx context.Context) error {
	const errCtx = "configuring bitbucket access"

	var usr account

	if err := p.do(
		ctx, http.MethodGet, "/user", nil, &usr,
	); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	slog.Debug("authenticated", "login", usr.login())

	return nil
}

// Request fetches pull request number.
func (p *Provider) Request(
	ctx context.Context,
	number int,
) (review.Request, error) {
	const errCtx = "fetching bitbucket pull request"

	if number <= 0 {
		return review.Request{}, fmt.Errorf(
			"%s: %d: %w",
			errCtx, number, review.ErrInvalidRequestID,
		)
	}

	var pr pullrequest

	err := p.do(
		ctx, http.MethodGet, p.prPath(number), nil, &pr,
	)
	if errors.Is(err, errNotFound) {
		return review.Request{}, fmt.Errorf(
			"%s: %d: %w",
			errCtx, number, review.ErrInvalidRequestID,
		)
	}

	if err != nil {
		return review.Request{}, fmt.Errorf(
			"%s: %w", errCtx, err,
		)
	}

	req, err := toRequest(pr)
	if err != nil {
		return review.Request{}, fmt.Errorf(
			"%s: %w", errCtx, err,
		)
	}

	return req, nil
}

// Requests lists pull requests in state, following
// pagination. Malformed entries are skipped with a
// warning.
func (p *Provider) Requests(
	ctx context.Context,
	state review.State,
) ([]review.Request, error) {
	const errCtx = "listing bitbucket pull requests"

	query := url.Values{}
	query.Set("pagelen", strconv.Itoa(pageLen))

	if st, ok := states[state]; ok {
		query.Set("state", st)
	}

	prs, err := list[pullrequest](
		ctx, p, p.repoPath()+"/pullrequests?"+query.Encode(),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	reqs := make([]review.Request, 0, len(prs))

	for _, pr := range prs {
		req, err := toRequest(pr)
		if err != nil {
			slog.Warn(
				"skipping malformed pull request",
				"error", err,
			)

			continue
		}

		reqs = append(reqs, req)
	}

	return reqs, nil
}

// RequestComments lists the comments of pull request
// number, dropping deleted ones.
func (p *Provider) RequestComments(
	ctx context.Context,
	number int,
) ([]review.Comment, error) {
	const errCtx = "listing bitbucket request comments"

	raw, err := list[comment](
		ctx, p, p.prPath(number)+"/comments",
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	return toComments(raw), nil
}

// Commits lists the commits of pull request number.
func (p *Provider) Commits(
	ctx context.Context,
	number int,
) ([]review.Commit, error) {
	const errCtx = "listing bitbucket request commits"

	raw, err := list[commit](
		ctx, p, p.prPath(number)+"/commits",
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	commits := make([]review.Commit, 0, len(raw))

	for _, c := range raw {
		cm, err := toCommit(c)
		if err != nil {
			slog.Warn("skipping malformed commit", "error", err)

			continue
		}

		commits = append(commits, cm)
	}

	return commits, nil
}

// CommitComments lists the comments on commit sha.
func (p *Provider) CommitComments(
	ctx context.Context,
	sha string,
) ([]review.Comment, error) {
	const errCtx = "listing bitbucket commit comments"

	raw, err := list[comment](
		ctx, p,
		p.repoPath()+"/commit/"+url.PathEscape(sha)+"/comments",
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	comments := toComments(raw)
	for i := range comments {
		if comments[i].CommitSHA == "" {
			comments[i].CommitSHA = sha
		}
	}

	return comments, nil
}

// CreateRequest creates a pull request from branch head
// into branch base.
func (p *Provider) CreateRequest(
	ctx context.Context,
	base string,
	head string,
	title string,
	body string,
) (review.Request, error) {
	const errCtx = "creating bitbucket pull request"

	in := newPullRequest{
		Title:       title,
		Description: body,
		Source:      endpoint{Branch: branch{Name: head}},
		Destination: endpoint{Branch: branch{Name: base}},
	}

	var pr pullrequest

	if err := p.do(
		ctx, http.MethodPost,
		p.repoPath()+"/pullrequests", in, &pr,
	); err != nil {
		return review.Request{}, fmt.Errorf(
			"%s: %w", errCtx, err,
		)
	}

	req, err := toRequest(pr)
	if err != nil {
		return review.Request{}, fmt.Errorf(
			"%s: %w", errCtx, err,
		)
	}

	slog.Info("created pull request", "url", req.HTMLURL)

	return req, nil
}

// AddComment posts body on pull request number.
func (p *Provider) AddComment(
	ctx context.Context,
	number int,
	body string,
) (review.Comment, error) {
	const errCtx = "commenting on bitbucket pull request"

	var out comment

	if err := p.do(
		ctx, http.MethodPost,
		p.prPath(number)+"/comments",
		newComment{Content: content{Raw: body}},
		&out,
	); err != nil {
		return review.Comment{}, fmt.Errorf(
			"%s: %w", errCtx, err,
		)
	}

	return toComment(out), nil
}

// CloseRequest declines pull request number.
func (p *Provider) CloseRequest(
	ctx context.Context,
	number int,
) error {
	const errCtx = "declining bitbucket pull request"

	if err := p.do(
		ctx, http.MethodPost,
		p.prPath(number)+"/decline", nil, nil,
	); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}

// URLForRequest returns the web page of pull request
// number.
func (p *Provider) URLForRequest(number int) string {
	return "https://" + Host + "/" + p.SourceRepo() +
		"/pull-requests/" + strconv.Itoa(number)
}

// URLForRemote returns the SSH clone URL of repo
// ("workspace/slug").
func (*Provider) URLForRemote(repo string) string {
	return "git@" + Host + ":" + repo + ".git"
}

func (p *Provider) repoPath() string {
	return "/repositories/" + url.PathEscape(p.workspace) +
		"/" + url.PathEscape(p.repo)
}

func (p *Provider) prPath(number int) string {
	return p.repoPath() + "/pullrequests/" + strconv.Itoa(number)
}

// list collects every page of a listing starting at
// path.
func list[T any](
	ctx context.Context,
	p *Provider,
	path string,
) ([]T, error) {
	var all []T

	for next := path; next != ""; {
		var pg page[T]

		if err := p.do(
			ctx, http.MethodGet, next, nil, &pg,
		); err != nil {
			return nil, err
		}

		all = append(all, pg.Values...)
		next = pg.Next
	}

	return all, nil
}

// do sends one API request. path is relative to the
// endpoint unless it is an absolute URL (pagination
// links). in is JSON encoded when non-nil; the response
// is decoded into out when non-nil.
func (p *Provider) do(
	ctx context.Context,
	method string,
	path string,
	in any,
	out any,
) error {
	const errCtx = "calling bitbucket api"

	target := path
	if !strings.HasPrefix(path, "http://") &&
		!strings.HasPrefix(path, "https://") {
		target = p.endpoint + path
	}

	var body io.Reader

	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf(
				"%s: marshal request: %w", errCtx, err,
			)
		}

		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(
		ctx, method, target, body,
	)
	if err != nil {
		return fmt.Errorf(
			"%s: build request: %w", errCtx, err,
		)
	}

	req.Header.Set("Accept", "application/json")

	if in != nil {
		req.Header.Set(
			"Content-Type",
			"application/json; charset=utf-8",
		)
	}

	if p.user != "" {
		req.SetBasicAuth(p.user, p.password)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf(
			"%s: send request: %w", errCtx, err,
		)
	}

	defer resp.Body.Close() //nolint:errcheck

	rb, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf(
			"%s: read response: %w", errCtx, err,
		)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf(
			"%s: %s %s: status %d: %w",
			errCtx, method, path, resp.StatusCode,
			review.ErrAuthentication,
		)

	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf(
			"%s: %s %s: %w", errCtx, method, path, errNotFound,
		)

	case resp.StatusCode >= http.StatusMultipleChoices:
		slog.Warn(
			"bitbucket response",
			"status", resp.Status,
			"body", string(rb),
		)

		return fmt.Errorf(
			"%s: %s %s: unexpected status %d",
			errCtx, method, path, resp.StatusCode,
		)
	}

	if out == nil || len(rb) == 0 {
		return nil
	}

	if err := json.Unmarshal(rb, out); err != nil {
		return fmt.Errorf(
			"%s: decode response: %w: %w",
			errCtx, review.ErrInvalidResponse, err,
		)
	}

	return nil
}

func toComments(raw []comment) []review.Comment {
	comments := make([]review.Comment, 0, len(raw))

	for _, c := range raw {
		if c.Deleted {
			continue
		}

		comments = append(comments, toComment(c))
	}

	return comments
}
