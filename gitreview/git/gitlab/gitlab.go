package gitlab

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	gl "gitlab.com/gitlab-org/api/client-go"

	"github.com/byte4ever/git_review/gitreview/review"
)

// Host is the public GitLab host used for URL matching.
const Host = "gitlab.com"

const perPage = 100

var errNotFound = errors.New("not found")

// Config holds the settings needed to create a GitLab
// merge request provider.
type Config struct {
	// Host is the base URL of the GitLab instance
	// (e.g. "https://gitlab.com").
	Host string
	// Repo is the full project path
	// (e.g. "org/project").
	Repo string
	// AccessToken is a personal or project access
	// token used for authentication.
	AccessToken string
}

// Provider talks to the GitLab v4 REST API through the
// typed client-go services.
//
// Pattern: Strategy -- implements review.Provider.
type Provider struct {
	client *gl.Client
	web    string
	host   string
	repo   string
}

// NewProvider validates cfg and returns a Provider.
func NewProvider(cfg Config) (*Provider, error) {
	const errCtx = "creating gitlab provider"

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

	base := strings.TrimSuffix(cfg.Host, "/")
	if base == "" {
		base = "https://" + Host
	}

	u, err := url.Parse(base)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf(
			"%s: invalid host %q", errCtx, cfg.Host,
		)
	}

	client, err := gl.NewClient(
		cfg.AccessToken,
		gl.WithBaseURL(base),
	)
	if err != nil {
		return nil, fmt.Errorf(
			"%s: new client: %w", errCtx, err,
		)
	}

	return &Provider{
		client: client,
		web:    base,
		host:   u.Host,
		repo:   strings.Trim(cfg.Repo, "/"),
	}, nil
}

// Name returns "gitlab".
func (*Provider) Name() string {
	return "gitlab"
}

// SourceRepo returns the project path.
func (p *Provider) SourceRepo() string {
	return p.repo
}

// ConfigureAccess checks the token by fetching the
// current user.
func (p *Provider) ConfigureAccess(ctx context.Context) error {
	const errCtx = "configuring gitlab access"

	usr, resp, err := p.client.Users.CurrentUser(
		gl.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, classify(resp, err))
	}

	slog.Debug("authenticated", "login", login(usr.Username, usr.Name))

	return nil
}

// Request fetches merge request number (its IID).
func (p *Provider) Request(
	ctx context.Context,
	number int,
) (review.Request, error) {
	const errCtx = "fetching gitlab merge request"

	if number <= 0 {
		return review.Request{}, fmt.Errorf(
			"%s: %d: %w",
			errCtx, number, review.ErrInvalidRequestID,
		)
	}

	mr, resp, err := p.client.MergeRequests.GetMergeRequest(
		p.repo, number, nil, gl.WithContext(ctx),
	)
	if err != nil {
		err = classify(resp, err)
		if errors.Is(err, errNotFound) {
			return review.Request{}, fmt.Errorf(
				"%s: %d: %w",
				errCtx, number, review.ErrInvalidRequestID,
			)
		}

		return review.Request{}, fmt.Errorf(
			"%s: %w", errCtx, err,
		)
	}

	return p.normalize(ctx, &mr.BasicMergeRequest, nil)
}

// Requests lists merge requests in state, following
// pagination. Malformed entries are skipped with a
// warning.
func (p *Provider) Requests(
	ctx context.Context,
	state review.State,
) ([]review.Request, error) {
	const errCtx = "listing gitlab merge requests"

	mrs, err := p.listMergeRequests(
		ctx,
		&gl.ListProjectMergeRequestsOptions{
			State: gl.Ptr(states[state]),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	seen := make(map[int]*review.Repo)
	reqs := make([]review.Request, 0, len(mrs))

	for _, mr := range mrs {
		req, err := p.normalize(ctx, mr, seen)
		if err != nil {
			slog.Warn(
				"skipping malformed merge request",
				"error", err,
			)

			continue
		}

		reqs = append(reqs, req)
	}

	return reqs, nil
}

// RequestComments lists the notes of merge request
// number oldest first, without system notes.
func (p *Provider) RequestComments(
	ctx context.Context,
	number int,
) ([]review.Comment, error) {
	const errCtx = "listing gitlab request notes"

	opt := &gl.ListMergeRequestNotesOptions{
		OrderBy: gl.Ptr("created_at"),
		Sort:    gl.Ptr("asc"),
	}
	opt.PerPage = perPage

	notes, err := collect(func() ([]*gl.Note, *gl.Response, error) {
		return p.client.Notes.ListMergeRequestNotes(
			p.repo, number, opt, gl.WithContext(ctx),
		)
	}, func(next int) { opt.Page = next })
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	var comments []review.Comment

	for _, n := range notes {
		if n == nil || n.System {
			continue
		}

		comments = append(comments, toComment(n))
	}

	return comments, nil
}

// Commits lists the commits of merge request number.
func (p *Provider) Commits(
	ctx context.Context,
	number int,
) ([]review.Commit, error) {
	const errCtx = "listing gitlab request commits"

	opt := &gl.GetMergeRequestCommitsOptions{}
	opt.PerPage = perPage

	raw, err := collect(func() ([]*gl.Commit, *gl.Response, error) {
		return p.client.MergeRequests.GetMergeRequestCommits(
			p.repo, number, opt, gl.WithContext(ctx),
		)
	}, func(next int) { opt.Page = next })
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
	const errCtx = "listing gitlab commit comments"

	opt := &gl.GetCommitCommentsOptions{}
	opt.PerPage = perPage

	raw, err := collect(func() ([]*gl.CommitComment, *gl.Response, error) {
		return p.client.Commits.GetCommitComments(
			p.repo, sha, opt, gl.WithContext(ctx),
		)
	}, func(next int) { opt.Page = next })
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	comments := make([]review.Comment, 0, len(raw))

	for _, c := range raw {
		if c == nil {
			continue
		}

		comments = append(comments, toCommitComment(c, sha))
	}

	return comments, nil
}

// CreateRequest creates a merge request from branch
// head into branch base. If one already exists (HTTP
// 409) the open merge request for head is returned
// instead.
func (p *Provider) CreateRequest(
	ctx context.Context,
	base string,
	head string,
	title string,
	body string,
) (review.Request, error) {
	const errCtx = "creating gitlab merge request"

	opts := gl.CreateMergeRequestOptions{
		Title:        &title,
		SourceBranch: &head,
		TargetBranch: &base,
	}

	if body != "" {
		opts.Description = &body
	}

	created, resp, err := p.client.MergeRequests.CreateMergeRequest(
		p.repo, &opts, gl.WithContext(ctx),
	)
	if err == nil {
		slog.Info(
			"created merge request",
			"url", created.WebURL,
		)

		req, err := p.normalize(ctx, &created.BasicMergeRequest, nil)
		if err != nil {
			return review.Request{}, fmt.Errorf(
				"%s: %w", errCtx, err,
			)
		}

		return req, nil
	}

	// HTTP 409: MR already exists for this source
	// branch.
	if resp != nil && resp.StatusCode == http.StatusConflict {
		existing, findErr := p.findOpen(ctx, base, head)
		if findErr == nil {
			slog.Info(
				"reusing existing merge request",
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
	mrs, err := p.listMergeRequests(
		ctx,
		&gl.ListProjectMergeRequestsOptions{
			State:        gl.Ptr(states[review.StateOpen]),
			SourceBranch: &head,
			TargetBranch: &base,
		},
	)
	if err != nil {
		return review.Request{}, err
	}

	if len(mrs) == 0 {
		return review.Request{}, errors.New(
			"no open merge request for " + head,
		)
	}

	return p.normalize(ctx, mrs[0], nil)
}

// AddComment posts body as a note on merge request
// number.
func (p *Provider) AddComment(
	ctx context.Context,
	number int,
	body string,
) (review.Comment, error) {
	const errCtx = "commenting on gitlab merge request"

	n, resp, err := p.client.Notes.CreateMergeRequestNote(
		p.repo, number,
		&gl.CreateMergeRequestNoteOptions{Body: &body},
		gl.WithContext(ctx),
	)
	if err != nil {
		return review.Comment{}, fmt.Errorf(
			"%s: %w", errCtx, classify(resp, err),
		)
	}

	return toComment(n), nil
}

// CloseRequest closes merge request number.
func (p *Provider) CloseRequest(
	ctx context.Context,
	number int,
) error {
	const errCtx = "closing gitlab merge request"

	_, resp, err := p.client.MergeRequests.UpdateMergeRequest(
		p.repo, number,
		&gl.UpdateMergeRequestOptions{StateEvent: gl.Ptr("close")},
		gl.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, classify(resp, err))
	}

	return nil
}

// URLForRequest returns the web page of merge request
// number.
func (p *Provider) URLForRequest(number int) string {
	return p.web + "/" + p.repo +
		"/-/merge_requests/" + strconv.Itoa(number)
}

// URLForRemote returns the SSH clone URL of repo
// ("group/project").
func (p *Provider) URLForRemote(repo string) string {
	return "git@" + p.host + ":" + repo + ".git"
}

func (p *Provider) listMergeRequests(
	ctx context.Context,
	opt *gl.ListProjectMergeRequestsOptions,
) ([]*gl.BasicMergeRequest, error) {
	opt.PerPage = perPage

	return collect(func() ([]*gl.BasicMergeRequest, *gl.Response, error) {
		return p.client.MergeRequests.ListProjectMergeRequests(
			p.repo, opt, gl.WithContext(ctx),
		)
	}, func(next int) { opt.Page = next })
}

// normalize resolves the source project of mr and maps
// it onto the canonical model.
func (p *Provider) normalize(
	ctx context.Context,
	mr *gl.BasicMergeRequest,
	seen map[int]*review.Repo,
) (review.Request, error) {
	if mr == nil {
		return toRequest(nil, nil)
	}

	return toRequest(mr, p.sourceRepo(ctx, mr, seen))
}

// sourceRepo resolves the project a merge request comes
// from. Same-project requests need no lookup; a fork
// that can no longer be read is reported as deleted.
// seen memoizes lookups across a listing.
func (p *Provider) sourceRepo(
	ctx context.Context,
	mr *gl.BasicMergeRequest,
	seen map[int]*review.Repo,
) *review.Repo {
	id := int(mr.SourceProjectID)
	if id == 0 {
		return nil
	}

	if mr.SourceProjectID == mr.TargetProjectID {
		return &review.Repo{FullName: p.repo}
	}

	if repo, ok := seen[id]; ok {
		return repo
	}

	var repo *review.Repo

	prj, resp, err := p.client.Projects.GetProject(
		mr.SourceProjectID, nil, gl.WithContext(ctx),
	)

	switch {
	case err == nil:
		repo = &review.Repo{
			FullName: prj.PathWithNamespace,
			CloneURL: prj.HTTPURLToRepo,
		}

	case !errors.Is(classify(resp, err), errNotFound):
		slog.Warn(
			"cannot resolve source project",
			"project", id,
			"error", err,
		)
	}

	if seen != nil {
		seen[id] = repo
	}

	return repo
}

// collect drains a paginated listing. fetch reads the
// current page; advance moves the options to the next
// one.
func collect[T any](
	fetch func() ([]T, *gl.Response, error),
	advance func(next int),
) ([]T, error) {
	var all []T

	for {
		page, resp, err := fetch()
		if err != nil {
			return nil, classify(resp, err)
		}

		all = append(all, page...)

		if resp == nil || resp.NextPage == 0 {
			return all, nil
		}

		advance(resp.NextPage)
	}
}

// classify maps HTTP failures onto review sentinels.
func classify(resp *gl.Response, err error) error {
	if resp == nil || resp.Response == nil {
		return err
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %w", review.ErrAuthentication, err)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %w", errNotFound, err)
	default:
		return err
	}
}
