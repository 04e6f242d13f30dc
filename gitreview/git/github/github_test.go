package github_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ghprov "github.com/byte4ever/git_review/gitreview/git/github"
	"github.com/byte4ever/git_review/gitreview/review"
)

const prJSON = `{
	"number": 5,
	"title": "Fix login",
	"body": "details",
	"state": "open",
	"updated_at": "2024-03-01T10:00:00Z",
	"html_url": "https://github.com/org/repo/pull/5",
	"patch_url": "https://github.com/org/repo/pull/5.patch",
	"head": {
		"sha": "abc123",
		"ref": "fix-login",
		"user": {"login": "alice"},
		"repo": {"full_name": "alice/repo"}
	}
}`

func TestNewProvider_valid(t *testing.T) {
	t.Parallel()

	pv, err := ghprov.NewProvider(ghprov.Config{
		RepoOwner:   "org",
		Repo:        "repo",
		AccessToken: "tok",
	})

	require.NoError(t, err)
	assert.NotNil(t, pv)
	assert.Equal(t, "github", pv.Name())
	assert.Equal(t, "org/repo", pv.SourceRepo())
}

func TestNewProvider_missing_owner(t *testing.T) {
	t.Parallel()

	pv, err := ghprov.NewProvider(ghprov.Config{
		Repo:        "repo",
		AccessToken: "tok",
	})

	assert.Nil(t, pv)
	assert.ErrorContains(t, err, "repo owner")
}

func TestNewProvider_missing_repo(t *testing.T) {
	t.Parallel()

	pv, err := ghprov.NewProvider(ghprov.Config{
		RepoOwner:   "org",
		AccessToken: "tok",
	})

	assert.Nil(t, pv)
	assert.ErrorContains(t, err, "repo must be set")
}

func TestNewProvider_missing_token(t *testing.T) {
	t.Parallel()

	pv, err := ghprov.NewProvider(ghprov.Config{
		RepoOwner: "org",
		Repo:      "repo",
	})

	assert.Nil(t, pv)
	assert.ErrorContains(t, err, "access token")
	assert.ErrorIs(t, err, review.ErrAuthentication)
}

func TestNewProvider_enterprise(t *testing.T) {
	t.Parallel()

	pv, err := ghprov.NewProvider(ghprov.Config{
		RepoOwner:      "org",
		Repo:           "repo",
		AccessToken:    "tok",
		EnterpriseHost: "git.corp.example.com",
	})

	require.NoError(t, err)
	assert.Equal(
		t,
		"https://git.corp.example.com/org/repo/pull/3",
		pv.URLForRequest(3),
	)
	assert.Equal(
		t,
		"git@git.corp.example.com:org/app.git",
		pv.URLForRemote("org/app"),
	)
}

func TestProvider_URLs(t *testing.T) {
	t.Parallel()

	pv := newTestProvider(t, http.NotFoundHandler())

	assert.Equal(
		t, "https://github.com/org/repo/pull/12",
		pv.URLForRequest(12),
	)
	assert.Equal(
		t, "git@github.com:org/repo.git",
		pv.URLForRemote("org/repo"),
	)
}

func TestProvider_Request(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc(
		"/api/v3/repos/org/repo/pulls/5",
		func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, prJSON)
		},
	)

	pv := newTestProvider(t, mux)

	req, err := pv.Request(context.Background(), 5)

	require.NoError(t, err)
	assert.Equal(t, 5, req.Number)
	assert.Equal(t, "Fix login", req.Title)
	assert.Equal(t, review.StateOpen, req.State)
	assert.Equal(t, "abc123", req.Head.SHA)
	assert.Equal(t, "fix-login", req.Head.Ref)
	assert.Equal(t, "alice", req.Head.User.Login)
	require.NotNil(t, req.Head.Repo)
	assert.Equal(t, "alice/repo", req.Head.Repo.FullName)
}

func TestProvider_Request_not_found(t *testing.T) {
	t.Parallel()

	pv := newTestProvider(t, http.NotFoundHandler())

	_, err := pv.Request(context.Background(), 77)

	assert.ErrorIs(t, err, review.ErrInvalidRequestID)
}

func TestProvider_Request_zero(t *testing.T) {
	t.Parallel()

	called := false
	pv := newTestProvider(
		t,
		http.HandlerFunc(
			func(http.ResponseWriter, *http.Request) {
				called = true
			},
		),
	)

	_, err := pv.Request(context.Background(), 0)

	assert.ErrorIs(t, err, review.ErrInvalidRequestID)
	assert.False(t, called)
}

func TestProvider_Requests_skips_malformed(t *testing.T) {
	t.Parallel()

	var gotState string

	mux := http.NewServeMux()
	mux.HandleFunc(
		"/api/v3/repos/org/repo/pulls",
		func(w http.ResponseWriter, r *http.Request) {
			gotState = r.URL.Query().Get("state")
			writeJSON(w, `[`+prJSON+`, {"title": "no number"}]`)
		},
	)

	pv := newTestProvider(t, mux)

	reqs, err := pv.Requests(
		context.Background(), review.StateOpen,
	)

	require.NoError(t, err)
	assert.Equal(t, "open", gotState)
	require.Len(t, reqs, 1)
	assert.Equal(t, 5, reqs[0].Number)
}

func TestProvider_Requests_merged_filters_closed(t *testing.T) {
	t.Parallel()

	var gotState string

	mux := http.NewServeMux()
	mux.HandleFunc(
		"/api/v3/repos/org/repo/pulls",
		func(w http.ResponseWriter, r *http.Request) {
			gotState = r.URL.Query().Get("state")
			writeJSON(w, `[
				{"number": 1, "state": "closed",
				 "merged_at": "2024-01-01T00:00:00Z",
				 "head": {"sha": "a1"}},
				{"number": 2, "state": "closed",
				 "head": {"sha": "b2"}}
			]`)
		},
	)

	pv := newTestProvider(t, mux)

	reqs, err := pv.Requests(
		context.Background(), review.StateMerged,
	)

	require.NoError(t, err)
	assert.Equal(t, "closed", gotState)
	require.Len(t, reqs, 1)
	assert.Equal(t, 1, reqs[0].Number)
}

func TestProvider_ConfigureAccess_rejected(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc(
		"/api/v3/user",
		func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			writeJSON(w, `{"message": "Bad credentials"}`)
		},
	)

	pv := newTestProvider(t, mux)

	err := pv.ConfigureAccess(context.Background())

	assert.ErrorIs(t, err, review.ErrAuthentication)
}

func TestProvider_ConfigureAccess_forbidden(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc(
		"/api/v3/user",
		func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			writeJSON(
				w,
				`{"message": "Resource not accessible by integration"}`,
			)
		},
	)

	pv := newTestProvider(t, mux)

	err := pv.ConfigureAccess(context.Background())

	assert.ErrorIs(t, err, review.ErrAuthentication)
}

func TestProvider_ConfigureAccess_rate_limited(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc(
		"/api/v3/user",
		func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("X-RateLimit-Limit", "60")
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.WriteHeader(http.StatusForbidden)
			writeJSON(w, `{"message": "API rate limit exceeded"}`)
		},
	)

	pv := newTestProvider(t, mux)

	err := pv.ConfigureAccess(context.Background())

	require.Error(t, err)
	assert.NotErrorIs(t, err, review.ErrAuthentication)
}

func TestProvider_ConfigureAccess_ok(t *testing.T) {
	t.Parallel()

	var gotAuth string

	mux := http.NewServeMux()
	mux.HandleFunc(
		"/api/v3/user",
		func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			writeJSON(w, `{"login": "alice"}`)
		},
	)

	pv := newTestProvider(t, mux)

	require.NoError(t, pv.ConfigureAccess(context.Background()))
	assert.Equal(t, "Bearer tok", gotAuth)
}

func TestProvider_AddComment(t *testing.T) {
	t.Parallel()

	var gotBody []byte

	mux := http.NewServeMux()
	mux.HandleFunc(
		"/api/v3/repos/org/repo/issues/5/comments",
		func(w http.ResponseWriter, r *http.Request) {
			var err error

			gotBody, err = io.ReadAll(r.Body)
			if err != nil {
				http.Error(
					w,
					"read error",
					http.StatusInternalServerError,
				)

				return
			}

			w.WriteHeader(http.StatusCreated)
			writeJSON(w, `{
				"body": "Reviewed and approved.",
				"user": {"login": "bob"},
				"created_at": "2024-03-02T10:00:00Z"
			}`)
		},
	)

	pv := newTestProvider(t, mux)

	comment, err := pv.AddComment(
		context.Background(), 5, "Reviewed and approved.",
	)

	require.NoError(t, err)
	assert.Contains(
		t, string(gotBody), `"body":"Reviewed and approved."`,
	)
	assert.Equal(t, "Reviewed and approved.", comment.Body)
	assert.Equal(t, "bob", comment.Author.Login)
}

func TestProvider_CloseRequest(t *testing.T) {
	t.Parallel()

	var (
		gotMethod string
		gotBody   []byte
	)

	mux := http.NewServeMux()
	mux.HandleFunc(
		"/api/v3/repos/org/repo/issues/5",
		func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotBody, _ = io.ReadAll(r.Body)

			writeJSON(w, `{"number": 5, "state": "closed"}`)
		},
	)

	pv := newTestProvider(t, mux)

	require.NoError(t, pv.CloseRequest(context.Background(), 5))
	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Contains(t, string(gotBody), `"state":"closed"`)
}

func TestProvider_CreateRequest(t *testing.T) {
	t.Parallel()

	var gotBody []byte

	mux := http.NewServeMux()
	mux.HandleFunc(
		"/api/v3/repos/org/repo/pulls",
		func(w http.ResponseWriter, r *http.Request) {
			gotBody, _ = io.ReadAll(r.Body)

			w.WriteHeader(http.StatusCreated)
			writeJSON(w, prJSON)
		},
	)

	pv := newTestProvider(t, mux)

	req, err := pv.CreateRequest(
		context.Background(),
		"main", "review/fix_login", "Fix login", "details",
	)

	require.NoError(t, err)
	assert.Equal(t, 5, req.Number)
	assert.Contains(t, string(gotBody), `"head":"review/fix_login"`)
	assert.Contains(t, string(gotBody), `"base":"main"`)
}

func TestProvider_CreateRequest_existing(t *testing.T) {
	t.Parallel()

	var gotHead string

	mux := http.NewServeMux()
	mux.HandleFunc(
		"/api/v3/repos/org/repo/pulls",
		func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				w.WriteHeader(http.StatusUnprocessableEntity)
				writeJSON(w, `{"message": "Validation Failed"}`)

				return
			}

			gotHead = r.URL.Query().Get("head")
			writeJSON(w, `[`+prJSON+`]`)
		},
	)

	pv := newTestProvider(t, mux)

	req, err := pv.CreateRequest(
		context.Background(),
		"main", "fix-login", "Fix login", "",
	)

	require.NoError(t, err)
	assert.Equal(t, "org:fix-login", gotHead)
	assert.Equal(t, 5, req.Number)
}

func TestProvider_Commits_and_comments(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc(
		"/api/v3/repos/org/repo/pulls/5/commits",
		func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, `[{
				"sha": "abc123",
				"author": {"login": "alice"},
				"commit": {
					"message": "Fix login\n\nbody",
					"author": {"name": "Alice", "date": "2024-03-01T09:00:00Z"}
				}
			}]`)
		},
	)
	mux.HandleFunc(
		"/api/v3/repos/org/repo/issues/5/comments",
		func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, `[{"body": "looks good", "user": {"login": "bob"}}]`)
		},
	)
	mux.HandleFunc(
		"/api/v3/repos/org/repo/commits/abc123/comments",
		func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, `[{"body": "nit", "commit_id": "abc123", "user": {"login": "carol"}}]`)
		},
	)

	pv := newTestProvider(t, mux)
	ctx := context.Background()

	commits, err := pv.Commits(ctx, 5)
	require.NoError(t, err)
	require.Len(t, commits, 1)
	assert.Equal(t, "alice", commits[0].Author.Login)
	assert.Equal(t, "Fix login", commits[0].Summary())

	comments, err := pv.RequestComments(ctx, 5)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "looks good", comments[0].Body)
	assert.Empty(t, comments[0].CommitSHA)

	commitComments, err := pv.CommitComments(ctx, "abc123")
	require.NoError(t, err)
	require.Len(t, commitComments, 1)
	assert.Equal(t, "abc123", commitComments[0].CommitSHA)
	assert.Equal(t, "carol", commitComments[0].Author.Login)
}

func newTestProvider(
	tb testing.TB,
	handler http.Handler,
) *ghprov.Provider {
	tb.Helper()

	ts := httptest.NewServer(handler)
	tb.Cleanup(ts.Close)

	pv, err := ghprov.NewProvider(ghprov.Config{
		RepoOwner:   "org",
		Repo:        "repo",
		AccessToken: "tok",
		APIURL:      ts.URL + "/",
	})
	require.NoError(tb, err)

	return pv
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, body)
}
