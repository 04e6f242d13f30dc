package commands_test

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/byte4ever/git_review/gitreview/git"
	"github.com/byte4ever/git_review/gitreview/review"
)

// fakeRepo records every git operation as a short
// string.
type fakeRepo struct {
	calls []string

	branch     string
	dirty      bool
	local      bool
	lastCommit string
	merged     map[string]bool
	unmerged   map[string]bool
	diffErr    error
}

func (f *fakeRepo) record(format string, args ...any) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeRepo) CurrentBranch() (string, error) {
	if f.branch == "" {
		return "main", nil
	}

	return f.branch, nil
}

func (*fakeRepo) TargetBranch() string { return "main" }

func (f *fakeRepo) IsClean() bool { return !f.dirty }

func (f *fakeRepo) HasLocalCommits(string) bool { return f.local }

func (f *fakeRepo) LastCommitMessage() string { return f.lastCommit }

func (f *fakeRepo) Merged(sha string) bool { return f.merged[sha] }

func (f *fakeRepo) Diff(sha string, full bool) (string, error) {
	args := []string{"diff", "--color=always"}
	if !full {
		args = append(args, "--stat")
	}

	args = append(args, "HEAD..."+sha)
	f.record("%s", strings.Join(args, " "))

	return "diff-output\n", f.diffErr
}

func (f *fakeRepo) FetchRequest(number int, url, ref, sha string) error {
	f.record("fetch %s %s:pr/%d@%s", url, ref, number, sha)

	return nil
}

func (f *fakeRepo) CheckoutRequest(number int) error {
	f.record("checkout pr/%d", number)

	return nil
}

func (f *fakeRepo) CheckoutBranch(branch, start string) error {
	f.record("checkout -b %s %s", branch, start)

	return nil
}

func (f *fakeRepo) PrepareBranch(name string) (string, bool, error) {
	branch := git.ReviewBranch(name)
	f.record("checkout -b %s", branch)

	return branch, true, nil
}

func (f *fakeRepo) Merge(sha, msg string) error {
	f.record("merge -m %s %s", msg, sha)

	return nil
}

func (f *fakeRepo) Push(branch string) error {
	f.record("push %s", branch)

	return nil
}

func (f *fakeRepo) CleanSingle(number int, force bool) (git.CleanReport, error) {
	f.record("clean %d force=%t", number, force)

	branch := git.RequestBranch(number)

	switch {
	case !f.unmerged[branch]:
		return git.CleanReport{Deleted: []string{branch}}, nil
	case force:
		return git.CleanReport{Discarded: []string{branch}}, nil
	default:
		return git.CleanReport{Skipped: []string{branch}}, nil
	}
}

func (f *fakeRepo) CleanAll(force bool) (git.CleanReport, error) {
	f.record("clean all force=%t", force)

	return git.CleanReport{}, nil
}

type fakeServer struct {
	pv    review.Provider
	err   error
	calls int
}

func (f *fakeServer) Provider(context.Context) (review.Provider, error) {
	f.calls++

	return f.pv, f.err
}

type fakeBrowser struct{ urls []string }

func (f *fakeBrowser) Browse(url string) error {
	f.urls = append(f.urls, url)

	return nil
}

// fakePrompter answers from a queue, else with the
// default.
type fakePrompter struct {
	answers []string
	labels  []string
}

func (f *fakePrompter) Prompt(label, def string) (string, error) {
	f.labels = append(f.labels, label+"="+def)

	if len(f.answers) == 0 {
		return def, nil
	}

	a := f.answers[0]
	f.answers = f.answers[1:]

	return a, nil
}

func openRequest(number int, sha string) review.Request {
	return review.Request{
		Number:  number,
		Title:   "Request " + strconv.Itoa(number),
		State:   review.StateOpen,
		HTMLURL: "https://example.com/org/app/pull/" + strconv.Itoa(number),
		Head: review.Head{
			SHA:  sha,
			Ref:  "feature-" + strconv.Itoa(number),
			User: review.User{Login: "alice"},
			Repo: &review.Repo{FullName: "alice/app"},
		},
	}
}
