package git

import (
	"bufio"
	"fmt"
	"log/slog"
	"strings"

	"github.com/byte4ever/git_review/gitreview/exec"
	"github.com/byte4ever/git_review/gitreview/review"
)

// Location selects where BranchExists looks.
type Location int

// Branch locations.
const (
	Local Location = iota
	Remote
)

const defaultTarget = "master"

// Repo is the local working copy the workflow operates
// on. The zero value works on the current directory with
// remote "origin".
type Repo struct {
	// Dir is the working copy; empty means the current
	// directory.
	Dir string
	// RemoteName is the upstream remote, "origin" when
	// empty.
	RemoteName string
	// Runner executes git; exec.Default when nil.
	Runner exec.Runner
}

// Open returns a Repo for dir using the real git binary.
func Open(dir string) *Repo {
	return &Repo{
		Dir:        dir,
		RemoteName: "origin",
		Runner:     exec.Default,
	}
}

func (r *Repo) remote() string {
	if r.RemoteName == "" {
		return "origin"
	}

	return r.RemoteName
}

// Git runs git with args and returns its raw stdout. A
// failing command still returns whatever was printed.
func (r *Repo) Git(args ...string) (string, error) {
	rn := r.Runner
	if rn == nil {
		rn = exec.Default
	}

	return rn.Run(r.Dir, "git", args...)
}

// must runs git and converts failure into
// review.ErrUnprocessableState carrying the output.
func (r *Repo) must(args ...string) (string, error) {
	out, err := r.Git(args...)
	if err != nil {
		slog.Debug(
			"git command failed",
			"args", strings.Join(args, " "),
			"error", err,
		)

		return out, fmt.Errorf(
			"git %s: %w: %s",
			strings.Join(args, " "),
			review.ErrUnprocessableState,
			strings.TrimSpace(out+"\n"+err.Error()),
		)
	}

	return out, nil
}

// OriginURL returns the URL of the upstream remote, or
// an empty string when it is not configured.
func (r *Repo) OriginURL() (string, error) {
	out, err := r.Git(
		"config", "--get", "remote."+r.remote()+".url",
	)
	if err != nil {
		// git config exits 1 for a missing key.
		return "", nil //nolint:nilerr
	}

	return strings.TrimSpace(out), nil
}

// InsteadOfRules returns the url.<base>.insteadof rules
// from git configuration keyed by config key. Git prints
// section and variable names lower-cased and keeps the
// base as written.
func (r *Repo) InsteadOfRules() (map[string]string, error) {
	out, _ := r.Git(
		"config", "--get-regexp", `^url\..*\.insteadof$`,
	)

	rules := make(map[string]string)

	for _, line := range lines(out) {
		key, val, ok := strings.Cut(line, " ")
		if !ok {
			continue
		}

		rules[key] = val
	}

	return rules, nil
}

// CurrentBranch returns the checked out branch, or
// "HEAD" when detached.
func (r *Repo) CurrentBranch() (string, error) {
	const errCtx = "reading current branch"

	out, err := r.must("rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	return strings.TrimSpace(out), nil
}

// TargetBranch is the branch requests merge into: the
// remote's HEAD when known, else master or main,
// whichever exists locally.
func (r *Repo) TargetBranch() string {
	out, err := r.Git(
		"symbolic-ref", "--quiet", "--short",
		"refs/remotes/"+r.remote()+"/HEAD",
	)
	if err == nil {
		ref := strings.TrimSpace(out)
		if name, ok := strings.CutPrefix(
			ref, r.remote()+"/",
		); ok && name != "" {
			return name
		}
	}

	for _, name := range []string{defaultTarget, "main"} {
		if r.BranchExists(Local, name) {
			return name
		}
	}

	return defaultTarget
}

// BranchExists reports whether branch exists at loc.
func (r *Repo) BranchExists(loc Location, branch string) bool {
	ref := "refs/heads/" + branch
	if loc == Remote {
		ref = "refs/remotes/" + r.remote() + "/" + branch
	}

	_, err := r.Git("show-ref", "--verify", "--quiet", ref)

	return err == nil
}

// Branches lists local branch names.
func (r *Repo) Branches() ([]string, error) {
	const errCtx = "listing branches"

	out, err := r.must(
		"branch", "--format=%(refname:short)",
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	return lines(out), nil
}

// Merged reports whether sha is an ancestor of the local
// or remote target branch. Unknown commits are not
// merged.
func (r *Repo) Merged(sha string) bool {
	if sha == "" {
		return false
	}

	for _, upstream := range r.upstreams() {
		if _, err := r.Git(
			"merge-base", "--is-ancestor", sha, upstream,
		); err == nil {
			return true
		}
	}

	return false
}

// UnmergedCommits reports whether branch carries commits
// missing from the target branch. Commits present in
// either the local or the remote target count as merged.
// Without any target ref everything is unmerged.
func (r *Repo) UnmergedCommits(branch string) bool {
	for _, upstream := range r.upstreams() {
		out, err := r.Git("cherry", upstream, branch)
		if err != nil {
			continue
		}

		if !hasCherries(out) {
			return false
		}
	}

	return true
}

// HasLocalCommits reports whether branch has commits
// the local target branch lacks.
func (r *Repo) HasLocalCommits(branch string) bool {
	out, err := r.Git("cherry", r.TargetBranch(), branch)
	if err != nil {
		return false
	}

	return hasCherries(out)
}

// upstreams returns the existing target refs, local
// first.
func (r *Repo) upstreams() []string {
	target := r.TargetBranch()

	var refs []string

	if r.BranchExists(Local, target) {
		refs = append(refs, target)
	}

	if r.BranchExists(Remote, target) {
		refs = append(refs, r.remote()+"/"+target)
	}

	return refs
}

// IsClean reports whether the working tree has no
// uncommitted changes.
func (r *Repo) IsClean() bool {
	out, err := r.Git("status", "--porcelain")
	if err != nil {
		slog.Error(
			"failed to check repo status",
			"error", err,
		)

		return false
	}

	return strings.TrimSpace(out) == ""
}

// LastCommitMessage returns the most recent commit
// message on the current branch. Returns empty string
// on error.
func (r *Repo) LastCommitMessage() string {
	msg, err := r.Git("log", "-1", "--pretty=%B")
	if err != nil {
		return ""
	}

	return strings.TrimSpace(msg)
}

// Diff returns the diff between HEAD and sha, only the
// stat summary unless full is set.
func (r *Repo) Diff(sha string, full bool) (string, error) {
	args := []string{"diff", "--color=always"}
	if !full {
		args = append(args, "--stat")
	}

	args = append(args, "HEAD..."+sha)

	return r.Git(args...)
}

// CheckoutRequest checks out the request branch of
// number.
func (r *Repo) CheckoutRequest(number int) error {
	return r.Checkout(RequestBranch(number))
}

// FetchRequest fetches ref from remoteURL into the
// request branch of number. The fetch is skipped when the
// request branch exists and sha is already known locally;
// a stale request branch is moved to the fetched head.
func (r *Repo) FetchRequest(
	number int,
	remoteURL string,
	ref string,
	sha string,
) error {
	const errCtx = "fetching request"

	branch := RequestBranch(number)
	if r.BranchExists(Local, branch) && r.HasCommit(sha) {
		return nil
	}

	if _, err := r.must(
		"fetch", remoteURL, "+"+ref+":"+branch,
	); err != nil {
		return fmt.Errorf("%s %d: %w", errCtx, number, err)
	}

	return nil
}

// HasCommit reports whether sha names a commit in the
// local object database.
func (r *Repo) HasCommit(sha string) bool {
	if sha == "" {
		return false
	}

	_, err := r.Git("cat-file", "-e", sha+"^{commit}")

	return err == nil
}

// CheckoutBranch switches to branch, creating it at
// start when it does not exist locally.
func (r *Repo) CheckoutBranch(branch string, start string) error {
	if r.BranchExists(Local, branch) {
		return r.Checkout(branch)
	}

	const errCtx = "creating branch"

	if _, err := r.must("checkout", "-b", branch, start); err != nil {
		return fmt.Errorf("%s %s: %w", errCtx, branch, err)
	}

	return nil
}

// Checkout switches to ref.
func (r *Repo) Checkout(ref string) error {
	const errCtx = "checking out"

	if _, err := r.must("checkout", ref); err != nil {
		return fmt.Errorf("%s %s: %w", errCtx, ref, err)
	}

	return nil
}

// PrepareBranch switches to the review branch for name,
// creating it from HEAD if needed. It returns the branch
// and whether it was newly created.
func (r *Repo) PrepareBranch(name string) (string, bool, error) {
	const errCtx = "preparing review branch"

	if Sanitize(name) == "" {
		return "", false, fmt.Errorf(
			"%s: name %q has no usable characters",
			errCtx, name,
		)
	}

	branch := ReviewBranch(name)

	if r.BranchExists(Local, branch) {
		if err := r.Checkout(branch); err != nil {
			return "", false, fmt.Errorf(
				"%s: %w", errCtx, err,
			)
		}

		return branch, false, nil
	}

	if _, err := r.must("checkout", "-b", branch); err != nil {
		return "", false, fmt.Errorf("%s: %w", errCtx, err)
	}

	return branch, true, nil
}

// Merge merges sha into the current branch with msg.
func (r *Repo) Merge(sha string, msg string) error {
	const errCtx = "merging"

	if _, err := r.must("merge", "-m", msg, sha); err != nil {
		return fmt.Errorf("%s %s: %w", errCtx, sha, err)
	}

	return nil
}

// Push pushes branch to the remote and sets it as
// upstream.
func (r *Repo) Push(branch string) error {
	const errCtx = "pushing"

	if _, err := r.must(
		"push", "--set-upstream", r.remote(), branch,
	); err != nil {
		return fmt.Errorf("%s %s: %w", errCtx, branch, err)
	}

	return nil
}

// hasCherries reports whether git cherry output lists a
// commit not yet upstream.
func hasCherries(out string) bool {
	for _, line := range lines(out) {
		if strings.HasPrefix(line, "+") {
			return true
		}
	}

	return false
}

// lines splits command output into trimmed non-empty
// lines.
func lines(out string) []string {
	var res []string

	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			res = append(res, line)
		}
	}

	return res
}
