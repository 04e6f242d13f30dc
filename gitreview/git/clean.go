package git

import (
	"fmt"
	"log/slog"
	"strconv"
)

// CleanReport lists what a clean operation did.
type CleanReport struct {
	// Deleted branches were fully merged.
	Deleted []string
	// Discarded branches were force-deleted although
	// they carried unmerged commits.
	Discarded []string
	// Skipped branches carry unmerged commits and were
	// kept.
	Skipped []string
}

// Empty reports whether no branch was considered.
func (c CleanReport) Empty() bool {
	return len(c.Deleted) == 0 &&
		len(c.Discarded) == 0 &&
		len(c.Skipped) == 0
}

// CleanSingle deletes the local branches of request
// number ("pr/<number>" and "review/<number>") once they
// are fully merged. With force they are deleted
// regardless and reported as discarded.
func (r *Repo) CleanSingle(
	number int,
	force bool,
) (CleanReport, error) {
	const errCtx = "cleaning request branches"

	var rep CleanReport

	candidates := []string{
		RequestBranch(number),
		reviewPrefix + strconv.Itoa(number),
	}

	for _, branch := range candidates {
		if !r.BranchExists(Local, branch) {
			continue
		}

		if err := r.cleanBranch(branch, force, &rep); err != nil {
			return rep, fmt.Errorf("%s: %w", errCtx, err)
		}
	}

	return rep, nil
}

// CleanAll prunes stale remote-tracking branches, then
// applies the CleanSingle rule to every local branch
// following the naming convention. Unmerged branches
// are skipped, not failed, unless force is set.
func (r *Repo) CleanAll(force bool) (CleanReport, error) {
	const errCtx = "cleaning all review branches"

	var rep CleanReport

	if err := r.PruneRemote(); err != nil {
		return rep, fmt.Errorf("%s: %w", errCtx, err)
	}

	branches, err := r.Branches()
	if err != nil {
		return rep, fmt.Errorf("%s: %w", errCtx, err)
	}

	for _, branch := range branches {
		if !IsReviewBranch(branch) {
			continue
		}

		if err := r.cleanBranch(branch, force, &rep); err != nil {
			return rep, fmt.Errorf("%s: %w", errCtx, err)
		}
	}

	return rep, nil
}

// PruneRemote removes remote-tracking branches that no
// longer exist on the remote. Repositories without the
// remote are left alone.
func (r *Repo) PruneRemote() error {
	const errCtx = "pruning remote"

	out, err := r.must("remote")
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	found := false

	for _, name := range lines(out) {
		if name == r.remote() {
			found = true

			break
		}
	}

	if !found {
		slog.Debug("no remote to prune", "remote", r.remote())

		return nil
	}

	if _, err := r.must("remote", "prune", r.remote()); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}

func (r *Repo) cleanBranch(
	branch string,
	force bool,
	rep *CleanReport,
) error {
	unmerged := r.UnmergedCommits(branch)
	if unmerged && !force {
		slog.Debug("keeping unmerged branch", "branch", branch)

		rep.Skipped = append(rep.Skipped, branch)

		return nil
	}

	// git refuses to delete the checked out branch.
	current, err := r.CurrentBranch()
	if err != nil {
		return err
	}

	if current == branch {
		if err := r.Checkout(r.TargetBranch()); err != nil {
			return err
		}
	}

	if _, err := r.must("branch", "-D", branch); err != nil {
		return err
	}

	if unmerged {
		rep.Discarded = append(rep.Discarded, branch)
	} else {
		rep.Deleted = append(rep.Deleted, branch)
	}

	return nil
}
