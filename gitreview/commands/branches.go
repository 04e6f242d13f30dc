package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/byte4ever/git_review/gitreview/commitmsg"
	"github.com/byte4ever/git_review/gitreview/git"
	"github.com/byte4ever/git_review/gitreview/review"
)

// EnvTargetBranch names the review branch prepare
// creates when no name is given.
const EnvTargetBranch = "TARGET_BRANCH"

// prepare switches to a review branch named from the
// argument, TARGET_BRANCH or user input, creating it if
// needed.
func prepare(_ context.Context, c *Commands, args []string) error {
	pos, err := flags("prepare", args, nil)
	if err != nil {
		return err
	}

	var name string

	switch {
	case len(pos) > 0:
		name = strings.Join(pos, " ")

	case c.s.Getenv(EnvTargetBranch) != "":
		name = c.s.Getenv(EnvTargetBranch)

	default:
		name, err = c.s.Prompter.Prompt(
			"Enter name for new branch (Control-C to abort)", "",
		)
		if err != nil {
			return fmt.Errorf("prepare: %w", err)
		}
	}

	branch, created, err := c.s.Repo.PrepareBranch(name)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}

	if created {
		c.printf("Created local branch '%s'.\n", branch)
	} else {
		c.printf("Switched to existing branch '%s'.\n", branch)
	}

	return nil
}

// create pushes the current review branch and opens a
// request for it against the target branch. An already
// open request for the branch is reported instead.
func create(ctx context.Context, c *Commands, args []string) error {
	const errCtx = "create"

	pos, err := flags("create", args, nil)
	if err != nil {
		return err
	}

	if len(pos) != 0 {
		return usagef("create takes no arguments")
	}

	branch, err := c.s.Repo.CurrentBranch()
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if !git.IsPrepared(branch) {
		return fmt.Errorf(
			"%s: %q is not a review branch, run prepare first: %w",
			errCtx, branch, review.ErrUnprocessableState,
		)
	}

	if !c.s.Repo.IsClean() {
		return fmt.Errorf(
			"%s: uncommitted changes: %w",
			errCtx, review.ErrUnprocessableState,
		)
	}

	if !c.s.Repo.HasLocalCommits(branch) {
		return fmt.Errorf(
			"%s: %q has no commits missing from %q: %w",
			errCtx, branch, c.s.Repo.TargetBranch(),
			review.ErrUnprocessableState,
		)
	}

	open, err := c.openRequests(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	for _, req := range open {
		if req.Head.Ref == branch {
			c.printf(
				"Request #%d is already open for '%s': %s\n",
				req.Number, branch, req.HTMLURL,
			)

			return nil
		}
	}

	if err := c.s.Repo.Push(branch); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	defTitle, defBody := commitmsg.Split(c.s.Repo.LastCommitMessage())

	title, err := c.s.Prompter.Prompt("Title", defTitle)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	body, err := c.s.Prompter.Prompt("Description", defBody)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	req, err := c.provider.CreateRequest(
		ctx, c.s.Repo.TargetBranch(), branch, title, body,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	c.current = append(c.current, req)

	c.printf("Created request #%d: %s\n", req.Number, req.HTMLURL)

	return nil
}

// clean deletes the local branches of one request, or
// of every request with --all.
func clean(_ context.Context, c *Commands, args []string) error {
	var all, force bool

	pos, err := flags("clean", args, func(fs *pflag.FlagSet) {
		fs.BoolVar(&all, "all", false, "clean every review branch")
		fs.BoolVar(&force, "force", false, "delete unmerged branches too")
	})
	if err != nil {
		return err
	}

	var rep git.CleanReport

	switch {
	case all && len(pos) == 0:
		rep, err = c.s.Repo.CleanAll(force)

	case !all && len(pos) == 1:
		number, perr := parseID(pos[0])
		if perr != nil {
			return fmt.Errorf("clean: %w", perr)
		}

		rep, err = c.s.Repo.CleanSingle(number, force)

	default:
		return usagef(`clean: specify either an ID or "--all"`)
	}

	c.printReport(rep)

	if err != nil {
		return fmt.Errorf("clean: %w", err)
	}

	return nil
}

func (c *Commands) printReport(rep git.CleanReport) {
	if rep.Empty() {
		c.println("Nothing to clean.")

		return
	}

	for _, b := range rep.Deleted {
		c.printf("Deleted branch '%s'.\n", b)
	}

	for _, b := range rep.Discarded {
		c.printf(
			"Deleted branch '%s', discarding its unmerged commits.\n",
			b,
		)
	}

	for _, b := range rep.Skipped {
		c.printf(
			"Kept branch '%s': it has unmerged commits "+
				"(use --force to delete it).\n",
			b,
		)
	}
}
