package commands

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/byte4ever/git_review/gitreview/commitmsg"
	"github.com/byte4ever/git_review/gitreview/git"
	"github.com/byte4ever/git_review/gitreview/review"
)

func browse(ctx context.Context, c *Commands, args []string) error {
	req, err := c.idArg(ctx, "browse", args, nil)
	if err != nil {
		return err
	}

	if err := c.s.Browser.Browse(req.HTMLURL); err != nil {
		return fmt.Errorf("browse: %w", err)
	}

	return nil
}

// checkout switches to the request branch, or with
// --branch to a local branch named after the head ref.
func checkout(ctx context.Context, c *Commands, args []string) error {
	var branch bool

	req, err := c.idArg(ctx, "checkout", args, func(fs *pflag.FlagSet) {
		fs.BoolVar(
			&branch, "branch", false,
			"create a branch named after the head ref",
		)
	})
	if err != nil {
		return err
	}

	if err := c.fetch(req); err != nil {
		return err
	}

	if branch {
		if err := c.s.Repo.CheckoutBranch(
			req.Head.Ref, git.RequestBranch(req.Number),
		); err != nil {
			return fmt.Errorf("checkout: %w", err)
		}

		return nil
	}

	if err := c.s.Repo.CheckoutRequest(req.Number); err != nil {
		return fmt.Errorf("checkout: %w", err)
	}

	return nil
}

func approve(ctx context.Context, c *Commands, args []string) error {
	req, err := c.idArg(ctx, "approve", args, nil)
	if err != nil {
		return err
	}

	comment, err := c.provider.AddComment(
		ctx, req.Number, commitmsg.Approval,
	)
	if err != nil {
		return fmt.Errorf("approve: %w", err)
	}

	if comment.Body == "" {
		return fmt.Errorf(
			"approving request #%d failed: %w",
			req.Number, ErrNotConfirmed,
		)
	}

	c.println("Successfully approved request.")

	return nil
}

// merge merges the head commit into the current branch.
// Requests whose source repository is gone are refused
// before touching git.
func merge(ctx context.Context, c *Commands, args []string) error {
	req, err := c.idArg(ctx, "merge", args, nil)
	if err != nil {
		return err
	}

	if req.SourceDeleted() {
		return fmt.Errorf("merge #%d: %w", req.Number, ErrSourceDeleted)
	}

	if !c.s.Repo.IsClean() {
		return fmt.Errorf(
			"merge: uncommitted changes: %w",
			review.ErrUnprocessableState,
		)
	}

	if err := c.fetch(req); err != nil {
		return err
	}

	msg := commitmsg.Merge(
		req.Number, req.Head.Repo.FullName, req.Head.Ref,
	)

	if err := c.s.Repo.Merge(req.Head.SHA, msg); err != nil {
		return fmt.Errorf("merge: %w", err)
	}

	c.printf("Merged request #%d.\n", req.Number)

	return nil
}

// closeRequest closes the request, then checks a fresh
// open list no longer carries it.
func closeRequest(
	ctx context.Context,
	c *Commands,
	args []string,
) error {
	req, err := c.idArg(ctx, "close", args, nil)
	if err != nil {
		return err
	}

	if err := c.provider.CloseRequest(ctx, req.Number); err != nil {
		return fmt.Errorf("close: %w", err)
	}

	open, err := c.refresh(ctx)
	if err != nil {
		return fmt.Errorf("close: verifying: %w", err)
	}

	for _, r := range open {
		if r.Number == req.Number {
			return fmt.Errorf(
				"closing request #%d failed: %w",
				req.Number, ErrNotConfirmed,
			)
		}
	}

	c.println("Successfully closed request.")

	return nil
}

// fetch makes the request head available locally as
// its request branch. Without a source repository there
// is nothing to fetch from. The platform clone URL is
// preferred over the SSH form.
func (c *Commands) fetch(req review.Request) error {
	if req.SourceDeleted() {
		return nil
	}

	remote := req.Head.Repo.CloneURL
	if remote == "" {
		remote = c.provider.URLForRemote(req.Head.Repo.FullName)
	}

	if err := c.s.Repo.FetchRequest(
		req.Number, remote, req.Head.Ref, req.Head.SHA,
	); err != nil {
		return fmt.Errorf("fetching request: %w", err)
	}

	return nil
}
