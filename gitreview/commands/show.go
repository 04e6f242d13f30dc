package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"

	"github.com/byte4ever/git_review/gitreview/review"
)

// show prints one request, its discussion and the diff
// between HEAD and its head commit.
func show(ctx context.Context, c *Commands, args []string) error {
	var full bool

	req, err := c.idArg(ctx, "show", args, func(fs *pflag.FlagSet) {
		fs.BoolVar(&full, "full", false, "print the full diff")
	})
	if err != nil {
		return err
	}

	comments, err := c.provider.RequestComments(ctx, req.Number)
	if err != nil {
		return fmt.Errorf("show: %w", err)
	}

	commits, err := c.provider.Commits(ctx, req.Number)
	if err != nil {
		return fmt.Errorf("show: %w", err)
	}

	c.printDetails(req)

	// Request comments first, then each commit with its
	// own comments, all oldest first.
	review.SortComments(comments)
	review.SortCommits(commits)

	if len(comments) > 0 || len(commits) > 0 {
		c.println("Progress  :")
		c.println()
	}

	for _, cm := range comments {
		c.printComment(cm)
	}

	for _, commit := range commits {
		c.printf(
			"  %s  %s  %s: %s\n",
			column(date(commit.Timestamp), 11),
			shortSHA(commit.SHA),
			commit.Author.Login,
			commit.Summary(),
		)

		notes, err := c.provider.CommitComments(ctx, commit.SHA)
		if err != nil {
			return fmt.Errorf("show: %w", err)
		}

		review.SortComments(notes)

		for _, cm := range notes {
			c.printComment(cm)
		}
	}

	diff, err := c.s.Repo.Diff(req.Head.SHA, full)
	if err != nil {
		slog.Warn(
			"diff failed, is the request fetched?",
			"sha", req.Head.SHA,
			"error", err,
		)
	}

	c.println()
	c.printf("%s", diff)

	return nil
}

func (c *Commands) printDetails(req review.Request) {
	c.printf("ID        : %d\n", req.Number)
	c.printf("Label     : %s\n", req.Head.Ref)
	c.printf("Updated   : %s\n", date(req.UpdatedAt))
	c.printf("Author    : %s\n", req.Head.User.Login)
	c.printf("URL       : %s\n", req.HTMLURL)
	c.println()
	c.println(req.Title)
	c.println()

	if body := strings.TrimSpace(req.Body); body != "" {
		c.println(body)
		c.println()
	}
}

func (c *Commands) printComment(cm review.Comment) {
	c.printf(
		"  %s  %s: %s\n",
		column(date(cm.CreatedAt), 11),
		cm.Author.Login,
		clip(cm.Body, 72),
	)
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}

	return sha
}
