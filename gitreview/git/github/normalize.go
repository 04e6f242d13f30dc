package github

import (
	"fmt"

	gh "github.com/google/go-github/v68/github"

	"github.com/byte4ever/git_review/gitreview/review"
)

// NewRequest normalizes a pull request. State is kept
// verbatim ("open" or "closed"). A missing head
// repository yields a nil Head.Repo.
func NewRequest(pr *gh.PullRequest) (review.Request, error) {
	const errCtx = "normalizing github pull request"

	if pr == nil || pr.GetNumber() <= 0 {
		return review.Request{}, fmt.Errorf(
			"%s: missing number: %w",
			errCtx, review.ErrInvalidResponse,
		)
	}

	head := pr.GetHead()
	if head.GetSHA() == "" {
		return review.Request{}, fmt.Errorf(
			"%s: #%d: missing head sha: %w",
			errCtx, pr.GetNumber(), review.ErrInvalidResponse,
		)
	}

	var repo *review.Repo

	if hr := head.GetRepo(); hr != nil {
		repo = &review.Repo{
			FullName: hr.GetFullName(),
			CloneURL: hr.GetCloneURL(),
		}
	}

	return review.Request{
		Number:    pr.GetNumber(),
		Title:     pr.GetTitle(),
		Body:      pr.GetBody(),
		State:     review.State(pr.GetState()),
		UpdatedAt: pr.GetUpdatedAt().Time,
		HTMLURL:   pr.GetHTMLURL(),
		PatchURL:  pr.GetPatchURL(),
		Head: review.Head{
			SHA:  head.GetSHA(),
			Ref:  head.GetRef(),
			User: review.User{Login: head.GetUser().GetLogin()},
			Repo: repo,
		},
	}, nil
}

// NewIssueComment normalizes a conversation comment.
func NewIssueComment(c *gh.IssueComment) review.Comment {
	return review.Comment{
		Author:    review.User{Login: c.GetUser().GetLogin()},
		Body:      c.GetBody(),
		CreatedAt: c.GetCreatedAt().Time,
	}
}

// NewCommitComment normalizes a comment on a commit.
func NewCommitComment(c *gh.RepositoryComment) review.Comment {
	return review.Comment{
		Author:    review.User{Login: c.GetUser().GetLogin()},
		Body:      c.GetBody(),
		CreatedAt: c.GetCreatedAt().Time,
		CommitSHA: c.GetCommitID(),
	}
}

// NewCommit normalizes a pull request commit. The author
// is the GitHub login when the commit is linked to an
// account, else the git author name.
func NewCommit(rc *gh.RepositoryCommit) (review.Commit, error) {
	const errCtx = "normalizing github commit"

	if rc.GetSHA() == "" {
		return review.Commit{}, fmt.Errorf(
			"%s: missing sha: %w",
			errCtx, review.ErrInvalidResponse,
		)
	}

	login := rc.GetAuthor().GetLogin()
	if login == "" {
		login = rc.GetCommit().GetAuthor().GetName()
	}

	return review.Commit{
		SHA:       rc.GetSHA(),
		Author:    review.User{Login: login},
		Message:   rc.GetCommit().GetMessage(),
		Timestamp: rc.GetCommit().GetAuthor().GetDate().Time,
	}, nil
}
