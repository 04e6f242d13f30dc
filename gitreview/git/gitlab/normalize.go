package gitlab

import (
	"fmt"

	gl "gitlab.com/gitlab-org/api/client-go"

	"github.com/byte4ever/git_review/gitreview/review"
)

// states maps canonical states onto GitLab query
// values.
var states = map[review.State]string{
	review.StateOpen:   "opened",
	review.StateClosed: "closed",
	review.StateMerged: "merged",
}

func toState(s string) review.State {
	switch s {
	case "opened":
		return review.StateOpen
	case "locked":
		return review.StateClosed
	default:
		return review.State(s)
	}
}

// login prefers the username and falls back to the
// display name.
func login(username string, name string) string {
	if username != "" {
		return username
	}

	return name
}

// toRequest normalizes a merge request. repo is the
// resolved source project, nil when it was deleted.
func toRequest(
	mr *gl.BasicMergeRequest,
	repo *review.Repo,
) (review.Request, error) {
	const errCtx = "normalizing gitlab merge request"

	if mr == nil || mr.IID <= 0 {
		return review.Request{}, fmt.Errorf(
			"%s: missing iid: %w",
			errCtx, review.ErrInvalidResponse,
		)
	}

	if mr.SHA == "" {
		return review.Request{}, fmt.Errorf(
			"%s: !%d: missing sha: %w",
			errCtx, mr.IID, review.ErrInvalidResponse,
		)
	}

	req := review.Request{
		Number:  int(mr.IID),
		Title:   mr.Title,
		Body:    mr.Description,
		State:   toState(mr.State),
		HTMLURL: mr.WebURL,
		Head: review.Head{
			SHA:  mr.SHA,
			Ref:  mr.SourceBranch,
			Repo: repo,
		},
	}

	if mr.Author != nil {
		req.Head.User = review.User{
			Login: login(mr.Author.Username, mr.Author.Name),
		}
	}

	if mr.WebURL != "" {
		req.PatchURL = mr.WebURL + ".patch"
	}

	if mr.UpdatedAt != nil {
		req.UpdatedAt = *mr.UpdatedAt
	}

	return req, nil
}

func toComment(n *gl.Note) review.Comment {
	c := review.Comment{
		Author: review.User{
			Login: login(n.Author.Username, n.Author.Name),
		},
		Body: n.Body,
	}

	if n.CreatedAt != nil {
		c.CreatedAt = *n.CreatedAt
	}

	return c
}

// toCommitComment normalizes a comment on sha. GitLab
// does not report when commit comments were made.
func toCommitComment(
	c *gl.CommitComment,
	sha string,
) review.Comment {
	return review.Comment{
		Author: review.User{
			Login: login(c.Author.Username, c.Author.Name),
		},
		Body:      c.Note,
		CommitSHA: sha,
	}
}

func toCommit(c *gl.Commit) (review.Commit, error) {
	const errCtx = "normalizing gitlab commit"

	if c == nil || c.ID == "" {
		return review.Commit{}, fmt.Errorf(
			"%s: missing id: %w",
			errCtx, review.ErrInvalidResponse,
		)
	}

	res := review.Commit{
		SHA:     c.ID,
		Author:  review.User{Login: c.AuthorName},
		Message: c.Message,
	}

	switch {
	case c.AuthoredDate != nil:
		res.Timestamp = *c.AuthoredDate
	case c.CommittedDate != nil:
		res.Timestamp = *c.CommittedDate
	}

	return res, nil
}
