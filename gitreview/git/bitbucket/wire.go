package bitbucket

import (
	"fmt"
	"strings"
	"time"

	"github.com/byte4ever/git_review/gitreview/review"
)

// Bitbucket Cloud 2.0 payloads, reduced to the fields
// the canonical model needs.

type link struct {
	Href string `json:"href"`
}

type links struct {
	HTML link `json:"html"`
	Diff link `json:"diff"`
}

type account struct {
	Username    string `json:"username,omitempty"`
	Nickname    string `json:"nickname,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

// login picks the most stable identifier Bitbucket
// returned; usernames are hidden for many accounts.
func (a account) login() string {
	switch {
	case a.Username != "":
		return a.Username
	case a.Nickname != "":
		return a.Nickname
	default:
		return a.DisplayName
	}
}

type branch struct {
	Name string `json:"name"`
}

type commitRef struct {
	Hash string `json:"hash"`
}

type repository struct {
	FullName string `json:"full_name"`
}

type endpoint struct {
	Branch     branch      `json:"branch"`
	Commit     *commitRef  `json:"commit,omitempty"`
	Repository *repository `json:"repository,omitempty"`
}

type pullrequest struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	State       string     `json:"state"`
	UpdatedOn   *time.Time `json:"updated_on"`
	Links       links      `json:"links"`
	Author      account    `json:"author"`
	Source      endpoint   `json:"source"`
	Destination endpoint   `json:"destination"`
}

type newPullRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Source      endpoint `json:"source"`
	Destination endpoint `json:"destination"`
}

type content struct {
	Raw string `json:"raw"`
}

type comment struct {
	Content   content    `json:"content"`
	User      account    `json:"user"`
	CreatedOn *time.Time `json:"created_on"`
	Commit    *commitRef `json:"commit,omitempty"`
	Deleted   bool       `json:"deleted"`
}

type newComment struct {
	Content content `json:"content"`
}

type commitAuthor struct {
	Raw  string   `json:"raw"`
	User *account `json:"user,omitempty"`
}

type commit struct {
	Hash    string       `json:"hash"`
	Message string       `json:"message"`
	Date    *time.Time   `json:"date"`
	Author  commitAuthor `json:"author"`
}

// page is one page of a paginated listing.
type page[T any] struct {
	Values []T    `json:"values"`
	Next   string `json:"next"`
}

// states maps canonical states onto Bitbucket query
// values.
var states = map[review.State]string{
	review.StateOpen:   "OPEN",
	review.StateMerged: "MERGED",
	review.StateClosed: "DECLINED",
}

// toState lower-cases a Bitbucket state. Declined and
// superseded requests are closed.
func toState(s string) review.State {
	switch st := strings.ToLower(s); st {
	case "declined", "superseded":
		return review.StateClosed
	default:
		return review.State(st)
	}
}

func toRequest(pr pullrequest) (review.Request, error) {
	const errCtx = "normalizing bitbucket pull request"

	if pr.ID <= 0 {
		return review.Request{}, fmt.Errorf(
			"%s: missing id: %w",
			errCtx, review.ErrInvalidResponse,
		)
	}

	if pr.Source.Commit == nil || pr.Source.Commit.Hash == "" {
		return review.Request{}, fmt.Errorf(
			"%s: #%d: missing source commit: %w",
			errCtx, pr.ID, review.ErrInvalidResponse,
		)
	}

	var repo *review.Repo

	if pr.Source.Repository != nil {
		repo = &review.Repo{
			FullName: pr.Source.Repository.FullName,
		}
	}

	req := review.Request{
		Number:   pr.ID,
		Title:    pr.Title,
		Body:     pr.Description,
		State:    toState(pr.State),
		HTMLURL:  pr.Links.HTML.Href,
		PatchURL: pr.Links.Diff.Href,
		Head: review.Head{
			SHA:  pr.Source.Commit.Hash,
			Ref:  pr.Source.Branch.Name,
			User: review.User{Login: pr.Author.login()},
			Repo: repo,
		},
	}

	if pr.UpdatedOn != nil {
		req.UpdatedAt = *pr.UpdatedOn
	}

	return req, nil
}

func toComment(c comment) review.Comment {
	res := review.Comment{
		Author: review.User{Login: c.User.login()},
		Body:   c.Content.Raw,
	}

	if c.CreatedOn != nil {
		res.CreatedAt = *c.CreatedOn
	}

	if c.Commit != nil {
		res.CommitSHA = c.Commit.Hash
	}

	return res
}

func toCommit(c commit) (review.Commit, error) {
	const errCtx = "normalizing bitbucket commit"

	if c.Hash == "" {
		return review.Commit{}, fmt.Errorf(
			"%s: missing hash: %w",
			errCtx, review.ErrInvalidResponse,
		)
	}

	login := c.Author.Raw
	if c.Author.User != nil {
		login = c.Author.User.login()
	}

	res := review.Commit{
		SHA:     c.Hash,
		Author:  review.User{Login: login},
		Message: c.Message,
	}

	if c.Date != nil {
		res.Timestamp = *c.Date
	}

	return res, nil
}
