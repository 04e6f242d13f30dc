// Package reviewtest provides an in-memory
// review.Provider for tests.
package reviewtest

import (
	"context"
	"fmt"
	"strconv"

	"github.com/byte4ever/git_review/gitreview/review"
)

// Provider serves requests from memory and records the
// mutations it receives. Set the Err fields to make the
// matching call fail.
type Provider struct {
	Repo  string
	Reqs  []review.Request
	Notes map[int][]review.Comment
	Revs  map[int][]review.Commit
	// CommitNotes are keyed by commit sha.
	CommitNotes map[string][]review.Comment

	AccessErr error
	ListErr   error
	// EmptyComment makes AddComment return a comment
	// without a body.
	EmptyComment bool
	// KeepOpen makes CloseRequest a no-op.
	KeepOpen bool

	AccessCalls  int
	ListCalls    int
	FetchCalls   int
	Created      []string
	Commented    map[int][]string
	ClosedNumber []int
}

var _ review.Provider = (*Provider)(nil)

// Name returns "fake".
func (*Provider) Name() string { return "fake" }

// SourceRepo returns Repo.
func (p *Provider) SourceRepo() string { return p.Repo }

// ConfigureAccess returns AccessErr.
func (p *Provider) ConfigureAccess(context.Context) error {
	p.AccessCalls++

	return p.AccessErr
}

// Request returns the stored request number.
func (p *Provider) Request(
	_ context.Context,
	number int,
) (review.Request, error) {
	p.FetchCalls++

	for _, r := range p.Reqs {
		if r.Number == number && number > 0 {
			return r, nil
		}
	}

	return review.Request{}, fmt.Errorf(
		"request %d: %w", number, review.ErrInvalidRequestID,
	)
}

// Requests returns the stored requests in state, in
// insertion order.
func (p *Provider) Requests(
	_ context.Context,
	state review.State,
) ([]review.Request, error) {
	p.ListCalls++

	if p.ListErr != nil {
		return nil, p.ListErr
	}

	var res []review.Request

	for _, r := range p.Reqs {
		if r.State == state {
			res = append(res, r)
		}
	}

	return res, nil
}

// RequestComments returns Notes[number].
func (p *Provider) RequestComments(
	_ context.Context,
	number int,
) ([]review.Comment, error) {
	return p.Notes[number], nil
}

// Commits returns Revs[number].
func (p *Provider) Commits(
	_ context.Context,
	number int,
) ([]review.Commit, error) {
	return p.Revs[number], nil
}

// CommitComments returns CommitNotes[sha].
func (p *Provider) CommitComments(
	_ context.Context,
	sha string,
) ([]review.Comment, error) {
	return p.CommitNotes[sha], nil
}

// CreateRequest appends an open request for head.
func (p *Provider) CreateRequest(
	_ context.Context,
	base string,
	head string,
	title string,
	body string,
) (review.Request, error) {
	number := len(p.Reqs) + 1
	req := review.Request{
		Number:  number,
		Title:   title,
		Body:    body,
		State:   review.StateOpen,
		HTMLURL: p.URLForRequest(number),
		Head: review.Head{
			SHA:  "sha-" + head,
			Ref:  head,
			Repo: &review.Repo{FullName: p.Repo},
		},
	}

	p.Reqs = append(p.Reqs, req)
	p.Created = append(p.Created, base+"<-"+head)

	return req, nil
}

// AddComment records body.
func (p *Provider) AddComment(
	_ context.Context,
	number int,
	body string,
) (review.Comment, error) {
	if p.Commented == nil {
		p.Commented = make(map[int][]string)
	}

	p.Commented[number] = append(p.Commented[number], body)

	if p.EmptyComment {
		return review.Comment{}, nil
	}

	return review.Comment{
		Author: review.User{Login: "me"},
		Body:   body,
	}, nil
}

// CloseRequest marks request number closed unless
// KeepOpen is set.
func (p *Provider) CloseRequest(
	_ context.Context,
	number int,
) error {
	p.ClosedNumber = append(p.ClosedNumber, number)

	if p.KeepOpen {
		return nil
	}

	for i := range p.Reqs {
		if p.Reqs[i].Number == number {
			p.Reqs[i].State = review.StateClosed
		}
	}

	return nil
}

// URLForRequest returns a fake web URL.
func (p *Provider) URLForRequest(number int) string {
	return "https://example.com/" + p.Repo + "/pull/" +
		strconv.Itoa(number)
}

// URLForRemote returns a fake SSH URL.
func (*Provider) URLForRemote(repo string) string {
	return "git@example.com:" + repo + ".git"
}
