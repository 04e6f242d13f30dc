package review

import (
	"sort"
	"time"
)

// State is the lifecycle state of a request.
type State string

// Canonical request states.
const (
	StateOpen   State = "open"
	StateClosed State = "closed"
	StateMerged State = "merged"
)

// User is a login on the hosting platform. It is held
// by value as a back-reference only.
type User struct {
	Login string
}

// Repo identifies the repository a request's head lives
// in.
type Repo struct {
	// FullName is "owner/name".
	FullName string
	// CloneURL may be empty when the platform does
	// not report it.
	CloneURL string
}

// Head describes the branch proposed for merge.
type Head struct {
	SHA  string
	Ref  string
	User User
	// Repo is nil when the source repository (usually
	// a fork) was deleted.
	Repo *Repo
}

// Request is a pull or merge request normalized from a
// provider response. Values are never mutated after
// construction; a fresh fetch yields a new value.
type Request struct {
	Number    int
	Title     string
	Body      string
	State     State
	UpdatedAt time.Time
	HTMLURL   string
	PatchURL  string
	Head      Head
}

// SourceDeleted reports whether the head repository no
// longer exists.
func (r Request) SourceDeleted() bool {
	return r.Head.Repo == nil
}

// SortByNumber sorts requests by ascending number,
// keeping fetch order for equal numbers.
func SortByNumber(reqs []Request) {
	sort.SliceStable(reqs, func(i, j int) bool {
		return reqs[i].Number < reqs[j].Number
	})
}
