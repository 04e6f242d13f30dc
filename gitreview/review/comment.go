package review

import (
	"sort"
	"time"
)

// Comment is a discussion entry on a request, or on a
// single commit when CommitSHA is set.
type Comment struct {
	Author    User
	Body      string
	CreatedAt time.Time
	CommitSHA string
}

// Commit is one revision of a request's diff.
type Commit struct {
	SHA       string
	Author    User
	Message   string
	Timestamp time.Time
}

// Summary returns the first line of the commit message.
func (c Commit) Summary() string {
	for i := 0; i < len(c.Message); i++ {
		if c.Message[i] == '\n' {
			return c.Message[:i]
		}
	}

	return c.Message
}

// SortComments orders comments oldest first.
func SortComments(comments []Comment) {
	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].CreatedAt.Before(
			comments[j].CreatedAt,
		)
	})
}

// SortCommits orders commits oldest first.
func SortCommits(commits []Commit) {
	sort.SliceStable(commits, func(i, j int) bool {
		return commits[i].Timestamp.Before(
			commits[j].Timestamp,
		)
	})
}
