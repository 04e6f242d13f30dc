package commands

import (
	"context"
	"io"

	"github.com/byte4ever/git_review/gitreview/git"
	"github.com/byte4ever/git_review/gitreview/review"
	"github.com/byte4ever/git_review/gitreview/settings"
)

// LocalRepo is the part of git.Repo the commands use.
type LocalRepo interface {
	CurrentBranch() (string, error)
	TargetBranch() string
	IsClean() bool
	HasLocalCommits(branch string) bool
	LastCommitMessage() string
	Merged(sha string) bool
	Diff(sha string, full bool) (string, error)
	FetchRequest(number int, remoteURL string, ref string, sha string) error
	CheckoutRequest(number int) error
	CheckoutBranch(branch string, start string) error
	PrepareBranch(name string) (string, bool, error)
	Merge(sha string, msg string) error
	Push(branch string) error
	CleanSingle(number int, force bool) (git.CleanReport, error)
	CleanAll(force bool) (git.CleanReport, error)
}

// Resolver hands out the provider of the current
// repository.
type Resolver interface {
	Provider(ctx context.Context) (review.Provider, error)
}

// Browser opens a URL for the user.
type Browser interface {
	Browse(url string) error
}

// Prompter asks the user for a line of input, offering
// def as the default answer.
type Prompter interface {
	Prompt(label string, def string) (string, error)
}

// Session carries the collaborators of one invocation.
// It is built once at process start.
type Session struct {
	Settings *settings.Settings
	Repo     LocalRepo
	Server   Resolver
	Browser  Browser
	Prompter Prompter
	Out      io.Writer
	Getenv   func(string) string
}
