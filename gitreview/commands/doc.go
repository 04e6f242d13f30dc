// Package commands is the review workflow: it maps each
// git-review command onto provider calls and local
// repository operations.
//
// One Commands value serves one invocation. It resolves
// the provider at most once and fetches the list of open
// requests lazily, at most once, before reusing it.
// Commands taking a request ID validate it before any
// git or network mutation.
package commands
