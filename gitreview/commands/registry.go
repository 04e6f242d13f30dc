package commands

import (
	"context"
	"errors"
	"fmt"
)

// Handler runs one command with its own argument list.
type Handler func(ctx context.Context, c *Commands, args []string) error

// Command is one entry of the command registry.
type Command struct {
	Name    string
	Usage   string
	Summary string
	// Remote commands resolve the provider before
	// running.
	Remote bool
	Run    Handler
}

// Registry returns the commands in help order.
func Registry() []Command {
	return []Command{
		{
			Name:    "list",
			Usage:   "list [--reverse]",
			Summary: "List all pending requests.",
			Remote:  true,
			Run:     list,
		},
		{
			Name:    "show",
			Usage:   "show <ID> [--full]",
			Summary: "Show details for a single request.",
			Remote:  true,
			Run:     show,
		},
		{
			Name:    "browse",
			Usage:   "browse <ID>",
			Summary: "Open a browser window and review a specified request.",
			Remote:  true,
			Run:     browse,
		},
		{
			Name:    "checkout",
			Usage:   "checkout <ID> [--branch]",
			Summary: "Checkout a specified request's changes to your local repository.",
			Remote:  true,
			Run:     checkout,
		},
		{
			Name:    "approve",
			Usage:   "approve <ID>",
			Summary: "Add an approving comment to a specified request.",
			Remote:  true,
			Run:     approve,
		},
		{
			Name:    "merge",
			Usage:   "merge <ID>",
			Summary: "Accept a specified request by merging it into master.",
			Remote:  true,
			Run:     merge,
		},
		{
			Name:    "close",
			Usage:   "close <ID>",
			Summary: "Close a specified request.",
			Remote:  true,
			Run:     closeRequest,
		},
		{
			Name:    "prepare",
			Usage:   "prepare [<name>]",
			Summary: "Creates a new local branch for a request.",
			Run:     prepare,
		},
		{
			Name:    "create",
			Usage:   "create",
			Summary: "Push the current review branch and open a request for it.",
			Remote:  true,
			Run:     create,
		},
		{
			Name:    "clean",
			Usage:   "clean <ID> [--force] | --all",
			Summary: "Delete a local branch of a request, or all merged ones.",
			Run:     clean,
		},
		{
			Name:    "help",
			Usage:   "help",
			Summary: "Show this message.",
			Run:     help,
		},
	}
}

// Validate checks that every command is named, unique
// and runnable.
func Validate(cmds []Command) error {
	const errCtx = "validating command registry"

	seen := make(map[string]bool, len(cmds))

	var errs []error

	for i, cmd := range cmds {
		switch {
		case cmd.Name == "":
			errs = append(errs, fmt.Errorf("entry %d has no name", i))
		case seen[cmd.Name]:
			errs = append(errs, fmt.Errorf("%q registered twice", cmd.Name))
		case cmd.Run == nil:
			errs = append(errs, fmt.Errorf("%q has no handler", cmd.Name))
		}

		seen[cmd.Name] = true
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}
