package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/byte4ever/git_review/gitreview/review"
)

// Commands runs git-review commands for one invocation.
type Commands struct {
	s        Session
	registry []Command

	provider review.Provider
	// current caches the open requests; nil until
	// first fetched.
	current []review.Request
	fetched bool
}

// New validates the registry and returns Commands bound
// to s.
func New(s Session) (*Commands, error) {
	reg := Registry()
	if err := Validate(reg); err != nil {
		return nil, err
	}

	if s.Out == nil {
		s.Out = io.Discard
	}

	if s.Getenv == nil {
		s.Getenv = func(string) string { return "" }
	}

	return &Commands{s: s, registry: reg}, nil
}

// Registry returns the commands c dispatches to.
func (c *Commands) Registry() []Command {
	return c.registry
}

// Lookup returns the command called name.
func (c *Commands) Lookup(name string) (Command, bool) {
	for _, cmd := range c.registry {
		if cmd.Name == name {
			return cmd, true
		}
	}

	return Command{}, false
}

// Run executes command name with args. "-h" and
// "--help" are help; an empty or unknown name prints an
// error line followed by help.
func (c *Commands) Run(
	ctx context.Context,
	name string,
	args []string,
) error {
	if name == "-h" || name == "--help" {
		name = "help"
	}

	cmd, ok := c.Lookup(name)
	if !ok {
		if name != "" {
			c.printf(
				"git-review: '%s' is not a valid command.\n\n",
				name,
			)
		}

		return help(ctx, c, nil)
	}

	slog.Debug("running command", "command", name, "args", args)

	if cmd.Remote {
		if _, err := c.remote(ctx); err != nil {
			return err
		}
	}

	return cmd.Run(ctx, c, args)
}

// remote returns the provider, resolving it on first
// use.
func (c *Commands) remote(ctx context.Context) (review.Provider, error) {
	if c.provider != nil {
		return c.provider, nil
	}

	pv, err := c.s.Server.Provider(ctx)
	if err != nil {
		return nil, err
	}

	c.provider = pv

	return pv, nil
}

// openRequests returns the open requests, fetching them
// on first use only.
func (c *Commands) openRequests(
	ctx context.Context,
) ([]review.Request, error) {
	if c.fetched {
		return c.current, nil
	}

	pv, err := c.remote(ctx)
	if err != nil {
		return nil, err
	}

	reqs, err := pv.Requests(ctx, review.StateOpen)
	if err != nil {
		return nil, fmt.Errorf("fetching open requests: %w", err)
	}

	c.current = reqs
	c.fetched = true

	return reqs, nil
}

// refresh drops the cached open requests after a remote
// mutation and fetches them again.
func (c *Commands) refresh(
	ctx context.Context,
) ([]review.Request, error) {
	c.current = nil
	c.fetched = false

	return c.openRequests(ctx)
}

// request validates arg as a request ID and resolves it
// from the open requests, else by fetching it directly.
func (c *Commands) request(
	ctx context.Context,
	arg string,
) (review.Request, error) {
	const errCtx = "resolving request"

	number, err := parseID(arg)
	if err != nil {
		return review.Request{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	open, err := c.openRequests(ctx)
	if err != nil {
		return review.Request{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	for _, req := range open {
		if req.Number == number {
			return req, nil
		}
	}

	req, err := c.provider.Request(ctx, number)
	if err != nil {
		return review.Request{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	return req, nil
}

// parseID accepts positive decimal integers only.
func parseID(arg string) (int, error) {
	number, err := strconv.Atoi(strings.TrimPrefix(arg, "#"))
	if err != nil || number <= 0 {
		return 0, fmt.Errorf(
			"%q: %w", arg, review.ErrInvalidRequestID,
		)
	}

	return number, nil
}

// flags parses args against a fresh flag set built by
// define and returns the positional arguments.
func flags(
	name string,
	args []string,
	define func(fs *pflag.FlagSet),
) ([]string, error) {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)

	if define != nil {
		define(fs)
	}

	if err := fs.Parse(args); err != nil {
		return nil, usagef("%s: %v", name, err)
	}

	return fs.Args(), nil
}

// idArg parses args for a command taking exactly one
// request ID and resolves it.
func (c *Commands) idArg(
	ctx context.Context,
	name string,
	args []string,
	define func(fs *pflag.FlagSet),
) (review.Request, error) {
	pos, err := flags(name, args, define)
	if err != nil {
		return review.Request{}, err
	}

	if len(pos) != 1 {
		return review.Request{}, fmt.Errorf(
			"%s: expected one ID: %w",
			name, review.ErrInvalidRequestID,
		)
	}

	return c.request(ctx, pos[0])
}

func (c *Commands) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(c.s.Out, format, args...)
}

func (c *Commands) println(args ...any) {
	_, _ = fmt.Fprintln(c.s.Out, args...)
}
