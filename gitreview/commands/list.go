package commands

import (
	"context"
	"slices"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/byte4ever/git_review/gitreview/review"
)

// list prints the open requests not yet merged locally.
func list(ctx context.Context, c *Commands, args []string) error {
	var reverse bool

	pos, err := flags("list", args, func(fs *pflag.FlagSet) {
		fs.BoolVar(&reverse, "reverse", false, "newest first")
	})
	if err != nil {
		return err
	}

	if len(pos) != 0 {
		return usagef("list takes no arguments")
	}

	open, err := c.openRequests(ctx)
	if err != nil {
		return err
	}

	pending := make([]review.Request, 0, len(open))

	for _, req := range open {
		if c.s.Repo.Merged(req.Head.SHA) {
			continue
		}

		pending = append(pending, req)
	}

	source := c.provider.SourceRepo()

	if len(pending) == 0 {
		c.printf("No pending requests for '%s'.\n", source)

		return nil
	}

	review.SortByNumber(pending)

	if reverse {
		slices.Reverse(pending)
	}

	c.printf("Pending requests for '%s':\n", source)
	c.println(
		column("ID", 8) + column("Updated", 11) +
			column("Author", 16) + "Title",
	)

	for _, req := range pending {
		c.printRequest(req)
	}

	return nil
}

func (c *Commands) printRequest(req review.Request) {
	c.println(
		column(strconv.Itoa(req.Number), 8) +
			column(date(req.UpdatedAt), 11) +
			column(req.Head.User.Login, 16) +
			clip(req.Title, 60),
	)
}
