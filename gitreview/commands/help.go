package commands

import "context"

func help(_ context.Context, c *Commands, _ []string) error {
	c.println("Usage: git review <command> [<args>]")
	c.println()
	c.println("Available commands:")

	for _, cmd := range c.registry {
		c.printf("  %s%s\n", column(cmd.Usage, 32), cmd.Summary)
	}

	return nil
}
