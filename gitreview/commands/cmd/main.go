// Command git-review reviews, approves, merges and cleans
// up pull and merge requests from the command line. It
// supports GitHub, Bitbucket Cloud and GitLab remotes.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/cli/go-gh/v2/pkg/browser"
	"github.com/joho/godotenv"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/byte4ever/git_review/gitreview/commands"
	"github.com/byte4ever/git_review/gitreview/git"
	"github.com/byte4ever/git_review/gitreview/server"
	"github.com/byte4ever/git_review/gitreview/settings"
)

// prompter reads answers through promptui.
type prompter struct{}

func (prompter) Prompt(label string, def string) (string, error) {
	p := promptui.Prompt{
		Label:     label,
		Default:   def,
		AllowEdit: true,
	}

	answer, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("prompt %q: %w", label, err)
	}

	return answer, nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, commands.Describe(err))
		os.Exit(1)
	}
}

func run() error {
	const errCtx = "starting git-review"

	if err := godotenv.Load(); err != nil &&
		!errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: loading .env: %w", errCtx, err)
	}

	path, err := settings.Path(os.Getenv)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	cfg, err := settings.Load(path, os.Getenv)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	level := slog.LevelWarn
	if cfg.Debug() {
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(
		os.Stderr, &slog.HandlerOptions{Level: level},
	)))

	repo := git.Open("")

	cmds, err := commands.New(commands.Session{
		Settings: cfg,
		Repo:     repo,
		Server:   server.New(cfg, repo),
		Browser:  browser.New("", os.Stdout, os.Stderr),
		Prompter: prompter{},
		Out:      os.Stdout,
		Getenv:   os.Getenv,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return newRootCmd(cmds).ExecuteContext(context.Background())
}

// newRootCmd maps every registered command onto a cobra
// subcommand. Flag parsing is left to the commands so
// each receives its raw argument list.
func newRootCmd(cmds *commands.Commands) *cobra.Command {
	root := &cobra.Command{
		Use:                "git-review <command> [<args>]",
		Short:              "Manage review workflow for pull and merge requests",
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmds.Run(cmd.Context(), "", nil)
			}

			return cmds.Run(cmd.Context(), args[0], args[1:])
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true

	for _, c := range cmds.Registry() {
		sub := &cobra.Command{
			Use:                c.Usage,
			Short:              c.Summary,
			DisableFlagParsing: true,
			RunE: func(cmd *cobra.Command, args []string) error {
				return cmds.Run(cmd.Context(), c.Name, args)
			},
		}

		if c.Name == "help" {
			root.SetHelpCommand(sub)

			continue
		}

		root.AddCommand(sub)
	}

	return root
}
