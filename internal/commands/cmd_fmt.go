package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/marksync/internal/core/markdown"
)

// ErrUnformatted is returned by fmt --check when a file would change.
var ErrUnformatted = errors.New("files are not formatted")

// FmtCmd implements the marksync fmt command.
type FmtCmd struct {
	flags *Flags

	check bool
	force bool
}

// NewFmtCmd creates a new fmt command.
func NewFmtCmd(flags *Flags) *FmtCmd {
	return &FmtCmd{flags: flags}
}

// Register adds the fmt command to the application.
func (cmd *FmtCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "fmt",
		Usage:     "Normalize markdown task lists in place",
		UsageText: "marksync fmt [--check] [--force] <pattern>...",
		Description: `Rewrites each matching file as parse followed by export: "*" bullets,
two space indentation, lowercase checkboxes, and one blank line after headers.

Patterns support ** globs. Files containing lines other than headers and
bullets are skipped unless --force is given, since those lines would be lost.

Examples:
  marksync fmt todo.md
  marksync fmt --check 'notes/**/*.md'`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "check",
				Usage:       "report files that would change without writing them",
				Destination: &cmd.check,
			},
			&cli.BoolFlag{
				Name:        "force",
				Usage:       "format files even when non-task lines would be dropped",
				Destination: &cmd.force,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *FmtCmd) run(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() == 0 {
		return fmt.Errorf("at least one file or pattern is required")
	}

	files, err := expandPatterns(c.Args().Slice())
	if err != nil {
		return err
	}

	parser := cmd.flags.config().MarkdownParser()
	out := c.Root().Writer
	unformatted := 0

	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("read %s: %w", file, err)
		}

		original := string(data)
		formatted := markdown.Export(parser.Parse(original))
		if formatted != "" {
			formatted += "\n"
		}
		if formatted == original {
			continue
		}

		if dropped := markdown.Dropped(original); len(dropped) > 0 && !cmd.force {
			log.Warn().Str("file", file).Ints("lines", dropped).Msg("skipping file with non-task lines")
			continue
		}

		unformatted++
		if _, err := fmt.Fprintln(out, file); err != nil {
			return err
		}
		if cmd.check {
			continue
		}

		if err := os.WriteFile(file, []byte(formatted), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", file, err)
		}
	}

	if cmd.check && unformatted > 0 {
		return fmt.Errorf("%d file(s): %w", unformatted, ErrUnformatted)
	}
	return nil
}

// expandPatterns resolves glob patterns into a sorted, de-duplicated file
// list. A pattern without glob syntax must name an existing file.
func expandPatterns(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("expand %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match %q", pattern)
		}
		files = append(files, matches...)
	}

	slices.Sort(files)
	return slices.Compact(files), nil
}
