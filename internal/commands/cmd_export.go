package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/colonyops/marksync/internal/core/markdown"
	"github.com/colonyops/marksync/internal/core/task"
	"github.com/colonyops/marksync/internal/core/tree"
	"github.com/colonyops/marksync/pkg/iojson"
)

const defaultRenderWidth = 80

// ExportCmd implements the marksync export command.
type ExportCmd struct {
	flags *Flags

	subtree string
	render  bool
}

// NewExportCmd creates a new export command.
func NewExportCmd(flags *Flags) *ExportCmd {
	return &ExportCmd{flags: flags}
}

// Register adds the export command to the application.
func (cmd *ExportCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "export",
		Usage:     "Convert a JSON task tree into markdown",
		UsageText: "marksync export [--subtree <id>] [--render] [tree.json]",
		Description: `Reads a JSON task tree from the given file, or stdin, and prints markdown.

Use --subtree to export a single task and its descendants as a standalone
list. Use --render to pretty print the result for the terminal.

Examples:
  marksync export tree.json
  marksync parse todo.md | marksync export --render
  marksync export --subtree 3f2a... tree.json`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "subtree",
				Usage:       "export only the task with this id and its descendants",
				Destination: &cmd.subtree,
			},
			&cli.BoolFlag{
				Name:        "render",
				Aliases:     []string{"r"},
				Usage:       "render markdown for the terminal",
				Destination: &cmd.render,
			},
		},
		ShellComplete: TaskIDCompleter(func(c *cli.Command) string { return c.Args().First() }),
		Action:        cmd.run,
	})

	return app
}

func (cmd *ExportCmd) run(ctx context.Context, c *cli.Command) error {
	tasks, err := iojson.Read[[]task.Task](c.Args().First())
	if err != nil {
		return err
	}

	if err := task.Validate(tasks); err != nil {
		log.Warn().Err(err).Msg("exporting tree with inconsistent levels")
	}

	var md string
	if cmd.subtree != "" {
		t, ok := task.Find(tasks, cmd.subtree)
		if !ok {
			return fmt.Errorf("subtree %q: %w", cmd.subtree, tree.ErrNotFound)
		}
		md = markdown.ExportSubtree(t)
	} else {
		md = markdown.Export(tasks)
	}

	out := c.Root().Writer
	if cmd.render {
		return renderMarkdown(out, md)
	}

	_, err = fmt.Fprintln(out, md)
	return err
}

// renderMarkdown pretty prints md. Output that is not a terminal gets the
// plain style so no escape codes leak into files or pipes.
func renderMarkdown(w io.Writer, md string) error {
	style := styles.NoTTYStyle
	width := defaultRenderWidth

	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		style = styles.DarkStyle
		if tw, _, err := term.GetSize(int(f.Fd())); err == nil && tw > 0 {
			width = tw
		}
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}

	rendered, err := renderer.Render(md)
	if err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}

	_, err = io.WriteString(w, rendered)
	return err
}
