package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/marksync/internal/core/markdown"
	"github.com/colonyops/marksync/internal/core/task"
	"github.com/colonyops/marksync/internal/core/tree"
	"github.com/colonyops/marksync/pkg/iojson"
)

// ParseCmd implements the marksync parse command.
type ParseCmd struct {
	flags *Flags

	search        string
	hideCompleted bool
}

// NewParseCmd creates a new parse command.
func NewParseCmd(flags *Flags) *ParseCmd {
	return &ParseCmd{flags: flags}
}

// Register adds the parse command to the application.
func (cmd *ParseCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "parse",
		Usage:     "Convert a markdown task list into a JSON task tree",
		UsageText: "marksync parse [--search <query>] [--hide-completed] [file.md]",
		Description: `Reads markdown from the given file, or stdin, and prints the task tree as JSON.

Headers ("### Section") become section nodes and bullets ("- [ ] task")
become tasks nested by indentation. Other lines are ignored.

Examples:
  marksync parse todo.md
  cat todo.md | marksync parse --hide-completed
  marksync parse --search deploy todo.md`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "search",
				Aliases:     []string{"s"},
				Usage:       "keep only tasks whose text (or a descendant's) contains the query",
				Destination: &cmd.search,
			},
			&cli.BoolFlag{
				Name:        "hide-completed",
				Usage:       "drop completed tasks and sections left empty",
				Destination: &cmd.hideCompleted,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ParseCmd) run(ctx context.Context, c *cli.Command) error {
	data, err := iojson.ReadAll(c.Args().First())
	if err != nil {
		return err
	}

	md := string(data)
	if dropped := markdown.Dropped(md); len(dropped) > 0 {
		log.Debug().Ints("lines", dropped).Msg("ignored non-task lines")
	}

	tasks := cmd.flags.config().MarkdownParser().Parse(md)
	if cmd.search != "" {
		tasks = tree.Search(tasks, cmd.search)
	}
	if cmd.hideCompleted {
		tasks = tree.HideCompleted(tasks)
	}
	if tasks == nil {
		tasks = []task.Task{}
	}

	if err := iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, tasks); err != nil {
		return fmt.Errorf("write tree: %w", err)
	}
	return nil
}
