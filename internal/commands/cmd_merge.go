package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/marksync/internal/core/task"
	"github.com/colonyops/marksync/internal/core/tree"
	"github.com/colonyops/marksync/pkg/iojson"
)

// MergeCmd implements the marksync merge command.
type MergeCmd struct {
	flags *Flags
	tree  *iojson.FileReader[[]task.Task]

	parent string
}

// NewMergeCmd creates a new merge command.
func NewMergeCmd(flags *Flags) *MergeCmd {
	return &MergeCmd{
		flags: flags,
		tree:  iojson.NewFileReader[[]task.Task]("tree", "path to the existing JSON task tree (reads stdin if not provided)"),
	}
}

// Register adds the merge command to the application.
func (cmd *MergeCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "merge",
		Usage:     "Merge a markdown fragment into a JSON task tree",
		UsageText: "marksync merge [--tree <tree.json>] [--parent <id>] <fragment.md>",
		Description: `Parses the fragment and grafts its tasks into the existing tree, then prints
the merged tree as JSON.

Without --parent the fragment's tasks are appended as new roots. With
--parent they become the last children of that task, re-leveled to fit.

Examples:
  marksync merge --tree tree.json extra.md
  marksync parse todo.md | marksync merge --parent 3f2a... extra.md`,
		Flags: []cli.Flag{
			cmd.tree.Flag(),
			&cli.StringFlag{
				Name:        "parent",
				Aliases:     []string{"p"},
				Usage:       "id of the task that receives the fragment",
				Destination: &cmd.parent,
			},
		},
		ShellComplete: TaskIDCompleter(func(c *cli.Command) string { return c.String("tree") }),
		Action:        cmd.run,
	})

	return app
}

func (cmd *MergeCmd) run(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("exactly one fragment file is required")
	}
	if cmd.tree.Path() == "" && c.Args().First() == "-" {
		return fmt.Errorf("tree and fragment cannot both come from stdin")
	}

	fragment, err := iojson.ReadAll(c.Args().First())
	if err != nil {
		return err
	}

	existing, err := cmd.tree.Read()
	if err != nil {
		return fmt.Errorf("read tree: %w", err)
	}

	incoming := cmd.flags.config().MarkdownParser().Parse(string(fragment))
	merged, err := tree.MergeInto(existing, incoming, cmd.parent)
	if err != nil {
		return err
	}
	if merged == nil {
		merged = []task.Task{}
	}

	return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, merged)
}
