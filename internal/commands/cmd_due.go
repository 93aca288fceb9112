package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/marksync/internal/core/task"
	"github.com/colonyops/marksync/internal/core/tree"
	"github.com/colonyops/marksync/pkg/iojson"
)

// DueCmd implements the marksync due command.
type DueCmd struct {
	flags *Flags
	now   func() time.Time

	today  string
	status string
}

// NewDueCmd creates a new due command.
func NewDueCmd(flags *Flags) *DueCmd {
	return &DueCmd{flags: flags, now: time.Now}
}

// Register adds the due command to the application.
func (cmd *DueCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "due",
		Usage:     "Group tasks by due date",
		UsageText: "marksync due [--today <YYYY-MM-DD>] [--status <bucket>] [file.md]",
		Description: `Reads markdown and buckets every task by its "due:YYYY-MM-DD" suffix into
overdue, today, tomorrow, thisWeek, later and noDueDate.

With --status the matching tasks are printed as a tree that keeps their
sections and parent tasks for context.

Examples:
  marksync due todo.md
  marksync due --status overdue todo.md
  marksync due --today 2026-01-05 todo.md`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "today",
				Usage:       "date to bucket against (defaults to the current date)",
				Destination: &cmd.today,
			},
			&cli.StringFlag{
				Name:        "status",
				Aliases:     []string{"s"},
				Usage:       "print only one bucket: overdue, today, tomorrow, thisWeek, later, noDueDate",
				Destination: &cmd.status,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *DueCmd) run(ctx context.Context, c *cli.Command) error {
	now := cmd.now()
	if cmd.today != "" {
		parsed, err := time.Parse(tree.DateLayout, cmd.today)
		if err != nil {
			return fmt.Errorf("invalid --today %q: want YYYY-MM-DD", cmd.today)
		}
		now = parsed
	}

	data, err := iojson.ReadAll(c.Args().First())
	if err != nil {
		return err
	}

	cfg := cmd.flags.config()
	tasks := cfg.MarkdownParser().Parse(string(data))
	cal := tree.NewCalendar(now, cfg.Due.WeekHorizonDays)

	var out any = cal.Group(tasks)
	if cmd.status != "" {
		status, err := tree.ParseDueStatus(cmd.status)
		if err != nil {
			return err
		}
		filtered := cal.Filter(tasks, status)
		if filtered == nil {
			filtered = []task.Task{}
		}
		out = filtered
	}

	return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, out)
}
