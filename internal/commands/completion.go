package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/marksync/internal/core/task"
)

// TaskIDCompleter returns a ShellCompleteFunc that suggests the ids of the
// tasks in the JSON tree located by treePath, as "id:text" pairs.
//
// When the user's last typed argument starts with "-", it falls back to the
// default flag completion behavior.
func TaskIDCompleter(treePath func(cmd *cli.Command) string) cli.ShellCompleteFunc {
	return func(ctx context.Context, cmd *cli.Command) {
		if args := cmd.Args(); args.Present() {
			last := args.Slice()[args.Len()-1]
			if strings.HasPrefix(last, "-") {
				cli.DefaultCompleteWithFlags(ctx, cmd)
				return
			}
		}

		path := treePath(cmd)
		if path == "" {
			return
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return
		}
		var tasks []task.Task
		if err := json.Unmarshal(data, &tasks); err != nil {
			return
		}

		w := cmd.Root().Writer
		for _, t := range task.Flatten(tasks) {
			_, _ = fmt.Fprintf(w, "%s:%s\n", t.ID, strings.ReplaceAll(t.Text, ":", `\:`))
		}
	}
}
