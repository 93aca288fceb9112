package doctor

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/colonyops/marksync/internal/core/markdown"
	"github.com/colonyops/marksync/internal/core/task"
)

const dueLayout = "2006-01-02"

// DocumentsCheck inspects markdown task documents for content that does not
// survive a parse and export round trip.
type DocumentsCheck struct {
	paths  []string
	parser markdown.Parser
}

func NewDocumentsCheck(parser markdown.Parser, paths ...string) *DocumentsCheck {
	return &DocumentsCheck{paths: paths, parser: parser}
}

func (c *DocumentsCheck) Name() string { return "Documents" }

func (c *DocumentsCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	if len(c.paths) == 0 {
		result.Items = append(result.Items, CheckItem{Label: "Documents", Status: StatusPass, Detail: "none given"})
		return result
	}

	for _, path := range c.paths {
		if ctx.Err() != nil {
			break
		}
		result.Items = append(result.Items, c.inspect(path))
	}
	return result
}

func (c *DocumentsCheck) inspect(path string) CheckItem {
	data, err := os.ReadFile(path)
	if err != nil {
		return CheckItem{Label: path, Status: StatusFail, Detail: err.Error()}
	}
	md := string(data)

	if dropped := markdown.Dropped(md); len(dropped) > 0 {
		return CheckItem{
			Label:  path,
			Status: StatusWarn,
			Detail: "lines " + joinInts(dropped) + " are not tasks or headers and would be lost",
		}
	}

	tasks := c.parser.Parse(md)
	if bad := invalidDueDates(tasks); len(bad) > 0 {
		return CheckItem{
			Label:  path,
			Status: StatusWarn,
			Detail: fmt.Sprintf("invalid due dates: %s", strings.Join(bad, ", ")),
		}
	}

	formatted := markdown.Export(tasks)
	if formatted != "" {
		formatted += "\n"
	}
	if formatted != md {
		return CheckItem{Label: path, Status: StatusWarn, Detail: "not formatted", Fixable: true}
	}

	completed, total := task.Count(tasks)
	return CheckItem{Label: path, Status: StatusPass, Detail: fmt.Sprintf("%d/%d tasks done", completed, total)}
}

// invalidDueDates returns due dates that match the date shape but are not
// real calendar days, such as 2026-02-30.
func invalidDueDates(tasks []task.Task) []string {
	var bad []string
	for _, t := range task.Flatten(tasks) {
		if t.DueDate == "" {
			continue
		}
		if _, err := time.Parse(dueLayout, t.DueDate); err != nil {
			bad = append(bad, t.DueDate)
		}
	}
	return bad
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ", ")
}
