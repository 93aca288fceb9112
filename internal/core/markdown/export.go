package markdown

import (
	"regexp"
	"strings"

	"github.com/colonyops/marksync/internal/core/task"
)

var blankRuns = regexp.MustCompile(`\n{3,}`)

const maxHeaderHashes = 6

// Export renders a full task tree as markdown. Headers become "#" lines
// (level 0 is "###"), tasks become "* [ ]" bullets indented two spaces per
// level below the nearest enclosing header.
func Export(tasks []task.Task) string {
	var b strings.Builder
	for i := range tasks {
		writeTask(&b, &tasks[i], -1)
	}
	return finalize(b.String())
}

// ExportSubtree renders t and its descendants as if t sat at level 0.
func ExportSubtree(t task.Task) string {
	return Export(task.Relevel([]task.Task{t}, 0))
}

func writeTask(b *strings.Builder, t *task.Task, headerLevel int) {
	if t.IsHeader {
		hashes := t.Level + headerBase
		hashes = max(1, min(hashes, maxHeaderHashes))

		b.WriteString(strings.Repeat("#", hashes))
		b.WriteString(" ")
		b.WriteString(t.Text)
		b.WriteString("\n\n")

		for i := range t.Children {
			writeTask(b, &t.Children[i], t.Level)
		}
		b.WriteString("\n")
		return
	}

	indent := max(0, t.Level-headerLevel-1)
	b.WriteString(strings.Repeat("  ", indent))
	if t.Completed {
		b.WriteString("* [x] ")
	} else {
		b.WriteString("* [ ] ")
	}
	b.WriteString(t.Text)
	if t.DueDate != "" {
		b.WriteString(" due:")
		b.WriteString(t.DueDate)
	}
	b.WriteString("\n")

	for i := range t.Children {
		writeTask(b, &t.Children[i], headerLevel)
	}
}

func finalize(s string) string {
	return strings.TrimSpace(blankRuns.ReplaceAllString(s, "\n\n"))
}
