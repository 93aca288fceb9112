// Package markdown converts between markdown text and task trees.
//
// Only two line grammars are structural: ATX headers ("### Section") and
// bullet items ("- [ ] task"). Every other line is dropped by the parser and
// is not reproduced by the exporter.
package markdown

import (
	"regexp"
	"strings"

	"github.com/colonyops/marksync/internal/core/task"
)

var (
	headerPattern = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	bulletPattern = regexp.MustCompile(`^(\s*)[*\-+]\s+(?:\[([ xX])\]\s+)?(.+)$`)
	rulePattern   = regexp.MustCompile(`^\s*([-*_])(\s*[-*_]){2,}\s*$`)
	duePattern    = regexp.MustCompile(`\s+due:(\d{4}-\d{2}-\d{2})$`)
)

// headerBase is the number of '#' that maps to level 0.
const headerBase = 3

// Parser turns markdown into a task tree.
type Parser struct {
	// ClampHeaderLevels clamps levels of shallow headers ("#", "##") to zero
	// and renormalizes the resulting tree so every level equals its depth.
	// When false the raw computed levels are kept, including negative ones.
	ClampHeaderLevels bool

	// NewID generates node ids. Defaults to task.NewID.
	NewID func() string
}

// DefaultParser clamps header levels and assigns random ids.
var DefaultParser = Parser{ClampHeaderLevels: true}

// Parse parses markdown with DefaultParser.
func Parse(md string) []task.Task {
	return DefaultParser.Parse(md)
}

type node struct {
	task task.Task
	kids []*node
}

// Parse scans md line by line and builds the task hierarchy. It never fails;
// lines that are neither headers nor bullets are skipped.
func (p Parser) Parse(md string) []task.Task {
	newID := p.NewID
	if newID == nil {
		newID = task.NewID
	}

	var (
		roots       []*node
		stack       []*node
		headerLevel = -1
		seenHeader  bool
	)

	insert := func(n *node) {
		for len(stack) > 0 && stack[len(stack)-1].task.Level >= n.task.Level {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			roots = append(roots, n)
		} else {
			top := stack[len(stack)-1]
			top.kids = append(top.kids, n)
		}
		stack = append(stack, n)
	}

	for _, raw := range strings.Split(md, "\n") {
		line := strings.TrimRight(raw, " \t\r")
		if strings.TrimSpace(line) == "" || rulePattern.MatchString(line) {
			continue
		}

		if m := headerPattern.FindStringSubmatch(line); m != nil {
			text := stripEmphasis(m[2])
			// "### ****" has nothing left to export
			if text == "" {
				continue
			}

			level := len(m[1]) - headerBase
			if p.ClampHeaderLevels && level < 0 {
				level = 0
			}
			headerLevel = level
			seenHeader = true

			insert(&node{task: task.Task{
				ID:       newID(),
				Text:     text,
				Level:    level,
				IsHeader: true,
			}})
			continue
		}

		if m := bulletPattern.FindStringSubmatch(line); m != nil {
			base := 0
			if seenHeader {
				base = headerLevel
			}

			text, due := splitDue(strings.TrimSpace(m[3]))
			insert(&node{task: task.Task{
				ID:        newID(),
				Text:      text,
				Completed: strings.EqualFold(m[2], "x"),
				Level:     base + 1 + indentWidth(m[1])/2,
				DueDate:   due,
			}})
		}
	}

	tasks := build(roots)
	if p.ClampHeaderLevels {
		tasks = task.Relevel(tasks, 0)
	}
	return tasks
}

func build(nodes []*node) []task.Task {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]task.Task, len(nodes))
	for i, n := range nodes {
		t := n.task
		t.Children = build(n.kids)
		out[i] = t
	}
	return out
}

// indentWidth counts leading whitespace, with a tab worth one nesting step.
func indentWidth(ws string) int {
	width := 0
	for _, r := range ws {
		if r == '\t' {
			width += 2
			continue
		}
		width++
	}
	return width
}

func stripEmphasis(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "__", "")
	return strings.TrimSpace(s)
}

func splitDue(text string) (string, string) {
	m := duePattern.FindStringSubmatchIndex(text)
	if m == nil {
		return text, ""
	}
	return strings.TrimSpace(text[:m[0]]), text[m[2]:m[3]]
}

// Dropped returns the 1-based numbers of non-blank lines Parse ignores.
// Horizontal rules count as dropped since they do not survive a round trip.
func Dropped(md string) []int {
	var lines []int
	for i, raw := range strings.Split(md, "\n") {
		line := strings.TrimRight(raw, " \t\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if rulePattern.MatchString(line) {
			lines = append(lines, i+1)
			continue
		}
		if m := headerPattern.FindStringSubmatch(line); m != nil && stripEmphasis(m[2]) != "" {
			continue
		}
		if bulletPattern.MatchString(line) {
			continue
		}
		lines = append(lines, i+1)
	}
	return lines
}
