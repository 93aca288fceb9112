package markdown

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/marksync/internal/core/task"
)

// shape is the part of a node that survives a markdown round trip.
type shape struct {
	Level     int
	IsHeader  bool
	Completed bool
	Text      string
}

func shapes(tasks []task.Task) []shape {
	var out []shape
	task.Walk(tasks, func(t *task.Task, _ *task.Task) bool {
		out = append(out, shape{Level: t.Level, IsHeader: t.IsHeader, Completed: t.Completed, Text: t.Text})
		return true
	})
	return out
}

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func TestParse_SectionExample(t *testing.T) {
	p := Parser{ClampHeaderLevels: true, NewID: seqIDs()}
	got := p.Parse("### Section\n- [ ] A\n  - [x] B")

	want := []task.Task{
		{
			ID: "id-1", Text: "Section", IsHeader: true, Level: 0,
			Children: []task.Task{
				{
					ID: "id-2", Text: "A", Level: 1,
					Children: []task.Task{
						{ID: "id-3", Text: "B", Level: 2, Completed: true},
					},
				},
			},
		},
	}
	assert.Equal(t, want, got)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []shape
	}{
		{
			name:  "empty",
			input: "",
			want:  nil,
		},
		{
			name:  "headerless bullets sit at root",
			input: "- [ ] X\n  - [ ] Y\n- Z",
			want: []shape{
				{Level: 0, Text: "X"},
				{Level: 1, Text: "Y"},
				{Level: 0, Text: "Z"},
			},
		},
		{
			name:  "all bullet markers and checkbox variants",
			input: "### S\n* [x] a\n+ [X] b\n- c",
			want: []shape{
				{Level: 0, IsHeader: true, Text: "S"},
				{Level: 1, Completed: true, Text: "a"},
				{Level: 1, Completed: true, Text: "b"},
				{Level: 1, Text: "c"},
			},
		},
		{
			name:  "blank lines, rules, and prose are skipped",
			input: "intro text\n\n---\n### S\n\nsome prose\n- [ ] a\n| table | row |\n***\n",
			want: []shape{
				{Level: 0, IsHeader: true, Text: "S"},
				{Level: 1, Text: "a"},
			},
		},
		{
			name:  "header with only emphasis is skipped",
			input: "### S\n### ****\n- [ ] a",
			want: []shape{
				{Level: 0, IsHeader: true, Text: "S"},
				{Level: 1, Text: "a"},
			},
		},
		{
			name:  "bold markers stripped from headers",
			input: "### **Important** stuff",
			want:  []shape{{Level: 0, IsHeader: true, Text: "Important stuff"}},
		},
		{
			name:  "nested headers re-parent by depth",
			input: "### A\n#### B\n- [ ] b1\n### C\n- [ ] c1",
			want: []shape{
				{Level: 0, IsHeader: true, Text: "A"},
				{Level: 1, IsHeader: true, Text: "B"},
				{Level: 2, Text: "b1"},
				{Level: 0, IsHeader: true, Text: "C"},
				{Level: 1, Text: "c1"},
			},
		},
		{
			name:  "shallow headers clamp to level zero",
			input: "# Top\n- [ ] a\n## Next\n- [ ] b",
			want: []shape{
				{Level: 0, IsHeader: true, Text: "Top"},
				{Level: 1, Text: "a"},
				{Level: 0, IsHeader: true, Text: "Next"},
				{Level: 1, Text: "b"},
			},
		},
		{
			name:  "over-indented bullet is renormalized",
			input: "### S\n- [ ] a\n      - [ ] deep",
			want: []shape{
				{Level: 0, IsHeader: true, Text: "S"},
				{Level: 1, Text: "a"},
				{Level: 2, Text: "deep"},
			},
		},
		{
			name:  "tab indentation counts as one level",
			input: "- [ ] a\n\t- [ ] b",
			want: []shape{
				{Level: 0, Text: "a"},
				{Level: 1, Text: "b"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.input)
			assert.Equal(t, tt.want, shapes(got))
			require.NoError(t, task.Validate(got))
		})
	}
}

func TestParse_RawLevels(t *testing.T) {
	p := Parser{ClampHeaderLevels: false, NewID: seqIDs()}
	got := p.Parse("# Top\n- [ ] a\n- [ ] b")

	require.Len(t, got, 1)
	assert.Equal(t, -2, got[0].Level)
	assert.Equal(t, -1, got[0].Children[0].Level)

	headerless := p.Parse("- [ ] X")
	assert.Equal(t, 1, headerless[0].Level)
}

func TestParse_DueDate(t *testing.T) {
	got := Parse("- [ ] pay rent due:2026-11-01\n- [ ] due:soon")
	require.Len(t, got, 2)
	assert.Equal(t, "pay rent", got[0].Text)
	assert.Equal(t, "2026-11-01", got[0].DueDate)
	assert.Equal(t, "due:soon", got[1].Text)
	assert.Empty(t, got[1].DueDate)
}

func TestExport_SectionExample(t *testing.T) {
	tree := []task.Task{
		{
			ID: "h", Text: "Section", IsHeader: true, Level: 0,
			Children: []task.Task{
				{
					ID: "a", Text: "A", Level: 1,
					Children: []task.Task{{ID: "b", Text: "B", Level: 2, Completed: true}},
				},
			},
		},
	}

	assert.Equal(t, "### Section\n\n* [ ] A\n  * [x] B", Export(tree))
}

func TestExport(t *testing.T) {
	tests := []struct {
		name  string
		tasks []task.Task
		want  string
	}{
		{
			name: "empty tree",
			want: "",
		},
		{
			name: "headerless tasks",
			tasks: []task.Task{
				{Text: "a", Level: 0, Children: []task.Task{{Text: "b", Level: 1}}},
				{Text: "c", Level: 0, Completed: true},
			},
			want: "* [ ] a\n  * [ ] b\n* [x] c",
		},
		{
			name: "sections separated by single blank line",
			tasks: []task.Task{
				{Text: "A", IsHeader: true, Children: []task.Task{{Text: "a1", Level: 1}}},
				{Text: "Empty", IsHeader: true},
				{Text: "B", IsHeader: true, Children: []task.Task{
					{Text: "Sub", IsHeader: true, Level: 1, Children: []task.Task{{Text: "s1", Level: 2}}},
				}},
			},
			want: "### A\n\n* [ ] a1\n\n### Empty\n\n### B\n\n#### Sub\n\n* [ ] s1",
		},
		{
			name:  "due date suffix",
			tasks: []task.Task{{Text: "pay", DueDate: "2026-11-01"}},
			want:  "* [ ] pay due:2026-11-01",
		},
		{
			name:  "deep headers cap at six hashes",
			tasks: []task.Task{{Text: "deep", IsHeader: true, Level: 5}},
			want:  "###### deep",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Export(tt.tasks))
		})
	}
}

func TestExportSubtree(t *testing.T) {
	sub := task.Task{
		Text: "A", Level: 3,
		Children: []task.Task{
			{Text: "B", Level: 4, Children: []task.Task{{Text: "C", Level: 5, Completed: true}}},
		},
	}
	assert.Equal(t, "* [ ] A\n  * [ ] B\n    * [x] C", ExportSubtree(sub))

	header := task.Task{Text: "H", IsHeader: true, Level: 2, Children: []task.Task{{Text: "x", Level: 3}}}
	assert.Equal(t, "### H\n\n* [ ] x", ExportSubtree(header))
}

func TestRoundTrip(t *testing.T) {
	inputs := []string{
		"### Section\n- [ ] A\n  - [x] B",
		"- [ ] X\n  - [ ] Y\n    - [x] Z\n- [ ] W",
		"### Work\n- [ ] a due:2026-10-20\n#### Later\n- [x] b\n  - [ ] c\n### Home\n- [ ] d",
		"## Legacy\n* [x] done\n\n---\n# Top\n+ [ ] open",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			first := Parse(in)
			second := Parse(Export(first))
			assert.Equal(t, shapes(first), shapes(second))

			// export is a fixed point after one normalization
			assert.Equal(t, Export(first), Export(second))
		})
	}
}

func TestDropped(t *testing.T) {
	tests := []struct {
		name string
		md   string
		want []int
	}{
		{name: "only structure", md: "### H\n\n- [ ] a\n  * b", want: nil},
		{name: "prose and rule", md: "intro text\n- [ ] a\n---\n> quote", want: []int{1, 3, 4}},
		{name: "blank lines ignored", md: "\n\n   \n", want: nil},
		{name: "header with only emphasis", md: "### ****\n- [ ] a\n### __ __", want: []int{1, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Dropped(tt.md))
		})
	}
}
