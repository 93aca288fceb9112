package doctor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/marksync/internal/core/markdown"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

type staticCheck struct {
	name  string
	items []CheckItem
}

func (s staticCheck) Name() string { return s.name }

func (s staticCheck) Run(context.Context) Result {
	return Result{Name: s.name, Items: s.items}
}

func TestRunAllAndSummary(t *testing.T) {
	checks := []Check{
		staticCheck{name: "one", items: []CheckItem{{Label: "a", Status: StatusPass}, {Label: "b", Status: StatusWarn, Fixable: true}}},
		staticCheck{name: "two", items: []CheckItem{{Label: "c", Status: StatusFail}, {Label: "d", Status: StatusPass, Fixable: true}}},
	}

	results := RunAll(context.Background(), checks)
	require.Len(t, results, 2)

	passed, warned, failed := Summary(results)
	assert.Equal(t, 2, passed)
	assert.Equal(t, 1, warned)
	assert.Equal(t, 1, failed)
	assert.Equal(t, 1, CountFixable(results), "passing items are never fixable issues")
}

func TestRunAll_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := RunAll(ctx, []Check{staticCheck{name: "one"}})
	assert.Empty(t, results)
}

func TestConfigCheck(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name       string
		path       string
		wantStatus []Status
		wantLabels []string
	}{
		{name: "no path", path: "", wantStatus: []Status{StatusPass}, wantLabels: []string{"Config file"}},
		{name: "missing file", path: filepath.Join(dir, "missing.yaml"), wantStatus: []Status{StatusPass}, wantLabels: []string{"Config file"}},
		{name: "directory", path: dir, wantStatus: []Status{StatusFail}, wantLabels: []string{"Config file"}},
		{
			name:       "valid",
			path:       writeFile(t, dir, "valid.yaml", "sync:\n  debounce: 1s\n"),
			wantStatus: []Status{StatusPass},
			wantLabels: []string{"Config file"},
		},
		{
			name:       "bad yaml",
			path:       writeFile(t, dir, "bad.yaml", "sync: [unterminated"),
			wantStatus: []Status{StatusFail},
			wantLabels: []string{"Config file"},
		},
		{
			name:       "invalid fields",
			path:       writeFile(t, dir, "fields.yaml", "history:\n  max_entries: 0\ntheme: neon\n"),
			wantStatus: []Status{StatusFail, StatusFail},
			wantLabels: []string{"history.max_entries", "theme"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewConfigCheck(tt.path).Run(context.Background())
			assert.Equal(t, "Configuration", result.Name)

			var statuses []Status
			var labels []string
			for _, item := range result.Items {
				statuses = append(statuses, item.Status)
				labels = append(labels, item.Label)
			}
			assert.Equal(t, tt.wantStatus, statuses)
			assert.Equal(t, tt.wantLabels, labels)
		})
	}
}

func TestDocumentsCheck(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name       string
		content    string
		wantStatus Status
		wantDetail string
		fixable    bool
	}{
		{
			name:       "clean",
			content:    "### Work\n\n* [x] ship\n  * [ ] docs\n",
			wantStatus: StatusPass,
			wantDetail: "1/2 tasks done",
		},
		{
			name:       "prose",
			content:    "Notes\n* [ ] a\n\nmore notes\n",
			wantStatus: StatusWarn,
			wantDetail: "lines 1, 4 are not tasks",
		},
		{
			name:       "impossible due date",
			content:    "* [ ] pay due:2026-02-30\n",
			wantStatus: StatusWarn,
			wantDetail: "2026-02-30",
		},
		{
			name:       "unformatted",
			content:    "- [X] ship\n",
			wantStatus: StatusWarn,
			wantDetail: "not formatted",
			fixable:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, tt.name+".md", tt.content)

			result := NewDocumentsCheck(markdown.DefaultParser, path).Run(context.Background())
			require.Len(t, result.Items, 1)

			item := result.Items[0]
			assert.Equal(t, path, item.Label)
			assert.Equal(t, tt.wantStatus, item.Status)
			assert.Contains(t, item.Detail, tt.wantDetail)
			assert.Equal(t, tt.fixable, item.Fixable)
		})
	}
}

func TestDocumentsCheck_MissingFile(t *testing.T) {
	result := NewDocumentsCheck(markdown.DefaultParser, filepath.Join(t.TempDir(), "nope.md")).Run(context.Background())
	require.Len(t, result.Items, 1)
	assert.Equal(t, StatusFail, result.Items[0].Status)
}
