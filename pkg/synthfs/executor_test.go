package synthfs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stencilworks/stencil/pkg/apply"
	"github.com/stencilworks/stencil/pkg/filesystem"
	"github.com/stencilworks/stencil/pkg/plan"
	"github.com/stencilworks/stencil/pkg/types"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func TestExecuteRemovesAndRewrites(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/ui/options/Options.vue": "<template/>",
		"src/unused.ts":              "export {}\n",
		"package.json":               `{"name": "demo"}`,
	})

	p := &plan.Plan{
		ID:         "pipe-test",
		ProjectDir: root,
		Removals: []types.RemovalOp{
			{Path: filepath.Join(root, "src/ui/options"), Recursive: true, Status: types.StatusReady},
			{Path: filepath.Join(root, "src/unused.ts"), Status: types.StatusReady},
		},
		Writes: []types.FileWriteOp{
			{Kind: types.WriteDeps, Path: filepath.Join(root, "package.json"), Content: []byte(`{"name": "lean"}`)},
		},
	}

	res, err := NewPipelineExecutor(false).Execute(context.Background(), p)
	require.NoError(t, err)

	assert.Len(t, res.Removed, 2)
	assert.Len(t, res.Written, 1)

	assert.NoDirExists(t, filepath.Join(root, "src/ui/options"))
	assert.NoFileExists(t, filepath.Join(root, "src/unused.ts"))

	content, err := os.ReadFile(filepath.Join(root, "package.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"name": "lean"}`, string(content))
}

func TestExecuteDryRunTouchesNothing(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/unused.ts": "export {}\n",
	})

	p := &plan.Plan{
		ID:         "pipe-dry",
		ProjectDir: root,
		Removals: []types.RemovalOp{
			{Path: filepath.Join(root, "src/unused.ts"), Status: types.StatusReady},
		},
	}

	res, err := NewPipelineExecutor(true).Execute(context.Background(), p)
	require.NoError(t, err)

	assert.True(t, res.DryRun)
	assert.Len(t, res.Removed, 1)
	assert.FileExists(t, filepath.Join(root, "src/unused.ts"))
}

func TestExecuteRejectsEscapingPath(t *testing.T) {
	root := t.TempDir()
	outside := filepath.Join(t.TempDir(), "victim.txt")
	require.NoError(t, os.WriteFile(outside, []byte("keep"), 0o644))

	p := &plan.Plan{
		ID:         "pipe-escape",
		ProjectDir: root,
		Removals: []types.RemovalOp{
			{Path: outside, Status: types.StatusReady},
		},
	}

	_, err := NewPipelineExecutor(false).Execute(context.Background(), p)
	require.Error(t, err)
	assert.FileExists(t, outside)
}

func TestExecuteJournalsBeforeMutating(t *testing.T) {
	root := t.TempDir()
	journalRoot := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/unused.ts": "export {}\n",
	})

	journal := apply.NewJournal(filesystem.NewOS(), journalRoot)
	exec := NewPipelineExecutor(false).WithJournal(journal, 5)

	p := &plan.Plan{
		ID:         "pipe-journal",
		ProjectDir: root,
		Removals: []types.RemovalOp{
			{Path: filepath.Join(root, "src/unused.ts"), Status: types.StatusReady},
		},
	}

	res, err := exec.Execute(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(journalRoot, "pipe-journal"), res.BackupDir)
	backup, err := os.ReadFile(filepath.Join(journalRoot, "pipe-journal", "src/unused.ts"))
	require.NoError(t, err)
	assert.Equal(t, "export {}\n", string(backup))
	assert.NoFileExists(t, filepath.Join(root, "src/unused.ts"))
}

func TestValidateProjectPath(t *testing.T) {
	assert.NoError(t, validateProjectPath("/proj", "/proj/src/a.ts"))
	assert.NoError(t, validateProjectPath("/proj", "/proj/a.ts"))
	assert.Error(t, validateProjectPath("/proj", "/proj"))
	assert.Error(t, validateProjectPath("/proj", "/etc/passwd"))
	assert.Error(t, validateProjectPath("/proj", "/proj/../other/a.ts"))
}
