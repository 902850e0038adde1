package migrate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyTreePreservesStructure(t *testing.T) {
	src := filepath.Join(t.TempDir(), "pdf")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "examples", "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "SKILL.md"), []byte("descriptor"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "examples", "nested", "sample.txt"), []byte("sample"), 0o600))
	require.NoError(t, os.Symlink("SKILL.md", filepath.Join(src, "README.md")))

	dst := filepath.Join(t.TempDir(), "pdf")
	require.NoError(t, copyTree(src, dst))

	content, err := os.ReadFile(filepath.Join(dst, "examples", "nested", "sample.txt"))
	require.NoError(t, err)
	assert.Equal(t, "sample", string(content))

	info, err := os.Stat(filepath.Join(dst, "examples", "nested", "sample.txt"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	link, err := os.Readlink(filepath.Join(dst, "README.md"))
	require.NoError(t, err)
	assert.Equal(t, "SKILL.md", link)
}

func TestCopyTreeFollowsRootSymlink(t *testing.T) {
	base := t.TempDir()
	realDir := filepath.Join(base, "real")
	require.NoError(t, os.Mkdir(realDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(realDir, "SKILL.md"), []byte("x"), 0o644))
	linked := filepath.Join(base, "linked")
	require.NoError(t, os.Symlink(realDir, linked))

	dst := filepath.Join(base, "out")
	require.NoError(t, copyTree(linked, dst))

	info, err := os.Lstat(dst)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.FileExists(t, filepath.Join(dst, "SKILL.md"))
}

func TestCopyTreeRefusesExistingDestination(t *testing.T) {
	src := filepath.Join(t.TempDir(), "src")
	require.NoError(t, os.Mkdir(src, 0o755))

	dst := t.TempDir()
	err := copyTree(src, dst)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create directory")
}

func TestCopyTreeMissingSource(t *testing.T) {
	err := copyTree(filepath.Join(t.TempDir(), "gone"), filepath.Join(t.TempDir(), "dst"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to resolve source directory")
}
