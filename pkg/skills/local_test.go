package skills

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSkill(t *testing.T, dir, name, description string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	content := "---\nname: " + name + "\ndescription: " + description + "\n---\n\n# " + name + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, SkillFileName), []byte(content), 0o644))
}

func newLocal(t *testing.T, roots []string, opts ...LocalOption) *LocalSource {
	t.Helper()
	source, err := NewLocalSource(roots, opts...)
	require.NoError(t, err)
	return source
}

func TestLocalSourceFind(t *testing.T) {
	root := t.TempDir()
	writeSkill(t, filepath.Join(root, "resize"), "resize", "resize images")
	writeSkill(t, filepath.Join(root, "email"), "send-email", "Send email via SMTP")

	results := newLocal(t, []string{root}).Find(context.Background(), "resize")
	require.Len(t, results, 1)
	assert.Equal(t, Candidate{
		Name:        "resize",
		Description: "resize images",
		Location:    filepath.Join(root, "resize"),
		Source:      SourceLocal,
	}, results[0])
}

func TestLocalSourceCaseInsensitive(t *testing.T) {
	root := t.TempDir()
	writeSkill(t, filepath.Join(root, "image-resizer"), "image-resizer", "Resize pictures")

	results := newLocal(t, []string{root}).Find(context.Background(), "Image")
	require.Len(t, results, 1)
	assert.Equal(t, "image-resizer", results[0].Name)
}

func TestLocalSourceMatchesNameAndDescriptionOnly(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "pdf")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	content := "---\nname: pdf\ndescription: Work with documents\n---\n\nMentions spreadsheets in the body.\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, SkillFileName), []byte(content), 0o644))

	source := newLocal(t, []string{root})
	assert.Empty(t, source.Find(context.Background(), "spreadsheets"))
	assert.Len(t, source.Find(context.Background(), "documents"), 1)
}

func TestLocalSourceNestedGroups(t *testing.T) {
	root := t.TempDir()
	writeSkill(t, filepath.Join(root, "b-top"), "b-top", "tool")
	writeSkill(t, filepath.Join(root, "a-group", "nested"), "nested", "tool")
	writeSkill(t, filepath.Join(root, "a-group", "nested", "too-deep"), "too-deep", "tool")

	results := newLocal(t, []string{root}).Find(context.Background(), "tool")

	names := make([]string, 0, len(results))
	for _, r := range results {
		names = append(names, r.Name)
	}
	// Level-one directories come first, then their children.
	assert.Equal(t, []string{"b-top", "nested"}, names)
}

func TestLocalSourceRootOrder(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	writeSkill(t, filepath.Join(first, "shared"), "shared", "From first root")
	writeSkill(t, filepath.Join(second, "shared"), "shared", "From second root")

	results := newLocal(t, []string{second, first}).Find(context.Background(), "shared")
	require.Len(t, results, 2)
	assert.Equal(t, "From second root", results[0].Description)
	assert.Equal(t, "From first root", results[1].Description)
}

func TestLocalSourceSkipsInvalid(t *testing.T) {
	root := t.TempDir()

	noName := filepath.Join(root, "no-name")
	require.NoError(t, os.MkdirAll(noName, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(noName, SkillFileName), []byte("---\ndescription: skill\n---\n"), 0o644))

	noFrontmatter := filepath.Join(root, "no-frontmatter")
	require.NoError(t, os.MkdirAll(noFrontmatter, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(noFrontmatter, SkillFileName), []byte("# skill\n"), 0o644))

	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty-dir"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, SkillFileName), []byte("---\nname: root-file\n---\n"), 0o644))

	assert.Empty(t, newLocal(t, []string{root}).Find(context.Background(), "skill"))
	assert.Empty(t, newLocal(t, []string{root}).Find(context.Background(), "root-file"))
}

func TestLocalSourceSymlinks(t *testing.T) {
	tmpDir := t.TempDir()
	root := filepath.Join(tmpDir, "skills")
	require.NoError(t, os.MkdirAll(root, 0o755))

	actual := filepath.Join(tmpDir, "actual", "linked")
	writeSkill(t, actual, "linked", "A skill accessed via symlink")
	require.NoError(t, os.Symlink(actual, filepath.Join(root, "linked")))

	target := filepath.Join(tmpDir, "file.txt")
	require.NoError(t, os.WriteFile(target, []byte("just a file"), 0o644))
	require.NoError(t, os.Symlink(target, filepath.Join(root, "file-link")))
	require.NoError(t, os.Symlink("/non/existent/path", filepath.Join(root, "broken")))

	results := newLocal(t, []string{root}).Find(context.Background(), "")
	require.Len(t, results, 1)
	assert.Equal(t, "linked", results[0].Name)
	assert.Equal(t, filepath.Join(root, "linked"), results[0].Location)
}

func TestLocalSourceIgnorePatterns(t *testing.T) {
	root := t.TempDir()
	writeSkill(t, filepath.Join(root, "keep"), "keep", "tool")
	writeSkill(t, filepath.Join(root, "_draft"), "draft", "tool")
	writeSkill(t, filepath.Join(root, "node_modules", "pkg"), "pkg", "tool")

	source := newLocal(t, []string{root}, WithIgnorePatterns("_*", "node_modules"))
	results := source.Find(context.Background(), "tool")
	require.Len(t, results, 1)
	assert.Equal(t, "keep", results[0].Name)

	_, err := NewLocalSource([]string{root}, WithIgnorePatterns("[unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid ignore pattern")
}

func TestLocalSourceDescriptionCap(t *testing.T) {
	root := t.TempDir()
	writeSkill(t, filepath.Join(root, "verbose"), "verbose", strings.Repeat("x", 500))

	results := newLocal(t, []string{root}).Find(context.Background(), "verbose")
	require.Len(t, results, 1)
	assert.Len(t, results[0].Description, MaxDescriptionLength)
}

func TestLocalSourceMissingRoots(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	source := newLocal(t, []string{"/non/existent/path", file})
	assert.False(t, source.Available())
	assert.Empty(t, source.Find(context.Background(), "anything"))

	result := source.Search(context.Background(), "anything")
	assert.Equal(t, SourceLocal, result.Source)
	assert.NoError(t, result.Err())
}

func TestLocalSourceRelativeRootIsAbsolute(t *testing.T) {
	root := t.TempDir()
	writeSkill(t, filepath.Join(root, "skills", "resize"), "resize", "resize images")
	chdir(t, root)

	results := newLocal(t, []string{"./skills/"}).Find(context.Background(), "resize")
	require.Len(t, results, 1)
	assert.True(t, filepath.IsAbs(results[0].Location))
	assert.Equal(t, "resize", filepath.Base(results[0].Location))
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	expanded, err := ExpandHome("~/skills/")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "skills"), expanded)

	expanded, err = ExpandHome("~")
	require.NoError(t, err)
	assert.Equal(t, home, expanded)

	expanded, err = ExpandHome("./skills")
	require.NoError(t, err)
	assert.Equal(t, "./skills", expanded)

	source := newLocal(t, []string{"~/skills"})
	assert.Equal(t, []string{filepath.Join(home, "skills")}, source.Roots())
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup, like testing.T.Chdir (Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	if abs, err := filepath.Abs(dir); err == nil {
		t.Setenv("PWD", abs)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
