package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/ohler55/ojg/oj"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/sitetree/api"
	"github.com/agentic-research/sitetree/internal/index"
)

// run executes the root command with args and returns stdout and stderr.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	configPath, verbose = "", false
	readOutput, readJSON = "", false
	topicsOutput, topicsJSON, topicsList = "", false, false
	showTag = ""
	queryHeadlines = false
	indexTopics, indexAppend = "", false

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

// project lays out a site with a config file and returns the config path.
func project(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"sitetree.hcl":         "hierarchy = \"topics.idm\"\n",
		"topics.idm":           "math\n  topology\n    knots\n  algebra\n",
		"site/index.html.md":   "<h1>Home</h1>\n",
		"site/posts/hello.md":  "Hello\n\tworld\n",
		"site/posts/notes.txt": "skipped\n",
		"static/style.css":     "body{}\n",
		"static/img/logo.svg":  "<svg/>\n",
	})
	return filepath.Join(dir, "sitetree.hcl")
}

func TestReadCommand(t *testing.T) {
	cfgPath := project(t)
	site := filepath.Join(filepath.Dir(cfgPath), "site")

	out, _, err := run(t, "--config", cfgPath, "read", site)
	require.NoError(t, err)
	assert.Equal(t, "index.html\n  <h1>Home</h1>\nposts\n  hello\n    Hello\n      world\n", out)
}

func TestReadCommand_OutputFile(t *testing.T) {
	cfgPath := project(t)
	site := filepath.Join(filepath.Dir(cfgPath), "site")
	target := filepath.Join(t.TempDir(), "site.txt")

	out, _, err := run(t, "--config", cfgPath, "read", site, "-o", target)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), "posts\n  hello\n")

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestReadCommand_JSON(t *testing.T) {
	cfgPath := project(t)
	site := filepath.Join(filepath.Dir(cfgPath), "site")

	out, _, err := run(t, "--config", cfgPath, "read", "--json", site)
	require.NoError(t, err)

	v, err := oj.ParseString(out)
	require.NoError(t, err)
	assert.Equal(t, []any{
		map[string]any{"headline": "index.html", "children": []any{"<h1>Home</h1>"}},
		map[string]any{"headline": "posts", "children": []any{
			map[string]any{"headline": "hello", "children": []any{
				map[string]any{"headline": "Hello", "children": []any{"world"}},
			}},
		}},
	}, v)
}

func TestMaterializeCommand(t *testing.T) {
	cfgPath := project(t)
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"site.txt":   "_wrapper\n  x.html\n    body\nposts\n  2024/foo.html\n    content\n",
		"out/old.md": "stale\n",
	})
	out := filepath.Join(dir, "out")

	_, _, err := run(t, "--config", cfgPath, "materialize", filepath.Join(dir, "site.txt"), out)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(out, "x.html"))
	require.NoError(t, err)
	assert.Equal(t, "body\n", string(data))
	assert.FileExists(t, filepath.Join(out, "posts", "2024", "foo.html"))
	assert.NoFileExists(t, filepath.Join(out, "old.md"))
	assert.NoDirExists(t, filepath.Join(out, "_wrapper"))
}

func TestMaterializeCommand_FormatError(t *testing.T) {
	cfgPath := project(t)
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"bad.txt": "a\n   b\n"})

	_, _, err := run(t, "--config", cfgPath, "materialize", filepath.Join(dir, "bad.txt"), filepath.Join(dir, "out"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestBuildCommand(t *testing.T) {
	cfgPath := project(t)
	dir := filepath.Dir(cfgPath)

	out, _, err := run(t, "--config", cfgPath, "build")
	require.NoError(t, err)
	assert.Contains(t, out, "2 files, 2 static")

	public := filepath.Join(dir, "public")
	for name, want := range map[string]string{
		"index.html.md":  "<h1>Home</h1>\n",
		"posts/hello.md": "Hello\n  world\n",
		"style.css":      "body{}\n",
		"img/logo.svg":   "<svg/>\n",
	} {
		data, err := os.ReadFile(filepath.Join(public, filepath.FromSlash(name)))
		require.NoError(t, err, name)
		assert.Equal(t, want, string(data), name)
	}
	assert.NoFileExists(t, filepath.Join(public, "posts", "notes.txt"))
}

func TestBuildCommand_RefusesOverlap(t *testing.T) {
	cfgPath := project(t)
	site := filepath.Join(filepath.Dir(cfgPath), "site")

	for _, output := range []string{site, filepath.Join(site, "public"), filepath.Dir(site)} {
		_, _, err := run(t, "--config", cfgPath, "build", site, output)
		require.ErrorIs(t, err, api.ErrOutputOverlap, output)
	}
	assert.FileExists(t, filepath.Join(site, "posts", "notes.txt"))
	assert.FileExists(t, filepath.Join(site, "index.html.md"))
}

func TestTopicsCommand(t *testing.T) {
	cfgPath := project(t)

	out, _, err := run(t, "--config", cfgPath, "topics")
	require.NoError(t, err)
	assert.Equal(t, "algebra: math\nknots: math, topology\n", out)

	out, _, err = run(t, "--config", cfgPath, "topics", "--json")
	require.NoError(t, err)
	v, err := oj.ParseString(out)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"algebra": []any{"math"},
		"knots":   []any{"math", "topology"},
	}, v)

	hierarchy := filepath.Join(filepath.Dir(cfgPath), "topics.idm")
	out, stderr, err := run(t, "--config", cfgPath, "topics", hierarchy, "knots", "math")
	require.NoError(t, err)
	assert.Equal(t, "topology knots math\n", out)
	assert.Contains(t, stderr, "redundant topic tags")

	out, _, err = run(t, "--config", cfgPath, "topics", "--list-topics")
	require.NoError(t, err)
	assert.Equal(t, "math\ntopology\n", out)

	_, stderr, err = run(t, "--config", cfgPath, "-v", "topics", hierarchy, "unknown")
	require.NoError(t, err)
	assert.Contains(t, stderr, "tag not in hierarchy")
}

func TestQueryCommand(t *testing.T) {
	cfgPath := project(t)
	site := filepath.Join(filepath.Dir(cfgPath), "site")

	out, _, err := run(t, "--config", cfgPath, "query", "--headlines", site, "$[*]")
	require.NoError(t, err)
	assert.Equal(t, "index.html\nposts\n", out)

	_, _, err = run(t, "--config", cfgPath, "query", site, "$[?(")
	assert.Error(t, err)
}

func TestIndexCommand(t *testing.T) {
	cfgPath := project(t)
	site := filepath.Join(filepath.Dir(cfgPath), "site")
	dbPath := filepath.Join(t.TempDir(), "site.db")

	out, _, err := run(t, "--config", cfgPath, "index", site, dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "3 topic pairs")

	db, err := index.Open(dbPath)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	files, err := db.Files()
	require.NoError(t, err)
	assert.Equal(t, []string{"index.html.md", "posts/hello.md"}, files)

	topics, err := db.Topics("knots")
	require.NoError(t, err)
	assert.Equal(t, []string{"math", "topology"}, topics)
}

func TestShowCommand(t *testing.T) {
	cfgPath := project(t)
	site := filepath.Join(filepath.Dir(cfgPath), "site")
	dbPath := filepath.Join(t.TempDir(), "site.db")

	_, _, err := run(t, "--config", cfgPath, "index", site, dbPath)
	require.NoError(t, err)

	out, _, err := run(t, "--config", cfgPath, "show", dbPath)
	require.NoError(t, err)
	assert.Equal(t, "6 nodes, 2 files\nindex.html.md\nposts/hello.md\n", out)

	out, _, err = run(t, "--config", cfgPath, "show", dbPath, "posts/hello.md")
	require.NoError(t, err)
	assert.Equal(t, "Hello\n  world\n", out)

	out, _, err = run(t, "--config", cfgPath, "show", "--tag", "knots", dbPath)
	require.NoError(t, err)
	assert.Equal(t, "math, topology\n", out)

	_, _, err = run(t, "--config", cfgPath, "show", dbPath, "missing.md")
	assert.ErrorIs(t, err, index.ErrNotFound)
}

func TestDateCommand(t *testing.T) {
	cfgPath := project(t)

	out, _, err := run(t, "--config", cfgPath, "date", "1984", "1984-03")
	require.NoError(t, err)
	assert.Equal(t, "1984-01-01T00:00:00Z\n1984-03-01T00:00:00Z\n", out)

	out, _, err = run(t, "--config", cfgPath, "date")
	require.NoError(t, err)
	assert.Equal(t, api.Epoch+"\n", out)
}

func TestBadConfig(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"sitetree.hcl": "indent_unit = 0\n"})

	_, _, err := run(t, "--config", filepath.Join(dir, "sitetree.hcl"), "read", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "indent_unit")
}
