package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gogotex/blogdraft/internal/kv"
	"github.com/gogotex/blogdraft/internal/post/repository"
	"github.com/gogotex/blogdraft/internal/post/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, c *cli, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd(c)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func newTestCLI() *cli {
	return &cli{svc: service.New(repository.New(kv.NewMemoryStore(), ""))}
}

func TestSaveUpdateShowDelete(t *testing.T) {
	c := newTestCLI()

	out, err := run(t, c, "<p>from stdin</p>", "save", "--title", "First", "--tags", "go, cli", "--content-file", "-")
	require.NoError(t, err)
	fields := strings.Fields(out)
	require.Len(t, fields, 2)
	assert.Equal(t, "draft", fields[0])
	id := fields[1]

	out, err = run(t, c, "", "save", "--id", id, "--publish")
	require.NoError(t, err)
	assert.Equal(t, "published "+id+"\n", out)

	out, err = run(t, c, "", "show", id)
	require.NoError(t, err)
	assert.Contains(t, out, "First")
	assert.Contains(t, out, "status:  published")
	assert.Contains(t, out, "tags:    go, cli")
	assert.Contains(t, out, "<p>from stdin</p>")

	out, err = run(t, c, "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, id)

	_, err = run(t, c, "", "delete", id)
	require.NoError(t, err)
	_, err = run(t, c, "", "show", id)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSaveUnknownIDFails(t *testing.T) {
	_, err := run(t, newTestCLI(), "", "save", "--id", "post_nope", "--title", "x")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestExportToDirectory(t *testing.T) {
	c := newTestCLI()
	dir := t.TempDir()
	content := filepath.Join(dir, "body.html")
	require.NoError(t, os.WriteFile(content, []byte("<p>hello</p>"), 0o644))

	out, err := run(t, c, "", "save", "--title", "Road Trip", "--content-file", content)
	require.NoError(t, err)
	id := strings.Fields(out)[1]

	outDir := filepath.Join(dir, "out")
	for _, f := range []string{"json", "html", "docx", "pdf"} {
		_, err = run(t, c, "", "export", id, "--format", f, "--out", outDir)
		require.NoError(t, err, f)
		_, err = os.Stat(filepath.Join(outDir, "Road_Trip."+f))
		require.NoError(t, err, f)
	}

	_, err = run(t, c, "", "export", id, "--format", "rtf", "--out", outDir)
	require.Error(t, err)
}
