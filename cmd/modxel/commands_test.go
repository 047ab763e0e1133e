package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/modxel/internal/editor"
	"github.com/GriffinCanCode/modxel/tests/helpers/testutil"
)

func TestParseRegion(t *testing.T) {
	tests := []struct {
		in      string
		want    editor.Region
		wantErr bool
	}{
		{"3:9", editor.Region{Start: 3, End: 9}, false},
		{"9:3", editor.Region{Start: 3, End: 9}, false},
		{" 0 : 4 ", editor.Region{Start: 0, End: 4}, false},
		{"3", editor.Region{}, true},
		{"a:4", editor.Region{}, true},
		{"-1:4", editor.Region{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseRegion(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, errUsage)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

type cli struct {
	t      *testing.T
	config string
	dir    string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	dir := t.TempDir()
	config := filepath.Join(dir, "config.toml")
	body := fmt.Sprintf("[store]\nsettings_path = %q\n\n[workspace]\nstate_dir = %q\nscratch_dir = %q\n",
		filepath.Join(dir, "settings.json"), filepath.Join(dir, "state"), filepath.Join(dir, "scratch"))
	require.NoError(t, os.WriteFile(config, []byte(body), 0o600))
	return &cli{t: t, config: config, dir: dir}
}

func (c *cli) run(input string, args ...string) (int, string, string) {
	var out, errOut bytes.Buffer
	code := run(context.Background(), append([]string{"--config", c.config}, args...), stdio{
		in:  strings.NewReader(input),
		out: &out,
		err: &errOut,
	})
	return code, out.String(), errOut.String()
}

func TestUsage(t *testing.T) {
	c := newCLI(t)

	code, out, _ := c.run("")
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, out, "Usage: modxel")

	code, out, _ = c.run("", "help")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "select-class COMMAND [FILE]")
}

func TestUnknownCommandSuggests(t *testing.T) {
	c := newCLI(t)

	code, _, errOut := c.run("", "remove-element")
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, errOut, `did you mean "remove"?`)
}

func TestBadArguments(t *testing.T) {
	c := newCLI(t)

	code, _, errOut := c.run("", "open", "--class", "widget")
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, errOut, "widget")

	code, _, errOut = c.run("", "update")
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, errOut, "Usage: modxel update FILE")

	code, _, _ = c.run("", "open-ref", "x.html")
	assert.Equal(t, exitUsage, code)
}

func TestUnboundUpdateIsReported(t *testing.T) {
	c := newCLI(t)
	file := filepath.Join(c.dir, "page.html")
	require.NoError(t, os.WriteFile(file, []byte("<p/>"), 0o600))

	code, _, errOut := c.run("", "update", file)
	assert.Equal(t, exitFailed, code)
	assert.Contains(t, errOut, "Modx: buffer is not bound to an element.")
}

func TestLoginOpenSave(t *testing.T) {
	server := testutil.NewFakeServer(t)
	server.Handle("security/login", `{"success":true,"object":{"token":"T1"}}`)
	server.Handle("element/getlistbyclass", `{"success":true,"total":1,"results":[{"id":7,"name":"header","snippet":"<header/>"}]}`)
	server.Handle("element/chunk/update", `{"success":true,"object":{"id":7}}`)
	c := newCLI(t)

	code, out, errOut := c.run(server.URL+"\nu\np\n", "login")
	require.Equal(t, exitOK, code, errOut)
	assert.Contains(t, out, "Modx server saved")

	code, _, errOut = c.run("1\n", "open", "--class", "chunk")
	require.Equal(t, exitOK, code, errOut)

	scratch := filepath.Join(c.dir, "scratch", "chunk", "header")
	data, err := os.ReadFile(scratch)
	require.NoError(t, err)
	assert.Equal(t, "<header/>", string(data))

	code, out, _ = c.run("", "status")
	require.Equal(t, exitOK, code)
	assert.Contains(t, out, "modChunk")
	assert.Contains(t, out, scratch)

	code, _, errOut = c.run("", "save", scratch)
	require.Equal(t, exitOK, code, errOut)
	assert.Equal(t, 0, server.Count("element/chunk/update"))

	code, out, errOut = c.run("", "save", scratch)
	require.Equal(t, exitOK, code, errOut)
	assert.Equal(t, 1, server.Count("element/chunk/update"))
	assert.Contains(t, out, "Modx Element updated")

	req, _ := server.Last("element/chunk/update")
	assert.Equal(t, "T1", req.Form.Get("HTTP_MODAUTH"))
	assert.Equal(t, "<header/>", req.Form.Get("snippet"))

	require.NoError(t, os.WriteFile(scratch, []byte("<header>v2</header>"), 0o644))
	code, _, errOut = c.run("", "save", filepath.Join(c.dir, "scratch", "**"))
	require.Equal(t, exitOK, code, errOut)
	assert.Equal(t, 2, server.Count("element/chunk/update"))
	req, _ = server.Last("element/chunk/update")
	assert.Equal(t, "<header>v2</header>", req.Form.Get("snippet"))
}

func TestSaveRemovedScratchFile(t *testing.T) {
	server := testutil.NewFakeServer(t)
	server.Handle("security/login", `{"success":true,"object":{"token":"T1"}}`)
	server.Handle("element/getlistbyclass", `{"success":true,"total":1,"results":[{"id":7,"name":"header","snippet":"<header/>"}]}`)
	server.Handle("element/chunk/update", `{"success":true,"object":{"id":7}}`)
	c := newCLI(t)

	code, _, errOut := c.run(server.URL+"\nu\np\n", "login")
	require.Equal(t, exitOK, code, errOut)
	code, _, errOut = c.run("1\n", "open", "--class", "chunk")
	require.Equal(t, exitOK, code, errOut)

	scratch := filepath.Join(c.dir, "scratch", "chunk", "header")
	code, _, errOut = c.run("", "save", scratch)
	require.Equal(t, exitOK, code, errOut)
	require.NoError(t, os.Remove(scratch))

	code, out, errOut := c.run("", "save", scratch)
	assert.Equal(t, exitFailed, code)
	assert.Contains(t, errOut, "header")
	assert.NotContains(t, out, "Modx Element updated")
	assert.Equal(t, 0, server.Count("element/chunk/update"))
	assert.NoFileExists(t, scratch)
}

func TestCreateChunkRegionRewritesFile(t *testing.T) {
	server := testutil.NewFakeServer(t)
	server.Handle("security/login", `{"success":true,"object":{"token":"T1"}}`)
	server.Handle("element/category/getlist", `{"success":true,"total":0,"results":[]}`)
	server.Handle("element/chunk/create", `{"success":true,"object":{"id":8,"name":"world"}}`)
	c := newCLI(t)

	code, _, errOut := c.run(server.URL+"\nu\np\n", "login")
	require.Equal(t, exitOK, code, errOut)

	file := filepath.Join(c.dir, "page.html")
	require.NoError(t, os.WriteFile(file, []byte("hello world"), 0o644))

	code, out, errOut := c.run("world\n\n1\n", "create", file, "--class", "chunk", "--region", "6:11")
	require.Equal(t, exitOK, code, errOut)
	assert.Contains(t, out, "Modx Element created")
	assert.Equal(t, 1, server.Count("element/chunk/create"))

	req, _ := server.Last("element/chunk/create")
	assert.Equal(t, "world", req.Form.Get("snippet"))

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "hello [[$world]]", string(data))
}

func TestSaveMissingFile(t *testing.T) {
	c := newCLI(t)

	code, _, errOut := c.run("", "save", filepath.Join(c.dir, "nope.html"))
	assert.Equal(t, exitFailed, code)
	assert.Contains(t, errOut, "nope.html")
}
