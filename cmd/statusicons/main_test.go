package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/statusicons/internal/app"
	"github.com/dshills/statusicons/internal/vcs"
)

func TestRootCommands(t *testing.T) {
	root := newRootCmd()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "browse")
	assert.Contains(t, names, "status")

	for _, name := range []string{"config", "log-level", "metrics-addr"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(name), name)
	}
}

func TestInvalidLogLevel(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"status", "--log-level", "loud"})
	root.SetOut(&bytes.Buffer{})
	assert.ErrorContains(t, root.Execute(), "invalid log level")
}

func TestPrintLines(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printLines(&buf, []app.Line{
		{Path: "a.txt", Glyph: '◆', Status: vcs.Status{AssetPath: "a.txt", ReflectionLevel: vcs.LevelRepository, Kind: vcs.KindModified, OutOfDate: true}},
		{Path: "b.txt", Glyph: ' ', Status: vcs.Status{AssetPath: "b.txt", ReflectionLevel: vcs.LevelPending}},
	}))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	assert.Contains(t, string(lines[0]), "modified+outdated")
	assert.Contains(t, string(lines[0]), "a.txt")
	assert.Contains(t, string(lines[1]), "-")
}

func TestRootArg(t *testing.T) {
	assert.Equal(t, ".", rootArg(nil))
	assert.Equal(t, "dir", rootArg([]string{"dir"}))
}
