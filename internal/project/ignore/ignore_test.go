package ignore

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatch(t *testing.T) {
	p, err := New(
		"# comment",
		"",
		"*.log",
		"/build/",
		"**/node_modules",
		"!keep.log",
		".git",
	)
	require.NoError(t, err)
	assert.Equal(t, 5, p.Len())

	tests := []struct {
		path  string
		isDir bool
		want  bool
	}{
		{"debug.log", false, true},
		{"src/debug.log", false, true},
		{"keep.log", false, false},
		{"build", true, true},
		{"build", false, false},
		{"build/out.bin", false, true},
		{"src/build", true, false},
		{"web/node_modules", true, true},
		{"web/node_modules/x/index.js", false, true},
		{".git", true, true},
		{".git/HEAD", false, true},
		{"src/main.go", false, false},
		{"", true, false},
		{"./debug.log", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Match(tt.path, tt.isDir))
		})
	}
}

func TestLoad(t *testing.T) {
	p, err := New()
	require.NoError(t, err)
	require.NoError(t, p.Load(strings.NewReader("*.tmp\n\n# x\n")))
	assert.True(t, p.Match("a/b.tmp", false))
}

func TestBadPattern(t *testing.T) {
	_, err := New("[")
	assert.ErrorIs(t, err, ErrBadPattern)
}

func TestNilMatcher(t *testing.T) {
	var p *Patterns
	assert.False(t, p.Match("anything", false))
}

func TestLoadFileMissing(t *testing.T) {
	p, err := New()
	require.NoError(t, err)
	assert.NoError(t, p.LoadFile("/nonexistent/.gitignore"))
}
