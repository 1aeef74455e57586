// Package ignore matches workspace paths against gitignore-style globs.
// Both the browser tree and the file watcher use it so they agree on what
// is invisible.
package ignore

import (
	"bufio"
	"errors"
	"io"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrBadPattern indicates a glob doublestar cannot compile.
var ErrBadPattern = errors.New("bad ignore pattern")

type pattern struct {
	glob     string
	negation bool
	dirOnly  bool
}

// Patterns is an ordered list of ignore rules. Later rules win, so a
// negated rule can re-include a path excluded earlier.
//
// Supported forms:
//   - *.log             file name anywhere
//   - /build/           build directory at the root
//   - **/node_modules   node_modules at any depth
//   - !keep.log         re-include
type Patterns struct {
	mu       sync.RWMutex
	patterns []pattern
}

// New creates a matcher from the given patterns.
func New(lines ...string) (*Patterns, error) {
	p := &Patterns{}
	for _, l := range lines {
		if err := p.Add(l); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Add compiles one pattern line. Blank lines and comments are skipped.
func (p *Patterns) Add(line string) error {
	line = strings.TrimRight(line, " \t")
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	var pat pattern
	if strings.HasPrefix(line, "!") {
		pat.negation = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		pat.dirOnly = true
		line = strings.TrimSuffix(line, "/")
	}

	rooted := strings.HasPrefix(line, "/")
	line = strings.TrimPrefix(line, "/")
	if !rooted && !strings.Contains(line, "/") {
		line = "**/" + line
	}
	if !doublestar.ValidatePattern(line) {
		return errors.Join(ErrBadPattern, errors.New(line))
	}
	pat.glob = line

	p.mu.Lock()
	p.patterns = append(p.patterns, pat)
	p.mu.Unlock()
	return nil
}

// Load reads patterns from r, one per line.
func (p *Patterns) Load(r io.Reader) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if err := p.Add(sc.Text()); err != nil {
			return err
		}
	}
	return sc.Err()
}

// LoadFile reads patterns from a file. A missing file is not an error.
func (p *Patterns) LoadFile(name string) error {
	f, err := os.Open(name)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()
	return p.Load(f)
}

// Len returns the number of compiled rules.
func (p *Patterns) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.patterns)
}

// Match reports whether the slash separated, root-relative path is
// ignored. A path inside an ignored directory is ignored too.
func (p *Patterns) Match(name string, isDir bool) bool {
	if p == nil {
		return false
	}
	name = strings.TrimPrefix(path.Clean("/"+name), "/")
	if name == "" {
		return false
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	ignored := false
	for _, pat := range p.patterns {
		if pat.matches(name, isDir) {
			ignored = !pat.negation
		}
	}
	return ignored
}

func (pat pattern) matches(name string, isDir bool) bool {
	if !pat.dirOnly || isDir {
		if ok, _ := doublestar.Match(pat.glob, name); ok {
			return true
		}
	}
	// Anything below a matching directory.
	for i := strings.IndexByte(name, '/'); i >= 0; {
		if ok, _ := doublestar.Match(pat.glob, name[:i]); ok {
			return true
		}
		next := strings.IndexByte(name[i+1:], '/')
		if next < 0 {
			break
		}
		i += next + 1
	}
	return false
}
