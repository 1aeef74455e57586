package tree

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/klauspost/compress/zip"
	"go.uber.org/zap"

	"github.com/dshills/statusicons/internal/project/ignore"
)

// DefaultArchives are the extensions treated as containers.
var DefaultArchives = []string{".zip", ".jar"}

// Tree is a lazily loaded view of a directory. It is not safe for
// concurrent use.
type Tree struct {
	fs         billy.Filesystem
	root       *Node
	ignore     *ignore.Patterns
	archives   map[string]bool
	members    bool
	showHidden bool
	showRoot   bool
	log        *zap.Logger
}

// Option configures a Tree.
type Option func(*Tree)

// WithIgnore filters entries matching p.
func WithIgnore(p *ignore.Patterns) Option {
	return func(t *Tree) { t.ignore = p }
}

// WithArchives replaces the archive extensions.
func WithArchives(exts ...string) Option {
	return func(t *Tree) {
		t.archives = make(map[string]bool, len(exts))
		for _, e := range exts {
			if e == "" {
				continue
			}
			if !strings.HasPrefix(e, ".") {
				e = "." + e
			}
			t.archives[strings.ToLower(e)] = true
		}
	}
}

// WithArchiveMembers makes archives expandable into their entries.
func WithArchiveMembers() Option {
	return func(t *Tree) { t.members = true }
}

// WithHidden includes dot files.
func WithHidden(show bool) Option {
	return func(t *Tree) { t.showHidden = show }
}

// WithRootRow includes the root itself as the first visible row.
func WithRootRow() Option {
	return func(t *Tree) { t.showRoot = true }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(t *Tree) {
		if l != nil {
			t.log = l
		}
	}
}

// New creates a tree rooted at dir ("" for the filesystem root) and loads
// its first level.
func New(fs billy.Filesystem, dir string, opts ...Option) (*Tree, error) {
	dir = cleanPath(dir)
	t := &Tree{fs: fs, log: zap.NewNop()}
	WithArchives(DefaultArchives...)(t)
	for _, opt := range opts {
		opt(t)
	}

	fi, err := fs.Stat(fsPath(dir))
	if err != nil {
		return nil, fmt.Errorf("tree root %q: %w", dir, err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("tree root %q: %w", dir, ErrNotDirectory)
	}

	name := path.Base(dir)
	if dir == "" {
		name = "."
	}
	t.root = &Node{name: name, path: dir, dir: true, expanded: true}
	if err := t.load(t.root); err != nil {
		return nil, err
	}
	return t, nil
}

// Root returns the root node.
func (t *Tree) Root() *Node { return t.root }

// Expand loads n's children if needed and shows them.
func (t *Tree) Expand(n *Node) error {
	if !n.dir {
		return ErrNotDirectory
	}
	if !n.loaded {
		if err := t.load(n); err != nil {
			return err
		}
	}
	n.expanded = true
	return nil
}

// Collapse hides n's children. The root stays expanded.
func (t *Tree) Collapse(n *Node) {
	if n == t.root {
		return
	}
	n.expanded = false
}

// Toggle expands a collapsed node or collapses an expanded one.
func (t *Tree) Toggle(n *Node) error {
	if n.expanded {
		t.Collapse(n)
		return nil
	}
	return t.Expand(n)
}

// Visible returns the rows to display: every child of an expanded node,
// depth first.
func (t *Tree) Visible() []*Node {
	var rows []*Node
	if t.showRoot {
		rows = append(rows, t.root)
	}
	var walk func(n *Node)
	walk = func(n *Node) {
		if !n.expanded {
			return
		}
		for _, c := range n.children {
			rows = append(rows, c)
			walk(c)
		}
	}
	walk(t.root)
	return rows
}

// Find returns the loaded node at p.
func (t *Tree) Find(p string) (*Node, error) {
	p = cleanPath(p)
	rel, ok := relTo(t.root.path, p)
	if !ok {
		return nil, ErrNotFound
	}
	n := t.root
	if rel == "" {
		return n, nil
	}
	for _, part := range strings.Split(rel, "/") {
		if n = n.child(part); n == nil {
			return nil, ErrNotFound
		}
	}
	return n, nil
}

// Walk calls fn for every loaded node below the root, depth first.
func (t *Tree) Walk(fn func(n *Node)) {
	var walk func(n *Node)
	walk = func(n *Node) {
		for _, c := range n.children {
			fn(c)
			walk(c)
		}
	}
	walk(t.root)
}

// Refresh rereads every loaded directory containing one of paths. With no
// paths the whole loaded tree is reread. Expansion state survives for
// entries that still exist.
func (t *Tree) Refresh(paths ...string) error {
	if len(paths) == 0 {
		return t.reload(t.root)
	}
	seen := make(map[*Node]bool)
	var errs []error
	for _, p := range paths {
		n := t.nearestLoaded(cleanPath(p))
		if n == nil || seen[n] {
			continue
		}
		seen[n] = true
		if err := t.reload(n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// nearestLoaded returns the deepest loaded directory that holds p.
func (t *Tree) nearestLoaded(p string) *Node {
	rel, ok := relTo(t.root.path, p)
	if !ok {
		return nil
	}
	n := t.root
	if rel == "" {
		return n
	}
	parts := strings.Split(rel, "/")
	for _, part := range parts[:len(parts)-1] {
		c := n.child(part)
		if c == nil || !c.loaded || c.owner != nil {
			break
		}
		n = c
	}
	return n
}

func (t *Tree) reload(n *Node) error {
	if !n.loaded {
		return nil
	}
	old := make(map[string]*Node, len(n.children))
	for _, c := range n.children {
		old[c.name] = c
	}
	if err := t.load(n); err != nil {
		return err
	}
	for _, c := range n.children {
		prev, ok := old[c.name]
		if !ok || !prev.loaded || prev.dir != c.dir {
			continue
		}
		if prev.archive {
			// Archive contents may have changed; reread on next expand.
			c.expanded = false
			continue
		}
		c.children, c.loaded, c.expanded = prev.children, true, prev.expanded
		for _, gc := range c.children {
			gc.parent = c
		}
		if err := t.reload(c); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tree) load(n *Node) error {
	var (
		children []*Node
		err      error
	)
	if n.archive {
		children, err = t.readArchive(n)
	} else {
		children, err = t.readDir(n)
	}
	if err != nil {
		return err
	}
	n.children = children
	n.loaded = true
	return nil
}

func (t *Tree) readDir(n *Node) ([]*Node, error) {
	infos, err := t.fs.ReadDir(fsPath(n.path))
	if err != nil {
		return nil, fmt.Errorf("read dir %q: %w", n.path, err)
	}

	children := make([]*Node, 0, len(infos))
	for _, fi := range infos {
		name := fi.Name()
		if !t.showHidden && strings.HasPrefix(name, ".") {
			continue
		}
		p := path.Join(n.path, name)
		if t.ignore.Match(p, fi.IsDir()) {
			continue
		}
		c := &Node{name: name, path: p, dir: fi.IsDir(), depth: n.depth + 1, parent: n}
		if fi.Mode().IsRegular() && t.isArchive(name) {
			c.archive = true
			c.dir = t.members
		}
		children = append(children, c)
	}
	sortNodes(children)
	return children, nil
}

// readArchive lists an archive's entries as member nodes, synthesizing
// directories that only appear as entry prefixes.
func (t *Tree) readArchive(n *Node) ([]*Node, error) {
	f, err := t.fs.Open(fsPath(n.path))
	if err != nil {
		return nil, fmt.Errorf("open archive %q: %w", n.path, err)
	}
	defer f.Close()

	fi, err := t.fs.Stat(fsPath(n.path))
	if err != nil {
		return nil, fmt.Errorf("stat archive %q: %w", n.path, err)
	}
	zr, err := zip.NewReader(f, fi.Size())
	if err != nil {
		t.log.Warn("unreadable archive", zap.String("path", n.path), zap.Error(err))
		return nil, fmt.Errorf("%w %q: %v", ErrBadArchive, n.path, err)
	}

	top := &Node{}
	for _, zf := range zr.File {
		name := strings.Trim(path.Clean("/"+zf.Name), "/")
		if name == "" {
			continue
		}
		parts := strings.Split(name, "/")
		cur := top
		for i, part := range parts {
			last := i == len(parts)-1
			c := cur.child(part)
			if c == nil {
				parentPath := n.path
				if cur != top {
					parentPath = cur.path
				}
				c = &Node{
					name:   part,
					path:   path.Join(parentPath, part),
					dir:    !last || zf.FileInfo().IsDir(),
					owner:  n,
					loaded: true,
				}
				cur.children = append(cur.children, c)
			}
			cur = c
		}
	}
	adopt(n, top.children)
	return top.children, nil
}

// adopt links members to their parent and fixes depths recursively.
func adopt(parent *Node, children []*Node) {
	sortNodes(children)
	for _, c := range children {
		c.parent = parent
		c.depth = parent.depth + 1
		adopt(c, c.children)
	}
}

func (t *Tree) isArchive(name string) bool {
	return t.archives[strings.ToLower(path.Ext(name))]
}

// sortNodes orders directories first, then by name.
func sortNodes(nodes []*Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].dir != nodes[j].dir {
			return nodes[i].dir
		}
		return nodes[i].name < nodes[j].name
	})
}

func cleanPath(p string) string {
	return strings.Trim(path.Clean("/"+strings.ReplaceAll(p, "\\", "/")), "/")
}

func fsPath(p string) string {
	if p == "" {
		return "/"
	}
	return p
}

// relTo returns p relative to base when p is base or below it.
func relTo(base, p string) (string, bool) {
	switch {
	case base == "":
		return p, true
	case p == base:
		return "", true
	case strings.HasPrefix(p, base+"/"):
		return p[len(base)+1:], true
	default:
		return "", false
	}
}
