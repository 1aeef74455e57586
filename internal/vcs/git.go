package vcs

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/go-git/go-git/v5/plumbing/object"
	"go.uber.org/zap"

	"github.com/dshills/statusicons/internal/logging"
)

// GitBackend implements Backend on top of go-git.
type GitBackend struct {
	mu sync.Mutex

	repo   *git.Repository
	wt     *git.Worktree
	prefix string // browser root relative to the worktree root, slash form
	remote string
	fetch  bool
	log    *zap.Logger

	ignore gitignore.Matcher
}

// GitOption configures a GitBackend.
type GitOption func(*GitBackend)

// WithRemoteName sets the remote used when the branch has no configured
// upstream. Defaults to "origin".
func WithRemoteName(name string) GitOption {
	return func(g *GitBackend) {
		if name != "" {
			g.remote = name
		}
	}
}

// WithFetch makes every Remote call fetch from the remote first.
func WithFetch(enabled bool) GitOption {
	return func(g *GitBackend) {
		g.fetch = enabled
	}
}

// WithGitLogger sets the logger.
func WithGitLogger(l *zap.Logger) GitOption {
	return func(g *GitBackend) {
		g.log = logging.OrNop(l)
	}
}

// OpenGitBackend opens the repository containing root.
func OpenGitBackend(root string, opts ...GitOption) (*GitBackend, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}

	repo, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%w: %s", ErrNotRepository, root)
		}
		return nil, fmt.Errorf("open repository: %w", err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("open worktree: %w", err)
	}

	top, err := filepath.EvalSymlinks(wt.Filesystem.Root())
	if err != nil {
		top = wt.Filesystem.Root()
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		abs = real
	}
	rel, err := filepath.Rel(top, abs)
	if err != nil {
		return nil, fmt.Errorf("relate root to worktree: %w", err)
	}
	prefix := filepath.ToSlash(rel)
	if prefix == "." {
		prefix = ""
	}

	g := &GitBackend{
		repo:   repo,
		wt:     wt,
		prefix: prefix,
		remote: git.DefaultRemoteName,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}

	patterns, err := gitignore.ReadPatterns(wt.Filesystem, nil)
	if err != nil {
		g.log.Debug("reading ignore patterns", zap.Error(err))
	}
	g.ignore = gitignore.NewMatcher(patterns)

	return g, nil
}

// repoPath translates an asset path into a worktree path.
func (g *GitBackend) repoPath(asset string) string {
	asset = strings.Trim(asset, "/")
	if g.prefix == "" {
		return asset
	}
	if asset == "" {
		return g.prefix
	}
	return path.Join(g.prefix, asset)
}

// Local implements Backend.
func (g *GitBackend) Local(ctx context.Context, paths []string) (map[string]LocalState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	st, err := g.wt.Status()
	if err != nil {
		return nil, fmt.Errorf("worktree status: %w", err)
	}

	out := make(map[string]LocalState, len(paths))
	for _, p := range paths {
		out[p] = g.localState(st, g.repoPath(p))
	}
	return out, nil
}

func (g *GitBackend) localState(st git.Status, rp string) LocalState {
	if fs, ok := st[rp]; ok {
		return classify(fs)
	}

	// Directories take the heaviest state among their contents.
	var agg LocalState
	dir := rp + "/"
	for name, fs := range st {
		if rp != "" && !strings.HasPrefix(name, dir) {
			continue
		}
		ls := classify(fs)
		if ls.Kind.weight() > agg.Kind.weight() {
			agg.Kind = ls.Kind
		}
		agg.Staged = agg.Staged || ls.Staged
	}
	if agg.Kind != KindUnknown {
		return agg
	}

	if rp != "" && g.ignore != nil && g.ignore.Match(strings.Split(rp, "/"), false) {
		return LocalState{Kind: KindIgnored}
	}
	return LocalState{Kind: KindNormal}
}

func classify(fs *git.FileStatus) LocalState {
	staged := fs.Staging != git.Unmodified && fs.Staging != git.Untracked

	switch {
	case fs.Staging == git.Untracked || fs.Worktree == git.Untracked:
		return LocalState{Kind: KindUnversioned}
	case fs.Staging == git.UpdatedButUnmerged || fs.Worktree == git.UpdatedButUnmerged:
		return LocalState{Kind: KindConflicted, Staged: staged}
	case fs.Staging == git.Deleted || fs.Worktree == git.Deleted:
		return LocalState{Kind: KindDeleted, Staged: staged}
	case fs.Staging == git.Renamed:
		return LocalState{Kind: KindRenamed, Staged: staged}
	case fs.Staging == git.Added:
		return LocalState{Kind: KindAdded, Staged: staged}
	case fs.Staging == git.Modified || fs.Worktree == git.Modified,
		fs.Staging == git.Copied:
		return LocalState{Kind: KindModified, Staged: staged}
	default:
		return LocalState{Kind: KindNormal, Staged: staged}
	}
}

// Remote implements Backend. Without an upstream every path reports
// false.
func (g *GitBackend) Remote(ctx context.Context, paths []string) (map[string]bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make(map[string]bool, len(paths))
	for _, p := range paths {
		out[p] = false
	}

	if g.fetch {
		err := g.repo.FetchContext(ctx, &git.FetchOptions{RemoteName: g.remote})
		if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
			return nil, fmt.Errorf("fetch %s: %w", g.remote, err)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	head, err := g.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			// Unborn branch.
			return out, nil
		}
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}

	upstream, err := g.upstream(head)
	if err != nil {
		if errors.Is(err, ErrNoUpstream) {
			g.log.Debug("no upstream", zap.String("branch", head.Name().Short()))
			return out, nil
		}
		return nil, err
	}
	if upstream.Hash() == head.Hash() {
		return out, nil
	}

	local, err := commitTree(g.repo, head.Hash())
	if err != nil {
		return nil, err
	}
	remote, err := commitTree(g.repo, upstream.Hash())
	if err != nil {
		return nil, err
	}

	for _, p := range paths {
		rp := g.repoPath(p)
		out[p] = entryHash(local, rp) != entryHash(remote, rp)
	}
	return out, nil
}

// upstream finds the remote tracking ref for the checked-out branch.
func (g *GitBackend) upstream(head *plumbing.Reference) (*plumbing.Reference, error) {
	if !head.Name().IsBranch() {
		return nil, ErrNoUpstream
	}

	remote := g.remote
	branch := head.Name().Short()
	if cfg, err := g.repo.Config(); err == nil {
		if b, ok := cfg.Branches[branch]; ok && b.Remote != "" && b.Merge != "" {
			remote = b.Remote
			branch = b.Merge.Short()
		}
	}

	ref, err := g.repo.Reference(plumbing.NewRemoteReferenceName(remote, branch), true)
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, ErrNoUpstream
		}
		return nil, fmt.Errorf("resolve upstream: %w", err)
	}
	return ref, nil
}

func commitTree(repo *git.Repository, h plumbing.Hash) (*object.Tree, error) {
	c, err := repo.CommitObject(h)
	if err != nil {
		return nil, fmt.Errorf("getting commit %s: %w", h, err)
	}
	t, err := c.Tree()
	if err != nil {
		return nil, fmt.Errorf("getting tree: %w", err)
	}
	return t, nil
}

func entryHash(t *object.Tree, rp string) plumbing.Hash {
	if rp == "" {
		return t.Hash
	}
	e, err := t.FindEntry(rp)
	if err != nil {
		return plumbing.ZeroHash
	}
	return e.Hash
}
