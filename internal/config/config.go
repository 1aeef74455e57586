package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/dshills/statusicons/internal/config/loader"
	"github.com/dshills/statusicons/internal/config/notify"
	"github.com/dshills/statusicons/internal/logging"
	"github.com/dshills/statusicons/internal/vcs"
)

// EnvPrefix is the prefix for environment overrides.
const EnvPrefix = "STATUSICONS_"

// Change sources reported in notify.Change.Source.
const (
	SourceRuntime = "runtime"
	SourceFile    = "file"
)

// Store provides thread-safe access to the layered settings.
type Store struct {
	mu sync.RWMutex

	fs        loader.FileSystem
	files     []string
	envPrefix string

	defaults  map[string]any
	base      map[string]any // defaults + files + env
	overrides map[string]any // Set at runtime
	settings  Settings

	notifier *notify.Notifier
	log      *zap.Logger
}

// Option configures a Store instance.
type Option func(*Store)

// WithFiles sets the config files, lowest priority first. Missing files
// are skipped.
func WithFiles(paths ...string) Option {
	return func(s *Store) {
		s.files = append(s.files, paths...)
	}
}

// WithFileSystem replaces the OS file system, for tests.
func WithFileSystem(fsys loader.FileSystem) Option {
	return func(s *Store) {
		s.fs = fsys
	}
}

// WithEnvPrefix sets the environment prefix. An empty prefix disables
// environment overrides.
func WithEnvPrefix(prefix string) Option {
	return func(s *Store) {
		s.envPrefix = prefix
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		s.log = logging.OrNop(l)
	}
}

// New creates a Store and loads all layers.
func New(opts ...Option) (*Store, error) {
	s := &Store{
		fs:        loader.DefaultFS(),
		envPrefix: EnvPrefix,
		overrides: make(map[string]any),
		notifier:  notify.New(),
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	defaults, err := toMap(Defaults())
	if err != nil {
		return nil, err
	}
	s.defaults = defaults

	base, settings, err := s.load()
	if err != nil {
		return nil, err
	}
	s.base = base
	s.settings = settings
	return s, nil
}

// DefaultFiles returns the conventional config locations for a browser
// rooted at root: the user config, then the project config.
func DefaultFiles(root string) []string {
	var files []string
	if dir, err := os.UserConfigDir(); err == nil {
		files = append(files,
			filepath.Join(dir, "statusicons", "config.toml"),
			filepath.Join(dir, "statusicons", "config.yaml"))
	}
	if root != "" {
		files = append(files,
			filepath.Join(root, ".statusicons.toml"),
			filepath.Join(root, ".statusicons.yaml"),
			filepath.Join(root, ".statusicons.yml"))
	}
	return files
}

// load reads every layer below the runtime overrides and decodes the
// result together with the current overrides.
func (s *Store) load() (map[string]any, Settings, error) {
	base := loader.Clone(s.defaults)

	for _, path := range s.files {
		l, err := loader.ForPath(s.fs, path)
		if err != nil {
			return nil, Settings{}, err
		}
		m, err := l.Load()
		if err != nil {
			return nil, Settings{}, err
		}
		if m != nil {
			s.log.Debug("loaded config file", zap.String("path", path))
			base = loader.DeepMerge(base, m)
		}
	}

	if s.envPrefix != "" {
		m, err := loader.NewEnvLoader(s.envPrefix).Load()
		if err != nil {
			return nil, Settings{}, err
		}
		base = loader.DeepMerge(base, m)
	}

	settings, err := s.decode(base, s.overrides)
	if err != nil {
		return nil, Settings{}, err
	}
	return base, settings, nil
}

func (s *Store) decode(base, overrides map[string]any) (Settings, error) {
	merged := loader.DeepMerge(loader.Clone(base), loader.Clone(overrides))
	settings, err := fromMap(merged)
	if err != nil {
		return Settings{}, err
	}
	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

// Reload re-reads files and environment. On error the previous settings
// stay in effect.
func (s *Store) Reload() error {
	s.mu.Lock()
	base, settings, err := s.load()
	if err != nil {
		s.mu.Unlock()
		s.log.Warn("config reload failed", zap.Error(err))
		return err
	}
	s.base = base
	s.settings = settings
	s.mu.Unlock()

	s.log.Info("config reloaded")
	s.notifier.NotifyReload(SourceFile)
	return nil
}

// Set changes a setting at runtime. The path must name a known setting.
func (s *Store) Set(path string, value any) error {
	if _, ok := loader.GetPath(s.defaults, path); !ok {
		return fmt.Errorf("%w: %s", ErrSettingNotFound, path)
	}

	s.mu.Lock()
	old, _ := s.getLocked(path)
	overrides := loader.Clone(s.overrides)
	loader.SetPath(overrides, path, value)
	settings, err := s.decode(s.base, overrides)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("set %s: %w", path, err)
	}
	s.overrides = overrides
	s.settings = settings
	s.mu.Unlock()

	s.notifier.NotifySet(path, old, value, SourceRuntime)
	return nil
}

// Toggle flips a boolean setting.
func (s *Store) Toggle(path string) error {
	v, ok := s.Get(path)
	if !ok {
		return fmt.Errorf("%w: %s", ErrSettingNotFound, path)
	}
	b, ok := v.(bool)
	if !ok {
		return fmt.Errorf("%w: %s is %T", ErrTypeMismatch, path, v)
	}
	return s.Set(path, !b)
}

// CycleMode switches a reflection mode setting between local and remote.
func (s *Store) CycleMode(path string) error {
	v, ok := s.Get(path)
	if !ok {
		return fmt.Errorf("%w: %s", ErrSettingNotFound, path)
	}
	str, ok := v.(string)
	if !ok {
		return fmt.Errorf("%w: %s is %T", ErrTypeMismatch, path, v)
	}
	m, err := vcs.ParseMode(str)
	if err != nil {
		return err
	}
	next := vcs.ModeRemote
	if m == vcs.ModeRemote {
		next = vcs.ModeLocal
	}
	return s.Set(path, next.String())
}

// Get returns the effective raw value at path.
func (s *Store) Get(path string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getLocked(path)
}

func (s *Store) getLocked(path string) (any, bool) {
	if v, ok := loader.GetPath(s.overrides, path); ok {
		return v, true
	}
	return loader.GetPath(s.base, path)
}

// Settings returns a copy of the effective settings.
func (s *Store) Settings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.settings
	out.Browser.Ignore = append([]string(nil), s.settings.Browser.Ignore...)
	out.Browser.Archives = append([]string(nil), s.settings.Browser.Archives...)
	return out
}

// Files returns the configured file paths.
func (s *Store) Files() []string {
	return append([]string(nil), s.files...)
}

// Subscribe registers an observer for every change.
func (s *Store) Subscribe(observer notify.Observer) *notify.Subscription {
	return s.notifier.Subscribe(observer)
}

// SubscribePath registers an observer for one setting or section.
func (s *Store) SubscribePath(path string, observer notify.Observer) *notify.Subscription {
	return s.notifier.SubscribePath(path, observer)
}

// Notifier exposes the change notifier.
func (s *Store) Notifier() *notify.Notifier {
	return s.notifier
}

// Close shuts down the notifier.
func (s *Store) Close() {
	s.notifier.Close()
}

// Enabled reports the master overlay switch.
func (s *Store) Enabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.Enabled
}

// ProjectIconsEnabled reports whether the project view draws icons.
func (s *Store) ProjectIconsEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.Overlay.ProjectIcons
}

// HierarchyIconsEnabled reports whether the hierarchy view draws icons.
func (s *Store) HierarchyIconsEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.Overlay.HierarchyIcons
}

// ProjectReflectionMode returns the project view reflection target.
func (s *Store) ProjectReflectionMode() vcs.Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.ProjectMode()
}

// HierarchyReflectionMode returns the hierarchy view reflection target.
func (s *Store) HierarchyReflectionMode() vcs.Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.HierarchyMode()
}

// BaseIconSize returns the configured icon side length in row units.
func (s *Store) BaseIconSize() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.Overlay.IconSize
}
