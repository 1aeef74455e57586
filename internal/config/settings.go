package config

import (
	"fmt"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/dshills/statusicons/internal/vcs"
)

// Settings is the decoded configuration.
type Settings struct {
	// Enabled is the master switch for status overlays.
	Enabled bool `yaml:"enabled"`

	Overlay OverlaySettings `yaml:"overlay"`
	VCS     VCSSettings     `yaml:"vcs"`
	Browser BrowserSettings `yaml:"browser"`
	Logging LoggingSettings `yaml:"logging"`
	Metrics MetricsSettings `yaml:"metrics"`
}

// OverlaySettings controls the icons drawn next to items.
type OverlaySettings struct {
	ProjectIcons        bool    `yaml:"project_icons"`
	HierarchyIcons      bool    `yaml:"hierarchy_icons"`
	ProjectReflection   string  `yaml:"project_reflection"`
	HierarchyReflection string  `yaml:"hierarchy_reflection"`
	IconSize            float64 `yaml:"icon_size"`

	// Coalesce collapses repaint bursts until the UI finishes a frame.
	Coalesce bool `yaml:"coalesce"`
}

// VCSSettings controls status fetching.
type VCSSettings struct {
	FetchRemote bool   `yaml:"fetch_remote"`
	Remote      string `yaml:"remote"`
	Workers     int    `yaml:"workers"`
	QueueSize   int    `yaml:"queue_size"`
	BatchSize   int    `yaml:"batch_size"`
}

// BrowserSettings controls the tree shown by the browser.
type BrowserSettings struct {
	Ignore     []string `yaml:"ignore"`
	Archives   []string `yaml:"archives"`
	ShowHidden bool     `yaml:"show_hidden"`
	Watch      bool     `yaml:"watch"`
}

// LoggingSettings controls the zap logger.
type LoggingSettings struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Path   string `yaml:"path"`
}

// MetricsSettings controls the Prometheus endpoint.
type MetricsSettings struct {
	Addr string `yaml:"addr"`
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		Enabled: true,
		Overlay: OverlaySettings{
			ProjectIcons:        true,
			HierarchyIcons:      true,
			ProjectReflection:   vcs.ModeLocal.String(),
			HierarchyReflection: vcs.ModeLocal.String(),
			IconSize:            16,
		},
		VCS: VCSSettings{
			Remote:    "origin",
			Workers:   vcs.DefaultWorkers,
			QueueSize: vcs.DefaultQueueSize,
			BatchSize: vcs.DefaultBatchSize,
		},
		Browser: BrowserSettings{
			Ignore:   []string{".git", "**/node_modules", "**/.DS_Store"},
			Archives: []string{".zip", ".jar"},
			Watch:    true,
		},
		Logging: LoggingSettings{
			Level:  "info",
			Format: "console",
		},
	}
}

// ProjectMode parses the project view reflection mode.
func (s Settings) ProjectMode() vcs.Mode {
	m, _ := vcs.ParseMode(s.Overlay.ProjectReflection)
	return m
}

// HierarchyMode parses the hierarchy view reflection mode.
func (s Settings) HierarchyMode() vcs.Mode {
	m, _ := vcs.ParseMode(s.Overlay.HierarchyReflection)
	return m
}

// Validate checks value ranges and enum fields.
func (s Settings) Validate() error {
	if s.Overlay.IconSize <= 0 {
		return &ValidationError{Path: "overlay.icon_size", Message: "must be positive", Value: s.Overlay.IconSize}
	}
	if _, err := vcs.ParseMode(s.Overlay.ProjectReflection); err != nil {
		return &ValidationError{Path: "overlay.project_reflection", Message: "must be local or remote", Value: s.Overlay.ProjectReflection}
	}
	if _, err := vcs.ParseMode(s.Overlay.HierarchyReflection); err != nil {
		return &ValidationError{Path: "overlay.hierarchy_reflection", Message: "must be local or remote", Value: s.Overlay.HierarchyReflection}
	}
	if s.VCS.Workers < 1 {
		return &ValidationError{Path: "vcs.workers", Message: "must be at least 1", Value: s.VCS.Workers}
	}
	if s.VCS.QueueSize < 1 {
		return &ValidationError{Path: "vcs.queue_size", Message: "must be at least 1", Value: s.VCS.QueueSize}
	}
	if s.VCS.BatchSize < 1 {
		return &ValidationError{Path: "vcs.batch_size", Message: "must be at least 1", Value: s.VCS.BatchSize}
	}
	if _, err := zapcore.ParseLevel(s.Logging.Level); err != nil {
		return &ValidationError{Path: "logging.level", Message: "unknown level", Value: s.Logging.Level}
	}
	switch s.Logging.Format {
	case "console", "json":
	default:
		return &ValidationError{Path: "logging.format", Message: "must be console or json", Value: s.Logging.Format}
	}
	return nil
}

// toMap converts settings into the nested map form used for layering.
func toMap(s Settings) (map[string]any, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encoding settings: %w", err)
	}
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding settings: %w", err)
	}
	return m, nil
}

// fromMap decodes a merged layer map into Settings.
func fromMap(m map[string]any) (Settings, error) {
	data, err := yaml.Marshal(m)
	if err != nil {
		return Settings{}, fmt.Errorf("encoding settings: %w", err)
	}
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	return s, nil
}
