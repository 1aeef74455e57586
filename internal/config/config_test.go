package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/statusicons/internal/config/notify"
	"github.com/dshills/statusicons/internal/vcs"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDefaults(t *testing.T) {
	s, err := New(WithEnvPrefix(""))
	require.NoError(t, err)
	defer s.Close()

	assert.True(t, s.Enabled())
	assert.True(t, s.ProjectIconsEnabled())
	assert.True(t, s.HierarchyIconsEnabled())
	assert.Equal(t, vcs.ModeLocal, s.ProjectReflectionMode())
	assert.Equal(t, vcs.ModeLocal, s.HierarchyReflectionMode())
	assert.Equal(t, 16.0, s.BaseIconSize())
	assert.NoError(t, Defaults().Validate())
}

func TestFileLayers(t *testing.T) {
	dir := t.TempDir()
	user := filepath.Join(dir, "user.toml")
	project := filepath.Join(dir, "project.yaml")
	writeFile(t, user, `
[overlay]
icon_size = 12
project_reflection = "remote"
`)
	writeFile(t, project, `
overlay:
  icon_size: 10
browser:
  archives: [".zip"]
`)

	s, err := New(WithEnvPrefix(""), WithFiles(user, filepath.Join(dir, "missing.toml"), project))
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, 10.0, s.BaseIconSize())
	assert.Equal(t, vcs.ModeRemote, s.ProjectReflectionMode())
	assert.Equal(t, []string{".zip"}, s.Settings().Browser.Archives)
}

func TestEnvOverridesFiles(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "c.toml")
	writeFile(t, file, "enabled = true\n")
	t.Setenv("SITEST_ENABLED", "false")
	t.Setenv("SITEST_OVERLAY_HIERARCHY_REFLECTION", "remote")

	s, err := New(WithEnvPrefix("SITEST_"), WithFiles(file))
	require.NoError(t, err)
	defer s.Close()

	assert.False(t, s.Enabled())
	assert.Equal(t, vcs.ModeRemote, s.HierarchyReflectionMode())
}

func TestInvalidFileRejected(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "c.toml")
	writeFile(t, file, "[overlay]\nicon_size = -1\n")

	_, err := New(WithEnvPrefix(""), WithFiles(file))
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestSetNotifies(t *testing.T) {
	s, err := New(WithEnvPrefix(""))
	require.NoError(t, err)
	defer s.Close()

	var changes []notify.Change
	s.Subscribe(func(c notify.Change) { changes = append(changes, c) })

	require.NoError(t, s.Set("overlay.project_icons", false))
	assert.False(t, s.ProjectIconsEnabled())

	require.Len(t, changes, 1)
	assert.Equal(t, "overlay.project_icons", changes[0].Path)
	assert.Equal(t, true, changes[0].OldValue)
	assert.Equal(t, false, changes[0].NewValue)
	assert.Equal(t, SourceRuntime, changes[0].Source)
}

func TestSetErrors(t *testing.T) {
	s, err := New(WithEnvPrefix(""))
	require.NoError(t, err)
	defer s.Close()

	assert.ErrorIs(t, s.Set("overlay.nope", true), ErrSettingNotFound)
	assert.ErrorIs(t, s.Set("overlay.icon_size", 0), ErrValidationFailed)
	assert.ErrorIs(t, s.Set("overlay.icon_size", "big"), ErrValidationFailed)
	assert.ErrorIs(t, s.Set("overlay.project_reflection", "cloud"), ErrValidationFailed)

	// Failed sets leave the previous value in place.
	assert.Equal(t, 16.0, s.BaseIconSize())
	assert.Equal(t, vcs.ModeLocal, s.ProjectReflectionMode())
}

func TestToggleAndCycle(t *testing.T) {
	s, err := New(WithEnvPrefix(""))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Toggle("overlay.hierarchy_icons"))
	assert.False(t, s.HierarchyIconsEnabled())
	require.NoError(t, s.Toggle("overlay.hierarchy_icons"))
	assert.True(t, s.HierarchyIconsEnabled())

	require.NoError(t, s.CycleMode("overlay.project_reflection"))
	assert.Equal(t, vcs.ModeRemote, s.ProjectReflectionMode())
	require.NoError(t, s.CycleMode("overlay.project_reflection"))
	assert.Equal(t, vcs.ModeLocal, s.ProjectReflectionMode())

	assert.ErrorIs(t, s.Toggle("overlay.icon_size"), ErrTypeMismatch)
	assert.ErrorIs(t, s.CycleMode("enabled"), ErrTypeMismatch)
}

func TestReloadKeepsRuntimeOverrides(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "c.toml")
	writeFile(t, file, "[overlay]\nicon_size = 12\n")

	s, err := New(WithEnvPrefix(""), WithFiles(file))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Set("overlay.project_icons", false))

	var reloads int
	s.Subscribe(func(c notify.Change) {
		if c.Type == notify.ChangeReload {
			reloads++
		}
	})

	writeFile(t, file, "[overlay]\nicon_size = 8\nproject_icons = true\n")
	require.NoError(t, s.Reload())
	assert.Equal(t, 8.0, s.BaseIconSize())
	assert.False(t, s.ProjectIconsEnabled())
	assert.Equal(t, 1, reloads)

	writeFile(t, file, "[overlay\n")
	require.Error(t, s.Reload())
	assert.Equal(t, 8.0, s.BaseIconSize())
	assert.Equal(t, 1, reloads)
}

func TestDefaultFiles(t *testing.T) {
	files := DefaultFiles("/work")
	assert.Contains(t, files, filepath.Join("/work", ".statusicons.toml"))
	assert.Contains(t, files, filepath.Join("/work", ".statusicons.yaml"))
}
