// Package config provides the settings store for statusicons.
//
// Settings come from three layers, higher overriding lower:
//
//  1. built-in defaults
//  2. config files (TOML or YAML, picked by extension), in order
//  3. STATUSICONS_* environment variables
//
// Runtime changes made with Store.Set sit on top of all three and survive
// Reload. Every change is announced through a notify.Notifier so the
// overlay refresh broker can repaint.
//
// Basic usage:
//
//	store, err := config.New(config.WithFiles(config.DefaultFiles(root)...))
//	if err != nil {
//		return err
//	}
//	defer store.Close()
//
//	if store.ProjectIconsEnabled() {
//		// ...
//	}
package config
