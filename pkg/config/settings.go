package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-mosf/mosf/pkg/errors"
)

// Settings is the writable counterpart of Config: a JSON document in
// the user's data directory. Mutations mark it dirty; OnExit persists
// it only when something actually changed.
type Settings struct {
	mu     sync.Mutex
	path   string
	dirty  bool
	values map[string]any
}

// DataDir returns the per-user data directory for an application,
// creating it if needed.
func DataDir(appName string) (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap("config.DataDir", errors.KindConfig, err)
	}
	dir := filepath.Join(base, appName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap("config.DataDir", errors.KindConfig, err)
	}
	return dir, nil
}

// LoadSettings loads the settings file from dir, creating it from
// defaults when absent. Top-level keys present in defaults but missing
// from an existing file are merged in, so upgrades that introduce new
// entries do not strand old installations.
func LoadSettings(dir, file string, defaults map[string]any) (*Settings, error) {
	path := filepath.Join(dir, file)
	s := &Settings{path: path, values: make(map[string]any)}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &s.values); err != nil {
			return nil, errors.Wrap("config.LoadSettings", errors.KindConfig, err)
		}
		for k, v := range defaults {
			if _, ok := s.values[k]; !ok {
				s.values[k] = v
				s.dirty = true
			}
		}
	case os.IsNotExist(err):
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap("config.LoadSettings", errors.KindConfig, err)
		}
		for k, v := range defaults {
			s.values[k] = v
		}
		if err := s.write(); err != nil {
			return nil, err
		}
	default:
		return nil, errors.Wrap("config.LoadSettings", errors.KindConfig, err)
	}
	return s, nil
}

// Path returns the file the settings were loaded from.
func (s *Settings) Path() string { return s.path }

// Get returns the value stored under key.
func (s *Settings) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

// String returns the string stored under key, or def.
func (s *Settings) String(key, def string) string {
	if v, ok := s.Get(key); ok {
		if str, ok := v.(string); ok {
			return str
		}
	}
	return def
}

// Set stores a value and marks the settings dirty.
func (s *Settings) Set(key string, v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = v
	s.dirty = true
}

// Delete removes a key and marks the settings dirty if it existed.
func (s *Settings) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[key]; ok {
		delete(s.values, key)
		s.dirty = true
	}
}

// Dirty reports whether there are unsaved changes.
func (s *Settings) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Save writes the settings to disk unconditionally.
func (s *Settings) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write()
}

// OnExit saves the settings if dirty. Wire it into Options.OnStop so
// teardown persists user state.
func (s *Settings) OnExit() {
	s.mu.Lock()
	dirty := s.dirty
	s.mu.Unlock()
	if !dirty {
		return
	}
	if err := s.Save(); err != nil {
		errors.Report(errors.Wrap("config.Settings.OnExit", errors.KindConfig, err))
	}
}

// write assumes s.mu is held.
func (s *Settings) write() error {
	data, err := json.MarshalIndent(s.values, "", "    ")
	if err != nil {
		return errors.Wrap("config.Settings.Save", errors.KindConfig, err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return errors.Wrap("config.Settings.Save", errors.KindConfig, err)
	}
	s.dirty = false
	return nil
}
