package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-mosf/mosf/pkg/errors"
)

func TestParseRequiresFrameworkTable(t *testing.T) {
	_, err := Parse(`[window]` + "\n" + `title = "demo"`)
	if !errors.Is(err, errors.KindConfig) {
		t.Fatalf("error kind = %v, want KindConfig", errors.KindOf(err))
	}
}

func TestParseRequiresFrameworkName(t *testing.T) {
	_, err := Parse("[framework]\nversion = 2\n")
	if !errors.Is(err, errors.KindConfig) {
		t.Fatalf("error kind = %v, want KindConfig", errors.KindOf(err))
	}
}

func TestParseNormalizesFrameworkName(t *testing.T) {
	c, err := Parse("[framework]\nname = \"TOGA\"\n")
	if err != nil {
		t.Fatal(err)
	}
	if c.Framework() != FrameworkToga {
		t.Errorf("framework = %q, want %q", c.Framework(), FrameworkToga)
	}
}

func TestLookupDottedPaths(t *testing.T) {
	c, err := Parse(`
[framework]
name = "kivy"

[window]
title = "player"
fullscreen = true
width = 640
`)
	if err != nil {
		t.Fatal(err)
	}
	if got := c.String("window.title", ""); got != "player" {
		t.Errorf("window.title = %q", got)
	}
	if !c.Bool("window.fullscreen", false) {
		t.Error("window.fullscreen = false")
	}
	if got := c.Int("window.width", 0); got != 640 {
		t.Errorf("window.width = %d", got)
	}
	if got := c.String("window.missing", "fallback"); got != "fallback" {
		t.Errorf("missing key = %q, want fallback", got)
	}
	if _, ok := c.Lookup("window.title.deeper"); ok {
		t.Error("lookup through a leaf should fail")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[framework]\nname = \"toga\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.Framework() != FrameworkToga {
		t.Errorf("framework = %q", c.Framework())
	}
}

func TestLoadSettingsCreatesDefaults(t *testing.T) {
	dir := t.TempDir()
	defaults := map[string]any{"volume": 0.5, "last_playlist": ""}

	s, err := LoadSettings(dir, "settings.json", defaults)
	if err != nil {
		t.Fatal(err)
	}
	if s.Dirty() {
		t.Error("fresh defaults should not be dirty")
	}
	if _, err := os.Stat(s.Path()); err != nil {
		t.Errorf("defaults were not persisted: %v", err)
	}

	// A second load sees the persisted values, not the defaults.
	s2, err := LoadSettings(dir, "settings.json", nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := s2.String("last_playlist", "unset"); got != "" {
		t.Errorf("last_playlist = %q, want empty from file", got)
	}
}

func TestLoadSettingsMergesNewDefaults(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadSettings(dir, "settings.json", map[string]any{"a": "1"}); err != nil {
		t.Fatal(err)
	}

	s, err := LoadSettings(dir, "settings.json", map[string]any{"a": "ignored", "b": "2"})
	if err != nil {
		t.Fatal(err)
	}
	if got := s.String("a", ""); got != "1" {
		t.Errorf("existing key overwritten: a = %q", got)
	}
	if got := s.String("b", ""); got != "2" {
		t.Errorf("new default not merged: b = %q", got)
	}
	if !s.Dirty() {
		t.Error("merged defaults should mark the settings dirty")
	}
}

func TestSettingsOnExitSavesOnlyWhenDirty(t *testing.T) {
	dir := t.TempDir()
	s, err := LoadSettings(dir, "settings.json", map[string]any{"volume": 0.5})
	if err != nil {
		t.Fatal(err)
	}

	s.Set("volume", 0.9)
	if !s.Dirty() {
		t.Fatal("Set should mark dirty")
	}
	s.OnExit()
	if s.Dirty() {
		t.Error("OnExit should clear the dirty flag after saving")
	}

	s2, err := LoadSettings(dir, "settings.json", nil)
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := s2.Get("volume"); v != 0.9 {
		t.Errorf("volume = %v, want 0.9", v)
	}
}

func TestSettingsDelete(t *testing.T) {
	dir := t.TempDir()
	s, err := LoadSettings(dir, "settings.json", map[string]any{"stale": true})
	if err != nil {
		t.Fatal(err)
	}
	s.Delete("stale")
	if _, ok := s.Get("stale"); ok {
		t.Error("deleted key still present")
	}
	if !s.Dirty() {
		t.Error("delete of an existing key should mark dirty")
	}
}

func TestHooksRunCommonThenPlatform(t *testing.T) {
	var order []string
	h := Hooks{
		Common: func() error { order = append(order, "common"); return nil },
		Linux:  func() error { order = append(order, "linux"); return nil },
	}
	if err := h.applyFor("linux"); err != nil {
		t.Fatal(err)
	}
	if len(order) != 2 || order[0] != "common" || order[1] != "linux" {
		t.Errorf("order = %v", order)
	}
}

func TestHooksNilPlatformCallbackIsNoOp(t *testing.T) {
	h := Hooks{Common: func() error { return nil }}
	if err := h.applyFor("darwin"); err != nil {
		t.Errorf("nil darwin hook should be a no-op, got %v", err)
	}
}

func TestHooksUnknownPlatformNeedsFallback(t *testing.T) {
	err := Hooks{}.applyFor("plan9")
	if !errors.Is(err, errors.KindConfig) {
		t.Errorf("error kind = %v, want KindConfig", errors.KindOf(err))
	}

	ran := false
	h := Hooks{Others: func() error { ran = true; return nil }}
	if err := h.applyFor("plan9"); err != nil || !ran {
		t.Errorf("fallback hook not run: err=%v ran=%v", err, ran)
	}
}
