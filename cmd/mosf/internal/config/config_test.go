package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeProject(t *testing.T, modulePath, yaml string) string {
	t.Helper()
	dir := t.TempDir()
	gomod := "module " + modulePath + "\n\ngo 1.24.0\n"
	if err := os.WriteFile(filepath.Join(dir, "go.mod"), []byte(gomod), 0o644); err != nil {
		t.Fatal(err)
	}
	if yaml != "" {
		if err := os.WriteFile(filepath.Join(dir, "mosf.yaml"), []byte(yaml), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestResolveDefaultsFromModulePath(t *testing.T) {
	dir := writeProject(t, "github.com/example/player", "")

	r, err := Resolve(dir)
	if err != nil {
		t.Fatal(err)
	}
	if r.ModulePath != "github.com/example/player" {
		t.Errorf("module path = %q", r.ModulePath)
	}
	if r.AppName != "player" {
		t.Errorf("app name = %q, want player", r.AppName)
	}
	if r.AppID != "com.github.example.player" {
		t.Errorf("app id = %q", r.AppID)
	}
	if r.Backend != "" {
		t.Errorf("backend = %q, want empty for priority resolution", r.Backend)
	}
}

func TestResolveReadsYaml(t *testing.T) {
	dir := writeProject(t, "example.com/x", `
app:
  name: Player
  id: com.example.player
backend:
  name: KIVY
`)

	r, err := Resolve(dir)
	if err != nil {
		t.Fatal(err)
	}
	if r.AppName != "Player" {
		t.Errorf("app name = %q", r.AppName)
	}
	if r.AppID != "com.example.player" {
		t.Errorf("app id = %q", r.AppID)
	}
	if r.Backend != "kivy" {
		t.Errorf("backend = %q, want kivy (lowercased)", r.Backend)
	}
}

func TestResolveRejectsUnknownBackend(t *testing.T) {
	dir := writeProject(t, "example.com/x", "backend:\n  name: qt\n")
	if _, err := Resolve(dir); err == nil {
		t.Error("expected an error for an unknown backend")
	}
}

func TestResolveRejectsBadAppID(t *testing.T) {
	dir := writeProject(t, "example.com/x", "app:\n  id: nodots\n")
	if _, err := Resolve(dir); err == nil {
		t.Error("expected an error for an app id without dots")
	}
}

func TestResolveMissingGoMod(t *testing.T) {
	if _, err := Resolve(t.TempDir()); err == nil {
		t.Error("expected an error without go.mod")
	}
}

func TestValidateAppID(t *testing.T) {
	tests := []struct {
		id      string
		wantErr bool
	}{
		{"com.example.app", false},
		{"com.example.my_app", false},
		{"nodots", true},
		{"com..app", true},
		{"com.2fast.app", true},
		{"com._x.app", true},
		{"com.UPPER.app", true},
	}
	for _, tt := range tests {
		if err := validateAppID(tt.id); (err != nil) != tt.wantErr {
			t.Errorf("validateAppID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
		}
	}
}
