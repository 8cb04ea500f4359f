package cmd

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestValidateDirectory(t *testing.T) {
	type tc struct {
		name    string
		dir     string
		wantErr bool
	}
	tests := []tc{
		{"simple name", "myapp", false},
		{"relative path", "projects/myapp", false},
		{"deep relative", "a/b/c/myapp", false},

		{"empty", "", true},
		{"root slash", "/", true},
		{"dot", ".", true},
		{"dotdot", "..", true},
	}

	if runtime.GOOS == "windows" {
		tests = append(tests,
			tc{"drive root", `C:\`, true},
			tc{"root-level C:\\Users", `C:\Users`, true},
		)
	} else {
		tests = append(tests,
			tc{"absolute nested", "/home/user/projects/myapp", false},
			tc{"root-level /etc", "/etc", true},
			tc{"root-level /tmp", "/tmp", true},
		)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateDirectory(tt.dir)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateDirectory(%q) error = %v, wantErr %v", tt.dir, err, tt.wantErr)
			}
		})
	}
}

func TestValidateProjectName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "myapp", false},
		{"with digits", "app2", false},
		{"with underscore", "my_app", false},
		{"with hyphen", "my-app", false},
		{"empty", "", true},
		{"leading dot", ".hidden", true},
		{"leading hyphen", "-flag", true},
		{"leading digit", "2app", true},
		{"with space", "my app", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateProjectName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateProjectName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestScaffoldProjectWritesAllFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "myapp")

	if err := scaffoldProject(dir, "github.com/example/myapp", "myapp", "kivy"); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"go.mod", "main.go", "mosf.yaml", "config.toml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	gomod, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(gomod), "module github.com/example/myapp") {
		t.Errorf("go.mod missing module path:\n%s", gomod)
	}

	toml, err := os.ReadFile(filepath.Join(dir, "config.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(toml), `name = "kivy"`) {
		t.Errorf("config.toml missing backend selection:\n%s", toml)
	}

	maingo, err := os.ReadFile(filepath.Join(dir, "main.go"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(maingo), "Hello from myapp!") {
		t.Errorf("main.go missing app name substitution:\n%s", maingo)
	}
}

func TestScaffoldProjectRefusesExistingDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := scaffoldProject(dir, "example.com/x", "x", "toga"); err == nil {
		t.Error("expected an error for an existing directory")
	}
}

func TestDefaultAppID(t *testing.T) {
	if got := defaultAppID("My-App_2"); got != "com.example.myapp2" {
		t.Errorf("defaultAppID = %q", got)
	}
}
