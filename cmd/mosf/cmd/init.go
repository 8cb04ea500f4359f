package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-mosf/mosf/cmd/mosf/internal/templates"
)

func init() {
	RegisterCommand(&Command{
		Name:  "init",
		Short: "Create a new mosf project",
		Long: `Create a new mosf project in a new directory.

This command creates:
  - A new directory at the specified path
  - go.mod with the specified module path
  - main.go with a starter application
  - mosf.yaml project configuration
  - config.toml runtime configuration

The project name is derived from the directory basename.
The module path defaults to the project name if not specified.

Examples:
  mosf init myapp
  mosf init myapp github.com/username/myapp
  mosf init --backend kivy ./projects/myapp`,
		Usage: "mosf init [--backend toga|kivy] <directory> [module-path]",
		Run:   runInit,
	})
}

func runInit(args []string) error {
	backendName := "toga"
	var rest []string
	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--backend":
			if i+1 >= len(args) {
				return fmt.Errorf("--backend requires a value (toga or kivy)")
			}
			i++
			backendName = args[i]
		case strings.HasPrefix(args[i], "--backend="):
			backendName = strings.TrimPrefix(args[i], "--backend=")
		default:
			rest = append(rest, args[i])
		}
	}
	if backendName != "toga" && backendName != "kivy" {
		return fmt.Errorf("unknown backend %q (known: toga, kivy)", backendName)
	}
	if len(rest) == 0 {
		return fmt.Errorf("directory is required\n\nUsage: mosf init [--backend toga|kivy] <directory> [module-path]")
	}

	raw := rest[0]
	if strings.HasPrefix(raw, "~") {
		return fmt.Errorf("tilde (~) is not expanded by mosf; use an absolute path or $HOME instead")
	}
	dir := filepath.Clean(raw)
	if err := validateDirectory(dir); err != nil {
		return err
	}

	projectName := filepath.Base(dir)
	modulePath := projectName
	if len(rest) > 1 {
		modulePath = rest[1]
	}
	if modulePath == "" {
		return fmt.Errorf("module path cannot be empty")
	}
	if err := validateProjectName(projectName); err != nil {
		return fmt.Errorf("invalid project name %q (derived from directory basename): %w", projectName, err)
	}

	if err := scaffoldProject(dir, modulePath, projectName, backendName); err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("Project created successfully!\n\n")
	fmt.Printf("Next steps:\n")
	fmt.Printf("  cd %s\n", dir)
	fmt.Printf("  mosf doctor    # Check backend availability\n")
	fmt.Printf("  mosf run       # Run the app\n")

	return nil
}

// scaffoldProject creates the project directory and writes the template
// files. It has no side effects beyond the filesystem, so tests can call
// it without network access.
func scaffoldProject(dir, modulePath, projectName, backendName string) error {
	if _, err := os.Stat(dir); err == nil {
		return fmt.Errorf("directory %q already exists", dir)
	}

	fmt.Printf("Creating new mosf project: %s\n", projectName)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data := templates.Data{
		ModulePath: modulePath,
		AppName:    projectName,
		AppID:      defaultAppID(projectName),
		Backend:    backendName,
	}

	initFiles := []struct {
		templatePath string
		destName     string
	}{
		{"init/go.mod.tmpl", "go.mod"},
		{"init/main.go.tmpl", "main.go"},
		{"init/mosf.yaml.tmpl", "mosf.yaml"},
		{"init/config.toml.tmpl", "config.toml"},
	}

	for _, f := range initFiles {
		content, err := templates.Render(f.templatePath, data)
		if err != nil {
			safeRemoveAll(dir)
			return err
		}
		if err := os.WriteFile(filepath.Join(dir, f.destName), []byte(content), 0o644); err != nil {
			safeRemoveAll(dir)
			return fmt.Errorf("failed to write %s: %w", f.destName, err)
		}
		fmt.Printf("  Created %s\n", f.destName)
	}

	return nil
}

func defaultAppID(projectName string) string {
	sanitized := strings.ToLower(projectName)
	sanitized = strings.NewReplacer("-", "", "_", "").Replace(sanitized)
	if sanitized == "" {
		sanitized = "app"
	}
	return "com.example." + sanitized
}

// validateDirectory rejects directory paths that would be dangerous to
// create or clean up: filesystem roots, the current/parent directory,
// and root-level absolute paths.
func validateDirectory(dir string) error {
	switch dir {
	case "", "/", ".", "..":
		return fmt.Errorf("directory %q is not a valid project location", dir)
	}
	if isVolumeRoot(dir) {
		return fmt.Errorf("directory %q is not a valid project location", dir)
	}
	if filepath.IsAbs(dir) && isVolumeRoot(filepath.Dir(dir)) {
		return fmt.Errorf("refusing to create project at root-level path %q", dir)
	}
	return nil
}

// isVolumeRoot reports whether dir is a filesystem root. On Unix this is
// "/", on Windows this covers drive roots like "C:\".
func isVolumeRoot(dir string) bool {
	return dir == filepath.VolumeName(dir)+string(filepath.Separator)
}

// safeRemoveAll removes a directory only if the path passes
// validateDirectory. It silently no-ops for dangerous paths, since it
// runs on cleanup paths where the original error should not be masked.
func safeRemoveAll(dir string) {
	if validateDirectory(dir) != nil {
		return
	}
	os.RemoveAll(dir)
}

var validProjectName = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*$`)

// validateProjectName checks that a project name (derived from the
// directory basename) starts with a letter and contains only letters,
// digits, underscores, and hyphens.
func validateProjectName(name string) error {
	if name == "" {
		return fmt.Errorf("project name cannot be empty")
	}
	if strings.HasPrefix(name, ".") {
		return fmt.Errorf("project name cannot start with a dot")
	}
	if strings.HasPrefix(name, "-") {
		return fmt.Errorf("project name cannot start with a hyphen")
	}
	if !validProjectName.MatchString(name) {
		return fmt.Errorf("project name must start with a letter and contain only letters, numbers, underscores, and hyphens")
	}
	return nil
}
