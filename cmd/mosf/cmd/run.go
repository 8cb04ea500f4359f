package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/go-mosf/mosf/cmd/mosf/internal/config"
)

func init() {
	RegisterCommand(&Command{
		Name:  "run",
		Short: "Run the project",
		Long: `Build and run the mosf project in the current module.

The preferred backend is taken from --backend, falling back to the
MOSF_BACKEND environment variable, then to backend.name in mosf.yaml.
When none is set, the application resolves backends in priority order
at startup.`,
		Usage: "mosf run [--backend toga|kivy] [-- go-run-args]",
		Run:   runRun,
	})
}

func runRun(args []string) error {
	backendName := ""
	var passthrough []string
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
		case args[i] == "--":
			passthrough = append(passthrough, args[i+1:]...)
			i = len(args)
		default:
			passthrough = append(passthrough, args[i])
		}
	}

	root, err := config.FindProjectRoot()
	if err != nil {
		return err
	}
	cfg, err := config.Resolve(root)
	if err != nil {
		return err
	}

	if backendName == "" {
		backendName = os.Getenv("MOSF_BACKEND")
	}
	if backendName == "" {
		backendName = cfg.Backend
	}
	if backendName != "" && backendName != "toga" && backendName != "kivy" {
		return fmt.Errorf("unknown backend %q (known: toga, kivy)", backendName)
	}

	fmt.Printf("Running %s", cfg.AppName)
	if backendName != "" {
		fmt.Printf(" on the %s backend", backendName)
	}
	fmt.Println()

	runArgs := append([]string{"run", "."}, passthrough...)
	goCmd := exec.Command("go", runArgs...)
	goCmd.Dir = root
	goCmd.Stdin = os.Stdin
	goCmd.Stdout = os.Stdout
	goCmd.Stderr = os.Stderr
	goCmd.Env = os.Environ()
	if backendName != "" {
		goCmd.Env = append(goCmd.Env, "MOSF_BACKEND="+backendName)
	}
	return goCmd.Run()
}
