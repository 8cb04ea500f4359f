package cmd

import (
	"fmt"

	"github.com/go-mosf/mosf/pkg/backend"
	"github.com/go-mosf/mosf/pkg/backend/headless"
	_ "github.com/go-mosf/mosf/pkg/backend/kivy"
	_ "github.com/go-mosf/mosf/pkg/backend/toga"
)

func init() {
	RegisterCommand(&Command{
		Name:  "doctor",
		Short: "Check backend availability",
		Long: `Check which UI backends are available on this machine.

Probes every known backend in priority order and reports whether its
native driver is installed and responding. The backend an application
will resolve to is the first available one, unless a preferred backend
is configured.

With --headless, an in-process driver is installed for every backend
first, so the whole adapter stack can be exercised on machines without
a display server.`,
		Usage: "mosf doctor [--headless]",
		Run:   runDoctor,
	})
}

func runDoctor(args []string) error {
	for _, arg := range args {
		if arg == "--headless" {
			headless.New().Install(backend.PriorityOrder...)
		}
	}

	fmt.Println("Backends (in resolution priority order):")
	available := 0
	for _, id := range backend.PriorityOrder {
		adapter, err := backend.Default.Adapter(id)
		if err != nil {
			fmt.Printf("  %-8s not registered\n", id+":")
			continue
		}
		if _, ok := backend.DriverFor(id); !ok {
			fmt.Printf("  %-8s no driver installed\n", id+":")
			continue
		}
		if !adapter.Available() {
			fmt.Printf("  %-8s driver installed, toolkit not responding\n", id+":")
			continue
		}
		fmt.Printf("  %-8s available\n", id+":")
		available++
	}

	fmt.Println()
	if available == 0 {
		return fmt.Errorf("no backend is available; install Toga or Kivy support, or rerun with --headless")
	}
	fmt.Printf("%d backend(s) available.\n", available)
	return nil
}
