package main

import (
	"os"

	"github.com/go-mosf/mosf/cmd/mosf/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
