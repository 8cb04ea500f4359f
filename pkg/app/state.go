package app

import "github.com/go-mosf/mosf/pkg/layout"

// State is the app lifecycle state.
type State int

const (
	// Created means the app exists but its loop has not started.
	Created State = iota
	// Running means the backend's native event loop owns the process.
	Running
	// Stopped means the loop has exited and handles are released.
	Stopped
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	default:
		return "created"
	}
}

// AppState is a snapshot of the runtime's process-wide state: which
// backend is active, the root layout node, and the lifecycle state.
// It is created by Start, mutated only by the runtime shim, and read
// by everyone else through Snapshot.
type AppState struct {
	// Backend is the resolved backend identifier, empty before Start.
	Backend string
	// Root is the root layout node.
	Root *layout.Node
	// Lifecycle is the current lifecycle state.
	Lifecycle State
}
