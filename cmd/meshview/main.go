// meshview - interactive triangle mesh viewer.
//
// Controls:
//
//	Left drag   - Rotate (trackball)
//	Scroll      - Zoom in/out
//	R           - Reframe the scene
//	Home        - Reset zoom and rotation
//	F           - Fix: merge visible meshes into one cleaned mesh
//	W           - Toggle wireframe
//	T           - Toggle transparency
//	1-9         - Toggle visibility of the n-th mesh
//	Backspace   - Remove the most recently added visible mesh
//	S           - Export visible meshes to OBJ
//	F12         - Screenshot
//	Esc         - Quit
//
// Dropping a mesh file on the window loads it.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/fang"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := fang.Execute(ctx, newRootCmd(), fang.WithVersion(version)); err != nil {
		os.Exit(1)
	}
}
