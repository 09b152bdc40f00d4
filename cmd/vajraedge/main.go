// Command vajraedge is VajraEdge's entrypoint, grounded on the
// teacher's cmd/k6/main.go: build the real process state, hand it to
// the cobra command tree, and let internal/cmd.Execute map the result
// to a process exit code.
package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/vajraedge/vajraedge/internal/cmd"
	"github.com/vajraedge/vajraedge/internal/state"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gs := state.New(ctx)
	cmd.Execute(ctx, gs)
}
