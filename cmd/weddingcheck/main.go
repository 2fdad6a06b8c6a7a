// weddingcheck verifies a wedding-card backend end to end and can serve an
// in-memory twin of that backend for local runs.
//
// Usage:
//
//	weddingcheck run              Run the verification catalog against base_url
//	weddingcheck scenarios        List the scenarios a run would execute
//	weddingcheck twin             Serve the in-memory wedding backend
//	weddingcheck version          Print the build version
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "weddingcheck: %v\n", err)
		os.Exit(1)
	}
}
