// Package main provides the argconf CLI entry point.
//
// Overview:
//   - Responsibility: Demonstrate command-line arguments as a configuration layer
//   - Key Types: Cobra command structure
//   - Concurrency Model: Single-threaded CLI execution; --watch waits on manager updates
//   - Error Semantics: Coded errors are printed and exit with status 1
//   - Performance Notes: Fast startup, minimal initialization
//
// Usage:
//
//	argconf -v -i filename -t tagone -t tagtwo
//	argconf -c app.yaml --env-prefix APP_ --list tag -o json
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// Execute runs the root command and exits with status 1 on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "argconf: %v\n", err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
