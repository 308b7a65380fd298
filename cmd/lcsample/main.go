// cmd/lcsample/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"lcsample/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(cli.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr))
}
