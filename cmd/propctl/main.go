package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"propmanager/internal/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := commands.Execute(ctx, commands.NewRootCmd(commands.Bootstrap)); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
