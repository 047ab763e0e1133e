package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/GriffinCanCode/modxel/internal/editor/terminal"
)

// stdio is the process side of a run
type stdio struct {
	in  io.Reader
	out io.Writer
	err io.Writer
	tty bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	code := run(ctx, os.Args[1:], stdio{
		in:  os.Stdin,
		out: os.Stdout,
		err: os.Stderr,
		tty: terminal.IsTerminal(os.Stdin) && terminal.IsTerminal(os.Stdout),
	})
	stop()
	os.Exit(code)
}
