package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"

	"koneko/internal/services"
)

var version = "dev"

func main() {
	cmd := newRootCommand()
	if err := fang.Execute(
		context.Background(),
		cmd,
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(services.ExitCode(err))
	}
}
