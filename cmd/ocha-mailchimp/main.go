package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/gookit/slog"

	"github.com/OCHA-DAP/ocha-mailchimp/internal/config"
)

func main() {

	// configure log template; stdout is reserved for command output
	logTemplate := "[{{datetime}}] [{{level}}] {{message}}\n"
	f := slog.NewTextFormatter()
	f.SetTemplate(logTemplate)
	slog.SetFormatter(f)
	slog.Configure(func(l *slog.SugaredLogger) {
		l.Output = os.Stderr
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdout, config.NewViper())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
