package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/daybook/internal/adapters/eventfile"
	"github.com/okian/daybook/internal/adapters/repository"
	"github.com/okian/daybook/internal/cli"
	"github.com/okian/daybook/internal/config"
	"github.com/okian/daybook/internal/domain/model"
	"github.com/okian/daybook/pkg/logger"
)

func main() {
	// Log records go to stderr so they never interleave with the menu.
	if err := logger.InitWithWriter(os.Stderr); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		_ = logger.SetLevelString("warn")
	}

	if err := run(ctx, cfg, os.Stdin, os.Stdout, model.DateOf(time.Now())); err != nil {
		logger.Get().Error(ctx, "daybook-cli exited", logger.Error(err))
		os.Exit(1)
	}
}

// run loads the events file, drives one console session and saves on quit.
func run(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer, today model.Date) error {
	log := logger.Named("cli")

	store := repository.NewMemoryStore(repository.WithLogger(log.Named("store")))
	events, err := eventfile.Load(ctx, log, cfg.EventsFile)
	if err != nil {
		return err
	}
	store.AddAll(ctx, events)

	session := cli.NewSession(in, out, store, today,
		cli.WithLogger(log),
		cli.WithSave(func(ctx context.Context) error {
			return eventfile.Save(cfg.OutputFile, store.All(ctx))
		}),
	)
	return session.Run(ctx)
}
