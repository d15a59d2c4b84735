package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/trogers1052/carteira-dashboard/internal/app"
	"github.com/trogers1052/carteira-dashboard/internal/cli"
	"github.com/trogers1052/carteira-dashboard/internal/config"
	"github.com/trogers1052/carteira-dashboard/internal/dashboard"
	"github.com/trogers1052/carteira-dashboard/internal/logging"
	"go.uber.org/zap"
)

var raw = flag.Bool("raw", false, "print markdown without terminal styling")

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	env := &cli.Env{Open: open}
	cli.Register(commander, env)

	flag.Parse()
	env.Raw = *raw
	os.Exit(int(commander.Execute(context.Background())))
}

// open loads configuration per command; decode never calls it
func open(ctx context.Context) (*dashboard.Service, func() error, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	// Keep the terminal free of info logs unless asked for.
	level := cfg.Log.Level
	if os.Getenv("LOG_LEVEL") == "" {
		level = "warn"
	}
	logger, err := logging.New(level, "console")
	if err != nil {
		logger = zap.NewNop()
	}

	a, err := app.Open(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return a.Service, func() error {
		defer logger.Sync()
		return a.Close()
	}, nil
}
