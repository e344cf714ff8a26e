package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/thesavant42/formkeeper/internal/app"
	"github.com/thesavant42/formkeeper/internal/config"
	"github.com/thesavant42/formkeeper/internal/ui"
)

const usage = `Usage: formkeeper [-config file] <command> [flags] [page]

Commands:
  save     capture the form state of a page into a snapshot
  load     restore a snapshot onto a page
  history  list stored snapshots

Run without a command for interactive mode.
`

func main() {
	// Load .env file if it exists (silently ignore if not found)
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		ui.PrintError(err.Error())
		os.Exit(1)
	}
}

// run parses the global flags, builds the App and dispatches to a command
func run(ctx context.Context, args []string, stdout io.Writer) error {
	global := flag.NewFlagSet("formkeeper", flag.ContinueOnError)
	global.SetOutput(ui.Output)
	global.Usage = func() {
		fmt.Fprint(ui.Output, usage)
		global.PrintDefaults()
	}
	configPath := global.String("config", config.DefaultPath, "Path to YAML config file")
	verbose := global.Bool("v", false, "Enable debug logging")
	if err := global.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	level := cfg.Level()
	if *verbose {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(ui.Output, log.Options{
		Level:           level,
		ReportTimestamp: true,
		Prefix:          "formkeeper",
	})

	a := app.New(cfg, logger)

	rest := global.Args()
	if len(rest) == 0 {
		return runInteractive(ctx, a)
	}

	switch rest[0] {
	case "save":
		return runSave(ctx, a, rest[1:], stdout)
	case "load":
		return runLoad(ctx, a, rest[1:], stdout)
	case "history":
		return runHistory(a, rest[1:], stdout)
	case "help":
		global.Usage()
		return nil
	default:
		global.Usage()
		return fmt.Errorf("unknown command %q", rest[0])
	}
}
