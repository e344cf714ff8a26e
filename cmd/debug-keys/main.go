// Debug tool to show how every form control of a page is keyed
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/thesavant42/formkeeper/internal/api"
	"github.com/thesavant42/formkeeper/internal/config"
	"github.com/thesavant42/formkeeper/internal/dom"
	"github.com/thesavant42/formkeeper/internal/formstate"
	"github.com/thesavant42/formkeeper/internal/ui"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", config.DefaultPath, "Path to YAML config file")
	policyFlag := flag.String("policy", "", "Frame policy (same-origin, same-site, none); default from config")
	includeHidden := flag.Bool("include-hidden", false, "Key hidden inputs too (changes name.<index> slots)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: debug-keys [flags] <page>")
		os.Exit(2)
	}
	page := flag.Arg(0)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("ERROR: %v\n", err)
		os.Exit(1)
	}
	if *includeHidden {
		cfg.ExcludeHidden = false
	}

	policy := cfg.Policy()
	if *policyFlag != "" {
		if policy, err = api.ParseFramePolicy(*policyFlag); err != nil {
			fmt.Printf("ERROR: %v\n", err)
			os.Exit(1)
		}
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		Level:           log.DebugLevel,
		ReportTimestamp: true,
	})

	fmt.Printf("Inspecting form controls of: %s\n", page)
	fmt.Printf("Frame policy: %s, hidden inputs excluded: %v\n", policy, cfg.ExcludeHidden)

	client := api.NewPageClient(logger, api.PageOptions{
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.Timeout,
		Policy:    policy,
	})
	doc, err := client.OpenPage(context.Background(), page, cfg.MaxFrameDepth)
	if err != nil {
		fmt.Printf("ERROR: %v\n", err)
		os.Exit(1)
	}

	engine := formstate.New(formstate.WithExcludeHidden(cfg.ExcludeHidden), formstate.WithLogger(logger))
	printReport(os.Stdout, engine, doc)
}

// printReport writes the key table, skipped frames and captured values of doc
func printReport(w io.Writer, engine *formstate.Engine, doc *dom.Document) {
	census, reports := engine.Inspect(doc)

	fmt.Fprintln(w, "\n--- Keys ---")
	fmt.Fprint(w, ui.KeyTable(census, reports))

	if skipped := ui.FrameSummary(doc); len(skipped) > 0 {
		fmt.Fprintln(w, "\n--- Skipped frames ---")
		for _, line := range skipped {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}

	fmt.Fprintln(w, "\n--- Captured values ---")
	for _, row := range ui.SnapshotRows(engine.Save(doc).Snapshot()) {
		fmt.Fprintf(w, "  %-30s %q\n", row[0], row[1])
	}
}
