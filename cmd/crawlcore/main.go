// CrawlCore is a single-player text RPG session engine with a CLI, a
// Bubble Tea TUI, and an MCP tool server for language-model play.
// Usage: crawlcore [--version] [--plain] [--serve] [--script <file>]
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nathoo/crawlcore/cli"
	"github.com/nathoo/crawlcore/config"
	"github.com/nathoo/crawlcore/engine/dice"
	"github.com/nathoo/crawlcore/engine/session"
	"github.com/nathoo/crawlcore/loader"
	"github.com/nathoo/crawlcore/narrator"
	"github.com/nathoo/crawlcore/server"
	"github.com/nathoo/crawlcore/tui"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	plain := false
	serve := false
	var scriptFile string

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version":
			fmt.Printf("crawlcore %s (commit %s, built %s)\n", version, commit, date)
			return
		case "--plain":
			plain = true
		case "--serve":
			serve = true
		case "--script":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "--script requires a file path\n")
				os.Exit(1)
			}
			i++
			scriptFile = args[i]
		default:
			fmt.Fprintf(os.Stderr, "Unknown flag: %s\n", args[i])
			fmt.Fprintf(os.Stderr, "Usage: crawlcore [--version] [--plain] [--serve] [--script <file>]\n")
			os.Exit(1)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Load Lua theme packs, if a directory is configured.
	themes := loader.Themes{}
	if cfg.ThemeDir != "" {
		themes, err = loader.Load(cfg.ThemeDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading themes: %v\n", err)
			os.Exit(1)
		}
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := dice.NewRNG(seed)
	store := session.NewStore(themes, rng)

	// MCP mode: stdio JSON-RPC, logs to stderr.
	if serve {
		runServer(cfg, store, rng)
		return
	}

	// Script mode: feed a command file through the plain CLI.
	if scriptFile != "" {
		f, err := os.Open(scriptFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening script: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		c := cli.New(store, rng)
		c.In = f
		c.Run()
		return
	}

	// Use plain CLI if --plain flag or stdout is not a terminal.
	if plain || !isTerminal() {
		cli.New(store, rng).Run()
		return
	}

	if err := tui.Run(store, rng); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runServer starts the MCP stdio server and blocks until interrupted.
func runServer(cfg config.Config, store *session.Store, rng *dice.RNG) {
	log.SetPrefix("[MCP] ")
	log.SetOutput(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var narr server.Narrator
	if cfg.NarratorEnabled() {
		n, err := narrator.New(ctx, cfg.GeminiAPIKey, cfg.Model)
		if err != nil {
			log.Fatalf("narrator init failed: %v", err)
		}
		defer n.Close()
		narr = n
	}

	srv := server.New(store, rng, narr)
	if err := srv.Serve(ctx); err != nil {
		log.Fatalf("failed to serve MCP: %v", err)
	}
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
