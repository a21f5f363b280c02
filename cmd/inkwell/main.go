// Package main is the command-line front end for the Inkwell writing
// assistant core. It checks prose from a file or stdin, dispatches
// rewrites to a local language model, and manages the model server.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dshills/inkwell/internal/app"
	"github.com/dshills/inkwell/internal/config"
	"github.com/dshills/inkwell/internal/logging"
	"github.com/dshills/inkwell/internal/rewrite"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath  string
		logLevel    string
		mode        string
		status      bool
		launch      bool
		showVersion bool
	)

	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.StringVar(&configPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.StringVar(&mode, "rewrite", "", "Rewrite mode (clarity, concise, formal, casual, coach)")
	flag.BoolVar(&status, "status", false, "Report language model server status and exit")
	flag.BoolVar(&launch, "launch", false, "Start the language model server and exit")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Inkwell - local writing assistant\n\n")
		fmt.Fprintf(os.Stderr, "Usage: inkwell [options] [file]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  inkwell draft.txt                   Check a file\n")
		fmt.Fprintf(os.Stderr, "  cat draft.txt | inkwell             Check stdin\n")
		fmt.Fprintf(os.Stderr, "  inkwell -rewrite concise draft.txt  Rewrite a file\n")
		fmt.Fprintf(os.Stderr, "  inkwell -status                     Probe local model servers\n")
		fmt.Fprintf(os.Stderr, "  inkwell -launch                     Start LM Studio headlessly\n")
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("Inkwell %s (%s)\n", version, commit)
		return 0
	}

	if configPath == "" {
		configPath = filepath.Join(config.DefaultDir(), config.DefaultFileName)
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	cfg.Log.Level = logLevel

	log := logging.New(logging.Config{Level: logging.ParseLevel(cfg.Log.Level)})

	assistant, err := app.New(cfg, app.WithLogger(log))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer assistant.Close()

	ctx := context.Background()

	switch {
	case status:
		return runStatus(ctx, assistant)
	case launch:
		return runLaunch(ctx, assistant)
	case mode != "":
		return runRewrite(ctx, assistant, rewrite.ParseMode(mode), flag.Args())
	default:
		return runCheck(assistant, flag.Args())
	}
}

// runCheck checks the input and prints issues with their UI spans.
func runCheck(assistant *app.Assistant, args []string) int {
	text, err := readInput(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	result := assistant.CheckGrammar(text)

	for _, issue := range result.Issues {
		fmt.Printf("[%s] %d-%d: %s", issue.Severity, issue.Span.Start, issue.Span.End, issue.Message)
		if len(issue.Suggestions) > 0 {
			fmt.Printf(" (suggest: %q)", issue.Suggestions[0])
		}
		fmt.Println()
	}

	fmt.Printf("%d words, %d sentences, %d issues\n",
		result.Stats.WordCount, result.Stats.SentenceCount, result.Stats.IssueCount)
	if result.Stats.IssueCount > 0 {
		return 1
	}
	return 0
}

// runRewrite sends the input through the active model and prints the
// result.
func runRewrite(ctx context.Context, assistant *app.Assistant, mode rewrite.Mode, args []string) int {
	text, err := readInput(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	result, err := assistant.RewriteText(ctx, rewrite.Request{Text: text, Mode: mode})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if result.Rewritten != "" {
		fmt.Println(result.Rewritten)
	}
	if result.Explanation != "" {
		fmt.Fprintf(os.Stderr, "\n%s\n", result.Explanation)
	}
	return 0
}

// runStatus probes the configured backends once.
func runStatus(ctx context.Context, assistant *app.Assistant) int {
	status := assistant.ProviderStatus(ctx)
	if !status.Available {
		fmt.Println("No local language model server is reachable.")
		return 1
	}
	fmt.Printf("%s is serving %s\n", status.Name, status.Model)
	return 0
}

// runLaunch starts the preferred backend and waits for it to come up.
func runLaunch(ctx context.Context, assistant *app.Assistant) int {
	desc, err := assistant.LaunchProvider(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Printf("Started: %s\n", desc)
	return 0
}

// readInput returns the named file's contents, or stdin when no file
// is given.
func readInput(args []string) (string, error) {
	if len(args) > 0 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(data), nil
}
