// Package main provides the segnmt translation CLI.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/born-ml/segnmt/translate"
)

const version = "v0.1.0-dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stdout)
		return 0
	}

	switch args[0] {
	case "version":
		fmt.Fprintf(stdout, "segnmt %s\n", version)
		return 0
	case "translate":
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := translateCmd(ctx, args[1:], stdin, stdout, stderr); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return 0
			}
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
		return 0
	case "help", "-h", "--help":
		usage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", args[0])
		usage(stderr)
		return 2
	}
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "segnmt %s - segmentation-aware neural machine translation\n\n", version)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  version      Show version")
	fmt.Fprintln(w, "  translate    Translate text arguments, or stdin lines when none are given")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'segnmt translate -h' for translate flags.")
}

func translateCmd(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("translate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "YAML configuration file")
	from := fs.String("from", "", "source language (detected when empty)")
	to := fs.String("to", "", "target language")
	beam := fs.Int("beam", 0, "beam size, 1 for greedy (default from config)")
	verbose := fs.Bool("v", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	cfg := translate.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = translate.LoadConfig(*configPath); err != nil {
			return err
		}
	}

	texts := fs.Args()
	if len(texts) == 0 {
		var err error
		if texts, err = readLines(stdin); err != nil {
			return err
		}
	}

	tr, err := translate.New(cfg, translate.WithLogger(logger))
	if err != nil {
		return err
	}
	defer func() {
		if err := tr.Close(); err != nil {
			logger.Warn("close translator", "error", err)
		}
	}()

	results, err := tr.Translate(ctx, texts, translate.Options{From: *from, To: *to, BeamSize: *beam})
	if err != nil {
		return err
	}
	for _, r := range results {
		fmt.Fprintln(stdout, r.Text)
	}
	return nil
}

// readLines returns the non-blank lines of r.
func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return lines, nil
}
