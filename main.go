package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mrlokans/courseimport/internal/cli"
	"github.com/mrlokans/courseimport/internal/config"
	"github.com/mrlokans/courseimport/internal/entrypoint"
	"github.com/mrlokans/courseimport/internal/logging"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	cfg := config.NewConfig()
	logger := logging.Setup(cfg.Logging)

	// If no arguments or "serve" command, run the HTTP server
	if len(os.Args) < 2 || os.Args[1] == "serve" {
		entrypoint.Run(cfg, Version, logger)
		return
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "import":
		cmd := cli.NewCourseImportCommand(cfg, logger)
		if err := cmd.ParseFlags(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		err := cmd.Run(ctx)
		stop()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "version", "-v", "--version":
		fmt.Printf("courseimport %s (%s)\n", Version, Commit)

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  serve     Start the HTTP import API (default)\n")
	fmt.Fprintf(os.Stderr, "  import    Import courses from a CSV file\n")
	fmt.Fprintf(os.Stderr, "  version   Print version information\n")
	fmt.Fprintf(os.Stderr, "\nRun '%s <command> -h' for command options.\n", os.Args[0])
}
