package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/omr-tools-mcp/internal/config"
	"github.com/ironsheep/omr-tools-mcp/internal/logging"
	"github.com/ironsheep/omr-tools-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("omr-tools-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("omr-mcp - MCP server for grading photographed bubble answer sheets")
			fmt.Println()
			fmt.Println("Usage: omr-mcp [flags]")
			fmt.Println()
			fmt.Println("Every flag can also be set as an OMR_ environment variable")
			fmt.Println("(--fill-threshold -> OMR_FILL_THRESHOLD), in a .env file, or in")
			fmt.Println("the JSON file named by --config.")
			fmt.Println()
			config.PrintDefaults(os.Stdout)
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
			return
		}
	}

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "omr-mcp: %v\n", err)
		os.Exit(2)
	}

	// Logs go to stderr (and the log file); stdout is for MCP protocol
	log, err := logging.New(cfg.Logging())
	if err != nil {
		fmt.Fprintf(os.Stderr, "omr-mcp: %v\n", err)
		os.Exit(1)
	}

	pipelineCfg, err := cfg.Pipeline()
	if err != nil {
		log.WithError(err).Fatal("invalid grading configuration")
	}
	store, err := cfg.Store()
	if err != nil {
		log.WithError(err).Fatal("failed to open artifact store")
	}

	server.Version = Version
	opts := []server.Option{
		server.WithConfig(pipelineCfg),
		server.WithLogger(log),
		server.WithBatchConcurrency(cfg.BatchConcurrency),
	}
	if store != nil {
		opts = append(opts, server.WithStore(store))
	}

	srv, err := server.New(opts...)
	if err != nil {
		log.WithError(err).Fatal("failed to start server")
	}

	log.WithFields(logrus.Fields{
		"version": Version,
		"commit":  GitCommit,
		"built":   BuildTime,
	}).Debug("omr-mcp server starting")

	if err := srv.Run(); err != nil {
		log.WithError(err).Fatal("server error")
	}
}
