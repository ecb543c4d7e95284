// Command docmill runs the document parsing HTTP service.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tsawler/docmill/config"
	"github.com/tsawler/docmill/logger"
	"github.com/tsawler/docmill/server"
)

func main() {
	configPath := flag.String("config", "", "path to YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level: logger.Level(cfg.Logging.Level),
		JSON:  cfg.Logging.JSON,
	})
	logger.SetDefault(log)

	srv, err := server.New(cfg)
	if err != nil {
		log.Error("failed to start", "error", err)
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}
