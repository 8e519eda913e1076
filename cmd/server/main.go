package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/yurifrl/kakeibu/pkg/config"
	"github.com/yurifrl/kakeibu/pkg/importer"
	"github.com/yurifrl/kakeibu/pkg/server"
)

func main() {
	var (
		port    = pflag.String("port", "3000", "Server port")
		cfgFile = pflag.StringP("config", "c", "", "Config file (default is kakeibu.yaml)")
	)
	pflag.String("log-level", "info", "Log level (debug, info, warn, error)")
	pflag.Bool("use-custom-id", true, "Match YNAB transactions by the id stored in the memo")
	pflag.Parse()

	cfg, err := config.Build(*cfgFile, pflag.CommandLine)
	if err != nil {
		log.Fatal("failed to load config", "err", err)
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		Prefix:          "kakeibu",
		Level:           cfg.Level(),
	})

	tables, err := cfg.LoadTables()
	if err != nil {
		logger.Fatal("failed to load tables", "err", err)
	}

	srv := server.New(cfg, logger, importer.New(logger, tables))
	addr := fmt.Sprintf("0.0.0.0:%s", *port)
	logger.Info("starting server", "addr", addr)
	if err := srv.Start(addr); err != nil {
		logger.Fatal("server error", "err", err)
	}
}
