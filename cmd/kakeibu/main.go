package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/yurifrl/kakeibu/pkg/config"
	"github.com/yurifrl/kakeibu/pkg/importer"
	"github.com/yurifrl/kakeibu/pkg/service"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		Prefix:          "kakeibu",
	})

	cfgFile := pflag.StringP("config", "c", "", "Config file (default is kakeibu.yaml)")
	pflag.StringP("output", "o", "", "Output directory (default: next to the input directory)")
	pflag.Parse()

	args := pflag.Args()
	if len(args) != 1 {
		logger.Error("invalid usage", "args", args)
		fmt.Fprintf(os.Stderr, "Usage: kakeibu [-o output_dir] <directory>\n")
		os.Exit(1)
	}

	cfg, err := config.Build(*cfgFile, pflag.CommandLine)
	if err != nil {
		logger.Fatal("failed to load config", "error", err)
	}
	logger.SetLevel(cfg.Level())

	tables, err := cfg.LoadTables()
	if err != nil {
		logger.Fatal("failed to load tables", "error", err)
	}

	processor := service.NewProcessor(cfg.Output, logger, importer.New(logger, tables))
	out, err := processor.ProcessDirectory(args[0])
	if err != nil {
		logger.Fatal("processing failed", "error", err)
	}
	fmt.Println(out)
}
