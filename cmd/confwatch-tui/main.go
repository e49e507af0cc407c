package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/halfdome/confwatch/internal/config"
	"github.com/halfdome/confwatch/internal/tui"
)

func main() {
	var (
		configFlag = flag.String("config", "", "Path to config file")
		dataFlag   = flag.String("data", "", "Conference data file or directory (overrides config)")
	)
	flag.Parse()

	configPath := *configFlag
	if configPath == "" {
		configPath = config.DefaultPath()
	}
	settings, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *dataFlag != "" {
		settings.DataPath = *dataFlag
	}

	if err := tui.Run(settings, configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
