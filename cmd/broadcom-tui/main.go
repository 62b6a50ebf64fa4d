package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/handiism/broadcom-downloader/internal/config"
	"github.com/handiism/broadcom-downloader/internal/tui"
)

func main() {
	var (
		fileFlag   = pflag.StringP("file", "f", "", "manifest file to pre-fill")
		configFlag = pflag.StringP("config", "c", "", "settings file (JSON or YAML)")
		dirFlag    = pflag.StringP("directory", "d", "", "destination directory (overrides config)")
	)
	pflag.Parse()

	settings := config.DefaultSettings()
	if *configFlag != "" {
		var err error
		settings, err = config.Load(*configFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(2)
		}
	}
	if *dirFlag != "" {
		settings.Directory = *dirFlag
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := tui.Run(ctx, settings, *fileFlag); err != nil {
		if ctx.Err() != nil {
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
