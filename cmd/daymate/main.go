package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"DayMate/internal/bot"
	"DayMate/internal/config"
)

func main() {
	var configPath string
	var debug bool

	flag.StringVar(&configPath, "config", "", "Path to YAML config file")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	if debug {
		cfg.Debug = true
	}

	if cfg.Token == "" {
		fmt.Fprintln(os.Stderr, "No bot token found. Set BOT_TOKEN (or TELEGRAM_TOKEN).")
		os.Exit(1)
	}

	b, err := bot.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize bot: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Println("DayMate 📅 bot starting (polling)...")
	if err := b.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
