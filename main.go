package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/blinky-z/Board/server"
	"github.com/blinky-z/Board/settings"
	"github.com/blinky-z/Board/tui"
)

const (
	modeWeb = "web"
	modeTUI = "tui"
)

var (
	logInfo  = log.New(os.Stdout, "INFO: ", log.Ltime)
	logError = log.New(os.Stderr, "ERROR: ", log.Ltime)
)

func main() {
	configPath := flag.String("config", "", "config file path (yaml, json or toml). Env variables take precedence")
	mode := flag.String("mode", modeWeb, "front-end to run: web or tui")
	tuiLogPath := flag.String("tui-log", "board-tui.log", "log file of the terminal UI")
	flag.Parse()

	s, err := settings.Load(*configPath, logInfo)
	if err != nil {
		logError.Fatalf("Error loading settings: %s", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		exit := make(chan os.Signal, 1)
		signal.Notify(exit, syscall.SIGINT, syscall.SIGTERM)
		sig := <-exit
		logInfo.Printf("Signal caught: %s", sig)
		cancel()
	}()

	switch *mode {
	case modeWeb:
		err = server.RunServer(ctx, s)
	case modeTUI:
		err = runTUI(ctx, s, *tuiLogPath)
	default:
		logError.Fatalf("Unknown mode %q, expected %s or %s", *mode, modeWeb, modeTUI)
	}
	if err != nil {
		logError.Fatalf("Fatal error: %s", err)
	}
}

// runTUI - terminal owns stdout while the UI runs, so logs go to a file
func runTUI(ctx context.Context, s *settings.Settings, logPath string) error {
	logFile, err := os.OpenFile(logPath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return err
	}
	defer func() {
		_ = logFile.Close()
	}()

	store, err := server.OpenStore(ctx, s)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logError.Printf("Error closing store: %s", err)
		}
	}()

	return tui.Run(ctx, store, s.SiteTitle, s.SwitchDelay,
		log.New(logFile, "[tui] INFO: ", log.Ltime),
		log.New(logFile, "[tui] ERROR: ", log.Ltime))
}
