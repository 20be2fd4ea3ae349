package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/janpfeifer/GoMemory/internal/config"
	"github.com/janpfeifer/GoMemory/internal/server"
	"github.com/joho/godotenv"
	"k8s.io/klog/v2"
)

var (
	flagAddr   = flag.String("addr", "", "Address to listen on, overrides the configuration (default: auto-port on localhost)")
	flagConfig = flag.String("config", "", "Optional YAML configuration file")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	// A missing .env file is fine.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		klog.Warningf("Failed to load .env: %v", err)
	}

	cfg, err := config.Load(*flagConfig)
	if err != nil {
		klog.Exitf("Failed to load configuration: %v", err)
	}
	if *flagAddr != "" {
		cfg.Server.Addr = *flagAddr
	}
	// An explicit -v takes precedence over the configured verbosity.
	if f := flag.Lookup("v"); f != nil && f.Value.String() == "0" && cfg.Server.LogVerbosity > 0 {
		_ = f.Value.Set(strconv.Itoa(cfg.Server.LogVerbosity))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	started := make(chan *server.ServerState, 1)
	go func() {
		state := <-started
		fmt.Printf("GoMemory server listening on http://%s\n", state.Address)
	}()

	if err := server.Run(ctx, cfg, started); err != nil {
		klog.Exitf("Server error: %v", err)
	}
	klog.Flush()
}
