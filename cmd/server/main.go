package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nickyhof/DemoDB"
	"github.com/nickyhof/DemoDB/conf"
	"github.com/nickyhof/DemoDB/core"
	"github.com/nickyhof/DemoDB/logger"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	configPath := flag.String("config", "", "Path to an ini config file")
	port := flag.Int("port", 0, "TCP port to listen on (overrides config)")
	seed := flag.String("seed", "", "Seed JSON: path, file://, http(s):// or s3:// URL (overrides config)")
	database := flag.String("database", "", "Initial current database for new connections")
	logLevel := flag.String("logLevel", "", "Log level: debug, info, warn, error")
	tlsCert := flag.String("tlsCert", "", "TLS certificate file")
	tlsKey := flag.String("tlsKey", "", "TLS key file")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("DemoDB Server v%s\n", Version)
		return
	}

	cfg, err := conf.Load(*configPath)
	if err != nil {
		logger.Fatalf("%v", err)
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if *seed != "" {
		cfg.Seed.Source = *seed
	}
	if *database != "" {
		cfg.Database = *database
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if err := logger.InitLogger(cfg.LogConfig()); err != nil {
		logger.Fatalf("failed to initialise logging: %v", err)
	}

	instance, err := DemoDB.OpenWithOptions(context.Background(), DemoDB.Options{
		SeedSource: cfg.Seed.Source,
		S3:         &cfg.Seed.S3,
		Journal:    cfg.Journal,
	})
	if err != nil {
		logger.Fatalf("failed to open instance: %v", err)
	}

	identity := core.Identity{
		Name:  "DemoDB Server",
		Email: "server@demodb.local",
	}
	server := NewServerWithAuth(instance, identity, &cfg.Auth)
	server.SetDatabase(cfg.Database)

	addr := cfg.ListenAddress()
	if *tlsCert != "" && *tlsKey != "" {
		err = server.StartTLS(addr, *tlsCert, *tlsKey)
	} else {
		err = server.Start(addr)
	}
	if err != nil {
		logger.Fatalf("%v", err)
	}

	fmt.Println()
	fmt.Println("╔═══════════════════════════════════════╗")
	fmt.Printf("║   DemoDB Server v%-20s ║\n", Version)
	fmt.Println("║   In-memory demo SQL engine           ║")
	fmt.Println("╚═══════════════════════════════════════╝")
	fmt.Println()
	fmt.Printf("Listening on %s\n", server.Addr())
	fmt.Println("Send statements (one per line), 'quit' to disconnect")
	fmt.Println()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Infof("shutting down")
	server.Stop()
	logger.Infof("server stopped")
}
