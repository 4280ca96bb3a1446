package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"mailrelay/config"
	"mailrelay/internal/broker"
	"mailrelay/internal/httpapi"
	"mailrelay/internal/relay"
	"mailrelay/internal/store"
)

func main() {
	log.Println("🚀 Starting Mail Relay Server")

	// Load configuration
	cfg := config.Load()

	// Initialize user store
	st, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize user store: %v", err)
	}
	defer st.Close()

	// Initialize broker dialer and relay
	dialer := broker.NewAMQPDialer(cfg.BrokerURL)
	rl := relay.NewRelay(st, dialer)

	// Initialize HTTP API server
	httpServer := httpapi.NewServer(cfg, st, rl)

	go func() {
		if err := httpServer.Start(); err != nil {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	log.Println("✅ Mail Relay Server is running")
	log.Println("🌐 HTTP API: http://localhost:" + cfg.HTTPPort)
	log.Println("📮 Broker: " + cfg.BrokerURL)
	log.Println("Press Ctrl+C to stop")

	<-c
	log.Println("🛑 Shutting down Mail Relay Server...")
}

// openStore selects the user store implementation from configuration
func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.StoreDriver {
	case "sqlite":
		return store.NewSQLiteStore(cfg.DatabasePath)
	default:
		return store.NewFileStore(cfg.UsersPath)
	}
}
