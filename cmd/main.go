package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/suipilot/suipilot/internal/api"
	"github.com/suipilot/suipilot/internal/config"
	"github.com/suipilot/suipilot/internal/services"
)

// Build information (set via ldflags)
var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildTime  = "unknown"
)

func main() {
	var showVersion = flag.Bool("version", false, "Show version information")
	var showHelp = flag.Bool("help", false, "Show help information")
	flag.Parse()

	if *showVersion {
		log.Printf("SuiPilot Agent\n")
		log.Printf("Version: %s\n", Version)
		log.Printf("Commit: %s\n", CommitHash)
		log.Printf("Built: %s\n", BuildTime)
		return
	}

	if *showHelp {
		log.Printf("SuiPilot Agent\n\n")
		log.Printf("Usage: %s [options]\n\n", os.Args[0])
		log.Printf("Options:\n")
		log.Printf("  --version    Show version information\n")
		log.Printf("  --help       Show this help message\n\n")
		log.Printf("Description:\n")
		log.Printf("  Natural-language wallet assistant for the Sui blockchain.\n")
		log.Printf("  Turns chat messages into previewed, then executed, transactions\n")
		log.Printf("  and manages an encrypted off-chain contact book.\n")
		return
	}

	// Load .env if present; real environments set variables directly.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not load .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize database (vault index)
	var db services.DBService
	if cfg.DatabaseURL != "" {
		db, err = services.NewPostgresDBService(cfg.DatabaseURL)
	} else {
		db, err = services.NewDBService(cfg.DatabasePath)
	}
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer db.Close()

	// External collaborators
	intentService, err := services.NewIntentService(services.IntentServiceConfig{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.OpenAIModel,
	})
	if err != nil {
		log.Fatal("Failed to initialize intent service:", err)
	}

	suiService := services.NewSuiService(services.SuiServiceConfig{
		RPCURL:             cfg.SuiRPCURL,
		StakingValidator:   cfg.StakingValidator,
		AddressBookPackage: cfg.AddressBookPackage,
	})

	sealService, err := services.NewSealService(cfg.SealMasterKey)
	if err != nil {
		log.Fatal("Failed to initialize seal service:", err)
	}

	walrusService := services.NewWalrusService(services.WalrusServiceConfig{
		PublisherURL:  cfg.WalrusPublisherURL,
		AggregatorURL: cfg.WalrusAggregatorURL,
		Epochs:        cfg.WalrusEpochs,
	})

	// Core orchestration
	dispatcher := services.NewDispatcherService(suiService, sealService)
	executor := services.NewExecutorService(suiService)
	vault := services.NewVaultService(db.GetDB(), walrusService, sealService)

	server := api.NewAPIServer(intentService, dispatcher, executor, vault)
	if err := server.Start(cfg.Port); err != nil {
		log.Fatal("Failed to start API server:", err)
	}
	log.Printf("API server started on port %d\n", cfg.Port)

	// Set up graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	log.Println("\nShutting down server...")
	if err := server.Shutdown(); err != nil {
		log.Printf("Error shutting down API server: %v", err)
	}
	log.Println("Server shut down successfully")
}
