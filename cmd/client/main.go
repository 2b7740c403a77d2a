package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	httpClient "github.com/roadassist/roadassist-client/internal/client/api"
	"github.com/roadassist/roadassist-client/internal/client/cache"
	"github.com/roadassist/roadassist-client/internal/client/cli"
	"github.com/roadassist/roadassist-client/internal/client/config"
	"github.com/roadassist/roadassist-client/internal/client/iocli"
	"github.com/roadassist/roadassist-client/internal/client/outbox"
	"github.com/roadassist/roadassist-client/internal/client/realtime"
	"github.com/roadassist/roadassist-client/internal/client/storage"
	"github.com/roadassist/roadassist-client/internal/client/storage/boltdb"
	clientsync "github.com/roadassist/roadassist-client/internal/client/sync"
	"github.com/roadassist/roadassist-client/internal/client/vault"
	"github.com/roadassist/roadassist-client/internal/crypto"
	"github.com/roadassist/roadassist-client/pkg/api"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// saltKey is where the per-installation key derivation salt lives
const saltKey = "storage_salt"

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	serverURL := flag.String("server", "", "API server URL")
	realtimeURL := flag.String("realtime", "", "Websocket URL")
	dbPath := flag.String("db", "", "Path to local database")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		cli.PrintUsage()
		os.Exit(1)
	}
	command := args[0]

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	// Flags take precedence over the environment
	if *serverURL != "" {
		cfg.ServerURL = *serverURL
	}
	if *realtimeURL != "" {
		cfg.RealtimeURL = *realtimeURL
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Warnings only: the CLI output belongs to the commands
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	boltStorage, err := boltdb.New(ctx, cfg.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if err := boltStorage.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	storageKey, err := loadStorageKey(ctx, boltStorage, cfg.DeviceSecret)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to derive storage key: %v\n", err)
		os.Exit(1)
	}

	apiClient := httpClient.NewClient(cfg.ServerURL)

	v, err := vault.New(boltStorage, apiClient, storageKey, cfg.RefreshThreshold, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open vault: %v\n", err)
		os.Exit(1)
	}

	cacheStore := cache.New(boltStorage, cfg.CacheTTL, logger)

	queue := outbox.NewQueue(boltStorage, outbox.Config{
		MaxAttempts: cfg.OutboxMaxAttempts,
		BaseDelay:   cfg.OutboxBaseDelay,
		MaxDelay:    cfg.OutboxMaxDelay,
	}, logger)

	deviceID, err := storage.DeviceID(ctx, boltStorage)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load device id: %v\n", err)
		os.Exit(1)
	}

	channel := realtime.NewChannel(realtime.Config{
		URL:               cfg.RealtimeURL,
		DeviceID:          deviceID,
		HandshakeTimeout:  cfg.HandshakeTimeout,
		HeartbeatInterval: cfg.HeartbeatInterval,
		ReconnectBase:     cfg.ReconnectBase,
		ReconnectMax:      cfg.ReconnectMax,
		MaxReconnects:     cfg.MaxReconnects,
	}, v, logger)

	coordinator := clientsync.NewCoordinator(apiClient, v, cacheStore, queue, channel, clientsync.Config{
		Topics: []string{
			api.TopicJobUpdate,
			api.TopicMessageSend,
			api.TopicLocationUpdate,
			api.TopicNotificationReceive,
			api.TopicConversationsUpdate,
		},
		MaintenanceInterval: cfg.SweepInterval,
		PurgeOutboxOnLogout: cfg.PurgeOutboxOnLogout,
	}, logger)

	app := cli.New(iocli.NewStdio(), cfg, apiClient, v, cacheStore, queue, coordinator)

	if err := app.Run(ctx, command, args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadStorageKey derives the at-rest encryption key from the device secret
// and a per-installation salt, generating and persisting the salt on first
// run
func loadStorageKey(ctx context.Context, kv storage.KVStore, deviceSecret string) ([]byte, error) {
	saltB64, err := kv.Get(ctx, saltKey)
	if errors.Is(err, storage.ErrNotFound) {
		generated, genErr := crypto.GenerateSaltBase64()
		if genErr != nil {
			return nil, genErr
		}
		if putErr := kv.Set(ctx, saltKey, []byte(generated)); putErr != nil {
			return nil, fmt.Errorf("persisting salt: %w", putErr)
		}
		saltB64 = []byte(generated)
	} else if err != nil {
		return nil, fmt.Errorf("loading salt: %w", err)
	}

	return crypto.DeriveStorageKeyFromBase64Salt(deviceSecret, string(saltB64))
}

func printVersion() {
	fmt.Printf("RoadAssist Client\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Git Commit: %s\n", GitCommit)
	fmt.Printf("Build Date: %s\n", BuildDate)
}
