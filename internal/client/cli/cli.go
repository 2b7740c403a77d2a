package cli

import (
	"fmt"

	httpClient "github.com/roadassist/roadassist-client/internal/client/api"
	"github.com/roadassist/roadassist-client/internal/client/cache"
	"github.com/roadassist/roadassist-client/internal/client/config"
	"github.com/roadassist/roadassist-client/internal/client/iocli"
	"github.com/roadassist/roadassist-client/internal/client/outbox"
	"github.com/roadassist/roadassist-client/internal/client/sync"
	"github.com/roadassist/roadassist-client/internal/client/vault"
)

// Cli binds the sync layer components to the terminal commands
type Cli struct {
	io          iocli.IO
	cfg         config.Config
	apiClient   httpClient.ClientAPI
	vault       *vault.Vault
	cache       *cache.Store
	queue       *outbox.Queue
	coordinator *sync.Coordinator
}

func New(
	io iocli.IO,
	cfg config.Config,
	apiClient httpClient.ClientAPI,
	v *vault.Vault,
	cacheStore *cache.Store,
	queue *outbox.Queue,
	coordinator *sync.Coordinator,
) *Cli {
	return &Cli{
		io:          io,
		cfg:         cfg,
		apiClient:   apiClient,
		vault:       v,
		cache:       cacheStore,
		queue:       queue,
		coordinator: coordinator,
	}
}

func PrintUsage() {
	fmt.Println("RoadAssist Client")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  roadassist [OPTIONS] COMMAND")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version          Show version information")
	fmt.Println("  --server URL       API server URL (default: http://localhost:8080)")
	fmt.Println("  --realtime URL     Websocket URL (default: ws://localhost:8080/realtime)")
	fmt.Println("  --db PATH          Path to local database (default: roadassist.db)")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  login                    Login with phone and password")
	fmt.Println("  logout                   Logout and wipe local session state")
	fmt.Println("  status                   Show session and outbox status")
	fmt.Println("  enqueue <kind> <json>    Queue an action, e.g. enqueue message '{\"text\":\"hi\"}'")
	fmt.Println("  pending                  List queued actions")
	fmt.Println("  retry <id>               Re-enable a failed action")
	fmt.Println("  drain                    Flush the outbox now")
	fmt.Println("  sweep                    Evict expired cache entries and purge synced actions")
	fmt.Println("  watch [topic ...]        Stream live events until interrupted")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  roadassist login")
	fmt.Println("  roadassist enqueue message '{\"conversation\":\"c1\",\"text\":\"on my way\"}'")
	fmt.Println("  roadassist enqueue location '{\"lat\":52.52,\"lng\":13.40}'")
	fmt.Println("  roadassist watch job:update message:send")
	fmt.Println("  roadassist --server https://api.example.com status")
}
