package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/roadassist/roadassist-client/internal/client/realtime"
	"github.com/roadassist/roadassist-client/internal/client/vault"
	"github.com/roadassist/roadassist-client/pkg/api"
)

// defaultWatchTopics covers everything the product surfaces care about
var defaultWatchTopics = []string{
	api.TopicJobUpdate,
	api.TopicMessageSend,
	api.TopicLocationUpdate,
	api.TopicNotificationReceive,
	api.TopicConversationsUpdate,
}

func (c *Cli) runWatch(ctx context.Context, args []string) error {
	topics := args
	if len(topics) == 0 {
		topics = defaultWatchTopics
	}

	profile, err := c.vault.Profile(ctx)
	if err != nil {
		if errors.Is(err, vault.ErrNoCredential) {
			return fmt.Errorf("not authenticated. Please run 'roadassist login' first")
		}
		return fmt.Errorf("failed to load profile: %w", err)
	}

	for _, topic := range topics {
		topic := topic
		unsubscribe, err := c.coordinator.Subscribe(topic, func(evt *api.Event) {
			stamp := time.Now().Format("15:04:05")
			if evt.Deleted {
				c.io.Printf("[%s] %s  %s/%s deleted (v%d)\n", stamp, topic, evt.Entity, evt.ID, evt.Version)
				return
			}
			c.io.Printf("[%s] %s  %s/%s v%d %s\n", stamp, topic, evt.Entity, evt.ID, evt.Version, evt.Data)
		})
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", topic, err)
		}
		defer unsubscribe()
	}

	unsubState := c.coordinator.SubscribeConnection(func(state realtime.ConnectionState) {
		c.io.Printf("-- connection: %s\n", state)
	})
	defer unsubState()

	if err := c.coordinator.Start(ctx, profile.UserID); err != nil {
		return fmt.Errorf("failed to start sync: %w", err)
	}
	defer c.coordinator.Stop()

	c.io.Printf("Watching %d topic(s). Press Ctrl+C to stop.\n", len(topics))

	<-ctx.Done()
	c.io.Println()
	c.io.Println("Stopped.")
	return nil
}
