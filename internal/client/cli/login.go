package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/roadassist/roadassist-client/pkg/api"
)

func (c *Cli) runLogin(ctx context.Context) error {
	c.io.Println("=== Login ===")
	c.io.Println()

	phone, err := c.io.ReadInput("Phone: ")
	if err != nil {
		return fmt.Errorf("failed to read phone: %w", err)
	}

	password, err := c.io.ReadPassword("Password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	c.io.Println()
	c.io.Println("Authenticating...")

	cred, err := c.apiClient.Login(ctx, api.LoginRequest{Phone: phone, Password: password})
	if err != nil {
		return err
	}

	if err := c.vault.Store(ctx, *cred); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	// The profile is cached so status works offline. A failure here does
	// not fail the login, the session itself is already saved.
	profile, err := c.apiClient.Me(ctx, cred.AccessToken)
	if err == nil {
		if err := c.vault.SaveProfile(ctx, profile); err != nil {
			c.io.Printf("Warning: failed to save profile: %v\n", err)
		}
	}

	c.io.Println()
	c.io.Println("Login successful.")
	if profile != nil {
		c.io.Printf("Logged in as: %s (%s)\n", profile.Name, profile.Role)
	}
	if !cred.ExpiresAt.IsZero() {
		c.io.Printf("Session expires: %s\n", cred.ExpiresAt.Format(time.RFC3339))
	}

	return nil
}
