// Command smoke verifies connectivity and credentials against Follow Up Boss
// with a single users-listing call. Exit code 0 means the account is
// reachable; anything else (missing key, network failure, auth rejection)
// exits non-zero.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/nebula-hq/nebula-lead-relay/internal/config"
	"github.com/nebula-hq/nebula-lead-relay/pkg/followupboss"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "FAIL: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("PASS")
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	client, err := followupboss.New(cfg.FollowUpBossAPIKey,
		followupboss.WithBaseURL(cfg.FollowUpBossBaseURL),
		followupboss.WithSystem(cfg.System),
		followupboss.WithTimeout(cfg.FUBTimeout),
	)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.FUBTimeout)
	defer cancel()

	resp, err := client.GetUsers(ctx)
	if err != nil {
		return err
	}

	if users, ok := resp["users"].([]any); ok {
		fmt.Printf("account reachable, %d user(s) listed\n", len(users))
	} else {
		fmt.Println("account reachable")
	}
	return nil
}
