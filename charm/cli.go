// ABOUTME: Sync subcommands for the Charm KV backend
// ABOUTME: Status, manual sync, and local wipe

package charm

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/harperreed/warmpath/storage"
)

// SyncStatusCommand shows the sync configuration and connection state.
func SyncStatusCommand(c *Client, out io.Writer, args []string) error {
	fs := flag.NewFlagSet("sync status", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := c.Config()
	fmt.Fprintln(out, "Charm Sync Status")
	fmt.Fprintln(out, "─────────────────")
	fmt.Fprintf(out, "Server:    %s\n", cfg.Host)
	fmt.Fprintf(out, "Auto-sync: %v\n", cfg.AutoSync)

	now := time.Now()
	if last, ok := c.LastSync(); ok {
		fmt.Fprintf(out, "Last sync: %s (%s ago)\n", last.Local().Format("2006-01-02 15:04"), now.Sub(last).Round(time.Second))
	} else {
		fmt.Fprintln(out, "Last sync: never")
	}
	freshness := "fresh"
	if c.IsStale(now) {
		freshness = "stale - run 'warmpath sync now'"
	}
	fmt.Fprintf(out, "Data:      %s (threshold %s)\n", freshness, cfg.StaleThreshold)

	id, err := c.ID()
	if err != nil {
		fmt.Fprintln(out, "\nStatus: Not connected")
		fmt.Fprintln(out, "\nCharm uses SSH keys for authentication - no login required!")
		return nil //nolint:nilerr // not connected is a state, not a failure
	}
	fmt.Fprintln(out, "\nStatus: Connected")
	fmt.Fprintf(out, "ID:        %s\n", id)

	keys, err := c.Keys(storage.KeyPrefix)
	if err == nil {
		fmt.Fprintf(out, "Keys:      %d\n", len(keys))
	}
	return nil
}

// SyncNowCommand performs an immediate sync.
func SyncNowCommand(c *Client, out io.Writer, args []string) error {
	fs := flag.NewFlagSet("sync now", flag.ContinueOnError)
	verbose := fs.Bool("verbose", false, "Show verbose output")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *verbose {
		fmt.Fprintln(out, "Syncing with server...")
	}
	if err := c.Sync(); err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	fmt.Fprintln(out, "✓ Synced")
	return nil
}

// SyncWipeCommand deletes every warmpath key from the KV store.
func SyncWipeCommand(c *Client, out io.Writer, args []string) error {
	fs := flag.NewFlagSet("sync wipe", flag.ContinueOnError)
	confirm := fs.Bool("confirm", false, "Confirm data wipe")
	all := fs.Bool("all", false, "Reset the whole KV store, not just warmpath keys")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if !*confirm {
		fmt.Fprintln(out, "WARNING: This will delete ALL warmpath data in Charm KV!")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "To confirm, run:")
		fmt.Fprintln(out, "  warmpath sync wipe --confirm")
		return nil
	}

	if *all {
		if err := c.Reset(); err != nil {
			return fmt.Errorf("failed to reset KV store: %w", err)
		}
		fmt.Fprintln(out, "✓ KV store reset")
		return nil
	}

	keys, err := c.Keys(storage.KeyPrefix)
	if err != nil {
		return fmt.Errorf("failed to list keys: %w", err)
	}
	for _, k := range keys {
		if err := c.Delete(k); err != nil {
			return fmt.Errorf("failed to delete %s: %w", k, err)
		}
	}

	fmt.Fprintf(out, "✓ Wiped %d keys\n", len(keys))
	return nil
}
