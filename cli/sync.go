// ABOUTME: Sync CLI commands
// ABOUTME: Routes sync status, now, and wipe to the active storage backend
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/harperreed/warmpath/charm"
	"github.com/harperreed/warmpath/db"
	"github.com/harperreed/warmpath/storage"
)

// SyncCommand handles `warmpath sync <status|now|wipe>`. Only the Charm
// backend syncs; SQLite reports its local state.
func SyncCommand(backend storage.Backend, out io.Writer, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: warmpath sync <status|now|wipe>")
	}
	sub, rest := args[0], args[1:]

	switch b := backend.(type) {
	case *charm.Client:
		switch sub {
		case "status":
			return charm.SyncStatusCommand(b, out, rest)
		case "now":
			return charm.SyncNowCommand(b, out, rest)
		case "wipe":
			return charm.SyncWipeCommand(b, out, rest)
		}
	case *db.KVStore:
		switch sub {
		case "status":
			return localStatus(b, out)
		case "now", "wipe":
			return fmt.Errorf("sync %s requires the charm backend (set backend to \"charm\" in config)", sub)
		}
	default:
		return fmt.Errorf("backend %T does not support sync", backend)
	}
	return fmt.Errorf("unknown sync subcommand: %s", sub)
}

func localStatus(kv *db.KVStore, out io.Writer) error {
	entries, err := kv.List(context.Background(), storage.KeyPrefix)
	if err != nil {
		return fmt.Errorf("failed to list keys: %w", err)
	}
	fmt.Fprintln(out, "Local SQLite storage (sync disabled)")
	fmt.Fprintln(out, "────────────────────────────────────")
	for _, e := range entries {
		fmt.Fprintf(out, "%-26s %6d bytes  updated %s\n", e.Key, len(e.Value), e.UpdatedAt.Format("2006-01-02 15:04"))
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "No data saved yet.")
	}
	return nil
}
