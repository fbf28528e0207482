// ABOUTME: Prospect import and listing commands
// ABOUTME: Reads a client's network export from a JSON file
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/harperreed/warmpath/workspace"
)

// ProspectsImportCommand imports a client's network from a JSON file.
func ProspectsImportCommand(ws *workspace.Workspace, out io.Writer, args []string) error {
	fs := flagSet("prospects import", out)
	clientID := fs.String("client", "", "Client ID (required)")
	file := fs.String("file", "", "JSON file with an array of prospects (required)")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}
	if *clientID == "" || *file == "" {
		return fmt.Errorf("--client and --file are required")
	}

	f, err := os.Open(*file)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", *file, err)
	}
	defer func() { _ = f.Close() }()

	result, err := ws.ImportProspects(*clientID, f)
	if !keepGoing(err) {
		return err
	}
	fmt.Fprintf(out, "✓ Imported %d prospects (%d duplicates, %d skipped)\n",
		result.Added, result.Duplicates, result.Skipped)
	return err
}

// ProspectsListCommand lists a client's imported network.
func ProspectsListCommand(ws *workspace.Workspace, out io.Writer, args []string) error {
	fs := flagSet("prospects list", out)
	clientID := fs.String("client", "", "Client ID (required)")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}
	if *clientID == "" {
		return fmt.Errorf("--client is required")
	}
	if _, ok := ws.Client(*clientID); !ok {
		return fmt.Errorf("%w: %s", workspace.ErrUnknownClient, *clientID)
	}

	prospects := ws.Prospects(*clientID)
	if len(prospects) == 0 {
		fmt.Fprintln(out, "No prospects imported.")
		return nil
	}

	w := newTable(out)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tTITLE\tCOMPANY\tEMAIL\tPHONE")
	_, _ = fmt.Fprintln(w, "--\t----\t-----\t-------\t-----\t-----")
	for _, p := range prospects {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			p.ID, p.Name, truncate(p.Title, 30), truncate(p.Company, 30), p.Email, p.Phone)
	}
	_ = w.Flush()
	return nil
}
