// ABOUTME: Client roster CLI commands
// ABOUTME: Commands for adding, listing, and deleting clients
package cli

import (
	"fmt"
	"io"

	"github.com/harperreed/warmpath/workspace"
)

// ClientsAddCommand adds a client to the roster.
func ClientsAddCommand(ws *workspace.Workspace, out io.Writer, args []string) error {
	fs := flagSet("clients add", out)
	name := fs.String("name", "", "Client name (required)")
	title := fs.String("title", "", "Job title")
	profileURL := fs.String("profile-url", "", "Profile URL")
	notes := fs.String("notes", "", "Notes")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}

	c, err := ws.AddClient(workspace.ClientInput{
		Name:       *name,
		Title:      *title,
		ProfileURL: *profileURL,
		Notes:      *notes,
	})
	if !keepGoing(err) {
		return err
	}

	fmt.Fprintf(out, "✓ Added client: %s (ID: %s)\n", c.Name, c.ID)
	return err
}

// ClientsListCommand lists clients, optionally filtered by a search query.
func ClientsListCommand(ws *workspace.Workspace, out io.Writer, args []string) error {
	fs := flagSet("clients list", out)
	query := fs.String("query", "", "Search name, title, or notes")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}

	clients := ws.FindClients(*query)
	if len(clients) == 0 {
		fmt.Fprintln(out, "No clients found.")
		return nil
	}

	w := newTable(out)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tTITLE\tREFERRALS\tLAST REVIEW")
	_, _ = fmt.Fprintln(w, "--\t----\t-----\t---------\t-----------")
	for _, c := range clients {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			c.ID, c.Name, c.Title, c.Referrals, formatDue(c.LastReview))
	}
	_ = w.Flush()
	fmt.Fprintf(out, "\nTotal: %d clients\n", len(clients))
	return nil
}

// ClientsDeleteCommand removes a client and their referrals.
func ClientsDeleteCommand(ws *workspace.Workspace, out io.Writer, args []string) error {
	fs := flagSet("clients delete", out)
	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	id, err := requireOne(positional, "client ID")
	if err != nil {
		return err
	}

	removed, err := ws.DeleteClient(id)
	if !keepGoing(err) {
		return err
	}
	fmt.Fprintf(out, "✓ Deleted client %s (%d referrals removed)\n", id, removed)
	return err
}
