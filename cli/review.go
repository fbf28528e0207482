// ABOUTME: Review command converting a client's prospect responses into referrals
// ABOUTME: Reads responses from a JSON file and prints the conversion summary
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/harperreed/warmpath/models"
	"github.com/harperreed/warmpath/workspace"
)

type reviewLine struct {
	ProspectID string           `json:"prospect_id"`
	Prospect   *models.Prospect `json:"prospect"`
	Response   string           `json:"response"`
	Note       string           `json:"note"`
}

// ParseReview decodes review responses. Each entry names a prospect_id from
// the client's imported network or carries an inline prospect.
func ParseReview(r io.Reader) ([]workspace.ReviewInput, error) {
	var lines []reviewLine
	if err := json.NewDecoder(r).Decode(&lines); err != nil {
		return nil, fmt.Errorf("failed to decode review: %w", err)
	}

	inputs := make([]workspace.ReviewInput, 0, len(lines))
	for i, l := range lines {
		if l.ProspectID == "" && l.Prospect == nil {
			return nil, fmt.Errorf("review entry %d: prospect_id or prospect required", i+1)
		}
		inputs = append(inputs, workspace.ReviewInput{
			ProspectID: l.ProspectID,
			Prospect:   l.Prospect,
			Response:   models.Response(strings.ToLower(strings.TrimSpace(l.Response))),
			Note:       l.Note,
		})
	}
	return inputs, nil
}

// ReviewCommand runs a review session for a client.
func ReviewCommand(ws *workspace.Workspace, out io.Writer, args []string) error {
	fs := flagSet("review", out)
	clientID := fs.String("client", "", "Client ID (required)")
	file := fs.String("file", "", "JSON file with review responses (required)")
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

	inputs, err := ParseReview(f)
	if err != nil {
		return err
	}

	outcome, err := ws.RunReview(*clientID, inputs)
	if !keepGoing(err) {
		return err
	}

	fmt.Fprintf(out, "✓ Added %d referrals (%d client agreed)\n", len(outcome.Created), outcome.AgreedCount)
	fmt.Fprintf(out, "✓ Created %d coordinate tasks\n", outcome.TasksCreated)
	if outcome.Duplicates > 0 {
		fmt.Fprintf(out, "  %d already in pipeline\n", outcome.Duplicates)
	}
	if outcome.Skipped > 0 {
		fmt.Fprintf(out, "  %d skipped\n", outcome.Skipped)
	}
	for _, id := range outcome.Unresolved {
		fmt.Fprintf(out, "  unknown prospect: %s\n", id)
	}
	return err
}
