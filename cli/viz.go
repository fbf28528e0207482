// ABOUTME: Visualization CLI commands
// ABOUTME: Handles dashboard and pipeline graph generation
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/harperreed/warmpath/pipeline"
	"github.com/harperreed/warmpath/viz"
	"github.com/harperreed/warmpath/workspace"
)

// DashboardCommand prints the pipeline dashboard.
func DashboardCommand(ws *workspace.Workspace, out io.Writer, args []string) error {
	fs := flagSet("dashboard", out)
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}
	fmt.Fprint(out, viz.RenderDashboard(viz.GenerateDashboardStats(ws)))
	for _, w := range ws.Warnings() {
		fmt.Fprintf(out, "  ⚠ %s\n", w)
	}
	return nil
}

// GraphCommand renders the pipeline as a Graphviz graph.
func GraphCommand(ws *workspace.Workspace, out io.Writer, args []string) error {
	fs := flagSet("graph", out)
	output := fs.String("output", "", "Output file (default: stdout)")
	clientID := fs.String("client", "", "Only this client's referrals")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}

	refs := ws.Referrals(pipeline.ReferralFilter{ClientID: *clientID})
	dot, err := viz.PipelineGraph(refs, ws.Today())
	if err != nil {
		return err
	}

	if *output != "" {
		if err := os.WriteFile(*output, []byte(dot), 0644); err != nil {
			return err
		}
		fmt.Fprintf(out, "✓ Wrote graph to %s\n", *output)
		return nil
	}
	fmt.Fprintln(out, dot)
	return nil
}
