// ABOUTME: Graphviz rendering of the referral pipeline
// ABOUTME: Client nodes link to prospect nodes colored by stage
package viz

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"

	"github.com/harperreed/warmpath/models"
	"github.com/harperreed/warmpath/pipeline"
)

var stageColors = map[models.Stage]string{
	models.StageIdentified:    "lightgray",
	models.StageClientAgreed:  "lightyellow",
	models.StageIntroSent:     "lightblue",
	models.StageMeetingBooked: "lightgreen",
	models.StageOutcome:       "plum",
}

// PipelineGraph renders referrals as DOT: one box per client, one ellipse per
// referral filled by stage, and a client → prospect edge labeled with the due
// date. Edges of stale referrals are dashed.
func PipelineGraph(refs []models.Referral, today models.Date) (string, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create graphviz instance: %w", err)
	}
	defer gv.Close()

	graph, err := gv.Graph()
	if err != nil {
		return "", fmt.Errorf("failed to create graph: %w", err)
	}
	defer graph.Close()

	graph.SetLabel(fmt.Sprintf("Referral pipeline %s", today))
	graph.SetRankDir(cgraph.LRRank)

	clients := make(map[string]*cgraph.Node)
	for _, r := range refs {
		clientNode, ok := clients[r.ClientID]
		if !ok {
			clientNode, err = graph.CreateNodeByName("client_" + r.ClientID)
			if err != nil {
				return "", fmt.Errorf("failed to create client node: %w", err)
			}
			clientNode.SetLabel(r.ClientName)
			clientNode.SetShape("box")
			clientNode.SetStyle("filled")
			clientNode.SetFillColor("white")
			clients[r.ClientID] = clientNode
		}

		node, err := graph.CreateNodeByName("referral_" + r.ID)
		if err != nil {
			return "", fmt.Errorf("failed to create referral node: %w", err)
		}
		node.SetLabel(fmt.Sprintf("%s\n(%s)", r.Prospect.Name, r.Stage))
		node.SetShape("ellipse")
		node.SetStyle("filled")
		node.SetFillColor(stageColor(r.Stage))

		edge, err := graph.CreateEdgeByName("", clientNode, node)
		if err != nil {
			return "", fmt.Errorf("failed to create edge: %w", err)
		}
		if r.NextDueDate != nil {
			edge.SetLabel("due " + r.NextDueDate.String())
		}
		if pipeline.IsStale(r, today) {
			edge.SetStyle("dashed")
		}
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, graphviz.XDOT, &buf); err != nil {
		return "", fmt.Errorf("failed to render graph: %w", err)
	}
	return buf.String(), nil
}

func stageColor(s models.Stage) string {
	if c, ok := stageColors[s]; ok {
		return c
	}
	return "white"
}
