// ABOUTME: Referral pipeline CLI commands
// ABOUTME: List, show, move between stages, update contact details, and remove referrals
package cli

import (
	"flag"
	"fmt"
	"io"

	"github.com/harperreed/warmpath/models"
	"github.com/harperreed/warmpath/pipeline"
	"github.com/harperreed/warmpath/workspace"
)

// ReferralsListCommand lists referrals with optional filters.
func ReferralsListCommand(ws *workspace.Workspace, out io.Writer, args []string) error {
	fs := flagSet("referrals list", out)
	clientID := fs.String("client", "", "Filter by client ID")
	stageName := fs.String("stage", "", "Filter by stage")
	stale := fs.Bool("stale", false, "Only referrals past their due date")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}

	filter := pipeline.ReferralFilter{ClientID: *clientID}
	if *stageName != "" {
		stage, ok := models.ParseStage(*stageName)
		if !ok {
			return fmt.Errorf("unknown stage: %s", *stageName)
		}
		filter.Stage = stage
	}
	today := ws.Today()
	if *stale {
		filter.StaleAsOf = &today
	}

	refs := ws.Referrals(filter)
	if len(refs) == 0 {
		fmt.Fprintln(out, "No referrals found.")
		return nil
	}

	w := newTable(out)
	_, _ = fmt.Fprintln(w, "ID\tCLIENT\tPROSPECT\tSTAGE\tDUE")
	_, _ = fmt.Fprintln(w, "--\t------\t--------\t-----\t---")
	for _, r := range refs {
		due := formatDue(r.NextDueDate)
		if pipeline.IsStale(r, today) {
			due += " ⚠"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.ClientName, r.Prospect.Name, r.Stage, due)
	}
	_ = w.Flush()
	fmt.Fprintf(out, "\nTotal: %d referrals\n", len(refs))
	return nil
}

// ReferralsShowCommand prints one referral with its open tasks.
func ReferralsShowCommand(ws *workspace.Workspace, out io.Writer, args []string) error {
	fs := flagSet("referrals show", out)
	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	id, err := requireOne(positional, "referral ID")
	if err != nil {
		return err
	}

	r, ok := ws.Referral(id)
	if !ok {
		return fmt.Errorf("%w: %s", workspace.ErrUnknownReferral, id)
	}

	fmt.Fprintf(out, "Referral:  %s\n", r.ID)
	fmt.Fprintf(out, "Client:    %s\n", r.ClientName)
	fmt.Fprintf(out, "Prospect:  %s", r.Prospect.Name)
	if r.Prospect.Title != "" || r.Prospect.Company != "" {
		fmt.Fprintf(out, " (%s, %s)", r.Prospect.Title, r.Prospect.Company)
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Stage:     %s\n", r.Stage)
	fmt.Fprintf(out, "Response:  %s\n", r.Response)
	fmt.Fprintf(out, "Due:       %s\n", formatDue(r.NextDueDate))
	if pipeline.IsStale(r, ws.Today()) {
		fmt.Fprintln(out, "           ⚠ overdue")
	}
	fmt.Fprintf(out, "Email:     %s\n", r.Contact.Email)
	fmt.Fprintf(out, "Phone:     %s\n", r.Contact.Phone)
	fmt.Fprintf(out, "Profile:   %s\n", r.Contact.ProfileURL)
	if r.Note != "" {
		fmt.Fprintf(out, "Note:      %s\n", r.Note)
	}
	fmt.Fprintf(out, "Updated:   %s\n", r.UpdatedAt.Format("2006-01-02 15:04"))

	tasks := ws.OpenTasks(id)
	if len(tasks) > 0 {
		fmt.Fprintln(out, "\nOpen tasks:")
		for _, t := range tasks {
			fmt.Fprintf(out, "  [%s] %s (due %s)\n", t.ID, t.Title, t.DueDate)
		}
	}
	return nil
}

// ReferralsStageCommand sets a referral's stage.
func ReferralsStageCommand(ws *workspace.Workspace, out io.Writer, args []string) error {
	fs := flagSet("referrals stage", out)
	stageName := fs.String("stage", "", "Target stage (required)")
	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	id, err := requireOne(positional, "referral ID")
	if err != nil {
		return err
	}
	stage, ok := models.ParseStage(*stageName)
	if !ok {
		return fmt.Errorf("unknown stage: %q", *stageName)
	}

	found, err := ws.SetStage(id, stage)
	if !found && err == nil {
		return fmt.Errorf("%w: %s", workspace.ErrUnknownReferral, id)
	}
	if !keepGoing(err) {
		return err
	}
	return printStage(ws, out, id, err)
}

// ReferralsAdvanceCommand moves a referral to the next stage.
func ReferralsAdvanceCommand(ws *workspace.Workspace, out io.Writer, args []string) error {
	fs := flagSet("referrals advance", out)
	back := fs.Bool("back", false, "Move to the previous stage instead")
	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	id, err := requireOne(positional, "referral ID")
	if err != nil {
		return err
	}

	step := ws.Advance
	if *back {
		step = ws.Retreat
	}
	_, found, err := step(id)
	if !found && err == nil {
		return fmt.Errorf("%w: %s", workspace.ErrUnknownReferral, id)
	}
	if !keepGoing(err) {
		return err
	}
	return printStage(ws, out, id, err)
}

func printStage(ws *workspace.Workspace, out io.Writer, id string, err error) error {
	r, _ := ws.Referral(id)
	fmt.Fprintf(out, "✓ %s → %s (next due: %s)\n", r.Prospect.Name, r.Stage, formatDue(r.NextDueDate))
	return err
}

// ReferralsUpdateCommand edits a referral's note and contact details.
func ReferralsUpdateCommand(ws *workspace.Workspace, out io.Writer, args []string) error {
	fs := flagSet("referrals update", out)
	note := fs.String("note", "", "Note")
	email := fs.String("email", "", "Prospect email")
	phone := fs.String("phone", "", "Prospect phone")
	profileURL := fs.String("profile-url", "", "Prospect profile URL")
	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	id, err := requireOne(positional, "referral ID")
	if err != nil {
		return err
	}

	var patch pipeline.ReferralPatch
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "note":
			patch.Note = note
		case "email":
			patch.Email = email
		case "phone":
			patch.Phone = phone
		case "profile-url":
			patch.ProfileURL = profileURL
		}
	})
	if patch == (pipeline.ReferralPatch{}) {
		return fmt.Errorf("nothing to update: pass --note, --email, --phone, or --profile-url")
	}

	found, err := ws.UpdateReferral(id, patch)
	if !found && err == nil {
		return fmt.Errorf("%w: %s", workspace.ErrUnknownReferral, id)
	}
	if !keepGoing(err) {
		return err
	}
	fmt.Fprintf(out, "✓ Updated referral %s\n", id)
	return err
}

// ReferralsRemoveCommand removes a referral. Its tasks are kept.
func ReferralsRemoveCommand(ws *workspace.Workspace, out io.Writer, args []string) error {
	fs := flagSet("referrals remove", out)
	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	id, err := requireOne(positional, "referral ID")
	if err != nil {
		return err
	}

	found, err := ws.RemoveReferral(id)
	if !found && err == nil {
		return fmt.Errorf("%w: %s", workspace.ErrUnknownReferral, id)
	}
	if !keepGoing(err) {
		return err
	}
	fmt.Fprintf(out, "✓ Removed referral %s\n", id)
	return err
}
