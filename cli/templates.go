// ABOUTME: Template library, advisor profile, and message CLI commands
// ABOUTME: Import/export YAML packs and render outreach for a referral
package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/harperreed/warmpath/workspace"
)

// TemplatesListCommand lists the template library.
func TemplatesListCommand(ws *workspace.Workspace, out io.Writer, args []string) error {
	fs := flagSet("templates list", out)
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}

	w := newTable(out)
	_, _ = fmt.Fprintln(w, "ID\tTYPE\tNAME")
	_, _ = fmt.Fprintln(w, "--\t----\t----")
	for _, t := range ws.Templates() {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", t.ID, t.Type, t.Name)
	}
	_ = w.Flush()
	return nil
}

// TemplatesImportCommand merges a YAML template pack into the library.
func TemplatesImportCommand(ws *workspace.Workspace, out io.Writer, args []string) error {
	fs := flagSet("templates import", out)
	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	path, err := requireOne(positional, "YAML file")
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	added, replaced, err := ws.ImportTemplates(f)
	if !keepGoing(err) {
		return err
	}
	fmt.Fprintf(out, "✓ Imported templates: %d added, %d replaced\n", added, replaced)
	return err
}

// TemplatesExportCommand writes the library to a YAML file, or stdout for "-".
func TemplatesExportCommand(ws *workspace.Workspace, out io.Writer, args []string) error {
	fs := flagSet("templates export", out)
	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	path := "-"
	if len(positional) > 0 {
		path = positional[0]
	}

	if path == "-" {
		return ws.ExportTemplates(out)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := ws.ExportTemplates(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(out, "✓ Exported %d templates to %s\n", len(ws.Templates()), path)
	return nil
}

// TemplatesResetCommand restores the stock templates.
func TemplatesResetCommand(ws *workspace.Workspace, out io.Writer, args []string) error {
	fs := flagSet("templates reset", out)
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}
	err := ws.ResetTemplates()
	if !keepGoing(err) {
		return err
	}
	fmt.Fprintln(out, "✓ Restored default templates")
	return err
}

// AdvisorShowCommand prints the advisor profile.
func AdvisorShowCommand(ws *workspace.Workspace, out io.Writer, args []string) error {
	fs := flagSet("advisor show", out)
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}
	p := ws.AdvisorProfile()
	fmt.Fprintf(out, "Name:       %s\n", p.AdvisorName)
	fmt.Fprintf(out, "Value prop: %s\n", p.ValueProp)
	fmt.Fprintf(out, "Calendar:   %s\n", p.CalendarLink)
	return nil
}

// AdvisorSetCommand updates fields of the advisor profile.
func AdvisorSetCommand(ws *workspace.Workspace, out io.Writer, args []string) error {
	fs := flagSet("advisor set", out)
	name := fs.String("name", "", "Advisor name")
	valueProp := fs.String("value-prop", "", "One-line value proposition")
	calendar := fs.String("calendar-link", "", "Scheduling link")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}

	var patch workspace.ProfilePatch
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			patch.AdvisorName = name
		case "value-prop":
			patch.ValueProp = valueProp
		case "calendar-link":
			patch.CalendarLink = calendar
		}
	})
	if patch == (workspace.ProfilePatch{}) {
		return fmt.Errorf("nothing to update: pass --name, --value-prop, or --calendar-link")
	}

	_, err := ws.UpdateAdvisorProfile(patch)
	if !keepGoing(err) {
		return err
	}
	fmt.Fprintln(out, "✓ Advisor profile updated")
	return err
}

// MessageCommand renders an outreach message for a referral.
func MessageCommand(ws *workspace.Workspace, out io.Writer, args []string) error {
	fs := flagSet("message", out)
	referralID := fs.String("referral", "", "Referral ID (required)")
	templateID := fs.String("template", "", "Template ID (default: first template)")
	check := fs.Bool("check", false, "Warn about placeholders that render empty")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}
	if *referralID == "" {
		return fmt.Errorf("--referral is required")
	}

	msg, err := ws.RenderMessage(*referralID, *templateID)
	if err != nil {
		return err
	}
	if *check && len(msg.Unknown) > 0 {
		fmt.Fprintf(out, "⚠ unknown placeholders: %s\n\n", strings.Join(msg.Unknown, ", "))
	}
	fmt.Fprintln(out, msg.Body)
	return nil
}
