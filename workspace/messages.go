// ABOUTME: Template library, advisor profile, and outreach message rendering
// ABOUTME: Imports and exports template packs and renders messages for a referral
package workspace

import (
	"fmt"
	"io"

	"github.com/harperreed/warmpath/models"
	"github.com/harperreed/warmpath/storage"
	"github.com/harperreed/warmpath/templates"
)

func (w *Workspace) Templates() []models.Template {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]models.Template(nil), w.templates...)
}

// ImportTemplates merges a YAML template pack into the library.
func (w *Workspace) ImportTemplates(r io.Reader) (added, replaced int, err error) {
	imported, err := templates.LoadYAML(r)
	if err != nil {
		return 0, 0, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.templates, added, replaced = templates.Merge(w.templates, imported)
	return added, replaced, w.persist(storage.KeyTemplates)
}

// ExportTemplates writes the library as a YAML template pack.
func (w *Workspace) ExportTemplates(out io.Writer) error {
	return templates.WriteYAML(out, w.Templates())
}

// ResetTemplates restores the stock templates.
func (w *Workspace) ResetTemplates() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.templates = templates.Defaults()
	return w.persist(storage.KeyTemplates)
}

func (w *Workspace) AdvisorProfile() models.AdvisorProfile {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.profile
}

// ProfilePatch carries optional advisor profile updates.
type ProfilePatch struct {
	AdvisorName  *string
	ValueProp    *string
	CalendarLink *string
}

func (w *Workspace) UpdateAdvisorProfile(patch ProfilePatch) (models.AdvisorProfile, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if patch.AdvisorName != nil {
		w.profile.AdvisorName = *patch.AdvisorName
	}
	if patch.ValueProp != nil {
		w.profile.ValueProp = *patch.ValueProp
	}
	if patch.CalendarLink != nil {
		w.profile.CalendarLink = *patch.CalendarLink
	}
	return w.profile, w.persist(storage.KeyAdvisorProfile)
}

// Message is a rendered outreach message.
type Message struct {
	ReferralID string
	Template   models.Template
	Body       string
	// Unknown lists placeholders in the template that render as empty.
	Unknown []string
}

// RenderMessage renders templateID (the first template when empty) for a
// referral using the current advisor profile.
func (w *Workspace) RenderMessage(referralID, templateID string) (Message, error) {
	ref, ok := w.engine.Referral(referralID)
	if !ok {
		return Message{}, fmt.Errorf("%w: %s", ErrUnknownReferral, referralID)
	}

	w.mu.Lock()
	tpl, found := templates.Find(w.templates, templateID)
	profile := w.profile
	w.mu.Unlock()

	if !found {
		return Message{}, fmt.Errorf("%w: %s", ErrUnknownTemplate, templateID)
	}

	return Message{
		ReferralID: referralID,
		Template:   tpl,
		Body:       templates.Render(tpl.Body, templates.Vars(ref, profile)),
		Unknown:    templates.Unknown(tpl.Body),
	}, nil
}
