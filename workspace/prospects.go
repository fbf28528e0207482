// ABOUTME: Prospect import for a client's professional network
// ABOUTME: Accepts JSON exports with alternate field names and assigns ids
package workspace

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/harperreed/warmpath/models"
	"github.com/harperreed/warmpath/storage"
)

// ImportedProspectPrefix starts every id assigned during import.
const ImportedProspectPrefix = "imp-"

type importedProspect struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Title        string `json:"title"`
	Position     string `json:"position"`
	Company      string `json:"company"`
	Organization string `json:"organization"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	LinkedinURL  string `json:"linkedinUrl"`
	ProfileURL   string `json:"profileUrl"`
	Industry     string `json:"industry"`
	Location     string `json:"location"`
}

func (p importedProspect) prospect() models.Prospect {
	return models.Prospect{
		ID:         strings.TrimSpace(p.ID),
		Name:       strings.TrimSpace(p.Name),
		Title:      firstNonEmpty(p.Title, p.Position),
		Company:    firstNonEmpty(p.Company, p.Organization),
		Email:      strings.TrimSpace(p.Email),
		Phone:      strings.TrimSpace(p.Phone),
		ProfileURL: firstNonEmpty(p.LinkedinURL, p.ProfileURL),
		Industry:   strings.TrimSpace(p.Industry),
		Location:   strings.TrimSpace(p.Location),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// ImportResult reports what an import changed.
type ImportResult struct {
	Added      int
	Duplicates int
	Skipped    int
}

// ImportProspects reads a JSON array of prospects into clientID's network.
// Entries without a name are skipped; entries whose id is already known are
// counted as duplicates.
func (w *Workspace) ImportProspects(clientID string, r io.Reader) (ImportResult, error) {
	var raw []importedProspect
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return ImportResult{}, fmt.Errorf("failed to decode prospects: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.clientIndex(clientID) < 0 {
		return ImportResult{}, fmt.Errorf("%w: %s", ErrUnknownClient, clientID)
	}

	existing := w.prospects[clientID]
	known := make(map[string]bool, len(existing))
	for _, p := range existing {
		known[p.ID] = true
	}

	var result ImportResult
	for _, item := range raw {
		p := item.prospect()
		if p.Name == "" {
			result.Skipped++
			continue
		}
		if p.ID == "" {
			p.ID = ImportedProspectPrefix + uuid.New().String()
		}
		if known[p.ID] {
			result.Duplicates++
			continue
		}
		known[p.ID] = true
		existing = append(existing, p)
		result.Added++
	}
	w.prospects[clientID] = existing

	if result.Added == 0 {
		return result, nil
	}
	return result, w.persist(storage.KeyProspects)
}

// Prospects returns the imported network for clientID in import order.
func (w *Workspace) Prospects(clientID string) []models.Prospect {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]models.Prospect(nil), w.prospects[clientID]...)
}

func (w *Workspace) prospect(clientID, prospectID string) (models.Prospect, bool) {
	for _, p := range w.prospects[clientID] {
		if p.ID == prospectID {
			return p, true
		}
	}
	return models.Prospect{}, false
}
