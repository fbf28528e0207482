// ABOUTME: Minimal client roster kept alongside the pipeline
// ABOUTME: Add, find, and delete clients; deletion drops the client's referrals
package workspace

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/harperreed/warmpath/models"
	"github.com/harperreed/warmpath/storage"
)

type ClientInput struct {
	Name       string
	Title      string
	ProfileURL string
	Notes      string
}

// AddClient adds a client with a fresh id.
func (w *Workspace) AddClient(in ClientInput) (models.Client, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return models.Client{}, fmt.Errorf("%w: name is required", ErrInvalidClient)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	c := models.Client{
		ID:         uuid.New().String(),
		Name:       name,
		Title:      in.Title,
		ProfileURL: in.ProfileURL,
		Notes:      in.Notes,
		CreatedAt:  w.engine.Now(),
	}
	w.clients = append(w.clients, c)
	return c, w.persist(storage.KeyClients)
}

// Clients returns the roster sorted by name.
func (w *Workspace) Clients() []models.Client {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := append([]models.Client(nil), w.clients...)
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

// FindClients returns clients whose name, title, or notes contain query.
func (w *Workspace) FindClients(query string) []models.Client {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []models.Client
	for _, c := range w.Clients() {
		if q == "" ||
			strings.Contains(strings.ToLower(c.Name), q) ||
			strings.Contains(strings.ToLower(c.Title), q) ||
			strings.Contains(strings.ToLower(c.Notes), q) {
			out = append(out, c)
		}
	}
	return out
}

func (w *Workspace) Client(id string) (models.Client, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	i := w.clientIndex(id)
	if i < 0 {
		return models.Client{}, false
	}
	return w.clients[i], true
}

func (w *Workspace) clientIndex(id string) int {
	for i, c := range w.clients {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// DeleteClient removes a client, their imported prospects, and every referral
// created for them. Tasks are left in place and show as orphaned.
func (w *Workspace) DeleteClient(id string) (removedReferrals int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	i := w.clientIndex(id)
	if i < 0 {
		return 0, fmt.Errorf("%w: %s", ErrUnknownClient, id)
	}
	w.clients = append(w.clients[:i], w.clients[i+1:]...)
	delete(w.prospects, id)
	removedReferrals = w.engine.RemoveClientReferrals(id)

	return removedReferrals, w.persist(storage.KeyClients, storage.KeyProspects, storage.KeyPipeline)
}
