// ABOUTME: Interactive session owning the engine and every persisted collection
// ABOUTME: Routes mutations through the engine, then saves and records persistence warnings
package workspace

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/harperreed/warmpath/models"
	"github.com/harperreed/warmpath/pipeline"
	"github.com/harperreed/warmpath/storage"
	"github.com/harperreed/warmpath/templates"
)

var (
	ErrPersistence     = errors.New("persistence failed")
	ErrUnknownClient   = errors.New("unknown client")
	ErrUnknownReferral = errors.New("unknown referral")
	ErrUnknownTemplate = errors.New("unknown template")
	ErrInvalidClient   = errors.New("invalid client")
)

// Workspace is one advisor's session. It is safe for concurrent use.
type Workspace struct {
	mu     sync.Mutex
	store  *storage.Store
	engine *pipeline.Engine
	logger *log.Logger

	clients   []models.Client
	prospects map[string][]models.Prospect
	templates []models.Template
	profile   models.AdvisorProfile
	warnings  []string
}

// Open loads every collection from store into a new engine built from opts.
func Open(store *storage.Store, opts pipeline.Options, logger *log.Logger) *Workspace {
	if logger == nil {
		logger = log.Default()
	}
	ws := &Workspace{
		store:  store,
		engine: pipeline.NewEngine(opts),
		logger: logger.WithPrefix("workspace"),
	}
	ws.load()
	return ws
}

func (w *Workspace) load() {
	w.clients = storage.Load(w.store, storage.KeyClients, []models.Client{})
	w.prospects = storage.Load(w.store, storage.KeyProspects, map[string][]models.Prospect{})
	if w.prospects == nil {
		w.prospects = map[string][]models.Prospect{}
	}
	w.templates = storage.Load(w.store, storage.KeyTemplates, templates.Defaults())
	if len(w.templates) == 0 {
		w.templates = templates.Defaults()
	}
	w.profile = storage.Load(w.store, storage.KeyAdvisorProfile, models.DefaultAdvisorProfile())

	refs := storage.Load(w.store, storage.KeyPipeline, []models.Referral{})
	tasks := storage.Load(w.store, storage.KeyTasks, []models.Task{})
	w.engine.Restore(refs, tasks)

	w.logger.Debug("loaded",
		"clients", len(w.clients),
		"referrals", len(refs),
		"tasks", len(tasks),
		"templates", len(w.templates))
}

// Reload discards in-memory state and reads everything from storage again.
func (w *Workspace) Reload() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.load()
}

// Engine exposes the underlying engine for read-only queries.
func (w *Workspace) Engine() *pipeline.Engine {
	return w.engine
}

func (w *Workspace) Today() models.Date {
	return w.engine.Today()
}

// Warnings returns persistence warnings recorded so far.
func (w *Workspace) Warnings() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.warnings...)
}

// LastWarning returns the most recent persistence warning, or "".
func (w *Workspace) LastWarning() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.warnings) == 0 {
		return ""
	}
	return w.warnings[len(w.warnings)-1]
}

// persist saves the named collections. Callers hold w.mu. Every key is
// attempted; failures are recorded as warnings and returned wrapped in
// ErrPersistence.
func (w *Workspace) persist(keys ...string) error {
	var errs []error
	var refs []models.Referral
	var tasks []models.Task
	snapshotted := false

	for _, key := range keys {
		var value any
		switch key {
		case storage.KeyClients:
			value = w.clients
		case storage.KeyProspects:
			value = w.prospects
		case storage.KeyTemplates:
			value = w.templates
		case storage.KeyAdvisorProfile:
			value = w.profile
		case storage.KeyPipeline, storage.KeyTasks:
			if !snapshotted {
				refs, tasks = w.engine.Snapshot()
				snapshotted = true
			}
			if key == storage.KeyPipeline {
				value = refs
			} else {
				value = tasks
			}
		default:
			continue
		}
		if err := w.store.Save(key, value); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) == 0 {
		return nil
	}
	err := errors.Join(errs...)
	w.warnings = append(w.warnings, fmt.Sprintf("%s: %v", w.engine.Now().Format(time.Kitchen), err))
	return fmt.Errorf("%w: %w", ErrPersistence, err)
}
