// Package startproject provides the "start project" panel feature for the UI.
package startproject

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/djhelper/internal/generator"
	"github.com/leapstack-labs/djhelper/internal/panel"
	"github.com/leapstack-labs/djhelper/internal/ui/notifier"
	"github.com/leapstack-labs/djhelper/internal/workspace"
)

const (
	// Browser session cookie holding the last folder chosen in the picker.
	sessionName     = "djhelper"
	lastFolderKey   = "last_folder"
	pageTitle       = "Start Project"
	contentTypeJSON = "application/json"
)

// Config holds the dependencies of the feature.
type Config struct {
	Workspace    *workspace.Store
	Generator    panel.Creator
	Registry     *Registry
	SessionStore sessions.Store
	Notifier     *notifier.Notifier
	DatastarURL  string
	IsDev        bool
	Logger       *slog.Logger
}

// Handlers provides HTTP handlers for the start project feature.
type Handlers struct {
	workspace    *workspace.Store
	panelSpace   panel.Workspace
	generator    panel.Creator
	registry     *Registry
	sessionStore sessions.Store
	notifier     *notifier.Notifier
	datastarURL  string
	isDev        bool
	logger       *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(cfg Config) *Handlers {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	notify := cfg.Notifier
	if notify == nil {
		notify = notifier.New()
	}
	registry := cfg.Registry
	if registry == nil {
		registry = NewRegistry(0, logger)
	}
	return &Handlers{
		workspace:    cfg.Workspace,
		panelSpace:   broadcastWorkspace{Store: cfg.Workspace, notify: notify},
		generator:    cfg.Generator,
		registry:     registry,
		sessionStore: cfg.SessionStore,
		notifier:     notify,
		datastarURL:  cfg.DatastarURL,
		isDev:        cfg.IsDev,
		logger:       logger,
	}
}

// broadcastWorkspace pings every open page when a folder is inserted.
type broadcastWorkspace struct {
	*workspace.Store
	notify *notifier.Notifier
}

func (w broadcastWorkspace) AddFolder(path string) (bool, error) {
	added, err := w.Store.AddFolder(path)
	if added {
		w.notify.Broadcast()
	}
	return added, err
}

// Registry returns the session registry.
func (h *Handlers) Registry() *Registry {
	return h.registry
}

// Page opens a new panel session and renders its form.
func (h *Handlers) Page(w http.ResponseWriter, r *http.Request) {
	defaultFolder := ""
	if _, ok := h.workspace.First(); !ok {
		defaultFolder = h.lastFolder(r)
	}

	s := h.registry.Open(func(id string, host panel.Host) *panel.Controller {
		return panel.New(panel.Config{
			ID:            id,
			Host:          host,
			Workspace:     h.panelSpace,
			Generator:     h.generator,
			DefaultFolder: defaultFolder,
			Logger:        h.logger,
		})
	})

	data := PageData{
		PanelID:     s.ID(),
		Title:       pageTitle,
		DatastarURL: h.datastarURL,
		IsDev:       h.isDev,
		Workspace:   h.workspaceFolders(),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := Page(data).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Events is the long-lived SSE stream of one panel. Attaching the stream is
// the form's ready signal; queued messages and notifications are delivered in
// order, and workspace changes re-render the folder list.
func (h *Handlers) Events(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if !h.registry.Attach(s.ID()) {
		http.NotFound(w, r)
		return
	}
	defer h.registry.Detach(s.ID())

	sse := datastar.NewSSE(w, r)

	updates := h.notifier.Subscribe()
	defer h.notifier.Unsubscribe(updates)

	if err := s.ctrl.HandleMessage(panel.Message{Command: panel.CommandReady}); err != nil {
		_ = sse.ConsoleError(err)
		return
	}

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.ctrl.Done():
			return
		case ev := <-s.outbox:
			if err := ev(sse); err != nil {
				h.logger.Debug("event stream write failed", "panel", s.ID(), "error", err)
				return
			}
		case <-updates:
			if err := sse.PatchElementTempl(WorkspaceList(h.workspaceFolders())); err != nil {
				_ = sse.ConsoleError(err)
			}
		}
	}
}

// Ready handles an explicit ready message from clients that push the
// default folder themselves.
func (h *Handlers) Ready(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, panel.Message{Command: panel.CommandReady})
}

// ChooseFolder opens the folder picker.
func (h *Handlers) ChooseFolder(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, panel.Message{Command: panel.CommandChooseFolder})
}

// Create submits the form.
func (h *Handlers) Create(w http.ResponseWriter, r *http.Request) {
	// Read signals BEFORE creating SSE (SSE consumes the request body)
	var signals CreateSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		http.Error(w, "failed to read signals: "+err.Error(), http.StatusBadRequest)
		return
	}

	h.dispatch(w, r, panel.Message{
		Command:     panel.CommandCreateProject,
		ProjectName: signals.ProjectName,
		FolderPath:  signals.FolderPath,
	})
}

func (h *Handlers) dispatch(w http.ResponseWriter, r *http.Request, msg panel.Message) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	err := s.ctrl.HandleMessage(msg)
	if errors.Is(err, panel.ErrPanelClosed) {
		http.Error(w, err.Error(), http.StatusGone)
		return
	}
	// Validation failures were already shown to the user as notifications.
	datastar.NewSSE(w, r)
}

// Messages accepts a raw JSON panel message, for clients that do not speak
// datastar. Each post restarts the panel's grace period. Asynchronous
// outcomes (selectedFolder, notifications) are still delivered on the
// panel's event stream; without one they stay in the bounded queue.
func (h *Handlers) Messages(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	h.registry.Touch(s.ID())

	var msg panel.Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid message: "+err.Error())
		return
	}

	err := s.ctrl.HandleMessage(msg)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusAccepted)
	case errors.Is(err, panel.ErrPanelClosed):
		writeJSONError(w, http.StatusGone, err.Error())
	case errors.Is(err, panel.ErrUnknownCommand):
		writeJSONError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, generator.ErrNoFolder), errors.Is(err, generator.ErrEmptyProjectName):
		writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeJSONError(w, http.StatusInternalServerError, err.Error())
	}
}

// PickerOpen navigates the open folder picker to ?path=.
func (h *Handlers) PickerOpen(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	path := r.URL.Query().Get("path")
	if path == "" {
		http.Error(w, "path is required", http.StatusBadRequest)
		return
	}
	if err := s.navigate(path); err != nil {
		if errors.Is(err, errNoDialog) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	datastar.NewSSE(w, r)
}

// PickerSelect chooses the folder the picker is showing.
func (h *Handlers) PickerSelect(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	dir, open := s.PickerDir()
	if !open {
		http.Error(w, errNoDialog.Error(), http.StatusConflict)
		return
	}

	// The cookie must be written before the SSE response starts.
	h.saveLastFolder(w, r, dir)

	if _, err := s.resolve(true); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	datastar.NewSSE(w, r)
}

// PickerCancel closes the picker without a selection.
func (h *Handlers) PickerCancel(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if _, err := s.resolve(false); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	datastar.NewSSE(w, r)
}

// DismissToast removes one notification.
func (h *Handlers) DismissToast(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	id, err := strconv.Atoi(chi.URLParam(r, "toast"))
	if err != nil {
		http.Error(w, "invalid toast id", http.StatusBadRequest)
		return
	}
	s.dismissToast(id)
	datastar.NewSSE(w, r)
}

// session resolves the {id} URL parameter, writing 404 when unknown.
func (h *Handlers) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	s, ok := h.registry.Get(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "panel not found", http.StatusNotFound)
		return nil, false
	}
	return s, true
}

func (h *Handlers) workspaceFolders() []WorkspaceFolder {
	entries := h.workspace.Entries()
	folders := make([]WorkspaceFolder, 0, len(entries))
	for _, e := range entries {
		folders = append(folders, WorkspaceFolder{Name: e.Name, Path: e.Path})
	}
	return folders
}

func (h *Handlers) lastFolder(r *http.Request) string {
	if h.sessionStore == nil {
		return ""
	}
	sess, err := h.sessionStore.Get(r, sessionName)
	if err != nil {
		return ""
	}
	folder, _ := sess.Values[lastFolderKey].(string)
	return folder
}

func (h *Handlers) saveLastFolder(w http.ResponseWriter, r *http.Request, folder string) {
	if h.sessionStore == nil {
		return
	}
	// A decode error still yields a fresh session to save into.
	sess, _ := h.sessionStore.Get(r, sessionName)
	sess.Values[lastFolderKey] = folder
	if err := sess.Save(r, w); err != nil {
		h.logger.Warn("failed to save browser session", "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
