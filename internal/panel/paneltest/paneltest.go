// Package paneltest provides in-memory fakes for testing panel hosts and the
// panel controller.
package paneltest

import (
	"context"
	"errors"
	"sync"

	"github.com/leapstack-labs/djhelper/internal/generator"
	"github.com/leapstack-labs/djhelper/internal/panel"
)

// Notification is one recorded user-visible notification.
type Notification struct {
	Error bool
	Text  string
}

// Host records everything a controller sends to it. Folder dialogs are
// answered from the Choices channel; a closed or empty answer means cancel.
type Host struct {
	Choices chan string

	mu            sync.Mutex
	messages      []panel.Message
	notifications []Notification
	dialogs       []string
}

// NewHost returns a Host whose folder dialog answers come from choices.
func NewHost() *Host {
	return &Host{Choices: make(chan string, 4)}
}

// PostMessage records msg.
func (h *Host) PostMessage(msg panel.Message) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, msg)
	return nil
}

// ShowInformation records an info notification.
func (h *Host) ShowInformation(text string) {
	h.notify(Notification{Text: text})
}

// ShowError records an error notification.
func (h *Host) ShowError(text string) {
	h.notify(Notification{Error: true, Text: text})
}

func (h *Host) notify(n Notification) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.notifications = append(h.notifications, n)
}

// ChooseFolder waits for the next value on Choices. An empty string cancels.
func (h *Host) ChooseFolder(ctx context.Context, start string) (string, bool, error) {
	h.mu.Lock()
	h.dialogs = append(h.dialogs, start)
	h.mu.Unlock()

	select {
	case <-ctx.Done():
		return "", false, ctx.Err()
	case path, ok := <-h.Choices:
		if !ok || path == "" {
			return "", false, nil
		}
		return path, true, nil
	}
}

// Messages returns the recorded outbound messages.
func (h *Host) Messages() []panel.Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]panel.Message(nil), h.messages...)
}

// Notifications returns the recorded notifications.
func (h *Host) Notifications() []Notification {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Notification(nil), h.notifications...)
}

// Errors returns the texts of recorded error notifications.
func (h *Host) Errors() []string {
	return h.filter(true)
}

// Infos returns the texts of recorded info notifications.
func (h *Host) Infos() []string {
	return h.filter(false)
}

func (h *Host) filter(isErr bool) []string {
	var out []string
	for _, n := range h.Notifications() {
		if n.Error == isErr {
			out = append(out, n.Text)
		}
	}
	return out
}

// Dialogs returns the start folders of every dialog opened.
func (h *Host) Dialogs() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.dialogs...)
}

// Workspace records folder insertions.
type Workspace struct {
	mu      sync.Mutex
	folders []string
	adds    []string
}

// NewWorkspace returns a workspace seeded with folders.
func NewWorkspace(folders ...string) *Workspace {
	return &Workspace{folders: folders}
}

// Folders returns the current folder list.
func (w *Workspace) Folders() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.folders...)
}

// AddFolder records the call and appends path.
func (w *Workspace) AddFolder(path string) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.adds = append(w.adds, path)
	w.folders = append(w.folders, path)
	return true, nil
}

// Adds returns every path passed to AddFolder, in call order.
func (w *Workspace) Adds() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.adds...)
}

// Runner is a generator.Runner that records invocations. A non-zero ExitCode
// makes every run fail with Stderr as the diagnostic text.
type Runner struct {
	ExitCode int
	Stderr   string
	// Gate, when set, blocks each run until a value is received.
	Gate chan struct{}

	mu    sync.Mutex
	calls []generator.Invocation
}

// Run records inv and returns the configured outcome.
func (r *Runner) Run(ctx context.Context, inv generator.Invocation) (*generator.Result, error) {
	r.mu.Lock()
	r.calls = append(r.calls, inv)
	r.mu.Unlock()

	if r.Gate != nil {
		select {
		case <-r.Gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	res := &generator.Result{Invocation: inv, Stderr: r.Stderr, ExitCode: r.ExitCode}
	if r.ExitCode != 0 {
		return res, &generator.ProcessError{
			Invocation: inv,
			ExitCode:   r.ExitCode,
			Stderr:     r.Stderr,
			Err:        errors.New("exit status"),
		}
	}
	return res, nil
}

// Calls returns the recorded invocations.
func (r *Runner) Calls() []generator.Invocation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]generator.Invocation(nil), r.calls...)
}
