// Package tui hosts the start project panel as a terminal form.
//
// The controller runs its folder dialog and generator calls on goroutines, so
// everything it sends to the terminal goes through the running program's
// message loop. Host is the bridge: it turns panel.Host calls into tea
// messages and waits for the model's answer to folder dialogs.
package tui

import (
	"context"
	"log/slog"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/leapstack-labs/djhelper/internal/panel"
)

// Sender delivers a message to a running program. *tea.Program satisfies it.
type Sender interface {
	Send(msg tea.Msg)
}

type (
	// postedMsg carries an outbound panel message to the model.
	postedMsg struct{ msg panel.Message }

	notifyMsg struct {
		isErr bool
		text  string
	}

	// pickerRequestMsg asks the model to open the folder picker.
	pickerRequestMsg struct {
		start string
		reply chan<- pickerReply
	}

	// pickerAbortMsg closes a picker whose dialog was cancelled by the
	// controller rather than the user.
	pickerAbortMsg struct{}

	pickerReply struct {
		path string
		ok   bool
	}
)

// Host implements panel.Host for the terminal form. Until a program is
// attached, and after it is detached, notifications go to the logger.
type Host struct {
	logger *slog.Logger

	mu     sync.Mutex
	sender Sender
}

// NewHost creates a detached host.
func NewHost(logger *slog.Logger) *Host {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Host{logger: logger}
}

// Attach routes everything to s.
func (h *Host) Attach(s Sender) {
	h.mu.Lock()
	h.sender = s
	h.mu.Unlock()
}

// Detach stops delivery to the program.
func (h *Host) Detach() {
	h.Attach(nil)
}

func (h *Host) current() Sender {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sender
}

// PostMessage implements panel.Host.
func (h *Host) PostMessage(msg panel.Message) error {
	if s := h.current(); s != nil {
		s.Send(postedMsg{msg: msg})
	}
	return nil
}

// ShowInformation implements panel.Host.
func (h *Host) ShowInformation(text string) {
	if s := h.current(); s != nil {
		s.Send(notifyMsg{text: text})
		return
	}
	h.logger.Info(text)
}

// ShowError implements panel.Host.
func (h *Host) ShowError(text string) {
	if s := h.current(); s != nil {
		s.Send(notifyMsg{isErr: true, text: text})
		return
	}
	h.logger.Error(text)
}

// ChooseFolder implements panel.Host by opening the picker in the form.
func (h *Host) ChooseFolder(ctx context.Context, start string) (string, bool, error) {
	s := h.current()
	if s == nil {
		return "", false, nil
	}

	reply := make(chan pickerReply, 1)
	s.Send(pickerRequestMsg{start: start, reply: reply})

	select {
	case <-ctx.Done():
		s.Send(pickerAbortMsg{})
		return "", false, ctx.Err()
	case r := <-reply:
		return r.path, r.ok, nil
	}
}
