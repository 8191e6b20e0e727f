package startproject

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/a-h/templ"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/djhelper/internal/panel"
)

const (
	outboxSize = 64
	maxToasts  = 5
)

var (
	errOutboxFull  = errors.New("panel event queue is full")
	errNoDialog    = errors.New("no folder dialog is open")
	errNotADirPath = errors.New("not a directory")
)

// event is one queued server push for a session's stream.
type event func(sse *datastar.ServerSentEventGenerator) error

// Session is the web host of one panel: it queues outbound messages and
// notifications for the page's SSE stream and runs the folder picker.
type Session struct {
	id     string
	ctrl   *panel.Controller
	outbox chan event
	logger *slog.Logger

	mu     sync.Mutex
	toasts []Toast
	nextID int
	picker *pickerState
}

// pickerState is an open folder dialog waiting for the user.
type pickerState struct {
	dir    string
	result chan string // "" means cancel
}

func newSession(id string, logger *slog.Logger) *Session {
	return &Session{
		id:     id,
		outbox: make(chan event, outboxSize),
		logger: logger,
	}
}

// ID returns the panel session ID.
func (s *Session) ID() string {
	return s.id
}

// Controller returns the session's panel controller.
func (s *Session) Controller() *panel.Controller {
	return s.ctrl
}

func (s *Session) enqueue(ev event) error {
	select {
	case s.outbox <- ev:
		return nil
	default:
		return errOutboxFull
	}
}

func (s *Session) patch(c templ.Component) error {
	return s.enqueue(func(sse *datastar.ServerSentEventGenerator) error {
		return sse.PatchElementTempl(c)
	})
}

// PostMessage implements panel.Host. selectedFolder becomes a signal patch
// of the form's folderPath.
func (s *Session) PostMessage(msg panel.Message) error {
	switch msg.Command {
	case panel.CommandSelectedFolder:
		signals := FolderSignals{FolderPath: msg.FolderPath}
		return s.enqueue(func(sse *datastar.ServerSentEventGenerator) error {
			return sse.MarshalAndPatchSignals(signals)
		})
	default:
		s.logger.Debug("dropping outbound message", "command", msg.Command)
		return nil
	}
}

// ShowInformation implements panel.Host.
func (s *Session) ShowInformation(text string) {
	s.notify(ToastInfo, text)
}

// ShowError implements panel.Host.
func (s *Session) ShowError(text string) {
	s.notify(ToastError, text)
}

func (s *Session) notify(kind ToastKind, text string) {
	s.mu.Lock()
	s.nextID++
	s.toasts = append(s.toasts, Toast{ID: s.nextID, Kind: kind, Text: text})
	if len(s.toasts) > maxToasts {
		s.toasts = s.toasts[len(s.toasts)-maxToasts:]
	}
	toasts := append([]Toast(nil), s.toasts...)
	s.mu.Unlock()

	if err := s.patch(Toasts(s.id, toasts)); err != nil {
		s.logger.Warn("failed to queue notification", "text", text, "error", err)
	}
}

// Toasts returns the current notifications, oldest first.
func (s *Session) Toasts() []Toast {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Toast(nil), s.toasts...)
}

// dismissToast removes the notification with the given ID.
func (s *Session) dismissToast(id int) {
	s.mu.Lock()
	kept := s.toasts[:0]
	for _, t := range s.toasts {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	s.toasts = kept
	toasts := append([]Toast(nil), s.toasts...)
	s.mu.Unlock()

	_ = s.patch(Toasts(s.id, toasts))
}

// ChooseFolder implements panel.Host by opening the server-side folder
// picker in the page and waiting for the user to select or cancel.
func (s *Session) ChooseFolder(ctx context.Context, start string) (string, bool, error) {
	dir := pickerStart(start)
	state := &pickerState{dir: dir, result: make(chan string, 1)}

	s.mu.Lock()
	s.picker = state
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if s.picker == state {
			s.picker = nil
		}
		s.mu.Unlock()
		_ = s.patch(PickerClosed())
	}()

	if err := s.patch(s.pickerView(dir)); err != nil {
		return "", false, err
	}

	select {
	case <-ctx.Done():
		return "", false, ctx.Err()
	case path := <-state.result:
		if path == "" {
			return "", false, nil
		}
		return path, true, nil
	}
}

// PickerDir returns the directory shown by the open picker.
func (s *Session) PickerDir() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.picker == nil {
		return "", false
	}
	return s.picker.dir, true
}

// navigate moves the open picker to dir.
func (s *Session) navigate(dir string) error {
	dir = filepath.Clean(dir)
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return errNotADirPath
	}

	s.mu.Lock()
	if s.picker == nil {
		s.mu.Unlock()
		return errNoDialog
	}
	s.picker.dir = dir
	s.mu.Unlock()

	return s.patch(s.pickerView(dir))
}

// resolve answers the open picker. An empty path cancels it.
func (s *Session) resolve(selectCurrent bool) (string, error) {
	s.mu.Lock()
	state := s.picker
	s.picker = nil
	s.mu.Unlock()

	if state == nil {
		return "", errNoDialog
	}

	path := ""
	if selectCurrent {
		path = state.dir
	}
	state.result <- path
	return path, nil
}

func (s *Session) pickerView(dir string) templ.Component {
	entries, err := listDirs(dir)
	return Picker(PickerData{
		PanelID: s.id,
		Dir:     dir,
		Parent:  parentDir(dir),
		Entries: entries,
		Err:     err,
	})
}
