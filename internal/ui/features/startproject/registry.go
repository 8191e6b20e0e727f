package startproject

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/leapstack-labs/djhelper/internal/panel"
)

// Registry tracks the open panel sessions of the web host. A session whose
// event stream is not attached is disposed after a grace period.
type Registry struct {
	disposeAfter time.Duration
	logger       *slog.Logger

	mu       sync.Mutex
	sessions map[string]*entry
	// draining tracks disposed controllers with work still in flight.
	draining sync.WaitGroup
}

type entry struct {
	session  *Session
	attached int
	timer    *time.Timer
}

// DefaultDisposeAfter is the grace period used when none is configured.
const DefaultDisposeAfter = 30 * time.Second

// NewRegistry creates an empty registry.
func NewRegistry(disposeAfter time.Duration, logger *slog.Logger) *Registry {
	if disposeAfter <= 0 {
		disposeAfter = DefaultDisposeAfter
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Registry{
		disposeAfter: disposeAfter,
		logger:       logger,
		sessions:     make(map[string]*entry),
	}
}

// Open creates a session and its controller. newController receives the
// session as the panel host.
func (reg *Registry) Open(newController func(id string, host panel.Host) *panel.Controller) *Session {
	id := uuid.NewString()
	s := newSession(id, reg.logger.With("panel", id))
	s.ctrl = newController(id, s)

	e := &entry{session: s}
	reg.mu.Lock()
	reg.sessions[id] = e
	reg.scheduleLocked(id, e)
	reg.mu.Unlock()

	reg.logger.Debug("panel opened", "panel", id)
	return s
}

// Get returns the open session with the given ID.
func (reg *Registry) Get(id string) (*Session, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	e, ok := reg.sessions[id]
	if !ok {
		return nil, false
	}
	return e.session, true
}

// Len returns the number of open sessions.
func (reg *Registry) Len() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.sessions)
}

// Attach marks an event stream as connected and cancels pending disposal.
func (reg *Registry) Attach(id string) bool {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	e, ok := reg.sessions[id]
	if !ok {
		return false
	}
	e.attached++
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	return true
}

// Detach marks an event stream as gone. The session is disposed once no
// stream has reattached within the grace period.
func (reg *Registry) Detach(id string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	e, ok := reg.sessions[id]
	if !ok {
		return
	}
	if e.attached > 0 {
		e.attached--
	}
	if e.attached == 0 {
		reg.scheduleLocked(id, e)
	}
}

// Touch restarts the grace period of a session with no attached stream, so
// clients that only post messages keep their panel alive while active.
func (reg *Registry) Touch(id string) bool {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	e, ok := reg.sessions[id]
	if !ok {
		return false
	}
	if e.attached == 0 {
		reg.scheduleLocked(id, e)
	}
	return true
}

func (reg *Registry) scheduleLocked(id string, e *entry) {
	if e.timer != nil {
		e.timer.Stop()
	}
	e.timer = time.AfterFunc(reg.disposeAfter, func() {
		reg.dispose(id, e)
	})
}

func (reg *Registry) dispose(id string, e *entry) {
	reg.mu.Lock()
	current, ok := reg.sessions[id]
	if !ok || current != e || e.attached > 0 {
		reg.mu.Unlock()
		return
	}
	delete(reg.sessions, id)
	reg.mu.Unlock()

	reg.close(e.session.ctrl)
	reg.logger.Debug("panel disposed", "panel", id)
}

func (reg *Registry) close(ctrl *panel.Controller) {
	ctrl.Close()
	reg.draining.Add(1)
	go func() {
		defer reg.draining.Done()
		ctrl.Wait()
	}()
}

// CloseAll disposes every session and waits for their in-flight work.
func (reg *Registry) CloseAll() {
	reg.mu.Lock()
	ctrls := make([]*panel.Controller, 0, len(reg.sessions))
	for id, e := range reg.sessions {
		if e.timer != nil {
			e.timer.Stop()
		}
		ctrls = append(ctrls, e.session.ctrl)
		delete(reg.sessions, id)
	}
	reg.mu.Unlock()

	for _, c := range ctrls {
		reg.close(c)
	}
	reg.draining.Wait()
}
