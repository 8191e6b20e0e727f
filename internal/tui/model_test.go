package tui

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/djhelper/internal/generator"
	"github.com/leapstack-labs/djhelper/internal/panel"
	"github.com/leapstack-labs/djhelper/internal/panel/paneltest"
	"github.com/leapstack-labs/djhelper/internal/testutil"
)

type fakeHandler struct {
	mu   sync.Mutex
	msgs []panel.Message
	err  error
}

func (f *fakeHandler) HandleMessage(msg panel.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, msg)
	return f.err
}

func (f *fakeHandler) Messages() []panel.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]panel.Message(nil), f.msgs...)
}

// update feeds a non-key msg to m.
func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model
}

func press(t *testing.T, m Model, k tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(k)
	model, ok := next.(Model)
	require.True(t, ok)
	return model, cmd
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return m
}

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
	keyCtrlO = tea.KeyMsg{Type: tea.KeyCtrlO}
	keyDot   = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'.'}}
)

func TestModel_ReadyDispatches(t *testing.T) {
	h := &fakeHandler{}
	m := NewModel(h)

	next, cmd := m.Update(readyMsg{})
	require.NotNil(t, cmd)
	msg := cmd()

	_, ok := next.(Model)
	require.True(t, ok)
	assert.Equal(t, dispatchedMsg{command: panel.CommandReady}, msg)
	assert.Equal(t, []panel.Message{{Command: panel.CommandReady}}, h.Messages())
}

func TestModel_SelectedFolderFillsField(t *testing.T) {
	m := NewModel(&fakeHandler{})

	m = update(t, m, postedMsg{msg: panel.SelectedFolder("/tmp/work")})

	assert.Equal(t, "/tmp/work", m.Folder())
	assert.Contains(t, m.View(), "/tmp/work")
}

func TestModel_EnterSubmitsForm(t *testing.T) {
	h := &fakeHandler{}
	m := NewModel(h)
	m = update(t, m, postedMsg{msg: panel.SelectedFolder("/tmp/work")})
	m = typeText(t, m, "blog")

	_, cmd := press(t, m, keyEnter)
	require.NotNil(t, cmd)
	cmd()

	assert.Equal(t, []panel.Message{{
		Command:     panel.CommandCreateProject,
		ProjectName: "blog",
		FolderPath:  "/tmp/work",
	}}, h.Messages())
}

func TestModel_BrowseDispatchesChooseFolder(t *testing.T) {
	h := &fakeHandler{}
	m := NewModel(h)

	_, cmd := press(t, m, keyCtrlO)
	require.NotNil(t, cmd)
	cmd()

	assert.Equal(t, []panel.Message{{Command: panel.CommandChooseFolder}}, h.Messages())
}

func TestModel_Notifications(t *testing.T) {
	m := NewModel(&fakeHandler{})

	m = update(t, m, notifyMsg{isErr: true, text: "Project name cannot be empty."})
	m = update(t, m, notifyMsg{text: "Project 'blog' created successfully in /tmp/work."})

	view := m.View()
	assert.Contains(t, view, "Project name cannot be empty.")
	assert.Contains(t, view, "Project 'blog' created successfully in /tmp/work.")

	for i := 0; i < maxNotes+3; i++ {
		m = update(t, m, notifyMsg{text: "again"})
	}
	assert.Len(t, m.notes, maxNotes)
}

func TestModel_TabSwitchesToPlaceholder(t *testing.T) {
	h := &fakeHandler{}
	m := NewModel(h)

	m, _ = press(t, m, keyTab)
	assert.Contains(t, m.View(), "Coming soon...")

	_, cmd := press(t, m, keyEnter)
	assert.Nil(t, cmd, "create is not available on the placeholder tab")

	m, _ = press(t, m, keyTab)
	assert.Contains(t, m.View(), "Start a Django Project")
	assert.Empty(t, h.Messages())
}

func TestModel_QuitKey(t *testing.T) {
	m := NewModel(&fakeHandler{})

	m, cmd := press(t, m, keyEsc)

	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Empty(t, m.View())
}

func TestModel_ClosedPanelQuits(t *testing.T) {
	m := NewModel(&fakeHandler{})

	next, cmd := m.Update(dispatchedMsg{command: panel.CommandReady, err: panel.ErrPanelClosed})

	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.True(t, next.(Model).quitting)
}

func TestModel_PickerCancel(t *testing.T) {
	dir := t.TempDir()
	reply := make(chan pickerReply, 1)
	m := NewModel(&fakeHandler{})

	m = update(t, m, pickerRequestMsg{start: dir, reply: reply})
	require.True(t, m.picking)
	assert.Contains(t, m.View(), "Select Folder")
	assert.Contains(t, m.View(), dir)

	m, _ = press(t, m, keyEsc)

	assert.False(t, m.picking)
	assert.Equal(t, pickerReply{}, <-reply)
}

func TestModel_PickerSelectCurrent(t *testing.T) {
	dir := t.TempDir()
	reply := make(chan pickerReply, 1)
	m := NewModel(&fakeHandler{})

	m = update(t, m, pickerRequestMsg{start: dir, reply: reply})
	m, _ = press(t, m, keyDot)

	assert.False(t, m.picking)
	assert.Equal(t, pickerReply{path: dir, ok: true}, <-reply)
}

func TestModel_PickerAbort(t *testing.T) {
	reply := make(chan pickerReply, 1)
	m := NewModel(&fakeHandler{})

	m = update(t, m, pickerRequestMsg{start: t.TempDir(), reply: reply})
	m = update(t, m, pickerAbortMsg{})

	assert.False(t, m.picking)
	assert.Empty(t, reply)
}

func TestPickerStart(t *testing.T) {
	dir := t.TempDir()

	assert.Equal(t, dir, pickerStart(dir))
	assert.NotEmpty(t, pickerStart(""))
	assert.NotEqual(t, dir+"/missing", pickerStart(dir+"/missing"))
}

// =============================================================================
// Host Tests
// =============================================================================

func newTestGenerator(t *testing.T, runner generator.Runner) *generator.Generator {
	t.Helper()
	return generator.New(generator.Config{
		InPlace: true,
		Runner:  runner,
		Logger:  testutil.NewTestLogger(t),
	})
}

type recordingSender struct {
	mu   sync.Mutex
	msgs []tea.Msg
	sent chan tea.Msg
}

func newRecordingSender() *recordingSender {
	return &recordingSender{sent: make(chan tea.Msg, 16)}
}

func (s *recordingSender) Send(msg tea.Msg) {
	s.mu.Lock()
	s.msgs = append(s.msgs, msg)
	s.mu.Unlock()
	s.sent <- msg
}

func TestHost_ForwardsToProgram(t *testing.T) {
	s := newRecordingSender()
	h := NewHost(testutil.NewTestLogger(t))
	h.Attach(s)

	require.NoError(t, h.PostMessage(panel.SelectedFolder("/tmp/work")))
	h.ShowInformation("done")
	h.ShowError("failed")

	assert.Equal(t, postedMsg{msg: panel.SelectedFolder("/tmp/work")}, <-s.sent)
	assert.Equal(t, notifyMsg{text: "done"}, <-s.sent)
	assert.Equal(t, notifyMsg{isErr: true, text: "failed"}, <-s.sent)
}

func TestHost_DetachedLogs(t *testing.T) {
	logger, buf := testutil.NewBufferLogger()
	h := NewHost(logger)

	require.NoError(t, h.PostMessage(panel.SelectedFolder("/tmp/work")))
	h.ShowError("Error: boom")

	assert.Contains(t, buf.String(), "Error: boom")
	path, ok, err := h.ChooseFolder(context.Background(), "/tmp")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, path)
}

func TestHost_ChooseFolder(t *testing.T) {
	s := newRecordingSender()
	h := NewHost(nil)
	h.Attach(s)

	go func() {
		req := (<-s.sent).(pickerRequestMsg)
		req.reply <- pickerReply{path: "/tmp/picked", ok: true}
	}()

	path, ok, err := h.ChooseFolder(context.Background(), "/tmp")

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "/tmp/picked", path)
}

func TestHost_ChooseFolderCancelled(t *testing.T) {
	s := newRecordingSender()
	h := NewHost(nil)
	h.Attach(s)
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		<-s.sent
		cancel()
	}()

	_, ok, err := h.ChooseFolder(ctx, "/tmp")

	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, ok)
	select {
	case msg := <-s.sent:
		assert.Equal(t, pickerAbortMsg{}, msg)
	case <-time.After(time.Second):
		t.Fatal("expected the picker to be closed")
	}
}

// TestHost_WithController drives a real controller through the host and a
// model, the way Run wires them.
func TestHost_WithController(t *testing.T) {
	s := newRecordingSender()
	host := NewHost(testutil.NewTestLogger(t))
	host.Attach(s)
	runner := &paneltest.Runner{}
	ctrl := panel.New(panel.Config{
		Host:      host,
		Workspace: paneltest.NewWorkspace("/tmp/work"),
		Generator: newTestGenerator(t, runner),
	})
	t.Cleanup(func() {
		ctrl.Close()
		ctrl.Wait()
	})

	m := NewModel(ctrl)
	_, cmd := m.Update(readyMsg{})
	cmd()

	m = update(t, m, <-s.sent)
	assert.Equal(t, "/tmp/work", m.Folder())

	m = typeText(t, m, "blog")
	_, cmd = press(t, m, keyEnter)
	cmd()

	assert.Equal(t, notifyMsg{text: "Project 'blog' created successfully in /tmp/work."}, <-s.sent)
	require.Len(t, runner.Calls(), 1)
	assert.Equal(t, "/tmp/work", runner.Calls()[0].Dir)
}
