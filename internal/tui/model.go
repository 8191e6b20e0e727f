package tui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/leapstack-labs/djhelper/internal/panel"
)

const maxNotes = 5

// MessageHandler receives the form's inbound messages.
// *panel.Controller satisfies it.
type MessageHandler interface {
	HandleMessage(msg panel.Message) error
}

type tab int

const (
	tabStart tab = iota
	tabVenv
)

type note struct {
	isErr bool
	text  string
}

type (
	readyMsg struct{}

	// dispatchedMsg reports that the controller has taken a message.
	dispatchedMsg struct {
		command panel.Command
		err     error
	}
)

// Model is the terminal form of one panel.
type Model struct {
	handler MessageHandler
	keys    keyMap
	help    help.Model
	styles  styles

	tab    tab
	name   textinput.Model
	folder string
	notes  []note

	picking bool
	picker  filepicker.Model
	reply   chan<- pickerReply

	quitting bool
}

// NewModel creates the form. Messages are handed to h on command
// goroutines, never from Update.
func NewModel(h MessageHandler) Model {
	name := textinput.New()
	name.Placeholder = "mysite"
	name.Prompt = "> "
	name.CharLimit = 128
	name.Focus()

	return Model{
		handler: h,
		keys:    defaultKeyMap(),
		help:    help.New(),
		styles:  defaultStyles(),
		name:    name,
	}
}

// Folder returns the value of the read-only folder field.
func (m Model) Folder() string {
	return m.folder
}

// Init reports the form as ready once the program is running.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, func() tea.Msg { return readyMsg{} })
}

func (m Model) dispatch(msg panel.Message) tea.Cmd {
	h := m.handler
	return func() tea.Msg {
		return dispatchedMsg{command: msg.Command, err: h.HandleMessage(msg)}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width

	case readyMsg:
		return m, m.dispatch(panel.Message{Command: panel.CommandReady})

	case postedMsg:
		if msg.msg.Command == panel.CommandSelectedFolder {
			m.folder = msg.msg.FolderPath
		}
		return m, nil

	case notifyMsg:
		m.notes = append(m.notes, note{isErr: msg.isErr, text: msg.text})
		if len(m.notes) > maxNotes {
			m.notes = m.notes[len(m.notes)-maxNotes:]
		}
		return m, nil

	case pickerRequestMsg:
		return m.openPicker(msg)

	case pickerAbortMsg:
		m.closePicker()
		return m, nil

	case dispatchedMsg:
		if errors.Is(msg.err, panel.ErrPanelClosed) {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	case tea.KeyMsg:
		if m.picking {
			return m.updatePicker(msg)
		}
		return m.updateForm(msg)
	}

	return m.forward(msg)
}

// forward passes non-key messages (blink ticks, directory reads, resizes)
// to the child components.
func (m Model) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	if m.picking {
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		cmds = append(cmds, cmd)
	}
	var cmd tea.Cmd
	m.name, cmd = m.name.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.NextTab):
		if m.tab == tabStart {
			m.tab = tabVenv
			m.name.Blur()
			return m, nil
		}
		m.tab = tabStart
		return m, m.name.Focus()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	if m.tab != tabStart {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Create):
		return m, m.dispatch(panel.Message{
			Command:     panel.CommandCreateProject,
			ProjectName: m.name.Value(),
			FolderPath:  m.folder,
		})
	case key.Matches(msg, m.keys.Browse):
		return m, m.dispatch(panel.Message{Command: panel.CommandChooseFolder})
	}

	var cmd tea.Cmd
	m.name, cmd = m.name.Update(msg)
	return m, cmd
}

func (m Model) openPicker(msg pickerRequestMsg) (tea.Model, tea.Cmd) {
	if m.reply != nil {
		m.reply <- pickerReply{}
	}

	fp := filepicker.New()
	fp.DirAllowed = true
	fp.FileAllowed = false
	fp.ShowHidden = false
	fp.CurrentDirectory = pickerStart(msg.start)

	m.picker = fp
	m.picking = true
	m.reply = msg.reply
	m.name.Blur()
	return m, m.picker.Init()
}

func (m Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.answer(pickerReply{})
		return m, m.name.Focus()
	case key.Matches(msg, m.keys.SelectCurrent):
		m.answer(pickerReply{path: m.picker.CurrentDirectory, ok: true})
		return m, m.name.Focus()
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.answer(pickerReply{path: path, ok: true})
		return m, m.name.Focus()
	}
	return m, cmd
}

// answer resolves the pending folder dialog and closes the picker.
func (m *Model) answer(r pickerReply) {
	if m.reply != nil {
		m.reply <- r
	}
	m.closePicker()
}

func (m *Model) closePicker() {
	m.picking = false
	m.reply = nil
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.styles.Brand.Render("djhelper"))
	b.WriteString("  ")
	b.WriteString(m.tabsView())
	b.WriteString("\n\n")

	switch {
	case m.picking:
		b.WriteString(m.styles.Title.Render("Select Folder"))
		b.WriteString("\n")
		b.WriteString(m.styles.Muted.Render(m.picker.CurrentDirectory))
		b.WriteString("\n\n")
		b.WriteString(m.picker.View())
		b.WriteString("\n")
		b.WriteString(m.help.View(pickerHelp{keys: m.keys}))
		return m.styles.Frame.Render(b.String())

	case m.tab == tabVenv:
		b.WriteString(m.styles.Title.Render("Activate Virtual Env"))
		b.WriteString("\n")
		b.WriteString(m.styles.Muted.Render("Coming soon..."))
		b.WriteString("\n")

	default:
		b.WriteString(m.styles.Title.Render("Start a Django Project"))
		b.WriteString("\n")
		b.WriteString(m.styles.Label.Render("Project Name"))
		b.WriteString("\n")
		b.WriteString(m.name.View())
		b.WriteString("\n\n")
		b.WriteString(m.styles.Label.Render("Folder"))
		b.WriteString("\n")
		if m.folder == "" {
			b.WriteString(m.styles.Muted.Render("No folder selected"))
		} else {
			b.WriteString(m.styles.Value.Render(m.folder))
		}
		b.WriteString("\n")
	}

	if len(m.notes) > 0 {
		b.WriteString("\n")
		for _, n := range m.notes {
			style := m.styles.Info
			if n.isErr {
				style = m.styles.Error
			}
			b.WriteString(style.Render(n.text))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return m.styles.Frame.Render(b.String())
}

func (m Model) tabsView() string {
	labels := []struct {
		t     tab
		label string
	}{
		{tabStart, "Start Project"},
		{tabVenv, "Activate Virtual Env"},
	}
	parts := make([]string, 0, len(labels))
	for _, l := range labels {
		style := m.styles.Tab
		if l.t == m.tab {
			style = m.styles.TabActive
		}
		parts = append(parts, style.Render(l.label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

// pickerStart returns the directory the picker opens at.
func pickerStart(start string) string {
	if start != "" {
		if info, err := os.Stat(start); err == nil && info.IsDir() {
			return filepath.Clean(start)
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	if cwd, err := os.Getwd(); err == nil {
		return cwd
	}
	return string(filepath.Separator)
}
