package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeanpaul/registrar/internal/record"
	"github.com/jeanpaul/registrar/internal/store"
)

type mode int

const (
	modeMenu mode = iota
	modeForm
	modeDashboard
	modeHelp
)

const helpText = `# Registrar

Records live in a plain text file with two sections:

    Students
    Alice,1,10A,12,8,15,9
    Teachers
    Ms Lee,8,Computer Science,Assistant

Every change is written back to the file straight away.

## Keys

| Key | Action |
| --- | --- |
| up / down | move through the menu |
| enter | choose an entry or confirm a field |
| esc | back to the menu |
| pgup / pgdn | scroll a dashboard |
| ctrl+c | quit |

A student passes with an average of at least 10.
`

// Model is the interactive shell around a Store.
type Model struct {
	store    *store.Store
	dataPath string

	mode       mode
	menu       MenuModel
	form       FormModel
	formAction Action
	viewport   viewport.Model

	status    string
	statusErr bool

	renderer *glamour.TermRenderer
	width    int
	height   int
}

// NewModel builds the shell. notices are shown in the status bar on start,
// typically the outcome of the initial load.
func NewModel(st *store.Store, dataPath string, notices []string) Model {
	vp := viewport.New(80, 20)
	vp.MouseWheelEnabled = true

	r, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)

	return Model{
		store:    st,
		dataPath: dataPath,
		menu:     NewMenuModel(),
		viewport: vp,
		status:   strings.Join(notices, " "),
		renderer: r,
		width:    80,
		height:   24,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.menu.SetSize(msg.Width-4, msg.Height-6)
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = msg.Height - 6
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if msg.Type == tea.KeyEsc && m.mode != modeMenu {
			m.mode = modeMenu
			return m, nil
		}
		switch m.mode {
		case modeMenu:
			return m.updateMenu(msg)
		case modeForm:
			var cmd tea.Cmd
			var done bool
			m.form, cmd, done = m.form.Update(msg)
			if done {
				m.submit()
				m.mode = modeMenu
			}
			return m, cmd
		default:
			if msg.String() == "q" {
				m.mode = modeMenu
				return m, nil
			}
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}

	if m.mode == modeDashboard || m.mode == modeHelp {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "enter":
		return m.dispatch(m.menu.Selected())
	}
	var cmd tea.Cmd
	m.menu, cmd = m.menu.Update(msg)
	return m, cmd
}

func (m Model) dispatch(a Action) (tea.Model, tea.Cmd) {
	m.formAction = a
	switch a {
	case ActionAddStudent:
		m.openForm(studentForm())
	case ActionAddTeacher:
		m.openForm(teacherForm())
	case ActionDeleteStudent:
		m.openForm(deleteForm("Student"))
	case ActionDeleteTeacher:
		m.openForm(deleteForm("Teacher"))
	case ActionStudents:
		m.showDashboard(colorize(StudentsDashboard(m.store.Students())))
	case ActionTeachers:
		m.showDashboard(colorize(TeachersDashboard(m.store.Teachers())))
	case ActionHelp:
		m.showHelp()
	case ActionQuit:
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) openForm(f FormModel) {
	m.form = f
	m.mode = modeForm
}

func (m *Model) showDashboard(content string) {
	m.viewport.SetContent(content)
	m.viewport.GotoTop()
	m.mode = modeDashboard
}

func (m *Model) showHelp() {
	content := helpText
	if m.renderer != nil {
		if out, err := m.renderer.Render(helpText); err == nil {
			content = out
		}
	}
	m.viewport.SetContent(content)
	m.viewport.GotoTop()
	m.mode = modeHelp
}

// submit applies a completed form to the store.
func (m *Model) submit() {
	f := m.form
	var err error
	switch m.formAction {
	case ActionAddStudent:
		grades := make([]int, record.GradeCount)
		for i := range grades {
			grades[i] = f.Int(3 + i)
		}
		_, err = m.store.AddStudent(f.Text(0), f.Int(1), f.Text(2), grades)
		m.report(err, "Student added successfully!")
	case ActionAddTeacher:
		_, err = m.store.AddTeacher(f.Text(0), f.Int(1), f.Text(2), f.Text(3))
		m.report(err, "Teacher added successfully!")
	case ActionDeleteStudent:
		m.reportDelete("Student", f.Int(0), m.store.DeleteStudent)
	case ActionDeleteTeacher:
		m.reportDelete("Teacher", f.Int(0), m.store.DeleteTeacher)
	}
}

func (m *Model) reportDelete(kind string, id int, del func(int) (bool, error)) {
	ok, err := del(id)
	if err == nil && !ok {
		m.setStatus(kind+" not found!", true)
		return
	}
	m.report(err, kind+" deleted successfully!")
}

func (m *Model) report(err error, success string) {
	var perr *store.PersistError
	switch {
	case err == nil:
		m.setStatus(success, false)
	case errors.As(err, &perr):
		m.setStatus(fmt.Sprintf("%s, but saving failed: %v", strings.TrimSuffix(success, "!"), perr.Err), true)
	default:
		m.setStatus(err.Error(), true)
	}
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

func (m Model) View() string {
	var body string
	switch m.mode {
	case modeForm:
		body = m.form.View()
	case modeDashboard, modeHelp:
		body = ViewportStyle.Render(m.viewport.View())
	default:
		body = RenderBanner() + "\n" + m.menu.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, body, m.statusBar(), m.helpLine())
}

func (m Model) statusBar() string {
	counts := fmt.Sprintf("%d students, %d teachers", len(m.store.Students()), len(m.store.Teachers()))
	bar := StatusPathStyle.Render(m.dataPath) + StatusBarStyle.Render(counts)
	if m.status == "" {
		return bar
	}
	style := PassedStyle
	if m.statusErr {
		style = WarningStyle
	}
	return bar + " " + style.Render(m.status)
}

func (m Model) helpLine() string {
	switch m.mode {
	case modeForm:
		return HelpStyle.Render("enter: confirm • esc: cancel")
	case modeDashboard, modeHelp:
		return HelpStyle.Render("↑/↓ pgup/pgdn: scroll • esc: back")
	default:
		return HelpStyle.Render("↑/↓: move • enter: select • q: quit")
	}
}
