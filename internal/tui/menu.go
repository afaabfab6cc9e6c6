package tui

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Action identifies a main menu entry.
type Action int

const (
	ActionNone Action = iota
	ActionAddStudent
	ActionAddTeacher
	ActionStudents
	ActionTeachers
	ActionDeleteStudent
	ActionDeleteTeacher
	ActionHelp
	ActionQuit
)

type item struct {
	title, desc string
	action      Action
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.title }

type MenuModel struct {
	list list.Model
}

func NewMenuModel() MenuModel {
	items := []list.Item{
		item{title: "Add Student", desc: "Enter a student and four grades", action: ActionAddStudent},
		item{title: "Add Teacher", desc: "Enter a teacher, subject and grade", action: ActionAddTeacher},
		item{title: "Student Dashboard", desc: "Show every student with averages", action: ActionStudents},
		item{title: "Teacher Dashboard", desc: "Show every teacher", action: ActionTeachers},
		item{title: "Delete Student", desc: "Remove the first student with an id", action: ActionDeleteStudent},
		item{title: "Delete Teacher", desc: "Remove the first teacher with an id", action: ActionDeleteTeacher},
		item{title: "Help", desc: "File format and keys", action: ActionHelp},
		item{title: "Exit", desc: "Leave the application", action: ActionQuit},
	}

	d := list.NewDefaultDelegate()
	d.Styles.SelectedTitle = lipgloss.NewStyle().Foreground(Green).Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(Green).PaddingLeft(1)
	d.Styles.SelectedDesc = d.Styles.SelectedTitle.Copy().Foreground(DarkGreen)

	l := list.New(items, d, 50, 20)
	l.Title = "School Management System"
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = lipgloss.NewStyle().Foreground(Green).Bold(true).MarginLeft(2)

	return MenuModel{list: l}
}

// Selected returns the action under the cursor.
func (m MenuModel) Selected() Action {
	if it, ok := m.list.SelectedItem().(item); ok {
		return it.action
	}
	return ActionNone
}

func (m *MenuModel) SetSize(width, height int) {
	m.list.SetSize(width, height)
}

func (m MenuModel) Update(msg tea.Msg) (MenuModel, tea.Cmd) {
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m MenuModel) View() string {
	return LogoBoxStyle.Render(m.list.View())
}
