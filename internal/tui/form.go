package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeanpaul/registrar/internal/record"
)

type formField struct {
	label       string
	placeholder string
	numeric     bool
}

// FormModel asks for one field at a time.
type FormModel struct {
	title  string
	fields []formField
	values []string
	index  int
	input  textinput.Model
	err    string
}

func newForm(title string, fields []formField) FormModel {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 80
	ti.Width = 40
	ti.PromptStyle = lipgloss.NewStyle().Foreground(Green).Bold(true)
	ti.TextStyle = lipgloss.NewStyle().Foreground(White)
	ti.Focus()

	f := FormModel{title: title, fields: fields, input: ti}
	f.input.Placeholder = fields[0].placeholder
	return f
}

func studentForm() FormModel {
	fields := []formField{
		{label: "Enter Student Name"},
		{label: "Enter Student ID", numeric: true},
		{label: "Enter Student Class"},
	}
	for _, subject := range record.Subjects {
		fields = append(fields, formField{label: "Enter grade for " + subject, numeric: true})
	}
	return newForm("Add Student", fields)
}

func teacherForm() FormModel {
	return newForm("Add Teacher", []formField{
		{label: "Enter Teacher Name"},
		{label: "Enter Teacher ID", numeric: true},
		{label: "Enter Subject", placeholder: strings.Join(record.Subjects[:], ", ")},
		{label: "Enter Grade", placeholder: strings.Join([]string{record.GradeProfessor, record.GradeAssistant, record.GradeConference}, ", ")},
	})
}

func deleteForm(kind string) FormModel {
	return newForm("Delete "+kind, []formField{{label: "Enter " + kind + " ID to delete", numeric: true}})
}

// Update feeds a key to the current field. done is true once every field has
// been entered.
func (f FormModel) Update(msg tea.Msg) (FormModel, tea.Cmd, bool) {
	if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyEnter {
		value := strings.TrimSpace(f.input.Value())
		field := f.fields[f.index]
		if field.numeric {
			if _, err := strconv.Atoi(value); err != nil {
				f.err = field.label + ": please enter a whole number"
				return f, nil, false
			}
		}
		f.err = ""
		f.values = append(f.values, value)
		f.index++
		if f.index == len(f.fields) {
			return f, nil, true
		}
		f.input.Reset()
		f.input.Placeholder = f.fields[f.index].placeholder
		return f, nil, false
	}

	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	return f, cmd, false
}

// Int returns the i-th value as a number. Numeric fields are checked on entry.
func (f FormModel) Int(i int) int {
	n, _ := strconv.Atoi(f.values[i])
	return n
}

// Text returns the i-th value as entered, trimmed.
func (f FormModel) Text(i int) string { return f.values[i] }

func (f FormModel) View() string {
	var b strings.Builder
	b.WriteString(BannerStyle.Render(f.title) + "\n\n")
	for i := 0; i < f.index; i++ {
		b.WriteString(HelpStyle.Render(f.fields[i].label+": ") + ValueStyle.Render(f.values[i]) + "\n")
	}
	if f.index < len(f.fields) {
		b.WriteString(FieldLabelStyle.Render(f.fields[f.index].label+":") + "\n")
		b.WriteString(InputBoxStyle.Render(f.input.View()) + "\n")
	}
	if f.err != "" {
		b.WriteString(ErrorStyle.Render(f.err) + "\n")
	}
	return b.String()
}
