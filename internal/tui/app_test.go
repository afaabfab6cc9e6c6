package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeanpaul/registrar/internal/record"
	"github.com/jeanpaul/registrar/internal/storage"
	"github.com/jeanpaul/registrar/internal/store"
)

func newTestModel(t *testing.T) (Model, *store.Store, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	st := store.New(storage.New("school.txt", storage.WithFs(fs)))
	m := NewModel(st, "school.txt", []string{"No existing data found. Starting fresh."})

	// Size first so the viewport and list have dimensions.
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return updated.(Model), st, fs
}

func send(m Model, msgs ...tea.Msg) Model {
	for _, msg := range msgs {
		updated, _ := m.Update(msg)
		m = updated.(Model)
	}
	return m
}

func typeLine(m Model, text string) Model {
	if text != "" {
		m = send(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	}
	return send(m, tea.KeyMsg{Type: tea.KeyEnter})
}

func down(m Model, n int) Model {
	for i := 0; i < n; i++ {
		m = send(m, tea.KeyMsg{Type: tea.KeyDown})
	}
	return m
}

func TestStartsOnMenu(t *testing.T) {
	m, _, _ := newTestModel(t)

	assert.Equal(t, modeMenu, m.mode)
	assert.Equal(t, ActionAddStudent, m.menu.Selected())

	view := m.View()
	assert.Contains(t, view, "Add Student")
	assert.Contains(t, view, "Starting fresh")
}

func TestMenuNavigation(t *testing.T) {
	m, _, _ := newTestModel(t)

	m = down(m, 2)
	assert.Equal(t, ActionStudents, m.menu.Selected())

	m = send(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, modeDashboard, m.mode)
	assert.Contains(t, m.View(), "No students available.")

	m = send(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, modeMenu, m.mode)
}

func TestAddStudentForm(t *testing.T) {
	m, st, fs := newTestModel(t)

	m = send(m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, modeForm, m.mode)

	for _, v := range []string{"Alice", "1", "10A", "12", "8", "15", "9"} {
		m = typeLine(m, v)
	}

	assert.Equal(t, modeMenu, m.mode)
	assert.Equal(t, "Student added successfully!", m.status)
	assert.False(t, m.statusErr)

	require.Len(t, st.Students(), 1)
	assert.Equal(t, 11.0, st.Students()[0].Average())

	data, err := afero.ReadFile(fs, "school.txt")
	require.NoError(t, err)
	assert.Equal(t, "Students\nAlice,1,10A,12,8,15,9\nTeachers\n", string(data))
}

func TestFormRejectsNonNumericID(t *testing.T) {
	m, _, _ := newTestModel(t)

	m = send(m, tea.KeyMsg{Type: tea.KeyEnter})
	m = typeLine(m, "Alice")
	m = typeLine(m, "one")

	assert.Equal(t, modeForm, m.mode)
	assert.Equal(t, 1, m.form.index)
	assert.Contains(t, m.View(), "whole number")
}

func TestFormRejectsComma(t *testing.T) {
	m, st, _ := newTestModel(t)

	m = down(m, 1)
	m = send(m, tea.KeyMsg{Type: tea.KeyEnter})
	for _, v := range []string{"Lee, Ms", "8", "CS", "Assistant"} {
		m = typeLine(m, v)
	}

	assert.True(t, m.statusErr)
	assert.Contains(t, m.status, "name")
	assert.Empty(t, st.Teachers())
}

func TestDeleteStudent(t *testing.T) {
	m, st, _ := newTestModel(t)
	_, err := st.AddStudent("Bob", 2, "9B", []int{5, 6, 7, 8})
	require.NoError(t, err)

	m = down(m, 4)
	require.Equal(t, ActionDeleteStudent, m.menu.Selected())

	m = send(m, tea.KeyMsg{Type: tea.KeyEnter})
	m = typeLine(m, "99")
	assert.Equal(t, "Student not found!", m.status)
	assert.True(t, m.statusErr)

	m = send(m, tea.KeyMsg{Type: tea.KeyEnter})
	m = typeLine(m, "2")
	assert.Equal(t, "Student deleted successfully!", m.status)
	assert.Empty(t, st.Students())
}

func TestPersistFailureKeepsRecord(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	st := store.New(storage.New("school.txt", storage.WithFs(fs)))
	m := NewModel(st, "school.txt", nil)

	m = send(m, tea.KeyMsg{Type: tea.KeyEnter})
	for _, v := range []string{"Alice", "1", "10A", "12", "8", "15", "9"} {
		m = typeLine(m, v)
	}

	assert.True(t, m.statusErr)
	assert.True(t, strings.HasPrefix(m.status, "Student added successfully, but saving failed"))
	assert.Len(t, st.Students(), 1)
}

func TestHelpScreen(t *testing.T) {
	m, _, _ := newTestModel(t)

	m = down(m, 6)
	m = send(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, modeHelp, m.mode)
	assert.Contains(t, m.View(), "Students")
}

func TestQuit(t *testing.T) {
	m, _, _ := newTestModel(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

func TestDashboards(t *testing.T) {
	s, err := record.NewStudent("Alice", 1, "10A", []int{12, 8, 15, 9})
	require.NoError(t, err)

	out := StudentsDashboard([]record.Student{s})
	assert.True(t, strings.HasPrefix(out, "\n--- Students Dashboard ---\nName: Alice\n"))
	assert.True(t, strings.HasSuffix(out, "Result: Passed\n----------------------\n"))

	assert.Equal(t, "No teachers available.\n", TeachersDashboard(nil))
}
