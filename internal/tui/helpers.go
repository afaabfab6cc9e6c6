package tui

import (
	"strings"

	"github.com/jeanpaul/registrar/internal/record"
)

const dashboardSeparator = "----------------------"

// StudentsDashboard renders every student the way the menu shells show them.
func StudentsDashboard(students []record.Student) string {
	if len(students) == 0 {
		return "No students available.\n"
	}
	var b strings.Builder
	b.WriteString("\n--- Students Dashboard ---\n")
	for _, s := range students {
		b.WriteString(s.DisplayText())
		b.WriteString(dashboardSeparator + "\n")
	}
	return b.String()
}

// TeachersDashboard renders every teacher.
func TeachersDashboard(teachers []record.Teacher) string {
	if len(teachers) == 0 {
		return "No teachers available.\n"
	}
	var b strings.Builder
	b.WriteString("\n--- Teachers Dashboard ---\n")
	for _, t := range teachers {
		b.WriteString(t.DisplayText())
		b.WriteString(dashboardSeparator + "\n")
	}
	return b.String()
}

// colorize styles a plain dashboard: field labels, pass/fail and separators.
func colorize(dashboard string) string {
	lines := strings.Split(dashboard, "\n")
	for i, line := range lines {
		switch {
		case line == dashboardSeparator:
			lines[i] = SeparatorStyle.Render(line)
		case strings.HasPrefix(line, "---"):
			lines[i] = BannerStyle.Render(line)
		case line == "Result: Passed":
			lines[i] = FieldLabelStyle.Render("Result:") + " " + PassedStyle.Render("Passed")
		case line == "Result: Failed":
			lines[i] = FieldLabelStyle.Render("Result:") + " " + FailedStyle.Render("Failed")
		default:
			if label, value, ok := strings.Cut(line, ": "); ok {
				lines[i] = FieldLabelStyle.Render(label+":") + " " + ValueStyle.Render(value)
			}
		}
	}
	return strings.Join(lines, "\n")
}
