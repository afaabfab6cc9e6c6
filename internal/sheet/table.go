// Package sheet lays records out as tables: Excel workbooks for export and
// import, and markdown for reports.
package sheet

import (
	"strconv"
	"strings"

	"github.com/jeanpaul/registrar/internal/record"
)

// StudentHeader is the header row used for student tables.
func StudentHeader() []string {
	h := []string{"Name", "ID", "Class"}
	h = append(h, record.Subjects[:]...)
	return append(h, "Average", "Result")
}

// TeacherHeader is the header row used for teacher tables.
var TeacherHeader = []string{"Name", "ID", "Subject", "Grade"}

// StudentRows returns the header followed by one row per student.
func StudentRows(students []record.Student) [][]string {
	rows := [][]string{StudentHeader()}
	for _, s := range students {
		row := []string{s.Name, strconv.Itoa(s.ID), s.Class}
		for _, g := range s.Grades() {
			row = append(row, strconv.Itoa(g))
		}
		row = append(row, record.FormatAverage(s.Average()), s.Result())
		rows = append(rows, row)
	}
	return rows
}

// TeacherRows returns the header followed by one row per teacher.
func TeacherRows(teachers []record.Teacher) [][]string {
	rows := [][]string{append([]string(nil), TeacherHeader...)}
	for _, t := range teachers {
		rows = append(rows, []string{t.Name, strconv.Itoa(t.ID), t.Subject, t.Grade})
	}
	return rows
}

// Report renders both collections as a markdown document.
func Report(students []record.Student, teachers []record.Teacher) string {
	var sb strings.Builder

	sb.WriteString("# Students\n\n")
	if len(students) == 0 {
		sb.WriteString("No students available.\n\n")
	} else {
		sb.WriteString(RowsToMarkdown(StudentRows(students)))
		passed := 0
		for _, s := range students {
			if s.Passed() {
				passed++
			}
		}
		sb.WriteString("\n")
		sb.WriteString(strconv.Itoa(passed) + " of " + strconv.Itoa(len(students)) + " passed.\n\n")
	}

	sb.WriteString("# Teachers\n\n")
	if len(teachers) == 0 {
		sb.WriteString("No teachers available.\n")
	} else {
		sb.WriteString(RowsToMarkdown(TeacherRows(teachers)))
	}
	return sb.String()
}

// RowsToMarkdown converts a slice of string slices into a Markdown table.
// The first row is the header.
func RowsToMarkdown(rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	var sb strings.Builder

	maxCols := 0
	for _, row := range rows {
		if len(row) > maxCols {
			maxCols = len(row)
		}
	}

	for i, row := range rows {
		cells := make([]string, maxCols)
		for j := range cells {
			if j < len(row) {
				// Escape pipes so they do not break the table
				cells[j] = strings.ReplaceAll(row[j], "|", "\\|")
				cells[j] = strings.ReplaceAll(cells[j], "\n", " ")
			}
		}
		sb.WriteString("| " + strings.Join(cells, " | ") + " |\n")

		if i == 0 {
			sb.WriteString("|")
			for j := 0; j < maxCols; j++ {
				sb.WriteString(" --- |")
			}
			sb.WriteString("\n")
		}
	}

	return sb.String()
}
