package sheet

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/jeanpaul/registrar/internal/record"
	"github.com/jeanpaul/registrar/internal/schema"
)

// Sheet names used by Export and looked up by Import.
const (
	StudentsSheet = "Students"
	TeachersSheet = "Teachers"
)

// Export writes a workbook with one sheet per record type.
func Export(path string, students []record.Student, teachers []record.Teacher) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), StudentsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(TeachersSheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	if err := writeRow(f, StudentsSheet, 1, toAny(StudentHeader())); err != nil {
		return err
	}
	for i, s := range students {
		row := []any{s.Name, s.ID, s.Class}
		for _, g := range s.Grades() {
			row = append(row, g)
		}
		row = append(row, s.Average(), s.Result())
		if err := writeRow(f, StudentsSheet, i+2, row); err != nil {
			return err
		}
	}

	if err := writeRow(f, TeachersSheet, 1, toAny(TeacherHeader)); err != nil {
		return err
	}
	for i, t := range teachers {
		if err := writeRow(f, TeachersSheet, i+2, []any{t.Name, t.ID, t.Subject, t.Grade}); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// Rows is what Import could read from a workbook.
type Rows struct {
	Students []schema.StudentFields
	Teachers []schema.TeacherFields
	// Problems holds one error per skipped row.
	Problems []error
}

// Import reads students and teachers from a workbook. Student rows come from
// the "Students" sheet, or the first sheet when there is none; teacher rows
// from the "Teachers" sheet when present. The first row of each sheet is a
// header. Rows with missing or non-numeric values are skipped and reported.
func Import(path string) (Rows, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return Rows{}, fmt.Errorf("failed to open excel file: %w", err)
	}
	defer f.Close()

	var out Rows
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Rows{}, fmt.Errorf("excel file %s does not contain any sheets", path)
	}

	studentSheet := sheets[0]
	hasTeachers := false
	for _, name := range sheets {
		switch name {
		case StudentsSheet:
			studentSheet = name
		case TeachersSheet:
			hasTeachers = true
		}
	}
	if studentSheet == TeachersSheet {
		studentSheet = ""
	}

	if studentSheet != "" {
		rows, err := f.GetRows(studentSheet)
		if err != nil {
			return Rows{}, fmt.Errorf("failed to get rows from sheet %s: %w", studentSheet, err)
		}
		for i, row := range rows {
			if i == 0 || blank(row) {
				continue
			}
			s, err := studentFromRow(row)
			if err != nil {
				out.Problems = append(out.Problems, fmt.Errorf("%s row %d: %w", studentSheet, i+1, err))
				continue
			}
			out.Students = append(out.Students, s)
		}
	}

	if hasTeachers {
		rows, err := f.GetRows(TeachersSheet)
		if err != nil {
			return Rows{}, fmt.Errorf("failed to get rows from sheet %s: %w", TeachersSheet, err)
		}
		for i, row := range rows {
			if i == 0 || blank(row) {
				continue
			}
			t, err := teacherFromRow(row)
			if err != nil {
				out.Problems = append(out.Problems, fmt.Errorf("%s row %d: %w", TeachersSheet, i+1, err))
				continue
			}
			out.Teachers = append(out.Teachers, t)
		}
	}

	return out, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func studentFromRow(row []string) (schema.StudentFields, error) {
	need := 3 + record.GradeCount
	if len(row) < need {
		return schema.StudentFields{}, fmt.Errorf("expected at least %d columns, got %d", need, len(row))
	}
	id, err := strconv.Atoi(strings.TrimSpace(row[1]))
	if err != nil {
		return schema.StudentFields{}, fmt.Errorf("bad id %q", row[1])
	}
	grades := make([]int, record.GradeCount)
	for i := range grades {
		g, err := strconv.Atoi(strings.TrimSpace(row[3+i]))
		if err != nil {
			return schema.StudentFields{}, fmt.Errorf("bad %s grade %q", record.Subjects[i], row[3+i])
		}
		grades[i] = g
	}
	return schema.StudentFields{Name: row[0], ID: id, Class: row[2], Grades: grades}, nil
}

func teacherFromRow(row []string) (schema.TeacherFields, error) {
	if len(row) < 3 {
		return schema.TeacherFields{}, fmt.Errorf("expected at least 3 columns, got %d", len(row))
	}
	id, err := strconv.Atoi(strings.TrimSpace(row[1]))
	if err != nil {
		return schema.TeacherFields{}, fmt.Errorf("bad id %q", row[1])
	}
	t := schema.TeacherFields{Name: row[0], ID: id, Subject: row[2]}
	if len(row) > 3 {
		t.Grade = row[3]
	}
	return t, nil
}
