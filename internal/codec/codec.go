// Package codec maps records to and from single comma-separated lines.
//
// Text fields are written as-is. A name, class or subject containing a comma
// cannot be read back correctly, so callers validate fields before storing them.
package codec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jeanpaul/registrar/internal/record"
)

const sep = ","

// Field counts per line.
const (
	StudentFields = 3 + record.GradeCount
	TeacherFields = 4
)

// ParseError describes a line that could not be decoded.
type ParseError struct {
	Kind   string // "student" or "teacher"
	LineNo int    // 1-based line number in the source file, 0 when unknown
	Line   string
	Field  string
	Err    error
}

func (e *ParseError) Error() string {
	where := ""
	if e.LineNo > 0 {
		where = fmt.Sprintf("line %d: ", e.LineNo)
	}
	if e.Field != "" {
		return fmt.Sprintf("%sbad %s %s in %q: %v", where, e.Kind, e.Field, e.Line, e.Err)
	}
	return fmt.Sprintf("%sbad %s line %q: %v", where, e.Kind, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// EncodeStudent renders name,id,class,g0,g1,g2,g3.
func EncodeStudent(s record.Student) string {
	fields := make([]string, 0, StudentFields)
	fields = append(fields, s.Name, strconv.Itoa(s.ID), s.Class)
	for _, g := range s.Grades() {
		fields = append(fields, strconv.Itoa(g))
	}
	return strings.Join(fields, sep)
}

// EncodeTeacher renders name,id,subject,grade.
func EncodeTeacher(t record.Teacher) string {
	return strings.Join([]string{t.Name, strconv.Itoa(t.ID), t.Subject, t.Grade}, sep)
}

// DecodeStudent parses a student line. Fields after the last grade are ignored.
func DecodeStudent(line string) (record.Student, error) {
	parts := strings.Split(line, sep)
	if len(parts) < StudentFields {
		return record.Student{}, &ParseError{
			Kind: "student",
			Line: line,
			Err:  fmt.Errorf("expected %d fields, got %d", StudentFields, len(parts)),
		}
	}

	id, err := parseInt(parts[1])
	if err != nil {
		return record.Student{}, &ParseError{Kind: "student", Line: line, Field: "id", Err: err}
	}

	grades := make([]int, record.GradeCount)
	for i := range grades {
		g, err := parseInt(parts[3+i])
		if err != nil {
			return record.Student{}, &ParseError{
				Kind:  "student",
				Line:  line,
				Field: record.Subjects[i] + " grade",
				Err:   err,
			}
		}
		grades[i] = g
	}

	s, err := record.NewStudent(parts[0], id, parts[2], grades)
	if err != nil {
		return record.Student{}, &ParseError{Kind: "student", Line: line, Err: err}
	}
	return s, nil
}

// DecodeTeacher parses a teacher line. The grade is the rest of the line and
// may be empty.
func DecodeTeacher(line string) (record.Teacher, error) {
	parts := strings.SplitN(line, sep, TeacherFields)
	if len(parts) < TeacherFields {
		return record.Teacher{}, &ParseError{
			Kind: "teacher",
			Line: line,
			Err:  fmt.Errorf("expected %d fields, got %d", TeacherFields, len(parts)),
		}
	}

	id, err := parseInt(parts[1])
	if err != nil {
		return record.Teacher{}, &ParseError{Kind: "teacher", Line: line, Field: "id", Err: err}
	}
	return record.NewTeacher(parts[0], id, parts[2], parts[3]), nil
}

func parseInt(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok {
			return 0, ne.Err
		}
		return 0, err
	}
	return n, nil
}
