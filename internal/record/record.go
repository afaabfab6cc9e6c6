package record

import (
	"fmt"
	"strconv"
	"strings"
)

// GradeCount is the number of graded subjects every student carries.
const GradeCount = 4

// PassMark is the lowest average that counts as a pass.
const PassMark = 10.0

// Subjects are the fixed subjects, in the order grades are stored and persisted.
var Subjects = [GradeCount]string{"Maths", "Physics", "CS", "Electronics"}

// Teacher grade categories. They are suggestions only; any string is accepted.
const (
	GradeProfessor  = "Professor"
	GradeAssistant  = "Assistant"
	GradeConference = "Conference"
)

// Record is what the shell needs from any stored entity.
type Record interface {
	// Key returns the identity key (the person id).
	Key() int
	// DisplayText returns a multi-line human readable rendering.
	DisplayText() string
}

var (
	_ Record = Student{}
	_ Record = Teacher{}
)

// ValidationError reports caller-supplied fields rejected before a record is built.
type ValidationError struct {
	Kind     string // "student" or "teacher"
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Kind, strings.Join(e.Problems, "; "))
}

// Student is a person enrolled in a class with one grade per fixed subject.
// Grades sit behind accessors so the cached average always matches them.
type Student struct {
	Name  string
	ID    int
	Class string

	grades  [GradeCount]int
	average float64
}

// NewStudent builds a student from exactly GradeCount grades.
func NewStudent(name string, id int, class string, grades []int) (Student, error) {
	s := Student{Name: name, ID: id, Class: class}
	if err := s.SetGrades(grades); err != nil {
		return Student{}, err
	}
	return s, nil
}

// SetGrades replaces the grades and recomputes the average.
func (s *Student) SetGrades(grades []int) error {
	if len(grades) != GradeCount {
		return &ValidationError{
			Kind:     "student",
			Problems: []string{fmt.Sprintf("expected %d grades, got %d", GradeCount, len(grades))},
		}
	}
	copy(s.grades[:], grades)
	total := 0
	for _, g := range s.grades {
		total += g
	}
	s.average = float64(total) / GradeCount
	return nil
}

func (s Student) Key() int { return s.ID }

// Grades returns the grades aligned with Subjects.
func (s Student) Grades() [GradeCount]int { return s.grades }

// Average returns the arithmetic mean of the grades.
func (s Student) Average() float64 { return s.average }

// Passed reports whether the average reaches PassMark.
func (s Student) Passed() bool { return s.average >= PassMark }

// Result is the pass/fail label shown on dashboards.
func (s Student) Result() string {
	if s.Passed() {
		return "Passed"
	}
	return "Failed"
}

func (s Student) DisplayText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\nID: %d\nClass: %s\n", s.Name, s.ID, s.Class)
	b.WriteString("Subjects and Grades:\n")
	for i, subject := range Subjects {
		fmt.Fprintf(&b, "%s: %d\n", subject, s.grades[i])
	}
	fmt.Fprintf(&b, "Average Grade: %s\n", FormatAverage(s.average))
	fmt.Fprintf(&b, "Result: %s\n", s.Result())
	return b.String()
}

// FormatAverage prints an average with up to six significant digits and no
// trailing zeros, so 11.0 shows as "11" and 10.75 as "10.75".
func FormatAverage(avg float64) string {
	return strconv.FormatFloat(avg, 'g', 6, 64)
}

// Teacher is a person teaching one subject at a grade category.
type Teacher struct {
	Name    string
	ID      int
	Subject string
	Grade   string
}

func NewTeacher(name string, id int, subject, grade string) Teacher {
	return Teacher{Name: name, ID: id, Subject: subject, Grade: grade}
}

func (t Teacher) Key() int { return t.ID }

func (t Teacher) DisplayText() string {
	return fmt.Sprintf("Name: %s\nID: %d\nSubject: %s\nGrade: %s\n", t.Name, t.ID, t.Subject, t.Grade)
}
