package headless

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jeanpaul/registrar/internal/record"
	"github.com/jeanpaul/registrar/internal/store"
	"github.com/jeanpaul/registrar/internal/tui"
)

const menu = `
--- School Management System ---
1. Add Student
2. Add Teacher
3. View Student Dashboard
4. View Teacher Dashboard
5. Delete Student
6. Delete Teacher
7. Exit
`

// errEOF ends a session when input runs out mid-prompt.
var errEOF = errors.New("input closed")

type session struct {
	in  *bufio.Scanner
	out io.Writer
	st  *store.Store
}

// Run drives the numbered console menu until the user picks Exit, the input
// ends or ctx is cancelled. Prompts and replies go to out.
func Run(ctx context.Context, in io.Reader, out io.Writer, st *store.Store) error {
	s := &session{in: bufio.NewScanner(in), out: out, st: st}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(s.out, menu)
		choice, err := s.askInt("Enter your choice: ")
		if errors.Is(err, errEOF) {
			return nil
		}
		if err != nil {
			return err
		}

		switch choice {
		case 1:
			err = s.addStudent()
		case 2:
			err = s.addTeacher()
		case 3:
			fmt.Fprint(s.out, tui.StudentsDashboard(s.st.Students()))
		case 4:
			fmt.Fprint(s.out, tui.TeachersDashboard(s.st.Teachers()))
		case 5:
			err = s.delete("Student", s.st.DeleteStudent)
		case 6:
			err = s.delete("Teacher", s.st.DeleteTeacher)
		case 7:
			fmt.Fprintln(s.out, "Exiting...")
			return nil
		default:
			fmt.Fprintln(s.out, "Invalid choice! Please try again.")
		}
		if errors.Is(err, errEOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (s *session) ask(prompt string) (string, error) {
	fmt.Fprint(s.out, prompt)
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}
		return "", errEOF
	}
	return strings.TrimRight(s.in.Text(), "\r"), nil
}

// askInt repeats the prompt until a whole number is entered.
func (s *session) askInt(prompt string) (int, error) {
	for {
		line, err := s.ask(prompt)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(strings.TrimSpace(line))
		if err == nil {
			return n, nil
		}
		fmt.Fprintln(s.out, "Please enter a whole number.")
	}
}

func (s *session) addStudent() error {
	name, err := s.ask("Enter Student Name: ")
	if err != nil {
		return err
	}
	id, err := s.askInt("Enter Student ID: ")
	if err != nil {
		return err
	}
	class, err := s.ask("Enter Student Class: ")
	if err != nil {
		return err
	}
	grades := make([]int, record.GradeCount)
	for i, subject := range record.Subjects {
		if grades[i], err = s.askInt("Enter grade for " + subject + ": "); err != nil {
			return err
		}
	}
	_, err = s.st.AddStudent(name, id, class, grades)
	s.report(err, "Student added successfully!")
	return nil
}

func (s *session) addTeacher() error {
	name, err := s.ask("Enter Teacher Name: ")
	if err != nil {
		return err
	}
	id, err := s.askInt("Enter Teacher ID: ")
	if err != nil {
		return err
	}
	subject, err := s.ask("Enter Subject (Maths, Physics, CS, Electronics): ")
	if err != nil {
		return err
	}
	grade, err := s.ask("Enter Grade (Professor, Assistant, Conference): ")
	if err != nil {
		return err
	}
	_, err = s.st.AddTeacher(name, id, subject, grade)
	s.report(err, "Teacher added successfully!")
	return nil
}

func (s *session) delete(kind string, del func(int) (bool, error)) error {
	id, err := s.askInt("Enter " + kind + " ID to delete: ")
	if err != nil {
		return err
	}
	ok, err := del(id)
	if err == nil && !ok {
		fmt.Fprintln(s.out, kind+" not found!")
		return nil
	}
	s.report(err, kind+" deleted successfully!")
	return nil
}

// report prints the outcome of a mutation. A failed save still leaves the
// change in memory, so the success line is printed before the warning.
func (s *session) report(err error, success string) {
	var perr *store.PersistError
	switch {
	case err == nil:
		fmt.Fprintln(s.out, success)
	case errors.As(err, &perr):
		fmt.Fprintln(s.out, success)
		fmt.Fprintln(s.out, tui.WarningStyle.Render("Error opening file for saving! "+perr.Err.Error()))
	default:
		fmt.Fprintln(s.out, tui.ErrorStyle.Render(err.Error()))
	}
}
