// Package store keeps students and teachers in memory and writes the whole
// data file after every mutation.
//
// Records are kept in insertion order, which is also the order they are saved
// and reloaded in. Ids are not required to be unique: lookups and deletes act
// on the first record with a matching id.
package store

import (
	"errors"
	"fmt"

	"github.com/jeanpaul/registrar/internal/record"
	"github.com/jeanpaul/registrar/internal/schema"
	"github.com/jeanpaul/registrar/internal/storage"
)

// Persister is the file side of the store.
type Persister interface {
	Save(students []record.Student, teachers []record.Teacher) error
	Load() (storage.Snapshot, error)
}

// Backuper is implemented by persisters that can write snapshots.
type Backuper interface {
	Backup(dir string, students []record.Student, teachers []record.Teacher) (string, error)
}

var _ Persister = (*storage.FileStore)(nil)

// NotFoundError reports a lookup for an id that is not stored.
type NotFoundError struct {
	Kind string
	ID   int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

// PersistError reports a mutation that was applied in memory but could not
// be written to disk. The in-memory state is not rolled back.
type PersistError struct {
	Op  string // e.g. "add student"
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("%s: change kept in memory but not saved: %v", e.Op, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// LoadReport summarises a load.
type LoadReport struct {
	// Fresh is set when there was no data file to load.
	Fresh    bool
	Students int
	Teachers int
	// Skipped holds one error per line that could not be decoded.
	Skipped []error
}

type Store struct {
	students  []record.Student
	teachers  []record.Teacher
	persist   Persister
	validator *schema.Validator
}

func New(p Persister) *Store {
	return &Store{persist: p, validator: schema.NewValidator()}
}

// Load replaces the in-memory collections with the persisted ones.
// When the file cannot be read the store is left empty and the
// *storage.FileAccessError is returned; the store stays usable.
func (s *Store) Load() (LoadReport, error) {
	snap, err := s.persist.Load()
	if err != nil {
		s.students, s.teachers = nil, nil
		return LoadReport{}, err
	}
	s.students = snap.Students
	s.teachers = snap.Teachers
	return LoadReport{
		Fresh:    snap.Missing,
		Students: len(snap.Students),
		Teachers: len(snap.Teachers),
		Skipped:  snap.Warnings,
	}, nil
}

func (s *Store) save(op string) error {
	if err := s.persist.Save(s.students, s.teachers); err != nil {
		return &PersistError{Op: op, Err: err}
	}
	return nil
}

// AddStudent validates the fields, appends the student and saves.
// On a *record.ValidationError nothing is stored. On a *PersistError the
// student is stored in memory and returned along with the error.
func (s *Store) AddStudent(name string, id int, class string, grades []int) (record.Student, error) {
	st, err := s.newStudent(schema.StudentFields{Name: name, ID: id, Class: class, Grades: grades})
	if err != nil {
		return record.Student{}, err
	}
	s.students = append(s.students, st)
	return st, s.save("add student")
}

// AddTeacher validates the fields, appends the teacher and saves.
// Errors behave as in AddStudent.
func (s *Store) AddTeacher(name string, id int, subject, grade string) (record.Teacher, error) {
	f := schema.TeacherFields{Name: name, ID: id, Subject: subject, Grade: grade}
	if err := s.validator.Teacher(f); err != nil {
		return record.Teacher{}, err
	}
	t := record.NewTeacher(name, id, subject, grade)
	s.teachers = append(s.teachers, t)
	return t, s.save("add teacher")
}

func (s *Store) newStudent(f schema.StudentFields) (record.Student, error) {
	if err := s.validator.Student(f); err != nil {
		return record.Student{}, err
	}
	return record.NewStudent(f.Name, f.ID, f.Class, f.Grades)
}

// ImportStudents adds several students and saves once at the end.
// Invalid entries are skipped and reported; the count of added students is
// returned. A failed save is reported as a *PersistError in the list.
func (s *Store) ImportStudents(fields []schema.StudentFields) (int, []error) {
	var errs []error
	added := 0
	for _, f := range fields {
		st, err := s.newStudent(f)
		if err != nil {
			errs = append(errs, fmt.Errorf("student %d (%s): %w", f.ID, f.Name, err))
			continue
		}
		s.students = append(s.students, st)
		added++
	}
	if added > 0 {
		if err := s.save("import students"); err != nil {
			errs = append(errs, err)
		}
	}
	return added, errs
}

// ImportTeachers is the teacher counterpart of ImportStudents.
func (s *Store) ImportTeachers(fields []schema.TeacherFields) (int, []error) {
	var errs []error
	added := 0
	for _, f := range fields {
		if err := s.validator.Teacher(f); err != nil {
			errs = append(errs, fmt.Errorf("teacher %d (%s): %w", f.ID, f.Name, err))
			continue
		}
		s.teachers = append(s.teachers, record.NewTeacher(f.Name, f.ID, f.Subject, f.Grade))
		added++
	}
	if added > 0 {
		if err := s.save("import teachers"); err != nil {
			errs = append(errs, err)
		}
	}
	return added, errs
}

// DeleteStudent removes the first student with the given id.
// It saves only when a student was removed.
func (s *Store) DeleteStudent(id int) (bool, error) {
	i := indexOf(s.students, id)
	if i < 0 {
		return false, nil
	}
	s.students = append(s.students[:i], s.students[i+1:]...)
	return true, s.save("delete student")
}

// DeleteTeacher removes the first teacher with the given id.
func (s *Store) DeleteTeacher(id int) (bool, error) {
	i := indexOf(s.teachers, id)
	if i < 0 {
		return false, nil
	}
	s.teachers = append(s.teachers[:i], s.teachers[i+1:]...)
	return true, s.save("delete teacher")
}

// FindStudent returns the first student with the given id.
func (s *Store) FindStudent(id int) (record.Student, error) {
	i := indexOf(s.students, id)
	if i < 0 {
		return record.Student{}, &NotFoundError{Kind: "student", ID: id}
	}
	return s.students[i], nil
}

// FindTeacher returns the first teacher with the given id.
func (s *Store) FindTeacher(id int) (record.Teacher, error) {
	i := indexOf(s.teachers, id)
	if i < 0 {
		return record.Teacher{}, &NotFoundError{Kind: "teacher", ID: id}
	}
	return s.teachers[i], nil
}

func indexOf[R record.Record](rs []R, id int) int {
	for i, r := range rs {
		if r.Key() == id {
			return i
		}
	}
	return -1
}

// Students returns a copy of the students in insertion order.
func (s *Store) Students() []record.Student {
	return append([]record.Student(nil), s.students...)
}

// Teachers returns a copy of the teachers in insertion order.
func (s *Store) Teachers() []record.Teacher {
	return append([]record.Teacher(nil), s.teachers...)
}

func (s *Store) RenderStudent(st record.Student) string { return st.DisplayText() }

func (s *Store) RenderTeacher(t record.Teacher) string { return t.DisplayText() }

// Save writes the current collections without mutating them.
func (s *Store) Save() error {
	return s.save("save")
}

// Snapshot writes the current collections to a new file in dir.
func (s *Store) Snapshot(dir string) (string, error) {
	b, ok := s.persist.(Backuper)
	if !ok {
		return "", errors.New("snapshots are not supported by this persister")
	}
	return b.Backup(dir, s.students, s.teachers)
}
