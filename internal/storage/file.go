// Package storage persists students and teachers to a two-section text file.
//
// The file holds a "Students" header followed by one encoded student per
// line, then a "Teachers" header followed by one encoded teacher per line.
package storage

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/jeanpaul/registrar/internal/codec"
	"github.com/jeanpaul/registrar/internal/record"
)

// Section headers.
const (
	StudentsHeader = "Students"
	TeachersHeader = "Teachers"
)

// FileAccessError reports a data file that could not be opened, read or written.
type FileAccessError struct {
	Op   string // "open", "read", "write", "chmod", "rename", "mkdir"
	Path string
	Err  error
}

func (e *FileAccessError) Error() string {
	return fmt.Sprintf("cannot %s data file %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileAccessError) Unwrap() error { return e.Err }

// Snapshot is the result of a load.
type Snapshot struct {
	Students []record.Student
	Teachers []record.Teacher
	// Warnings lists the lines that were skipped, as *codec.ParseError.
	Warnings []error
	// Missing is set when the data file does not exist yet.
	Missing bool
}

// FileStore reads and writes one data file.
type FileStore struct {
	fs     afero.Fs
	path   string
	atomic bool
}

type Option func(*FileStore)

// WithFs swaps the filesystem, mostly for tests.
func WithFs(fs afero.Fs) Option {
	return func(f *FileStore) { f.fs = fs }
}

// WithAtomicWrite makes Save write a sibling temp file and rename it over the
// data file instead of truncating the data file in place.
func WithAtomicWrite(on bool) Option {
	return func(f *FileStore) { f.atomic = on }
}

func New(path string, opts ...Option) *FileStore {
	f := &FileStore{fs: afero.NewOsFs(), path: path}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Path returns the data file path.
func (f *FileStore) Path() string { return f.path }

// Encode returns the exact bytes Save would write.
func Encode(students []record.Student, teachers []record.Teacher) []byte {
	var buf bytes.Buffer
	_ = writeSections(&buf, students, teachers)
	return buf.Bytes()
}

func writeSections(w io.Writer, students []record.Student, teachers []record.Teacher) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(StudentsHeader + "\n")
	for _, s := range students {
		bw.WriteString(codec.EncodeStudent(s) + "\n")
	}
	bw.WriteString(TeachersHeader + "\n")
	for _, t := range teachers {
		bw.WriteString(codec.EncodeTeacher(t) + "\n")
	}
	return bw.Flush()
}

// Save overwrites the data file with the given collections.
func (f *FileStore) Save(students []record.Student, teachers []record.Teacher) error {
	if dir := filepath.Dir(f.path); dir != "." {
		if err := f.fs.MkdirAll(dir, 0755); err != nil {
			return &FileAccessError{Op: "mkdir", Path: dir, Err: err}
		}
	}
	if f.atomic {
		return f.saveAtomic(students, teachers)
	}

	file, err := f.fs.OpenFile(f.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return &FileAccessError{Op: "open", Path: f.path, Err: err}
	}
	if err := writeSections(file, students, teachers); err != nil {
		file.Close()
		return &FileAccessError{Op: "write", Path: f.path, Err: err}
	}
	if err := file.Close(); err != nil {
		return &FileAccessError{Op: "write", Path: f.path, Err: err}
	}
	return nil
}

func (f *FileStore) saveAtomic(students []record.Student, teachers []record.Teacher) error {
	tmp, err := afero.TempFile(f.fs, filepath.Dir(f.path), filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return &FileAccessError{Op: "open", Path: f.path, Err: err}
	}
	tmpName := tmp.Name()

	// TempFile creates 0600; keep the data file's mode, or 0644 for a new one.
	mode := os.FileMode(0644)
	if info, err := f.fs.Stat(f.path); err == nil {
		mode = info.Mode().Perm()
	}

	if err := writeSections(tmp, students, teachers); err != nil {
		tmp.Close()
		f.fs.Remove(tmpName)
		return &FileAccessError{Op: "write", Path: tmpName, Err: err}
	}
	if err := tmp.Close(); err != nil {
		f.fs.Remove(tmpName)
		return &FileAccessError{Op: "write", Path: tmpName, Err: err}
	}
	if err := f.fs.Chmod(tmpName, mode); err != nil {
		f.fs.Remove(tmpName)
		return &FileAccessError{Op: "chmod", Path: tmpName, Err: err}
	}
	if err := f.fs.Rename(tmpName, f.path); err != nil {
		f.fs.Remove(tmpName)
		return &FileAccessError{Op: "rename", Path: f.path, Err: err}
	}
	return nil
}

type section int

const (
	sectionNone section = iota
	sectionStudents
	sectionTeachers
)

// Load reads the data file. A missing file gives an empty snapshot with
// Missing set and no error. Lines that fail to decode are skipped and listed
// in Snapshot.Warnings.
func (f *FileStore) Load() (Snapshot, error) {
	file, err := f.fs.Open(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Snapshot{Missing: true}, nil
		}
		return Snapshot{}, &FileAccessError{Op: "open", Path: f.path, Err: err}
	}
	defer file.Close()

	snap, err := Decode(file)
	if err != nil {
		return Snapshot{}, &FileAccessError{Op: "read", Path: f.path, Err: err}
	}
	return snap, nil
}

// MaxLineLength is the longest line Decode will parse. Longer lines are
// skipped with a warning; the rest of the file still loads.
const MaxLineLength = 1024 * 1024

// ErrLineTooLong is wrapped by the *codec.ParseError reported for a line over
// MaxLineLength.
var ErrLineTooLong = errors.New("line too long")

// previewLength bounds how much of an overlong line is kept in its warning.
const previewLength = 64

const bom = "\ufeff"

// Decode parses the two-section format from r.
//
// A "Students" or "Teachers" line switches the section, a blank line closes
// it, and lines outside any section are ignored. A leading byte order mark and
// trailing carriage returns are dropped. Only a read error from r fails the
// whole decode.
func Decode(r io.Reader) (Snapshot, error) {
	var snap Snapshot
	br := bufio.NewReaderSize(r, 64*1024)

	current := sectionNone
	lineNo := 0
	for {
		raw, tooLong, err := readLine(br)
		if err == io.EOF {
			break
		}
		if err != nil {
			return Snapshot{}, err
		}
		lineNo++
		line := strings.TrimSuffix(raw, "\r")
		if lineNo == 1 {
			line = strings.TrimPrefix(line, bom)
		}

		if tooLong {
			if kind := current.kind(); kind != "" {
				snap.Warnings = append(snap.Warnings, &codec.ParseError{
					Kind:   kind,
					LineNo: lineNo,
					Line:   line + "...",
					Err:    fmt.Errorf("%w: over %d bytes", ErrLineTooLong, MaxLineLength),
				})
			}
			continue
		}

		switch line {
		case StudentsHeader:
			current = sectionStudents
			continue
		case TeachersHeader:
			current = sectionTeachers
			continue
		case "":
			current = sectionNone
			continue
		}

		switch current {
		case sectionStudents:
			s, err := codec.DecodeStudent(line)
			if err != nil {
				snap.Warnings = append(snap.Warnings, withLine(err, lineNo))
				continue
			}
			snap.Students = append(snap.Students, s)
		case sectionTeachers:
			t, err := codec.DecodeTeacher(line)
			if err != nil {
				snap.Warnings = append(snap.Warnings, withLine(err, lineNo))
				continue
			}
			snap.Teachers = append(snap.Teachers, t)
		}
	}
	return snap, nil
}

func (s section) kind() string {
	switch s {
	case sectionStudents:
		return "student"
	case sectionTeachers:
		return "teacher"
	}
	return ""
}

// readLine returns the next line without its "\n". A line longer than
// MaxLineLength is drained from br and only its first previewLength bytes are
// returned, with tooLong set.
func readLine(br *bufio.Reader) (line string, tooLong bool, err error) {
	var buf []byte
	for {
		chunk, isPrefix, err := br.ReadLine()
		if err != nil {
			if err == io.EOF && (len(buf) > 0 || tooLong) {
				return string(buf), tooLong, nil
			}
			return "", false, err
		}
		if !tooLong {
			if len(buf)+len(chunk) > MaxLineLength {
				tooLong = true
				buf = append(buf, chunk...)
				buf = buf[:previewLength]
			} else {
				buf = append(buf, chunk...)
			}
		}
		if !isPrefix {
			return string(buf), tooLong, nil
		}
	}
}

func withLine(err error, lineNo int) error {
	var perr *codec.ParseError
	if errors.As(err, &perr) {
		perr.LineNo = lineNo
		return perr
	}
	return fmt.Errorf("line %d: %w", lineNo, err)
}

// Backup writes the collections to a new uniquely named file in dir and
// returns its path. The data file itself is not touched.
func (f *FileStore) Backup(dir string, students []record.Student, teachers []record.Teacher) (string, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	name := fmt.Sprintf("%s-%s.txt", time.Now().Format("20060102-150405"), uuid.New().String())
	path := filepath.Join(dir, name)

	backup := New(path, WithFs(f.fs))
	if err := backup.Save(students, teachers); err != nil {
		return "", err
	}
	return path, nil
}
