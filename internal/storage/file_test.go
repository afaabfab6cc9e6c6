package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeanpaul/registrar/internal/codec"
	"github.com/jeanpaul/registrar/internal/record"
)

func student(t *testing.T, name string, id int, class string, grades ...int) record.Student {
	t.Helper()
	s, err := record.NewStudent(name, id, class, grades)
	require.NoError(t, err)
	return s
}

func fixtures(t *testing.T) ([]record.Student, []record.Teacher) {
	students := []record.Student{
		student(t, "Alice", 1, "10A", 12, 8, 15, 9),
		student(t, "Bob", 2, "10B", 5, 6, 7, 8),
		student(t, "Alice", 1, "11A", 20, 20, 20, 20),
	}
	teachers := []record.Teacher{
		record.NewTeacher("Mr Smith", 7, "Physics", "Professor"),
		record.NewTeacher("Ms Lee", 8, "CS", ""),
	}
	return students, teachers
}

func TestSave_Format(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := New("school.txt", WithFs(fs))
	students, teachers := fixtures(t)

	require.NoError(t, store.Save(students, teachers))

	data, err := afero.ReadFile(fs, "school.txt")
	require.NoError(t, err)
	want := "Students\n" +
		"Alice,1,10A,12,8,15,9\n" +
		"Bob,2,10B,5,6,7,8\n" +
		"Alice,1,11A,20,20,20,20\n" +
		"Teachers\n" +
		"Mr Smith,7,Physics,Professor\n" +
		"Ms Lee,8,CS,\n"
	assert.Equal(t, want, string(data))
	assert.Equal(t, want, string(Encode(students, teachers)))
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := New("data/school.txt", WithFs(fs))
	students, teachers := fixtures(t)

	require.NoError(t, store.Save(students, teachers))
	snap, err := store.Load()
	require.NoError(t, err)

	assert.False(t, snap.Missing)
	assert.Empty(t, snap.Warnings)
	assert.Equal(t, students, snap.Students)
	assert.Equal(t, teachers, snap.Teachers)
}

func TestSave_EmptyCollections(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := New("school.txt", WithFs(fs))

	require.NoError(t, store.Save(nil, nil))
	data, _ := afero.ReadFile(fs, "school.txt")
	assert.Equal(t, "Students\nTeachers\n", string(data))

	snap, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, snap.Students)
	assert.Empty(t, snap.Teachers)
}

func TestSave_Overwrites(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := New("school.txt", WithFs(fs))
	students, teachers := fixtures(t)

	require.NoError(t, store.Save(students, teachers))
	require.NoError(t, store.Save(students[:1], nil))

	data, _ := afero.ReadFile(fs, "school.txt")
	assert.Equal(t, "Students\nAlice,1,10A,12,8,15,9\nTeachers\n", string(data))
}

func TestSave_Atomic(t *testing.T) {
	fs := afero.NewMemMapFs()
	students, teachers := fixtures(t)

	plain := New("plain.txt", WithFs(fs))
	atomic := New("dir/atomic.txt", WithFs(fs), WithAtomicWrite(true))
	require.NoError(t, plain.Save(students, teachers))
	require.NoError(t, atomic.Save(students, teachers))
	require.NoError(t, atomic.Save(students, teachers))

	a, _ := afero.ReadFile(fs, "plain.txt")
	b, _ := afero.ReadFile(fs, "dir/atomic.txt")
	assert.Equal(t, string(a), string(b))

	entries, err := afero.ReadDir(fs, "dir")
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestSave_AtomicKeepsMode(t *testing.T) {
	dir := t.TempDir()
	students, teachers := fixtures(t)

	fresh := New(filepath.Join(dir, "fresh.txt"), WithAtomicWrite(true))
	require.NoError(t, fresh.Save(students, teachers))
	info, err := os.Stat(fresh.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())

	existing := filepath.Join(dir, "existing.txt")
	require.NoError(t, os.WriteFile(existing, []byte("Students\nTeachers\n"), 0600))
	require.NoError(t, os.Chmod(existing, 0640))
	require.NoError(t, New(existing, WithAtomicWrite(true)).Save(students, teachers))
	info, err = os.Stat(existing)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0640), info.Mode().Perm())
}

func TestLoad_MissingFile(t *testing.T) {
	store := New("nope.txt", WithFs(afero.NewMemMapFs()))
	snap, err := store.Load()
	require.NoError(t, err)
	assert.True(t, snap.Missing)
	assert.Empty(t, snap.Students)
	assert.Empty(t, snap.Teachers)
}

func TestLoad_MissingFileOnDisk(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "missing.txt"))
	snap, err := store.Load()
	require.NoError(t, err)
	assert.True(t, snap.Missing)
}

func TestLoad_SkipsMalformedLines(t *testing.T) {
	fs := afero.NewMemMapFs()
	content := "Students\n" +
		"Alice,1,10A,12,8,15,9\n" +
		"Broken,abc,10A,1,2,3,4\n" +
		"Bob,2,10B,5,6,7,8\n" +
		"Teachers\n" +
		"Mr Smith,seven,Physics,Professor\n" +
		"Ms Lee,8,CS,Assistant\n"
	require.NoError(t, afero.WriteFile(fs, "school.txt", []byte(content), 0644))

	snap, err := New("school.txt", WithFs(fs)).Load()
	require.NoError(t, err)

	require.Len(t, snap.Students, 2)
	assert.Equal(t, "Alice", snap.Students[0].Name)
	assert.Equal(t, "Bob", snap.Students[1].Name)
	require.Len(t, snap.Teachers, 1)
	assert.Equal(t, "Ms Lee", snap.Teachers[0].Name)

	require.Len(t, snap.Warnings, 2)
	var perr *codec.ParseError
	require.True(t, errors.As(snap.Warnings[0], &perr))
	assert.Equal(t, 3, perr.LineNo)
	assert.Equal(t, "id", perr.Field)
	require.True(t, errors.As(snap.Warnings[1], &perr))
	assert.Equal(t, 6, perr.LineNo)
	assert.Equal(t, "teacher", perr.Kind)
}

func TestDecode_StateMachine(t *testing.T) {
	input := strings.Join([]string{
		"stray line before any header",
		"Students",
		"Alice,1,10A,12,8,15,9",
		"",
		"ignored,1,after,blank,line,x,y",
		"Teachers",
		"Mr Smith,7,Physics,Professor",
		"Students",
		"Bob,2,10B,5,6,7,8",
		"",
	}, "\n")

	snap, err := Decode(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, snap.Students, 2)
	assert.Equal(t, "Alice", snap.Students[0].Name)
	assert.Equal(t, "Bob", snap.Students[1].Name)
	require.Len(t, snap.Teachers, 1)
	assert.Empty(t, snap.Warnings)
}

func TestDecode_TeachersHeaderEndsStudents(t *testing.T) {
	snap, err := Decode(strings.NewReader("Students\nAlice,1,10A,1,2,3,4\nTeachers\nMs Lee,8,CS,Assistant\n"))
	require.NoError(t, err)
	assert.Len(t, snap.Students, 1)
	assert.Len(t, snap.Teachers, 1)
	assert.Empty(t, snap.Warnings)
}

func TestDecode_CRLF(t *testing.T) {
	snap, err := Decode(strings.NewReader("Students\r\nAlice,1,10A,12,8,15,9\r\n\r\nTeachers\r\nMs Lee,8,CS,Assistant\r\n"))
	require.NoError(t, err)
	require.Len(t, snap.Students, 1)
	assert.Equal(t, [4]int{12, 8, 15, 9}, snap.Students[0].Grades())
	require.Len(t, snap.Teachers, 1)
	assert.Equal(t, "Assistant", snap.Teachers[0].Grade)
}

func TestDecode_ByteOrderMark(t *testing.T) {
	snap, err := Decode(strings.NewReader("\ufeffStudents\nAlice,1,10A,12,8,15,9\nTeachers\nMs Lee,8,CS,Assistant\n"))
	require.NoError(t, err)
	require.Len(t, snap.Students, 1)
	assert.Equal(t, "Alice", snap.Students[0].Name)
	assert.Len(t, snap.Teachers, 1)
	assert.Empty(t, snap.Warnings)
}

func TestLoad_OverlongLineIsSkipped(t *testing.T) {
	fs := afero.NewMemMapFs()
	long := strings.Repeat("x", 2*MaxLineLength) + ",2,10B,1,2,3,4"
	content := "Students\n" +
		"Alice,1,10A,12,8,15,9\n" +
		long + "\n" +
		"Bob,3,10C,5,6,7,8\n" +
		"Teachers\n" +
		"Ms Lee,8,CS,Assistant\n"
	require.NoError(t, afero.WriteFile(fs, "school.txt", []byte(content), 0644))

	store := New("school.txt", WithFs(fs))
	snap, err := store.Load()
	require.NoError(t, err)

	require.Len(t, snap.Students, 2)
	assert.Equal(t, "Alice", snap.Students[0].Name)
	assert.Equal(t, "Bob", snap.Students[1].Name)
	require.Len(t, snap.Teachers, 1)

	require.Len(t, snap.Warnings, 1)
	var perr *codec.ParseError
	require.True(t, errors.As(snap.Warnings[0], &perr))
	assert.Equal(t, 3, perr.LineNo)
	assert.Equal(t, "student", perr.Kind)
	assert.ErrorIs(t, snap.Warnings[0], ErrLineTooLong)
	assert.Less(t, len(perr.Line), 100)

	// Saving what was loaded keeps every valid record.
	require.NoError(t, store.Save(snap.Students, snap.Teachers))
	data, err := afero.ReadFile(fs, "school.txt")
	require.NoError(t, err)
	assert.Equal(t, "Students\nAlice,1,10A,12,8,15,9\nBob,3,10C,5,6,7,8\nTeachers\nMs Lee,8,CS,Assistant\n", string(data))
}

func TestDecode_OverlongLineAtEOF(t *testing.T) {
	snap, err := Decode(strings.NewReader("Teachers\nMs Lee,8,CS,Assistant\n" + strings.Repeat("y", MaxLineLength+1)))
	require.NoError(t, err)
	assert.Len(t, snap.Teachers, 1)
	require.Len(t, snap.Warnings, 1)
	assert.ErrorIs(t, snap.Warnings[0], ErrLineTooLong)
}

func TestLoad_UnreadablePath(t *testing.T) {
	dir := t.TempDir()
	// A directory cannot be read as a data file.
	snap, err := New(dir).Load()
	require.Error(t, err)

	var ferr *FileAccessError
	require.True(t, errors.As(err, &ferr))
	assert.Equal(t, dir, ferr.Path)
	assert.Empty(t, snap.Students)
}

func TestSave_ReadOnlyFs(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	err := New("school.txt", WithFs(fs)).Save(nil, nil)
	require.Error(t, err)

	var ferr *FileAccessError
	require.True(t, errors.As(err, &ferr))
	assert.Equal(t, "school.txt", ferr.Path)
}

func TestBackup(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := New("school.txt", WithFs(fs))
	students, teachers := fixtures(t)

	path, err := store.Backup("snapshots", students, teachers)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, "snapshots"+string(os.PathSeparator)))
	assert.True(t, strings.HasSuffix(path, ".txt"))

	snap, err := New(path, WithFs(fs)).Load()
	require.NoError(t, err)
	assert.Equal(t, students, snap.Students)
	assert.Equal(t, teachers, snap.Teachers)

	exists, _ := afero.Exists(fs, "school.txt")
	assert.False(t, exists)

	second, err := store.Backup("snapshots", students, teachers)
	require.NoError(t, err)
	assert.NotEqual(t, path, second)
}
