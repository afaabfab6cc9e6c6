package health

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck_Missing(t *testing.T) {
	s := Check(afero.NewMemMapFs(), "school.txt")
	assert.False(t, s.Exists)
	assert.True(t, s.Readable)
	assert.True(t, s.Healthy())
	assert.Empty(t, s.Diff)
}

func TestCheck_Canonical(t *testing.T) {
	fs := afero.NewMemMapFs()
	content := "Students\nAlice,1,10A,12,8,15,9\nTeachers\nMs Lee,8,CS,Assistant\n"
	require.NoError(t, afero.WriteFile(fs, "school.txt", []byte(content), 0644))

	s := Check(fs, "school.txt")
	assert.True(t, s.Exists)
	assert.True(t, s.Healthy())
	assert.Equal(t, 1, s.Students)
	assert.Equal(t, 1, s.Teachers)
	assert.Equal(t, int64(len(content)), s.Size)
	assert.Empty(t, s.Diff)
}

func TestCheck_MalformedAndNonCanonical(t *testing.T) {
	fs := afero.NewMemMapFs()
	content := "Students\nAlice, 1 ,10A,12,8,15,9\nBroken,x,10A,1,1,1,1\n\nTeachers\nMs Lee,8,CS,Assistant\n"
	require.NoError(t, afero.WriteFile(fs, "school.txt", []byte(content), 0644))

	s := Check(fs, "school.txt")
	assert.False(t, s.Healthy())
	require.Len(t, s.Warnings, 1)
	assert.Contains(t, s.Warnings[0], "line 3")

	assert.Contains(t, s.Diff, "--- school.txt")
	assert.Contains(t, s.Diff, "-Broken,x,10A,1,1,1,1")
	assert.Contains(t, s.Diff, "-Alice, 1 ,10A,12,8,15,9")
	assert.Contains(t, s.Diff, "+Alice,1,10A,12,8,15,9")
}

func TestCheck_Directory(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("data", 0755))

	s := Check(fs, "data")
	assert.False(t, s.Healthy())
	assert.Contains(t, s.Error, "is a directory")
}

func TestDiff_Identical(t *testing.T) {
	assert.Equal(t, "", Diff("x", "same\n", "same\n"))
}
