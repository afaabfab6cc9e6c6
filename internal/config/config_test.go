package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDefaultDataFile verifies the data file defaults to a relative path
func TestDefaultDataFile(t *testing.T) {
	cfg := DefaultConfig()
	expected := "school_DataBase.txt"

	if cfg.DataFile != expected {
		t.Errorf("Default data file = %q, want %q", cfg.DataFile, expected)
	}
	assert.False(t, filepath.IsAbs(cfg.DataFile))
	assert.False(t, cfg.Storage.AtomicWrite)
}

func TestLoad_ExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "data_file: " + filepath.Join(dir, "school.txt") + "\n" +
		"backup_dir: " + filepath.Join(dir, "snaps") + "\n" +
		"storage:\n  atomic_write: true\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "school.txt"), cfg.DataFile)
	assert.Equal(t, filepath.Join(dir, "snaps"), cfg.BackupDir)
	assert.Equal(t, "registrar.xlsx", cfg.ExportFile)
	assert.True(t, cfg.Storage.AtomicWrite)
	assert.Equal(t, path, cfg.Source())
}

func TestLoad_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	t.Setenv("REGISTRAR_DATA_FILE", "other.txt")
	t.Setenv("REGISTRAR_STORAGE_ATOMIC_WRITE", "true")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "other.txt", cfg.DataFile)
	assert.True(t, cfg.Storage.AtomicWrite)
	assert.Equal(t, "", cfg.Source())
}

func TestLoad_ExpandsEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("REGISTRAR_TEST_DIR", dir)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data_file: $REGISTRAR_TEST_DIR/school.txt\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, dir+"/school.txt", cfg.DataFile)
}

func TestLoad_BrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data_file: [unclosed\n"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultConfig().DataFile, cfg.DataFile)
	assert.Equal(t, DefaultConfig().BackupDir, cfg.BackupDir)

	cfg = &Config{DataFile: t.TempDir()}
	assert.Error(t, cfg.Validate())

	cfg = &Config{ExportFile: "out.csv"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".xlsx")
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, WriteDefault(path))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().DataFile, cfg.DataFile)

	assert.Error(t, WriteDefault(path), "existing file must not be overwritten")
}
