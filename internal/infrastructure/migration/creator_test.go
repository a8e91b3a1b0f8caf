package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add email logs", "add_email_logs"},
		{"Add-Email-Logs", "add_email_logs"},
		{"ADD__EMAIL__LOGS", "add_email_logs"},
		{"   spaces   ", "spaces"},
		{"wave!@#$index", "waveindex"},
		{"_leading", "leading"},
		{"trailing_", "trailing"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("-- test"), 0o644))
	}
}

func TestCreateMigration(t *testing.T) {
	t.Run("numbers after the last migration", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir,
			"000001_init_schema.up.sql", "000001_init_schema.down.sql",
			"000002_payment_consistency.up.sql", "000002_payment_consistency.down.sql",
		)

		mf, err := CreateMigration(dir, "add wave reference", "Index Wave transaction ids")
		require.NoError(t, err)
		assert.Equal(t, uint(3), mf.Version)
		assert.Equal(t, filepath.Join(dir, "000003_add_wave_reference.up.sql"), mf.UpPath)
		assert.Equal(t, filepath.Join(dir, "000003_add_wave_reference.down.sql"), mf.DownPath)

		up, err := os.ReadFile(mf.UpPath)
		require.NoError(t, err)
		assert.Contains(t, string(up), "Index Wave transaction ids")

		down, err := os.ReadFile(mf.DownPath)
		require.NoError(t, err)
		assert.Contains(t, string(down), "Rollback")
	})

	t.Run("starts at one and creates the directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "migrations")

		mf, err := CreateMigration(dir, "init", "")
		require.NoError(t, err)
		assert.Equal(t, uint(1), mf.Version)

		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("rejects an empty name", func(t *testing.T) {
		_, err := CreateMigration(t.TempDir(), "!!!", "")
		assert.Error(t, err)
	})
}

func TestListMigrations(t *testing.T) {
	t.Run("sorted by version, up files only", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir,
			"000010_late.up.sql", "000010_late.down.sql",
			"000002_second.up.sql", "000002_second.down.sql",
			"000001_first.up.sql",
			"README.md",
		)
		require.NoError(t, os.Mkdir(filepath.Join(dir, "skip.up.sql"), 0o755))

		migrations, err := ListMigrations(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{"000001_first", "000002_second", "000010_late"}, migrations)
	})

	t.Run("missing directory is empty", func(t *testing.T) {
		migrations, err := ListMigrations("/nonexistent/path/to/migrations")
		require.NoError(t, err)
		assert.Empty(t, migrations)
	})
}

func TestVersionOf(t *testing.T) {
	v, ok := versionOf("000012_add_index")
	assert.True(t, ok)
	assert.Equal(t, uint(12), v)

	_, ok = versionOf("init")
	assert.False(t, ok)

	_, ok = versionOf("abc_init")
	assert.False(t, ok)
}

func TestRepositoryMigrationsArePaired(t *testing.T) {
	dir := filepath.Join("..", "..", "..", "migrations")
	ups, err := ListMigrations(dir)
	require.NoError(t, err)
	require.NotEmpty(t, ups)

	for i, base := range ups {
		v, ok := versionOf(base)
		require.True(t, ok, base)
		assert.Equal(t, uint(i+1), v, "gap before %s", base)

		_, err := os.Stat(filepath.Join(dir, base+".down.sql"))
		assert.NoError(t, err, "missing down file for %s", base)
	}
}
