package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvFlag(t *testing.T) {
	assert.True(t, EnvFlag("DEMONY_TEST_FLAG_UNSET", true))

	t.Setenv("DEMONY_TEST_FLAG", "1")
	assert.True(t, EnvFlag("DEMONY_TEST_FLAG", false))

	t.Setenv("DEMONY_TEST_FLAG", "nope")
	assert.False(t, EnvFlag("DEMONY_TEST_FLAG", false))
}

func TestFindUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "demony.env"), []byte("APP_ENV=test\n"), 0o600))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(nested))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	found, err := FindUp("demony.env")
	require.NoError(t, err)
	assert.Equal(t, "demony.env", filepath.Base(found))

	_, err = FindUp("missing.env")
	assert.ErrorIs(t, err, os.ErrNotExist)
}
