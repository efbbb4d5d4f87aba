package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsEmptyDefaults(t *testing.T) {
	d, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, &Defaults{}, d)
}

func TestLoadExpandsEnvAndParses(t *testing.T) {
	t.Setenv("SPEAKSFOR_CA_DIR", "/etc/speaksfor/ca")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "defaultValidityDays: 30\ntrustAnchors: ${SPEAKSFOR_CA_DIR}\nverbosity: v\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	d, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 30, d.DefaultValidityDays)
	assert.Equal(t, "/etc/speaksfor/ca", d.TrustAnchors)
	assert.Equal(t, "v", d.Verbosity)
}

func TestLoadRejectsInvalidVerbosity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("verbosity: loud\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
