package nexus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Name    string `env:"NEXUS_TEST_NAME" yaml:"name" validate:"required"`
	Retries int    `env:"NEXUS_TEST_RETRIES" yaml:"retries" validate:"gte=0"`
}

func TestLoader_EnvironmentOnly(t *testing.T) {
	t.Setenv("NEXUS_TEST_NAME", "marketcore")
	t.Setenv("NEXUS_TEST_RETRIES", "3")

	var cfg testConfig
	err := NewLoader(WithOnlyEnvironment()).Load(&cfg)

	require.NoError(t, err)
	assert.Equal(t, "marketcore", cfg.Name)
	assert.Equal(t, 3, cfg.Retries)
}

func TestLoader_FileMerge(t *testing.T) {
	t.Setenv("NEXUS_TEST_NAME", "from-env")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: from-file\nretries: 7\n"), 0o600))

	var cfg testConfig
	err := NewLoader(WithFileName(path)).Load(&cfg)

	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Name, "environment must take precedence")
	assert.Equal(t, 7, cfg.Retries, "file fills fields the environment left empty")
}

func TestLoader_ValidationFailure(t *testing.T) {
	var cfg testConfig
	err := NewLoader(WithOnlyEnvironment()).Load(&cfg)

	require.Error(t, err)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, ErrCodeValidation, cfgErr.Code)
}

func TestLoader_RejectsNonPointer(t *testing.T) {
	err := NewLoader().Load(testConfig{})

	require.Error(t, err)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, ErrCodeInvalidType, cfgErr.Code)
}

func TestLoader_MissingFile(t *testing.T) {
	t.Setenv("NEXUS_TEST_NAME", "x")

	var cfg testConfig
	err := NewLoader(WithFileName(filepath.Join(t.TempDir(), "absent.yaml"))).Load(&cfg)

	require.Error(t, err)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, ErrCodeFileNotFound, cfgErr.Code)
}
