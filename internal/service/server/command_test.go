package server

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/findme/internal/config"
)

// TestLoadSettings_Overrides applies command line values over the file.
func TestLoadSettings_Overrides(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, config.Save(path, &config.Config{Name: "Keys"}))

	settings, err := loadSettings(&Options{
		ConfigPath:     path,
		ControlAddress: "127.0.0.1:0",
		Radio:          config.RadioAir,
	})
	require.NoError(t, err)
	require.Equal(t, "Keys", settings.Name)
	require.Equal(t, "127.0.0.1:0", settings.ControlAddress)
	require.Equal(t, config.RadioAir, settings.Radio)

	_, err = loadSettings(&Options{ConfigPath: path, Radio: "serial"})
	require.Error(t, err)

	_, err = loadSettings(&Options{ConfigPath: filepath.Join(t.TempDir(), "absent.yaml")})
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestLoadSettings_DefaultFlag starts from defaults when the flag default names a missing file.
func TestLoadSettings_DefaultFlag(t *testing.T) {
	t.Parallel()

	// The package directory carries no settings file.
	settings, err := loadSettings(&Options{ConfigPath: config.DefaultConfigFilename, Radio: config.RadioAir})
	require.NoError(t, err)
	require.Equal(t, config.DefaultName, settings.Name)
	require.Equal(t, config.RadioAir, settings.Radio)
}

// TestRun_StopsOnCancel serves on the in-memory radio until the context ends.
func TestRun_StopsOnCancel(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, config.Save(path, &config.Config{LogLevel: "error"}))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := Run(ctx, &Options{
		ConfigPath:     path,
		ControlAddress: "127.0.0.1:0",
		Radio:          config.RadioAir,
	})
	require.NoError(t, err)
}

// TestEnsureSingleInstance ignores this process and unrelated executables.
func TestEnsureSingleInstance(t *testing.T) {
	t.Parallel()

	require.NoError(t, ensureSingleInstance("findme-no-such-executable"))

	executable, err := os.Executable()
	require.NoError(t, err)
	require.NoError(t, ensureSingleInstance(filepath.Base(executable)))
}
