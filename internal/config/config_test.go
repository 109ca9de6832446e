package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// clearEnvironment blanks every recognized variable for the duration of
// the test so host values cannot leak into assertions.
func clearEnvironment(t *testing.T) {
	t.Helper()

	for _, name := range []string{
		EnvSerialPort, EnvSerialBaud, EnvVibrationMs,
		EnvMongoURI, EnvMongoDatabase, EnvEventsCollection, EnvSettingsCollection,
	} {
		t.Setenv(name, "")
	}
}

// TestLoadMissingFileUsesDefaults ensures a nonexistent config path yields pure defaults.
func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearEnvironment(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

// TestLoadFileValues checks YAML values survive loading and defaults fill the gaps.
func TestLoadFileValues(t *testing.T) {
	clearEnvironment(t)

	path := filepath.Join(t.TempDir(), "bridge.yaml")
	contents := []byte("serial_port: /dev/ttyUSB0\nserial_baud: 115200\nstore: memory\nvibration_pulse: 250ms\n")
	require.NoError(t, os.WriteFile(path, contents, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/dev/ttyUSB0", cfg.SerialPort)
	require.Equal(t, 115200, cfg.SerialBaud)
	require.Equal(t, StoreMemory, cfg.Store)
	require.Equal(t, 250*time.Millisecond, cfg.VibrationPulse)

	// Unset fields fall back.
	require.Equal(t, DefaultMongoURI, cfg.MongoURI)
	require.Equal(t, DefaultEventPollInterval, cfg.EventPollInterval)
}

// TestEnvironmentOverrides verifies environment variables beat file values
// and malformed numerics are ignored.
func TestEnvironmentOverrides(t *testing.T) {
	clearEnvironment(t)

	path := filepath.Join(t.TempDir(), "bridge.yaml")
	require.NoError(t, os.WriteFile(path, []byte("serial_port: COM7\n"), 0o600))

	t.Setenv(EnvSerialPort, "/dev/ttyACM1")
	t.Setenv(EnvSerialBaud, "57600")
	t.Setenv(EnvVibrationMs, "not-a-number")
	t.Setenv(EnvMongoDatabase, "hearyou_test")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/dev/ttyACM1", cfg.SerialPort)
	require.Equal(t, 57600, cfg.SerialBaud)
	require.Equal(t, DefaultVibrationPulse, cfg.VibrationPulse)
	require.Equal(t, "hearyou_test", cfg.MongoDatabase)
}

// TestValidate covers the store driver check and default filling.
func TestValidate(t *testing.T) {
	t.Parallel()

	cfg := new(Config)
	require.NoError(t, Validate(cfg))
	require.Equal(t, Default(), cfg)

	cfg = &Config{Store: "postgres"}
	require.Error(t, Validate(cfg))
}
