package config

import (
	"errors"
	"fmt"
	"math"
	"net"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/findme/internal/logger"
	"github.com/oshokin/findme/internal/tone"
)

// Config holds the settings shared by the findme binaries.
type Config struct {
	// Name is the advertised local name.
	Name string `yaml:"name"`
	// PeerPattern is the substring a scanned name must contain to be located.
	PeerPattern string `yaml:"peer_pattern"`
	// Board labels the hardware the device runs on.
	Board string `yaml:"board"`
	// Radio selects the transport: "ble" for the host adapter, "air" for the
	// in-memory radio.
	Radio string `yaml:"radio"`
	// LogLevel is the minimum log level.
	LogLevel string `yaml:"log_level"`
	// ControlAddress is the gRPC control plane address.
	ControlAddress string `yaml:"control_address"`
	// UIInterval is the LED marquee period.
	UIInterval time.Duration `yaml:"ui_interval"`
	// LocateInterval is the period of locate and cancel passes.
	LocateInterval time.Duration `yaml:"locate_interval"`
	// ScanTimeout bounds one discovery scan.
	ScanTimeout time.Duration `yaml:"scan_timeout"`
	// ConnectTimeout bounds one connection attempt.
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	// DisconnectTimeout bounds the wait for a link to go down.
	DisconnectTimeout time.Duration `yaml:"disconnect_timeout"`
	// LoopInterval is the delay between scheduler passes.
	LoopInterval time.Duration `yaml:"loop_interval"`
	// MaxAttempts is the number of successful alert writes per peer.
	MaxAttempts int `yaml:"max_attempts"`
	// CancelPasses is the number of cancel passes before returning to target.
	CancelPasses int `yaml:"cancel_passes"`
	// LedgerCapacity is the number of peers tracked per locate cycle.
	LedgerCapacity int `yaml:"ledger_capacity"`
	// Tunes holds the RTTTL melodies played on alert.
	Tunes Tunes `yaml:"tunes"`
}

// Tunes holds one RTTTL melody per alert severity.
type Tunes struct {
	// High is played for a high alert.
	High string `yaml:"high"`
	// Mild is played for a mild alert.
	Mild string `yaml:"mild"`
}

const (
	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "findme-settings.yaml"
	// DefaultName is the advertised name and peer pattern.
	DefaultName = "Find Me"
	// DefaultBoard is the board label of a host build.
	DefaultBoard = "host"
	// RadioBLE selects the host Bluetooth adapter.
	RadioBLE = "ble"
	// RadioAir selects the in-memory radio.
	RadioAir = "air"
	// DefaultControlAddress is the control plane address.
	DefaultControlAddress = "127.0.0.1:50151"
	// DefaultUIInterval is the marquee period.
	DefaultUIInterval = 100 * time.Millisecond
	// DefaultLocateInterval is the locate pass period.
	DefaultLocateInterval = time.Second
	// DefaultScanTimeout bounds a scan.
	DefaultScanTimeout = 100 * time.Millisecond
	// DefaultConnectTimeout bounds a connect.
	DefaultConnectTimeout = 100 * time.Millisecond
	// DefaultDisconnectTimeout bounds the disconnect wait.
	DefaultDisconnectTimeout = 500 * time.Millisecond
	// DefaultLoopInterval is the delay between scheduler passes.
	DefaultLoopInterval = 5 * time.Millisecond
	// DefaultMaxAttempts is the number of writes per peer.
	DefaultMaxAttempts = 3
	// DefaultCancelPasses is the cancel budget.
	DefaultCancelPasses = 3
	// DefaultLedgerCapacity is the peer ledger size.
	DefaultLedgerCapacity = 8

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errNameRequired is returned when the advertised name is missing.
	errNameRequired = errors.New("name must be provided")
	// errUnknownRadio is returned for an unsupported radio selector.
	errUnknownRadio = errors.New("unknown radio")
	// errUnknownLogLevel is returned for an unsupported log level.
	errUnknownLogLevel = errors.New("unknown log level")
	// errOutOfRange is returned for counts outside their bounds.
	errOutOfRange = errors.New("value out of range")
)

// Default returns validated default settings.
func Default() *Config {
	cfg := new(Config)

	// Defaults always validate.
	_ = Validate(cfg)

	return cfg
}

// Load reads settings from path and validates them. With an empty path or
// DefaultConfigFilename the default file is read, or defaults are returned
// when it does not exist.
func Load(path string) (*Config, error) {
	explicit := path != "" && filepath.Clean(path) != DefaultConfigFilename
	if !explicit {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes settings to path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate fills unset fields with defaults and checks the rest.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	applyDefaults(settings)

	if settings.Name == "" {
		return errNameRequired
	}

	if settings.Radio != RadioBLE && settings.Radio != RadioAir {
		return fmt.Errorf("validate radio %q: %w", settings.Radio, errUnknownRadio)
	}

	if _, ok := logger.ParseLogLevel(settings.LogLevel); !ok {
		return fmt.Errorf("validate log level %q: %w", settings.LogLevel, errUnknownLogLevel)
	}

	if _, err := net.ResolveTCPAddr("tcp", settings.ControlAddress); err != nil {
		return fmt.Errorf("invalid control address: %w", err)
	}

	if settings.MaxAttempts > math.MaxUint8 {
		return fmt.Errorf("validate max_attempts %d: %w", settings.MaxAttempts, errOutOfRange)
	}

	if _, err := tone.Parse(settings.Tunes.High); err != nil {
		return fmt.Errorf("validate high tune: %w", err)
	}

	if _, err := tone.Parse(settings.Tunes.Mild); err != nil {
		return fmt.Errorf("validate mild tune: %w", err)
	}

	return nil
}

func applyDefaults(s *Config) {
	setDefault(&s.Name, DefaultName)
	setDefault(&s.PeerPattern, DefaultName)
	setDefault(&s.Board, DefaultBoard)
	setDefault(&s.Radio, RadioBLE)
	setDefault(&s.LogLevel, "info")
	setDefault(&s.ControlAddress, DefaultControlAddress)
	setDefault(&s.Tunes.High, tone.HighTune)
	setDefault(&s.Tunes.Mild, tone.MildTune)

	setDefault(&s.UIInterval, DefaultUIInterval)
	setDefault(&s.LocateInterval, DefaultLocateInterval)
	setDefault(&s.ScanTimeout, DefaultScanTimeout)
	setDefault(&s.ConnectTimeout, DefaultConnectTimeout)
	setDefault(&s.DisconnectTimeout, DefaultDisconnectTimeout)
	setDefault(&s.LoopInterval, DefaultLoopInterval)

	setDefault(&s.MaxAttempts, DefaultMaxAttempts)
	setDefault(&s.CancelPasses, DefaultCancelPasses)
	setDefault(&s.LedgerCapacity, DefaultLedgerCapacity)
}

// setDefault replaces a zero value with def. Negative durations and counts
// count as unset.
func setDefault[T string | int | time.Duration](v *T, def T) {
	var zero T
	if *v <= zero {
		*v = def
	}
}
