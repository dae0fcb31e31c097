package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	AppName         = "eventd"
	DefaultDataFile = "calendar_events.dat"

	NotifierDBus = "dbus"
	NotifierExec = "exec"
	NotifierNone = "none"
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config is the on-disk configuration. Durations are written as Go duration
// strings such as "30s".
type Config struct {
	// DataFile is the events file used when no location has been remembered
	// in the state database.
	DataFile string `yaml:"data_file"`

	// StateDB holds remembered preferences and the reminder history.
	StateDB string `yaml:"state_db"`

	PollInterval time.Duration `yaml:"poll_interval"`

	// MaxLateness suppresses reminders that are overdue by more than this
	// when first seen. Zero delivers every overdue reminder.
	MaxLateness time.Duration `yaml:"max_lateness"`

	LogLevel             string `yaml:"log_level"`
	DesktopNotifications bool   `yaml:"desktop_notifications"`
	Notifier             string `yaml:"notifier"`
	ReminderHistory      int    `yaml:"reminder_history"`
}

func DefaultConfig() *Config {
	return &Config{
		DataFile:             defaultDataFile(),
		StateDB:              filepath.Join(defaultDir(), "eventd.db"),
		PollInterval:         30 * time.Second,
		MaxLateness:          0,
		LogLevel:             "info",
		DesktopNotifications: true,
		Notifier:             NotifierDBus,
		ReminderHistory:      20,
	}
}

// DefaultPath is $XDG_CONFIG_HOME/eventd/config.yaml or its platform
// equivalent.
func DefaultPath() string {
	return filepath.Join(defaultDir(), "config.yaml")
}

// LogPath is where the terminal UI writes its log.
func (c *Config) LogPath() string {
	return filepath.Join(filepath.Dir(c.StateDB), "eventd.log")
}

func defaultDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "." + AppName
	}
	return filepath.Join(dir, AppName)
}

func defaultDataFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultDataFile
	}
	return filepath.Join(home, DefaultDataFile)
}

// Normalize fills zero values with defaults so older or partial files keep
// working.
func (c *Config) Normalize() {
	def := DefaultConfig()
	if strings.TrimSpace(c.DataFile) == "" {
		c.DataFile = def.DataFile
	}
	if strings.TrimSpace(c.StateDB) == "" {
		c.StateDB = def.StateDB
	}
	if c.PollInterval == 0 {
		c.PollInterval = def.PollInterval
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	c.Notifier = strings.ToLower(strings.TrimSpace(c.Notifier))
	if c.Notifier == "" {
		c.Notifier = def.Notifier
	}
	if c.ReminderHistory == 0 {
		c.ReminderHistory = def.ReminderHistory
	}
}

func (c *Config) Validate() error {
	if c.PollInterval <= 0 {
		return fmt.Errorf("%w: poll_interval must be positive, got %s", ErrInvalidConfig, c.PollInterval)
	}
	if c.MaxLateness < 0 {
		return fmt.Errorf("%w: max_lateness must not be negative, got %s", ErrInvalidConfig, c.MaxLateness)
	}
	switch c.Notifier {
	case NotifierDBus, NotifierExec, NotifierNone:
	default:
		return fmt.Errorf("%w: unknown notifier %q", ErrInvalidConfig, c.Notifier)
	}
	if c.ReminderHistory < 0 {
		return fmt.Errorf("%w: reminder_history must not be negative", ErrInvalidConfig)
	}
	return nil
}

// ApplyEnv overrides fields from EVENTD_* variables. Unparseable values are
// ignored.
func (c *Config) ApplyEnv() {
	if v, ok := getEnvString("EVENTD_DATA_FILE"); ok {
		c.DataFile = v
	}
	if v, ok := getEnvString("EVENTD_STATE_DB"); ok {
		c.StateDB = v
	}
	if v, ok := getEnvDuration("EVENTD_POLL_INTERVAL"); ok && v > 0 {
		c.PollInterval = v
	}
	if v, ok := getEnvDuration("EVENTD_MAX_LATENESS"); ok && v >= 0 {
		c.MaxLateness = v
	}
	if v, ok := getEnvString("EVENTD_LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	if v, ok := getEnvBool("EVENTD_DESKTOP_NOTIFICATIONS"); ok {
		c.DesktopNotifications = v
	}
	if v, ok := getEnvString("EVENTD_NOTIFIER"); ok {
		c.Notifier = strings.ToLower(v)
	}
	if v, ok := getEnvInt("EVENTD_REMINDER_HISTORY"); ok && v >= 0 {
		c.ReminderHistory = v
	}
}

// Load reads the YAML file at path on top of the defaults, so omitted keys
// keep their default values. A missing file is created with the defaults. Environment overrides are applied afterwards and the result is
// validated.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config: path is empty")
	}

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := Save(path, cfg); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
		cfg.Normalize()
	}

	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg atomically with 0600 permissions.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errors.New("config: nil config")
	}
	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".eventd-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

func getEnvString(name string) (string, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	return raw, raw != ""
}

func getEnvInt(name string) (int, bool) {
	raw, ok := getEnvString(name)
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvDuration(name string) (time.Duration, bool) {
	raw, ok := getEnvString(name)
	if !ok {
		return 0, false
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvBool(name string) (bool, bool) {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	switch raw {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}
