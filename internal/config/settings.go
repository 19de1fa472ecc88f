package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/ytget/ytgrab-bot/internal/model"
	"github.com/ytget/ytgrab-bot/internal/platform"
)

// Session backends
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Default values
const (
	DefaultLanguage        = "en"
	DefaultCookiesPath     = "./cookies.txt"
	DefaultListenAddr      = ":8080"
	DefaultMaxConcurrent   = 4
	DefaultPollTimeout     = 60
	DefaultUploadLimit     = 50 * model.MiB
	LocalAPIUploadLimit    = 2000 * model.MiB
	DefaultSessionTTL      = 10 * time.Minute
	DefaultProbeTimeout    = 60 * time.Second
	DefaultDownloadTimeout = 10 * time.Minute
	DefaultUploadTimeout   = 5 * time.Minute
	DefaultArtifactMaxAge  = time.Hour
	DefaultJanitorInterval = 5 * time.Minute
	DefaultExchange        = "ytgrab.events"
	DefaultRoutingKey      = "pipeline.outcome"
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "console"

	// MaxConcurrentLimit caps parallel pipelines
	MaxConcurrentLimit = 64
)

// Config file location
const (
	AppDirName     = "ytgrab-bot"
	ConfigFileName = "config.toml"
	TempDirName    = "ytgrab"
)

// Duration is a time.Duration read from TOML strings such as "10m"
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// TelegramSettings configures the messaging transport
type TelegramSettings struct {
	Token         string `toml:"token"`
	LocalAPIURL   string `toml:"local_api_url"`
	WebhookURL    string `toml:"webhook_url"`
	WebhookPath   string `toml:"webhook_path"`
	ListenAddr    string `toml:"listen_addr"`
	MaxConcurrent int    `toml:"max_concurrent"`
	PollTimeout   int    `toml:"poll_timeout"`
}

// DownloadSettings configures probing, downloading and uploading
type DownloadSettings struct {
	TempDir         string   `toml:"temp_dir"`
	CookiesPath     string   `toml:"cookies_path"`
	YtdlpPath       string   `toml:"ytdlp_path"`
	FfprobePath     string   `toml:"ffprobe_path"`
	AutoInstall     bool     `toml:"auto_install"`
	MaxUploadBytes  int64    `toml:"max_upload_bytes"`
	ProbeTimeout    Duration `toml:"probe_timeout"`
	DownloadTimeout Duration `toml:"download_timeout"`
	UploadTimeout   Duration `toml:"upload_timeout"`
	ArtifactMaxAge  Duration `toml:"artifact_max_age"`
	JanitorInterval Duration `toml:"janitor_interval"`
}

// SessionSettings configures the session store
type SessionSettings struct {
	Backend string   `toml:"backend"`
	DSN     string   `toml:"dsn"`
	TTL     Duration `toml:"ttl"`
}

// EventSettings configures the outcome event sink
type EventSettings struct {
	Enabled    bool   `toml:"enabled"`
	URL        string `toml:"url"`
	Exchange   string `toml:"exchange"`
	RoutingKey string `toml:"routing_key"`
}

// LogSettings configures logging
type LogSettings struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Settings holds all service configuration
type Settings struct {
	Language  string            `toml:"language"`
	Telegram  TelegramSettings  `toml:"telegram"`
	Download  DownloadSettings  `toml:"download"`
	Session   SessionSettings   `toml:"session"`
	Events    EventSettings     `toml:"events"`
	Log       LogSettings       `toml:"log"`
	Platforms map[string]string `toml:"platforms"`
}

// Default returns the default configuration
func Default() *Settings {
	return &Settings{
		Language: DefaultLanguage,
		Telegram: TelegramSettings{
			ListenAddr:    DefaultListenAddr,
			MaxConcurrent: DefaultMaxConcurrent,
			PollTimeout:   DefaultPollTimeout,
		},
		Download: DownloadSettings{
			TempDir:         filepath.Join(os.TempDir(), TempDirName),
			CookiesPath:     DefaultCookiesPath,
			ProbeTimeout:    Duration{DefaultProbeTimeout},
			DownloadTimeout: Duration{DefaultDownloadTimeout},
			UploadTimeout:   Duration{DefaultUploadTimeout},
			ArtifactMaxAge:  Duration{DefaultArtifactMaxAge},
			JanitorInterval: Duration{DefaultJanitorInterval},
		},
		Session: SessionSettings{
			Backend: BackendMemory,
			TTL:     Duration{DefaultSessionTTL},
		},
		Events: EventSettings{
			Exchange:   DefaultExchange,
			RoutingKey: DefaultRoutingKey,
		},
		Log: LogSettings{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Platforms: platform.DefaultTable(),
	}
}

// configDir returns the XDG-compliant config directory
func configDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", AppDirName), nil
}

// ConfigPath returns the default path of the config file
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

// Load reads the config file at path (or the default location when path is
// empty), merges it over defaults and applies environment overrides.
// A missing default file is not an error; a missing explicit file is.
func Load(path string) (*Settings, error) {
	s := Default()

	explicit := path != ""
	if !explicit {
		p, err := ConfigPath()
		if err == nil {
			path = p
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := s.decode(data); err != nil {
				return nil, err
			}
		case os.IsNotExist(err) && !explicit:
		default:
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	applyEnv(s)

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return s, nil
}

// decode merges TOML data into s. A platforms table in the file replaces
// the default table rather than extending it.
func (s *Settings) decode(data []byte) error {
	defaults := s.Platforms
	s.Platforms = nil
	if _, err := toml.Decode(string(data), s); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}
	if len(s.Platforms) == 0 {
		s.Platforms = defaults
	}
	return nil
}

// Validate checks that configuration values are valid
func (s *Settings) Validate() error {
	switch s.Session.Backend {
	case BackendMemory:
	case BackendSQLite, BackendPostgres:
		if s.Session.DSN == "" {
			return fmt.Errorf("session backend %s requires a dsn", s.Session.Backend)
		}
	default:
		return fmt.Errorf("unknown session backend %q", s.Session.Backend)
	}

	if s.Download.MaxUploadBytes < 0 {
		return fmt.Errorf("max_upload_bytes must not be negative")
	}
	if s.Session.TTL.Duration <= 0 {
		return fmt.Errorf("session ttl must be positive")
	}
	timeouts := []struct {
		name  string
		value time.Duration
	}{
		{"probe_timeout", s.Download.ProbeTimeout.Duration},
		{"download_timeout", s.Download.DownloadTimeout.Duration},
		{"upload_timeout", s.Download.UploadTimeout.Duration},
	}
	for _, t := range timeouts {
		if t.value <= 0 {
			return fmt.Errorf("%s must be positive", t.name)
		}
	}

	if (s.Telegram.WebhookURL == "") != (s.Telegram.WebhookPath == "") {
		return fmt.Errorf("webhook_url and webhook_path must be set together")
	}
	if s.Telegram.WebhookPath != "" && !strings.HasPrefix(s.Telegram.WebhookPath, "/") {
		return fmt.Errorf("webhook_path must start with '/'")
	}
	if s.Events.Enabled && s.Events.URL == "" {
		return fmt.Errorf("events enabled without a broker url")
	}
	if len(s.Platforms) == 0 {
		return fmt.Errorf("platform table is empty")
	}
	if _, ok := s.GetLanguageOptions()[s.Language]; !ok {
		return fmt.Errorf("unsupported language %q", s.Language)
	}
	return nil
}

// GetMaxConcurrent returns the pipeline concurrency clamped to a sane range
func (s *Settings) GetMaxConcurrent() int {
	n := s.Telegram.MaxConcurrent
	if n < 1 {
		return 1
	}
	if n > MaxConcurrentLimit {
		return MaxConcurrentLimit
	}
	return n
}

// UploadLimit returns the artifact size ceiling in bytes. A local Bot API
// server lifts the default limit.
func (s *Settings) UploadLimit() int64 {
	if s.Download.MaxUploadBytes > 0 {
		return s.Download.MaxUploadBytes
	}
	if s.Telegram.LocalAPIURL != "" {
		return LocalAPIUploadLimit
	}
	return DefaultUploadLimit
}

// APIEndpoint returns the Bot API endpoint template, or "" for the public API
func (s *Settings) APIEndpoint() string {
	if s.Telegram.LocalAPIURL == "" {
		return ""
	}
	return strings.TrimRight(s.Telegram.LocalAPIURL, "/") + "/bot%s/%s"
}

// UseWebhook reports whether updates arrive by webhook instead of polling
func (s *Settings) UseWebhook() bool {
	return s.Telegram.WebhookURL != "" && s.Telegram.WebhookPath != ""
}

// WebhookEndpoint returns the public URL registered with Telegram
func (s *Settings) WebhookEndpoint() string {
	return strings.TrimRight(s.Telegram.WebhookURL, "/") + s.Telegram.WebhookPath
}

// GetLanguageOptions returns available notice languages
func (s *Settings) GetLanguageOptions() map[string]string {
	return map[string]string{
		"en": "English",
		"ru": "Русский",
		"uz": "O'zbekcha",
	}
}
