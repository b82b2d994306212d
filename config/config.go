package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spiffcs/contribs/internal/constants"
	"github.com/spiffcs/contribs/internal/format"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	DefaultFormat string   `yaml:"default_format,omitempty" json:"default_format,omitempty"`
	MaxShown      *int     `yaml:"max_shown,omitempty" json:"max_shown,omitempty"`
	LabelSource   string   `yaml:"label_source,omitempty" json:"label_source,omitempty"`
	Repos         []string `yaml:"repos,omitempty" json:"repos,omitempty"`
	ExcludeLogins []string `yaml:"exclude_logins,omitempty" json:"exclude_logins,omitempty"`

	Mail *MailConfig `yaml:"mail,omitempty" json:"mail,omitempty"`

	// Env holds secrets read from the environment. Never serialized.
	Env Env `yaml:"-" json:"-"`
}

// MailConfig - outgoing notification email settings
type MailConfig struct {
	Enabled       *bool    `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	Server        string   `yaml:"server,omitempty" json:"server,omitempty"` // host:port
	From          string   `yaml:"from,omitempty" json:"from,omitempty"`
	ReplyTo       string   `yaml:"reply_to,omitempty" json:"reply_to,omitempty"`
	StartTLS      *bool    `yaml:"starttls,omitempty" json:"starttls,omitempty"`
	Login         *bool    `yaml:"login,omitempty" json:"login,omitempty"`
	AllowlistMode *bool    `yaml:"allowlist_mode,omitempty" json:"allowlist_mode,omitempty"`
	Allowlist     []string `yaml:"allowlist,omitempty" json:"allowlist,omitempty"`
	RatePerSec    *int     `yaml:"rate_per_sec,omitempty" json:"rate_per_sec,omitempty"`
	ResendAfter   string   `yaml:"resend_after,omitempty" json:"resend_after,omitempty"`
}

// MailSettings is the fully resolved mail configuration, defaults applied
// and credentials merged in from the environment.
type MailSettings struct {
	Enabled       bool
	Server        string
	From          string
	ReplyTo       string
	StartTLS      bool
	Login         bool
	AllowlistMode bool
	Allowlist     []string
	RatePerSec    int
	ResendAfter   string
	Username      string
	Password      string
}

// GetMaxShown returns the display cap, using the default if not configured
func (c *Config) GetMaxShown() int {
	if c.MaxShown != nil {
		return *c.MaxShown
	}
	return constants.DefaultMaxShown
}

// GetLabelSource returns the configured label source
func (c *Config) GetLabelSource() (format.LabelSource, error) {
	return format.ParseLabelSource(c.LabelSource)
}

// GetGitHubToken returns the GitHub token read from the GITHUB_TOKEN environment variable.
// Tokens are never read from config files.
func (c *Config) GetGitHubToken() string {
	return c.Env.GitHubToken
}

// IsLoginExcluded checks if a GitHub login is in the exclude list
func (c *Config) IsLoginExcluded(login string) bool {
	for _, excluded := range c.ExcludeLogins {
		if strings.EqualFold(excluded, login) {
			return true
		}
	}
	return false
}

// GetMailSettings resolves the mail section with defaults and environment overrides
func (c *Config) GetMailSettings() MailSettings {
	s := MailSettings{
		StartTLS:    true,
		Login:       true,
		RatePerSec:  constants.DefaultMailRatePerSec,
		ResendAfter: constants.DefaultResendAfter,
		Username:    c.Env.MailUsername,
		Password:    c.Env.MailPassword,
	}

	if m := c.Mail; m != nil {
		if m.Enabled != nil {
			s.Enabled = *m.Enabled
		}
		s.Server = m.Server
		s.From = m.From
		s.ReplyTo = m.ReplyTo
		if m.StartTLS != nil {
			s.StartTLS = *m.StartTLS
		}
		if m.Login != nil {
			s.Login = *m.Login
		}
		if m.AllowlistMode != nil {
			s.AllowlistMode = *m.AllowlistMode
		}
		s.Allowlist = m.Allowlist
		if m.RatePerSec != nil {
			s.RatePerSec = *m.RatePerSec
		}
		if m.ResendAfter != "" {
			s.ResendAfter = m.ResendAfter
		}
	}

	// The environment switch wins over the file
	if c.Env.UseEmail != nil {
		s.Enabled = *c.Env.UseEmail
	}

	return s
}

// DefaultConfigDir returns the default config directory
func DefaultConfigDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ".contribs"
	}
	return filepath.Join(configDir, "contribs")
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// LocalConfigPath returns the path to the local config file in the current directory
func LocalConfigPath() string {
	return ".contribs.yaml"
}

// Load loads the configuration from disk and the environment.
// It first loads the global config from the XDG config directory, then merges
// any local .contribs.yaml on top (local values take precedence).
func Load() (*Config, error) {
	cfg, err := LoadFiles(ConfigPath(), LocalConfigPath())
	if err != nil {
		return nil, err
	}

	env, err := LoadEnv()
	if err != nil {
		return nil, err
	}
	cfg.Env = env

	return cfg, nil
}

// LoadGlobal loads only the global config file, for commands that edit it.
func LoadGlobal() (*Config, error) {
	cfg, err := readConfigFile(ConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load global config file: %w", err)
	}
	if cfg == nil {
		cfg = &Config{}
	}
	return cfg, nil
}

// LoadFiles loads and merges the global and local config files.
// Missing files are skipped.
func LoadFiles(globalPath, localPath string) (*Config, error) {
	cfg := &Config{
		DefaultFormat: constants.DefaultFormat,
	}

	global, err := readConfigFile(globalPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load global config file: %w", err)
	}
	if global != nil {
		cfg = mergeConfig(cfg, global)
	}

	local, err := readConfigFile(localPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load local config file: %w", err)
	}
	if local != nil {
		cfg = mergeConfig(cfg, local)
	}

	if cfg.DefaultFormat == "" {
		cfg.DefaultFormat = constants.DefaultFormat
	}

	return cfg, nil
}

// readConfigFile returns nil, nil when the file does not exist.
func readConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &cfg, nil
}

// mergeConfig merges an overlay config on top of a base config.
// Set overlay values take precedence; unset overlay values preserve base values.
func mergeConfig(base, overlay *Config) *Config {
	result := &Config{
		DefaultFormat: base.DefaultFormat,
		MaxShown:      base.MaxShown,
		LabelSource:   base.LabelSource,
		Repos:         base.Repos,
		ExcludeLogins: base.ExcludeLogins,
		Env:           base.Env,
	}

	if overlay.DefaultFormat != "" {
		result.DefaultFormat = overlay.DefaultFormat
	}
	if overlay.MaxShown != nil {
		result.MaxShown = overlay.MaxShown
	}
	if overlay.LabelSource != "" {
		result.LabelSource = overlay.LabelSource
	}

	// Lists are replaced, not appended
	if len(overlay.Repos) > 0 {
		result.Repos = overlay.Repos
	}
	if len(overlay.ExcludeLogins) > 0 {
		result.ExcludeLogins = overlay.ExcludeLogins
	}

	result.Mail = mergeMail(base.Mail, overlay.Mail)

	return result
}

func mergeMail(base, overlay *MailConfig) *MailConfig {
	if base == nil && overlay == nil {
		return nil
	}
	if overlay == nil {
		copied := *base
		return &copied
	}
	if base == nil {
		copied := *overlay
		return &copied
	}

	result := *base
	if overlay.Enabled != nil {
		result.Enabled = overlay.Enabled
	}
	if overlay.Server != "" {
		result.Server = overlay.Server
	}
	if overlay.From != "" {
		result.From = overlay.From
	}
	if overlay.ReplyTo != "" {
		result.ReplyTo = overlay.ReplyTo
	}
	if overlay.StartTLS != nil {
		result.StartTLS = overlay.StartTLS
	}
	if overlay.Login != nil {
		result.Login = overlay.Login
	}
	if overlay.AllowlistMode != nil {
		result.AllowlistMode = overlay.AllowlistMode
	}
	if len(overlay.Allowlist) > 0 {
		result.Allowlist = overlay.Allowlist
	}
	if overlay.RatePerSec != nil {
		result.RatePerSec = overlay.RatePerSec
	}
	if overlay.ResendAfter != "" {
		result.ResendAfter = overlay.ResendAfter
	}
	return &result
}

// Save saves the configuration to the global config file
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return SaveTo(ConfigPath(), string(data))
}

// SetDefaultFormat sets the default output format and saves
func (c *Config) SetDefaultFormat(format string) error {
	c.DefaultFormat = format
	return c.Save()
}

// SetMaxShown sets the display cap and saves
func (c *Config) SetMaxShown(n int) error {
	if n < 0 {
		return fmt.Errorf("max_shown must be >= 0, got %d", n)
	}
	c.MaxShown = &n
	return c.Save()
}

// SetLabelSource sets the authoritative label field and saves
func (c *Config) SetLabelSource(src string) error {
	parsed, err := format.ParseLabelSource(src)
	if err != nil {
		return err
	}
	c.LabelSource = parsed.String()
	return c.Save()
}

// DefaultConfig returns a fully populated config with all default values.
// This is useful for generating a complete config file template.
func DefaultConfig() *Config {
	maxShown := constants.DefaultMaxShown
	enabled := false
	startTLS := true
	login := true
	allowlistMode := false
	rate := constants.DefaultMailRatePerSec

	return &Config{
		DefaultFormat: constants.DefaultFormat,
		MaxShown:      &maxShown,
		LabelSource:   format.LabelName.String(),
		Repos:         []string{},
		ExcludeLogins: []string{},
		Mail: &MailConfig{
			Enabled:       &enabled,
			Server:        "localhost:587",
			From:          "noreply@example.com",
			StartTLS:      &startTLS,
			Login:         &login,
			AllowlistMode: &allowlistMode,
			Allowlist:     []string{},
			RatePerSec:    &rate,
			ResendAfter:   constants.DefaultResendAfter,
		},
	}
}

// ToYAML returns the config as a YAML string
func (c *Config) ToYAML() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	return string(data), nil
}

// ConfigPathInfo contains information about config file paths
type ConfigPathInfo struct {
	GlobalPath   string
	GlobalExists bool
	LocalPath    string
	LocalExists  bool
}

// GetConfigPaths returns path info for both global and local configs
func GetConfigPaths() ConfigPathInfo {
	globalPath := ConfigPath()
	localPath := LocalConfigPath()

	absLocalPath, err := filepath.Abs(localPath)
	if err != nil {
		absLocalPath = localPath
	}

	_, globalErr := os.Stat(globalPath)
	_, localErr := os.Stat(localPath)

	return ConfigPathInfo{
		GlobalPath:   globalPath,
		GlobalExists: globalErr == nil,
		LocalPath:    absLocalPath,
		LocalExists:  localErr == nil,
	}
}

// MinimalConfig returns a minimal config template with comments
func MinimalConfig() string {
	return `# contribs configuration file
# See: contribs config defaults  (for all available options)

# Output format: table, json, markdown or text
default_format: table

# Contributors named individually before the rest become "N others"
max_shown: 3

# Which name is authoritative for a label: name or unregistered_name
# label_source: name

# Repositories to summarize when --repo is not given (optional)
# repos:
#   - owner/repo

# Drop bot accounts (optional)
# exclude_logins:
#   - dependabot[bot]

# Notification email (credentials come from CONTRIBS_MAIL_USERNAME / CONTRIBS_MAIL_PASSWORD)
# mail:
#   enabled: true
#   server: smtp.example.com:587
#   from: noreply@example.com
`
}

// SaveTo writes content to a specific path, creating directories as needed
func SaveTo(path string, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}

	return nil
}
