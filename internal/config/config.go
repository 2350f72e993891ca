// Package config loads jtask settings from the environment and dotenv files.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/julieqiu/derrors"
	"github.com/spf13/viper"
)

const (
	// AppName is the application directory name.
	AppName = "jtask"

	// EnvFile is the dotenv filename looked up in the config directory.
	EnvFile = "config.env"
)

// Config holds the tracker credentials and CLI settings.
// It is read once at startup and not modified afterwards.
type Config struct {
	// BaseURL is the tracker site, e.g. https://example.atlassian.net.
	BaseURL string `yaml:"base_url"`

	// Email and Secret are the basic auth credentials.
	Email  string `yaml:"email"`
	Secret string `yaml:"secret"`

	// AccessToken is an OAuth 2.0 bearer token. When set it replaces basic auth.
	AccessToken string `yaml:"access_token,omitempty"`

	// Dir is the configuration directory path.
	Dir string `yaml:"dir"`

	// Debug enables debug logging.
	Debug bool `yaml:"debug"`

	// Quiet suppresses informational output.
	Quiet bool `yaml:"quiet"`
}

// setting maps a config key to the environment variables that can set it.
// Earlier variables take precedence.
type setting struct {
	key  string
	envs []string
}

var settings = []setting{
	{key: "base_url", envs: []string{"JIRA_URL"}},
	{key: "email", envs: []string{"JIRA_EMAIL", "EMAIL"}},
	{key: "secret", envs: []string{"JIRA_API_TOKEN", "PASS"}},
	{key: "access_token", envs: []string{"JIRA_ACCESS_TOKEN"}},
}

// New creates a Config using the default or specified config directory and
// the default dotenv files.
// If configDir is empty, uses XDG_CONFIG_HOME/jtask or $HOME/.config/jtask.
func New(configDir string) (*Config, error) {
	dir := resolveDir(configDir)
	return Load(dir, DefaultEnvFiles(dir)...)
}

// FromEnv is New without the dotenv files. The dispatcher falls back to it
// when a dotenv file exists but cannot be read.
func FromEnv(configDir string) (*Config, error) {
	return Load(resolveDir(configDir))
}

func resolveDir(configDir string) string {
	if configDir == "" {
		return DefaultConfigDir()
	}
	return configDir
}

// Load builds a Config from the process environment, falling back to the
// given dotenv files. Real environment variables always win over file values,
// and earlier files win over later ones. Missing files are skipped.
func Load(dir string, envFiles ...string) (_ *Config, err error) {
	defer derrors.Wrap(&err, "config.Load(%q)", dir)

	v := viper.New()
	for _, s := range settings {
		if err := v.BindEnv(append([]string{s.key}, s.envs...)...); err != nil {
			return nil, err
		}
	}

	seen := map[string]bool{}
	for _, path := range envFiles {
		values, err := readEnvFile(path)
		if err != nil {
			return nil, err
		}
		for _, s := range settings {
			if seen[s.key] {
				continue
			}
			for _, name := range s.envs {
				if val, ok := values[strings.ToLower(name)]; ok && val != "" {
					v.SetDefault(s.key, val)
					seen[s.key] = true
					break
				}
			}
		}
	}

	return &Config{
		BaseURL:     v.GetString("base_url"),
		Email:       v.GetString("email"),
		Secret:      v.GetString("secret"),
		AccessToken: v.GetString("access_token"),
		Dir:         dir,
	}, nil
}

// readEnvFile returns the lowercased key/value pairs of a dotenv file,
// or nil if the file does not exist.
func readEnvFile(path string) (_ map[string]string, err error) {
	defer derrors.Wrap(&err, "readEnvFile(%q)", path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	fv := viper.New()
	fv.SetConfigFile(path)
	fv.SetConfigType("env")
	if err := fv.ReadInConfig(); err != nil {
		return nil, err
	}
	out := map[string]string{}
	for _, k := range fv.AllKeys() {
		out[k] = fv.GetString(k)
	}
	return out, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// DefaultEnvFiles returns the dotenv files consulted by New, in precedence
// order: ./.env, then dir/config.env.
func DefaultEnvFiles(dir string) []string {
	return []string{".env", filepath.Join(dir, EnvFile)}
}

// EnvFilePath returns the path to the dotenv file in the config directory.
func (c *Config) EnvFilePath() string {
	return filepath.Join(c.Dir, EnvFile)
}

// HasCredentials reports whether any authentication material is set.
func (c *Config) HasCredentials() bool {
	return c.AccessToken != "" || (c.Email != "" && c.Secret != "")
}

// Redacted returns a copy of c that is safe to print.
func (c *Config) Redacted() Config {
	r := *c
	r.Secret = mask(r.Secret)
	r.AccessToken = mask(r.AccessToken)
	return r
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "********"
}
