// Package config resolves hnglance settings from defaults, the config file and HNGLANCE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/bnema/hnglance/internal/adapters/hackernews"
	"github.com/bnema/hnglance/internal/application"
	"github.com/bnema/hnglance/internal/version"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "HNGLANCE"

	ProviderPromptbox = "promptbox"
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
	ProviderNone      = "none"

	configDir  = ".config/hnglance"
	configName = "config"
	configType = "toml"
	stateDir   = ".local/state/hnglance"
	stateFile  = "hackernews.toml"
)

type Config struct {
	StatePath   string
	AppDataPath string
	Sources     []string
	Policy      application.Policy
	HTTP        HTTPConfig
	HackerNews  HackerNewsConfig
	Summarizer  SummarizerConfig
	SecretsDir  string
	Schedule    string
	Listen      string
	Log         LogConfig
}

type HTTPConfig struct {
	Timeout      time.Duration
	UserAgent    string
	MaxPageBytes int64
}

type HackerNewsConfig struct {
	APIURL string
	WebURL string
}

type SummarizerConfig struct {
	Provider string
	Command  string
	OpenAI   ProviderConfig
	Gemini   ProviderConfig
}

type ProviderConfig struct {
	APIKey string
	// APIKeySecret names a pass entry or a file below SecretsDir holding the key. Used when APIKey is empty.
	APIKeySecret string
	Model        string
	BaseURL      string
}

type LogConfig struct {
	Level  string
	Format string
}

func Providers() []string {
	return []string{ProviderPromptbox, ProviderOpenAI, ProviderGemini, ProviderNone}
}

// Load reads configFile when set, otherwise ~/.config/hnglance/config.toml if it exists.
func Load(v *viper.Viper, configFile string) (Config, error) {
	if v == nil {
		v = viper.New()
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("resolve home directory: %w", err)
	}

	setDefaults(v, homeDir)
	if err := bindEnv(v); err != nil {
		return Config{}, err
	}
	if err := readConfigFile(v, homeDir, configFile); err != nil {
		return Config{}, err
	}

	cfg := Config{
		StatePath:   v.GetString("state.path"),
		AppDataPath: v.GetString("output.appdata"),
		Sources:     splitList(v.GetStringSlice("sources")),
		Policy: application.Policy{
			StoriesPerSource: v.GetInt("stories.limit"),
			Concurrency:      v.GetInt("refresh.concurrency"),
			Retention:        v.GetDuration("suppression.retention"),
			Retry: application.RetryPolicy{
				Limit:     v.GetInt("retry.limit"),
				BaseDelay: v.GetDuration("retry.base_delay"),
			},
		},
		HTTP: HTTPConfig{
			Timeout:      v.GetDuration("http.timeout"),
			UserAgent:    v.GetString("http.user_agent"),
			MaxPageBytes: v.GetInt64("http.max_page_bytes"),
		},
		HackerNews: HackerNewsConfig{
			APIURL: v.GetString("hackernews.api_url"),
			WebURL: v.GetString("hackernews.web_url"),
		},
		Summarizer: SummarizerConfig{
			Provider: strings.ToLower(strings.TrimSpace(v.GetString("summarizer.provider"))),
			Command:  v.GetString("summarizer.promptbox.command"),
			OpenAI: ProviderConfig{
				APIKey:       v.GetString("summarizer.openai.api_key"),
				APIKeySecret: v.GetString("summarizer.openai.api_key_secret"),
				Model:        v.GetString("summarizer.openai.model"),
				BaseURL:      v.GetString("summarizer.openai.base_url"),
			},
			Gemini: ProviderConfig{
				APIKey:       v.GetString("summarizer.gemini.api_key"),
				APIKeySecret: v.GetString("summarizer.gemini.api_key_secret"),
				Model:        v.GetString("summarizer.gemini.model"),
				BaseURL:      v.GetString("summarizer.gemini.base_url"),
			},
		},
		SecretsDir: v.GetString("secrets.dir"),
		Schedule:   v.GetString("schedule.cron"),
		Listen:     v.GetString("server.listen"),
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}

	cfg.StatePath = expandHome(cfg.StatePath, homeDir)
	cfg.AppDataPath = expandHome(cfg.AppDataPath, homeDir)
	cfg.SecretsDir = expandHome(cfg.SecretsDir, homeDir)
	v.Set("state.path", cfg.StatePath)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error

	if len(c.Sources) == 0 {
		errs = append(errs, errors.New("sources: at least one source is required"))
	}
	for _, source := range c.Sources {
		if !slices.Contains(hackernews.SourceNames(), source) {
			errs = append(errs, fmt.Errorf("sources: unknown source %q (want one of %s)", source, strings.Join(hackernews.SourceNames(), ", ")))
		}
	}
	if c.Policy.StoriesPerSource <= 0 {
		errs = append(errs, fmt.Errorf("stories.limit: must be positive, got %d", c.Policy.StoriesPerSource))
	}
	if c.Policy.Concurrency <= 0 {
		errs = append(errs, fmt.Errorf("refresh.concurrency: must be positive, got %d", c.Policy.Concurrency))
	}
	if c.Policy.Retry.Limit < 0 {
		errs = append(errs, fmt.Errorf("retry.limit: must not be negative, got %d", c.Policy.Retry.Limit))
	}
	if c.Policy.Retry.BaseDelay < 0 {
		errs = append(errs, fmt.Errorf("retry.base_delay: must not be negative, got %s", c.Policy.Retry.BaseDelay))
	}
	if c.Policy.Retention <= 0 {
		errs = append(errs, fmt.Errorf("suppression.retention: must be positive, got %s", c.Policy.Retention))
	}
	if c.HTTP.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("http.timeout: must be positive, got %s", c.HTTP.Timeout))
	}
	if c.HTTP.MaxPageBytes <= 0 {
		errs = append(errs, fmt.Errorf("http.max_page_bytes: must be positive, got %d", c.HTTP.MaxPageBytes))
	}
	if !slices.Contains(Providers(), c.Summarizer.Provider) {
		errs = append(errs, fmt.Errorf("summarizer.provider: unknown provider %q (want one of %s)", c.Summarizer.Provider, strings.Join(Providers(), ", ")))
	}
	if strings.TrimSpace(c.StatePath) == "" {
		errs = append(errs, errors.New("state.path: must not be empty"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func setDefaults(v *viper.Viper, homeDir string) {
	v.SetDefault("state.path", filepath.Join(homeDir, stateDir, stateFile))
	v.SetDefault("output.appdata", "")
	v.SetDefault("sources", []string{hackernews.SourceFront})
	v.SetDefault("stories.limit", 20)
	v.SetDefault("refresh.concurrency", 1)
	v.SetDefault("retry.limit", 2)
	v.SetDefault("retry.base_delay", time.Second)
	v.SetDefault("suppression.retention", 7*24*time.Hour)
	v.SetDefault("http.timeout", 30*time.Second)
	v.SetDefault("http.user_agent", version.UserAgent())
	v.SetDefault("http.max_page_bytes", int64(5<<20))
	v.SetDefault("hackernews.api_url", hackernews.DefaultAPIURL)
	v.SetDefault("hackernews.web_url", hackernews.DefaultWebURL)
	v.SetDefault("summarizer.provider", ProviderPromptbox)
	v.SetDefault("summarizer.promptbox.command", "promptbox")
	v.SetDefault("summarizer.openai.model", "gpt-4o-mini")
	v.SetDefault("summarizer.gemini.model", "gemini-2.0-flash")
	v.SetDefault("secrets.dir", filepath.Join(homeDir, configDir, "secrets"))
	v.SetDefault("schedule.cron", "0 */3 * * *")
	v.SetDefault("server.listen", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

func bindEnv(v *viper.Viper) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.BindEnv("summarizer.openai.api_key", EnvPrefix+"_SUMMARIZER_OPENAI_API_KEY", "OPENAI_API_KEY"); err != nil {
		return fmt.Errorf("bind openai api key: %w", err)
	}
	if err := v.BindEnv("summarizer.gemini.api_key", EnvPrefix+"_SUMMARIZER_GEMINI_API_KEY", "GEMINI_API_KEY"); err != nil {
		return fmt.Errorf("bind gemini api key: %w", err)
	}
	return nil
}

func readConfigFile(v *viper.Viper, homeDir, configFile string) error {
	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType(configType)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", configFile, err)
		}
		return nil
	}

	path := filepath.Join(homeDir, configDir, configName+"."+configType)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat config %s: %w", path, err)
	}

	v.SetConfigFile(path)
	v.SetConfigType(configType)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return nil
}

// splitList accepts both TOML arrays and comma separated environment values.
func splitList(values []string) []string {
	var out []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			part = strings.ToLower(strings.TrimSpace(part))
			if part != "" && !slices.Contains(out, part) {
				out = append(out, part)
			}
		}
	}
	return out
}

func expandHome(path, homeDir string) string {
	if path == "~" {
		return homeDir
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir, path[2:])
	}
	return path
}
