package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/bnema/hnglance/internal/adapters/hackernews"
	"github.com/bnema/hnglance/internal/adapters/render/appdata"
	"github.com/bnema/hnglance/internal/adapters/render/digest"
	tomlrepo "github.com/bnema/hnglance/internal/adapters/repo/toml"
	chainstore "github.com/bnema/hnglance/internal/adapters/secrets/chain"
	"github.com/bnema/hnglance/internal/adapters/summarizer"
	"github.com/bnema/hnglance/internal/adapters/summarizer/gemini"
	"github.com/bnema/hnglance/internal/adapters/summarizer/openai"
	"github.com/bnema/hnglance/internal/adapters/summarizer/promptbox"
	"github.com/bnema/hnglance/internal/application"
	"github.com/bnema/hnglance/internal/config"
	"github.com/bnema/hnglance/internal/domain"
	"github.com/bnema/hnglance/internal/logging"
	"github.com/bnema/hnglance/internal/ports"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// summarizerAnnotation marks commands that derive summaries; read-only commands skip provider setup.
const summarizerAnnotation = "hnglance/summarizer"

type app struct {
	config         config.Config
	logger         zerolog.Logger
	service        *application.Service
	exporter       *appdata.Exporter
	digestRenderer func([]domain.Record, digest.RenderOptions) (string, error)
	now            func() time.Time
}

func (a *app) wire(cmd *cobra.Command, opts *rootOptions) error {
	v := viper.New()
	cfg, err := config.Load(v, opts.configFile)
	if err != nil {
		return err
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.logFormat != "" {
		cfg.Log.Format = opts.logFormat
	}

	logger, err := logging.New(cmd.ErrOrStderr(), logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return fmt.Errorf("wire logger: %w", err)
	}

	repo, err := tomlrepo.NewSnapshotRepository(v)
	if err != nil {
		return fmt.Errorf("wire snapshot repository: %w", err)
	}

	client := hackernews.NewClient(hackernews.Config{
		APIURL:       cfg.HackerNews.APIURL,
		WebURL:       cfg.HackerNews.WebURL,
		Timeout:      cfg.HTTP.Timeout,
		MaxPageBytes: cfg.HTTP.MaxPageBytes,
		UserAgent:    cfg.HTTP.UserAgent,
	})

	sources := make([]ports.CandidateSource, 0, len(cfg.Sources))
	for _, name := range cfg.Sources {
		source, err := client.NewSource(name)
		if err != nil {
			return fmt.Errorf("wire candidate source: %w", err)
		}
		sources = append(sources, source)
	}

	var summaries ports.Summarizer = summarizer.Noop{}
	if cmd.Annotations[summarizerAnnotation] == "true" {
		if err := resolveAPIKeys(cmd.Context(), &cfg); err != nil {
			return fmt.Errorf("wire summarizer: %w", err)
		}
		summaries, err = newSummarizer(cmd.Context(), cfg.Summarizer)
		if err != nil {
			return fmt.Errorf("wire summarizer: %w", err)
		}
	}

	a.config = cfg
	a.logger = logger
	a.service = application.NewService(
		repo,
		sources,
		client,
		summaries,
		ports.SystemClock{},
		application.WithPolicy(cfg.Policy),
		application.WithLogger(logger),
	)
	a.digestRenderer = digest.Render
	a.now = time.Now
	a.exporter = nil
	if cfg.AppDataPath != "" {
		executable, _ := os.Executable()
		a.exporter = appdata.NewExporter(appdata.Config{
			Path:       cfg.AppDataPath,
			Cron:       cfg.Schedule,
			Executable: executable,
		})
	}

	logger.Debug().
		Str("state", repo.Path()).
		Strs("sources", cfg.Sources).
		Str("summarizer", cfg.Summarizer.Provider).
		Msg("wired")

	return nil
}

func newSummarizer(ctx context.Context, cfg config.SummarizerConfig) (ports.Summarizer, error) {
	switch cfg.Provider {
	case config.ProviderPromptbox:
		return promptbox.New(promptbox.Config{Command: cfg.Command}), nil
	case config.ProviderOpenAI:
		return openai.New(openai.Config{
			APIKey:  cfg.OpenAI.APIKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   cfg.OpenAI.Model,
		})
	case config.ProviderGemini:
		return gemini.New(ctx, gemini.Config{
			APIKey:  cfg.Gemini.APIKey,
			BaseURL: cfg.Gemini.BaseURL,
			Model:   cfg.Gemini.Model,
		})
	case config.ProviderNone:
		return summarizer.Noop{}, nil
	default:
		return nil, fmt.Errorf("unknown summarizer provider %q", cfg.Provider)
	}
}

// resolveAPIKeys looks up the selected provider's key in pass, then in the secrets directory,
// when it is referenced by name instead of given inline.
func resolveAPIKeys(ctx context.Context, cfg *config.Config) error {
	var provider *config.ProviderConfig
	switch cfg.Summarizer.Provider {
	case config.ProviderOpenAI:
		provider = &cfg.Summarizer.OpenAI
	case config.ProviderGemini:
		provider = &cfg.Summarizer.Gemini
	default:
		return nil
	}
	if provider.APIKey != "" || provider.APIKeySecret == "" {
		return nil
	}

	secrets, err := chainstore.NewPassFirstWithFileFallback(cfg.SecretsDir)
	if err != nil {
		return fmt.Errorf("wire secret reader: %w", err)
	}
	return resolveAPIKey(ctx, secrets, provider)
}

func resolveAPIKey(ctx context.Context, secrets ports.SecretReader, provider *config.ProviderConfig) error {
	value, err := secrets.Get(ctx, provider.APIKeySecret)
	if err != nil {
		return err
	}
	provider.APIKey = value
	return nil
}

// refresh runs one cycle and exports the app data when an output path is configured.
func (a *app) refresh(ctx context.Context, opts application.RunOptions) (application.RunReport, error) {
	report, err := a.service.Run(ctx, opts)
	if err != nil {
		return report, err
	}

	if a.exporter == nil {
		return report, nil
	}

	records, err := a.service.Records(ctx)
	if err != nil {
		return report, err
	}
	if err := a.exporter.Export(ctx, records); err != nil {
		return report, fmt.Errorf("export app data: %w", err)
	}
	a.logger.Debug().Str("path", a.config.AppDataPath).Int("items", len(records)).Msg("app data exported")

	return report, nil
}
