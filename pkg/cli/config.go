package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/specei/recall/pkg/adapter"
	"github.com/specei/recall/pkg/repository"
	"github.com/specei/recall/pkg/usecase/ingest"
	"github.com/specei/recall/pkg/usecase/recall"
	"github.com/specei/recall/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// config holds configuration values
type config struct {
	// Repository
	project  string
	database string

	// Reasoner selection: "gemini" or "claude"
	reasoner        string
	anthropicAPIKey string
	geminiProject   string
	geminiLocation  string

	// Classifier
	rulesPath string

	// Logging
	logLevel string
}

// mediaConfig holds configuration for the ingest side: where media listings
// and blobs come from.
type mediaConfig struct {
	bucket     string
	apiBaseURL string
	apiKey     string
}

// globalFlags returns common flags used across commands with destination config
func globalFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "project",
			Aliases:     []string{"p"},
			Usage:       "Google Cloud project ID",
			Sources:     cli.EnvVars("GOOGLE_CLOUD_PROJECT"),
			Destination: &cfg.project,
		},
		&cli.StringFlag{
			Name:        "database",
			Aliases:     []string{"d"},
			Usage:       "Firestore database ID",
			Value:       "(default)",
			Sources:     cli.EnvVars("FIRESTORE_DATABASE_ID"),
			Destination: &cfg.database,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Sources:     cli.EnvVars("RECALL_LOG_LEVEL"),
			Destination: &cfg.logLevel,
		},
	}
}

// llmFlags returns flags for LLM-related configuration with destination config
func llmFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "reasoner",
			Usage:       "Reasoning backend: gemini or claude",
			Value:       "gemini",
			Sources:     cli.EnvVars("RECALL_REASONER"),
			Destination: &cfg.reasoner,
		},
		&cli.StringFlag{
			Name:        "anthropic-api-key",
			Usage:       "Anthropic API key",
			Sources:     cli.EnvVars("ANTHROPIC_API_KEY"),
			Destination: &cfg.anthropicAPIKey,
		},
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini",
			Sources:     cli.EnvVars("GEMINI_PROJECT_ID"),
			Destination: &cfg.geminiProject,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini",
			Value:       "us-central1",
			Sources:     cli.EnvVars("GEMINI_LOCATION"),
			Destination: &cfg.geminiLocation,
		},
	}
}

// classifierFlags returns flags controlling memory-query detection
func classifierFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "rules",
			Usage:       "Path to a YAML file of query classifier rules",
			Sources:     cli.EnvVars("RECALL_RULES_FILE"),
			Destination: &cfg.rulesPath,
		},
	}
}

// mediaFlags returns flags for the media capture platform
func mediaFlags(cfg *mediaConfig) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "media-bucket",
			Usage:       "Cloud Storage bucket holding captured media blobs",
			Sources:     cli.EnvVars("RECALL_MEDIA_BUCKET"),
			Destination: &cfg.bucket,
		},
		&cli.StringFlag{
			Name:        "media-api-url",
			Usage:       "Base URL of the capture platform REST API",
			Sources:     cli.EnvVars("RECALL_MEDIA_API_URL"),
			Destination: &cfg.apiBaseURL,
		},
		&cli.StringFlag{
			Name:        "media-api-key",
			Usage:       "API key for the capture platform REST API",
			Sources:     cli.EnvVars("RECALL_MEDIA_API_KEY"),
			Destination: &cfg.apiKey,
		},
	}
}

// setupLogging installs the configured logger as the default and attaches it
// to the context so usecases pick it up via logging.From.
func (cfg *config) setupLogging(ctx context.Context) context.Context {
	logger := logging.New(cfg.logLevel, nil)
	logging.SetDefault(logger)
	return logging.With(ctx, logger)
}

// newRepository creates a new repository instance
func (cfg *config) newRepository(ctx context.Context) (*repository.Firestore, error) {
	if cfg.project == "" {
		return nil, goerr.New("project is required")
	}
	if cfg.database == "" {
		return nil, goerr.New("database is required")
	}

	repo, err := repository.New(ctx, cfg.project, cfg.database)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create repository")
	}
	return repo, nil
}

// newGemini creates a new Gemini adapter instance
func (cfg *config) newGemini(ctx context.Context) (*adapter.GeminiClient, error) {
	if cfg.geminiProject == "" {
		return nil, goerr.New("gemini-project is required")
	}
	if cfg.geminiLocation == "" {
		return nil, goerr.New("gemini-location is required")
	}
	return adapter.NewGemini(ctx, cfg.geminiProject, cfg.geminiLocation)
}

// newReasoner creates the configured reasoning backend
func (cfg *config) newReasoner(ctx context.Context) (adapter.Reasoner, error) {
	switch cfg.reasoner {
	case "gemini":
		return cfg.newGemini(ctx)
	case "claude":
		if cfg.anthropicAPIKey == "" {
			return nil, goerr.New("anthropic-api-key is required")
		}
		return adapter.NewClaude(cfg.anthropicAPIKey), nil
	default:
		return nil, goerr.New("unknown reasoner", goerr.V("reasoner", cfg.reasoner))
	}
}

// newClassifier loads classifier rules from the configured file, or falls
// back to the built-in rule table.
func (cfg *config) newClassifier() (*recall.Classifier, error) {
	if cfg.rulesPath == "" {
		return recall.NewClassifier(recall.DefaultRules()), nil
	}

	rules, err := recall.LoadRules(cfg.rulesPath)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load classifier rules")
	}
	return recall.NewClassifier(rules), nil
}

// newPipeline assembles the full recall pipeline over Firestore
func (cfg *config) newPipeline(ctx context.Context) (*recall.UseCase, *repository.Firestore, error) {
	repo, err := cfg.newRepository(ctx)
	if err != nil {
		return nil, nil, err
	}

	reasoner, err := cfg.newReasoner(ctx)
	if err != nil {
		repo.Close()
		return nil, nil, err
	}

	classifier, err := cfg.newClassifier()
	if err != nil {
		repo.Close()
		return nil, nil, err
	}

	pipeline := recall.New(recall.NewScorer(repo), reasoner,
		recall.WithClassifier(classifier))
	return pipeline, repo, nil
}

// newStorage creates a new Storage adapter instance
func (cfg *mediaConfig) newStorage(ctx context.Context) (adapter.Storage, error) {
	if cfg.bucket == "" {
		return nil, goerr.New("media-bucket is required")
	}

	storage, err := adapter.NewStorage(ctx, cfg.bucket)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage")
	}
	return storage, nil
}

// newMediaSource creates the capture platform media listing client
func (cfg *mediaConfig) newMediaSource() (ingest.MediaSource, error) {
	if cfg.apiBaseURL == "" {
		return nil, goerr.New("media-api-url is required")
	}
	if cfg.apiKey == "" {
		return nil, goerr.New("media-api-key is required")
	}
	return adapter.NewRESTMediaSource(cfg.apiBaseURL, cfg.apiKey), nil
}
