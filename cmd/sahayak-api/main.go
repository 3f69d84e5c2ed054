package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	cli "github.com/urfave/cli/v3"

	"github.com/sahayakhq/sahayak/pkg/audit"
	"github.com/sahayakhq/sahayak/pkg/catalog"
	"github.com/sahayakhq/sahayak/pkg/cmd"
	"github.com/sahayakhq/sahayak/pkg/dispatch"
	"github.com/sahayakhq/sahayak/pkg/generation"
	"github.com/sahayakhq/sahayak/pkg/language"
	"github.com/sahayakhq/sahayak/pkg/log"
	"github.com/sahayakhq/sahayak/pkg/objectstore"
	"github.com/sahayakhq/sahayak/pkg/orchestrator"
	"github.com/sahayakhq/sahayak/pkg/otelhelper"
	"github.com/sahayakhq/sahayak/pkg/retrieval"
)

const (
	defaultPort          = 8080
	defaultRetentionDays = 90
)

func main() {
	_ = godotenv.Load()

	root := &cli.Command{
		Name:                  "sahayak-api",
		Usage:                 "Run the multilingual loan onboarding assistant API",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "api-key",
				Usage:   "Shared key clients must send in the X-API-Key header (empty disables auth)",
				Sources: cli.EnvVars("API_KEY"),
			},
			&cli.StringFlag{
				Name:    "catalog",
				Usage:   "Path to the action catalog JSON (empty uses the embedded catalog)",
				Sources: cli.EnvVars("CATALOG_PATH"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:     "genai-api-key",
				Usage:    "API key for the Gemini embedding and generation models",
				Required: true,
				Sources:  cli.EnvVars("GEMINI_API_KEY"),
			},
			&cli.StringFlag{
				Name:    "llm-model",
				Usage:   "Generation model name",
				Sources: cli.EnvVars("LLM_MODEL"),
			},
			&cli.StringFlag{
				Name:    "embedding-model",
				Usage:   "Embedding model name",
				Sources: cli.EnvVars("EMBEDDING_MODEL"),
			},
			&cli.FloatFlag{
				Name:    "retrieval-min-score",
				Usage:   "Minimum cosine similarity for an action match",
				Value:   retrieval.DefaultMinScore,
				Sources: cli.EnvVars("RETRIEVAL_MIN_SCORE"),
			},
			&cli.StringFlag{
				Name:    "asr-host",
				Usage:   "Base URL of the speech-to-text service",
				Sources: cli.EnvVars("ASR_HOST"),
			},
			&cli.StringFlag{
				Name:    "translator-host",
				Usage:   "Base URL of the translation service",
				Sources: cli.EnvVars("TRANSLATOR_HOST"),
			},
			&cli.StringFlag{
				Name:    "tts-host",
				Usage:   "Base URL of the text-to-speech service",
				Sources: cli.EnvVars("TTS_HOST"),
			},
			&cli.StringFlag{
				Name:    "dispatch-base-url",
				Usage:   "Base URL the catalog's relative endpoint paths resolve against",
				Sources: cli.EnvVars("DISPATCH_BASE_URL"),
			},
			&cli.StringFlag{
				Name:    "redis-addr",
				Usage:   "Redis address for session storage (empty uses in-memory sessions)",
				Sources: cli.EnvVars("REDIS_ADDR"),
			},
			&cli.StringFlag{
				Name:    "redis-password",
				Sources: cli.EnvVars("REDIS_PASSWORD"),
			},
			&cli.IntFlag{
				Name:    "redis-db",
				Sources: cli.EnvVars("REDIS_DB"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (gochannel, kafka)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "audit-database-url",
				Usage:   "Postgres URL for audit persistence (empty disables audit recording)",
				Sources: cli.EnvVars("AUDIT_DATABASE_URL"),
			},
			&cli.IntFlag{
				Name:    "audit-retention-days",
				Usage:   "Days to keep audit entries before the nightly sweep deletes them",
				Value:   defaultRetentionDays,
				Sources: cli.EnvVars("AUDIT_RETENTION_DAYS"),
			},
			&cli.StringFlag{
				Name:    "s3-endpoint",
				Usage:   "S3-compatible object store endpoint",
				Sources: cli.EnvVars("S3_ENDPOINT"),
			},
			&cli.StringFlag{
				Name:    "s3-region",
				Sources: cli.EnvVars("S3_REGION"),
			},
			&cli.StringFlag{
				Name:    "s3-access-key",
				Sources: cli.EnvVars("S3_ACCESS_KEY"),
			},
			&cli.StringFlag{
				Name:    "s3-secret-key",
				Sources: cli.EnvVars("S3_SECRET_KEY"),
			},
			&cli.StringFlag{
				Name:    "s3-bucket",
				Value:   "sahayak",
				Sources: cli.EnvVars("S3_BUCKET"),
			},
			&cli.BoolFlag{
				Name:    "s3-use-ssl",
				Sources: cli.EnvVars("S3_USE_SSL"),
			},
			&cli.BoolFlag{
				Name:    "otel-enabled",
				Usage:   "Export traces over OTLP",
				Sources: cli.EnvVars("OTEL_ENABLED"),
			},
		},
		Action: run,
	}

	err := root.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}

func run(ctx context.Context, command *cli.Command) error {
	log.Setup(command.String("log-level"))

	logger := log.WithModule("api")
	logger.InfoContext(ctx, "Initializing Sahayak API")

	if command.Bool("otel-enabled") {
		if _, err := otelhelper.NewTracer(ctx, "sahayak-api"); err != nil {
			return fmt.Errorf("failed to initialize tracer: %w", err)
		}
	}

	// The catalog is validated before anything binds a port so a broken
	// deploy fails fast.
	cat, err := loadCatalog(command.String("catalog"))
	if err != nil {
		return fmt.Errorf("failed to load action catalog: %w", err)
	}

	store, err := objectstore.NewStore(objectstore.Config{
		Endpoint:  command.String("s3-endpoint"),
		Region:    command.String("s3-region"),
		AccessKey: command.String("s3-access-key"),
		SecretKey: command.String("s3-secret-key"),
		Bucket:    command.String("s3-bucket"),
		UseSSL:    command.Bool("s3-use-ssl"),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize object store: %w", err)
	}

	embedder, err := retrieval.NewGenAIEmbedder(ctx, command.String("genai-api-key"), command.String("embedding-model"))
	if err != nil {
		return fmt.Errorf("failed to initialize embedder: %w", err)
	}

	index, err := retrieval.NewIndex(ctx, embedder, cat.Actions(), logger,
		retrieval.WithMinScore(command.Float("retrieval-min-score")))
	if err != nil {
		return fmt.Errorf("failed to build retrieval index: %w", err)
	}

	detector, err := language.NewDetector(ctx, embedder)
	if err != nil {
		return fmt.Errorf("failed to build language detector: %w", err)
	}

	gateway := language.NewGateway(
		detector,
		language.NewHTTPTranscriber(command.String("asr-host")),
		language.NewHTTPTranslator(command.String("translator-host")),
		language.NewHTTPSynthesizer(command.String("tts-host")),
		store,
		logger,
	)

	generator, err := generation.NewGeminiGenerator(ctx, command.String("genai-api-key"), command.String("llm-model"))
	if err != nil {
		return fmt.Errorf("failed to initialize generator: %w", err)
	}

	sessions := cmd.NewSessionStore(ctx, logger,
		command.String("redis-addr"), command.String("redis-password"), command.Int("redis-db"))

	defer func() {
		if closeErr := sessions.Close(); closeErr != nil {
			logger.ErrorContext(ctx, "Failed to close session store", "error", closeErr)
		}
	}()

	eventBus := cmd.NewEventBus(command.String("event-bus"), "sahayak", logger)

	defer func() {
		if closeErr := eventBus.Close(); closeErr != nil {
			logger.ErrorContext(ctx, "Failed to close event bus", "error", closeErr)
		}
	}()

	if databaseURL := command.String("audit-database-url"); databaseURL != "" {
		repo, auditErr := audit.NewPostgresRepository(ctx, logger, databaseURL)
		if auditErr != nil {
			return fmt.Errorf("failed to initialize audit repository: %w", auditErr)
		}

		defer func() {
			if closeErr := repo.Close(); closeErr != nil {
				logger.ErrorContext(ctx, "Failed to close audit repository", "error", closeErr)
			}
		}()

		recorder := audit.NewRecorder(eventBus, repo, logger)
		if auditErr = recorder.Start(ctx); auditErr != nil {
			return fmt.Errorf("failed to start audit recorder: %w", auditErr)
		}

		sweeper := audit.NewSweeper(repo, command.Int("audit-retention-days"), logger)
		if auditErr = sweeper.Start(ctx); auditErr != nil {
			return fmt.Errorf("failed to start audit sweeper: %w", auditErr)
		}

		defer sweeper.Stop(ctx)
	}

	o := orchestrator.New(orchestrator.Config{
		Catalog:    cat,
		Index:      index,
		Gateway:    gateway,
		Generator:  generator,
		Dispatcher: dispatch.NewDispatcher(command.String("dispatch-base-url"), logger),
		Sessions:   sessions,
		Logger:     logger,
	})

	api := NewAPI(logger, o, store, eventBus, command.String("api-key"))

	err = api.Start(command.Int("port"))
	if err != nil {
		logger.ErrorContext(ctx, "Failed to start API server", "error", err)
	}

	return err
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}

	return catalog.Load(path)
}
