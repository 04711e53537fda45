package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	openai "github.com/sashabaranov/go-openai"

	"github.com/arogyamitra/health-chatbot/internal/api/router"
	"github.com/arogyamitra/health-chatbot/internal/booking"
	"github.com/arogyamitra/health-chatbot/internal/chat"
	appconfig "github.com/arogyamitra/health-chatbot/internal/config"
	"github.com/arogyamitra/health-chatbot/internal/diagnosis"
	"github.com/arogyamitra/health-chatbot/internal/directory"
	"github.com/arogyamitra/health-chatbot/internal/llm"
	"github.com/arogyamitra/health-chatbot/internal/observability/metrics"
	"github.com/arogyamitra/health-chatbot/internal/report"
	"github.com/arogyamitra/health-chatbot/internal/schedule"
	"github.com/arogyamitra/health-chatbot/pkg/logging"
)

func main() {
	// .env is optional; real deployments rely on the environment.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting health-chatbot API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	var ledgerCache *chat.LedgerCache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		ledgerCache = chat.NewLedgerCache(rdb, cfg.LedgerTTL)
	} else {
		logger.Warn("REDIS_ADDR not set; conversation caching disabled")
	}

	llmClient, err := buildLLMClient(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize LLM client", "error", err)
		os.Exit(1)
	}

	chatMetrics := metrics.NewChatMetrics(prometheus.DefaultRegisterer)

	generator := llm.NewGenerator(llmClient, cfg.OpenAIModel, cfg.GenerateTimeout, logger, chatMetrics)

	doctorRepo := directory.NewPostgresRepository(pool)
	scheduleRepo := schedule.NewPostgresRepository(pool)
	appointmentRepo := booking.NewPostgresRepository(pool)
	diagnosisRepo := diagnosis.NewPostgresRepository(pool)

	appointmentPipeline := booking.NewPipeline(doctorRepo, scheduleRepo, appointmentRepo, generator, logger, chatMetrics, cfg.SlotWindowDays)
	diagnosisPipeline := diagnosis.NewPipeline(generator, diagnosisRepo, logger, cfg.DiagnosisQuestionLimit)

	chatService := chat.NewService(generator, diagnosisPipeline, appointmentPipeline, ledgerCache, logger, chatMetrics, cfg.DiagnosisQuestionLimit)
	chatHandler := chat.NewHandler(chatService, logger)

	reportService := report.NewService(generator, logger)
	reportHandler := report.NewHandler(reportService, logger)

	r := router.New(&router.Config{
		Logger:             logger,
		ChatHandler:        chatHandler,
		ReportHandler:      reportHandler,
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// buildLLMClient wires OpenAI as the primary provider with an optional Bedrock
// fallback when BEDROCK_MODEL_ID is configured.
func buildLLMClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (llm.Client, error) {
	if cfg.OpenAIAPIKey == "" {
		return nil, errors.New("OPENAI_API_KEY is required")
	}
	primary := llm.NewOpenAIClient(openai.NewClient(cfg.OpenAIAPIKey))

	if cfg.BedrockModelID == "" {
		return primary, nil
	}

	loaders := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.AWSRegion)}
	if strings.TrimSpace(cfg.AWSAccessKeyID) != "" && strings.TrimSpace(cfg.AWSSecretAccessKey) != "" {
		loaders = append(loaders, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return nil, err
	}

	fallback := llm.NewBedrockClient(bedrockruntime.NewFromConfig(awsCfg), cfg.BedrockModelID)
	return llm.NewFallbackClient(primary, fallback, logger), nil
}
