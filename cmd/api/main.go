package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/spacesedan/moodstream/config"
	"github.com/spacesedan/moodstream/internal/chart"
	"github.com/spacesedan/moodstream/internal/clients"
	"github.com/spacesedan/moodstream/internal/handlers"
	"github.com/spacesedan/moodstream/internal/logging"
	"github.com/spacesedan/moodstream/internal/monitoring"
	"github.com/spacesedan/moodstream/internal/sentiment"
	"github.com/spacesedan/moodstream/internal/service"
)

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)
	logging.InitLogger()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	classifier := buildClassifier()
	summarizer := buildSummarizer()

	analyzer := service.NewAnalyzer(
		clients.NewRedditClient(config.RedditClientID(), config.RedditClientSecret()),
		sentiment.NewAggregator(classifier),
		chart.NewPieRenderer(),
		summarizer,
	)

	backendHealthy := &atomic.Bool{}
	if pinger, ok := summarizer.(monitoring.Pinger); ok {
		go monitoring.MonitorBackendHealth(ctx, pinger, backendHealthy)
	} else {
		backendHealthy.Store(true)
	}

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{config.FrontendURL()},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
	}))

	handlers.NewAnalyzeHandler(analyzer, backendHealthy).RegisterRoutes(router)

	addr := ":" + config.Port()
	slog.Info("[Main] Starting analysis API", slog.String("addr", addr))
	if err := router.Run(addr); err != nil {
		slog.Error("[Main] Server exited",
			slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func buildClassifier() sentiment.Classifier {
	if modelPath := config.SentimentModelPath(); modelPath != "" {
		classifier, err := sentiment.NewTransformerClassifier(modelPath)
		if err != nil {
			slog.Error("[Main] Failed to load sentiment model, falling back to VADER",
				slog.String("path", modelPath),
				slog.String("error", err.Error()))
			return sentiment.NewVADERClassifier()
		}
		return classifier
	}
	return sentiment.NewVADERClassifier()
}

func buildSummarizer() service.Summarizer {
	switch config.SummaryBackend() {
	case "openai":
		summarizer, err := clients.NewOpenAISummarizer(os.Getenv("OPENAI_API_KEY"), config.OpenAIModel())
		if err != nil {
			slog.Error("[Main] Failed to initialize OpenAI summarizer",
				slog.String("error", err.Error()))
			os.Exit(1)
		}
		return summarizer
	default:
		return clients.NewOllamaClient(config.OllamaBaseURL(), config.OllamaModel())
	}
}
