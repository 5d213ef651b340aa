package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/Aida-adzd/smart-news-summarizer/db"
	"github.com/Aida-adzd/smart-news-summarizer/internal/config"
	"github.com/Aida-adzd/smart-news-summarizer/internal/digest"
	"github.com/Aida-adzd/smart-news-summarizer/internal/handler"
	"github.com/Aida-adzd/smart-news-summarizer/internal/repository"
	"github.com/Aida-adzd/smart-news-summarizer/internal/rpc"
	"github.com/Aida-adzd/smart-news-summarizer/pkg/llm"
	"github.com/Aida-adzd/smart-news-summarizer/pkg/mail"
	"github.com/Aida-adzd/smart-news-summarizer/pkg/news"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}
	defer db.CloseRedis()

	var store *repository.DigestRepository
	if cfg.DatabaseURL != "" {
		err = db.Connect(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("error connecting to DB: %v", err)
		}
		defer db.Close()

		err = db.Migrate()
		if err != nil {
			log.Fatalf("error migrating DB: %v", err)
		}

		store = repository.NewDigestRepository(db.DB)
	} else {
		slog.Info("DATABASE_URL not set, digest history disabled")
	}

	opts := digest.Options{
		LLM:         newLLMClient(cfg),
		News:        newNewsClient(cfg),
		TopicPrompt: llm.LoadTopicPrompt(cfg.SystemPromptFile),
		OutputDir:   cfg.OutputDir,
	}

	if cfg.MailEnabled() {
		opts.Mailer = mail.NewSMTPMailer(mail.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		})
	} else {
		slog.Info("SMTP credentials not set, email delivery disabled")
	}

	// assigned only when set so the handlers see a nil interface otherwise
	var history handler.DigestStore
	if store != nil {
		opts.Store = store
		history = store
	}

	svc := digest.NewService(opts)

	r := gin.Default()

	allowedOrigins := []string{"http://localhost:3000"}

	if cfg.FrontendURL != "" {
		allowedOrigins = append(allowedOrigins, cfg.FrontendURL)
	}

	slog.Info("AllowOrigins URL:", "urls", allowedOrigins)

	r.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", handler.APIKeyHeader},
	}))

	r.POST("/smart-news", handler.NewNewsHandler(svc).SmartNews)
	r.GET("/health", handler.NewHealthHandler(history).GetHealth)

	if history != nil {
		digestHandler := handler.NewDigestHandler(history)
		r.GET("/digests/:id", digestHandler.GetDigest)
		r.GET("/digests", digestHandler.GetDigests)
	}

	if cfg.MCPAPIKey != "" {
		reg := rpc.NewRegistry()
		err = handler.RegisterTools(reg, svc, history)
		if err != nil {
			log.Fatalf("error registering tools: %v", err)
		}

		rpcHandler := handler.NewRPCHandler(rpc.NewDispatcher(reg))
		r.POST("/jsonrpc", handler.RequireAPIKey(cfg.MCPAPIKey), rpcHandler.Handle)
	} else {
		slog.Warn("MCP_API_KEY not set, /jsonrpc endpoint disabled")
	}

	err = r.Run(":" + cfg.Port)
	if err != nil {
		log.Fatalf("error starting server: %v", err)
	}
}

func newLLMClient(cfg *config.Config) llm.Client {
	if cfg.LLMProvider == config.ProviderAnthropic {
		return llm.NewAnthropicClient(cfg.AnthropicAPIKey)
	}
	return llm.NewOpenAIClient(cfg.OpenAIAPIKey)
}

// newNewsClient puts NewsAPI first and the market news sources behind it,
// wrapped in the Redis cache when REDIS_URL is reachable.
func newNewsClient(cfg *config.Config) news.Client {
	clients := []news.Client{news.NewNewsAPIClient(cfg.NewsAPIKey)}
	if cfg.AlphaVantageAPIKey != "" {
		clients = append(clients, news.NewAlphaVantageClient(cfg.AlphaVantageAPIKey))
	}
	if cfg.FinnhubAPIKey != "" {
		clients = append(clients, news.NewFinnHubClient(cfg.FinnhubAPIKey))
	}

	var client news.Client = clients[0]
	if len(clients) > 1 {
		client = news.NewFallbackClient(clients...)
	}

	if cfg.RedisURL == "" {
		return client
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.ConnectRedis(ctx, cfg.RedisURL); err != nil {
		slog.Error("error connecting to Redis, news cache disabled", "error", err)
		return client
	}

	slog.Info("news cache enabled", "ttl", cfg.NewsCacheTTL.String())
	return news.NewCachedClient(client, db.RedisCache{}, cfg.NewsCacheTTL)
}
