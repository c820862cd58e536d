package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/blockforge/craftchat/internal/config"
	"github.com/blockforge/craftchat/internal/handler"
	chatHandler "github.com/blockforge/craftchat/internal/handler/chat"
	"github.com/blockforge/craftchat/internal/recipe"
	"github.com/blockforge/craftchat/internal/service/ai"
	"github.com/blockforge/craftchat/internal/service/chat"
	"github.com/blockforge/craftchat/internal/tool"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	profile, err := config.LoadProfile(cfg.ProfilePath)
	if err != nil {
		log.Fatalf("failed to load chat profile: %v", err)
	}

	// Open the recipe database when configured; the tool and lookup
	// endpoint stay disabled otherwise.
	var recipes *recipe.Store
	if cfg.Recipes.Enabled() {
		recipes, err = recipe.Open(cfg.Recipes.DBPath)
		if err != nil {
			log.Printf("warning: failed to open recipe database: %v", err)
			log.Println("continuing without recipe lookups")
			recipes = nil
		} else {
			defer recipes.Close()
			log.Printf("recipe database opened at %s", cfg.Recipes.DBPath)
		}
	} else {
		log.Println("RECIPE_DB_PATH 未配置，跳过配方功能初始化")
	}

	registry := tool.NewRegistry()
	if recipes != nil {
		if err := registry.Register(tool.NewRecipeTool(recipes)); err != nil {
			log.Fatalf("failed to register recipe tool: %v", err)
		}
	}

	// Initialize AI service
	var aiService *ai.Service
	if cfg.AI.Enabled() {
		chatModel, err := cfg.AI.NewChatModel(ctx, profile)
		if err != nil {
			log.Printf("warning: failed to create chat model: %v", err)
			log.Println("continuing without AI functionality - 请检查 Ark 模型相关环境变量")
		} else {
			aiService, err = ai.NewService(ctx, chatModel, profile, registry)
			if err != nil {
				log.Printf("warning: failed to initialize AI service: %v", err)
			} else {
				log.Println("AI service initialized successfully")
			}
		}
	} else {
		log.Println("Ark 凭证未配置，跳过 AI 功能初始化")
	}

	sessions := chat.NewService(cfg.Session.TTL)
	go sweepSessions(ctx, sessions, cfg.Session.TTL)

	var generator chatHandler.Generator
	if aiService != nil {
		generator = aiService
	}

	router := handler.NewRouter(sessions, generator, recipes)

	startServer(ctx, cfg.Server, router)
}

// sweepSessions periodically drops idle-expired player sessions.
func sweepSessions(ctx context.Context, sessions *chat.Service, ttl time.Duration) {
	interval := ttl
	if interval > time.Minute {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := sessions.Sweep(ctx); removed > 0 {
				log.Printf("[session] swept %d idle sessions", removed)
			}
		}
	}
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("craftchat backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
