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

	"github.com/gin-gonic/gin"

	"backlogr/internal/cover"
	"backlogr/internal/events"
	"backlogr/internal/library"
	"backlogr/internal/sheet"
	"backlogr/pkg/database"
	"backlogr/pkg/models"
	"backlogr/pkg/utils"
)

func main() {
	cfg := utils.LoadConfig()

	dbCfg := database.DefaultConfig()
	db := database.MustOpen(dbCfg)
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	cache, err := cover.NewCache(db, cfg.CoverTTL)
	if err != nil {
		log.Fatalf("cover cache init failed: %v", err)
	}

	hub := events.NewHub()

	resolver := cover.NewResolver(cache, cover.NewSearchClient(cfg.RAWGAPIKey), cfg.QueueDelay)
	resolver.Hub = hub

	reader := sheet.NewReader()
	svc := library.NewService(func(ctx context.Context) ([]models.Game, error) {
		rows, err := reader.Fetch(ctx, cfg.SheetURL)
		if err != nil {
			return nil, err
		}
		return sheet.Normalize(rows)
	})
	svc.Hub = hub

	// Initial ingestion. A failure here is not fatal: the server comes up
	// empty and a later POST /library/reload can succeed.
	{
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := svc.Reload(ctx); err != nil {
			log.Printf("initial library load failed: %v", err)
		} else {
			log.Printf("library loaded: %d games (run %s)", len(svc.Games()), svc.RunID())
		}
		cancel()
	}

	router := gin.Default()

	// Optional: avoid “trusted all proxies” warning
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	router.GET("/ws", events.WSHandler(hub))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": dbCfg.Path})
	})

	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "not_ready",
				"db_error": err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":     "ready",
			"db":         "ok",
			"run_id":     svc.RunID(),
			"games":      len(svc.Games()),
			"queue_len":  resolver.QueueLen(),
			"ws_clients": hub.Stats().Clients,
		})
	})

	api := router.Group("/")
	library.NewHandler(svc).RegisterRoutes(api)
	cover.NewHandler(resolver).RegisterRoutes(api)

	httpSrv := &http.Server{
		Addr:    cfg.Addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("HTTP API server listening on %s", cfg.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("shutdown signal received: %s", sig)
	case err := <-errCh:
		log.Printf("server error: %v", err)
	}

	log.Println("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}
	log.Println("server stopped")
}
