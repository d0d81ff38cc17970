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

	_ "github.com/joho/godotenv/autoload"

	"github.com/gin-gonic/gin"

	"github.com/ullas9525/portfolio/internal/config"
	"github.com/ullas9525/portfolio/internal/content"
	"github.com/ullas9525/portfolio/internal/session"
	"github.com/ullas9525/portfolio/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	gin.SetMode(cfg.GinMode)

	site, err := content.LoadFile(cfg.ContentPath)
	if err != nil {
		log.Fatal("Failed to load site content: ", err)
	}

	metrics, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatal("Failed to open metrics database: ", err)
	}
	defer metrics.Close()

	sessions := session.New(site, session.Options{TTL: cfg.SessionTTL})
	defer sessions.Close()

	stop := make(chan struct{})
	defer close(stop)
	go sessions.Run(time.Minute, stop)
	go cleanupLoop(metrics, cfg.VisitorRetention, stop)

	username, password, usedDefault := cfg.AdminCredentials()
	if usedDefault && gin.Mode() == gin.DebugMode {
		log.Println("WARNING: Using default admin credentials. Set ADMIN_USERNAME and ADMIN_PASSWORD.")
	}
	adm, err := newAdmin(metrics, username, password, cfg.VisitorRetention)
	if err != nil {
		log.Fatal("Failed to initialise admin: ", err)
	}
	go adm.limiter.run(time.Minute, 10*time.Minute, stop)

	r, err := newRouter(newPortfolio(site, sessions, metrics), adm)
	if err != nil {
		log.Fatal("Failed to build router: ", err)
	}
	r.Static("/images", "./images")
	r.Static("/static", "./static")

	ctx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	srv := &http.Server{Addr: cfg.Addr(), Handler: r}
	go func() {
		log.Printf("Portfolio listening on %s", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down: %v", err)
	}
}

// cleanupLoop drops visitor records past the retention window once a day.
func cleanupLoop(metrics *store.DB, retention time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		removed, err := metrics.Cleanup(context.Background(), retention)
		if err != nil {
			log.Printf("Error cleaning up old visitor data: %v", err)
		} else if removed > 0 {
			log.Printf("Privacy cleanup: Removed %d visitor records older than %s", removed, retention)
		}
		select {
		case <-ticker.C:
		case <-stop:
			return
		}
	}
}
