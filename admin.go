// admin.go - privacy-conscious admin dashboard over the visitor metrics
package main

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/ullas9525/portfolio/internal/store"
)

const adminCookie = "admin_token"

type admin struct {
	token     string
	username  string
	password  string
	metrics   *store.DB
	limiter   *loginLimiter
	retention time.Duration
}

func newAdmin(metrics *store.DB, username, password string, retention time.Duration) (*admin, error) {
	token, err := generateAdminToken()
	if err != nil {
		return nil, err
	}

	log.Printf("Admin access available at: /admin/login")
	if gin.Mode() == gin.DebugMode {
		log.Printf("Admin token (dev only): %s", token)
	}

	return &admin{
		token:     token,
		username:  username,
		password:  password,
		metrics:   metrics,
		limiter:   newLoginLimiter(rate.Every(time.Minute/5), 5),
		retention: retention,
	}, nil
}

func generateAdminToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generating admin token: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

func (a *admin) checkCredentials(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) == 1
	return userOK && passOK
}

// loginLimiter throttles login attempts per hashed client address.
type loginLimiter struct {
	mu      sync.Mutex
	clients map[string]*loginClient
	every   rate.Limit
	burst   int
	now     func() time.Time
}

type loginClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newLoginLimiter(every rate.Limit, burst int) *loginLimiter {
	return &loginLimiter{
		clients: make(map[string]*loginClient),
		every:   every,
		burst:   burst,
		now:     time.Now,
	}
}

func (l *loginLimiter) allow(key string) bool {
	l.mu.Lock()
	now := l.now()
	cl, ok := l.clients[key]
	if !ok {
		cl = &loginClient{limiter: rate.NewLimiter(l.every, l.burst)}
		l.clients[key] = cl
	}
	cl.lastSeen = now
	l.mu.Unlock()
	return cl.limiter.AllowN(now, 1)
}

// sweep forgets clients not seen for longer than idle.
func (l *loginLimiter) sweep(idle time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	removed := 0
	for key, cl := range l.clients {
		if now.Sub(cl.lastSeen) > idle {
			delete(l.clients, key)
			removed++
		}
	}
	return removed
}

// run sweeps every interval until stop is closed.
func (l *loginLimiter) run(interval, idle time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.sweep(idle)
		case <-stop:
			return
		}
	}
}

func (l *loginLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// Middleware to check admin authentication
func (a *admin) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(adminCookie)
		if err != nil || subtle.ConstantTimeCompare([]byte(token), []byte(a.token)) != 1 {
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// Setup all admin routes
func setupAdminRoutes(r *gin.Engine, a *admin) {
	r.GET("/privacy", func(c *gin.Context) {
		c.HTML(http.StatusOK, "privacy.html", gin.H{
			"title": "Privacy Policy",
		})
	})

	if a == nil {
		return
	}

	r.GET("/admin/login", func(c *gin.Context) {
		c.HTML(http.StatusOK, "admin-login.html", gin.H{
			"title": "Admin Login",
		})
	})

	r.POST("/admin/login", func(c *gin.Context) {
		client := a.metrics.HashIP(c.ClientIP())
		if !a.limiter.allow(client) {
			log.Printf("Throttled admin login attempt from %s", client)
			c.HTML(http.StatusTooManyRequests, "admin-login.html", gin.H{
				"error": "Too many attempts, try again later",
			})
			return
		}

		if a.checkCredentials(c.PostForm("username"), c.PostForm("password")) {
			c.SetCookie(adminCookie, a.token, 3600*24, "/admin", "", false, true)
			log.Printf("Admin login successful from %s", client)
			c.Redirect(http.StatusFound, "/admin/dashboard")
			return
		}

		log.Printf("Failed admin login attempt from %s", client)
		c.HTML(http.StatusUnauthorized, "admin-login.html", gin.H{
			"error": "Invalid credentials",
		})
	})

	r.GET("/admin/logout", func(c *gin.Context) {
		c.SetCookie(adminCookie, "", -1, "/admin", "", false, true)
		log.Printf("Admin logout from %s", a.metrics.HashIP(c.ClientIP()))
		c.Redirect(http.StatusFound, "/admin/login")
	})

	adminGroup := r.Group("/admin")
	adminGroup.Use(a.authMiddleware())

	adminGroup.GET("/dashboard", func(c *gin.Context) {
		stats, err := a.metrics.Stats(c.Request.Context())
		if err != nil {
			log.Printf("Error loading admin stats: %v", err)
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{
				"error": "Failed to load statistics",
			})
			return
		}
		c.HTML(http.StatusOK, "admin-dashboard.html", gin.H{
			"stats": stats,
		})
	})

	adminGroup.GET("/api/stats", func(c *gin.Context) {
		stats, err := a.metrics.Stats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, stats)
	})

	adminGroup.GET("/visitors", func(c *gin.Context) {
		visitors, err := a.metrics.RecentVisitors(c.Request.Context(), 200)
		if err != nil {
			log.Printf("Error loading visitors: %v", err)
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{
				"error": "Failed to load visitors",
			})
			return
		}
		c.HTML(http.StatusOK, "admin-visitors.html", gin.H{
			"visitors": visitors,
		})
	})

	adminGroup.POST("/privacy/cleanup", func(c *gin.Context) {
		removed, err := a.metrics.Cleanup(c.Request.Context(), a.retention)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Cleanup failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Privacy cleanup complete", "removed": removed})
	})

	// Admin statistics export (for backups or analysis)
	adminGroup.GET("/export/stats", func(c *gin.Context) {
		stats, err := a.metrics.Stats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.Header("Content-Disposition", "attachment; filename=admin-stats.json")
		log.Printf("Admin stats exported by %s", a.metrics.HashIP(c.ClientIP()))
		c.JSON(http.StatusOK, stats)
	})
}
