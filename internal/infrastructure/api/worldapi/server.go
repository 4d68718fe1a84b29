// Package worldapi is the read-only operator HTTP surface (spec.md
// expansion §9): a thin gin server for inspecting world/task state and
// watching ledger stage transitions live, grounded on the teacher's own
// pkg/server gin wiring, trimmed to the handful of routes an operator
// (not a tenant, not a UI) needs.
package worldapi

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/worldforge/worldforge/internal/config"
	"github.com/worldforge/worldforge/internal/domain/ledger"
	"github.com/worldforge/worldforge/internal/domain/task"
	"github.com/worldforge/worldforge/internal/domain/world"
	"github.com/worldforge/worldforge/internal/infrastructure/logger"
	"github.com/worldforge/worldforge/internal/infrastructure/pool"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server is the operator HTTP surface.
type Server struct {
	cfg    config.ServerConfig
	router *gin.Engine
	http   *http.Server
	log    *logger.Logger
}

// Deps bundles what the operator surface reads from; it never writes to
// any of these, matching the "read-only" scope of spec.md's expansion.
type Deps struct {
	Pool   *pool.Pool
	World  world.Store
	Ledger ledger.Store
	Tasks  task.Store
	Hub    *Hub
}

// New builds the Server and registers its routes.
func New(cfg config.ServerConfig, deps Deps, log *logger.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{cfg: cfg, router: router, log: log}
	s.registerRoutes(deps)
	return s
}

func (s *Server) registerRoutes(deps Deps) {
	s.router.GET("/healthz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if err := deps.Pool.DB.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	v1 := s.router.Group("/v1/worlds")
	{
		v1.GET("/:id", func(c *gin.Context) {
			worldID := c.Param("id")

			l, err := deps.Ledger.Get(c.Request.Context(), worldID)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			if l == nil {
				c.JSON(http.StatusNotFound, gin.H{"error": "world not found"})
				return
			}

			params, err := deps.World.Get(c.Request.Context(), worldID)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}

			c.JSON(http.StatusOK, gin.H{"ledger": l, "parameters": params})
		})

		v1.GET("/:id/tasks", func(c *gin.Context) {
			worldID := c.Param("id")
			tasks, err := deps.Tasks.ListByWorld(c.Request.Context(), worldID)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{"tasks": tasks})
		})

		v1.GET("/:id/events", func(c *gin.Context) {
			worldID := c.Param("id")
			conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
			if err != nil {
				s.log.WarnContext(c.Request.Context(), "websocket upgrade failed", "error", err)
				return
			}
			deps.Hub.Subscribe(worldID, conn)

			// Drain reads so pongs/close frames are processed; the
			// client sends nothing meaningful on this feed.
			go func() {
				defer deps.Hub.Unsubscribe(worldID, conn)
				for {
					if _, _, err := conn.ReadMessage(); err != nil {
						return
					}
				}
			}()
		})
	}
}

// Start begins serving in the background; call Shutdown to stop.
func (s *Server) Start() error {
	s.http = &http.Server{
		Addr:         s.cfg.Host + ":" + strconv.Itoa(s.cfg.Port),
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-time.After(200 * time.Millisecond):
		return nil
	}
}

// Shutdown gracefully stops the HTTP server within cfg.ShutdownTimeout.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}
