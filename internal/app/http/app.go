package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/pmarkun/editaisparticipativos/internal/handlers"
	"github.com/pmarkun/editaisparticipativos/internal/middleware"
	"github.com/pmarkun/editaisparticipativos/internal/routes"
)

type Options struct {
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowedOrigins []string
	AdminKey       string
}

type Handlers struct {
	Voting  *handlers.VotingHandler
	Calls   *handlers.CallsHandler
	Reports *handlers.ReportHandler
	// Metrics is mounted at /metrics when set.
	Metrics http.Handler
}

type App struct {
	log    *slog.Logger
	engine *gin.Engine
	server *http.Server
}

// NewApp builds the gin engine, registers every route group and wraps it in
// an http.Server.
func NewApp(log *slog.Logger, opts Options, h Handlers) *App {
	r := gin.Default()

	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins: opts.AllowedOrigins,
			AllowMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type", middleware.AdminKeyHeader, middleware.SubmitterIDHeader},
			MaxAge:       12 * time.Hour,
		}))
	}

	api := r.Group("/api")
	{
		routes.RegisterPublicRoutes(api, h.Voting, h.Calls)

		submitterGroup := api.Group("", middleware.Submitter())
		routes.RegisterSubmitterRoutes(submitterGroup, h.Calls)

		adminGroup := api.Group("/admin", middleware.NewAdminMiddleware(opts.AdminKey).Middleware())
		routes.RegisterAdminRoutes(adminGroup, h.Calls, h.Reports)
	}

	// Link target of confirmation emails.
	r.GET("/confirm-vote", h.Voting.ConfirmVote)

	if h.Metrics != nil {
		r.GET("/metrics", gin.WrapH(h.Metrics))
	}

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", opts.Port),
		Handler:      r,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	}

	return &App{log: log, engine: r, server: server}
}

func (a *App) Run() error {
	a.log.Info("HTTP server is running", slog.String("addr", a.server.Addr))
	return a.server.ListenAndServe()
}

func (a *App) Stop(ctx context.Context) error {
	a.log.Info("HTTP server is stopping")
	return a.server.Shutdown(ctx)
}

func (a *App) Engine() *gin.Engine {
	return a.engine
}
