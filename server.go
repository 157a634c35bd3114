package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"student/handlers"
	"student/services"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the task webhook server",
	Long: `Start the HTTP server that receives evaluator tasks.

The server provides endpoints for:
- Task intake (POST /student-task, POST /api/tasks)
- Run inspection (GET /api/runs, GET /api/runs/:id)
- Health check (GET /health)`,
	RunE: runServer,
}

func runServer(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.log.Close()

	// Set Gin mode
	if a.cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	dispatcher := services.NewDispatcher(a.orchestrator, a.tracker, a.cfg.RoundTimeout, a.log.WithField("component", "dispatcher"))
	router := handlers.NewRouter(
		handlers.NewTaskHandler(a.cfg.Secret, dispatcher, a.log.WithField("component", "intake")),
		handlers.NewRunsHandler(a.tracker),
		a.log.WithField("component", "http"),
	)

	srv := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Start server in a goroutine
	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	a.log.WithField("port", a.cfg.Port).Info("Student agent listening")
	fmt.Printf("Health check: http://localhost:%s/health\n", a.cfg.Port)
	fmt.Printf("Task endpoint: http://localhost:%s/student-task\n", a.cfg.Port)

	// Wait for interrupt signal to gracefully shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	a.log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.WithError(err).Error("HTTP server forced to shutdown")
	}
	if err := dispatcher.Shutdown(shutdownCtx); err != nil {
		a.log.WithError(err).Warn("In-flight rounds were cancelled")
	}

	a.log.Info("Server shutdown complete")
	return nil
}
