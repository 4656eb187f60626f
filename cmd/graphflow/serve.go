package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gridline-ai/graphflow"
	"github.com/gridline-ai/graphflow/server"
	"github.com/gridline-ai/graphflow/steps"
	"github.com/gridline-ai/graphflow/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Starts the graphflow engine in server mode, exposing graph
creation, run execution, and run state lookup over a JSON API.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetString("port")
		redisAddr, _ := cmd.Flags().GetString("redis")
		postgresDSN, _ := cmd.Flags().GetString("postgres")
		logsDir, _ := cmd.Flags().GetString("logs")
		verbose, _ := cmd.Flags().GetBool("verbose")

		logger := graphflow.NewLogger(slog.LevelInfo)
		if verbose {
			logger = graphflow.NewLogger(slog.LevelDebug)
		}

		var st store.Store
		switch {
		case postgresDSN != "":
			pg, err := store.NewPostgresStore(cmd.Context(), postgresDSN)
			if err != nil {
				return fmt.Errorf("failed to connect to postgres: %w", err)
			}
			defer pg.Close()
			st = pg
		case redisAddr != "":
			rs := store.NewRedisStore(redisAddr, "", 0)
			defer rs.Close()
			st = rs
		default:
			st = store.NewMemoryStore()
		}

		var runLogger graphflow.RunLogger = graphflow.NewNullRunLogger()
		if logsDir != "" {
			runLogger = graphflow.NewFileRunLogger(logsDir)
		}

		registry := graphflow.NewRegistry()
		steps.Register(registry)

		engine, err := graphflow.NewEngine(graphflow.EngineOptions{
			Registry:  registry,
			Logger:    logger,
			RunLogger: runLogger,
		})
		if err != nil {
			return err
		}

		srv, err := server.NewServer(server.Options{
			Engine:  engine,
			Store:   st,
			Logger:  logger,
			Metrics: server.NewDefaultMetrics(),
		})
		if err != nil {
			return err
		}

		httpServer := &http.Server{
			Addr:    ":" + port,
			Handler: srv.Handler(),
		}

		serverErrors := make(chan error, 1)
		go func() {
			fmt.Printf("Starting graphflow server on %s\n", httpServer.Addr)
			serverErrors <- httpServer.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			fmt.Printf("\nShutting down... signal: %v\n", sig)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := httpServer.Shutdown(ctx); err != nil {
				if err := httpServer.Close(); err != nil {
					return fmt.Errorf("failed to stop server: %w", err)
				}
			}
			fmt.Println("graphflow server stopped")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().String("redis", "", "Redis address for graph/run storage (host:port)")
	serveCmd.Flags().String("postgres", "", "Postgres DSN for graph/run storage")
	serveCmd.Flags().String("logs", "", "Directory for per-run JSONL logs")
}
