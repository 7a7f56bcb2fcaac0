package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/relaymind/autopilot/internal/model"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server for batch triggers and entity inspection",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		var mu sync.Mutex
		var lastStats *model.BatchStats
		batchRunning := false

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))

		writeJSON := func(w http.ResponseWriter, status int, v any) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_ = json.NewEncoder(w).Encode(v)
		}

		r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Post("/batch", func(w http.ResponseWriter, req *http.Request) {
			mu.Lock()
			if batchRunning {
				mu.Unlock()
				writeJSON(w, http.StatusConflict, map[string]string{"error": "batch already running"})
				return
			}
			batchRunning = true
			mu.Unlock()

			go func() {
				stats, err := env.Batch.Run(ctx)
				mu.Lock()
				batchRunning = false
				if err == nil {
					lastStats = &stats
				}
				mu.Unlock()
				if err != nil {
					zap.L().Error("batch via http failed", zap.Error(err))
				}
			}()

			writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
		})

		r.Get("/stats", func(w http.ResponseWriter, req *http.Request) {
			mu.Lock()
			defer mu.Unlock()
			if lastStats == nil {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "no batch has completed"})
				return
			}
			writeJSON(w, http.StatusOK, lastStats)
		})

		r.Get("/users", func(w http.ResponseWriter, req *http.Request) {
			users, err := env.Store.ListUsers(req.Context())
			if err != nil {
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
				return
			}
			writeJSON(w, http.StatusOK, users)
		})

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/events", func(w http.ResponseWriter, req *http.Request) {
				list, err := env.Store.ListEvents(req.Context(), chi.URLParam(req, "userID"))
				respondList(w, list, err)
			})
			r.Get("/leads", func(w http.ResponseWriter, req *http.Request) {
				list, err := env.Store.ListLeads(req.Context(), chi.URLParam(req, "userID"))
				respondList(w, list, err)
			})
			r.Get("/invoices", func(w http.ResponseWriter, req *http.Request) {
				list, err := env.Store.ListInvoices(req.Context(), chi.URLParam(req, "userID"))
				respondList(w, list, err)
			})
			r.Get("/expenses", func(w http.ResponseWriter, req *http.Request) {
				list, err := env.Store.ListExpenses(req.Context(), chi.URLParam(req, "userID"))
				respondList(w, list, err)
			})
			r.Get("/tasks", func(w http.ResponseWriter, req *http.Request) {
				list, err := env.Store.ListOpenTasks(req.Context(), chi.URLParam(req, "userID"))
				respondList(w, list, err)
			})
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			_ = srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func respondList(w http.ResponseWriter, list any, err error) {
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(list)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
