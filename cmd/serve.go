package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/teluguvibes/curator-cli/internal/model"
	"github.com/teluguvibes/curator-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the engagement telemetry webhook server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           newRouter(env.Store),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// newRouter builds the webhook routes over the given store.
func newRouter(st store.Store) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/webhook/engagement", func(w http.ResponseWriter, req *http.Request) {
		var rec model.EngagementRecord
		if err := json.NewDecoder(req.Body).Decode(&rec); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if rec.ContentID == 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "content_id is required"})
			return
		}
		if rec.Views < 0 || rec.Likes < 0 || rec.Shares < 0 || rec.Clicks < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "counters must not be negative"})
			return
		}
		if err := st.RecordEngagement(req.Context(), rec); err != nil {
			zap.L().Warn("record engagement failed", zap.Int64("content_id", rec.ContentID), zap.Error(err))
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown content"})
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
	})

	// Manual moderation: the only path that moves content out of
	// auto_published or queued_for_review.
	r.Post("/moderate", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			ContentID int64  `json:"content_id"`
			Status    string `json:"status"`
			Reason    string `json:"reason"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		target := model.ContentStatus(body.Status)

		contents, err := st.ListContent(req.Context(), store.ContentFilter{Limit: 1000})
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "lookup failed"})
			return
		}
		var current *model.ContentCandidate
		for i := range contents {
			if contents[i].ID == body.ContentID {
				current = &contents[i]
				break
			}
		}
		if current == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown content"})
			return
		}
		if !model.CanTransition(current.Status, target) {
			writeJSON(w, http.StatusConflict, map[string]string{
				"error": fmt.Sprintf("cannot transition %s to %s", current.Status, target),
			})
			return
		}
		if err := st.UpdateContentStatus(req.Context(), body.ContentID, target, body.Reason); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "update failed"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": string(target)})
	})

	// Admin: soft-deactivate an entity. Rows are never deleted.
	r.Post("/admin/deactivate", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.Name == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
			return
		}
		if err := st.DeactivateCelebrity(req.Context(), model.NormalizeName(body.Name)); err != nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown entity"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
