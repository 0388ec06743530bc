// Package server exposes the engine over HTTP and streams search progress to
// websocket clients.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/joergoster/Smallbrain/internal/config"
)

type Server struct {
	controller   *EngineController
	hub          *Hub
	pingInterval time.Duration
}

func New(cfg config.Config) *Server {
	hub := NewHub()
	return &Server{
		controller:   NewEngineController(cfg, hub),
		hub:          hub,
		pingInterval: wsIdlePingInterval,
	}
}

func (s *Server) Controller() *EngineController {
	return s.controller
}

type positionRequest struct {
	FEN   string   `json:"fen"`
	Moves []string `json:"moves"`
}

type configRequest struct {
	HashMB         *int  `json:"hash_mb"`
	Threads        *int  `json:"threads"`
	UseTableBase   *bool `json:"use_tablebase"`
	MoveOverheadMs *int  `json:"move_overhead_ms"`
	DefaultDepth   *int  `json:"default_depth"`
}

type ttCacheStatusResponse struct {
	Count         int     `json:"count"`
	Capacity      int     `json:"capacity"`
	Usage         float64 `json:"usage"`
	Hashfull      int     `json:"hashfull"`
	Generation    uint8   `json:"generation"`
	CapacityBytes uint64  `json:"capacity_bytes"`
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/api/ping", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	r.Get("/api/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.controller.Status())
	})

	r.Post("/api/position", func(w http.ResponseWriter, r *http.Request) {
		var payload positionRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		if err := s.controller.SetPosition(payload.FEN, payload.Moves); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, s.controller.Status())
	})

	r.Post("/api/go", func(w http.ResponseWriter, r *http.Request) {
		var payload GoRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		s.controller.Go(payload)
		writeJSON(w, http.StatusAccepted, map[string]bool{"searching": true})
	})

	r.Post("/api/stop", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, resultToDTO(s.controller.Stop()))
	})

	r.Get("/api/counters", func(w http.ResponseWriter, r *http.Request) {
		nodes, tbhits := s.controller.Counters()
		writeJSON(w, http.StatusOK, map[string]uint64{"nodes": nodes, "tbhits": tbhits})
	})

	r.Get("/api/cache/tt", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.ttCacheStatus())
	})
	r.Delete("/api/cache/tt", func(w http.ResponseWriter, r *http.Request) {
		if err := s.controller.ClearTable(); err != nil {
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"cleared": true})
	})

	r.Post("/api/config", func(w http.ResponseWriter, r *http.Request) {
		var payload configRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		cfg := config.GetConfig()
		if payload.HashMB != nil {
			cfg.HashMB = *payload.HashMB
		}
		if payload.Threads != nil {
			cfg.Threads = *payload.Threads
		}
		if payload.UseTableBase != nil {
			cfg.UseTableBase = *payload.UseTableBase
		}
		if payload.MoveOverheadMs != nil {
			cfg.MoveOverheadMs = *payload.MoveOverheadMs
		}
		if payload.DefaultDepth != nil {
			cfg.DefaultDepth = *payload.DefaultDepth
		}
		if err := s.controller.ApplyConfig(cfg); err != nil {
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, config.GetConfig())
	})

	r.Get("/ws/info", func(w http.ResponseWriter, r *http.Request) {
		s.serveWS(w, r)
	})
	return r
}

func (s *Server) ttCacheStatus() ttCacheStatusResponse {
	table := s.controller.Table()
	count := table.Count()
	capacity := table.Capacity()
	usage := 0.0
	if capacity > 0 {
		usage = float64(count) / float64(capacity)
	}
	return ttCacheStatusResponse{
		Count:         count,
		Capacity:      capacity,
		Usage:         usage,
		Hashfull:      table.Hashfull(),
		Generation:    table.Generation(),
		CapacityBytes: uint64(capacity) * 16,
	}
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := &Client{hub: s.hub, send: make(chan []byte, 64)}
	s.hub.Register(client)
	client.sendJSON(wsMessage{Type: "status", Payload: mustMarshal(s.controller.Status())})

	go func() {
		defer conn.Close()
		if err := writeWSWithHeartbeat(conn, client.send, s.pingInterval); err != nil {
			log.Debug().Str("component", "ws").Err(err).Msg("write-failed")
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			s.hub.Unregister(client)
			return
		}
		var msg wsMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}
		switch msg.Type {
		case "request_status":
			client.sendJSON(wsMessage{Type: "status", Payload: mustMarshal(s.controller.Status())})
		case "stop":
			s.controller.Stop()
		}
	}
}

// Run serves on addr until ctx is cancelled or the listener fails, then stops
// any search and shuts the server down.
func (s *Server) Run(ctx context.Context, addr string) error {
	hubCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.hub.Run(hubCtx.Done())

	server := &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
		close(serverErrCh)
	}()

	log.Info().Str("component", "server").Str("addr", addr).Msg("listening")
	var runErr error
	select {
	case <-ctx.Done():
		log.Info().Str("component", "server").Err(ctx.Err()).Msg("shutdown-requested")
	case err, ok := <-serverErrCh:
		if ok {
			runErr = err
			log.Error().Str("component", "server").Err(err).Msg("server-error")
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Warn().Str("component", "server").Err(err).Msg("graceful-shutdown-failed")
		if closeErr := server.Close(); closeErr != nil && !errors.Is(closeErr, http.ErrServerClosed) {
			log.Warn().Str("component", "server").Err(closeErr).Msg("forced-close-failed")
		}
	}
	s.controller.Stop()
	return runErr
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func mustMarshal(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("null")
	}
	return data
}
