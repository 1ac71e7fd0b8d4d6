// Package diag serves the read-only diagnostics API: engine state, round
// history, dry-run rankings and the websocket feed.
package diag

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"wordduel/duel"
	"wordduel/internal/ledger"
)

// Config controls the diagnostics listener. An empty TokenHash leaves the
// API open.
type Config struct {
	Addr      string `yaml:"addr" env:"ADDR"`
	TokenHash string `yaml:"token_hash" env:"TOKEN_HASH"`
}

func DefaultConfig() Config {
	return Config{Addr: ":8080"}
}

// Engine is the part of duel.Engine the API reads.
type Engine interface {
	Mode() duel.Mode
	Snapshot() duel.Snapshot
	Rank(system string) []duel.CandidateScore
}

type HTTPHandler struct {
	engine    Engine
	ledger    ledger.Service
	feed      http.Handler
	tokenHash []byte
	logger    *zap.Logger
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPHandler wires the API. ledger and feed may be nil.
func NewHTTPHandler(engine Engine, ledgerService ledger.Service, feed http.Handler, tokenHash string, logger *zap.Logger) *HTTPHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &HTTPHandler{
		engine: engine,
		ledger: ledgerService,
		feed:   feed,
		logger: logger.Named("diag"),
	}
	if tokenHash = strings.TrimSpace(tokenHash); tokenHash != "" {
		h.tokenHash = []byte(tokenHash)
	}
	return h
}

// HashToken produces the value expected in Config.TokenHash.
func HashToken(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", errors.New("empty token")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (h *HTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "mode": h.engine.Mode()})
	})
	mux.HandleFunc("/api/state", h.authorized(h.handleState))
	mux.HandleFunc("/api/history", h.authorized(h.handleHistory))
	mux.HandleFunc("/api/rank", h.authorized(h.handleRank))
	if h.feed != nil {
		mux.HandleFunc("/ws", h.authorized(h.feed.ServeHTTP))
	}
}

func (h *HTTPHandler) authorized(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.tokenHash == nil {
			next(w, r)
			return
		}
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			// Browsers cannot set headers on websocket upgrades.
			token = strings.TrimSpace(r.URL.Query().Get("token"))
		}
		if token == "" || bcrypt.CompareHashAndPassword(h.tokenHash, []byte(token)) != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next(w, r)
	}
}

func (h *HTTPHandler) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, h.engine.Snapshot())
}

func (h *HTTPHandler) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if h.ledger == nil {
		writeJSON(w, http.StatusOK, map[string]any{"items": []ledger.Round{}})
		return
	}
	limit := parseLimit(r.URL.Query().Get("limit"))
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	items, err := h.ledger.ListRecent(ctx, limit)
	if err != nil {
		h.logger.Warn("list recent rounds failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "query recent rounds failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *HTTPHandler) handleRank(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	system := strings.TrimSpace(r.URL.Query().Get("system"))
	if system == "" {
		writeError(w, http.StatusBadRequest, "missing system word")
		return
	}
	ranked := h.engine.Rank(system)
	if limit := r.URL.Query().Get("limit"); limit != "" {
		if n := parseLimit(limit); n < len(ranked) {
			ranked = ranked[:n]
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"system": system,
		"mode":   h.engine.Mode(),
		"ranked": ranked,
	})
}

// Serve runs the handler on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, handler http.Handler, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("diagnostics listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		return nil
	}
}

func parseLimit(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 20
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 20
	}
	if n > 100 {
		return 100
	}
	return n
}

func bearerToken(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(raw, "Bearer "))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
