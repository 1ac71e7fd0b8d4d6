package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"wordduel/duel"
)

const (
	ModeMemory   = "memory"
	ModeSQLite   = "sqlite"
	ModePostgres = "postgres"

	defaultLocalDBName = "rounds.db"
	defaultRecentLimit = 5000
)

var ErrInvalidRound = errors.New("invalid round record")

// Round is one finished round as persisted.
type Round struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"session_id"`
	Round      int       `json:"round"`
	SystemWord string    `json:"system_word"`
	ChosenWord string    `json:"chosen_word"`
	Success    bool      `json:"success"`
	Cost       float64   `json:"cost"`
	PlayedAt   time.Time `json:"played_at"`
}

func (r Round) Outcome() duel.RoundOutcome {
	return duel.RoundOutcome{SystemWord: r.SystemWord, ChosenWord: r.ChosenWord, Success: r.Success}
}

func (r Round) validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidRound)
	}
	if strings.TrimSpace(r.SystemWord) == "" || strings.TrimSpace(r.ChosenWord) == "" {
		return fmt.Errorf("%w: blank word", ErrInvalidRound)
	}
	return nil
}

// Service is the round history contract consumed by the play loop, the
// engine warm start and the diagnostics API.
type Service interface {
	Close() error
	Append(ctx context.Context, r Round) error
	// ListRecent returns the newest rounds first.
	ListRecent(ctx context.Context, limit int) ([]Round, error)
	// Outcomes returns up to limit of the newest outcomes, oldest first, ready
	// for duel.Engine.Restore. limit <= 0 means all retained rounds.
	Outcomes(ctx context.Context, limit int) ([]duel.RoundOutcome, error)
}

// Config selects the ledger store.
type Config struct {
	Mode        string `yaml:"mode" env:"MODE"`
	Path        string `yaml:"path" env:"PATH"`
	DSN         string `yaml:"dsn" env:"DSN"`
	RecentLimit int    `yaml:"recent_limit" env:"RECENT_LIMIT"`
}

// NewService opens the configured store. It returns the effective mode.
func NewService(cfg Config, logger *zap.Logger) (Service, string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("ledger")
	if cfg.RecentLimit == 0 {
		cfg.RecentLimit = defaultRecentLimit
	}

	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	switch mode {
	case ModeMemory, "mem":
		return NewMemoryService(cfg.RecentLimit), ModeMemory, nil
	case "", ModeSQLite, "local":
		path := cfg.Path
		if path == "" {
			p, err := defaultLocalDatabasePath()
			if err != nil {
				return nil, "", err
			}
			path = p
		}
		s, err := NewSQLiteService(path, cfg.RecentLimit, logger)
		if err != nil {
			return nil, "", err
		}
		return s, ModeSQLite, nil
	case ModePostgres, "postgresql", "db":
		s, err := NewPostgresService(cfg.DSN, cfg.RecentLimit, logger)
		if err != nil {
			return nil, "", err
		}
		return s, ModePostgres, nil
	default:
		return nil, mode, fmt.Errorf("invalid ledger mode %q (supported: %s, %s, %s)", mode, ModeMemory, ModeSQLite, ModePostgres)
	}
}

func defaultLocalDatabasePath() (string, error) {
	userConfigDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(userConfigDir, "wordduel", defaultLocalDBName), nil
}

// memoryService keeps rounds for the life of the process.
type memoryService struct {
	mu     sync.RWMutex
	rounds []Round
	limit  int
}

func NewMemoryService(limit int) Service {
	return &memoryService{limit: limit}
}

func (m *memoryService) Close() error { return nil }

func (m *memoryService) Append(_ context.Context, r Round) error {
	if err := r.validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.rounds {
		if existing.ID == r.ID {
			return nil
		}
	}
	m.rounds = append(m.rounds, r)
	if m.limit > 0 && len(m.rounds) > m.limit {
		m.rounds = append([]Round(nil), m.rounds[len(m.rounds)-m.limit:]...)
	}
	return nil
}

func (m *memoryService) ListRecent(_ context.Context, limit int) ([]Round, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	limit = clampListLimit(limit)
	out := make([]Round, 0, limit)
	for i := len(m.rounds) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.rounds[i])
	}
	return out, nil
}

func (m *memoryService) Outcomes(_ context.Context, limit int) ([]duel.RoundOutcome, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rounds := m.rounds
	if limit > 0 && len(rounds) > limit {
		rounds = rounds[len(rounds)-limit:]
	}
	out := make([]duel.RoundOutcome, 0, len(rounds))
	for _, r := range rounds {
		out = append(out, r.Outcome())
	}
	return out, nil
}

func clampListLimit(limit int) int {
	if limit <= 0 || limit > 500 {
		return 50
	}
	return limit
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// reverseOutcomes turns a newest-first scan into oldest-first order.
func reverseOutcomes(out []duel.RoundOutcome) {
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRounds(rows *sql.Rows, scanOne func(scanner) (Round, error)) ([]Round, error) {
	defer rows.Close()
	var out []Round
	for rows.Next() {
		r, err := scanOne(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
