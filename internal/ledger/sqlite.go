package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"wordduel/duel"
)

type SQLiteService struct {
	db          *sql.DB
	recentLimit int
	logger      *zap.Logger
}

func NewSQLiteService(dbPath string, recentLimit int, logger *zap.Logger) (*SQLiteService, error) {
	dbPath = strings.TrimSpace(dbPath)
	if dbPath == "" {
		return nil, fmt.Errorf("empty sqlite database path")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if dbPath != ":memory:" {
		parent := filepath.Dir(dbPath)
		if parent != "" && parent != "." {
			if err := os.MkdirAll(parent, 0o755); err != nil {
				return nil, err
			}
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, `PRAGMA journal_mode = WAL;`); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := ensureSQLiteSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info("sqlite ledger opened", zap.String("path", dbPath))
	return &SQLiteService{db: db, recentLimit: recentLimit, logger: logger}, nil
}

func (s *SQLiteService) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteService) Append(ctx context.Context, r Round) error {
	if err := r.validate(); err != nil {
		return err
	}
	if r.PlayedAt.IsZero() {
		r.PlayedAt = time.Now().UTC()
	}
	nowMs := time.Now().UTC().UnixMilli()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
INSERT INTO duel_rounds (
    id, session_id, round_no, system_word, chosen_word, success, cost, played_at_ms, created_at_ms
)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO NOTHING
`, r.ID, r.SessionID, r.Round, r.SystemWord, r.ChosenWord, boolToInt(r.Success), r.Cost, r.PlayedAt.UTC().UnixMilli(), nowMs)
	if err != nil {
		return err
	}

	if s.recentLimit > 0 {
		_, err = tx.ExecContext(ctx, `
DELETE FROM duel_rounds
WHERE seq IN (
    SELECT seq
    FROM duel_rounds
    ORDER BY seq DESC
    LIMIT -1 OFFSET ?
)
`, s.recentLimit)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	s.logger.Debug("round appended", zap.String("id", r.ID), zap.Int("round", r.Round))
	return nil
}

func scanSQLiteRound(row scanner) (Round, error) {
	var r Round
	var success int64
	var playedAtMs int64
	if err := row.Scan(&r.ID, &r.SessionID, &r.Round, &r.SystemWord, &r.ChosenWord, &success, &r.Cost, &playedAtMs); err != nil {
		return Round{}, err
	}
	r.Success = success == 1
	r.PlayedAt = time.UnixMilli(playedAtMs).UTC()
	return r, nil
}

func (s *SQLiteService) ListRecent(ctx context.Context, limit int) ([]Round, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, session_id, round_no, system_word, chosen_word, success, cost, played_at_ms
FROM duel_rounds
ORDER BY seq DESC
LIMIT ?
`, clampListLimit(limit))
	if err != nil {
		return nil, err
	}
	out, err := scanRounds(rows, scanSQLiteRound)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []Round{}
	}
	return out, nil
}

func (s *SQLiteService) Outcomes(ctx context.Context, limit int) ([]duel.RoundOutcome, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT system_word, chosen_word, success
FROM duel_rounds
ORDER BY seq DESC
LIMIT ?
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []duel.RoundOutcome{}
	for rows.Next() {
		var o duel.RoundOutcome
		var success int64
		if err := rows.Scan(&o.SystemWord, &o.ChosenWord, &success); err != nil {
			return nil, err
		}
		o.Success = success == 1
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	reverseOutcomes(out)
	return out, nil
}

func ensureSQLiteSchema(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`
CREATE TABLE IF NOT EXISTS duel_rounds (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    session_id TEXT NOT NULL DEFAULT '',
    round_no INTEGER NOT NULL,
    system_word TEXT NOT NULL,
    chosen_word TEXT NOT NULL,
    success INTEGER NOT NULL,
    cost REAL NOT NULL DEFAULT 0,
    played_at_ms INTEGER NOT NULL,
    created_at_ms INTEGER NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_duel_rounds_session ON duel_rounds(session_id, round_no)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
