// Package gameclient talks to the duel game server: it waits for the system
// word of a round, submits the chosen word and reads the round status.
package gameclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

var (
	ErrRoundPassed = errors.New("server already moved past the requested round")
	ErrNoWordYet   = errors.New("round word not published yet")
)

// Config locates the game server and bounds the round poller.
type Config struct {
	BaseURL      string        `yaml:"base_url" env:"BASE_URL"`
	PlayerID     string        `yaml:"player_id" env:"PLAYER_ID"`
	Rounds       int           `yaml:"rounds" env:"ROUNDS"`
	PollInterval time.Duration `yaml:"poll_interval" env:"POLL_INTERVAL"`
	MaxWait      time.Duration `yaml:"max_wait" env:"MAX_WAIT"`
	Timeout      time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

func DefaultConfig() Config {
	return Config{
		BaseURL:      "http://localhost:8000",
		Rounds:       5,
		PollInterval: 500 * time.Millisecond,
		MaxWait:      2 * time.Minute,
		Timeout:      5 * time.Second,
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return errors.New("game base url is required")
	}
	if c.Rounds <= 0 {
		return fmt.Errorf("rounds must be positive, got %d", c.Rounds)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.PollInterval)
	}
	return nil
}

// RoundWord is the body of GET /get-word.
type RoundWord struct {
	Round int    `json:"round"`
	Word  string `json:"word"`
}

// Status is the "status" object of GET /status. Both fields keep their raw
// JSON so a key sent as null can be told apart from a missing key.
type Status struct {
	P1Word json.RawMessage `json:"p1_word,omitempty"`
	P1Won  json.RawMessage `json:"p1_won,omitempty"`
}

// Word returns p1_word as text, or "" when it is absent or not a string.
func (s Status) Word() string {
	var w string
	if len(s.P1Word) == 0 || json.Unmarshal(s.P1Word, &w) != nil {
		return ""
	}
	return w
}

// Won reports whether the player won the round. Without a p1_word key the
// round is lost. With it, a missing p1_won counts as a win and a present one
// wins only when truthy: null, false, 0 and "" lose.
func (s Status) Won() bool {
	if len(s.P1Word) == 0 {
		return false
	}
	if len(s.P1Won) == 0 {
		return true
	}
	var v any
	if err := json.Unmarshal(s.P1Won, &v); err != nil {
		return false
	}
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	}
	return false
}

type submitRequest struct {
	PlayerID string `json:"player_id"`
	WordID   int    `json:"word_id"`
	RoundID  int    `json:"round_id"`
}

type statusResponse struct {
	Status Status `json:"status"`
}

type Client struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger
}

func New(cfg Config, logger *zap.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger.Named("poller"),
	}, nil
}

func (c *Client) Config() Config { return c.cfg }

func (c *Client) CurrentWord(ctx context.Context) (RoundWord, error) {
	var out RoundWord
	err := c.do(ctx, http.MethodGet, "/get-word", nil, &out)
	return out, err
}

// Submit posts the chosen word. wordID is the 1-based catalog position.
func (c *Client) Submit(ctx context.Context, round, wordID int) error {
	body := submitRequest{PlayerID: c.cfg.PlayerID, WordID: wordID, RoundID: round}
	return c.do(ctx, http.MethodPost, "/submit-word", body, nil)
}

func (c *Client) Status(ctx context.Context) (Status, error) {
	var out statusResponse
	if err := c.do(ctx, http.MethodGet, "/status", nil, &out); err != nil {
		return Status{}, err
	}
	return out.Status, nil
}

// WaitForRound polls /get-word until the server publishes the given round.
// Transport errors and earlier rounds are retried with exponential backoff
// starting at PollInterval and capped at eight times it, until MaxWait
// elapses; a later round fails immediately with ErrRoundPassed.
func (c *Client) WaitForRound(ctx context.Context, round int) (RoundWord, error) {
	op := func() (RoundWord, error) {
		rw, err := c.CurrentWord(ctx)
		if err != nil {
			return RoundWord{}, err
		}
		switch {
		case rw.Round > round:
			return RoundWord{}, backoff.Permanent(fmt.Errorf("%w: want %d, server at %d", ErrRoundPassed, round, rw.Round))
		case rw.Round < round || strings.TrimSpace(rw.Word) == "":
			return RoundWord{}, ErrNoWordYet
		}
		return rw, nil
	}

	opts := []backoff.RetryOption{
		backoff.WithBackOff(&backoff.ExponentialBackOff{
			InitialInterval:     c.cfg.PollInterval,
			RandomizationFactor: 0.2,
			Multiplier:          1.5,
			MaxInterval:         8 * c.cfg.PollInterval,
		}),
		backoff.WithNotify(func(err error, next time.Duration) {
			if !errors.Is(err, ErrNoWordYet) {
				c.logger.Warn("poll failed", zap.Int("round", round), zap.Duration("retry_in", next), zap.Error(err))
			}
		}),
	}
	if c.cfg.MaxWait > 0 {
		opts = append(opts, backoff.WithMaxElapsedTime(c.cfg.MaxWait))
	}
	return backoff.Retry(ctx, op, opts...)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
