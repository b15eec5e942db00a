package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidSession is returned when a session is missing required fields.
var ErrInvalidSession = errors.New("invalid session")

// Session is one finished game attempt.
type Session struct {
	ID        string         `json:"id"`
	Player    string         `json:"player"`
	GameType  string         `json:"gameType"`
	Score     int            `json:"score"`
	Duration  int            `json:"duration"`
	Accuracy  *float64       `json:"accuracy,omitempty"`
	Metadata  map[string]any `json:"metadata"`
	CreatedAt time.Time      `json:"createdAt"`

	// Unlocked lists the achievements unlocked by saving this session. It is
	// only filled by Create.
	Unlocked []AchievementType `json:"unlocked,omitempty"`
}

// SessionFilter narrows List and Count. Zero fields match everything.
type SessionFilter struct {
	Player   string
	GameType string
	Limit    int
	Offset   int
}

// DefaultListLimit is used when a filter has no limit.
const DefaultListLimit = 10

// SessionRepository reads and writes sessions.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Create saves a session, updates the player's statistics and unlocks any
// milestone achievements, all in one transaction. An empty ID is replaced by
// a new UUID and an empty player by DefaultPlayer.
func (r *SessionRepository) Create(s *Session) error {
	if s.GameType == "" || s.Duration <= 0 {
		return fmt.Errorf("%w: gameType and a positive duration are required", ErrInvalidSession)
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Player == "" {
		s.Player = DefaultPlayer
	}
	if s.Metadata == nil {
		s.Metadata = map[string]any{}
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}

	meta, err := json.Marshal(s.Metadata)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var accuracy sql.NullFloat64
	if s.Accuracy != nil {
		accuracy = sql.NullFloat64{Float64: *s.Accuracy, Valid: true}
	}

	if _, err := tx.Exec(
		`INSERT INTO sessions (id, player, game_type, score, duration, accuracy, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.Player, s.GameType, s.Score, s.Duration, accuracy, string(meta), s.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	total, err := updateStats(tx, s)
	if err != nil {
		return fmt.Errorf("update stats: %w", err)
	}

	unlocked, err := unlockMilestones(tx, s.Player, total, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("unlock achievements: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	s.Unlocked = unlocked
	return nil
}

// GetByID returns a session by ID.
func (r *SessionRepository) GetByID(id string) (*Session, error) {
	row := r.db.QueryRow(
		`SELECT id, player, game_type, score, duration, accuracy, metadata, created_at
		 FROM sessions WHERE id = ?`,
		id,
	)
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return s, err
}

// List returns sessions newest first.
func (r *SessionRepository) List(filter SessionFilter) ([]*Session, error) {
	where, args := filter.where()
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	offset := max(filter.Offset, 0)

	rows, err := r.db.Query(
		`SELECT id, player, game_type, score, duration, accuracy, metadata, created_at
		 FROM sessions`+where+` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`,
		append(args, limit, offset)...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := []*Session{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

// Count returns the number of sessions matching filter, ignoring paging.
func (r *SessionRepository) Count(filter SessionFilter) (int, error) {
	where, args := filter.where()
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM sessions`+where, args...).Scan(&n)
	return n, err
}

func (f SessionFilter) where() (string, []any) {
	var conds []string
	var args []any
	if f.Player != "" {
		conds = append(conds, "player = ?")
		args = append(args, f.Player)
	}
	if f.GameType != "" {
		conds = append(conds, "game_type = ?")
		args = append(args, f.GameType)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*Session, error) {
	s := &Session{}
	var accuracy sql.NullFloat64
	var meta string

	if err := row.Scan(&s.ID, &s.Player, &s.GameType, &s.Score, &s.Duration, &accuracy, &meta, &s.CreatedAt); err != nil {
		return nil, err
	}

	if accuracy.Valid {
		a := accuracy.Float64
		s.Accuracy = &a
	}
	s.Metadata = map[string]any{}
	if meta != "" {
		if err := json.Unmarshal([]byte(meta), &s.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata of session %s: %w", s.ID, err)
		}
	}
	return s, nil
}
