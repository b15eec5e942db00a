package store

import (
	"database/sql"
	"errors"
	"time"
)

// DefaultLeaderboardLimit is used when no limit is given.
const DefaultLeaderboardLimit = 10

// LeaderboardEntry is a player's best score in one game.
type LeaderboardEntry struct {
	Rank   int       `json:"rank"`
	Player string    `json:"player"`
	Score  int       `json:"score"`
	Date   time.Time `json:"date"`
}

// Leaderboard ranks players of gameType by their best score. Each player
// appears once; equal scores are ordered by who reached them first.
func (s *Store) Leaderboard(gameType string, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}

	rows, err := s.db.Query(
		`SELECT s.player, s.score, s.created_at FROM sessions s
		 WHERE s.game_type = ? AND s.id = (
			SELECT b.id FROM sessions b
			WHERE b.game_type = s.game_type AND b.player = s.player
			ORDER BY b.score DESC, b.created_at ASC, b.id LIMIT 1
		 )
		 ORDER BY s.score DESC, s.created_at ASC
		 LIMIT ?`,
		gameType, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []LeaderboardEntry{}
	for rows.Next() {
		e := LeaderboardEntry{Rank: len(entries) + 1}
		if err := rows.Scan(&e.Player, &e.Score, &e.Date); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// PlayerRank returns player's rank and best score in gameType. The rank is one
// more than the number of players with a strictly better best score.
// ErrNotFound is returned when the player has no session of that game.
func (s *Store) PlayerRank(gameType, player string) (rank, best int, err error) {
	var b sql.NullInt64
	if err := s.db.QueryRow(
		`SELECT MAX(score) FROM sessions WHERE game_type = ? AND player = ?`,
		gameType, player,
	).Scan(&b); err != nil {
		return 0, 0, err
	}
	if !b.Valid {
		return 0, 0, ErrNotFound
	}

	var better int
	err = s.db.QueryRow(
		`SELECT COUNT(*) FROM (
			SELECT player FROM sessions WHERE game_type = ?
			GROUP BY player HAVING MAX(score) > ?
		 )`,
		gameType, b.Int64,
	).Scan(&better)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, 0, err
	}
	return better + 1, int(b.Int64), nil
}
