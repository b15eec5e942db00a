package store

import (
	"database/sql"
	"errors"
	"time"
)

// PlayerStats aggregates every session of one player.
type PlayerStats struct {
	Player        string     `json:"player"`
	TotalGames    int        `json:"totalGames"`
	TotalPlayTime int        `json:"totalPlayTime"`
	LastPlayedAt  *time.Time `json:"lastPlayedAt,omitempty"`
	FavoriteGame  string     `json:"favoriteGame"`
}

// GameBreakdown summarizes one player's sessions of a single game.
type GameBreakdown struct {
	GameType  string  `json:"gameType"`
	Count     int     `json:"count"`
	AvgScore  float64 `json:"avgScore"`
	BestScore int     `json:"bestScore"`
}

// StatsRepository reads player statistics.
type StatsRepository struct {
	db *sql.DB
}

// Stats returns the statistics repository for this store.
func (s *Store) Stats() *StatsRepository {
	return &StatsRepository{db: s.db}
}

// Get returns the statistics row for player.
func (r *StatsRepository) Get(player string) (*PlayerStats, error) {
	st := &PlayerStats{}
	var last sql.NullTime

	err := r.db.QueryRow(
		`SELECT player, total_games, total_play_time, last_played_at, favorite_game
		 FROM player_stats WHERE player = ?`,
		player,
	).Scan(&st.Player, &st.TotalGames, &st.TotalPlayTime, &last, &st.FavoriteGame)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if last.Valid {
		t := last.Time
		st.LastPlayedAt = &t
	}
	return st, nil
}

// Breakdown returns per-game counts and scores for player, most played first.
func (r *StatsRepository) Breakdown(player string) ([]GameBreakdown, error) {
	rows, err := r.db.Query(
		`SELECT game_type, COUNT(*), AVG(score), MAX(score)
		 FROM sessions WHERE player = ?
		 GROUP BY game_type ORDER BY COUNT(*) DESC, game_type`,
		player,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []GameBreakdown{}
	for rows.Next() {
		var b GameBreakdown
		if err := rows.Scan(&b.GameType, &b.Count, &b.AvgScore, &b.BestScore); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// updateStats folds s into the player's statistics and returns the new game
// total. The favorite game is the most played one, ties broken by the most
// recent session.
func updateStats(tx *sql.Tx, s *Session) (int, error) {
	if _, err := tx.Exec(
		`INSERT INTO player_stats (player, total_games, total_play_time, last_played_at)
		 VALUES (?, 1, ?, ?)
		 ON CONFLICT(player) DO UPDATE SET
			total_games = total_games + 1,
			total_play_time = total_play_time + excluded.total_play_time,
			last_played_at = excluded.last_played_at`,
		s.Player, s.Duration, s.CreatedAt,
	); err != nil {
		return 0, err
	}

	if _, err := tx.Exec(
		`UPDATE player_stats SET favorite_game = (
			SELECT game_type FROM sessions WHERE player = ?
			GROUP BY game_type ORDER BY COUNT(*) DESC, MAX(created_at) DESC LIMIT 1
		 ) WHERE player = ?`,
		s.Player, s.Player,
	); err != nil {
		return 0, err
	}

	var total int
	err := tx.QueryRow(`SELECT total_games FROM player_stats WHERE player = ?`, s.Player).Scan(&total)
	return total, err
}
