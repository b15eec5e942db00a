package store

import (
	"database/sql"
	"time"
)

// AchievementType names a milestone.
type AchievementType string

const (
	AchievementFirstGame AchievementType = "first_game"
	AchievementGames10   AchievementType = "games_10"
	AchievementGames50   AchievementType = "games_50"
	AchievementGames100  AchievementType = "games_100"
)

// milestones maps a total game count to the achievement it unlocks.
var milestones = map[int]AchievementType{
	1:   AchievementFirstGame,
	10:  AchievementGames10,
	50:  AchievementGames50,
	100: AchievementGames100,
}

// Achievement is an unlocked milestone.
type Achievement struct {
	Player     string          `json:"player"`
	Type       AchievementType `json:"type"`
	UnlockedAt time.Time       `json:"unlockedAt"`
}

// AchievementRepository reads unlocked achievements.
type AchievementRepository struct {
	db *sql.DB
}

// Achievements returns the achievement repository for this store.
func (s *Store) Achievements() *AchievementRepository {
	return &AchievementRepository{db: s.db}
}

// List returns the achievements of player in unlock order.
func (r *AchievementRepository) List(player string) ([]Achievement, error) {
	rows, err := r.db.Query(
		`SELECT player, type, unlocked_at FROM achievements
		 WHERE player = ? ORDER BY unlocked_at, id`,
		player,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Achievement{}
	for rows.Next() {
		var a Achievement
		var typ string
		if err := rows.Scan(&a.Player, &typ, &a.UnlockedAt); err != nil {
			return nil, err
		}
		a.Type = AchievementType(typ)
		out = append(out, a)
	}
	return out, rows.Err()
}

// unlockMilestones records the achievement for totalGames, if any. An
// achievement that already exists is left alone and not reported again.
func unlockMilestones(tx *sql.Tx, player string, totalGames int, at time.Time) ([]AchievementType, error) {
	typ, ok := milestones[totalGames]
	if !ok {
		return nil, nil
	}

	res, err := tx.Exec(
		`INSERT INTO achievements (player, type, unlocked_at) VALUES (?, ?, ?)
		 ON CONFLICT(player, type) DO NOTHING`,
		player, string(typ), at,
	)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err != nil || n == 0 {
		return nil, err
	}
	return []AchievementType{typ}, nil
}
