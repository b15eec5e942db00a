package store

func (s *Store) runMigrations() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			player TEXT NOT NULL,
			game_type TEXT NOT NULL,
			score INTEGER NOT NULL,
			duration INTEGER NOT NULL CHECK(duration > 0),
			accuracy REAL,
			metadata TEXT NOT NULL DEFAULT '{}',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// One row per player, updated on every saved session.
		`CREATE TABLE IF NOT EXISTS player_stats (
			player TEXT PRIMARY KEY,
			total_games INTEGER NOT NULL DEFAULT 0,
			total_play_time INTEGER NOT NULL DEFAULT 0,
			last_played_at DATETIME,
			favorite_game TEXT NOT NULL DEFAULT ''
		)`,

		`CREATE TABLE IF NOT EXISTS achievements (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			player TEXT NOT NULL,
			type TEXT NOT NULL,
			unlocked_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(player, type)
		)`,

		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_sessions_player ON sessions(player, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_game_score ON sessions(game_type, score)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
