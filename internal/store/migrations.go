package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Mazes table - one row per layout
		`CREATE TABLE IF NOT EXISTS mazes (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			start_x REAL NOT NULL,
			start_y REAL NOT NULL,
			player_radius REAL NOT NULL,
			goal_x REAL NOT NULL,
			goal_y REAL NOT NULL,
			goal_radius REAL NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Maze obstacles table - walls in collision-check order
		`CREATE TABLE IF NOT EXISTS maze_obstacles (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			maze_id TEXT NOT NULL REFERENCES mazes(id) ON DELETE CASCADE,
			sequence INTEGER NOT NULL,
			cx REAL NOT NULL,
			cy REAL NOT NULL,
			width REAL NOT NULL,
			height REAL NOT NULL
		)`,

		// Hooks table - plugin actions run when a session is won, lost or reset
		`CREATE TABLE IF NOT EXISTS hooks (
			id TEXT PRIMARY KEY,
			event TEXT NOT NULL CHECK(event IN ('won', 'lost', 'reset')),
			plugin_name TEXT NOT NULL,
			action_name TEXT NOT NULL,
			config TEXT NOT NULL DEFAULT '{}',
			enabled INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Settings table - stores application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_maze_obstacles_maze_id ON maze_obstacles(maze_id, sequence)`,
		`CREATE INDEX IF NOT EXISTS idx_hooks_event ON hooks(event)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
