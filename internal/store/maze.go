package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/pinchmaze/internal/game"
)

// ErrDuplicateName is returned when another maze already uses the name.
var ErrDuplicateName = errors.New("maze name already exists")

// Maze is a stored layout.
type Maze struct {
	ID        string
	Layout    game.Layout
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Name returns the layout name.
func (m *Maze) Name() string {
	return m.Layout.Name
}

// MazeRepository provides CRUD operations for mazes.
type MazeRepository struct {
	db *sql.DB
}

// Mazes returns the maze repository for this store.
func (s *Store) Mazes() *MazeRepository {
	return &MazeRepository{db: s.db}
}

const mazeColumns = `id, name, start_x, start_y, player_radius, goal_x, goal_y, goal_radius, created_at, updated_at`

// Create validates and inserts a maze with its obstacles. An empty ID is
// replaced with a new UUID.
func (r *MazeRepository) Create(m *Maze) error {
	if err := m.Layout.Validate(); err != nil {
		return err
	}
	if m.ID == "" {
		m.ID = uuid.New().String()
	}

	now := time.Now()
	m.CreatedAt = now
	m.UpdatedAt = now

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	l := m.Layout
	_, err = tx.Exec(
		`INSERT INTO mazes (`+mazeColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, l.Name, l.Start.X, l.Start.Y, l.PlayerRadius,
		l.Goal.Center.X, l.Goal.Center.Y, l.Goal.Radius, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return uniqueErr(err)
	}

	if err := insertObstacles(tx, m.ID, l.Obstacles); err != nil {
		return err
	}

	return tx.Commit()
}

// GetByID retrieves a maze by its ID.
func (r *MazeRepository) GetByID(id string) (*Maze, error) {
	return r.get(`SELECT `+mazeColumns+` FROM mazes WHERE id = ?`, id)
}

// GetByName retrieves a maze by its name.
func (r *MazeRepository) GetByName(name string) (*Maze, error) {
	return r.get(`SELECT `+mazeColumns+` FROM mazes WHERE name = ?`, name)
}

func (r *MazeRepository) get(query string, arg string) (*Maze, error) {
	m, err := scanMaze(r.db.QueryRow(query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	obstacles, err := r.obstacles(m.ID)
	if err != nil {
		return nil, err
	}
	m.Layout.Obstacles = obstacles
	return m, nil
}

// List retrieves all mazes ordered by name.
func (r *MazeRepository) List() ([]*Maze, error) {
	rows, err := r.db.Query(`SELECT ` + mazeColumns + ` FROM mazes ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var mazes []*Maze
	for rows.Next() {
		m, err := scanMaze(rows)
		if err != nil {
			return nil, err
		}
		mazes = append(mazes, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, m := range mazes {
		if m.Layout.Obstacles, err = r.obstacles(m.ID); err != nil {
			return nil, err
		}
	}

	return mazes, nil
}

// Update validates and replaces a maze, including all of its obstacles.
func (r *MazeRepository) Update(m *Maze) error {
	if err := m.Layout.Validate(); err != nil {
		return err
	}
	m.UpdatedAt = time.Now()

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	l := m.Layout
	result, err := tx.Exec(
		`UPDATE mazes SET name = ?, start_x = ?, start_y = ?, player_radius = ?,
		 goal_x = ?, goal_y = ?, goal_radius = ?, updated_at = ?
		 WHERE id = ?`,
		l.Name, l.Start.X, l.Start.Y, l.PlayerRadius,
		l.Goal.Center.X, l.Goal.Center.Y, l.Goal.Radius, m.UpdatedAt, m.ID,
	)
	if err != nil {
		return uniqueErr(err)
	}
	if err := checkAffected(result); err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM maze_obstacles WHERE maze_id = ?`, m.ID); err != nil {
		return err
	}
	if err := insertObstacles(tx, m.ID, l.Obstacles); err != nil {
		return err
	}

	return tx.Commit()
}

// Delete removes a maze and its obstacles by ID.
func (r *MazeRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM mazes WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

func (r *MazeRepository) obstacles(mazeID string) ([]game.Obstacle, error) {
	rows, err := r.db.Query(
		`SELECT cx, cy, width, height FROM maze_obstacles
		 WHERE maze_id = ? ORDER BY sequence`,
		mazeID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	obstacles := []game.Obstacle{}
	for rows.Next() {
		var c game.Point
		var w, h float64
		if err := rows.Scan(&c.X, &c.Y, &w, &h); err != nil {
			return nil, err
		}
		obstacles = append(obstacles, game.NewObstacle(c, w, h))
	}
	return obstacles, rows.Err()
}

func insertObstacles(tx *sql.Tx, mazeID string, obstacles []game.Obstacle) error {
	stmt, err := tx.Prepare(
		`INSERT INTO maze_obstacles (maze_id, sequence, cx, cy, width, height)
		 VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, o := range obstacles {
		c := o.Center()
		if _, err := stmt.Exec(mazeID, i, c.X, c.Y, 2*o.HalfWidth(), 2*o.HalfHeight()); err != nil {
			return fmt.Errorf("obstacle %d: %w", i, err)
		}
	}
	return nil
}

// uniqueErr maps SQLite unique constraint failures on the name column.
func uniqueErr(err error) error {
	if strings.Contains(err.Error(), "UNIQUE constraint failed: mazes.name") {
		return fmt.Errorf("%w: %v", ErrDuplicateName, err)
	}
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMaze(row rowScanner) (*Maze, error) {
	m := &Maze{}
	l := &m.Layout
	err := row.Scan(
		&m.ID, &l.Name, &l.Start.X, &l.Start.Y, &l.PlayerRadius,
		&l.Goal.Center.X, &l.Goal.Center.Y, &l.Goal.Radius, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}
