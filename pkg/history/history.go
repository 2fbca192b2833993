package history

import (
	"database/sql"
	"io"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sugawarayuuta/sonnet"

	"github.com/lightloom/go-ray-engine/pkg/log"
	"github.com/lightloom/go-ray-engine/pkg/renderer"
)

var logger = log.New("history")

// Run is one recorded rendering session
type Run struct {
	ID            int64     `json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	Scene         string    `json:"scene"`
	Width         int       `json:"width"`
	Height        int       `json:"height"`
	Iterations    int       `json:"iterations"`
	Passes        uint64    `json:"passes"`
	TotalRays     uint64    `json:"total_rays"`
	RaysPerSecond float64   `json:"rays_per_second"`
	TracingMillis int64     `json:"tracing_ms"`
	Workers       int       `json:"workers"`
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at      TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	scene           TEXT NOT NULL,
	width           INTEGER NOT NULL,
	height          INTEGER NOT NULL,
	iterations      INTEGER NOT NULL,
	passes          INTEGER NOT NULL,
	total_rays      INTEGER NOT NULL,
	rays_per_second REAL NOT NULL,
	tracing_ms      INTEGER NOT NULL,
	workers         INTEGER NOT NULL
)`

// Store persists rendering runs in a sqlite database so benchmark results
// can be compared across sessions.
type Store struct {
	db *sql.DB
}

// Open opens or creates the run database at path
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores the outcome of a rendering session and returns its row id
func (s *Store) Record(sceneName string, iterations int, stats renderer.RenderStats) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO runs
			(scene, width, height, iterations, passes, total_rays, rays_per_second, tracing_ms, workers)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sceneName, stats.Width, stats.Height, iterations,
		stats.Passes, stats.TotalRays, stats.RaysPerSecond,
		stats.TracingTime.Milliseconds(), stats.Workers,
	)
	if err != nil {
		return 0, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	logger.Debugf("recorded run %d for scene %q", id, sceneName)
	return id, nil
}

// List returns the most recent runs, newest first. A non-positive limit
// returns everything.
func (s *Store) List(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(
		`SELECT id, created_at, scene, width, height, iterations, passes,
		        total_rays, rays_per_second, tracing_ms, workers
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		err := rows.Scan(
			&run.ID, &run.CreatedAt, &run.Scene, &run.Width, &run.Height,
			&run.Iterations, &run.Passes, &run.TotalRays,
			&run.RaysPerSecond, &run.TracingMillis, &run.Workers,
		)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// ExportJSON writes the most recent runs to w as a JSON array
func (s *Store) ExportJSON(w io.Writer, limit int) error {
	runs, err := s.List(limit)
	if err != nil {
		return err
	}
	if runs == nil {
		runs = []Run{}
	}
	return sonnet.NewEncoder(w).Encode(runs)
}
