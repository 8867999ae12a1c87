package db

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"hstin/sdf2bsdf/internal/config"
	"hstin/sdf2bsdf/parser"
)

// Record is one converted grid as stored in the catalog.
type Record struct {
	Name        string
	Source      string
	Output      string
	Stats       parser.Stats
	Bounds      *parser.Bounds
	Preview     []byte
	ConvertedAt time.Time
}

// InitDB opens the catalog at dbPath, creating the schema if needed. An
// existing catalog is extended, never truncated.
func InitDB(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS grids (
			name TEXT,
			source TEXT,
			output TEXT,
			min_elevation INTEGER,
			max_elevation INTEGER,
			samples INTEGER,
			max_west REAL,
			min_north REAL,
			min_west REAL,
			max_north REAL,
			preview BLOB,
			converted_at TEXT,
			PRIMARY KEY (name)
		);
		CREATE TABLE IF NOT EXISTS metadata (
			name TEXT,
			value TEXT,
			PRIMARY KEY (name)
		);
	`)
	if err != nil {
		db.Close()
		return nil, err
	}

	_, err = db.Exec(`
		INSERT OR IGNORE INTO metadata VALUES
		('name', 'SDF Grids'),
		('format', 'bsdf'),
		('version', '1.0'),
		('grid_size', ?),
		('grids', '0'),
		('min_elevation', ''),
		('max_elevation', ''),
		('bounds', '');
	`, config.GridSize)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// PrepareInsert returns a statement that inserts or replaces one Record;
// execute it with InsertGrid.
func PrepareInsert(db *sql.DB) (*sql.Stmt, error) {
	return db.Prepare(`INSERT OR REPLACE INTO grids
		(name, source, output, min_elevation, max_elevation, samples,
		 max_west, min_north, min_west, max_north, preview, converted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
}

// InsertGrid stores rec through a statement from PrepareInsert.
func InsertGrid(stmt *sql.Stmt, rec Record) error {
	var maxWest, minNorth, minWest, maxNorth sql.NullFloat64
	if rec.Bounds != nil {
		maxWest = sql.NullFloat64{Float64: rec.Bounds.MaxWest, Valid: true}
		minNorth = sql.NullFloat64{Float64: rec.Bounds.MinNorth, Valid: true}
		minWest = sql.NullFloat64{Float64: rec.Bounds.MinWest, Valid: true}
		maxNorth = sql.NullFloat64{Float64: rec.Bounds.MaxNorth, Valid: true}
	}

	_, err := stmt.Exec(rec.Name, rec.Source, rec.Output,
		rec.Stats.Min, rec.Stats.Max, rec.Stats.Count,
		maxWest, minNorth, minWest, maxNorth,
		rec.Preview, rec.ConvertedAt.UTC().Format(time.RFC3339))
	return err
}

// UpdateMetadata refreshes the aggregate rows of the metadata table from
// the grids table.
func UpdateMetadata(db *sql.DB) error {
	var (
		count                  int
		minElev, maxElev       sql.NullInt64
		minW, minN, maxW, maxN sql.NullFloat64
	)
	err := db.QueryRow(`SELECT COUNT(*), MIN(min_elevation), MAX(max_elevation),
		MIN(min_west), MIN(min_north), MAX(max_west), MAX(max_north) FROM grids`).
		Scan(&count, &minElev, &maxElev, &minW, &minN, &maxW, &maxN)
	if err != nil {
		return err
	}

	_, err = db.Exec("UPDATE metadata SET value = ? WHERE name = 'grids'", count)
	if err != nil {
		return err
	}
	if minElev.Valid {
		_, err = db.Exec("UPDATE metadata SET value = ? WHERE name = 'min_elevation'", minElev.Int64)
		if err != nil {
			return err
		}
	}
	if maxElev.Valid {
		_, err = db.Exec("UPDATE metadata SET value = ? WHERE name = 'max_elevation'", maxElev.Int64)
		if err != nil {
			return err
		}
	}

	if minW.Valid && minN.Valid && maxW.Valid && maxN.Valid {
		bounds := fmt.Sprintf("%f,%f,%f,%f", minW.Float64, minN.Float64, maxW.Float64, maxN.Float64)
		_, err = db.Exec("UPDATE metadata SET value = ? WHERE name = 'bounds'", bounds)
		if err != nil {
			return err
		}
	}

	return nil
}
