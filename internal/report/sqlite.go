package report

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/dupimg/dupimg/pkg/api"
)

// ExportSQLite writes summary into a fresh SQLite database at dbPath, a
// read-only queryable mirror of a finished run. Grounded on the
// teacher's internal/index/sqlite.go schema-per-concern idiom
// (fingerprints/path_index tables), repurposed from that file's
// ImageFingerprint/PHash/ColorHist shape onto this engine's
// groups/results/images. It never competes with internal/cache as the
// engine's actual persistent store; a caller who deletes the file loses
// nothing the engine itself depends on.
func (g *Generator) ExportSQLite(summary *Summary, dbPath string) error {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return fmt.Errorf("open sqlite export: %w", err)
	}
	defer db.Close()

	if err := initSchema(db); err != nil {
		return fmt.Errorf("init sqlite schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin sqlite transaction: %w", err)
	}
	defer tx.Rollback()

	for _, group := range summary.Groups {
		if _, err := tx.Exec(
			`INSERT INTO groups (id, image_count, invalid_hint) VALUES (?, ?, ?)`,
			group.ID, len(group.Images), group.InvalidHint,
		); err != nil {
			return fmt.Errorf("insert group %d: %w", group.ID, err)
		}
		for _, img := range group.Images {
			if _, err := tx.Exec(
				`INSERT INTO images (path, group_id, size, width, height, type) VALUES (?, ?, ?, ?, ?, ?)`,
				img.Path, group.ID, img.Size, img.Width, img.Height, img.Type.String(),
			); err != nil {
				return fmt.Errorf("insert image %s: %w", img.Path, err)
			}
		}
		for _, result := range group.Results {
			if err := insertResult(tx, group.ID, result); err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit sqlite export: %w", err)
	}
	g.logger.Infof("sqlite report saved to %s", dbPath)
	return nil
}

func initSchema(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS groups (
			id INTEGER PRIMARY KEY,
			image_count INTEGER NOT NULL,
			invalid_hint BOOLEAN NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS images (
			path TEXT PRIMARY KEY,
			group_id INTEGER NOT NULL,
			size INTEGER NOT NULL,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			type TEXT NOT NULL,
			FOREIGN KEY (group_id) REFERENCES groups (id)
		)`,
		`CREATE TABLE IF NOT EXISTS results (
			group_id INTEGER NOT NULL,
			kind TEXT NOT NULL,
			first_path TEXT,
			second_path TEXT,
			difference REAL,
			defect TEXT,
			FOREIGN KEY (group_id) REFERENCES groups (id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_images_group ON images(group_id)`,
	}
	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return err
		}
	}
	return nil
}

func insertResult(tx *sql.Tx, groupID int, r *api.Result) error {
	if r.Kind == api.ResultDefect {
		_, err := tx.Exec(
			`INSERT INTO results (group_id, kind, first_path, defect) VALUES (?, 'defect', ?, ?)`,
			groupID, r.DefectImage.Path, r.DefectKind.String(),
		)
		return err
	}
	_, err := tx.Exec(
		`INSERT INTO results (group_id, kind, first_path, second_path, difference) VALUES (?, 'duplicate', ?, ?, ?)`,
		groupID, r.First.Path, r.Second.Path, r.Difference,
	)
	return err
}
