package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"bomscrub/internal"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}
	if _, err := conn.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
  id TEXT PRIMARY KEY,
  fileName TEXT NOT NULL,
  mode TEXT NOT NULL,
  countsJson TEXT NOT NULL,
  tookMs INTEGER NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS boards (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  runId TEXT NOT NULL,
  sheetName TEXT NOT NULL,
  modelNo TEXT,
  boardName TEXT,
  manufacturer TEXT,
  buildStage TEXT,
  date TEXT,
  materialCost TEXT,
  overheadCost TEXT,
  totalCost TEXT,
  FOREIGN KEY(runId) REFERENCES runs(id)
);
CREATE INDEX IF NOT EXISTS idx_boards_runId ON boards(runId);

CREATE TABLE IF NOT EXISTS records (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  boardId INTEGER NOT NULL,
  ordinal INTEGER NOT NULL,
  item TEXT,
  componentType TEXT,
  devicePackage TEXT,
  description TEXT,
  unit TEXT,
  classification TEXT,
  manufacturer TEXT,
  mfgPartNumber TEXT,
  ulVdeNumber TEXT,
  validatedAt TEXT,
  qty TEXT,
  designator TEXT,
  unitPrice TEXT,
  subTotal TEXT,
  FOREIGN KEY(boardId) REFERENCES boards(id)
);
CREATE INDEX IF NOT EXISTS idx_records_boardId ON records(boardId);

CREATE TABLE IF NOT EXISTS review_flags (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  runId TEXT NOT NULL,
  kind TEXT NOT NULL,
  sheet TEXT NOT NULL,
  item TEXT,
  value TEXT,
  FOREIGN KEY(runId) REFERENCES runs(id)
);
CREATE INDEX IF NOT EXISTS idx_review_flags_runId ON review_flags(runId);
`

	_, err := d.conn.Exec(schema)
	return err
}

// InsertRun stores a completed run with all of its boards, records, and
// review flags in one transaction. A run is immutable once written.
func (d *DB) InsertRun(runID string, mode string, bom internal.Bom, flags []internal.ReviewFlag, counts internal.RunCounts, took time.Duration) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	countsJSON, _ := json.Marshal(counts)
	if _, err := tx.Exec(`
INSERT INTO runs (id, fileName, mode, countsJson, tookMs)
VALUES (?, ?, ?, ?, ?)
`, runID, bom.FileName, mode, string(countsJSON), took.Milliseconds()); err != nil {
		return err
	}

	recordStmt, err := tx.Prepare(`
INSERT INTO records (
  boardId, ordinal, item, componentType, devicePackage, description, unit,
  classification, manufacturer, mfgPartNumber, ulVdeNumber, validatedAt,
  qty, designator, unitPrice, subTotal
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return err
	}
	defer recordStmt.Close()

	for _, board := range bom.Boards {
		result, err := tx.Exec(`
INSERT INTO boards (runId, sheetName, modelNo, boardName, manufacturer, buildStage, date, materialCost, overheadCost, totalCost)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, runID, board.SheetName,
			board.Header.ModelNo, board.Header.BoardName, board.Header.Manufacturer, board.Header.BuildStage,
			board.Header.Date, board.Header.MaterialCost, board.Header.OverheadCost, board.Header.TotalCost)
		if err != nil {
			return err
		}
		boardID, err := result.LastInsertId()
		if err != nil {
			return err
		}

		for ordinal, rec := range board.Records {
			if _, err := recordStmt.Exec(
				boardID, ordinal,
				rec.Item, rec.ComponentType, rec.DevicePackage, rec.Description, rec.Unit,
				rec.Classification, rec.Manufacturer, rec.MfgPartNumber, rec.ULVDENumber, rec.ValidatedAt,
				rec.Qty, rec.Designator, rec.UnitPrice, rec.SubTotal,
			); err != nil {
				return err
			}
		}
	}

	for _, flag := range flags {
		if _, err := tx.Exec(`
INSERT INTO review_flags (runId, kind, sheet, item, value)
VALUES (?, ?, ?, ?, ?)
`, runID, string(flag.Kind), flag.Sheet, flag.Item, flag.Value); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) ListRuns() ([]internal.RunRow, error) {
	rows, err := d.conn.Query(`
SELECT id, fileName, mode, countsJson, tookMs, createdAt
FROM runs ORDER BY createdAt DESC
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.RunRow
	for rows.Next() {
		var row internal.RunRow
		var countsJSON string
		if err := rows.Scan(&row.ID, &row.FileName, &row.Mode, &countsJSON, &row.TookMs, &row.CreatedAt); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(countsJSON), &row.Counts)
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) GetRun(runID string) (*internal.RunRow, error) {
	var row internal.RunRow
	var countsJSON string
	err := d.conn.QueryRow(`
SELECT id, fileName, mode, countsJson, tookMs, createdAt
FROM runs WHERE id = ?
`, runID).Scan(&row.ID, &row.FileName, &row.Mode, &countsJSON, &row.TookMs, &row.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	_ = json.Unmarshal([]byte(countsJSON), &row.Counts)
	return &row, nil
}

// LoadBom reassembles the full BOM of a stored run, records in their
// original order.
func (d *DB) LoadBom(runID string) (internal.Bom, error) {
	run, err := d.GetRun(runID)
	if err != nil {
		return internal.Bom{}, err
	}
	if run == nil {
		return internal.Bom{}, fmt.Errorf("run not found: %s", runID)
	}

	bom := internal.Bom{FileName: run.FileName}

	boardRows, err := d.conn.Query(`
SELECT id, sheetName, modelNo, boardName, manufacturer, buildStage, date, materialCost, overheadCost, totalCost
FROM boards WHERE runId = ? ORDER BY id ASC
`, runID)
	if err != nil {
		return internal.Bom{}, err
	}
	defer boardRows.Close()

	type boardRef struct {
		id    int64
		board internal.Board
	}
	var boards []boardRef
	for boardRows.Next() {
		var ref boardRef
		if err := boardRows.Scan(
			&ref.id, &ref.board.SheetName,
			&ref.board.Header.ModelNo, &ref.board.Header.BoardName, &ref.board.Header.Manufacturer, &ref.board.Header.BuildStage,
			&ref.board.Header.Date, &ref.board.Header.MaterialCost, &ref.board.Header.OverheadCost, &ref.board.Header.TotalCost,
		); err != nil {
			return internal.Bom{}, err
		}
		boards = append(boards, ref)
	}
	if err := boardRows.Err(); err != nil {
		return internal.Bom{}, err
	}

	for i := range boards {
		records, err := d.loadRecords(boards[i].id)
		if err != nil {
			return internal.Bom{}, err
		}
		boards[i].board.Records = records
		bom.Boards = append(bom.Boards, boards[i].board)
	}

	return bom, nil
}

func (d *DB) loadRecords(boardID int64) ([]internal.Record, error) {
	rows, err := d.conn.Query(`
SELECT item, componentType, devicePackage, description, unit,
       classification, manufacturer, mfgPartNumber, ulVdeNumber, validatedAt,
       qty, designator, unitPrice, subTotal
FROM records WHERE boardId = ? ORDER BY ordinal ASC
`, boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.Record
	for rows.Next() {
		var rec internal.Record
		if err := rows.Scan(
			&rec.Item, &rec.ComponentType, &rec.DevicePackage, &rec.Description, &rec.Unit,
			&rec.Classification, &rec.Manufacturer, &rec.MfgPartNumber, &rec.ULVDENumber, &rec.ValidatedAt,
			&rec.Qty, &rec.Designator, &rec.UnitPrice, &rec.SubTotal,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (d *DB) ListFlags(runID string) ([]internal.ReviewFlag, error) {
	rows, err := d.conn.Query(`
SELECT kind, sheet, item, value FROM review_flags WHERE runId = ? ORDER BY id ASC
`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.ReviewFlag
	for rows.Next() {
		var flag internal.ReviewFlag
		var kind string
		if err := rows.Scan(&kind, &flag.Sheet, &flag.Item, &flag.Value); err != nil {
			return nil, err
		}
		flag.Kind = internal.ReviewKind(kind)
		out = append(out, flag)
	}
	return out, rows.Err()
}
