//go:build !js

package pipeline

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/lucasjlepore/stepcadence"
	_ "modernc.org/sqlite"
)

const summaryTableDDL = `CREATE TABLE activity_summary (
	Userid TEXT PRIMARY KEY,
	countyCode TEXT NOT NULL,
	censusArea TEXT NOT NULL,
	All_Days INTEGER NOT NULL,
	Walking_Days INTEGER NOT NULL,
	Active_Days INTEGER NOT NULL,
	Median_All_Steps REAL NOT NULL,
	Mean_All_Steps REAL NOT NULL,
	Median_Walking_Steps REAL NOT NULL,
	Mean_Walking_Steps REAL NOT NULL,
	Median_Active_Steps REAL NOT NULL,
	Mean_Active_Steps REAL NOT NULL
)`

const summaryInsert = `INSERT INTO activity_summary VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// writeSummarySQLite writes rows into a fresh activity_summary table. An
// existing database file at path is replaced.
func writeSummarySQLite(ctx context.Context, path string, rows []stepcadence.SummaryRow) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove previous database: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, summaryTableDDL); err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, summaryInsert)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, r := range rows {
		p := toParquetRow(r)
		if _, err := stmt.ExecContext(ctx,
			p.UserID, p.CountyCode, p.CensusArea,
			p.AllDays, p.WalkingDays, p.ActiveDays,
			p.MedianAllSteps, p.MeanAllSteps,
			p.MedianWalkingSteps, p.MeanWalkingSteps,
			p.MedianActiveSteps, p.MeanActiveSteps,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert %s: %w", r.UserID, err)
		}
	}
	return tx.Commit()
}
