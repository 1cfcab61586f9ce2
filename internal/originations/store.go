// Package originations is a small SQLite-backed store of matured or
// rolled-off contracts, kept outside the live position table so
// margin.Calibrate's lookback window can see origination history that
// has already left the book. A single *sql.DB wrapper runs a
// version-gated migrate() step using modernc.org/sqlite (pure-Go, no
// cgo).
package originations

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/almready/irrbb/margin"
)

// Store wraps a SQLite database holding recent Origination rows.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at path and runs migrations.
// path may be ":memory:" for an ephemeral store (tests, one-shot CLI runs).
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("originations: open %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("originations: ping %s: %w", path, err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("originations: migrate: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	s.db.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&version)

	if version < 1 {
		_, err := s.db.Exec(`
			CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY);

			CREATE TABLE IF NOT EXISTS origination (
				contract_id          TEXT PRIMARY KEY,
				rate_type             INTEGER NOT NULL,
				source_contract_type  TEXT NOT NULL,
				side                  TEXT NOT NULL,
				repricing_freq        TEXT NOT NULL DEFAULT '',
				index_name            TEXT NOT NULL DEFAULT '',
				fixed_rate            REAL NOT NULL DEFAULT 0,
				spread                REAL NOT NULL DEFAULT 0,
				notional              REAL NOT NULL DEFAULT 0,
				start_date            TEXT NOT NULL,
				maturity_date         TEXT NOT NULL DEFAULT ''
			);
			CREATE INDEX IF NOT EXISTS idx_origination_start ON origination(start_date);

			INSERT OR IGNORE INTO schema_version (version) VALUES (1);
		`)
		if err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
	}
	return nil
}

const dateLayout = "2006-01-02"

// Record persists one completed origination, keyed by contractID (an
// upsert: re-recording the same id overwrites the prior row).
func (s *Store) Record(contractID string, o margin.Origination) error {
	maturity := ""
	if !o.MaturityDate.IsZero() {
		maturity = o.MaturityDate.Format(dateLayout)
	}
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO origination
			(contract_id, rate_type, source_contract_type, side, repricing_freq, index_name, fixed_rate, spread, notional, start_date, maturity_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		contractID, int(o.RateType), o.SourceContractType, o.Side, o.RepricingFreq, o.IndexName,
		o.FixedRate, o.Spread, o.Notional, o.StartDate.Format(dateLayout), maturity,
	)
	return err
}

// RecentWithin returns every origination whose start_date falls within
// [asOf-lookbackMonths, asOf], for feeding margin.Calibrate's input rows
// alongside the live position table.
func (s *Store) RecentWithin(asOf time.Time, lookbackMonths int) ([]margin.Origination, error) {
	cutoff := asOf.AddDate(0, -lookbackMonths, 0).Format(dateLayout)
	rows, err := s.db.Query(`
		SELECT rate_type, source_contract_type, side, repricing_freq, index_name, fixed_rate, spread, notional, start_date, maturity_date
		  FROM origination
		 WHERE start_date >= ? AND start_date <= ?`,
		cutoff, asOf.Format(dateLayout),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []margin.Origination
	for rows.Next() {
		var o margin.Origination
		var rateType int
		var startDate, maturityDate string
		if err := rows.Scan(&rateType, &o.SourceContractType, &o.Side, &o.RepricingFreq, &o.IndexName, &o.FixedRate, &o.Spread, &o.Notional, &startDate, &maturityDate); err != nil {
			return nil, err
		}
		o.RateType = margin.RateType(rateType)
		o.StartDate, _ = time.Parse(dateLayout, startDate)
		if maturityDate != "" {
			o.MaturityDate, _ = time.Parse(dateLayout, maturityDate)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
