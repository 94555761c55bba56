package result

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	_ "github.com/ClickHouse/clickhouse-go/v2" // database/sql driver
	"github.com/golang-migrate/migrate/v4"
	clickhousemigrate "github.com/golang-migrate/migrate/v4/database/clickhouse"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

const insertQuery = `
	INSERT INTO hiltest_results (
		run_started, suite, suite_id, test, case_id, outcome,
		setup_ok, test_ok, teardown_ok,
		pings_sent, pings_received, ping_rtt_ms
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// clickhouseSink exports run ledgers to a ClickHouse table so lab dashboards
// can track pass rates across runs.
type clickhouseSink struct {
	log        logrus.FieldLogger
	db         *sql.DB
	runStarted time.Time
}

// NewClickHouseSink connects to ClickHouse, runs the embedded schema
// migrations and returns a ready sink.
func NewClickHouseSink(log logrus.FieldLogger, dsn string) (Sink, error) {
	db, err := sql.Open("clickhouse", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening clickhouse connection: %w", err)
	}

	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging clickhouse: %w", err)
	}

	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &clickhouseSink{
		log:        log.WithField("component", "clickhouse_sink"),
		db:         db,
		runStarted: time.Now(),
	}, nil
}

func runMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("creating migration source: %w", err)
	}

	dbDriver, err := clickhousemigrate.WithInstance(db, &clickhousemigrate.Config{
		MigrationsTable:       "hiltest_schema_migrations",
		MultiStatementEnabled: true,
	})
	if err != nil {
		return fmt.Errorf("creating migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "clickhouse", dbDriver)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("running migrations: %w", err)
	}

	return nil
}

// Flush inserts one row per test record. Suites with no tests (for example a
// failed class setup) still produce a suite-level marker row.
func (s *clickhouseSink) Flush(ctx context.Context, ledger *Ledger) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning insert batch: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertQuery)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	rows := 0
	for _, suiteName := range ledger.Classes() {
		sr, _ := ledger.Lookup(suiteName)

		if sr.SetupClassFailed() && len(sr.Tests()) == 0 {
			if _, err := stmt.ExecContext(ctx,
				s.runStarted, suiteName, sr.SuiteID(), "", "",
				string(OutcomeFailedSetup), 0, 0, 0, 0, 0, 0.0,
			); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("inserting suite marker: %w", err)
			}
			rows++
			continue
		}

		for _, test := range sr.Tests() {
			rec, _ := sr.Record(test)
			sent, received, _ := rec.PingCounts()
			rtt, _ := rec.RTT()

			if _, err := stmt.ExecContext(ctx,
				s.runStarted, suiteName, sr.SuiteID(), test, rec.TrackingID,
				string(rec.Outcome()),
				boolToUint8(rec.Setup), boolToUint8(rec.Test), boolToUint8(rec.Teardown),
				sent, received, float64(rtt)/float64(time.Millisecond),
			); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("inserting record for %s.%s: %w", suiteName, test, err)
			}
			rows++
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing insert batch: %w", err)
	}

	s.log.WithField("rows", rows).Debug("exported run results")
	return nil
}

func (s *clickhouseSink) Close() error {
	return s.db.Close()
}

func boolToUint8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
