// Package store persists shipment packages and their tracking history.
//
// The same store runs against a local SQLite file or a PostgreSQL database;
// the driver is picked from the DSN. Queries are written once with `?`
// placeholders and rebound for postgres.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/movexa/trackctl/internal/observability"
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

var (
	ErrNotFound  = errors.New("store: package not found")
	ErrDuplicate = errors.New("store: tracking id already exists")
)

// TimestampLayout matches the original deployment's stored string format, so
// databases written by either implementation stay readable by both.
const TimestampLayout = "2006-01-02 15:04:05.000000"

func Timestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// Package is one tracked shipment.
type Package struct {
	TrackingID   string
	Recipient    string
	Status       string
	CreatedAt    string
	Weight       sql.NullFloat64
	Dimensions   sql.NullString
	ShipmentType sql.NullString
	Location     sql.NullString
}

// HistoryEntry is one tracking update for a shipment.
type HistoryEntry struct {
	Timestamp    string
	Location     string
	StatusUpdate string
}

// Store wraps the tracking database.
type Store struct {
	db     *sql.DB
	driver Driver
}

// ResolveDriver picks the driver from the DSN: postgres URLs select the
// postgres driver, everything else is treated as a sqlite file path.
func ResolveDriver(dsn string) Driver {
	trimmed := strings.TrimSpace(dsn)
	if strings.HasPrefix(trimmed, "postgres://") || strings.HasPrefix(trimmed, "postgresql://") {
		return DriverPostgres
	}
	return DriverSQLite
}

// Open connects to the tracking database selected by the DSN.
func Open(dsn string) (*Store, error) {
	driver := ResolveDriver(dsn)

	var db *sql.DB
	var err error
	switch driver {
	case DriverPostgres:
		db, err = sql.Open("postgres", dsn)
	default:
		db, err = sql.Open("sqlite", dsn)
	}
	if err != nil {
		return nil, fmt.Errorf("store open failed (%s): %w", driver, err)
	}

	if driver == DriverSQLite {
		if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("store sqlite setup failed: %w", err)
		}
	}

	return &Store{db: db, driver: driver}, nil
}

func (s *Store) Driver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Setup creates the packages and history tables when absent.
func (s *Store) Setup(ctx context.Context) (err error) {
	defer func() { observability.RecordStoreOp(string(s.driver), "setup", err) }()

	for _, ddl := range s.schema() {
		if _, err = s.db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("store schema setup failed: %w", err)
		}
	}
	return nil
}

// Reset drops both tables so Setup can rebuild them from scratch.
func (s *Store) Reset(ctx context.Context) (err error) {
	defer func() { observability.RecordStoreOp(string(s.driver), "reset", err) }()

	for _, ddl := range []string{
		`DROP TABLE IF EXISTS history`,
		`DROP TABLE IF EXISTS packages`,
	} {
		if _, err = s.db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("store reset failed: %w", err)
		}
	}
	return nil
}

func (s *Store) schema() []string {
	historyID := "id INTEGER PRIMARY KEY AUTOINCREMENT"
	if s.driver == DriverPostgres {
		historyID = "id SERIAL PRIMARY KEY"
	}
	return []string{
		`CREATE TABLE IF NOT EXISTS packages (
			tracking_id TEXT PRIMARY KEY,
			recipient TEXT NOT NULL,
			status TEXT NOT NULL,
			created_at TEXT NOT NULL,
			weight REAL,
			dimensions TEXT,
			shipment_type TEXT,
			location TEXT
		)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS history (
			%s,
			tracking_id TEXT NOT NULL,
			timestamp TEXT NOT NULL,
			location TEXT NOT NULL,
			status_update TEXT NOT NULL,
			FOREIGN KEY (tracking_id) REFERENCES packages (tracking_id)
		)`, historyID),
	}
}

// SeedDemo inserts the demo shipment used for smoke-testing a fresh
// deployment. It is a no-op when the demo package already exists.
func (s *Store) SeedDemo(ctx context.Context, now time.Time) (err error) {
	defer func() { observability.RecordStoreOp(string(s.driver), "seed_demo", err) }()

	const demoID = "MVX-DEMO2025"
	createdAt := Timestamp(now)

	var existing string
	err = s.db.QueryRowContext(ctx, s.rebind(
		`SELECT tracking_id FROM packages WHERE tracking_id = ?`), demoID).Scan(&existing)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("store demo lookup failed: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store demo seed failed: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, s.rebind(`INSERT INTO packages
		(tracking_id, recipient, status, created_at, weight, dimensions, shipment_type, location)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		demoID, "Movexa Demo Customer", "Delivered", createdAt,
		5.0, "20cm x 20cm x 10cm", "Small Parcel", "Port Harcourt, NG")
	if err != nil {
		return fmt.Errorf("store demo insert failed: %w", err)
	}

	demoHistory := []HistoryEntry{
		{Timestamp: createdAt, Location: "Lagos, NG", StatusUpdate: "Shipment Created"},
		{Timestamp: createdAt, Location: "New York, USA", StatusUpdate: "Shipment in Transit"},
		{Timestamp: createdAt, Location: "Port Harcourt, NG", StatusUpdate: "Delivered"},
	}
	for _, h := range demoHistory {
		_, err = tx.ExecContext(ctx, s.rebind(`INSERT INTO history
			(tracking_id, timestamp, location, status_update) VALUES (?, ?, ?, ?)`),
			demoID, h.Timestamp, h.Location, h.StatusUpdate)
		if err != nil {
			return fmt.Errorf("store demo history insert failed: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("store demo seed commit failed: %w", err)
	}
	return nil
}

// GetPackage fetches one shipment by tracking ID.
func (s *Store) GetPackage(ctx context.Context, trackingID string) (pkg Package, err error) {
	defer func() { observability.RecordStoreOp(string(s.driver), "get_package", err) }()

	row := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT tracking_id, recipient, status, created_at, weight, dimensions, shipment_type, location
		 FROM packages WHERE tracking_id = ?`), trackingID)
	err = row.Scan(&pkg.TrackingID, &pkg.Recipient, &pkg.Status, &pkg.CreatedAt,
		&pkg.Weight, &pkg.Dimensions, &pkg.ShipmentType, &pkg.Location)
	if errors.Is(err, sql.ErrNoRows) {
		err = ErrNotFound
		return Package{}, err
	}
	if err != nil {
		return Package{}, fmt.Errorf("store package lookup failed: %w", err)
	}
	return pkg, nil
}

// History returns all tracking updates for a shipment, newest first.
func (s *Store) History(ctx context.Context, trackingID string) (entries []HistoryEntry, err error) {
	defer func() { observability.RecordStoreOp(string(s.driver), "history", err) }()

	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT timestamp, location, status_update FROM history
		 WHERE tracking_id = ? ORDER BY timestamp DESC, id DESC`), trackingID)
	if err != nil {
		return nil, fmt.Errorf("store history lookup failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var h HistoryEntry
		if err = rows.Scan(&h.Timestamp, &h.Location, &h.StatusUpdate); err != nil {
			return nil, fmt.Errorf("store history scan failed: %w", err)
		}
		entries = append(entries, h)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("store history iteration failed: %w", err)
	}
	return entries, nil
}

// CreatePackage inserts a new shipment together with its creation history
// entry. A tracking-ID collision surfaces ErrDuplicate.
func (s *Store) CreatePackage(ctx context.Context, pkg Package) (err error) {
	defer func() { observability.RecordStoreOp(string(s.driver), "create_package", err) }()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store create failed: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, s.rebind(`INSERT INTO packages
		(tracking_id, recipient, status, created_at, weight, dimensions, shipment_type, location)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		pkg.TrackingID, pkg.Recipient, pkg.Status, pkg.CreatedAt,
		pkg.Weight, pkg.Dimensions, pkg.ShipmentType, pkg.Location)
	if err != nil {
		err = s.translateConstraintErr(err)
		return err
	}

	_, err = tx.ExecContext(ctx, s.rebind(`INSERT INTO history
		(tracking_id, timestamp, location, status_update) VALUES (?, ?, ?, ?)`),
		pkg.TrackingID, pkg.CreatedAt, "Shipment created online", pkg.Status)
	if err != nil {
		return fmt.Errorf("store create history insert failed: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("store create commit failed: %w", err)
	}
	return nil
}

// UpdateStatus moves a shipment to a new status/location and appends the
// matching history entry.
func (s *Store) UpdateStatus(ctx context.Context, trackingID, status, location, timestamp string) (err error) {
	defer func() { observability.RecordStoreOp(string(s.driver), "update_status", err) }()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store update failed: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, s.rebind(
		`UPDATE packages SET status = ?, location = ? WHERE tracking_id = ?`),
		status, location, trackingID)
	if err != nil {
		return fmt.Errorf("store status update failed: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store status update failed: %w", err)
	}
	if affected == 0 {
		err = ErrNotFound
		return err
	}

	_, err = tx.ExecContext(ctx, s.rebind(`INSERT INTO history
		(tracking_id, timestamp, location, status_update) VALUES (?, ?, ?, ?)`),
		trackingID, timestamp, location, status)
	if err != nil {
		return fmt.Errorf("store update history insert failed: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("store update commit failed: %w", err)
	}
	return nil
}

// rebind converts `?` placeholders to `$n` for the postgres driver.
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *Store) translateConstraintErr(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return ErrDuplicate
	}
	if s.driver == DriverSQLite && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return ErrDuplicate
	}
	return fmt.Errorf("store create insert failed: %w", err)
}
