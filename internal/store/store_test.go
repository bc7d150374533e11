package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "tracking.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	if err := s.Setup(context.Background()); err != nil {
		t.Fatalf("setup schema: %v", err)
	}
	return s
}

func TestResolveDriver(t *testing.T) {
	tests := []struct {
		dsn  string
		want Driver
	}{
		{dsn: "tracking.db", want: DriverSQLite},
		{dsn: "/var/lib/movexa/tracking.db", want: DriverSQLite},
		{dsn: "postgres://user:pw@localhost:5432/movexadb", want: DriverPostgres},
		{dsn: "postgresql://user:pw@localhost/movexadb", want: DriverPostgres},
	}
	for _, tc := range tests {
		if got := ResolveDriver(tc.dsn); got != tc.want {
			t.Fatalf("ResolveDriver(%q) = %q, want %q", tc.dsn, got, tc.want)
		}
	}
}

func TestSetupIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	if err := s.Setup(context.Background()); err != nil {
		t.Fatalf("second setup must be a no-op: %v", err)
	}
}

func TestSeedDemoOnlyOnce(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2025, 8, 25, 10, 0, 0, 0, time.UTC)

	if err := s.SeedDemo(ctx, now); err != nil {
		t.Fatalf("seed demo: %v", err)
	}
	if err := s.SeedDemo(ctx, now.Add(time.Hour)); err != nil {
		t.Fatalf("second seed must be a no-op: %v", err)
	}

	pkg, err := s.GetPackage(ctx, "MVX-DEMO2025")
	if err != nil {
		t.Fatalf("get demo package: %v", err)
	}
	if pkg.Status != "Delivered" || pkg.Recipient != "Movexa Demo Customer" {
		t.Fatalf("unexpected demo package: %+v", pkg)
	}

	history, err := s.History(ctx, "MVX-DEMO2025")
	if err != nil {
		t.Fatalf("demo history: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("expected 3 demo history rows, got %d", len(history))
	}
}

func TestCreateGetAndHistoryOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	created := time.Date(2025, 8, 25, 9, 0, 0, 0, time.UTC)

	pkg := Package{
		TrackingID:   "MVX-ABCD1234",
		Recipient:    "Ada Obi",
		Status:       "Shipment Created",
		CreatedAt:    Timestamp(created),
		Weight:       sql.NullFloat64{Float64: 2.5, Valid: true},
		Dimensions:   sql.NullString{String: "30cm x 20cm x 10cm", Valid: true},
		ShipmentType: sql.NullString{String: "Standard Parcel", Valid: true},
	}
	if err := s.CreatePackage(ctx, pkg); err != nil {
		t.Fatalf("create package: %v", err)
	}

	got, err := s.GetPackage(ctx, "MVX-ABCD1234")
	if err != nil {
		t.Fatalf("get package: %v", err)
	}
	if got.Recipient != "Ada Obi" || got.Status != "Shipment Created" {
		t.Fatalf("unexpected package: %+v", got)
	}
	if !got.Weight.Valid || got.Weight.Float64 != 2.5 {
		t.Fatalf("unexpected weight: %+v", got.Weight)
	}

	for i, update := range []struct {
		status   string
		location string
		at       time.Time
	}{
		{status: "In Transit", location: "Lagos, NG", at: created.Add(1 * time.Hour)},
		{status: "Delivered", location: "Abuja, NG", at: created.Add(2 * time.Hour)},
	} {
		if err := s.UpdateStatus(ctx, "MVX-ABCD1234", update.status, update.location, Timestamp(update.at)); err != nil {
			t.Fatalf("update %d: %v", i, err)
		}
	}

	history, err := s.History(ctx, "MVX-ABCD1234")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("expected 3 history rows, got %d", len(history))
	}
	if history[0].StatusUpdate != "Delivered" || history[2].StatusUpdate != "Shipment Created" {
		t.Fatalf("history not newest-first: %+v", history)
	}
	if history[2].Location != "Shipment created online" {
		t.Fatalf("creation history entry missing: %+v", history[2])
	}

	got, err = s.GetPackage(ctx, "MVX-ABCD1234")
	if err != nil {
		t.Fatalf("get after updates: %v", err)
	}
	if got.Status != "Delivered" || got.Location.String != "Abuja, NG" {
		t.Fatalf("package not updated: %+v", got)
	}
}

func TestCreateDuplicateTrackingID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	pkg := Package{
		TrackingID: "MVX-DUP00001",
		Recipient:  "First",
		Status:     "Shipment Created",
		CreatedAt:  Timestamp(time.Now()),
	}
	if err := s.CreatePackage(ctx, pkg); err != nil {
		t.Fatalf("first create: %v", err)
	}

	pkg.Recipient = "Second"
	if err := s.CreatePackage(ctx, pkg); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestGetPackageNotFound(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.GetPackage(context.Background(), "MVX-MISSING1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateStatusUnknownPackage(t *testing.T) {
	s := openTestStore(t)
	err := s.UpdateStatus(context.Background(), "MVX-MISSING1", "Lost", "Nowhere", Timestamp(time.Now()))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestResetDropsData(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.SeedDemo(ctx, time.Now()); err != nil {
		t.Fatalf("seed demo: %v", err)
	}
	if err := s.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if err := s.Setup(ctx); err != nil {
		t.Fatalf("setup after reset: %v", err)
	}
	if _, err := s.GetPackage(ctx, "MVX-DEMO2025"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected empty store after reset, got %v", err)
	}
}
