package repositories

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"busmanager/internal/db"
	"busmanager/internal/db/dbtest"
	"busmanager/internal/domain"
	"busmanager/internal/domain/models"

	"github.com/mmcloughlin/geohash"
	_ "modernc.org/sqlite"
)

type fixture struct {
	routes  RouteRepository
	buses   BusRepository
	drivers DriverRepository
	stops   StopRepository
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	conn := dbtest.Open(t)
	return fixture{
		routes:  RouteRepository{DB: conn, Dialect: db.DialectSQLite},
		buses:   BusRepository{DB: conn},
		drivers: DriverRepository{DB: conn},
		stops:   StopRepository{DB: conn, Dialect: db.DialectSQLite},
	}
}

func TestRouteAssociationsKeepOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	route := models.Route{Number: "42"}
	if err := f.routes.Add(ctx, &route); err != nil {
		t.Fatalf("add route: %v", err)
	}
	var ids []string
	for _, name := range []string{"Вокзал", "Центр", "Парк"} {
		s := models.Stop{Name: name, Lat: 55, Long: 37}
		if err := f.stops.Add(ctx, &s); err != nil {
			t.Fatalf("add stop: %v", err)
		}
		ids = append(ids, s.ID)
	}
	// assign in reverse name order; reads must follow assignment order
	for _, i := range []int{2, 0, 1} {
		if err := f.routes.AssignBusStop(ctx, route.ID, ids[i]); err != nil {
			t.Fatalf("assign: %v", err)
		}
	}

	stops, err := f.routes.GetAllBusStopsByID(ctx, route.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	got := []string{stops[0].Name, stops[1].Name, stops[2].Name}
	want := []string{"Парк", "Вокзал", "Центр"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}

	if err := f.routes.AssignBusStop(ctx, route.ID, ids[0]); !domain.IsConflict(err) {
		t.Fatalf("duplicate assign err = %v", err)
	}
	if err := f.routes.UnassignBusStop(ctx, route.ID, ids[0]); err != nil {
		t.Fatalf("unassign: %v", err)
	}
	if err := f.routes.UnassignBusStop(ctx, route.ID, ids[0]); !domain.IsNotFound(err) {
		t.Fatalf("second unassign err = %v", err)
	}
}

func TestDeleteCascadesLinks(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	route := models.Route{Number: "7"}
	day := time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC)
	bus := models.Bus{Brand: "ЛиАЗ", BusModel: "5292", RegisterNumber: "В777ОР", AssemblyDate: day, LastRepairDate: day}
	driver := models.Driver{Name: "Иван", Surname: "Иванов", BirthDate: day, PassportSeries: "1", Snils: "2", LicenseSeries: "3"}
	if err := f.routes.Add(ctx, &route); err != nil {
		t.Fatal(err)
	}
	if err := f.buses.Add(ctx, &bus); err != nil {
		t.Fatal(err)
	}
	if err := f.drivers.Add(ctx, &driver); err != nil {
		t.Fatal(err)
	}
	if err := f.routes.AssignBus(ctx, route.ID, bus.ID); err != nil {
		t.Fatal(err)
	}
	if err := f.routes.AssignDriver(ctx, route.ID, driver.ID); err != nil {
		t.Fatal(err)
	}

	if err := f.buses.DeleteByID(ctx, bus.ID); err != nil {
		t.Fatalf("delete bus: %v", err)
	}
	buses, err := f.routes.GetAllBusesByID(ctx, route.ID)
	if err != nil || buses != nil {
		t.Fatalf("buses after delete = %v, %v", buses, err)
	}

	if err := f.routes.DeleteByID(ctx, route.ID); err != nil {
		t.Fatalf("delete route: %v", err)
	}
	if _, err := f.drivers.GetByID(ctx, driver.ID); err != nil {
		t.Fatalf("driver should survive route delete: %v", err)
	}
	if _, err := f.routes.GetAllDriversByID(ctx, route.ID); !domain.IsNotFound(err) {
		t.Fatalf("drivers of deleted route err = %v", err)
	}
}

func TestDriverDocumentsUnique(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	day := time.Date(1980, 5, 6, 0, 0, 0, 0, time.UTC)
	first := models.Driver{Name: "Иван", Surname: "Иванов", BirthDate: day, PassportSeries: "4500 1", Snils: "111", LicenseSeries: "77 1"}
	if err := f.drivers.Add(ctx, &first); err != nil {
		t.Fatal(err)
	}
	second := models.Driver{Name: "Пётр", Surname: "Петров", BirthDate: day, PassportSeries: "4500 2", Snils: "111", LicenseSeries: "77 2"}
	if err := f.drivers.Add(ctx, &second); !domain.IsConflict(err) {
		t.Fatalf("expected conflict on shared snils, got %v", err)
	}

	got, err := f.drivers.GetByID(ctx, first.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.BirthDate.Equal(day) {
		t.Fatalf("birth date round trip = %v", got.BirthDate)
	}
}

func TestStopGeohashPrefix(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for _, s := range []models.Stop{
		{Name: "A", Lat: 1, Long: 1, Geohash: "ucftpuz"},
		{Name: "B", Lat: 1, Long: 1, Geohash: "ucftpvb"},
		{Name: "C", Lat: 1, Long: 1, Geohash: "udcxyz0"},
	} {
		s := s
		if err := f.stops.Add(ctx, &s); err != nil {
			t.Fatal(err)
		}
	}
	got, err := f.stops.GetByGeohashPrefix(ctx, "ucftp")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("prefix match = %+v", got)
	}
}

func TestStopLookups(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	stop := models.Stop{Name: "Центр", Lat: 55.7558, Long: 37.6173, Geohash: "ucfv0j0"}
	if err := f.stops.Add(ctx, &stop); err != nil {
		t.Fatal(err)
	}
	got, err := f.stops.GetByName(ctx, "Центр")
	if err != nil || got.ID != stop.ID {
		t.Fatalf("GetByName = %+v, %v", got, err)
	}
	if _, err := f.stops.GetByName(ctx, "Окраина"); !domain.IsNotFound(err) {
		t.Fatalf("missing stop err = %v", err)
	}

	day := time.Date(1980, 5, 6, 0, 0, 0, 0, time.UTC)
	driver := models.Driver{Name: "Иван", Surname: "Иванов", BirthDate: day, PassportSeries: "4500 1", Snils: "111", LicenseSeries: "77 1"}
	if err := f.drivers.Add(ctx, &driver); err != nil {
		t.Fatal(err)
	}
	d, err := f.drivers.GetByPassportSeries(ctx, "4500 1")
	if err != nil || d.ID != driver.ID {
		t.Fatalf("GetByPassportSeries = %+v, %v", d, err)
	}
	if _, err := f.drivers.GetByPassportSeries(ctx, "111"); !domain.IsNotFound(err) {
		t.Fatalf("snils must not match passport lookup, err = %v", err)
	}
}

// Tables written by builds that predate the geohash and position columns.
var legacyTables = []string{
	`CREATE TABLE bus_stops (id TEXT PRIMARY KEY, lat REAL NOT NULL, long REAL NOT NULL, name TEXT NOT NULL)`,
	`CREATE TABLE routes (id TEXT PRIMARY KEY, number TEXT NOT NULL UNIQUE)`,
	`CREATE TABLE routes_bus_stops (
		route_id TEXT NOT NULL REFERENCES routes(id) ON DELETE CASCADE,
		bus_stop_id TEXT NOT NULL REFERENCES bus_stops(id) ON DELETE CASCADE,
		PRIMARY KEY (route_id, bus_stop_id)
	)`,
	`INSERT INTO routes (id, number) VALUES ('r1', '42')`,
	`INSERT INTO bus_stops (id, lat, long, name) VALUES
		('s1', 55.7558, 37.6173, 'Центр'),
		('s2', 55.7600, 37.6200, 'Парк'),
		('s3', 55.7500, 37.6100, 'Вокзал')`,
	`INSERT INTO routes_bus_stops (route_id, bus_stop_id) VALUES ('r1', 's3'), ('r1', 's1'), ('r1', 's2')`,
}

func TestMigrateBackfillsLegacyRows(t *testing.T) {
	ctx := context.Background()
	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })

	for _, stmt := range legacyTables {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			t.Fatalf("legacy fixture: %v", err)
		}
	}
	for i := 0; i < 2; i++ {
		if err := db.Migrate(ctx, conn, db.DialectSQLite); err != nil {
			t.Fatalf("migrate #%d: %v", i+1, err)
		}
	}

	stops := StopRepository{DB: conn, Dialect: db.DialectSQLite}
	cell := geohash.EncodeWithPrecision(55.7558, 37.6173, 6)
	near, err := stops.GetByGeohashPrefix(ctx, cell)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, s := range near {
		if s.ID == "s1" {
			found = true
			if len(s.Geohash) != db.StopGeohashPrecision {
				t.Fatalf("geohash = %q", s.Geohash)
			}
		}
	}
	if !found {
		t.Fatalf("legacy stop missing from cell %s: %+v", cell, near)
	}

	routes := RouteRepository{DB: conn, Dialect: db.DialectSQLite}
	list, err := routes.GetAllBusStopsByID(ctx, "r1")
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, s := range list {
		got = append(got, s.ID)
	}
	if want := []string{"s3", "s1", "s2"}; strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("legacy order = %v, want %v", got, want)
	}

	// new assignments continue after the back-filled ones
	if _, err := conn.ExecContext(ctx, `INSERT INTO bus_stops (id, lat, long, name, geohash) VALUES ('s4', 55, 37, 'Депо', 'ucf')`); err != nil {
		t.Fatal(err)
	}
	if err := routes.AssignBusStop(ctx, "r1", "s4"); err != nil {
		t.Fatal(err)
	}
	list, _ = routes.GetAllBusStopsByID(ctx, "r1")
	if len(list) != 4 || list[3].ID != "s4" {
		t.Fatalf("after assign = %+v", list)
	}
}
