package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"busmanager/internal/db"
	"busmanager/internal/db/dbtest"
	"busmanager/internal/domain"
	"busmanager/internal/domain/models"
	"busmanager/internal/gateway/wire"
	"busmanager/internal/services"
)

func newGateway(t *testing.T) *Gateway {
	t.Helper()
	return New(services.NewFleet(dbtest.Open(t), db.DialectSQLite))
}

const busJSON = `{"ID":null,"Brand":"ПАЗ","BusModel":"3205","RegisterNumber":"А123ВС","AssemblyDate":"2015-02-01T00:00:00Z","LastRepairDate":"2023-10-10T00:00:00Z"}`

func mustDecode[T any](t *testing.T, raw string) T {
	t.Helper()
	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		t.Fatalf("decode %q: %v", raw, err)
	}
	return v
}

func TestGetAllEmptyIsNull(t *testing.T) {
	g := newGateway(t)
	if got := g.Buses.GetAll(context.Background()); got != "null" {
		t.Fatalf("GetAll on empty table = %q, want null", got)
	}
}

func TestBusLifecycle(t *testing.T) {
	ctx := context.Background()
	g := newGateway(t)

	added := g.Buses.Add(ctx, busJSON)
	if msg := wire.ErrorOf(added); msg != "" {
		t.Fatalf("Add: %s", msg)
	}
	bus := mustDecode[models.Bus](t, added)
	if bus.ID == "" {
		t.Fatalf("Add did not assign an ID: %s", added)
	}

	got := mustDecode[models.Bus](t, g.Buses.GetByID(ctx, bus.ID))
	if got.RegisterNumber != "А123ВС" || got.AssemblyDate.Format("2006-01-02") != "2015-02-01" {
		t.Fatalf("GetByID = %+v", got)
	}

	got.Brand = "Scania"
	payload, _ := json.Marshal(got)
	if msg := wire.ErrorOf(g.Buses.UpdateByID(ctx, string(payload))); msg != "" {
		t.Fatalf("UpdateByID: %s", msg)
	}
	if b := mustDecode[models.Bus](t, g.Buses.GetByNumber(ctx, "А123ВС")); b.Brand != "Scania" {
		t.Fatalf("GetByNumber brand = %q", b.Brand)
	}

	list := mustDecode[[]models.Bus](t, g.Buses.GetAll(ctx))
	if len(list) != 1 {
		t.Fatalf("GetAll len = %d", len(list))
	}

	del := mustDecode[wire.SuccessResponse](t, g.Buses.DeleteByID(ctx, bus.ID))
	if del.Response != "deleted" {
		t.Fatalf("DeleteByID = %+v", del)
	}
	if msg := wire.ErrorOf(g.Buses.GetByID(ctx, bus.ID)); !strings.Contains(msg, "not found") {
		t.Fatalf("GetByID after delete error = %q", msg)
	}
}

func TestAddDuplicateRegisterNumber(t *testing.T) {
	ctx := context.Background()
	g := newGateway(t)

	if msg := wire.ErrorOf(g.Buses.Add(ctx, busJSON)); msg != "" {
		t.Fatalf("first Add: %s", msg)
	}
	if msg := wire.ErrorOf(g.Buses.Add(ctx, busJSON)); !strings.Contains(msg, "already exists") {
		t.Fatalf("duplicate Add error = %q", msg)
	}
}

func TestErrorsAreJSON(t *testing.T) {
	ctx := context.Background()
	g := newGateway(t)

	cases := map[string]string{
		"empty id":     g.Drivers.GetByID(ctx, " "),
		"bad payload":  g.Drivers.Add(ctx, "{"),
		"missing name": g.Routes.Add(ctx, `{"Number":"  "}`),
		"unknown id":   g.Stops.DeleteByID(ctx, "nope"),
	}
	for name, raw := range cases {
		if wire.ErrorOf(raw) == "" {
			t.Errorf("%s: expected Error payload, got %s", name, raw)
		}
		if !strings.Contains(raw, "\n    \"Error\"") {
			t.Errorf("%s: expected indented payload, got %s", name, raw)
		}
	}
}

func TestRouteAssignments(t *testing.T) {
	ctx := context.Background()
	g := newGateway(t)

	route := mustDecode[models.Route](t, g.Routes.Add(ctx, `{"Number":"42"}`))
	bus := mustDecode[models.Bus](t, g.Buses.Add(ctx, busJSON))
	stop := mustDecode[models.Stop](t, g.Stops.Add(ctx, `{"Name":"Центр","Lat":55.7558,"Long":37.6173}`))

	for _, raw := range []string{
		g.Routes.AssignBus(ctx, route.ID, bus.ID),
		g.Routes.AssignBusStop(ctx, route.ID, stop.ID),
	} {
		if msg := wire.ErrorOf(raw); msg != "" {
			t.Fatalf("assign: %s", msg)
		}
	}
	if msg := wire.ErrorOf(g.Routes.AssignBus(ctx, route.ID, "missing")); !strings.Contains(msg, "not found") {
		t.Fatalf("assign missing bus error = %q", msg)
	}
	if msg := wire.ErrorOf(g.Routes.AssignBus(ctx, route.ID, bus.ID)); !strings.Contains(msg, "already assigned") {
		t.Fatalf("duplicate assign error = %q", msg)
	}

	details := mustDecode[models.RouteDetails](t, g.Routes.GetDetailsByID(ctx, route.ID))
	if len(details.Buses) != 1 || len(details.Stops) != 1 || len(details.Drivers) != 0 {
		t.Fatalf("details = %+v", details)
	}

	if msg := wire.ErrorOf(g.Routes.UnassignBus(ctx, route.ID, bus.ID)); msg != "" {
		t.Fatalf("unassign: %s", msg)
	}
	if raw := g.Routes.GetAllBusesByID(ctx, route.ID); raw != "null" {
		t.Fatalf("buses after unassign = %s", raw)
	}
}

func TestStopNearby(t *testing.T) {
	ctx := context.Background()
	g := newGateway(t)

	g.Stops.Add(ctx, `{"Name":"Центр","Lat":55.7558,"Long":37.6173}`)
	g.Stops.Add(ctx, `{"Name":"Далеко","Lat":59.9386,"Long":30.3141}`)

	near := mustDecode[[]models.Stop](t, g.Stops.GetNearby(ctx, "55.7560", "37.6170"))
	if len(near) != 1 || near[0].Name != "Центр" {
		t.Fatalf("nearby = %+v", near)
	}
	if wire.ErrorOf(g.Stops.GetNearby(ctx, "north", "0")) == "" {
		t.Fatal("expected error for bad latitude")
	}
}

func TestLookupsByNameAndPassport(t *testing.T) {
	ctx := context.Background()
	g := newGateway(t)

	g.Stops.Add(ctx, `{"Name":"Центр","Lat":55.7558,"Long":37.6173}`)
	g.Drivers.Add(ctx, `{"Name":"Иван","Surname":"Петров","BirthDate":"1980-05-01T00:00:00Z","PassportSeries":"4510 123456","Snils":"112-233-445 95","LicenseSeries":"77 АА 123456"}`)

	raw, err := g.Call(ctx, domain.EntityStop, "GetByName", []string{" Центр "})
	if err != nil {
		t.Fatalf("Call stop.GetByName: %v", err)
	}
	if stop := mustDecode[models.Stop](t, raw); stop.Lat != 55.7558 || stop.Geohash == "" {
		t.Fatalf("stop = %+v", stop)
	}

	raw, err = g.Call(ctx, domain.EntityDriver, "GetByPassportSeries", []string{"4510 123456"})
	if err != nil {
		t.Fatalf("Call driver.GetByPassportSeries: %v", err)
	}
	if d := mustDecode[models.Driver](t, raw); d.Surname != "Петров" {
		t.Fatalf("driver = %+v", d)
	}

	if msg := wire.ErrorOf(g.Stops.GetByName(ctx, "Окраина")); !strings.Contains(msg, "not found") {
		t.Fatalf("missing stop error = %q", msg)
	}
	if msg := wire.ErrorOf(g.Drivers.GetByPassportSeries(ctx, "  ")); !strings.Contains(msg, "PassportSeries") {
		t.Fatalf("blank series error = %q", msg)
	}
}

func TestCall(t *testing.T) {
	ctx := context.Background()
	g := newGateway(t)

	raw, err := g.Call(ctx, domain.EntityRoute, "Add", []string{`{"Number":"7"}`})
	if err != nil || wire.ErrorOf(raw) != "" {
		t.Fatalf("Call Add = %s, %v", raw, err)
	}
	raw, err = g.Call(ctx, domain.EntityRoute, "GetAll", nil)
	if err != nil || len(mustDecode[[]models.Route](t, raw)) != 1 {
		t.Fatalf("Call GetAll = %s, %v", raw, err)
	}

	if _, err := g.Call(ctx, "ticket", "GetAll", nil); !errors.Is(err, ErrUnknownEntity) {
		t.Fatalf("unknown entity err = %v", err)
	}
	if _, err := g.Call(ctx, domain.EntityBus, "AssignBus", []string{"a", "b"}); !errors.Is(err, ErrUnknownProcedure) {
		t.Fatalf("unknown procedure err = %v", err)
	}
	if _, err := g.Call(ctx, domain.EntityBus, "GetById", nil); !errors.Is(err, ErrArity) {
		t.Fatalf("arity err = %v", err)
	}
}

func TestEntity(t *testing.T) {
	g := newGateway(t)
	for _, e := range domain.Entities {
		if _, ok := g.Entity(e); !ok {
			t.Errorf("Entity(%s) missing", e)
		}
	}
	if _, ok := g.Entity("ticket"); ok {
		t.Error("Entity(ticket) should not exist")
	}
}
