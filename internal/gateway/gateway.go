package gateway

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"busmanager/internal/domain"
	"busmanager/internal/domain/models"
	"busmanager/internal/gateway/wire"
	"busmanager/internal/services"
)

var (
	ErrUnknownEntity    = errors.New("unknown entity")
	ErrUnknownProcedure = errors.New("unknown procedure")
	ErrArity            = errors.New("wrong number of arguments")
)

type BusRouter struct {
	Router[models.Bus]
	svc services.BusService
}

func (r BusRouter) GetByNumber(ctx context.Context, number string) string {
	bus, err := r.svc.GetByNumber(ctx, number)
	if err != nil {
		return r.fail("get_by_number", err)
	}
	return wire.Encode(bus)
}

type DriverRouter struct {
	Router[models.Driver]
	svc services.DriverService
}

func (r DriverRouter) GetByPassportSeries(ctx context.Context, series string) string {
	driver, err := r.svc.GetByPassportSeries(ctx, series)
	if err != nil {
		return r.fail("get_by_passport_series", err)
	}
	return wire.Encode(driver)
}

type StopRouter struct {
	Router[models.Stop]
	svc services.StopService
}

func (r StopRouter) GetByName(ctx context.Context, name string) string {
	stop, err := r.svc.GetByName(ctx, name)
	if err != nil {
		return r.fail("get_by_name", err)
	}
	return wire.Encode(stop)
}

// GetNearby takes coordinates as text, the way form fields carry them.
func (r StopRouter) GetNearby(ctx context.Context, lat, long string) string {
	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return wire.NewJsonError(fmt.Errorf("Lat: %w", err))
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(long), 64)
	if err != nil {
		return wire.NewJsonError(fmt.Errorf("Long: %w", err))
	}
	stops, err := r.svc.Nearby(ctx, la, lo)
	if err != nil {
		return r.fail("get_nearby", err)
	}
	return wire.Encode(stops)
}

type RouteRouter struct {
	Router[models.Route]
	svc services.RouteService
}

func (r RouteRouter) GetByNumber(ctx context.Context, number string) string {
	route, err := r.svc.GetByNumber(ctx, number)
	if err != nil {
		return r.fail("get_by_number", err)
	}
	return wire.Encode(route)
}

func (r RouteRouter) link(ctx context.Context, assign bool, kind, routeID, refID string) string {
	var (
		err  error
		verb = "Assigned"
	)
	if assign {
		err = r.svc.Assign(ctx, kind, routeID, refID)
	} else {
		verb = "Unassigned"
		err = r.svc.Unassign(ctx, kind, routeID, refID)
	}
	if err != nil {
		return r.fail(strings.ToLower(verb)+"_"+kind, err)
	}
	noun := map[string]string{services.LinkDriver: "driver", services.LinkStop: "bus stop", services.LinkBus: "bus"}[kind]
	return wire.NewSuccessResponse(fmt.Sprintf("%s %s successfully", verb, noun))
}

func (r RouteRouter) AssignDriver(ctx context.Context, routeID, driverID string) string {
	return r.link(ctx, true, services.LinkDriver, routeID, driverID)
}

func (r RouteRouter) AssignBusStop(ctx context.Context, routeID, stopID string) string {
	return r.link(ctx, true, services.LinkStop, routeID, stopID)
}

func (r RouteRouter) AssignBus(ctx context.Context, routeID, busID string) string {
	return r.link(ctx, true, services.LinkBus, routeID, busID)
}

func (r RouteRouter) UnassignDriver(ctx context.Context, routeID, driverID string) string {
	return r.link(ctx, false, services.LinkDriver, routeID, driverID)
}

func (r RouteRouter) UnassignBusStop(ctx context.Context, routeID, stopID string) string {
	return r.link(ctx, false, services.LinkStop, routeID, stopID)
}

func (r RouteRouter) UnassignBus(ctx context.Context, routeID, busID string) string {
	return r.link(ctx, false, services.LinkBus, routeID, busID)
}

func (r RouteRouter) GetAllDriversByID(ctx context.Context, routeID string) string {
	drivers, err := r.svc.GetDrivers(ctx, routeID)
	if err != nil {
		return r.fail("get_drivers", err)
	}
	return wire.Encode(drivers)
}

func (r RouteRouter) GetAllBusStopsByID(ctx context.Context, routeID string) string {
	stops, err := r.svc.GetStops(ctx, routeID)
	if err != nil {
		return r.fail("get_stops", err)
	}
	return wire.Encode(stops)
}

func (r RouteRouter) GetAllBusesByID(ctx context.Context, routeID string) string {
	buses, err := r.svc.GetBuses(ctx, routeID)
	if err != nil {
		return r.fail("get_buses", err)
	}
	return wire.Encode(buses)
}

func (r RouteRouter) GetDetailsByID(ctx context.Context, routeID string) string {
	details, err := r.svc.Details(ctx, routeID)
	if err != nil {
		return r.fail("get_details", err)
	}
	return wire.Encode(details)
}

// Gateway exposes every entity's procedures.
type Gateway struct {
	Buses   BusRouter
	Drivers DriverRouter
	Stops   StopRouter
	Routes  RouteRouter

	procs map[domain.Entity]map[string]procedure
}

type procedure struct {
	arity int
	call  func(ctx context.Context, args []string) string
}

func New(f services.Fleet) *Gateway {
	g := &Gateway{
		Buses:   BusRouter{Router: NewRouter[models.Bus](domain.EntityBus, f.Buses), svc: f.Buses},
		Drivers: DriverRouter{Router: NewRouter[models.Driver](domain.EntityDriver, f.Drivers), svc: f.Drivers},
		Stops:   StopRouter{Router: NewRouter[models.Stop](domain.EntityStop, f.Stops), svc: f.Stops},
		Routes:  RouteRouter{Router: NewRouter[models.Route](domain.EntityRoute, f.Routes), svc: f.Routes},
	}
	g.procs = map[domain.Entity]map[string]procedure{
		domain.EntityBus:    crudProcedures(g.Buses),
		domain.EntityDriver: crudProcedures(g.Drivers),
		domain.EntityStop:   crudProcedures(g.Stops),
		domain.EntityRoute:  crudProcedures(g.Routes),
	}

	g.procs[domain.EntityBus]["GetByNumber"] = unary(g.Buses.GetByNumber)
	g.procs[domain.EntityDriver]["GetByPassportSeries"] = unary(g.Drivers.GetByPassportSeries)
	g.procs[domain.EntityStop]["GetByName"] = unary(g.Stops.GetByName)
	g.procs[domain.EntityStop]["GetNearby"] = binary(g.Stops.GetNearby)

	rp := g.procs[domain.EntityRoute]
	rp["GetByNumber"] = unary(g.Routes.GetByNumber)
	rp["AssignDriver"] = binary(g.Routes.AssignDriver)
	rp["AssignBusStop"] = binary(g.Routes.AssignBusStop)
	rp["AssignBus"] = binary(g.Routes.AssignBus)
	rp["UnassignDriver"] = binary(g.Routes.UnassignDriver)
	rp["UnassignBusStop"] = binary(g.Routes.UnassignBusStop)
	rp["UnassignBus"] = binary(g.Routes.UnassignBus)
	rp["GetAllDriversById"] = unary(g.Routes.GetAllDriversByID)
	rp["GetAllBusStopsById"] = unary(g.Routes.GetAllBusStopsByID)
	rp["GetAllBusesById"] = unary(g.Routes.GetAllBusesByID)
	rp["GetDetailsById"] = unary(g.Routes.GetDetailsByID)
	return g
}

// Entity returns the CRUD surface of e.
func (g *Gateway) Entity(e domain.Entity) (EntityRouter, bool) {
	switch e {
	case domain.EntityBus:
		return g.Buses, true
	case domain.EntityDriver:
		return g.Drivers, true
	case domain.EntityStop:
		return g.Stops, true
	case domain.EntityRoute:
		return g.Routes, true
	}
	return nil, false
}

// Call dispatches a procedure by its wire name ("GetById", "AssignBus"...).
// Go errors mean the call itself was malformed; everything else is inside
// the returned JSON.
func (g *Gateway) Call(ctx context.Context, entity domain.Entity, method string, args []string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	procs, ok := g.procs[entity]
	if !ok || !entity.Valid() {
		return "", fmt.Errorf("%w: %s", ErrUnknownEntity, entity)
	}
	p, ok := procs[method]
	if !ok {
		return "", fmt.Errorf("%w: %s.%s", ErrUnknownProcedure, entity, method)
	}
	if len(args) != p.arity {
		return "", fmt.Errorf("%w: %s.%s wants %d, got %d", ErrArity, entity, method, p.arity, len(args))
	}
	return p.call(ctx, args), nil
}

func crudProcedures(r EntityRouter) map[string]procedure {
	return map[string]procedure{
		"GetAll":     {arity: 0, call: func(ctx context.Context, _ []string) string { return r.GetAll(ctx) }},
		"GetById":    unary(r.GetByID),
		"Add":        unary(r.Add),
		"UpdateById": unary(r.UpdateByID),
		"DeleteById": unary(r.DeleteByID),
	}
}

func unary(fn func(context.Context, string) string) procedure {
	return procedure{arity: 1, call: func(ctx context.Context, args []string) string { return fn(ctx, args[0]) }}
}

func binary(fn func(context.Context, string, string) string) procedure {
	return procedure{arity: 2, call: func(ctx context.Context, args []string) string { return fn(ctx, args[0], args[1]) }}
}
