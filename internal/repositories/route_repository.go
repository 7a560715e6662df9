package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"busmanager/internal/db"
	"busmanager/internal/domain"
	"busmanager/internal/domain/models"

	"github.com/google/uuid"
)

// association describes one ordered many-to-many link of a route.
type association struct {
	joinTable string
	refColumn string
	refTable  string
	resource  string
}

var (
	routeDrivers = association{"routes_drivers", "driver_id", "drivers", "Driver"}
	routeStops   = association{"routes_bus_stops", "bus_stop_id", "bus_stops", "Bus stop"}
	routeBuses   = association{"routes_buses", "bus_id", "buses", "Bus"}
)

// RouteRepository wraps DB access for routes and their associations.
type RouteRepository struct {
	DB      *sql.DB
	Dialect string
}

func (r RouteRepository) GetByID(ctx context.Context, id string) (models.Route, error) {
	var route models.Route
	err := r.DB.QueryRowContext(ctx, `SELECT id, number FROM routes WHERE id = ?`, id).Scan(&route.ID, &route.Number)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Route{}, domain.NotFoundError{Resource: "Route", ID: id, Err: err}
	}
	return route, err
}

func (r RouteRepository) GetByNumber(ctx context.Context, number string) (models.Route, error) {
	var route models.Route
	err := r.DB.QueryRowContext(ctx, `SELECT id, number FROM routes WHERE number = ?`, number).Scan(&route.ID, &route.Number)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Route{}, domain.NotFoundError{Resource: "Route", ID: number, Err: err}
	}
	return route, err
}

func (r RouteRepository) GetAll(ctx context.Context) ([]models.Route, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id, number FROM routes ORDER BY number`)
	if err != nil {
		return nil, fmt.Errorf("query routes: %w", err)
	}
	defer rows.Close()

	var routes []models.Route
	for rows.Next() {
		var route models.Route
		if err := rows.Scan(&route.ID, &route.Number); err != nil {
			return nil, fmt.Errorf("scan route: %w", err)
		}
		routes = append(routes, route)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate routes: %w", err)
	}
	return routes, nil
}

func (r RouteRepository) Add(ctx context.Context, route *models.Route) error {
	if _, err := r.GetByNumber(ctx, route.Number); err == nil {
		return domain.ConflictError{Resource: "Route", Msg: "route " + route.Number + " already exists"}
	} else if !domain.IsNotFound(err) {
		return err
	}

	if strings.TrimSpace(route.ID) == "" {
		route.ID = uuid.NewString()
	}

	if _, err := r.DB.ExecContext(ctx, `INSERT INTO routes (id, number) VALUES (?, ?)`, route.ID, route.Number); err != nil {
		if db.IsUniqueViolation(err) {
			return domain.ConflictError{Resource: "Route", Msg: "already exists", Err: err}
		}
		return fmt.Errorf("insert route: %w", err)
	}
	return nil
}

func (r RouteRepository) UpdateByID(ctx context.Context, route *models.Route) error {
	if _, err := r.GetByID(ctx, route.ID); err != nil {
		return err
	}
	if _, err := r.DB.ExecContext(ctx, `UPDATE routes SET number = ? WHERE id = ?`, route.Number, route.ID); err != nil {
		if db.IsUniqueViolation(err) {
			return domain.ConflictError{Resource: "Route", Msg: "route " + route.Number + " already exists", Err: err}
		}
		return fmt.Errorf("update route: %w", err)
	}
	return nil
}

func (r RouteRepository) DeleteByID(ctx context.Context, id string) error {
	return deleteWithLinks(ctx, r.DB, "Route", "routes", id,
		link{routeDrivers.joinTable, "route_id"},
		link{routeStops.joinTable, "route_id"},
		link{routeBuses.joinTable, "route_id"},
	)
}

func (r RouteRepository) AssignDriver(ctx context.Context, routeID, driverID string) error {
	return r.assign(ctx, routeDrivers, routeID, driverID)
}

func (r RouteRepository) AssignBusStop(ctx context.Context, routeID, stopID string) error {
	return r.assign(ctx, routeStops, routeID, stopID)
}

func (r RouteRepository) AssignBus(ctx context.Context, routeID, busID string) error {
	return r.assign(ctx, routeBuses, routeID, busID)
}

func (r RouteRepository) UnassignDriver(ctx context.Context, routeID, driverID string) error {
	return r.unassign(ctx, routeDrivers, routeID, driverID)
}

func (r RouteRepository) UnassignBusStop(ctx context.Context, routeID, stopID string) error {
	return r.unassign(ctx, routeStops, routeID, stopID)
}

func (r RouteRepository) UnassignBus(ctx context.Context, routeID, busID string) error {
	return r.unassign(ctx, routeBuses, routeID, busID)
}

// assign appends refID to the end of the route's ordered association.
func (r RouteRepository) assign(ctx context.Context, a association, routeID, refID string) error {
	if _, err := r.GetByID(ctx, routeID); err != nil {
		return err
	}

	var exists int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+a.refTable+` WHERE id = ?`, refID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check %s: %w", a.refTable, err)
	}
	if exists == 0 {
		return domain.NotFoundError{Resource: a.resource, ID: refID}
	}

	var next int
	err = r.DB.QueryRowContext(ctx, `SELECT COALESCE(MAX(position), 0) + 1 FROM `+a.joinTable+` WHERE route_id = ?`, routeID).Scan(&next)
	if err != nil {
		return fmt.Errorf("next position %s: %w", a.joinTable, err)
	}

	_, err = r.DB.ExecContext(ctx, `INSERT INTO `+a.joinTable+` (route_id, `+a.refColumn+`, position) VALUES (?, ?, ?)`,
		routeID, refID, next)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return domain.ConflictError{Resource: "Route", Msg: strings.ToLower(a.resource) + " already assigned", Err: err}
		}
		return fmt.Errorf("assign %s: %w", a.refTable, err)
	}
	return nil
}

func (r RouteRepository) unassign(ctx context.Context, a association, routeID, refID string) error {
	if _, err := r.GetByID(ctx, routeID); err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, `DELETE FROM `+a.joinTable+` WHERE route_id = ? AND `+a.refColumn+` = ?`, routeID, refID)
	if err != nil {
		return fmt.Errorf("unassign %s: %w", a.refTable, err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return domain.NotFoundError{Resource: a.resource + " assignment", ID: refID}
	}
	return nil
}

func (r RouteRepository) GetAllDriversByID(ctx context.Context, routeID string) ([]models.Driver, error) {
	if _, err := r.GetByID(ctx, routeID); err != nil {
		return nil, err
	}
	rows, err := r.DB.QueryContext(ctx, `
		SELECT d.id, d.name, d.surname, d.patronymic, d.birth_date, d.passport_series, d.snils, d.license_series
		FROM drivers d
		JOIN routes_drivers rd ON d.id = rd.driver_id
		WHERE rd.route_id = ?
		ORDER BY rd.position
	`, routeID)
	if err != nil {
		return nil, fmt.Errorf("query route drivers: %w", err)
	}
	defer rows.Close()

	var drivers []models.Driver
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, fmt.Errorf("scan route driver: %w", err)
		}
		drivers = append(drivers, d)
	}
	return drivers, rows.Err()
}

func (r RouteRepository) GetAllBusStopsByID(ctx context.Context, routeID string) ([]models.Stop, error) {
	if _, err := r.GetByID(ctx, routeID); err != nil {
		return nil, err
	}
	rows, err := r.DB.QueryContext(ctx, `
		SELECT s.id, s.lat, s.`+db.Ident(r.Dialect, "long")+`, s.name, s.geohash
		FROM bus_stops s
		JOIN routes_bus_stops rs ON s.id = rs.bus_stop_id
		WHERE rs.route_id = ?
		ORDER BY rs.position
	`, routeID)
	if err != nil {
		return nil, fmt.Errorf("query route stops: %w", err)
	}
	defer rows.Close()

	var stops []models.Stop
	for rows.Next() {
		s, err := scanStop(rows)
		if err != nil {
			return nil, fmt.Errorf("scan route stop: %w", err)
		}
		stops = append(stops, s)
	}
	return stops, rows.Err()
}

func (r RouteRepository) GetAllBusesByID(ctx context.Context, routeID string) ([]models.Bus, error) {
	if _, err := r.GetByID(ctx, routeID); err != nil {
		return nil, err
	}
	rows, err := r.DB.QueryContext(ctx, `
		SELECT b.id, b.brand, b.bus_model, b.register_number, b.assembly_date, b.last_repair_date
		FROM buses b
		JOIN routes_buses rb ON b.id = rb.bus_id
		WHERE rb.route_id = ?
		ORDER BY rb.position
	`, routeID)
	if err != nil {
		return nil, fmt.Errorf("query route buses: %w", err)
	}
	defer rows.Close()

	var buses []models.Bus
	for rows.Next() {
		b, err := scanBus(rows)
		if err != nil {
			return nil, fmt.Errorf("scan route bus: %w", err)
		}
		buses = append(buses, b)
	}
	return buses, rows.Err()
}
