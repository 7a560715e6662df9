package services

import (
	"context"
	"fmt"
	"strings"

	"busmanager/internal/domain"
	"busmanager/internal/domain/models"
	"busmanager/internal/repositories"
	"busmanager/internal/utils"

	"golang.org/x/sync/errgroup"
)

type RouteService struct {
	Repo      repositories.RouteRepository
	RequestID string
}

func (s RouteService) GetByID(ctx context.Context, id string) (models.Route, error) {
	if strings.TrimSpace(id) == "" {
		return models.Route{}, domain.Required("ID")
	}
	return s.Repo.GetByID(ctx, id)
}

func (s RouteService) GetByNumber(ctx context.Context, number string) (models.Route, error) {
	number = utils.TrimOrEmpty(number)
	if number == "" {
		return models.Route{}, domain.Required("Number")
	}
	return s.Repo.GetByNumber(ctx, number)
}

func (s RouteService) GetAll(ctx context.Context) ([]models.Route, error) {
	return s.Repo.GetAll(ctx)
}

func (s RouteService) Add(ctx context.Context, route *models.Route) error {
	route.ID = utils.TrimOrEmpty(route.ID)
	route.Number = utils.TrimOrEmpty(route.Number)
	if route.Number == "" {
		return domain.Required("Number")
	}
	if err := s.Repo.Add(ctx, route); err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "route", "add", fmt.Sprintf("id=%s number=%s", route.ID, route.Number))
	return nil
}

func (s RouteService) UpdateByID(ctx context.Context, route *models.Route) error {
	route.ID = utils.TrimOrEmpty(route.ID)
	route.Number = utils.TrimOrEmpty(route.Number)
	if route.ID == "" {
		return domain.Required("ID")
	}
	if route.Number == "" {
		return domain.Required("Number")
	}
	if err := s.Repo.UpdateByID(ctx, route); err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "route", "update", "id="+route.ID)
	return nil
}

func (s RouteService) DeleteByID(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return domain.Required("ID")
	}
	if err := s.Repo.DeleteByID(ctx, id); err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "route", "delete", "id="+id)
	return nil
}

// Link kinds accepted by Assign and Unassign.
const (
	LinkDriver = "driver"
	LinkStop   = "stop"
	LinkBus    = "bus"
)

func (s RouteService) Assign(ctx context.Context, kind, routeID, refID string) error {
	if err := checkLinkIDs(kind, routeID, refID); err != nil {
		return err
	}
	var err error
	switch kind {
	case LinkDriver:
		err = s.Repo.AssignDriver(ctx, routeID, refID)
	case LinkStop:
		err = s.Repo.AssignBusStop(ctx, routeID, refID)
	case LinkBus:
		err = s.Repo.AssignBus(ctx, routeID, refID)
	default:
		return domain.ValidationError{Field: "kind", Msg: "unknown link " + kind}
	}
	if err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "route", "assign_"+kind, fmt.Sprintf("route_id=%s ref_id=%s", routeID, refID))
	return nil
}

func (s RouteService) Unassign(ctx context.Context, kind, routeID, refID string) error {
	if err := checkLinkIDs(kind, routeID, refID); err != nil {
		return err
	}
	var err error
	switch kind {
	case LinkDriver:
		err = s.Repo.UnassignDriver(ctx, routeID, refID)
	case LinkStop:
		err = s.Repo.UnassignBusStop(ctx, routeID, refID)
	case LinkBus:
		err = s.Repo.UnassignBus(ctx, routeID, refID)
	default:
		return domain.ValidationError{Field: "kind", Msg: "unknown link " + kind}
	}
	if err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "route", "unassign_"+kind, fmt.Sprintf("route_id=%s ref_id=%s", routeID, refID))
	return nil
}

func (s RouteService) GetDrivers(ctx context.Context, routeID string) ([]models.Driver, error) {
	if strings.TrimSpace(routeID) == "" {
		return nil, domain.Required("Route ID")
	}
	return s.Repo.GetAllDriversByID(ctx, routeID)
}

func (s RouteService) GetStops(ctx context.Context, routeID string) ([]models.Stop, error) {
	if strings.TrimSpace(routeID) == "" {
		return nil, domain.Required("Route ID")
	}
	return s.Repo.GetAllBusStopsByID(ctx, routeID)
}

func (s RouteService) GetBuses(ctx context.Context, routeID string) ([]models.Bus, error) {
	if strings.TrimSpace(routeID) == "" {
		return nil, domain.Required("Route ID")
	}
	return s.Repo.GetAllBusesByID(ctx, routeID)
}

// Details loads the route and its three association lists concurrently.
func (s RouteService) Details(ctx context.Context, routeID string) (models.RouteDetails, error) {
	route, err := s.GetByID(ctx, routeID)
	if err != nil {
		return models.RouteDetails{}, err
	}

	out := models.RouteDetails{Route: route}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		out.Drivers, err = s.Repo.GetAllDriversByID(gctx, routeID)
		return err
	})
	g.Go(func() error {
		var err error
		out.Stops, err = s.Repo.GetAllBusStopsByID(gctx, routeID)
		return err
	})
	g.Go(func() error {
		var err error
		out.Buses, err = s.Repo.GetAllBusesByID(gctx, routeID)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.RouteDetails{}, err
	}
	return out, nil
}

func checkLinkIDs(kind, routeID, refID string) error {
	if strings.TrimSpace(routeID) == "" {
		return domain.Required("Route ID")
	}
	if strings.TrimSpace(refID) == "" {
		return domain.Required(kindLabel(kind) + " ID")
	}
	return nil
}

func kindLabel(kind string) string {
	switch kind {
	case LinkDriver:
		return "Driver"
	case LinkStop:
		return "Bus stop"
	case LinkBus:
		return "Bus"
	}
	return kind
}
