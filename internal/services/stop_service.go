package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"busmanager/internal/db"
	"busmanager/internal/domain"
	"busmanager/internal/domain/models"
	"busmanager/internal/repositories"
	"busmanager/internal/utils"

	"github.com/mmcloughlin/geohash"
)

// nearbyGeohashPrecision is the search cell (~1.2 km x 0.6 km) plus its neighbours.
const nearbyGeohashPrecision = 6

type StopService struct {
	Repo      repositories.StopRepository
	RequestID string
}

func (s StopService) GetByID(ctx context.Context, id string) (models.Stop, error) {
	if strings.TrimSpace(id) == "" {
		return models.Stop{}, domain.Required("ID")
	}
	return s.Repo.GetByID(ctx, id)
}

func (s StopService) GetByName(ctx context.Context, name string) (models.Stop, error) {
	name = utils.NormalizeSpace(name)
	if name == "" {
		return models.Stop{}, domain.Required("Name")
	}
	return s.Repo.GetByName(ctx, name)
}

func (s StopService) GetAll(ctx context.Context) ([]models.Stop, error) {
	return s.Repo.GetAll(ctx)
}

func (s StopService) Add(ctx context.Context, stop *models.Stop) error {
	if err := normalizeStop(stop); err != nil {
		return err
	}
	if err := s.Repo.Add(ctx, stop); err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "stop", "add", fmt.Sprintf("id=%s geohash=%s", stop.ID, stop.Geohash))
	return nil
}

func (s StopService) UpdateByID(ctx context.Context, stop *models.Stop) error {
	if strings.TrimSpace(stop.ID) == "" {
		return domain.Required("ID")
	}
	if err := normalizeStop(stop); err != nil {
		return err
	}
	if err := s.Repo.UpdateByID(ctx, stop); err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "stop", "update", "id="+stop.ID)
	return nil
}

func (s StopService) DeleteByID(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return domain.Required("ID")
	}
	if err := s.Repo.DeleteByID(ctx, id); err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "stop", "delete", "id="+id)
	return nil
}

// Nearby returns stops in the search cell around (lat, long) and the eight
// cells bordering it, closest first.
func (s StopService) Nearby(ctx context.Context, lat, long float64) ([]models.Stop, error) {
	if err := checkCoordinates(lat, long); err != nil {
		return nil, err
	}
	center := geohash.EncodeWithPrecision(lat, long, nearbyGeohashPrecision)
	cells := append([]string{center}, geohash.Neighbors(center)...)

	seen := map[string]bool{}
	var out []models.Stop
	for _, cell := range cells {
		stops, err := s.Repo.GetByGeohashPrefix(ctx, cell)
		if err != nil {
			return nil, err
		}
		for _, st := range stops {
			if seen[st.ID] {
				continue
			}
			seen[st.ID] = true
			out = append(out, st)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return distanceMeters(lat, long, out[i].Lat, out[i].Long) < distanceMeters(lat, long, out[j].Lat, out[j].Long)
	})
	return out, nil
}

func normalizeStop(stop *models.Stop) error {
	stop.ID = utils.TrimOrEmpty(stop.ID)
	stop.Name = utils.NormalizeSpace(stop.Name)
	if stop.Name == "" {
		return domain.Required("Name")
	}
	if err := checkCoordinates(stop.Lat, stop.Long); err != nil {
		return err
	}
	stop.Geohash = geohash.EncodeWithPrecision(stop.Lat, stop.Long, db.StopGeohashPrecision)
	return nil
}

func checkCoordinates(lat, long float64) error {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return domain.ValidationError{Field: "Lat", Msg: "must be within [-90, 90]"}
	}
	if math.IsNaN(long) || long < -180 || long > 180 {
		return domain.ValidationError{Field: "Long", Msg: "must be within [-180, 180]"}
	}
	return nil
}

// distanceMeters is the haversine great-circle distance.
func distanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadius = 6371000.0
	toRad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadius * math.Asin(math.Sqrt(a))
}
